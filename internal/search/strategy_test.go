package search

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{input: "concentrate", want: Concentrate},
		{input: "split", want: Split},
		{input: "  SPLIT ", want: Split},
		{input: "Concentrate", want: Concentrate},
		{input: "123", wantErr: true},
		{input: "", wantErr: true},
		{input: "random", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStrategy(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStrategy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, got.Validate())
		})
	}
}

func TestStrategyChoose(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		probs    []float64
		want     []int
	}{
		{name: "concentrate on most probable", strategy: Concentrate, probs: []float64{0.2, 0.5, 0.3}, want: []int{2, 2}},
		{name: "split skips least probable", strategy: Split, probs: []float64{0.2, 0.5, 0.3}, want: []int{2, 3}},
		{name: "split skips middle", strategy: Split, probs: []float64{0.4, 0.1, 0.5}, want: []int{1, 3}},
		{name: "concentrate tie picks lowest index", strategy: Concentrate, probs: []float64{0.4, 0.4, 0.2}, want: []int{1, 1}},
		{name: "split tie drops lowest index", strategy: Split, probs: []float64{0.2, 0.6, 0.2}, want: []int{2, 3}},
		{name: "split four regions", strategy: Split, probs: []float64{0.3, 0.3, 0.1, 0.3}, want: []int{1, 2, 4}},
		{name: "split single region", strategy: Split, probs: []float64{1}, want: []int{1}},
		{name: "concentrate single region", strategy: Concentrate, probs: []float64{1}, want: []int{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.strategy.Choose(tt.probs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// Same input, same answer.
			for i := 0; i < 10; i++ {
				again, err := tt.strategy.Choose(tt.probs)
				require.NoError(t, err)
				assert.Equal(t, got, again)
			}
		})
	}
}

func TestStrategyChooseErrors(t *testing.T) {
	_, err := Strategy(0).Choose([]float64{0.5, 0.5})
	assert.ErrorIs(t, err, ErrInvalidStrategy)

	_, err = Strategy(99).Choose([]float64{0.5, 0.5})
	assert.ErrorIs(t, err, ErrInvalidStrategy)
	assert.ErrorIs(t, Strategy(99).Validate(), ErrInvalidStrategy)

	_, err = Split.Choose(nil)
	assert.ErrorIs(t, err, ErrEmptyScenario)
}

func TestStrategyJSON(t *testing.T) {
	var payload struct {
		Strategy Strategy `json:"strategy"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"strategy":"split"}`), &payload))
	assert.Equal(t, Split, payload.Strategy)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"strategy":"split"}`, string(out))

	err = json.Unmarshal([]byte(`{"strategy":"456"}`), &payload)
	assert.ErrorIs(t, err, ErrInvalidStrategy)

	assert.Equal(t, "Strategy(7)", Strategy(7).String())
}
