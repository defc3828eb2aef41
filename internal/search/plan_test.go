package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlans(t *testing.T) {
	want := [][]int{{1, 1}, {2, 2}, {3, 3}, {1, 2}, {1, 3}, {2, 3}}
	assert.Equal(t, want, Plans(3))
	assert.Len(t, Plans(4), 10)
	assert.Equal(t, [][]int{{1, 1}}, Plans(1))
	assert.Nil(t, Plans(0))
}

func TestPlan(t *testing.T) {
	got, err := Plan(3, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, got)

	// The returned slice is a copy.
	got[0] = 9
	again, err := Plan(3, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, again)

	for _, choice := range []int{0, 7, -2} {
		_, err := Plan(3, choice)
		assert.ErrorIs(t, err, ErrInvalidStrategy)
	}
}
