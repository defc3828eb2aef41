package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WarnLevel, &buf)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown", map[string]interface{}{"trials": 10})
	logger.Error("shown too")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "shown", entries[0]["message"])
	assert.Equal(t, float64(10), entries[0]["trials"])
	assert.Contains(t, entries[0]["caller"], "logging/logger_test.go")
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	base := New(DebugLevel, &buf)
	child := base.WithField("service", "sarsim").WithError(errors.New("boom"))

	child.Info("hello", map[string]interface{}{"strategy": "split"})
	base.Info("plain")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "sarsim", entries[0]["service"])
	assert.Equal(t, "boom", entries[0]["error"])
	assert.Equal(t, "split", entries[0]["strategy"])
	assert.NotContains(t, entries[1], "service")
}

func TestLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithFormat(InfoLevel, &buf, TextFormat)
	logger.Info("batch done", map[string]interface{}{"trials": 5, "strategy": "concentrate"})

	line := buf.String()
	assert.Contains(t, line, "INFO")
	assert.Contains(t, line, "batch done")
	assert.Contains(t, line, "strategy=concentrate trials=5")
}

func TestLoggerFatalExits(t *testing.T) {
	var buf bytes.Buffer
	logger := New(InfoLevel, &buf)
	code := -1
	logger.sink.exit = func(c int) { code = c }

	logger.Fatal("stop")
	assert.Equal(t, 1, code)
}

func TestNewLoggerConfig(t *testing.T) {
	logger, err := NewLogger(&Config{Level: "debug", Format: "console", Output: "stdout"})
	require.NoError(t, err)
	assert.Equal(t, DebugLevel, logger.level)
	assert.Equal(t, TextFormat, logger.sink.format)

	logger, err = NewLogger(nil)
	require.NoError(t, err)
	assert.Equal(t, InfoLevel, logger.level)
	assert.Equal(t, JSONFormat, logger.sink.format)

	_, err = NewLogger(&Config{Output: t.TempDir()})
	assert.Error(t, err, "a directory is not a writable log file")
}

func TestConfigLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"", InfoLevel},
		{"debug", DebugLevel},
		{"Warning", WarnLevel},
		{"ERROR", ErrorLevel},
		{"verbose", InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, (&Config{Level: tt.in}).level(), tt.in)
	}
}

func TestNewLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sarsim.log")
	logger, err := NewLogger(&Config{Level: "info", Format: "text", Output: path})
	require.NoError(t, err)
	logger.Info("Session created", map[string]interface{}{"round": 0})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Session created")
}

func TestZapLoggerForwards(t *testing.T) {
	var buf bytes.Buffer
	logger := New(InfoLevel, &buf)
	zl := NewZapLogger(logger).Named("montecarlo").With(zap.String("strategy", "split"))

	zl.Debug("filtered")
	zl.Info("Batch completed",
		zap.Int("trials", 100),
		zap.Float64("mean", 2.5),
		zap.Bool("ok", true),
		zap.Error(errors.New("none")),
	)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "Batch completed", e["message"])
	assert.Equal(t, "montecarlo", e["logger"])
	assert.Equal(t, "split", e["strategy"])
	assert.Equal(t, float64(100), e["trials"])
	assert.Equal(t, 2.5, e["mean"])
	assert.Equal(t, true, e["ok"])
	assert.Equal(t, "none", e["error"])
	assert.Contains(t, e["caller"], "logging/logger_test.go")
}

func TestMiddlewareInjectsLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(DebugLevel, &buf)

	r := chi.NewRouter()
	r.Use(Middleware(logger))
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("handler")
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 3)
	assert.Equal(t, "Request started", entries[0]["message"])
	assert.Equal(t, "handler", entries[1]["message"])
	assert.Equal(t, "/ping", entries[1]["path"])
	assert.Equal(t, "Request rejected", entries[2]["message"])
	assert.Equal(t, float64(http.StatusTeapot), entries[2]["status"])
}
