package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/retell-client/internal/logging"
)

func TestRedactingHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	handler := logging.NewRedactingHandler(slog.NewJSONHandler(&buf, nil), []string{"api_key", "Authorization"})
	logger := slog.New(handler).With(slog.String("api_key", "key_secret"))

	logger.Info("request",
		slog.String("authorization", "Bearer key_secret"),
		slog.String("header", "bearer key_secret"),
		slog.String("call_id", "abc"),
		slog.Group("retry", slog.String("api_key", "nested")),
	)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, logging.Redacted, entry["api_key"])
	assert.Equal(t, logging.Redacted, entry["authorization"])
	assert.Equal(t, logging.Redacted, entry["header"])
	assert.Equal(t, "abc", entry["call_id"])
	assert.Equal(t, map[string]any{"api_key": logging.Redacted}, entry["retry"])
	assert.NotContains(t, buf.String(), "key_secret")
}

func TestNew_ConsoleLevels(t *testing.T) {
	t.Parallel()

	var quiet bytes.Buffer

	logger := logging.New(logging.Options{Console: &quiet, NoColor: true})
	logger.Debug("hidden")
	logger.Warn("shown", "api_key", "key_secret")
	require.NoError(t, logger.Close())

	assert.NotContains(t, quiet.String(), "hidden")
	assert.Contains(t, quiet.String(), "shown")
	assert.NotContains(t, quiet.String(), "key_secret")

	var verbose bytes.Buffer

	logging.New(logging.Options{Console: &verbose, NoColor: true, Verbose: true}).Debug("visible")
	assert.Contains(t, verbose.String(), "visible")
}

func TestNew_LogFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "retell.log")

	var console bytes.Buffer

	logger := logging.New(logging.Options{Console: &console, NoColor: true, File: path})
	logger.Debug("file only", "call_id", "abc")
	logger.Error("everywhere")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"call_id":"abc"`)
	assert.NotContains(t, console.String(), "file only")
	assert.Contains(t, console.String(), "everywhere")
}
