package retell_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/retell-client/pkg/retell"
)

func TestSlogLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := retell.NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	logger.Warn("API Response", map[string]interface{}{"status_code": 429, "path": "/v2/create-phone-call"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "API Response", entry["msg"])
	assert.InDelta(t, 429.0, entry["status_code"], 0)
	assert.Equal(t, "/v2/create-phone-call", entry["path"])
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	var logger retell.Logger = retell.NopLogger{}

	assert.NotPanics(t, func() {
		logger.Debug("ignored", nil)
		logger.Error("ignored", map[string]interface{}{"k": "v"})
	})
}
