package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/retell-client/internal/config"
	"github.com/fivetwenty-io/retell-client/internal/constants"
)

// resetViper gives a test a clean global viper instance.
func resetViper(t *testing.T, values map[string]interface{}) {
	t.Helper()

	viper.Reset()
	config.Prepare(viper.GetViper())

	for key, value := range values {
		viper.Set(key, value)
	}

	t.Cleanup(viper.Reset)
}

func execute(t *testing.T, cmd *cobra.Command, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	if stdin != nil {
		cmd.SetIn(stdin)
	}

	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

func TestParseKeyValues(t *testing.T) {
	t.Parallel()

	values, err := parseKeyValues([]string{"customer=42", "note=a=b", " name =Ada"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"customer": "42", "note": "a=b", "name": "Ada"}, values)

	empty, err := parseKeyValues(nil)
	require.NoError(t, err)
	assert.Nil(t, empty)

	for _, bad := range []string{"novalue", "=x", " =x"} {
		_, err := parseKeyValues([]string{bad})
		require.ErrorIs(t, err, constants.ErrInvalidKeyValue, bad)
	}
}

func TestMaskSecret(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                   constants.NotAvailable,
		"short":              constants.MaskedSecret,
		"key_0123456789abcd": constants.MaskedSecret + "abcd",
	}

	for in, want := range tests {
		assert.Equal(t, want, maskSecret(in), in)
	}
}

func TestWriteOutput(t *testing.T) {
	t.Parallel()

	value := map[string]string{"call_id": "abc"}
	rows := [][2]string{{"Call ID", "abc"}}

	var jsonOut bytes.Buffer
	require.NoError(t, writeOutput(&jsonOut, constants.FormatJSON, value, rows))
	assert.JSONEq(t, `{"call_id":"abc"}`, jsonOut.String())

	var yamlOut bytes.Buffer
	require.NoError(t, writeOutput(&yamlOut, constants.FormatYAML, value, rows))
	assert.Equal(t, "call_id: abc\n", yamlOut.String())

	var tableOut bytes.Buffer
	require.NoError(t, writeOutput(&tableOut, constants.FormatTable, value, rows))
	assert.Contains(t, tableOut.String(), "Call ID")
	assert.Contains(t, tableOut.String(), "abc")

	require.ErrorIs(t, writeOutput(io.Discard, "xml", value, rows), constants.ErrUnsupportedFormat)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestCallCreateCommand(t *testing.T) {
	var captured map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key_cli", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		if captured["to_number"] == "+19999999999" {
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte("invalid agent"))

			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"callId":"call_1","callStatus":"registered","agentId":"ag_1"}`))
	}))
	defer server.Close()

	t.Run("success as json", func(t *testing.T) {
		resetViper(t, map[string]interface{}{
			config.KeyAPIKey:  "key_cli",
			config.KeyBaseURL: server.URL,
			KeyOutput:         constants.FormatJSON,
		})

		stdout, _, err := execute(t, newCallCreateCommand(), nil,
			"--from", "+14157774444", "--to", "+12137774445",
			"--metadata", "customer=42", "--var", "name=Ada")
		require.NoError(t, err)

		assert.JSONEq(t, `{"call_id":"call_1","call_status":"registered","agent_id":"ag_1"}`, stdout)
		assert.Equal(t, map[string]interface{}{"customer": "42"}, captured["metadata"])
		assert.Equal(t, map[string]interface{}{"name": "Ada"}, captured["retell_llm_dynamic_variables"])
		assert.NotContains(t, captured, "override_agent_id")
	})

	t.Run("success as table", func(t *testing.T) {
		resetViper(t, map[string]interface{}{
			config.KeyAPIKey:  "key_cli",
			config.KeyBaseURL: server.URL,
		})

		stdout, _, err := execute(t, newCallCreateCommand(), nil, "--from", "+14157774444", "--to", "+12137774445")
		require.NoError(t, err)
		assert.Contains(t, stdout, "call_1")
		assert.Contains(t, stdout, "registered")
	})

	t.Run("api error prints problem details", func(t *testing.T) {
		resetViper(t, map[string]interface{}{
			config.KeyAPIKey:  "key_cli",
			config.KeyBaseURL: server.URL,
			KeyOutput:         constants.FormatYAML,
		})

		stdout, stderr, err := execute(t, newCallCreateCommand(), nil, "--from", "+14157774444", "--to", "+19999999999")
		require.ErrorIs(t, err, constants.ErrCallFailed)
		assert.Contains(t, err.Error(), "api_error")
		assert.Empty(t, stdout)

		var details map[string]interface{}
		require.NoError(t, yaml.Unmarshal([]byte(stderr), &details))
		assert.Equal(t, 422, details["status"])
		assert.Equal(t, "invalid agent", details["detail"])
	})

	t.Run("invalid number never reaches the api", func(t *testing.T) {
		resetViper(t, map[string]interface{}{
			config.KeyAPIKey:  "key_cli",
			config.KeyBaseURL: server.URL,
			KeyOutput:         constants.FormatJSON,
		})

		captured = nil

		_, stderr, err := execute(t, newCallCreateCommand(), nil, "--from", "14157774444", "--to", "+12137774445")
		require.ErrorIs(t, err, constants.ErrCallFailed)
		assert.Nil(t, captured)
		assert.Contains(t, stderr, "Invalid from_number format")
	})

	t.Run("missing flags", func(t *testing.T) {
		resetViper(t, map[string]interface{}{config.KeyAPIKey: "key_cli"})

		_, _, err := execute(t, newCallCreateCommand(), nil, "--to", "+12137774445")
		require.ErrorIs(t, err, constants.ErrFromNumberRequired)

		_, _, err = execute(t, newCallCreateCommand(), nil, "--from", "+14157774444")
		require.ErrorIs(t, err, constants.ErrToNumberRequired)
	})

	t.Run("missing api key", func(t *testing.T) {
		resetViper(t, map[string]interface{}{config.KeyAPIKey: ""})

		_, _, err := execute(t, newCallCreateCommand(), nil, "--from", "+14157774444", "--to", "+12137774445")
		require.ErrorIs(t, err, constants.ErrNoAPIKey)
	})

	t.Run("unsupported output", func(t *testing.T) {
		resetViper(t, map[string]interface{}{KeyOutput: "xml"})

		_, _, err := execute(t, newCallCreateCommand(), nil, "--from", "+14157774444", "--to", "+12137774445")
		require.ErrorIs(t, err, constants.ErrUnsupportedFormat)
	})
}

func TestConfigureCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	resetViper(t, map[string]interface{}{KeyConfig: path})

	stdout, _, err := execute(t, NewConfigureCommand(), strings.NewReader("key_0123456789abcd\n"))
	require.NoError(t, err)
	assert.Contains(t, stdout, path)
	assert.NotContains(t, stdout, "key_0123456789abcd")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "api_key: key_0123456789abcd")

	_, _, err = execute(t, NewConfigureCommand(), strings.NewReader("\n"))
	require.ErrorIs(t, err, constants.ErrEmptyInput)
}

func TestConfigShowCommand(t *testing.T) {
	resetViper(t, map[string]interface{}{
		config.KeyAPIKey:           "key_0123456789abcd",
		config.KeyRetryMaxAttempts: 5,
		KeyOutput:                  constants.FormatJSON,
	})

	stdout, _, err := execute(t, NewConfigCommand(), nil, "show")
	require.NoError(t, err)

	var shown effectiveConfig
	require.NoError(t, json.Unmarshal([]byte(stdout), &shown))
	assert.Equal(t, constants.MaskedSecret+"abcd", shown.APIKey)
	assert.Equal(t, 5, shown.RetryMaxAttempts)
	assert.Equal(t, "10s", shown.Timeout)
	assert.Equal(t, []string{"connection_failed", "timeout"}, shown.RetryableFailures)
}

func TestVersionCommand(t *testing.T) {
	resetViper(t, map[string]interface{}{KeyOutput: constants.FormatJSON})

	stdout, _, err := execute(t, NewVersionCommand("1.2.3", "abc123", "today"), nil)
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, "1.2.3", info["version"])
	assert.Equal(t, constants.Version, info["client"])
}
