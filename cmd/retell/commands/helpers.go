package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/retell-client/internal/config"
	"github.com/fivetwenty-io/retell-client/internal/constants"
	"github.com/fivetwenty-io/retell-client/internal/logging"
	"github.com/fivetwenty-io/retell-client/pkg/retell"
	"github.com/fivetwenty-io/retell-client/pkg/retellclient"
)

// Global setting keys bound to root flags.
const (
	KeyConfig  = "config"
	KeyOutput  = "output"
	KeyVerbose = "verbose"
	KeyNoColor = "no_color"
	KeyLogFile = "log_file"
	KeyEnvFile = "env_file"
)

// outputFormat returns the validated --output value.
func outputFormat() (string, error) {
	format := strings.ToLower(strings.TrimSpace(viper.GetString(KeyOutput)))
	if format == "" {
		return constants.FormatTable, nil
	}

	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrUnsupportedFormat, format)
	}
}

func newLogger() *logging.Logger {
	return logging.New(logging.Options{
		Verbose: viper.GetBool(KeyVerbose),
		NoColor: viper.GetBool(KeyNoColor),
		File:    viper.GetString(KeyLogFile),
	})
}

// loadConfig reads the client configuration from flags, environment and the
// config file, and routes client logs to logger.
func loadConfig(logger *logging.Logger) (*retell.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	if logger != nil {
		cfg.Logger = retell.NewSlogLogger(logger.Logger)
	}

	cfg.Debug = cfg.Debug || viper.GetBool(KeyVerbose)

	return cfg, nil
}

func newClient(logger *logging.Logger) (retell.Client, error) {
	cfg, err := loadConfig(logger)
	if err != nil {
		return nil, err
	}

	if cfg.APIKey == "" {
		return nil, constants.ErrNoAPIKey
	}

	return retellclient.New(cfg)
}

// parseKeyValues parses repeated key=value flags.
func parseKeyValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil //nolint:nilnil // no pairs means no map
	}

	values := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", constants.KeyValueParts)
		if len(parts) != constants.KeyValueParts || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidKeyValue, pair)
		}

		values[strings.TrimSpace(parts[0])] = parts[1]
	}

	return values, nil
}

// maskSecret hides all but the last few characters of secret.
func maskSecret(secret string) string {
	switch {
	case secret == "":
		return constants.NotAvailable
	case len(secret) <= constants.MaskVisibleChars*2:
		return constants.MaskedSecret
	default:
		return constants.MaskedSecret + secret[len(secret)-constants.MaskVisibleChars:]
	}
}

// writeOutput renders value as JSON or YAML, or rows as a property table.
func writeOutput(w io.Writer, format string, value interface{}, rows [][2]string) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		return encoder.Encode(value)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(constants.JSONIndentSize)

		err := encoder.Encode(value)
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}

		return encoder.Close()
	case constants.FormatTable:
		table := tablewriter.NewWriter(w)
		table.Header("Property", "Value")

		for _, row := range rows {
			_ = table.Append(row[0], row[1])
		}

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnsupportedFormat, format)
	}
}

// writeProblem renders the problem details of a failed operation.
func writeProblem(w io.Writer, format string, problem retell.Problem) error {
	details := problem.ProblemDetails()

	rows := [][2]string{
		{"Title", details.Title},
		{"Status", fmt.Sprint(details.Status)},
		{"Type", details.Type},
	}

	if details.Detail != "" {
		rows = append(rows, [2]string{"Detail", details.Detail})
	}

	if details.Instance != "" {
		rows = append(rows, [2]string{"Instance", details.Instance})
	}

	if details.Suggestion != "" {
		rows = append(rows, [2]string{"Suggestion", details.Suggestion})
	}

	return writeOutput(w, format, details, rows)
}
