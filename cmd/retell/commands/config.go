package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect CLI configuration",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigPathCommand())

	return cmd
}

type effectiveConfig struct {
	ConfigFile        string   `json:"config_file"        yaml:"config_file"`
	APIKey            string   `json:"api_key"            yaml:"api_key"`
	BaseURL           string   `json:"base_url"           yaml:"base_url"`
	Timeout           string   `json:"timeout"            yaml:"timeout"`
	OpenTimeout       string   `json:"open_timeout"       yaml:"open_timeout"`
	RetryMaxAttempts  int      `json:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryInterval     string   `json:"retry_interval"     yaml:"retry_interval"`
	RetryRandomness   float64  `json:"retry_randomness"   yaml:"retry_randomness"`
	RetryBackoff      float64  `json:"retry_backoff"      yaml:"retry_backoff"`
	RetryableFailures []string `json:"retryable_failures" yaml:"retryable_failures"`
	Debug             bool     `json:"debug"              yaml:"debug"`
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long:  "Show the configuration after merging flags, environment, .env and the config file. The API key is masked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			cfg, err := loadConfig(nil)
			if err != nil {
				return err
			}

			failures := make([]string, 0, len(cfg.RetryableFailures))
			for _, class := range cfg.RetryableFailures {
				failures = append(failures, string(class))
			}

			shown := effectiveConfig{
				ConfigFile:        valueOrNA(viper.ConfigFileUsed()),
				APIKey:            maskSecret(cfg.APIKey),
				BaseURL:           cfg.BaseURL,
				Timeout:           cfg.Timeout.String(),
				OpenTimeout:       cfg.OpenTimeout.String(),
				RetryMaxAttempts:  cfg.RetryMaxAttempts,
				RetryInterval:     cfg.RetryInterval.String(),
				RetryRandomness:   cfg.RetryIntervalRandomness,
				RetryBackoff:      cfg.RetryBackoffFactor,
				RetryableFailures: failures,
				Debug:             cfg.Debug,
			}

			rows := [][2]string{
				{"Config File", shown.ConfigFile},
				{"API Key", shown.APIKey},
				{"Base URL", shown.BaseURL},
				{"Timeout", shown.Timeout},
				{"Open Timeout", shown.OpenTimeout},
				{"Retry Max Attempts", fmt.Sprint(shown.RetryMaxAttempts)},
				{"Retry Interval", shown.RetryInterval},
				{"Retry Randomness", fmt.Sprint(shown.RetryRandomness)},
				{"Retry Backoff", fmt.Sprint(shown.RetryBackoff)},
				{"Retryable Failures", valueOrNA(strings.Join(failures, ", "))},
				{"Debug", fmt.Sprint(shown.Debug)},
			}

			return writeOutput(cmd.OutOrStdout(), format, shown, rows)
		},
	}
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)

			return nil
		},
	}
}
