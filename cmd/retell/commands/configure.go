package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/retell-client/internal/config"
	"github.com/fivetwenty-io/retell-client/internal/constants"
)

// NewConfigureCommand creates the configure command.
func NewConfigureCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Store the Retell API key",
		Long: `Store the Retell API key in the config file.

The key is read from --api-key, from a hidden prompt on a terminal, or from
the first line of standard input.`,
		Example: `  retell configure
  echo "$KEY" | retell configure`,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiKey, err := readAPIKey(cmd)
			if err != nil {
				return err
			}

			path, err := configPath()
			if err != nil {
				return err
			}

			err = config.SaveAPIKey(path, apiKey)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "API key %s saved to %s\n", maskSecret(apiKey), path)

			return nil
		},
	}
}

// configPath returns the config file in use, the --config value, or the
// default location.
func configPath() (string, error) {
	if used := viper.ConfigFileUsed(); used != "" {
		return used, nil
	}

	if path := viper.GetString(KeyConfig); path != "" {
		return path, nil
	}

	return config.DefaultPath()
}

func readAPIKey(cmd *cobra.Command) (string, error) {
	if flag := cmd.Flags().Lookup("api-key"); flag != nil && flag.Changed {
		return nonEmpty(flag.Value.String())
	}

	input := cmd.InOrStdin()

	if file, ok := input.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Retell API key: ")

		secret, err := term.ReadPassword(int(file.Fd()))

		_, _ = fmt.Fprintln(cmd.ErrOrStderr())

		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}

		return nonEmpty(string(secret))
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading API key: %w", err)
	}

	return nonEmpty(line)
}

func nonEmpty(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", constants.ErrEmptyInput
	}

	return value, nil
}
