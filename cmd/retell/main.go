package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/retell-client/cmd/retell/commands"
	"github.com/fivetwenty-io/retell-client/internal/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "retell",
	Short: "Retell voice-call API CLI",
	Long: `A command-line interface for the Retell voice-call API.

Settings come from flags, RETELL_* environment variables, an optional .env
file and $HOME/.retell/config.yml, in that order of precedence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.retell/config.yml)")
	flags.String("env-file", "", "load environment variables from this file (default is ./.env when present)")
	flags.StringP("api-key", "k", "", "Retell API key")
	flags.String("base-url", "", "API endpoint URL")
	flags.StringP("output", "o", "table", "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("log-file", "", "also write debug logs to this file")

	_ = viper.BindPFlag(commands.KeyConfig, flags.Lookup("config"))
	_ = viper.BindPFlag(commands.KeyEnvFile, flags.Lookup("env-file"))
	_ = viper.BindPFlag(config.KeyAPIKey, flags.Lookup("api-key"))
	_ = viper.BindPFlag(config.KeyBaseURL, flags.Lookup("base-url"))
	_ = viper.BindPFlag(commands.KeyOutput, flags.Lookup("output"))
	_ = viper.BindPFlag(commands.KeyVerbose, flags.Lookup("verbose"))
	_ = viper.BindPFlag(commands.KeyNoColor, flags.Lookup("no-color"))
	_ = viper.BindPFlag(commands.KeyLogFile, flags.Lookup("log-file"))

	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewCallCommand())
	rootCmd.AddCommand(commands.NewConfigureCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
}

func initConfig() {
	err := config.LoadDotEnv(viper.GetString(commands.KeyEnvFile))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}

	config.Prepare(viper.GetViper())

	err = config.ReadFile(viper.GetViper(), viper.GetString(commands.KeyConfig))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if viper.GetBool(commands.KeyVerbose) && viper.ConfigFileUsed() != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
