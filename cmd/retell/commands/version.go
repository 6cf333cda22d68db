package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/retell-client/internal/constants"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the Retell CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			type VersionInfo struct {
				Version string `json:"version" yaml:"version"`
				Commit  string `json:"commit"  yaml:"commit"`
				Built   string `json:"built"   yaml:"built"`
				Client  string `json:"client"  yaml:"client"`
				Go      string `json:"go"      yaml:"go"`
			}

			format, err := outputFormat()
			if err != nil {
				return err
			}

			info := VersionInfo{
				Version: version,
				Commit:  commit,
				Built:   date,
				Client:  constants.Version,
				Go:      runtime.Version(),
			}

			return writeOutput(cmd.OutOrStdout(), format, info, [][2]string{
				{"Version", info.Version},
				{"Commit", info.Commit},
				{"Built", info.Built},
				{"Client", info.Client},
				{"Go", info.Go},
			})
		},
	}
}
