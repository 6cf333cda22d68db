package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/retell-client/internal/constants"
	"github.com/fivetwenty-io/retell-client/pkg/retell"
)

// NewCallCommand creates the call command group.
func NewCallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call",
		Short: "Manage phone calls",
		Long:  "Create outbound phone calls through the Retell API",
	}

	cmd.AddCommand(newCallCreateCommand())

	return cmd
}

type callCreateOptions struct {
	from      string
	to        string
	agent     string
	metadata  []string
	variables []string
}

func newCallCreateCommand() *cobra.Command {
	opts := &callCreateOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an outbound phone call",
		Long: `Create an outbound phone call from a Retell number.

Numbers use E.164 format. Connection failures and timeouts are retried
according to the retry settings; API errors are reported as they are.`,
		Example: `  retell call create --from +14157774444 --to +12137774445
  retell call create --from +14157774444 --to +12137774445 --metadata customer=42 --var name=Ada -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCallCreate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "caller number in E.164 format")
	cmd.Flags().StringVar(&opts.to, "to", "", "callee number in E.164 format")
	cmd.Flags().StringVar(&opts.agent, "agent", "", "agent ID overriding the one bound to the caller number")
	cmd.Flags().StringArrayVar(&opts.metadata, "metadata", nil, "call metadata as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.variables, "var", nil, "dynamic variable as key=value (repeatable)")

	return cmd
}

func runCallCreate(cmd *cobra.Command, opts *callCreateOptions) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	if strings.TrimSpace(opts.from) == "" {
		return constants.ErrFromNumberRequired
	}

	if strings.TrimSpace(opts.to) == "" {
		return constants.ErrToNumberRequired
	}

	metadata, err := parseKeyValues(opts.metadata)
	if err != nil {
		return err
	}

	variables, err := parseKeyValues(opts.variables)
	if err != nil {
		return err
	}

	req := &retell.CreatePhoneCallRequest{
		FromNumber:       strings.TrimSpace(opts.from),
		ToNumber:         strings.TrimSpace(opts.to),
		AgentID:          strings.TrimSpace(opts.agent),
		DynamicVariables: variables,
	}

	if len(metadata) > 0 {
		req.Metadata = make(map[string]interface{}, len(metadata))
		for key, value := range metadata {
			req.Metadata[key] = value
		}
	}

	logger := newLogger()
	defer func() { _ = logger.Close() }()

	client, err := newClient(logger)
	if err != nil {
		return err
	}

	var outputErr error

	client.PhoneCalls().Create(cmd.Context(), req).Match(
		func(_ retell.Tag, doc retell.Document) {
			outputErr = writeCall(cmd.OutOrStdout(), format, doc)
		},
		func(tag retell.Tag, problem retell.Problem) {
			outputErr = writeProblem(cmd.ErrOrStderr(), format, problem)
			if outputErr == nil {
				outputErr = fmt.Errorf("%w: %s: %s", constants.ErrCallFailed, tag, problem.ProblemDetails().Title)
			}
		},
	)

	return outputErr
}

func writeCall(w io.Writer, format string, doc retell.Document) error {
	call := retell.NewPhoneCall(doc)

	rows := [][2]string{
		{"Call ID", valueOrNA(call.CallID)},
		{"Status", valueOrNA(call.CallStatus)},
		{"Agent ID", valueOrNA(call.AgentID)},
	}

	for _, key := range slices.Sorted(maps.Keys(call.Metadata)) {
		rows = append(rows, [2]string{"metadata." + key, compact(call.Metadata[key])})
	}

	return writeOutput(w, format, doc, rows)
}

func valueOrNA(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

func compact(value interface{}) string {
	if text, ok := value.(string); ok {
		return text
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}

	return string(encoded)
}
