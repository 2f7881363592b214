package exec

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ValentinKolb/restkv/cmd/util"
	"github.com/ValentinKolb/restkv/rpc/client"
	"github.com/ValentinKolb/restkv/rpc/common"
	"github.com/spf13/cobra"
)

var (
	rpcClient *client.Client

	// ExecCmd sends a single raw command
	ExecCmd = &cobra.Command{
		Use:               "exec [name] [args...]",
		Short:             "Execute a single command and print its result as JSON",
		Args:              cobra.MinimumNArgs(1),
		PersistentPreRunE: setupClient,
		RunE:              runExec,
	}

	// PipelineCmd sends all commands read from stdin as one pipeline
	PipelineCmd = &cobra.Command{
		Use:   "pipeline",
		Short: "Execute the commands read from stdin (one per line) as pipeline",
		Long: util.WrapString(`Reads one command per line from stdin (arguments separated by whitespace,
empty lines and lines starting with # are ignored) and sends them in one request.
The envelope of every command is printed in order.`),
		Args:              cobra.NoArgs,
		PersistentPreRunE: setupClient,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd, false)
		},
	}

	// MultiCmd sends all commands read from stdin as one transaction
	MultiCmd = &cobra.Command{
		Use:   "multi",
		Short: "Execute the commands read from stdin (one per line) atomically",
		Long: util.WrapString(`Reads one command per line from stdin like the pipeline command,
but executes them as transaction: either all commands run or none.`),
		Args:              cobra.NoArgs,
		PersistentPreRunE: setupClient,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd, true)
		},
	}

	// CommandsCmd lists the catalogued commands
	CommandsCmd = &cobra.Command{
		Use:   "commands",
		Short: "List all known commands with their arity and result type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printCommands(cmd.OutOrStdout())
		},
	}
)

func init() {
	util.SetupClientFlags(ExecCmd)
	util.SetupClientFlags(PipelineCmd)
	util.SetupClientFlags(MultiCmd)
}

// setupClient creates the client for the command
func setupClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	c, err := util.NewClient()
	if err != nil {
		return err
	}
	rpcClient = c
	return nil
}

func runExec(cmd *cobra.Command, args []string) error {
	command, err := parseCommand(args)
	if err != nil {
		return err
	}

	resp, err := rpcClient.Do(command.Name()).Args(toAny(command.Args())...).Send(cmd.Context())
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp.Result)
}

func runBatch(cmd *cobra.Command, atomic bool) error {
	cmds, err := readCommands(os.Stdin)
	if err != nil {
		return err
	}

	var resps []common.Response
	if atomic {
		resps, err = rpcClient.Transaction().AddCommands(cmds).Send(cmd.Context())
	} else {
		resps, err = rpcClient.Pipeline().AddCommands(cmds).Send(cmd.Context())
	}
	if err != nil {
		return err
	}

	for _, resp := range resps {
		if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
			return err
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// parseCommand builds a command from command line arguments. The arity of
// catalogued commands is checked, unknown commands are sent as they are.
func parseCommand(args []string) (common.Command, error) {
	name := strings.ToUpper(args[0])
	if err := client.CheckArity(name, len(args)-1); err != nil {
		return common.Command{}, err
	}

	command := common.NewCommand(name)
	if err := command.AppendAll(toAny(args[1:])...); err != nil {
		return common.Command{}, err
	}
	return command, nil
}

// readCommands reads one command per line
func readCommands(r io.Reader) ([]client.Commander, error) {
	var cmds []client.Commander

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		command, err := parseCommand(strings.Fields(text))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		cmds = append(cmds, command)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read commands: %w", err)
	}
	return cmds, nil
}

func toAny[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func printJSON(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printCommands(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tARITY\tRESULT")
	for _, info := range client.Commands() {
		arity := fmt.Sprintf("%d", info.Arity)
		if info.Variadic {
			arity += "+"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, arity, info.Output)
	}
	return tw.Flush()
}
