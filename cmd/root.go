package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ValentinKolb/restkv/cmd/exec"
	"github.com/ValentinKolb/restkv/cmd/kv"
	"github.com/ValentinKolb/restkv/cmd/lock"
	"github.com/ValentinKolb/restkv/cmd/util"
	"github.com/ValentinKolb/restkv/rpc/common"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (
	shutdownTracing = func(context.Context) error { return nil }

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "restkv",
		Short: "client for Redis-compatible stores with a REST API",
		Long: fmt.Sprintf(`restkv (v%s)

A client for Redis-compatible key-value stores that are reached over HTTP
(e.g. Upstash). Commands are sent one by one, as pipeline or as transaction.`, Version),
		SilenceUsage:       true,
		PersistentPreRunE:  setup,
		PersistentPostRunE: teardown,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of restkv",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("restkv v%s\n", Version)
		},
	}
)

func init() {
	// Run the hooks of the root command and of the command groups
	cobra.EnableTraverseRunHooks = true

	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(lock.LockCommands)
	RootCmd.AddCommand(exec.ExecCmd)
	RootCmd.AddCommand(exec.PipelineCmd)
	RootCmd.AddCommand(exec.MultiCmd)
	RootCmd.AddCommand(exec.CommandsCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "log-level"
	RootCmd.PersistentFlags().String(key, "", util.WrapString("log level (debug, info, warn, error), default: $RESTKV_LOG_LEVEL or info"))
	key = "metrics"
	RootCmd.PersistentFlags().Bool(key, false, util.WrapString("print the request metrics (Prometheus format) to stderr after the command"))
	key = "otel-endpoint"
	RootCmd.PersistentFlags().String(key, "", util.WrapString("OTLP/HTTP endpoint to export request traces to (disabled if empty)"))
}

// setup configures logging and tracing for every command
func setup(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	conf, err := util.GetClientConfig()
	if err != nil {
		return err
	}
	if err := common.InitLoggers(conf.LogLevel); err != nil {
		return err
	}

	shutdown, err := util.SetupTracing(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	shutdownTracing = shutdown
	return nil
}

// teardown flushes traces and prints metrics
func teardown(_ *cobra.Command, _ []string) error {
	util.WriteMetrics()
	return shutdownTracing(context.Background())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
