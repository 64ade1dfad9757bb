package commands

import (
	"context"
	"fmt"
	"log/slog"
	"mangabuff-tracker/internal/components/telemetry"
	"mangabuff-tracker/internal/config"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const serviceName = "mbtracker"

var (
	configPath *string
	verbose    *bool
	dumpHttp   *string
)

// state shared by the subcommands, set up by the root command before they run.
var (
	cfg      config.Config
	tel      telemetry.API
	otelDone telemetry.Telemetry
)

var rootCmd = &cobra.Command{
	Use:   "mbtracker",
	Short: "mbtracker looks up cards and their lots on the MangaBuff market.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*verbose)

		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}

		otelDone, err = telemetry.Setup(cmd.Context(), serviceName, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		tel = telemetry.SlogAPI{}
		if otelDone.MeterProvider != nil {
			tel, err = telemetry.NewOtelAPI(tel)
			if err != nil {
				return fmt.Errorf("setup telemetry: %w", err)
			}
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "mbtracker.json5", "The config file, a sibling <name>.local.json5 overrides it.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug reports.")
	dumpHttp = rootCmd.PersistentFlags().String("dump-http", "", "Write every HTTP exchange to this directory.")
}

// shutdownTelemetry flushes whatever the otel providers still buffer.
var shutdownTelemetry = func() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	err := otelDone.Shutdown(ctx)
	if err != nil {
		slog.Warn("failed to shutdown telemetry", "err", err)
	}
}

// execute runs the command tree, telemetry is shut down whether the command
// succeeded or not.
func execute(ctx context.Context) error {
	defer shutdownTelemetry()
	return rootCmd.ExecuteContext(ctx)
}

func ExecuteContext(ctx context.Context) {
	if err := execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
