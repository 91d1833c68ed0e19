package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/MrJamesThe3rd/titledeed/internal/config"
)

const programName = "ledgerctl"

var globalFlags = struct {
	debug bool
}{}

func slogPrintf(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...), "component", programName)
}

func commonRun() (*config.Config, *slog.Logger) {
	level := slog.LevelInfo
	if globalFlags.debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if _, err := maxprocs.Set(maxprocs.Logger(slogPrintf)); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	return cfg, logger
}

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          programName,
		Short:        "Operator tooling for ledger actions, audit and reconciliation",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")

	rootCmd.AddCommand(
		migrateCommand(),
		reconcileCommand(),
		pendingCommand(),
		auditCommand(),
		receiptCommand(),
		tokenCommand(),
		importCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
