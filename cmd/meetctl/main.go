// Command meetctl is the operator CLI for the meeting agent service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-agent/pkg/config"
)

// commandDeps are shared by every subcommand and swapped in tests
type commandDeps struct {
	LoadConfig func() (*config.Config, error)
	Logger     *zap.Logger
}

func defaultDeps() *commandDeps {
	logger, err := zap.NewDevelopment()
	if err != nil {
		logger = zap.NewNop()
	}
	return &commandDeps{LoadConfig: config.Load, Logger: logger}
}

func newRootCommand(deps *commandDeps) *cobra.Command {
	root := &cobra.Command{
		Use:           "meetctl",
		Short:         "Operate the meeting agent service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCommand(deps),
		newReplayCommand(deps),
		newTokenCommand(deps),
		newSeedCommand(deps),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := defaultDeps()
	defer deps.Logger.Sync()

	if err := newRootCommand(deps).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
