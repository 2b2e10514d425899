// Package cmd provides the command-line interface for the Aegis case worker.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"aegis/bootstrap"
)

// RegisterFunc lets callers attach their playbooks to the registry before
// the worker starts.
type RegisterFunc func(app *bootstrap.App) error

// NewRootCmd creates the root command with all subcommands.
func NewRootCmd(register RegisterFunc) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "aegis",
		Short: "Aegis security case worker",
		Long: `Aegis correlates security alerts into case files and walks each case
through the registered playbook chain, keeping a durable audit trail of
every stage.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newWorkerCmd(register))
	rootCmd.AddCommand(newRunCmd(register))
	rootCmd.AddCommand(newIngestCmd())
	rootCmd.AddCommand(newWhitelistCmd())

	return rootCmd
}

// initApp builds the application and registers the caller's playbooks
func initApp(ctx context.Context, register RegisterFunc) (*bootstrap.App, error) {
	app, err := bootstrap.NewApp(ctx)
	if err != nil {
		return nil, err
	}
	if register != nil {
		if err := register(app); err != nil {
			app.Shutdown(ctx)
			return nil, err
		}
	}
	if len(app.Registry.Names()) == 0 && len(app.Registry.AlertPlaybookNames()) == 0 {
		app.Sugar.Warn("No playbooks registered, worker rounds will not create or handle cases")
	}
	return app, nil
}

// newWorkerCmd creates the daemon command running rounds on an interval
func newWorkerCmd(register RegisterFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the case worker loop",
		Long:  "Run worker rounds on the configured interval until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			app, err := initApp(ctx, register)
			if err != nil {
				return err
			}
			defer app.Shutdown(context.Background())

			if err := app.RunLoop(ctx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}
}

// newRunCmd creates the single-round command
func newRunCmd(register RegisterFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run a single worker round",
		Long:  "Fetch open alerts, dispatch the resulting cases once and exit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			app, err := initApp(ctx, register)
			if err != nil {
				return err
			}
			defer app.Shutdown(context.Background())

			return app.RunOnce(ctx)
		},
	}
}
