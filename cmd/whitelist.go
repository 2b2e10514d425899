package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"aegis/bootstrap"
	"aegis/core"
)

// newWhitelistCmd creates the whitelist management command
func newWhitelistCmd() *cobra.Command {
	whitelistCmd := &cobra.Command{
		Use:   "whitelist",
		Short: "Manage indicator whitelists",
		Long: `Manage the per-category indicator whitelists consulted before
playbook dispatch. Requires the Redis whitelist backend to be enabled.`,
	}

	whitelistCmd.AddCommand(newWhitelistSetCmd())
	whitelistCmd.AddCommand(newWhitelistShowCmd())

	return whitelistCmd
}

// parseCategory validates the category argument
func parseCategory(arg string) (core.IndicatorCategory, error) {
	category := core.IndicatorCategory(arg)
	if !category.IsValid() {
		return "", fmt.Errorf("unknown indicator category %q (valid: %v)", arg, core.AllIndicatorCategories)
	}
	return category, nil
}

func newWhitelistSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <category> <entry>...",
		Short: "Replace the whitelist of one category",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategory(args[0])
			if err != nil {
				return err
			}

			ctx := context.Background()
			app, err := bootstrap.NewApp(ctx)
			if err != nil {
				return err
			}
			defer app.Shutdown(ctx)

			if app.WhitelistCache == nil {
				return fmt.Errorf("whitelist Redis backend is not enabled")
			}

			if err := app.WhitelistCache.SetEntries(ctx, category, args[1:]); err != nil {
				return fmt.Errorf("failed to set whitelist for %s: %w", category, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Whitelist for %s updated (%d entries)\n", category, len(args[1:]))
			return nil
		},
	}
}

func newWhitelistShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <category>",
		Short: "Show the whitelist of one category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategory(args[0])
			if err != nil {
				return err
			}

			ctx := context.Background()
			app, err := bootstrap.NewApp(ctx)
			if err != nil {
				return err
			}
			defer app.Shutdown(ctx)

			if app.WhitelistCache == nil {
				return fmt.Errorf("whitelist Redis backend is not enabled")
			}

			entries, err := app.WhitelistCache.Entries(ctx, category)
			if err != nil {
				return fmt.Errorf("failed to load whitelist for %s: %w", category, err)
			}
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Whitelist for %s is empty\n", category)
				return nil
			}
			for _, entry := range entries {
				fmt.Fprintln(cmd.OutOrStdout(), entry)
			}
			return nil
		},
	}
}
