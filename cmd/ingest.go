package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aegis/bootstrap"
	"aegis/ingest"
)

// newIngestCmd creates the command that loads raw alert files into the
// alert backlog.
func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Ingest raw alert files",
		Long: `Parse, validate and normalize raw JSON alert files and store the
resulting alerts in the backlog for the next worker round. Each file holds
one raw alert payload. Invalid payloads are skipped with an error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			app, err := bootstrap.NewApp(ctx)
			if err != nil {
				return err
			}
			defer app.Shutdown(ctx)

			normalizer := ingest.NewNormalizer(app.Sugar)

			payloads := make([][]byte, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				payloads = append(payloads, data)
			}

			alerts := normalizer.NormalizeBatch(payloads)
			for _, alert := range alerts {
				if err := app.Cases.SaveAlert(ctx, alert); err != nil {
					return fmt.Errorf("failed to store alert %s: %w", alert.AlertUUID, err)
				}
				app.Sugar.Infow("Alert stored",
					"alert_uuid", alert.AlertUUID,
					"name", alert.Name,
					"source", alert.Source)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d of %d alerts\n", len(alerts), len(payloads))
			return nil
		},
	}
}
