package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"verbiverse-quiz/internal/domain"
	"verbiverse-quiz/internal/infra/ipfs"
	pgstore "verbiverse-quiz/internal/infra/postgres"
)

// NewBatchCmd prints a batch, or imports a batch file into Postgres.
func NewBatchCmd(configPath *string) *cobra.Command {
	var importPath string
	cmd := &cobra.Command{
		Use:   "batch [id]",
		Short: "Show a question batch or import one into Postgres",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := loadDeps(ctx, *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			if importPath != "" {
				if len(args) != 1 {
					return fmt.Errorf("batch --import needs a batch id")
				}
				id, err := parseBatchID(args[0], d.cfg.Quiz.TotalBatches)
				if err != nil {
					return err
				}
				if d.pool == nil {
					return fmt.Errorf("batch --import requires postgres.url with store or source set to postgres")
				}
				raw, err := os.ReadFile(importPath)
				if err != nil {
					return err
				}
				batch, err := ipfs.DecodeBatch(raw, id)
				if err != nil {
					return err
				}
				if err := pgstore.NewBatchLoader(d.pool).SaveBatch(ctx, batch); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported batch %d (%d questions)\n", batch.BatchID, len(batch.Questions))
				return nil
			}

			id := 1
			if len(args) == 1 {
				if id, err = parseBatchID(args[0], d.cfg.Quiz.TotalBatches); err != nil {
					return err
				}
			}
			batch, err := d.service.Batch(ctx, id)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(batch)
		},
	}
	cmd.Flags().StringVar(&importPath, "import", "", "path of a batch JSON file to store in Postgres")
	return cmd
}

func parseBatchID(raw string, total int) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("batch id %q: %w", raw, err)
	}
	if id < 1 || id > total {
		return 0, fmt.Errorf("%w: %d", domain.ErrBatchOutOfRange, id)
	}
	return id, nil
}
