package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewAdminCmd groups contract owner operations.
func NewAdminCmd(configPath *string) *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Inspect or update the questions root hash on the contract",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "root",
		Short: "Print the published questions root hash",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := loadDeps(ctx, *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			root, err := d.service.QuestionsRoot(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), root)
			return nil
		},
	})

	setRoot := &cobra.Command{
		Use:   "set-root <hash>",
		Short: "Publish a new questions root hash (contract owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := loadDeps(ctx, *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			w, closeWallet, err := connectWallet(ctx, d.cfg, address)
			if err != nil {
				return err
			}
			defer closeWallet()

			tx, err := d.service.SetQuestionsRoot(ctx, w, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "questions root updated, tx %s\n", tx)
			return nil
		},
	}
	setRoot.Flags().StringVar(&address, "address", "", "owner address (defaults to the RPC wallet)")
	cmd.AddCommand(setRoot)
	return cmd
}
