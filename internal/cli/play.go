package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/spf13/cobra"

	"verbiverse-quiz/internal/app"
	"verbiverse-quiz/internal/config"
	"verbiverse-quiz/internal/infra/wallet"
	"verbiverse-quiz/internal/tui"
)

// NewPlayCmd runs the quiz in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Take a quiz in the terminal",
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

			model := tui.NewModel(ctx, d.service, w)
			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "wallet address (defaults to the RPC wallet, then wallet.address)")
	return cmd
}

// connectWallet returns a connected wallet. An explicit address or a config without an
// RPC endpoint gives a static wallet; otherwise the node's first account is used.
func connectWallet(ctx context.Context, cfg config.Config, address string) (app.WalletProvider, func(), error) {
	if address == "" && cfg.Ledger.RPCURL != "" {
		client, err := rpc.DialContext(ctx, cfg.Ledger.RPCURL)
		if err != nil {
			return nil, nil, fmt.Errorf("dial wallet rpc: %w", err)
		}
		w := wallet.NewRPCWallet(client, cfg.Ledger.ChainID)
		if err := w.Connect(ctx); err != nil {
			client.Close()
			return nil, nil, err
		}
		return w, client.Close, nil
	}

	if address == "" {
		address = cfg.Wallet.Address
	}
	w := wallet.NewStatic(address, cfg.Ledger.ChainID, cfg.Ledger.ChainID)
	if err := w.Connect(ctx); err != nil {
		return nil, nil, err
	}
	return w, func() {}, nil
}
