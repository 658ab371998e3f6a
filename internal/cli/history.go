package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"verbiverse-quiz/internal/domain"
	"verbiverse-quiz/internal/infra/wallet"
)

// NewHistoryCmd lists saved and on-chain results for an address.
func NewHistoryCmd(configPath *string) *cobra.Command {
	var address string
	var onChain bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show completed quizzes for a wallet address",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := loadDeps(ctx, *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			if address == "" {
				address = d.cfg.Wallet.Address
			}
			address = wallet.NewStatic(address, 0, 0).Address()
			out := cmd.OutOrStdout()

			if onChain {
				subs, err := d.service.LedgerHistory(ctx, address)
				if errors.Is(err, domain.ErrLedgerUnavailable) {
					return fmt.Errorf("on-chain history needs ledger.rpc_url: %w", err)
				}
				if err != nil {
					return err
				}
				return printSubmissions(out, subs)
			}

			snap, err := d.service.Snapshot(ctx, address)
			if err != nil {
				return err
			}
			sessions, err := d.service.History(ctx, address)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %d quizzes, %d completed, average %.1f%%, streak %d\n\n",
				address, snap.Stats.TotalQuizzes, snap.Stats.CompletedQuizzes, snap.Stats.AverageScore, snap.Stats.StreakDays)
			return printSessions(out, sessions)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "wallet address (defaults to wallet.address)")
	cmd.Flags().BoolVar(&onChain, "chain", false, "read submissions from the contract instead of local history")
	return cmd
}

func printSessions(out io.Writer, sessions []domain.QuizSession) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tPAIR\tBATCH\tSCORE\tTIME")
	for _, s := range sessions {
		score := 0
		if s.Score != nil {
			score = *s.Score
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d%%\t%.1fs\n",
			s.StartTime.Local().Format("2006-01-02 15:04"), s.LanguagePair, s.BatchID, score, float64(s.TotalTimeSpent())/1000)
	}
	return tw.Flush()
}

func printSubmissions(out io.Writer, subs []domain.Submission) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tBATCH\tSCORE")
	for _, s := range subs {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d%%\n", s.ID, s.Timestamp.Local().Format("2006-01-02 15:04"), s.BatchID, s.Score)
	}
	return tw.Flush()
}
