package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallyledger/tally/internal/cli"
	"github.com/tallyledger/tally/internal/model"
)

func listCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger transactions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			snapshot := a.store.Snapshot()
			if len(snapshot) == 0 {
				fmt.Println(cli.SubtleStyle.Render("Ledger is empty; run `tally sync` first"))
				return nil
			}
			if limit > 0 && len(snapshot) > limit {
				snapshot = snapshot[:limit]
			}

			fmt.Println(cli.TableHeaderStyle.Render(fmt.Sprintf("%-12s %-26s %-30s %-12s %10s", "Date", "ID", "Label", "Icon", "Amount")))
			for _, txn := range snapshot {
				fmt.Printf("%-12s %-26s %-30s %-12s %s%s\n",
					formatDate(txn),
					txn.ID,
					truncateLabel(txn.Label, 30),
					txn.Icon,
					renderAmount(txn),
					unconfirmedMark(txn))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum transactions to show (0 for all)")

	return cmd
}

func formatDate(txn model.Transaction) string {
	if txn.Date == nil {
		return "undated"
	}
	return txn.Date.Format("2006-01-02")
}

func renderAmount(txn model.Transaction) string {
	text := fmt.Sprintf("%10s", txn.Amount.StringFixed(2))
	if txn.IsExpense() {
		return cli.AmountExpenseStyle.Render(text)
	}
	return cli.AmountIncomeStyle.Render(text)
}

func unconfirmedMark(txn model.Transaction) string {
	if txn.Confirmed {
		return ""
	}
	return cli.WarningStyle.Render(" *local")
}

func truncateLabel(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
