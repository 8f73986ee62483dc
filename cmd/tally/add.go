package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallyledger/tally/internal/cli"
	"github.com/tallyledger/tally/internal/source"
)

func addCmd() *cobra.Command {
	var (
		label    string
		amount   string
		icon     string
		dateText string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a manual transaction",
		Long: `Add a manually entered transaction to the ledger. Amounts are signed:
negative for expenses, positive for income.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if label == "" {
				return fmt.Errorf("--label is required")
			}
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			if value.IsZero() {
				return fmt.Errorf("amount cannot be zero")
			}

			rec := source.ManualRecord{
				Label:  label,
				Icon:   icon,
				Amount: value,
			}
			if dateText != "" {
				parsed, err := time.ParseInLocation("2006-01-02", dateText, time.Local)
				if err != nil {
					return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", dateText)
				}
				rec.Date = &parsed
			} else {
				now := time.Now()
				rec.Date = &now
			}

			a, cleanup, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			txn, fallback, err := insertManual(ctx, a, rec)
			if err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Added %s (%s)", txn.Label, txn.Amount.StringFixed(2))))
			if fallback {
				fmt.Println(cli.WarningStyle.Render("Remote store unreachable; saved locally as " + txn.ID))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "display text for the transaction")
	cmd.Flags().StringVar(&amount, "amount", "", "signed amount (negative = expense)")
	cmd.Flags().StringVar(&icon, "icon", "", "icon tag (defaults to the receipt icon)")
	cmd.Flags().StringVar(&dateText, "date", "", "transaction date as YYYY-MM-DD (defaults to now)")
	_ = cmd.MarkFlagRequired("label")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}
