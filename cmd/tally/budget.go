package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallyledger/tally/internal/cli"
	"github.com/tallyledger/tally/internal/model"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage per-category monthly budgets",
	}

	cmd.AddCommand(budgetSetCmd())
	cmd.AddCommand(budgetRemoveCmd())
	cmd.AddCommand(budgetStatusCmd())

	return cmd
}

func budgetSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <category> <limit>",
		Short: "Set the monthly limit for a category",
		Long: `Set a monthly spending limit for one category, replacing any existing
limit. Valid categories: ` + fmt.Sprint(model.CategoryIDs()),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			limit, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid limit %q: %w", args[1], err)
			}

			a, cleanup, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.tracker.Set(ctx, args[0], limit); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Budget for %s set to %s/month", args[0], limit.StringFixed(2))))
			return nil
		},
	}
}

func budgetRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <category>",
		Short: "Remove the budget for a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, cleanup, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			a.tracker.Remove(ctx, args[0])
			fmt.Println(cli.SuccessStyle.Render("Budget removed for " + args[0]))
			return nil
		},
	}
}

func budgetStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current-month progress against every budget",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			statuses := a.tracker.Progress(a.store.Snapshot(), time.Now())
			if len(statuses) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No budgets set; use `tally budget set <category> <limit>`"))
				return nil
			}

			fmt.Println(cli.TitleStyle.Render("Budgets, " + time.Now().Format("January 2006")))
			fmt.Println(cli.TableHeaderStyle.Render(fmt.Sprintf("%-16s %12s %12s %6s", "Category", "Spent", "Limit", "Used")))
			for _, status := range statuses {
				line := fmt.Sprintf("%-16s %12s %12s %5d%%",
					status.Budget.CategoryID,
					status.Spent.StringFixed(2),
					status.Budget.Limit.StringFixed(2),
					status.Percent)
				if status.OverBudget {
					line += cli.ErrorStyle.Render(fmt.Sprintf("  over by %s", status.OverAmount.StringFixed(2)))
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}
