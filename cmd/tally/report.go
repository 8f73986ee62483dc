package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallyledger/tally/internal/analytics"
	"github.com/tallyledger/tally/internal/cli"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Derive analytics from the ledger",
		Long:  `Compute spending analytics from the current ledger snapshot.`,
	}

	cmd.AddCommand(reportTrendsCmd())
	cmd.AddCommand(reportMerchantsCmd())
	cmd.AddCommand(reportWeekdaysCmd())
	cmd.AddCommand(reportCategoriesCmd())

	return cmd
}

func reportTrendsCmd() *cobra.Command {
	var months int

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Monthly expense and income trends",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			snapshot := a.store.Snapshot()
			now := time.Now()

			fmt.Println(cli.TitleStyle.Render("Monthly trends"))
			fmt.Println(cli.TableHeaderStyle.Render(fmt.Sprintf("%-10s %12s %12s %8s", "Month", "Expenses", "Income", "Count")))
			for _, trend := range analytics.MonthlyTrends(snapshot, now, months) {
				fmt.Printf("%-10s %s %s %8d\n",
					trend.Month.Format("2006-01"),
					cli.AmountExpenseStyle.Render(fmt.Sprintf("%12s", trend.Expense.StringFixed(2))),
					cli.AmountIncomeStyle.Render(fmt.Sprintf("%12s", trend.Income.StringFixed(2))),
					trend.Count)
			}

			comparison := analytics.CompareMonths(snapshot, now)
			direction := "up"
			if comparison.Change.IsNegative() {
				direction = "down"
			}
			fmt.Printf("\nSpending is %s %s vs last month (%+d%%)\n",
				direction,
				comparison.Change.Abs().StringFixed(2),
				comparison.ChangePercent)
			return nil
		},
	}

	cmd.Flags().IntVar(&months, "months", 6, "number of trailing months, current included")

	return cmd
}

func reportMerchantsCmd() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "merchants",
		Short: "Rank merchants by total spend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			stats := analytics.TopMerchants(a.store.Snapshot(), top)

			fmt.Println(cli.TitleStyle.Render("Top merchants"))
			fmt.Println(cli.TableHeaderStyle.Render(fmt.Sprintf("%-30s %12s %7s %-12s", "Merchant", "Total", "Visits", "Last seen")))
			for _, stat := range stats {
				lastSeen := "undated"
				if !stat.LastSeen.IsZero() {
					lastSeen = stat.LastSeen.Format("2006-01-02")
				}
				fmt.Printf("%-30s %s %7d %-12s\n",
					truncateLabel(stat.Label, 30),
					cli.AmountExpenseStyle.Render(fmt.Sprintf("%12s", stat.Total.StringFixed(2))),
					stat.Count,
					lastSeen)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "number of merchants to show")

	return cmd
}

func reportWeekdaysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weekdays",
		Short: "Spending pattern by day of week",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			fmt.Println(cli.TitleStyle.Render("Day-of-week pattern"))
			fmt.Println(cli.TableHeaderStyle.Render(fmt.Sprintf("%-10s %12s %7s %12s", "Day", "Total", "Count", "Average")))
			for _, stat := range analytics.WeekdayPattern(a.store.Snapshot()) {
				fmt.Printf("%-10s %s %7d %12s\n",
					stat.Weekday.String(),
					cli.AmountExpenseStyle.Render(fmt.Sprintf("%12s", stat.Total.StringFixed(2))),
					stat.Count,
					stat.Average.StringFixed(2))
			}
			return nil
		},
	}
}

func reportCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Current-month expense breakdown by category icon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			now := time.Now()
			from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
			to := from.AddDate(0, 1, 0)

			fmt.Println(cli.TitleStyle.Render("Category breakdown, " + now.Format("January 2006")))
			fmt.Println(cli.TableHeaderStyle.Render(fmt.Sprintf("%-16s %12s %7s %6s", "Icon", "Total", "Count", "Share")))
			for _, stat := range analytics.CategoryBreakdown(a.store.Snapshot(), from, to) {
				fmt.Printf("%-16s %s %7d %5d%%\n",
					stat.Icon,
					cli.AmountExpenseStyle.Render(fmt.Sprintf("%12s", stat.Total.StringFixed(2))),
					stat.Count,
					stat.Percent)
			}
			return nil
		},
	}
}
