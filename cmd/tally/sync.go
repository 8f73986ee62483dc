package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/tallyledger/tally/internal/cli"
	"github.com/tallyledger/tally/internal/ledger"
)

func syncCmd() *cobra.Command {
	var (
		reset bool
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch transaction pages from both remote sources",
		Long: `Fetch the next page from the manual-expense and message-derived
collections, merge them into the ledger, and update the offline snapshot.
With --all, pages are fetched until both sources are exhausted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, cleanup, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if a.remote == nil {
				return fmt.Errorf("remote store is not configured (set remote.base_url)")
			}

			loader := ledger.NewLoader(a.store, a.remote)

			bar := progressbar.NewOptions(-1,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("Syncing ledger..."),
				progressbar.OptionSpinnerType(14),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)

			added := 0
			partial := false
			first := true
			for {
				result, err := loader.LoadPage(ctx, reset && first)
				if err != nil {
					_ = bar.Finish()
					return err
				}
				first = false
				added += result.Added
				partial = partial || result.Partial
				_ = bar.Add(result.Added)

				if !all || !result.HasMore {
					break
				}
			}
			_ = bar.Finish()

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Merged %d new transactions (%d total)", added, a.store.Len())))
			if partial {
				fmt.Println(cli.WarningStyle.Render("One source was unreachable; merged what was available"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "reload from the start instead of continuing pagination")
	cmd.Flags().BoolVar(&all, "all", false, "keep fetching pages until both sources are exhausted")

	return cmd
}
