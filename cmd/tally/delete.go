package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallyledger/tally/internal/cli"
)

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction by id",
		Long: `Delete a transaction. The local ledger and offline snapshot are updated
immediately; the remote delete is best-effort and never rolled back.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, cleanup, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := deleteTransaction(ctx, a, args[0]); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render("Deleted " + args[0]))
			return nil
		},
	}
}
