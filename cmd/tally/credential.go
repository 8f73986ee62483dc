package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallyledger/tally/internal/cli"
	"github.com/tallyledger/tally/internal/storage"
)

func credentialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage the OCR credential",
	}

	cmd.AddCommand(credentialSetCmd())
	cmd.AddCommand(credentialClearCmd())

	return cmd
}

func credentialSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <value>",
		Short: "Store the OCR credential",
		Long: `Store the OCR credential in the remote settings store and mirror it into
the local cache so receipt scanning works offline from remote settings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, cleanup, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if a.remote != nil {
				if err := a.remote.SetCredential(ctx, args[0]); err != nil {
					fmt.Println(cli.WarningStyle.Render("Remote settings store unreachable; credential cached locally only"))
				}
			}
			if err := a.kv.Set(ctx, storage.KeyOCRCredential, []byte(args[0])); err != nil {
				return fmt.Errorf("failed to cache credential: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render("OCR credential stored"))
			return nil
		},
	}
}

func credentialClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the OCR credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, cleanup, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if a.remote != nil {
				if err := a.remote.ClearCredential(ctx); err != nil {
					fmt.Println(cli.WarningStyle.Render("Remote settings store unreachable; cleared locally only"))
				}
			}
			if err := a.kv.Delete(ctx, storage.KeyOCRCredential); err != nil {
				return fmt.Errorf("failed to clear cached credential: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render("OCR credential cleared"))
			return nil
		},
	}
}
