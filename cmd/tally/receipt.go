package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tallyledger/tally/internal/cli"
	"github.com/tallyledger/tally/internal/receipt"
	"github.com/tallyledger/tally/internal/service"
)

func receiptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipt",
		Short: "Scan receipts into reviewable expense items",
	}

	cmd.AddCommand(receiptScanCmd())

	return cmd
}

func receiptScanCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Extract line items from a receipt image and commit them",
		Long: `Send a receipt image to the OCR provider, stage the extracted line items
for review, and commit them to the ledger as expenses. Requires an OCR
credential (see ` + "`tally credential set`" + `).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, cleanup, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			image, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}
			mimeType, err := imageMIMEType(args[0])
			if err != nil {
				return err
			}

			var extractor service.Extractor
			if credential := resolveCredential(ctx, a); credential != "" {
				extractor, err = receipt.NewGeminiExtractor(viper.GetString("receipt.model"), credential)
				if err != nil {
					return err
				}
			}

			session := receipt.NewSession(extractor, a.remote, a.store)
			if err := session.Capture(image, mimeType); err != nil {
				return err
			}

			fmt.Println(cli.SubtleStyle.Render("Extracting items..."))
			if err := session.Extract(ctx); err != nil {
				return err
			}

			commit := yes
			if !yes {
				reviewer := cli.NewReviewer(os.Stdin, os.Stdout)
				commit, err = reviewer.Review(ctx, session)
				if err != nil {
					return err
				}
			}
			if !commit {
				fmt.Println(cli.SubtleStyle.Render("Discarded staged items"))
				return nil
			}

			result, err := session.Commit(ctx)
			if err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Committed %d items to the ledger", len(result.Committed))))
			if result.Fallback {
				fmt.Println(cli.WarningStyle.Render("Remote store unreachable; items saved locally only"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "commit extracted items without interactive review")

	return cmd
}

func imageMIMEType(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	case ".png":
		return "image/png", nil
	case ".webp":
		return "image/webp", nil
	case ".heic":
		return "image/heic", nil
	default:
		return "", fmt.Errorf("unsupported image type %q (expected jpg, png, webp, or heic)", filepath.Ext(path))
	}
}
