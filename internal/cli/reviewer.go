package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tallyledger/tally/internal/model"
	"github.com/tallyledger/tally/internal/receipt"
)

// Reviewer drives the interactive review of staged receipt items. All edits
// happen in place against the session; nothing touches the network until the
// user commits.
type Reviewer struct {
	reader *NonBlockingReader
	writer io.Writer
}

// NewReviewer creates a reviewer reading commands from r and writing to w.
func NewReviewer(r io.Reader, w io.Writer) *Reviewer {
	return &Reviewer{
		reader: NewNonBlockingReader(r),
		writer: w,
	}
}

// Review loops until the user commits or cancels. It returns true when the
// user chose to commit the staged items.
func (r *Reviewer) Review(ctx context.Context, session *receipt.Session) (bool, error) {
	for {
		r.renderItems(session.Items())
		fmt.Fprintln(r.writer, SubtleStyle.Render("commands: c=commit  e <n>=edit  d <n>=drop  q=cancel"))
		fmt.Fprint(r.writer, PromptStyle.Render("> "))

		line, err := r.reader.ReadLine(ctx)
		if err != nil {
			return false, err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "c":
			return true, nil
		case "q":
			return false, nil
		case "e":
			if err := r.editItem(ctx, session, fields); err != nil {
				fmt.Fprintln(r.writer, ErrorStyle.Render(err.Error()))
			}
		case "d":
			index, err := parseIndex(fields)
			if err == nil {
				err = session.RemoveItem(index)
			}
			if err != nil {
				fmt.Fprintln(r.writer, ErrorStyle.Render(err.Error()))
			}
		default:
			fmt.Fprintln(r.writer, ErrorStyle.Render("unknown command: "+fields[0]))
		}
	}
}

func (r *Reviewer) renderItems(items []model.PendingItem) {
	fmt.Fprintln(r.writer, TitleStyle.Render("Staged receipt items"))
	fmt.Fprintln(r.writer, TableHeaderStyle.Render(fmt.Sprintf("%-3s %-30s %-16s %10s", "#", "Description", "Category", "Price")))
	for i, item := range items {
		fmt.Fprintf(r.writer, "%-3d %-30s %-16s %s\n",
			i+1,
			truncate(item.Description, 30),
			item.Category,
			AmountExpenseStyle.Render(fmt.Sprintf("%10s", item.Price.StringFixed(2))))
	}
}

// editItem re-prompts for each field; an empty answer keeps the current
// value.
func (r *Reviewer) editItem(ctx context.Context, session *receipt.Session, fields []string) error {
	index, err := parseIndex(fields)
	if err != nil {
		return err
	}
	items := session.Items()
	if index < 0 || index >= len(items) {
		return fmt.Errorf("no staged item %d", index+1)
	}
	current := items[index]

	description, err := r.prompt(ctx, fmt.Sprintf("description [%s]: ", current.Description))
	if err != nil {
		return err
	}
	if description == "" {
		description = current.Description
	}

	category, err := r.prompt(ctx, fmt.Sprintf("category [%s]: ", current.Category))
	if err != nil {
		return err
	}
	if category == "" {
		category = current.Category
	}

	priceText, err := r.prompt(ctx, fmt.Sprintf("price [%s]: ", current.Price.StringFixed(2)))
	if err != nil {
		return err
	}
	price := current.Price
	if priceText != "" {
		price, err = decimal.NewFromString(priceText)
		if err != nil {
			return fmt.Errorf("invalid price %q", priceText)
		}
	}

	return session.UpdateItem(index, description, category, price)
}

func (r *Reviewer) prompt(ctx context.Context, label string) (string, error) {
	fmt.Fprint(r.writer, PromptStyle.Render(label))
	line, err := r.reader.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// parseIndex converts the 1-based item number in a command to a 0-based
// index.
func parseIndex(fields []string) (int, error) {
	if len(fields) < 2 {
		return 0, fmt.Errorf("item number required")
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid item number %q", fields[1])
	}
	return n - 1, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
