// Package budget tracks per-category monthly spending limits and progress
// against the ledger.
package budget

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tallyledger/tally/internal/model"
	"github.com/tallyledger/tally/internal/service"
	"github.com/tallyledger/tally/internal/storage"
)

var oneHundred = decimal.NewFromInt(100)

// Status reports progress against one budget for the current calendar month.
// Percent is clamped to 100 for display; OverBudget comes from the unclamped
// comparison, so a displayed 100% does not by itself mean over budget.
type Status struct {
	Budget     model.Budget
	Spent      decimal.Decimal
	OverAmount decimal.Decimal
	Percent    int64
	OverBudget bool
}

// Tracker holds the active budgets. Budgets persist in the local key-value
// store independently of ledger reloads and cache rehydration.
type Tracker struct {
	kv      service.KVStore
	logger  *slog.Logger
	budgets map[string]model.Budget
	mu      sync.Mutex
}

// NewTracker creates a tracker persisting through the given store.
func NewTracker(kv service.KVStore) *Tracker {
	return &Tracker{
		kv:      kv,
		logger:  slog.Default().With("component", "budget"),
		budgets: make(map[string]model.Budget),
	}
}

// Load restores persisted budgets. Malformed stored data is discarded.
func (t *Tracker) Load(ctx context.Context) {
	raw, err := t.kv.Get(ctx, storage.KeyBudgets)
	if err != nil {
		t.logger.Warn("Failed to read budgets", "error", err)
		return
	}
	if raw == nil {
		return
	}

	var stored []model.Budget
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.logger.Warn("Discarding malformed budget data", "error", err)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.budgets = make(map[string]model.Budget, len(stored))
	for _, b := range stored {
		t.budgets[b.CategoryID] = b
	}
}

// Set upserts the monthly limit for a category, unconditionally replacing any
// prior limit. The limit must be positive and the category must exist in the
// catalog; validation failures reject before any mutation.
func (t *Tracker) Set(ctx context.Context, categoryID string, limit decimal.Decimal) error {
	if !model.KnownCategory(categoryID) {
		return fmt.Errorf("unknown category: %s", categoryID)
	}
	if !limit.IsPositive() {
		return fmt.Errorf("budget limit must be positive, got %s", limit)
	}

	t.mu.Lock()
	t.budgets[categoryID] = model.Budget{CategoryID: categoryID, Limit: limit}
	t.mu.Unlock()

	t.persist(ctx)
	return nil
}

// Remove deletes the budget for a category. Removing an absent budget is a
// no-op.
func (t *Tracker) Remove(ctx context.Context, categoryID string) {
	t.mu.Lock()
	_, ok := t.budgets[categoryID]
	delete(t.budgets, categoryID)
	t.mu.Unlock()

	if ok {
		t.persist(ctx)
	}
}

// Budgets returns the active budgets ordered by category id.
func (t *Tracker) Budgets() []model.Budget {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]model.Budget, 0, len(t.budgets))
	for _, b := range t.budgets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out
}

// Progress computes current-calendar-month progress for every budget against
// the given ledger snapshot.
func (t *Tracker) Progress(snapshot []model.Transaction, now time.Time) []Status {
	statuses := make([]Status, 0)
	for _, b := range t.Budgets() {
		spent := SpendFor(snapshot, now, model.IconForCategory(b.CategoryID))

		percent := int64(0)
		if spent.IsPositive() {
			percent = spent.Div(b.Limit).Mul(oneHundred).Round(0).IntPart()
			if percent > 100 {
				percent = 100
			}
		}

		status := Status{
			Budget:     b,
			Spent:      spent,
			OverAmount: decimal.Zero,
			Percent:    percent,
			OverBudget: spent.GreaterThan(b.Limit),
		}
		if status.OverBudget {
			status.OverAmount = spent.Sub(b.Limit)
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// SpendFor sums the absolute value of expense transactions in the current
// calendar month whose icon matches.
func SpendFor(snapshot []model.Transaction, now time.Time, icon string) decimal.Decimal {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)

	total := decimal.Zero
	for _, txn := range snapshot {
		if txn.Date == nil || !txn.Amount.IsNegative() || txn.Icon != icon {
			continue
		}
		if txn.Date.Before(start) || !txn.Date.Before(end) {
			continue
		}
		total = total.Add(txn.Amount.Abs())
	}
	return total
}

// persist rewrites the stored budget list. Like the ledger cache, writes are
// fire-and-forget.
func (t *Tracker) persist(ctx context.Context) {
	raw, err := json.Marshal(t.Budgets())
	if err != nil {
		t.logger.Warn("Failed to encode budgets", "error", err)
		return
	}
	if err := t.kv.Set(ctx, storage.KeyBudgets, raw); err != nil {
		t.logger.Warn("Failed to persist budgets", "error", err)
	}
}
