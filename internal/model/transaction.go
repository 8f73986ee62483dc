package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies the origin system a transaction was mapped from.
type Source string

const (
	// SourceManual represents transactions entered by hand.
	SourceManual Source = "manual"
	// SourceMessage represents transactions derived from parsed incoming messages.
	SourceMessage Source = "message"
)

// MessageIDPrefix namespaces message-derived ids so they can never collide
// with manual-entry ids.
const MessageIDPrefix = "mp_"

// Transaction is the canonical record shape every source maps into.
// Amount is signed: negative is an expense, positive is income. The sign is
// fixed at mapping time per source-specific rules and never re-derived.
type Transaction struct {
	Date      *time.Time      `json:"date"` // nil means undated
	ID        string          `json:"id"`
	Source    Source          `json:"source"`
	Icon      string          `json:"icon"`
	Label     string          `json:"label"`
	Amount    decimal.Decimal `json:"amount"`
	Confirmed bool            `json:"confirmed"` // false marks a local-fallback record the remote store never acknowledged
}

// IsExpense reports whether the transaction represents money going out.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// SortKey returns the timestamp used for ledger ordering. Undated
// transactions sort as time zero, i.e. older than everything dated.
func (t Transaction) SortKey() time.Time {
	if t.Date == nil {
		return time.Time{}
	}
	return *t.Date
}
