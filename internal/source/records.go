// Package source maps raw records from the two remote collections into the
// canonical transaction model.
package source

import (
	"time"

	"github.com/shopspring/decimal"
)

// ManualRecord is the wire shape of a manually entered expense.
type ManualRecord struct {
	Date   *time.Time      `json:"date"`
	ID     string          `json:"id"`
	Label  string          `json:"label"`
	Icon   string          `json:"icon"`
	Amount decimal.Decimal `json:"amount"`
}

// MessageRecord is the wire shape of a transaction parsed from an incoming
// message. Its fields are free text extracted upstream; none of them are
// guaranteed, including the sign of Amount.
type MessageRecord struct {
	ReceivedAt  *time.Time      `json:"received_at"`
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Type        string          `json:"type"`
	Subject     string          `json:"subject"`
	Amount      decimal.Decimal `json:"amount"`
}
