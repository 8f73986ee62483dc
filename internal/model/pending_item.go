package model

import "github.com/shopspring/decimal"

// PendingItem is an OCR-extracted candidate expense staged for review. It is
// not part of the ledger until committed and is discarded after one
// capture/review/commit cycle regardless of outcome.
type PendingItem struct {
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Icon        string          `json:"icon"`
	Price       decimal.Decimal `json:"price"` // always positive; sign is forced at commit
}
