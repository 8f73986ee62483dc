// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/tallyledger/tally/internal/model"
	"github.com/tallyledger/tally/internal/source"
)

// RetryOptions configures retry behavior for remote operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// LedgerSource reads pages from the two remote collections the ledger is
// merged from. Both are ordered reverse-chronologically server-side.
type LedgerSource interface {
	ListExpenses(ctx context.Context, offset, count int) ([]source.ManualRecord, error)
	ListMessages(ctx context.Context, offset, count int) ([]source.MessageRecord, error)
}

// LedgerWriter mutates the remote collections. Inserts return the persisted
// record carrying the canonical id and timestamp assigned by the store.
type LedgerWriter interface {
	InsertExpense(ctx context.Context, rec source.ManualRecord) (source.ManualRecord, error)
	InsertExpenses(ctx context.Context, recs []source.ManualRecord) ([]source.ManualRecord, error)
	DeleteExpense(ctx context.Context, id string) error
	DeleteMessage(ctx context.Context, id string) error
}

// SettingsStore holds the single per-user secret: the OCR credential.
type SettingsStore interface {
	GetCredential(ctx context.Context) (string, error)
	SetCredential(ctx context.Context, credential string) error
	ClearCredential(ctx context.Context) error
}

// KVStore is durable local key-value storage, used for the ledger snapshot
// cache and the credential cache. Get returns a nil value for missing keys.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Extraction is the parsed result of one OCR call.
type Extraction struct {
	Date  string // as reported by the provider, may be empty
	Items []model.PendingItem
}

// Extractor turns a receipt image into staged candidate items.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (Extraction, error)
}
