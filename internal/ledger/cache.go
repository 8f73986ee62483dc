package ledger

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tallyledger/tally/internal/model"
	"github.com/tallyledger/tally/internal/service"
	"github.com/tallyledger/tally/internal/storage"
)

// SnapshotCache persists the entire ledger as one JSON blob under a single
// key. There are no partial writes and no merging with prior cache content;
// every save overwrites the previous snapshot.
type SnapshotCache struct {
	kv     service.KVStore
	logger *slog.Logger
}

// NewSnapshotCache wraps a key-value store for ledger snapshots.
func NewSnapshotCache(kv service.KVStore) *SnapshotCache {
	return &SnapshotCache{
		kv:     kv,
		logger: slog.Default().With("component", "cache"),
	}
}

// Load returns the last persisted snapshot. Absent or malformed data is
// treated as no snapshot at all.
func (c *SnapshotCache) Load(ctx context.Context) []model.Transaction {
	raw, err := c.kv.Get(ctx, storage.KeyLedgerSnapshot)
	if err != nil {
		c.logger.Warn("Failed to read ledger snapshot", "error", err)
		return nil
	}
	if raw == nil {
		return nil
	}

	var snapshot []model.Transaction
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		c.logger.Warn("Discarding malformed ledger snapshot", "error", err)
		return nil
	}
	return snapshot
}

// Save overwrites the persisted snapshot with the given ledger contents.
func (c *SnapshotCache) Save(ctx context.Context, snapshot []model.Transaction) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, storage.KeyLedgerSnapshot, raw)
}
