package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyledger/tally/internal/model"
	"github.com/tallyledger/tally/internal/storage"
)

func txnAt(id string, when time.Time, amount string) model.Transaction {
	return model.Transaction{
		ID:        id,
		Source:    model.SourceManual,
		Label:     id,
		Amount:    decimal.RequireFromString(amount),
		Date:      &when,
		Confirmed: true,
	}
}

func undatedTxn(id, amount string) model.Transaction {
	return model.Transaction{
		ID:     id,
		Source: model.SourceManual,
		Label:  id,
		Amount: decimal.RequireFromString(amount),
	}
}

func TestStore_MergeDeduplicatesByID(t *testing.T) {
	store := NewStore(nil)
	now := time.Now()

	added := store.Merge([]model.Transaction{
		txnAt("a", now, "-1"),
		txnAt("b", now, "-2"),
	})
	require.Equal(t, 2, added)

	// Second merge with an overlapping page only adds the new id.
	added = store.Merge([]model.Transaction{
		txnAt("b", now, "-2"),
		txnAt("c", now, "-3"),
	})
	assert.Equal(t, 1, added)
	assert.Equal(t, 3, store.Len())

	seen := make(map[string]bool)
	for _, txn := range store.Snapshot() {
		assert.False(t, seen[txn.ID], "duplicate id %s in ledger", txn.ID)
		seen[txn.ID] = true
	}
}

func TestStore_OrderingNewestFirstUndatedLast(t *testing.T) {
	store := NewStore(nil)
	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	store.Merge([]model.Transaction{
		undatedTxn("undated", "-1"),
		txnAt("old", base.AddDate(0, -1, 0), "-1"),
		txnAt("new", base, "-1"),
		txnAt("mid", base.AddDate(0, 0, -5), "-1"),
	})

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 4)
	assert.Equal(t, "new", snapshot[0].ID)
	assert.Equal(t, "mid", snapshot[1].ID)
	assert.Equal(t, "old", snapshot[2].ID)
	assert.Equal(t, "undated", snapshot[3].ID)

	for i := 1; i < len(snapshot); i++ {
		assert.False(t, snapshot[i].SortKey().After(snapshot[i-1].SortKey()),
			"ledger ordering must be non-increasing by timestamp")
	}
}

func TestStore_InsertRejectsDuplicateID(t *testing.T) {
	store := NewStore(nil)
	now := time.Now()

	require.NoError(t, store.Insert(txnAt("a", now, "-1")))
	err := store.Insert(txnAt("a", now, "-2"))
	require.Error(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestStore_RemoveAbsentID(t *testing.T) {
	store := NewStore(nil)
	assert.False(t, store.Remove("nope"))

	now := time.Now()
	require.NoError(t, store.Insert(txnAt("a", now, "-1")))
	assert.True(t, store.Remove("a"))
	assert.Equal(t, 0, store.Len())
}

func TestStore_WriteThroughCache(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	store := NewStore(NewSnapshotCache(kv))
	now := time.Now()

	require.NoError(t, store.Insert(txnAt("a", now, "-1")))
	store.Merge([]model.Transaction{txnAt("b", now, "-2")})
	store.Remove("a")

	// A fresh store hydrated from the same cache sees the final state.
	restored := NewStore(NewSnapshotCache(kv))
	assert.Equal(t, 1, restored.Hydrate(ctx))
	snapshot := restored.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "b", snapshot[0].ID)
	assert.Equal(t, "-2", snapshot[0].Amount.String())
}

func TestStore_HydrateMalformedSnapshot(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, storage.KeyLedgerSnapshot, []byte("{not json")))

	store := NewStore(NewSnapshotCache(kv))
	assert.Equal(t, 0, store.Hydrate(ctx))
	assert.Equal(t, 0, store.Len())
}

func TestStore_ResetPersistsEmptySnapshot(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	store := NewStore(NewSnapshotCache(kv))
	now := time.Now()

	store.Merge([]model.Transaction{txnAt("a", now, "-1"), txnAt("b", now, "-2")})
	store.Reset()
	require.Equal(t, 0, store.Len())

	restored := NewStore(NewSnapshotCache(kv))
	assert.Equal(t, 0, restored.Hydrate(ctx), "reset must clear the offline snapshot too")
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	store := NewStore(nil)
	now := time.Now()
	store.Merge([]model.Transaction{txnAt("a", now, "-1")})

	snapshot := store.Snapshot()
	snapshot[0].Label = "mutated"

	assert.Equal(t, "a", store.Snapshot()[0].Label)
}
