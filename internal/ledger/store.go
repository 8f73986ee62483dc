// Package ledger holds the merged, deduplicated, time-ordered transaction
// collection and the machinery that populates it.
package ledger

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/tallyledger/tally/internal/common"
	"github.com/tallyledger/tally/internal/model"
)

// Store is the in-memory ledger. Every mutation rewrites the full offline
// snapshot (write-through); snapshot write failures are logged and never
// rolled back.
type Store struct {
	cache  *SnapshotCache
	logger *slog.Logger
	ids    map[string]struct{}
	txns   []model.Transaction
	mu     sync.Mutex
}

// NewStore creates an empty ledger store. cache may be nil, in which case no
// snapshots are written.
func NewStore(cache *SnapshotCache) *Store {
	return &Store{
		cache:  cache,
		logger: slog.Default().With("component", "ledger"),
		ids:    make(map[string]struct{}),
	}
}

// Hydrate replaces the ledger contents with the last persisted snapshot.
// Malformed or absent cache data leaves the ledger empty. Returns the number
// of transactions restored.
func (s *Store) Hydrate(ctx context.Context) int {
	if s.cache == nil {
		return 0
	}

	snapshot := s.cache.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.txns = s.txns[:0]
	s.ids = make(map[string]struct{}, len(snapshot))
	for _, txn := range snapshot {
		if _, dup := s.ids[txn.ID]; dup {
			continue
		}
		s.ids[txn.ID] = struct{}{}
		s.txns = append(s.txns, txn)
	}
	s.sortLocked()

	return len(s.txns)
}

// Len returns the current number of ledger transactions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txns)
}

// Snapshot returns a copy of the ledger, newest first. Callers may not
// observe later mutations through it.
func (s *Store) Snapshot() []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Transaction, len(s.txns))
	copy(out, s.txns)
	return out
}

// Merge adds incoming transactions, dropping any whose id is already present,
// then re-sorts and persists. Returns the number actually added.
func (s *Store) Merge(incoming []model.Transaction) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, txn := range incoming {
		if _, dup := s.ids[txn.ID]; dup {
			continue
		}
		s.ids[txn.ID] = struct{}{}
		s.txns = append(s.txns, txn)
		added++
	}

	if added > 0 {
		s.sortLocked()
		s.persistLocked()
	}

	return added
}

// Insert adds a single transaction. Duplicate ids are rejected before any
// mutation.
func (s *Store) Insert(txn model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.ids[txn.ID]; dup {
		return common.ErrDuplicateID
	}

	s.ids[txn.ID] = struct{}{}
	s.txns = append(s.txns, txn)
	s.sortLocked()
	s.persistLocked()

	return nil
}

// Remove deletes a transaction by id. Returns false when the id is absent.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; !ok {
		return false
	}

	delete(s.ids, id)
	for i, txn := range s.txns {
		if txn.ID == id {
			s.txns = append(s.txns[:i], s.txns[i+1:]...)
			break
		}
	}
	s.persistLocked()

	return true
}

// Get returns the transaction with the given id.
func (s *Store) Get(id string) (model.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; !ok {
		return model.Transaction{}, false
	}
	for _, txn := range s.txns {
		if txn.ID == id {
			return txn, true
		}
	}
	return model.Transaction{}, false
}

// Reset empties the ledger and rewrites the persisted snapshot like any other
// mutation, so a rebuild that yields nothing cannot resurrect stale
// transactions on the next hydrate.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txns = s.txns[:0]
	s.ids = make(map[string]struct{})
	s.persistLocked()
}

// sortLocked orders transactions descending by timestamp. Undated
// transactions carry a zero sort key, so they end up last (oldest).
func (s *Store) sortLocked() {
	sort.SliceStable(s.txns, func(i, j int) bool {
		return s.txns[i].SortKey().After(s.txns[j].SortKey())
	})
}

// persistLocked rewrites the full snapshot. Fire-and-forget: failures are
// logged, never propagated, never rolled back.
func (s *Store) persistLocked() {
	if s.cache == nil {
		return
	}
	if err := s.cache.Save(context.Background(), s.txns); err != nil {
		s.logger.Warn("Failed to persist ledger snapshot", "error", err)
	}
}
