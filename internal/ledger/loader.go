package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tallyledger/tally/internal/common"
	"github.com/tallyledger/tally/internal/model"
	"github.com/tallyledger/tally/internal/service"
	"github.com/tallyledger/tally/internal/source"
)

// PageSize is the fixed number of records requested from each source per
// load.
const PageSize = 25

// LoadResult reports what one page load did.
type LoadResult struct {
	Added   int
	HasMore bool // true if either source returned a full page
	Partial bool // true if exactly one source failed and the merge proceeded without it
	Skipped bool // true if the call was a no-op because a load was already in flight
}

// Loader fetches pages from both remote collections, maps them into the
// canonical model, and merges them into the store.
type Loader struct {
	store    *Store
	src      service.LedgerSource
	logger   *slog.Logger
	pageSize int
	mu       sync.Mutex
	inFlight bool
}

// NewLoader creates a loader feeding the given store from the given source.
func NewLoader(store *Store, src service.LedgerSource) *Loader {
	return &Loader{
		store:    store,
		src:      src,
		logger:   slog.Default().With("component", "loader"),
		pageSize: PageSize,
	}
}

// LoadPage fetches one page from each source and merges the results. With
// reset, both sources restart at offset zero and the ledger is rebuilt from
// the fresh page; otherwise the per-source offset is the current ledger
// length.
//
// A call while another load is outstanding is a no-op. Failure of one source
// is logged and the merge proceeds with the other; failure of both leaves the
// ledger unchanged and is reported as a non-fatal error.
func (l *Loader) LoadPage(ctx context.Context, reset bool) (LoadResult, error) {
	l.mu.Lock()
	if l.inFlight {
		l.mu.Unlock()
		l.logger.Debug("Page load already in flight, skipping")
		return LoadResult{Skipped: true}, nil
	}
	l.inFlight = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.inFlight = false
		l.mu.Unlock()
	}()

	offset := 0
	if !reset {
		offset = l.store.Len()
	}

	var (
		page     []model.Transaction
		failures []error
		hasMore  bool
	)

	expenses, err := l.src.ListExpenses(ctx, offset, l.pageSize)
	if err != nil {
		l.logger.Warn("Expense source failed, continuing without it", "error", err)
		failures = append(failures, err)
	} else {
		for _, rec := range expenses {
			page = append(page, source.MapManual(rec))
		}
		if len(expenses) == l.pageSize {
			hasMore = true
		}
	}

	messages, err := l.src.ListMessages(ctx, offset, l.pageSize)
	if err != nil {
		l.logger.Warn("Message source failed, continuing without it", "error", err)
		failures = append(failures, err)
	} else {
		for _, rec := range messages {
			page = append(page, source.MapMessage(rec))
		}
		if len(messages) == l.pageSize {
			hasMore = true
		}
	}

	if len(failures) == 2 {
		return LoadResult{}, common.NewUserError("could not reach the ledger store", errors.Join(failures...))
	}

	if reset {
		l.store.Reset()
	}
	added := l.store.Merge(page)

	l.logger.Info("Merged ledger page",
		"offset", offset,
		"added", added,
		"has_more", hasMore,
		"partial", len(failures) == 1)

	return LoadResult{
		Added:   added,
		HasMore: hasMore,
		Partial: len(failures) == 1,
	}, nil
}
