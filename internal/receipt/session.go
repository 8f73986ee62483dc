package receipt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyledger/tally/internal/common"
	"github.com/tallyledger/tally/internal/ledger"
	"github.com/tallyledger/tally/internal/model"
	"github.com/tallyledger/tally/internal/service"
	"github.com/tallyledger/tally/internal/source"
)

// State is the tagged workflow state of one receipt session.
type State string

// Session states. Transitions only move forward through the cycle and end
// back at idle.
const (
	StateIdle       State = "idle"
	StateCapturing  State = "capturing"
	StateExtracting State = "extracting"
	StateReviewing  State = "reviewing"
	StateCommitting State = "committing"
)

// CommitResult reports what a commit inserted into the ledger.
type CommitResult struct {
	Committed []model.Transaction
	Fallback  bool // true when the remote store failed and items were inserted locally only
}

// Session drives one capture/extract/review/commit cycle. It is used from a
// single logical task at a time; staged items never outlive the cycle.
type Session struct {
	extractor service.Extractor // nil when no OCR credential is configured
	writer    service.LedgerWriter
	store     *ledger.Store
	logger    *slog.Logger
	image     []byte
	mimeType  string
	date      string
	items     []model.PendingItem
	state     State
}

// NewSession creates an idle session. extractor may be nil when no credential
// is configured; captures are then rejected without any network call.
func NewSession(extractor service.Extractor, writer service.LedgerWriter, store *ledger.Store) *Session {
	return &Session{
		extractor: extractor,
		writer:    writer,
		store:     store,
		logger:    slog.Default().With("component", "receipt"),
		state:     StateIdle,
	}
}

// State returns the current workflow state.
func (s *Session) State() State {
	return s.state
}

// Capture stages an image for extraction. Without a configured OCR credential
// the session stays idle and no network call is made.
func (s *Session) Capture(image []byte, mimeType string) error {
	if s.state != StateIdle {
		return fmt.Errorf("%w: capture from %s", common.ErrWrongState, s.state)
	}
	if s.extractor == nil {
		return common.NewUserError("configure an OCR credential before scanning receipts", common.ErrNoCredential)
	}
	if len(image) == 0 {
		return common.NewUserError("receipt image is empty", nil)
	}

	s.image = image
	s.mimeType = mimeType
	s.state = StateCapturing
	return nil
}

// Extract runs the OCR call and stages the resulting items for review. On a
// malformed response or zero extracted items the session returns to the
// capturing state so the caller can retry explicitly; nothing retries
// implicitly.
func (s *Session) Extract(ctx context.Context) error {
	if s.state != StateCapturing {
		return fmt.Errorf("%w: extract from %s", common.ErrWrongState, s.state)
	}

	s.state = StateExtracting
	extraction, err := s.extractor.Extract(ctx, s.image, s.mimeType)
	if err != nil {
		s.state = StateCapturing
		return common.NewUserError("could not read the receipt, try again", err)
	}

	s.items = extraction.Items
	s.date = extraction.Date
	s.state = StateReviewing
	return nil
}

// Items returns a copy of the staged items.
func (s *Session) Items() []model.PendingItem {
	out := make([]model.PendingItem, len(s.items))
	copy(out, s.items)
	return out
}

// UpdateItem edits a staged item in place. A category edit re-derives the
// icon from the catalog; unknown categories resolve to the default.
func (s *Session) UpdateItem(index int, description, categoryID string, price decimal.Decimal) error {
	if s.state != StateReviewing {
		return fmt.Errorf("%w: edit from %s", common.ErrWrongState, s.state)
	}
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("no staged item at index %d", index)
	}
	if !price.IsPositive() {
		return common.NewUserError("item price must be positive", nil)
	}

	if !model.KnownCategory(categoryID) {
		categoryID = model.DefaultCategoryID
	}

	s.items[index] = model.PendingItem{
		Description: description,
		Category:    categoryID,
		Icon:        model.IconForCategory(categoryID),
		Price:       price,
	}
	return nil
}

// RemoveItem drops a staged item.
func (s *Session) RemoveItem(index int) error {
	if s.state != StateReviewing {
		return fmt.Errorf("%w: edit from %s", common.ErrWrongState, s.state)
	}
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("no staged item at index %d", index)
	}
	s.items = append(s.items[:index], s.items[index+1:]...)
	return nil
}

// Commit inserts every staged item into the ledger as an expense; receipts
// are always expenses, so the amount sign is forced negative. On remote
// failure the same items are inserted locally with unconfirmed ids so user
// input is never lost. Staged items are cleared and the session returns to
// idle on every path.
func (s *Session) Commit(ctx context.Context) (CommitResult, error) {
	if s.state != StateReviewing {
		return CommitResult{}, fmt.Errorf("%w: commit from %s", common.ErrWrongState, s.state)
	}

	s.state = StateCommitting
	defer s.reset()

	if len(s.items) == 0 {
		return CommitResult{}, nil
	}

	date := s.receiptDate()
	recs := make([]source.ManualRecord, 0, len(s.items))
	for _, item := range s.items {
		recs = append(recs, source.ManualRecord{
			Label:  item.Description,
			Icon:   item.Icon,
			Amount: item.Price.Abs().Neg(),
			Date:   &date,
		})
	}

	var result CommitResult
	stored, err := s.writer.InsertExpenses(ctx, recs)
	if err != nil || len(stored) != len(recs) {
		if err != nil {
			s.logger.Warn("Remote insert failed, keeping items locally", "error", err)
		} else {
			s.logger.Warn("Remote insert incomplete, keeping items locally",
				"sent", len(recs), "stored", len(stored))
		}
		result.Fallback = true
		for _, rec := range recs {
			txn := source.MapManual(rec)
			txn.ID = "local_" + uuid.NewString()
			txn.Confirmed = false
			result.Committed = append(result.Committed, txn)
		}
	} else {
		for _, rec := range stored {
			result.Committed = append(result.Committed, source.MapManual(rec))
		}
	}

	s.store.Merge(result.Committed)
	return result, nil
}

// receiptDate uses the provider-reported purchase date when it parses,
// otherwise the current time.
func (s *Session) receiptDate() time.Time {
	if s.date != "" {
		if parsed, err := time.ParseInLocation("2006-01-02", s.date, time.Local); err == nil {
			return parsed
		}
	}
	return time.Now()
}

func (s *Session) reset() {
	s.items = nil
	s.image = nil
	s.mimeType = ""
	s.date = ""
	s.state = StateIdle
}
