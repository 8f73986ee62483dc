package source

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tallyledger/tally/internal/model"
)

func TestMapMessage_ForcesAmountSign(t *testing.T) {
	tests := []struct {
		name       string
		record     MessageRecord
		wantAmount string
	}{
		{
			name: "payment_sent with positive stored amount becomes negative",
			record: MessageRecord{
				ID:          "1",
				Description: "Cafe",
				Type:        "payment_sent",
				Amount:      decimal.RequireFromString("10"),
			},
			wantAmount: "-10",
		},
		{
			name: "refund with negative stored amount becomes positive",
			record: MessageRecord{
				ID:     "2",
				Type:   "refund",
				Amount: decimal.RequireFromString("-25.50"),
			},
			wantAmount: "25.5",
		},
		{
			name: "incoming subject keyword overrides stored sign",
			record: MessageRecord{
				ID:      "3",
				Subject: "You received a transfer",
				Amount:  decimal.RequireFromString("-99"),
			},
			wantAmount: "99",
		},
		{
			name: "unknown type and subject defaults to expense",
			record: MessageRecord{
				ID:     "4",
				Type:   "mystery",
				Amount: decimal.RequireFromString("7"),
			},
			wantAmount: "-7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := MapMessage(tt.record)
			assert.Equal(t, tt.wantAmount, txn.Amount.String())
		})
	}
}

func TestMapMessage_NamespacesID(t *testing.T) {
	txn := MapMessage(MessageRecord{ID: "abc", Amount: decimal.RequireFromString("1")})
	assert.Equal(t, "mp_abc", txn.ID)

	// Already-namespaced ids are not double-prefixed.
	txn = MapMessage(MessageRecord{ID: "mp_abc", Amount: decimal.RequireFromString("1")})
	assert.Equal(t, "mp_abc", txn.ID)

	assert.Equal(t, model.SourceMessage, txn.Source)
}

func TestMapMessage_LabelPriority(t *testing.T) {
	tests := []struct {
		name      string
		record    MessageRecord
		wantLabel string
	}{
		{
			name: "description wins over everything",
			record: MessageRecord{
				Description: "Cafe",
				Category:    "food-dining",
				Type:        "payment_sent",
				Subject:     "Payment alert",
			},
			wantLabel: "Cafe",
		},
		{
			name: "category label when no description",
			record: MessageRecord{
				Category: "food-dining",
				Type:     "payment_sent",
				Subject:  "Payment alert",
			},
			wantLabel: "Food & Dining",
		},
		{
			name: "type label when category is unknown",
			record: MessageRecord{
				Category: "not-a-category",
				Type:     "payment_sent",
				Subject:  "Payment alert",
			},
			wantLabel: "Payment sent",
		},
		{
			name: "normalized subject when type is unknown",
			record: MessageRecord{
				Type:    "mystery",
				Subject: "  Fwd:   ATM   alert  ",
			},
			wantLabel: "ATM alert",
		},
		{
			name:      "generic fallback when nothing usable",
			record:    MessageRecord{},
			wantLabel: "Transaction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := MapMessage(tt.record)
			assert.Equal(t, tt.wantLabel, txn.Label)
		})
	}
}

func TestMapMessage_IconSelection(t *testing.T) {
	// Known category maps through the catalog.
	txn := MapMessage(MessageRecord{Category: "food-dining", Type: "payment_sent"})
	assert.Equal(t, "restaurant", txn.Icon)

	// Unknown category falls back to the direction heuristic.
	txn = MapMessage(MessageRecord{Type: "payment_sent"})
	assert.Equal(t, "send", txn.Icon)

	txn = MapMessage(MessageRecord{Type: "refund"})
	assert.Equal(t, "wallet", txn.Icon)
}

func TestMapManual_CopiesVerbatim(t *testing.T) {
	when := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := ManualRecord{
		ID:     "1",
		Label:  "  Rent  ",
		Icon:   "bolt",
		Amount: decimal.RequireFromString("-50"),
		Date:   &when,
	}

	txn := MapManual(rec)
	assert.Equal(t, "1", txn.ID)
	assert.Equal(t, model.SourceManual, txn.Source)
	assert.Equal(t, "Rent", txn.Label)
	assert.Equal(t, "bolt", txn.Icon)
	assert.Equal(t, "-50", txn.Amount.String())
	assert.Equal(t, when, *txn.Date)
	assert.True(t, txn.Confirmed)
}

func TestMapManual_DefaultIcon(t *testing.T) {
	txn := MapManual(ManualRecord{ID: "1", Amount: decimal.RequireFromString("-1")})
	assert.Equal(t, model.DefaultIcon, txn.Icon)
}
