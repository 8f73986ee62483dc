package source

import (
	"strings"

	"github.com/tallyledger/tally/internal/model"
)

// MapManual converts a manually entered expense record into a canonical
// transaction. Label, amount, and icon are copied verbatim; the stored sign
// is trusted for this source.
func MapManual(rec ManualRecord) model.Transaction {
	icon := rec.Icon
	if icon == "" {
		icon = model.DefaultIcon
	}

	return model.Transaction{
		ID:        rec.ID,
		Source:    model.SourceManual,
		Icon:      icon,
		Label:     strings.TrimSpace(rec.Label),
		Amount:    rec.Amount,
		Date:      rec.Date,
		Confirmed: true,
	}
}
