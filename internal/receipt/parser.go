// Package receipt implements the receipt-scanning pipeline: an OCR call
// staging editable candidate items, reviewed and then committed into the
// ledger.
package receipt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tallyledger/tally/internal/common"
	"github.com/tallyledger/tally/internal/model"
	"github.com/tallyledger/tally/internal/service"
)

// wirePayload is the JSON object the OCR provider is instructed to return.
// The response text may wrap it in prose or code fences.
type wirePayload struct {
	Date  *string    `json:"date"`
	Items []wireItem `json:"items"`
}

type wireItem struct {
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
}

// ParseExtraction locates the first balanced JSON object within the provider
// response and decodes it into staged items. Missing or unrecognized
// categories resolve to the default; items without a usable description or a
// positive price are dropped. Zero usable items is an error.
func ParseExtraction(text string) (service.Extraction, error) {
	obj, ok := firstJSONObject(text)
	if !ok {
		return service.Extraction{}, fmt.Errorf("%w: no JSON object in response", common.ErrBadExtraction)
	}

	var payload wirePayload
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return service.Extraction{}, fmt.Errorf("%w: %v", common.ErrBadExtraction, err)
	}

	items := make([]model.PendingItem, 0, len(payload.Items))
	for _, raw := range payload.Items {
		description := strings.TrimSpace(raw.Description)
		if description == "" || !raw.Price.IsPositive() {
			continue
		}

		category := raw.Category
		if !model.KnownCategory(category) {
			category = model.DefaultCategoryID
		}

		items = append(items, model.PendingItem{
			Description: description,
			Category:    category,
			Icon:        model.IconForCategory(category),
			Price:       raw.Price,
		})
	}

	if len(items) == 0 {
		return service.Extraction{}, common.ErrNoItemsFound
	}

	extraction := service.Extraction{Items: items}
	if payload.Date != nil {
		extraction.Date = strings.TrimSpace(*payload.Date)
	}
	return extraction, nil
}

// firstJSONObject scans for the first balanced top-level JSON object,
// tracking string and escape state so braces inside string values don't
// confuse the depth count.
func firstJSONObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
