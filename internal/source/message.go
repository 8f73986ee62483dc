package source

import (
	"strings"

	"github.com/tallyledger/tally/internal/model"
)

// Direction classifies which way money moved for a message-derived record.
type Direction int

const (
	// DirectionOutgoing means money left the account (expense).
	DirectionOutgoing Direction = iota
	// DirectionIncoming means money arrived (income).
	DirectionIncoming
)

// The rule tables below match free-text type and subject fields. Message
// parsing upstream is best-effort, so these stay heuristic keyword tables
// rather than anything stricter.
var outgoingTypes = map[string]bool{
	"payment_sent": true,
	"debit":        true,
	"purchase":     true,
	"withdrawal":   true,
	"transfer_out": true,
	"fee":          true,
}

var incomingTypes = map[string]bool{
	"payment_received": true,
	"credit":           true,
	"deposit":          true,
	"refund":           true,
	"transfer_in":      true,
	"salary":           true,
	"cashback":         true,
}

var incomingKeywords = []string{"received", "credited", "deposit", "refund", "cashback", "payment from"}

var outgoingKeywords = []string{"sent", "paid", "debited", "purchase", "spent", "withdraw", "payment to"}

// typeLabels provides display text for well-known transaction types.
var typeLabels = map[string]string{
	"payment_sent":     "Payment sent",
	"payment_received": "Payment received",
	"debit":            "Card payment",
	"credit":           "Credit",
	"purchase":         "Purchase",
	"withdrawal":       "Cash withdrawal",
	"deposit":          "Deposit",
	"refund":           "Refund",
	"transfer_out":     "Transfer out",
	"transfer_in":      "Transfer in",
	"salary":           "Salary",
	"cashback":         "Cashback",
	"fee":              "Fee",
}

// outgoing message-derived transactions get the send icon when no category
// matches; incoming ones get the wallet icon.
const (
	outgoingIcon = "send"
	incomingIcon = "wallet"
)

// MapMessage converts a message-derived record into a canonical transaction.
// The amount sign is forced from the direction classification and never
// trusted from storage; the id is namespaced to avoid collisions with
// manual-entry ids.
func MapMessage(rec MessageRecord) model.Transaction {
	direction := ClassifyDirection(rec.Type, rec.Subject)

	amount := rec.Amount.Abs()
	if direction == DirectionOutgoing {
		amount = amount.Neg()
	}

	id := rec.ID
	if !strings.HasPrefix(id, model.MessageIDPrefix) {
		id = model.MessageIDPrefix + id
	}

	return model.Transaction{
		ID:        id,
		Source:    model.SourceMessage,
		Icon:      messageIcon(rec.Category, direction),
		Label:     messageLabel(rec),
		Amount:    amount,
		Date:      rec.ReceivedAt,
		Confirmed: true,
	}
}

// ClassifyDirection decides whether a record moves money out or in, from its
// type first and subject keywords second. Unknown records classify as
// outgoing, since parsed messages overwhelmingly describe spending.
func ClassifyDirection(typ, subject string) Direction {
	typ = strings.ToLower(strings.TrimSpace(typ))

	if outgoingTypes[typ] {
		return DirectionOutgoing
	}
	if incomingTypes[typ] {
		return DirectionIncoming
	}

	haystack := typ + " " + strings.ToLower(subject)
	for _, kw := range incomingKeywords {
		if strings.Contains(haystack, kw) {
			return DirectionIncoming
		}
	}
	for _, kw := range outgoingKeywords {
		if strings.Contains(haystack, kw) {
			return DirectionOutgoing
		}
	}

	return DirectionOutgoing
}

// messageLabel picks display text by priority: explicit description, category
// label, transaction-type label, normalized subject, generic fallback.
func messageLabel(rec MessageRecord) string {
	if desc := strings.TrimSpace(rec.Description); desc != "" {
		return desc
	}
	if model.KnownCategory(rec.Category) {
		return model.CategoryByID(rec.Category).Label
	}
	if label, ok := typeLabels[strings.ToLower(strings.TrimSpace(rec.Type))]; ok {
		return label
	}
	if subject := normalizeSubject(rec.Subject); subject != "" {
		return subject
	}
	return "Transaction"
}

func messageIcon(category string, direction Direction) string {
	if model.KnownCategory(category) {
		return model.IconForCategory(category)
	}
	if direction == DirectionIncoming {
		return incomingIcon
	}
	return outgoingIcon
}

// normalizeSubject collapses whitespace and strips reply/forward prefixes.
func normalizeSubject(subject string) string {
	s := strings.Join(strings.Fields(subject), " ")
	for {
		lower := strings.ToLower(s)
		switch {
		case strings.HasPrefix(lower, "re:"):
			s = strings.TrimSpace(s[3:])
		case strings.HasPrefix(lower, "fwd:"):
			s = strings.TrimSpace(s[4:])
		default:
			return s
		}
	}
}
