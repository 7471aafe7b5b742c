package slots

import (
	"github.com/vaquejada/senhas/internal/errors"
)

// API codes carried by checkout errors
const (
	CodeLoginRequired    = "LOGIN_REQUIRED"
	CodeInvalidSelection = "INVALID_SELECTION"
)

// Checkout precondition failures, reported in this order
var (
	ErrLoginRequired    = errors.AuthRequired("login required").WithCode(CodeLoginRequired)
	ErrEmptySelection   = errors.Validation("select at least one slot").WithCode(CodeInvalidSelection)
	ErrTermsNotAccepted = errors.Validation("must accept terms").WithCode(CodeInvalidSelection)
	ErrNoCategory       = errors.Validation("choose a category first").WithCode(CodeInvalidSelection)
)

// PurchaseIntent is what checkout hands to the purchase collaborator.
// Amounts are integer cents.
type PurchaseIntent struct {
	EventID        int      `json:"event_id"`
	CategoryID     int      `json:"category_id"`
	RecordIDs      []string `json:"record_ids"`
	Numbers        []int    `json:"numbers"`
	Quantity       int      `json:"quantity"`
	UnitPriceCents int64    `json:"unit_price_cents"`
	TotalCents     int64    `json:"total_cents"`
}

// Checkout validates the session and builds the purchase intent. The first failing
// precondition wins: authentication, then a non-empty selection, then accepted terms.
// The session itself is not modified.
func Checkout(s *Session, authenticated bool, eventID int) (*PurchaseIntent, error) {
	if !authenticated {
		return nil, ErrLoginRequired
	}
	if s.Count() == 0 {
		return nil, ErrEmptySelection
	}
	if !s.TermsAccepted() {
		return nil, ErrTermsNotAccepted
	}
	cat, ok := s.Category()
	if !ok {
		return nil, ErrNoCategory
	}

	recordIDs := make([]string, 0, s.Count())
	for _, id := range s.SelectedRecordIDs() {
		if id != "" {
			recordIDs = append(recordIDs, id)
		}
	}

	quantity := s.Count()
	return &PurchaseIntent{
		EventID:        eventID,
		CategoryID:     cat.ID,
		RecordIDs:      recordIDs,
		Numbers:        s.SelectedNumbers(),
		Quantity:       quantity,
		UnitPriceCents: cat.UnitPriceCents,
		TotalCents:     Total(cat.UnitPriceCents, quantity),
	}, nil
}

// Total is price * quantity
func Total(unitPriceCents int64, quantity int) int64 {
	return unitPriceCents * int64(quantity)
}
