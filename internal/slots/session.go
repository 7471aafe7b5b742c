package slots

import (
	"sort"

	"github.com/vaquejada/senhas/internal/models"
)

// State is the selection session lifecycle state
type State int

const (
	NoCategory State = iota
	CategoryChosen
	Selecting
	Submitted
)

func (s State) String() string {
	switch s {
	case CategoryChosen:
		return "category_chosen"
	case Selecting:
		return "selecting"
	case Submitted:
		return "submitted"
	default:
		return "no_category"
	}
}

// Selection pairs a selected number with its backing record id. RecordID is empty for
// numbers that have never been claimed.
type Selection struct {
	Number   int    `json:"number"`
	RecordID string `json:"record_id,omitempty"`
}

// Session is a buyer's in-progress set of chosen passwords for one category.
// It is not safe for concurrent use; toggles are expected to be serialized by the caller.
type Session struct {
	state          State
	category       *models.Category
	selected       []Selection
	termsAccepted  bool
	checkoutIntent bool
}

// NewSession returns an empty session with no category chosen
func NewSession() *Session {
	return &Session{}
}

// State returns the current lifecycle state
func (s *Session) State() State {
	return s.state
}

// Category returns the chosen category, if any
func (s *Session) Category() (models.Category, bool) {
	if s.category == nil {
		return models.Category{}, false
	}
	return *s.category, true
}

// ChooseCategory clears any prior selection and enters CategoryChosen
func (s *Session) ChooseCategory(category models.Category) {
	s.Reset()
	cat := category
	s.category = &cat
	s.state = CategoryChosen
}

// ChangeCategory is a full reset so the buyer can pick another tier
func (s *Session) ChangeCategory() {
	s.Reset()
}

// Reset clears category, selection, terms flag and checkout intent
func (s *Session) Reset() {
	s.state = NoCategory
	s.category = nil
	s.selected = nil
	s.termsAccepted = false
	s.checkoutIntent = false
}

// AcceptTerms sets the terms-accepted flag
func (s *Session) AcceptTerms(accepted bool) {
	s.termsAccepted = accepted
}

// TermsAccepted reports the terms-accepted flag
func (s *Session) TermsAccepted() bool {
	return s.termsAccepted
}

// CheckoutIntent reports whether the buyer was on the way to checkout when the session
// was persisted
func (s *Session) CheckoutIntent() bool {
	return s.checkoutIntent
}

// ToggleSlot flips number in the selection. Occupied numbers, numbers not on the grid
// and sessions without a category are left untouched. Returns whether anything changed.
func (s *Session) ToggleSlot(grid Grid, number int) bool {
	if s.category == nil || s.state == Submitted {
		return false
	}
	info, ok := grid.Lookup(number)
	if !ok || info.Occupied {
		return false
	}

	for i, sel := range s.selected {
		if sel.Number == number {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			if len(s.selected) == 0 {
				s.state = CategoryChosen
			}
			return true
		}
	}

	s.selected = append(s.selected, Selection{Number: number, RecordID: info.Claim.RecordID()})
	s.state = Selecting
	return true
}

// IsSelected reports whether number is currently selected
func (s *Session) IsSelected(number int) bool {
	for _, sel := range s.selected {
		if sel.Number == number {
			return true
		}
	}
	return false
}

// Count returns how many numbers are selected
func (s *Session) Count() int {
	return len(s.selected)
}

// Selections returns a copy of the selected pairs in insertion order
func (s *Session) Selections() []Selection {
	out := make([]Selection, len(s.selected))
	copy(out, s.selected)
	return out
}

// SelectedNumbers returns the selected numbers in ascending order
func (s *Session) SelectedNumbers() []int {
	numbers := make([]int, len(s.selected))
	for i, sel := range s.selected {
		numbers[i] = sel.Number
	}
	sort.Ints(numbers)
	return numbers
}

// SelectedRecordIDs returns one entry per selected number, "" for unclaimed numbers,
// so its length always equals Count
func (s *Session) SelectedRecordIDs() []string {
	ids := make([]string, len(s.selected))
	for i, sel := range s.selected {
		ids[i] = sel.RecordID
	}
	return ids
}

// MarkSubmitted moves the session to Submitted after a successful checkout
func (s *Session) MarkSubmitted() {
	s.state = Submitted
	s.checkoutIntent = false
}
