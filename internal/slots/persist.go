package slots

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vaquejada/senhas/internal/draft"
	"github.com/vaquejada/senhas/internal/models"
)

// SnapshotVersion is the only snapshot layout Restore accepts
const SnapshotVersion = 1

// Snapshot is the serialized form of a Session. Numbers and RecordIDs are parallel.
type Snapshot struct {
	Version        int      `json:"v"`
	CategoryID     int      `json:"category_id"`
	Numbers        []int    `json:"numbers"`
	RecordIDs      []string `json:"record_ids"`
	CheckoutIntent bool     `json:"checkout_intent"`
}

// Snapshot captures the session for persistence. checkoutIntent records that the buyer
// was submitting when the session was parked.
func (s *Session) Snapshot(checkoutIntent bool) Snapshot {
	snap := Snapshot{
		Version:        SnapshotVersion,
		Numbers:        make([]int, len(s.selected)),
		RecordIDs:      make([]string, len(s.selected)),
		CheckoutIntent: checkoutIntent,
	}
	if s.category != nil {
		snap.CategoryID = s.category.ID
	}
	for i, sel := range s.selected {
		snap.Numbers[i] = sel.Number
		snap.RecordIDs[i] = sel.RecordID
	}
	return snap
}

// Restore rebuilds a session from snap provided its category is still in categories.
// The selection is restored verbatim. The bool is false when the snapshot is unusable:
// unknown version, missing category, or mismatched number/record lists.
func Restore(snap Snapshot, categories []models.Category) (*Session, bool) {
	if snap.Version != SnapshotVersion || len(snap.Numbers) != len(snap.RecordIDs) {
		return nil, false
	}

	for _, cat := range categories {
		if cat.ID != snap.CategoryID {
			continue
		}
		s := NewSession()
		s.ChooseCategory(cat)
		for i, n := range snap.Numbers {
			s.selected = append(s.selected, Selection{Number: n, RecordID: snap.RecordIDs[i]})
		}
		if len(s.selected) > 0 {
			s.state = Selecting
		}
		s.checkoutIntent = snap.CheckoutIntent
		return s, true
	}
	return nil, false
}

// SaveForLogin parks the session under key before an authentication redirect
func SaveForLogin(ctx context.Context, store draft.Store, key string, s *Session) error {
	data, err := json.Marshal(s.Snapshot(true))
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}
	return store.Set(ctx, key, string(data))
}

// RestoreAfterLogin loads the parked session under key against a freshly fetched
// category list. A missing, unreadable or stale draft yields (nil, false, nil) and is
// removed; only storage failures are returned as errors.
func RestoreAfterLogin(ctx context.Context, store draft.Store, key string, categories []models.Category) (*Session, bool, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, false, store.Remove(ctx, key)
	}

	s, restored := Restore(snap, categories)
	if err := store.Remove(ctx, key); err != nil {
		return nil, false, err
	}
	return s, restored, nil
}
