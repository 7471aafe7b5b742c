package services

import (
	"context"
	"fmt"

	"github.com/vaquejada/senhas/internal/draft"
	"github.com/vaquejada/senhas/internal/logger"
	"github.com/vaquejada/senhas/internal/repository"
	"github.com/vaquejada/senhas/internal/slots"
)

const maxDraftKeyLen = 128

// DraftService parks and restores selection sessions across a login redirect
type DraftService struct {
	log   logger.Logger
	store draft.Store
	repo  repository.CategoryRepository
}

// NewDraftService creates a new DraftService
func NewDraftService(log logger.Logger, store draft.Store, repo repository.CategoryRepository) *DraftService {
	return &DraftService{log: log, store: store, repo: repo}
}

// RestoredDraft is a parked selection handed back to the buyer after login
type RestoredDraft struct {
	CategoryID     int               `json:"category_id"`
	Selections     []slots.Selection `json:"selections"`
	Numbers        []int             `json:"numbers"`
	CheckoutIntent bool              `json:"checkout_intent"`
}

func draftKey(eventID int, key string) (string, error) {
	if key == "" || len(key) > maxDraftKeyLen {
		return "", ErrInvalidDraftKey
	}
	return fmt.Sprintf("%d:%s", eventID, key), nil
}

// SaveSession parks s for eventID under the client-chosen key
func (s *DraftService) SaveSession(ctx context.Context, eventID int, key string, sess *slots.Session) error {
	k, err := draftKey(eventID, key)
	if err != nil {
		return err
	}
	if err := slots.SaveForLogin(ctx, s.store, k, sess); err != nil {
		return err
	}
	s.log.Debug("Selection parked for login", "event_id", eventID, "key", key, "count", sess.Count())
	return nil
}

// Restore loads the parked selection for eventID. The bool is false when there is no
// draft or the draft no longer matches the event's categories; either way the draft is gone.
func (s *DraftService) Restore(ctx context.Context, eventID int, key string) (*RestoredDraft, bool, error) {
	k, err := draftKey(eventID, key)
	if err != nil {
		return nil, false, err
	}
	categories, err := s.repo.ListCategories(ctx, eventID)
	if err != nil {
		return nil, false, err
	}

	sess, ok, err := slots.RestoreAfterLogin(ctx, s.store, k, categories)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		s.log.Debug("No usable draft", "event_id", eventID, "key", key)
		return nil, false, nil
	}

	cat, _ := sess.Category()
	return &RestoredDraft{
		CategoryID:     cat.ID,
		Selections:     sess.Selections(),
		Numbers:        sess.SelectedNumbers(),
		CheckoutIntent: sess.CheckoutIntent(),
	}, true, nil
}
