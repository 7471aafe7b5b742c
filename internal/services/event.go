package services

import (
	"context"
	"strings"

	"github.com/vaquejada/senhas/internal/errors"
	"github.com/vaquejada/senhas/internal/logger"
	"github.com/vaquejada/senhas/internal/models"
	"github.com/vaquejada/senhas/internal/repository"
	"github.com/vaquejada/senhas/internal/slots"
)

// EventServiceRepository defines the repository methods needed by EventService
type EventServiceRepository interface {
	repository.EventRepository
	repository.CategoryRepository
	repository.PasswordRepository
}

// EventService handles events, categories and the password grid
type EventService struct {
	log  logger.Logger
	repo EventServiceRepository
}

// NewEventService creates a new EventService
func NewEventService(log logger.Logger, repo EventServiceRepository) *EventService {
	return &EventService{log: log, repo: repo}
}

// GridView is a category together with its dense password grid
type GridView struct {
	Category  models.Category `json:"category"`
	Slots     slots.Grid      `json:"slots"`
	Available int             `json:"available"`
}

// CreateEvent validates and stores a new event. A zero cattle-per-password means one.
func (s *EventService) CreateEvent(ctx context.Context, e models.Event) (*models.Event, error) {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return nil, errors.Validation("event name is required")
	}
	if e.CattlePerPassword == 0 {
		e.CattlePerPassword = 1
	}
	if e.CattlePerPassword < 0 {
		return nil, errors.Validation("cattle per password must be at least 1")
	}
	if !e.StartsAt.IsZero() && !e.EndsAt.IsZero() && e.EndsAt.Before(e.StartsAt) {
		return nil, errors.Validation("event ends before it starts")
	}

	id, err := s.repo.CreateEvent(ctx, e)
	if err != nil {
		return nil, err
	}
	e.ID = int(id)
	s.log.Info("Event created", "event_id", e.ID, "name", e.Name)
	return &e, nil
}

// ListEvents returns all events
func (s *EventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.repo.ListEvents(ctx)
}

// GetEvent returns one event
func (s *EventService) GetEvent(ctx context.Context, id int) (*models.Event, error) {
	e, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, notFound(err, "event")
	}
	return e, nil
}

// CreateCategory validates and stores a category under an existing event
func (s *EventService) CreateCategory(ctx context.Context, eventID int, c models.Category) (*models.Category, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	c.EventID = eventID
	c.Name = strings.TrimSpace(c.Name)
	switch {
	case c.Name == "":
		return nil, errors.Validation("category name is required")
	case c.UnitPriceCents < 0:
		return nil, errors.Validation("unit price cannot be negative")
	case c.MaxRunners < 0:
		return nil, errors.Validation("max runners cannot be negative")
	case c.StartsAt != nil && c.EndsAt != nil && c.EndsAt.Before(*c.StartsAt):
		return nil, errors.Validation("category window ends before it starts")
	}

	id, err := s.repo.CreateCategory(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = int(id)
	c.CurrentRunners = 0
	s.log.Info("Category created", "event_id", eventID, "category_id", c.ID, "max_runners", c.MaxRunners)
	return &c, nil
}

// ListCategories returns an event's categories with live occupancy
func (s *EventService) ListCategories(ctx context.Context, eventID int) ([]models.Category, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListCategories(ctx, eventID)
}

// GetCategory returns a category, which must belong to eventID
func (s *EventService) GetCategory(ctx context.Context, eventID, categoryID int) (*models.Category, error) {
	return categoryOf(ctx, s.repo, eventID, categoryID)
}

// Grid builds the password grid of a category from its backing records
func (s *EventService) Grid(ctx context.Context, eventID, categoryID int) (*GridView, error) {
	cat, err := s.GetCategory(ctx, eventID, categoryID)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.ListPasswords(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	grid := slots.BuildGrid(cat.MaxRunners, records)
	return &GridView{
		Category:  *cat,
		Slots:     grid,
		Available: grid.CountAvailable(),
	}, nil
}

// categoryOf loads a category and checks it belongs to eventID
func categoryOf(ctx context.Context, repo repository.CategoryRepository, eventID, categoryID int) (*models.Category, error) {
	cat, err := repo.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, notFound(err, "category")
	}
	if cat.EventID != eventID {
		return nil, errors.NotFound("category not found")
	}
	return cat, nil
}
