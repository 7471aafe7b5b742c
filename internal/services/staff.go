package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/vaquejada/senhas/internal/errors"
	"github.com/vaquejada/senhas/internal/logger"
	"github.com/vaquejada/senhas/internal/models"
	"github.com/vaquejada/senhas/internal/repository"
)

// StaffServiceRepository defines the repository methods needed by StaffService
type StaffServiceRepository interface {
	repository.EventRepository
	repository.StaffRepository
}

// StaffService manages an event's judges and speakers
type StaffService struct {
	log  logger.Logger
	repo StaffServiceRepository
}

// NewStaffService creates a new StaffService
func NewStaffService(log logger.Logger, repo StaffServiceRepository) *StaffService {
	return &StaffService{log: log, repo: repo}
}

// CreateStaff adds a judge or speaker to an event. An empty id gets a generated one;
// callers pass the auth subject so the staff row matches the token.
func (s *StaffService) CreateStaff(ctx context.Context, eventID int, st models.Staff) (*models.Staff, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, notFound(err, "event")
	}

	st.EventID = eventID
	st.Name = strings.TrimSpace(st.Name)
	if st.Name == "" {
		return nil, errors.Validation("staff name is required")
	}
	if st.Role != models.RoleJudge && st.Role != models.RoleSpeaker {
		return nil, errors.InvalidInputf("role must be %s or %s", models.RoleJudge, models.RoleSpeaker)
	}
	if st.ID == "" {
		st.ID = uuid.NewString()
	}

	if err := s.repo.CreateStaff(ctx, st); err != nil {
		return nil, err
	}
	s.log.Info("Staff added", "event_id", eventID, "staff_id", st.ID, "role", st.Role)
	return &st, nil
}

// ListStaff returns an event's staff
func (s *StaffService) ListStaff(ctx context.Context, eventID int) ([]models.Staff, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, notFound(err, "event")
	}
	return s.repo.ListStaff(ctx, eventID)
}

// ActiveJudges returns the staff of an event with the judge role
func (s *StaffService) ActiveJudges(ctx context.Context, eventID int) ([]models.Staff, error) {
	staff, err := s.ListStaff(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return judgesOf(staff), nil
}

func judgesOf(staff []models.Staff) []models.Staff {
	judges := []models.Staff{}
	for _, st := range staff {
		if st.Role == models.RoleJudge {
			judges = append(judges, st)
		}
	}
	return judges
}
