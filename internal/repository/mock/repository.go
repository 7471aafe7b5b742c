package mock

import (
	"context"

	"github.com/vaquejada/senhas/internal/models"
	"github.com/vaquejada/senhas/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.ReservePasswordsError = errors.New("database error")
//	svc := services.NewPurchaseService(log, mockRepo, payments, hub)
//	_, err := svc.Checkout(ctx, req)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Event Errors =====
	GetEventError   error
	ListEventsError error

	// ===== Category Errors =====
	GetCategoryError    error
	ListCategoriesError error

	// ===== Password Errors =====
	ListPasswordsError     error
	GetPasswordError       error
	ReservePasswordsError  error
	ReleasePurchaseError   error
	SetPasswordStatusError error

	// ===== Purchase Errors =====
	CreatePurchaseError    error
	SetPurchaseStatusError error

	// ===== Staff Errors =====
	GetStaffError  error
	ListStaffError error

	// ===== Vote Errors =====
	FindVoteError        error
	InsertVoteError      error
	UpdateVoteValueError error
	ListJudgeVotesError  error
	ListEventVotesError  error

	// FindVoteMisses makes that many FindVote calls report ErrNotFound before
	// delegating, so a concurrent insert can be simulated
	FindVoteMisses int

	// ReleasedPurchases records every purchase id passed to ReleasePurchase
	ReleasedPurchases []string
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Event Methods =====

func (m *Repository) GetEvent(ctx context.Context, id int) (*models.Event, error) {
	if m.GetEventError != nil {
		return nil, m.GetEventError
	}
	return m.FullRepository.GetEvent(ctx, id)
}

func (m *Repository) ListEvents(ctx context.Context) ([]models.Event, error) {
	if m.ListEventsError != nil {
		return nil, m.ListEventsError
	}
	return m.FullRepository.ListEvents(ctx)
}

// ===== Category Methods =====

func (m *Repository) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	if m.GetCategoryError != nil {
		return nil, m.GetCategoryError
	}
	return m.FullRepository.GetCategory(ctx, id)
}

func (m *Repository) ListCategories(ctx context.Context, eventID int) ([]models.Category, error) {
	if m.ListCategoriesError != nil {
		return nil, m.ListCategoriesError
	}
	return m.FullRepository.ListCategories(ctx, eventID)
}

// ===== Password Methods =====

func (m *Repository) ListPasswords(ctx context.Context, categoryID int) ([]models.SlotRecord, error) {
	if m.ListPasswordsError != nil {
		return nil, m.ListPasswordsError
	}
	return m.FullRepository.ListPasswords(ctx, categoryID)
}

func (m *Repository) GetPassword(ctx context.Context, id string) (*models.SlotRecord, error) {
	if m.GetPasswordError != nil {
		return nil, m.GetPasswordError
	}
	return m.FullRepository.GetPassword(ctx, id)
}

func (m *Repository) ReservePasswords(ctx context.Context, categoryID int, numbers []int, purchaseID, buyerID string) ([]models.SlotRecord, error) {
	if m.ReservePasswordsError != nil {
		return nil, m.ReservePasswordsError
	}
	return m.FullRepository.ReservePasswords(ctx, categoryID, numbers, purchaseID, buyerID)
}

func (m *Repository) ReleasePurchase(ctx context.Context, purchaseID string) error {
	m.ReleasedPurchases = append(m.ReleasedPurchases, purchaseID)
	if m.ReleasePurchaseError != nil {
		return m.ReleasePurchaseError
	}
	return m.FullRepository.ReleasePurchase(ctx, purchaseID)
}

func (m *Repository) SetPasswordStatus(ctx context.Context, id string, status models.SlotStatus) error {
	if m.SetPasswordStatusError != nil {
		return m.SetPasswordStatusError
	}
	return m.FullRepository.SetPasswordStatus(ctx, id, status)
}

// ===== Purchase Methods =====

func (m *Repository) CreatePurchase(ctx context.Context, p models.Purchase) error {
	if m.CreatePurchaseError != nil {
		return m.CreatePurchaseError
	}
	return m.FullRepository.CreatePurchase(ctx, p)
}

func (m *Repository) SetPurchaseStatus(ctx context.Context, id, status, externalRef string) error {
	if m.SetPurchaseStatusError != nil {
		return m.SetPurchaseStatusError
	}
	return m.FullRepository.SetPurchaseStatus(ctx, id, status, externalRef)
}

// ===== Staff Methods =====

func (m *Repository) GetStaff(ctx context.Context, id string, eventID int) (*models.Staff, error) {
	if m.GetStaffError != nil {
		return nil, m.GetStaffError
	}
	return m.FullRepository.GetStaff(ctx, id, eventID)
}

func (m *Repository) ListStaff(ctx context.Context, eventID int) ([]models.Staff, error) {
	if m.ListStaffError != nil {
		return nil, m.ListStaffError
	}
	return m.FullRepository.ListStaff(ctx, eventID)
}

// ===== Vote Methods =====

func (m *Repository) FindVote(ctx context.Context, judgeID, passwordID string, cattleNumber int) (*models.CattleRunVote, error) {
	if m.FindVoteError != nil {
		return nil, m.FindVoteError
	}
	if m.FindVoteMisses > 0 {
		m.FindVoteMisses--
		return nil, repository.ErrNotFound
	}
	return m.FullRepository.FindVote(ctx, judgeID, passwordID, cattleNumber)
}

func (m *Repository) InsertVote(ctx context.Context, v models.CattleRunVote) (int64, error) {
	if m.InsertVoteError != nil {
		return 0, m.InsertVoteError
	}
	return m.FullRepository.InsertVote(ctx, v)
}

func (m *Repository) UpdateVoteValue(ctx context.Context, id int, vote models.VoteValue) error {
	if m.UpdateVoteValueError != nil {
		return m.UpdateVoteValueError
	}
	return m.FullRepository.UpdateVoteValue(ctx, id, vote)
}

func (m *Repository) ListJudgeVotes(ctx context.Context, eventID int, judgeID string) ([]models.CattleRunVote, error) {
	if m.ListJudgeVotesError != nil {
		return nil, m.ListJudgeVotesError
	}
	return m.FullRepository.ListJudgeVotes(ctx, eventID, judgeID)
}

func (m *Repository) ListEventVotes(ctx context.Context, eventID int) ([]models.CattleRunVote, error) {
	if m.ListEventVotesError != nil {
		return nil, m.ListEventVotesError
	}
	return m.FullRepository.ListEventVotes(ctx, eventID)
}
