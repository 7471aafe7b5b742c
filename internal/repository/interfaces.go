package repository

import (
	"context"

	"github.com/vaquejada/senhas/internal/models"
)

// EventRepository defines event data operations
type EventRepository interface {
	CreateEvent(ctx context.Context, e models.Event) (int64, error)
	GetEvent(ctx context.Context, id int) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
}

// CategoryRepository defines category data operations
type CategoryRepository interface {
	CreateCategory(ctx context.Context, c models.Category) (int64, error)
	GetCategory(ctx context.Context, id int) (*models.Category, error)
	ListCategories(ctx context.Context, eventID int) ([]models.Category, error)
}

// PasswordRepository defines password (slot record) operations
type PasswordRepository interface {
	ListPasswords(ctx context.Context, categoryID int) ([]models.SlotRecord, error)
	GetPassword(ctx context.Context, id string) (*models.SlotRecord, error)
	ReservePasswords(ctx context.Context, categoryID int, numbers []int, purchaseID, buyerID string) ([]models.SlotRecord, error)
	ReleasePurchase(ctx context.Context, purchaseID string) error
	SetPasswordStatus(ctx context.Context, id string, status models.SlotStatus) error
}

// PurchaseRepository defines purchase bookkeeping operations
type PurchaseRepository interface {
	CreatePurchase(ctx context.Context, p models.Purchase) error
	GetPurchase(ctx context.Context, id string) (*models.Purchase, error)
	SetPurchaseStatus(ctx context.Context, id, status, externalRef string) error
}

// StaffRepository defines judge/speaker operations
type StaffRepository interface {
	CreateStaff(ctx context.Context, s models.Staff) error
	GetStaff(ctx context.Context, id string, eventID int) (*models.Staff, error)
	ListStaff(ctx context.Context, eventID int) ([]models.Staff, error)
}

// VoteRepository defines cattle-run vote operations
type VoteRepository interface {
	GetVote(ctx context.Context, id int) (*models.CattleRunVote, error)
	FindVote(ctx context.Context, judgeID, passwordID string, cattleNumber int) (*models.CattleRunVote, error)
	InsertVote(ctx context.Context, v models.CattleRunVote) (int64, error)
	UpdateVoteValue(ctx context.Context, id int, vote models.VoteValue) error
	ListJudgeVotes(ctx context.Context, eventID int, judgeID string) ([]models.CattleRunVote, error)
	ListEventVotes(ctx context.Context, eventID int) ([]models.CattleRunVote, error)
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	EventRepository
	CategoryRepository
	PasswordRepository
	PurchaseRepository
	StaffRepository
	VoteRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
