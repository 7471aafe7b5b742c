package services

import (
	"context"

	"github.com/vaquejada/senhas/internal/models"
)

// Broadcaster defines the interface for broadcasting messages to clients
type Broadcaster interface {
	BroadcastSlotsUpdated(eventID, categoryID int, numbers []int)
	BroadcastVoteSummary(eventID int, summary *VoteSummary)
}

// EventServicer defines the interface for event and category operations
type EventServicer interface {
	CreateEvent(ctx context.Context, e models.Event) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	GetEvent(ctx context.Context, id int) (*models.Event, error)
	CreateCategory(ctx context.Context, eventID int, c models.Category) (*models.Category, error)
	ListCategories(ctx context.Context, eventID int) ([]models.Category, error)
	GetCategory(ctx context.Context, eventID, categoryID int) (*models.Category, error)
	Grid(ctx context.Context, eventID, categoryID int) (*GridView, error)
}

// StaffServicer defines the interface for staff operations
type StaffServicer interface {
	CreateStaff(ctx context.Context, eventID int, st models.Staff) (*models.Staff, error)
	ListStaff(ctx context.Context, eventID int) ([]models.Staff, error)
	ActiveJudges(ctx context.Context, eventID int) ([]models.Staff, error)
}

// PurchaseServicer defines the interface for checkout and ticket operations
type PurchaseServicer interface {
	Checkout(ctx context.Context, identity *models.Identity, req CheckoutRequest) (*CheckoutResult, error)
	GetPurchase(ctx context.Context, identity *models.Identity, id string) (*models.Purchase, error)
	SetPasswordStatus(ctx context.Context, passwordID string, status models.SlotStatus) (*models.SlotRecord, error)
	TicketQR(ctx context.Context, identity *models.Identity, passwordID string) ([]byte, error)
	SetBroadcaster(b Broadcaster)
}

// DraftServicer defines the interface for parked selections
type DraftServicer interface {
	DraftSaver
	Restore(ctx context.Context, eventID int, key string) (*RestoredDraft, bool, error)
}

// JudgingServicer defines the interface for judging operations
type JudgingServicer interface {
	SubmitVote(ctx context.Context, judgeID string, req VoteRequest) (*JudgeVote, error)
	UpdateVote(ctx context.Context, judgeID string, voteID int, value models.VoteValue) (*JudgeVote, error)
	JudgeVotes(ctx context.Context, eventID int, judgeID string) ([]JudgeVote, error)
	Summary(ctx context.Context, eventID int) (*VoteSummary, error)
	SetBroadcaster(b Broadcaster)
}

// Ensure concrete types implement interfaces
var (
	_ EventServicer    = (*EventService)(nil)
	_ StaffServicer    = (*StaffService)(nil)
	_ PurchaseServicer = (*PurchaseService)(nil)
	_ DraftServicer    = (*DraftService)(nil)
	_ JudgingServicer  = (*JudgingService)(nil)
)
