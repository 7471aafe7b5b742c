package models

import "time"

// SlotStatus is the lifecycle state of a password record
type SlotStatus string

const (
	StatusAvailable SlotStatus = "available"
	StatusReserved  SlotStatus = "reserved"
	StatusUsed      SlotStatus = "used"
	StatusExpired   SlotStatus = "expired"
	StatusCancelled SlotStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses
func (s SlotStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusUsed, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// VoteValue is a judge's call for one cattle run
type VoteValue string

const (
	VoteValid     VoteValue = "VALID"
	VoteNull      VoteValue = "NULL"
	VoteTV        VoteValue = "TV"
	VoteDidNotRun VoteValue = "DID_NOT_RUN"
)

// Valid reports whether v is one of the four vote outcomes
func (v VoteValue) Valid() bool {
	switch v {
	case VoteValid, VoteNull, VoteTV, VoteDidNotRun:
		return true
	}
	return false
}

// Roles carried by identities. Judges and speakers are also staff roles.
const (
	RoleBuyer     = "buyer"
	RoleJudge     = "judge"
	RoleSpeaker   = "speaker"
	RoleOrganizer = "organizer"
)

// Identity is the caller as resolved by the external auth service
type Identity struct {
	UserID string `json:"sub"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// IsOrganizer reports whether the identity may manage events
func (i *Identity) IsOrganizer() bool {
	return i != nil && i.Role == RoleOrganizer
}

// Event is a vaquejada competition
type Event struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	City              string    `json:"city"`
	StartsAt          time.Time `json:"starts_at"`
	EndsAt            time.Time `json:"ends_at"`
	CattlePerPassword int       `json:"cattle_per_password"`
}

// Category is a priced tier within an event with a fixed number of passwords
type Category struct {
	ID             int        `json:"id"`
	EventID        int        `json:"event_id"`
	Name           string     `json:"name"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	MaxRunners     int        `json:"max_runners"`
	CurrentRunners int        `json:"current_runners"`
	StartsAt       *time.Time `json:"starts_at,omitempty"`
	EndsAt         *time.Time `json:"ends_at,omitempty"`
}

// OpenAt reports whether purchases are accepted at t. Missing bounds are unbounded.
func (c Category) OpenAt(t time.Time) bool {
	if c.StartsAt != nil && t.Before(*c.StartsAt) {
		return false
	}
	if c.EndsAt != nil && t.After(*c.EndsAt) {
		return false
	}
	return true
}

// SlotRecord is the backing record of a claimed password number
type SlotRecord struct {
	ID         string     `json:"id"`
	CategoryID int        `json:"category_id"`
	Number     int        `json:"number"`
	Status     SlotStatus `json:"status"`
	PurchaseID string     `json:"purchase_id,omitempty"`
	BuyerID    string     `json:"buyer_id,omitempty"`
}

// Staff is a judge or speaker assigned to an event
type Staff struct {
	ID      string `json:"id"`
	EventID int    `json:"event_id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
}

// CattleRunVote is one judge's call for one (password, cattle run)
type CattleRunVote struct {
	ID           int       `json:"id"`
	JudgeID      string    `json:"judge_id"`
	JudgeName    string    `json:"judge_name,omitempty"`
	EventID      int       `json:"event_id"`
	PasswordID   string    `json:"password_id"`
	CattleNumber int       `json:"cattle_number"`
	Vote         VoteValue `json:"vote"`
	CreatedAt    time.Time `json:"created_at"`
}

// Run returns the 1-based cattle run, treating an absent number as the first run
func (v CattleRunVote) Run() int {
	if v.CattleNumber <= 0 {
		return 1
	}
	return v.CattleNumber
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Purchase statuses
const (
	PurchasePending   = "pending"
	PurchaseConfirmed = "confirmed"
	PurchaseRejected  = "rejected"
)

// Purchase is the local bookkeeping of a checkout handed to the payment service
type Purchase struct {
	ID          string    `json:"id"`
	EventID     int       `json:"event_id"`
	CategoryID  int       `json:"category_id"`
	BuyerID     string    `json:"buyer_id"`
	Numbers     []int     `json:"numbers"`
	TotalCents  int64     `json:"total_cents"`
	Status      string    `json:"status"`
	ExternalRef string    `json:"external_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
