package handlers

import (
	"time"

	"github.com/vaquejada/senhas/internal/models"
)

// EventCreateRequest represents a request to create an event
type EventCreateRequest struct {
	Name              string    `json:"name"`
	City              string    `json:"city"`
	StartsAt          time.Time `json:"starts_at"`
	EndsAt            time.Time `json:"ends_at"`
	CattlePerPassword int       `json:"cattle_per_password"`
}

// CategoryCreateRequest represents a request to create a category
type CategoryCreateRequest struct {
	Name           string     `json:"name"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	MaxRunners     int        `json:"max_runners"`
	StartsAt       *time.Time `json:"starts_at"`
	EndsAt         *time.Time `json:"ends_at"`
}

// StaffCreateRequest represents a request to assign a judge or speaker to an event
type StaffCreateRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// CheckoutRequest is the buyer's selection submitted for purchase
type CheckoutRequest struct {
	CategoryID    int    `json:"category_id"`
	Numbers       []int  `json:"numbers"`
	TermsAccepted bool   `json:"terms_accepted"`
	DraftKey      string `json:"draft_key"`
}

// VoteSubmitRequest is a judge's call for one cattle run
type VoteSubmitRequest struct {
	PasswordID   string           `json:"password_id"`
	CattleNumber int              `json:"cattle_number"`
	Vote         models.VoteValue `json:"vote"`
}

// VoteUpdateRequest replaces the value of an editable vote
type VoteUpdateRequest struct {
	Vote models.VoteValue `json:"vote"`
}

// PasswordStatusRequest moves a password through its lifecycle
type PasswordStatusRequest struct {
	Status models.SlotStatus `json:"status"`
}
