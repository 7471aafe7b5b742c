package handlers

import (
	"github.com/vaquejada/senhas/internal/models"
	"github.com/vaquejada/senhas/internal/services"
)

// EventsResponse lists events
type EventsResponse struct {
	Events []models.Event `json:"events"`
}

// CategoriesResponse lists the categories of an event
type CategoriesResponse struct {
	Categories []models.Category `json:"categories"`
}

// StaffResponse lists the staff of an event
type StaffResponse struct {
	Staff []models.Staff `json:"staff"`
}

// DraftResponse carries a restored selection. Found is false when nothing usable was parked.
type DraftResponse struct {
	Found bool                    `json:"found"`
	Draft *services.RestoredDraft `json:"draft,omitempty"`
}

// JudgeVotesResponse lists a judge's own calls
type JudgeVotesResponse struct {
	Votes []services.JudgeVote `json:"votes"`
}
