package services_test

import (
	"sync"

	"github.com/vaquejada/senhas/internal/models"
	"github.com/vaquejada/senhas/internal/services"
)

// recordingBroadcaster captures broadcasts for assertions
type recordingBroadcaster struct {
	mu        sync.Mutex
	slots     [][]int
	summaries []*services.VoteSummary
}

func (b *recordingBroadcaster) BroadcastSlotsUpdated(eventID, categoryID int, numbers []int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.slots = append(b.slots, numbers)
}

func (b *recordingBroadcaster) BroadcastVoteSummary(eventID int, summary *services.VoteSummary) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.summaries = append(b.summaries, summary)
}

func buyer(id string) *models.Identity {
	return &models.Identity{UserID: id, Name: "Comprador", Role: models.RoleBuyer}
}

func organizer() *models.Identity {
	return &models.Identity{UserID: "org", Name: "Organizador", Role: models.RoleOrganizer}
}
