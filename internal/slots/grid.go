// Package slots models a category's numbered passwords: the occupancy grid, the buyer's
// selection session and the checkout preconditions. Everything here is synchronous and
// free of I/O; callers pass in already-fetched records and dispatch the results.
package slots

import "github.com/vaquejada/senhas/internal/models"

// Claim is the backing state of one password number: either Unclaimed or Claimed by a
// record. A zero Claim is Unclaimed.
type Claim struct {
	record *models.SlotRecord
}

// Unclaimed is the claim of a number with no backing record
var Unclaimed = Claim{}

// Claimed wraps a backing record
func Claimed(rec models.SlotRecord) Claim {
	return Claim{record: &rec}
}

// Record returns the backing record and whether one exists
func (c Claim) Record() (models.SlotRecord, bool) {
	if c.record == nil {
		return models.SlotRecord{}, false
	}
	return *c.record, true
}

// Status is the record's status, or available when unclaimed
func (c Claim) Status() models.SlotStatus {
	if c.record == nil {
		return models.StatusAvailable
	}
	return c.record.Status
}

// RecordID is the backing record id, or "" when unclaimed
func (c Claim) RecordID() string {
	if c.record == nil {
		return ""
	}
	return c.record.ID
}

// SlotInfo is one displayable entry of the grid
type SlotInfo struct {
	Number   int               `json:"number"`
	Occupied bool              `json:"occupied"`
	Status   models.SlotStatus `json:"status"`
	RecordID string            `json:"record_id,omitempty"`
	Claim    Claim             `json:"-"`
}

// Grid is a dense slice of SlotInfo where index i holds number i+1
type Grid []SlotInfo

// BuildGrid returns exactly totalSlots entries numbered 1..totalSlots. Records with a
// number outside that range are ignored. A slot is occupied iff its effective status is
// not available, so an explicit available record stays selectable.
func BuildGrid(totalSlots int, records []models.SlotRecord) Grid {
	if totalSlots < 0 {
		totalSlots = 0
	}

	grid := make(Grid, totalSlots)
	for i := range grid {
		grid[i] = SlotInfo{Number: i + 1, Status: models.StatusAvailable}
	}

	for _, rec := range records {
		if rec.Number < 1 || rec.Number > totalSlots {
			continue
		}
		entry := &grid[rec.Number-1]
		// a non-available record always beats an available one for the same number
		if _, claimed := entry.Claim.Record(); claimed && entry.Occupied && rec.Status == models.StatusAvailable {
			continue
		}
		entry.Claim = Claimed(rec)
		entry.Status = entry.Claim.Status()
		entry.RecordID = rec.ID
		entry.Occupied = entry.Status != models.StatusAvailable
	}

	return grid
}

// Lookup returns the entry for number, if it is on the grid
func (g Grid) Lookup(number int) (SlotInfo, bool) {
	if number < 1 || number > len(g) {
		return SlotInfo{}, false
	}
	return g[number-1], true
}

// CountAvailable returns how many entries are not occupied
func (g Grid) CountAvailable() int {
	n := 0
	for _, s := range g {
		if !s.Occupied {
			n++
		}
	}
	return n
}

// Occupied returns the numbers of all occupied entries in ascending order
func (g Grid) Occupied() []int {
	var numbers []int
	for _, s := range g {
		if s.Occupied {
			numbers = append(numbers, s.Number)
		}
	}
	return numbers
}
