// Package judging aggregates judges' cattle-run votes and decides whether a cast vote
// may still be changed.
package judging

import (
	"sort"

	"github.com/vaquejada/senhas/internal/models"
)

// Outcome is the aggregated result for a set of votes
type Outcome string

const (
	OutcomePending   Outcome = "PENDING"
	OutcomeTie       Outcome = "TIE"
	OutcomeValid     Outcome = Outcome(models.VoteValid)
	OutcomeNull      Outcome = Outcome(models.VoteNull)
	OutcomeTV        Outcome = Outcome(models.VoteTV)
	OutcomeDidNotRun Outcome = Outcome(models.VoteDidNotRun)
)

// Decided reports whether the outcome is one of the four vote values
func (o Outcome) Decided() bool {
	switch o {
	case OutcomeValid, OutcomeNull, OutcomeTV, OutcomeDidNotRun:
		return true
	case OutcomePending, OutcomeTie:
		return false
	}
	return false
}

// Stats holds vote counts and the majority outcome for one scope
type Stats struct {
	Valid     int     `json:"valid"`
	Null      int     `json:"null"`
	TV        int     `json:"tv"`
	DidNotRun int     `json:"did_not_run"`
	Total     int     `json:"total"`
	Outcome   Outcome `json:"outcome"`
}

// Count returns the tally for a single vote value
func (s Stats) Count(v models.VoteValue) int {
	switch v {
	case models.VoteValid:
		return s.Valid
	case models.VoteNull:
		return s.Null
	case models.VoteTV:
		return s.TV
	case models.VoteDidNotRun:
		return s.DidNotRun
	}
	return 0
}

func (s *Stats) add(v models.VoteValue) {
	switch v {
	case models.VoteValid:
		s.Valid++
	case models.VoteNull:
		s.Null++
	case models.VoteTV:
		s.TV++
	case models.VoteDidNotRun:
		s.DidNotRun++
	default:
		return
	}
	s.Total++
}

func (s *Stats) decide() {
	if s.Total == 0 {
		s.Outcome = OutcomePending
		return
	}

	counts := []struct {
		outcome Outcome
		n       int
	}{
		{OutcomeValid, s.Valid},
		{OutcomeNull, s.Null},
		{OutcomeTV, s.TV},
		{OutcomeDidNotRun, s.DidNotRun},
	}

	best, bestN, shared := OutcomePending, -1, false
	for _, c := range counts {
		switch {
		case c.n > bestN:
			best, bestN, shared = c.outcome, c.n, false
		case c.n == bestN:
			shared = true
		}
	}
	if shared {
		s.Outcome = OutcomeTie
		return
	}
	s.Outcome = best
}

// Aggregate counts votes by value and picks the value with a strict plurality.
// Unknown vote values are ignored. No votes yields PENDING; a shared top count yields TIE.
func Aggregate(votes []models.CattleRunVote) Stats {
	var s Stats
	for _, v := range votes {
		s.add(v.Vote)
	}
	s.decide()
	return s
}

// RunResult is the aggregate for one cattle run of a password
type RunResult struct {
	CattleNumber int   `json:"cattle_number"`
	Stats        Stats `json:"stats"`
}

// SlotResult is the aggregate for a whole password across its cattle runs
type SlotResult struct {
	Runs []RunResult `json:"runs"`
	// Overall tallies every vote across runs
	Overall Stats `json:"overall"`
	// CompletedJudges lists judges that voted on every run, sorted
	CompletedJudges []string `json:"completed_judges"`
}

// Run returns the result for the given 1-based cattle run
func (r SlotResult) Run(cattleNumber int) (RunResult, bool) {
	if cattleNumber < 1 || cattleNumber > len(r.Runs) {
		return RunResult{}, false
	}
	return r.Runs[cattleNumber-1], true
}

// AggregateBySlot aggregates each cattle run 1..cattlePerSlot separately. Votes without a
// cattle number count toward run 1; votes for runs beyond cattlePerSlot are ignored.
func AggregateBySlot(votes []models.CattleRunVote, cattlePerSlot int) SlotResult {
	if cattlePerSlot < 1 {
		cattlePerSlot = 1
	}

	byRun := make([][]models.CattleRunVote, cattlePerSlot)
	judgeRuns := make(map[string]map[int]bool)
	var inRange []models.CattleRunVote

	for _, v := range votes {
		run := v.Run()
		if run > cattlePerSlot || !v.Vote.Valid() {
			continue
		}
		byRun[run-1] = append(byRun[run-1], v)
		inRange = append(inRange, v)
		if judgeRuns[v.JudgeID] == nil {
			judgeRuns[v.JudgeID] = make(map[int]bool)
		}
		judgeRuns[v.JudgeID][run] = true
	}

	result := SlotResult{
		Runs:            make([]RunResult, cattlePerSlot),
		Overall:         Aggregate(inRange),
		CompletedJudges: []string{},
	}
	for i := range byRun {
		result.Runs[i] = RunResult{CattleNumber: i + 1, Stats: Aggregate(byRun[i])}
	}
	for judge, runs := range judgeRuns {
		if len(runs) == cattlePerSlot {
			result.CompletedJudges = append(result.CompletedJudges, judge)
		}
	}
	sort.Strings(result.CompletedJudges)

	return result
}
