package judging

import "github.com/vaquejada/senhas/internal/models"

// Access describes what a judge may do with a (password, cattle run) they are scoring
type Access int

const (
	// Open means no vote exists yet and a first vote is accepted
	Open Access = iota
	// Editable means the existing vote is deferred (TV) and may be replaced
	Editable
	// Locked means the existing vote is a final call
	Locked
)

func (a Access) String() string {
	switch a {
	case Open:
		return "open"
	case Editable:
		return "editable"
	case Locked:
		return "locked"
	}
	return "unknown"
}

// Editability classifies an existing vote. nil means the judge has not voted yet.
func Editability(vote *models.CattleRunVote) Access {
	if vote == nil {
		return Open
	}
	switch vote.Vote {
	case models.VoteTV:
		return Editable
	case models.VoteValid, models.VoteNull, models.VoteDidNotRun:
		return Locked
	}
	return Locked
}

// IsEditable reports whether an existing vote may be updated. Only TV, which sends the
// run to video review, stays open for revision.
func IsEditable(vote *models.CattleRunVote) bool {
	return Editability(vote) == Editable
}
