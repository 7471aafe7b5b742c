package repository

import (
	"errors"

	apperrors "github.com/vaquejada/senhas/internal/errors"
)

// ErrNotFound is returned when a requested record is not found in the repository.
// This abstracts away the underlying storage implementation (SQL, NoSQL, etc.)
// from the service layer.
var ErrNotFound = errors.New("record not found")

// CodeStaleSlot marks a reservation that lost a race for a password number
const CodeStaleSlot = "STALE_SLOT"

// ErrDuplicateVote is returned when a (judge, password, cattle run) already has a vote
var ErrDuplicateVote = errors.New("vote already exists")

// StaleSlot builds the conflict returned when a number is no longer available
func StaleSlot(number int, status string) error {
	return apperrors.Conflictf("password %d is no longer available (%s)", number, status).WithCode(CodeStaleSlot)
}
