package services

import (
	"github.com/vaquejada/senhas/internal/errors"
	"github.com/vaquejada/senhas/internal/repository"
)

// API codes for service errors
const (
	CodeVoteLocked      = "VOTE_LOCKED"
	CodePaymentRejected = "PAYMENT_REJECTED"
	CodeCategoryClosed  = "CATEGORY_CLOSED"
	CodePaymentDown     = "PAYMENT_UNAVAILABLE"
)

// Service errors
var (
	ErrVoteLocked      = errors.Conflict("vote is final").WithCode(CodeVoteLocked)
	ErrNotJudge        = errors.Forbidden("only judges of this event may vote")
	ErrNotVoteOwner    = errors.Forbidden("vote belongs to another judge")
	ErrInvalidVote     = errors.InvalidInput("vote must be one of VALID, NULL, TV, DID_NOT_RUN")
	ErrCategoryClosed  = errors.Validation("category is not open for purchases").WithCode(CodeCategoryClosed)
	ErrPasswordNoRun   = errors.Validation("password has no runner")
	ErrInvalidStatus   = errors.InvalidInput("status must be one of available, reserved, used, expired, cancelled")
	ErrInvalidDraftKey = errors.InvalidInput("draft key must be 1 to 128 characters")
	ErrNotTicketOwner  = errors.Forbidden("ticket belongs to another buyer")
	ErrOrganizerOnly   = errors.Forbidden("organizer role required")
)

// notFound translates repository.ErrNotFound into a classified error, passing other errors through
func notFound(err error, what string) error {
	if err == repository.ErrNotFound {
		return errors.NotFound(what + " not found")
	}
	return err
}
