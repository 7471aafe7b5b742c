package handlers

import (
	"net/http"

	"github.com/vaquejada/senhas/internal/auth"
	"github.com/vaquejada/senhas/internal/services"
)

func (h *Handlers) handleSubmitVote(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIntParam(r, "eventID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req VoteSubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	judge := auth.IdentityFrom(r.Context())
	vote, err := h.Judging.SubmitVote(r.Context(), judge.UserID, services.VoteRequest{
		EventID:      eventID,
		PasswordID:   req.PasswordID,
		CattleNumber: req.CattleNumber,
		Vote:         req.Vote,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, vote)
}

func (h *Handlers) handleUpdateVote(w http.ResponseWriter, r *http.Request) {
	voteID, err := parseIntParam(r, "voteID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req VoteUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	judge := auth.IdentityFrom(r.Context())
	vote, err := h.Judging.UpdateVote(r.Context(), judge.UserID, voteID, req.Vote)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, vote)
}

func (h *Handlers) handleGetMyVotes(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIntParam(r, "eventID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	judge := auth.IdentityFrom(r.Context())
	votes, err := h.Judging.JudgeVotes(r.Context(), eventID, judge.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, JudgeVotesResponse{Votes: votes})
}

func (h *Handlers) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIntParam(r, "eventID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	summary, err := h.Judging.Summary(r.Context(), eventID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, summary)
}
