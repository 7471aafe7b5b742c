package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vaquejada/senhas/internal/auth"
	"github.com/vaquejada/senhas/internal/services"
)

func (h *Handlers) handleCheckout(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIntParam(r, "eventID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.Purchases.Checkout(r.Context(), auth.IdentityFrom(r.Context()), services.CheckoutRequest{
		EventID:       eventID,
		CategoryID:    req.CategoryID,
		Numbers:       req.Numbers,
		TermsAccepted: req.TermsAccepted,
		DraftKey:      req.DraftKey,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, result)
}

func (h *Handlers) handleRestoreDraft(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIntParam(r, "eventID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	d, ok, err := h.Drafts.Restore(r.Context(), eventID, chi.URLParam(r, "key"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, DraftResponse{Found: ok, Draft: d})
}

func (h *Handlers) handleGetPurchase(w http.ResponseWriter, r *http.Request) {
	p, err := h.Purchases.GetPurchase(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "purchaseID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, p)
}

func (h *Handlers) handleTicketQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.Purchases.TicketQR(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "passwordID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Write(png)
}

func (h *Handlers) handleSetPasswordStatus(w http.ResponseWriter, r *http.Request) {
	var req PasswordStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	pw, err := h.Purchases.SetPasswordStatus(r.Context(), chi.URLParam(r, "passwordID"), req.Status)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, pw)
}
