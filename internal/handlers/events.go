package handlers

import (
	"net/http"

	"github.com/vaquejada/senhas/internal/models"
)

func (h *Handlers) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Events.ListEvents(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, EventsResponse{Events: events})
}

func (h *Handlers) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIntParam(r, "eventID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	e, err := h.Events.GetEvent(r.Context(), eventID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, e)
}

func (h *Handlers) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	e, err := h.Events.CreateEvent(r.Context(), models.Event{
		Name:              req.Name,
		City:              req.City,
		StartsAt:          req.StartsAt,
		EndsAt:            req.EndsAt,
		CattlePerPassword: req.CattlePerPassword,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, e)
}

func (h *Handlers) handleListCategories(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIntParam(r, "eventID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	categories, err := h.Events.ListCategories(r.Context(), eventID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, CategoriesResponse{Categories: categories})
}

func (h *Handlers) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIntParam(r, "eventID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	categoryID, err := parseIntParam(r, "categoryID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	c, err := h.Events.GetCategory(r.Context(), eventID, categoryID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, c)
}

func (h *Handlers) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIntParam(r, "eventID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req CategoryCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	c, err := h.Events.CreateCategory(r.Context(), eventID, models.Category{
		Name:           req.Name,
		UnitPriceCents: req.UnitPriceCents,
		MaxRunners:     req.MaxRunners,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, c)
}

func (h *Handlers) handleGetGrid(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIntParam(r, "eventID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	categoryID, err := parseIntParam(r, "categoryID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	view, err := h.Events.Grid(r.Context(), eventID, categoryID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, view)
}

func (h *Handlers) handleListStaff(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIntParam(r, "eventID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	staff, err := h.Staff.ListStaff(r.Context(), eventID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, StaffResponse{Staff: staff})
}

func (h *Handlers) handleCreateStaff(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIntParam(r, "eventID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req StaffCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	st, err := h.Staff.CreateStaff(r.Context(), eventID, models.Staff{ID: req.ID, Name: req.Name, Role: req.Role})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, st)
}
