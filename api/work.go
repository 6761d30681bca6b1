package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/citizenhub/internal/auth"
	"github.com/garnizeh/citizenhub/internal/work"
)

type WorkHandler struct {
	svc *work.Service
}

func NewWorkHandler(svc *work.Service) *WorkHandler {
	return &WorkHandler{svc: svc}
}

func (h *WorkHandler) Opportunities(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Opportunities(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"succeeded": true, "opportunities": list})
}

// Apply records an application. A citizen token, when present, links it to the citizen.
func (h *WorkHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req work.Application
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	var submittedBy string
	if id, ok := auth.FromContext(r.Context()); ok && id.Role == auth.RoleCitizen {
		submittedBy = id.Subject
	}

	app, err := h.svc.Apply(r.Context(), mux.Vars(r)["id"], submittedBy, req)
	switch {
	case errors.Is(err, work.ErrNotFound):
		writeFailure(w, http.StatusNotFound, err.Error())
	case errors.Is(err, work.ErrInvalidApplication):
		writeFailure(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, work.ErrNoSlots):
		writeFailure(w, http.StatusConflict, err.Error())
	case err != nil:
		writeInternal(w, r, err)
	default:
		writeJSON(w, http.StatusCreated, map[string]any{"succeeded": true, "reference": app.Reference, "application": app})
	}
}
