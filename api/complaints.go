package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/garnizeh/citizenhub/internal/auth"
	"github.com/garnizeh/citizenhub/internal/complaints"
	"github.com/garnizeh/citizenhub/internal/models"
)

type ComplaintsHandler struct {
	svc *complaints.Service
}

func NewComplaintsHandler(svc *complaints.Service) *ComplaintsHandler {
	return &ComplaintsHandler{svc: svc}
}

type complaintsResponse struct {
	Succeeded  bool               `json:"succeeded"`
	Complaints []models.Complaint `json:"complaints"`
}

// complaintID accepts the id as a JSON number or a numeric string.
type complaintID int64

func (c *complaintID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("complaintId must be an integer")
	}
	*c = complaintID(n)
	return nil
}

type updateStatusRequest struct {
	ComplaintID complaintID            `json:"complaintId"`
	Status      models.ComplaintStatus `json:"status"`
}

// writeComplaintError maps service errors onto status codes.
func writeComplaintError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, complaints.ErrMissingField), errors.Is(err, complaints.ErrInvalidStatus):
		writeFailure(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, complaints.ErrNotFound):
		writeFailure(w, http.StatusNotFound, err.Error())
	case errors.Is(err, complaints.ErrForbidden):
		writeFailure(w, http.StatusForbidden, err.Error())
	case errors.Is(err, complaints.ErrInvalidTransition):
		writeFailure(w, http.StatusConflict, err.Error())
	default:
		writeInternal(w, r, err)
	}
}

func (h *ComplaintsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var req models.Complaint
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	cid, err := h.svc.Submit(r.Context(), id.Subject, req)
	if err != nil {
		writeComplaintError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"succeeded": true, "complaintId": cid})
}

func (h *ComplaintsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, complaintsResponse{Succeeded: true, Complaints: list})
}

// ListMine returns the complaints filed by the calling citizen.
func (h *ComplaintsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	list, err := h.svc.ListMine(r.Context(), id.Subject)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, complaintsResponse{Succeeded: true, Complaints: list})
}

// ListForAdmin returns the pending queue of the calling admin's location.
func (h *ComplaintsHandler) ListForAdmin(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	list, err := h.svc.ListForAdmin(r.Context(), id.Subject)
	if err != nil {
		writeComplaintError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, complaintsResponse{Succeeded: true, Complaints: list})
}

// Export streams the calling admin's queue as an XLSX workbook.
func (h *ComplaintsHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var buf bytes.Buffer
	if err := h.svc.ExportXLSX(r.Context(), id.Subject, &buf); err != nil {
		writeComplaintError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=complaints.xlsx")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *ComplaintsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var req updateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ComplaintID <= 0 {
		writeFailure(w, http.StatusBadRequest, "complaintId is required")
		return
	}
	if req.Status == "" {
		writeFailure(w, http.StatusBadRequest, "status is required")
		return
	}

	c, err := h.svc.UpdateStatus(r.Context(), id.Subject, int64(req.ComplaintID), req.Status)
	if err != nil {
		writeComplaintError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"succeeded": true, "complaint": c})
}

// Events lists the status history of one complaint.
func (h *ComplaintsHandler) Events(w http.ResponseWriter, r *http.Request) {
	cid, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid complaint id")
		return
	}
	events, err := h.svc.Events(r.Context(), cid)
	if err != nil {
		writeComplaintError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"succeeded": true, "events": events})
}
