package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/garnizeh/citizenhub/internal/auth"
)

type AuthHandler struct {
	svc *auth.Service
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type citizenLoginRequest struct {
	AadharNo string `json:"aadharNo"`
	Password string `json:"password"`
}

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Succeeded bool   `json:"succeeded"`
	JWTToken  string `json:"jwtToken"`
}

// AuthUser signs a citizen in with their Aadhaar number.
func (h *AuthHandler) AuthUser(w http.ResponseWriter, r *http.Request) {
	var req citizenLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	req.AadharNo = strings.TrimSpace(req.AadharNo)
	if req.AadharNo == "" || req.Password == "" {
		writeFailure(w, http.StatusBadRequest, "aadharNo and password are required")
		return
	}

	token, _, err := h.svc.LoginCitizen(r.Context(), req.AadharNo, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeFailure(w, http.StatusUnauthorized, "Invalid user credentials")
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Succeeded: true, JWTToken: token})
}

// AuthAdmin signs an admin in with their email.
func (h *AuthHandler) AuthAdmin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeFailure(w, http.StatusBadRequest, "email and password are required")
		return
	}

	token, _, err := h.svc.LoginAdmin(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeFailure(w, http.StatusUnauthorized, "Invalid admin credentials")
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Succeeded: true, JWTToken: token})
}

// Signout revokes the presented token until it would have expired.
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "Missing Authorization header")
		return
	}
	if err := h.svc.Tokens().Revoke(r.Context(), id); err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"succeeded": true, "message": "signed out"})
}
