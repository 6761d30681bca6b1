package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/garnizeh/citizenhub/internal/advisor"
	"github.com/garnizeh/citizenhub/internal/catalog"
	"github.com/garnizeh/citizenhub/internal/eligibility"
)

// EligibilityHandler serves the scheme catalog, eligibility checks and the advisor.
type EligibilityHandler struct {
	checker *eligibility.Checker
	store   *catalog.Store
	advisor *advisor.Advisor
}

func NewEligibilityHandler(checker *eligibility.Checker, store *catalog.Store, adv *advisor.Advisor) *EligibilityHandler {
	return &EligibilityHandler{checker: checker, store: store, advisor: adv}
}

type eligibilityResponse struct {
	Succeeded bool `json:"succeeded"`
	eligibility.Result
}

type translateRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func (h *EligibilityHandler) Schemes(w http.ResponseWriter, r *http.Request) {
	version, schemes := h.store.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{"succeeded": true, "catalogVersion": version, "schemes": schemes})
}

func (h *EligibilityHandler) Languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"succeeded": true, "languages": catalog.Languages()})
}

// Check answers POST /eligibility. Remote failures never surface here; the
// response names the source that produced the list.
func (h *EligibilityHandler) Check(w http.ResponseWriter, r *http.Request) {
	var p eligibility.Profile
	if err := decodeJSON(w, r, &p); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := p.Validate(); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	res := h.checker.Check(r.Context(), p)
	writeJSON(w, http.StatusOK, eligibilityResponse{Succeeded: true, Result: res})
}

func languageParam(v string) (string, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return catalog.DefaultLanguage, true
	}
	_, ok := catalog.LookupLanguage(v)
	return v, ok
}

// SchemeDetails returns advisor guidance for one scheme in the requested language.
func (h *EligibilityHandler) SchemeDetails(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store.Scheme(mux.Vars(r)["id"])
	if !ok {
		writeFailure(w, http.StatusNotFound, "scheme not found")
		return
	}
	lang, ok := languageParam(r.URL.Query().Get("language"))
	if !ok {
		writeFailure(w, http.StatusBadRequest, "unsupported language")
		return
	}
	details := h.advisor.Details(r.Context(), s.Title, lang)
	writeJSON(w, http.StatusOK, map[string]any{"succeeded": true, "schemeId": s.ID, "language": lang, "details": details})
}

func (h *EligibilityHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeFailure(w, http.StatusBadRequest, "text is required")
		return
	}
	lang, ok := languageParam(req.Language)
	if !ok {
		writeFailure(w, http.StatusBadRequest, "unsupported language")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"succeeded": true, "language": lang, "text": h.advisor.Translate(r.Context(), req.Text, lang)})
}
