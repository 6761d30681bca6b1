package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnizeh/citizenhub/internal/catalog"
)

type eligibilityBody struct {
	Succeeded      bool             `json:"succeeded"`
	Source         string           `json:"source"`
	CatalogVersion int64            `json:"catalogVersion"`
	Schemes        []catalog.Scheme `json:"schemes"`
	Error          string           `json:"error"`
}

var studentProfile = map[string]string{
	"age":    "21",
	"income": "below-1",
	"gender": "female",
	"state":  "Kerala",
}

func TestCatalogEndpoints(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(t, http.MethodGet, "/schemes", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	schemes := decodeBody[eligibilityBody](t, w)
	assert.Len(t, schemes.Schemes, 10)
	assert.Equal(t, int64(1), schemes.CatalogVersion)

	w = h.do(t, http.MethodGet, "/languages", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	langs := decodeBody[struct {
		Languages []catalog.Language `json:"languages"`
	}](t, w)
	require.Len(t, langs.Languages, 12)
	assert.Equal(t, "english", langs.Languages[0].Key)
}

func TestEligibilityFallsBackWithoutBackend(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(t, http.MethodPost, "/eligibility", "", studentProfile)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody[eligibilityBody](t, w)
	assert.True(t, body.Succeeded)
	assert.Equal(t, "fallback", body.Source)
	assert.NotEmpty(t, body.Schemes)
	assert.LessOrEqual(t, len(body.Schemes), 6)
}

func TestEligibilityUsesRemoteAnswer(t *testing.T) {
	reply, err := json.Marshal(catalog.DefaultSchemes()[:2])
	require.NoError(t, err)
	stub := &stubCompleter{reply: "```json\n" + string(reply) + "\n```"}
	h := newHarness(t, stub)

	w := h.do(t, http.MethodPost, "/eligibility", "", studentProfile)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody[eligibilityBody](t, w)
	assert.Equal(t, "remote", body.Source)
	require.Len(t, body.Schemes, 2)
	assert.Equal(t, catalog.DefaultSchemes()[0].ID, body.Schemes[0].ID)
	assert.Equal(t, int32(1), stub.calls.Load())
}

func TestEligibilityRejectsInvalidProfile(t *testing.T) {
	stub := &stubCompleter{reply: "[]"}
	h := newHarness(t, stub)

	bad := []any{
		"not json",
		map[string]string{"income": "below-1", "gender": "female", "state": "Kerala"},
		map[string]string{"age": "-3", "income": "below-1", "gender": "female", "state": "Kerala"},
		map[string]string{"age": "30", "income": "lots", "gender": "female", "state": "Kerala"},
	}
	for _, b := range bad {
		w := h.do(t, http.MethodPost, "/eligibility", "", b)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%v", b)
	}
	assert.Zero(t, stub.calls.Load(), "invalid profiles never reach the backend")
}

func TestSchemeDetailsAndTranslate(t *testing.T) {
	stub := &stubCompleter{reply: "## Overview\nDetails here"}
	h := newHarness(t, stub)
	id := catalog.DefaultSchemes()[0].ID

	w := h.do(t, http.MethodGet, "/schemes/"+id+"/details?language=hindi", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Details here")

	w = h.do(t, http.MethodGet, "/schemes/999/details", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodGet, "/schemes/"+id+"/details?language=klingon", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPost, "/translate", "", map[string]string{"text": "Hello", "language": "tamil"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Details here")

	w = h.do(t, http.MethodPost, "/translate", "", map[string]string{"text": "", "language": "tamil"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdvisorDegradesWhenBackendFails(t *testing.T) {
	stub := &stubCompleter{err: errors.New("upstream 503")}
	h := newHarness(t, stub)
	s := catalog.DefaultSchemes()[0]

	w := h.do(t, http.MethodGet, "/schemes/"+s.ID+"/details", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	details := decodeBody[struct {
		Details string `json:"details"`
	}](t, w)
	assert.Contains(t, details.Details, s.Title)
	assert.Contains(t, details.Details, "india.gov.in")

	w = h.do(t, http.MethodPost, "/translate", "", map[string]string{"text": "Hello", "language": "tamil"})
	require.Equal(t, http.StatusOK, w.Code)
	translated := decodeBody[struct {
		Text string `json:"text"`
	}](t, w)
	assert.Equal(t, "Hello", translated.Text)
}
