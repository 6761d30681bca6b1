package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnizeh/citizenhub/internal/catalog"
	"github.com/garnizeh/citizenhub/internal/models"
)

func application(slot string) map[string]any {
	return map[string]any{
		"fullName":      "Kamala Devi",
		"age":           "67",
		"phone":         "9876543210",
		"email":         "kamala@example.com",
		"address":       "14 Temple Street, Bangalore",
		"experience":    "40 years of home cooking",
		"availability":  []string{slot},
		"whyInterested": "I love teaching my family recipes to young people.",
	}
}

func TestWorkMarketplace(t *testing.T) {
	h := newHarness(t, nil)
	citizen := h.loginCitizen(t, citizenA, citizenACred)

	w := h.do(t, http.MethodGet, "/work/opportunities", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[struct {
		Opportunities []catalog.WorkOpportunity `json:"opportunities"`
	}](t, w)
	require.Len(t, list.Opportunities, 6)

	w = h.do(t, http.MethodGet, "/work/opportunities?category=Cooking+%26+Recipes", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "South Indian")

	// opportunity 1 has a single slot
	w = h.do(t, http.MethodPost, "/work/opportunities/1/applications", "garbage-token", application("Morning (9-10 AM)"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(t, http.MethodPost, "/work/opportunities/1/applications", "", application("Saturday (2-5 PM)"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPost, "/work/opportunities/99/applications", "", application("Morning (9-10 AM)"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodPost, "/work/opportunities/1/applications", citizen, application("Morning (9-10 AM)"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody[struct {
		Reference   string                 `json:"reference"`
		Application models.WorkApplication `json:"application"`
	}](t, w)
	assert.Regexp(t, `^APP-[0-9A-F]{8}$`, created.Reference)
	assert.Equal(t, citizenA, created.Application.SubmittedBy)

	w = h.do(t, http.MethodPost, "/work/opportunities/1/applications", "", application("Evening (6-7 PM)"))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(t, http.MethodGet, "/work/opportunities?category=Cooking+%26+Recipes", "", nil)
	cooking := decodeBody[struct {
		Opportunities []catalog.WorkOpportunity `json:"opportunities"`
	}](t, w)
	for _, o := range cooking.Opportunities {
		if o.ID == "1" {
			assert.Equal(t, 0, o.SlotsAvailable)
		}
	}
}
