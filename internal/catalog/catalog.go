// Package catalog holds the read-mostly reference data served by the API: the
// government scheme catalog, the supported response languages and the
// elderly work opportunities.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var fixtures embed.FS

// Scheme is a government benefit program record.
type Scheme struct {
	ID               string   `json:"id" yaml:"id"`
	Title            string   `json:"title" yaml:"title"`
	Description      string   `json:"description" yaml:"description"`
	Amount           string   `json:"amount" yaml:"amount"`
	Deadline         string   `json:"deadline" yaml:"deadline"`
	Category         string   `json:"category" yaml:"category"`
	Eligibility      []string `json:"eligibility" yaml:"eligibility"`
	Benefits         []string `json:"benefits" yaml:"benefits"`
	ApplicationSteps []string `json:"applicationSteps" yaml:"applicationSteps"`
	IsNew            bool     `json:"isNew" yaml:"isNew"`
	IsUrgent         bool     `json:"isUrgent" yaml:"isUrgent"`
	Applied          int64    `json:"applied" yaml:"applied"`
	Slots            int64    `json:"slots" yaml:"slots"`
	Ministry         string   `json:"ministry" yaml:"ministry"`
}

// Scheme categories used by the local eligibility rules.
const (
	CategoryEducation    = "Education"
	CategoryDigitalIndia = "Digital India"
	CategoryWomenChild   = "Women & Child"
	CategoryHealthcare   = "Healthcare"
	CategoryBusiness     = "Business"
	CategoryAgriculture  = "Agriculture"
	CategoryHousing      = "Housing"
)

type ClientInfo struct {
	Name    string  `json:"name" yaml:"name"`
	Rating  float64 `json:"rating" yaml:"rating"`
	Reviews int     `json:"reviews" yaml:"reviews"`
}

// WorkOpportunity is a paid teaching or consulting engagement offered to senior citizens.
type WorkOpportunity struct {
	ID             string     `json:"id" yaml:"id"`
	Title          string     `json:"title" yaml:"title"`
	Category       string     `json:"category" yaml:"category"`
	Description    string     `json:"description" yaml:"description"`
	Location       string     `json:"location" yaml:"location"`
	Duration       string     `json:"duration" yaml:"duration"`
	Payment        string     `json:"payment" yaml:"payment"`
	Requirements   []string   `json:"requirements" yaml:"requirements"`
	TimeSlots      []string   `json:"timeSlots" yaml:"timeSlots"`
	ClientInfo     ClientInfo `json:"clientInfo" yaml:"clientInfo"`
	Urgency        string     `json:"urgency" yaml:"urgency"`
	SlotsAvailable int        `json:"slotsAvailable" yaml:"slotsAvailable"`
	TotalSlots     int        `json:"totalSlots" yaml:"totalSlots"`
	PostedDate     string     `json:"postedDate" yaml:"postedDate"`
}

// HasTimeSlot reports whether slot is one of the offered time slots.
func (w WorkOpportunity) HasTimeSlot(slot string) bool {
	for _, s := range w.TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// package-level logger for internal/catalog; can be replaced by callers
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by internal/catalog. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// DefaultSchemes returns a fresh copy of the embedded scheme catalog.
func DefaultSchemes() []Scheme {
	f, err := fixtures.Open("data/schemes.yaml")
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded schemes missing: %v", err))
	}
	defer f.Close()

	schemes, err := DecodeSchemes(f)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded schemes invalid: %v", err))
	}
	return schemes
}

// DefaultOpportunities returns a fresh copy of the embedded work opportunities.
func DefaultOpportunities() []WorkOpportunity {
	b, err := fixtures.ReadFile("data/opportunities.yaml")
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded opportunities missing: %v", err))
	}
	var doc struct {
		Opportunities []WorkOpportunity `yaml:"opportunities"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		panic(fmt.Sprintf("catalog: embedded opportunities invalid: %v", err))
	}
	return doc.Opportunities
}

// DecodeSchemes reads a `schemes:` YAML document and checks every record.
func DecodeSchemes(r io.Reader) ([]Scheme, error) {
	var doc struct {
		Schemes []Scheme `yaml:"schemes"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode schemes: %w", err)
	}
	if len(doc.Schemes) == 0 {
		return nil, errors.New("decode schemes: no schemes")
	}

	seen := make(map[string]bool, len(doc.Schemes))
	for i, s := range doc.Schemes {
		if strings.TrimSpace(s.ID) == "" || strings.TrimSpace(s.Title) == "" || strings.TrimSpace(s.Category) == "" {
			return nil, fmt.Errorf("decode schemes: record %d needs id, title and category", i)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("decode schemes: duplicate id %q", s.ID)
		}
		seen[s.ID] = true
	}
	return doc.Schemes, nil
}

// LoadSchemesFile reads a scheme override file from disk.
func LoadSchemesFile(path string) ([]Scheme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return DecodeSchemes(f)
}
