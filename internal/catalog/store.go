package catalog

import (
	"slices"
	"sync"
)

// Store holds the current scheme catalog as an immutable snapshot. Replace
// installs a new snapshot and bumps the version.
type Store struct {
	mu            sync.RWMutex
	version       int64
	schemes       []Scheme
	opportunities []WorkOpportunity
}

// NewStore returns a store at version 1 holding schemes and the embedded work opportunities.
func NewStore(schemes []Scheme) *Store {
	return &Store{version: 1, schemes: clone(schemes), opportunities: DefaultOpportunities()}
}

// Snapshot returns the current version and a copy of the catalog.
func (s *Store) Snapshot() (int64, []Scheme) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version, clone(s.schemes)
}

// Scheme returns the scheme with id from the current snapshot.
func (s *Store) Scheme(id string) (Scheme, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sc := range s.schemes {
		if sc.ID == id {
			return cloneScheme(sc), true
		}
	}
	return Scheme{}, false
}

// Replace installs schemes as the new snapshot and returns the new version.
func (s *Store) Replace(schemes []Scheme) int64 {
	c := clone(schemes)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemes = c
	s.version++
	return s.version
}

// Opportunities returns the work opportunities, optionally filtered by category.
func (s *Store) Opportunities(category string) []WorkOpportunity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]WorkOpportunity, 0, len(s.opportunities))
	for _, o := range s.opportunities {
		if category == "" || o.Category == category {
			o.Requirements = slices.Clone(o.Requirements)
			o.TimeSlots = slices.Clone(o.TimeSlots)
			out = append(out, o)
		}
	}
	return out
}

// Opportunity returns the work opportunity with id.
func (s *Store) Opportunity(id string) (WorkOpportunity, bool) {
	for _, o := range s.Opportunities("") {
		if o.ID == id {
			return o, true
		}
	}
	return WorkOpportunity{}, false
}

func clone(in []Scheme) []Scheme {
	out := make([]Scheme, len(in))
	for i, s := range in {
		out[i] = cloneScheme(s)
	}
	return out
}

func cloneScheme(s Scheme) Scheme {
	s.Eligibility = slices.Clone(s.Eligibility)
	s.Benefits = slices.Clone(s.Benefits)
	s.ApplicationSteps = slices.Clone(s.ApplicationSteps)
	return s
}
