package roster

import (
	"sync"
	"time"
)

// Store holds the last fetched roster. Replace is the only writer; a later
// Replace always wins over an earlier one.
type Store struct {
	mu        sync.RWMutex
	hospitals []Hospital
	warnings  map[string][]string
	updatedAt time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{warnings: map[string][]string{}}
}

// Replace swaps in a freshly normalized roster
func (s *Store) Replace(results []Result) {
	hospitals := Hospitals(results)
	warnings := make(map[string][]string)
	for _, r := range results {
		if r.Defaulted() {
			warnings[r.Hospital.ID] = append([]string(nil), r.Warnings...)
		}
	}

	s.mu.Lock()
	s.hospitals = hospitals
	s.warnings = warnings
	s.updatedAt = time.Now()
	s.mu.Unlock()
}

// Snapshot returns a copy of the stored hospitals
func (s *Store) Snapshot() []Hospital {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Hospital, len(s.hospitals))
	copy(out, s.hospitals)
	return out
}

// View applies criteria to the stored roster without touching it
func (s *Store) View(c Criteria) []Hospital {
	return Apply(s.Snapshot(), c)
}

// Get returns the hospital with the given id
func (s *Store) Get(id string) (Hospital, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, h := range s.hospitals {
		if h.ID == id {
			return h, true
		}
	}
	return Hospital{}, false
}

// Warnings returns the data-quality warnings recorded for a hospital
func (s *Store) Warnings(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.warnings[id]...)
}

// Len is the number of stored hospitals
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hospitals)
}

// UpdatedAt is the time of the last Replace, zero if never filled
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}
