package pending

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// Entry is a correlation-table record for an event awaiting its audio verdict.
// The stored score is immutable once written; the audio-adjusted score is
// computed outside the entry.
type Entry struct {
	// ID is the detection event identifier the entry is keyed by.
	ID string
	// Score is the initial threat score at inquiry time.
	Score float64
	// CreatedAt is when the inquiry was issued.
	CreatedAt time.Time
	// InitialData is the original subject payload, replayed in alerts.
	InitialData json.RawMessage
}

// Clone returns a copy of the entry to avoid leaking internal references.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}

	cloned := *e

	return &cloned
}

// ErrDuplicateKey is returned by Put when an entry already exists for the id.
var ErrDuplicateKey = errors.New("entry already exists for id")

// Store is a concurrency-safe, time-bounded table of events pending an
// audio verdict. At most one entry exists per event id at any time.
type Store struct {
	// mu protects concurrent access to the entries map.
	mu sync.Mutex
	// entries maps event ids to their pending records.
	entries map[string]*Entry
}

// NewStore creates an empty pending-event store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]*Entry),
	}
}

// Put stores the entry keyed by its id.
// It fails with ErrDuplicateKey when an entry for the id already exists;
// the correlator checks first, but the store defends itself regardless.
func (s *Store) Put(entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.entries[entry.ID]; found {
		return ErrDuplicateKey
	}

	s.entries[entry.ID] = entry.Clone()

	return nil
}

// Get returns a copy of the entry for the id, if present.
func (s *Store) Get(id string) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, found := s.entries[id]

	return entry.Clone(), found
}

// Delete removes the entry for the id, if present.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
}

// Len returns the number of pending entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// SweepExpired removes every entry older than ttl at the provided instant
// and returns the ids that were removed.
func (s *Store) SweepExpired(now time.Time, ttl time.Duration) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string

	for id, entry := range s.entries {
		if now.Sub(entry.CreatedAt) > ttl {
			removed = append(removed, id)
			delete(s.entries, id)
		}
	}

	return removed
}
