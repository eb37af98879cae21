package board

import (
	"errors"
	"sync"
	"time"

	"departureboard.app/internal/journey"
)

// ErrEmptySnapshot is returned when a response without data is offered to
// the snapshot.
var ErrEmptySnapshot = errors.New("trip response has no data")

// View is a reader's private copy of the snapshot.
type View struct {
	Response   journey.TripResponse
	Generation uint64
	FetchedAt  time.Time
}

// Snapshot is the single slot holding the latest good trip response. The
// fetch task is its only writer; any number of goroutines may read it.
type Snapshot struct {
	mutex      sync.RWMutex
	response   journey.TripResponse
	generation uint64
	fetchedAt  time.Time
}

// NewSnapshot creates a snapshot that already holds initial, so readers
// never observe an empty slot.
func NewSnapshot(initial journey.TripResponse, fetchedAt time.Time) (*Snapshot, error) {
	if initial.Data == nil {
		return nil, ErrEmptySnapshot
	}
	return &Snapshot{
		response:   initial,
		generation: 1,
		fetchedAt:  fetchedAt,
	}, nil
}

// Store replaces the held response and returns the new generation. The
// caller must not retain or modify response afterwards.
func (s *Snapshot) Store(response journey.TripResponse, fetchedAt time.Time) (uint64, error) {
	if response.Data == nil {
		return s.Generation(), ErrEmptySnapshot
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.response = response
	s.generation++
	s.fetchedAt = fetchedAt
	return s.generation, nil
}

// Load clones the held response out under the read lock.
func (s *Snapshot) Load() View {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return View{
		Response:   s.response.Clone(),
		Generation: s.generation,
		FetchedAt:  s.fetchedAt,
	}
}

func (s *Snapshot) Generation() uint64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.generation
}
