package board

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"departureboard.app/internal/journey"
)

func TestNewSnapshotRequiresData(t *testing.T) {
	_, err := NewSnapshot(journey.TripResponse{}, time.Now())
	assert.ErrorIs(t, err, ErrEmptySnapshot)

	snapshot, err := NewSnapshot(*markedResponse(1), time.Unix(100, 0))
	require.NoError(t, err)

	view := snapshot.Load()
	assert.Equal(t, uint64(1), view.Generation)
	assert.Equal(t, time.Unix(100, 0), view.FetchedAt)
	assert.Equal(t, *markedResponse(1), view.Response)
}

func TestSnapshotStore(t *testing.T) {
	snapshot, err := NewSnapshot(*markedResponse(1), time.Unix(100, 0))
	require.NoError(t, err)

	generation, err := snapshot.Store(*markedResponse(2), time.Unix(200, 0))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), generation)

	view := snapshot.Load()
	assert.Equal(t, *markedResponse(2), view.Response)
	assert.Equal(t, time.Unix(200, 0), view.FetchedAt)

	t.Run("empty response is rejected and the slot kept", func(t *testing.T) {
		generation, err := snapshot.Store(journey.TripResponse{}, time.Unix(300, 0))
		assert.ErrorIs(t, err, ErrEmptySnapshot)
		assert.Equal(t, uint64(2), generation)
		assert.Equal(t, view, snapshot.Load())
	})
}

func TestSnapshotLoadReturnsPrivateCopy(t *testing.T) {
	snapshot, err := NewSnapshot(*markedResponse(1), time.Now())
	require.NoError(t, err)

	view := snapshot.Load()
	view.Response.Data.Trip1.TripPatterns[0].Legs[0].Line.PublicCode = "mutated"
	view.Response.Data.Trip2.TripPatterns = nil

	assert.Equal(t, *markedResponse(1), snapshot.Load().Response)
}

func TestSnapshotConcurrentReadersNeverSeeTornValues(t *testing.T) {
	snapshot, err := NewSnapshot(*markedResponse(0), time.Now())
	require.NoError(t, err)

	var wg sync.WaitGroup
	done := make(chan struct{})
	var mismatchMutex sync.Mutex
	mismatches := 0
	reads := 0

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var lastGeneration uint64
			for {
				select {
				case <-done:
					return
				default:
				}

				view := snapshot.Load()
				trip1 := view.Response.Data.Trip1.TripPatterns[0].Legs[0]
				trip2 := view.Response.Data.Trip2.TripPatterns[0].Legs[0]

				mismatchMutex.Lock()
				reads++
				if trip1.Line.PublicCode != trip2.Line.PublicCode ||
					trip1.ExpectedStartTime != trip2.ExpectedStartTime ||
					view.Generation < lastGeneration {
					mismatches++
				}
				mismatchMutex.Unlock()
				lastGeneration = view.Generation
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for marker := 1; marker <= 200; marker++ {
			_, err := snapshot.Store(*markedResponse(marker), time.Now())
			assert.NoError(t, err)
		}
	}()

	time.Sleep(50 * time.Millisecond)
	close(done)
	wg.Wait()

	mismatchMutex.Lock()
	defer mismatchMutex.Unlock()
	assert.Greater(t, reads, 0)
	assert.Zero(t, mismatches, "readers must see either the old or the new response")
	assert.Equal(t, uint64(201), snapshot.Generation())
}
