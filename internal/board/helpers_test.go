package board

import (
	"context"
	"fmt"
	"sync"
	"time"

	"departureboard.app/internal/journey"
)

// markedResponse builds a response whose trip1 and trip2 legs all carry the
// same marker, so a reader can tell whether it saw a torn value.
func markedResponse(marker int) *journey.TripResponse {
	code := fmt.Sprintf("%d", marker)
	start := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC).Add(time.Duration(marker) * time.Minute).Format(time.RFC3339)
	trip := func() journey.Trip {
		return journey.Trip{TripPatterns: []journey.TripPattern{{Legs: []journey.Leg{
			{ExpectedStartTime: start, Line: &journey.Line{PublicCode: code}},
		}}}}
	}
	return &journey.TripResponse{Data: &journey.TripData{Trip1: trip(), Trip2: trip()}}
}

type fetchResult struct {
	response *journey.TripResponse
	err      error
	block    bool
}

// scriptedFetcher replays results in order and repeats the last one.
type scriptedFetcher struct {
	mutex   sync.Mutex
	results []fetchResult
	calls   int
	started chan struct{}
}

func newScriptedFetcher(results ...fetchResult) *scriptedFetcher {
	return &scriptedFetcher{results: results, started: make(chan struct{}, 64)}
}

func (f *scriptedFetcher) Fetch(ctx context.Context) (*journey.TripResponse, error) {
	f.mutex.Lock()
	index := f.calls
	if index >= len(f.results) {
		index = len(f.results) - 1
	}
	result := f.results[index]
	f.calls++
	f.mutex.Unlock()

	select {
	case f.started <- struct{}{}:
	default:
	}

	if result.block {
		<-ctx.Done()
		return nil, &journey.FetchError{Kind: journey.KindTransport, Err: ctx.Err()}
	}
	return result.response, result.err
}

func (f *scriptedFetcher) Calls() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.calls
}

func transportFailure() fetchResult {
	return fetchResult{err: &journey.FetchError{Kind: journey.KindTransport, Err: fmt.Errorf("connection refused")}}
}

func statusFailure(code int) fetchResult {
	return fetchResult{err: &journey.FetchError{Kind: journey.KindStatus, StatusCode: code}}
}

func success(marker int) fetchResult {
	return fetchResult{response: markedResponse(marker)}
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }
