package board

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"departureboard.app/internal/journey"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitBoardManagerLoadsInitialSnapshot(t *testing.T) {
	defer leaktest.Check(t)()

	fetcher := newScriptedFetcher(success(1))
	clock := fixedClock{now: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)}
	manager, err := InitBoardManager(context.Background(), Config{Interval: time.Hour, Clock: clock}, fetcher, discardLogger())
	require.NoError(t, err)
	defer manager.Shutdown()

	view := manager.Load()
	assert.Equal(t, uint64(1), view.Generation)
	assert.Equal(t, clock.now, view.FetchedAt)
	assert.Equal(t, *markedResponse(1), view.Response)

	stats := manager.Stats()
	assert.Equal(t, uint64(1), stats.Attempts)
	assert.Equal(t, uint64(1), stats.Successes)
	assert.Equal(t, clock.now, stats.LastSuccess)
}

func TestInitBoardManagerRetriesTransientFailures(t *testing.T) {
	defer leaktest.Check(t)()

	fetcher := newScriptedFetcher(transportFailure(), statusFailure(503), success(7))
	manager, err := InitBoardManager(context.Background(), Config{Interval: 5 * time.Millisecond}, fetcher, discardLogger())
	require.NoError(t, err)
	manager.Shutdown()

	assert.GreaterOrEqual(t, fetcher.Calls(), 3)
	assert.Equal(t, *markedResponse(7), manager.Load().Response)

	stats := manager.Stats()
	assert.Equal(t, uint64(2), stats.Failures)
	assert.Equal(t, uint64(0), stats.ConsecutiveFailures)
}

func TestInitBoardManagerRetriesClientErrors(t *testing.T) {
	defer leaktest.Check(t)()

	fetcher := newScriptedFetcher(statusFailure(403), statusFailure(404), success(3))
	manager, err := InitBoardManager(context.Background(), Config{Interval: time.Millisecond}, fetcher, discardLogger())
	require.NoError(t, err)
	manager.Shutdown()

	assert.GreaterOrEqual(t, fetcher.Calls(), 3)
	assert.Equal(t, *markedResponse(3), manager.Load().Response)
	assert.Equal(t, uint64(2), manager.Stats().Failures)
}

func TestInitBoardManagerClientErrorsStopAtStartupTimeout(t *testing.T) {
	defer leaktest.Check(t)()

	fetcher := newScriptedFetcher(statusFailure(401))
	manager, err := InitBoardManager(context.Background(), Config{
		Interval:       5 * time.Millisecond,
		StartupTimeout: 50 * time.Millisecond,
	}, fetcher, discardLogger())
	require.Error(t, err)
	assert.Nil(t, manager)
	assert.Greater(t, fetcher.Calls(), 1)
	assert.Contains(t, err.Error(), "initial trip fetch")
}

func TestInitBoardManagerStartupTimeout(t *testing.T) {
	defer leaktest.Check(t)()

	fetcher := newScriptedFetcher(transportFailure())
	start := time.Now()
	_, err := InitBoardManager(context.Background(), Config{
		Interval:       10 * time.Millisecond,
		StartupTimeout: 60 * time.Millisecond,
	}, fetcher, discardLogger())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Greater(t, fetcher.Calls(), 1)
}

func TestInitBoardManagerHonoursCancelledContext(t *testing.T) {
	defer leaktest.Check(t)()

	ctx, cancel := context.WithCancel(context.Background())
	fetcher := newScriptedFetcher(transportFailure())
	go func() {
		<-fetcher.started
		cancel()
	}()

	_, err := InitBoardManager(ctx, Config{Interval: time.Hour}, fetcher, discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInitBoardManagerRejectsEmptyResponse(t *testing.T) {
	defer leaktest.Check(t)()

	fetcher := newScriptedFetcher(fetchResult{response: &journey.TripResponse{}}, success(2))
	manager, err := InitBoardManager(context.Background(), Config{Interval: time.Millisecond}, fetcher, discardLogger())
	require.NoError(t, err)
	defer manager.Shutdown()

	assert.GreaterOrEqual(t, fetcher.Calls(), 2)
	assert.Equal(t, uint64(1), manager.Stats().Failures)
	assert.Equal(t, journey.KindDecode.String(), manager.Stats().LastErrorKind)
}

func TestUpdateTripsFailureKeepsSnapshot(t *testing.T) {
	defer leaktest.Check(t)()

	fetcher := newScriptedFetcher(success(1), transportFailure(), statusFailure(500), fetchResult{response: &journey.TripResponse{}})
	manager, err := InitBoardManager(context.Background(), Config{Interval: time.Hour}, fetcher, discardLogger())
	require.NoError(t, err)
	defer manager.Shutdown()

	before := manager.Load()
	for i := 0; i < 3; i++ {
		manager.updateTrips(context.Background())
		assert.Equal(t, before, manager.Load())
	}

	stats := manager.Stats()
	assert.Equal(t, uint64(4), stats.Attempts)
	assert.Equal(t, uint64(3), stats.Failures)
	assert.Equal(t, uint64(3), stats.ConsecutiveFailures)
	assert.NotEmpty(t, stats.LastError)
}

func TestUpdateTripsSuccessReplacesSnapshot(t *testing.T) {
	defer leaktest.Check(t)()

	fetcher := newScriptedFetcher(success(1), transportFailure(), success(2))
	manager, err := InitBoardManager(context.Background(), Config{Interval: time.Hour}, fetcher, discardLogger())
	require.NoError(t, err)
	defer manager.Shutdown()

	manager.updateTrips(context.Background())
	manager.updateTrips(context.Background())

	view := manager.Load()
	assert.Equal(t, uint64(2), view.Generation)
	assert.Equal(t, *markedResponse(2), view.Response)
	assert.Equal(t, uint64(0), manager.Stats().ConsecutiveFailures)
}

func TestManagerRefreshesPeriodically(t *testing.T) {
	defer leaktest.Check(t)()

	fetcher := newScriptedFetcher(success(1), success(2), transportFailure(), success(3))
	manager, err := InitBoardManager(context.Background(), Config{Interval: 5 * time.Millisecond}, fetcher, discardLogger())
	require.NoError(t, err)
	defer manager.Shutdown()

	assert.Eventually(t, func() bool {
		return manager.Load().Generation >= 3
	}, 2*time.Second, 5*time.Millisecond)

	// The last scripted result repeats, so the response settles on marker 3.
	assert.Equal(t, *markedResponse(3), manager.Load().Response)
}

func TestReadersNeverWaitOnHungFetch(t *testing.T) {
	defer leaktest.Check(t)()

	fetcher := newScriptedFetcher(success(1), fetchResult{block: true})
	manager, err := InitBoardManager(context.Background(), Config{
		Interval:       time.Millisecond,
		AttemptTimeout: time.Hour,
	}, fetcher, discardLogger())
	require.NoError(t, err)

	<-fetcher.started // initial fetch
	select {
	case <-fetcher.started:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh never started")
	}

	loaded := make(chan View, 1)
	go func() { loaded <- manager.Load() }()
	select {
	case view := <-loaded:
		assert.Equal(t, uint64(1), view.Generation)
	case <-time.After(time.Second):
		t.Fatal("Load blocked behind an in-flight fetch")
	}

	stopped := make(chan struct{})
	go func() {
		manager.Shutdown()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not abort the in-flight fetch")
	}
}

func TestShutdownDoesNotCountAbortedFetch(t *testing.T) {
	defer leaktest.Check(t)()

	fetcher := newScriptedFetcher(success(1), fetchResult{block: true})
	manager, err := InitBoardManager(context.Background(), Config{
		Interval:       time.Millisecond,
		AttemptTimeout: time.Hour,
	}, fetcher, discardLogger())
	require.NoError(t, err)

	<-fetcher.started // initial fetch
	select {
	case <-fetcher.started:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh never started")
	}
	manager.Shutdown()

	stats := manager.Stats()
	assert.Equal(t, uint64(1), stats.Attempts)
	assert.Equal(t, uint64(1), stats.Successes)
	assert.Zero(t, stats.Failures)
	assert.Zero(t, stats.ConsecutiveFailures)
	assert.Empty(t, stats.LastError)
}

func TestShutdownIsIdempotent(t *testing.T) {
	defer leaktest.Check(t)()

	manager, err := InitBoardManager(context.Background(), Config{Interval: time.Hour}, newScriptedFetcher(success(1)), discardLogger())
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		manager.Shutdown()
		manager.Shutdown()
	})
	assert.Equal(t, uint64(1), manager.Load().Generation)
}

func TestConfigDefaults(t *testing.T) {
	config := Config{}.withDefaults()
	assert.Equal(t, DefaultInterval, config.Interval)
	assert.Equal(t, DefaultAttemptTimeout, config.AttemptTimeout)
	assert.NotNil(t, config.Clock)
	assert.Zero(t, config.StartupTimeout)
}
