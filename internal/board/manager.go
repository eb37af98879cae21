package board

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"departureboard.app/internal/journey"
	"departureboard.app/internal/logging"
)

// Fetcher performs one upstream request. *journey.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context) (*journey.TripResponse, error)
}

// Stats counts fetch attempts since the manager started.
type Stats struct {
	Attempts            uint64    `json:"attempts"`
	Successes           uint64    `json:"successes"`
	Failures            uint64    `json:"failures"`
	ConsecutiveFailures uint64    `json:"consecutiveFailures"`
	LastError           string    `json:"lastError,omitempty"`
	LastErrorKind       string    `json:"lastErrorKind,omitempty"`
	LastAttempt         time.Time `json:"lastAttempt"`
	LastSuccess         time.Time `json:"lastSuccess"`
}

// Manager owns the trip snapshot and the goroutine that refreshes it.
type Manager struct {
	config   Config
	fetcher  Fetcher
	snapshot *Snapshot
	logger   *slog.Logger

	statsMutex sync.Mutex
	stats      Stats

	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// InitBoardManager fetches the first snapshot synchronously, retrying every
// failure on a constant back-off, and then starts the periodic refresh. It
// fails only when ctx ends or the startup timeout passes.
func InitBoardManager(ctx context.Context, config Config, fetcher Fetcher, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	runCtx, cancel := context.WithCancel(context.Background())
	manager := &Manager{
		config:  config.withDefaults(),
		fetcher: fetcher,
		logger:  logger.With(slog.String("component", "board_fetcher")),
		ctx:     runCtx,
		cancel:  cancel,
	}

	initial, err := manager.fetchInitial(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("initial trip fetch: %w", err)
	}

	manager.snapshot, err = NewSnapshot(*initial, manager.config.Clock.Now())
	if err != nil {
		cancel()
		return nil, err
	}
	logging.LogOperation(manager.logger, "trips_initialized",
		slog.Int("legs", initial.LegCount()))

	manager.wg.Add(1)
	go manager.updateTripsPeriodically()

	return manager, nil
}

// Shutdown stops the refresh goroutine, aborting an in-flight request, and
// waits for it to exit. It is safe to call more than once.
func (manager *Manager) Shutdown() {
	manager.shutdownOnce.Do(func() {
		manager.cancel()
		manager.wg.Wait()
	})
}

// Load returns a copy of the current snapshot.
func (manager *Manager) Load() View {
	return manager.snapshot.Load()
}

func (manager *Manager) Stats() Stats {
	manager.statsMutex.Lock()
	defer manager.statsMutex.Unlock()
	return manager.stats
}

func (manager *Manager) fetchInitial(ctx context.Context) (*journey.TripResponse, error) {
	if manager.config.StartupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, manager.config.StartupTimeout)
		defer cancel()
	}
	ctx = logging.WithLogger(ctx, manager.logger)

	var trips *journey.TripResponse
	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, manager.config.AttemptTimeout)
		defer cancel()

		response, err := manager.fetch(attemptCtx)
		if err != nil {
			return err
		}
		trips = response
		return nil
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(manager.config.Interval), ctx)
	err := backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		logging.LogError(manager.logger, "initial trip fetch failed", err,
			slog.String("kind", journey.KindOf(err).String()),
			slog.Bool("retryable", journey.IsRetryable(err)),
			slog.Duration("retry_in", wait))
	})
	if err != nil {
		return nil, err
	}
	return trips, nil
}

// updateTrips performs one attempt. On failure the snapshot is left alone.
func (manager *Manager) updateTrips(ctx context.Context) {
	logger := logging.FromContext(ctx)

	trips, err := manager.fetch(ctx)
	if err != nil {
		if manager.ctx.Err() != nil {
			return
		}
		logging.LogError(logger, "failed to update trips", err,
			slog.String("kind", journey.KindOf(err).String()),
			slog.Bool("retryable", journey.IsRetryable(err)),
			slog.Uint64("kept_generation", manager.snapshot.Generation()))
		return
	}

	generation, err := manager.snapshot.Store(*trips, manager.config.Clock.Now())
	if err != nil {
		logging.LogError(logger, "rejected trip response", err)
		return
	}
	logging.LogOperation(logger, "trips_updated",
		slog.Uint64("generation", generation),
		slog.Int("legs", trips.LegCount()))
}

func (manager *Manager) updateTripsPeriodically() {
	defer manager.wg.Done()

	logger := manager.logger.With(slog.String("component", "board_updater"))

	// A timer rather than a ticker so the wait starts after each attempt
	// finishes and attempts never overlap.
	timer := time.NewTimer(manager.config.Interval)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			ctx, cancel := context.WithTimeout(manager.ctx, manager.config.AttemptTimeout)
			ctx = logging.WithLogger(ctx, logger)

			manager.updateTrips(ctx)
			cancel()
			timer.Reset(manager.config.Interval)
		case <-manager.ctx.Done():
			logging.LogOperation(logger, "shutting_down_trip_updates")
			return
		}
	}
}

func (manager *Manager) fetch(ctx context.Context) (*journey.TripResponse, error) {
	trips, err := manager.fetcher.Fetch(ctx)
	if err != nil && manager.ctx.Err() != nil {
		// Aborted by Shutdown, not an upstream failure.
		return nil, err
	}
	if err == nil && (trips == nil || trips.Data == nil) {
		err = &journey.FetchError{Kind: journey.KindDecode, Err: ErrEmptySnapshot}
	}

	now := manager.config.Clock.Now()
	manager.statsMutex.Lock()
	defer manager.statsMutex.Unlock()
	manager.stats.Attempts++
	manager.stats.LastAttempt = now
	if err != nil {
		manager.stats.Failures++
		manager.stats.ConsecutiveFailures++
		manager.stats.LastError = err.Error()
		manager.stats.LastErrorKind = journey.KindOf(err).String()
		return nil, err
	}
	manager.stats.Successes++
	manager.stats.ConsecutiveFailures = 0
	manager.stats.LastSuccess = now
	return trips, nil
}
