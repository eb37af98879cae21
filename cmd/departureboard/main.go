package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"

	"departureboard.app/internal/app"
	"departureboard.app/internal/board"
	"departureboard.app/internal/display"
	"departureboard.app/internal/journey"
	"departureboard.app/internal/logging"
	"departureboard.app/internal/render"
	"departureboard.app/internal/restapi"
)

func main() {
	var configPath, logLevel, env, frameOut string

	flag.StringVar(&configPath, "config", "config.yml", "Path to the YAML config file")
	flag.StringVar(&logLevel, "log-level", "", "Override the configured log level (debug|info|warn|error)")
	flag.StringVar(&env, "env", "", "Environment (development|staging|production)")
	flag.StringVar(&frameOut, "frame-out", "", "Write the last frame as a PNG to this path on exit")
	flag.Parse()

	if err := run(configPath, logLevel, env, frameOut); err != nil {
		os.Exit(1)
	}
}

func run(configPath, logLevel, env, frameOut string) error {
	bootLogger := logging.NewStructuredLogger(os.Stdout, slog.LevelInfo)

	config, err := app.LoadConfig(configPath)
	if err != nil {
		return logging.ReplaceLogFatal(bootLogger, "failed to load config", err)
	}
	if logLevel != "" {
		config.Log.Level = logLevel
	}
	if env != "" {
		config.Env = env
	}

	level, err := logging.ParseLevel(config.Log.Level)
	if err != nil {
		return logging.ReplaceLogFatal(bootLogger, "invalid log level", err)
	}
	logger := logging.NewStructuredLogger(os.Stdout, level).With(slog.String("env", config.Env))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	query, err := journey.BuildTripQuery(config.TripRoutes())
	if err != nil {
		return logging.ReplaceLogFatal(logger, "failed to build trip query", err)
	}
	logger.Debug("trip query", slog.String("query", query))

	client, err := journey.NewClient(config.ClientConfig(query))
	if err != nil {
		return logging.ReplaceLogFatal(logger, "failed to create journey client", err)
	}

	boardConfig := config.BoardConfig()
	boardConfig.Clock = backoff.SystemClock
	manager, err := board.InitBoardManager(ctx, boardConfig, client, logger)
	if errors.Is(err, context.Canceled) {
		logger.Info("interrupted before the first snapshot")
		return nil
	}
	if err != nil {
		return logging.ReplaceLogFatal(logger, "failed to initialize departure board", err)
	}
	defer manager.Shutdown()

	surface, err := display.NewFramebuffer(config.Display.Width, config.Display.Height)
	if err != nil {
		return logging.ReplaceLogFatal(logger, "failed to create framebuffer", err)
	}
	renderer := render.NewRenderer(config.RenderConfig(), manager, surface, backoff.SystemClock, logger)

	application := &app.Application{
		Config:   config,
		Logger:   logger,
		Board:    manager,
		Renderer: renderer,
		Surface:  surface,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		renderer.Run(ctx)
	}()

	var srv *http.Server
	serverErr := make(chan error, 1)
	if config.Status.ListenAddr != "" {
		srv = &http.Server{
			Addr:         config.Status.ListenAddr,
			Handler:      restapi.NewRestAPI(application).Routes(),
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
		}
		go func() {
			logger.Info("starting status server", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-serverErr:
		logging.LogError(logger, "status server failed", err)
		stop()
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			logging.LogError(logger, "failed to shut down status server", shutdownErr)
		}
	}

	wg.Wait()
	manager.Shutdown()

	if frameOut != "" {
		if saveErr := surface.SavePNG(frameOut, logger); saveErr != nil {
			logging.LogError(logger, "failed to save last frame", saveErr)
		} else {
			logging.LogOperation(logger, "frame_saved", slog.String("path", frameOut))
		}
	}
	return err
}
