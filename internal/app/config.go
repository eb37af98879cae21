package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"departureboard.app/internal/board"
	"departureboard.app/internal/journey"
	"departureboard.app/internal/render"
	"departureboard.app/internal/utils"
)

// ErrInvalidConfig wraps every parse or validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all the configuration settings for the board, read from a
// YAML file.
type Config struct {
	Env     string        `yaml:"env"`
	API     APIConfig     `yaml:"api"`
	Routes  []RouteConfig `yaml:"routes" validate:"len=2,dive"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Render  RenderConfig  `yaml:"render"`
	Display DisplayConfig `yaml:"display"`
	Status  StatusConfig  `yaml:"status"`
	Log     LogConfig     `yaml:"log"`
}

type APIConfig struct {
	URL                 string        `yaml:"url" validate:"required,url"`
	ClientName          string        `yaml:"client_name" validate:"required"`
	Timeout             time.Duration `yaml:"timeout" validate:"gt=0"`
	ResponseBufferBytes int           `yaml:"response_buffer_bytes" validate:"gte=256"`
}

type RouteConfig struct {
	From string `yaml:"from" validate:"required"`
	To   string `yaml:"to" validate:"required"`
}

type FetchConfig struct {
	Interval       time.Duration `yaml:"interval" validate:"gt=0"`
	StartupTimeout time.Duration `yaml:"startup_timeout" validate:"gte=0"`
}

type RenderConfig struct {
	Tick        time.Duration `yaml:"tick" validate:"gt=0"`
	WindowTicks int           `yaml:"window_ticks" validate:"gt=0"`
}

type DisplayConfig struct {
	Width  int16 `yaml:"width" validate:"gt=0"`
	Height int16 `yaml:"height" validate:"gt=0"`
}

// StatusConfig enables the local status server when ListenAddr is set.
type StatusConfig struct {
	ListenAddr string   `yaml:"listen_addr" validate:"omitempty,hostname_port"`
	APIKeys    []string `yaml:"api_keys"`
	// RateLimit is requests per second per API key; zero disables it.
	RateLimit int `yaml:"rate_limit" validate:"gte=0"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
}

// DefaultConfig is the configuration before the file is applied.
func DefaultConfig() Config {
	return Config{
		Env: "development",
		API: APIConfig{
			URL:                 journey.DefaultURL,
			Timeout:             journey.DefaultTimeout,
			ResponseBufferBytes: journey.DefaultBufferSize,
		},
		Fetch:   FetchConfig{Interval: board.DefaultInterval},
		Render:  RenderConfig{Tick: render.DefaultTick, WindowTicks: render.DefaultWindowTicks},
		Display: DisplayConfig{Width: 240, Height: 320},
		Status:  StatusConfig{RateLimit: 10},
		Log:     LogConfig{Level: "info"},
	}
}

// LoadConfig reads and validates the YAML file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes data over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks struct tags and then the place ids and client name.
func (config Config) Validate() error {
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := journey.BuildTripQuery(config.TripRoutes()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := utils.ValidateClientName(config.API.ClientName); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// TripRoutes converts the configured routes for the query builder.
func (config Config) TripRoutes() []journey.Route {
	routes := make([]journey.Route, len(config.Routes))
	for i, route := range config.Routes {
		routes[i] = journey.Route{From: route.From, To: route.To}
	}
	return routes
}

// ClientConfig returns the upstream client settings for query.
func (config Config) ClientConfig(query string) journey.Config {
	return journey.Config{
		URL:        config.API.URL,
		ClientName: config.API.ClientName,
		Query:      query,
		BufferSize: config.API.ResponseBufferBytes,
		Timeout:    config.API.Timeout,
	}
}

func (config Config) BoardConfig() board.Config {
	return board.Config{
		Interval:       config.Fetch.Interval,
		AttemptTimeout: config.API.Timeout,
		StartupTimeout: config.Fetch.StartupTimeout,
	}
}

func (config Config) RenderConfig() render.Config {
	return render.Config{
		Tick:        config.Render.Tick,
		WindowTicks: config.Render.WindowTicks,
	}
}
