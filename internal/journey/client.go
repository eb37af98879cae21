package journey

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"departureboard.app/internal/logging"
	"departureboard.app/internal/utils"
)

const (
	DefaultURL        = "https://api.entur.io/journey-planner/v3/graphql"
	DefaultBufferSize = 16 * 1024
	DefaultTimeout    = 15 * time.Second

	// ClientNameHeader identifies this board to the journey planner.
	ClientNameHeader = "ET-Client-Name"
)

type Config struct {
	URL        string
	ClientName string
	// Query is the pre-built GraphQL document, see BuildTripQuery.
	Query string
	// BufferSize bounds how much of a response body is read.
	BufferSize int
	Timeout    time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Client posts the trip query and decodes the answer.
type Client struct {
	url        string
	clientName string
	body       []byte
	bufferSize int
	httpClient *http.Client
}

func NewClient(config Config) (*Client, error) {
	if config.URL == "" {
		config.URL = DefaultURL
	}
	if err := utils.ValidateClientName(config.ClientName); err != nil {
		return nil, err
	}
	body, err := RequestBody(config.Query)
	if err != nil {
		return nil, err
	}
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultBufferSize
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		url:        config.URL,
		clientName: config.ClientName,
		body:       body,
		bufferSize: config.BufferSize,
		httpClient: httpClient,
	}, nil
}

// Fetch performs one request. Every failure is a *FetchError.
func (c *Client) Fetch(ctx context.Context) (*TripResponse, error) {
	logger := logging.FromContext(ctx).With(slog.String("component", "journey_client"))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(c.body))
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ClientNameHeader, c.clientName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, Err: err}
	}
	defer logging.SafeCloseWithLogging(resp.Body, logger, "http_response_body")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Kind: KindStatus, StatusCode: resp.StatusCode}
	}

	if resp.ContentLength > int64(c.bufferSize) {
		return nil, &FetchError{
			Kind:       KindTruncated,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: content length %d, buffer %d bytes", ErrTruncated, resp.ContentLength, c.bufferSize),
		}
	}

	content, truncated, err := readBounded(resp.Body, c.bufferSize)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, StatusCode: resp.StatusCode, Err: err}
	}

	logger.Debug("trip response received",
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(content)),
		slog.Bool("truncated", truncated))

	trips, err := decodeTripResponse(content, truncated)
	if err != nil {
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			fetchErr.StatusCode = resp.StatusCode
		}
		return nil, err
	}
	logger.Debug("trip response decoded", slog.Int("legs", trips.LegCount()), slog.Any("trips", trips))
	return trips, nil
}

// readBounded reads at most size bytes and reports whether more followed.
func readBounded(r io.Reader, size int) ([]byte, bool, error) {
	content, err := io.ReadAll(io.LimitReader(r, int64(size)+1))
	if err != nil {
		return nil, false, err
	}
	if len(content) > size {
		return content[:size], true, nil
	}
	return content, false, nil
}

// decodeTripResponse strips trailing padding and decodes content. A body
// that was cut off is never partially recovered.
func decodeTripResponse(content []byte, truncated bool) (*TripResponse, error) {
	content = bytes.TrimRight(content, "\x00 \t\r\n")

	var trips TripResponse
	if err := json.Unmarshal(content, &trips); err != nil {
		if truncated {
			return nil, &FetchError{
				Kind: KindTruncated,
				Err:  fmt.Errorf("%w after %d bytes: %w", ErrTruncated, len(content), err),
			}
		}
		return nil, &FetchError{Kind: KindDecode, Err: err}
	}

	if trips.Data == nil {
		if len(trips.Errors) > 0 {
			return nil, &FetchError{Kind: KindQuery, Err: trips.Errors}
		}
		return nil, &FetchError{Kind: KindDecode, Err: errors.New("response has no data")}
	}

	return &trips, nil
}
