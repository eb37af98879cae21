package journey

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies why a fetch attempt failed.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindTransport covers request creation, dialing, TLS and body reads.
	KindTransport
	// KindStatus is a non-2xx HTTP status.
	KindStatus
	// KindTruncated means the payload did not fit in the response buffer.
	KindTruncated
	// KindDecode means the captured body is not a trip response.
	KindDecode
	// KindQuery means upstream answered with GraphQL errors and no data.
	KindQuery
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindTruncated:
		return "truncated"
	case KindDecode:
		return "decode"
	case KindQuery:
		return "query"
	default:
		return "unknown"
	}
}

// ErrTruncated is matched by errors.Is for KindTruncated failures.
var ErrTruncated = errors.New("response exceeds buffer")

// FetchError is returned by Client.Fetch for every failed attempt.
type FetchError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == KindStatus {
		if e.Err != nil {
			return fmt.Sprintf("%s error: HTTP %d: %v", e.Kind, e.StatusCode, e.Err)
		}
		return fmt.Sprintf("%s error: HTTP %d", e.Kind, e.StatusCode)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s error", e.Kind)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the same request can succeed.
// Client errors other than timeouts and rate limiting point at a broken
// request or credentials and will not heal on their own.
func (e *FetchError) Retryable() bool {
	if e.Kind != KindStatus {
		return true
	}
	switch e.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return e.StatusCode < 400 || e.StatusCode >= 500
}

// KindOf returns the kind of a fetch error, or KindUnknown.
func KindOf(err error) ErrorKind {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether err is worth another attempt. Errors that are
// not FetchErrors are assumed transient.
func IsRetryable(err error) bool {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Retryable()
	}
	return err != nil
}

// GraphQLError is one entry of a GraphQL "errors" array.
type GraphQLError struct {
	Message string `json:"message"`
}

// QueryErrors is the GraphQL "errors" array.
type QueryErrors []GraphQLError

func (q QueryErrors) Error() string {
	messages := make([]string, 0, len(q))
	for _, e := range q {
		messages = append(messages, e.Message)
	}
	return strings.Join(messages, "; ")
}
