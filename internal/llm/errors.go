package llm

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorKind classifies provider failures for retrying.
type ErrorKind int

const (
	// KindUnavailable is a network failure, server error or unknown error.
	KindUnavailable ErrorKind = iota
	// KindRateLimited is an HTTP 429.
	KindRateLimited
	// KindInvalid is an answer that is not valid JSON for the schema.
	KindInvalid
	// KindTruncated is an answer cut off at MaxTokens.
	KindTruncated
	// KindRejected is a request the provider refused, e.g. a bad API key.
	KindRejected
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate limited"
	case KindInvalid:
		return "invalid response"
	case KindTruncated:
		return "truncated"
	case KindRejected:
		return "rejected"
	default:
		return "unavailable"
	}
}

// Error is a classified provider failure.
type Error struct {
	Kind ErrorKind
	// RetryAfter is the provider's rate-limit hint, if any.
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "llm: " + e.Kind.String()
	}
	return fmt.Sprintf("llm: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// fromStatus classifies an SDK error carrying an HTTP status.
func fromStatus(status int, err error) *Error {
	switch {
	case status == http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, Err: err}
	case status == http.StatusUnauthorized, status == http.StatusForbidden,
		status == http.StatusBadRequest, status == http.StatusNotFound:
		return &Error{Kind: KindRejected, Err: err}
	default:
		return &Error{Kind: KindUnavailable, Err: err}
	}
}
