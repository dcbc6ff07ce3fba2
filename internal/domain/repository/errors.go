package repository

import (
	"errors"
	"fmt"
)

// Feed errors. A rate limited or malformed response is also an unavailable upstream,
// so errors.Is(err, ErrUpstreamUnavailable) holds for all three.
var (
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrRateLimited         = fmt.Errorf("rate limited: %w", ErrUpstreamUnavailable)
	ErrMalformedPayload    = fmt.Errorf("malformed payload: %w", ErrUpstreamUnavailable)
)

// FailureReason returns a low-cardinality label for a feed error.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrMalformedPayload):
		return "malformed"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
