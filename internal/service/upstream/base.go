package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"EthFlow/internal/domain/repository"
	xhttp "EthFlow/pkg/http"
	applogger "EthFlow/pkg/logger"
)

// HTTPServiceBase is shared by the feed clients. It owns the HTTP client, retries
// transient failures and maps every failure onto the repository feed errors.
type HTTPServiceBase struct {
	name     string
	baseURL  string
	client   *xhttp.Client
	attempts int
	backoff  time.Duration
	metrics  repository.Metrics
	log      *applogger.Logger
}

// Option configures HTTPServiceBase.
type Option func(*HTTPServiceBase)

// WithRetry sets the number of attempts and the linear backoff step.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(b *HTTPServiceBase) {
		b.attempts = max(attempts, 1)
		b.backoff = backoff
	}
}

// WithMetrics records one fetch outcome per call.
func WithMetrics(m repository.Metrics) Option {
	return func(b *HTTPServiceBase) { b.metrics = m }
}

// WithLogger logs retried attempts.
func WithLogger(l *applogger.Logger) Option {
	return func(b *HTTPServiceBase) { b.log = l }
}

// NewHTTPServiceBase builds a base for the named upstream at baseURL.
func NewHTTPServiceBase(name, baseURL string, client *xhttp.Client, opts ...Option) *HTTPServiceBase {
	b := &HTTPServiceBase{
		name:     name,
		baseURL:  baseURL,
		client:   client,
		attempts: 1,
		backoff:  250 * time.Millisecond,
		log:      applogger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the upstream label used in logs and metrics.
func (b *HTTPServiceBase) Name() string { return b.name }

// GetJSON issues a GET for path under baseURL and decodes the JSON reply into dest.
func (b *HTTPServiceBase) GetJSON(ctx context.Context, path string, query map[string][]string, dest interface{}) error {
	return b.do(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         b.baseURL + path,
		QueryParams: query,
	}, dest)
}

// PostJSON posts payload to path under baseURL and decodes the JSON reply into dest.
func (b *HTTPServiceBase) PostJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	return b.do(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     b.baseURL + path,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    payload,
	}, dest)
}

// Record reports the outcome of a call that failed before or after transport,
// for example a limiter rejection or a payload that decoded but made no sense.
func (b *HTTPServiceBase) Record(err error) {
	if b.metrics != nil {
		b.metrics.RecordFetch(b.name, repository.FailureReason(err))
	}
}

func (b *HTTPServiceBase) do(ctx context.Context, opts *xhttp.RequestOptions, dest interface{}) error {
	var err error
attempts:
	for i := 1; i <= b.attempts; i++ {
		err = b.client.SendAndParse(ctx, opts, dest)
		if err == nil || !retryable(ctx, err) || i == b.attempts {
			break
		}

		b.log.Debug("upstream call failed, retrying",
			applogger.String("upstream", b.name),
			applogger.Int("attempt", i),
			applogger.Error(err),
		)
		select {
		case <-time.After(time.Duration(i) * b.backoff):
		case <-ctx.Done():
			err = ctx.Err()
			break attempts
		}
	}

	if err != nil {
		err = Classify(b.name, err)
	}
	b.Record(err)
	return err
}

// Classify maps a transport or decode error onto the feed sentinel errors while
// keeping the original error in the chain.
func Classify(upstream string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrUpstreamUnavailable) {
		return err
	}

	var se *xhttp.StatusError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &se) && se.TooManyRequests():
		return fmt.Errorf("%s: %w: %w", upstream, repository.ErrRateLimited, err)
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr),
		errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return fmt.Errorf("%s: %w: %w", upstream, repository.ErrMalformedPayload, err)
	default:
		return fmt.Errorf("%s: %w: %w", upstream, repository.ErrUpstreamUnavailable, err)
	}
}

// Malformed builds a payload error for replies that decoded but lack required data.
func Malformed(upstream, format string, a ...interface{}) error {
	return fmt.Errorf("%s: %w: %s", upstream, repository.ErrMalformedPayload, fmt.Sprintf(format, a...))
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return false
	}
	return true
}
