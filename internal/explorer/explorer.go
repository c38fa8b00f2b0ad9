// Package explorer looks up verified contract metadata on block explorers.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/zircuit-multisig/safe-eth-go/internal/models"
)

var (
	// ErrConfiguration means the client cannot serve the requested network or settings.
	ErrConfiguration = errors.New("explorer not configured for this network")
	// ErrRateLimited means the explorer refused the request because of its rate limit.
	ErrRateLimited = errors.New("explorer rate limit reached")
	// ErrNotFound means the explorer has no verified metadata for the address.
	ErrNotFound = errors.New("contract metadata not found")
)

const (
	DefaultTimeout = 10 * time.Second
	userAgent      = "curl/7.77.0"
)

// MetadataLookup resolves contract metadata for an address.
type MetadataLookup interface {
	Name() string
	ContractMetadata(ctx context.Context, address string) (*models.ContractMetadata, error)
}

// ClientError tags an explorer failure with the client and operation that produced it.
type ClientError struct {
	Client string
	Op     string
	Err    error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Client, e.Op, e.Err)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

func clientError(client, op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *ClientError
	if errors.As(err, &ce) {
		return err
	}
	return &ClientError{Client: client, Op: op, Err: err}
}

// Option customizes an explorer client.
type Option func(*options)

type options struct {
	timeout    time.Duration
	baseURL    string
	repoURL    string
	rateLimit  rate.Limit
	burst      int
	maxRetries uint
	retryDelay time.Duration
}

func defaultOptions() options {
	return options{
		timeout:    DefaultTimeout,
		rateLimit:  rate.Inf,
		burst:      1,
		maxRetries: 3,
		retryDelay: 5 * time.Second,
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithBaseURL overrides the API endpoint the client talks to.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithRepoURL overrides the Sourcify repository endpoint.
func WithRepoURL(url string) Option {
	return func(o *options) { o.repoURL = url }
}

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(perSecond float64) Option {
	return func(o *options) {
		if perSecond <= 0 {
			o.rateLimit = rate.Inf
			return
		}
		o.rateLimit = rate.Limit(perSecond)
	}
}

// WithRetries sets how many attempts are made when the explorer reports a
// rate limit, and how long to wait in between. Zero attempts disables retrying.
func WithRetries(maxRetries uint, delay time.Duration) Option {
	return func(o *options) {
		o.maxRetries = maxRetries
		o.retryDelay = delay
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newHTTPClient(baseURL string, o options) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(o.timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
}
