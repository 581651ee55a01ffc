package reconcile

import (
	"strconv"

	"github.com/rs/zerolog"

	"github.com/agentstation/annomerge/pkg/constants"
	"github.com/agentstation/annomerge/pkg/errors"
	"github.com/agentstation/annomerge/pkg/filters"
)

// FailurePolicy decides what happens when an annotation store fails.
type FailurePolicy int

const (
	// FailAbort stops the run at the first failure.
	FailAbort FailurePolicy = iota
	// FailIsolate marks the failing store as failed, skips it for the rest
	// of the run and keeps going with the other stores.
	FailIsolate
)

// String returns the policy name.
func (p FailurePolicy) String() string {
	switch p {
	case FailAbort:
		return "abort"
	case FailIsolate:
		return "isolate"
	default:
		return "unknown"
	}
}

type options struct {
	filter      filters.Filter
	selector    filters.Selector
	parallelism int
	policy      FailurePolicy
	dryRun      bool
	metrics     *Metrics
	logger      *zerolog.Logger
}

func defaultOptions() *options {
	return &options{
		filter:      filters.Identity,
		selector:    filters.AcceptAll,
		parallelism: 1,
		policy:      FailAbort,
	}
}

// Option configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithFilter sets the filter applied to each document's system output.
func WithFilter(filter filters.Filter) Option {
	return func(o *options) error {
		if filter == nil {
			return &errors.ValidationError{Field: "filter", Message: "cannot be nil"}
		}
		o.filter = filter
		return nil
	}
}

// WithSelector restricts the run to the documents selector accepts.
func WithSelector(selector filters.Selector) Option {
	return func(o *options) error {
		if selector == nil {
			return &errors.ValidationError{Field: "selector", Message: "cannot be nil"}
		}
		o.selector = selector
		return nil
	}
}

// WithParallelism merges one document into up to n annotation stores at
// once. Each store is still handled by a single goroutine at a time.
func WithParallelism(n int) Option {
	return func(o *options) error {
		if n < 1 || n > constants.MaxParallelism {
			return &errors.ValidationError{
				Field:   "parallelism",
				Value:   n,
				Message: "must be between 1 and " + strconv.Itoa(constants.MaxParallelism),
			}
		}
		o.parallelism = n
		return nil
	}
}

// WithFailurePolicy sets how annotation store failures are handled.
func WithFailurePolicy(policy FailurePolicy) Option {
	return func(o *options) error {
		if policy != FailAbort && policy != FailIsolate {
			return &errors.ValidationError{Field: "failure_policy", Value: int(policy), Message: "unknown policy"}
		}
		o.policy = policy
		return nil
	}
}

// WithDryRun computes what would be added without writing anything.
func WithDryRun(dryRun bool) Option {
	return func(o *options) error {
		o.dryRun = dryRun
		return nil
	}
}

// WithMetrics records run metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) error {
		o.metrics = m
		return nil
	}
}

// WithLogger sets the logger. The context logger is used otherwise.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}
