package chanselect

import (
	"math/rand"
	"time"
)

// driverOptions holds configuration resolved from Option values.
type driverOptions struct {
	logger  Logger
	metrics *Metrics
	rng     *rand.Rand
	now     func() time.Time
}

// Option configures a Driver at construction time.
type Option interface {
	apply(*driverOptions) error
}

type optionFunc func(*driverOptions) error

func (f optionFunc) apply(o *driverOptions) error { return f(o) }

// WithLogger attaches a Logger the Driver emits phase, deadline and commit
// diagnostics through. The default is NewNoOpLogger.
func WithLogger(logger Logger) Option {
	return optionFunc(func(o *driverOptions) error {
		o.logger = logger
		return nil
	})
}

// WithMetrics attaches a Metrics the Driver records counters into. See
// NewMetrics. The default is no metrics collection.
func WithMetrics(m *Metrics) Option {
	return optionFunc(func(o *driverOptions) error {
		o.metrics = m
		return nil
	})
}

// WithRandSource overrides the random source used to pick each Try phase's
// rotation offset. Intended for deterministic fairness tests; production
// callers should leave this unset.
func WithRandSource(rng *rand.Rand) Option {
	return optionFunc(func(o *driverOptions) error {
		o.rng = rng
		return nil
	})
}

// WithClock overrides the now-func used by the deadline monitor. Intended
// for deterministic timeout tests; production callers should leave this
// unset.
func WithClock(now func() time.Time) Option {
	return optionFunc(func(o *driverOptions) error {
		o.now = now
		return nil
	})
}

func resolveDriverOptions(opts []Option) (*driverOptions, error) {
	cfg := &driverOptions{
		logger: NewNoOpLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return cfg, nil
}
