package chanselect

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDriverOptions_Defaults(t *testing.T) {
	cfg, err := resolveDriverOptions(nil)
	require.NoError(t, err)
	assert.NotNil(t, cfg.logger)
	assert.Nil(t, cfg.metrics)
	assert.NotNil(t, cfg.rng)
	assert.NotNil(t, cfg.now)
	assert.False(t, cfg.logger.IsEnabled(LevelDebug), "default logger must be a no-op")
}

func TestResolveDriverOptions_AppliesOverrides(t *testing.T) {
	m := NewMetrics()
	rng := rand.New(rand.NewSource(1))
	fixedNow := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	cfg, err := resolveDriverOptions([]Option{
		WithMetrics(m),
		WithRandSource(rng),
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(NewDefaultLogger(LevelWarn)),
	})
	require.NoError(t, err)

	assert.Same(t, m, cfg.metrics)
	assert.Same(t, rng, cfg.rng)
	assert.Equal(t, fixedNow, cfg.now())
	assert.True(t, cfg.logger.IsEnabled(LevelWarn))
	assert.False(t, cfg.logger.IsEnabled(LevelDebug))
}

func TestResolveDriverOptions_IgnoresNilOption(t *testing.T) {
	cfg, err := resolveDriverOptions([]Option{nil, WithMetrics(NewMetrics())})
	require.NoError(t, err)
	assert.NotNil(t, cfg.metrics)
}

func TestNew_PanicsOnFailingOption(t *testing.T) {
	failing := optionFunc(func(*driverOptions) error { return assert.AnError })
	assert.Panics(t, func() { New(nil, failing) })
}
