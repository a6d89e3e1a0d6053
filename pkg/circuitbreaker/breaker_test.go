package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/mentormatch/mentormatch-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	_ = logger.Initialize(logger.Config{Level: "error", Environment: "test"}) //nolint:errcheck
}

func TestRun_TripsAfterFailureRatio(t *testing.T) {
	cb := New(DefaultConfig("test_trip"))
	boom := errors.New("boom")

	calls := 0
	failing := func() error {
		calls++
		return boom
	}

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, Run(cb, failing), boom)
	}
	assert.True(t, IsOpen(cb))

	err := Run(cb, failing)
	assert.ErrorIs(t, err, ErrOpen)
	assert.ErrorContains(t, err, "test_trip")
	assert.Equal(t, 3, calls)
}

func TestRun_StaysClosedBelowMinRequests(t *testing.T) {
	cb := New(DefaultConfig("test_min"))

	assert.Error(t, Run(cb, func() error { return errors.New("boom") }))
	assert.Error(t, Run(cb, func() error { return errors.New("boom") }))
	assert.False(t, IsOpen(cb))
	assert.NoError(t, Run(cb, func() error { return nil }))
}

func TestRun_HalfOpenRecovers(t *testing.T) {
	cfg := DefaultConfig("test_recover")
	cfg.Timeout = 20 * time.Millisecond
	cfg.MaxRequests = 1
	cb := New(cfg)

	for i := 0; i < 3; i++ {
		_ = Run(cb, func() error { return errors.New("boom") }) //nolint:errcheck
	}
	require.True(t, IsOpen(cb))

	time.Sleep(40 * time.Millisecond)
	require.NoError(t, Run(cb, func() error { return nil }))
	assert.False(t, IsOpen(cb))
}
