package breaker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campuslib/library-service/pkg/breaker"
)

func TestCircuitBreaker_Call(t *testing.T) {
	successfulService := func() error { return nil }
	failingService := func() error { return errors.New("service error") }

	cb := breaker.New(10, 200*time.Millisecond, 0.30, 5)

	for i := 0; i < 20; i++ {
		require.NoError(t, cb.Call(successfulService))
	}

	// push the failure ratio over the percentile and verify the breaker opens
	for i := 0; i < 10; i++ {
		_ = cb.Call(failingService)
	}
	require.ErrorIs(t, cb.Call(successfulService), breaker.ErrOpen)

	// after the timeout the breaker probes in half-open and recovers
	time.Sleep(300 * time.Millisecond)
	for i := 0; i < 10; i++ {
		require.NoError(t, cb.Call(successfulService))
	}

	// a failure while half-open reopens immediately
	for i := 0; i < 10; i++ {
		_ = cb.Call(failingService)
	}
	require.ErrorIs(t, cb.Call(successfulService), breaker.ErrOpen)
	time.Sleep(300 * time.Millisecond)
	require.Error(t, cb.Call(failingService))
	require.ErrorIs(t, cb.Call(successfulService), breaker.ErrOpen)
}

func TestCircuitBreaker_Reset(t *testing.T) {
	failingService := func() error { return errors.New("service error") }

	cb := breaker.New(4, time.Minute, 0.5, 2)
	for i := 0; i < 4; i++ {
		_ = cb.Call(failingService)
	}
	require.ErrorIs(t, cb.Call(func() error { return nil }), breaker.ErrOpen)

	cb.Reset()
	require.NoError(t, cb.Call(func() error { return nil }))
}
