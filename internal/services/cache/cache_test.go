package cache

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Egham-7/numseq/internal/models"
	"github.com/Egham-7/numseq/internal/services/circuitbreaker"
	"github.com/Egham-7/numseq/internal/services/sequence"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var runsResult = sequence.Result{
	Kind: sequence.OperationIncreasing,
	Runs: sequence.RunSet{{1, 2}, {1, 2}, {1, 2}},
}

func TestKey(t *testing.T) {
	assert.Equal(t, "MEDIAN_abc123", Key(sequence.OperationMedian, "abc123"))
}

func TestMemoryBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend(2, 0)

	_, found, err := backend.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, backend.Set(ctx, "runs", runsResult))
	require.NoError(t, backend.Set(ctx, "mean", sequence.Result{Kind: sequence.OperationMean, Float: 2.5}))

	got, found, err := backend.Get(ctx, "runs")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, runsResult, got)

	// stored copies are not shared with callers
	got.Runs[0][0] = 99
	again, _, _ := backend.Get(ctx, "runs")
	assert.Equal(t, int64(1), again.Runs[0][0])

	got, _, _ = backend.Get(ctx, "mean")
	assert.InDelta(t, 2.5, got.Float, 0)
}

func TestMemoryBackendEvictsAndExpires(t *testing.T) {
	ctx := context.Background()

	backend := NewMemoryBackend(1, 0)
	require.NoError(t, backend.Set(ctx, "a", sequence.Result{Kind: sequence.OperationMax, Int: 1}))
	require.NoError(t, backend.Set(ctx, "b", sequence.Result{Kind: sequence.OperationMax, Int: 2}))
	_, found, _ := backend.Get(ctx, "a")
	assert.False(t, found)

	expiring := NewMemoryBackend(10, 20*time.Millisecond)
	require.NoError(t, expiring.Set(ctx, "a", sequence.Result{Kind: sequence.OperationMax, Int: 1}))
	assert.Eventually(t, func() bool {
		_, found, _ := expiring.Get(ctx, "a")
		return !found
	}, time.Second, 10*time.Millisecond)
}

func TestNewBackend(t *testing.T) {
	backend, err := NewBackend(models.ResultCacheConfig{Backend: models.CacheBackendMemory, Capacity: 5}, nil)
	require.NoError(t, err)
	assert.Equal(t, "memory", backend.Name())

	_, err = NewBackend(models.ResultCacheConfig{Backend: models.CacheBackendRedis}, nil)
	assert.Error(t, err)

	_, err = NewBackend(models.ResultCacheConfig{Backend: "memcached"}, nil)
	assert.ErrorContains(t, err, "unsupported cache backend")
}

func TestMemoizerCachesSuccess(t *testing.T) {
	ctx := context.Background()
	m := NewMemoizer(NewMemoryBackend(10, 0))

	var calls atomic.Int32
	compute := func(context.Context) (sequence.Result, error) {
		calls.Add(1)
		return runsResult, nil
	}

	got, cached, err := m.Do(ctx, sequence.OperationIncreasing, "sum", "req-1", compute)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, runsResult, got)

	got, cached, err = m.Do(ctx, sequence.OperationIncreasing, "sum", "req-2", compute)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, runsResult, got)
	assert.Equal(t, int32(1), calls.Load())

	// different operation on the same content is a separate entry
	_, cached, err = m.Do(ctx, sequence.OperationDecreasing, "sum", "req-3", compute)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, int32(2), calls.Load())
}

func TestMemoizerDoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	m := NewMemoizer(NewMemoryBackend(10, 0))

	var calls atomic.Int32
	failing := func(context.Context) (sequence.Result, error) {
		calls.Add(1)
		return sequence.Result{}, sequence.ErrEmptyInput
	}

	for range 2 {
		_, cached, err := m.Do(ctx, sequence.OperationMax, "empty", "req", failing)
		assert.ErrorIs(t, err, sequence.ErrEmptyInput)
		assert.False(t, cached)
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestMemoizerConcurrentCallersAgree(t *testing.T) {
	ctx := context.Background()
	m := NewMemoizer(NewMemoryBackend(10, 0))

	var calls atomic.Int32
	compute := func(context.Context) (sequence.Result, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return sequence.Result{Kind: sequence.OperationMax, Int: 42}, nil
	}

	const callers = 16
	var wg sync.WaitGroup
	results := make([]sequence.Result, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _, err := m.Do(ctx, sequence.OperationMax, "same", "req", compute)
			assert.NoError(t, err)
			results[i] = got
		}()
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, int64(42), got.Int)
	}
	assert.Less(t, calls.Load(), int32(callers))
}

type brokenBackend struct{}

func (brokenBackend) Get(context.Context, string) (sequence.Result, bool, error) {
	return sequence.Result{}, false, errors.New("connection refused")
}

func (brokenBackend) Set(context.Context, string, sequence.Result) error {
	return errors.New("connection refused")
}

func (brokenBackend) Name() string { return "broken" }
func (brokenBackend) Close() error { return nil }

func TestMemoizerDegradesToMissOnBackendErrors(t *testing.T) {
	m := NewMemoizer(brokenBackend{})

	got, cached, err := m.Do(context.Background(), sequence.OperationMin, "sum", "req",
		func(context.Context) (sequence.Result, error) {
			return sequence.Result{Kind: sequence.OperationMin, Int: -3}, nil
		})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, int64(-3), got.Int)
}

func TestRedisBackend(t *testing.T) {
	url := os.Getenv("NUMSEQ_TEST_REDIS_URL")
	if url == "" {
		t.Skip("NUMSEQ_TEST_REDIS_URL not set")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	backend := NewRedisBackend(client, "numseq:test:", time.Minute)
	key := Key(sequence.OperationIncreasing, "redis-test")
	defer client.Del(ctx, "numseq:test:"+key)

	require.NoError(t, backend.Set(ctx, key, runsResult))
	got, found, err := backend.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, runsResult, got)

	_, found, err = backend.Get(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, found)
}

type countingBackend struct {
	brokenBackend
	calls atomic.Int32
}

func (c *countingBackend) Get(ctx context.Context, key string) (sequence.Result, bool, error) {
	c.calls.Add(1)
	return c.brokenBackend.Get(ctx, key)
}

func TestGuardedBackendOpensAfterFailures(t *testing.T) {
	inner := &countingBackend{}
	guarded := NewGuardedBackend(inner, circuitbreaker.NewWithConfig("test", circuitbreaker.Config{
		FailureThreshold: 2,
		Timeout:          time.Hour,
	}))

	for range 5 {
		_, found, err := guarded.Get(context.Background(), "k")
		assert.False(t, found)
		assert.Error(t, err)
	}

	assert.Equal(t, int32(2), inner.calls.Load())
	_, _, err := guarded.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.ErrorIs(t, guarded.Set(context.Background(), "k", runsResult), ErrBackendUnavailable)
	assert.Equal(t, "broken", guarded.Name())
}

// slowMax returns 7 after delay unless ctx ends first
func slowMax(calls *atomic.Int32, delay time.Duration) ComputeFunc {
	return func(ctx context.Context) (sequence.Result, error) {
		calls.Add(1)
		select {
		case <-time.After(delay):
			return sequence.Result{Kind: sequence.OperationMax, Int: 7}, nil
		case <-ctx.Done():
			return sequence.Result{}, ctx.Err()
		}
	}
}

func TestMemoizerCallerDeadlineDoesNotFailOthers(t *testing.T) {
	m := NewMemoizer(NewMemoryBackend(10, 0))
	var calls atomic.Int32
	compute := slowMax(&calls, 100*time.Millisecond)

	shortCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	shortErr := make(chan error, 1)
	go func() {
		_, _, err := m.Do(shortCtx, sequence.OperationMax, "slow", "req-short", compute)
		shortErr <- err
	}()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	got, cached, err := m.Do(context.Background(), sequence.OperationMax, "slow", "req-patient", compute)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, int64(7), got.Int)

	assert.ErrorIs(t, <-shortErr, context.DeadlineExceeded)
	assert.Equal(t, int32(2), calls.Load())

	_, cached, err = m.Do(context.Background(), sequence.OperationMax, "slow", "req-later", compute)
	require.NoError(t, err)
	assert.True(t, cached)
}

func TestMemoizerWaiterHonoursOwnDeadline(t *testing.T) {
	m := NewMemoizer(NewMemoryBackend(10, 0))
	var calls atomic.Int32
	compute := slowMax(&calls, 200*time.Millisecond)

	leaderErr := make(chan error, 1)
	go func() {
		_, _, err := m.Do(context.Background(), sequence.OperationMax, "slow", "req-leader", compute)
		leaderErr <- err
	}()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, _, err := m.Do(ctx, sequence.OperationMax, "slow", "req-waiter", compute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 150*time.Millisecond)

	assert.NoError(t, <-leaderErr)
	assert.Equal(t, int32(1), calls.Load())
}

type deadlineBackend struct{ brokenBackend }

func (deadlineBackend) Get(ctx context.Context, _ string) (sequence.Result, bool, error) {
	return sequence.Result{}, false, context.DeadlineExceeded
}

func TestGuardedBackendIgnoresCallerDeadlines(t *testing.T) {
	breaker := circuitbreaker.NewWithConfig("test", circuitbreaker.Config{FailureThreshold: 1, Timeout: time.Hour})
	guarded := NewGuardedBackend(deadlineBackend{}, breaker)

	for range 3 {
		_, _, err := guarded.Get(context.Background(), "k")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
	assert.Equal(t, circuitbreaker.Closed, breaker.GetState())
}
