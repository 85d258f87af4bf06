package cache

import (
	"context"
	"errors"

	"github.com/Egham-7/numseq/internal/services/circuitbreaker"
	"github.com/Egham-7/numseq/internal/services/sequence"
)

// ErrBackendUnavailable is returned while the circuit around a backend is open
var ErrBackendUnavailable = errors.New("cache backend unavailable")

// GuardedBackend short-circuits calls to a backend that keeps failing
type GuardedBackend struct {
	backend Backend
	breaker *circuitbreaker.CircuitBreaker
}

func NewGuardedBackend(backend Backend, breaker *circuitbreaker.CircuitBreaker) *GuardedBackend {
	return &GuardedBackend{backend: backend, breaker: breaker}
}

func (g *GuardedBackend) Get(ctx context.Context, key string) (sequence.Result, bool, error) {
	if !g.breaker.CanExecute() {
		return sequence.Result{}, false, ErrBackendUnavailable
	}
	result, found, err := g.backend.Get(ctx, key)
	g.record(err)
	return result, found, err
}

func (g *GuardedBackend) Set(ctx context.Context, key string, result sequence.Result) error {
	if !g.breaker.CanExecute() {
		return ErrBackendUnavailable
	}
	err := g.backend.Set(ctx, key, result)
	g.record(err)
	return err
}

func (g *GuardedBackend) Name() string { return g.backend.Name() }

func (g *GuardedBackend) Close() error { return g.backend.Close() }

func (g *GuardedBackend) record(err error) {
	// caller cancellations and deadlines say nothing about the backend
	if err != nil && !isContextError(err) {
		g.breaker.RecordFailure()
		return
	}
	g.breaker.RecordSuccess()
}
