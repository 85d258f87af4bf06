package cache

import (
	"context"
	"errors"

	"github.com/Egham-7/numseq/internal/services/sequence"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/singleflight"
)

// ComputeFunc produces the result on a cache miss
type ComputeFunc func(ctx context.Context) (sequence.Result, error)

// Memoizer wraps result computation with a checksum-keyed cache.
// Concurrent calls for the same key share a single computation.
type Memoizer struct {
	backend Backend
	group   singleflight.Group
}

// NewMemoizer creates a memoizer over backend
func NewMemoizer(backend Backend) *Memoizer {
	return &Memoizer{backend: backend}
}

// Key builds the cache key for an operation over content with the given checksum
func Key(kind sequence.OperationKind, checksum string) string {
	return string(kind) + "_" + checksum
}

// Do returns the memoized result for (kind, checksum), calling compute at most once per key
// among concurrent callers. cached reports whether the value came from the backend.
// Failures are never stored; backend errors degrade to a miss.
//
// Each caller waits only as long as its own ctx allows. A caller that joined a computation
// aborted by another caller's context starts over instead of inheriting that failure.
func (m *Memoizer) Do(ctx context.Context, kind sequence.OperationKind, checksum, requestID string, compute ComputeFunc) (sequence.Result, bool, error) {
	key := Key(kind, checksum)

	for {
		if result, ok := m.lookup(ctx, key, requestID); ok {
			return result, true, nil
		}

		ch := m.group.DoChan(key, func() (any, error) {
			if result, ok := m.lookup(ctx, key, requestID); ok {
				return result, nil
			}

			result, err := compute(ctx)
			if err != nil {
				return sequence.Result{}, err
			}

			if err := m.backend.Set(ctx, key, result); err != nil {
				fiberlog.Errorf("[%s] ResultCache: Failed to store %s: %v", requestID, key, err)
			} else {
				fiberlog.Debugf("[%s] ResultCache: Stored %s in %s backend", requestID, key, m.backend.Name())
			}
			return result, nil
		})

		select {
		case <-ctx.Done():
			return sequence.Result{}, false, ctx.Err()
		case res := <-ch:
			if res.Err != nil {
				if ctx.Err() == nil && isContextError(res.Err) {
					fiberlog.Debugf("[%s] ResultCache: Shared computation for %s was canceled, retrying", requestID, key)
					continue
				}
				return sequence.Result{}, false, res.Err
			}
			if res.Shared {
				fiberlog.Debugf("[%s] ResultCache: Shared in-flight computation for %s", requestID, key)
			}
			return res.Val.(sequence.Result), false, nil
		}
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (m *Memoizer) lookup(ctx context.Context, key, requestID string) (sequence.Result, bool) {
	result, found, err := m.backend.Get(ctx, key)
	if err != nil {
		fiberlog.Errorf("[%s] ResultCache: Error during lookup of %s: %v", requestID, key, err)
		return sequence.Result{}, false
	}
	if found {
		fiberlog.Infof("[%s] ResultCache: Cache hit for %s", requestID, key)
	}
	return result, found
}

// Close releases the backend
func (m *Memoizer) Close() error {
	return m.backend.Close()
}
