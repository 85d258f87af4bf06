// Package operation runs sequence operations over request sources, memoizing results
// by content checksum when a result cache is configured.
package operation

import (
	"context"

	"github.com/Egham-7/numseq/internal/services/cache"
	"github.com/Egham-7/numseq/internal/services/sequence"
	"github.com/Egham-7/numseq/internal/services/source"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Outcome is a computed result plus how it was obtained
type Outcome struct {
	Result   sequence.Result
	Checksum string
	Cached   bool
}

type Service struct {
	sources  *source.Service
	memoizer *cache.Memoizer
}

// NewService creates an operation service. memoizer may be nil to disable caching.
func NewService(sources *source.Service, memoizer *cache.Memoizer) *Service {
	return &Service{sources: sources, memoizer: memoizer}
}

// Sources exposes the source service the handlers build openers with
func (s *Service) Sources() *source.Service {
	return s.sources
}

// Perform runs kind over the content of opener. Failures come back as *models.AppError.
func (s *Service) Perform(ctx context.Context, kind sequence.OperationKind, opener source.Opener, requestID string) (Outcome, error) {
	if !kind.Valid() {
		return Outcome{}, MapError(string(kind), &sequence.UnsupportedOperationError{Kind: string(kind)})
	}

	fiberlog.Debugf("[%s] Performing %s over %s source %s", requestID, kind, opener.Kind(), opener.Name())

	compute := func(ctx context.Context) (sequence.Result, error) {
		return sequence.Execute(ctx, kind, s.sources.Lines(opener))
	}

	if s.memoizer == nil {
		result, err := compute(ctx)
		if err != nil {
			return Outcome{}, MapError(string(kind), err)
		}
		return Outcome{Result: result}, nil
	}

	checksum, err := source.Checksum(ctx, opener)
	if err != nil {
		return Outcome{}, MapError(string(kind), err)
	}

	result, cached, err := s.memoizer.Do(ctx, kind, checksum, requestID, compute)
	if err != nil {
		return Outcome{Checksum: checksum}, MapError(string(kind), err)
	}

	return Outcome{Result: result, Checksum: checksum, Cached: cached}, nil
}
