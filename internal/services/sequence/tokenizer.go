// Package sequence implements the numeric analysis engine: tokenizing a line stream
// into integers, streaming aggregates, the median, and longest monotonic run detection.
//
// Every function is pure over its input Sequence. A Sequence is consumed exactly
// once; callers that need two answers for the same bytes open two sources.
package sequence

import (
	"bufio"
	"context"
	"io"
	"iter"
	"strconv"
	"sync/atomic"
)

// LineSource is a lazy, finite, non-restartable producer of text lines.
// A non-nil error ends the stream.
type LineSource = iter.Seq2[string, error]

// Lines returns a LineSource over an in-memory slice of lines.
func Lines(lines ...string) LineSource {
	return func(yield func(string, error) bool) {
		for _, line := range lines {
			if !yield(line, nil) {
				return
			}
		}
	}
}

// ScanLines returns a LineSource reading newline-separated lines from r.
// Line terminators ("\n" and "\r\n") are stripped; nothing else is trimmed.
func ScanLines(r io.Reader, maxLineBytes int) LineSource {
	return func(yield func(string, error) bool) {
		scanner := bufio.NewScanner(r)
		if maxLineBytes > 0 {
			scanner.Buffer(make([]byte, 0, min(maxLineBytes, 64*1024)), maxLineBytes)
		}
		for scanner.Scan() {
			if !yield(scanner.Text(), nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield("", err)
		}
	}
}

// Sequence is the ordered stream of integers decoded from a LineSource.
type Sequence struct {
	ctx      context.Context
	src      LineSource
	consumed atomic.Bool
}

// Tokenize wraps src in a Sequence. Cancellation of ctx is observed between lines.
func Tokenize(ctx context.Context, src LineSource) *Sequence {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Sequence{ctx: ctx, src: src}
}

// All yields every integer in source order. Iteration stops at the first failure,
// which is yielded as the error half of the pair with a zero value.
func (s *Sequence) All() iter.Seq2[int64, error] {
	return func(yield func(int64, error) bool) {
		if !s.consumed.CompareAndSwap(false, true) {
			yield(0, ErrSequenceConsumed)
			return
		}

		position := 0
		for line, err := range s.src {
			if err != nil {
				yield(0, err)
				return
			}
			if err := s.ctx.Err(); err != nil {
				yield(0, err)
				return
			}

			position++
			value, parseErr := strconv.ParseInt(line, 10, 64)
			if parseErr != nil {
				yield(0, &ParseError{Position: position, Line: line, Err: parseErr})
				return
			}
			if !yield(value, nil) {
				return
			}
		}
	}
}
