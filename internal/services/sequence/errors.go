package sequence

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned by MAX, MIN, MEAN and MEDIAN when the sequence yields no tokens.
	ErrEmptyInput = errors.New("sequence is empty")
	// ErrNoRunFound is returned when no strictly monotonic run of length >= 2 exists.
	ErrNoRunFound = errors.New("no monotonic run found")
	// ErrSequenceConsumed is returned when a Sequence is iterated a second time.
	ErrSequenceConsumed = errors.New("sequence already consumed")
)

// ParseError reports a line that could not be decoded as an integer.
type ParseError struct {
	Position int // 1-based line ordinal
	Line     string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: cannot parse %q as integer: %v", e.Position, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnsupportedOperationError reports an operation kind outside the known set.
type UnsupportedOperationError struct {
	Kind string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("unsupported operation: %q", e.Kind)
}

// IsParseError checks if err carries a ParseError
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// IsUnsupportedOperation checks if err carries an UnsupportedOperationError
func IsUnsupportedOperation(err error) bool {
	var opErr *UnsupportedOperationError
	return errors.As(err, &opErr)
}
