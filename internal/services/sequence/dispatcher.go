package sequence

import (
	"context"
	"strings"
)

// OperationKind selects which computation runs over a Sequence.
type OperationKind string

const (
	OperationMax        OperationKind = "MAX_VALUE"
	OperationMin        OperationKind = "MIN_VALUE"
	OperationMean       OperationKind = "MEAN"
	OperationMedian     OperationKind = "MEDIAN"
	OperationIncreasing OperationKind = "INCREASING_SEQUENCE"
	OperationDecreasing OperationKind = "DECREASING_SEQUENCE"
)

// Operations lists every supported kind in a stable order.
var Operations = []OperationKind{
	OperationMax,
	OperationMin,
	OperationMean,
	OperationMedian,
	OperationIncreasing,
	OperationDecreasing,
}

var operationAliases = map[string]OperationKind{
	"MAX":             OperationMax,
	"MIN":             OperationMin,
	"INCREASING_RUNS": OperationIncreasing,
	"DECREASING_RUNS": OperationDecreasing,
}

// ParseOperationKind resolves a wire name (case-insensitive) to an OperationKind.
func ParseOperationKind(name string) (OperationKind, error) {
	upper := strings.ToUpper(name)
	kind := OperationKind(upper)
	if kind.Valid() {
		return kind, nil
	}
	if alias, ok := operationAliases[upper]; ok {
		return alias, nil
	}
	return "", &UnsupportedOperationError{Kind: name}
}

// Valid reports whether k is one of the supported kinds.
func (k OperationKind) Valid() bool {
	switch k {
	case OperationMax, OperationMin, OperationMean, OperationMedian, OperationIncreasing, OperationDecreasing:
		return true
	default:
		return false
	}
}

// Result is the outcome of one operation. Exactly one of Int, Float or Runs is
// meaningful, selected by Kind.
type Result struct {
	Kind  OperationKind
	Int   int64
	Float float64
	Runs  RunSet
}

// Value returns the payload matching Kind.
func (r Result) Value() any {
	switch r.Kind {
	case OperationMax, OperationMin:
		return r.Int
	case OperationMean, OperationMedian:
		return r.Float
	default:
		return r.Runs
	}
}

// Execute tokenizes src and runs the component selected by kind over it.
// src is consumed at most once.
func Execute(ctx context.Context, kind OperationKind, src LineSource) (Result, error) {
	if !kind.Valid() {
		return Result{}, &UnsupportedOperationError{Kind: string(kind)}
	}

	seq := Tokenize(ctx, src)
	result := Result{Kind: kind}
	var err error

	switch kind {
	case OperationMax:
		result.Int, err = Max(seq)
	case OperationMin:
		result.Int, err = Min(seq)
	case OperationMean:
		result.Float, err = Mean(seq)
	case OperationMedian:
		result.Float, err = Median(seq)
	case OperationIncreasing:
		result.Runs, err = LongestRuns(seq, Increasing)
	case OperationDecreasing:
		result.Runs, err = LongestRuns(seq, Decreasing)
	}
	if err != nil {
		return Result{}, err
	}
	return result, nil
}
