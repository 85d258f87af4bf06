package sequence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperationKind(t *testing.T) {
	cases := map[string]OperationKind{
		"MAX_VALUE":           OperationMax,
		"min_value":           OperationMin,
		"Mean":                OperationMean,
		"MEDIAN":              OperationMedian,
		"INCREASING_SEQUENCE": OperationIncreasing,
		"decreasing_sequence": OperationDecreasing,
		"max":                 OperationMax,
		"MIN":                 OperationMin,
		"increasing_runs":     OperationIncreasing,
		"DECREASING_RUNS":     OperationDecreasing,
	}
	for name, want := range cases {
		got, err := ParseOperationKind(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseOperationKind("MODE")
	assert.True(t, IsUnsupportedOperation(err))
}

func TestExecute(t *testing.T) {
	lines := []string{"1", "3", "2", "5", "4"}

	cases := []struct {
		kind OperationKind
		want any
	}{
		{OperationMax, int64(5)},
		{OperationMin, int64(1)},
		{OperationMean, 3.0},
		{OperationMedian, 3.0},
		{OperationIncreasing, RunSet{{1, 3}, {2, 5}}},
		{OperationDecreasing, RunSet{{3, 2}, {5, 4}}},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			result, err := Execute(context.Background(), tc.kind, Lines(lines...))
			require.NoError(t, err)
			assert.Equal(t, tc.kind, result.Kind)
			assert.Equal(t, tc.want, result.Value())
		})
	}
}

func TestExecuteUnsupported(t *testing.T) {
	consumed := false
	src := func(yield func(string, error) bool) {
		consumed = true
	}

	_, err := Execute(context.Background(), OperationKind("MODE"), src)
	assert.True(t, IsUnsupportedOperation(err))
	assert.False(t, consumed)
}

func TestExecuteIsIdempotentOverFreshSources(t *testing.T) {
	lines := []string{"8", "6", "7", "5", "3", "0", "9"}
	for _, kind := range Operations {
		first, err := Execute(context.Background(), kind, Lines(lines...))
		require.NoError(t, err)
		second, err := Execute(context.Background(), kind, Lines(lines...))
		require.NoError(t, err)
		assert.Equal(t, first, second, "kind %s", kind)
	}
}

func TestExecuteFailureKinds(t *testing.T) {
	_, err := Execute(context.Background(), OperationMedian, Lines())
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Execute(context.Background(), OperationIncreasing, Lines())
	assert.ErrorIs(t, err, ErrNoRunFound)
	assert.NotErrorIs(t, err, ErrEmptyInput)
}
