package sequence

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLongestRunsWholeSequence(t *testing.T) {
	runs, err := LongestRuns(seqOf(5, 4, 3, 2, 1), Decreasing)
	require.NoError(t, err)
	assert.Equal(t, RunSet{{5, 4, 3, 2, 1}}, runs)

	runs, err = LongestRuns(seqOf(-3, 0, 8, 100), Increasing)
	require.NoError(t, err)
	assert.Equal(t, RunSet{{-3, 0, 8, 100}}, runs)
}

func TestLongestRunsAlternating(t *testing.T) {
	runs, err := LongestRuns(seqOf(1, 2, 1, 2, 1, 2), Increasing)
	require.NoError(t, err)
	assert.Equal(t, RunSet{{1, 2}, {1, 2}, {1, 2}}, runs)

	runs, err = LongestRuns(seqOf(1, 2, 1, 2, 1, 2), Decreasing)
	require.NoError(t, err)
	assert.Equal(t, RunSet{{2, 1}, {2, 1}}, runs)
}

func TestLongestRunsNoRun(t *testing.T) {
	cases := map[string][]int64{
		"empty":  {},
		"single": {1},
		"equal":  {3, 3, 3},
	}
	for name, values := range cases {
		for _, dir := range []Direction{Increasing, Decreasing} {
			_, err := LongestRuns(seqOf(values...), dir)
			assert.ErrorIs(t, err, ErrNoRunFound, "%s/%s", name, dir)
		}
	}

	_, err := LongestRuns(seqOf(5, 4, 3), Increasing)
	assert.ErrorIs(t, err, ErrNoRunFound)
}

func TestLongestRunsPlateauEndsRun(t *testing.T) {
	runs, err := LongestRuns(seqOf(1, 2, 3, 3, 4, 5), Increasing)
	require.NoError(t, err)
	assert.Equal(t, RunSet{{1, 2, 3}, {3, 4, 5}}, runs)
}

func TestLongestRunsKeepsDiscoveryOrder(t *testing.T) {
	runs, err := LongestRuns(seqOf(9, 1, 2, 0, 5, 6, 7, 1, 8, 9, 10, 2), Increasing)
	require.NoError(t, err)
	assert.Equal(t, RunSet{{0, 5, 6, 7}, {1, 8, 9, 10}}, runs)
}

func TestLongestRunsShortRunsDropped(t *testing.T) {
	runs, err := LongestRuns(seqOf(10, 9, 10, 8, 7, 6, 7, 1), Decreasing)
	require.NoError(t, err)
	assert.Equal(t, RunSet{{10, 8, 7, 6}}, runs)
}

func TestLongestRunsSentinelValues(t *testing.T) {
	runs, err := LongestRuns(seqOf(math.MaxInt64, 1, 2), Increasing)
	require.NoError(t, err)
	assert.Equal(t, RunSet{{1, 2}}, runs)

	runs, err = LongestRuns(seqOf(math.MinInt64, math.MinInt64+1, 0), Increasing)
	require.NoError(t, err)
	assert.Equal(t, RunSet{{math.MinInt64, math.MinInt64 + 1, 0}}, runs)

	runs, err = LongestRuns(seqOf(math.MinInt64, 5, 4), Decreasing)
	require.NoError(t, err)
	assert.Equal(t, RunSet{{5, 4}}, runs)
}

func TestLongestRunsResultsAreIndependent(t *testing.T) {
	runs, err := LongestRuns(seqOf(1, 2, 0, 3), Increasing)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	runs[0][0] = 42
	assert.Equal(t, Run{0, 3}, runs[1])
}

func TestLongestRunsInvalidDirection(t *testing.T) {
	_, err := LongestRuns(seqOf(1, 2), Direction(7))
	assert.Error(t, err)
}

func TestLongestRunsParseError(t *testing.T) {
	_, err := LongestRuns(Tokenize(context.Background(), Lines("1", "2", "x")), Increasing)
	assert.True(t, IsParseError(err))
}
