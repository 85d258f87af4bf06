package sequence

import (
	"fmt"
	"math"
)

// Direction selects the strict relation a run must satisfy.
type Direction int

const (
	Increasing Direction = iota
	Decreasing
)

func (d Direction) String() string {
	switch d {
	case Increasing:
		return "increasing"
	case Decreasing:
		return "decreasing"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Run is a contiguous, strictly monotonic slice of at least two values.
type Run []int64

// RunSet holds every run tied for the maximum length, in discovery order.
type RunSet []Run

// sentinel is the worst possible predecessor for d: no real value can follow it
// under the strict relation, so the first token never opens a run.
// An input equal to the sentinel behaves like any other value because the
// comparison is strict.
func (d Direction) sentinel() int64 {
	if d == Decreasing {
		return math.MinInt64
	}
	return math.MaxInt64
}

func (d Direction) holds(previous, current int64) bool {
	if d == Decreasing {
		return previous > current
	}
	return previous < current
}

// LongestRuns returns all longest strictly monotonic runs of consecutive values in seq.
// Equal neighbours always end a run.
func LongestRuns(seq *Sequence, dir Direction) (RunSet, error) {
	if dir != Increasing && dir != Decreasing {
		return nil, fmt.Errorf("invalid direction %v", dir)
	}

	var (
		longest  RunSet
		current  Run
		previous = dir.sentinel()
	)

	// Only runs at the current maximum length are retained.
	flush := func() {
		if len(current) == 0 {
			return
		}
		switch {
		case len(longest) == 0 || len(current) > len(longest[0]):
			longest = RunSet{current}
		case len(current) == len(longest[0]):
			longest = append(longest, current)
		}
		current = nil
	}

	for v, err := range seq.All() {
		if err != nil {
			return nil, err
		}
		if dir.holds(previous, v) {
			if len(current) == 0 {
				current = append(current, previous)
			}
			current = append(current, v)
		} else {
			flush()
		}
		previous = v
	}
	flush()

	if len(longest) == 0 {
		return nil, ErrNoRunFound
	}
	return longest, nil
}
