package sequence

import (
	"math/big"
	"math/bits"
)

// Max returns the greatest value in seq.
func Max(seq *Sequence) (int64, error) {
	return reduce(seq, func(best, v int64) bool { return v > best })
}

// Min returns the smallest value in seq.
func Min(seq *Sequence) (int64, error) {
	return reduce(seq, func(best, v int64) bool { return v < best })
}

func reduce(seq *Sequence, better func(best, v int64) bool) (int64, error) {
	var (
		best  int64
		found bool
	)
	for v, err := range seq.All() {
		if err != nil {
			return 0, err
		}
		if !found || better(best, v) {
			best = v
			found = true
		}
	}
	if !found {
		return 0, ErrEmptyInput
	}
	return best, nil
}

// Mean returns the arithmetic average of seq, computed in one pass.
func Mean(seq *Sequence) (float64, error) {
	var sum accumulator
	var count uint64
	for v, err := range seq.All() {
		if err != nil {
			return 0, err
		}
		sum.add(v)
		count++
	}
	if count == 0 {
		return 0, ErrEmptyInput
	}

	quo := new(big.Float).Quo(sum.float(), new(big.Float).SetUint64(count))
	mean, _ := quo.Float64()
	return mean, nil
}

// accumulator is a signed 128-bit sum (hi*2^64 + lo, two's complement).
// 2^63 int64 values cannot overflow it.
type accumulator struct {
	hi int64
	lo uint64
}

func (a *accumulator) add(v int64) {
	var carry uint64
	a.lo, carry = bits.Add64(a.lo, uint64(v), 0)
	a.hi += v>>63 + int64(carry)
}

func (a *accumulator) float() *big.Float {
	n := new(big.Int).SetInt64(a.hi)
	n.Lsh(n, 64)
	n.Add(n, new(big.Int).SetUint64(a.lo))
	return new(big.Float).SetInt(n)
}
