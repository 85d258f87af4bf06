package sequence

import "slices"

// Median buffers every value of seq, sorts them and returns the middle value,
// or the mean of the two middle values when the count is even.
func Median(seq *Sequence) (float64, error) {
	var values []int64
	for v, err := range seq.All() {
		if err != nil {
			return 0, err
		}
		values = append(values, v)
	}

	n := len(values)
	if n == 0 {
		return 0, ErrEmptyInput
	}

	slices.Sort(values)
	if n%2 == 1 {
		return float64(values[n/2]), nil
	}
	return (float64(values[n/2-1]) + float64(values[n/2])) / 2, nil
}
