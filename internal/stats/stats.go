package stats

// Neutral is returned by the estimators when there is not enough data to
// say anything about the learner.
const Neutral = 0.5

// Mean returns the arithmetic mean of xs, or Neutral for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return Neutral
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Variance returns the population variance (mean of squared deviations).
// Empty input has zero variance.
func Variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return sum / float64(len(xs))
}

// Accuracy returns the fraction of true outcomes, or Neutral when empty.
func Accuracy(outcomes []bool) float64 {
	if len(outcomes) == 0 {
		return Neutral
	}
	correct := 0
	for _, ok := range outcomes {
		if ok {
			correct++
		}
	}
	return float64(correct) / float64(len(outcomes))
}

// Indicators converts outcomes to a 0/1 sequence.
func Indicators(outcomes []bool) []float64 {
	xs := make([]float64, len(outcomes))
	for i, ok := range outcomes {
		if ok {
			xs[i] = 1
		}
	}
	return xs
}

// Improvement compares accuracy of the second half of outcomes against the
// first half. The difference is offset by 0.5 and clamped, so 0.5 means no
// change, 1.0 means the learner went from all wrong to all right.
func Improvement(outcomes []bool) float64 {
	n := len(outcomes)
	if n < 2 {
		return Neutral
	}
	first := Accuracy(outcomes[:n/2])
	second := Accuracy(outcomes[n/2:])
	return Clamp01(second - first + 0.5)
}

// RunningAverage folds newValue into an average over n samples, where n
// already counts newValue. Callers increment their counter first.
func RunningAverage(oldAvg, newValue float64, n int) float64 {
	if n <= 1 {
		return newValue
	}
	return (oldAvg*float64(n-1) + newValue) / float64(n)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 bounds v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}
