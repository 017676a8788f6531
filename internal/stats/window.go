package stats

// DefaultWindowSize is the number of samples a Window keeps when no size
// is configured.
const DefaultWindowSize = 20

// Window is a bounded FIFO of samples. Once full, pushing a sample drops
// the oldest one.
type Window struct {
	Samples []float64 `json:"samples"`
	Size    int       `json:"size"`
}

// NewWindow returns an empty window holding at most size samples.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &Window{Size: size}
}

// Push appends v, evicting the oldest samples beyond the window size.
func (w *Window) Push(v float64) {
	w.Samples = append(w.Samples, v)
	size := w.Size
	if size <= 0 {
		size = DefaultWindowSize
	}
	if len(w.Samples) > size {
		w.Samples = w.Samples[len(w.Samples)-size:]
	}
}

// Len returns the number of samples held.
func (w *Window) Len() int { return len(w.Samples) }

// Mean returns the mean of the held samples (Neutral when empty).
func (w *Window) Mean() float64 { return Mean(w.Samples) }

// Variance returns the population variance of the held samples.
func (w *Window) Variance() float64 { return Variance(w.Samples) }

// Trend returns the improvement signal over the window: the second half's
// mean minus the first half's, offset by 0.5 and clamped.
func (w *Window) Trend() float64 {
	n := len(w.Samples)
	if n < 2 {
		return Neutral
	}
	return Clamp01(Mean(w.Samples[n/2:]) - Mean(w.Samples[:n/2]) + 0.5)
}
