// Package window converts a univariate series into fixed-length sliding
// windows for sequence-model training. The pipeline windows only past target
// values, so each window has a single feature per step.
package window

// Slide produces one window per start index: series[i:i+steps] paired with the
// next value series[i+steps]. Each window is shaped (steps, 1) so the stacked
// result forms a (count, steps, 1) tensor. When steps >= len(series) there is
// nothing to window and both results are nil; that is not an error.
func Slide(series []float64, steps int) (windows [][][]float64, targets []float64) {
	if steps < 1 || steps >= len(series) {
		return nil, nil
	}

	count := len(series) - steps
	windows = make([][][]float64, count)
	targets = make([]float64, count)
	for i := 0; i < count; i++ {
		w := make([][]float64, steps)
		for j := 0; j < steps; j++ {
			w[j] = []float64{series[i+j]}
		}
		windows[i] = w
		targets[i] = series[i+steps]
	}
	return windows, targets
}
