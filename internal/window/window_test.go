package window

import (
	"testing"
)

func TestSlideCountsAndTargets(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	steps := 3

	windows, targets := Slide(series, steps)

	want := len(series) - steps
	if len(windows) != want {
		t.Fatalf("expected %d windows, got %d", want, len(windows))
	}
	if len(targets) != want {
		t.Fatalf("expected %d targets, got %d", want, len(targets))
	}

	for i, w := range windows {
		if len(w) != steps {
			t.Errorf("window %d: expected length %d, got %d", i, steps, len(w))
		}
		for j, step := range w {
			if len(step) != 1 {
				t.Errorf("window %d step %d: expected 1 feature, got %d", i, j, len(step))
			}
			if step[0] != series[i+j] {
				t.Errorf("window %d step %d: expected %v, got %v", i, j, series[i+j], step[0])
			}
		}
		if targets[i] != series[i+steps] {
			t.Errorf("target %d: expected %v, got %v", i, series[i+steps], targets[i])
		}
	}
}

func TestSlideTooShort(t *testing.T) {
	series := []float64{1, 2, 3}

	tests := []struct {
		name  string
		steps int
	}{
		{"steps equals length", 3},
		{"steps exceeds length", 10},
		{"zero steps", 0},
		{"negative steps", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows, targets := Slide(series, tt.steps)
			if windows != nil || targets != nil {
				t.Errorf("expected no windows, got %d windows %d targets", len(windows), len(targets))
			}
		})
	}
}

func TestSlideSingleWindow(t *testing.T) {
	series := []float64{1, 2, 3}
	windows, targets := Slide(series, 2)

	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	if windows[0][0][0] != 1 || windows[0][1][0] != 2 {
		t.Errorf("unexpected window contents: %v", windows[0])
	}
	if targets[0] != 3 {
		t.Errorf("expected target 3, got %v", targets[0])
	}
}
