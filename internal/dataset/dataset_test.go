package dataset

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "btc.csv", "date,close,volume\n2024-01-01,100,5\n2024-01-02,101,6\n")
	writeCSV(t, dir, "eth.csv", "date,close\n2024-01-01,10\n")
	writeCSV(t, dir, "notes.txt", "not a dataset")

	frames, err := LoadDir(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}

	btc, ok := frames["btc.csv"]
	if !ok {
		t.Fatal("expected btc.csv frame")
	}
	if btc.Rows() != 2 {
		t.Errorf("expected 2 rows, got %d", btc.Rows())
	}
	cols := btc.Columns()
	if len(cols) != 3 || cols[0] != "date" || cols[1] != "close" || cols[2] != "volume" {
		t.Errorf("unexpected columns: %v", cols)
	}

	closeVals := btc.Column("close")
	if closeVals[0] != 100 || closeVals[1] != 101 {
		t.Errorf("unexpected close values: %v", closeVals)
	}
}

func TestLoadDirMissingFolder(t *testing.T) {
	_, err := LoadDir("/nonexistent/folder", zerolog.Nop())
	if err == nil {
		t.Fatal("expected error for missing folder, got nil")
	}
}

func TestPreprocessNoTimestampColumn(t *testing.T) {
	f := NewFrame("x.csv", []string{"open", "close"})
	if err := f.AppendRow([]string{"1", "2"}); err != nil {
		t.Fatal(err)
	}

	err := Preprocess(f, zerolog.Nop())
	if err != ErrNoTimestamp {
		t.Fatalf("expected ErrNoTimestamp, got %v", err)
	}

	// Frame must be untouched.
	if f.Rows() != 1 {
		t.Errorf("expected 1 row after failed preprocess, got %d", f.Rows())
	}
	if f.Column("open")[0] != 1 {
		t.Errorf("expected open value 1, got %v", f.Column("open")[0])
	}
}

func TestPreprocessElapsedSeconds(t *testing.T) {
	f := NewFrame("x.csv", []string{"date", "close"})
	rows := [][]string{
		{"2024-01-01 00:00:00", "100"},
		{"2024-01-01 00:00:30", "101"},
		{"2024-01-01 00:01:00", "102"},
	}
	for _, r := range rows {
		if err := f.AppendRow(r); err != nil {
			t.Fatal(err)
		}
	}

	if err := Preprocess(f, zerolog.Nop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := f.Column("date")
	want := []float64{0, 30, 60}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("elapsed[%d]: expected %v, got %v", i, want[i], got[i])
		}
	}
	if got[0] != 0 {
		t.Error("minimum elapsed value must be exactly 0")
	}
}

func TestPreprocessDropsUnparseableTimestamps(t *testing.T) {
	f := NewFrame("x.csv", []string{"date", "close"})
	rows := [][]string{
		{"2024-01-01", "100"},
		{"garbage", "999"},
		{"2024-01-03", "102"},
	}
	for _, r := range rows {
		if err := f.AppendRow(r); err != nil {
			t.Fatal(err)
		}
	}

	if err := Preprocess(f, zerolog.Nop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.Rows() != 2 {
		t.Fatalf("expected 2 rows after dropping bad timestamp, got %d", f.Rows())
	}
	closeVals := f.Column("close")
	if closeVals[0] != 100 || closeVals[1] != 102 {
		t.Errorf("expected close [100 102], got %v", closeVals)
	}
}

func TestPreprocessForwardFill(t *testing.T) {
	f := NewFrame("x.csv", []string{"date", "close", "volume"})
	rows := [][]string{
		{"2024-01-01", "", "5"},
		{"2024-01-02", "101", ""},
		{"2024-01-03", "", "7"},
	}
	for _, r := range rows {
		if err := f.AppendRow(r); err != nil {
			t.Fatal(err)
		}
	}

	if err := Preprocess(f, zerolog.Nop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	closeVals := f.Column("close")
	if !math.IsNaN(closeVals[0]) {
		t.Errorf("leading missing value must stay NaN, got %v", closeVals[0])
	}
	if closeVals[1] != 101 || closeVals[2] != 101 {
		t.Errorf("expected forward fill [_, 101, 101], got %v", closeVals)
	}

	volume := f.Column("volume")
	if volume[0] != 5 || volume[1] != 5 || volume[2] != 7 {
		t.Errorf("expected volume [5 5 7], got %v", volume)
	}
}

func TestPreprocessTimestampFormats(t *testing.T) {
	tests := []struct {
		name string
		cell string
		ok   bool
	}{
		{"rfc3339", "2024-01-01T12:00:00Z", true},
		{"datetime", "2024-01-01 12:00:00", true},
		{"date only", "2024-01-01", true},
		{"unix seconds", "1704110400", true},
		{"empty", "", false},
		{"garbage", "not-a-date", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := parseTimestamp(tt.cell)
			if ok != tt.ok {
				t.Errorf("parseTimestamp(%q): expected ok=%v, got %v", tt.cell, tt.ok, ok)
			}
		})
	}
}

func TestFrameMatrix(t *testing.T) {
	f := NewFrame("x.csv", []string{"date", "close", "volume"})
	rows := [][]string{
		{"0", "100", "5"},
		{"60", "101", "6"},
	}
	for _, r := range rows {
		if err := f.AppendRow(r); err != nil {
			t.Fatal(err)
		}
	}

	m, features, err := f.Matrix("close")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r, c := m.Dims()
	if r != 2 || c != 2 {
		t.Fatalf("expected 2x2 matrix, got %dx%d", r, c)
	}
	if len(features) != 2 || features[0] != "date" || features[1] != "volume" {
		t.Errorf("unexpected feature names: %v", features)
	}
	if m.At(0, 0) != 0 || m.At(1, 1) != 6 {
		t.Errorf("unexpected matrix values: %v %v", m.At(0, 0), m.At(1, 1))
	}
}

func TestFrameMatrixNoFeatures(t *testing.T) {
	f := NewFrame("x.csv", []string{"close"})
	if err := f.AppendRow([]string{"1"}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.Matrix("close"); err == nil {
		t.Fatal("expected error when all columns excluded")
	}
}
