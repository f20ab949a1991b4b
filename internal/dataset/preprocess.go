package dataset

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrNoTimestamp reports a frame without any timestamp-like column. The frame
// is left untouched when this is returned.
var ErrNoTimestamp = errors.New("no timestamp column found")

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006",
}

// Preprocess normalizes a frame in place: it parses the timestamp column, drops
// rows whose timestamp cannot be parsed, forward-fills missing numeric values,
// and rewrites the timestamp column as elapsed seconds since the earliest
// timestamp (so its minimum is exactly 0).
//
// Leading missing values have no prior row to fill from and are left as NaN;
// they are counted and logged as a data-quality warning for the caller.
func Preprocess(f *Frame, logger zerolog.Logger) error {
	tsCol := timestampColumn(f)
	if tsCol == "" {
		return ErrNoTimestamp
	}

	raw := f.Raw(tsCol)
	times := make([]time.Time, len(raw))
	keep := make([]bool, len(raw))
	dropped := 0
	for i, cell := range raw {
		t, ok := parseTimestamp(cell)
		if !ok {
			dropped++
			continue
		}
		times[i] = t
		keep[i] = true
	}

	if dropped > 0 {
		kept := times[:0]
		for i, t := range times {
			if keep[i] {
				kept = append(kept, t)
			}
		}
		times = kept
		f.keepRows(keep)
		logger.Debug().
			Str("dataset", f.Name).
			Int("dropped_rows", dropped).
			Msg("dropped rows with unparseable timestamps")
	}

	leading := 0
	for _, c := range f.Columns() {
		if c == tsCol {
			continue
		}
		vals := f.Column(c)
		for i, v := range vals {
			if !math.IsNaN(v) {
				continue
			}
			if i == 0 {
				leading++
				continue
			}
			vals[i] = vals[i-1]
		}
	}
	if leading > 0 {
		logger.Warn().
			Str("dataset", f.Name).
			Int("columns", leading).
			Msg("leading missing values cannot be forward-filled")
	}

	if len(times) > 0 {
		min := times[0]
		for _, t := range times[1:] {
			if t.Before(min) {
				min = t
			}
		}
		elapsed := make([]float64, len(times))
		for i, t := range times {
			elapsed[i] = t.Sub(min).Seconds()
		}
		if err := f.SetColumn(tsCol, elapsed); err != nil {
			return err
		}
	}

	return nil
}

// timestampColumn returns the name of the first timestamp-like column, or "".
func timestampColumn(f *Frame) string {
	exact := map[string]bool{"date": true, "time": true, "timestamp": true, "datetime": true}
	for _, c := range f.Columns() {
		if exact[strings.ToLower(c)] {
			return c
		}
	}
	for _, c := range f.Columns() {
		lc := strings.ToLower(c)
		if strings.Contains(lc, "date") || strings.Contains(lc, "time") {
			return c
		}
	}
	return ""
}

func parseTimestamp(cell string) (time.Time, bool) {
	if cell == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, true
		}
	}
	// Unix epoch seconds, possibly fractional.
	if secs, err := strconv.ParseFloat(cell, 64); err == nil {
		sec, frac := math.Modf(secs)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
	}
	return time.Time{}, false
}
