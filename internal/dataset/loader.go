package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// LoadDir loads every .csv file in dir (non-recursive) into a Frame keyed by
// file name. A file that cannot be read or has no header is logged and skipped;
// a missing directory is an error.
func LoadDir(dir string, logger zerolog.Logger) (map[string]*Frame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data folder %s: %w", dir, err)
	}

	frames := make(map[string]*Frame)
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		frame, err := loadFile(path)
		if err != nil {
			logger.Warn().Err(err).Str("file", entry.Name()).Msg("skipping unreadable CSV file")
			continue
		}
		frames[entry.Name()] = frame

		logger.Debug().
			Str("file", entry.Name()).
			Int("rows", frame.Rows()).
			Int("columns", len(frame.Columns())).
			Msg("CSV file loaded")
	}

	logger.Info().
		Str("folder", dir).
		Int("datasets", len(frames)).
		Msg("data folder loaded")

	return frames, nil
}

func loadFile(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	frame := NewFrame(filepath.Base(path), header)
	for {
		record, err := reader.Read()
		if err != nil {
			break // EOF or malformed tail
		}
		if err := frame.AppendRow(record); err != nil {
			continue
		}
	}

	return frame, nil
}
