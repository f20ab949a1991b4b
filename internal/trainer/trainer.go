// Package trainer orchestrates the training pipeline: it loads every CSV
// dataset from the two configured folders, preprocesses each one, splits and
// scales its features, windows the target series, and fits the configured
// model. Datasets missing required columns are skipped; each fitted model is
// discarded at the end of its iteration.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/Dadudekc/LSTM-model-trainer/internal/cfg"
	"github.com/Dadudekc/LSTM-model-trainer/internal/dataset"
	"github.com/Dadudekc/LSTM-model-trainer/internal/history"
	"github.com/Dadudekc/LSTM-model-trainer/internal/metrics"
	"github.com/Dadudekc/LSTM-model-trainer/internal/model"
	"github.com/Dadudekc/LSTM-model-trainer/internal/scale"
	"github.com/Dadudekc/LSTM-model-trainer/internal/window"
)

const targetColumn = "close"

// Deps are the orchestrator's collaborators. Metrics and History are optional.
type Deps struct {
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
	History *history.Store
}

// Summary reports what one run did.
type Summary struct {
	Datasets int
	Trained  int
	Skipped  int
}

// Run executes the full pipeline over both configured data folders. Per-dataset
// skips never abort the run; an invalid model type or an unreadable data folder
// does.
func Run(ctx context.Context, settings cfg.Settings, deps Deps) (Summary, error) {
	logger := deps.Logger

	modelType, err := model.ParseType(settings.ModelType)
	if err != nil {
		return Summary{}, err
	}
	scalerType := scale.ParseType(settings.ScalerType)

	frames, err := loadFolders(settings, deps)
	if err != nil {
		return Summary{}, err
	}

	names := make([]string, 0, len(frames))
	for name := range frames {
		names = append(names, name)
	}
	sort.Strings(names)

	summary := Summary{Datasets: len(frames)}
	if deps.Metrics != nil {
		deps.Metrics.LastRunDatasets.Set(float64(len(frames)))
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		frame := frames[name]
		start := time.Now()

		if err := dataset.Preprocess(frame, logger); err != nil {
			if errors.Is(err, dataset.ErrNoTimestamp) {
				logger.Error().Str("dataset", name).Msg("no timestamp column, skipping dataset")
				skip(deps, frame, "no timestamp column", func(m *metrics.Metrics) { m.SkipsNoTimestamp.Inc() })
				summary.Skipped++
				continue
			}
			return summary, fmt.Errorf("preprocess %s: %w", name, err)
		}

		if !frame.Has(targetColumn) {
			logger.Error().Str("dataset", name).Msg("no close column, skipping dataset")
			skip(deps, frame, "no close column", func(m *metrics.Metrics) { m.SkipsNoTarget.Inc() })
			summary.Skipped++
			continue
		}

		X, features, err := frame.Matrix(targetColumn)
		if err != nil {
			logger.Error().Err(err).Str("dataset", name).Msg("cannot build feature matrix, skipping dataset")
			skip(deps, frame, err.Error(), func(m *metrics.Metrics) { m.SkipsTooShort.Inc() })
			summary.Skipped++
			continue
		}
		y := frame.Column(targetColumn)

		XTrain, _, yTrain, _, err := scale.SplitAndScale(X, y, settings.TestSize, scalerType, settings.Seed)
		if err != nil {
			logger.Error().Err(err).Str("dataset", name).Msg("split failed, skipping dataset")
			skip(deps, frame, err.Error(), func(m *metrics.Metrics) { m.SkipsTooShort.Inc() })
			summary.Skipped++
			continue
		}

		// Windowing indexes by position, so the training targets get a fresh
		// contiguous series.
		series := append([]float64(nil), yTrain...)
		windows, targets := window.Slide(series, settings.TimeSteps)
		if len(windows) == 0 {
			logger.Error().
				Str("dataset", name).
				Int("rows", len(series)).
				Int("time_steps", settings.TimeSteps).
				Msg("series shorter than window, skipping dataset")
			skip(deps, frame, "series shorter than window", func(m *metrics.Metrics) { m.SkipsTooShort.Inc() })
			summary.Skipped++
			continue
		}

		spec := model.Spec{
			Type:      modelType,
			Units:     settings.LSTMUnits,
			Epochs:    settings.Epochs,
			BatchSize: settings.BatchSize,
			Trees:     100,
			MinLeaf:   1,
			Seed:      settings.Seed,
		}

		trainLogger := logger.With().Str("dataset", name).Logger()
		var epochSink model.MetricsInterface
		if deps.Metrics != nil {
			epochSink = deps.Metrics
		}

		fitted, err := model.Train(spec, model.TrainingInput{
			X:       XTrain,
			Y:       yTrain,
			Windows: windows,
			Targets: targets,
		}, trainLogger, epochSink)
		if err != nil {
			return summary, fmt.Errorf("train %s: %w", name, err)
		}

		elapsed := time.Since(start)
		summary.Trained++
		if deps.Metrics != nil {
			deps.Metrics.DatasetsTrained.Inc()
			deps.Metrics.TrainingDuration.Observe(elapsed.Seconds())
		}
		if deps.History != nil {
			record(deps, history.Record{
				Dataset:   name,
				Rows:      frame.Rows(),
				Columns:   len(frame.Columns()),
				Windows:   len(windows),
				Duration:  elapsed,
				Timestamp: time.Now(),
			})
		}

		logger.Info().
			Str("dataset", name).
			Str("model", modelType.String()).
			Strs("features", features).
			Int("windows", len(windows)).
			Bool("fitted", fitted.Fitted()).
			Dur("duration", elapsed).
			Msg("dataset trained, model discarded")
	}

	logger.Info().
		Int("datasets", summary.Datasets).
		Int("trained", summary.Trained).
		Int("skipped", summary.Skipped).
		Msg("training run complete")

	return summary, nil
}

// loadFolders loads both data folders and merges them into one mapping keyed
// by file name. The folders load in configuration order, so a file in the
// second folder replaces a same-named file from the first.
func loadFolders(settings cfg.Settings, deps Deps) (map[string]*dataset.Frame, error) {
	logger := deps.Logger

	first, err := dataset.LoadDir(settings.DataFolder, logger)
	if err != nil {
		return nil, err
	}
	second, err := dataset.LoadDir(settings.SecondDataFolder, logger)
	if err != nil {
		return nil, err
	}

	if deps.Metrics != nil {
		deps.Metrics.CSVFilesLoaded.Add(float64(len(first) + len(second)))
	}

	merged := make(map[string]*dataset.Frame, len(first)+len(second))
	for name, frame := range first {
		merged[name] = frame
	}
	for name, frame := range second {
		if _, exists := merged[name]; exists {
			logger.Debug().Str("dataset", name).Msg("second folder overrides same-named dataset")
		}
		merged[name] = frame
	}

	if deps.Metrics != nil {
		deps.Metrics.DatasetsLoaded.Add(float64(len(merged)))
	}

	return merged, nil
}

func skip(deps Deps, frame *dataset.Frame, reason string, inc func(*metrics.Metrics)) {
	if deps.Metrics != nil {
		inc(deps.Metrics)
	}
	if deps.History != nil {
		record(deps, history.Record{
			Dataset:    frame.Name,
			Rows:       frame.Rows(),
			Columns:    len(frame.Columns()),
			SkipReason: reason,
			Timestamp:  time.Now(),
		})
	}
}

func record(deps Deps, rec history.Record) {
	if err := deps.History.Append(rec); err != nil {
		deps.Logger.Warn().Err(err).Str("dataset", rec.Dataset).Msg("failed to record run history")
	}
}
