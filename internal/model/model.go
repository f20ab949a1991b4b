// Package model implements the three regression model families the trainer
// dispatches over: ordinary least squares, a random forest, and a two-layer
// LSTM sequence model. Each family owns its hyperparameters; models follow a
// create-fit-discard lifecycle with no persistence.
package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

// ErrUnknownModel reports an unsupported model type name. Nothing is fitted
// when this is returned.
var ErrUnknownModel = errors.New("unknown model type")

// Type is the closed set of model families.
type Type int

const (
	LinearRegression Type = iota
	RandomForest
	LSTM
)

func (t Type) String() string {
	switch t {
	case LinearRegression:
		return "linear_regression"
	case RandomForest:
		return "random_forest"
	case LSTM:
		return "lstm"
	default:
		return "unknown"
	}
}

// ParseType maps a model name to its Type. Unlike scaler names, an
// unrecognized model type is an error, not a fallback.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linear_regression", "linear-regression", "linear":
		return LinearRegression, nil
	case "random_forest", "random-forest", "forest":
		return RandomForest, nil
	case "lstm":
		return LSTM, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
}

// Spec is a tagged model variant: the Type selects the family and the family
// reads only its own hyperparameters.
type Spec struct {
	Type Type

	// LSTM
	Units     int
	Epochs    int
	BatchSize int

	// Random forest
	Trees    int
	MaxDepth int
	MinLeaf  int

	Seed int64
}

// DefaultSpec returns a Spec with the pipeline defaults for the given family.
func DefaultSpec(t Type) Spec {
	return Spec{
		Type:      t,
		Units:     50,
		Epochs:    10,
		BatchSize: 32,
		Trees:     100,
		MaxDepth:  0, // unbounded
		MinLeaf:   1,
		Seed:      42,
	}
}

// Model is a fitted model. Prediction is family-specific: see the concrete
// types' Predict methods.
type Model interface {
	Kind() Type
	Fitted() bool
}

// MetricsInterface defines the metrics hooks the trainers report into.
type MetricsInterface interface {
	EpochLossObserve(float64)
}

// TrainingInput carries the data for a training run. Tabular families read
// X/Y; the sequence family reads Windows/Targets.
type TrainingInput struct {
	X *mat.Dense
	Y []float64

	Windows [][][]float64
	Targets []float64
}

// Train fits the model family selected by spec.Type. Exactly one branch
// executes; an unknown type fails with ErrUnknownModel and fits nothing.
func Train(spec Spec, in TrainingInput, logger zerolog.Logger, metrics MetricsInterface) (Model, error) {
	switch spec.Type {
	case LinearRegression:
		return trainOLS(in.X, in.Y)
	case RandomForest:
		return trainForest(spec, in.X, in.Y)
	case LSTM:
		return trainLSTM(spec, in.Windows, in.Targets, logger, metrics)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownModel, int(spec.Type))
	}
}
