// Package scale provides train/test partitioning and feature scaling for the
// training pipeline. Scalers follow the fit-on-train, transform-both contract:
// parameters are learned from the training partition only and never updated by
// a transform, so no test-set information leaks into them.
package scale

import "strings"

// Type enumerates the supported scaling transforms.
type Type int

const (
	Standard Type = iota
	Power
	MinMax
	Robust
	QuantileNormal
	QuantileUniform
	Normalizer
	MaxAbs
)

func (t Type) String() string {
	switch t {
	case Standard:
		return "standard"
	case Power:
		return "power"
	case MinMax:
		return "minmax"
	case Robust:
		return "robust"
	case QuantileNormal:
		return "quantile_normal"
	case QuantileUniform:
		return "quantile_uniform"
	case Normalizer:
		return "normalizer"
	case MaxAbs:
		return "maxabs"
	default:
		return "unknown"
	}
}

// ParseType maps a scaler name to its Type. Unrecognized names fall back to
// Standard; this is the deliberate pipeline default, not an error.
func ParseType(name string) Type {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "power", "yeo-johnson", "yeojohnson":
		return Power
	case "minmax", "min-max", "min_max":
		return MinMax
	case "robust":
		return Robust
	case "quantile_normal", "quantile-normal", "quantilenormal":
		return QuantileNormal
	case "quantile_uniform", "quantile-uniform", "quantileuniform", "quantile":
		return QuantileUniform
	case "normalizer", "norm":
		return Normalizer
	case "maxabs", "max-abs", "max_abs":
		return MaxAbs
	default:
		return Standard
	}
}
