package scale

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Scaler is a numeric transform fit on training features and applied without
// refitting to test features.
type Scaler interface {
	Fit(X *mat.Dense) error
	Transform(X *mat.Dense) (*mat.Dense, error)
}

// New returns a fresh, unfitted scaler for the given type.
func New(t Type) Scaler {
	switch t {
	case Power:
		return &powerScaler{}
	case MinMax:
		return &minMaxScaler{}
	case Robust:
		return &robustScaler{}
	case QuantileNormal:
		return &quantileScaler{normal: true}
	case QuantileUniform:
		return &quantileScaler{}
	case Normalizer:
		return &normalizer{}
	case MaxAbs:
		return &maxAbsScaler{}
	default:
		return &standardScaler{}
	}
}

func checkFitted(fitted bool, cols, xCols int) error {
	if !fitted {
		return fmt.Errorf("scaler is not fitted")
	}
	if cols != xCols {
		return fmt.Errorf("scaler fitted on %d columns, got %d", cols, xCols)
	}
	return nil
}

// columnStats computes the per-column mean and population standard deviation.
func columnStats(X *mat.Dense) (means, stds []float64) {
	r, c := X.Dims()
	means = make([]float64, c)
	stds = make([]float64, c)
	for j := 0; j < c; j++ {
		var sum float64
		for i := 0; i < r; i++ {
			sum += X.At(i, j)
		}
		mean := sum / float64(r)
		var sq float64
		for i := 0; i < r; i++ {
			d := X.At(i, j) - mean
			sq += d * d
		}
		means[j] = mean
		stds[j] = math.Sqrt(sq / float64(r))
	}
	return means, stds
}

type standardScaler struct {
	means, stds []float64
	fitted      bool
}

func (s *standardScaler) Fit(X *mat.Dense) error {
	s.means, s.stds = columnStats(X)
	s.fitted = true
	return nil
}

func (s *standardScaler) Transform(X *mat.Dense) (*mat.Dense, error) {
	r, c := X.Dims()
	if err := checkFitted(s.fitted, len(s.means), c); err != nil {
		return nil, err
	}
	out := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		div := s.stds[j]
		if div == 0 {
			div = 1
		}
		for i := 0; i < r; i++ {
			out.Set(i, j, (X.At(i, j)-s.means[j])/div)
		}
	}
	return out, nil
}

type minMaxScaler struct {
	mins, maxs []float64
	fitted     bool
}

func (s *minMaxScaler) Fit(X *mat.Dense) error {
	r, c := X.Dims()
	s.mins = make([]float64, c)
	s.maxs = make([]float64, c)
	for j := 0; j < c; j++ {
		min, max := X.At(0, j), X.At(0, j)
		for i := 1; i < r; i++ {
			v := X.At(i, j)
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		s.mins[j] = min
		s.maxs[j] = max
	}
	s.fitted = true
	return nil
}

func (s *minMaxScaler) Transform(X *mat.Dense) (*mat.Dense, error) {
	r, c := X.Dims()
	if err := checkFitted(s.fitted, len(s.mins), c); err != nil {
		return nil, err
	}
	out := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		span := s.maxs[j] - s.mins[j]
		if span == 0 {
			span = 1
		}
		for i := 0; i < r; i++ {
			out.Set(i, j, (X.At(i, j)-s.mins[j])/span)
		}
	}
	return out, nil
}

type maxAbsScaler struct {
	scales []float64
	fitted bool
}

func (s *maxAbsScaler) Fit(X *mat.Dense) error {
	r, c := X.Dims()
	s.scales = make([]float64, c)
	for j := 0; j < c; j++ {
		var max float64
		for i := 0; i < r; i++ {
			if a := math.Abs(X.At(i, j)); a > max {
				max = a
			}
		}
		if max == 0 {
			max = 1
		}
		s.scales[j] = max
	}
	s.fitted = true
	return nil
}

func (s *maxAbsScaler) Transform(X *mat.Dense) (*mat.Dense, error) {
	r, c := X.Dims()
	if err := checkFitted(s.fitted, len(s.scales), c); err != nil {
		return nil, err
	}
	out := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			out.Set(i, j, X.At(i, j)/s.scales[j])
		}
	}
	return out, nil
}

type robustScaler struct {
	medians, iqrs []float64
	fitted        bool
}

func (s *robustScaler) Fit(X *mat.Dense) error {
	r, c := X.Dims()
	s.medians = make([]float64, c)
	s.iqrs = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		sorted := append([]float64(nil), col...)
		sort.Float64s(sorted)
		s.medians[j] = quantileSorted(sorted, 0.5)
		iqr := quantileSorted(sorted, 0.75) - quantileSorted(sorted, 0.25)
		if iqr == 0 {
			iqr = 1
		}
		s.iqrs[j] = iqr
	}
	s.fitted = true
	return nil
}

func (s *robustScaler) Transform(X *mat.Dense) (*mat.Dense, error) {
	r, c := X.Dims()
	if err := checkFitted(s.fitted, len(s.medians), c); err != nil {
		return nil, err
	}
	out := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			out.Set(i, j, (X.At(i, j)-s.medians[j])/s.iqrs[j])
		}
	}
	return out, nil
}

// quantileSorted linearly interpolates the q-th quantile of a sorted slice.
func quantileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

type quantileScaler struct {
	normal bool
	refs   [][]float64 // sorted training column values
	fitted bool
}

func (s *quantileScaler) Fit(X *mat.Dense) error {
	r, c := X.Dims()
	s.refs = make([][]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		sorted := append([]float64(nil), col...)
		sort.Float64s(sorted)
		s.refs[j] = sorted
	}
	s.fitted = true
	return nil
}

func (s *quantileScaler) Transform(X *mat.Dense) (*mat.Dense, error) {
	r, c := X.Dims()
	if err := checkFitted(s.fitted, len(s.refs), c); err != nil {
		return nil, err
	}
	norm := distuv.UnitNormal
	out := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			u := empiricalCDF(s.refs[j], X.At(i, j))
			if s.normal {
				// Clamp away from 0 and 1 so the probit stays finite.
				u = math.Min(math.Max(u, 1e-7), 1-1e-7)
				out.Set(i, j, norm.Quantile(u))
			} else {
				out.Set(i, j, u)
			}
		}
	}
	return out, nil
}

// empiricalCDF maps v onto [0,1] by linear interpolation over the sorted
// training values; values outside the training range are clamped.
func empiricalCDF(sorted []float64, v float64) float64 {
	n := len(sorted)
	if n == 1 {
		return 0.5
	}
	if v <= sorted[0] {
		return 0
	}
	if v >= sorted[n-1] {
		return 1
	}
	i := sort.SearchFloat64s(sorted, v)
	lo, hi := sorted[i-1], sorted[i]
	t := 0.0
	if hi > lo {
		t = (v - lo) / (hi - lo)
	}
	return (float64(i-1) + t) / float64(n-1)
}

// normalizer scales each row to unit L2 norm. It is stateless: Fit records
// only the column count.
type normalizer struct {
	cols   int
	fitted bool
}

func (s *normalizer) Fit(X *mat.Dense) error {
	_, c := X.Dims()
	s.cols = c
	s.fitted = true
	return nil
}

func (s *normalizer) Transform(X *mat.Dense) (*mat.Dense, error) {
	r, c := X.Dims()
	if err := checkFitted(s.fitted, s.cols, c); err != nil {
		return nil, err
	}
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		var sq float64
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			sq += v * v
		}
		norm := math.Sqrt(sq)
		if norm == 0 {
			norm = 1
		}
		for j := 0; j < c; j++ {
			out.Set(i, j, X.At(i, j)/norm)
		}
	}
	return out, nil
}

// powerScaler applies a per-column Yeo-Johnson transform with lambda chosen
// from a fixed grid by training log-likelihood, then standardizes.
type powerScaler struct {
	lambdas     []float64
	means, stds []float64
	fitted      bool
}

var lambdaGrid = []float64{-2, -1.5, -1, -0.5, 0, 0.5, 1, 1.5, 2}

func (s *powerScaler) Fit(X *mat.Dense) error {
	r, c := X.Dims()
	s.lambdas = make([]float64, c)
	s.means = make([]float64, c)
	s.stds = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		best, bestLL := 1.0, math.Inf(-1)
		for _, lam := range lambdaGrid {
			if ll := yeoJohnsonLogLikelihood(col, lam); ll > bestLL {
				best, bestLL = lam, ll
			}
		}
		s.lambdas[j] = best

		transformed := make([]float64, r)
		for i, v := range col {
			transformed[i] = yeoJohnson(v, best)
		}
		mean, std := meanStd(transformed)
		if std == 0 {
			std = 1
		}
		s.means[j] = mean
		s.stds[j] = std
	}
	s.fitted = true
	return nil
}

func (s *powerScaler) Transform(X *mat.Dense) (*mat.Dense, error) {
	r, c := X.Dims()
	if err := checkFitted(s.fitted, len(s.lambdas), c); err != nil {
		return nil, err
	}
	out := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			v := yeoJohnson(X.At(i, j), s.lambdas[j])
			out.Set(i, j, (v-s.means[j])/s.stds[j])
		}
	}
	return out, nil
}

func yeoJohnson(x, lambda float64) float64 {
	switch {
	case x >= 0 && lambda != 0:
		return (math.Pow(x+1, lambda) - 1) / lambda
	case x >= 0:
		return math.Log1p(x)
	case lambda != 2:
		return -(math.Pow(-x+1, 2-lambda) - 1) / (2 - lambda)
	default:
		return -math.Log1p(-x)
	}
}

func yeoJohnsonLogLikelihood(col []float64, lambda float64) float64 {
	n := float64(len(col))
	transformed := make([]float64, len(col))
	for i, v := range col {
		transformed[i] = yeoJohnson(v, lambda)
	}
	_, std := meanStd(transformed)
	if std == 0 {
		return math.Inf(-1)
	}
	ll := -n / 2 * math.Log(std*std)
	for _, v := range col {
		if v >= 0 {
			ll += (lambda - 1) * math.Log1p(v)
		} else {
			ll += (1 - lambda) * math.Log1p(-v)
		}
	}
	return ll
}

func meanStd(vals []float64) (mean, std float64) {
	n := float64(len(vals))
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean = sum / n
	var sq float64
	for _, v := range vals {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / n)
}
