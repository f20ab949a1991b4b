package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// OLSModel is an ordinary least squares fit with an intercept term.
type OLSModel struct {
	weights   []float64
	intercept float64
	fitted    bool
}

func (m *OLSModel) Kind() Type   { return LinearRegression }
func (m *OLSModel) Fitted() bool { return m.fitted }

// Coefficients returns the fitted feature weights and intercept.
func (m *OLSModel) Coefficients() ([]float64, float64) {
	return append([]float64(nil), m.weights...), m.intercept
}

func trainOLS(X *mat.Dense, y []float64) (*OLSModel, error) {
	if X == nil {
		return nil, fmt.Errorf("linear regression: nil feature matrix")
	}
	r, c := X.Dims()
	if r != len(y) {
		return nil, fmt.Errorf("linear regression: X has %d rows, y has %d", r, len(y))
	}
	if r < c+1 {
		return nil, fmt.Errorf("linear regression: %d rows cannot determine %d coefficients", r, c+1)
	}

	// Augment with a ones column for the intercept.
	A := mat.NewDense(r, c+1, nil)
	for i := 0; i < r; i++ {
		A.Set(i, 0, 1)
		for j := 0; j < c; j++ {
			A.Set(i, j+1, X.At(i, j))
		}
	}
	b := mat.NewVecDense(r, append([]float64(nil), y...))

	var coef mat.VecDense
	if err := coef.SolveVec(A, b); err != nil {
		return nil, fmt.Errorf("linear regression solve failed: %w", err)
	}

	weights := make([]float64, c)
	for j := 0; j < c; j++ {
		weights[j] = coef.AtVec(j + 1)
	}

	return &OLSModel{
		weights:   weights,
		intercept: coef.AtVec(0),
		fitted:    true,
	}, nil
}

// Predict returns the fitted linear response for each row of X.
func (m *OLSModel) Predict(X *mat.Dense) ([]float64, error) {
	if !m.fitted {
		return nil, fmt.Errorf("linear regression: model is not fitted")
	}
	r, c := X.Dims()
	if c != len(m.weights) {
		return nil, fmt.Errorf("linear regression: fitted on %d features, got %d", len(m.weights), c)
	}
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		v := m.intercept
		for j := 0; j < c; j++ {
			v += m.weights[j] * X.At(i, j)
		}
		out[i] = v
	}
	return out, nil
}
