package scale

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Split partitions X and y into train and test sets. The shuffle is seeded so
// a given seed always produces the same partition, and X/y rows move together.
func Split(X *mat.Dense, y []float64, testSize float64, seed int64) (XTrain, XTest *mat.Dense, yTrain, yTest []float64, err error) {
	r, c := X.Dims()
	if r != len(y) {
		return nil, nil, nil, nil, fmt.Errorf("X has %d rows, y has %d", r, len(y))
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, nil, nil, fmt.Errorf("test size must be in (0,1), got %f", testSize)
	}

	trainLen := int(math.Round(float64(r) * (1 - testSize)))
	if trainLen < 1 || trainLen >= r {
		return nil, nil, nil, nil, fmt.Errorf("cannot split %d rows with test size %f", r, testSize)
	}
	testLen := r - trainLen

	rnd := rand.New(rand.NewSource(seed))
	perm := rnd.Perm(r)

	XTrain = mat.NewDense(trainLen, c, nil)
	XTest = mat.NewDense(testLen, c, nil)
	yTrain = make([]float64, trainLen)
	yTest = make([]float64, testLen)

	for i, idx := range perm {
		if i < trainLen {
			XTrain.SetRow(i, X.RawRowView(idx))
			yTrain[i] = y[idx]
		} else {
			XTest.SetRow(i-trainLen, X.RawRowView(idx))
			yTest[i-trainLen] = y[idx]
		}
	}

	return XTrain, XTest, yTrain, yTest, nil
}

// SplitAndScale splits X/y, fits the selected scaler on the training features
// only, and transforms both partitions with the fitted parameters. Targets are
// never scaled.
func SplitAndScale(X *mat.Dense, y []float64, testSize float64, typ Type, seed int64) (XTrainScaled, XTestScaled *mat.Dense, yTrain, yTest []float64, err error) {
	XTrain, XTest, yTrain, yTest, err := Split(X, y, testSize, seed)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	scaler := New(typ)
	if err := scaler.Fit(XTrain); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("scaler fit failed: %w", err)
	}
	XTrainScaled, err = scaler.Transform(XTrain)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("train transform failed: %w", err)
	}
	XTestScaled, err = scaler.Transform(XTest)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("test transform failed: %w", err)
	}

	return XTrainScaled, XTestScaled, yTrain, yTest, nil
}
