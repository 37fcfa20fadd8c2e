package modelselection

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/statnotes/statnotes/pkg/errors"
)

// Estimator is anything that can be fitted to data and score itself.
type Estimator interface {
	Fit(X, y mat.Matrix) error
	Score(X, y mat.Matrix) (float64, error)
}

// CVResult stores per-fold scores from one cross-validation run.
type CVResult struct {
	TrainScores []float64
	TestScores  []float64
}

// MeanTestScore returns the mean held-out score across folds.
func (r *CVResult) MeanTestScore() float64 {
	return stat.Mean(r.TestScores, nil)
}

// StdTestScore returns the sample standard deviation of the held-out scores.
func (r *CVResult) StdTestScore() float64 {
	if len(r.TestScores) < 2 {
		return 0
	}
	return stat.StdDev(r.TestScores, nil)
}

// CrossValScore cross-validates the estimators produced by newEstimator.
// A fresh estimator is fitted per fold so no state leaks between folds.
func CrossValScore(newEstimator func() Estimator, X, y mat.Matrix, splitter Splitter) (*CVResult, error) {
	if newEstimator == nil {
		return nil, errors.NewValueError("modelselection.CrossValScore", "nil estimator factory")
	}
	if X == nil || y == nil {
		return nil, errors.NewValueError("modelselection.CrossValScore", "nil input")
	}
	if splitter == nil {
		splitter = NewKFold(5, true, 0)
	}
	n, _ := X.Dims()
	if n < splitter.NumSplits() {
		return nil, errors.NewValueError("modelselection.CrossValScore", "more folds than samples")
	}

	folds := splitter.Split(X, y)
	res := &CVResult{
		TrainScores: make([]float64, len(folds)),
		TestScores:  make([]float64, len(folds)),
	}
	for i, fold := range folds {
		trX, trY := extractRows(X, y, fold.TrainIndices)
		teX, teY := extractRows(X, y, fold.TestIndices)

		est := newEstimator()
		if err := est.Fit(trX, trY); err != nil {
			return nil, errors.Wrapf(err, "fold %d fit failed", i)
		}
		trainScore, err := est.Score(trX, trY)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d train score failed", i)
		}
		testScore, err := est.Score(teX, teY)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d test score failed", i)
		}
		res.TrainScores[i] = trainScore
		res.TestScores[i] = testScore
	}
	return res, nil
}
