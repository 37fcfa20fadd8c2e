package stepwise

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/statnotes/statnotes/linmodel"
	"github.com/statnotes/statnotes/pkg/errors"
	"github.com/statnotes/statnotes/survival"
)

// LinearAIC fits ordinary least squares with an intercept on each candidate
// subset. The empty subset is the intercept-only model.
type LinearAIC struct{}

// FitAIC implements Fitter.
func (LinearAIC) FitAIC(X, y mat.Matrix, cols []int) (float64, error) {
	sub, err := SubsetColumns(X, cols)
	if err != nil {
		return 0, err
	}
	if sub == nil {
		return interceptOnlyGaussianAIC(y)
	}
	lr := linmodel.NewLinearRegression()
	if err := lr.Fit(sub, y); err != nil {
		return 0, err
	}
	return lr.AIC(), nil
}

// interceptOnlyGaussianAIC matches LinearRegression's AIC convention: the
// Gaussian log-likelihood at the MLE variance, with the variance counted as
// a parameter.
func interceptOnlyGaussianAIC(y mat.Matrix) (float64, error) {
	n, _ := y.Dims()
	if n == 0 {
		return 0, errors.NewModelError("stepwise.LinearAIC", "empty response", errors.ErrEmptyData)
	}
	var mean float64
	for i := 0; i < n; i++ {
		mean += y.At(i, 0)
	}
	mean /= float64(n)

	var rss float64
	for i := 0; i < n; i++ {
		d := y.At(i, 0) - mean
		rss += d * d
	}
	sigma2 := rss / float64(n)
	if sigma2 <= 0 {
		sigma2 = math.SmallestNonzeroFloat64
	}
	ll := -0.5 * float64(n) * (math.Log(2*math.Pi*sigma2) + 1)
	return -2*ll + 2*2, nil
}

// LogisticAIC fits logistic regression with an intercept on each candidate
// subset.
type LogisticAIC struct {
	// MaxIter overrides the IRLS iteration limit when positive.
	MaxIter int
}

// FitAIC implements Fitter.
func (a LogisticAIC) FitAIC(X, y mat.Matrix, cols []int) (float64, error) {
	sub, err := SubsetColumns(X, cols)
	if err != nil {
		return 0, err
	}
	if sub == nil {
		return interceptOnlyBinomialAIC(y)
	}
	var opts []linmodel.LogisticOption
	if a.MaxIter > 0 {
		opts = append(opts, linmodel.WithLogisticMaxIter(a.MaxIter))
	}
	lr := linmodel.NewLogisticRegression(opts...)
	if err := lr.Fit(sub, y); err != nil {
		return 0, err
	}
	return lr.AIC(), nil
}

func interceptOnlyBinomialAIC(y mat.Matrix) (float64, error) {
	n, _ := y.Dims()
	if n == 0 {
		return 0, errors.NewModelError("stepwise.LogisticAIC", "empty response", errors.ErrEmptyData)
	}
	var ones float64
	for i := 0; i < n; i++ {
		switch y.At(i, 0) {
		case 0:
		case 1:
			ones++
		default:
			return 0, errors.NewValueError("stepwise.LogisticAIC", "labels must be 0 or 1")
		}
	}
	p := ones / float64(n)
	var ll float64
	if p > 0 {
		ll += ones * math.Log(p)
	}
	if p < 1 {
		ll += (float64(n) - ones) * math.Log(1-p)
	}
	return -2*ll + 2, nil
}

// CoxAIC fits a Cox proportional-hazards model on each candidate subset.
// The empty subset is the no-covariate model, whose AIC is just minus twice
// the null partial log-likelihood.
type CoxAIC struct {
	// MaxIter overrides the Newton iteration limit when positive.
	MaxIter int
}

// FitAIC implements Fitter.
func (a CoxAIC) FitAIC(X, y mat.Matrix, cols []int) (float64, error) {
	sub, err := SubsetColumns(X, cols)
	if err != nil {
		return 0, err
	}
	if sub == nil {
		ll, err := survival.NullLogLikelihood(y)
		if err != nil {
			return 0, err
		}
		return -2 * ll, nil
	}
	var opts []survival.CoxOption
	if a.MaxIter > 0 {
		opts = append(opts, survival.WithCoxMaxIter(a.MaxIter))
	}
	cph := survival.NewCoxPH(opts...)
	if err := cph.Fit(sub, y); err != nil {
		return 0, err
	}
	return cph.AIC(), nil
}
