// Package linmodel implements the regression models the posts fit directly:
// ordinary least squares and logistic regression. Both expose coefficient
// standard errors, the log-likelihood and AIC, which the stepwise-selection
// essay leans on.
package linmodel

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/statnotes/statnotes/core/model"
	"github.com/statnotes/statnotes/pkg/errors"
)

// LinearRegression fits ordinary least squares via QR decomposition.
type LinearRegression struct {
	state        *model.StateManager
	fitIntercept bool

	coef      []float64
	intercept float64
	stdErr    []float64 // aligned with design columns (intercept first when fitted)
	sigma2    float64
	logLik    float64
	aic       float64
	nParams   int
}

// LinearOption configures a LinearRegression.
type LinearOption func(*LinearRegression)

// WithLinearFitIntercept sets whether an intercept column is added.
func WithLinearFitIntercept(fit bool) LinearOption {
	return func(lr *LinearRegression) {
		lr.fitIntercept = fit
	}
}

// NewLinearRegression creates an OLS model with an intercept.
func NewLinearRegression(opts ...LinearOption) *LinearRegression {
	lr := &LinearRegression{
		state:        model.NewStateManager(),
		fitIntercept: true,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit estimates the coefficients from X (n×p) and y (n×1).
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	n, p, yVec, err := checkXY("LinearRegression.Fit", X, y)
	if err != nil {
		return err
	}

	design, k := buildDesign(X, lr.fitIntercept)
	if n <= k {
		return errors.NewValueError("LinearRegression.Fit", "need more rows than parameters")
	}

	var qr mat.QR
	qr.Factorize(design)
	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, yVec); err != nil {
		return errors.NewModelError("LinearRegression.Fit", "singular design matrix", err)
	}

	coefs := make([]float64, k)
	for j := 0; j < k; j++ {
		coefs[j] = beta.At(j, 0)
	}
	if err := errors.CheckNumericalStability("LinearRegression.Fit", coefs, -1); err != nil {
		return err
	}

	// Residual variance and the Gaussian log-likelihood.
	var rss float64
	for i := 0; i < n; i++ {
		fit := 0.0
		for j := 0; j < k; j++ {
			fit += design.At(i, j) * coefs[j]
		}
		r := yVec.At(i, 0) - fit
		rss += r * r
	}
	nf := float64(n)
	lr.sigma2 = rss / nf
	lr.logLik = -0.5 * nf * (math.Log(2*math.Pi) + math.Log(lr.sigma2) + 1)
	lr.nParams = k + 1 // coefficients plus the error variance
	lr.aic = -2*lr.logLik + 2*float64(lr.nParams)

	lr.stdErr = coefficientStdErr(design, rss/float64(n-k))

	if lr.fitIntercept {
		lr.intercept = coefs[0]
		lr.coef = coefs[1:]
	} else {
		lr.intercept = 0
		lr.coef = coefs
	}

	lr.state.SetDimensions(p, n)
	lr.state.SetFitted()
	return nil
}

// Predict returns fitted values as an n×1 matrix.
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.state.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}
	n, p := X.Dims()
	if nf, _ := lr.state.GetDimensions(); p != nf {
		return nil, errors.NewDimensionError("LinearRegression.Predict", mustFeatures(lr.state), p, 1)
	}

	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		v := lr.intercept
		for j := 0; j < p; j++ {
			v += X.At(i, j) * lr.coef[j]
		}
		out.Set(i, 0, v)
	}
	return out, nil
}

// Score returns R² on the given data.
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	n, _ := y.Dims()
	yv := mat.NewVecDense(n, nil)
	pv := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		yv.SetVec(i, y.At(i, 0))
		pv.SetVec(i, pred.At(i, 0))
	}
	return r2(yv, pv)
}

// Coef returns the fitted slope coefficients.
func (lr *LinearRegression) Coef() []float64 { return lr.coef }

// Intercept returns the fitted intercept.
func (lr *LinearRegression) Intercept() float64 { return lr.intercept }

// StdErr returns the coefficient standard errors, intercept first when one
// was fitted.
func (lr *LinearRegression) StdErr() []float64 { return lr.stdErr }

// LogLikelihood returns the Gaussian log-likelihood at the fit.
func (lr *LinearRegression) LogLikelihood() float64 { return lr.logLik }

// AIC returns -2·logLik + 2·k, counting the error variance as a parameter.
func (lr *LinearRegression) AIC() float64 { return lr.aic }

func r2(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	var mean float64
	for i := 0; i < n; i++ {
		mean += yTrue.AtVec(i)
	}
	mean /= float64(n)
	var tss, rss float64
	for i := 0; i < n; i++ {
		tss += (yTrue.AtVec(i) - mean) * (yTrue.AtVec(i) - mean)
		rss += (yTrue.AtVec(i) - yPred.AtVec(i)) * (yTrue.AtVec(i) - yPred.AtVec(i))
	}
	if tss == 0 {
		return 0, errors.Newf("Score: no variance in y")
	}
	return 1 - rss/tss, nil
}

// buildDesign copies X into a dense matrix, prepending a ones column when
// intercept is requested. Returns the design and its column count.
func buildDesign(X mat.Matrix, intercept bool) (*mat.Dense, int) {
	n, p := X.Dims()
	k := p
	offset := 0
	if intercept {
		k++
		offset = 1
	}
	design := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		if intercept {
			design.Set(i, 0, 1)
		}
		for j := 0; j < p; j++ {
			design.Set(i, offset+j, X.At(i, j))
		}
	}
	return design, k
}

// coefficientStdErr computes sqrt(diag(sigma2 (X'X)^-1)). Returns nil when
// the cross-product matrix is singular.
func coefficientStdErr(design *mat.Dense, sigma2 float64) []float64 {
	_, k := design.Dims()
	var xtx mat.Dense
	xtx.Mul(design.T(), design)
	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return nil
	}
	se := make([]float64, k)
	for j := 0; j < k; j++ {
		se[j] = math.Sqrt(sigma2 * inv.At(j, j))
	}
	return se
}

func checkXY(op string, X, y mat.Matrix) (n, p int, yd *mat.Dense, err error) {
	if X == nil || y == nil {
		return 0, 0, nil, errors.NewValueError(op, "nil input")
	}
	n, p = X.Dims()
	if n == 0 || p == 0 {
		return 0, 0, nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	yr, yc := y.Dims()
	if yr != n {
		return 0, 0, nil, errors.NewDimensionError(op, n, yr, 0)
	}
	if yc < 1 {
		return 0, 0, nil, errors.NewValueError(op, "y must have at least one column")
	}
	yd = mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		yd.Set(i, 0, y.At(i, 0))
	}
	return n, p, yd, nil
}

func mustFeatures(s *model.StateManager) int {
	nf, _ := s.GetDimensions()
	return nf
}
