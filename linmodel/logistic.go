package linmodel

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/statnotes/statnotes/core/model"
	"github.com/statnotes/statnotes/pkg/errors"
)

// LogisticRegression fits a binary logistic model by iteratively reweighted
// least squares (Newton's method).
type LogisticRegression struct {
	state *model.StateManager

	fitIntercept bool
	maxIter      int
	tol          float64

	coef      []float64
	intercept float64
	stdErr    []float64
	logLik    float64
	aic       float64
	nIter     int
	converged bool
}

// LogisticOption configures a LogisticRegression.
type LogisticOption func(*LogisticRegression)

// WithLogisticFitIntercept sets whether an intercept column is added.
func WithLogisticFitIntercept(fit bool) LogisticOption {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithLogisticMaxIter sets the Newton iteration limit.
func WithLogisticMaxIter(maxIter int) LogisticOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLogisticTol sets the convergence tolerance on the coefficient step.
func WithLogisticTol(tol float64) LogisticOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// NewLogisticRegression creates a logistic model with an intercept,
// 100 iterations and tolerance 1e-8.
func NewLogisticRegression(opts ...LogisticOption) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager(),
		fitIntercept: true,
		maxIter:      100,
		tol:          1e-8,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit estimates the coefficients from X (n×p) and binary y (n×1).
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	n, p, yd, err := checkXY("LogisticRegression.Fit", X, y)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if v := yd.At(i, 0); v != 0 && v != 1 {
			return errors.NewValueError("LogisticRegression.Fit", "labels must be 0 or 1")
		}
	}

	design, k := buildDesign(X, lr.fitIntercept)
	beta := make([]float64, k)

	lr.converged = false
	for iter := 0; iter < lr.maxIter; iter++ {
		lr.nIter = iter + 1

		// Working response and weights for the current iterate.
		w := make([]float64, n)
		z := make([]float64, n)
		for i := 0; i < n; i++ {
			eta := 0.0
			for j := 0; j < k; j++ {
				eta += design.At(i, j) * beta[j]
			}
			pi := sigmoid(eta)
			// Keep the weight bounded away from zero so the weighted
			// normal equations stay solvable under separation.
			wi := math.Max(pi*(1-pi), 1e-10)
			w[i] = wi
			z[i] = eta + (yd.At(i, 0)-pi)/wi
		}

		next, err := solveWeightedLS(design, w, z)
		if err != nil {
			return errors.NewModelError("LogisticRegression.Fit", "weighted least squares failed", err)
		}
		if err := errors.CheckNumericalStability("LogisticRegression.Fit", next, iter); err != nil {
			return err
		}

		maxDelta := 0.0
		for j := 0; j < k; j++ {
			if d := math.Abs(next[j] - beta[j]); d > maxDelta {
				maxDelta = d
			}
		}
		beta = next
		if maxDelta < lr.tol {
			lr.converged = true
			break
		}
	}
	if !lr.converged {
		errors.Warn(errors.NewConvergenceWarning("LogisticRegression", lr.nIter, ""))
	}

	// Log-likelihood at the fit.
	lr.logLik = 0
	for i := 0; i < n; i++ {
		eta := 0.0
		for j := 0; j < k; j++ {
			eta += design.At(i, j) * beta[j]
		}
		pi := errors.ClipValue(sigmoid(eta), 1e-15, 1-1e-15)
		if yd.At(i, 0) == 1 {
			lr.logLik += math.Log(pi)
		} else {
			lr.logLik += math.Log(1 - pi)
		}
	}
	lr.aic = -2*lr.logLik + 2*float64(k)

	lr.stdErr = logisticStdErr(design, beta)
	if lr.fitIntercept {
		lr.intercept = beta[0]
		lr.coef = beta[1:]
	} else {
		lr.intercept = 0
		lr.coef = beta
	}

	lr.state.SetDimensions(p, n)
	lr.state.SetFitted()
	return nil
}

// PredictProba returns P(y=1) as an n×1 matrix.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !lr.state.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticRegression", "PredictProba")
	}
	n, p := X.Dims()
	if nf, _ := lr.state.GetDimensions(); p != nf {
		return nil, errors.NewDimensionError("LogisticRegression.PredictProba", mustFeatures(lr.state), p, 1)
	}

	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		eta := lr.intercept
		for j := 0; j < p; j++ {
			eta += X.At(i, j) * lr.coef[j]
		}
		out.Set(i, 0, sigmoid(eta))
	}
	return out, nil
}

// Predict returns hard 0/1 labels at the 0.5 threshold.
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := lr.PredictProba(X)
	if err != nil {
		return nil, err
	}
	n, _ := proba.Dims()
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		if proba.At(i, 0) >= 0.5 {
			out.Set(i, 0, 1)
		}
	}
	return out, nil
}

// Score returns accuracy on the given data.
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	n, _ := y.Dims()
	correct := 0
	for i := 0; i < n; i++ {
		if pred.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// Classes returns the label set.
func (lr *LogisticRegression) Classes() []int { return []int{0, 1} }

// PredictProbaMatrix returns an n×2 matrix with P(y=0) and P(y=1) columns,
// matching the Classifier interface convention.
func (lr *LogisticRegression) PredictProbaMatrix(X mat.Matrix) (mat.Matrix, error) {
	proba, err := lr.PredictProba(X)
	if err != nil {
		return nil, err
	}
	n, _ := proba.Dims()
	out := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		p1 := proba.At(i, 0)
		out.Set(i, 0, 1-p1)
		out.Set(i, 1, p1)
	}
	return out, nil
}

// Coef returns the fitted slope coefficients.
func (lr *LogisticRegression) Coef() []float64 { return lr.coef }

// Intercept returns the fitted intercept.
func (lr *LogisticRegression) Intercept() float64 { return lr.intercept }

// StdErr returns coefficient standard errors from the observed information,
// intercept first when one was fitted.
func (lr *LogisticRegression) StdErr() []float64 { return lr.stdErr }

// LogLikelihood returns the log-likelihood at the fit.
func (lr *LogisticRegression) LogLikelihood() float64 { return lr.logLik }

// AIC returns -2·logLik + 2·k.
func (lr *LogisticRegression) AIC() float64 { return lr.aic }

// NIter returns the Newton iterations used.
func (lr *LogisticRegression) NIter() int { return lr.nIter }

// Converged reports whether the last Fit met its tolerance.
func (lr *LogisticRegression) Converged() bool { return lr.converged }

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// solveWeightedLS solves (X'WX) b = X'Wz for b.
func solveWeightedLS(design *mat.Dense, w, z []float64) ([]float64, error) {
	n, k := design.Dims()

	xtwx := mat.NewDense(k, k, nil)
	xtwz := mat.NewVecDense(k, nil)
	for a := 0; a < k; a++ {
		for b := a; b < k; b++ {
			var s float64
			for i := 0; i < n; i++ {
				s += design.At(i, a) * w[i] * design.At(i, b)
			}
			xtwx.Set(a, b, s)
			xtwx.Set(b, a, s)
		}
		var s float64
		for i := 0; i < n; i++ {
			s += design.At(i, a) * w[i] * z[i]
		}
		xtwz.SetVec(a, s)
	}

	var sol mat.VecDense
	if err := sol.SolveVec(xtwx, xtwz); err != nil {
		return nil, err
	}
	out := make([]float64, k)
	for j := 0; j < k; j++ {
		out[j] = sol.AtVec(j)
	}
	return out, nil
}

// logisticStdErr computes sqrt(diag((X'WX)^-1)) at the fitted coefficients.
func logisticStdErr(design *mat.Dense, beta []float64) []float64 {
	n, k := design.Dims()
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		eta := 0.0
		for j := 0; j < k; j++ {
			eta += design.At(i, j) * beta[j]
		}
		pi := sigmoid(eta)
		w[i] = pi * (1 - pi)
	}

	xtwx := mat.NewDense(k, k, nil)
	for a := 0; a < k; a++ {
		for b := a; b < k; b++ {
			var s float64
			for i := 0; i < n; i++ {
				s += design.At(i, a) * w[i] * design.At(i, b)
			}
			xtwx.Set(a, b, s)
			xtwx.Set(b, a, s)
		}
	}
	var inv mat.Dense
	if err := inv.Inverse(xtwx); err != nil {
		return nil
	}
	se := make([]float64, k)
	for j := 0; j < k; j++ {
		se[j] = math.Sqrt(inv.At(j, j))
	}
	return se
}
