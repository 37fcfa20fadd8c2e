// Package survival implements Cox proportional-hazards regression for
// right-censored data. The multi-part essay on stepwise selection and
// validation fits these models throughout; concordance scoring lives in the
// metrics package and is surfaced here as the model's Score.
package survival

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/statnotes/statnotes/core/model"
	"github.com/statnotes/statnotes/metrics"
	"github.com/statnotes/statnotes/pkg/errors"
)

// CoxPH is a Cox proportional-hazards model fitted by Newton-Raphson on the
// Breslow partial likelihood.
type CoxPH struct {
	state *model.StateManager

	maxIter int
	tol     float64

	coef      []float64
	stdErr    []float64
	logLik    float64
	aic       float64
	nIter     int
	converged bool
	nEvents   int
}

// CoxOption configures a CoxPH model.
type CoxOption func(*CoxPH)

// WithCoxMaxIter sets the Newton iteration limit.
func WithCoxMaxIter(maxIter int) CoxOption {
	return func(c *CoxPH) { c.maxIter = maxIter }
}

// WithCoxTol sets the convergence tolerance on the coefficient step.
func WithCoxTol(tol float64) CoxOption {
	return func(c *CoxPH) { c.tol = tol }
}

// NewCoxPH creates a Cox model with 50 iterations and tolerance 1e-9.
func NewCoxPH(opts ...CoxOption) *CoxPH {
	c := &CoxPH{
		state:   model.NewStateManager(),
		maxIter: 50,
		tol:     1e-9,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SurvMatrix packs follow-up times and event indicators into the n×2
// response matrix CoxPH.Fit expects.
func SurvMatrix(times []float64, events []bool) (*mat.Dense, error) {
	if len(times) == 0 {
		return nil, errors.NewValueError("survival.SurvMatrix", "empty input")
	}
	if len(events) != len(times) {
		return nil, errors.NewDimensionError("survival.SurvMatrix", len(times), len(events), 0)
	}
	y := mat.NewDense(len(times), 2, nil)
	for i, t := range times {
		y.Set(i, 0, t)
		if events[i] {
			y.Set(i, 1, 1)
		}
	}
	return y, nil
}

// SplitSurv unpacks an n×2 response matrix into times and event indicators.
func SplitSurv(y mat.Matrix) ([]float64, []bool, error) {
	if y == nil {
		return nil, nil, errors.NewValueError("survival.SplitSurv", "nil response")
	}
	n, c := y.Dims()
	if c < 2 {
		return nil, nil, errors.NewValueError("survival.SplitSurv", "response needs time and event columns")
	}
	times := make([]float64, n)
	events := make([]bool, n)
	for i := 0; i < n; i++ {
		times[i] = y.At(i, 0)
		switch y.At(i, 1) {
		case 0:
			events[i] = false
		case 1:
			events[i] = true
		default:
			return nil, nil, errors.NewValueError("survival.SplitSurv", "event indicator must be 0 or 1")
		}
	}
	return times, events, nil
}

// NullLogLikelihood returns the Breslow partial log-likelihood of the model
// with no covariates, the baseline stepwise selection starts from.
func NullLogLikelihood(y mat.Matrix) (float64, error) {
	times, events, err := SplitSurv(y)
	if err != nil {
		return 0, err
	}
	nEvents := 0
	var ll float64
	for i := range times {
		if !events[i] {
			continue
		}
		nEvents++
		atRisk := 0
		for j := range times {
			if times[j] >= times[i] {
				atRisk++
			}
		}
		ll -= math.Log(float64(atRisk))
	}
	if nEvents == 0 {
		return 0, errors.NewValueError("survival.NullLogLikelihood", "no events in the data")
	}
	return ll, nil
}

// Fit estimates the coefficients from covariates X (n×p) and response y
// (n×2: time, event).
func (c *CoxPH) Fit(X, y mat.Matrix) error {
	if X == nil || y == nil {
		return errors.NewValueError("CoxPH.Fit", "nil input")
	}
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.NewModelError("CoxPH.Fit", "empty data", errors.ErrEmptyData)
	}
	times, events, err := SplitSurv(y)
	if err != nil {
		return err
	}
	if len(times) != n {
		return errors.NewDimensionError("CoxPH.Fit", n, len(times), 0)
	}

	c.nEvents = 0
	for _, e := range events {
		if e {
			c.nEvents++
		}
	}
	if c.nEvents == 0 {
		return errors.NewValueError("CoxPH.Fit", "no events in the data")
	}

	beta := make([]float64, p)
	ll := c.partialLogLik(X, times, events, beta)

	c.converged = false
	for iter := 0; iter < c.maxIter; iter++ {
		c.nIter = iter + 1

		grad, hess := c.derivatives(X, times, events, beta)

		// Solve H d = g. H is the negative Hessian (observed information),
		// positive definite away from degenerate data.
		var d mat.VecDense
		if err := d.SolveVec(hess, grad); err != nil {
			return errors.NewModelError("CoxPH.Fit", "singular information matrix", err)
		}

		// Step-halving keeps the partial likelihood climbing when a full
		// Newton step overshoots.
		step := 1.0
		var next []float64
		var nextLL float64
		for half := 0; half < 10; half++ {
			next = make([]float64, p)
			for j := 0; j < p; j++ {
				next[j] = beta[j] + step*d.AtVec(j)
			}
			nextLL = c.partialLogLik(X, times, events, next)
			if !math.IsNaN(nextLL) && nextLL >= ll-1e-12 {
				break
			}
			step /= 2
		}
		if err := errors.CheckNumericalStability("CoxPH.Fit", next, iter); err != nil {
			return err
		}

		maxDelta := 0.0
		for j := 0; j < p; j++ {
			if dd := math.Abs(next[j] - beta[j]); dd > maxDelta {
				maxDelta = dd
			}
		}
		beta = next
		ll = nextLL

		if maxDelta < c.tol {
			c.converged = true
			break
		}
	}
	if !c.converged {
		errors.Warn(errors.NewConvergenceWarning("CoxPH", c.nIter, ""))
	}

	c.coef = beta
	c.logLik = ll
	// Partial-likelihood AIC counts only the covariate coefficients.
	c.aic = -2*ll + 2*float64(p)

	_, hess := c.derivatives(X, times, events, beta)
	var inv mat.Dense
	if err := inv.Inverse(hess); err == nil {
		c.stdErr = make([]float64, p)
		for j := 0; j < p; j++ {
			c.stdErr[j] = math.Sqrt(inv.At(j, j))
		}
	} else {
		c.stdErr = nil
	}

	c.state.SetDimensions(p, n)
	c.state.SetFitted()
	return nil
}

// partialLogLik evaluates the Breslow partial log-likelihood.
func (c *CoxPH) partialLogLik(X mat.Matrix, times []float64, events []bool, beta []float64) float64 {
	n, p := X.Dims()
	lp := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			lp[i] += X.At(i, j) * beta[j]
		}
	}

	var ll float64
	for i := 0; i < n; i++ {
		if !events[i] {
			continue
		}
		var denom float64
		for j := 0; j < n; j++ {
			if times[j] >= times[i] {
				denom += math.Exp(lp[j])
			}
		}
		ll += lp[i] - math.Log(denom)
	}
	return ll
}

// derivatives returns the gradient and the observed information (negative
// Hessian) of the partial log-likelihood at beta.
func (c *CoxPH) derivatives(X mat.Matrix, times []float64, events []bool, beta []float64) (*mat.VecDense, *mat.Dense) {
	n, p := X.Dims()
	lp := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			lp[i] += X.At(i, j) * beta[j]
		}
	}

	grad := mat.NewVecDense(p, nil)
	info := mat.NewDense(p, p, nil)

	s1 := make([]float64, p)
	s2 := make([]float64, p*p)

	for i := 0; i < n; i++ {
		if !events[i] {
			continue
		}

		var s0 float64
		for j := range s1 {
			s1[j] = 0
		}
		for j := range s2 {
			s2[j] = 0
		}

		for j := 0; j < n; j++ {
			if times[j] < times[i] {
				continue
			}
			w := math.Exp(lp[j])
			s0 += w
			for a := 0; a < p; a++ {
				xa := X.At(j, a)
				s1[a] += w * xa
				for b := a; b < p; b++ {
					s2[a*p+b] += w * xa * X.At(j, b)
				}
			}
		}

		for a := 0; a < p; a++ {
			mean := s1[a] / s0
			grad.SetVec(a, grad.AtVec(a)+X.At(i, a)-mean)
			for b := a; b < p; b++ {
				v := s2[a*p+b]/s0 - mean*(s1[b]/s0)
				info.Set(a, b, info.At(a, b)+v)
				if a != b {
					info.Set(b, a, info.At(a, b))
				}
			}
		}
	}
	return grad, info
}

// Predict returns the linear predictor (log relative hazard) as an n×1
// matrix. Higher values mean higher risk.
func (c *CoxPH) Predict(X mat.Matrix) (mat.Matrix, error) {
	risk, err := c.Risk(X)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(len(risk), 1, nil)
	for i, v := range risk {
		out.Set(i, 0, v)
	}
	return out, nil
}

// Risk returns the per-subject linear predictor.
func (c *CoxPH) Risk(X mat.Matrix) ([]float64, error) {
	if !c.state.IsFitted() {
		return nil, errors.NewNotFittedError("CoxPH", "Risk")
	}
	n, p := X.Dims()
	if nf, _ := c.state.GetDimensions(); p != nf {
		return nil, errors.NewDimensionError("CoxPH.Risk", nf, p, 1)
	}
	risk := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			risk[i] += X.At(i, j) * c.coef[j]
		}
	}
	return risk, nil
}

// Score returns Harrell's concordance on the given data.
func (c *CoxPH) Score(X, y mat.Matrix) (float64, error) {
	risk, err := c.Risk(X)
	if err != nil {
		return 0, err
	}
	times, events, err := SplitSurv(y)
	if err != nil {
		return 0, err
	}
	return metrics.ConcordanceIndex(times, events, risk)
}

// Coef returns the fitted log hazard ratios.
func (c *CoxPH) Coef() []float64 { return c.coef }

// StdErr returns coefficient standard errors from the observed information.
func (c *CoxPH) StdErr() []float64 { return c.stdErr }

// LogLikelihood returns the partial log-likelihood at the fit.
func (c *CoxPH) LogLikelihood() float64 { return c.logLik }

// AIC returns -2·logPL + 2·p.
func (c *CoxPH) AIC() float64 { return c.aic }

// NEvents returns the number of events seen during fitting.
func (c *CoxPH) NEvents() int { return c.nEvents }

// NIter returns the Newton iterations used.
func (c *CoxPH) NIter() int { return c.nIter }

// Converged reports whether the last Fit met its tolerance.
func (c *CoxPH) Converged() bool { return c.converged }
