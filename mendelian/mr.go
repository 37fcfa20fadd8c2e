// Package mendelian implements two-sample Mendelian randomisation
// estimators over per-variant summary statistics, plus individual-level
// two-stage least squares and a genotype simulator for checking them
// against a known causal effect.
package mendelian

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/statnotes/statnotes/linmodel"
	"github.com/statnotes/statnotes/pkg/errors"
)

// InstrumentStats holds per-variant summary statistics: the estimated
// effect of each variant on the exposure and on the outcome, with standard
// errors.
type InstrumentStats struct {
	BetaExposure []float64
	SEExposure   []float64
	BetaOutcome  []float64
	SEOutcome    []float64
}

// NumVariants returns the number of instruments.
func (s *InstrumentStats) NumVariants() int { return len(s.BetaExposure) }

func (s *InstrumentStats) validate(op string) error {
	k := len(s.BetaExposure)
	if k == 0 {
		return errors.NewModelError(op, "no instruments", errors.ErrEmptyData)
	}
	if len(s.SEExposure) != k || len(s.BetaOutcome) != k || len(s.SEOutcome) != k {
		return errors.NewValueError(op, "summary statistic slices must have equal length")
	}
	for i := 0; i < k; i++ {
		if s.SEOutcome[i] <= 0 || s.SEExposure[i] <= 0 {
			return errors.NewValueError(op, "standard errors must be positive")
		}
	}
	return nil
}

// Estimate is one causal-effect estimate with a 95% confidence interval.
type Estimate struct {
	Effect float64
	SE     float64
	Lower  float64
	Upper  float64
	PValue float64
}

func newEstimate(effect, se float64) Estimate {
	z := effect / se
	n := distuv.Normal{Mu: 0, Sigma: 1}
	return Estimate{
		Effect: effect,
		SE:     se,
		Lower:  effect - 1.96*se,
		Upper:  effect + 1.96*se,
		PValue: 2 * n.Survival(math.Abs(z)),
	}
}

// WaldRatio returns the per-variant ratio estimates beta_outcome /
// beta_exposure, with first-order standard errors.
func WaldRatio(s *InstrumentStats) ([]Estimate, error) {
	if err := s.validate("mendelian.WaldRatio"); err != nil {
		return nil, err
	}
	out := make([]Estimate, s.NumVariants())
	for i := range out {
		bx := s.BetaExposure[i]
		if bx == 0 {
			return nil, errors.NewValueError("mendelian.WaldRatio", "variant with zero exposure effect")
		}
		out[i] = newEstimate(s.BetaOutcome[i]/bx, s.SEOutcome[i]/math.Abs(bx))
	}
	return out, nil
}

// IVW returns the inverse-variance weighted estimate: a weighted regression
// of the outcome effects on the exposure effects through the origin, with
// weights 1/se_outcome².
func IVW(s *InstrumentStats) (Estimate, error) {
	if err := s.validate("mendelian.IVW"); err != nil {
		return Estimate{}, err
	}
	var num, den float64
	for i := 0; i < s.NumVariants(); i++ {
		w := 1 / (s.SEOutcome[i] * s.SEOutcome[i])
		num += w * s.BetaExposure[i] * s.BetaOutcome[i]
		den += w * s.BetaExposure[i] * s.BetaExposure[i]
	}
	if den == 0 {
		return Estimate{}, errors.NewValueError("mendelian.IVW", "all exposure effects are zero")
	}
	return newEstimate(num/den, 1/math.Sqrt(den)), nil
}

// EggerResult holds the MR-Egger slope and its pleiotropy intercept.
type EggerResult struct {
	Slope     Estimate // the causal effect
	Intercept Estimate // nonzero suggests directional pleiotropy
}

// Egger returns the MR-Egger regression: a weighted regression of outcome
// effects on exposure effects with a free intercept. Variants are first
// oriented so every exposure effect is non-negative. Needs at least three
// instruments.
func Egger(s *InstrumentStats) (EggerResult, error) {
	if err := s.validate("mendelian.Egger"); err != nil {
		return EggerResult{}, err
	}
	k := s.NumVariants()
	if k < 3 {
		return EggerResult{}, errors.NewValueError("mendelian.Egger", "needs at least 3 instruments")
	}

	var sw, swx, swy, swxx, swxy float64
	bx := make([]float64, k)
	by := make([]float64, k)
	for i := 0; i < k; i++ {
		bx[i], by[i] = s.BetaExposure[i], s.BetaOutcome[i]
		if bx[i] < 0 {
			bx[i], by[i] = -bx[i], -by[i]
		}
		w := 1 / (s.SEOutcome[i] * s.SEOutcome[i])
		sw += w
		swx += w * bx[i]
		swy += w * by[i]
		swxx += w * bx[i] * bx[i]
		swxy += w * bx[i] * by[i]
	}
	d := sw*swxx - swx*swx
	if d == 0 {
		return EggerResult{}, errors.NewValueError("mendelian.Egger", "exposure effects are collinear")
	}
	slope := (sw*swxy - swx*swy) / d
	intercept := (swxx*swy - swx*swxy) / d

	// Residual scale, floored at 1 as in the usual MR-Egger fit.
	var rss float64
	for i := 0; i < k; i++ {
		w := 1 / (s.SEOutcome[i] * s.SEOutcome[i])
		r := by[i] - intercept - slope*bx[i]
		rss += w * r * r
	}
	scale := math.Max(1, rss/float64(k-2))

	return EggerResult{
		Slope:     newEstimate(slope, math.Sqrt(scale*sw/d)),
		Intercept: newEstimate(intercept, math.Sqrt(scale*swxx/d)),
	}, nil
}

// TwoStageLS estimates the causal effect from individual-level data:
// regress the exposure on the genotypes, then the outcome on the fitted
// exposure.
func TwoStageLS(G mat.Matrix, exposure, outcome []float64) (Estimate, error) {
	if G == nil {
		return Estimate{}, errors.NewValueError("mendelian.TwoStageLS", "nil genotypes")
	}
	n, _ := G.Dims()
	if len(exposure) != n || len(outcome) != n {
		return Estimate{}, errors.NewDimensionError("mendelian.TwoStageLS", n, len(exposure), 0)
	}

	x := mat.NewDense(n, 1, nil)
	for i, v := range exposure {
		x.Set(i, 0, v)
	}
	first := linmodel.NewLinearRegression()
	if err := first.Fit(G, x); err != nil {
		return Estimate{}, errors.Wrap(err, "two-stage: first stage failed")
	}
	fitted, err := first.Predict(G)
	if err != nil {
		return Estimate{}, err
	}

	y := mat.NewDense(n, 1, nil)
	for i, v := range outcome {
		y.Set(i, 0, v)
	}
	second := linmodel.NewLinearRegression()
	if err := second.Fit(fitted, y); err != nil {
		return Estimate{}, errors.Wrap(err, "two-stage: second stage failed")
	}

	// StdErr lists the intercept first; it is nil when the second-stage
	// cross-product matrix is singular, which happens when the fitted
	// exposure is (near-)constant.
	se := second.StdErr()
	if len(se) < 2 {
		return Estimate{}, errors.NewValueError("mendelian.TwoStageLS", "second-stage standard errors unavailable (collinear fitted exposure)")
	}
	return newEstimate(second.Coef()[0], se[1]), nil
}
