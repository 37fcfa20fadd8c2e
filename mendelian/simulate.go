package mendelian

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/statnotes/statnotes/linmodel"
	"github.com/statnotes/statnotes/pkg/errors"
)

// SimulatedData is an individual-level dataset with a known causal effect,
// for checking the estimators against the truth.
type SimulatedData struct {
	G        *mat.Dense // n×k genotypes coded 0, 1, 2
	Exposure []float64
	Outcome  []float64
}

// SimulateInstruments draws n subjects with k genetic variants. Each
// variant shifts the exposure; the exposure shifts the outcome by
// causalEffect; pleiotropy adds a constant direct variant-to-outcome path
// that violates the exclusion restriction when nonzero.
func SimulateInstruments(n, k int, causalEffect, pleiotropy float64, seed int64) (*SimulatedData, error) {
	if n < 1 || k < 1 {
		return nil, errors.NewValueError("mendelian.SimulateInstruments", "n and k must be positive")
	}
	rng := rand.New(rand.NewSource(seed))

	freqs := make([]float64, k)
	strengths := make([]float64, k)
	for j := 0; j < k; j++ {
		freqs[j] = 0.2 + 0.6*rng.Float64()
		strengths[j] = 0.2 + 0.3*rng.Float64()
	}

	d := &SimulatedData{
		G:        mat.NewDense(n, k, nil),
		Exposure: make([]float64, n),
		Outcome:  make([]float64, n),
	}
	for i := 0; i < n; i++ {
		var exp float64
		var direct float64
		for j := 0; j < k; j++ {
			g := 0.0
			if rng.Float64() < freqs[j] {
				g++
			}
			if rng.Float64() < freqs[j] {
				g++
			}
			d.G.Set(i, j, g)
			exp += strengths[j] * g
			direct += pleiotropy * g
		}
		exp += rng.NormFloat64()
		d.Exposure[i] = exp
		d.Outcome[i] = causalEffect*exp + direct + rng.NormFloat64()
	}
	return d, nil
}

// SummaryStats runs the per-variant exposure and outcome regressions that a
// genome-wide association study would report, turning individual-level data
// into the summary statistics the two-sample estimators consume.
func SummaryStats(G mat.Matrix, exposure, outcome []float64) (*InstrumentStats, error) {
	if G == nil {
		return nil, errors.NewValueError("mendelian.SummaryStats", "nil genotypes")
	}
	n, k := G.Dims()
	if len(exposure) != n || len(outcome) != n {
		return nil, errors.NewDimensionError("mendelian.SummaryStats", n, len(exposure), 0)
	}

	s := &InstrumentStats{
		BetaExposure: make([]float64, k),
		SEExposure:   make([]float64, k),
		BetaOutcome:  make([]float64, k),
		SEOutcome:    make([]float64, k),
	}
	g := mat.NewDense(n, 1, nil)
	for j := 0; j < k; j++ {
		for i := 0; i < n; i++ {
			g.Set(i, 0, G.At(i, j))
		}
		be, se, err := simpleRegression(g, exposure)
		if err != nil {
			return nil, errors.Wrapf(err, "variant %d exposure regression failed", j)
		}
		bo, so, err := simpleRegression(g, outcome)
		if err != nil {
			return nil, errors.Wrapf(err, "variant %d outcome regression failed", j)
		}
		s.BetaExposure[j], s.SEExposure[j] = be, se
		s.BetaOutcome[j], s.SEOutcome[j] = bo, so
	}
	return s, nil
}

func simpleRegression(x *mat.Dense, y []float64) (beta, se float64, err error) {
	n, _ := x.Dims()
	yd := mat.NewDense(n, 1, nil)
	for i, v := range y {
		yd.Set(i, 0, v)
	}
	lr := linmodel.NewLinearRegression()
	if err := lr.Fit(x, yd); err != nil {
		return 0, 0, err
	}
	stderr := lr.StdErr()
	if len(stderr) < 2 {
		return 0, 0, errors.NewValueError("mendelian.simpleRegression", "degenerate variant")
	}
	return lr.Coef()[0], stderr[1], nil
}
