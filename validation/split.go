package validation

import (
	"context"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/statnotes/statnotes/pkg/errors"
)

// SplitResult holds the outcome of a single split-sample validation.
type SplitResult struct {
	Train  float64 // score on the training half
	Test   float64 // score on the held-out half
	NTrain int
	NTest  int
}

// SplitSample fits the strategy on a random training fraction and scores it
// on the remainder. It is the honest but wasteful alternative the essay
// contrasts with the bootstrap: unbiased, yet noisy at small n because both
// halves shrink.
func SplitSample(strategy Strategy, X, y mat.Matrix, testFraction float64, seed int64) (*SplitResult, error) {
	if strategy == nil {
		return nil, errors.NewValueError("validation.SplitSample", "nil strategy")
	}
	if X == nil || y == nil {
		return nil, errors.NewValueError("validation.SplitSample", "nil input")
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, errors.NewValueError("validation.SplitSample", "test fraction must be in (0, 1)")
	}
	n, _ := X.Dims()
	nTest := int(float64(n) * testFraction)
	if nTest < 1 || n-nTest < 1 {
		return nil, errors.NewValueError("validation.SplitSample", "too few rows to split")
	}

	idx := rand.New(rand.NewSource(seed)).Perm(n)
	testIdx := idx[:nTest]
	trainIdx := idx[nTest:]

	trX, trY := resampleRows(X, y, trainIdx)
	teX, teY := resampleRows(X, y, testIdx)

	m, err := strategy.Fit(trX, trY)
	if err != nil {
		return nil, errors.Wrap(err, "split-sample: training fit failed")
	}
	trainScore, err := m.Score(trX, trY)
	if err != nil {
		return nil, err
	}
	testScore, err := m.Score(teX, teY)
	if err != nil {
		return nil, err
	}
	return &SplitResult{
		Train:  trainScore,
		Test:   testScore,
		NTrain: len(trainIdx),
		NTest:  len(testIdx),
	}, nil
}

// Comparison lines up the validation estimates the essay compares on the
// same data and strategy.
type Comparison struct {
	Apparent  float64
	Split     float64
	Corrected float64
	Optimism  float64
}

// Compare runs apparent scoring, one 30% split-sample validation, and the
// optimism-corrected bootstrap for the same strategy.
func Compare(ctx context.Context, strategy Strategy, X, y mat.Matrix, replicates int, seed int64) (*Comparison, error) {
	boot := NewBootstrap(WithReplicates(replicates), WithSeed(seed))
	br, err := boot.Validate(ctx, strategy, X, y)
	if err != nil {
		return nil, err
	}
	sr, err := SplitSample(strategy, X, y, 0.3, seed)
	if err != nil {
		return nil, err
	}
	return &Comparison{
		Apparent:  br.Apparent,
		Split:     sr.Test,
		Corrected: br.Corrected,
		Optimism:  br.Optimism,
	}, nil
}

// Generator draws one fresh dataset; the simulation calls it with a
// different seed per run.
type Generator func(seed int64) (X, y *mat.Dense)

// MethodSummary is the mean and spread of one validation estimate across
// simulated datasets.
type MethodSummary struct {
	Name string
	Mean float64
	SD   float64
}

// SimulationResult summarises the comparison simulation.
type SimulationResult struct {
	Runs     int
	Apparent MethodSummary
	Split    MethodSummary
	Boot     MethodSummary
}

// CompareSimulation repeats Compare on freshly simulated datasets and
// summarises how each validation estimate behaves: the apparent score's
// optimism shows up as a shifted mean, the split-sample estimate as a wider
// spread.
func CompareSimulation(ctx context.Context, strategy Strategy, gen Generator, runs, replicates int, seed int64) (*SimulationResult, error) {
	if gen == nil {
		return nil, errors.NewValueError("validation.CompareSimulation", "nil generator")
	}
	if runs < 2 {
		return nil, errors.NewValueError("validation.CompareSimulation", "needs at least 2 runs")
	}

	apparent := make([]float64, runs)
	split := make([]float64, runs)
	boot := make([]float64, runs)
	for r := 0; r < runs; r++ {
		X, y := gen(seed + int64(r))
		cmp, err := Compare(ctx, strategy, X, y, replicates, seed+int64(r)*7919)
		if err != nil {
			return nil, errors.Wrapf(err, "simulation run %d failed", r)
		}
		apparent[r] = cmp.Apparent
		split[r] = cmp.Split
		boot[r] = cmp.Corrected
	}
	return &SimulationResult{
		Runs:     runs,
		Apparent: summarise("apparent", apparent),
		Split:    summarise("split-sample", split),
		Boot:     summarise("bootstrap-corrected", boot),
	}, nil
}

func summarise(name string, xs []float64) MethodSummary {
	return MethodSummary{Name: name, Mean: stat.Mean(xs, nil), SD: stat.StdDev(xs, nil)}
}
