// Package validation implements internal validation of modelling strategies:
// the optimism-corrected bootstrap, split-sample validation, and a small
// comparison harness. The central rule is that a Strategy is the WHOLE
// recipe, variable selection included, and the bootstrap repeats it from
// scratch inside every replicate.
package validation

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/statnotes/statnotes/core/parallel"
	"github.com/statnotes/statnotes/pkg/errors"
	"github.com/statnotes/statnotes/pkg/log"
)

// Model is a fitted model that can score itself on data.
type Model interface {
	Score(X, y mat.Matrix) (float64, error)
}

// Strategy is one complete modelling recipe, fit from scratch on whatever
// data it is handed. Anything data-driven, stepwise selection above all,
// belongs inside Fit so resampling can repeat it honestly.
type Strategy interface {
	Fit(X, y mat.Matrix) (Model, error)
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc func(X, y mat.Matrix) (Model, error)

// Fit implements Strategy.
func (f StrategyFunc) Fit(X, y mat.Matrix) (Model, error) { return f(X, y) }

// BootstrapResult summarises an optimism-corrected bootstrap run.
type BootstrapResult struct {
	RunID string

	// Apparent is the strategy's score on the data it was fitted to.
	Apparent float64
	// Optimism is the mean over replicates of (bootstrap score - score of
	// the replicate's model on the original data).
	Optimism float64
	// Corrected is Apparent - Optimism.
	Corrected float64

	Replicates int
	Failed     int
	Elapsed    time.Duration
}

// Bootstrap runs Harrell's optimism-corrected bootstrap. Each replicate
// draws n rows with replacement, refits the full strategy on the resample,
// and contrasts its resample score with its score on the original data.
type Bootstrap struct {
	replicates int
	seed       int64
	maxWorkers int
	logger     log.Logger
}

// BootstrapOption configures a Bootstrap.
type BootstrapOption func(*Bootstrap)

// WithReplicates sets the number of bootstrap replicates.
func WithReplicates(b int) BootstrapOption {
	return func(v *Bootstrap) { v.replicates = b }
}

// WithSeed makes the resampling reproducible. Replicate i uses its own RNG
// seeded with seed+i, so results do not depend on scheduling.
func WithSeed(seed int64) BootstrapOption {
	return func(v *Bootstrap) { v.seed = seed }
}

// WithMaxWorkers caps the replicate fitting concurrency; <= 0 uses one
// worker per core.
func WithMaxWorkers(n int) BootstrapOption {
	return func(v *Bootstrap) { v.maxWorkers = n }
}

// WithBootstrapLogger overrides the package logger.
func WithBootstrapLogger(l log.Logger) BootstrapOption {
	return func(v *Bootstrap) { v.logger = l }
}

// NewBootstrap creates a validator with 200 replicates and seed 1.
func NewBootstrap(opts ...BootstrapOption) *Bootstrap {
	v := &Bootstrap{
		replicates: 200,
		seed:       1,
		logger:     log.GetLoggerWithName("validation"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs the optimism-corrected bootstrap for strategy on X, y.
// Replicates whose fit fails (a degenerate resample, say one with no events)
// are skipped; it is an error for more than half of them to fail.
func (v *Bootstrap) Validate(ctx context.Context, strategy Strategy, X, y mat.Matrix) (*BootstrapResult, error) {
	if strategy == nil {
		return nil, errors.NewValueError("Bootstrap.Validate", "nil strategy")
	}
	if X == nil || y == nil {
		return nil, errors.NewValueError("Bootstrap.Validate", "nil input")
	}
	n, p := X.Dims()
	if n == 0 {
		return nil, errors.NewModelError("Bootstrap.Validate", "empty data", errors.ErrEmptyData)
	}
	if yr, _ := y.Dims(); yr != n {
		return nil, errors.NewDimensionError("Bootstrap.Validate", n, yr, 0)
	}
	if v.replicates < 1 {
		return nil, errors.NewValueError("Bootstrap.Validate", "replicates must be positive")
	}

	runID := uuid.NewString()
	logger := v.logger.With(
		log.RunIDKey, runID,
		log.SamplesKey, n,
		log.FeaturesKey, p,
		log.ReplicatesKey, v.replicates,
		log.SeedKey, v.seed,
	)
	start := time.Now()
	logger.Info("bootstrap validation start", log.OperationKey, "resample")

	full, err := strategy.Fit(X, y)
	if err != nil {
		return nil, errors.Wrap(err, "bootstrap: fitting on the full data failed")
	}
	apparent, err := full.Score(X, y)
	if err != nil {
		return nil, errors.Wrap(err, "bootstrap: scoring on the full data failed")
	}

	optimisms := make([]float64, v.replicates)
	ok := make([]bool, v.replicates)
	var mu sync.Mutex
	failed := 0

	err = parallel.ForEach(ctx, v.replicates, v.maxWorkers, func(i int) error {
		rng := rand.New(rand.NewSource(v.seed + int64(i)))
		idx := make([]int, n)
		for j := range idx {
			idx[j] = rng.Intn(n)
		}
		bx, by := resampleRows(X, y, idx)

		m, err := strategy.Fit(bx, by)
		if err != nil {
			mu.Lock()
			failed++
			mu.Unlock()
			logger.Warn("replicate fit failed", "replicate", i, log.ErrAttrKey, err)
			return nil
		}
		bootScore, err := m.Score(bx, by)
		if err != nil {
			mu.Lock()
			failed++
			mu.Unlock()
			return nil
		}
		origScore, err := m.Score(X, y)
		if err != nil {
			mu.Lock()
			failed++
			mu.Unlock()
			return nil
		}
		optimisms[i] = bootScore - origScore
		ok[i] = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if failed > v.replicates/2 {
		return nil, errors.NewValueError("Bootstrap.Validate", "more than half the replicates failed to fit")
	}

	var sum float64
	used := 0
	for i, good := range ok {
		if good {
			sum += optimisms[i]
			used++
		}
	}
	optimism := sum / float64(used)

	res := &BootstrapResult{
		RunID:      runID,
		Apparent:   apparent,
		Optimism:   optimism,
		Corrected:  apparent - optimism,
		Replicates: used,
		Failed:     failed,
		Elapsed:    time.Since(start),
	}
	logger.Info("bootstrap validation done",
		log.OperationKey, "resample",
		"apparent", res.Apparent,
		"optimism", res.Optimism,
		"corrected", res.Corrected,
		"failed", failed,
		log.DurationMsKey, res.Elapsed.Milliseconds(),
	)
	return res, nil
}

// resampleRows gathers the given rows of X and y into fresh matrices. y may
// have any width, so survival responses pass through unchanged.
func resampleRows(X, y mat.Matrix, idx []int) (*mat.Dense, *mat.Dense) {
	_, p := X.Dims()
	_, q := y.Dims()
	bx := mat.NewDense(len(idx), p, nil)
	by := mat.NewDense(len(idx), q, nil)
	for r, i := range idx {
		for j := 0; j < p; j++ {
			bx.Set(r, j, X.At(i, j))
		}
		for j := 0; j < q; j++ {
			by.Set(r, j, y.At(i, j))
		}
	}
	return bx, by
}
