package modelselection

import (
	"context"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/statnotes/statnotes/core/parallel"
	"github.com/statnotes/statnotes/pkg/errors"
	"github.com/statnotes/statnotes/pkg/log"
)

// ParamGrid maps a parameter name to the values to try. The search covers
// the full cartesian product.
type ParamGrid map[string][]float64

// Candidates expands the grid into concrete parameter sets, ordered
// deterministically by parameter name and value position.
func (g ParamGrid) Candidates() []map[string]float64 {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)

	out := []map[string]float64{{}}
	for _, name := range names {
		var next []map[string]float64
		for _, base := range out {
			for _, v := range g[name] {
				c := make(map[string]float64, len(base)+1)
				for k, bv := range base {
					c[k] = bv
				}
				c[name] = v
				next = append(next, c)
			}
		}
		out = next
	}
	return out
}

// CandidateResult is one grid cell's cross-validated performance.
type CandidateResult struct {
	Params     map[string]float64
	MeanScore  float64
	StdScore   float64
	FoldScores []float64
}

// GridSearchResult holds every candidate plus the winner by mean test score.
type GridSearchResult struct {
	Best CandidateResult
	All  []CandidateResult
}

// GridSearchCV exhaustively cross-validates a parameter grid. Candidates
// are evaluated concurrently; each one runs its own full cross-validation.
type GridSearchCV struct {
	factory    func(params map[string]float64) Estimator
	grid       ParamGrid
	splitter   Splitter
	maxWorkers int
	logger     log.Logger
}

// GridOption configures a GridSearchCV.
type GridOption func(*GridSearchCV)

// WithSplitter sets the cross-validation splitter; the default is shuffled
// 5-fold.
func WithSplitter(s Splitter) GridOption {
	return func(gs *GridSearchCV) { gs.splitter = s }
}

// WithGridMaxWorkers caps candidate-level concurrency; <= 0 uses one worker
// per core.
func WithGridMaxWorkers(n int) GridOption {
	return func(gs *GridSearchCV) { gs.maxWorkers = n }
}

// WithGridLogger overrides the package logger.
func WithGridLogger(l log.Logger) GridOption {
	return func(gs *GridSearchCV) { gs.logger = l }
}

// NewGridSearchCV creates a grid search over factory-built estimators.
func NewGridSearchCV(factory func(params map[string]float64) Estimator, grid ParamGrid, opts ...GridOption) *GridSearchCV {
	gs := &GridSearchCV{
		factory:  factory,
		grid:     grid,
		splitter: NewKFold(5, true, 0),
		logger:   log.GetLoggerWithName("modelselection"),
	}
	for _, opt := range opts {
		opt(gs)
	}
	return gs
}

// Fit evaluates every candidate, returning all results in grid order plus
// the winner by mean test score in Best.
func (gs *GridSearchCV) Fit(ctx context.Context, X, y mat.Matrix) (*GridSearchResult, error) {
	if gs.factory == nil {
		return nil, errors.NewValueError("GridSearchCV.Fit", "nil estimator factory")
	}
	if len(gs.grid) == 0 {
		return nil, errors.NewValueError("GridSearchCV.Fit", "empty parameter grid")
	}

	candidates := gs.grid.Candidates()
	gs.logger.Info("grid search start",
		log.OperationKey, "tune",
		"candidates", len(candidates),
		"folds", gs.splitter.NumSplits(),
	)

	results := make([]CandidateResult, len(candidates))
	err := parallel.ForEach(ctx, len(candidates), gs.maxWorkers, func(i int) error {
		params := candidates[i]
		cv, err := CrossValScore(func() Estimator { return gs.factory(params) }, X, y, gs.splitter)
		if err != nil {
			return errors.Wrapf(err, "candidate %d failed", i)
		}
		results[i] = CandidateResult{
			Params:     params,
			MeanScore:  cv.MeanTestScore(),
			StdScore:   cv.StdTestScore(),
			FoldScores: cv.TestScores,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	best := 0
	for i := 1; i < len(results); i++ {
		if results[i].MeanScore > results[best].MeanScore {
			best = i
		}
	}
	gs.logger.Info("grid search done",
		log.OperationKey, "tune",
		log.MetricKey, "mean_test_score",
		"best_score", results[best].MeanScore,
	)
	return &GridSearchResult{Best: results[best], All: results}, nil
}

// BenchmarkEntry names one model for a head-to-head comparison.
type BenchmarkEntry struct {
	Name    string
	Factory func() Estimator
}

// BenchmarkRow is one model's cross-validated performance.
type BenchmarkRow struct {
	Name      string
	MeanScore float64
	StdScore  float64
}

// Benchmark cross-validates several models with the same splitter so their
// scores are comparable fold for fold.
func Benchmark(entries []BenchmarkEntry, X, y mat.Matrix, splitter Splitter) ([]BenchmarkRow, error) {
	if len(entries) == 0 {
		return nil, errors.NewValueError("modelselection.Benchmark", "no models to benchmark")
	}
	rows := make([]BenchmarkRow, len(entries))
	for i, e := range entries {
		cv, err := CrossValScore(e.Factory, X, y, splitter)
		if err != nil {
			return nil, errors.Wrapf(err, "benchmark %q failed", e.Name)
		}
		rows[i] = BenchmarkRow{Name: e.Name, MeanScore: cv.MeanTestScore(), StdScore: cv.StdTestScore()}
	}
	return rows, nil
}
