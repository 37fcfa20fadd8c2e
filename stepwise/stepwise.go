// Package stepwise implements AIC-driven stepwise variable selection. It is
// deliberately model-agnostic: a Fitter knows how to fit one candidate subset
// and report its AIC, so the same selector drives linear, logistic and Cox
// models, and can be re-run inside every bootstrap replicate during
// validation.
package stepwise

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/statnotes/statnotes/pkg/errors"
	"github.com/statnotes/statnotes/pkg/log"
)

// Fitter fits a model on the given subset of X's columns and reports its
// AIC. An empty subset means the null (intercept-only or no-covariate)
// model.
type Fitter interface {
	FitAIC(X, y mat.Matrix, cols []int) (float64, error)
}

// Direction selects the search strategy.
type Direction string

const (
	// Forward starts empty and only adds variables.
	Forward Direction = "forward"
	// Backward starts full and only drops variables.
	Backward Direction = "backward"
	// Both starts empty and considers additions and removals at each step.
	Both Direction = "both"
)

// Step records one move of the search.
type Step struct {
	Action  string // "start", "add" or "drop"
	Feature int    // column index, -1 for the start entry
	AIC     float64
}

// Result is the outcome of a stepwise search.
type Result struct {
	Selected []int
	AIC      float64
	Path     []Step
}

// Selector runs stepwise selection with strict AIC improvement: a move is
// taken only when it lowers the AIC, so the search always terminates.
type Selector struct {
	direction Direction
	maxSteps  int
	logger    log.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithDirection sets the search direction.
func WithDirection(d Direction) Option {
	return func(s *Selector) { s.direction = d }
}

// WithMaxSteps caps the number of moves.
func WithMaxSteps(n int) Option {
	return func(s *Selector) { s.maxSteps = n }
}

// WithLogger overrides the package logger.
func WithLogger(l log.Logger) Option {
	return func(s *Selector) { s.logger = l }
}

// NewSelector creates a bidirectional selector with at most 100 moves.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{
		direction: Both,
		maxSteps:  100,
		logger:    log.GetLoggerWithName("stepwise"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select searches over the columns of X. Candidate subsets that fail to fit
// are skipped rather than aborting the search; only a failing starting model
// is an error.
func (s *Selector) Select(fitter Fitter, X, y mat.Matrix) (*Result, error) {
	if fitter == nil {
		return nil, errors.NewValueError("stepwise.Select", "nil fitter")
	}
	if X == nil || y == nil {
		return nil, errors.NewValueError("stepwise.Select", "nil input")
	}
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return nil, errors.NewModelError("stepwise.Select", "empty data", errors.ErrEmptyData)
	}

	switch s.direction {
	case Forward, Backward, Both:
	default:
		return nil, errors.NewValueError("stepwise.Select", "unknown direction")
	}

	selected := map[int]bool{}
	if s.direction == Backward {
		for j := 0; j < p; j++ {
			selected[j] = true
		}
	}

	cur, err := fitter.FitAIC(X, y, sortedKeys(selected))
	if err != nil {
		return nil, errors.Wrap(err, "stepwise: starting model failed to fit")
	}

	res := &Result{Path: []Step{{Action: "start", Feature: -1, AIC: cur}}}
	s.logger.Debug("stepwise start",
		log.OperationKey, string(s.direction),
		log.FeaturesKey, p,
		"aic", cur)

	for step := 0; step < s.maxSteps; step++ {
		bestAIC := cur
		bestFeature := -1
		bestAction := ""

		if s.direction == Forward || s.direction == Both {
			for j := 0; j < p; j++ {
				if selected[j] {
					continue
				}
				cols := append(sortedKeys(selected), j)
				aic, err := fitter.FitAIC(X, y, cols)
				if err != nil {
					continue
				}
				if aic < bestAIC {
					bestAIC = aic
					bestFeature = j
					bestAction = "add"
				}
			}
		}
		if s.direction == Backward || s.direction == Both {
			for j := 0; j < p; j++ {
				if !selected[j] {
					continue
				}
				cols := sortedKeysExcept(selected, j)
				aic, err := fitter.FitAIC(X, y, cols)
				if err != nil {
					continue
				}
				if aic < bestAIC {
					bestAIC = aic
					bestFeature = j
					bestAction = "drop"
				}
			}
		}

		if bestFeature < 0 {
			break
		}
		if bestAction == "add" {
			selected[bestFeature] = true
		} else {
			delete(selected, bestFeature)
		}
		cur = bestAIC
		res.Path = append(res.Path, Step{Action: bestAction, Feature: bestFeature, AIC: cur})
		s.logger.Debug("stepwise move",
			log.OperationKey, bestAction,
			"feature", bestFeature,
			"aic", cur)
	}

	res.Selected = sortedKeys(selected)
	res.AIC = cur
	return res, nil
}

func sortedKeys(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for j := range set {
		out = append(out, j)
	}
	sort.Ints(out)
	return out
}

func sortedKeysExcept(set map[int]bool, skip int) []int {
	out := make([]int, 0, len(set))
	for j := range set {
		if j != skip {
			out = append(out, j)
		}
	}
	sort.Ints(out)
	return out
}

// SubsetColumns returns the named columns of X as a new dense matrix. A nil
// or empty cols returns nil, meaning the null design.
func SubsetColumns(X mat.Matrix, cols []int) (*mat.Dense, error) {
	if len(cols) == 0 {
		return nil, nil
	}
	n, p := X.Dims()
	out := mat.NewDense(n, len(cols), nil)
	for k, j := range cols {
		if j < 0 || j >= p {
			return nil, errors.NewValueError("stepwise.SubsetColumns", "column index out of range")
		}
		for i := 0; i < n; i++ {
			out.Set(i, k, X.At(i, j))
		}
	}
	return out, nil
}
