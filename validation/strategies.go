package validation

import (
	"gonum.org/v1/gonum/mat"

	"github.com/statnotes/statnotes/stepwise"
	"github.com/statnotes/statnotes/survival"
)

// FullCox is the no-selection strategy: fit a Cox model on every column.
type FullCox struct{}

// Fit implements Strategy.
func (FullCox) Fit(X, y mat.Matrix) (Model, error) {
	cph := survival.NewCoxPH()
	if err := cph.Fit(X, y); err != nil {
		return nil, err
	}
	return cph, nil
}

// StepwiseCox runs AIC stepwise selection, then refits a Cox model on the
// chosen columns. Because the selection lives inside Fit, bootstrap
// validation repeats it in every replicate, which is the whole point.
type StepwiseCox struct {
	// Direction defaults to bidirectional.
	Direction stepwise.Direction
}

// Fit implements Strategy.
func (s StepwiseCox) Fit(X, y mat.Matrix) (Model, error) {
	dir := s.Direction
	if dir == "" {
		dir = stepwise.Both
	}
	sel := stepwise.NewSelector(stepwise.WithDirection(dir))
	res, err := sel.Select(stepwise.CoxAIC{}, X, y)
	if err != nil {
		return nil, err
	}
	if len(res.Selected) == 0 {
		// Nothing beat the null model; a covariate-free Cox model ranks
		// everyone equally.
		return nullRiskModel{}, nil
	}
	sub, err := stepwise.SubsetColumns(X, res.Selected)
	if err != nil {
		return nil, err
	}
	cph := survival.NewCoxPH()
	if err := cph.Fit(sub, y); err != nil {
		return nil, err
	}
	return columnSubsetModel{cols: res.Selected, inner: cph}, nil
}

// columnSubsetModel scores a model that was fitted on a subset of columns,
// re-applying the same subset to whatever data it is scored on.
type columnSubsetModel struct {
	cols  []int
	inner Model
}

// Cols returns the column indices the wrapped model was fitted on.
func (m columnSubsetModel) Cols() []int { return m.cols }

func (m columnSubsetModel) Score(X, y mat.Matrix) (float64, error) {
	sub, err := stepwise.SubsetColumns(X, m.cols)
	if err != nil {
		return 0, err
	}
	return m.inner.Score(sub, y)
}

// nullRiskModel assigns every subject the same risk. Every comparable pair
// is tied, so the concordance is 0.5 regardless of the data.
type nullRiskModel struct{}

func (nullRiskModel) Score(_, y mat.Matrix) (float64, error) {
	if _, _, err := survival.SplitSurv(y); err != nil {
		return 0, err
	}
	return 0.5, nil
}
