package model

import "gonum.org/v1/gonum/mat"

// Fitter is a model that learns from training data. y is an n×1 matrix; for
// survival models the second column carries the event indicator.
type Fitter interface {
	Fit(X, y mat.Matrix) error
}

// Predictor produces predictions for new rows.
type Predictor interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer reports a single goodness-of-fit number. The metric depends on the
// model: R² for regressors, accuracy for classifiers, concordance for
// survival models.
type Scorer interface {
	Score(X, y mat.Matrix) (float64, error)
}

// Transformer is a fitted data transformation, e.g. a scaler.
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// Classifier is a predictor with class probabilities.
type Classifier interface {
	Fitter
	Predictor
	Scorer

	// PredictProba returns an n×k matrix of class probabilities, columns
	// ordered as Classes.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the unique labels seen during fitting.
	Classes() []int
}

// Regressor is a predictor scored by R².
type Regressor interface {
	Fitter
	Predictor
	Scorer
}
