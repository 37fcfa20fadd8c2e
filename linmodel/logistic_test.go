package linmodel

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// simulateLogistic draws a deterministic binary dataset where x0 raises the
// odds and x1 is noise.
func simulateLogistic(n int, seed int64) (*mat.Dense, *mat.Dense) {
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x0 := rng.NormFloat64()
		x1 := rng.NormFloat64()
		X.Set(i, 0, x0)
		X.Set(i, 1, x1)
		p := 1 / (1 + math.Exp(-(0.3 + 1.5*x0)))
		if rng.Float64() < p {
			y.Set(i, 0, 1)
		}
	}
	return X, y
}

func TestLogisticRegression_RecoversSignal(t *testing.T) {
	X, y := simulateLogistic(400, 7)

	lr := NewLogisticRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if !lr.Converged() {
		t.Error("expected convergence on well-behaved data")
	}

	coef := lr.Coef()
	if coef[0] < 0.8 || coef[0] > 2.5 {
		t.Errorf("signal coefficient = %v, want near 1.5", coef[0])
	}
	if math.Abs(coef[1]) > 0.5 {
		t.Errorf("noise coefficient = %v, want near 0", coef[1])
	}

	acc, err := lr.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if acc < 0.65 {
		t.Errorf("training accuracy = %v, want > 0.65", acc)
	}
}

func TestLogisticRegression_ProbabilitiesAreValid(t *testing.T) {
	X, y := simulateLogistic(120, 11)

	lr := NewLogisticRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	proba, err := lr.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}
	n, _ := proba.Dims()
	for i := 0; i < n; i++ {
		p := proba.At(i, 0)
		if p < 0 || p > 1 || math.IsNaN(p) {
			t.Fatalf("proba[%d] = %v", i, p)
		}
	}

	both, err := lr.PredictProbaMatrix(X)
	if err != nil {
		t.Fatalf("PredictProbaMatrix() error = %v", err)
	}
	for i := 0; i < n; i++ {
		if math.Abs(both.At(i, 0)+both.At(i, 1)-1) > 1e-12 {
			t.Fatalf("row %d probabilities do not sum to 1", i)
		}
	}
}

func TestLogisticRegression_AICPrefersSignal(t *testing.T) {
	X, y := simulateLogistic(300, 3)
	n, _ := X.Dims()

	signal := mat.NewDense(n, 1, nil)
	noise := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		signal.Set(i, 0, X.At(i, 0))
		noise.Set(i, 0, X.At(i, 1))
	}

	withSignal := NewLogisticRegression()
	if err := withSignal.Fit(signal, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	withNoise := NewLogisticRegression()
	if err := withNoise.Fit(noise, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if withSignal.AIC() >= withNoise.AIC() {
		t.Errorf("AIC with signal = %v should beat noise = %v", withSignal.AIC(), withNoise.AIC())
	}
}

func TestLogisticRegression_RejectsNonBinaryLabels(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{0, 1, 2})

	lr := NewLogisticRegression()
	if err := lr.Fit(X, y); err == nil {
		t.Error("Fit() should reject labels outside {0,1}")
	}
}

func TestLogisticRegression_NotFitted(t *testing.T) {
	lr := NewLogisticRegression()
	if _, err := lr.PredictProba(mat.NewDense(1, 1, []float64{0})); err == nil {
		t.Error("PredictProba() before Fit() should error")
	}
}
