package linmodel

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestLinearRegression_ExactFit(t *testing.T) {
	// y = 1 + 2*x0 - 3*x1, no noise.
	X := mat.NewDense(6, 2, []float64{
		0, 0,
		1, 0,
		0, 1,
		1, 1,
		2, 1,
		1, 2,
	})
	y := mat.NewDense(6, 1, nil)
	for i := 0; i < 6; i++ {
		y.Set(i, 0, 1+2*X.At(i, 0)-3*X.At(i, 1))
	}

	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if math.Abs(lr.Intercept()-1) > 1e-8 {
		t.Errorf("intercept = %v, want 1", lr.Intercept())
	}
	coef := lr.Coef()
	if math.Abs(coef[0]-2) > 1e-8 || math.Abs(coef[1]+3) > 1e-8 {
		t.Errorf("coef = %v, want [2 -3]", coef)
	}

	score, err := lr.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if math.Abs(score-1) > 1e-9 {
		t.Errorf("R² = %v, want 1", score)
	}
}

func TestLinearRegression_NoIntercept(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{2, 4, 6, 8})

	lr := NewLinearRegression(WithLinearFitIntercept(false))
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if math.Abs(lr.Coef()[0]-2) > 1e-8 {
		t.Errorf("coef = %v, want 2", lr.Coef()[0])
	}
	if lr.Intercept() != 0 {
		t.Errorf("intercept = %v, want 0", lr.Intercept())
	}
}

func TestLinearRegression_AICPrefersInformativeModel(t *testing.T) {
	// x0 drives y; x1 is noise. The model without x0 must have higher AIC.
	n := 40
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x0 := float64(i)
		x1 := float64((i*7)%11) - 5
		X.Set(i, 0, x0)
		X.Set(i, 1, x1)
		y.Set(i, 0, 3*x0+math.Sin(float64(i))) // deterministic "noise"
	}

	full := NewLinearRegression()
	if err := full.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	noiseOnly := NewLinearRegression()
	x1only := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x1only.Set(i, 0, X.At(i, 1))
	}
	if err := noiseOnly.Fit(x1only, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if full.AIC() >= noiseOnly.AIC() {
		t.Errorf("AIC full = %v should beat noise-only = %v", full.AIC(), noiseOnly.AIC())
	}
}

func TestLinearRegression_Validation(t *testing.T) {
	lr := NewLinearRegression()
	if _, err := lr.Predict(mat.NewDense(1, 1, []float64{1})); err == nil {
		t.Error("Predict() before Fit() should error")
	}

	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if _, err := lr.Predict(mat.NewDense(2, 3, nil)); err == nil {
		t.Error("Predict() with wrong width should error")
	}

	yShort := mat.NewDense(3, 1, []float64{1, 2, 3})
	if err := NewLinearRegression().Fit(X, yShort); err == nil {
		t.Error("Fit() with mismatched rows should error")
	}
}

func TestLinearRegression_StdErrShape(t *testing.T) {
	X := mat.NewDense(10, 2, nil)
	y := mat.NewDense(10, 1, nil)
	for i := 0; i < 10; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(i*i)/10)
		y.Set(i, 0, float64(i)+0.1*float64(i%3))
	}

	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	se := lr.StdErr()
	if len(se) != 3 { // intercept + 2 slopes
		t.Fatalf("len(StdErr) = %d, want 3", len(se))
	}
	for j, v := range se {
		if v < 0 || math.IsNaN(v) {
			t.Errorf("stdErr[%d] = %v", j, v)
		}
	}
}
