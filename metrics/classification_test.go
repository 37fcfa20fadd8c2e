package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	errs "github.com/statnotes/statnotes/pkg/errors"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name  string
		yTrue []float64
		yPred []float64
		want  float64
	}{
		{
			name:  "All correct",
			yTrue: []float64{0, 1, 1, 0},
			yPred: []float64{0, 1, 1, 0},
			want:  1.0,
		},
		{
			name:  "Half correct",
			yTrue: []float64{0, 1, 1, 0},
			yPred: []float64{0, 1, 0, 1},
			want:  0.5,
		},
		{
			name:  "None correct",
			yTrue: []float64{0, 0},
			yPred: []float64{1, 1},
			want:  0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(
				mat.NewVecDense(len(tt.yTrue), tt.yTrue),
				mat.NewVecDense(len(tt.yPred), tt.yPred),
			)
			if err != nil {
				t.Fatalf("Accuracy() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfusionMatrix(t *testing.T) {
	yTrue := mat.NewVecDense(6, []float64{0, 0, 1, 1, 1, 0})
	yPred := mat.NewVecDense(6, []float64{0, 1, 1, 0, 1, 0})

	tn, fp, fn, tp, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		t.Fatalf("ConfusionMatrix() error = %v", err)
	}
	if tn != 2 || fp != 1 || fn != 1 || tp != 2 {
		t.Errorf("ConfusionMatrix() = (%d,%d,%d,%d), want (2,1,1,2)", tn, fp, fn, tp)
	}

	bad := mat.NewVecDense(2, []float64{0, 2})
	if _, _, _, _, err := ConfusionMatrix(bad, mat.NewVecDense(2, []float64{0, 1})); err == nil {
		t.Error("ConfusionMatrix() should reject non-binary labels")
	}
}

func TestPrecisionRecallF1(t *testing.T) {
	yTrue := mat.NewVecDense(6, []float64{0, 0, 1, 1, 1, 0})
	yPred := mat.NewVecDense(6, []float64{0, 1, 1, 0, 1, 0})

	precision, recall, f1, err := PrecisionRecallF1(yTrue, yPred)
	if err != nil {
		t.Fatalf("PrecisionRecallF1() error = %v", err)
	}
	if math.Abs(precision-2.0/3.0) > 1e-9 {
		t.Errorf("precision = %v, want 2/3", precision)
	}
	if math.Abs(recall-2.0/3.0) > 1e-9 {
		t.Errorf("recall = %v, want 2/3", recall)
	}
	if math.Abs(f1-2.0/3.0) > 1e-9 {
		t.Errorf("f1 = %v, want 2/3", f1)
	}
}

func TestPrecisionUndefinedWarns(t *testing.T) {
	var warned error
	errs.SetWarningHandler(func(w error) { warned = w })
	defer errs.SetWarningHandler(func(w error) {})

	yTrue := mat.NewVecDense(3, []float64{1, 1, 0})
	yPred := mat.NewVecDense(3, []float64{0, 0, 0})

	precision, _, _, err := PrecisionRecallF1(yTrue, yPred)
	if err != nil {
		t.Fatalf("PrecisionRecallF1() error = %v", err)
	}
	if precision != 0 {
		t.Errorf("precision = %v, want 0 for undefined case", precision)
	}
	if warned == nil {
		t.Error("expected an UndefinedMetricWarning")
	}
}

func TestLogLoss(t *testing.T) {
	yTrue := mat.NewVecDense(2, []float64{1, 0})
	proba := mat.NewVecDense(2, []float64{0.8, 0.2})

	got, err := LogLoss(yTrue, proba)
	if err != nil {
		t.Fatalf("LogLoss() error = %v", err)
	}
	want := -math.Log(0.8) // both terms equal
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("LogLoss() = %v, want %v", got, want)
	}

	// Extreme probabilities must not produce Inf.
	extreme := mat.NewVecDense(2, []float64{1, 0})
	p := mat.NewVecDense(2, []float64{0, 1})
	if v, err := LogLoss(extreme, p); err != nil || math.IsInf(v, 0) {
		t.Errorf("LogLoss() with extreme probabilities = %v, %v", v, err)
	}
}

func TestBrierScore(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 0, 1, 0})
	proba := mat.NewVecDense(4, []float64{0.9, 0.1, 0.6, 0.4})

	got, err := BrierScore(yTrue, proba)
	if err != nil {
		t.Fatalf("BrierScore() error = %v", err)
	}
	want := (0.01 + 0.01 + 0.16 + 0.16) / 4
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("BrierScore() = %v, want %v", got, want)
	}
}
