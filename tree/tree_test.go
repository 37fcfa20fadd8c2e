package tree

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestDecisionTreeClassifier_FitPredict_Binary(t *testing.T) {
	// Two well-separated clusters.
	X := mat.NewDense(8, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
		3, 3,
		3, 4,
		4, 3,
		4, 4,
	})
	y := mat.NewDense(8, 1, []float64{
		0, 0, 0, 0,
		1, 1, 1, 1,
	})

	dt := NewDecisionTreeClassifier(
		WithCriterion("gini"),
		WithMaxDepth(5),
	)
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	predictions, err := dt.Predict(X)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}
	for i := 0; i < 8; i++ {
		if predictions.At(i, 0) != y.At(i, 0) {
			t.Errorf("Sample %d: expected %v, got %v", i, y.At(i, 0), predictions.At(i, 0))
		}
	}

	XTest := mat.NewDense(2, 2, []float64{
		0.5, 0.5,
		3.5, 3.5,
	})
	testPreds, err := dt.Predict(XTest)
	if err != nil {
		t.Fatalf("Failed to predict on test data: %v", err)
	}
	if testPreds.At(0, 0) != 0 {
		t.Errorf("Test point (0.5,0.5) should be class 0, got %v", testPreds.At(0, 0))
	}
	if testPreds.At(1, 0) != 1 {
		t.Errorf("Test point (3.5,3.5) should be class 1, got %v", testPreds.At(1, 0))
	}
}

func TestDecisionTreeClassifier_PredictProba(t *testing.T) {
	X := mat.NewDense(6, 1, []float64{0, 1, 2, 10, 11, 12})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	dt := NewDecisionTreeClassifier()
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	proba, err := dt.PredictProba(X)
	if err != nil {
		t.Fatalf("Failed to predict probabilities: %v", err)
	}
	n, k := proba.Dims()
	if k != 2 {
		t.Fatalf("expected 2 probability columns, got %d", k)
	}
	for i := 0; i < n; i++ {
		sum := proba.At(i, 0) + proba.At(i, 1)
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("row %d probabilities sum to %v", i, sum)
		}
	}

	// Pure leaves on separable data.
	if proba.At(0, 0) != 1 || proba.At(5, 1) != 1 {
		t.Errorf("expected pure leaf probabilities, got %v and %v", proba.At(0, 0), proba.At(5, 1))
	}
}

func TestDecisionTreeClassifier_MaxDepthLimitsGrowth(t *testing.T) {
	// XOR-ish grid needs depth 2 to separate.
	X := mat.NewDense(8, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
		0, 0.2,
		0.2, 1,
		1, 0.2,
		0.8, 1,
	})
	y := mat.NewDense(8, 1, []float64{0, 1, 1, 0, 0, 1, 1, 0})

	deep := NewDecisionTreeClassifier()
	if err := deep.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	stump := NewDecisionTreeClassifier(WithMaxDepth(1))
	if err := stump.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if stump.Depth() > 1 {
		t.Errorf("stump depth = %d, want <= 1", stump.Depth())
	}
	if deep.Depth() <= stump.Depth() {
		t.Errorf("unlimited tree depth %d should exceed stump depth %d", deep.Depth(), stump.Depth())
	}
}

func TestDecisionTreeClassifier_MinSamplesLeaf(t *testing.T) {
	X := mat.NewDense(6, 1, []float64{1, 2, 3, 4, 5, 6})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	dt := NewDecisionTreeClassifier(WithMinSamplesLeaf(3))
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	var checkLeaves func(n *Node)
	checkLeaves = func(n *Node) {
		if n == nil {
			return
		}
		if n.Leaf {
			if n.Samples < 3 {
				t.Errorf("leaf with %d samples, want >= 3", n.Samples)
			}
			return
		}
		checkLeaves(n.Left)
		checkLeaves(n.Right)
	}
	checkLeaves(dt.Root)
}

func TestDecisionTreeClassifier_FeatureImportances(t *testing.T) {
	// Only feature 0 is informative.
	X := mat.NewDense(8, 2, []float64{
		0, 5,
		1, 1,
		2, 4,
		3, 2,
		10, 3,
		11, 5,
		12, 1,
		13, 2,
	})
	y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1})

	dt := NewDecisionTreeClassifier()
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	imp := dt.FeatureImportances()
	if imp[0] <= imp[1] {
		t.Errorf("importances = %v, feature 0 should dominate", imp)
	}
	var sum float64
	for _, v := range imp {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("importances sum to %v, want 1", sum)
	}
}

func TestDecisionTreeClassifier_EntropyCriterion(t *testing.T) {
	X := mat.NewDense(6, 1, []float64{1, 2, 3, 7, 8, 9})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	dt := NewDecisionTreeClassifier(WithCriterion("entropy"))
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	acc, err := dt.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if acc != 1 {
		t.Errorf("accuracy = %v, want 1 on separable data", acc)
	}
}

func TestDecisionTreeClassifier_Validation(t *testing.T) {
	dt := NewDecisionTreeClassifier()
	if _, err := dt.Predict(mat.NewDense(1, 1, []float64{1})); err == nil {
		t.Error("Predict() before Fit() should error")
	}

	if err := NewDecisionTreeClassifier(WithCriterion("nope")).Fit(
		mat.NewDense(2, 1, []float64{1, 2}),
		mat.NewDense(2, 1, []float64{0, 1}),
	); err == nil {
		t.Error("Fit() should reject unknown criterion")
	}

	if err := dt.Fit(
		mat.NewDense(2, 1, []float64{1, 2}),
		mat.NewDense(2, 1, []float64{0, 0.5}),
	); err == nil {
		t.Error("Fit() should reject non-integer labels")
	}
}
