package tree

import (
	"bytes"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/statnotes/statnotes/core/model"
)

func fitSmallTree(t *testing.T) (*DecisionTreeClassifier, *mat.Dense) {
	t.Helper()
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
	dt := NewDecisionTreeClassifier(WithMaxDepth(4))
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	return dt, X
}

func TestDecisionTreeClassifier_GobRoundTrip(t *testing.T) {
	dt, X := fitSmallTree(t)

	var buf bytes.Buffer
	if err := model.SaveModelToWriter(dt, &buf); err != nil {
		t.Fatalf("SaveModelToWriter() error = %v", err)
	}
	loaded := &DecisionTreeClassifier{}
	if err := model.LoadModelFromReader(loaded, &buf); err != nil {
		t.Fatalf("LoadModelFromReader() error = %v", err)
	}

	want, err := dt.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba() on original error = %v", err)
	}
	got, err := loaded.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba() on loaded model error = %v", err)
	}
	if !mat.Equal(want, got) {
		t.Error("loaded model predicts differently from the original")
	}

	if loaded.Depth() != dt.Depth() {
		t.Errorf("Depth() = %d after load, want %d", loaded.Depth(), dt.Depth())
	}
	if len(loaded.Classes()) != len(dt.Classes()) {
		t.Errorf("Classes() = %v after load, want %v", loaded.Classes(), dt.Classes())
	}
}

func TestDecisionTreeClassifier_GobRoundTrip_File(t *testing.T) {
	dt, X := fitSmallTree(t)
	path := filepath.Join(t.TempDir(), "tree.gob")

	if err := model.SaveModel(dt, path); err != nil {
		t.Fatalf("SaveModel() error = %v", err)
	}
	loaded := &DecisionTreeClassifier{}
	if err := model.LoadModel(loaded, path); err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}

	want, _ := dt.Predict(X)
	got, err := loaded.Predict(X)
	if err != nil {
		t.Fatalf("Predict() on loaded model error = %v", err)
	}
	if !mat.Equal(want, got) {
		t.Error("loaded model predicts differently from the original")
	}
}

func TestDecisionTreeClassifier_GobRoundTrip_Unfitted(t *testing.T) {
	var buf bytes.Buffer
	if err := model.SaveModelToWriter(NewDecisionTreeClassifier(), &buf); err != nil {
		t.Fatalf("SaveModelToWriter() error = %v", err)
	}
	loaded := &DecisionTreeClassifier{}
	if err := model.LoadModelFromReader(loaded, &buf); err != nil {
		t.Fatalf("LoadModelFromReader() error = %v", err)
	}

	if loaded.state.IsFitted() {
		t.Error("unfitted model round-tripped as fitted")
	}
	X := mat.NewDense(1, 2, []float64{0, 0})
	if _, err := loaded.PredictProba(X); err == nil {
		t.Error("PredictProba() on an unfitted loaded model should error")
	}
}
