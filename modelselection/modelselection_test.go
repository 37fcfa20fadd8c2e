package modelselection

import (
	"context"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/statnotes/statnotes/tree"
)

// clusters builds a linearly separable two-class dataset.
func clusters(nPerClass int) (*mat.Dense, *mat.Dense) {
	n := 2 * nPerClass
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < nPerClass; i++ {
		X.Set(i, 0, float64(i%5))
		X.Set(i, 1, float64(i%3))
		X.Set(nPerClass+i, 0, 10+float64(i%5))
		X.Set(nPerClass+i, 1, 10+float64(i%3))
		y.Set(nPerClass+i, 0, 1)
	}
	return X, y
}

func TestKFold_PartitionsAllSamples(t *testing.T) {
	X, y := clusters(11) // 22 samples, 5 folds of uneven size

	kf := NewKFold(5, true, 42)
	folds := kf.Split(X, y)
	if len(folds) != 5 {
		t.Fatalf("len(folds) = %d, want 5", len(folds))
	}

	seen := map[int]int{}
	for _, f := range folds {
		if len(f.TrainIndices)+len(f.TestIndices) != 22 {
			t.Errorf("fold sizes %d + %d != 22", len(f.TrainIndices), len(f.TestIndices))
		}
		overlap := map[int]bool{}
		for _, i := range f.TrainIndices {
			overlap[i] = true
		}
		for _, i := range f.TestIndices {
			if overlap[i] {
				t.Errorf("index %d appears in both train and test", i)
			}
			seen[i]++
		}
		if len(f.TestIndices) < 4 || len(f.TestIndices) > 5 {
			t.Errorf("test fold size = %d, want 4 or 5", len(f.TestIndices))
		}
	}
	for i := 0; i < 22; i++ {
		if seen[i] != 1 {
			t.Errorf("index %d tested %d times, want exactly once", i, seen[i])
		}
	}
}

func TestStratifiedKFold_KeepsClassBalance(t *testing.T) {
	// 30 of class 0, 10 of class 1.
	X := mat.NewDense(40, 1, nil)
	y := mat.NewDense(40, 1, nil)
	for i := 30; i < 40; i++ {
		y.Set(i, 0, 1)
	}

	folds := NewStratifiedKFold(5, true, 7).Split(X, y)
	for fi, f := range folds {
		ones := 0
		for _, i := range f.TestIndices {
			if y.At(i, 0) == 1 {
				ones++
			}
		}
		if ones != 2 {
			t.Errorf("fold %d has %d minority samples, want 2", fi, ones)
		}
		if len(f.TestIndices) != 8 {
			t.Errorf("fold %d test size = %d, want 8", fi, len(f.TestIndices))
		}
	}
}

func TestTrainTestSplit(t *testing.T) {
	X, y := clusters(20)

	XTrain, XTest, yTrain, yTest, err := TrainTestSplit(X, y, 0.25, 3)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}
	ntr, _ := XTrain.Dims()
	nte, _ := XTest.Dims()
	if ntr != 30 || nte != 10 {
		t.Errorf("split sizes = (%d, %d), want (30, 10)", ntr, nte)
	}
	if r, _ := yTrain.Dims(); r != ntr {
		t.Errorf("yTrain rows = %d, want %d", r, ntr)
	}
	if r, _ := yTest.Dims(); r != nte {
		t.Errorf("yTest rows = %d, want %d", r, nte)
	}

	if _, _, _, _, err := TrainTestSplit(X, y, 0, 3); err == nil {
		t.Error("TrainTestSplit() should reject test size 0")
	}
}

func TestCrossValScore_TreeOnSeparableData(t *testing.T) {
	X, y := clusters(20)

	cv, err := CrossValScore(func() Estimator {
		return tree.NewDecisionTreeClassifier(tree.WithMaxDepth(3))
	}, X, y, NewStratifiedKFold(5, true, 1))
	if err != nil {
		t.Fatalf("CrossValScore() error = %v", err)
	}
	if len(cv.TestScores) != 5 {
		t.Fatalf("len(TestScores) = %d, want 5", len(cv.TestScores))
	}
	if cv.MeanTestScore() < 0.9 {
		t.Errorf("mean test accuracy = %v, want >= 0.9 on separable data", cv.MeanTestScore())
	}
	if cv.StdTestScore() < 0 || math.IsNaN(cv.StdTestScore()) {
		t.Errorf("std = %v", cv.StdTestScore())
	}
}

func TestParamGrid_Candidates(t *testing.T) {
	grid := ParamGrid{
		"max_depth":        {1, 2, 3},
		"min_samples_leaf": {1, 5},
	}
	cands := grid.Candidates()
	if len(cands) != 6 {
		t.Fatalf("len(candidates) = %d, want 6", len(cands))
	}
	for _, c := range cands {
		if len(c) != 2 {
			t.Errorf("candidate %v missing parameters", c)
		}
	}
}

func TestGridSearchCV_PicksBestDepth(t *testing.T) {
	X, y := clusters(25)

	factory := func(params map[string]float64) Estimator {
		return tree.NewDecisionTreeClassifier(
			tree.WithMaxDepth(int(params["max_depth"])),
			tree.WithMinSamplesLeaf(int(params["min_samples_leaf"])),
		)
	}
	gs := NewGridSearchCV(factory, ParamGrid{
		"max_depth":        {1, 3},
		"min_samples_leaf": {1, 2},
	}, WithSplitter(NewStratifiedKFold(5, true, 2)))

	res, err := gs.Fit(context.Background(), X, y)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if len(res.All) != 4 {
		t.Fatalf("len(All) = %d, want 4", len(res.All))
	}
	for _, c := range res.All {
		if c.MeanScore > res.Best.MeanScore {
			t.Errorf("candidate %v beats reported best %v", c.MeanScore, res.Best.MeanScore)
		}
	}
	// A depth-1 stump already separates these clusters.
	if res.Best.MeanScore < 0.9 {
		t.Errorf("best score = %v, want >= 0.9", res.Best.MeanScore)
	}
}

func TestBenchmark(t *testing.T) {
	X, y := clusters(20)

	rows, err := Benchmark([]BenchmarkEntry{
		{Name: "stump", Factory: func() Estimator {
			return tree.NewDecisionTreeClassifier(tree.WithMaxDepth(1))
		}},
		{Name: "tree", Factory: func() Estimator {
			return tree.NewDecisionTreeClassifier()
		}},
	}, X, y, NewStratifiedKFold(4, true, 9))
	if err != nil {
		t.Fatalf("Benchmark() error = %v", err)
	}
	if len(rows) != 2 || rows[0].Name != "stump" || rows[1].Name != "tree" {
		t.Errorf("unexpected rows %+v", rows)
	}
}
