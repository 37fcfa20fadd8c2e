// Package modelselection provides cross-validation splitters, scoring
// helpers and an exhaustive grid search, used by the classification tutorial
// to tune tree hyperparameters and benchmark models against each other.
package modelselection

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/statnotes/statnotes/pkg/errors"
)

// Splitter generates train/test index pairs for cross-validation.
type Splitter interface {
	Split(X, y mat.Matrix) []Fold
	NumSplits() int
}

// Fold is one train/test partition.
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold splits samples into k consecutive folds, optionally shuffled.
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int
}

// NewKFold creates a k-fold splitter; fewer than 2 splits falls back to 5.
func NewKFold(nSplits int, shuffle bool, randomSeed int) *KFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &KFold{NSplits: nSplits, Shuffle: shuffle, RandomSeed: randomSeed}
}

// NumSplits returns the number of folds.
func (kf *KFold) NumSplits() int { return kf.NSplits }

// Split generates train/test indices for each fold.
func (kf *KFold) Split(X, _ mat.Matrix) []Fold {
	nSamples, _ := X.Dims()

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(kf.RandomSeed), uint64(kf.RandomSeed)))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]Fold, kf.NSplits)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits

	current := 0
	for i := 0; i < kf.NSplits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}

		test := make([]int, testSize)
		copy(test, indices[current:current+testSize])

		train := make([]int, 0, nSamples-testSize)
		train = append(train, indices[:current]...)
		train = append(train, indices[current+testSize:]...)

		folds[i] = Fold{TrainIndices: train, TestIndices: test}
		current += testSize
	}
	return folds
}

// StratifiedKFold keeps each fold's class balance close to the full data's.
type StratifiedKFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int
}

// NewStratifiedKFold creates a stratified splitter; fewer than 2 splits
// falls back to 5.
func NewStratifiedKFold(nSplits int, shuffle bool, randomSeed int) *StratifiedKFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &StratifiedKFold{NSplits: nSplits, Shuffle: shuffle, RandomSeed: randomSeed}
}

// NumSplits returns the number of folds.
func (skf *StratifiedKFold) NumSplits() int { return skf.NSplits }

// Split generates stratified train/test indices for each fold. Labels are
// read from the first column of y.
func (skf *StratifiedKFold) Split(X, y mat.Matrix) []Fold {
	nSamples, _ := X.Dims()

	classIndices := make(map[float64][]int)
	var labels []float64
	for i := 0; i < nSamples; i++ {
		label := y.At(i, 0)
		if _, seen := classIndices[label]; !seen {
			labels = append(labels, label)
		}
		classIndices[label] = append(classIndices[label], i)
	}
	// Iterate classes in a fixed order so the folds are reproducible.
	sort.Float64s(labels)

	if skf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(skf.RandomSeed), uint64(skf.RandomSeed)))
		for _, label := range labels {
			indices := classIndices[label]
			r.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}
	}

	folds := make([]Fold, skf.NSplits)
	for _, label := range labels {
		indices := classIndices[label]
		nClass := len(indices)
		foldSize := nClass / skf.NSplits
		remainder := nClass % skf.NSplits

		current := 0
		for i := 0; i < skf.NSplits; i++ {
			testSize := foldSize
			if i < remainder {
				testSize++
			}
			for j := 0; j < testSize && current < nClass; j++ {
				folds[i].TestIndices = append(folds[i].TestIndices, indices[current])
				current++
			}
		}
	}

	for i := range folds {
		testSet := make(map[int]bool, len(folds[i].TestIndices))
		for _, idx := range folds[i].TestIndices {
			testSet[idx] = true
		}
		for j := 0; j < nSamples; j++ {
			if !testSet[j] {
				folds[i].TrainIndices = append(folds[i].TrainIndices, j)
			}
		}
	}
	return folds
}

// TrainTestSplit shuffles the rows and splits them into a training and a
// test set of the given test fraction.
func TrainTestSplit(X, y mat.Matrix, testSize float64, seed int) (XTrain, XTest, yTrain, yTest *mat.Dense, err error) {
	if X == nil || y == nil {
		return nil, nil, nil, nil, errors.NewValueError("modelselection.TrainTestSplit", "nil input")
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, nil, nil, errors.NewValueError("modelselection.TrainTestSplit", "test size must be in (0, 1)")
	}
	n, _ := X.Dims()
	nTest := int(float64(n) * testSize)
	if nTest < 1 || n-nTest < 1 {
		return nil, nil, nil, nil, errors.NewValueError("modelselection.TrainTestSplit", "too few rows to split")
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	r.Shuffle(n, func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })

	XTest, yTest = extractRows(X, y, indices[:nTest])
	XTrain, yTrain = extractRows(X, y, indices[nTest:])
	return XTrain, XTest, yTrain, yTest, nil
}

// extractRows gathers the given rows of X and y into fresh matrices.
func extractRows(X, y mat.Matrix, indices []int) (*mat.Dense, *mat.Dense) {
	_, p := X.Dims()
	_, q := y.Dims()
	xs := mat.NewDense(len(indices), p, nil)
	ys := mat.NewDense(len(indices), q, nil)
	for r, i := range indices {
		for j := 0; j < p; j++ {
			xs.Set(r, j, X.At(i, j))
		}
		for j := 0; j < q; j++ {
			ys.Set(r, j, y.At(i, j))
		}
	}
	return xs, ys
}
