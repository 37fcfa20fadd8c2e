// Package tree implements a CART-style decision tree classifier with the
// usual depth and leaf-size controls, used by the classification tutorial
// post both as a baseline and as the subject of hyperparameter tuning.
package tree

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/statnotes/statnotes/core/model"
	"github.com/statnotes/statnotes/pkg/errors"
)

// DecisionTreeClassifier is a binary-split classification tree.
type DecisionTreeClassifier struct {
	state *model.StateManager

	// Hyperparameters.
	Criterion           string  // "gini" or "entropy"
	MaxDepth            int     // 0 means unlimited
	MinSamplesSplit     int
	MinSamplesLeaf      int
	MinImpurityDecrease float64
	MaxFeatures         int   // 0 means all features
	RandomState         int64 // seed for feature subsampling

	Root      *Node
	ClassList []int
	NFeatures int

	Importances []float64
}

// Node is one node of a fitted tree.
type Node struct {
	Leaf      bool
	Feature   int
	Threshold float64 // x <= Threshold goes left
	Left      *Node
	Right     *Node

	Samples int
	Probas  []float64 // aligned with ClassList
	Pred    int       // index into ClassList
}

// Option configures a DecisionTreeClassifier.
type Option func(*DecisionTreeClassifier)

// WithCriterion sets the impurity criterion, "gini" or "entropy".
func WithCriterion(c string) Option {
	return func(t *DecisionTreeClassifier) { t.Criterion = c }
}

// WithMaxDepth limits tree depth; 0 means unlimited.
func WithMaxDepth(d int) Option {
	return func(t *DecisionTreeClassifier) { t.MaxDepth = d }
}

// WithMinSamplesSplit sets the minimum samples required to attempt a split.
func WithMinSamplesSplit(n int) Option {
	return func(t *DecisionTreeClassifier) { t.MinSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum samples required in each child.
func WithMinSamplesLeaf(n int) Option {
	return func(t *DecisionTreeClassifier) { t.MinSamplesLeaf = n }
}

// WithMinImpurityDecrease sets the smallest impurity decrease that justifies
// a split.
func WithMinImpurityDecrease(v float64) Option {
	return func(t *DecisionTreeClassifier) { t.MinImpurityDecrease = v }
}

// WithMaxFeatures limits how many features are examined per split; 0 means
// all.
func WithMaxFeatures(k int) Option {
	return func(t *DecisionTreeClassifier) { t.MaxFeatures = k }
}

// WithRandomState seeds feature subsampling for reproducible trees.
func WithRandomState(seed int64) Option {
	return func(t *DecisionTreeClassifier) { t.RandomState = seed }
}

// NewDecisionTreeClassifier creates a tree with gini impurity and no growth
// limits.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	t := &DecisionTreeClassifier{
		state:           model.NewStateManager(),
		Criterion:       "gini",
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Fit grows the tree on X (n×p) and integer labels y (n×1).
func (t *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	if X == nil || y == nil {
		return errors.NewValueError("DecisionTreeClassifier.Fit", "nil input")
	}
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.NewModelError("DecisionTreeClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	yr, _ := y.Dims()
	if yr != n {
		return errors.NewDimensionError("DecisionTreeClassifier.Fit", n, yr, 0)
	}
	if t.Criterion != "gini" && t.Criterion != "entropy" {
		return errors.NewValueError("DecisionTreeClassifier.Fit", "criterion must be gini or entropy")
	}

	labels := make([]int, n)
	classIndex := map[int]int{}
	t.ClassList = nil
	for i := 0; i < n; i++ {
		v := y.At(i, 0)
		lab := int(v)
		if float64(lab) != v {
			return errors.NewValueError("DecisionTreeClassifier.Fit", "labels must be integers")
		}
		idx, ok := classIndex[lab]
		if !ok {
			idx = len(t.ClassList)
			classIndex[lab] = idx
			t.ClassList = append(t.ClassList, lab)
		}
		labels[i] = idx
	}

	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}

	g := &grower{
		tree:   t,
		X:      X,
		labels: labels,
		k:      len(t.ClassList),
		rng:    rand.New(rand.NewSource(t.RandomState)),
		nTotal: float64(n),
	}
	t.Importances = make([]float64, p)
	t.Root = g.build(rows, 0)
	t.NFeatures = p

	// Normalise importances to sum to one when any split happened.
	var total float64
	for _, v := range t.Importances {
		total += v
	}
	if total > 0 {
		for j := range t.Importances {
			t.Importances[j] /= total
		}
	}

	t.state.SetDimensions(p, n)
	t.state.SetFitted()
	return nil
}

type grower struct {
	tree   *DecisionTreeClassifier
	X      mat.Matrix
	labels []int
	k      int
	rng    *rand.Rand
	nTotal float64
}

func (g *grower) build(rows []int, depth int) *Node {
	t := g.tree
	counts := make([]float64, g.k)
	for _, i := range rows {
		counts[g.labels[i]]++
	}
	node := leafFrom(counts, len(rows))

	imp := g.impurity(counts, float64(len(rows)))
	if imp == 0 ||
		len(rows) < t.MinSamplesSplit ||
		(t.MaxDepth > 0 && depth >= t.MaxDepth) {
		return node
	}

	feature, threshold, decrease, ok := g.bestSplit(rows, counts, imp)
	if !ok || decrease < t.MinImpurityDecrease {
		return node
	}

	var left, right []int
	for _, i := range rows {
		if g.X.At(i, feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < t.MinSamplesLeaf || len(right) < t.MinSamplesLeaf {
		return node
	}

	t.Importances[feature] += decrease * float64(len(rows)) / g.nTotal

	node.Leaf = false
	node.Feature = feature
	node.Threshold = threshold
	node.Left = g.build(left, depth+1)
	node.Right = g.build(right, depth+1)
	return node
}

// bestSplit scans candidate thresholds for the largest impurity decrease.
func (g *grower) bestSplit(rows []int, parentCounts []float64, parentImp float64) (feature int, threshold, decrease float64, ok bool) {
	t := g.tree
	_, p := g.X.Dims()

	features := make([]int, p)
	for j := range features {
		features[j] = j
	}
	if t.MaxFeatures > 0 && t.MaxFeatures < p {
		g.rng.Shuffle(p, func(a, b int) { features[a], features[b] = features[b], features[a] })
		features = features[:t.MaxFeatures]
	}

	n := float64(len(rows))
	best := -1.0

	type pair struct {
		v   float64
		lab int
	}
	pairs := make([]pair, len(rows))

	for _, j := range features {
		for idx, i := range rows {
			pairs[idx] = pair{v: g.X.At(i, j), lab: g.labels[i]}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].v < pairs[b].v })

		leftCounts := make([]float64, g.k)
		rightCounts := append([]float64(nil), parentCounts...)

		for idx := 0; idx < len(pairs)-1; idx++ {
			leftCounts[pairs[idx].lab]++
			rightCounts[pairs[idx].lab]--
			if pairs[idx].v == pairs[idx+1].v {
				continue
			}

			nl := float64(idx + 1)
			nr := n - nl
			if int(nl) < t.MinSamplesLeaf || int(nr) < t.MinSamplesLeaf {
				continue
			}

			child := (nl*g.impurity(leftCounts, nl) + nr*g.impurity(rightCounts, nr)) / n
			dec := parentImp - child
			if dec > best {
				best = dec
				feature = j
				threshold = (pairs[idx].v + pairs[idx+1].v) / 2
			}
		}
	}

	if best <= 0 {
		return 0, 0, 0, false
	}
	return feature, threshold, best, true
}

func (g *grower) impurity(counts []float64, n float64) float64 {
	if n == 0 {
		return 0
	}
	if g.tree.Criterion == "entropy" {
		var h float64
		for _, c := range counts {
			if c == 0 {
				continue
			}
			p := c / n
			h -= p * math.Log2(p)
		}
		return h
	}
	gini := 1.0
	for _, c := range counts {
		p := c / n
		gini -= p * p
	}
	return gini
}

func leafFrom(counts []float64, n int) *Node {
	probas := make([]float64, len(counts))
	pred := 0
	for idx, c := range counts {
		probas[idx] = c / float64(n)
		if c > counts[pred] {
			pred = idx
		}
	}
	return &Node{Leaf: true, Samples: n, Probas: probas, Pred: pred}
}

// Predict returns predicted labels as an n×1 matrix.
func (t *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := t.PredictProba(X)
	if err != nil {
		return nil, err
	}
	n, k := proba.Dims()
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		best := 0
		for j := 1; j < k; j++ {
			if proba.At(i, j) > proba.At(i, best) {
				best = j
			}
		}
		out.Set(i, 0, float64(t.ClassList[best]))
	}
	return out, nil
}

// PredictProba returns class probabilities as an n×k matrix with columns
// ordered as Classes().
func (t *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !t.state.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "PredictProba")
	}
	n, p := X.Dims()
	if p != t.NFeatures {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.PredictProba", t.NFeatures, p, 1)
	}

	out := mat.NewDense(n, len(t.ClassList), nil)
	for i := 0; i < n; i++ {
		node := t.Root
		for !node.Leaf {
			if X.At(i, node.Feature) <= node.Threshold {
				node = node.Left
			} else {
				node = node.Right
			}
		}
		for j, p := range node.Probas {
			out.Set(i, j, p)
		}
	}
	return out, nil
}

// Score returns accuracy on the given data.
func (t *DecisionTreeClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := t.Predict(X)
	if err != nil {
		return 0, err
	}
	n, _ := y.Dims()
	correct := 0
	for i := 0; i < n; i++ {
		if pred.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// Classes returns the labels seen during fitting, in first-seen order.
func (t *DecisionTreeClassifier) Classes() []int { return t.ClassList }

// FeatureImportances returns normalised impurity-decrease importances.
func (t *DecisionTreeClassifier) FeatureImportances() []float64 { return t.Importances }

// Depth returns the depth of the fitted tree; a lone leaf has depth 0.
func (t *DecisionTreeClassifier) Depth() int {
	var walk func(n *Node) int
	walk = func(n *Node) int {
		if n == nil || n.Leaf {
			return 0
		}
		l, r := walk(n.Left), walk(n.Right)
		if l > r {
			return l + 1
		}
		return r + 1
	}
	return walk(t.Root)
}

// NumLeaves counts the leaves of the fitted tree.
func (t *DecisionTreeClassifier) NumLeaves() int {
	var walk func(n *Node) int
	walk = func(n *Node) int {
		if n == nil {
			return 0
		}
		if n.Leaf {
			return 1
		}
		return walk(n.Left) + walk(n.Right)
	}
	return walk(t.Root)
}
