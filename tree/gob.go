package tree

import (
	"bytes"
	"encoding/gob"

	"github.com/statnotes/statnotes/core/model"
)

// treeSnapshot is the gob wire form of a DecisionTreeClassifier. The fitted
// state lives behind unexported fields, so the round trip goes through an
// explicit snapshot.
type treeSnapshot struct {
	Criterion           string
	MaxDepth            int
	MinSamplesSplit     int
	MinSamplesLeaf      int
	MinImpurityDecrease float64
	MaxFeatures         int
	RandomState         int64

	Root        *Node
	ClassList   []int
	NFeatures   int
	Importances []float64

	Fitted   bool
	NSamples int
}

// GobEncode implements gob.GobEncoder.
func (t *DecisionTreeClassifier) GobEncode() ([]byte, error) {
	_, nSamples := t.state.GetDimensions()
	snap := treeSnapshot{
		Criterion:           t.Criterion,
		MaxDepth:            t.MaxDepth,
		MinSamplesSplit:     t.MinSamplesSplit,
		MinSamplesLeaf:      t.MinSamplesLeaf,
		MinImpurityDecrease: t.MinImpurityDecrease,
		MaxFeatures:         t.MaxFeatures,
		RandomState:         t.RandomState,
		Root:                t.Root,
		ClassList:           t.ClassList,
		NFeatures:           t.NFeatures,
		Importances:         t.Importances,
		Fitted:              t.state.IsFitted(),
		NSamples:            nSamples,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder. The decoded tree is ready for
// prediction when the saved one was fitted.
func (t *DecisionTreeClassifier) GobDecode(data []byte) error {
	var snap treeSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return err
	}
	t.Criterion = snap.Criterion
	t.MaxDepth = snap.MaxDepth
	t.MinSamplesSplit = snap.MinSamplesSplit
	t.MinSamplesLeaf = snap.MinSamplesLeaf
	t.MinImpurityDecrease = snap.MinImpurityDecrease
	t.MaxFeatures = snap.MaxFeatures
	t.RandomState = snap.RandomState
	t.Root = snap.Root
	t.ClassList = snap.ClassList
	t.NFeatures = snap.NFeatures
	t.Importances = snap.Importances

	t.state = model.NewStateManager()
	if snap.Fitted {
		t.state.SetDimensions(snap.NFeatures, snap.NSamples)
		t.state.SetFitted()
	}
	return nil
}
