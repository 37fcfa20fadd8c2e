package survival

import (
	"bytes"
	"math"
	"testing"

	"github.com/statnotes/statnotes/core/model"
)

func TestCoxPH_GobRoundTrip(t *testing.T) {
	X, y := simulateSurvival(120, 7)

	cph := NewCoxPH()
	if err := cph.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	var buf bytes.Buffer
	if err := model.SaveModelToWriter(cph, &buf); err != nil {
		t.Fatalf("SaveModelToWriter() error = %v", err)
	}
	loaded := &CoxPH{}
	if err := model.LoadModelFromReader(loaded, &buf); err != nil {
		t.Fatalf("LoadModelFromReader() error = %v", err)
	}

	want, _ := cph.Risk(X)
	got, err := loaded.Risk(X)
	if err != nil {
		t.Fatalf("Risk() on loaded model error = %v", err)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("Risk()[%d] = %v after load, want %v", i, got[i], want[i])
		}
	}

	if math.Abs(loaded.AIC()-cph.AIC()) > 1e-12 {
		t.Errorf("AIC() = %v after load, want %v", loaded.AIC(), cph.AIC())
	}
	if loaded.NEvents() != cph.NEvents() {
		t.Errorf("NEvents() = %d after load, want %d", loaded.NEvents(), cph.NEvents())
	}

	wantScore, _ := cph.Score(X, y)
	gotScore, err := loaded.Score(X, y)
	if err != nil {
		t.Fatalf("Score() on loaded model error = %v", err)
	}
	if wantScore != gotScore {
		t.Errorf("Score() = %v after load, want %v", gotScore, wantScore)
	}
}
