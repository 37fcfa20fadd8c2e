package viz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/statnotes/statnotes/metrics"
)

func TestGroupedScatter_SaveRoundTrip(t *testing.T) {
	fig, err := GroupedScatter("Bill size by species", "length (mm)", "depth (mm)",
		"Scatter plot of bill length against bill depth, one colour per species.",
		[]ScatterGroup{
			{Label: "adelie", X: []float64{39, 40, 41}, Y: []float64{18, 19, 18.5}},
			{Label: "gentoo", X: []float64{46, 47, 48}, Y: []float64{14, 15, 14.5}},
		})
	if err != nil {
		t.Fatalf("GroupedScatter() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "scatter.png")
	if err := fig.SavePNG(path, 0, 0); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size() == 0 {
		t.Error("saved figure is empty")
	}
}

func TestSavePNG_RefusesEmptyAltText(t *testing.T) {
	fig, err := Histogram("Bilirubin", "mg/dl", "Histogram of bilirubin values.",
		[]float64{1, 2, 2, 3, 5, 8}, 5)
	if err != nil {
		t.Fatalf("Histogram() error = %v", err)
	}
	fig.AltText = ""
	if err := fig.SavePNG(filepath.Join(t.TempDir(), "h.png"), 0, 0); err == nil {
		t.Error("SavePNG() without alt text should error")
	}
}

func TestROC(t *testing.T) {
	fig, err := ROC("Tree model ROC", "ROC curve rising above the chance diagonal.",
		[]metrics.ROCPoint{
			{Threshold: 1, FPR: 0, TPR: 0},
			{Threshold: 0.5, FPR: 0.2, TPR: 0.8},
			{Threshold: 0, FPR: 1, TPR: 1},
		})
	if err != nil {
		t.Fatalf("ROC() error = %v", err)
	}
	if err := fig.SavePNG(filepath.Join(t.TempDir(), "roc.png"), 0, 0); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}
}

func TestBar_RejectsMismatchedInput(t *testing.T) {
	if _, err := Bar("t", "y", "alt", []string{"a", "b"}, []float64{1}); err == nil {
		t.Error("Bar() should reject mismatched labels and values")
	}
	if _, err := Bar("t", "y", "alt", nil, nil); err == nil {
		t.Error("Bar() should reject empty input")
	}
}

func TestCalibration(t *testing.T) {
	fig, err := Calibration("Calibration", "Calibration points near the diagonal.",
		[]float64{0.1, 0.5, 0.9}, []float64{0.15, 0.45, 0.85})
	if err != nil {
		t.Fatalf("Calibration() error = %v", err)
	}
	if fig.AltText == "" {
		t.Error("alt text must be carried through")
	}
}
