package metrics

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/statnotes/statnotes/pkg/errors"
)

// AUC computes the area under the ROC curve for binary labels and
// continuous scores, by the Mann-Whitney pair-counting identity. Tied
// scores count half. When only one class is present the metric is
// undefined; a warning is emitted and 0.5 returned.
func AUC(yTrue, yScore *mat.VecDense) (float64, error) {
	n, err := checkPair("AUC", yTrue, yScore)
	if err != nil {
		return 0, err
	}

	nPos, nNeg := 0, 0
	for i := 0; i < n; i++ {
		switch yTrue.AtVec(i) {
		case 1:
			nPos++
		case 0:
			nNeg++
		default:
			return 0, errors.NewValueError("AUC", "labels must be 0 or 1")
		}
	}
	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("AUC", "only one class present", 0.5))
		return 0.5, nil
	}

	var concordant, tied float64
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) != 1 {
			continue
		}
		for j := 0; j < n; j++ {
			if yTrue.AtVec(j) != 0 {
				continue
			}
			switch {
			case yScore.AtVec(i) > yScore.AtVec(j):
				concordant++
			case yScore.AtVec(i) == yScore.AtVec(j):
				tied++
			}
		}
	}
	return (concordant + 0.5*tied) / float64(nPos*nNeg), nil
}

// AUCMatrix scores the first columns of matrix-shaped inputs.
func AUCMatrix(yTrue, yScore mat.Matrix) (float64, error) {
	t, err := firstColumn("AUCMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	s, err := firstColumn("AUCMatrix", yScore)
	if err != nil {
		return 0, err
	}
	return AUC(t, s)
}

// ROCPoint is one operating point of a ROC curve.
type ROCPoint struct {
	Threshold float64
	FPR       float64
	TPR       float64
}

// ROCCurve returns the ROC operating points, one per distinct score,
// ordered from the (0,0) corner to (1,1).
func ROCCurve(yTrue, yScore *mat.VecDense) ([]ROCPoint, error) {
	n, err := checkPair("ROCCurve", yTrue, yScore)
	if err != nil {
		return nil, err
	}

	nPos, nNeg := 0, 0
	for i := 0; i < n; i++ {
		switch yTrue.AtVec(i) {
		case 1:
			nPos++
		case 0:
			nNeg++
		default:
			return nil, errors.NewValueError("ROCCurve", "labels must be 0 or 1")
		}
	}
	if nPos == 0 || nNeg == 0 {
		return nil, errors.NewValueError("ROCCurve", "need both classes present")
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return yScore.AtVec(order[a]) > yScore.AtVec(order[b])
	})

	points := []ROCPoint{{Threshold: yScore.AtVec(order[0]) + 1, FPR: 0, TPR: 0}}
	tp, fp := 0, 0
	for k := 0; k < n; k++ {
		i := order[k]
		if yTrue.AtVec(i) == 1 {
			tp++
		} else {
			fp++
		}
		// Emit a point only after the last of a run of tied scores.
		if k+1 < n && yScore.AtVec(order[k+1]) == yScore.AtVec(i) {
			continue
		}
		points = append(points, ROCPoint{
			Threshold: yScore.AtVec(i),
			FPR:       float64(fp) / float64(nNeg),
			TPR:       float64(tp) / float64(nPos),
		})
	}
	return points, nil
}
