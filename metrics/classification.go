package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/statnotes/statnotes/pkg/errors"
)

// Accuracy computes the fraction of exactly matching labels.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// AccuracyMatrix scores the first columns of matrix-shaped labels.
func AccuracyMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, err := firstColumn("AccuracyMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	p, err := firstColumn("AccuracyMatrix", yPred)
	if err != nil {
		return 0, err
	}
	return Accuracy(t, p)
}

// ConfusionMatrix counts binary outcomes as [TN, FP, FN, TP].
func ConfusionMatrix(yTrue, yPred *mat.VecDense) (tn, fp, fn, tp int, err error) {
	n, err := checkPair("ConfusionMatrix", yTrue, yPred)
	if err != nil {
		return 0, 0, 0, 0, err
	}

	for i := 0; i < n; i++ {
		yt, yp := yTrue.AtVec(i), yPred.AtVec(i)
		if yt != 0 && yt != 1 || yp != 0 && yp != 1 {
			return 0, 0, 0, 0, errors.NewValueError("ConfusionMatrix", "labels must be 0 or 1")
		}
		switch {
		case yt == 0 && yp == 0:
			tn++
		case yt == 0 && yp == 1:
			fp++
		case yt == 1 && yp == 0:
			fn++
		default:
			tp++
		}
	}
	return tn, fp, fn, tp, nil
}

// PrecisionRecallF1 computes the three binary scores. When a denominator is
// zero the score is ill-defined; an UndefinedMetricWarning is emitted and 0
// is returned for that score.
func PrecisionRecallF1(yTrue, yPred *mat.VecDense) (precision, recall, f1 float64, err error) {
	_, fp, fn, tp, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, 0, 0, err
	}

	if tp+fp == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("precision", "no positive predictions", 0))
	} else {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("recall", "no positive labels", 0))
	} else {
		recall = float64(tp) / float64(tp+fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1, nil
}

// LogLoss computes the negative mean log-likelihood of binary labels under
// predicted probabilities. Probabilities are clipped away from 0 and 1.
func LogLoss(yTrue, proba *mat.VecDense) (float64, error) {
	n, err := checkPair("LogLoss", yTrue, proba)
	if err != nil {
		return 0, err
	}

	const eps = 1e-15
	var sum float64
	for i := 0; i < n; i++ {
		yt := yTrue.AtVec(i)
		if yt != 0 && yt != 1 {
			return 0, errors.NewValueError("LogLoss", "labels must be 0 or 1")
		}
		p := errors.ClipValue(proba.AtVec(i), eps, 1-eps)
		if yt == 1 {
			sum -= math.Log(p)
		} else {
			sum -= math.Log(1 - p)
		}
	}
	return sum / float64(n), nil
}

// BrierScore computes the mean squared difference between binary labels and
// predicted probabilities.
func BrierScore(yTrue, proba *mat.VecDense) (float64, error) {
	n, err := checkPair("BrierScore", yTrue, proba)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		yt := yTrue.AtVec(i)
		if yt != 0 && yt != 1 {
			return 0, errors.NewValueError("BrierScore", "labels must be 0 or 1")
		}
		d := yt - proba.AtVec(i)
		sum += d * d
	}
	return sum / float64(n), nil
}
