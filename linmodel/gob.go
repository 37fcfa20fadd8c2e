package linmodel

import (
	"bytes"
	"encoding/gob"

	"github.com/statnotes/statnotes/core/model"
)

// The fitted coefficients live behind unexported fields, so gob persistence
// for both models goes through explicit snapshot structs.

type linearSnapshot struct {
	FitIntercept bool

	Coef      []float64
	Intercept float64
	StdErr    []float64
	Sigma2    float64
	LogLik    float64
	AIC       float64
	NParams   int

	Fitted    bool
	NFeatures int
	NSamples  int
}

// GobEncode implements gob.GobEncoder.
func (lr *LinearRegression) GobEncode() ([]byte, error) {
	nFeatures, nSamples := lr.state.GetDimensions()
	snap := linearSnapshot{
		FitIntercept: lr.fitIntercept,
		Coef:         lr.coef,
		Intercept:    lr.intercept,
		StdErr:       lr.stdErr,
		Sigma2:       lr.sigma2,
		LogLik:       lr.logLik,
		AIC:          lr.aic,
		NParams:      lr.nParams,
		Fitted:       lr.state.IsFitted(),
		NFeatures:    nFeatures,
		NSamples:     nSamples,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (lr *LinearRegression) GobDecode(data []byte) error {
	var snap linearSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return err
	}
	lr.fitIntercept = snap.FitIntercept
	lr.coef = snap.Coef
	lr.intercept = snap.Intercept
	lr.stdErr = snap.StdErr
	lr.sigma2 = snap.Sigma2
	lr.logLik = snap.LogLik
	lr.aic = snap.AIC
	lr.nParams = snap.NParams

	lr.state = model.NewStateManager()
	if snap.Fitted {
		lr.state.SetDimensions(snap.NFeatures, snap.NSamples)
		lr.state.SetFitted()
	}
	return nil
}

type logisticSnapshot struct {
	FitIntercept bool
	MaxIter      int
	Tol          float64

	Coef      []float64
	Intercept float64
	StdErr    []float64
	LogLik    float64
	AIC       float64
	NIter     int
	Converged bool

	Fitted    bool
	NFeatures int
	NSamples  int
}

// GobEncode implements gob.GobEncoder.
func (lr *LogisticRegression) GobEncode() ([]byte, error) {
	nFeatures, nSamples := lr.state.GetDimensions()
	snap := logisticSnapshot{
		FitIntercept: lr.fitIntercept,
		MaxIter:      lr.maxIter,
		Tol:          lr.tol,
		Coef:         lr.coef,
		Intercept:    lr.intercept,
		StdErr:       lr.stdErr,
		LogLik:       lr.logLik,
		AIC:          lr.aic,
		NIter:        lr.nIter,
		Converged:    lr.converged,
		Fitted:       lr.state.IsFitted(),
		NFeatures:    nFeatures,
		NSamples:     nSamples,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (lr *LogisticRegression) GobDecode(data []byte) error {
	var snap logisticSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return err
	}
	lr.fitIntercept = snap.FitIntercept
	lr.maxIter = snap.MaxIter
	lr.tol = snap.Tol
	lr.coef = snap.Coef
	lr.intercept = snap.Intercept
	lr.stdErr = snap.StdErr
	lr.logLik = snap.LogLik
	lr.aic = snap.AIC
	lr.nIter = snap.NIter
	lr.converged = snap.Converged

	lr.state = model.NewStateManager()
	if snap.Fitted {
		lr.state.SetDimensions(snap.NFeatures, snap.NSamples)
		lr.state.SetFitted()
	}
	return nil
}
