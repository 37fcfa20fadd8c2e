package survival

import (
	"bytes"
	"encoding/gob"

	"github.com/statnotes/statnotes/core/model"
)

// coxSnapshot is the gob wire form of a CoxPH model; the fitted coefficients
// live behind unexported fields.
type coxSnapshot struct {
	MaxIter int
	Tol     float64

	Coef      []float64
	StdErr    []float64
	LogLik    float64
	AIC       float64
	NIter     int
	Converged bool
	NEvents   int

	Fitted    bool
	NFeatures int
	NSamples  int
}

// GobEncode implements gob.GobEncoder.
func (c *CoxPH) GobEncode() ([]byte, error) {
	nFeatures, nSamples := c.state.GetDimensions()
	snap := coxSnapshot{
		MaxIter:   c.maxIter,
		Tol:       c.tol,
		Coef:      c.coef,
		StdErr:    c.stdErr,
		LogLik:    c.logLik,
		AIC:       c.aic,
		NIter:     c.nIter,
		Converged: c.converged,
		NEvents:   c.nEvents,
		Fitted:    c.state.IsFitted(),
		NFeatures: nFeatures,
		NSamples:  nSamples,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (c *CoxPH) GobDecode(data []byte) error {
	var snap coxSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return err
	}
	c.maxIter = snap.MaxIter
	c.tol = snap.Tol
	c.coef = snap.Coef
	c.stdErr = snap.StdErr
	c.logLik = snap.LogLik
	c.aic = snap.AIC
	c.nIter = snap.NIter
	c.converged = snap.Converged
	c.nEvents = snap.NEvents

	c.state = model.NewStateManager()
	if snap.Fitted {
		c.state.SetDimensions(snap.NFeatures, snap.NSamples)
		c.state.SetFitted()
	}
	return nil
}
