// Package model provides the fitted-state bookkeeping and gob persistence shared by
// the estimators in houseprice.
//
// Preprocessing components embed BaseEstimator; LinearRegression and Pipeline hold a
// *StateManager. Both keep their fields exported so a fitted component survives a
// SaveModel/LoadModel round trip unchanged.
package model

// EstimatorState represents the learning state of a model
type EstimatorState int

const (
	// NotFitted indicates the model is not yet trained
	NotFitted EstimatorState = iota
	// Fitted indicates the model has been trained
	Fitted
)

// BaseEstimator is embedded by the preprocessing transformers.
type BaseEstimator struct {
	// State holds the model's learning state. Public for gob encoding.
	State EstimatorState
}

// IsFitted returns whether the estimator has been fitted.
func (e *BaseEstimator) IsFitted() bool {
	return e.State == Fitted
}

// SetFitted marks the estimator as fitted. Called by Fit implementations only.
func (e *BaseEstimator) SetFitted() {
	e.State = Fitted
}

// Reset returns the estimator to its untrained state.
func (e *BaseEstimator) Reset() {
	e.State = NotFitted
}
