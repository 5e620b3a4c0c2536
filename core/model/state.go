// Package model holds the state shared by every estimator in coffeestats.
//
// Estimators compose a StateManager instead of embedding a base type:
//
//	type KMeans struct {
//		state *model.StateManager
//		...
//	}
//
//	func (km *KMeans) Fit(X mat.Matrix) (*Assignment, error) {
//		...
//		km.state.SetDimensions(nFeatures, nSamples)
//		km.state.SetFitted()
//	}
//
// Predict and Transform check IsFitted and NFeatures before touching learned
// parameters.
package model

import "sync"

// StateManager tracks whether an estimator has been fitted and on what shape.
// It is safe for concurrent use.
type StateManager struct {
	mu        sync.RWMutex
	fitted    bool
	nFeatures int
	nSamples  int
}

// NewStateManager returns an unfitted StateManager.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted reports whether SetFitted has been called since the last Reset.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// SetFitted marks the estimator as trained.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = true
}

// SetDimensions records the training shape.
func (s *StateManager) SetDimensions(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nFeatures = nFeatures
	s.nSamples = nSamples
}

// NFeatures returns the number of features seen during Fit.
func (s *StateManager) NFeatures() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nFeatures
}

// NSamples returns the number of samples seen during Fit.
func (s *StateManager) NSamples() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nSamples
}

// Reset returns the estimator to its untrained state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = false
	s.nFeatures = 0
	s.nSamples = 0
}
