package ml

import (
	"context"
	"sync/atomic"

	"loan-predictor/domain"
)

type classifierBox struct {
	c Classifier
}

// Registry holds the active classifier and lets it be swapped while requests
// are in flight.
type Registry struct {
	current atomic.Pointer[classifierBox]
	loads   atomic.Int64
}

func NewRegistry(initial Classifier) *Registry {
	r := &Registry{}
	if initial != nil {
		r.Set(initial)
	}
	return r
}

// Set installs c. A nil c unloads the current classifier.
func (r *Registry) Set(c Classifier) {
	if c == nil {
		r.current.Store(nil)
	} else {
		r.current.Store(&classifierBox{c: c})
	}
	r.loads.Add(1)
}

// Loaded reports whether a classifier is available.
func (r *Registry) Loaded() bool {
	return r.current.Load() != nil
}

// Loads counts how many classifiers have been installed.
func (r *Registry) Loads() int64 {
	return r.loads.Load()
}

func (r *Registry) Predict(ctx context.Context, features domain.FeatureVector) (int, error) {
	box := r.current.Load()
	if box == nil {
		return 0, ErrModelNotLoaded
	}
	return box.c.Predict(ctx, features)
}
