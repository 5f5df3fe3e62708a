package repository

import (
	"context"
	"sync"

	"loan-predictor/domain"
)

// MaxMemoryPredictions bounds the in-memory history; older entries are dropped.
const MaxMemoryPredictions = 200

// PredictionRepositoryMemory is an in-memory implementation of PredictionRepository.
type PredictionRepositoryMemory struct {
	mu   sync.RWMutex
	data []domain.Prediction
}

// NewPredictionRepositoryMemory creates a new in-memory prediction repository.
func NewPredictionRepositoryMemory() *PredictionRepositoryMemory {
	return &PredictionRepositoryMemory{
		data: []domain.Prediction{},
	}
}

// Save stores the prediction in memory.
func (r *PredictionRepositoryMemory) Save(
	_ context.Context,
	prediction domain.Prediction,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, prediction)
	if over := len(r.data) - MaxMemoryPredictions; over > 0 {
		r.data = append(r.data[:0], r.data[over:]...)
	}
	return nil
}

// Recent returns up to limit predictions, newest first.
func (r *PredictionRepositoryMemory) Recent(_ context.Context, limit int) ([]domain.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.data) {
		limit = len(r.data)
	}
	out := make([]domain.Prediction, 0, limit)
	for i := len(r.data) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.data[i])
	}
	return out, nil
}
