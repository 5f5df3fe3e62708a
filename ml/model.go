package ml

import (
	"context"
	"errors"

	"loan-predictor/domain"
)

const (
	LabelDenied   = 0
	LabelApproved = 1
)

var (
	ErrModelNotLoaded   = errors.New("model not loaded")
	ErrModelUnavailable = errors.New("model temporarily unavailable")
	ErrFeatureShape     = errors.New("feature index out of range")
)

// Classifier is a trained binary loan-approval model.
type Classifier interface {
	Predict(ctx context.Context, features domain.FeatureVector) (int, error)
}
