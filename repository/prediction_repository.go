package repository

import (
	"context"

	"loan-predictor/domain"
)

type PredictionRepository interface {
	Save(ctx context.Context, prediction domain.Prediction) error
	Recent(ctx context.Context, limit int) ([]domain.Prediction, error)
}
