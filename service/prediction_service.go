package service

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"loan-predictor/domain"
	"loan-predictor/metrics"
	"loan-predictor/ml"
	"loan-predictor/repository"
)

// PredictionOptions wires the collaborators of a PredictionService. Cache,
// Validator and Advisor are optional.
type PredictionOptions struct {
	Classifier   ml.Classifier
	Repository   repository.PredictionRepository
	Cache        repository.CacheRepository
	Validator    *ApplicantValidator
	Advisor      *Advisor
	Metrics      *metrics.Metrics
	Logger       *zap.Logger
	InterestRate float64
}

type PredictionService struct {
	classifier   ml.Classifier
	repo         repository.PredictionRepository
	cache        repository.CacheRepository
	validator    *ApplicantValidator
	advisor      *Advisor
	installments *InstallmentCalculator
	metrics      *metrics.Metrics
	logger       *zap.Logger
	interestRate float64
	now          func() time.Time
}

// NewPredictionService creates a new PredictionService with the given collaborators.
func NewPredictionService(opts PredictionOptions) *PredictionService {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PredictionService{
		classifier:   opts.Classifier,
		repo:         opts.Repository,
		cache:        opts.Cache,
		validator:    opts.Validator,
		advisor:      opts.Advisor,
		installments: NewInstallmentCalculator(),
		metrics:      opts.Metrics,
		logger:       logger,
		interestRate: opts.InterestRate,
		now:          time.Now,
	}
}

// Predict encodes input, classifies it and records the outcome.
func (s *PredictionService) Predict(
	ctx context.Context,
	input domain.ApplicantInput,
) (domain.Prediction, error) {
	start := s.now()

	if s.validator != nil {
		if err := s.validator.Validate(input); err != nil {
			s.observeError("validate")
			return domain.Prediction{}, err
		}
	}

	features := Encode(input)
	if fields := Fallbacks(input); len(fields) > 0 {
		s.logger.Debug("encoder fallback", zap.Strings("fields", fields))
		if s.metrics != nil {
			s.metrics.ObserveFallbacks(fields)
		}
	}

	label, cached, err := s.classify(ctx, features)
	if err != nil {
		s.observeError("classify")
		return domain.Prediction{}, err
	}

	approved := label == ml.LabelApproved
	prediction := domain.Prediction{
		ID:        uuid.NewString(),
		Input:     input,
		Features:  features,
		Label:     label,
		Approved:  approved,
		Message:   domain.DeniedMessage,
		Cached:    cached,
		CreatedAt: start.UTC(),
	}
	if approved {
		prediction.Message = domain.ApprovedMessage
	}

	installment, err := s.installments.Calculate(domain.InstallmentRequest{
		Principal:  input.LoanAmount * LoanAmountUnit,
		AnnualRate: s.interestRate,
		TermMonths: int(input.LoanTermMonths),
	})
	if err != nil {
		s.logger.Debug("no installment estimate", zap.Error(err))
	} else {
		prediction.MonthlyPayment = installment.MonthlyPayment
	}

	if s.advisor != nil {
		prediction.Explanation = s.advisor.Explain(ctx, input, approved, prediction.MonthlyPayment)
	}

	// History is not critical for the response.
	if s.repo != nil {
		if err := s.repo.Save(ctx, prediction); err != nil {
			s.observeError("save")
			s.logger.Warn("failed to save prediction", zap.String("id", prediction.ID), zap.Error(err))
		}
	}

	took := s.now().Sub(start)
	if s.metrics != nil {
		s.metrics.ObservePrediction(approved, cached, took)
	}
	s.logger.Info("prediction",
		zap.String("id", prediction.ID),
		zap.Bool("approved", approved),
		zap.Bool("cached", cached),
		zap.Duration("took", took),
	)

	return prediction, nil
}

// Recent returns the newest stored predictions.
func (s *PredictionService) Recent(ctx context.Context, limit int) ([]domain.Prediction, error) {
	if s.repo == nil {
		return nil, errors.New("prediction history is disabled")
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return s.repo.Recent(ctx, limit)
}

func (s *PredictionService) classify(ctx context.Context, features domain.FeatureVector) (int, bool, error) {
	key := CacheKey(features)
	if g, ok := s.classifier.(modelGeneration); ok {
		key = fmt.Sprintf("%s:g%d", key, g.Loads())
	}

	if s.cache != nil {
		if val, ok := s.cache.Get(ctx, key); ok {
			if label, err := strconv.Atoi(val); err == nil {
				return label, true, nil
			}
			s.logger.Warn("ignoring malformed cache entry", zap.String("key", key))
		}
	}

	label, err := s.classifier.Predict(ctx, features)
	if err != nil {
		return 0, false, fmt.Errorf("classify: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, strconv.Itoa(label)); err != nil {
			s.logger.Warn("failed to cache prediction", zap.Error(err))
		}
	}
	return label, false, nil
}

func (s *PredictionService) observeError(stage string) {
	if s.metrics != nil {
		s.metrics.ObserveError(stage)
	}
}

// modelGeneration is implemented by classifiers that can be swapped at runtime,
// so cached labels from an older model are not served after a reload.
type modelGeneration interface {
	Loads() int64
}

// CacheKey identifies a feature vector. Equal vectors share a key.
func CacheKey(features domain.FeatureVector) string {
	var buf [domain.FeatureVectorLen * 8]byte
	for i, f := range features {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return fmt.Sprintf("pred:%016x", xxhash.Sum64(buf[:]))
}
