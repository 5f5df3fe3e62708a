package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"loan-predictor/domain"
)

// RemoteConfig points at a scoring service that hosts the trained model.
type RemoteConfig struct {
	URL          string
	Timeout      time.Duration
	MaxRetries   int
	BreakerFails int
	BreakerOpen  time.Duration
}

// RemoteClassifier calls an HTTP scoring endpoint:
// POST {"features": [...]} -> {"prediction": 0|1}.
type RemoteClassifier struct {
	url        string
	httpClient *http.Client
	maxRetries int
	breaker    *gobreaker.CircuitBreaker
}

type scoreRequest struct {
	Features []float64 `json:"features"`
}

type scoreResponse struct {
	Prediction int `json:"prediction"`
}

func NewRemoteClassifier(cfg RemoteConfig) *RemoteClassifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.BreakerFails <= 0 {
		cfg.BreakerFails = 5
	}
	if cfg.BreakerOpen <= 0 {
		cfg.BreakerOpen = 30 * time.Second
	}
	fails := uint32(cfg.BreakerFails)

	return &RemoteClassifier{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "scoring-service",
			Timeout: cfg.BreakerOpen,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= fails
			},
		}),
	}
}

func (r *RemoteClassifier) Predict(ctx context.Context, features domain.FeatureVector) (int, error) {
	res, err := r.breaker.Execute(func() (interface{}, error) {
		var label int
		op := func() error {
			var err error
			label, err = r.score(ctx, features)
			return err
		}
		bo := backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(r.maxRetries)),
			ctx,
		)
		if err := backoff.Retry(op, bo); err != nil {
			return nil, err
		}
		return label, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return 0, fmt.Errorf("remote classifier: %w: %w", ErrModelUnavailable, err)
	}
	if err != nil {
		return 0, fmt.Errorf("remote classifier: %w", err)
	}
	return res.(int), nil
}

// State reports the circuit breaker state, e.g. for readiness checks.
func (r *RemoteClassifier) State() string {
	return r.breaker.State().String()
}

func (r *RemoteClassifier) score(ctx context.Context, features domain.FeatureVector) (int, error) {
	body, err := json.Marshal(scoreRequest{Features: features.Slice()})
	if err != nil {
		return 0, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return 0, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("scoring service error (status %d): %s", resp.StatusCode, string(msg))
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, backoff.Permanent(fmt.Errorf("scoring service rejected request (status %d): %s", resp.StatusCode, string(msg)))
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, backoff.Permanent(fmt.Errorf("decode score: %w", err))
	}
	if out.Prediction != LabelDenied && out.Prediction != LabelApproved {
		return 0, backoff.Permanent(errors.New("scoring service returned a non-binary label"))
	}
	return out.Prediction, nil
}
