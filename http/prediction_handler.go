package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"loan-predictor/domain"
	"loan-predictor/ml"
	"loan-predictor/service"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

type PredictionHandler struct {
	service *service.PredictionService
	logger  *zap.Logger
}

func NewPredictionHandler(service *service.PredictionService, logger *zap.Logger) *PredictionHandler {
	return &PredictionHandler{service: service, logger: logger}
}

type encodeResponse struct {
	Features []float64 `json:"features"`
	Names    []string  `json:"names"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Predict handles POST /api/predict.
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeApplicant(w, r)
	if !ok {
		return
	}

	result, err := h.service.Predict(r.Context(), input)
	switch {
	case errors.Is(err, service.ErrInvalidApplicant):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, ml.ErrModelNotLoaded):
		h.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "model not loaded"})
		return
	case errors.Is(err, ml.ErrModelUnavailable):
		h.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "model temporarily unavailable"})
		return
	case err != nil:
		h.logger.Error("prediction failed", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "prediction failed"})
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// Encode handles POST /api/encode and returns the feature vector without classifying it.
func (h *PredictionHandler) Encode(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeApplicant(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, encodeResponse{
		Features: service.Encode(input).Slice(),
		Names:    service.FeatureNames(),
	})
}

// History handles GET /api/predictions?limit=N.
func (h *PredictionHandler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	predictions, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("load history", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "history unavailable"})
		return
	}
	if predictions == nil {
		predictions = []domain.Prediction{}
	}
	h.writeJSON(w, http.StatusOK, predictions)
}

func (h *PredictionHandler) decodeApplicant(w http.ResponseWriter, r *http.Request) (domain.ApplicantInput, bool) {
	var input domain.ApplicantInput

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return input, false
	}

	contentType := r.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return input, false
	}

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		h.logger.Debug("decode request body", zap.Error(err))
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return input, false
	}
	return input, true
}

func (h *PredictionHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	// encode first so an encoding error does not leave a 200 header behind
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		h.logger.Error("encode response", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Debug("write response", zap.Error(err))
	}
}
