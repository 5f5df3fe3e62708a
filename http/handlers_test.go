package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sony/gobreaker"

	"loan-predictor/domain"
	"loan-predictor/ml"
	"loan-predictor/repository"
	"loan-predictor/service"
)

type fakeModel struct {
	label int
	err   error
}

func (f *fakeModel) Predict(context.Context, domain.FeatureVector) (int, error) {
	return f.label, f.err
}

const applicantJSON = `{
	"applicant_income": 500,
	"coapplicant_income": 0,
	"loan_amount": 200,
	"loan_term_months": 360,
	"credit_history": 1,
	"gender": "Male",
	"married": "No",
	"self_employed": "No",
	"dependents": "0",
	"education": "Graduate",
	"property_area": "Rural"
}`

func newTestRouter(t *testing.T, model ml.Classifier, strict bool) (http.Handler, Assets) {
	t.Helper()
	opts := service.PredictionOptions{
		Classifier: model,
		Repository: repository.NewPredictionRepositoryMemory(),
	}
	if strict {
		opts.Validator = service.NewApplicantValidator()
	}
	assets := Assets{
		Dir:         t.TempDir(),
		Dataset:     "test.csv",
		Image:       "loan_image.jpg",
		SuccessGif:  "success.gif",
		FailureGif:  "failure.gif",
		PreviewRows: 5,
		ChartRows:   20,
	}
	router := NewRouter(Dependencies{
		Predictions: service.NewPredictionService(opts),
		Assets:      assets,
		Checks: map[string]Check{
			"model": func(context.Context) error {
				if model == nil {
					return errors.New("not loaded")
				}
				return nil
			},
		},
	})
	return router, assets
}

func postJSON(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPredictHandler_OK(t *testing.T) {
	router, _ := newTestRouter(t, &fakeModel{label: ml.LabelApproved}, false)

	w := postJSON(router, "/api/predict", applicantJSON)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var got domain.Prediction
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !got.Approved || got.Label != 1 {
		t.Fatalf("expected approval, got %+v", got)
	}
	want := domain.FeatureVector{500, 0, 200, 360, 1, 1, 1, 1, 0, 0, 0, 1, 1, 1, 0, 0}
	if got.Features != want {
		t.Fatalf("unexpected features %v", got.Features)
	}
}

func TestPredictHandler_MethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t, &fakeModel{}, false)

	req := httptest.NewRequest(http.MethodGet, "/api/predict", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestPredictHandler_BadRequest(t *testing.T) {
	router, _ := newTestRouter(t, &fakeModel{}, false)

	w := postJSON(router, "/api/predict", `{invalid-json}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestPredictHandler_UnsupportedMediaType(t *testing.T) {
	router, _ := newTestRouter(t, &fakeModel{}, false)

	req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewBufferString(applicantJSON))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", w.Code)
	}
}

func TestPredictHandler_ModelNotLoaded(t *testing.T) {
	router, _ := newTestRouter(t, ml.NewRegistry(nil), false)

	w := postJSON(router, "/api/predict", applicantJSON)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestPredictHandler_BreakerOpen(t *testing.T) {
	err := fmt.Errorf("remote classifier: %w: %w", ml.ErrModelUnavailable, gobreaker.ErrOpenState)
	router, _ := newTestRouter(t, &fakeModel{err: err}, false)

	w := postJSON(router, "/api/predict", applicantJSON)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestPredictHandler_StrictRejectsUnknownEnum(t *testing.T) {
	router, _ := newTestRouter(t, &fakeModel{label: 1}, true)

	body := strings.Replace(applicantJSON, `"Male"`, `"Other"`, 1)
	w := postJSON(router, "/api/predict", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "gender") {
		t.Fatalf("expected error to name the field, got %s", w.Body.String())
	}
}

func TestPredictHandler_LenientAcceptsUnknownEnum(t *testing.T) {
	router, _ := newTestRouter(t, &fakeModel{label: 0}, false)

	body := strings.Replace(applicantJSON, `"Male"`, `"Other"`, 1)
	w := postJSON(router, "/api/predict", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestEncodeHandler(t *testing.T) {
	router, _ := newTestRouter(t, &fakeModel{}, false)

	w := postJSON(router, "/api/encode", applicantJSON)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got encodeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got.Features) != 16 || len(got.Names) != 16 {
		t.Fatalf("expected 16 features and names, got %d/%d", len(got.Features), len(got.Names))
	}
	if got.Names[10] != "dependents_3plus" || got.Features[7] != 1 {
		t.Fatalf("unexpected encoding: %+v", got)
	}
}

func TestHistoryHandler(t *testing.T) {
	router, _ := newTestRouter(t, &fakeModel{label: 1}, false)
	for i := 0; i < 3; i++ {
		postJSON(router, "/api/predict", applicantJSON)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/predictions?limit=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got []domain.Prediction
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 predictions, got %d", len(got))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/predictions?limit=abc", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", w.Code)
	}
}

func TestReadyHandler(t *testing.T) {
	router, _ := newTestRouter(t, nil, false)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func writeAsset(t *testing.T, assets Assets, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(assets.Dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write asset: %v", err)
	}
}
