package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/sony/gobreaker"

	"loan-predictor/ml"
)

func predictForm() url.Values {
	return url.Values{
		"applicant_income":   {"500"},
		"coapplicant_income": {"0"},
		"loan_amount":        {"200"},
		"loan_term_months":   {"360"},
		"credit_history":     {"1"},
		"gender":             {"Male"},
		"married":            {"No"},
		"self_employed":      {"No"},
		"dependents":         {"0"},
		"education":          {"Graduate"},
		"property_area":      {"Rural"},
	}
}

func postForm(router http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPredictPage_Form(t *testing.T) {
	router, _ := newTestRouter(t, &fakeModel{}, false)

	req := httptest.NewRequest(http.MethodGet, "/predict", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Client Information", `name="property_area"`, `value="Not Graduate"`, `value="12" selected`, "Predict"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
}

func TestPredictPage_Approved(t *testing.T) {
	router, assets := newTestRouter(t, &fakeModel{label: ml.LabelApproved}, false)
	writeAsset(t, assets, assets.SuccessGif, "GIF89a")

	w := postForm(router, predictForm())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Congratulations! You will get the loan.") {
		t.Errorf("expected success message")
	}
	if !strings.Contains(body, "data:image/gif;base64,R0lGODlh") {
		t.Errorf("expected inlined success gif")
	}
}

func TestPredictPage_DeniedWithoutGif(t *testing.T) {
	router, _ := newTestRouter(t, &fakeModel{label: ml.LabelDenied}, false)

	w := postForm(router, predictForm())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Unfortunately, you will not get the loan.") {
		t.Errorf("expected failure message")
	}
	if !strings.Contains(body, "failure.gif not found") {
		t.Errorf("expected missing animation warning")
	}
}

func TestPredictPage_BadNumber(t *testing.T) {
	router, _ := newTestRouter(t, &fakeModel{}, false)

	form := predictForm()
	form.Set("loan_amount", "lots")
	w := postForm(router, form)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "loan_amount must be a number") {
		t.Errorf("expected field error")
	}
}

func TestPredictPage_ModelNotLoaded(t *testing.T) {
	router, _ := newTestRouter(t, ml.NewRegistry(nil), false)

	w := postForm(router, predictForm())
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "model is not available") {
		t.Errorf("expected user-visible model error")
	}
}

func TestPredictPage_BreakerOpen(t *testing.T) {
	err := fmt.Errorf("remote classifier: %w: %w", ml.ErrModelUnavailable, gobreaker.ErrOpenState)
	router, _ := newTestRouter(t, &fakeModel{err: err}, false)

	w := postForm(router, predictForm())
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "model is not available") {
		t.Errorf("expected user-visible model error")
	}
}

func TestHomePage(t *testing.T) {
	router, assets := newTestRouter(t, &fakeModel{}, false)
	writeAsset(t, assets, assets.Dataset,
		"Loan_ID,Gender,ApplicantIncome,LoanAmount\n"+
			"LP001015,Male,5720,110\n"+
			"LP001022,Male,3076,126\n")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "LOAN PREDICTION APP") || !strings.Contains(body, "LP001022") {
		t.Errorf("expected title and dataset preview")
	}
	if !strings.Contains(body, "5,720") {
		t.Errorf("expected formatted income in chart")
	}
	if !strings.Contains(body, "loan_image.jpg not found") {
		t.Errorf("expected missing image warning")
	}
}

func TestHomePage_MissingDataset(t *testing.T) {
	router, _ := newTestRouter(t, &fakeModel{}, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "test.csv could not be loaded") {
		t.Errorf("expected dataset warning")
	}
}

func TestHomePage_UnknownPath(t *testing.T) {
	router, _ := newTestRouter(t, &fakeModel{}, false)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
