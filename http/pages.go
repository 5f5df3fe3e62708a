package http

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"loan-predictor/dataset"
	"loan-predictor/domain"
	"loan-predictor/ml"
	"loan-predictor/service"
)

//go:embed templates/*.html
var templateFS embed.FS

var numberPrinter = message.NewPrinter(language.English)

var pageTemplates = template.Must(template.New("").Funcs(template.FuncMap{
	"num": func(v float64) string {
		return numberPrinter.Sprintf("%.0f", v)
	},
	"num2": func(v float64) string {
		return numberPrinter.Sprintf("%.2f", v)
	},
}).ParseFS(templateFS, "templates/*.html"))

type PageHandler struct {
	service *service.PredictionService
	assets  Assets
	logger  *zap.Logger
}

func NewPageHandler(service *service.PredictionService, assets Assets, logger *zap.Logger) *PageHandler {
	return &PageHandler{service: service, assets: assets, logger: logger}
}

type chartBar struct {
	Label     string
	Income    float64
	Loan      float64
	HasLoan   bool
	IncomePct float64
	LoanPct   float64
}

type homePage struct {
	ImageURL string
	Warnings []string
	Header   []string
	Preview  [][]string
	Chart    []chartBar
}

// Home renders the title, preview image and dataset overview.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	page := homePage{}
	if h.assets.exists(h.assets.Image) {
		page.ImageURL = "/assets/" + h.assets.Image
	} else {
		page.Warnings = append(page.Warnings, fmt.Sprintf("Image %s not found.", h.assets.Image))
	}

	data, err := dataset.Load(h.assets.path(h.assets.Dataset))
	if err != nil {
		h.logger.Warn("dataset unavailable", zap.String("dataset", h.assets.Dataset), zap.Error(err))
		page.Warnings = append(page.Warnings, fmt.Sprintf("Dataset %s could not be loaded.", h.assets.Dataset))
	} else {
		page.Header = data.Header
		page.Preview = data.Head(h.assets.PreviewRows)
		points, err := data.IncomeVsLoan(h.assets.ChartRows)
		if err != nil {
			page.Warnings = append(page.Warnings, err.Error())
		} else {
			page.Chart = chartBars(points)
		}
	}

	h.render(w, http.StatusOK, "home.html", page)
}

func chartBars(points []dataset.ChartPoint) []chartBar {
	maxValue := 0.0
	for _, p := range points {
		maxValue = max(maxValue, p.ApplicantIncome, p.LoanAmount)
	}
	bars := make([]chartBar, 0, len(points))
	for _, p := range points {
		b := chartBar{
			Label:   p.Label,
			Income:  p.ApplicantIncome,
			Loan:    p.LoanAmount,
			HasLoan: p.HasLoanAmount,
		}
		if maxValue > 0 {
			b.IncomePct = 100 * p.ApplicantIncome / maxValue
			b.LoanPct = 100 * p.LoanAmount / maxValue
		}
		bars = append(bars, b)
	}
	return bars
}

type radioGroup struct {
	Label    string
	Name     string
	Options  []string
	Selected string
}

type predictPage struct {
	Form          domain.ApplicantInput
	LoanTerms     []float64
	CreditHistory []float64
	Radios        []radioGroup
	Warnings      []string
	Error         string
	Result        *domain.Prediction
	Gif           template.URL
	GifAlt        string
}

// DefaultForm mirrors the initial position of every widget on the prediction page.
func DefaultForm() domain.ApplicantInput {
	return domain.ApplicantInput{
		ApplicantIncome:   500,
		CoapplicantIncome: 0,
		LoanAmount:        200.0,
		LoanTermMonths:    domain.LoanTermOptions[0],
		CreditHistory:     domain.CreditHistoryOptions[0],
		Gender:            domain.GenderOptions[0],
		Married:           domain.YesNoOptions[0],
		SelfEmployed:      domain.YesNoOptions[0],
		Dependents:        domain.DependentsOptions[0],
		Education:         domain.EducationOptions[0],
		PropertyArea:      domain.PropertyAreaOptions[0],
	}
}

func newPredictPage(form domain.ApplicantInput) predictPage {
	return predictPage{
		Form:          form,
		LoanTerms:     domain.LoanTermOptions,
		CreditHistory: domain.CreditHistoryOptions,
		Radios: []radioGroup{
			{"Gender", "gender", domain.GenderOptions, form.Gender},
			{"Married", "married", domain.YesNoOptions, form.Married},
			{"Self Employed", "self_employed", domain.YesNoOptions, form.SelfEmployed},
			{"Dependents", "dependents", domain.DependentsOptions, form.Dependents},
			{"Education", "education", domain.EducationOptions, form.Education},
			{"Property Area", "property_area", domain.PropertyAreaOptions, form.PropertyArea},
		},
	}
}

// Predict shows the form on GET and the decision on POST.
func (h *PageHandler) Predict(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.render(w, http.StatusOK, "predict.html", newPredictPage(DefaultForm()))
		return
	case http.MethodPost:
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	input, err := parseApplicantForm(r)
	if err != nil {
		page := newPredictPage(DefaultForm())
		page.Error = err.Error()
		h.render(w, http.StatusBadRequest, "predict.html", page)
		return
	}

	page := newPredictPage(input)
	prediction, err := h.service.Predict(r.Context(), input)
	switch {
	case errors.Is(err, service.ErrInvalidApplicant):
		page.Error = err.Error()
		h.render(w, http.StatusBadRequest, "predict.html", page)
		return
	case errors.Is(err, ml.ErrModelNotLoaded), errors.Is(err, ml.ErrModelUnavailable):
		page.Error = "The prediction model is not available. Please try again later."
		h.render(w, http.StatusServiceUnavailable, "predict.html", page)
		return
	case err != nil:
		h.logger.Error("prediction failed", zap.Error(err))
		page.Error = "Prediction failed. Please try again."
		h.render(w, http.StatusInternalServerError, "predict.html", page)
		return
	}

	page.Result = &prediction
	gif, alt := h.assets.FailureGif, "failure gif"
	if prediction.Approved {
		gif, alt = h.assets.SuccessGif, "success gif"
	}
	uri, err := h.assets.dataURI(gif)
	if err != nil {
		h.logger.Warn("animation unavailable", zap.String("asset", gif), zap.Error(err))
		page.Warnings = append(page.Warnings, fmt.Sprintf("Animation %s not found.", gif))
	} else {
		page.Gif, page.GifAlt = uri, alt
	}

	h.render(w, http.StatusOK, "predict.html", page)
}

func (h *PageHandler) render(w http.ResponseWriter, status int, name string, data any) {
	// render into a buffer so a template error does not leave a half-written page
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Debug("write page", zap.Error(err))
	}
}

func parseApplicantForm(r *http.Request) (domain.ApplicantInput, error) {
	if err := r.ParseForm(); err != nil {
		return domain.ApplicantInput{}, errors.New("invalid form")
	}

	var input domain.ApplicantInput
	numbers := []struct {
		name string
		dst  *float64
	}{
		{"applicant_income", &input.ApplicantIncome},
		{"coapplicant_income", &input.CoapplicantIncome},
		{"loan_amount", &input.LoanAmount},
		{"loan_term_months", &input.LoanTermMonths},
		{"credit_history", &input.CreditHistory},
	}
	for _, n := range numbers {
		v, err := strconv.ParseFloat(r.PostForm.Get(n.name), 64)
		if err != nil {
			return domain.ApplicantInput{}, fmt.Errorf("%s must be a number", n.name)
		}
		*n.dst = v
	}

	input.Gender = r.PostForm.Get("gender")
	input.Married = r.PostForm.Get("married")
	input.SelfEmployed = r.PostForm.Get("self_employed")
	input.Dependents = r.PostForm.Get("dependents")
	input.Education = r.PostForm.Get("education")
	input.PropertyArea = r.PostForm.Get("property_area")
	return input, nil
}
