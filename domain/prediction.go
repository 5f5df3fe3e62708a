package domain

import "time"

// Prediction is the outcome of one classifier call for one applicant.
type Prediction struct {
	ID             string         `json:"id"`
	Input          ApplicantInput `json:"input"`
	Features       FeatureVector  `json:"features"`
	Label          int            `json:"label"`
	Approved       bool           `json:"approved"`
	Message        string         `json:"message"`
	Explanation    string         `json:"explanation,omitempty"`
	MonthlyPayment float64        `json:"monthly_payment"`
	Cached         bool           `json:"cached"`
	CreatedAt      time.Time      `json:"created_at"`
}

const (
	ApprovedMessage = "✅ Congratulations! You will get the loan."
	DeniedMessage   = "❌ Unfortunately, you will not get the loan."
)
