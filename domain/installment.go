package domain

// InstallmentRequest describes the amortized loan behind an application.
// Principal is in currency units, AnnualRate in percent.
type InstallmentRequest struct {
	Principal  float64
	AnnualRate float64
	TermMonths int
}

type Installment struct {
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalPayment   float64 `json:"total_payment"`
	TotalInterest  float64 `json:"total_interest"`
}
