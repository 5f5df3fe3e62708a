package service

const (
	MaxLoanAmount   = 1_000_000_000.0
	MaxInterestRate = 1000.0 // % per year
	MaxTermMonths   = 600

	// LoanAmountUnit converts the form's loan amount (thousands) to currency units.
	LoanAmountUnit = 1000.0

	// DefaultHistoryLimit bounds the history endpoint when no limit is given.
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 200
)
