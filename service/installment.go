package service

import (
	"errors"
	"fmt"
	"math"

	"loan-predictor/domain"
)

// roundTo2Decimals rounds to cents.
func roundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}

// InstallmentCalculator estimates the fixed monthly payment of an amortized loan.
type InstallmentCalculator struct{}

func NewInstallmentCalculator() *InstallmentCalculator {
	return &InstallmentCalculator{}
}

// Calculate returns the monthly payment, total paid and total interest.
func (c *InstallmentCalculator) Calculate(
	req domain.InstallmentRequest,
) (domain.Installment, error) {

	if req.Principal <= 0 {
		return domain.Installment{}, errors.New("invalid amount")
	}
	if req.Principal > MaxLoanAmount {
		return domain.Installment{}, fmt.Errorf("amount exceeds the maximum of %.2f", MaxLoanAmount)
	}
	if req.AnnualRate < 0 {
		return domain.Installment{}, errors.New("invalid interest rate")
	}
	if req.AnnualRate > MaxInterestRate {
		return domain.Installment{}, fmt.Errorf("interest rate exceeds the maximum of %.2f%%", MaxInterestRate)
	}
	if req.TermMonths <= 0 {
		return domain.Installment{}, errors.New("invalid term")
	}
	if req.TermMonths > MaxTermMonths {
		return domain.Installment{}, fmt.Errorf("term exceeds the maximum of %d months", MaxTermMonths)
	}

	var payment float64

	if req.AnnualRate == 0 {
		payment = req.Principal / float64(req.TermMonths)
	} else {
		monthlyRate := (req.AnnualRate / 100) / 12
		n := float64(req.TermMonths)

		payment = req.Principal * (monthlyRate /
			(1 - math.Pow(1+monthlyRate, -n)))
	}

	total := payment * float64(req.TermMonths)

	return domain.Installment{
		MonthlyPayment: roundTo2Decimals(payment),
		TotalPayment:   roundTo2Decimals(total),
		TotalInterest:  roundTo2Decimals(total - req.Principal),
	}, nil
}
