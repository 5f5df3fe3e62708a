package service

import (
	"testing"

	"loan-predictor/domain"
)

func TestCalculate_WithInterest(t *testing.T) {
	calc := NewInstallmentCalculator()

	result, err := calc.Calculate(domain.InstallmentRequest{
		Principal:  10000,
		AnnualRate: 12,
		TermMonths: 24,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// standard amortization table value
	if result.MonthlyPayment != 470.73 {
		t.Errorf("expected 470.73, got %.2f", result.MonthlyPayment)
	}
	if result.TotalInterest <= 0 {
		t.Errorf("expected interest > 0")
	}
}

func TestCalculate_ZeroInterest(t *testing.T) {
	calc := NewInstallmentCalculator()

	result, err := calc.Calculate(domain.InstallmentRequest{
		Principal:  1200,
		AnnualRate: 0,
		TermMonths: 12,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := 100.0
	if result.MonthlyPayment != expected {
		t.Errorf("expected %.2f, got %.2f", expected, result.MonthlyPayment)
	}
}

func TestCalculate_Invalid(t *testing.T) {
	calc := NewInstallmentCalculator()

	inputs := map[string]domain.InstallmentRequest{
		"amount":   {Principal: 0, AnnualRate: 10, TermMonths: 12},
		"rate":     {Principal: 1000, AnnualRate: -1, TermMonths: 12},
		"term":     {Principal: 1000, AnnualRate: 10, TermMonths: 0},
		"too long": {Principal: 1000, AnnualRate: 10, TermMonths: MaxTermMonths + 1},
	}
	for name, in := range inputs {
		if _, err := calc.Calculate(in); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
