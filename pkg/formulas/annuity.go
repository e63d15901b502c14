package formulas

import (
	"math"
)

// MonthlyPayment calculates the level monthly payment for a fully amortizing
// loan using the standard annuity formula:
//
//	payment = principal * r / (1 - (1+r)^-n)
//
// where r is the monthly rate and n the number of monthly periods.
//
// Args:
//
//	principal: Original loan amount (must be > 0)
//	annualRate: Nominal annual rate as a decimal (e.g., 0.08 for 8%)
//	termMonths: Total number of monthly periods (must be > 0)
//
// Returns:
//
//	Monthly payment, or nil if the inputs cannot produce a finite payment
func MonthlyPayment(principal, annualRate float64, termMonths int) *float64 {
	if principal <= 0 || termMonths <= 0 {
		return nil
	}
	if math.IsNaN(principal) || math.IsInf(principal, 0) ||
		math.IsNaN(annualRate) || math.IsInf(annualRate, 0) {
		return nil
	}

	if annualRate == 0 {
		payment := principal / float64(termMonths)
		return &payment
	}

	r := annualRate / 12.0
	denominator := 1 - math.Pow(1+r, -float64(termMonths))
	if denominator == 0 {
		return nil
	}

	payment := principal * r / denominator
	if math.IsNaN(payment) || math.IsInf(payment, 0) {
		return nil
	}

	return &payment
}

// DiscountFactor returns 1/(1+rate)^periods for monthly compounding.
func DiscountFactor(monthlyRate float64, periods int) float64 {
	return 1.0 / math.Pow(1+monthlyRate, float64(periods))
}

// PresentValue discounts a cash flow vector at a monthly rate.
// cashFlows[i] is assumed to occur at period i+1.
func PresentValue(cashFlows []float64, monthlyRate float64) float64 {
	pv := 0.0
	for i, cf := range cashFlows {
		pv += cf * DiscountFactor(monthlyRate, i+1)
	}
	return pv
}
