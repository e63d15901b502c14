package curves

import "math"

// MonthlyPD converts a cumulative annual default curve (percentage terms)
// into a monthly marginal hazard vector of exactly horizonMonths entries.
//
// The cumulative series is first-differenced into annual marginal default
// percentages (annual[0] = cum[0], annual[i] = cum[i] - cum[i-1]), then each
// annual probability becomes a constant monthly hazard via
// 1-(1-annual)^(1/12), broadcast across that year's 12 months. Curves
// shorter than the horizon extend flat; longer curves are truncated.
func MonthlyPD(cumulativeDefaultPctByYear []float64, horizonMonths int) []float64 {
	annual := make([]float64, len(cumulativeDefaultPctByYear))
	prev := 0.0
	for i, cum := range cumulativeDefaultPctByYear {
		marginal := cum - prev
		if marginal < 0 {
			marginal = 0
		}
		annual[i] = marginal / 100.0
		prev = cum
	}

	return broadcastMonthly(annual, horizonMonths)
}

// MonthlySMM converts an annual CPR curve (percentage terms) into a monthly
// marginal prepayment vector of exactly horizonMonths entries. CPR is
// already a period rate, so no differencing: smm = 1-(1-CPR)^(1/12).
func MonthlySMM(annualCPRPctByYear []float64, horizonMonths int) []float64 {
	annual := make([]float64, len(annualCPRPctByYear))
	for i, cpr := range annualCPRPctByYear {
		annual[i] = cpr / 100.0
	}

	return broadcastMonthly(annual, horizonMonths)
}

// broadcastMonthly turns annual probabilities into constant monthly rates
// over each year's 12 months, sized to exactly horizonMonths (flat-extended
// with the last known rate, or truncated).
func broadcastMonthly(annual []float64, horizonMonths int) []float64 {
	if horizonMonths <= 0 {
		return []float64{}
	}

	monthly := make([]float64, horizonMonths)
	last := 0.0
	for m := 0; m < horizonMonths; m++ {
		year := m / 12
		if year < len(annual) {
			last = annualToMonthly(annual[year])
		}
		monthly[m] = last
	}
	return monthly
}

// annualToMonthly converts an annual probability to the constant monthly
// rate with the same cumulative effect over 12 months.
func annualToMonthly(annual float64) float64 {
	if annual <= 0 {
		return 0
	}
	if annual >= 1 {
		return 1
	}
	return 1 - math.Pow(1-annual, 1.0/12.0)
}
