package formulas

import (
	"math"
)

const (
	irrLowerBound = -1.0
	irrUpperBound = 1.0
	irrTolerance  = 1e-6
	irrMaxIter    = 100
)

// SolveIRR solves for the internal rate of return of a monthly cash-flow
// vector against an initial outlay, via bisection on the monthly rate.
//
// The residual function is:
//
//	f(irr) = sum(cashFlows[t] / (1+irr)^(t+1)) - initialOutlay
//
// A positive residual at the midpoint means the true rate is higher, so the
// lower bound is raised; a negative residual lowers the upper bound. The
// solver stops when |f| < tolerance or after the iteration cap.
//
// IRR is best-effort: cash-flow sign patterns with multiple roots are not
// disambiguated, and bisection returns a root bracketed by [-1, 1] on the
// monthly rate, not necessarily the economically meaningful one.
//
// Args:
//
//	cashFlows: Monthly cash flows, cashFlows[t] occurring at month t+1
//	initialOutlay: Amount paid at month 0 (must be > 0)
//
// Returns:
//
//	Annualized IRR in percent (monthly rate * 12 * 100), or nil when the
//	result is undetermined (no cash flows, non-finite midpoint, or an
//	implausible rate below -100% annual)
func SolveIRR(cashFlows []float64, initialOutlay float64) *float64 {
	if len(cashFlows) == 0 || initialOutlay <= 0 {
		return nil
	}

	low := irrLowerBound
	high := irrUpperBound
	mid := 0.0

	for i := 0; i < irrMaxIter; i++ {
		mid = (low + high) / 2.0

		residual := PresentValue(cashFlows, mid) - initialOutlay
		if math.Abs(residual) < irrTolerance {
			break
		}

		if residual > 0 {
			// NPV too high: the discount rate must rise to bring it down
			low = mid
		} else {
			high = mid
		}
	}

	annualPct := mid * 12.0 * 100.0
	if math.IsNaN(annualPct) || math.IsInf(annualPct, 0) || annualPct < -100.0 {
		return nil
	}

	return &annualPct
}
