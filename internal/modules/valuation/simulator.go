package valuation

import (
	"github.com/meridianlane/loanvaluer/pkg/formulas"
)

// SimulationInput parameterizes one monthly cash-flow projection over a
// loan's remaining term.
type SimulationInput struct {
	SeasonedBalance   float64
	OriginalPrincipal float64
	ScheduledPayments []float64 // One per remaining month
	MonthlyLoanRate   float64
	MonthlyPD         []float64 // Sized to the horizon
	MonthlySMM        []float64 // Sized to the horizon
	RecoveryPct       float64   // Fraction of defaulted balance recovered
	RecoveryLagMonths int
	MonthlyDiscount   float64
}

// SimulationResult is the projection's output: one realized cash flow per
// month plus the accumulated valuation metrics.
type SimulationResult struct {
	CashFlows       []float64
	NPV             float64
	NPVRatio        *float64 // npv/originalPrincipal - 1, nil when principal <= 0
	ExpectedLoss    *float64 // (defaults - recoveries)/originalPrincipal, nil when principal <= 0
	WAL             *float64 // Years, nil when no discounted cash flow
	TotalDefaulted  float64
	TotalRecovered  float64
	TotalDiscounted float64
}

// Simulate runs the monthly projection: scheduled amortization, prepayment,
// default, and lagged recovery applied to the seasoned balance, each
// resulting cash flow discounted at the risk-adjusted monthly rate.
//
// Per month m = 1..horizon, starting from the seasoned balance:
//  1. A retired balance emits a zero cash flow.
//  2. interest = balance * loanRate; scheduled principal is capped at the
//     outstanding balance.
//  3. Prepayment strips monthlySMM[m] of the remaining balance.
//  4. Default strips monthlyPD[m] of what is left.
//  5. Recovery on the defaulted amount lands recoveryLag months later; a
//     recovery falling beyond the horizon is recognized immediately so it
//     is never silently dropped.
//  6. The month's cash flow is interest + principal + prepayment + any
//     recovery due; it is discounted at the monthly rate compounded monthly.
func Simulate(in SimulationInput) SimulationResult {
	horizon := len(in.ScheduledPayments)
	cashFlows := make([]float64, horizon)
	// Queued recoveries indexed by the month they are recognized in
	recoveries := make([]float64, horizon+1)

	balance := in.SeasonedBalance
	npv := 0.0
	walNumerator := 0.0
	totalDiscounted := 0.0
	totalDefaulted := 0.0
	totalRecovered := 0.0

	for m := 1; m <= horizon; m++ {
		var monthCashFlow float64

		if balance > 0 {
			interest := balance * in.MonthlyLoanRate

			principalPaid := in.ScheduledPayments[m-1] - interest
			if principalPaid > balance {
				principalPaid = balance
			}
			if principalPaid < 0 {
				principalPaid = 0
			}
			remaining := balance - principalPaid

			prepay := remaining * rateAt(in.MonthlySMM, m-1)
			remaining -= prepay

			defaultAmt := remaining * rateAt(in.MonthlyPD, m-1)
			remaining -= defaultAmt
			totalDefaulted += defaultAmt

			monthCashFlow = interest + principalPaid + prepay

			if recovery := defaultAmt * in.RecoveryPct; recovery > 0 {
				totalRecovered += recovery
				due := m + in.RecoveryLagMonths
				if due > horizon {
					// Beyond the horizon: recognize now rather than drop
					monthCashFlow += recovery
				} else {
					recoveries[due] += recovery
				}
			}

			balance = remaining
		}

		monthCashFlow += recoveries[m]

		cashFlows[m-1] = monthCashFlow
		discounted := monthCashFlow * formulas.DiscountFactor(in.MonthlyDiscount, m)
		npv += discounted
		walNumerator += discounted * float64(m)
		totalDiscounted += discounted
	}

	result := SimulationResult{
		CashFlows:       cashFlows,
		NPV:             npv,
		TotalDefaulted:  totalDefaulted,
		TotalRecovered:  totalRecovered,
		TotalDiscounted: totalDiscounted,
	}

	if in.OriginalPrincipal > 0 {
		ratio := npv/in.OriginalPrincipal - 1
		loss := (totalDefaulted - totalRecovered) / in.OriginalPrincipal
		result.NPVRatio = &ratio
		result.ExpectedLoss = &loss
	}
	if totalDiscounted > 0 {
		wal := walNumerator / totalDiscounted / 12.0
		result.WAL = &wal
	}

	return result
}

// rateAt reads a monthly rate vector defensively: months past the end of
// the vector carry zero rate.
func rateAt(rates []float64, idx int) float64 {
	if idx < 0 || idx >= len(rates) {
		return 0
	}
	return rates[idx]
}
