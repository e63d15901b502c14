package valuation

import (
	"math"
	"testing"

	"github.com/meridianlane/loanvaluer/pkg/formulas"
)

// levelPayments builds the scheduled payment vector for a fresh level-pay loan.
func levelPayments(principal, annualRate float64, months int) []float64 {
	payment := formulas.MonthlyPayment(principal, annualRate, months)
	payments := make([]float64, months)
	for i := range payments {
		payments[i] = *payment
	}
	return payments
}

func zeros(n int) []float64 {
	return make([]float64, n)
}

func TestSimulateParPricingIdentity(t *testing.T) {
	// With zero projected defaults and prepayments, discounting a level-pay
	// loan's cash flows at its own nominal rate reproduces the principal.
	principal := 10000.0
	rate := 0.08
	months := 120

	result := Simulate(SimulationInput{
		SeasonedBalance:   principal,
		OriginalPrincipal: principal,
		ScheduledPayments: levelPayments(principal, rate, months),
		MonthlyLoanRate:   rate / 12,
		MonthlyPD:         zeros(months),
		MonthlySMM:        zeros(months),
		MonthlyDiscount:   rate / 12,
	})

	if math.Abs(result.NPV-principal) > 0.01 {
		t.Errorf("NPV at par = %v, want %v", result.NPV, principal)
	}
}

func TestSimulateDiscountBelowCouponRaisesNPV(t *testing.T) {
	// The worked example: 10k at 8% over 10 years discounted at 6%
	// is worth more than par.
	principal := 10000.0
	rate := 0.08
	months := 120

	result := Simulate(SimulationInput{
		SeasonedBalance:   principal,
		OriginalPrincipal: principal,
		ScheduledPayments: levelPayments(principal, rate, months),
		MonthlyLoanRate:   rate / 12,
		MonthlyPD:         zeros(months),
		MonthlySMM:        zeros(months),
		MonthlyDiscount:   0.06 / 12,
	})

	if result.NPV <= principal {
		t.Errorf("NPV = %v, want > %v when the contractual rate exceeds the discount rate", result.NPV, principal)
	}
	if result.NPVRatio == nil || *result.NPVRatio <= 0 {
		t.Errorf("NPVRatio = %v, want > 0", result.NPVRatio)
	}
}

func TestSimulateExpectedLossMonotoneInDefaults(t *testing.T) {
	// Holding prepayment and recovery fixed, a uniformly higher default
	// curve never lowers the expected loss.
	principal := 10000.0
	rate := 0.08
	months := 60

	lossAt := func(monthlyPD float64) float64 {
		pd := make([]float64, months)
		for i := range pd {
			pd[i] = monthlyPD
		}
		result := Simulate(SimulationInput{
			SeasonedBalance:   principal,
			OriginalPrincipal: principal,
			ScheduledPayments: levelPayments(principal, rate, months),
			MonthlyLoanRate:   rate / 12,
			MonthlyPD:         pd,
			MonthlySMM:        zeros(months),
			MonthlyDiscount:   0.06 / 12,
		})
		if result.ExpectedLoss == nil {
			t.Fatal("expected loss should be defined for positive principal")
		}
		return *result.ExpectedLoss
	}

	prev := lossAt(0)
	for _, hazard := range []float64{0.001, 0.002, 0.005, 0.01, 0.02} {
		loss := lossAt(hazard)
		if loss < prev {
			t.Fatalf("expected loss fell from %v to %v as hazard rose to %v", prev, loss, hazard)
		}
		prev = loss
	}
}

func TestSimulateBulletWAL(t *testing.T) {
	// A single balloon at maturity with no interim cash flows has a WAL of
	// exactly the term. Zero rates keep the weighting undistorted.
	months := 120
	payments := zeros(months)
	payments[months-1] = 10000

	result := Simulate(SimulationInput{
		SeasonedBalance:   10000,
		OriginalPrincipal: 10000,
		ScheduledPayments: payments,
		MonthlyLoanRate:   0,
		MonthlyPD:         zeros(months),
		MonthlySMM:        zeros(months),
		MonthlyDiscount:   0,
	})

	if result.WAL == nil {
		t.Fatal("WAL should be defined for a bullet loan")
	}
	if math.Abs(*result.WAL-10.0) > 1e-9 {
		t.Errorf("bullet WAL = %v years, want 10", *result.WAL)
	}
}

func TestSimulateAmortizingWALBelowTerm(t *testing.T) {
	principal := 10000.0
	rate := 0.08
	months := 120

	result := Simulate(SimulationInput{
		SeasonedBalance:   principal,
		OriginalPrincipal: principal,
		ScheduledPayments: levelPayments(principal, rate, months),
		MonthlyLoanRate:   rate / 12,
		MonthlyPD:         zeros(months),
		MonthlySMM:        zeros(months),
		MonthlyDiscount:   0.06 / 12,
	})

	if result.WAL == nil {
		t.Fatal("WAL should be defined")
	}
	if *result.WAL >= 10.0 {
		t.Errorf("amortizing WAL = %v years, want < 10", *result.WAL)
	}
	if *result.WAL <= 0 {
		t.Errorf("WAL = %v, want > 0", *result.WAL)
	}
}

func TestSimulateRecoveryLagQueuesCashFlow(t *testing.T) {
	// A default in month 1 with a 6-month lag shows up as recovery cash in
	// month 7, not month 1.
	months := 24
	pd := zeros(months)
	pd[0] = 0.10

	principal := 10000.0
	rate := 0.06

	withLag := Simulate(SimulationInput{
		SeasonedBalance:   principal,
		OriginalPrincipal: principal,
		ScheduledPayments: levelPayments(principal, rate, months),
		MonthlyLoanRate:   rate / 12,
		MonthlyPD:         pd,
		MonthlySMM:        zeros(months),
		RecoveryPct:       0.5,
		RecoveryLagMonths: 6,
		MonthlyDiscount:   rate / 12,
	})

	noRecovery := Simulate(SimulationInput{
		SeasonedBalance:   principal,
		OriginalPrincipal: principal,
		ScheduledPayments: levelPayments(principal, rate, months),
		MonthlyLoanRate:   rate / 12,
		MonthlyPD:         pd,
		MonthlySMM:        zeros(months),
		MonthlyDiscount:   rate / 12,
	})

	// Months 2-6 match; month 7 carries the recovery.
	for m := 1; m < 6; m++ {
		if math.Abs(withLag.CashFlows[m]-noRecovery.CashFlows[m]) > 1e-9 {
			t.Fatalf("cash flow %d differs before the recovery lands", m+1)
		}
	}
	recovery := withLag.CashFlows[6] - noRecovery.CashFlows[6]
	if recovery <= 0 {
		t.Errorf("month 7 recovery = %v, want > 0", recovery)
	}
	if math.Abs(recovery-withLag.TotalRecovered) > 1e-9 {
		t.Errorf("recovery in month 7 = %v, want all of %v", recovery, withLag.TotalRecovered)
	}
}

func TestSimulateRecoveryBeyondHorizonRecognizedImmediately(t *testing.T) {
	// A default near the end of the horizon whose lagged recovery would
	// fall past it is recognized in the defaulting month instead of being
	// dropped.
	months := 12
	pd := zeros(months)
	pd[11] = 0.10

	result := Simulate(SimulationInput{
		SeasonedBalance:   10000,
		OriginalPrincipal: 10000,
		ScheduledPayments: levelPayments(10000, 0.06, months),
		MonthlyLoanRate:   0.06 / 12,
		MonthlyPD:         pd,
		MonthlySMM:        zeros(months),
		RecoveryPct:       0.4,
		RecoveryLagMonths: 12,
		MonthlyDiscount:   0.06 / 12,
	})

	if result.TotalRecovered <= 0 {
		t.Fatal("recovery should never be silently dropped")
	}

	// Expected loss reflects the recovery even though its nominal due date
	// was beyond the horizon.
	wantLoss := (result.TotalDefaulted - result.TotalRecovered) / 10000
	if math.Abs(*result.ExpectedLoss-wantLoss) > 1e-12 {
		t.Errorf("expected loss = %v, want %v", *result.ExpectedLoss, wantLoss)
	}
}

func TestSimulatePrepaymentShortensLife(t *testing.T) {
	principal := 10000.0
	rate := 0.08
	months := 120
	smm := make([]float64, months)
	for i := range smm {
		smm[i] = 0.01
	}

	fast := Simulate(SimulationInput{
		SeasonedBalance:   principal,
		OriginalPrincipal: principal,
		ScheduledPayments: levelPayments(principal, rate, months),
		MonthlyLoanRate:   rate / 12,
		MonthlyPD:         zeros(months),
		MonthlySMM:        smm,
		MonthlyDiscount:   0.06 / 12,
	})
	slow := Simulate(SimulationInput{
		SeasonedBalance:   principal,
		OriginalPrincipal: principal,
		ScheduledPayments: levelPayments(principal, rate, months),
		MonthlyLoanRate:   rate / 12,
		MonthlyPD:         zeros(months),
		MonthlySMM:        zeros(months),
		MonthlyDiscount:   0.06 / 12,
	})

	if *fast.WAL >= *slow.WAL {
		t.Errorf("WAL with prepayment = %v, want < %v", *fast.WAL, *slow.WAL)
	}
}

func TestSimulateRetiredBalanceEmitsZeros(t *testing.T) {
	months := 12
	result := Simulate(SimulationInput{
		SeasonedBalance:   0,
		OriginalPrincipal: 10000,
		ScheduledPayments: levelPayments(10000, 0.06, months),
		MonthlyLoanRate:   0.06 / 12,
		MonthlyPD:         zeros(months),
		MonthlySMM:        zeros(months),
		MonthlyDiscount:   0.06 / 12,
	})

	for m, cf := range result.CashFlows {
		if cf != 0 {
			t.Fatalf("cash flow %d = %v, want 0 for a retired loan", m+1, cf)
		}
	}
	if result.NPV != 0 {
		t.Errorf("NPV = %v, want 0", result.NPV)
	}
	if result.WAL != nil {
		t.Errorf("WAL = %v, want nil with no discounted cash flow", *result.WAL)
	}
}

func TestSimulateIRRRoundTrip(t *testing.T) {
	// Feeding the simulator's own cash flows back into the IRR solver with
	// the same outlay produces a rate whose discounted NPV is within
	// tolerance of the outlay.
	principal := 10000.0
	rate := 0.08
	months := 120
	pd := make([]float64, months)
	for i := range pd {
		pd[i] = 0.0005
	}

	result := Simulate(SimulationInput{
		SeasonedBalance:   principal,
		OriginalPrincipal: principal,
		ScheduledPayments: levelPayments(principal, rate, months),
		MonthlyLoanRate:   rate / 12,
		MonthlyPD:         pd,
		MonthlySMM:        zeros(months),
		RecoveryPct:       0.3,
		RecoveryLagMonths: 3,
		MonthlyDiscount:   0.06 / 12,
	})

	irr := formulas.SolveIRR(result.CashFlows, principal)
	if irr == nil {
		t.Fatal("expected an IRR for projected cash flows")
	}

	monthly := *irr / 100 / 12
	residual := formulas.PresentValue(result.CashFlows, monthly) - principal
	if math.Abs(residual) > 0.01 {
		t.Errorf("NPV residual at solved IRR = %v, want ~0", residual)
	}
}
