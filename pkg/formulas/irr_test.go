package formulas

import (
	"math"
	"testing"
)

func TestSolveIRRKnownRate(t *testing.T) {
	// Build cash flows at a known monthly rate and check the solver
	// recovers it: level payments on a 10k loan at 1% monthly.
	principal := 10000.0
	monthlyRate := 0.01
	months := 60

	payment := principal * monthlyRate / (1 - math.Pow(1+monthlyRate, -float64(months)))
	cashFlows := make([]float64, months)
	for i := range cashFlows {
		cashFlows[i] = payment
	}

	irr := SolveIRR(cashFlows, principal)
	if irr == nil {
		t.Fatal("expected an IRR for well-formed cash flows")
	}

	wantAnnualPct := monthlyRate * 12 * 100
	if math.Abs(*irr-wantAnnualPct) > 0.01 {
		t.Errorf("SolveIRR() = %v%%, want %v%%", *irr, wantAnnualPct)
	}
}

func TestSolveIRRResidualNearZero(t *testing.T) {
	// The discounted NPV of the cash flows at the solved rate must be
	// within tolerance of the initial outlay.
	cashFlows := []float64{300, 300, 300, 300, 9500}
	outlay := 10000.0

	irr := SolveIRR(cashFlows, outlay)
	if irr == nil {
		t.Fatal("expected an IRR")
	}

	monthly := *irr / 100 / 12
	residual := PresentValue(cashFlows, monthly) - outlay
	if math.Abs(residual) > 0.01 {
		t.Errorf("residual NPV at solved rate = %v, want ~0", residual)
	}
}

func TestSolveIRRUndetermined(t *testing.T) {
	tests := []struct {
		name      string
		cashFlows []float64
		outlay    float64
	}{
		{
			name:      "No cash flows",
			cashFlows: nil,
			outlay:    10000,
		},
		{
			name:      "Non-positive outlay",
			cashFlows: []float64{100, 100},
			outlay:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SolveIRR(tt.cashFlows, tt.outlay); got != nil {
				t.Errorf("SolveIRR() = %v, want nil", *got)
			}
		})
	}
}

func TestSolveIRRNegativeRate(t *testing.T) {
	// Cash flows worth less than the outlay produce a negative IRR,
	// still within the plausible range.
	cashFlows := []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100}
	outlay := 1300.0

	irr := SolveIRR(cashFlows, outlay)
	if irr == nil {
		t.Fatal("expected an IRR for a loss-making investment")
	}
	if *irr >= 0 {
		t.Errorf("SolveIRR() = %v%%, want negative", *irr)
	}
	if *irr < -100 {
		t.Errorf("SolveIRR() = %v%%, implausible rates should be nil", *irr)
	}
}
