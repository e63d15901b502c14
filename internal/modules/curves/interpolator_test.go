package curves

import (
	"math"
	"testing"
)

func TestMonthlyPDFirstDifferences(t *testing.T) {
	// A 3-year cumulative curve [1%, 2%, 3%] has marginal annual values
	// [1%, 1%, 1%], so every month carries the same constant hazard
	// 1-(0.99)^(1/12).
	pd := MonthlyPD([]float64{1, 2, 3}, 36)

	if len(pd) != 36 {
		t.Fatalf("length = %d, want 36", len(pd))
	}

	want := 1 - math.Pow(0.99, 1.0/12.0)
	for m, v := range pd {
		if math.Abs(v-want) > 1e-12 {
			t.Fatalf("pd[%d] = %v, want %v", m, v, want)
		}
	}
}

func TestMonthlyPDYearBoundaries(t *testing.T) {
	// Steeper second year: months 0-11 carry the year-1 hazard, months
	// 12-23 the year-2 hazard.
	pd := MonthlyPD([]float64{1, 4}, 24)

	year1 := 1 - math.Pow(0.99, 1.0/12.0)
	year2 := 1 - math.Pow(0.97, 1.0/12.0)

	if math.Abs(pd[0]-year1) > 1e-12 || math.Abs(pd[11]-year1) > 1e-12 {
		t.Errorf("year 1 months = %v/%v, want %v", pd[0], pd[11], year1)
	}
	if math.Abs(pd[12]-year2) > 1e-12 || math.Abs(pd[23]-year2) > 1e-12 {
		t.Errorf("year 2 months = %v/%v, want %v", pd[12], pd[23], year2)
	}
}

func TestMonthlyPDExtendsFlat(t *testing.T) {
	// A 1-year curve stretched to 36 months repeats the last monthly rate.
	pd := MonthlyPD([]float64{2}, 36)

	want := 1 - math.Pow(0.98, 1.0/12.0)
	if math.Abs(pd[35]-want) > 1e-12 {
		t.Errorf("pd[35] = %v, want %v (flat extension)", pd[35], want)
	}
}

func TestMonthlyPDTruncates(t *testing.T) {
	pd := MonthlyPD([]float64{1, 2, 3, 4, 5}, 12)
	if len(pd) != 12 {
		t.Errorf("length = %d, want 12", len(pd))
	}
}

func TestMonthlyPDNonDecreasingInput(t *testing.T) {
	// A dip in the cumulative series (bad data) clamps the marginal to
	// zero instead of going negative.
	pd := MonthlyPD([]float64{2, 1.5, 3}, 36)

	for m := 12; m < 24; m++ {
		if pd[m] != 0 {
			t.Fatalf("pd[%d] = %v, want 0 for a negative marginal", m, pd[m])
		}
	}
}

func TestMonthlySMMNoDifferencing(t *testing.T) {
	// CPR is already a period rate: a flat 6% CPR yields the same SMM in
	// every month of every year.
	smm := MonthlySMM([]float64{6, 6}, 24)

	want := 1 - math.Pow(0.94, 1.0/12.0)
	for m, v := range smm {
		if math.Abs(v-want) > 1e-12 {
			t.Fatalf("smm[%d] = %v, want %v", m, v, want)
		}
	}
}

func TestMonthlySMMCumulativeEffect(t *testing.T) {
	// Twelve months of SMM compound to the annual CPR.
	smm := MonthlySMM([]float64{10}, 12)

	surviving := 1.0
	for _, v := range smm {
		surviving *= 1 - v
	}

	if math.Abs(surviving-0.90) > 1e-12 {
		t.Errorf("surviving fraction = %v, want 0.90", surviving)
	}
}

func TestZeroHorizon(t *testing.T) {
	if got := MonthlyPD([]float64{1}, 0); len(got) != 0 {
		t.Errorf("length = %d, want 0", len(got))
	}
}
