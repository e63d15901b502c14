package valuation

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianlane/loanvaluer/internal/domain"
	"github.com/meridianlane/loanvaluer/internal/modules/amortization"
	"github.com/meridianlane/loanvaluer/internal/modules/curves"
	"github.com/meridianlane/loanvaluer/internal/modules/risk"
	"github.com/meridianlane/loanvaluer/internal/modules/schools"
)

func intPtr(v int) *int { return &v }

func testService(set *curves.CurveSet) *Service {
	log := zerolog.Nop()
	provider := curves.NewProvider(nil, nil, log)
	if set != nil {
		provider.SetSnapshot(set, schools.NewTable(nil))
	}

	svc := NewService(
		amortization.NewBuilder(log),
		risk.NewClassifier(log),
		provider,
		log,
	)
	// Pin the valuation date so seasoning is deterministic
	svc.now = func() time.Time {
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return svc
}

func quietCurveSet() *curves.CurveSet {
	zeroTier := func(tier domain.RiskTier, premiumBps float64) curves.TierCurves {
		return curves.TierCurves{
			Tier:                 tier,
			RiskPremiumBps:       premiumBps,
			CumulativeDefaultPct: []float64{0, 0, 0},
			AnnualCPRPct:         []float64{0, 0, 0},
		}
	}
	return &curves.CurveSet{
		Tiers: map[domain.RiskTier]curves.TierCurves{
			domain.TierLow:      zeroTier(domain.TierLow, 200),
			domain.TierMedium:   zeroTier(domain.TierMedium, 350),
			domain.TierHigh:     zeroTier(domain.TierHigh, 550),
			domain.TierVeryHigh: zeroTier(domain.TierVeryHigh, 900),
		},
		Adjustments: risk.Adjustments{},
	}
}

func freshLoan() *domain.Loan {
	return &domain.Loan{
		ID:          "L-100",
		Principal:   10000,
		NominalRate: 0.08,
		TermYears:   10,
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func primeBorrower() *domain.Borrower {
	return &domain.Borrower{
		ID:           "B-100",
		FICO:         intPtr(780),
		YearInSchool: 3,
		DegreeType:   domain.DegreeSTEM,
	}
}

func TestValueLoanFailsWithoutCurves(t *testing.T) {
	svc := testService(nil)

	_, err := svc.ValueLoan(freshLoan(), primeBorrower(), 0.04)
	assert.ErrorIs(t, err, curves.ErrCurvesNotLoaded)
}

func TestValueLoanWorkedExample(t *testing.T) {
	// 10k at 8% over 10 years, risk-free 4%, LOW tier premium 200 bps and
	// quiet curves: discount rate 6%, so NPV exceeds par.
	svc := testService(quietCurveSet())

	result, err := svc.ValueLoan(freshLoan(), primeBorrower(), 0.04)
	require.NoError(t, err)

	assert.Equal(t, domain.TierLow, result.RiskTier)
	assert.Equal(t, domain.TierLow, result.CurveUsed)
	assert.InDelta(t, 0.06, result.DiscountRate, 1e-12)
	assert.Greater(t, result.NPV, 10000.0)
	require.NotNil(t, result.NPVRatio)
	assert.Greater(t, *result.NPVRatio, 0.0)
	require.NotNil(t, result.ExpectedLoss)
	assert.Zero(t, *result.ExpectedLoss)
	require.NotNil(t, result.WAL)
	assert.Less(t, *result.WAL, 10.0)
	require.NotNil(t, result.IRR)
	// Buying at par with no credit losses yields the coupon
	assert.InDelta(t, 8.0, *result.IRR, 0.01)
}

func TestValueLoanRealizedDefaultIsTerminal(t *testing.T) {
	svc := testService(quietCurveSet())

	loan := freshLoan()
	loan.Events = []domain.LoanEvent{
		{Type: domain.EventDefault, Date: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)},
	}

	result, err := svc.ValueLoan(loan, primeBorrower(), 0.04)
	require.NoError(t, err)

	assert.Zero(t, result.NPV)
	require.NotNil(t, result.ExpectedLoss)
	assert.Equal(t, 1.0, *result.ExpectedLoss)
	require.NotNil(t, result.WAL)
	assert.Zero(t, *result.WAL)
	require.NotNil(t, result.NPVRatio)
	assert.Equal(t, -1.0, *result.NPVRatio)
	assert.Nil(t, result.IRR)
}

func TestValueLoanInvalidEconomicsDegrade(t *testing.T) {
	svc := testService(quietCurveSet())

	loan := freshLoan()
	loan.Principal = -5

	result, err := svc.ValueLoan(loan, primeBorrower(), 0.04)
	require.NoError(t, err)

	assert.Equal(t, domain.TierUnknown, result.RiskTier)
	assert.Zero(t, result.NPV)
	assert.Nil(t, result.NPVRatio)
	assert.Nil(t, result.ExpectedLoss)
	assert.Nil(t, result.WAL)
	assert.Nil(t, result.IRR)
}

func TestValueLoanNoScoresClassifyVeryHigh(t *testing.T) {
	svc := testService(quietCurveSet())

	noScores := &domain.Borrower{ID: "B-0"}

	result, err := svc.ValueLoan(freshLoan(), noScores, 0.04)
	require.NoError(t, err)

	assert.Equal(t, domain.TierVeryHigh, result.RiskTier)
	assert.Equal(t, domain.TierVeryHigh, result.CurveUsed)
	assert.InDelta(t, 0.04+0.09, result.DiscountRate, 1e-12)
}

func TestValueLoanUnmappedTierFallsBackConservatively(t *testing.T) {
	// Reference data missing the borrower's tier resolves to the
	// VERY_HIGH curve rather than failing.
	set := quietCurveSet()
	delete(set.Tiers, domain.TierLow)

	svc := testService(set)

	result, err := svc.ValueLoan(freshLoan(), primeBorrower(), 0.04)
	require.NoError(t, err)

	assert.Equal(t, domain.TierLow, result.RiskTier)
	assert.Equal(t, domain.TierVeryHigh, result.CurveUsed)
	assert.InDelta(t, 0.04+0.09, result.DiscountRate, 1e-12)
}

func TestValueLoanSeasonedBalanceDrivesNPV(t *testing.T) {
	// A loan two years into its term values off the seasoned balance, so
	// its NPV sits well below the original principal.
	svc := testService(quietCurveSet())

	loan := freshLoan()
	loan.StartDate = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	result, err := svc.ValueLoan(loan, primeBorrower(), 0.04)
	require.NoError(t, err)

	assert.Less(t, result.NPV, 10000.0)
	assert.Greater(t, result.NPV, 0.0)
}

func TestValueLoanDefaultCurveCreatesLoss(t *testing.T) {
	set := quietCurveSet()
	low := set.Tiers[domain.TierLow]
	low.CumulativeDefaultPct = []float64{2, 4, 6}
	set.Tiers[domain.TierLow] = low

	svc := testService(set)

	result, err := svc.ValueLoan(freshLoan(), primeBorrower(), 0.04)
	require.NoError(t, err)

	require.NotNil(t, result.ExpectedLoss)
	assert.Greater(t, *result.ExpectedLoss, 0.0)
	assert.Less(t, *result.ExpectedLoss, 1.0)
}
