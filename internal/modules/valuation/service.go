package valuation

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/meridianlane/loanvaluer/internal/domain"
	"github.com/meridianlane/loanvaluer/internal/modules/amortization"
	"github.com/meridianlane/loanvaluer/internal/modules/curves"
	"github.com/meridianlane/loanvaluer/internal/modules/risk"
	"github.com/meridianlane/loanvaluer/pkg/formulas"
)

// Service values a single loan end to end: amortization replay, risk
// classification, curve interpolation, cash-flow simulation, and the IRR
// solve. Each call works from an immutable reference snapshot and holds no
// state of its own, so calls are independent and trivially parallel.
type Service struct {
	builder    *amortization.Builder
	classifier *risk.Classifier
	reference  *curves.Provider
	log        zerolog.Logger
	now        func() time.Time
}

// NewService creates a valuation service
func NewService(builder *amortization.Builder, classifier *risk.Classifier,
	reference *curves.Provider, log zerolog.Logger) *Service {
	return &Service{
		builder:    builder,
		classifier: classifier,
		reference:  reference,
		log:        log.With().Str("component", "valuation").Logger(),
		now:        time.Now,
	}
}

// ValueLoan produces the valuation record for one loan.
//
// Fails fast with curves.ErrCurvesNotLoaded when no reference snapshot has
// been supplied. Malformed loan economics degrade to an UNKNOWN-tier result
// with nil financial fields rather than an error, so batch valuation of a
// portfolio never aborts on one bad record. A loan with a realized default
// event is terminal: zero NPV, 100% expected loss, zero WAL, independent of
// the curves.
func (s *Service) ValueLoan(loan *domain.Loan, borrower *domain.Borrower, riskFreeRate float64) (*domain.ValuationResult, error) {
	curveSet, schoolTable, err := s.reference.Snapshot()
	if err != nil {
		return nil, err
	}

	valuedAt := s.now()

	if !loan.HasValidBasics() {
		s.log.Warn().Str("loan_id", loan.ID).Msg("Loan has invalid economics, skipping valuation")
		return &domain.ValuationResult{
			LoanID:    loan.ID,
			RiskTier:  domain.TierUnknown,
			CurveUsed: domain.TierUnknown,
			ValuedAt:  valuedAt,
		}, nil
	}

	cls := s.classifier.Classify(borrower, curveSet.Adjustments, schoolTable)
	tierCurves, curveUsed := curveSet.ForTier(cls.Tier)

	breakdown := domain.RiskBreakdown{
		BasePremiumBps: tierCurves.RiskPremiumBps,
		DegreeBps:      cls.DegreeBps,
		SchoolBps:      cls.SchoolBps,
		YearBps:        cls.YearBps,
		GraduateBps:    cls.GraduateBps,
	}
	discountRate := riskFreeRate + breakdown.TotalBps()/10000.0

	if loan.HasDefaultEvent() {
		// A realized default is a certainty, not a projected hazard.
		npvRatio := -1.0
		expectedLoss := 1.0
		wal := 0.0
		return &domain.ValuationResult{
			LoanID:        loan.ID,
			RiskTier:      cls.Tier,
			DiscountRate:  discountRate,
			NPV:           0,
			NPVRatio:      &npvRatio,
			ExpectedLoss:  &expectedLoss,
			WAL:           &wal,
			RiskBreakdown: breakdown,
			CurveUsed:     curveUsed,
			ValuedAt:      valuedAt,
		}, nil
	}

	schedule, err := s.builder.Build(loan, valuedAt)
	if err != nil {
		if errors.Is(err, amortization.ErrInvalidLoanBasics) {
			return &domain.ValuationResult{
				LoanID:    loan.ID,
				RiskTier:  domain.TierUnknown,
				CurveUsed: domain.TierUnknown,
				ValuedAt:  valuedAt,
			}, nil
		}
		return nil, err
	}

	horizon := schedule.RemainingMonths
	sim := Simulate(SimulationInput{
		SeasonedBalance:   schedule.SeasonedBalance,
		OriginalPrincipal: loan.Principal,
		ScheduledPayments: schedule.RemainingPayments(),
		MonthlyLoanRate:   loan.NominalRate / 12.0,
		MonthlyPD:         curves.MonthlyPD(tierCurves.CumulativeDefaultPct, horizon),
		MonthlySMM:        curves.MonthlySMM(tierCurves.AnnualCPRPct, horizon),
		RecoveryPct:       tierCurves.GrossRecoveryPct,
		RecoveryLagMonths: tierCurves.RecoveryLagMonths,
		MonthlyDiscount:   discountRate / 12.0,
	})

	// IRR of buying the remaining balance at par; best-effort only
	irr := formulas.SolveIRR(sim.CashFlows, schedule.SeasonedBalance)

	return &domain.ValuationResult{
		LoanID:        loan.ID,
		RiskTier:      cls.Tier,
		DiscountRate:  discountRate,
		NPV:           sim.NPV,
		NPVRatio:      sim.NPVRatio,
		ExpectedLoss:  sim.ExpectedLoss,
		WAL:           sim.WAL,
		IRR:           irr,
		RiskBreakdown: breakdown,
		CurveUsed:     curveUsed,
		ValuedAt:      valuedAt,
	}, nil
}
