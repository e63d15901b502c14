package portfolio

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/meridianlane/loanvaluer/internal/domain"
	"github.com/meridianlane/loanvaluer/internal/modules/valuation"
	"github.com/meridianlane/loanvaluer/pkg/formulas"
)

// Service runs portfolio-wide revaluation and manages analyst overrides
type Service struct {
	repo         *Repository
	valuer       *valuation.Service
	riskFreeRate float64
	log          zerolog.Logger
	now          func() time.Time
}

// NewService creates a new portfolio service
func NewService(repo *Repository, valuer *valuation.Service, riskFreeRate float64, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		valuer:       valuer,
		riskFreeRate: riskFreeRate,
		log:          log.With().Str("service", "portfolio").Logger(),
		now:          time.Now,
	}
}

// ValueLoan values a single loan by ID, applying any stored override to
// the borrower before classification, and persists the result.
func (s *Service) ValueLoan(loanID string) (*domain.ValuationResult, error) {
	loan, err := s.repo.GetLoan(loanID)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, fmt.Errorf("loan %s not found", loanID)
	}

	result, err := s.valueOne(loan)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveValuation(result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) valueOne(loan *domain.Loan) (*domain.ValuationResult, error) {
	borrower, err := s.repo.GetBorrower(loan.BorrowerID)
	if err != nil {
		return nil, err
	}
	if borrower == nil {
		// No credit attributes at all; classification degrades to the
		// most conservative tier.
		borrower = &domain.Borrower{ID: loan.BorrowerID}
	}

	override, err := s.repo.GetOverride(loan.ID)
	if err != nil {
		return nil, err
	}
	merged := override.Apply(*borrower)

	return s.valuer.ValueLoan(loan, &merged, s.riskFreeRate)
}

// ValueAll revalues the whole portfolio, persisting each result, and
// returns distribution statistics over the run. Individual loan failures
// are counted and logged, not fatal.
func (s *Service) ValueAll() (*RunSummary, error) {
	loans, err := s.repo.GetAllLoans()
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{
		RanAt:      s.now(),
		LoanCount:  len(loans),
		TierCounts: make(map[domain.RiskTier]int),
	}

	var ratios, irrs []float64
	for _, loan := range loans {
		result, err := s.valueOne(loan)
		if err != nil {
			summary.FailedCount++
			s.log.Error().Err(err).Str("loan", loan.ID).Msg("Valuation failed")
			continue
		}
		if err := s.repo.SaveValuation(result); err != nil {
			summary.FailedCount++
			s.log.Error().Err(err).Str("loan", loan.ID).Msg("Failed to persist valuation")
			continue
		}

		summary.ValuedCount++
		summary.TotalPrincipal += loan.Principal
		summary.TotalNPV += result.NPV
		summary.TierCounts[result.RiskTier]++
		if result.NPVRatio != nil {
			ratios = append(ratios, *result.NPVRatio)
		}
		if result.IRR != nil {
			irrs = append(irrs, *result.IRR)
		}
	}

	if len(ratios) > 0 {
		summary.MeanNPVRatio = floatPtr(formulas.Mean(ratios))
		summary.StdDevNPVRatio = floatPtr(formulas.StdDev(ratios))
		summary.MedianNPVRatio = floatPtr(formulas.Quantile(ratios, 0.5))
		summary.P05NPVRatio = floatPtr(formulas.Quantile(ratios, 0.05))
		summary.P95NPVRatio = floatPtr(formulas.Quantile(ratios, 0.95))
	}
	if len(irrs) > 0 {
		summary.MeanIRR = floatPtr(formulas.Mean(irrs))
		summary.MedianIRR = floatPtr(formulas.Quantile(irrs, 0.5))
	}

	s.log.Info().
		Int("loans", summary.LoanCount).
		Int("valued", summary.ValuedCount).
		Int("failed", summary.FailedCount).
		Float64("total_npv", summary.TotalNPV).
		Msg("Portfolio revaluation complete")

	return summary, nil
}

func floatPtr(v float64) *float64 {
	return &v
}

// SetOverride stores an analyst override after checking the loan exists
func (s *Service) SetOverride(o *BorrowerOverride) error {
	loan, err := s.repo.GetLoan(o.LoanID)
	if err != nil {
		return err
	}
	if loan == nil {
		return fmt.Errorf("loan %s not found", o.LoanID)
	}
	return s.repo.SetOverride(o)
}

// ClearOverride removes the override for a loan
func (s *Service) ClearOverride(loanID string) error {
	return s.repo.ClearOverride(loanID)
}
