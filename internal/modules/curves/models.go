package curves

import (
	"github.com/meridianlane/loanvaluer/internal/domain"
	"github.com/meridianlane/loanvaluer/internal/modules/risk"
)

// TierCurves holds one risk tier's reference curves and recovery parameters.
// Curve values are annual and in percentage terms (e.g. 2.5 for 2.5%).
type TierCurves struct {
	Tier                 domain.RiskTier `json:"tier"`
	RiskPremiumBps       float64         `json:"risk_premium_bps"`
	CumulativeDefaultPct []float64       `json:"cumulative_default_pct"` // Monotonically non-decreasing
	AnnualCPRPct         []float64       `json:"annual_cpr_pct"`
	GrossRecoveryPct     float64         `json:"gross_recovery_pct"` // Fraction of defaulted balance, 0..1
	RecoveryLagMonths    int             `json:"recovery_lag_months"`
}

// CurveSet is an immutable reference snapshot: per-tier curves plus the
// process-wide adjustment tables. The core treats it as read-only for the
// duration of a valuation run.
type CurveSet struct {
	Tiers       map[domain.RiskTier]TierCurves `json:"tiers"`
	Adjustments risk.Adjustments               `json:"adjustments"`
}

// ForTier returns the curves for a tier. Unknown or unmapped tiers fall
// back to the VERY_HIGH curve: missing reference lookups are resolved
// conservatively, never fatally.
func (s *CurveSet) ForTier(tier domain.RiskTier) (TierCurves, domain.RiskTier) {
	if tc, ok := s.Tiers[tier]; ok {
		return tc, tier
	}
	if tc, ok := s.Tiers[domain.TierVeryHigh]; ok {
		return tc, domain.TierVeryHigh
	}
	return TierCurves{Tier: domain.TierUnknown}, domain.TierUnknown
}
