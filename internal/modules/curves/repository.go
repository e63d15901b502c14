package curves

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/meridianlane/loanvaluer/internal/domain"
	"github.com/meridianlane/loanvaluer/internal/modules/risk"
)

// Repository loads risk curves and adjustment tables from reference.db
type Repository struct {
	referenceDB *sql.DB
	log         zerolog.Logger
}

// NewRepository creates a new curve repository
func NewRepository(referenceDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		referenceDB: referenceDB,
		log:         log.With().Str("repo", "curves").Logger(),
	}
}

// GetAllTiers returns the curves for every configured tier
func (r *Repository) GetAllTiers() ([]TierCurves, error) {
	query := `
		SELECT tier, risk_premium_bps, cumulative_default_pct, annual_cpr_pct,
		       gross_recovery_pct, recovery_lag_months
		FROM risk_curves
	`

	rows, err := r.referenceDB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query risk curves: %w", err)
	}
	defer rows.Close()

	var tiers []TierCurves
	for rows.Next() {
		var tc TierCurves
		var tier string
		var defaultJSON, cprJSON string
		if err := rows.Scan(&tier, &tc.RiskPremiumBps, &defaultJSON, &cprJSON,
			&tc.GrossRecoveryPct, &tc.RecoveryLagMonths); err != nil {
			return nil, fmt.Errorf("failed to scan risk curve: %w", err)
		}
		tc.Tier = domain.RiskTier(tier)

		if err := json.Unmarshal([]byte(defaultJSON), &tc.CumulativeDefaultPct); err != nil {
			return nil, fmt.Errorf("invalid default curve for tier %s: %w", tier, err)
		}
		if err := json.Unmarshal([]byte(cprJSON), &tc.AnnualCPRPct); err != nil {
			return nil, fmt.Errorf("invalid prepayment curve for tier %s: %w", tier, err)
		}

		tiers = append(tiers, tc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating risk curves: %w", err)
	}

	return tiers, nil
}

// GetAdjustments returns the process-wide additive adjustment tables
func (r *Repository) GetAdjustments() (risk.Adjustments, error) {
	adj := risk.Adjustments{
		DegreeBps:       make(map[string]float64),
		YearInSchoolBps: make(map[string]float64),
		SchoolTierBps:   make(map[string]float64),
	}

	rows, err := r.referenceDB.Query("SELECT category, key, bps FROM risk_adjustments")
	if err != nil {
		return adj, fmt.Errorf("failed to query risk adjustments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category, key string
		var bps float64
		if err := rows.Scan(&category, &key, &bps); err != nil {
			return adj, fmt.Errorf("failed to scan risk adjustment: %w", err)
		}

		switch category {
		case CategoryDegree:
			adj.DegreeBps[key] = bps
		case CategoryYearInSchool:
			adj.YearInSchoolBps[key] = bps
		case CategorySchoolTier:
			adj.SchoolTierBps[key] = bps
		case CategoryGraduate:
			adj.GraduateBps = bps
		default:
			r.log.Warn().Str("category", category).Msg("Ignoring unknown adjustment category")
		}
	}

	if err := rows.Err(); err != nil {
		return adj, fmt.Errorf("error iterating risk adjustments: %w", err)
	}

	return adj, nil
}

// UpsertTier inserts or replaces one tier's curves
func (r *Repository) UpsertTier(tc TierCurves) error {
	defaultJSON, err := json.Marshal(tc.CumulativeDefaultPct)
	if err != nil {
		return fmt.Errorf("failed to encode default curve: %w", err)
	}
	cprJSON, err := json.Marshal(tc.AnnualCPRPct)
	if err != nil {
		return fmt.Errorf("failed to encode prepayment curve: %w", err)
	}

	query := `
		INSERT INTO risk_curves (tier, risk_premium_bps, cumulative_default_pct,
		                         annual_cpr_pct, gross_recovery_pct, recovery_lag_months)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(tier) DO UPDATE SET
			risk_premium_bps = excluded.risk_premium_bps,
			cumulative_default_pct = excluded.cumulative_default_pct,
			annual_cpr_pct = excluded.annual_cpr_pct,
			gross_recovery_pct = excluded.gross_recovery_pct,
			recovery_lag_months = excluded.recovery_lag_months
	`

	_, err = r.referenceDB.Exec(query, string(tc.Tier), tc.RiskPremiumBps,
		string(defaultJSON), string(cprJSON), tc.GrossRecoveryPct, tc.RecoveryLagMonths)
	if err != nil {
		return fmt.Errorf("failed to upsert risk curve: %w", err)
	}

	return nil
}

// LoadCurveSet assembles a full immutable snapshot from the current rows.
// Returns nil (no error) when no curves are configured yet.
func (r *Repository) LoadCurveSet() (*CurveSet, error) {
	tiers, err := r.GetAllTiers()
	if err != nil {
		return nil, err
	}
	if len(tiers) == 0 {
		return nil, nil
	}

	adjustments, err := r.GetAdjustments()
	if err != nil {
		return nil, err
	}

	set := &CurveSet{
		Tiers:       make(map[domain.RiskTier]TierCurves, len(tiers)),
		Adjustments: adjustments,
	}
	for _, tc := range tiers {
		set.Tiers[tc.Tier] = tc
	}

	r.log.Debug().Int("tiers", len(set.Tiers)).Msg("Loaded risk curve set")
	return set, nil
}
