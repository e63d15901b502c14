package curves

import "database/sql"

// Schema for the risk-curve and adjustment tables in reference.db.
// Curve series are stored as JSON arrays in TEXT columns.
const Schema = `
CREATE TABLE IF NOT EXISTS risk_curves (
    tier TEXT PRIMARY KEY,
    risk_premium_bps REAL NOT NULL,
    cumulative_default_pct TEXT NOT NULL,
    annual_cpr_pct TEXT NOT NULL,
    gross_recovery_pct REAL NOT NULL DEFAULT 0,
    recovery_lag_months INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS risk_adjustments (
    category TEXT NOT NULL,
    key TEXT NOT NULL,
    bps REAL NOT NULL,
    PRIMARY KEY (category, key)
);
`

// Adjustment categories in risk_adjustments
const (
	CategoryDegree       = "degree"
	CategoryYearInSchool = "year_in_school"
	CategorySchoolTier   = "school_tier"
	CategoryGraduate     = "graduate"
)

// InitSchema ensures the reference curve tables exist
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
