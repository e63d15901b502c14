package schools

import "database/sql"

// Schema for the school_tiers table in reference.db
const Schema = `
CREATE TABLE IF NOT EXISTS school_tiers (
    opeid TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    display_name TEXT,
    tier TEXT NOT NULL,
    median_earnings REAL
);

CREATE INDEX IF NOT EXISTS idx_school_tiers_name ON school_tiers(name);
`

// InitSchema ensures the school_tiers table exists
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
