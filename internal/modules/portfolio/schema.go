package portfolio

import "database/sql"

// Schema for the loan/borrower store and valuation history in portfolio.db
const Schema = `
CREATE TABLE IF NOT EXISTS borrowers (
    id TEXT PRIMARY KEY,
    fico INTEGER,
    cosigner_fico INTEGER,
    year_in_school INTEGER NOT NULL DEFAULT 1,
    is_graduate_student INTEGER NOT NULL DEFAULT 0,
    degree_type TEXT NOT NULL DEFAULT 'Other',
    school TEXT NOT NULL DEFAULT '',
    opeid TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS loans (
    id TEXT PRIMARY KEY,
    borrower_id TEXT NOT NULL,
    principal REAL NOT NULL,
    nominal_rate REAL NOT NULL,
    term_years INTEGER NOT NULL,
    grace_years INTEGER NOT NULL DEFAULT 0,
    start_date TEXT NOT NULL,
    FOREIGN KEY (borrower_id) REFERENCES borrowers(id)
);

CREATE TABLE IF NOT EXISTS loan_events (
    id INTEGER PRIMARY KEY,
    loan_id TEXT NOT NULL,
    type TEXT NOT NULL,
    date TEXT NOT NULL,
    amount REAL NOT NULL DEFAULT 0,
    FOREIGN KEY (loan_id) REFERENCES loans(id)
);

CREATE TABLE IF NOT EXISTS ownership_lots (
    id INTEGER PRIMARY KEY,
    loan_id TEXT NOT NULL,
    date TEXT NOT NULL,
    amount REAL NOT NULL DEFAULT 0,
    FOREIGN KEY (loan_id) REFERENCES loans(id)
);

CREATE TABLE IF NOT EXISTS borrower_overrides (
    loan_id TEXT PRIMARY KEY,
    fico INTEGER,
    cosigner_fico INTEGER,
    year_in_school INTEGER,
    is_graduate_student INTEGER,
    degree_type TEXT,
    school TEXT,
    opeid TEXT,
    FOREIGN KEY (loan_id) REFERENCES loans(id)
);

CREATE TABLE IF NOT EXISTS valuations (
    id INTEGER PRIMARY KEY,
    loan_id TEXT NOT NULL,
    valued_at TEXT NOT NULL,
    risk_tier TEXT NOT NULL,
    curve_used TEXT NOT NULL,
    discount_rate REAL NOT NULL,
    npv REAL NOT NULL,
    npv_ratio REAL,
    expected_loss REAL,
    wal REAL,
    irr REAL,
    FOREIGN KEY (loan_id) REFERENCES loans(id)
);

CREATE INDEX IF NOT EXISTS idx_loan_events_loan ON loan_events(loan_id);
CREATE INDEX IF NOT EXISTS idx_ownership_lots_loan ON ownership_lots(loan_id);
CREATE INDEX IF NOT EXISTS idx_valuations_loan ON valuations(loan_id, valued_at);
`

// InitSchema ensures the portfolio tables exist
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
