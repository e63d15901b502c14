package schools

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// Repository loads the school-tier table from reference.db
type Repository struct {
	referenceDB *sql.DB
	log         zerolog.Logger
}

// NewRepository creates a new school-tier repository
func NewRepository(referenceDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		referenceDB: referenceDB,
		log:         log.With().Str("repo", "schools").Logger(),
	}
}

// GetAll returns every school-tier row
func (r *Repository) GetAll() ([]Entry, error) {
	query := "SELECT opeid, name, display_name, tier, median_earnings FROM school_tiers"

	rows, err := r.referenceDB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query school tiers: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var displayName sql.NullString
		var earnings sql.NullFloat64
		if err := rows.Scan(&e.OPEID, &e.Name, &displayName, &e.Tier, &earnings); err != nil {
			return nil, fmt.Errorf("failed to scan school tier: %w", err)
		}
		e.DisplayName = displayName.String
		e.MedianEarnings = earnings.Float64
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating school tiers: %w", err)
	}

	return entries, nil
}

// Upsert inserts or replaces a school-tier row
func (r *Repository) Upsert(e Entry) error {
	query := `
		INSERT INTO school_tiers (opeid, name, display_name, tier, median_earnings)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(opeid) DO UPDATE SET
			name = excluded.name,
			display_name = excluded.display_name,
			tier = excluded.tier,
			median_earnings = excluded.median_earnings
	`

	_, err := r.referenceDB.Exec(query, e.OPEID, e.Name, e.DisplayName, e.Tier, e.MedianEarnings)
	if err != nil {
		return fmt.Errorf("failed to upsert school tier: %w", err)
	}

	return nil
}

// LoadTable builds an immutable lookup table from the current rows.
// The whole table is swapped by the caller, never mutated in place.
func (r *Repository) LoadTable() (*Table, error) {
	entries, err := r.GetAll()
	if err != nil {
		return nil, err
	}

	table := NewTable(entries)
	r.log.Debug().Int("schools", table.Len()).Msg("Loaded school-tier table")
	return table, nil
}
