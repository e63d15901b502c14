package portfolio

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/meridianlane/loanvaluer/internal/domain"
)

const dateLayout = "2006-01-02"

// Repository is the data layer for loans, borrowers, overrides and
// valuation history in portfolio.db
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new portfolio repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "portfolio").Logger(),
	}
}

// GetLoan returns one loan with its events and ownership lots
func (r *Repository) GetLoan(id string) (*domain.Loan, error) {
	query := "SELECT id, borrower_id, principal, nominal_rate, term_years, grace_years, start_date FROM loans WHERE id = ?"

	loan, err := r.scanLoan(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query loan %s: %w", id, err)
	}

	if err := r.attachEvents(loan); err != nil {
		return nil, err
	}
	if err := r.attachLots(loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// GetAllLoans returns every loan with events and ownership lots attached
func (r *Repository) GetAllLoans() ([]*domain.Loan, error) {
	query := "SELECT id, borrower_id, principal, nominal_rate, term_years, grace_years, start_date FROM loans ORDER BY id"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	var loans []*domain.Loan
	for rows.Next() {
		loan, err := r.scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating loans: %w", err)
	}

	for _, loan := range loans {
		if err := r.attachEvents(loan); err != nil {
			return nil, err
		}
		if err := r.attachLots(loan); err != nil {
			return nil, err
		}
	}
	return loans, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanLoan(row rowScanner) (*domain.Loan, error) {
	var loan domain.Loan
	var startDate string
	if err := row.Scan(&loan.ID, &loan.BorrowerID, &loan.Principal, &loan.NominalRate,
		&loan.TermYears, &loan.GraceYears, &startDate); err != nil {
		return nil, err
	}

	parsed, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date for loan %s: %w", loan.ID, err)
	}
	loan.StartDate = parsed
	return &loan, nil
}

func (r *Repository) attachEvents(loan *domain.Loan) error {
	query := "SELECT id, loan_id, type, date, amount FROM loan_events WHERE loan_id = ? ORDER BY date, id"

	rows, err := r.db.Query(query, loan.ID)
	if err != nil {
		return fmt.Errorf("failed to query events for loan %s: %w", loan.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.LoanEvent
		var date string
		if err := rows.Scan(&e.ID, &e.LoanID, &e.Type, &date, &e.Amount); err != nil {
			return fmt.Errorf("failed to scan loan event: %w", err)
		}
		parsed, err := time.Parse(dateLayout, date)
		if err != nil {
			return fmt.Errorf("invalid event date for loan %s: %w", loan.ID, err)
		}
		e.Date = parsed
		loan.Events = append(loan.Events, e)
	}
	return rows.Err()
}

func (r *Repository) attachLots(loan *domain.Loan) error {
	query := "SELECT id, loan_id, date, amount FROM ownership_lots WHERE loan_id = ? ORDER BY date, id"

	rows, err := r.db.Query(query, loan.ID)
	if err != nil {
		return fmt.Errorf("failed to query lots for loan %s: %w", loan.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var lot domain.OwnershipLot
		var date string
		if err := rows.Scan(&lot.ID, &lot.LoanID, &date, &lot.Amount); err != nil {
			return fmt.Errorf("failed to scan ownership lot: %w", err)
		}
		parsed, err := time.Parse(dateLayout, date)
		if err != nil {
			return fmt.Errorf("invalid lot date for loan %s: %w", loan.ID, err)
		}
		lot.Date = parsed
		loan.OwnershipLots = append(loan.OwnershipLots, lot)
	}
	return rows.Err()
}

// UpsertLoan inserts or replaces a loan row. Events and lots are managed
// through AddEvent and AddLot.
func (r *Repository) UpsertLoan(loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, borrower_id, principal, nominal_rate, term_years, grace_years, start_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			borrower_id = excluded.borrower_id,
			principal = excluded.principal,
			nominal_rate = excluded.nominal_rate,
			term_years = excluded.term_years,
			grace_years = excluded.grace_years,
			start_date = excluded.start_date
	`

	_, err := r.db.Exec(query, loan.ID, loan.BorrowerID, loan.Principal, loan.NominalRate,
		loan.TermYears, loan.GraceYears, loan.StartDate.Format(dateLayout))
	if err != nil {
		return fmt.Errorf("failed to upsert loan %s: %w", loan.ID, err)
	}
	return nil
}

// AddEvent records a historical event on a loan
func (r *Repository) AddEvent(e domain.LoanEvent) error {
	query := "INSERT INTO loan_events (loan_id, type, date, amount) VALUES (?, ?, ?, ?)"

	_, err := r.db.Exec(query, e.LoanID, e.Type, e.Date.Format(dateLayout), e.Amount)
	if err != nil {
		return fmt.Errorf("failed to insert event for loan %s: %w", e.LoanID, err)
	}
	return nil
}

// AddLot records an ownership lot on a loan
func (r *Repository) AddLot(lot domain.OwnershipLot) error {
	query := "INSERT INTO ownership_lots (loan_id, date, amount) VALUES (?, ?, ?)"

	_, err := r.db.Exec(query, lot.LoanID, lot.Date.Format(dateLayout), lot.Amount)
	if err != nil {
		return fmt.Errorf("failed to insert lot for loan %s: %w", lot.LoanID, err)
	}
	return nil
}

// GetBorrower returns one borrower, or nil when not found
func (r *Repository) GetBorrower(id string) (*domain.Borrower, error) {
	query := `SELECT id, fico, cosigner_fico, year_in_school, is_graduate_student,
		degree_type, school, opeid FROM borrowers WHERE id = ?`

	var b domain.Borrower
	var fico, cosigner sql.NullInt64
	var grad int
	err := r.db.QueryRow(query, id).Scan(&b.ID, &fico, &cosigner, &b.YearInSchool,
		&grad, &b.DegreeType, &b.School, &b.OPEID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query borrower %s: %w", id, err)
	}

	if fico.Valid {
		v := int(fico.Int64)
		b.FICO = &v
	}
	if cosigner.Valid {
		v := int(cosigner.Int64)
		b.CosignerFICO = &v
	}
	b.IsGraduateStudent = grad != 0
	return &b, nil
}

// UpsertBorrower inserts or replaces a borrower row
func (r *Repository) UpsertBorrower(b *domain.Borrower) error {
	query := `
		INSERT INTO borrowers (id, fico, cosigner_fico, year_in_school, is_graduate_student, degree_type, school, opeid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			fico = excluded.fico,
			cosigner_fico = excluded.cosigner_fico,
			year_in_school = excluded.year_in_school,
			is_graduate_student = excluded.is_graduate_student,
			degree_type = excluded.degree_type,
			school = excluded.school,
			opeid = excluded.opeid
	`

	var fico, cosigner any
	if b.FICO != nil {
		fico = *b.FICO
	}
	if b.CosignerFICO != nil {
		cosigner = *b.CosignerFICO
	}
	grad := 0
	if b.IsGraduateStudent {
		grad = 1
	}

	_, err := r.db.Exec(query, b.ID, fico, cosigner, b.YearInSchool, grad,
		string(b.DegreeType), b.School, b.OPEID)
	if err != nil {
		return fmt.Errorf("failed to upsert borrower %s: %w", b.ID, err)
	}
	return nil
}

// GetOverride returns the override for a loan, or nil when none is set
func (r *Repository) GetOverride(loanID string) (*BorrowerOverride, error) {
	query := `SELECT loan_id, fico, cosigner_fico, year_in_school, is_graduate_student,
		degree_type, school, opeid FROM borrower_overrides WHERE loan_id = ?`

	var o BorrowerOverride
	var fico, cosigner, year, grad sql.NullInt64
	var degree, school, opeid sql.NullString
	err := r.db.QueryRow(query, loanID).Scan(&o.LoanID, &fico, &cosigner, &year,
		&grad, &degree, &school, &opeid)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query override for loan %s: %w", loanID, err)
	}

	if fico.Valid {
		v := int(fico.Int64)
		o.FICO = &v
	}
	if cosigner.Valid {
		v := int(cosigner.Int64)
		o.CosignerFICO = &v
	}
	if year.Valid {
		v := int(year.Int64)
		o.YearInSchool = &v
	}
	if grad.Valid {
		v := grad.Int64 != 0
		o.IsGraduateStudent = &v
	}
	if degree.Valid {
		o.DegreeType = &degree.String
	}
	if school.Valid {
		o.School = &school.String
	}
	if opeid.Valid {
		o.OPEID = &opeid.String
	}
	return &o, nil
}

// SetOverride inserts or replaces the override for a loan
func (r *Repository) SetOverride(o *BorrowerOverride) error {
	query := `
		INSERT INTO borrower_overrides (loan_id, fico, cosigner_fico, year_in_school, is_graduate_student, degree_type, school, opeid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(loan_id) DO UPDATE SET
			fico = excluded.fico,
			cosigner_fico = excluded.cosigner_fico,
			year_in_school = excluded.year_in_school,
			is_graduate_student = excluded.is_graduate_student,
			degree_type = excluded.degree_type,
			school = excluded.school,
			opeid = excluded.opeid
	`

	var fico, cosigner, year, grad, degree, school, opeid any
	if o.FICO != nil {
		fico = *o.FICO
	}
	if o.CosignerFICO != nil {
		cosigner = *o.CosignerFICO
	}
	if o.YearInSchool != nil {
		year = *o.YearInSchool
	}
	if o.IsGraduateStudent != nil {
		if *o.IsGraduateStudent {
			grad = 1
		} else {
			grad = 0
		}
	}
	if o.DegreeType != nil {
		degree = *o.DegreeType
	}
	if o.School != nil {
		school = *o.School
	}
	if o.OPEID != nil {
		opeid = *o.OPEID
	}

	_, err := r.db.Exec(query, o.LoanID, fico, cosigner, year, grad, degree, school, opeid)
	if err != nil {
		return fmt.Errorf("failed to set override for loan %s: %w", o.LoanID, err)
	}
	return nil
}

// ClearOverride removes the override for a loan
func (r *Repository) ClearOverride(loanID string) error {
	_, err := r.db.Exec("DELETE FROM borrower_overrides WHERE loan_id = ?", loanID)
	if err != nil {
		return fmt.Errorf("failed to clear override for loan %s: %w", loanID, err)
	}
	return nil
}

// SaveValuation appends a valuation result to the history
func (r *Repository) SaveValuation(v *domain.ValuationResult) error {
	query := `
		INSERT INTO valuations (loan_id, valued_at, risk_tier, curve_used, discount_rate, npv, npv_ratio, expected_loss, wal, irr)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, v.LoanID, v.ValuedAt.Format(time.RFC3339),
		string(v.RiskTier), string(v.CurveUsed), v.DiscountRate, v.NPV,
		nullable(v.NPVRatio), nullable(v.ExpectedLoss), nullable(v.WAL), nullable(v.IRR))
	if err != nil {
		return fmt.Errorf("failed to save valuation for loan %s: %w", v.LoanID, err)
	}
	return nil
}

// GetLatestValuations returns the most recent valuation per loan
func (r *Repository) GetLatestValuations() ([]domain.ValuationResult, error) {
	query := `
		SELECT v.loan_id, v.valued_at, v.risk_tier, v.curve_used, v.discount_rate,
			v.npv, v.npv_ratio, v.expected_loss, v.wal, v.irr
		FROM valuations v
		JOIN (SELECT loan_id, MAX(valued_at) AS valued_at FROM valuations GROUP BY loan_id) latest
			ON v.loan_id = latest.loan_id AND v.valued_at = latest.valued_at
		ORDER BY v.loan_id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest valuations: %w", err)
	}
	defer rows.Close()

	var results []domain.ValuationResult
	for rows.Next() {
		v, err := scanValuation(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	return results, rows.Err()
}

// GetValuationHistory returns all valuations for one loan, newest first
func (r *Repository) GetValuationHistory(loanID string) ([]domain.ValuationResult, error) {
	query := `
		SELECT loan_id, valued_at, risk_tier, curve_used, discount_rate,
			npv, npv_ratio, expected_loss, wal, irr
		FROM valuations WHERE loan_id = ? ORDER BY valued_at DESC
	`

	rows, err := r.db.Query(query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query valuations for loan %s: %w", loanID, err)
	}
	defer rows.Close()

	var results []domain.ValuationResult
	for rows.Next() {
		v, err := scanValuation(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	return results, rows.Err()
}

func scanValuation(rows *sql.Rows) (domain.ValuationResult, error) {
	var v domain.ValuationResult
	var valuedAt string
	var ratio, loss, wal, irr sql.NullFloat64
	if err := rows.Scan(&v.LoanID, &valuedAt, &v.RiskTier, &v.CurveUsed,
		&v.DiscountRate, &v.NPV, &ratio, &loss, &wal, &irr); err != nil {
		return v, fmt.Errorf("failed to scan valuation: %w", err)
	}

	parsed, err := time.Parse(time.RFC3339, valuedAt)
	if err != nil {
		return v, fmt.Errorf("invalid valued_at for loan %s: %w", v.LoanID, err)
	}
	v.ValuedAt = parsed
	if ratio.Valid {
		v.NPVRatio = &ratio.Float64
	}
	if loss.Valid {
		v.ExpectedLoss = &loss.Float64
	}
	if wal.Valid {
		v.WAL = &wal.Float64
	}
	if irr.Valid {
		v.IRR = &irr.Float64
	}
	return v, nil
}

func nullable(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
