package domain

import (
	"math"
	"time"
)

// RiskTier buckets borrowers by credit quality. Each tier maps to its own
// default/prepayment curve and base risk premium in the reference data.
type RiskTier string

const (
	TierLow      RiskTier = "LOW"
	TierMedium   RiskTier = "MEDIUM"
	TierHigh     RiskTier = "HIGH"
	TierVeryHigh RiskTier = "VERY_HIGH"
	TierUnknown  RiskTier = "UNKNOWN"
)

// DegreeType is the normalized degree category
type DegreeType string

const (
	DegreeProfessional DegreeType = "Professional"
	DegreeBusiness     DegreeType = "Business"
	DegreeSTEM         DegreeType = "STEM"
	DegreeOther        DegreeType = "Other"
)

// LoanEventType identifies a historical event on a loan
type LoanEventType string

const (
	EventPayment    LoanEventType = "payment"
	EventPrepayment LoanEventType = "prepayment"
	EventDefault    LoanEventType = "default"
)

// LoanEvent is a historical event recorded on a loan
type LoanEvent struct {
	ID     int64         `json:"id"`
	LoanID string        `json:"loan_id"`
	Type   LoanEventType `json:"type"`
	Date   time.Time     `json:"date"`
	Amount float64       `json:"amount"`
}

// OwnershipLot is a purchase lot on a loan. Lots are informational
// bookkeeping; the cash-flow projection does not consume them.
type OwnershipLot struct {
	ID     int64     `json:"id"`
	LoanID string    `json:"loan_id"`
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

// Loan represents a private student loan
type Loan struct {
	ID            string         `json:"id"`
	BorrowerID    string         `json:"borrower_id"`
	Principal     float64        `json:"principal"`    // Original disbursed amount
	NominalRate   float64        `json:"nominal_rate"` // Annual rate, decimal
	TermYears     int            `json:"term_years"`
	GraceYears    int            `json:"grace_years"`
	StartDate     time.Time      `json:"start_date"`
	Events        []LoanEvent    `json:"events"`
	OwnershipLots []OwnershipLot `json:"ownership_lots"`
}

// TermMonths returns the total scheduled term in months, grace included
func (l *Loan) TermMonths() int {
	return 12 * (l.TermYears + l.GraceYears)
}

// HasValidBasics reports whether the loan's economics can be valued.
// Loans failing this check are classified UNKNOWN and skipped.
func (l *Loan) HasValidBasics() bool {
	if l.Principal <= 0 || l.NominalRate <= 0 || l.TermYears <= 0 {
		return false
	}
	if math.IsNaN(l.Principal) || math.IsInf(l.Principal, 0) {
		return false
	}
	if math.IsNaN(l.NominalRate) || math.IsInf(l.NominalRate, 0) {
		return false
	}
	return true
}

// HasDefaultEvent reports whether a default has been realized on the loan.
// A realized default is a certainty, not a projected hazard: the loan is
// valued at zero NPV and 100% expected loss regardless of curves.
func (l *Loan) HasDefaultEvent() bool {
	for _, e := range l.Events {
		if e.Type == EventDefault {
			return true
		}
	}
	return false
}

// Borrower holds the credit attributes used for risk classification
type Borrower struct {
	ID                string     `json:"id"`
	FICO              *int       `json:"fico"`          // Borrower's own score, nullable
	CosignerFICO      *int       `json:"cosigner_fico"` // Nullable
	YearInSchool      int        `json:"year_in_school"`
	IsGraduateStudent bool       `json:"is_graduate_student"`
	DegreeType        DegreeType `json:"degree_type"`
	School            string     `json:"school"`
	OPEID             string     `json:"opeid"` // Institution identifier, optional
}

// RiskBreakdown itemizes the additive basis-point adjustments applied on
// top of the tier's base risk premium
type RiskBreakdown struct {
	BasePremiumBps float64 `json:"base_premium_bps"`
	DegreeBps      float64 `json:"degree_bps"`
	SchoolBps      float64 `json:"school_bps"`
	YearBps        float64 `json:"year_bps"`
	GraduateBps    float64 `json:"graduate_bps"`
}

// TotalBps returns the full risk premium over the risk-free rate
func (b RiskBreakdown) TotalBps() float64 {
	return b.BasePremiumBps + b.DegreeBps + b.SchoolBps + b.YearBps + b.GraduateBps
}

// ValuationResult is the output of a single loan valuation. It is a pure
// function of its inputs and carries no identity beyond the loan it
// describes.
type ValuationResult struct {
	LoanID        string        `json:"loan_id"`
	RiskTier      RiskTier      `json:"risk_tier"`
	DiscountRate  float64       `json:"discount_rate"`
	NPV           float64       `json:"npv"`
	NPVRatio      *float64      `json:"npv_ratio"`     // npv/principal - 1, nil when principal <= 0
	ExpectedLoss  *float64      `json:"expected_loss"` // Fraction of original principal, nil when principal <= 0
	WAL           *float64      `json:"wal"`           // Years, nil when no discounted cash flow
	IRR           *float64      `json:"irr"`           // Annual percent, nil when undetermined
	RiskBreakdown RiskBreakdown `json:"risk_breakdown"`
	CurveUsed     RiskTier      `json:"curve_used"`
	ValuedAt      time.Time     `json:"valued_at"`
}
