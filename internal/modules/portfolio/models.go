package portfolio

import (
	"time"

	"github.com/meridianlane/loanvaluer/internal/domain"
)

// BorrowerOverride carries per-loan analyst corrections to borrower
// attributes. Nil fields leave the stored attribute untouched.
type BorrowerOverride struct {
	LoanID            string  `json:"loan_id"`
	FICO              *int    `json:"fico,omitempty"`
	CosignerFICO      *int    `json:"cosigner_fico,omitempty"`
	YearInSchool      *int    `json:"year_in_school,omitempty"`
	IsGraduateStudent *bool   `json:"is_graduate_student,omitempty"`
	DegreeType        *string `json:"degree_type,omitempty"`
	School            *string `json:"school,omitempty"`
	OPEID             *string `json:"opeid,omitempty"`
}

// Apply returns a copy of the borrower with the override's non-nil
// fields substituted in.
func (o *BorrowerOverride) Apply(b domain.Borrower) domain.Borrower {
	if o == nil {
		return b
	}
	if o.FICO != nil {
		v := *o.FICO
		b.FICO = &v
	}
	if o.CosignerFICO != nil {
		v := *o.CosignerFICO
		b.CosignerFICO = &v
	}
	if o.YearInSchool != nil {
		b.YearInSchool = *o.YearInSchool
	}
	if o.IsGraduateStudent != nil {
		b.IsGraduateStudent = *o.IsGraduateStudent
	}
	if o.DegreeType != nil {
		b.DegreeType = domain.DegreeType(*o.DegreeType)
	}
	if o.School != nil {
		b.School = *o.School
	}
	if o.OPEID != nil {
		b.OPEID = *o.OPEID
	}
	return b
}

// RunSummary aggregates one batch revaluation pass over the portfolio.
type RunSummary struct {
	RanAt          time.Time               `json:"ran_at"`
	LoanCount      int                     `json:"loan_count"`
	ValuedCount    int                     `json:"valued_count"`
	FailedCount    int                     `json:"failed_count"`
	TotalPrincipal float64                 `json:"total_principal"`
	TotalNPV       float64                 `json:"total_npv"`
	MeanNPVRatio   *float64                `json:"mean_npv_ratio,omitempty"`
	StdDevNPVRatio *float64                `json:"stddev_npv_ratio,omitempty"`
	MedianNPVRatio *float64                `json:"median_npv_ratio,omitempty"`
	P05NPVRatio    *float64                `json:"p05_npv_ratio,omitempty"`
	P95NPVRatio    *float64                `json:"p95_npv_ratio,omitempty"`
	MeanIRR        *float64                `json:"mean_irr,omitempty"`
	MedianIRR      *float64                `json:"median_irr,omitempty"`
	TierCounts     map[domain.RiskTier]int `json:"tier_counts"`
}
