package risk

import (
	"strconv"

	"github.com/meridianlane/loanvaluer/internal/domain"
)

// Band is the FICO band derived from the blended score
type Band string

const (
	BandA       Band = "A" // >= 760
	BandB       Band = "B" // >= 720
	BandC       Band = "C" // >= 680
	BandD       Band = "D" // >= 640
	BandE       Band = "E" // below 640
	BandUnknown Band = "UNKNOWN"
)

// Adjustments holds the process-wide additive basis-point tables, keyed by
// normalized category. Magnitudes are configuration, not logic: they are
// loaded from the reference store, never hard-coded per category.
type Adjustments struct {
	DegreeBps       map[string]float64 `json:"degree_bps"`         // Keyed by domain.DegreeType
	YearInSchoolBps map[string]float64 `json:"year_in_school_bps"` // Keyed by "1".."4", "5+"
	SchoolTierBps   map[string]float64 `json:"school_tier_bps"`    // Keyed by tier label
	GraduateBps     float64            `json:"graduate_bps"`       // Flat adjustment for graduate students
}

// Classification is the classifier's output: a discrete risk tier plus the
// additive adjustments that feed the discount rate.
type Classification struct {
	Tier           domain.RiskTier `json:"tier"`
	Band           Band            `json:"band"`
	BlendedFICO    *float64        `json:"blended_fico"`
	SchoolTier     string          `json:"school_tier"`
	SchoolName     string          `json:"school_name"`
	MedianEarnings float64         `json:"median_earnings"`
	DegreeBps      float64         `json:"degree_bps"`
	SchoolBps      float64         `json:"school_bps"`
	YearBps        float64         `json:"year_bps"`
	GraduateBps    float64         `json:"graduate_bps"`
}

// YearBucket clamps the year-in-school to the "5+" bucket at five or more
func YearBucket(yearInSchool int) string {
	if yearInSchool >= 5 {
		return "5+"
	}
	return strconv.Itoa(yearInSchool)
}

// NormalizeDegree maps free-form degree input onto the supported categories
func NormalizeDegree(d domain.DegreeType) domain.DegreeType {
	switch d {
	case domain.DegreeProfessional, domain.DegreeBusiness, domain.DegreeSTEM:
		return d
	default:
		return domain.DegreeOther
	}
}
