package risk

import (
	"github.com/rs/zerolog"

	"github.com/meridianlane/loanvaluer/internal/domain"
	"github.com/meridianlane/loanvaluer/internal/modules/schools"
)

// ficoBlendAlpha weights the borrower's own score in the cosigner blend
const ficoBlendAlpha = 0.7

// Classifier maps a borrower's credit attributes and school metadata to a
// discrete risk tier and a set of additive basis-point adjustments. It is
// pure given the reference tables passed to Classify and never mutates its
// inputs.
type Classifier struct {
	log zerolog.Logger
}

// NewClassifier creates a new risk classifier
func NewClassifier(log zerolog.Logger) *Classifier {
	return &Classifier{
		log: log.With().Str("component", "risk").Logger(),
	}
}

// Classify derives the borrower's risk tier and adjustment breakdown from
// the given adjustment tables and school-tier table.
func (c *Classifier) Classify(b *domain.Borrower, adj Adjustments, table *schools.Table) Classification {
	blended := BlendFICO(b.FICO, b.CosignerFICO)
	band := BandFor(blended)
	tier := TierFor(band, b.YearInSchool)

	school := table.Lookup(b.OPEID, b.School)

	cls := Classification{
		Tier:           tier,
		Band:           band,
		BlendedFICO:    blended,
		SchoolTier:     school.Tier,
		SchoolName:     school.DisplayName,
		MedianEarnings: school.MedianEarnings,
		DegreeBps:      adj.DegreeBps[string(NormalizeDegree(b.DegreeType))],
		SchoolBps:      adj.SchoolTierBps[school.Tier],
		YearBps:        adj.YearInSchoolBps[YearBucket(b.YearInSchool)],
	}
	if b.IsGraduateStudent {
		cls.GraduateBps = adj.GraduateBps
	}

	return cls
}

// BlendFICO combines borrower and cosigner scores into one blended score:
//
//	blended = max(own, alpha*own + (1-alpha)*(cosigner or own))
//
// The blend never falls below the borrower's own score and gives partial
// credit for a stronger cosigner, but cannot be dragged down by a weak one.
// A missing borrower score falls back to the cosigner alone; with neither,
// the result is nil.
func BlendFICO(own, cosigner *int) *float64 {
	if own == nil {
		if cosigner == nil {
			return nil
		}
		v := float64(*cosigner)
		return &v
	}

	ownScore := float64(*own)
	other := ownScore
	if cosigner != nil {
		other = float64(*cosigner)
	}

	blended := ficoBlendAlpha*ownScore + (1-ficoBlendAlpha)*other
	if blended < ownScore {
		blended = ownScore
	}
	return &blended
}

// BandFor maps a blended FICO score to its band
func BandFor(blended *float64) Band {
	if blended == nil {
		return BandUnknown
	}
	switch score := *blended; {
	case score >= 760:
		return BandA
	case score >= 720:
		return BandB
	case score >= 680:
		return BandC
	case score >= 640:
		return BandD
	default:
		return BandE
	}
}

// TierFor applies the ordered tier rule, first match wins:
// band A with three or more years in program is LOW, bands A/B are MEDIUM,
// C/D are HIGH, everything else (E or unknown) is VERY_HIGH.
func TierFor(band Band, yearInSchool int) domain.RiskTier {
	switch {
	case band == BandA && yearInSchool >= 3:
		return domain.TierLow
	case band == BandA || band == BandB:
		return domain.TierMedium
	case band == BandC || band == BandD:
		return domain.TierHigh
	default:
		return domain.TierVeryHigh
	}
}
