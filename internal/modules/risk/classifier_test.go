package risk

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/meridianlane/loanvaluer/internal/domain"
	"github.com/meridianlane/loanvaluer/internal/modules/schools"
)

func intPtr(v int) *int { return &v }

func testAdjustments() Adjustments {
	return Adjustments{
		DegreeBps: map[string]float64{
			"Professional": -50,
			"Business":     -25,
			"STEM":         -40,
			"Other":        0,
		},
		YearInSchoolBps: map[string]float64{
			"1": 75, "2": 50, "3": 25, "4": 0, "5+": 100,
		},
		SchoolTierBps: map[string]float64{
			"TIER_1": -75, "TIER_2": 0, "TIER_3": 125, "UNKNOWN": 150,
		},
		GraduateBps: -30,
	}
}

func testTable() *schools.Table {
	return schools.NewTable([]schools.Entry{
		{OPEID: "00123400", Name: "State University", Tier: "TIER_1", MedianEarnings: 72000},
		{OPEID: "DEFAULT", Name: "DEFAULT", Tier: "TIER_3", MedianEarnings: 48000},
	})
}

func TestBlendFICO(t *testing.T) {
	tests := []struct {
		name     string
		own      *int
		cosigner *int
		want     float64
		wantNil  bool
	}{
		{
			name:     "Stronger cosigner raises the blend",
			own:      intPtr(700),
			cosigner: intPtr(800),
			want:     0.7*700 + 0.3*800,
		},
		{
			name:     "Weak cosigner cannot drag the blend down",
			own:      intPtr(780),
			cosigner: intPtr(600),
			want:     780,
		},
		{
			name: "Own score only",
			own:  intPtr(720),
			want: 720,
		},
		{
			name:     "Cosigner-only fallback",
			cosigner: intPtr(750),
			want:     750,
		},
		{
			name:    "Neither score",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BlendFICO(tt.own, tt.cosigner)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			assert.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 1e-9)
		})
	}
}

func TestBlendNeverBelowOwnScore(t *testing.T) {
	for cosigner := 300; cosigner <= 850; cosigner += 50 {
		own := 740
		blended := BlendFICO(&own, &cosigner)
		assert.NotNil(t, blended)
		assert.GreaterOrEqual(t, *blended, float64(own))
	}
}

func TestBandThresholds(t *testing.T) {
	tests := []struct {
		score float64
		want  Band
	}{
		{760, BandA},
		{759.9, BandB},
		{720, BandB},
		{719, BandC},
		{680, BandC},
		{679, BandD},
		{640, BandD},
		{639, BandE},
	}

	for _, tt := range tests {
		score := tt.score
		assert.Equal(t, tt.want, BandFor(&score), "score %v", tt.score)
	}

	assert.Equal(t, BandUnknown, BandFor(nil))
}

func TestTierRuleFirstMatchWins(t *testing.T) {
	tests := []struct {
		name         string
		band         Band
		yearInSchool int
		want         domain.RiskTier
	}{
		{name: "Band A upperclass is LOW", band: BandA, yearInSchool: 3, want: domain.TierLow},
		{name: "Band A underclass is MEDIUM", band: BandA, yearInSchool: 2, want: domain.TierMedium},
		{name: "Band B is MEDIUM regardless of year", band: BandB, yearInSchool: 4, want: domain.TierMedium},
		{name: "Band C is HIGH", band: BandC, yearInSchool: 4, want: domain.TierHigh},
		{name: "Band D is HIGH", band: BandD, yearInSchool: 1, want: domain.TierHigh},
		{name: "Band E is VERY_HIGH", band: BandE, yearInSchool: 4, want: domain.TierVeryHigh},
		{name: "Unknown band is VERY_HIGH", band: BandUnknown, yearInSchool: 4, want: domain.TierVeryHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TierFor(tt.band, tt.yearInSchool))
		})
	}
}

func TestClassifyBreakdown(t *testing.T) {
	classifier := NewClassifier(zerolog.Nop())

	borrower := &domain.Borrower{
		FICO:              intPtr(770),
		YearInSchool:      3,
		IsGraduateStudent: true,
		DegreeType:        domain.DegreeSTEM,
		School:            "State University",
		OPEID:             "00123400",
	}

	cls := classifier.Classify(borrower, testAdjustments(), testTable())

	assert.Equal(t, domain.TierLow, cls.Tier)
	assert.Equal(t, BandA, cls.Band)
	assert.Equal(t, "TIER_1", cls.SchoolTier)
	assert.Equal(t, -40.0, cls.DegreeBps)
	assert.Equal(t, -75.0, cls.SchoolBps)
	assert.Equal(t, 25.0, cls.YearBps)
	assert.Equal(t, -30.0, cls.GraduateBps)
	assert.Equal(t, 72000.0, cls.MedianEarnings)
}

func TestClassifyUnmappedCategoriesDefaultToZero(t *testing.T) {
	classifier := NewClassifier(zerolog.Nop())

	borrower := &domain.Borrower{
		FICO:         intPtr(700),
		YearInSchool: 2,
		DegreeType:   domain.DegreeType("Culinary"), // Normalizes to Other
		School:       "Unlisted Academy",
	}

	// Empty adjustment tables: every lookup defaults to 0 bps.
	cls := classifier.Classify(borrower, Adjustments{}, testTable())

	assert.Equal(t, domain.TierHigh, cls.Tier)
	assert.Equal(t, "TIER_3", cls.SchoolTier) // DEFAULT entry
	assert.Zero(t, cls.DegreeBps)
	assert.Zero(t, cls.SchoolBps)
	assert.Zero(t, cls.YearBps)
	assert.Zero(t, cls.GraduateBps)
}

func TestYearBucket(t *testing.T) {
	assert.Equal(t, "1", YearBucket(1))
	assert.Equal(t, "4", YearBucket(4))
	assert.Equal(t, "5+", YearBucket(5))
	assert.Equal(t, "5+", YearBucket(8))
}
