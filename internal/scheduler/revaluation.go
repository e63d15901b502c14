package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/meridianlane/loanvaluer/internal/modules/portfolio"
)

// RevaluationJob revalues the whole portfolio on schedule so stored
// valuations track seasoning and newly recorded events
type RevaluationJob struct {
	log       zerolog.Logger
	portfolio *portfolio.Service
}

// NewRevaluationJob creates a new portfolio revaluation job
func NewRevaluationJob(portfolioService *portfolio.Service, log zerolog.Logger) *RevaluationJob {
	return &RevaluationJob{
		log:       log.With().Str("job", "revaluation").Logger(),
		portfolio: portfolioService,
	}
}

// Name returns the job name
func (j *RevaluationJob) Name() string {
	return "revaluation"
}

// Run revalues every loan and logs the run summary
func (j *RevaluationJob) Run() error {
	summary, err := j.portfolio.ValueAll()
	if err != nil {
		return err
	}

	j.log.Info().
		Int("loans", summary.LoanCount).
		Int("valued", summary.ValuedCount).
		Int("failed", summary.FailedCount).
		Float64("total_principal", summary.TotalPrincipal).
		Float64("total_npv", summary.TotalNPV).
		Msg("Scheduled revaluation finished")

	return nil
}
