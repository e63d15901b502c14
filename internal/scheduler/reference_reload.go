package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/meridianlane/loanvaluer/internal/modules/curves"
)

// ReferenceReloadJob refreshes the in-memory curve and school-tier
// snapshot from reference.db. The previous snapshot stays in place when
// the reload fails, so valuations never see partial reference data.
type ReferenceReloadJob struct {
	log      zerolog.Logger
	provider *curves.Provider
}

// NewReferenceReloadJob creates a new reference reload job
func NewReferenceReloadJob(provider *curves.Provider, log zerolog.Logger) *ReferenceReloadJob {
	return &ReferenceReloadJob{
		log:      log.With().Str("job", "reference_reload").Logger(),
		provider: provider,
	}
}

// Name returns the job name
func (j *ReferenceReloadJob) Name() string {
	return "reference_reload"
}

// Run reloads the reference snapshot
func (j *ReferenceReloadJob) Run() error {
	if err := j.provider.Reload(); err != nil {
		return err
	}

	j.log.Info().Msg("Reference data reloaded")
	return nil
}
