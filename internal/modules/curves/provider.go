package curves

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/meridianlane/loanvaluer/internal/modules/schools"
)

// ErrCurvesNotLoaded is returned when a valuation is attempted before any
// reference snapshot has been supplied. This is a configuration error:
// fatal to the call, surfaced to the caller, not retried internally.
var ErrCurvesNotLoaded = errors.New("risk curves not loaded")

// Provider holds the current reference snapshot (risk curves plus the
// school-tier table) behind a narrow read-only interface. Reloads build a
// whole new snapshot and swap it atomically; a snapshot handed out to a
// valuation is never mutated, so concurrent reads during a reload stay
// consistent.
type Provider struct {
	curveRepo  *Repository
	schoolRepo *schools.Repository
	log        zerolog.Logger

	mu       sync.RWMutex
	curveSet *CurveSet
	schools  *schools.Table
}

// NewProvider creates a reference snapshot provider
func NewProvider(curveRepo *Repository, schoolRepo *schools.Repository, log zerolog.Logger) *Provider {
	return &Provider{
		curveRepo:  curveRepo,
		schoolRepo: schoolRepo,
		log:        log.With().Str("component", "reference").Logger(),
	}
}

// Reload rebuilds both snapshots from the reference store and swaps them in.
// On failure the previous snapshot stays active.
func (p *Provider) Reload() error {
	curveSet, err := p.curveRepo.LoadCurveSet()
	if err != nil {
		return err
	}

	table, err := p.schoolRepo.LoadTable()
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.curveSet = curveSet
	p.schools = table
	p.mu.Unlock()

	if curveSet == nil {
		p.log.Warn().Msg("Reference reload found no risk curves; valuations will fail until curves are loaded")
	} else {
		p.log.Info().Int("tiers", len(curveSet.Tiers)).Int("schools", table.Len()).Msg("Reference snapshot reloaded")
	}

	return nil
}

// Snapshot returns the current curve set and school table. Fails with
// ErrCurvesNotLoaded when no curves have been supplied yet.
func (p *Provider) Snapshot() (*CurveSet, *schools.Table, error) {
	p.mu.RLock()
	curveSet, table := p.curveSet, p.schools
	p.mu.RUnlock()

	if curveSet == nil {
		return nil, nil, ErrCurvesNotLoaded
	}
	if table == nil {
		table = schools.NewTable(nil)
	}
	return curveSet, table, nil
}

// SetSnapshot installs an in-memory snapshot directly, bypassing the
// repositories. Used by tests and ad-hoc valuation setups.
func (p *Provider) SetSnapshot(curveSet *CurveSet, table *schools.Table) {
	p.mu.Lock()
	p.curveSet = curveSet
	p.schools = table
	p.mu.Unlock()
}
