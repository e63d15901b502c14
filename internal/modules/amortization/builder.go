package amortization

import (
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/meridianlane/loanvaluer/internal/domain"
	"github.com/meridianlane/loanvaluer/pkg/formulas"
)

// ErrInvalidLoanBasics signals non-positive or non-finite principal, rate,
// or term. Callers must check this before simulating.
var ErrInvalidLoanBasics = errors.New("invalid loan basics")

// Builder reconstructs a loan's month-by-month scheduled balance,
// incorporating the historical events recorded on the loan.
type Builder struct {
	log zerolog.Logger
}

// NewBuilder creates a new amortization builder
func NewBuilder(log zerolog.Logger) *Builder {
	return &Builder{
		log: log.With().Str("component", "amortization").Logger(),
	}
}

// Build produces the amortization schedule for a loan as of the given
// valuation time. The theoretical level-payment schedule is generated first,
// then the loan's events are replayed in date order against it: payments and
// prepayments reduce the balance beyond the scheduled amortization for their
// period, a default truncates the schedule.
func (b *Builder) Build(loan *domain.Loan, asOf time.Time) (*Schedule, error) {
	if !loan.HasValidBasics() {
		return nil, ErrInvalidLoanBasics
	}

	termMonths := loan.TermMonths()
	payment := formulas.MonthlyPayment(loan.Principal, loan.NominalRate, termMonths)
	if payment == nil {
		return nil, ErrInvalidLoanBasics
	}

	events := make([]domain.LoanEvent, len(loan.Events))
	copy(events, loan.Events)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})

	monthlyRate := loan.NominalRate / 12.0
	balance := loan.Principal
	rows := make([]ScheduleRow, 0, termMonths)
	eventIdx := 0
	truncated := false

	for m := 1; m <= termMonths; m++ {
		periodEnd := loan.StartDate.AddDate(0, m, 0)

		interest := balance * monthlyRate
		principalPortion := *payment - interest
		if principalPortion > balance {
			principalPortion = balance
		}
		if principalPortion < 0 {
			principalPortion = 0
		}
		balance -= principalPortion

		// Replay events falling in this period
		for eventIdx < len(events) && !events[eventIdx].Date.After(periodEnd) {
			event := events[eventIdx]
			eventIdx++

			switch event.Type {
			case domain.EventPayment, domain.EventPrepayment:
				extra := event.Amount
				if extra > balance {
					extra = balance
				}
				if extra > 0 {
					balance -= extra
					principalPortion += extra
				}
			case domain.EventDefault:
				truncated = true
			default:
				b.log.Debug().
					Str("loan_id", loan.ID).
					Str("type", string(event.Type)).
					Msg("Ignoring unknown loan event type")
			}
		}

		rows = append(rows, ScheduleRow{
			Date:             periodEnd,
			Payment:          *payment,
			PrincipalPortion: principalPortion,
			InterestPortion:  interest,
			BalanceAfter:     balance,
		})

		// Balance from a defaulted period onward is non-recoverable for
		// ordinary cash-flow purposes; the terminal rule handles valuation.
		if truncated || balance <= 0 {
			break
		}
	}

	currentIndex := -1
	for i := range rows {
		if rows[i].Date.After(asOf) {
			break
		}
		currentIndex = i
	}

	seasoned := loan.Principal
	if currentIndex >= 0 {
		seasoned = rows[currentIndex].BalanceAfter
	}

	remaining := len(rows) - currentIndex - 1
	if remaining < 1 {
		// Keep the simulator well-defined at or past nominal maturity
		remaining = 1
	}

	return &Schedule{
		Rows:            rows,
		SeasonedBalance: seasoned,
		CurrentIndex:    currentIndex,
		RemainingMonths: remaining,
		MonthlyPayment:  *payment,
		Truncated:       truncated,
	}, nil
}
