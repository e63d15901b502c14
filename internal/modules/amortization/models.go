package amortization

import "time"

// ScheduleRow is one monthly period of an amortization schedule
type ScheduleRow struct {
	Date             time.Time `json:"date"`
	Payment          float64   `json:"payment"`
	PrincipalPortion float64   `json:"principal_portion"`
	InterestPortion  float64   `json:"interest_portion"`
	BalanceAfter     float64   `json:"balance_after"`
}

// Schedule is a loan's month-by-month amortization, rebuilt from the loan's
// event history on every valuation call and never mutated in place.
type Schedule struct {
	Rows            []ScheduleRow `json:"rows"`
	SeasonedBalance float64       `json:"seasoned_balance"` // Remaining principal as of the valuation date
	CurrentIndex    int           `json:"current_index"`    // Latest elapsed row, -1 if none
	RemainingMonths int           `json:"remaining_months"` // Floored at 1
	MonthlyPayment  float64       `json:"monthly_payment"`
	Truncated       bool          `json:"truncated"` // True when a default event cut the schedule short
}

// RemainingPayments returns the scheduled payment for each remaining month.
// Months past the end of the truncated schedule repeat the level payment so
// the simulator stays well-defined at or past nominal maturity.
func (s *Schedule) RemainingPayments() []float64 {
	payments := make([]float64, s.RemainingMonths)
	for m := 0; m < s.RemainingMonths; m++ {
		idx := s.CurrentIndex + 1 + m
		if idx < len(s.Rows) {
			payments[m] = s.Rows[idx].Payment
		} else {
			payments[m] = s.MonthlyPayment
		}
	}
	return payments
}
