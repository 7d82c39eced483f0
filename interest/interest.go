package interest

import (
	"fmt"
	"time"

	"github.com/provlabs/lease/finance"
)

// Year is the length of the year interest rates are quoted over.
const Year = 365 * 24 * time.Hour

// yearPermille is the denominator of a permille rate applied over nanoseconds.
var yearPermille = finance.NewAmount(uint64(Year)).MulU64(uint64(finance.Hundred))

// Interest returns floor(principal * rate * period / year) under simple
// interest. The period must not be negative.
func Interest(rate finance.Percent, principal finance.Amount, period time.Duration) finance.Amount {
	if period < 0 {
		panic(fmt.Errorf("negative interest period %s", period))
	}
	if rate == finance.ZeroPercent || period == 0 {
		return finance.ZeroAmount()
	}
	ratePeriod := finance.NewAmount(uint64(rate.Units())).MulU64(uint64(period))
	return principal.MulDiv(ratePeriod, yearPermille)
}

// Pay settles interest over period with payment. It returns how much of the
// period the payment covers and the change left over.
//
// A payment short of the whole period covers the longest span whose interest
// it can pay; the change is the rounding remainder and must not be used to pay
// anything younger than this span.
func Pay(rate finance.Percent, principal, payment finance.Amount, period time.Duration) (time.Duration, finance.Amount) {
	due := Interest(rate, principal, period)
	if payment.GTE(due) {
		return period, payment.Sub(due)
	}

	// payment < due implies both rate and principal are non-zero
	rateByPrincipal := principal.Uint().MulUint64(uint64(rate.Units()))
	covered := payment.Uint().Mul(yearPermille.Uint()).Quo(rateByPrincipal)
	paidFor := time.Duration(covered.Uint64())
	if paidFor > period {
		paidFor = period
	}
	return paidFor, payment.Sub(Interest(rate, principal, paidFor))
}

// Period is a span of time accruing interest on a fixed principal.
type Period struct {
	Start time.Time
	End   time.Time
	Rate  finance.Percent
}

// NewPeriod returns the period [start, end). An end before start yields an
// empty period.
func NewPeriod(start, end time.Time, rate finance.Percent) Period {
	if end.Before(start) {
		end = start
	}
	return Period{Start: start, End: end, Rate: rate}
}

// Length of the period.
func (p Period) Length() time.Duration {
	return p.End.Sub(p.Start)
}

// Interest accrued on principal over the period.
func (p Period) Interest(principal finance.Amount) finance.Amount {
	return Interest(p.Rate, principal, p.Length())
}

// Pay settles the period with payment and returns the time the payment
// reaches to along with the change.
func (p Period) Pay(principal, payment finance.Amount) (time.Time, finance.Amount) {
	paidFor, change := Pay(p.Rate, principal, payment, p.Length())
	return p.Start.Add(paidFor), change
}
