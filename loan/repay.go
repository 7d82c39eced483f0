package loan

import (
	"time"

	"github.com/provlabs/lease/finance"
	"github.com/provlabs/lease/interest"
)

// Receipt accounts for one repayment.
type Receipt struct {
	PreviousMarginPaid   finance.Coin `json:"previous_margin_paid"`
	CurrentMarginPaid    finance.Coin `json:"current_margin_paid"`
	PreviousInterestPaid finance.Coin `json:"previous_interest_paid"`
	CurrentInterestPaid  finance.Coin `json:"current_interest_paid"`
	PrincipalPaid        finance.Coin `json:"principal_paid"`
	Change               finance.Coin `json:"change"`
	// Close is set once the whole principal is repaid.
	Close bool `json:"close"`
}

// MarginPaid goes to the protocol.
func (r Receipt) MarginPaid() finance.Coin {
	return r.PreviousMarginPaid.Add(r.CurrentMarginPaid)
}

// InterestPaid goes to the pool.
func (r Receipt) InterestPaid() finance.Coin {
	return r.PreviousInterestPaid.Add(r.CurrentInterestPaid)
}

// Paid is everything but the change.
func (r Receipt) Paid() finance.Coin {
	return r.MarginPaid().Add(r.InterestPaid()).Add(r.PrincipalPaid)
}

// Repay pays the loan oldest debt first: overdue margin, current margin,
// overdue interest, current interest and the principal last. A payment that
// falls short of a bucket pays the span of it it can afford and keeps the
// rest as change; nothing younger is paid then.
func (l *Loan) Repay(payment finance.Coin, now time.Time) (Receipt, error) {
	lpn := l.Principal.Currency()
	if !payment.Of(lpn) {
		return Receipt{}, ErrInvalidPayment.Wrapf("%s is not in %s", payment, lpn)
	}
	if now.Before(l.MarginPaidBy) || now.Before(l.InterestPaidBy) {
		return Receipt{}, ErrInvalidPayment.Wrapf("repayment at %s precedes the last one", now)
	}

	zero := finance.ZeroCoin(lpn)
	r := Receipt{
		PreviousMarginPaid:   zero,
		CurrentMarginPaid:    zero,
		PreviousInterestPaid: zero,
		CurrentInterestPaid:  zero,
		PrincipalPaid:        zero,
		Change:               zero,
	}

	left := payment.Amount
	settled := true
	for _, c := range []struct {
		rate     finance.Percent
		paidBy   *time.Time
		previous *finance.Coin
		current  *finance.Coin
	}{
		{l.AnnualMargin, &l.MarginPaidBy, &r.PreviousMarginPaid, &r.CurrentMarginPaid},
		{l.AnnualInterest, &l.InterestPaidBy, &r.PreviousInterestPaid, &r.CurrentInterestPaid},
	} {
		var prevPaid, curPaid finance.Amount
		prevPaid, curPaid, left, settled = l.payComponent(c.rate, c.paidBy, left, now)
		*c.previous = finance.NewCoin(prevPaid, lpn)
		*c.current = finance.NewCoin(curPaid, lpn)
		if !settled {
			break
		}
	}

	if settled {
		principal := left.Min(l.Principal.Amount)
		left = left.Sub(principal)
		l.Principal = l.Principal.Sub(finance.NewCoin(principal, lpn))
		r.PrincipalPaid = finance.NewCoin(principal, lpn)
		r.Close = l.Principal.IsZero()
	}
	r.Change = finance.NewCoin(left, lpn)
	return r, nil
}

// payComponent pays one interest, overdue part first. It reports false when
// the payment ran out before the component was paid up to now.
func (l Loan) payComponent(rate finance.Percent, paidBy *time.Time, payment finance.Amount, now time.Time) (finance.Amount, finance.Amount, finance.Amount, bool) {
	previous, current := l.buckets(rate, *paidBy, now)
	overdueFrom := l.overdueFrom(now)

	if payment.LT(previous) {
		until, change := interest.NewPeriod(*paidBy, overdueFrom, rate).Pay(l.Principal.Amount, payment)
		*paidBy = until
		return payment.Sub(change), finance.ZeroAmount(), change, false
	}
	payment = payment.Sub(previous)
	if paidBy.Before(overdueFrom) {
		*paidBy = overdueFrom
	}

	if payment.LT(current) {
		until, change := interest.NewPeriod(*paidBy, now, rate).Pay(l.Principal.Amount, payment)
		*paidBy = until
		return previous, payment.Sub(change), change, false
	}
	*paidBy = now
	return previous, current, payment.Sub(current), true
}
