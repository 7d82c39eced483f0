package loan

import (
	"time"

	"cosmossdk.io/errors"

	"github.com/provlabs/lease/finance"
	"github.com/provlabs/lease/interest"
	"github.com/provlabs/lease/position"
)

// Codespace is the error codespace of loan accounting.
const Codespace = "loan"

var ErrInvalidPayment = errors.Register(Codespace, 2, "invalid loan payment")

// Loan is a pool loan in the LPN accruing two simple interests: the pool
// interest owed to the lender and the margin interest owed to the protocol.
// Each has its own paid-by time.
type Loan struct {
	Principal      finance.Coin    `json:"principal"`
	AnnualInterest finance.Percent `json:"annual_interest"`
	AnnualMargin   finance.Percent `json:"annual_margin"`
	InterestPaidBy time.Time       `json:"interest_paid_by"`
	MarginPaidBy   time.Time       `json:"margin_paid_by"`
	// DuePeriod is how long interest stays current before it becomes overdue.
	DuePeriod time.Duration `json:"due_period"`
	// GracePeriod is how long overdue interest waits before it is collected.
	GracePeriod time.Duration `json:"grace_period"`
}

// New opens a loan at now with nothing paid yet.
func New(principal finance.Coin, annualInterest, annualMargin finance.Percent, now time.Time, duePeriod, gracePeriod time.Duration) Loan {
	return Loan{
		Principal:      principal,
		AnnualInterest: annualInterest,
		AnnualMargin:   annualMargin,
		InterestPaidBy: now,
		MarginPaidBy:   now,
		DuePeriod:      duePeriod,
		GracePeriod:    gracePeriod,
	}
}

// overdueFrom is the time older interest counts as overdue from.
func (l Loan) overdueFrom(now time.Time) time.Time {
	return now.Add(-l.DuePeriod)
}

// buckets splits the unpaid interest of one component into its overdue and current parts.
// The parts always sum to the interest of the whole unpaid span.
func (l Loan) buckets(rate finance.Percent, paidBy, now time.Time) (previous, current finance.Amount) {
	principal := l.Principal.Amount
	total := interest.NewPeriod(paidBy, now, rate).Interest(principal)
	previous = interest.NewPeriod(paidBy, l.overdueFrom(now), rate).Interest(principal)
	return previous, total.Sub(previous)
}

// State is the snapshot of the loan at some time.
type State struct {
	Principal        finance.Coin    `json:"principal"`
	AnnualInterest   finance.Percent `json:"annual_interest"`
	AnnualMargin     finance.Percent `json:"annual_margin"`
	PreviousMargin   finance.Coin    `json:"previous_margin_due"`
	PreviousInterest finance.Coin    `json:"previous_interest_due"`
	CurrentMargin    finance.Coin    `json:"current_margin_due"`
	CurrentInterest  finance.Coin    `json:"current_interest_due"`
	// Overdue is the part of the previous dues collectable now.
	Overdue finance.Coin `json:"overdue_collectable"`
	// OverdueIn is the time until the previous dues become collectable. Zero
	// when they already are or none accrue.
	OverdueIn time.Duration `json:"overdue_collect_in"`
}

// State of the loan at now.
func (l Loan) State(now time.Time) State {
	lpn := l.Principal.Currency()
	prevMargin, curMargin := l.buckets(l.AnnualMargin, l.MarginPaidBy, now)
	prevInterest, curInterest := l.buckets(l.AnnualInterest, l.InterestPaidBy, now)

	s := State{
		Principal:        l.Principal,
		AnnualInterest:   l.AnnualInterest,
		AnnualMargin:     l.AnnualMargin,
		PreviousMargin:   finance.NewCoin(prevMargin, lpn),
		PreviousInterest: finance.NewCoin(prevInterest, lpn),
		CurrentMargin:    finance.NewCoin(curMargin, lpn),
		CurrentInterest:  finance.NewCoin(curInterest, lpn),
		Overdue:          finance.ZeroCoin(lpn),
	}

	for _, c := range []struct {
		paidBy   time.Time
		previous finance.Amount
	}{{l.MarginPaidBy, prevMargin}, {l.InterestPaidBy, prevInterest}} {
		collectableAt := c.paidBy.Add(l.DuePeriod + l.GracePeriod)
		if !now.Before(collectableAt) {
			s.Overdue = s.Overdue.Add(finance.NewCoin(c.previous, lpn))
			continue
		}
		if in := collectableAt.Sub(now); s.OverdueIn == 0 || in < s.OverdueIn {
			s.OverdueIn = in
		}
	}
	if l.Principal.IsZero() {
		s.OverdueIn = 0
	}
	return s
}

// TotalDue is the principal with every interest owed.
func (s State) TotalDue() finance.Coin {
	return s.Principal.
		Add(s.PreviousMargin).
		Add(s.PreviousInterest).
		Add(s.CurrentMargin).
		Add(s.CurrentInterest)
}

// InterestDue is every interest owed.
func (s State) InterestDue() finance.Coin {
	return s.TotalDue().Sub(s.Principal)
}

// Due projects the state for a position check.
func (s State) Due() position.Due {
	return position.Due{Total: s.TotalDue(), Overdue: s.Overdue, OverdueIn: s.OverdueIn}
}
