// Package machine is the persisted lifecycle of a lease. Every entry point
// loads the current State, runs one of its handlers and stores the State the
// handler returns before any of its messages are dispatched.
package machine

import (
	"fmt"

	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/provlabs/lease/dex"
	"github.com/provlabs/lease/finance"
	"github.com/provlabs/lease/loan"
	"github.com/provlabs/lease/platform"
	"github.com/provlabs/lease/position"
	"github.com/provlabs/lease/types"
)

// Env is what a handler sees of the request it serves.
type Env struct {
	dex.Env
	Logger log.Logger
	// Sender signed the request.
	Sender string
	Params types.Params
}

// Response of a handler. A nil Next keeps the current state.
type Response struct {
	Next   State
	Batch  platform.Batch
	Events []sdk.Event
}

// after puts batch and events ahead of the ones of r.
func (r Response) after(batch platform.Batch, events ...sdk.Event) Response {
	r.Batch = batch.Merge(r.Batch)
	r.Events = append(events, r.Events...)
	return r
}

// Lease is the data every open lease carries.
type Lease struct {
	Addr        string               `json:"addr"`
	Customer    string               `json:"customer"`
	Position    position.Position    `json:"position"`
	Loan        loan.Loan            `json:"loan"`
	Account     dex.Account          `json:"account"`
	ClosePolicy position.ClosePolicy `json:"close_policy"`
	Oracle      string               `json:"oracle"`
	TimeAlarms  string               `json:"time_alarms"`
	Profit      string               `json:"profit"`
}

// LeaseOf returns the lease data s carries.
func LeaseOf(s State) Lease {
	switch st := s.(type) {
	case RequestLoan:
		return st.Lease
	case OpenIca:
		return st.Lease
	case Swap:
		return st.Lease
	case SlippageAnomaly:
		return st.Swap.Lease
	case InRecovery:
		return st.Swap.Lease
	case ResponseDelivery:
		return st.Swap.Lease
	case Active:
		return st.Lease
	case Paid:
		return st.Lease
	case Closed:
		return st.Lease
	case Liquidated:
		return st.Lease
	default:
		panic(fmt.Sprintf("unknown lease state %T", s))
	}
}

func (l Lease) asset() finance.Currency {
	return l.Position.Amount.Currency()
}

func (l Lease) lpn() finance.Currency {
	return l.Loan.Principal.Currency()
}

// authorize accepts a request signed by one of allowed.
func authorize(env Env, allowed ...string) error {
	for _, a := range allowed {
		if env.Sender == a {
			return nil
		}
	}
	return types.ErrUnauthorized.Wrapf("sender %s", env.Sender)
}

// price of the lease asset in the LPN.
func (l Lease) price(env Env) (finance.Price, error) {
	return queryPrice(env, l.asset(), l.lpn())
}

func queryPrice(env Env, base, quote finance.Currency) (finance.Price, error) {
	if base.Ticker == quote.Ticker {
		return finance.Identity(base), nil
	}
	p, err := env.Querier.Price(env.Ctx, base, quote)
	if err != nil {
		return finance.Price{}, dex.ErrQuery.Wrapf("price of %s in %s: %s", base.Ticker, quote.Ticker, err)
	}
	if err := p.Validate(); err != nil {
		return finance.Price{}, err
	}
	return p, nil
}

// repay pays the loan with payment, held by the lease in the LPN. Margin goes
// to the profit address, interest and principal to the pool and the change
// back to the customer.
func (l *Lease) repay(env Env, payment finance.Coin) (loan.Receipt, platform.Batch, error) {
	receipt, err := l.Loan.Repay(payment, env.Now)
	if err != nil {
		return loan.Receipt{}, platform.Batch{}, err
	}
	var batch platform.Batch
	batch.BankSendIfAny(l.Profit, receipt.MarginPaid())
	if !receipt.InterestPaid().IsZero() || !receipt.PrincipalPaid.IsZero() {
		batch.Schedule(platform.LppRepay{Principal: receipt.PrincipalPaid, Interest: receipt.InterestPaid()})
	}
	batch.BankSendIfAny(l.Customer, receipt.Change)
	return receipt, batch, nil
}

// repayWith repays payment and moves on to Paid once the loan is closed.
func (l Lease) repayWith(env Env, payment finance.Coin) (Response, error) {
	receipt, batch, err := l.repay(env, payment)
	if err != nil {
		return Response{}, err
	}
	event := types.NewEventRepay(l.Addr, payment, receipt)
	if receipt.Close {
		return Response{Next: Paid{Lease: l}, Batch: batch, Events: []sdk.Event{event}}, nil
	}
	resp, err := l.check(env)
	if err != nil {
		return Response{}, err
	}
	return resp.after(batch, event), nil
}

// check decides what an open lease does now: liquidate, close on its policy
// or arm its alarms again.
func (l Lease) check(env Env) (Response, error) {
	if l.Loan.Principal.IsZero() {
		return Response{Next: Paid{Lease: l}}, nil
	}
	price, err := l.price(env)
	if err != nil {
		return Response{}, err
	}
	state := l.Loan.State(env.Now)
	switch debt := l.Position.Debt(state.Due(), price).(type) {
	case position.BadDebt:
		return l.liquidate(env, debt.Liquidation)
	case position.OkDebt:
		ltv := l.Position.LTV(state.TotalDue(), price)
		if strategy, ok := l.ClosePolicy.Check(ltv); ok {
			resp, err := l.closeOnPolicy(env, strategy)
			if err != nil {
				return Response{}, err
			}
			return resp.after(platform.Batch{}, types.NewEventClosePolicy(l.Addr, l.ClosePolicy, strategy.String())), nil
		}
		return Response{Next: Active{Lease: l}, Batch: l.alarms(env, state.TotalDue(), debt)}, nil
	default:
		return Response{Next: Active{Lease: l}}, nil
	}
}

// alarms wakes the lease up once the price leaves the current zone or the
// recheck period elapses.
func (l Lease) alarms(env Env, totalDue finance.Coin, debt position.OkDebt) platform.Batch {
	below, above := l.Position.Alarms(totalDue, debt.Zone, l.ClosePolicy)
	return platform.NewBatch(
		platform.AddTimeAlarm{At: env.Now.Add(debt.RecheckIn)},
		platform.AddPriceAlarm{Below: below, AboveOrEqual: above},
	)
}

func (l Lease) liquidate(env Env, liq position.Liquidation) (Response, error) {
	env.Logger.Info("liquidating lease", "lease", l.Addr, "amount", liq.Amount.String(), "full", liq.Full, "cause", liq.Cause.Kind.String())
	return startSwap(env, l, Task{
		Kind:        TaskLiquidate,
		In:          []finance.Coin{liq.Amount},
		Out:         l.lpn().Ticker,
		Liquidation: &liq,
	})
}

func (l Lease) closeOnPolicy(env Env, strategy position.Strategy) (Response, error) {
	return startSwap(env, l, Task{
		Kind:     TaskClose,
		In:       []finance.Coin{l.Position.Amount},
		Out:      l.lpn().Ticker,
		Strategy: &strategy,
	})
}

// afterSale settles the proceeds of selling task.In[0] of the position. A
// sale of the whole position closes the loan, with the reserve covering any
// shortfall and the surplus going to the customer.
func (l Lease) afterSale(env Env, task Task, proceeds finance.Coin) (Response, error) {
	sold := task.In[0]
	l.Position = l.Position.Reduce(sold)
	full := l.Position.Amount.IsZero()

	var batch platform.Batch
	payment := proceeds
	if full {
		if due := l.Loan.State(env.Now).TotalDue(); proceeds.LT(due) {
			shortfall := due.Sub(proceeds)
			env.Logger.Info("covering liquidation losses", "lease", l.Addr, "shortfall", shortfall.String())
			batch.Schedule(platform.ReserveCoverLosses{Amount: shortfall})
			payment = due
		}
	}

	receipt, payouts, err := l.repay(env, payment)
	if err != nil {
		return Response{}, err
	}
	batch = batch.Merge(payouts)

	events := []sdk.Event{types.NewEventRepay(l.Addr, payment, receipt)}
	if task.Kind == TaskLiquidate {
		events = append(events, types.NewEventLiquidation(l.Addr, *task.Liquidation, proceeds))
	} else {
		events = append(events, types.NewEventClosePosition(l.Addr, sold, proceeds, full))
	}

	switch {
	case full && task.Kind == TaskLiquidate:
		events = append(events, types.NewEventClosed(l.Addr, l.Customer, true))
		return Response{Next: Liquidated{Lease: l}, Batch: batch, Events: events}, nil
	case full:
		events = append(events, types.NewEventClosed(l.Addr, l.Customer, false))
		return Response{Next: Closed{Lease: l}, Batch: batch, Events: events}, nil
	case receipt.Close:
		return Response{Next: Paid{Lease: l}, Batch: batch, Events: events}, nil
	}
	resp, err := l.check(env)
	if err != nil {
		return Response{}, err
	}
	return resp.after(batch, events...), nil
}

// view is the part of a query response every open lease fills in.
func (l Lease) view(env Env, status Status) StateResponse {
	amount := l.Position.Amount
	loanState := l.Loan.State(env.Now)
	policy := l.ClosePolicy
	return StateResponse{
		Status:      status,
		Lease:       l.Addr,
		Customer:    l.Customer,
		Amount:      &amount,
		Loan:        &loanState,
		ClosePolicy: &policy,
	}
}
