package machine

import (
	"github.com/provlabs/lease/finance"
	"github.com/provlabs/lease/platform"
	"github.com/provlabs/lease/position"
	"github.com/provlabs/lease/types"
)

// Active is an open position with a loan to pay.
type Active struct {
	unsupported
	Lease Lease `json:"lease"`
}

func (Active) Name() string { return "active" }

// Repay pays the loan. A payment outside the LPN is swapped first.
func (s Active) Repay(env Env, payment finance.Coin) (Response, error) {
	if payment.IsZero() {
		return Response{}, types.ErrInvalidRequest.Wrap("zero payment")
	}
	l := s.Lease
	if payment.Of(l.lpn()) {
		return l.repayWith(env, payment)
	}
	return startSwap(env, l, Task{
		Kind: TaskRepay,
		In:   []finance.Coin{payment},
		Out:  l.lpn().Ticker,
	})
}

func (s Active) ClosePosition(env Env, amount *finance.Coin) (Response, error) {
	l := s.Lease
	if err := authorize(env, l.Customer); err != nil {
		return Response{}, err
	}
	if amount == nil || amount.Equal(l.Position.Amount) {
		return startSwap(env, l, Task{
			Kind: TaskClose,
			In:   []finance.Coin{l.Position.Amount},
			Out:  l.lpn().Ticker,
		})
	}

	price, err := l.price(env)
	if err != nil {
		return Response{}, err
	}
	if err := l.Position.ValidateClose(*amount, price); err != nil {
		return Response{}, err
	}
	return startSwap(env, l, Task{
		Kind: TaskClose,
		In:   []finance.Coin{*amount},
		Out:  l.lpn().Ticker,
	})
}

func (s Active) ChangeClosePolicy(env Env, change position.ClosePolicyChange) (Response, error) {
	l := s.Lease
	if err := authorize(env, l.Customer); err != nil {
		return Response{}, err
	}
	policy, err := l.ClosePolicy.Change(change)
	if err != nil {
		return Response{}, err
	}

	price, err := l.price(env)
	if err != nil {
		return Response{}, err
	}
	state := l.Loan.State(env.Now)
	ltv := l.Position.LTV(state.TotalDue(), price)
	if err := policy.Validate(ltv, l.Position.Spec.Liability); err != nil {
		return Response{}, err
	}
	l.ClosePolicy = policy

	resp, err := l.check(env)
	if err != nil {
		return Response{}, err
	}
	return resp.after(platform.Batch{}, types.NewEventClosePolicy(l.Addr, policy, "")), nil
}

func (s Active) OnPriceAlarm(env Env) (Response, error) {
	if err := authorize(env, s.Lease.Oracle); err != nil {
		return Response{}, err
	}
	return s.Lease.check(env)
}

func (s Active) OnTimeAlarm(env Env) (Response, error) {
	if err := authorize(env, s.Lease.TimeAlarms); err != nil {
		return Response{}, err
	}
	return s.Lease.check(env)
}

func (s Active) Query(env Env) (StateResponse, error) {
	return s.Lease.view(env, StatusOpened), nil
}

// Paid is a position whose loan is closed. Its asset stays on the dex until
// the customer closes it.
type Paid struct {
	unsupported
	Lease Lease `json:"lease"`
}

func (Paid) Name() string { return "paid" }

// ClosePosition brings the whole asset back and hands it to the customer.
func (s Paid) ClosePosition(env Env, amount *finance.Coin) (Response, error) {
	l := s.Lease
	if err := authorize(env, l.Customer); err != nil {
		return Response{}, err
	}
	if amount != nil && !amount.Equal(l.Position.Amount) {
		return Response{}, types.ErrInvalidRequest.Wrap("a paid lease closes in full")
	}
	return startSwap(env, l, Task{
		Kind: TaskTransferIn,
		In:   []finance.Coin{l.Position.Amount},
		Out:  l.asset().Ticker,
	})
}

func (s Paid) Query(env Env) (StateResponse, error) {
	return s.Lease.view(env, StatusPaid), nil
}

// Closed is a lease whose position went back to its customer.
type Closed struct {
	unsupported
	Lease Lease `json:"lease"`
}

func (Closed) Name() string { return "closed" }

func (s Closed) Query(Env) (StateResponse, error) {
	return StateResponse{Status: StatusClosed, Lease: s.Lease.Addr, Customer: s.Lease.Customer}, nil
}

// Liquidated is a lease whose position was sold in full to cover its loan.
type Liquidated struct {
	unsupported
	Lease Lease `json:"lease"`
}

func (Liquidated) Name() string { return "liquidated" }

func (s Liquidated) Query(Env) (StateResponse, error) {
	return StateResponse{Status: StatusLiquidated, Lease: s.Lease.Addr, Customer: s.Lease.Customer}, nil
}
