package machine

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/provlabs/lease/dex"
	"github.com/provlabs/lease/finance"
	"github.com/provlabs/lease/loan"
	"github.com/provlabs/lease/platform"
	"github.com/provlabs/lease/position"
	"github.com/provlabs/lease/types"
)

// Form is a request to open a lease. The downpayment is already held by the
// lease.
type Form struct {
	Customer    string
	Currency    string
	Downpayment finance.Coin
	MaxLTD      *finance.Percent
}

// Instantiate sizes the loan of a new lease and requests it from the pool.
func Instantiate(env Env, form Form) (Response, error) {
	asset, err := finance.CurrencyByTicker(form.Currency, finance.GroupLease)
	if err != nil {
		return Response{}, types.ErrInvalidRequest.Wrap(err.Error())
	}
	if err := form.Downpayment.Validate(finance.GroupPayment); err != nil {
		return Response{}, types.ErrPaymentCurrency.Wrap(err.Error())
	}

	lpn := finance.Lpn()
	price, err := queryPrice(env, form.Downpayment.Currency(), lpn)
	if err != nil {
		return Response{}, err
	}
	downpayment := price.Total(form.Downpayment)

	spec := env.Params.PositionSpec
	borrow := finance.NewCoin(spec.Liability.InitBorrowWithDownpayment(downpayment.Amount), lpn)
	if form.MaxLTD != nil {
		borrow = borrow.Min(finance.NewCoin(form.MaxLTD.Of(downpayment.Amount), lpn))
	}
	if borrow.IsZero() {
		return Response{}, types.ErrInvalidRequest.Wrapf("nothing to borrow against %s", form.Downpayment)
	}
	if err := spec.ValidateOpen(downpayment, borrow); err != nil {
		return Response{}, err
	}

	p := env.Params
	lease := Lease{
		Addr:       env.Self,
		Customer:   form.Customer,
		Position:   position.New(finance.ZeroCoin(asset), spec),
		Loan:       loan.Loan{Principal: finance.ZeroCoin(lpn)},
		Account:    dex.Account{Owner: env.Self, Dex: p.Dex},
		Oracle:     p.Oracle,
		TimeAlarms: p.TimeAlarms,
		Profit:     p.Profit,
	}
	return Response{
		Next:  RequestLoan{Lease: lease, Downpayment: form.Downpayment},
		Batch: platform.NewBatch(platform.LppOpenLoan{Amount: borrow}),
	}, nil
}

// RequestLoan waits for the pool to lend.
type RequestLoan struct {
	unsupported
	Lease       Lease        `json:"lease"`
	Downpayment finance.Coin `json:"downpayment"`
}

func (RequestLoan) Name() string { return "request_loan" }

func (s RequestLoan) OnLoanOpened(env Env, granted types.LoanResponse) (Response, error) {
	principal, err := finance.CoinFromSdk(granted.Principal, finance.GroupLpn)
	if err != nil {
		return Response{}, types.ErrInvalidLoan.Wrap(err.Error())
	}
	if principal.IsZero() {
		return Response{}, types.ErrInvalidLoan.Wrap("zero principal")
	}
	if granted.AnnualInterestRate > finance.Hundred {
		return Response{}, types.ErrInvalidLoan.Wrapf("annual interest %s", granted.AnnualInterestRate)
	}

	p := env.Params
	l := s.Lease
	l.Loan = loan.New(principal, granted.AnnualInterestRate, p.AnnualMargin, env.Now, p.DuePeriod, p.GracePeriod)

	next := OpenIca{Lease: l, Downpayment: s.Downpayment}
	return Response{Next: next, Batch: next.connector().Enter()}, nil
}

func (s RequestLoan) Query(Env) (StateResponse, error) {
	return StateResponse{Status: StatusOpening, Lease: s.Lease.Addr, Customer: s.Lease.Customer, InProgress: "open_loan"}, nil
}

// OpenIca waits for the interchain account of a new lease.
type OpenIca struct {
	unsupported
	Lease       Lease        `json:"lease"`
	Downpayment finance.Coin `json:"downpayment"`
}

func (OpenIca) Name() string { return "open_ica" }

func (s OpenIca) connector() dex.IcaConnector {
	return dex.NewIcaConnector(s.Lease.Addr, s.Lease.Account.Dex)
}

func (s OpenIca) OnIcaOpened(env Env, counterpartyVersion string) (Response, error) {
	account, err := s.connector().Connected(counterpartyVersion)
	if err != nil {
		return Response{}, err
	}
	l := s.Lease
	l.Account = account
	return startSwap(env, l, Task{
		Kind: TaskOpen,
		In:   []finance.Coin{s.Downpayment, l.Loan.Principal},
		Out:  l.asset().Ticker,
	})
}

// Heal requests the registration again.
func (s OpenIca) Heal(env Env) (Response, error) {
	if err := authorize(env, s.Lease.Customer, env.Params.LeaseAdmin); err != nil {
		return Response{}, err
	}
	return Response{Batch: s.connector().Enter()}, nil
}

func (s OpenIca) Query(Env) (StateResponse, error) {
	return StateResponse{Status: StatusOpening, Lease: s.Lease.Addr, Customer: s.Lease.Customer, InProgress: "open_ica_account"}, nil
}

// opened reports a lease whose asset has been bought.
func opened(l Lease, downpayment finance.Coin) sdk.Event {
	return types.NewEventOpened(l.Addr, l.Customer, l.Position.Amount, l.Loan.Principal, downpayment, l.Loan.AnnualInterest, l.Loan.AnnualMargin)
}
