package machine

import (
	"github.com/provlabs/lease/dex"
	"github.com/provlabs/lease/finance"
	"github.com/provlabs/lease/position"
	"github.com/provlabs/lease/types"
)

// State is one step of the lease lifecycle. The set of states is closed.
type State interface {
	// Name is the persisted tag of the state.
	Name() string

	Repay(env Env, payment finance.Coin) (Response, error)
	// ClosePosition closes amount of the position, or all of it when nil.
	ClosePosition(env Env, amount *finance.Coin) (Response, error)
	ChangeClosePolicy(env Env, change position.ClosePolicyChange) (Response, error)
	OnPriceAlarm(env Env) (Response, error)
	OnTimeAlarm(env Env) (Response, error)
	OnDexCallback(env Env) (Response, error)
	Heal(env Env) (Response, error)

	// OnLoanOpened is the reply of the pool to a loan request.
	OnLoanOpened(env Env, granted types.LoanResponse) (Response, error)
	// OnIcaOpened delivers the counterparty version of an opened ICA channel.
	OnIcaOpened(env Env, counterpartyVersion string) (Response, error)
	// OnResponse delivers the outcome of the last packet.
	OnResponse(env Env, resp dex.Response) (Response, error)

	Query(env Env) (StateResponse, error)
}

// unsupported rejects every request but alarms, which are dropped. States
// embed it and override what they serve.
type unsupported struct{}

func notNow(op string) error {
	return types.ErrUnsupportedOperation.Wrap(op)
}

func (unsupported) Repay(Env, finance.Coin) (Response, error) {
	return Response{}, notNow("repay")
}

func (unsupported) ClosePosition(Env, *finance.Coin) (Response, error) {
	return Response{}, notNow("close position")
}

func (unsupported) ChangeClosePolicy(Env, position.ClosePolicyChange) (Response, error) {
	return Response{}, notNow("change close policy")
}

func (unsupported) OnPriceAlarm(Env) (Response, error) { return Response{}, nil }
func (unsupported) OnTimeAlarm(Env) (Response, error)  { return Response{}, nil }

func (unsupported) OnDexCallback(Env) (Response, error) {
	return Response{}, notNow("dex callback")
}

func (unsupported) Heal(Env) (Response, error) {
	return Response{}, notNow("heal")
}

func (unsupported) OnLoanOpened(Env, types.LoanResponse) (Response, error) {
	return Response{}, notNow("loan reply")
}

func (unsupported) OnIcaOpened(Env, string) (Response, error) {
	return Response{}, notNow("ica open")
}

func (unsupported) OnResponse(Env, dex.Response) (Response, error) {
	return Response{}, notNow("packet response")
}

// Execute runs msg against s.
func Execute(s State, env Env, msg types.ExecuteMsg) (Response, error) {
	switch m := msg.(type) {
	case types.MsgRepay:
		payment, err := finance.CoinFromSdk(m.Payment, finance.GroupPayment)
		if err != nil {
			return Response{}, types.ErrPaymentCurrency.Wrap(err.Error())
		}
		return s.Repay(env, payment)
	case types.MsgClosePosition:
		if m.Amount == nil {
			return s.ClosePosition(env, nil)
		}
		amount, err := finance.CoinFromSdk(*m.Amount, finance.GroupLease)
		if err != nil {
			return Response{}, types.ErrInvalidRequest.Wrap(err.Error())
		}
		return s.ClosePosition(env, &amount)
	case types.MsgChangeClosePolicy:
		return s.ChangeClosePolicy(env, m.Change)
	case types.MsgPriceAlarm:
		return s.OnPriceAlarm(env)
	case types.MsgTimeAlarm:
		return s.OnTimeAlarm(env)
	case types.MsgDexCallback:
		return s.OnDexCallback(env)
	case types.MsgHeal:
		return s.Heal(env)
	default:
		return Response{}, types.ErrInvalidRequest.Wrapf("unknown request %T", msg)
	}
}

// Sudo runs a callback of the IBC stack against s.
func Sudo(s State, env Env, msg types.SudoMsg) (Response, error) {
	switch m := msg.(type) {
	case types.MsgIcaOpenAck:
		return s.OnIcaOpened(env, m.CounterpartyVersion)
	case types.MsgIbcAck:
		resp, err := dex.ParseAcknowledgement(m.Acknowledgement)
		if err != nil {
			return Response{}, err
		}
		return s.OnResponse(env, resp)
	case types.MsgIbcTimeout:
		return s.OnResponse(env, dex.Response{Kind: dex.ResponseTimeout})
	default:
		return Response{}, types.ErrInvalidRequest.Wrapf("unknown callback %T", msg)
	}
}
