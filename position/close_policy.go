package position

import (
	"github.com/provlabs/lease/finance"
)

// Strategy is a customer-defined reason to close a position.
type Strategy uint8

const (
	StrategyStopLoss Strategy = iota + 1
	StrategyTakeProfit
)

func (s Strategy) String() string {
	switch s {
	case StrategyStopLoss:
		return "stop-loss"
	case StrategyTakeProfit:
		return "take-profit"
	default:
		return "unknown"
	}
}

// ClosePolicy closes the position in full once the LTV reaches StopLoss or
// drops below TakeProfit.
type ClosePolicy struct {
	TakeProfit *finance.Percent `json:"take_profit,omitempty"`
	StopLoss   *finance.Percent `json:"stop_loss,omitempty"`
}

// ChangeCmd either resets a threshold or sets it to a value.
type ChangeCmd struct {
	Reset bool             `json:"reset,omitempty"`
	Set   *finance.Percent `json:"set,omitempty"`
}

// ClosePolicyChange leaves a nil threshold untouched.
type ClosePolicyChange struct {
	StopLoss   *ChangeCmd `json:"stop_loss,omitempty"`
	TakeProfit *ChangeCmd `json:"take_profit,omitempty"`
}

func apply(current *finance.Percent, cmd *ChangeCmd) (*finance.Percent, error) {
	switch {
	case cmd == nil:
		return current, nil
	case cmd.Reset && cmd.Set == nil:
		return nil, nil
	case !cmd.Reset && cmd.Set != nil:
		v := *cmd.Set
		return &v, nil
	default:
		return nil, ErrInvalidClosePolicy.Wrap("a change either resets or sets a value")
	}
}

// Change applies c to the policy.
func (p ClosePolicy) Change(c ClosePolicyChange) (ClosePolicy, error) {
	sl, err := apply(p.StopLoss, c.StopLoss)
	if err != nil {
		return p, err
	}
	tp, err := apply(p.TakeProfit, c.TakeProfit)
	if err != nil {
		return p, err
	}
	return ClosePolicy{TakeProfit: tp, StopLoss: sl}, nil
}

// Validate checks the policy against the current LTV: neither threshold may
// trigger right away and a stop loss must come before liquidation.
func (p ClosePolicy) Validate(ltv finance.Percent, liability Liability) error {
	if p.StopLoss != nil {
		sl := *p.StopLoss
		if sl == finance.ZeroPercent || sl >= liability.Max {
			return ErrInvalidClosePolicy.Wrapf("stop loss %s must be within (0%%, %s)", sl, liability.Max)
		}
		if ltv >= sl {
			return ErrInvalidClosePolicy.Wrapf("stop loss %s would trigger at the current LTV %s", sl, ltv)
		}
	}
	if p.TakeProfit != nil {
		tp := *p.TakeProfit
		if tp == finance.ZeroPercent {
			return ErrInvalidClosePolicy.Wrap("take profit must be positive")
		}
		if ltv < tp {
			return ErrInvalidClosePolicy.Wrapf("take profit %s would trigger at the current LTV %s", tp, ltv)
		}
	}
	if p.StopLoss != nil && p.TakeProfit != nil && *p.TakeProfit >= *p.StopLoss {
		return ErrInvalidClosePolicy.Wrapf("take profit %s not below stop loss %s", *p.TakeProfit, *p.StopLoss)
	}
	return nil
}

// Check returns the strategy the LTV triggers, if any.
func (p ClosePolicy) Check(ltv finance.Percent) (Strategy, bool) {
	if p.StopLoss != nil && ltv >= *p.StopLoss {
		return StrategyStopLoss, true
	}
	if p.TakeProfit != nil && ltv < *p.TakeProfit {
		return StrategyTakeProfit, true
	}
	return 0, false
}
