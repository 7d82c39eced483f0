package dex

import (
	"github.com/provlabs/lease/finance"
)

// SlippageCalculator sets the least output a swap leg accepts.
type SlippageCalculator interface {
	MinOutput(env Env, in finance.Coin, out finance.Currency) (finance.Coin, error)
}

// AcceptAnyNonZero accepts any positive output.
type AcceptAnyNonZero struct{}

func (AcceptAnyNonZero) MinOutput(_ Env, _ finance.Coin, out finance.Currency) (finance.Coin, error) {
	return finance.NewCoinU64(1, out), nil
}

// MaxSlippage accepts outputs at most Max below the oracle value of the input.
type MaxSlippage struct {
	Max finance.Percent
}

func (m MaxSlippage) MinOutput(env Env, in finance.Coin, out finance.Currency) (finance.Coin, error) {
	price, err := env.Querier.Price(env.Ctx, in.Currency(), out)
	if err != nil {
		return finance.Coin{}, ErrQuery.Wrapf("price of %s in %s: %s", in.Ticker, out.Ticker, err)
	}
	floor := price.Total(in).Scale(m.Max.Complement())
	if floor.IsZero() {
		return finance.NewCoinU64(1, out), nil
	}
	return floor, nil
}
