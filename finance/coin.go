package finance

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Coin is an amount tagged with the ticker of its currency. Arithmetic on
// coins of different currencies is a programming error and panics.
type Coin struct {
	Amount Amount `json:"amount"`
	Ticker string `json:"ticker"`
}

func NewCoin(amount Amount, c Currency) Coin {
	return Coin{Amount: amount, Ticker: c.Ticker}
}

func NewCoinU64(amount uint64, c Currency) Coin {
	return NewCoin(NewAmount(amount), c)
}

func ZeroCoin(c Currency) Coin {
	return NewCoin(ZeroAmount(), c)
}

// CoinFromSdk maps a local bank coin onto a currency of g.
func CoinFromSdk(coin sdk.Coin, g Group) (Coin, error) {
	c, err := CurrencyByBankSymbol(coin.Denom, g)
	if err != nil {
		return Coin{}, err
	}
	if coin.Amount.IsNegative() {
		return Coin{}, ErrInvalidAmount.Wrapf("negative %s", coin)
	}
	a, err := AmountFromString(coin.Amount.String())
	if err != nil {
		return Coin{}, err
	}
	return NewCoin(a, c), nil
}

// Validate checks that the ticker is registered within g.
func (c Coin) Validate(g Group) error {
	_, err := CurrencyByTicker(c.Ticker, g)
	return err
}

func (c Coin) Currency() Currency {
	return MustCurrency(c.Ticker)
}

// Of reports whether the coin is denominated in cur.
func (c Coin) Of(cur Currency) bool {
	return c.Ticker == cur.Ticker
}

func (c Coin) mustMatch(o Coin) {
	if c.Ticker != o.Ticker {
		panic(fmt.Errorf("currency mismatch: %s and %s", c.Ticker, o.Ticker))
	}
}

func (c Coin) IsZero() bool { return c.Amount.IsZero() }

func (c Coin) Equal(o Coin) bool {
	return c.Ticker == o.Ticker && c.Amount.Equal(o.Amount)
}

func (c Coin) Add(o Coin) Coin {
	c.mustMatch(o)
	return Coin{Amount: c.Amount.Add(o.Amount), Ticker: c.Ticker}
}

func (c Coin) Sub(o Coin) Coin {
	c.mustMatch(o)
	return Coin{Amount: c.Amount.Sub(o.Amount), Ticker: c.Ticker}
}

func (c Coin) SaturatingSub(o Coin) Coin {
	c.mustMatch(o)
	return Coin{Amount: c.Amount.SaturatingSub(o.Amount), Ticker: c.Ticker}
}

func (c Coin) Min(o Coin) Coin {
	c.mustMatch(o)
	return Coin{Amount: c.Amount.Min(o.Amount), Ticker: c.Ticker}
}

func (c Coin) LT(o Coin) bool {
	c.mustMatch(o)
	return c.Amount.LT(o.Amount)
}

func (c Coin) GTE(o Coin) bool {
	c.mustMatch(o)
	return c.Amount.GTE(o.Amount)
}

// Scale returns the share p of the coin.
func (c Coin) Scale(p Percent) Coin {
	return Coin{Amount: p.Of(c.Amount), Ticker: c.Ticker}
}

// ToSdk returns the coin in its local bank denomination.
func (c Coin) ToSdk() sdk.Coin {
	return sdk.NewCoin(c.Currency().BankSymbol, c.Amount.Int())
}

// ToDex returns the coin in its dex denomination.
func (c Coin) ToDex() sdk.Coin {
	return sdk.NewCoin(c.Currency().DexSymbol, c.Amount.Int())
}

func (c Coin) String() string {
	return fmt.Sprintf("%s %s", c.Amount, c.Ticker)
}
