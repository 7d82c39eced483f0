package finance

import (
	"fmt"
	"math/big"

	sdkmath "cosmossdk.io/math"
)

// Price states that Amount of the base currency is worth AmountQuote of the
// quote currency. Both amounts are non-zero.
type Price struct {
	Amount      Coin `json:"amount"`
	AmountQuote Coin `json:"amount_quote"`
}

// NewPrice validates and returns a price.
func NewPrice(amount, quote Coin) (Price, error) {
	p := Price{Amount: amount, AmountQuote: quote}
	return p, p.Validate()
}

// MustNewPrice is NewPrice that panics on an invalid price.
func MustNewPrice(amount, quote Coin) Price {
	p, err := NewPrice(amount, quote)
	if err != nil {
		panic(err)
	}
	return p
}

// Identity is the one-to-one price of c in itself.
func Identity(c Currency) Price {
	return Price{Amount: NewCoinU64(1, c), AmountQuote: NewCoinU64(1, c)}
}

func (p Price) Validate() error {
	if p.Amount.IsZero() || p.AmountQuote.IsZero() {
		return ErrInvalidPrice.Wrapf("zero amount in %s", p)
	}
	if p.Amount.Ticker == p.AmountQuote.Ticker && !p.Amount.Amount.Equal(p.AmountQuote.Amount) {
		return ErrInvalidPrice.Wrapf("non-identity price of %s in itself", p.Amount.Ticker)
	}
	return nil
}

func (p Price) Base() string  { return p.Amount.Ticker }
func (p Price) Quote() string { return p.AmountQuote.Ticker }

// Total converts of, denominated in the base, to the quote rounding down.
func (p Price) Total(of Coin) Coin {
	p.mustBase(of)
	return Coin{Amount: of.Amount.MulDiv(p.AmountQuote.Amount, p.Amount.Amount), Ticker: p.Quote()}
}

// TotalCeil is Total rounding up.
func (p Price) TotalCeil(of Coin) Coin {
	p.mustBase(of)
	return Coin{Amount: of.Amount.MulDivCeil(p.AmountQuote.Amount, p.Amount.Amount), Ticker: p.Quote()}
}

func (p Price) mustBase(of Coin) {
	if of.Ticker != p.Base() {
		panic(fmt.Errorf("price of %s applied to %s", p.Base(), of.Ticker))
	}
}

// Inv swaps base and quote.
func (p Price) Inv() Price {
	return Price{Amount: p.AmountQuote, AmountQuote: p.Amount}
}

// Mul chains p, base to mid, with o, mid to quote. The result is reduced and,
// when still wider than an amount, scaled down keeping the ratio.
func (p Price) Mul(o Price) Price {
	if p.Quote() != o.Base() {
		panic(fmt.Errorf("cannot chain %s/%s with %s/%s", p.Base(), p.Quote(), o.Base(), o.Quote()))
	}
	base := new(big.Int).Mul(p.Amount.Amount.widen().BigInt(), o.Amount.Amount.widen().BigInt())
	quote := new(big.Int).Mul(p.AmountQuote.Amount.widen().BigInt(), o.AmountQuote.Amount.widen().BigInt())
	gcd := new(big.Int).GCD(nil, nil, base, quote)
	base.Quo(base, gcd)
	quote.Quo(quote, gcd)
	if excess := max(base.BitLen(), quote.BitLen()) - AmountBits; excess > 0 {
		base.Rsh(base, uint(excess))
		quote.Rsh(quote, uint(excess))
		if base.Sign() == 0 || quote.Sign() == 0 {
			panic(fmt.Errorf("price %s/%s out of range", p.Base(), o.Quote()))
		}
	}
	return Price{
		Amount:      Coin{Amount: narrow(sdkmath.NewUintFromBigInt(base)), Ticker: p.Base()},
		AmountQuote: Coin{Amount: narrow(sdkmath.NewUintFromBigInt(quote)), Ticker: o.Quote()},
	}
}

// cmp compares by cross multiplication on the double width.
func (p Price) cmp(o Price) int {
	if p.Base() != o.Base() || p.Quote() != o.Quote() {
		panic(fmt.Errorf("comparing %s/%s with %s/%s", p.Base(), p.Quote(), o.Base(), o.Quote()))
	}
	l := p.AmountQuote.Amount.widen().Mul(o.Amount.Amount.widen())
	r := o.AmountQuote.Amount.widen().Mul(p.Amount.Amount.widen())
	switch {
	case l.LT(r):
		return -1
	case l.GT(r):
		return 1
	default:
		return 0
	}
}

func (p Price) LT(o Price) bool  { return p.cmp(o) < 0 }
func (p Price) GTE(o Price) bool { return p.cmp(o) >= 0 }

// Equal reports whether both prices quote the same pair at the same ratio.
func (p Price) Equal(o Price) bool {
	return p.Base() == o.Base() && p.Quote() == o.Quote() && p.cmp(o) == 0
}

func (p Price) String() string {
	return fmt.Sprintf("%s=%s", p.Amount, p.AmountQuote)
}
