package finance

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// AmountBits is the width of a stored amount. Products are computed on twice
// this width and narrowed back.
const AmountBits = 128

// Amount is a non-negative quantity of the smallest unit of some currency.
// It never exceeds 128 bits; arithmetic that would leave that range panics.
type Amount struct {
	u sdkmath.Uint
}

// NewAmount returns an Amount of the given value.
func NewAmount(v uint64) Amount {
	return Amount{u: sdkmath.NewUint(v)}
}

// ZeroAmount returns the zero Amount.
func ZeroAmount() Amount {
	return NewAmount(0)
}

// AmountFromString parses a base-10 amount.
func AmountFromString(s string) (Amount, error) {
	u, err := sdkmath.ParseUint(s)
	if err != nil {
		return Amount{}, ErrInvalidAmount.Wrapf("%q: %s", s, err)
	}
	if u.BigInt().BitLen() > AmountBits {
		return Amount{}, ErrInvalidAmount.Wrapf("%q exceeds %d bits", s, AmountBits)
	}
	return Amount{u: u}, nil
}

// MustAmountFromString is AmountFromString that panics on error.
func MustAmountFromString(s string) Amount {
	a, err := AmountFromString(s)
	if err != nil {
		panic(err)
	}
	return a
}

// narrow converts a double-width intermediate back to an Amount.
func narrow(u sdkmath.Uint) Amount {
	if u.BigInt().BitLen() > AmountBits {
		panic(fmt.Errorf("amount overflow: %s does not fit in %d bits", u, AmountBits))
	}
	return Amount{u: u}
}

// widen returns the double-width representation of a.
func (a Amount) widen() sdkmath.Uint {
	if a.u.IsNil() {
		return sdkmath.ZeroUint()
	}
	return a.u
}

// Uint returns the amount as an sdkmath.Uint.
func (a Amount) Uint() sdkmath.Uint { return a.widen() }

// Int returns the amount as an sdkmath.Int.
func (a Amount) Int() sdkmath.Int { return sdkmath.NewIntFromBigInt(a.widen().BigInt()) }

func (a Amount) IsZero() bool { return a.widen().IsZero() }
func (a Amount) Equal(b Amount) bool { return a.widen().Equal(b.widen()) }
func (a Amount) LT(b Amount) bool { return a.widen().LT(b.widen()) }
func (a Amount) LTE(b Amount) bool { return a.widen().LTE(b.widen()) }
func (a Amount) GT(b Amount) bool { return a.widen().GT(b.widen()) }
func (a Amount) GTE(b Amount) bool { return a.widen().GTE(b.widen()) }
func (a Amount) String() string { return a.widen().String() }
func (a Amount) Add(b Amount) Amount { return narrow(a.widen().Add(b.widen())) }
func (a Amount) Sub(b Amount) Amount { return Amount{u: a.widen().Sub(b.widen())} }
func (a Amount) Min(b Amount) Amount { return Amount{u: sdkmath.MinUint(a.widen(), b.widen())} }
func (a Amount) Max(b Amount) Amount { return Amount{u: sdkmath.MaxUint(a.widen(), b.widen())} }
func (a Amount) MulU64(v uint64) Amount { return narrow(a.widen().MulUint64(v)) }

// SaturatingSub returns a - b, or zero when b > a.
func (a Amount) SaturatingSub(b Amount) Amount {
	if b.GTE(a) {
		return ZeroAmount()
	}
	return a.Sub(b)
}

// MulDiv returns floor(a * num / den). The product is computed on the double
// width and narrowed after the division. den must not be zero.
func (a Amount) MulDiv(num, den Amount) Amount {
	if den.IsZero() {
		panic("amount division by zero")
	}
	return narrow(a.widen().Mul(num.widen()).Quo(den.widen()))
}

// MulDivCeil is MulDiv rounding up.
func (a Amount) MulDivCeil(num, den Amount) Amount {
	if den.IsZero() {
		panic("amount division by zero")
	}
	prod := a.widen().Mul(num.widen())
	q := prod.Quo(den.widen())
	if !prod.Mod(den.widen()).IsZero() {
		q = q.Incr()
	}
	return narrow(q)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return a.widen().MarshalJSON()
}

func (a *Amount) UnmarshalJSON(bz []byte) error {
	var u sdkmath.Uint
	if err := u.UnmarshalJSON(bz); err != nil {
		return ErrInvalidAmount.Wrap(err.Error())
	}
	if u.BigInt().BitLen() > AmountBits {
		return ErrInvalidAmount.Wrapf("%s exceeds %d bits", u, AmountBits)
	}
	a.u = u
	return nil
}
