package finance

import (
	"fmt"
	"math"
)

// Percent is a ratio in permille units.
type Percent uint32

const (
	ZeroPercent Percent = 0
	Hundred     Percent = 1000
)

// FromPercent returns whole percents as a Percent.
func FromPercent(p uint32) Percent {
	return FromPermille(p * 10)
}

// FromPermille returns permille units as a Percent.
func FromPermille(p uint32) Percent {
	return Percent(p)
}

// PercentFromRatio returns floor(part / whole) in permille. The result must
// fit in 32 bits.
func PercentFromRatio(part, whole Amount) Percent {
	if whole.IsZero() {
		panic("percent of a zero whole")
	}
	v := part.MulDiv(Hundred.amount(), whole)
	if v.GT(NewAmount(math.MaxUint32)) {
		panic(fmt.Errorf("percent overflow: %s/%s", part, whole))
	}
	return Percent(v.widen().Uint64())
}

func (p Percent) Units() uint32 { return uint32(p) }

func (p Percent) amount() Amount { return NewAmount(uint64(p)) }

// Of returns the share p of a, rounded down.
func (p Percent) Of(a Amount) Amount {
	return NewRational(p.amount(), Hundred.amount()).Of(a)
}

// Add panics on overflow.
func (p Percent) Add(o Percent) Percent {
	s := uint64(p) + uint64(o)
	if s > math.MaxUint32 {
		panic("percent overflow")
	}
	return Percent(s)
}

// Sub panics on underflow.
func (p Percent) Sub(o Percent) Percent {
	if o > p {
		panic("percent underflow")
	}
	return p - o
}

// Complement returns 100% - p.
func (p Percent) Complement() Percent {
	return Hundred.Sub(p)
}

func (p Percent) String() string {
	if p%10 == 0 {
		return fmt.Sprintf("%d%%", p/10)
	}
	return fmt.Sprintf("%d.%d%%", p/10, p%10)
}
