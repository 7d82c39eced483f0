package position

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/provlabs/lease/finance"
)

// Liability holds the loan-to-value thresholds of a position.
type Liability struct {
	Initial       finance.Percent `json:"initial"`
	Healthy       finance.Percent `json:"healthy"`
	FirstWarning  finance.Percent `json:"first_warning"`
	SecondWarning finance.Percent `json:"second_warning"`
	ThirdWarning  finance.Percent `json:"third_warning"`
	Max           finance.Percent `json:"max"`
	// RecalcTime bounds how long the position goes without a re-check.
	RecalcTime time.Duration `json:"recalc_time"`
}

// Validate checks initial <= healthy < first < second < third < max <= 100%.
func (l Liability) Validate() error {
	var errs error
	if l.Initial == finance.ZeroPercent {
		errs = multierror.Append(errs, fmt.Errorf("initial must be positive"))
	}
	if l.Initial > l.Healthy {
		errs = multierror.Append(errs, fmt.Errorf("initial %s above healthy %s", l.Initial, l.Healthy))
	}
	levels := []finance.Percent{l.Healthy, l.FirstWarning, l.SecondWarning, l.ThirdWarning, l.Max}
	for i := 1; i < len(levels); i++ {
		if levels[i-1] >= levels[i] {
			errs = multierror.Append(errs, fmt.Errorf("threshold %s not below %s", levels[i-1], levels[i]))
		}
	}
	if l.Max > finance.Hundred {
		errs = multierror.Append(errs, fmt.Errorf("max %s above 100%%", l.Max))
	}
	if l.RecalcTime <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("recalc time must be positive"))
	}
	if errs != nil {
		return ErrInvalidLiability.Wrap(errs.Error())
	}
	return nil
}

// InitBorrowWithDownpayment returns the loan that brings the LTV of a fresh
// position to the initial level: downpayment * initial / (100% - initial).
func (l Liability) InitBorrowWithDownpayment(downpayment finance.Amount) finance.Amount {
	return downpayment.MulDiv(finance.NewAmount(uint64(l.Initial)), finance.NewAmount(uint64(l.Initial.Complement())))
}

// AmountToLiquidate returns how much of the position value must be sold and
// repaid to bring the LTV back to healthy. All amounts share one currency.
func (l Liability) AmountToLiquidate(positionValue, totalDue finance.Amount) finance.Amount {
	healthyDue := l.Healthy.Of(positionValue)
	if totalDue.LTE(healthyDue) {
		return finance.ZeroAmount()
	}
	return totalDue.Sub(healthyDue).MulDivCeil(finance.NewAmount(uint64(finance.Hundred)), finance.NewAmount(uint64(l.Healthy.Complement())))
}

// ZoneOf returns the zone the LTV falls in.
func (l Liability) ZoneOf(ltv finance.Percent) Zone {
	switch {
	case ltv < l.FirstWarning:
		return Zone{High: LevelFirst}
	case ltv < l.SecondWarning:
		return Zone{Low: LevelFirst, High: LevelSecond}
	case ltv < l.ThirdWarning:
		return Zone{Low: LevelSecond, High: LevelThird}
	default:
		return Zone{Low: LevelThird, High: LevelMax}
	}
}

// Level is a warning level of a liability.
type Level uint8

const (
	LevelNone Level = iota
	LevelFirst
	LevelSecond
	LevelThird
	LevelMax
)

// LTV returns the threshold of the level.
func (lv Level) LTV(l Liability) finance.Percent {
	switch lv {
	case LevelFirst:
		return l.FirstWarning
	case LevelSecond:
		return l.SecondWarning
	case LevelThird:
		return l.ThirdWarning
	case LevelMax:
		return l.Max
	default:
		panic(fmt.Sprintf("no threshold for level %d", lv))
	}
}

func (lv Level) String() string {
	switch lv {
	case LevelNone:
		return "none"
	case LevelMax:
		return "max"
	default:
		return fmt.Sprintf("warning-%d", lv)
	}
}

// Zone is the LTV range [Low, High) between two adjacent levels. A zone below
// the first warning has no low level.
type Zone struct {
	Low  Level `json:"low,omitempty"`
	High Level `json:"high"`
}

// LowLTV returns the lower bound when the zone has one.
func (z Zone) LowLTV(l Liability) (finance.Percent, bool) {
	if z.Low == LevelNone {
		return finance.ZeroPercent, false
	}
	return z.Low.LTV(l), true
}

// HighLTV returns the upper bound.
func (z Zone) HighLTV(l Liability) finance.Percent {
	return z.High.LTV(l)
}
