package position

import (
	"math"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/provlabs/lease/finance"
)

// MinRecheck is the shortest delay before a healthy position is checked again.
const MinRecheck = time.Minute

// Spec holds the limits a position lives within. Minimums are in the LPN.
type Spec struct {
	Liability      Liability    `json:"liability"`
	MinAsset       finance.Coin `json:"min_asset"`
	MinTransaction finance.Coin `json:"min_transaction"`
}

func (s Spec) Validate() error {
	if err := s.Liability.Validate(); err != nil {
		return err
	}
	if s.MinAsset.IsZero() || s.MinTransaction.IsZero() {
		return ErrInvalidSpec.Wrap("minimums must be positive")
	}
	if !s.MinAsset.Of(finance.Lpn()) || !s.MinTransaction.Of(finance.Lpn()) {
		return ErrInvalidSpec.Wrapf("minimums must be in %s", finance.Lpn())
	}
	return nil
}

// ValidateOpen checks the LPN value of a position about to be opened.
func (s Spec) ValidateOpen(downpayment, borrow finance.Coin) error {
	if downpayment.LT(s.MinTransaction) {
		return ErrTransactionTooSmall.Wrapf("downpayment %s below %s", downpayment, s.MinTransaction)
	}
	if total := downpayment.Add(borrow); total.LT(s.MinAsset) {
		return ErrPositionTooSmall.Wrapf("position %s below %s", total, s.MinAsset)
	}
	return nil
}

// Position is an amount of the lease asset held under a spec.
type Position struct {
	Amount finance.Coin `json:"amount"`
	Spec   Spec         `json:"spec"`
}

func New(amount finance.Coin, spec Spec) Position {
	return Position{Amount: amount, Spec: spec}
}

// Value of the position in the LPN under price, asset to LPN.
func (p Position) Value(price finance.Price) finance.Coin {
	return price.Total(p.Amount)
}

// LTV returns totalDue over the position value, saturating on a worthless
// position.
func (p Position) LTV(totalDue finance.Coin, price finance.Price) finance.Percent {
	return ltvOf(totalDue, p.Value(price))
}

func ltvOf(due, value finance.Coin) finance.Percent {
	if value.IsZero() {
		return finance.Percent(math.MaxUint32)
	}
	r := due.Amount.Uint().MulUint64(uint64(finance.Hundred)).Quo(value.Amount.Uint())
	if r.GT(sdkmath.NewUint(math.MaxUint32)) {
		return finance.Percent(math.MaxUint32)
	}
	return finance.Percent(r.Uint64())
}

// ValidateClose checks a partial close of amount, in the asset.
func (p Position) ValidateClose(amount finance.Coin, price finance.Price) error {
	if !amount.Of(p.Amount.Currency()) {
		return ErrCloseAmount.Wrapf("%s is not in %s", amount, p.Amount.Ticker)
	}
	if !amount.LT(p.Amount) {
		return ErrCloseAmount.Wrapf("%s is not below the position %s", amount, p.Amount)
	}
	if v := price.Total(amount); v.LT(p.Spec.MinTransaction) {
		return ErrTransactionTooSmall.Wrapf("close value %s below %s", v, p.Spec.MinTransaction)
	}
	if v := price.Total(p.Amount.Sub(amount)); v.LT(p.Spec.MinAsset) {
		return ErrPositionTooSmall.Wrapf("remaining value %s below %s", v, p.Spec.MinAsset)
	}
	return nil
}

// Reduce drops amount off the position.
func (p Position) Reduce(amount finance.Coin) Position {
	p.Amount = p.Amount.Sub(amount)
	return p
}

// Due is the part of a loan state a debt check needs. Amounts are in the LPN.
type Due struct {
	Total finance.Coin
	// Overdue is collectable now.
	Overdue finance.Coin
	// OverdueIn is the time until more overdue becomes collectable, zero when
	// nothing is pending.
	OverdueIn time.Duration
}

// Debt classifies the position against its due under price, asset to LPN.
func (p Position) Debt(due Due, price finance.Price) Debt {
	if due.Total.IsZero() {
		return NoDebt{}
	}

	value := p.Value(price)
	ltv := ltvOf(due.Total, value)
	if liq := pick(p.liquidateLiability(ltv, due.Total, value, price), p.liquidateOverdue(due.Overdue, value, price)); liq != nil {
		return BadDebt{Liquidation: *liq}
	}

	recheck := p.Spec.Liability.RecalcTime
	if due.OverdueIn > 0 && due.OverdueIn < recheck {
		recheck = due.OverdueIn
	}
	return OkDebt{Zone: p.Spec.Liability.ZoneOf(ltv), RecheckIn: max(recheck, MinRecheck)}
}

func (p Position) liquidateLiability(ltv finance.Percent, totalDue, value finance.Coin, price finance.Price) *Liquidation {
	liability := p.Spec.Liability
	if ltv < liability.Max {
		return nil
	}
	amount := finance.NewCoin(liability.AmountToLiquidate(value.Amount, totalDue.Amount), finance.Lpn())
	return p.liquidation(Cause{Kind: CauseLiability, LTV: ltv, Healthy: liability.Healthy}, amount, value, price)
}

func (p Position) liquidateOverdue(overdue, value finance.Coin, price finance.Price) *Liquidation {
	if overdue.IsZero() || overdue.LT(p.Spec.MinTransaction) {
		return nil
	}
	return p.liquidation(Cause{Kind: CauseOverdue}, overdue, value, price)
}

// liquidation sells amount, in the LPN, unless what stays or what is sold is
// too small to keep the position partial.
func (p Position) liquidation(cause Cause, amount, value finance.Coin, price finance.Price) *Liquidation {
	full := &Liquidation{Full: true, Amount: p.Amount, Cause: cause}
	if amount.GTE(value) || amount.LT(p.Spec.MinTransaction) {
		return full
	}
	if value.Sub(amount).LT(p.Spec.MinAsset) {
		return full
	}
	sell := price.Inv().TotalCeil(amount)
	if sell.GTE(p.Amount) {
		return full
	}
	return &Liquidation{Amount: sell, Cause: cause}
}

// pick prefers a full liquidation, then the larger one, then the liability
// cause on a tie.
func pick(liability, overdue *Liquidation) *Liquidation {
	switch {
	case liability == nil:
		return overdue
	case overdue == nil:
		return liability
	case liability.Full:
		return liability
	case overdue.Full:
		return overdue
	case overdue.Amount.Amount.GT(liability.Amount.Amount):
		return overdue
	default:
		return liability
	}
}

// Alarms returns the prices, asset to LPN, outside which the position leaves
// its zone or trips the close policy. The upper bound is absent when nothing
// needs to happen on a price rise.
func (p Position) Alarms(totalDue finance.Coin, zone Zone, policy ClosePolicy) (finance.Price, *finance.Price) {
	liability := p.Spec.Liability
	high := zone.HighLTV(liability)
	if policy.StopLoss != nil && *policy.StopLoss < high {
		high = *policy.StopLoss
	}
	below := p.priceAt(high, totalDue)

	low, hasLow := zone.LowLTV(liability)
	if policy.TakeProfit != nil && (!hasLow || *policy.TakeProfit > low) {
		low, hasLow = *policy.TakeProfit, true
	}
	if !hasLow {
		return below, nil
	}
	above := p.priceAt(low, totalDue)
	return below, &above
}

// priceAt is the price at which the position reaches ltv.
func (p Position) priceAt(ltv finance.Percent, totalDue finance.Coin) finance.Price {
	asset := p.Amount.Scale(ltv)
	if asset.IsZero() {
		asset = finance.NewCoinU64(1, p.Amount.Currency())
	}
	quote := totalDue
	if quote.IsZero() {
		quote = finance.NewCoinU64(1, totalDue.Currency())
	}
	return finance.Price{Amount: asset, AmountQuote: quote}
}
