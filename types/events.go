package types

import (
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/provlabs/lease/finance"
	"github.com/provlabs/lease/loan"
	"github.com/provlabs/lease/position"
)

const (
	EventTypeOpened          = "lease-opened"
	EventTypeRepay           = "lease-repay"
	EventTypeClosePosition   = "lease-close-position"
	EventTypeLiquidation     = "lease-liquidation"
	EventTypeClosed          = "lease-closed"
	EventTypeSlippageAnomaly = "lease-slippage-anomaly"
	EventTypeClosePolicy     = "lease-close-policy"
	EventTypeTransition      = "lease-transition"
	EventTypeCritical        = "lease-critical"

	AttributeKeyLease       = "lease"
	AttributeKeyCustomer    = "customer"
	AttributeKeyAsset       = "asset"
	AttributeKeyLoan        = "loan"
	AttributeKeyDownpayment = "downpayment"
	AttributeKeyRate        = "loan-interest-rate"
	AttributeKeyMargin      = "margin-interest-rate"
	AttributeKeyPayment     = "payment"
	AttributeKeyPrincipal   = "principal"
	AttributeKeyInterest    = "interest"
	AttributeKeyMarginPaid  = "margin"
	AttributeKeyChange      = "change"
	AttributeKeyLoanClosed  = "loan-close"
	AttributeKeyAmount      = "amount"
	AttributeKeyFull        = "full"
	AttributeKeyCause       = "cause"
	AttributeKeyLTV         = "ltv"
	AttributeKeyStrategy    = "strategy"
	AttributeKeyReason      = "reason"
	AttributeKeyFrom        = "from"
	AttributeKeyTo          = "to"
	AttributeKeyStopLoss    = "stop-loss"
	AttributeKeyTakeProfit  = "take-profit"
)

// NewEventOpened reports a lease that bought its asset.
func NewEventOpened(lease, customer string, asset, loanAmount, downpayment finance.Coin, rate, margin finance.Percent) sdk.Event {
	return sdk.NewEvent(EventTypeOpened,
		sdk.NewAttribute(AttributeKeyLease, lease),
		sdk.NewAttribute(AttributeKeyCustomer, customer),
		sdk.NewAttribute(AttributeKeyAsset, asset.String()),
		sdk.NewAttribute(AttributeKeyLoan, loanAmount.String()),
		sdk.NewAttribute(AttributeKeyDownpayment, downpayment.String()),
		sdk.NewAttribute(AttributeKeyRate, rate.String()),
		sdk.NewAttribute(AttributeKeyMargin, margin.String()),
	)
}

// NewEventRepay reports a loan repayment.
func NewEventRepay(lease string, payment finance.Coin, receipt loan.Receipt) sdk.Event {
	return sdk.NewEvent(EventTypeRepay,
		sdk.NewAttribute(AttributeKeyLease, lease),
		sdk.NewAttribute(AttributeKeyPayment, payment.String()),
		sdk.NewAttribute(AttributeKeyMarginPaid, receipt.MarginPaid().String()),
		sdk.NewAttribute(AttributeKeyInterest, receipt.InterestPaid().String()),
		sdk.NewAttribute(AttributeKeyPrincipal, receipt.PrincipalPaid.String()),
		sdk.NewAttribute(AttributeKeyChange, receipt.Change.String()),
		sdk.NewAttribute(AttributeKeyLoanClosed, strconv.FormatBool(receipt.Close)),
	)
}

// NewEventClosePosition reports a customer close of amount.
func NewEventClosePosition(lease string, amount, proceeds finance.Coin, full bool) sdk.Event {
	return sdk.NewEvent(EventTypeClosePosition,
		sdk.NewAttribute(AttributeKeyLease, lease),
		sdk.NewAttribute(AttributeKeyAmount, amount.String()),
		sdk.NewAttribute(AttributeKeyPayment, proceeds.String()),
		sdk.NewAttribute(AttributeKeyFull, strconv.FormatBool(full)),
	)
}

// NewEventLiquidation reports a liquidation.
func NewEventLiquidation(lease string, liq position.Liquidation, proceeds finance.Coin) sdk.Event {
	return sdk.NewEvent(EventTypeLiquidation,
		sdk.NewAttribute(AttributeKeyLease, lease),
		sdk.NewAttribute(AttributeKeyAmount, liq.Amount.String()),
		sdk.NewAttribute(AttributeKeyPayment, proceeds.String()),
		sdk.NewAttribute(AttributeKeyFull, strconv.FormatBool(liq.Full)),
		sdk.NewAttribute(AttributeKeyCause, liq.Cause.Kind.String()),
		sdk.NewAttribute(AttributeKeyLTV, liq.Cause.LTV.String()),
	)
}

// NewEventClosed reports a lease that reached a final state.
func NewEventClosed(lease, customer string, liquidated bool) sdk.Event {
	return sdk.NewEvent(EventTypeClosed,
		sdk.NewAttribute(AttributeKeyLease, lease),
		sdk.NewAttribute(AttributeKeyCustomer, customer),
		sdk.NewAttribute(AttributeKeyFull, strconv.FormatBool(liquidated)),
	)
}

// NewEventSlippageAnomaly reports a swap parked until it is healed.
func NewEventSlippageAnomaly(lease, reason string) sdk.Event {
	return sdk.NewEvent(EventTypeSlippageAnomaly,
		sdk.NewAttribute(AttributeKeyLease, lease),
		sdk.NewAttribute(AttributeKeyReason, reason),
	)
}

// NewEventClosePolicy reports a changed close policy, or one that triggered.
func NewEventClosePolicy(lease string, policy position.ClosePolicy, triggered string) sdk.Event {
	format := func(p *finance.Percent) string {
		if p == nil {
			return ""
		}
		return p.String()
	}
	return sdk.NewEvent(EventTypeClosePolicy,
		sdk.NewAttribute(AttributeKeyLease, lease),
		sdk.NewAttribute(AttributeKeyStopLoss, format(policy.StopLoss)),
		sdk.NewAttribute(AttributeKeyTakeProfit, format(policy.TakeProfit)),
		sdk.NewAttribute(AttributeKeyStrategy, triggered),
	)
}

// NewEventTransition reports a state change of a lease.
func NewEventTransition(lease, from, to string) sdk.Event {
	return sdk.NewEvent(EventTypeTransition,
		sdk.NewAttribute(AttributeKeyLease, lease),
		sdk.NewAttribute(AttributeKeyFrom, from),
		sdk.NewAttribute(AttributeKeyTo, to),
	)
}

// NewEventCritical reports a lease left behind by a failed background step.
func NewEventCritical(lease string, err *CriticalError) sdk.Event {
	return sdk.NewEvent(EventTypeCritical,
		sdk.NewAttribute(AttributeKeyLease, lease),
		sdk.NewAttribute(AttributeKeyReason, err.Reason),
	)
}
