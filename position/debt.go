package position

import (
	"time"

	"github.com/provlabs/lease/finance"
)

// Debt is one of NoDebt, OkDebt or BadDebt.
type Debt interface {
	isDebt()
}

// NoDebt is a position with nothing due.
type NoDebt struct{}

// OkDebt is a position that needs no action until its zone is left or
// RecheckIn elapses.
type OkDebt struct {
	Zone      Zone
	RecheckIn time.Duration
}

// BadDebt is a position that must be liquidated.
type BadDebt struct {
	Liquidation Liquidation
}

func (NoDebt) isDebt()  {}
func (OkDebt) isDebt()  {}
func (BadDebt) isDebt() {}

// CauseKind tells what triggered a liquidation.
type CauseKind uint8

const (
	CauseOverdue CauseKind = iota + 1
	CauseLiability
)

func (k CauseKind) String() string {
	switch k {
	case CauseOverdue:
		return "overdue"
	case CauseLiability:
		return "liability"
	default:
		return "unknown"
	}
}

// Cause of a liquidation. LTV and Healthy are set for the liability cause.
type Cause struct {
	Kind    CauseKind       `json:"kind"`
	LTV     finance.Percent `json:"ltv,omitempty"`
	Healthy finance.Percent `json:"healthy_ltv,omitempty"`
}

// Liquidation sells Amount of the asset. A full liquidation sells the whole
// position.
type Liquidation struct {
	Full   bool         `json:"full"`
	Amount finance.Coin `json:"amount"`
	Cause  Cause        `json:"cause"`
}
