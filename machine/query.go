package machine

import (
	"github.com/provlabs/lease/finance"
	"github.com/provlabs/lease/loan"
	"github.com/provlabs/lease/position"
)

// Status of a lease as its customer sees it.
type Status string

const (
	StatusOpening    Status = "opening"
	StatusOpened     Status = "opened"
	StatusPaid       Status = "paid"
	StatusClosed     Status = "closed"
	StatusLiquidated Status = "liquidated"
)

// StateResponse is the view of a lease returned by queries.
type StateResponse struct {
	Status   Status `json:"status"`
	Lease    string `json:"lease"`
	Customer string `json:"customer"`

	Amount      *finance.Coin         `json:"amount,omitempty"`
	Loan        *loan.State           `json:"loan,omitempty"`
	ClosePolicy *position.ClosePolicy `json:"close_policy,omitempty"`
	// InProgress names the operation in flight, if any.
	InProgress string `json:"in_progress,omitempty"`
}
