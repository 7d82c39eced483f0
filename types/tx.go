package types

import (
	"context"
	"errors"
	fmt "fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// MsgServer is the transaction service of the module.
type MsgServer interface {
	OpenLease(context.Context, *MsgOpenLease) (*MsgOpenLeaseResponse, error)
	Execute(context.Context, *MsgExecute) (*MsgExecuteResponse, error)
	UpdateParams(context.Context, *MsgUpdateParams) (*MsgUpdateParamsResponse, error)
}

// MsgOpenLeaseResponse returns the address of the new lease.
type MsgOpenLeaseResponse struct {
	Lease string `json:"lease"`
}

// MsgExecute sends Msg to Lease on behalf of Sender.
type MsgExecute struct {
	Sender string     `json:"sender"`
	Lease  string     `json:"lease"`
	Msg    ExecuteMsg `json:"msg"`
}

func (m MsgExecute) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Sender); err != nil {
		return fmt.Errorf("invalid sender address: %q: %w", m.Sender, err)
	}
	if _, err := sdk.AccAddressFromBech32(m.Lease); err != nil {
		return fmt.Errorf("invalid lease address: %q: %w", m.Lease, err)
	}
	if m.Msg == nil {
		return errors.New("missing request")
	}
	return m.Msg.ValidateBasic()
}

type MsgExecuteResponse struct{}

type MsgUpdateParamsResponse struct{}
