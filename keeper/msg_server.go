package keeper

import (
	"bytes"
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/provlabs/lease/types"
)

var _ types.MsgServer = &msgServer{}

type msgServer struct {
	*Keeper
}

func NewMsgServer(keeper *Keeper) types.MsgServer {
	return &msgServer{Keeper: keeper}
}

// OpenLease opens a new lease funded by the downpayment of the customer.
func (k msgServer) OpenLease(goCtx context.Context, msg *types.MsgOpenLease) (*types.MsgOpenLeaseResponse, error) {
	lease, err := k.Keeper.OpenLease(goCtx, *msg)
	if err != nil {
		return nil, err
	}
	return &types.MsgOpenLeaseResponse{Lease: lease.String()}, nil
}

// Execute runs a request of the sender against an existing lease.
func (k msgServer) Execute(goCtx context.Context, msg *types.MsgExecute) (*types.MsgExecuteResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, types.ErrInvalidRequest.Wrap(err.Error())
	}
	sender := sdk.MustAccAddressFromBech32(msg.Sender)
	lease := sdk.MustAccAddressFromBech32(msg.Lease)

	if err := k.Keeper.Execute(goCtx, sender, lease, msg.Msg); err != nil {
		return nil, err
	}
	return &types.MsgExecuteResponse{}, nil
}

// UpdateParams updates the params for the module.
func (k msgServer) UpdateParams(goCtx context.Context, msg *types.MsgUpdateParams) (*types.MsgUpdateParamsResponse, error) {
	authority, err := k.addressCodec.StringToBytes(msg.Authority)
	if err != nil {
		return nil, types.ErrInvalidRequest.Wrapf("invalid authority address %q: %s", msg.Authority, err)
	}
	if !bytes.Equal(authority, k.authority) {
		expected, _ := k.addressCodec.BytesToString(k.authority)
		return nil, types.ErrUnauthorized.Wrapf("expected %s got %s", expected, msg.Authority)
	}
	if err := msg.ValidateBasic(); err != nil {
		return nil, types.ErrInvalidParams.Wrap(err.Error())
	}

	if err := k.Params.Set(goCtx, msg.Params); err != nil {
		return nil, err
	}
	return &types.MsgUpdateParamsResponse{}, nil
}
