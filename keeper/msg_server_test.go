package keeper_test

import (
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"

	"github.com/provlabs/lease/keeper"
	"github.com/provlabs/lease/machine"
	"github.com/provlabs/lease/types"
)

func (s *TestSuite) TestMsgServer_OpenLease() {
	s.chain.Bank.Fund(s.customer, usdc(100_000_000).ToSdk())

	resp, err := keeper.NewMsgServer(s.k).OpenLease(s.ctx, &types.MsgOpenLease{
		Customer:    s.customer.String(),
		Currency:    "ATOM",
		Downpayment: usdc(100_000_000).ToSdk(),
	})
	s.Require().NoError(err)
	s.Require().Equal(types.LeaseAddress(0).String(), resp.Lease)
	s.Require().IsType(machine.OpenIca{}, s.requireState(types.LeaseAddress(0)))
}

func (s *TestSuite) TestMsgServer_Execute() {
	lease := s.openLease()
	server := keeper.NewMsgServer(s.k)

	tests := []struct {
		name      string
		msg       *types.MsgExecute
		expectErr error
	}{
		{
			name:      "invalid sender",
			msg:       &types.MsgExecute{Sender: "sender", Lease: lease.String(), Msg: types.MsgClosePosition{}},
			expectErr: types.ErrInvalidRequest,
		},
		{
			name:      "invalid lease",
			msg:       &types.MsgExecute{Sender: s.customer.String(), Lease: "lease", Msg: types.MsgClosePosition{}},
			expectErr: types.ErrInvalidRequest,
		},
		{
			name:      "missing request",
			msg:       &types.MsgExecute{Sender: s.customer.String(), Lease: lease.String()},
			expectErr: types.ErrInvalidRequest,
		},
		{
			name:      "invalid close amount",
			msg:       &types.MsgExecute{Sender: s.customer.String(), Lease: lease.String(), Msg: types.MsgClosePosition{Amount: &sdk.Coin{Denom: "x", Amount: sdkmath.NewInt(1)}}},
			expectErr: types.ErrInvalidRequest,
		},
		{
			name:      "sender is not the customer",
			msg:       &types.MsgExecute{Sender: sdk.AccAddress("stranger____________").String(), Lease: lease.String(), Msg: types.MsgClosePosition{}},
			expectErr: types.ErrUnauthorized,
		},
		{
			name: "full close by the customer",
			msg:  &types.MsgExecute{Sender: s.customer.String(), Lease: lease.String(), Msg: types.MsgClosePosition{}},
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			_, err := server.Execute(s.ctx, tc.msg)
			if tc.expectErr != nil {
				s.Require().ErrorIs(err, tc.expectErr)
				s.Require().IsType(machine.Active{}, s.requireState(lease))
				return
			}
			s.Require().NoError(err)
			swap, ok := s.requireState(lease).(machine.Swap)
			s.Require().True(ok, "expected swap, got %T", s.requireState(lease))
			s.Assert().Equal(machine.TaskClose, swap.Task.Kind)
		})
	}
}

func (s *TestSuite) TestMsgServer_UpdateParams() {
	authority := authtypes.NewModuleAddress(govtypes.ModuleName).String()
	updated := types.DefaultParams()
	updated.TransferInPoll = updated.TransferInPoll * 3

	invalid := types.DefaultParams()
	invalid.Oracle = "oracle"

	tests := []struct {
		name      string
		msg       *types.MsgUpdateParams
		expectErr error
	}{
		{
			name:      "invalid authority address",
			msg:       &types.MsgUpdateParams{Authority: "authority", Params: updated},
			expectErr: types.ErrInvalidRequest,
		},
		{
			name:      "not the authority",
			msg:       &types.MsgUpdateParams{Authority: s.customer.String(), Params: updated},
			expectErr: types.ErrUnauthorized,
		},
		{
			name:      "invalid params",
			msg:       &types.MsgUpdateParams{Authority: authority, Params: invalid},
			expectErr: types.ErrInvalidParams,
		},
		{
			name: "params updated",
			msg:  &types.MsgUpdateParams{Authority: authority, Params: updated},
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			_, err := keeper.NewMsgServer(s.k).UpdateParams(s.ctx, tc.msg)
			params, getErr := s.k.Params.Get(s.ctx)
			s.Require().NoError(getErr)
			if tc.expectErr != nil {
				s.Require().ErrorIs(err, tc.expectErr)
				s.Assert().Equal(types.DefaultParams().TransferInPoll, params.TransferInPoll, "params should be unchanged")
				return
			}
			s.Require().NoError(err)
			s.Assert().Equal(updated.TransferInPoll, params.TransferInPoll)
		})
	}
}
