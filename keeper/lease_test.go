package keeper_test

import (
	"errors"
	"time"

	"cosmossdk.io/collections"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/provlabs/lease/finance"
	"github.com/provlabs/lease/interest"
	"github.com/provlabs/lease/keeper"
	"github.com/provlabs/lease/machine"
	"github.com/provlabs/lease/types"
)

func (s *TestSuite) TestOpenLease() {
	lease := s.openLease()

	s.Assert().Equal(types.LeaseAddress(0), lease, "first lease address")
	s.Assert().True(s.chain.Accounts.HasAccount(s.ctx, lease), "lease account should exist")
	s.assertBalance(s.customer, usdc(0))

	has, err := s.k.CustomerLeases.Has(s.ctx, collections.Join(s.customer, lease))
	s.Require().NoError(err)
	s.Assert().True(has, "lease should be indexed by its customer")

	priority, found, err := s.k.TimeAlarms.Priority(s.ctx, lease)
	s.Require().NoError(err)
	s.Require().True(found, "active lease should have a time alarm")
	s.Assert().Greater(priority, s.ctx.BlockTime().UnixNano(), "alarm should be in the future")
	s.Assert().Contains(s.chain.Oracle.Alarms, lease.String(), "active lease should have a price alarm")

	s.Assert().True(s.hasEvent(types.EventTypeOpened), "opened event")
	s.Assert().True(s.hasEvent(types.EventTypeTransition), "transition event")

	active, ok := s.requireState(lease).(machine.Active)
	s.Require().True(ok)
	s.Assert().True(atom(250_000_000).Equal(active.Lease.Position.Amount), "position %s", active.Lease.Position.Amount)
	s.Assert().True(usdc(150_000_000).Equal(active.Lease.Loan.Principal), "principal %s", active.Lease.Loan.Principal)
	s.Assert().Equal(hostAddr, active.Lease.Account.HostAddress)

	second, err := s.k.OpenLease(s.ctx, types.MsgOpenLease{
		Customer:    s.customer.String(),
		Currency:    "ATOM",
		Downpayment: usdc(0).ToSdk(),
	})
	s.Require().Error(err, "zero downpayment")
	s.Assert().Nil(second)
}

func (s *TestSuite) TestOpenLeaseRejected() {
	tests := []struct {
		name      string
		setup     func()
		msg       types.MsgOpenLease
		expectErr error
	}{
		{
			name:      "unknown lease currency",
			msg:       types.MsgOpenLease{Customer: s.customer.String(), Currency: "USDC", Downpayment: usdc(100_000_000).ToSdk()},
			expectErr: types.ErrInvalidRequest,
		},
		{
			name:      "invalid customer",
			msg:       types.MsgOpenLease{Customer: "customer", Currency: "ATOM", Downpayment: usdc(100_000_000).ToSdk()},
			expectErr: types.ErrInvalidRequest,
		},
		{
			name:      "unsupported downpayment currency",
			msg:       types.MsgOpenLease{Customer: s.customer.String(), Currency: "ATOM", Downpayment: sdk.NewInt64Coin("unknown", 5)},
			expectErr: types.ErrInvalidRequest,
		},
		{
			name:  "pool refuses to lend",
			setup: func() { s.chain.Lpp.Err = errors.New("no liquidity") },
			msg:   types.MsgOpenLease{Customer: s.customer.String(), Currency: "ATOM", Downpayment: usdc(100_000_000).ToSdk()},
		},
		{
			name:  "customer cannot fund the downpayment",
			setup: func() { s.chain.Bank.Balances[s.customer.String()] = nil },
			msg:   types.MsgOpenLease{Customer: s.customer.String(), Currency: "ATOM", Downpayment: usdc(100_000_000).ToSdk()},
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.SetupTest()
			s.chain.Bank.Fund(s.customer, usdc(100_000_000).ToSdk())
			if tc.setup != nil {
				tc.setup()
			}
			_, err := s.k.OpenLease(s.ctx, tc.msg)
			s.Require().Error(err)
			if tc.expectErr != nil {
				s.Assert().ErrorIs(err, tc.expectErr)
			}
		})
	}
}

func (s *TestSuite) TestRepayToPaidThenClose() {
	lease := s.openLease()
	profit := sdk.MustAccAddressFromBech32(s.params.Profit)

	s.ctx = s.ctx.WithBlockTime(s.ctx.BlockTime().Add(interest.Year))
	s.chain.Bank.Fund(s.customer, usdc(171_000_000).ToSdk())
	err := s.k.Execute(s.ctx, s.customer, lease, types.MsgRepay{Payment: usdc(171_000_000).ToSdk()})
	s.Require().NoError(err, "Execute(MsgRepay)")

	s.Require().IsType(machine.Paid{}, s.requireState(lease))
	s.assertBalance(s.customer, usdc(0))
	s.assertBalance(lease, usdc(0))
	s.assertBalance(profit, usdc(6_000_000))
	s.assertBalance(s.chain.Lpp.Address, usdc(165_000_000))
	s.Require().Len(s.chain.Lpp.Repaid, 1)
	s.Assert().True(s.hasEvent(types.EventTypeRepay), "repay event")

	err = s.k.Execute(s.ctx, sdk.AccAddress("stranger____________"), lease, types.MsgClosePosition{})
	s.Require().ErrorIs(err, types.ErrUnauthorized)

	s.Require().NoError(s.k.Execute(s.ctx, s.customer, lease, types.MsgClosePosition{}), "Execute(MsgClosePosition)")
	s.Require().Len(s.chain.ICA.Sent, 2, "transfer in request")

	s.deliver(lease, icaPacket(lease), []byte("{}"))
	priority, found, err := s.k.TimeAlarms.Priority(s.ctx, lease)
	s.Require().NoError(err)
	s.Require().True(found, "lease should poll for the transfer in")
	s.Assert().Equal(s.ctx.BlockTime().Add(s.params.TransferInPoll).UnixNano(), priority)

	s.ctx = s.ctx.WithBlockTime(s.ctx.BlockTime().Add(s.params.TransferInPoll))
	s.Require().NoError(s.k.EndBlocker(s.ctx))
	s.Require().IsType(machine.Swap{}, s.requireState(lease), "keeps polling until the asset arrives")
	_, found, err = s.k.TimeAlarms.Priority(s.ctx, lease)
	s.Require().NoError(err)
	s.Require().True(found, "poll should be rescheduled")

	s.chain.Bank.Fund(lease, atom(250_000_000).ToSdk())
	s.ctx = s.ctx.WithBlockTime(s.ctx.BlockTime().Add(s.params.TransferInPoll))
	s.Require().NoError(s.k.EndBlocker(s.ctx))

	s.Require().IsType(machine.Closed{}, s.requireState(lease))
	s.assertBalance(s.customer, atom(250_000_000))
	s.assertBalance(lease, atom(0))
	_, found, err = s.k.TimeAlarms.Priority(s.ctx, lease)
	s.Require().NoError(err)
	s.Assert().False(found, "closed lease should have no time alarm")
	s.Assert().True(s.hasEvent(types.EventTypeClosed), "closed event")

	err = s.k.Execute(s.ctx, s.customer, lease, types.MsgClosePosition{})
	s.Require().ErrorIs(err, types.ErrUnsupportedOperation)
}

func (s *TestSuite) TestExecuteRejected() {
	lease := s.openLease()
	unknown := types.LeaseAddress(99)

	tests := []struct {
		name      string
		sender    sdk.AccAddress
		lease     sdk.AccAddress
		msg       types.ExecuteMsg
		expectErr error
	}{
		{
			name:      "unknown lease",
			sender:    s.customer,
			lease:     unknown,
			msg:       types.MsgClosePosition{},
			expectErr: types.ErrLeaseNotFound,
		},
		{
			name:      "repay of an unknown lease",
			sender:    s.customer,
			lease:     unknown,
			msg:       types.MsgRepay{Payment: usdc(1).ToSdk()},
			expectErr: types.ErrLeaseNotFound,
		},
		{
			name:      "zero repayment",
			sender:    s.customer,
			lease:     lease,
			msg:       types.MsgRepay{Payment: usdc(0).ToSdk()},
			expectErr: types.ErrInvalidRequest,
		},
		{
			name:      "price alarm of the customer",
			sender:    s.customer,
			lease:     lease,
			msg:       types.MsgPriceAlarm{},
			expectErr: types.ErrUnauthorized,
		},
		{
			name:      "time alarm of the customer",
			sender:    s.customer,
			lease:     lease,
			msg:       types.MsgTimeAlarm{},
			expectErr: types.ErrUnauthorized,
		},
		{
			name:      "dex callback of an active lease",
			sender:    lease,
			lease:     lease,
			msg:       types.MsgDexCallback{},
			expectErr: types.ErrUnsupportedOperation,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			err := s.k.Execute(s.ctx, tc.sender, tc.lease, tc.msg)
			s.Require().ErrorIs(err, tc.expectErr)
			s.Require().IsType(machine.Active{}, s.requireState(lease))
		})
	}
}

func (s *TestSuite) TestPriceAlarmStartsLiquidation() {
	lease := s.openLease()
	oracle := sdk.MustAccAddressFromBech32(s.params.Oracle)
	s.chain.Oracle.Prices["ATOM/USDC"] = finance.MustNewPrice(atom(10), usdc(7))

	s.Require().NoError(s.k.Execute(s.ctx, oracle, lease, types.MsgPriceAlarm{}), "Execute(MsgPriceAlarm)")

	swap, ok := s.requireState(lease).(machine.Swap)
	s.Require().True(ok, "expected swap, got %T", s.requireState(lease))
	s.Assert().Equal(machine.TaskLiquidate, swap.Task.Kind)
	s.Require().Len(s.chain.ICA.Sent, 2, "liquidation swap")

	resp, err := keeper.NewQueryServer(s.k).Lease(s.ctx, &types.QueryLeaseRequest{Lease: lease.String()})
	s.Require().NoError(err)
	s.Assert().Equal("liquidation/swap", resp.InProgress)
}

func (s *TestSuite) TestTimeAlarmRechecksActiveLease() {
	lease := s.openLease()
	priority, found, err := s.k.TimeAlarms.Priority(s.ctx, lease)
	s.Require().NoError(err)
	s.Require().True(found)

	s.Require().NoError(s.k.TestAccessor_processTimeAlarms(s.T(), s.ctx), "not yet due")
	again, found, err := s.k.TimeAlarms.Priority(s.ctx, lease)
	s.Require().NoError(err)
	s.Require().True(found)
	s.Assert().Equal(priority, again, "alarm should not fire early")

	s.ctx = s.ctx.WithBlockTime(time.Unix(0, priority).UTC())
	s.Require().NoError(s.k.TestAccessor_processTimeAlarms(s.T(), s.ctx))

	s.Require().IsType(machine.Active{}, s.requireState(lease))
	next, found, err := s.k.TimeAlarms.Priority(s.ctx, lease)
	s.Require().NoError(err)
	s.Require().True(found, "active lease should arm its alarm again")
	s.Assert().Greater(next, priority)
	s.Assert().False(s.hasEvent(types.EventTypeCritical))
}

func (s *TestSuite) TestTimeAlarmsFireAsTheSenderTheLeaseAccepted() {
	alarms := sdk.AccAddress("time_alarms_________").String()
	params := types.DefaultParams()
	params.TimeAlarms = alarms
	s.Require().NoError(s.k.Params.Set(s.ctx, params))

	lease := s.openLease()
	active, ok := s.requireState(lease).(machine.Active)
	s.Require().True(ok)
	s.Require().Equal(alarms, active.Lease.TimeAlarms)

	params.TimeAlarms = sdk.AccAddress("other_alarms________").String()
	s.Require().NoError(s.k.Params.Set(s.ctx, params))

	for range 2 {
		priority, found, err := s.k.TimeAlarms.Priority(s.ctx, lease)
		s.Require().NoError(err)
		s.Require().True(found)

		s.ctx = s.ctx.WithBlockTime(time.Unix(0, priority).UTC()).WithEventManager(sdk.NewEventManager())
		s.Require().NoError(s.k.EndBlocker(s.ctx))

		s.Require().False(s.hasEvent(types.EventTypeCritical), "alarm rejected")
		s.Require().IsType(machine.Active{}, s.requireState(lease))
		next, found, err := s.k.TimeAlarms.Priority(s.ctx, lease)
		s.Require().NoError(err)
		s.Require().True(found)
		s.Require().Greater(next, priority)
	}

	err := s.k.Execute(s.ctx, authtypes.NewModuleAddress(types.ModuleName), lease, types.MsgTimeAlarm{})
	s.Require().ErrorIs(err, types.ErrUnauthorized, "only the accepted sender raises alarms")
}

func (s *TestSuite) TestFailedCallbackIsReported() {
	lease := s.openLease()
	s.Require().NoError(s.k.DexCallbacks.Set(s.ctx, lease))

	s.Require().NoError(s.k.TestAccessor_processDexCallbacks(s.T(), s.ctx))

	s.Assert().True(s.hasEvent(types.EventTypeCritical), "critical event")
	has, err := s.k.DexCallbacks.Has(s.ctx, lease)
	s.Require().NoError(err)
	s.Assert().False(has, "failed callback should be dropped")
	s.Require().IsType(machine.Active{}, s.requireState(lease))
}

func (s *TestSuite) TestUnexpectedAckIsReported() {
	lease := s.openLease()
	before, err := s.k.Leases.Get(s.ctx, lease)
	s.Require().NoError(err)

	s.Require().NoError(s.k.OnAcknowledgementPacket(s.ctx, icaPacket(lease), okAck([]byte("{}"))))

	s.Assert().True(s.hasEvent(types.EventTypeCritical), "critical event")
	after, err := s.k.Leases.Get(s.ctx, lease)
	s.Require().NoError(err)
	s.Assert().Equal(before, after, "state should be unchanged")
}

func (s *TestSuite) TestForeignPacketsAreIgnored() {
	lease := s.openLease()
	stranger := sdk.AccAddress("stranger____________")
	s.ctx = s.ctx.WithEventManager(sdk.NewEventManager())

	s.Require().NoError(s.k.OnAcknowledgementPacket(s.ctx, transferPacket(stranger), okAck([]byte("{}"))))
	s.Require().NoError(s.k.OnTimeoutPacket(s.ctx, icaPacket(stranger)))
	s.Require().NoError(s.k.OnChanOpenAck(s.ctx, "transfer", s.icaVersion()))

	s.Assert().Empty(s.ctx.EventManager().Events())
	s.Require().IsType(machine.Active{}, s.requireState(lease))
}

func (s *TestSuite) TestTimeoutRetriesTransfer() {
	s.chain.Bank.Fund(s.customer, usdc(100_000_000).ToSdk())
	lease, err := s.k.OpenLease(s.ctx, types.MsgOpenLease{
		Customer:    s.customer.String(),
		Currency:    "ATOM",
		Downpayment: usdc(100_000_000).ToSdk(),
	})
	s.Require().NoError(err)
	s.Require().NoError(s.k.OnChanOpenAck(s.ctx, "icacontroller-"+lease.String(), s.icaVersion()))
	s.Require().Len(s.chain.Transfer.Sent, 1)

	s.chain.Bank.Fund(lease, s.chain.Transfer.Sent[0].Token)
	s.Require().NoError(s.k.OnTimeoutPacket(s.ctx, transferPacket(lease)))
	s.Require().NoError(s.k.EndBlocker(s.ctx))

	s.Require().IsType(machine.Swap{}, s.requireState(lease))
	s.Require().Len(s.chain.Transfer.Sent, 2, "timed out transfer should be sent again")
	s.Assert().Equal(s.chain.Transfer.Sent[0].Token.String(), s.chain.Transfer.Sent[1].Token.String())
}
