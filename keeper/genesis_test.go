package keeper_test

import (
	"encoding/json"

	"github.com/provlabs/lease/machine"
	"github.com/provlabs/lease/types"
	"github.com/provlabs/lease/utils/mocks"
)

func (s *TestSuite) TestGenesisRoundTrip() {
	lease := s.openLease()

	exported := s.k.ExportGenesis(s.ctx)
	s.Require().NoError(exported.Validate(), "exported genesis")
	s.Require().Equal(uint64(1), exported.LeaseSeq)
	s.Require().Len(exported.Leases, 1)
	s.Assert().Equal(lease.String(), exported.Leases[0].Address)
	s.Assert().Equal(s.customer.String(), exported.Leases[0].Customer)
	s.Require().Len(exported.TimeAlarms, 1)
	s.Assert().Equal(lease.String(), exported.TimeAlarms[0].Lease)

	ctx, k, chain := mocks.NewLeaseKeeper(s.T())
	s.Require().NotPanics(func() { k.InitGenesis(ctx, exported) }, "InitGenesis")
	s.Assert().True(chain.Accounts.HasAccount(ctx, lease), "lease account should be created")

	state, err := k.GetLeaseState(ctx, lease)
	s.Require().NoError(err)
	s.Assert().IsType(machine.Active{}, state)

	want, err := json.Marshal(exported)
	s.Require().NoError(err)
	got, err := json.Marshal(k.ExportGenesis(ctx))
	s.Require().NoError(err)
	s.Assert().JSONEq(string(want), string(got), "re-exported genesis")
}

func (s *TestSuite) TestInitGenesisMigratesLeases() {
	lease := s.openLease()
	exported := s.k.ExportGenesis(s.ctx)

	var rec machine.Record
	s.Require().NoError(json.Unmarshal(exported.Leases[0].State, &rec))
	rec.V = 8
	bz, err := json.Marshal(rec)
	s.Require().NoError(err)
	exported.Leases[0].State = bz

	ctx, k, _ := mocks.NewLeaseKeeper(s.T())
	k.InitGenesis(ctx, exported)

	stored, err := k.Leases.Get(ctx, lease)
	s.Require().NoError(err)
	s.Assert().Equal(machine.Version, stored.V)
}

func (s *TestSuite) TestInitGenesisPanics() {
	lease := s.openLease()

	tests := []struct {
		name   string
		modify func(gs *types.GenesisState)
	}{
		{
			name: "alarm of an unknown lease",
			modify: func(gs *types.GenesisState) {
				gs.TimeAlarms = append(gs.TimeAlarms, types.GenesisAlarm{Lease: types.LeaseAddress(5).String(), At: 1})
			},
		},
		{
			name: "duplicate lease",
			modify: func(gs *types.GenesisState) {
				gs.Leases = append(gs.Leases, gs.Leases[0])
			},
		},
		{
			name: "state is not a record",
			modify: func(gs *types.GenesisState) {
				gs.Leases[0].State = json.RawMessage(`[1,2]`)
			},
		},
		{
			name: "swap of an old version",
			modify: func(gs *types.GenesisState) {
				gs.Leases[0].State = json.RawMessage(`{"v":8,"tag":"swap","payload":{}}`)
			},
		},
		{
			name: "unknown state",
			modify: func(gs *types.GenesisState) {
				gs.Leases[0].State = json.RawMessage(`{"v":9,"tag":"dormant","payload":{}}`)
			},
		},
		{
			name: "invalid params",
			modify: func(gs *types.GenesisState) {
				gs.Params.Profit = ""
			},
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			gs := s.k.ExportGenesis(s.ctx)
			s.Require().Equal(lease.String(), gs.Leases[0].Address)
			tc.modify(gs)

			ctx, k, _ := mocks.NewLeaseKeeper(s.T())
			s.Require().Panics(func() { k.InitGenesis(ctx, gs) })
		})
	}
}
