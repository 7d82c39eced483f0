package keeper_test

import (
	"github.com/provlabs/lease/keeper"
	"github.com/provlabs/lease/machine"
	"github.com/provlabs/lease/types"
)

func (s *TestSuite) TestMigrateLeases() {
	current := s.openLease()
	rec, err := s.k.Leases.Get(s.ctx, current)
	s.Require().NoError(err)

	outdated := types.LeaseAddress(7)
	inFlight := types.LeaseAddress(8)
	s.Require().NoError(s.k.Leases.Set(s.ctx, outdated, machine.Record{V: 8, Tag: rec.Tag, Payload: rec.Payload}))
	s.Require().NoError(s.k.Leases.Set(s.ctx, inFlight, machine.Record{V: 8, Tag: machine.Swap{}.Name(), Payload: rec.Payload}))

	migrated, skipped, err := s.k.MigrateLeases(s.ctx)
	s.Require().NoError(err)
	s.Assert().Equal(1, migrated, "migrated")
	s.Assert().Equal(1, skipped, "skipped")

	upgraded, err := s.k.Leases.Get(s.ctx, outdated)
	s.Require().NoError(err)
	s.Assert().Equal(machine.Version, upgraded.V)
	state, err := machine.Decode(upgraded)
	s.Require().NoError(err)
	s.Assert().IsType(machine.Active{}, state)

	untouched, err := s.k.Leases.Get(s.ctx, current)
	s.Require().NoError(err)
	s.Assert().Equal(rec, untouched)

	stuck, err := s.k.Leases.Get(s.ctx, inFlight)
	s.Require().NoError(err)
	s.Assert().Equal(uint16(8), stuck.V)
	_, err = s.k.GetLeaseState(s.ctx, inFlight)
	s.Assert().ErrorIs(err, types.ErrMigrationRequired)

	s.Require().NoError(keeper.NewMigrator(s.k).Migrate1to2(s.ctx), "second run")
	migrated, skipped, err = s.k.MigrateLeases(s.ctx)
	s.Require().NoError(err)
	s.Assert().Equal(0, migrated)
	s.Assert().Equal(1, skipped)
}
