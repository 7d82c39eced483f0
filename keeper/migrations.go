package keeper

import (
	"errors"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/provlabs/lease/machine"
	"github.com/provlabs/lease/types"
)

// Migrator registers the store migrations of the module.
type Migrator struct {
	keeper *Keeper
}

// NewMigrator returns a Migrator over k.
func NewMigrator(k *Keeper) Migrator {
	return Migrator{keeper: k}
}

// Migrate1to2 upgrades every stored lease to the current state version.
func (m Migrator) Migrate1to2(ctx sdk.Context) error {
	_, _, err := m.keeper.MigrateLeases(ctx)
	return err
}

// MigrateLeases rewrites every lease persisted at an older state version.
//
// Leases at rest (active, paid, closed or liquidated) are converted in place,
// with the fields introduced since their version taken from the current params.
// A lease with an operation in flight cannot be converted; it is logged and
// counted as skipped, and stays unusable until it is migrated by a later
// release.
//
// Leases already at the current version are left untouched, so running the
// migration more than once is harmless.
func (k Keeper) MigrateLeases(ctx sdk.Context) (migrated, skipped int, err error) {
	params, err := k.Params.Get(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get params: %w", err)
	}

	var outdated []sdk.AccAddress
	var records []machine.Record
	err = k.Leases.Walk(ctx, nil, func(addr sdk.AccAddress, rec machine.Record) (bool, error) {
		if rec.V != machine.Version {
			outdated = append(outdated, addr)
			records = append(records, rec)
		}
		return false, nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to walk leases: %w", err)
	}

	logger := k.getLogger(ctx)
	for i, addr := range outdated {
		rec, err := machine.Migrate(records[i], params)
		if errors.Is(err, types.ErrMigrationRequired) {
			logger.Error("lease not migrated", "lease", addr.String(), "state", records[i].Tag, "version", records[i].V, "error", err)
			skipped++
			continue
		}
		if err != nil {
			return migrated, skipped, fmt.Errorf("failed to migrate lease %s: %w", addr, err)
		}
		if err := k.Leases.Set(ctx, addr, rec); err != nil {
			return migrated, skipped, fmt.Errorf("failed to store lease %s: %w", addr, err)
		}
		migrated++
	}

	logger.Info("migrated leases", "migrated", migrated, "skipped", skipped)
	return migrated, skipped, nil
}
