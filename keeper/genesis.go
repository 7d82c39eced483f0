package keeper

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/collections"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/provlabs/lease/machine"
	"github.com/provlabs/lease/types"
)

// InitGenesis initializes the lease module state from genesis.
func (k Keeper) InitGenesis(ctx sdk.Context, genState *types.GenesisState) {
	if genState == nil {
		return
	}

	if err := genState.Validate(); err != nil {
		panic(fmt.Errorf("invalid lease genesis state: %w", err))
	}

	if err := k.Params.Set(ctx, genState.Params); err != nil {
		panic(err)
	}

	if err := k.LeaseSeq.Set(ctx, genState.LeaseSeq); err != nil {
		panic(fmt.Errorf("failed to set lease sequence: %w", err))
	}

	for i, l := range genState.Leases {
		var rec machine.Record
		if err := json.Unmarshal(l.State, &rec); err != nil {
			panic(fmt.Errorf("invalid state of lease at index %d: %w", i, err))
		}
		rec, err := machine.Migrate(rec, genState.Params)
		if err != nil {
			panic(fmt.Errorf("failed to migrate lease %s: %w", l.Address, err))
		}
		if _, err := machine.Decode(rec); err != nil {
			panic(fmt.Errorf("invalid state of lease %s: %w", l.Address, err))
		}

		leaseAddr := sdk.MustAccAddressFromBech32(l.Address)
		customer := sdk.MustAccAddressFromBech32(l.Customer)
		if !k.AccountKeeper.HasAccount(ctx, leaseAddr) {
			k.AccountKeeper.SetAccount(ctx, k.AccountKeeper.NewAccountWithAddress(ctx, leaseAddr))
		}
		if err := k.Leases.Set(ctx, leaseAddr, rec); err != nil {
			panic(fmt.Errorf("failed to store lease %s: %w", l.Address, err))
		}
		if err := k.CustomerLeases.Set(ctx, collections.Join(customer, leaseAddr)); err != nil {
			panic(fmt.Errorf("failed to index lease %s: %w", l.Address, err))
		}
	}

	for _, a := range genState.TimeAlarms {
		if err := k.TimeAlarms.Enqueue(ctx, sdk.MustAccAddressFromBech32(a.Lease), a.At); err != nil {
			panic(fmt.Errorf("failed to enqueue time alarm of %s: %w", a.Lease, err))
		}
	}
}

// ExportGenesis exports the current state of the lease module.
func (k Keeper) ExportGenesis(ctx sdk.Context) *types.GenesisState {
	params, err := k.Params.Get(ctx)
	if err != nil {
		panic(fmt.Errorf("failed to get lease module params: %w", err))
	}

	seq, err := k.LeaseSeq.Peek(ctx)
	if err != nil {
		panic(fmt.Errorf("failed to get lease sequence: %w", err))
	}

	customers := make(map[string]string)
	err = k.CustomerLeases.Walk(ctx, nil, func(key collections.Pair[sdk.AccAddress, sdk.AccAddress]) (bool, error) {
		customers[key.K2().String()] = key.K1().String()
		return false, nil
	})
	if err != nil {
		panic(fmt.Errorf("failed to walk customer leases: %w", err))
	}

	var leases []types.GenesisLease
	err = k.Leases.Walk(ctx, nil, func(addr sdk.AccAddress, rec machine.Record) (bool, error) {
		bz, err := json.Marshal(rec)
		if err != nil {
			return true, err
		}
		leases = append(leases, types.GenesisLease{
			Address:  addr.String(),
			Customer: customers[addr.String()],
			State:    bz,
		})
		return false, nil
	})
	if err != nil {
		panic(fmt.Errorf("failed to walk leases: %w", err))
	}

	var alarms []types.GenesisAlarm
	err = k.TimeAlarms.Walk(ctx, nil, func(key collections.Pair[int64, sdk.AccAddress]) (bool, error) {
		alarms = append(alarms, types.GenesisAlarm{Lease: key.K2().String(), At: key.K1()})
		return false, nil
	})
	if err != nil {
		panic(fmt.Errorf("failed to walk time alarms: %w", err))
	}

	return &types.GenesisState{
		Params:     params,
		LeaseSeq:   seq,
		Leases:     leases,
		TimeAlarms: alarms,
	}
}
