package types

import (
	"encoding/json"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/hashicorp/go-multierror"
)

// GenesisLease is an exported lease. State is the persisted record of the
// lease state machine.
type GenesisLease struct {
	Address  string          `json:"address"`
	Customer string          `json:"customer"`
	State    json.RawMessage `json:"state"`
}

// GenesisAlarm is a pending time alarm.
type GenesisAlarm struct {
	Lease string `json:"lease"`
	// At is in unix nanoseconds.
	At int64 `json:"at"`
}

// GenesisState of the module.
type GenesisState struct {
	Params     Params         `json:"params"`
	LeaseSeq   uint64         `json:"lease_seq"`
	Leases     []GenesisLease `json:"leases"`
	TimeAlarms []GenesisAlarm `json:"time_alarms"`
}

// DefaultGenesisState returns the default genesis state
func DefaultGenesisState() *GenesisState {
	return &GenesisState{Params: DefaultParams()}
}

// Validate performs basic genesis state validation returning an error upon any
// failure.
func (gs GenesisState) Validate() error {
	var errs error
	if err := gs.Params.Validate(); err != nil {
		errs = multierror.Append(errs, err)
	}

	seen := make(map[string]struct{}, len(gs.Leases))
	for i, l := range gs.Leases {
		if _, err := sdk.AccAddressFromBech32(l.Address); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("lease %d: invalid address %q: %w", i, l.Address, err))
		}
		if _, err := sdk.AccAddressFromBech32(l.Customer); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("lease %d: invalid customer %q: %w", i, l.Customer, err))
		}
		if _, dup := seen[l.Address]; dup {
			errs = multierror.Append(errs, fmt.Errorf("lease %d: duplicate address %s", i, l.Address))
		}
		seen[l.Address] = struct{}{}
		if len(l.State) == 0 {
			errs = multierror.Append(errs, fmt.Errorf("lease %d: empty state", i))
		}
	}
	for i, a := range gs.TimeAlarms {
		if _, ok := seen[a.Lease]; !ok {
			errs = multierror.Append(errs, fmt.Errorf("time alarm %d: unknown lease %s", i, a.Lease))
		}
	}

	if errs != nil {
		return ErrInvalidGenesis.Wrap(errs.Error())
	}
	return nil
}
