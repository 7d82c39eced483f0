package types_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/provlabs/lease/types"
	"github.com/provlabs/lease/utils"
)

func TestGenesisState_Validate(t *testing.T) {
	lease := types.LeaseAddress(0).String()
	customer := utils.TestAddress().Bech32
	state := json.RawMessage(`{"v":9,"tag":"closed","payload":{}}`)

	tests := []struct {
		name        string
		genesis     types.GenesisState
		expectedErr []string
	}{
		{
			name:    "default",
			genesis: *types.DefaultGenesisState(),
		},
		{
			name: "lease with an alarm",
			genesis: types.GenesisState{
				Params:     types.DefaultParams(),
				LeaseSeq:   1,
				Leases:     []types.GenesisLease{{Address: lease, Customer: customer, State: state}},
				TimeAlarms: []types.GenesisAlarm{{Lease: lease, At: 10}},
			},
		},
		{
			name: "invalid lease",
			genesis: types.GenesisState{
				Params: types.DefaultParams(),
				Leases: []types.GenesisLease{
					{Address: "lease", Customer: customer, State: state},
					{Address: lease, Customer: "", State: nil},
				},
			},
			expectedErr: []string{`lease 0: invalid address "lease"`, `lease 1: invalid customer ""`, "lease 1: empty state"},
		},
		{
			name: "duplicate lease",
			genesis: types.GenesisState{
				Params: types.DefaultParams(),
				Leases: []types.GenesisLease{
					{Address: lease, Customer: customer, State: state},
					{Address: lease, Customer: customer, State: state},
				},
			},
			expectedErr: []string{"lease 1: duplicate address"},
		},
		{
			name: "alarm of an unknown lease",
			genesis: types.GenesisState{
				Params:     types.DefaultParams(),
				TimeAlarms: []types.GenesisAlarm{{Lease: lease, At: 10}},
			},
			expectedErr: []string{"time alarm 0: unknown lease"},
		},
		{
			name:        "invalid params",
			genesis:     types.GenesisState{Params: types.Params{LeaseAdmin: "admin"}},
			expectedErr: []string{`invalid lease admin address "admin"`, "initial must be positive"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.genesis.Validate()
			if len(tc.expectedErr) == 0 {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, types.ErrInvalidGenesis)
			for _, substr := range tc.expectedErr {
				require.ErrorContains(t, err, substr)
			}
		})
	}
}
