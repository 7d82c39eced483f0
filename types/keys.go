package types

import (
	fmt "fmt"

	"cosmossdk.io/collections"
	"github.com/cometbft/cometbft/crypto"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	// ModuleName defines the module name
	ModuleName = "lease"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// GovModuleName duplicates the gov module's name to avoid a dependency with x/gov.
	// It should be synced with the gov module's name if it is ever changed.
	// See: https://github.com/cosmos/cosmos-sdk/blob/v0.52.0-beta.2/x/gov/types/keys.go#L9
	GovModuleName = "gov"
)

var (
	// ParamsKeyPrefix is the prefix to retrieve all Params
	ParamsKeyPrefix = collections.NewPrefix(0)
	// ParamsName is a human-readable name for the params collection.
	ParamsName = "params"
	// LeasesKeyPrefix is the prefix to retrieve all lease states
	LeasesKeyPrefix = collections.NewPrefix(1)
	// LeasesName is a human-readable name for the leases collection.
	LeasesName = "leases"
	// LeaseSeqKeyPrefix is the prefix of the lease address sequence.
	LeaseSeqKeyPrefix = collections.NewPrefix(2)
	// LeaseSeqName is a human-readable name for the lease sequence.
	LeaseSeqName = "lease_seq"
	// CustomerLeasesKeyPrefix is the prefix of the customer to lease index.
	CustomerLeasesKeyPrefix = collections.NewPrefix(3)
	// CustomerLeasesName is a human-readable name for the customer index.
	CustomerLeasesName = "customer_leases"
	// TimeAlarmsKeyPrefix is the prefix of the time alarm queue.
	TimeAlarmsKeyPrefix = collections.NewPrefix(4)
	// TimeAlarmsName is a human-readable name for the time alarm queue.
	TimeAlarmsName = "time_alarms"
	// DexCallbacksKeyPrefix is the prefix of leases awaiting a dex callback.
	DexCallbacksKeyPrefix = collections.NewPrefix(5)
	// DexCallbacksName is a human-readable name for the pending callbacks.
	DexCallbacksName = "dex_callbacks"
	// TimeAlarmIndexKeyPrefix is the prefix of the lease to alarm time index.
	TimeAlarmIndexKeyPrefix = collections.NewPrefix(6)
	// TimeAlarmIndexName is a human-readable name for the time alarm index.
	TimeAlarmIndexName = "time_alarm_index"
)

// LeaseAddress returns the account address of the lease opened with the
// given sequence number.
func LeaseAddress(seq uint64) sdk.AccAddress {
	return sdk.AccAddress(crypto.AddressHash([]byte(fmt.Sprintf("%s/%d", ModuleName, seq))))
}
