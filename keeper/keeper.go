package keeper

import (
	"fmt"

	"cosmossdk.io/collections"
	"cosmossdk.io/core/address"
	"cosmossdk.io/core/event"
	"cosmossdk.io/core/store"
	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/provlabs/lease/container"
	"github.com/provlabs/lease/machine"
	"github.com/provlabs/lease/types"
)

type Keeper struct {
	schema       collections.Schema
	eventService event.Service
	addressCodec address.Codec
	authority    []byte

	AccountKeeper types.AccountKeeper
	BankKeeper    types.BankKeeper
	LppKeeper     types.LppKeeper
	OracleKeeper  types.OracleKeeper
	ReserveKeeper types.ReserveKeeper
	ICAController types.ICAControllerMsgServer
	Transfer      types.TransferMsgServer

	Params collections.Item[types.Params]
	// Leases holds the persisted state machine of every lease by address.
	Leases   collections.Map[sdk.AccAddress, machine.Record]
	LeaseSeq collections.Sequence
	// CustomerLeases indexes leases by (customer, lease).
	CustomerLeases collections.KeySet[collections.Pair[sdk.AccAddress, sdk.AccAddress]]
	TimeAlarms     container.PriorityQueue
	// DexCallbacks are the leases to be resumed at the end of the block.
	DexCallbacks collections.KeySet[sdk.AccAddress]
}

func NewKeeper(
	storeService store.KVStoreService,
	eventService event.Service,
	addressCodec address.Codec,
	authority []byte,
	accountKeeper types.AccountKeeper,
	bankKeeper types.BankKeeper,
	lppKeeper types.LppKeeper,
	oracleKeeper types.OracleKeeper,
	reserveKeeper types.ReserveKeeper,
	icaController types.ICAControllerMsgServer,
	transfer types.TransferMsgServer,
) *Keeper {
	if _, err := addressCodec.BytesToString(authority); err != nil {
		panic(fmt.Sprintf("invalid authority address %s: %s", authority, err))
	}

	builder := collections.NewSchemaBuilder(storeService)

	keeper := &Keeper{
		eventService:  eventService,
		addressCodec:  addressCodec,
		authority:     authority,
		AccountKeeper: accountKeeper,
		BankKeeper:    bankKeeper,
		LppKeeper:     lppKeeper,
		OracleKeeper:  oracleKeeper,
		ReserveKeeper: reserveKeeper,
		ICAController: icaController,
		Transfer:      transfer,
		Params:        collections.NewItem(builder, types.ParamsKeyPrefix, types.ParamsName, types.JSONValue[types.Params]()),
		Leases:        collections.NewMap(builder, types.LeasesKeyPrefix, types.LeasesName, sdk.AccAddressKey, types.JSONValue[machine.Record]()),
		LeaseSeq:      collections.NewSequence(builder, types.LeaseSeqKeyPrefix, types.LeaseSeqName),
		CustomerLeases: collections.NewKeySet(builder, types.CustomerLeasesKeyPrefix, types.CustomerLeasesName,
			collections.PairKeyCodec(sdk.AccAddressKey, sdk.AccAddressKey)),
		TimeAlarms: container.NewPriorityQueue(builder, types.TimeAlarmsKeyPrefix, types.TimeAlarmsName,
			types.TimeAlarmIndexKeyPrefix, types.TimeAlarmIndexName),
		DexCallbacks: collections.NewKeySet(builder, types.DexCallbacksKeyPrefix, types.DexCallbacksName, sdk.AccAddressKey),
	}

	schema, err := builder.Build()
	if err != nil {
		panic(err)
	}

	keeper.schema = schema
	return keeper
}

// GetAuthority returns the module's authority.
func (k Keeper) GetAuthority() []byte {
	return k.authority
}

// getLogger returns a logger with lease module context.
func (k Keeper) getLogger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", "x/"+types.ModuleName)
}
