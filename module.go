// Package lease is the x/lease module. It has no proto definitions: its
// messages and queries are Go types handled by keeper methods, not gRPC
// services registered with the app's routers.
package lease

import (
	"context"
	"encoding/json"
	"fmt"

	"cosmossdk.io/core/address"
	"cosmossdk.io/core/appmodule"
	"cosmossdk.io/core/event"
	"cosmossdk.io/core/store"
	"cosmossdk.io/depinject"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/module"
	"github.com/grpc-ecosystem/grpc-gateway/runtime"

	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/provlabs/lease/keeper"
	"github.com/provlabs/lease/types"
)

// ConsensusVersion defines the current x/lease module consensus version.
const ConsensusVersion = 2

var (
	_ module.AppModuleBasic      = AppModule{}
	_ appmodule.AppModule        = AppModule{}
	_ appmodule.HasEndBlocker    = AppModule{}
	_ module.HasConsensusVersion = AppModule{}
	_ module.HasGenesis          = AppModule{}
	_ module.HasGenesisBasics    = AppModuleBasic{}
	_ module.HasServices         = AppModule{}
)

// AppModuleBasic implements the basic methods for the lease module.
type AppModuleBasic struct{}

// NewAppModuleBasic creates a new AppModuleBasic.
func NewAppModuleBasic() AppModuleBasic {
	return AppModuleBasic{}
}

// Name returns the lease module name.
func (AppModuleBasic) Name() string { return types.ModuleName }

// RegisterLegacyAminoCodec is a no-op, the module has no amino messages.
func (AppModuleBasic) RegisterLegacyAminoCodec(*codec.LegacyAmino) {}

// RegisterInterfaces is a no-op, the module has no interface implementations.
func (AppModuleBasic) RegisterInterfaces(codectypes.InterfaceRegistry) {}

// RegisterGRPCGatewayRoutes is a no-op. Without a registered Query service
// there is nothing to route.
func (AppModuleBasic) RegisterGRPCGatewayRoutes(client.Context, *runtime.ServeMux) {}

// DefaultGenesis returns default genesis state as raw bytes.
func (AppModuleBasic) DefaultGenesis(codec.JSONCodec) json.RawMessage {
	bz, err := json.Marshal(types.DefaultGenesisState())
	if err != nil {
		panic(err)
	}
	return bz
}

// ValidateGenesis validates the lease genesis state.
func (AppModuleBasic) ValidateGenesis(_ codec.JSONCodec, _ client.TxEncodingConfig, bz json.RawMessage) error {
	var genesis types.GenesisState
	if err := json.Unmarshal(bz, &genesis); err != nil {
		return fmt.Errorf("failed to unmarshal %s genesis state: %w", types.ModuleName, err)
	}
	return genesis.Validate()
}

// AppModule implements the core lease module functionality.
type AppModule struct {
	AppModuleBasic
	keeper       *keeper.Keeper
	addressCodec address.Codec
}

// NewAppModule creates a new AppModule instance.
func NewAppModule(keeper *keeper.Keeper, addressCodec address.Codec) AppModule {
	return AppModule{
		AppModuleBasic: NewAppModuleBasic(),
		keeper:         keeper,
		addressCodec:   addressCodec,
	}
}

// IsOnePerModuleType asserts one module per type.
func (AppModule) IsOnePerModuleType() {}

// IsAppModule asserts this is an app module.
func (AppModule) IsAppModule() {}

// ConsensusVersion returns the module consensus version.
func (AppModule) ConsensusVersion() uint64 { return ConsensusVersion }

// InitGenesis initializes the module's state from genesis.
func (m AppModule) InitGenesis(ctx sdk.Context, _ codec.JSONCodec, bz json.RawMessage) {
	var genesis types.GenesisState
	if err := json.Unmarshal(bz, &genesis); err != nil {
		panic(fmt.Errorf("failed to unmarshal %s genesis state: %w", types.ModuleName, err))
	}
	m.keeper.InitGenesis(ctx, &genesis)
}

// ExportGenesis exports the module's state to genesis.
func (m AppModule) ExportGenesis(ctx sdk.Context, _ codec.JSONCodec) json.RawMessage {
	bz, err := json.Marshal(m.keeper.ExportGenesis(ctx))
	if err != nil {
		panic(err)
	}
	return bz
}

// RegisterServices registers the store migrations only. The module has no
// proto definitions, so no Msg or Query gRPC service is registered with the
// router: keeper.NewMsgServer and keeper.NewQueryServer are plain Go values
// the app and other modules call directly.
func (m AppModule) RegisterServices(cfg module.Configurator) {
	migrator := keeper.NewMigrator(m.keeper)
	if err := cfg.RegisterMigration(types.ModuleName, 1, migrator.Migrate1to2); err != nil {
		panic(fmt.Sprintf("failed to register %s migration 1 to 2: %v", types.ModuleName, err))
	}
}

// EndBlock resumes leases on delivered dex responses and fires due time alarms.
func (m AppModule) EndBlock(ctx context.Context) error {
	return m.keeper.EndBlocker(ctx)
}

// ModuleInputs defines the inputs required to initialize the lease module.
type ModuleInputs struct {
	depinject.In
	StoreService  store.KVStoreService
	EventService  event.Service
	AddressCodec  address.Codec
	AccountKeeper types.AccountKeeper
	BankKeeper    types.BankKeeper
	LppKeeper     types.LppKeeper
	OracleKeeper  types.OracleKeeper
	ReserveKeeper types.ReserveKeeper
	ICAController types.ICAControllerMsgServer
	Transfer      types.TransferMsgServer
}

// ModuleOutputs defines the outputs of the lease module provider.
type ModuleOutputs struct {
	depinject.Out
	Keeper *keeper.Keeper
	Module appmodule.AppModule
}

// ProvideModule wires up the lease module and its keeper. It is registered
// with depinject.Provide by the app.
func ProvideModule(in ModuleInputs) ModuleOutputs {
	k := keeper.NewKeeper(
		in.StoreService,
		in.EventService,
		in.AddressCodec,
		authtypes.NewModuleAddress(types.GovModuleName),
		in.AccountKeeper,
		in.BankKeeper,
		in.LppKeeper,
		in.OracleKeeper,
		in.ReserveKeeper,
		in.ICAController,
		in.Transfer,
	)
	m := NewAppModule(k, in.AddressCodec)
	return ModuleOutputs{Keeper: k, Module: m}
}
