package mocks

import (
	"fmt"
	"testing"
	"time"

	"cosmossdk.io/core/header"
	storetypes "cosmossdk.io/store/types"
	addresscodec "github.com/cosmos/cosmos-sdk/codec/address"
	"github.com/cosmos/cosmos-sdk/runtime"
	"github.com/cosmos/cosmos-sdk/testutil"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"

	"github.com/provlabs/lease/finance"
	"github.com/provlabs/lease/keeper"
	"github.com/provlabs/lease/types"
)

// Chain holds the mocked dependencies of a lease keeper.
type Chain struct {
	Accounts *AccountKeeper
	Bank     *BankKeeper
	Lpp      *LppKeeper
	Oracle   *OracleKeeper
	Reserve  *ReserveKeeper
	ICA      *ICAController
	Transfer *TransferServer
}

// NewLeaseKeeper returns an instance of the Keeper with all dependencies mocked.
// The keeper starts with the default params.
func NewLeaseKeeper(
	t testing.TB,
) (sdk.Context, *keeper.Keeper, *Chain) {
	key := storetypes.NewKVStoreKey(types.ModuleName)
	tkey := storetypes.NewTransientStoreKey(fmt.Sprintf("transient_%s", types.ModuleName))
	wrapper := testutil.DefaultContextWithDB(t, key, tkey)

	bank := NewBankKeeper()
	chain := &Chain{
		Accounts: NewAccountKeeper(),
		Bank:     bank,
		Lpp:      &LppKeeper{Bank: bank, Address: authtypes.NewModuleAddress("lpp"), Rate: finance.FromPercent(10)},
		Oracle:   &OracleKeeper{Prices: map[string]finance.Price{}, Alarms: map[string]PriceAlarm{}},
		Reserve:  &ReserveKeeper{Bank: bank},
		ICA:      &ICAController{},
		Transfer: &TransferServer{Bank: bank, Escrow: authtypes.NewModuleAddress("transfer")},
	}

	k := keeper.NewKeeper(
		runtime.NewKVStoreService(key),
		runtime.ProvideEventService(),
		addresscodec.NewBech32Codec("cosmos"),
		authtypes.NewModuleAddress(govtypes.ModuleName),
		chain.Accounts,
		chain.Bank,
		chain.Lpp,
		chain.Oracle,
		chain.Reserve,
		chain.ICA,
		chain.Transfer,
	)

	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	ctx := wrapper.Ctx.WithBlockTime(now).WithHeaderInfo(header.Info{Time: now})
	if err := k.Params.Set(ctx, types.DefaultParams()); err != nil {
		t.Fatalf("failed to set default params: %v", err)
	}
	return ctx, k, chain
}
