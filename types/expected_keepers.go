package types

import (
	context "context"

	sdk "github.com/cosmos/cosmos-sdk/types"
	icacontrollertypes "github.com/cosmos/ibc-go/v8/modules/apps/27-interchain-accounts/controller/types"
	transfertypes "github.com/cosmos/ibc-go/v8/modules/apps/transfer/types"

	"github.com/provlabs/lease/finance"
)

// LoanResponse is what the liquidity pool grants a lease.
type LoanResponse struct {
	Principal          sdk.Coin
	AnnualInterestRate finance.Percent
}

// LppKeeper is the liquidity pool lending the LPN.
type LppKeeper interface {
	// OpenLoan sends at most amount to the lease.
	OpenLoan(ctx context.Context, lease sdk.AccAddress, amount sdk.Coin) (LoanResponse, error)
	// RepayLoan collects principal and interest from the lease.
	RepayLoan(ctx context.Context, lease sdk.AccAddress, principal, interest sdk.Coin) error
}

// OracleKeeper provides prices and notifies leases when they are crossed.
type OracleKeeper interface {
	Price(ctx context.Context, base, quote finance.Currency) (finance.Price, error)
	// AddPriceAlarm replaces the alarm of the lease.
	AddPriceAlarm(ctx context.Context, lease sdk.AccAddress, below finance.Price, aboveOrEqual *finance.Price) error
}

// ReserveKeeper covers the losses of liquidated positions.
type ReserveKeeper interface {
	CoverLiquidationLosses(ctx context.Context, lease sdk.AccAddress, amount sdk.Coin) error
}

type AccountKeeper interface {
	NewAccountWithAddress(ctx context.Context, addr sdk.AccAddress) sdk.AccountI
	HasAccount(ctx context.Context, addr sdk.AccAddress) bool
	SetAccount(ctx context.Context, acc sdk.AccountI)
}

// BankKeeper defines the bank functionality needed from within the lease module.
type BankKeeper interface {
	SendCoins(context context.Context, fromAddr sdk.AccAddress, toAddr sdk.AccAddress, amt sdk.Coins) error
	GetBalance(context context.Context, addr sdk.AccAddress, denom string) sdk.Coin
}

// ICAControllerMsgServer registers interchain accounts and executes
// transactions on them.
type ICAControllerMsgServer interface {
	RegisterInterchainAccount(context.Context, *icacontrollertypes.MsgRegisterInterchainAccount) (*icacontrollertypes.MsgRegisterInterchainAccountResponse, error)
	SendTx(context.Context, *icacontrollertypes.MsgSendTx) (*icacontrollertypes.MsgSendTxResponse, error)
}

// TransferMsgServer sends ICS-20 transfers.
type TransferMsgServer interface {
	Transfer(context.Context, *transfertypes.MsgTransfer) (*transfertypes.MsgTransferResponse, error)
}
