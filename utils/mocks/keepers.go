package mocks

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	icacontrollertypes "github.com/cosmos/ibc-go/v8/modules/apps/27-interchain-accounts/controller/types"
	icatypes "github.com/cosmos/ibc-go/v8/modules/apps/27-interchain-accounts/types"
	transfertypes "github.com/cosmos/ibc-go/v8/modules/apps/transfer/types"

	"github.com/provlabs/lease/dex"
	"github.com/provlabs/lease/finance"
	"github.com/provlabs/lease/types"
)

var (
	_ types.AccountKeeper          = &AccountKeeper{}
	_ types.BankKeeper             = &BankKeeper{}
	_ types.LppKeeper              = &LppKeeper{}
	_ types.OracleKeeper           = &OracleKeeper{}
	_ types.ReserveKeeper          = &ReserveKeeper{}
	_ types.ICAControllerMsgServer = &ICAController{}
	_ types.TransferMsgServer      = &TransferServer{}
)

// AccountKeeper stores accounts in memory.
type AccountKeeper struct {
	Accounts map[string]sdk.AccountI
}

func NewAccountKeeper() *AccountKeeper {
	return &AccountKeeper{Accounts: map[string]sdk.AccountI{}}
}

func (a *AccountKeeper) NewAccountWithAddress(_ context.Context, addr sdk.AccAddress) sdk.AccountI {
	return authtypes.NewBaseAccountWithAddress(addr)
}

func (a *AccountKeeper) HasAccount(_ context.Context, addr sdk.AccAddress) bool {
	_, ok := a.Accounts[addr.String()]
	return ok
}

func (a *AccountKeeper) SetAccount(_ context.Context, acc sdk.AccountI) {
	a.Accounts[acc.GetAddress().String()] = acc
}

// BankKeeper keeps balances in memory. It ignores the context, so writes
// are not reverted with a discarded cache context.
type BankKeeper struct {
	Balances map[string]sdk.Coins
}

func NewBankKeeper() *BankKeeper {
	return &BankKeeper{Balances: map[string]sdk.Coins{}}
}

func (b *BankKeeper) SendCoins(_ context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error {
	balance := b.Balances[fromAddr.String()]
	rest, negative := balance.SafeSub(amt...)
	if negative {
		return fmt.Errorf("insufficient funds: %s is smaller than %s", balance, amt)
	}
	b.Balances[fromAddr.String()] = rest
	b.Balances[toAddr.String()] = b.Balances[toAddr.String()].Add(amt...)
	return nil
}

func (b *BankKeeper) GetBalance(_ context.Context, addr sdk.AccAddress, denom string) sdk.Coin {
	return sdk.NewCoin(denom, b.Balances[addr.String()].AmountOf(denom))
}

// Fund mints coins to addr.
func (b *BankKeeper) Fund(addr sdk.AccAddress, coins ...sdk.Coin) {
	b.Balances[addr.String()] = b.Balances[addr.String()].Add(coins...)
}

// Repayment is a loan repayment received by the pool.
type Repayment struct {
	Lease     string
	Principal sdk.Coin
	Interest  sdk.Coin
}

// LppKeeper lends every requested amount at Rate.
type LppKeeper struct {
	Bank    *BankKeeper
	Address sdk.AccAddress
	Rate    finance.Percent
	// Err fails the next loan request when set.
	Err     error
	Repaid  []Repayment
}

func (l *LppKeeper) OpenLoan(_ context.Context, lease sdk.AccAddress, amount sdk.Coin) (types.LoanResponse, error) {
	if l.Err != nil {
		return types.LoanResponse{}, l.Err
	}
	l.Bank.Fund(lease, amount)
	return types.LoanResponse{Principal: amount, AnnualInterestRate: l.Rate}, nil
}

func (l *LppKeeper) RepayLoan(ctx context.Context, lease sdk.AccAddress, principal, interest sdk.Coin) error {
	if err := l.Bank.SendCoins(ctx, lease, l.Address, sdk.NewCoins(principal.Add(interest))); err != nil {
		return err
	}
	l.Repaid = append(l.Repaid, Repayment{Lease: lease.String(), Principal: principal, Interest: interest})
	return nil
}

// PriceAlarm is an alarm registered with the oracle.
type PriceAlarm struct {
	Below        finance.Price
	AboveOrEqual *finance.Price
}

// OracleKeeper serves Prices keyed by "BASE/QUOTE" tickers.
type OracleKeeper struct {
	Prices map[string]finance.Price
	Alarms map[string]PriceAlarm
}

func (o *OracleKeeper) Price(_ context.Context, base, quote finance.Currency) (finance.Price, error) {
	p, ok := o.Prices[base.Ticker+"/"+quote.Ticker]
	if !ok {
		return finance.Price{}, fmt.Errorf("no price for %s/%s", base.Ticker, quote.Ticker)
	}
	return p, nil
}

func (o *OracleKeeper) AddPriceAlarm(_ context.Context, lease sdk.AccAddress, below finance.Price, aboveOrEqual *finance.Price) error {
	o.Alarms[lease.String()] = PriceAlarm{Below: below, AboveOrEqual: aboveOrEqual}
	return nil
}

// ReserveKeeper covers every loss it is asked to.
type ReserveKeeper struct {
	Bank    *BankKeeper
	Covered []sdk.Coin
}

func (r *ReserveKeeper) CoverLiquidationLosses(_ context.Context, lease sdk.AccAddress, amount sdk.Coin) error {
	r.Bank.Fund(lease, amount)
	r.Covered = append(r.Covered, amount)
	return nil
}

// ICAController records the registrations and transactions it is sent.
// Transactions are decoded as a protobuf host would and rejected if they
// cannot be.
type ICAController struct {
	Registered []*icacontrollertypes.MsgRegisterInterchainAccount
	Sent       []*icacontrollertypes.MsgSendTx
	Requests   []dex.HostRequest
}

func (c *ICAController) RegisterInterchainAccount(_ context.Context, msg *icacontrollertypes.MsgRegisterInterchainAccount) (*icacontrollertypes.MsgRegisterInterchainAccountResponse, error) {
	c.Registered = append(c.Registered, msg)
	return &icacontrollertypes.MsgRegisterInterchainAccountResponse{ChannelId: "channel-1"}, nil
}

func (c *ICAController) SendTx(_ context.Context, msg *icacontrollertypes.MsgSendTx) (*icacontrollertypes.MsgSendTxResponse, error) {
	req, err := DecodeHostRequest(msg.PacketData.Data, icatypes.EncodingProtobuf)
	if err != nil {
		return nil, err
	}
	c.Sent = append(c.Sent, msg)
	c.Requests = append(c.Requests, req)
	return &icacontrollertypes.MsgSendTxResponse{Sequence: uint64(len(c.Sent))}, nil
}

// TransferServer escrows the tokens of every transfer it is sent.
type TransferServer struct {
	Bank   *BankKeeper
	Escrow sdk.AccAddress
	Sent   []*transfertypes.MsgTransfer
}

func (t *TransferServer) Transfer(ctx context.Context, msg *transfertypes.MsgTransfer) (*transfertypes.MsgTransferResponse, error) {
	sender, err := sdk.AccAddressFromBech32(msg.Sender)
	if err != nil {
		return nil, err
	}
	if err := t.Bank.SendCoins(ctx, sender, t.Escrow, sdk.NewCoins(msg.Token)); err != nil {
		return nil, err
	}
	t.Sent = append(t.Sent, msg)
	return &transfertypes.MsgTransferResponse{Sequence: uint64(len(t.Sent))}, nil
}
