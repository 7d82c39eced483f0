package keeper

import (
	"context"
	"errors"
	"fmt"

	"cosmossdk.io/collections"
	"cosmossdk.io/core/event"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/hashicorp/go-metrics"

	"github.com/provlabs/lease/dex"
	"github.com/provlabs/lease/finance"
	"github.com/provlabs/lease/machine"
	"github.com/provlabs/lease/types"
)

// OpenLease creates the account of a new lease, moves the downpayment of the
// customer onto it and requests the loan.
//
// The lease address is derived from the next value of the lease sequence.
func (k *Keeper) OpenLease(ctx context.Context, msg types.MsgOpenLease) (sdk.AccAddress, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, types.ErrInvalidRequest.Wrap(err.Error())
	}
	customer, err := sdk.AccAddressFromBech32(msg.Customer)
	if err != nil {
		return nil, types.ErrInvalidRequest.Wrap(err.Error())
	}
	downpayment, err := finance.CoinFromSdk(msg.Downpayment, finance.GroupPayment)
	if err != nil {
		return nil, types.ErrPaymentCurrency.Wrap(err.Error())
	}
	params, err := k.Params.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get params: %w", err)
	}

	seq, err := k.LeaseSeq.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get next lease sequence: %w", err)
	}
	leaseAddr := types.LeaseAddress(seq)
	if k.AccountKeeper.HasAccount(ctx, leaseAddr) {
		return nil, types.ErrInvalidRequest.Wrapf("account %s already exists", leaseAddr)
	}
	k.AccountKeeper.SetAccount(ctx, k.AccountKeeper.NewAccountWithAddress(ctx, leaseAddr))

	if err := k.BankKeeper.SendCoins(ctx, customer, leaseAddr, sdk.NewCoins(msg.Downpayment)); err != nil {
		return nil, fmt.Errorf("failed to send downpayment to lease %s: %w", leaseAddr, err)
	}

	resp, err := machine.Instantiate(k.env(ctx, leaseAddr, msg.Customer, params), machine.Form{
		Customer:    msg.Customer,
		Currency:    msg.Currency,
		Downpayment: downpayment,
		MaxLTD:      msg.MaxLTD,
	})
	if err != nil {
		return nil, err
	}
	if err := k.CustomerLeases.Set(ctx, collections.Join(customer, leaseAddr)); err != nil {
		return nil, fmt.Errorf("failed to index lease %s: %w", leaseAddr, err)
	}
	if err := k.apply(ctx, leaseAddr, nil, resp); err != nil {
		return nil, err
	}
	return leaseAddr, nil
}

// Execute runs msg against the lease on behalf of sender. A repayment is
// moved from sender to the lease first.
func (k *Keeper) Execute(ctx context.Context, sender, lease sdk.AccAddress, msg types.ExecuteMsg) error {
	if err := msg.ValidateBasic(); err != nil {
		return types.ErrInvalidRequest.Wrap(err.Error())
	}
	if repay, ok := msg.(types.MsgRepay); ok {
		has, err := k.Leases.Has(ctx, lease)
		if err != nil {
			return err
		}
		if !has {
			return types.ErrLeaseNotFound.Wrap(lease.String())
		}
		if err := k.BankKeeper.SendCoins(ctx, sender, lease, sdk.NewCoins(repay.Payment)); err != nil {
			return fmt.Errorf("failed to send payment to lease %s: %w", lease, err)
		}
	}
	return k.execute(ctx, sender.String(), lease, msg)
}

func (k *Keeper) execute(ctx context.Context, sender string, lease sdk.AccAddress, msg types.ExecuteMsg) error {
	state, err := k.GetLeaseState(ctx, lease)
	if err != nil {
		return err
	}
	env, err := k.leaseEnv(ctx, lease, sender)
	if err != nil {
		return err
	}
	resp, err := machine.Execute(state, env, msg)
	if err != nil {
		return err
	}
	return k.apply(ctx, lease, state, resp)
}

// Sudo delivers a callback of the IBC stack to the lease.
func (k *Keeper) Sudo(ctx context.Context, lease sdk.AccAddress, msg types.SudoMsg) error {
	state, err := k.GetLeaseState(ctx, lease)
	if err != nil {
		return err
	}
	env, err := k.leaseEnv(ctx, lease, "")
	if err != nil {
		return err
	}
	resp, err := machine.Sudo(state, env, msg)
	if err != nil {
		return err
	}
	return k.apply(ctx, lease, state, resp)
}

// GetLeaseState loads and decodes the current state of the lease.
func (k Keeper) GetLeaseState(ctx context.Context, lease sdk.AccAddress) (machine.State, error) {
	rec, err := k.Leases.Get(ctx, lease)
	if errors.Is(err, collections.ErrNotFound) {
		return nil, types.ErrLeaseNotFound.Wrap(lease.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lease %s: %w", lease, err)
	}
	return machine.Decode(rec)
}

// apply persists the next state of the lease, then emits its events and
// dispatches its messages in order. A nil current marks a new lease.
func (k *Keeper) apply(ctx context.Context, lease sdk.AccAddress, current machine.State, resp machine.Response) error {
	next := current
	if resp.Next != nil {
		next = resp.Next
	}
	rec, err := machine.Encode(next)
	if err != nil {
		return err
	}
	if err := k.Leases.Set(ctx, lease, rec); err != nil {
		return fmt.Errorf("failed to store lease %s: %w", lease, err)
	}

	for _, e := range resp.Events {
		if err := k.emitEvent(ctx, e); err != nil {
			return err
		}
	}

	from := ""
	if current != nil {
		from = current.Name()
	}
	if from != next.Name() {
		if err := k.emitEvent(ctx, types.NewEventTransition(lease.String(), from, next.Name())); err != nil {
			return err
		}
		k.getLogger(sdk.UnwrapSDKContext(ctx)).Debug("lease transition", "lease", lease.String(), "from", from, "to", next.Name())
		telemetry.IncrCounterWithLabels(
			[]string{types.ModuleName, "transition"},
			1,
			[]metrics.Label{telemetry.NewLabel("state", next.Name())},
		)
	}

	switch next.(type) {
	case machine.Closed, machine.Liquidated:
		if err := k.TimeAlarms.Dequeue(ctx, lease); err != nil {
			return fmt.Errorf("failed to remove time alarm of lease %s: %w", lease, err)
		}
	}

	return k.dispatch(ctx, lease, resp.Batch)
}

// onLoanOpened resumes a lease with the loan granted by the pool.
func (k *Keeper) onLoanOpened(ctx context.Context, lease sdk.AccAddress, granted types.LoanResponse) error {
	state, err := k.GetLeaseState(ctx, lease)
	if err != nil {
		return err
	}
	env, err := k.leaseEnv(ctx, lease, "")
	if err != nil {
		return err
	}
	resp, err := state.OnLoanOpened(env, granted)
	if err != nil {
		return err
	}
	return k.apply(ctx, lease, state, resp)
}

func (k *Keeper) emitEvent(ctx context.Context, e sdk.Event) error {
	attrs := make([]event.Attribute, 0, len(e.Attributes))
	for _, a := range e.Attributes {
		attrs = append(attrs, event.Attribute{Key: a.Key, Value: a.Value})
	}
	return k.eventService.EventManager(ctx).EmitKV(ctx, e.Type, attrs...)
}

func (k *Keeper) leaseEnv(ctx context.Context, lease sdk.AccAddress, sender string) (machine.Env, error) {
	params, err := k.Params.Get(ctx)
	if err != nil {
		return machine.Env{}, fmt.Errorf("failed to get params: %w", err)
	}
	return k.env(ctx, lease, sender, params), nil
}

func (k *Keeper) env(ctx context.Context, lease sdk.AccAddress, sender string, params types.Params) machine.Env {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return machine.Env{
		Env: dex.Env{
			Ctx:     ctx,
			Now:     sdkCtx.BlockTime(),
			Self:    lease.String(),
			Timeout: params.PacketTimeout,
			Poll:    params.TransferInPoll,
			Querier: chainQuerier{k: k},
		},
		Logger: k.getLogger(sdkCtx).With("lease", lease.String()),
		Sender: sender,
		Params: params,
	}
}

// chainQuerier reads balances from the bank and prices from the oracle.
type chainQuerier struct {
	k *Keeper
}

func (q chainQuerier) Balance(ctx context.Context, addr string, c finance.Currency) (finance.Coin, error) {
	acc, err := sdk.AccAddressFromBech32(addr)
	if err != nil {
		return finance.Coin{}, dex.ErrQuery.Wrapf("invalid address %q: %s", addr, err)
	}
	return finance.CoinFromSdk(q.k.BankKeeper.GetBalance(ctx, acc, c.BankSymbol), c.Group)
}

func (q chainQuerier) Price(ctx context.Context, base, quote finance.Currency) (finance.Price, error) {
	return q.k.OracleKeeper.Price(ctx, base, quote)
}
