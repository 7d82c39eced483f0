package keeper

import (
	"context"
	"fmt"

	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/hashicorp/go-metrics"

	"github.com/provlabs/lease/platform"
	"github.com/provlabs/lease/types"
)

// dispatch performs the messages of batch in order on behalf of the lease.
// The first failure aborts the rest.
func (k *Keeper) dispatch(ctx context.Context, lease sdk.AccAddress, batch platform.Batch) error {
	for i, msg := range batch.Messages {
		if err := k.dispatchMessage(ctx, lease, msg); err != nil {
			return fmt.Errorf("message %d (%T) of lease %s: %w", i, msg, lease, err)
		}
		telemetry.IncrCounterWithLabels(
			[]string{types.ModuleName, "dispatch"},
			1,
			[]metrics.Label{telemetry.NewLabel("msg", fmt.Sprintf("%T", msg))},
		)
	}
	return nil
}

func (k *Keeper) dispatchMessage(ctx context.Context, lease sdk.AccAddress, msg platform.Message) error {
	switch m := msg.(type) {
	case platform.BankSend:
		to, err := sdk.AccAddressFromBech32(m.To)
		if err != nil {
			return fmt.Errorf("invalid recipient %q: %w", m.To, err)
		}
		return k.BankKeeper.SendCoins(ctx, lease, to, sdk.NewCoins(m.Amount.ToSdk()))

	case platform.LppOpenLoan:
		granted, err := k.LppKeeper.OpenLoan(ctx, lease, m.Amount.ToSdk())
		if err != nil {
			return err
		}
		return k.onLoanOpened(ctx, lease, granted)

	case platform.LppRepay:
		return k.LppKeeper.RepayLoan(ctx, lease, m.Principal.ToSdk(), m.Interest.ToSdk())

	case platform.ReserveCoverLosses:
		return k.ReserveKeeper.CoverLiquidationLosses(ctx, lease, m.Amount.ToSdk())

	case platform.AddTimeAlarm:
		return k.TimeAlarms.Enqueue(ctx, lease, m.At.UnixNano())

	case platform.AddPriceAlarm:
		return k.OracleKeeper.AddPriceAlarm(ctx, lease, m.Below, m.AboveOrEqual)

	case platform.RegisterIca:
		_, err := k.ICAController.RegisterInterchainAccount(ctx, m.Msg)
		return err

	case platform.IbcTransfer:
		_, err := k.Transfer.Transfer(ctx, m.Msg)
		return err

	case platform.IcaTx:
		_, err := k.ICAController.SendTx(ctx, m.Msg)
		return err

	case platform.DexCallback:
		return k.DexCallbacks.Set(ctx, lease)

	default:
		return fmt.Errorf("unsupported message %T", msg)
	}
}
