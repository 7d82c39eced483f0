package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/provlabs/lease/machine"
	"github.com/provlabs/lease/types"
)

// MaxTimeAlarmsPerBlock bounds the time alarms fired in one block. The rest
// stay due and fire in the following blocks.
const MaxTimeAlarmsPerBlock = 200

// EndBlocker is a hook that is called at the end of every block.
func (k *Keeper) EndBlocker(ctx context.Context) error {
	if err := k.processDexCallbacks(ctx); err != nil {
		return err
	}

	if err := k.processTimeAlarms(ctx); err != nil {
		return err
	}

	return nil
}

// processDexCallbacks resumes every lease that received a dex response in
// this block.
func (k *Keeper) processDexCallbacks(ctx context.Context) error {
	var leases []sdk.AccAddress
	err := k.DexCallbacks.Walk(ctx, nil, func(lease sdk.AccAddress) (bool, error) {
		leases = append(leases, lease)
		return false, nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk dex callbacks: %w", err)
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	for _, lease := range leases {
		if err := k.DexCallbacks.Remove(ctx, lease); err != nil {
			return fmt.Errorf("failed to remove dex callback of %s: %w", lease, err)
		}
		k.safeExecute(sdkCtx, lease.String(), lease, types.MsgDexCallback{})
	}
	return nil
}

// processTimeAlarms fires the due time alarms, earliest first.
func (k *Keeper) processTimeAlarms(ctx context.Context) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	due, err := k.TimeAlarms.PopDue(ctx, sdkCtx.BlockTime().UnixNano(), MaxTimeAlarmsPerBlock)
	if err != nil {
		return fmt.Errorf("failed to pop due time alarms: %w", err)
	}

	for _, lease := range due {
		sender, err := k.timeAlarmSender(ctx, lease)
		if err != nil {
			k.reportCritical(sdkCtx, lease, types.CriticalErr("failed to process "+types.MsgTimeAlarm{}.Name(), err))
			continue
		}
		k.safeExecute(sdkCtx, sender, lease, types.MsgTimeAlarm{})
	}
	return nil
}

// timeAlarmSender is the time alarms address the lease accepted when it
// opened. Later changes of the param apply to new leases only.
func (k *Keeper) timeAlarmSender(ctx context.Context, lease sdk.AccAddress) (string, error) {
	state, err := k.GetLeaseState(ctx, lease)
	if err != nil {
		return "", err
	}
	return machine.LeaseOf(state).TimeAlarms, nil
}

// safeExecute runs msg in a cached context, committing it only on success.
func (k *Keeper) safeExecute(ctx sdk.Context, sender string, lease sdk.AccAddress, msg types.ExecuteMsg) {
	cacheCtx, write := ctx.CacheContext()
	if err := k.execute(cacheCtx, sender, lease, msg); err != nil {
		k.reportCritical(ctx, lease, types.CriticalErr("failed to process "+msg.Name(), err))
		return
	}
	write()
}
