package keeper

import (
	"errors"
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"
	icatypes "github.com/cosmos/ibc-go/v8/modules/apps/27-interchain-accounts/types"
	transfertypes "github.com/cosmos/ibc-go/v8/modules/apps/transfer/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"

	"github.com/provlabs/lease/types"
)

// OnChanOpenAck notifies the owner lease of an interchain account channel
// that it is open. Channels of other owners are ignored.
func (k *Keeper) OnChanOpenAck(ctx sdk.Context, portID, counterpartyVersion string) error {
	lease, ok := k.leaseOfPort(ctx, portID)
	if !ok {
		return nil
	}
	k.safeSudo(ctx, lease, types.MsgIcaOpenAck{CounterpartyVersion: counterpartyVersion})
	return nil
}

// OnAcknowledgementPacket delivers the acknowledgement of a packet sent by a
// lease.
func (k *Keeper) OnAcknowledgementPacket(ctx sdk.Context, packet channeltypes.Packet, acknowledgement []byte) error {
	lease, ok := k.leaseOfPacket(ctx, packet)
	if !ok {
		return nil
	}
	k.safeSudo(ctx, lease, types.MsgIbcAck{Acknowledgement: acknowledgement})
	return nil
}

// OnTimeoutPacket notifies the lease that sent packet of its timeout.
func (k *Keeper) OnTimeoutPacket(ctx sdk.Context, packet channeltypes.Packet) error {
	lease, ok := k.leaseOfPacket(ctx, packet)
	if !ok {
		return nil
	}
	k.safeSudo(ctx, lease, types.MsgIbcTimeout{})
	return nil
}

// leaseOfPacket finds the lease that sent packet: the sender of an ICS-20
// transfer or the owner of an interchain account.
func (k *Keeper) leaseOfPacket(ctx sdk.Context, packet channeltypes.Packet) (sdk.AccAddress, bool) {
	if packet.GetSourcePort() != transfertypes.PortID {
		return k.leaseOfPort(ctx, packet.GetSourcePort())
	}
	var data transfertypes.FungibleTokenPacketData
	if err := transfertypes.ModuleCdc.UnmarshalJSON(packet.GetData(), &data); err != nil {
		return nil, false
	}
	return k.knownLease(ctx, data.Sender)
}

func (k *Keeper) leaseOfPort(ctx sdk.Context, portID string) (sdk.AccAddress, bool) {
	owner, found := strings.CutPrefix(portID, icatypes.ControllerPortPrefix)
	if !found {
		return nil, false
	}
	return k.knownLease(ctx, owner)
}

func (k *Keeper) knownLease(ctx sdk.Context, addr string) (sdk.AccAddress, bool) {
	lease, err := sdk.AccAddressFromBech32(addr)
	if err != nil {
		return nil, false
	}
	has, err := k.Leases.Has(ctx, lease)
	if err != nil {
		k.getLogger(ctx).Error("failed to look up lease", "lease", addr, "error", err)
		return nil, false
	}
	return lease, has
}

// safeSudo runs a callback in a cached context. A failure is reported and
// discarded so that the packet lifecycle completes.
func (k *Keeper) safeSudo(ctx sdk.Context, lease sdk.AccAddress, msg types.SudoMsg) {
	cacheCtx, write := ctx.CacheContext()
	if err := k.Sudo(cacheCtx, lease, msg); err != nil {
		k.reportCritical(ctx, lease, types.CriticalErr("failed to deliver "+msg.Name(), err))
		return
	}
	write()
}

// reportCritical logs err and emits it as an event of the lease.
func (k *Keeper) reportCritical(ctx sdk.Context, lease sdk.AccAddress, err error) {
	var critical *types.CriticalError
	if !errors.As(err, &critical) {
		critical = &types.CriticalError{Reason: "unexpected failure", Err: err}
	}
	k.getLogger(ctx).Error("lease failure", "lease", lease.String(), "reason", critical.Reason, "error", critical.Err)
	if emitErr := k.emitEvent(ctx, types.NewEventCritical(lease.String(), critical)); emitErr != nil {
		k.getLogger(ctx).Error("failed to emit critical event", "lease", lease.String(), "error", emitErr)
	}
}
