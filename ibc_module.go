package lease

import (
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	capabilitytypes "github.com/cosmos/ibc-go/modules/capability/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	porttypes "github.com/cosmos/ibc-go/v8/modules/core/05-port/types"
	ibcexported "github.com/cosmos/ibc-go/v8/modules/core/exported"

	"github.com/provlabs/lease/keeper"
	"github.com/provlabs/lease/types"
)

var _ porttypes.IBCModule = IBCMiddleware{}

// IBCMiddleware delivers the channel and packet callbacks of leases to the
// keeper after the wrapped app has handled them.
//
// Wrapping the transfer app reports acknowledgements and timeouts of the
// transfers sent by leases. Used with a nil app, as the underlying app of the
// interchain accounts controller, it reports the accounts opened by leases and
// the outcome of the transactions they send.
type IBCMiddleware struct {
	app    porttypes.IBCModule
	keeper *keeper.Keeper
}

// NewIBCMiddleware wraps app, which may be nil.
func NewIBCMiddleware(app porttypes.IBCModule, k *keeper.Keeper) IBCMiddleware {
	return IBCMiddleware{app: app, keeper: k}
}

func (im IBCMiddleware) OnChanOpenInit(
	ctx sdk.Context,
	order channeltypes.Order,
	connectionHops []string,
	portID string,
	channelID string,
	chanCap *capabilitytypes.Capability,
	counterparty channeltypes.Counterparty,
	version string,
) (string, error) {
	if im.app == nil {
		return version, nil
	}
	return im.app.OnChanOpenInit(ctx, order, connectionHops, portID, channelID, chanCap, counterparty, version)
}

func (im IBCMiddleware) OnChanOpenTry(
	ctx sdk.Context,
	order channeltypes.Order,
	connectionHops []string,
	portID, channelID string,
	chanCap *capabilitytypes.Capability,
	counterparty channeltypes.Counterparty,
	counterpartyVersion string,
) (string, error) {
	if im.app == nil {
		return "", errorsmod.Wrap(types.ErrUnsupportedOperation, "channel handshake must be initiated by the controller")
	}
	return im.app.OnChanOpenTry(ctx, order, connectionHops, portID, channelID, chanCap, counterparty, counterpartyVersion)
}

func (im IBCMiddleware) OnChanOpenAck(ctx sdk.Context, portID, channelID, counterpartyChannelID, counterpartyVersion string) error {
	if im.app != nil {
		if err := im.app.OnChanOpenAck(ctx, portID, channelID, counterpartyChannelID, counterpartyVersion); err != nil {
			return err
		}
	}
	return im.keeper.OnChanOpenAck(ctx, portID, counterpartyVersion)
}

func (im IBCMiddleware) OnChanOpenConfirm(ctx sdk.Context, portID, channelID string) error {
	if im.app == nil {
		return nil
	}
	return im.app.OnChanOpenConfirm(ctx, portID, channelID)
}

func (im IBCMiddleware) OnChanCloseInit(ctx sdk.Context, portID, channelID string) error {
	if im.app == nil {
		return nil
	}
	return im.app.OnChanCloseInit(ctx, portID, channelID)
}

func (im IBCMiddleware) OnChanCloseConfirm(ctx sdk.Context, portID, channelID string) error {
	if im.app == nil {
		return nil
	}
	return im.app.OnChanCloseConfirm(ctx, portID, channelID)
}

func (im IBCMiddleware) OnRecvPacket(ctx sdk.Context, packet channeltypes.Packet, relayer sdk.AccAddress) ibcexported.Acknowledgement {
	if im.app == nil {
		return channeltypes.NewErrorAcknowledgement(errorsmod.Wrap(types.ErrUnsupportedOperation, "cannot receive packets on a controller port"))
	}
	return im.app.OnRecvPacket(ctx, packet, relayer)
}

func (im IBCMiddleware) OnAcknowledgementPacket(ctx sdk.Context, packet channeltypes.Packet, acknowledgement []byte, relayer sdk.AccAddress) error {
	if im.app != nil {
		if err := im.app.OnAcknowledgementPacket(ctx, packet, acknowledgement, relayer); err != nil {
			return err
		}
	}
	return im.keeper.OnAcknowledgementPacket(ctx, packet, acknowledgement)
}

func (im IBCMiddleware) OnTimeoutPacket(ctx sdk.Context, packet channeltypes.Packet, relayer sdk.AccAddress) error {
	if im.app != nil {
		if err := im.app.OnTimeoutPacket(ctx, packet, relayer); err != nil {
			return err
		}
	}
	return im.keeper.OnTimeoutPacket(ctx, packet)
}
