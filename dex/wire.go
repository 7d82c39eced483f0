package dex

import (
	"time"

	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/gogoproto/proto"
	icacontrollertypes "github.com/cosmos/ibc-go/v8/modules/apps/27-interchain-accounts/controller/types"
	icatypes "github.com/cosmos/ibc-go/v8/modules/apps/27-interchain-accounts/types"
	transfertypes "github.com/cosmos/ibc-go/v8/modules/apps/transfer/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"

	"github.com/provlabs/lease/finance"
	"github.com/provlabs/lease/platform"
)

// HostRequest is the content of an ICA transaction executed by the host.
// Swaps run before transfers.
type HostRequest struct {
	Swaps     []*MsgSwapExactAmountIn
	Transfers []*transfertypes.MsgTransfer
}

func (r HostRequest) msgs() []proto.Message {
	msgs := make([]proto.Message, 0, len(r.Swaps)+len(r.Transfers))
	for _, m := range r.Swaps {
		msgs = append(msgs, m)
	}
	for _, m := range r.Transfers {
		msgs = append(msgs, m)
	}
	return msgs
}

var hostCdc = newHostCodec()

func newHostCodec() *codec.ProtoCodec {
	registry := codectypes.NewInterfaceRegistry()
	transfertypes.RegisterInterfaces(registry)
	registry.RegisterImplementations((*sdk.Msg)(nil), &MsgSwapExactAmountIn{})
	return codec.NewProtoCodec(registry)
}

// HostCodec is the codec ICA transactions are serialized with.
func HostCodec() codec.Codec {
	return hostCdc
}

// icaTx wraps req into an ICA transaction of the account, encoded the way the
// host agreed to at registration.
func icaTx(account Account, req HostRequest, memo string, timeout time.Duration) (platform.IcaTx, error) {
	bz, err := icatypes.SerializeCosmosTx(hostCdc, req.msgs(), account.TxEncoding())
	if err != nil {
		return platform.IcaTx{}, err
	}
	return platform.IcaTx{Msg: &icacontrollertypes.MsgSendTx{
		Owner:        account.Owner,
		ConnectionId: account.Dex.ConnectionID,
		PacketData: icatypes.InterchainAccountPacketData{
			Type: icatypes.EXECUTE_TX,
			Data: bz,
			Memo: memo,
		},
		RelativeTimeout: uint64(timeout.Nanoseconds()),
	}}, nil
}

// swapMsg sells in for out. Routes go through the pool of each currency
// against the LPN.
func swapMsg(account Account, in finance.Coin, out finance.Currency, minOut finance.Amount) *MsgSwapExactAmountIn {
	lpn := finance.Lpn()
	var routes []SwapAmountInRoute
	if in.Ticker != lpn.Ticker {
		routes = append(routes, SwapAmountInRoute{PoolID: in.Currency().DexPool, TokenOutDenom: lpn.DexSymbol})
	}
	if out.Ticker != lpn.Ticker {
		routes = append(routes, SwapAmountInRoute{PoolID: out.DexPool, TokenOutDenom: out.DexSymbol})
	}
	return &MsgSwapExactAmountIn{
		Sender:            account.HostAddress,
		Routes:            routes,
		TokenIn:           in.ToDex(),
		TokenOutMinAmount: minOut.Int(),
	}
}

// transferOut sends coin from the lease to its account on the dex.
func transferOut(account Account, coin finance.Coin, memo string, env Env) platform.IbcTransfer {
	return platform.IbcTransfer{Msg: &transfertypes.MsgTransfer{
		SourcePort:       transfertypes.PortID,
		SourceChannel:    account.Dex.TransferChannel.LocalEndpoint,
		Token:            coin.ToSdk(),
		Sender:           account.Owner,
		Receiver:         account.HostAddress,
		TimeoutTimestamp: uint64(env.Now.Add(env.Timeout).UnixNano()),
		Memo:             memo,
	}}
}

// transferIn has the host send coin back to the lease.
func transferIn(account Account, coin finance.Coin, env Env) *transfertypes.MsgTransfer {
	return &transfertypes.MsgTransfer{
		SourcePort:       transfertypes.PortID,
		SourceChannel:    account.Dex.TransferChannel.RemoteEndpoint,
		Token:            coin.ToDex(),
		Sender:           account.HostAddress,
		Receiver:         account.Owner,
		TimeoutTimestamp: uint64(env.Now.Add(env.Timeout).UnixNano()),
	}
}

// decodeSwapResponse reads the per-leg outputs of a swap from the
// transaction data the host acknowledged with.
func decodeSwapResponse(data []byte, legs int) ([]finance.Amount, error) {
	var msgData sdk.TxMsgData
	if err := msgData.Unmarshal(data); err != nil {
		return nil, ErrInvalidResponse.Wrap(err.Error())
	}
	out := make([]finance.Amount, 0, legs)
	for _, resp := range msgData.MsgResponses {
		if resp.TypeUrl != "/"+SwapResponseMsgName {
			continue
		}
		var swap MsgSwapExactAmountInResponse
		if err := swap.Unmarshal(resp.Value); err != nil {
			return nil, ErrInvalidResponse.Wrap(err.Error())
		}
		a := swap.TokenOutAmount
		if a.IsNil() || a.IsNegative() {
			return nil, ErrInvalidResponse.Wrapf("swap output %s", a)
		}
		amount, err := finance.AmountFromString(a.String())
		if err != nil {
			return nil, ErrInvalidResponse.Wrap(err.Error())
		}
		out = append(out, amount)
	}
	if len(out) != legs {
		return nil, ErrInvalidResponse.Wrapf("%d outputs for %d swaps", len(out), legs)
	}
	return out, nil
}

// ResponseKind tells how a packet ended.
type ResponseKind uint8

const (
	ResponseOk ResponseKind = iota + 1
	ResponseError
	ResponseTimeout
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseOk:
		return "ok"
	case ResponseError:
		return "error"
	case ResponseTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Response is the outcome of the last packet a lease sent.
type Response struct {
	Kind  ResponseKind `json:"kind"`
	Data  []byte       `json:"data,omitempty"`
	Error string       `json:"error,omitempty"`
}

// ParseAcknowledgement turns a channel acknowledgement into a Response.
func ParseAcknowledgement(bz []byte) (Response, error) {
	var ack channeltypes.Acknowledgement
	if err := transfertypes.ModuleCdc.UnmarshalJSON(bz, &ack); err != nil {
		return Response{}, ErrInvalidResponse.Wrapf("acknowledgement: %s", err)
	}
	if !ack.Success() {
		return Response{Kind: ResponseError, Error: ack.GetError()}, nil
	}
	return Response{Kind: ResponseOk, Data: ack.GetResult()}, nil
}
