package mocks

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	icatypes "github.com/cosmos/ibc-go/v8/modules/apps/27-interchain-accounts/types"
	transfertypes "github.com/cosmos/ibc-go/v8/modules/apps/transfer/types"

	"github.com/provlabs/lease/dex"
)

// DecodeHostRequest reads an ICA transaction the way the host does.
func DecodeHostRequest(data []byte, encoding string) (dex.HostRequest, error) {
	msgs, err := icatypes.DeserializeCosmosTx(dex.HostCodec(), data, encoding)
	if err != nil {
		return dex.HostRequest{}, err
	}
	var req dex.HostRequest
	for _, msg := range msgs {
		switch m := msg.(type) {
		case *dex.MsgSwapExactAmountIn:
			req.Swaps = append(req.Swaps, m)
		case *transfertypes.MsgTransfer:
			req.Transfers = append(req.Transfers, m)
		default:
			return dex.HostRequest{}, fmt.Errorf("unexpected host message %T", msg)
		}
	}
	return req, nil
}

// SwapAck is the transaction data a host acknowledges swaps with, one
// output amount per swap.
func SwapAck(amounts ...string) []byte {
	var data sdk.TxMsgData
	for _, a := range amounts {
		amount, ok := sdkmath.NewIntFromString(a)
		if !ok {
			panic(fmt.Sprintf("invalid amount %q", a))
		}
		resp, err := codectypes.NewAnyWithValue(&dex.MsgSwapExactAmountInResponse{TokenOutAmount: amount})
		if err != nil {
			panic(err)
		}
		data.MsgResponses = append(data.MsgResponses, resp)
	}
	bz, err := data.Marshal()
	if err != nil {
		panic(err)
	}
	return bz
}
