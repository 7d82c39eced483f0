package dex

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"google.golang.org/protobuf/encoding/protowire"
)

// Type names of the dex pool manager messages the host account executes.
const (
	SwapMsgName         = "osmosis.poolmanager.v1beta1.MsgSwapExactAmountIn"
	SwapResponseMsgName = "osmosis.poolmanager.v1beta1.MsgSwapExactAmountInResponse"
)

// SwapAmountInRoute is one pool hop of a swap.
type SwapAmountInRoute struct {
	PoolID        uint64 `protobuf:"varint,1,opt,name=pool_id,json=poolId,proto3" json:"pool_id,omitempty"`
	TokenOutDenom string `protobuf:"bytes,2,opt,name=token_out_denom,json=tokenOutDenom,proto3" json:"token_out_denom,omitempty"`
}

// MsgSwapExactAmountIn sells TokenIn along Routes for at least
// TokenOutMinAmount of the denom the last route ends in.
type MsgSwapExactAmountIn struct {
	Sender            string              `protobuf:"bytes,1,opt,name=sender,proto3" json:"sender,omitempty"`
	Routes            []SwapAmountInRoute `protobuf:"bytes,2,rep,name=routes,proto3" json:"routes"`
	TokenIn           sdk.Coin            `protobuf:"bytes,3,opt,name=token_in,json=tokenIn,proto3" json:"token_in"`
	TokenOutMinAmount sdkmath.Int         `protobuf:"bytes,4,opt,name=token_out_min_amount,json=tokenOutMinAmount,proto3,customtype=cosmossdk.io/math.Int" json:"token_out_min_amount"`
}

func (m *MsgSwapExactAmountIn) Reset()                { *m = MsgSwapExactAmountIn{} }
func (*MsgSwapExactAmountIn) ProtoMessage()           {}
func (*MsgSwapExactAmountIn) XXX_MessageName() string { return SwapMsgName }
func (m *MsgSwapExactAmountIn) String() string {
	return fmt.Sprintf("swap %s for %s via %v", m.TokenIn, m.TokenOutMinAmount, m.Routes)
}

// TokenOutDenom is the denom the swap ends in.
func (m *MsgSwapExactAmountIn) TokenOutDenom() string {
	if len(m.Routes) == 0 {
		return ""
	}
	return m.Routes[len(m.Routes)-1].TokenOutDenom
}

func (m *MsgSwapExactAmountIn) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Sender)
	for _, r := range m.Routes {
		var route []byte
		if r.PoolID != 0 {
			route = protowire.AppendTag(route, 1, protowire.VarintType)
			route = protowire.AppendVarint(route, r.PoolID)
		}
		route = appendString(route, 2, r.TokenOutDenom)
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, route)
	}
	coin, err := m.TokenIn.Marshal()
	if err != nil {
		return nil, err
	}
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendBytes(b, coin)
	if !m.TokenOutMinAmount.IsNil() {
		b = appendString(b, 4, m.TokenOutMinAmount.String())
	}
	return b, nil
}

func (m *MsgSwapExactAmountIn) Unmarshal(bz []byte) error {
	return consumeFields(bz, func(num protowire.Number, typ protowire.Type, value []byte, varint uint64) error {
		if typ != protowire.BytesType {
			return nil
		}
		switch num {
		case 1:
			m.Sender = string(value)
		case 2:
			var route SwapAmountInRoute
			err := consumeFields(value, func(num protowire.Number, typ protowire.Type, value []byte, varint uint64) error {
				switch {
				case num == 1 && typ == protowire.VarintType:
					route.PoolID = varint
				case num == 2 && typ == protowire.BytesType:
					route.TokenOutDenom = string(value)
				}
				return nil
			})
			if err != nil {
				return err
			}
			m.Routes = append(m.Routes, route)
		case 3:
			return m.TokenIn.Unmarshal(value)
		case 4:
			amount, ok := sdkmath.NewIntFromString(string(value))
			if !ok {
				return fmt.Errorf("invalid token out min amount %q", value)
			}
			m.TokenOutMinAmount = amount
		}
		return nil
	})
}

// MsgSwapExactAmountInResponse is the host's reply to a MsgSwapExactAmountIn.
type MsgSwapExactAmountInResponse struct {
	TokenOutAmount sdkmath.Int `protobuf:"bytes,1,opt,name=token_out_amount,json=tokenOutAmount,proto3,customtype=cosmossdk.io/math.Int" json:"token_out_amount"`
}

func (m *MsgSwapExactAmountInResponse) Reset()                { *m = MsgSwapExactAmountInResponse{} }
func (*MsgSwapExactAmountInResponse) ProtoMessage()           {}
func (*MsgSwapExactAmountInResponse) XXX_MessageName() string { return SwapResponseMsgName }
func (m *MsgSwapExactAmountInResponse) String() string {
	return fmt.Sprintf("swapped out %s", m.TokenOutAmount)
}

func (m *MsgSwapExactAmountInResponse) Marshal() ([]byte, error) {
	if m.TokenOutAmount.IsNil() {
		return nil, nil
	}
	return appendString(nil, 1, m.TokenOutAmount.String()), nil
}

func (m *MsgSwapExactAmountInResponse) Unmarshal(bz []byte) error {
	return consumeFields(bz, func(num protowire.Number, typ protowire.Type, value []byte, _ uint64) error {
		if num != 1 || typ != protowire.BytesType {
			return nil
		}
		amount, ok := sdkmath.NewIntFromString(string(value))
		if !ok {
			return fmt.Errorf("invalid token out amount %q", value)
		}
		m.TokenOutAmount = amount
		return nil
	})
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// consumeFields hands every field of a message to fn. Only varint and
// length-delimited values are passed through; the rest are skipped.
func consumeFields(bz []byte, fn func(num protowire.Number, typ protowire.Type, value []byte, varint uint64) error) error {
	for len(bz) > 0 {
		num, typ, n := protowire.ConsumeTag(bz)
		if n < 0 {
			return protowire.ParseError(n)
		}
		bz = bz[n:]

		var (
			value  []byte
			varint uint64
		)
		switch typ {
		case protowire.VarintType:
			varint, n = protowire.ConsumeVarint(bz)
		case protowire.BytesType:
			value, n = protowire.ConsumeBytes(bz)
		default:
			n = protowire.ConsumeFieldValue(num, typ, bz)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		bz = bz[n:]
		if err := fn(num, typ, value, varint); err != nil {
			return err
		}
	}
	return nil
}
