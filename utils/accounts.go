package utils

import (
	"github.com/cometbft/cometbft/crypto/secp256k1"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Address is a test account address in both of its forms.
type Address struct {
	Bytes  sdk.AccAddress
	Bech32 string
}

// TestAddress returns the address of a fresh secp256k1 key.
func TestAddress() Address {
	key := secp256k1.GenPrivKey()
	bytes := sdk.AccAddress(key.PubKey().Address().Bytes())

	address, err := sdk.Bech32ifyAddressBytes("cosmos", bytes)
	if err != nil {
		panic("error during test address creation")
	}
	return Address{
		Bytes:  bytes,
		Bech32: address,
	}
}
