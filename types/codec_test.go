package types_test

import (
	"testing"
	"time"

	collcodec "cosmossdk.io/collections/codec"
	"github.com/stretchr/testify/require"

	"github.com/provlabs/lease/types"
)

func TestJSONValue(t *testing.T) {
	codec := types.JSONValue[types.GenesisAlarm]()
	alarm := types.GenesisAlarm{Lease: types.LeaseAddress(3).String(), At: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).UnixNano()}

	bz, err := codec.Encode(alarm)
	require.NoError(t, err, "Encode")
	decoded, err := codec.Decode(bz)
	require.NoError(t, err, "Decode")
	require.Equal(t, alarm, decoded)

	jsonBz, err := codec.EncodeJSON(alarm)
	require.NoError(t, err, "EncodeJSON")
	require.Equal(t, bz, jsonBz, "store and json encodings should match")

	require.Contains(t, codec.Stringify(alarm), alarm.Lease)
	require.Equal(t, "json/types.GenesisAlarm", codec.ValueType())

	_, err = codec.Decode([]byte("not json"))
	require.ErrorIs(t, err, collcodec.ErrEncoding)
}

func TestLeaseAddress(t *testing.T) {
	require.Equal(t, types.LeaseAddress(1), types.LeaseAddress(1), "addresses should be deterministic")
	require.NotEqual(t, types.LeaseAddress(1), types.LeaseAddress(2))
	require.Len(t, types.LeaseAddress(0), 20)
}
