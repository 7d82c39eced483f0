package dex

import (
	icacontrollertypes "github.com/cosmos/ibc-go/v8/modules/apps/27-interchain-accounts/controller/types"
	icatypes "github.com/cosmos/ibc-go/v8/modules/apps/27-interchain-accounts/types"

	"github.com/provlabs/lease/platform"
)

// IcaConnector opens the interchain account of Owner on the dex.
type IcaConnector struct {
	Owner string           `json:"owner"`
	Dex   ConnectionParams `json:"dex"`
}

// NewIcaConnector returns a connector for owner.
func NewIcaConnector(owner string, dex ConnectionParams) IcaConnector {
	return IcaConnector{Owner: owner, Dex: dex}
}

// Enter requests the registration. Registering an account again after its
// channel closed reopens it under the same host address.
func (c IcaConnector) Enter() platform.Batch {
	return platform.NewBatch(platform.RegisterIca{Msg: &icacontrollertypes.MsgRegisterInterchainAccount{
		Owner:        c.Owner,
		ConnectionId: c.Dex.ConnectionID,
	}})
}

// Connected builds the account from the counterparty version of the channel
// open acknowledgement.
func (c IcaConnector) Connected(counterpartyVersion string) (Account, error) {
	metadata, err := parseMetadata(counterpartyVersion)
	if err != nil {
		return Account{}, err
	}
	return NewAccount(c.Owner, metadata.Address, metadata.Encoding, c.Dex)
}

// Reconnected checks that a reopened account kept its host address.
func (c IcaConnector) Reconnected(counterpartyVersion string, account Account) error {
	host, err := ParseRegistrationResponse(counterpartyVersion)
	if err != nil {
		return err
	}
	if host != account.HostAddress {
		return ErrInvalidRegistrationResponse.Wrapf("host address changed from %s to %s", account.HostAddress, host)
	}
	return nil
}

// ParseRegistrationResponse returns the host address carried in the ICA
// metadata.
func ParseRegistrationResponse(counterpartyVersion string) (string, error) {
	metadata, err := parseMetadata(counterpartyVersion)
	if err != nil {
		return "", err
	}
	return metadata.Address, nil
}

func parseMetadata(counterpartyVersion string) (icatypes.Metadata, error) {
	var metadata icatypes.Metadata
	if err := icatypes.ModuleCdc.UnmarshalJSON([]byte(counterpartyVersion), &metadata); err != nil {
		return metadata, ErrInvalidRegistrationResponse.Wrap(err.Error())
	}
	if err := icatypes.ValidateAccountAddress(metadata.Address); err != nil {
		return metadata, ErrInvalidRegistrationResponse.Wrap(err.Error())
	}
	switch metadata.Encoding {
	case icatypes.EncodingProtobuf, icatypes.EncodingProto3JSON:
		return metadata, nil
	default:
		return metadata, ErrInvalidRegistrationResponse.Wrapf("unsupported encoding %q", metadata.Encoding)
	}
}
