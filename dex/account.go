package dex

import (
	"strings"

	icatypes "github.com/cosmos/ibc-go/v8/modules/apps/27-interchain-accounts/types"
	"github.com/hashicorp/go-multierror"
)

// Ics20Channel is the transfer channel between the lease chain, the local
// endpoint, and the dex, the remote one.
type Ics20Channel struct {
	LocalEndpoint  string `json:"local_endpoint"`
	RemoteEndpoint string `json:"remote_endpoint"`
}

// ConnectionParams locate the dex.
type ConnectionParams struct {
	ConnectionID    string       `json:"connection_id"`
	TransferChannel Ics20Channel `json:"transfer_channel"`
}

func (p ConnectionParams) Validate() error {
	var errs error
	if !strings.HasPrefix(p.ConnectionID, "connection-") {
		errs = multierror.Append(errs, ErrInvalidConnection.Wrapf("connection id %q", p.ConnectionID))
	}
	if !strings.HasPrefix(p.TransferChannel.LocalEndpoint, "channel-") {
		errs = multierror.Append(errs, ErrInvalidConnection.Wrapf("local endpoint %q", p.TransferChannel.LocalEndpoint))
	}
	if !strings.HasPrefix(p.TransferChannel.RemoteEndpoint, "channel-") {
		errs = multierror.Append(errs, ErrInvalidConnection.Wrapf("remote endpoint %q", p.TransferChannel.RemoteEndpoint))
	}
	return errs
}

// Account is an interchain account on the dex controlled by Owner.
type Account struct {
	Owner       string           `json:"owner"`
	HostAddress string           `json:"host"`
	Dex         ConnectionParams `json:"dex"`
	// Encoding is the transaction encoding the host accepts.
	Encoding string `json:"encoding,omitempty"`
}

// TxEncoding returns the encoding of the transactions sent to the host.
// Accounts registered before the encoding was kept use protobuf.
func (a Account) TxEncoding() string {
	if a.Encoding == "" {
		return icatypes.EncodingProtobuf
	}
	return a.Encoding
}

// NewAccount returns an account once its host address is known.
func NewAccount(owner, host, encoding string, dex ConnectionParams) (Account, error) {
	if strings.TrimSpace(host) == "" {
		return Account{}, ErrInvalidRegistrationResponse.Wrap("empty host address")
	}
	return Account{Owner: owner, HostAddress: host, Dex: dex, Encoding: encoding}, nil
}
