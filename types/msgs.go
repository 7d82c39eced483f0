package types

import (
	"errors"
	fmt "fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/provlabs/lease/finance"
	"github.com/provlabs/lease/position"
)

// MsgOpenLease opens a lease of Currency funded by the downpayment of the
// customer.
type MsgOpenLease struct {
	Customer    string   `json:"customer"`
	Currency    string   `json:"currency"`
	Downpayment sdk.Coin `json:"downpayment"`
	// MaxLTD caps the loan to the downpayment ratio.
	MaxLTD *finance.Percent `json:"max_ltd,omitempty"`
}

// ValidateBasic checks the addresses and currencies of the request.
func (m MsgOpenLease) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Customer); err != nil {
		return fmt.Errorf("invalid customer address: %q: %w", m.Customer, err)
	}
	if _, err := finance.CurrencyByTicker(m.Currency, finance.GroupLease); err != nil {
		return fmt.Errorf("invalid lease currency: %q: %w", m.Currency, err)
	}
	if err := m.Downpayment.Validate(); err != nil {
		return fmt.Errorf("invalid downpayment: %w", err)
	}
	if !m.Downpayment.IsPositive() {
		return errors.New("downpayment must be positive")
	}
	if _, err := finance.CurrencyByBankSymbol(m.Downpayment.Denom, finance.GroupPayment); err != nil {
		return fmt.Errorf("invalid downpayment currency: %w", err)
	}
	if m.MaxLTD != nil && *m.MaxLTD == finance.ZeroPercent {
		return errors.New("max ltd must be positive")
	}
	return nil
}

// ExecuteMsg is a request addressed to an existing lease.
type ExecuteMsg interface {
	ValidateBasic() error
	// Name identifies the request in logs and metrics.
	Name() string
}

// MsgRepay pays the loan with Payment, already sent to the lease.
type MsgRepay struct {
	Payment sdk.Coin `json:"payment"`
}

// MsgClosePosition closes Amount of the position, or all of it when nil.
type MsgClosePosition struct {
	Amount *sdk.Coin `json:"amount,omitempty"`
}

// MsgChangeClosePolicy updates the stop loss and take profit thresholds.
type MsgChangeClosePolicy struct {
	Change position.ClosePolicyChange `json:"change"`
}

// MsgPriceAlarm is sent by the oracle once a requested price is crossed.
type MsgPriceAlarm struct{}

// MsgTimeAlarm is sent once a requested time is reached.
type MsgTimeAlarm struct{}

// MsgDexCallback resumes a lease on a delivered dex response.
type MsgDexCallback struct{}

// MsgHeal retries a stuck swap.
type MsgHeal struct{}

func (m MsgRepay) ValidateBasic() error {
	if err := m.Payment.Validate(); err != nil {
		return fmt.Errorf("invalid payment: %w", err)
	}
	if !m.Payment.IsPositive() {
		return errors.New("payment must be positive")
	}
	return nil
}

func (m MsgClosePosition) ValidateBasic() error {
	if m.Amount == nil {
		return nil
	}
	if err := m.Amount.Validate(); err != nil {
		return fmt.Errorf("invalid close amount: %w", err)
	}
	if !m.Amount.IsPositive() {
		return errors.New("close amount must be positive")
	}
	return nil
}

func (m MsgChangeClosePolicy) ValidateBasic() error {
	if m.Change.StopLoss == nil && m.Change.TakeProfit == nil {
		return errors.New("empty close policy change")
	}
	return nil
}

func (MsgPriceAlarm) ValidateBasic() error  { return nil }
func (MsgTimeAlarm) ValidateBasic() error   { return nil }
func (MsgDexCallback) ValidateBasic() error { return nil }
func (MsgHeal) ValidateBasic() error        { return nil }

func (MsgRepay) Name() string             { return "repay" }
func (MsgClosePosition) Name() string     { return "close_position" }
func (MsgChangeClosePolicy) Name() string { return "change_close_policy" }
func (MsgPriceAlarm) Name() string        { return "price_alarm" }
func (MsgTimeAlarm) Name() string         { return "time_alarm" }
func (MsgDexCallback) Name() string       { return "dex_callback" }
func (MsgHeal) Name() string              { return "heal" }

// SudoMsg is a privileged callback of the IBC stack to a lease.
type SudoMsg interface {
	Name() string
}

// MsgIcaOpenAck reports the interchain account channel open.
type MsgIcaOpenAck struct {
	CounterpartyVersion string `json:"counterparty_version"`
}

// MsgIbcAck carries the acknowledgement of the last packet.
type MsgIbcAck struct {
	Acknowledgement []byte `json:"acknowledgement"`
}

// MsgIbcTimeout reports the last packet timed out.
type MsgIbcTimeout struct{}

func (MsgIcaOpenAck) Name() string { return "ica_open_ack" }
func (MsgIbcAck) Name() string     { return "ibc_ack" }
func (MsgIbcTimeout) Name() string { return "ibc_timeout" }

// MsgUpdateParams replaces the module params.
type MsgUpdateParams struct {
	Authority string `json:"authority"`
	Params    Params `json:"params"`
}

func (m MsgUpdateParams) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Authority); err != nil {
		return fmt.Errorf("invalid authority address: %q: %w", m.Authority, err)
	}
	return m.Params.Validate()
}
