package types

import (
	"fmt"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/hashicorp/go-multierror"

	"github.com/provlabs/lease/dex"
	"github.com/provlabs/lease/finance"
	"github.com/provlabs/lease/position"
)

// Params configure newly opened leases. Open leases keep the values they
// were opened with.
type Params struct {
	// LeaseAdmin may heal any lease.
	LeaseAdmin string `json:"lease_admin"`
	// TimeAlarms is the only sender of time alarms.
	TimeAlarms string `json:"time_alarms"`
	// Oracle is the only sender of price alarms.
	Oracle string `json:"oracle"`
	// Profit receives the margin interest.
	Profit string `json:"profit"`

	PositionSpec position.Spec        `json:"position_spec"`
	Dex          dex.ConnectionParams `json:"dex"`
	AnnualMargin finance.Percent      `json:"annual_margin_interest"`
	DuePeriod    time.Duration        `json:"due_period"`
	GracePeriod  time.Duration        `json:"grace_period"`
	// PacketTimeout is the relative timeout of every packet a lease sends.
	PacketTimeout time.Duration `json:"packet_timeout"`
	// TransferInPoll is how often a lease checks for an incoming transfer.
	TransferInPoll time.Duration `json:"transfer_in_poll"`
	// MaxSlippage bounds the output of swaps selling the lease asset. Any
	// positive output is accepted when unset.
	MaxSlippage *finance.Percent `json:"max_slippage,omitempty"`
}

// DefaultParams returns the default module parameters.
func DefaultParams() Params {
	return Params{
		LeaseAdmin: authtypes.NewModuleAddress(GovModuleName).String(),
		TimeAlarms: authtypes.NewModuleAddress(ModuleName).String(),
		Oracle:     authtypes.NewModuleAddress("oracle").String(),
		Profit:     authtypes.NewModuleAddress("profit").String(),
		PositionSpec: position.Spec{
			Liability: position.Liability{
				Initial:       finance.FromPercent(60),
				Healthy:       finance.FromPercent(70),
				FirstWarning:  finance.FromPercent(72),
				SecondWarning: finance.FromPercent(75),
				ThirdWarning:  finance.FromPercent(78),
				Max:           finance.FromPercent(80),
				RecalcTime:    2 * time.Hour,
			},
			MinAsset:       finance.NewCoinU64(15_000_000, finance.Lpn()),
			MinTransaction: finance.NewCoinU64(1_000_000, finance.Lpn()),
		},
		Dex: dex.ConnectionParams{
			ConnectionID: "connection-0",
			TransferChannel: dex.Ics20Channel{
				LocalEndpoint:  "channel-0",
				RemoteEndpoint: "channel-783",
			},
		},
		AnnualMargin:   finance.FromPercent(4),
		DuePeriod:      30 * 24 * time.Hour,
		GracePeriod:    10 * 24 * time.Hour,
		PacketTimeout:  time.Hour,
		TransferInPoll: 5 * time.Second,
	}
}

// Validate checks every field and reports all failures at once.
func (p Params) Validate() error {
	var errs error
	for _, a := range []struct{ name, addr string }{
		{"lease admin", p.LeaseAdmin},
		{"time alarms", p.TimeAlarms},
		{"oracle", p.Oracle},
		{"profit", p.Profit},
	} {
		if _, err := sdk.AccAddressFromBech32(a.addr); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("invalid %s address %q: %w", a.name, a.addr, err))
		}
	}
	if err := p.PositionSpec.Validate(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := p.Dex.Validate(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if p.AnnualMargin > finance.Hundred {
		errs = multierror.Append(errs, fmt.Errorf("annual margin %s above 100%%", p.AnnualMargin))
	}
	if p.DuePeriod <= 0 || p.GracePeriod < 0 {
		errs = multierror.Append(errs, fmt.Errorf("due period %s and grace period %s", p.DuePeriod, p.GracePeriod))
	}
	if p.PacketTimeout <= 0 || p.TransferInPoll <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("packet timeout %s and transfer in poll %s must be positive", p.PacketTimeout, p.TransferInPoll))
	}
	if p.MaxSlippage != nil && (*p.MaxSlippage == finance.ZeroPercent || *p.MaxSlippage >= finance.Hundred) {
		errs = multierror.Append(errs, fmt.Errorf("max slippage %s must be within (0%%, 100%%)", *p.MaxSlippage))
	}
	if errs != nil {
		return ErrInvalidParams.Wrap(errs.Error())
	}
	return nil
}

// SellSlippage is the calculator of swaps selling the lease asset.
func (p Params) SellSlippage() dex.SlippageCalculator {
	if p.MaxSlippage == nil {
		return dex.AcceptAnyNonZero{}
	}
	return dex.MaxSlippage{Max: *p.MaxSlippage}
}
