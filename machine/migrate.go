package machine

import (
	"encoding/json"
	"time"

	"github.com/provlabs/lease/dex"
	"github.com/provlabs/lease/finance"
	"github.com/provlabs/lease/loan"
	"github.com/provlabs/lease/position"
	"github.com/provlabs/lease/types"
)

// loanV5 accrued interest and margin from a single paid-by time and had no
// grace period.
type loanV5 struct {
	Principal      finance.Coin    `json:"principal"`
	AnnualInterest finance.Percent `json:"annual_interest"`
	AnnualMargin   finance.Percent `json:"annual_margin"`
	PaidBy         time.Time       `json:"paid_by"`
	DuePeriod      time.Duration   `json:"due_period"`
}

type leaseV5 struct {
	Addr       string            `json:"addr"`
	Customer   string            `json:"customer"`
	Position   position.Position `json:"position"`
	Loan       loanV5            `json:"loan"`
	Account    dex.Account       `json:"account"`
	Oracle     string            `json:"oracle"`
	TimeAlarms string            `json:"time_alarms"`
	Profit     string            `json:"profit"`
}

// leaseV8 predates close policies.
type leaseV8 struct {
	Addr       string            `json:"addr"`
	Customer   string            `json:"customer"`
	Position   position.Position `json:"position"`
	Loan       loan.Loan         `json:"loan"`
	Account    dex.Account       `json:"account"`
	Oracle     string            `json:"oracle"`
	TimeAlarms string            `json:"time_alarms"`
	Profit     string            `json:"profit"`
}

// migratable are the states a release could be rolled out on. A lease with
// an operation in flight is migrated once it settles.
var migratable = map[string]func(Lease) State{
	Active{}.Name():     func(l Lease) State { return Active{Lease: l} },
	Paid{}.Name():       func(l Lease) State { return Paid{Lease: l} },
	Closed{}.Name():     func(l Lease) State { return Closed{Lease: l} },
	Liquidated{}.Name(): func(l Lease) State { return Liquidated{Lease: l} },
}

// Migrate upgrades r to the current version. Fields added since are set from
// p. A current record is returned unchanged.
func Migrate(r Record, p types.Params) (Record, error) {
	if r.V == Version {
		return r, nil
	}
	build, ok := migratable[r.Tag]
	if !ok {
		return Record{}, types.ErrMigrationRequired.Wrapf("state %s at version %d cannot be migrated", r.Tag, r.V)
	}

	var l Lease
	switch r.V {
	case 5:
		var old struct {
			Lease leaseV5 `json:"lease"`
		}
		if err := json.Unmarshal(r.Payload, &old); err != nil {
			return Record{}, types.ErrCorruptedState.Wrapf("decoding v5 %s: %s", r.Tag, err)
		}
		l = fromV8(fromV5(old.Lease, p))
	case 8:
		var old struct {
			Lease leaseV8 `json:"lease"`
		}
		if err := json.Unmarshal(r.Payload, &old); err != nil {
			return Record{}, types.ErrCorruptedState.Wrapf("decoding v8 %s: %s", r.Tag, err)
		}
		l = fromV8(old.Lease)
	default:
		return Record{}, types.ErrMigrationRequired.Wrapf("no migration from version %d", r.V)
	}
	return Encode(build(l))
}

func fromV5(old leaseV5, p types.Params) leaseV8 {
	return leaseV8{
		Addr:     old.Addr,
		Customer: old.Customer,
		Position: old.Position,
		Loan: loan.Loan{
			Principal:      old.Loan.Principal,
			AnnualInterest: old.Loan.AnnualInterest,
			AnnualMargin:   old.Loan.AnnualMargin,
			InterestPaidBy: old.Loan.PaidBy,
			MarginPaidBy:   old.Loan.PaidBy,
			DuePeriod:      old.Loan.DuePeriod,
			GracePeriod:    p.GracePeriod,
		},
		Account:    old.Account,
		Oracle:     old.Oracle,
		TimeAlarms: old.TimeAlarms,
		Profit:     old.Profit,
	}
}

func fromV8(old leaseV8) Lease {
	return Lease{
		Addr:       old.Addr,
		Customer:   old.Customer,
		Position:   old.Position,
		Loan:       old.Loan,
		Account:    old.Account,
		Oracle:     old.Oracle,
		TimeAlarms: old.TimeAlarms,
		Profit:     old.Profit,
	}
}
