package finance

import "cosmossdk.io/errors"

// Codespace is the error codespace of the monetary primitives.
const Codespace = "finance"

var (
	ErrUnknownCurrency = errors.Register(Codespace, 2, "unknown currency")
	ErrCurrencyGroup   = errors.Register(Codespace, 3, "currency not in the expected group")
	ErrInvalidAmount   = errors.Register(Codespace, 4, "invalid amount")
	ErrInvalidPrice    = errors.Register(Codespace, 5, "invalid price")
	ErrInvalidPercent  = errors.Register(Codespace, 6, "invalid percent")
)
