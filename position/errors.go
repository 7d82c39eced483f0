package position

import "cosmossdk.io/errors"

// Codespace is the error codespace of position checks.
const Codespace = "position"

var (
	ErrInvalidLiability    = errors.Register(Codespace, 2, "invalid liability")
	ErrInvalidSpec         = errors.Register(Codespace, 3, "invalid position spec")
	ErrPositionTooSmall    = errors.Register(Codespace, 4, "position too small")
	ErrTransactionTooSmall = errors.Register(Codespace, 5, "transaction too small")
	ErrInvalidClosePolicy  = errors.Register(Codespace, 6, "invalid close policy")
	ErrCloseAmount         = errors.Register(Codespace, 7, "invalid close amount")
)
