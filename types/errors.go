package types

import "cosmossdk.io/errors"

var (
	ErrInvalidRequest       = errors.Register(ModuleName, 2, "invalid request")
	ErrLeaseNotFound        = errors.Register(ModuleName, 3, "lease not found")
	ErrUnauthorized         = errors.Register(ModuleName, 4, "unauthorized")
	ErrUnsupportedOperation = errors.Register(ModuleName, 5, "operation not supported in the current state")
	ErrMigrationRequired    = errors.Register(ModuleName, 6, "lease state requires migration")
	ErrCorruptedState       = errors.Register(ModuleName, 7, "corrupted lease state")
	ErrInvalidParams        = errors.Register(ModuleName, 8, "invalid params")
	ErrInvalidGenesis       = errors.Register(ModuleName, 9, "invalid genesis")
	ErrInvalidLoan          = errors.Register(ModuleName, 10, "invalid loan response")
	ErrPaymentCurrency      = errors.Register(ModuleName, 11, "unsupported payment currency")
)

// CriticalError wraps a failure that leaves a lease unable to progress on its
// own. It includes a stable, hard-coded Reason string that is emitted in an
// event, decoupled from SDK or underlying error text.
type CriticalError struct {
	// Reason is a stable, hard-coded description of what failed.
	Reason string
	// Err is the underlying error, which may include deeper SDK or keeper details.
	Err error
}

// Error implements the error interface by returning the underlying error message.
func (e *CriticalError) Error() string { return e.Err.Error() }

// Unwrap allows errors.Unwrap and errors.Is/As to inspect the underlying error.
func (e *CriticalError) Unwrap() error { return e.Err }

// CriticalErr constructs a new CriticalError with the given reason string and underlying error.
func CriticalErr(reason string, err error) error {
	return &CriticalError{Reason: reason, Err: err}
}
