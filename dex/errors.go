package dex

import "cosmossdk.io/errors"

// Codespace is the error codespace of the dex connectivity.
const Codespace = "dex"

var (
	ErrInvalidConnection           = errors.Register(Codespace, 2, "invalid dex connection")
	ErrInvalidRegistrationResponse = errors.Register(Codespace, 3, "invalid ica registration response")
	ErrInvalidResponse             = errors.Register(Codespace, 4, "invalid dex response")
	ErrUnexpectedResponse          = errors.Register(Codespace, 5, "unexpected dex response")
	ErrQuery                       = errors.Register(Codespace, 6, "dex environment query failed")
)
