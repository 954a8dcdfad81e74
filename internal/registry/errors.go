package registry

import (
	"errors"
	"fmt"

	"github.com/malbeclabs/whirlpools/smartcontract/sdk/go/whirlpool"
)

var (
	ErrNotFound                    = errors.New("config not found")
	ErrAlreadyInitialized          = errors.New("config already initialized")
	ErrSignatureVerificationFailed = errors.New("signature verification failed")
	ErrInvalidAuthority            = errors.New("an address constraint was violated")
	ErrInvalidArgument             = errors.New("invalid argument")

	// ErrStaleState is returned when the config changed between the read a request was based on
	// and its commit. It is the only retryable error.
	ErrStaleState = errors.New("stale config state")
)

// NoCustomCode marks a ProgramError that the program reports as a builtin instruction error
// rather than a custom error code.
const NoCustomCode = -1

// ProgramError is a rejection carrying the error code the program reports for it.
type ProgramError struct {
	Code   int
	Err    error
	Detail string
}

func (e *ProgramError) Error() string {
	if e.Code == NoCustomCode {
		return fmt.Sprintf("%v: %s", e.Err, e.Detail)
	}
	return fmt.Sprintf("%v (0x%x): %s", e.Err, e.Code, e.Detail)
}

func (e *ProgramError) Unwrap() error {
	return e.Err
}

func newProgramError(err error, code int, format string, args ...any) *ProgramError {
	return &ProgramError{Code: code, Err: err, Detail: fmt.Sprintf(format, args...)}
}

func errNotFound(address fmt.Stringer) error {
	return newProgramError(ErrNotFound, whirlpool.InstructionErrorAccountNotInitialized, "no config at %s", address)
}

// IsRetryable reports whether a failed request may succeed when rebuilt against fresh state.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStaleState)
}
