package registry

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// Account is a stored record: the bytes of a config account, the program that owns it and
// the version of its last committed write.
type Account struct {
	Address solana.PublicKey
	Owner   solana.PublicKey
	Data    []byte

	// Version is 1 after create and grows by one with every committed write.
	Version uint64
}

// Store persists config accounts. Implementations must make CompareAndSwap linearizable:
// of two writes expecting the same version, at most one commits.
type Store interface {
	// Create stores a new account at version 1. It returns ErrAlreadyInitialized if the
	// address is in use.
	Create(ctx context.Context, account Account) (*Account, error)

	// Get returns the account at address, or ErrNotFound.
	Get(ctx context.Context, address solana.PublicKey) (*Account, error)

	// CompareAndSwap replaces the data of the account at address if its version is still
	// expectedVersion, and returns the account at its new version. It returns ErrStaleState
	// if the version moved on and ErrNotFound if the account does not exist.
	CompareAndSwap(ctx context.Context, address solana.PublicKey, expectedVersion uint64, data []byte) (*Account, error)

	// List returns every account owned by owner, ordered by address.
	List(ctx context.Context, owner solana.PublicKey) ([]Account, error)
}
