package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/whirlpools/smartcontract/sdk/go/whirlpool"
)

// AuthorityTransition commits authorized changes. It does not check authorization; callers
// must run the request through an AccessGuard first.
type AuthorityTransition struct {
	store     Store
	programID solana.PublicKey
}

func NewAuthorityTransition(store Store, programID solana.PublicKey) *AuthorityTransition {
	return &AuthorityTransition{store: store, programID: programID}
}

// Apply replaces the field the request targets and commits the result against the version of
// record. If the stored config has moved past record.Version nothing is written and
// ErrStaleState is returned.
func (t *AuthorityTransition) Apply(ctx context.Context, record *ConfigRecord, req *ChangeRequest) (*ConfigRecord, error) {
	next, err := nextConfig(record.Config, req)
	if err != nil {
		return nil, err
	}
	data, err := encodeConfig(&next)
	if err != nil {
		return nil, err
	}

	account, err := t.store.CompareAndSwap(ctx, record.Address, record.Version, data)
	if err != nil {
		switch {
		case errors.Is(err, ErrStaleState):
			return nil, fmt.Errorf("%w: config %s is no longer at version %d", ErrStaleState, record.Address, record.Version)
		case errors.Is(err, ErrNotFound):
			return nil, errNotFound(record.Address)
		default:
			return nil, fmt.Errorf("failed to commit config %s: %w", record.Address, err)
		}
	}
	return decodeRecord(t.programID, account)
}

func nextConfig(config whirlpool.WhirlpoolsConfig, req *ChangeRequest) (whirlpool.WhirlpoolsConfig, error) {
	switch req.Change {
	case ChangeSetAuthority:
		next, err := config.WithAuthority(req.Authority, req.NewAuthority)
		if err != nil {
			return whirlpool.WhirlpoolsConfig{}, newProgramError(ErrInvalidArgument, NoCustomCode, "%v", err)
		}
		return next, nil
	case ChangeSetDefaultProtocolFeeRate:
		config.DefaultProtocolFeeRate = req.NewDefaultProtocolFeeRate
		return config, nil
	default:
		return whirlpool.WhirlpoolsConfig{}, newProgramError(ErrInvalidArgument, NoCustomCode, "unknown change kind %d", req.Change)
	}
}
