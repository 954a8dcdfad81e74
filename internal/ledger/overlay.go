package ledger

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/whirlpools/internal/registry"
)

// overlay is a registry.Store that stages the writes of one transaction on top of a base
// store. Nothing reaches the base store until commit.
type overlay struct {
	base   registry.Store
	staged map[solana.PublicKey]*stagedAccount
	order  []solana.PublicKey
}

type stagedAccount struct {
	account     registry.Account
	created     bool
	baseVersion uint64
}

func newOverlay(base registry.Store) *overlay {
	return &overlay{
		base:   base,
		staged: make(map[solana.PublicKey]*stagedAccount),
	}
}

func (o *overlay) Create(ctx context.Context, account registry.Account) (*registry.Account, error) {
	if _, err := o.Get(ctx, account.Address); err == nil {
		return nil, registry.ErrAlreadyInitialized
	} else if !isNotFound(err) {
		return nil, err
	}
	account.Data = bytes.Clone(account.Data)
	account.Version = 1
	o.stage(&stagedAccount{account: account, created: true})
	return copyAccount(account), nil
}

func (o *overlay) Get(ctx context.Context, address solana.PublicKey) (*registry.Account, error) {
	if s, ok := o.staged[address]; ok {
		return copyAccount(s.account), nil
	}
	return o.base.Get(ctx, address)
}

func (o *overlay) CompareAndSwap(ctx context.Context, address solana.PublicKey, expectedVersion uint64, data []byte) (*registry.Account, error) {
	current, err := o.Get(ctx, address)
	if err != nil {
		return nil, err
	}
	if current.Version != expectedVersion {
		return nil, registry.ErrStaleState
	}

	s, ok := o.staged[address]
	if !ok {
		s = &stagedAccount{account: *current, baseVersion: current.Version}
		o.stage(s)
	}
	s.account.Data = bytes.Clone(data)
	s.account.Version++
	return copyAccount(s.account), nil
}

func (o *overlay) List(ctx context.Context, owner solana.PublicKey) ([]registry.Account, error) {
	accounts, err := o.base.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if s, ok := o.staged[accounts[i].Address]; ok {
			accounts[i] = *copyAccount(s.account)
		}
	}
	for _, address := range o.order {
		s := o.staged[address]
		if s.created && s.account.Owner.Equals(owner) {
			accounts = append(accounts, *copyAccount(s.account))
		}
	}
	slices.SortFunc(accounts, func(a, b registry.Account) int {
		return bytes.Compare(a.Address[:], b.Address[:])
	})
	return accounts, nil
}

func (o *overlay) stage(s *stagedAccount) {
	o.staged[s.account.Address] = s
	o.order = append(o.order, s.account.Address)
}

// commit writes the staged accounts to the base store in the order they were first touched.
// The ledger serializes commits, so the base versions read during the transaction still hold.
func (o *overlay) commit(ctx context.Context) error {
	for _, address := range o.order {
		s := o.staged[address]
		var err error
		if s.created {
			_, err = o.base.Create(ctx, s.account)
		} else {
			_, err = o.base.CompareAndSwap(ctx, address, s.baseVersion, s.account.Data)
		}
		if err != nil {
			return fmt.Errorf("failed to commit account %s: %w", address, err)
		}
	}
	return nil
}

func copyAccount(account registry.Account) *registry.Account {
	account.Data = bytes.Clone(account.Data)
	return &account
}
