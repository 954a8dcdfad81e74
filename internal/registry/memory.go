package registry

import (
	"bytes"
	"context"
	"slices"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// MemoryStore is a Store backed by a map.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[solana.PublicKey]Account
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[solana.PublicKey]Account),
	}
}

func (s *MemoryStore) Create(ctx context.Context, account Account) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.Address]; ok {
		return nil, ErrAlreadyInitialized
	}
	account.Data = bytes.Clone(account.Data)
	account.Version = 1
	s.accounts[account.Address] = account
	return cloneAccount(account), nil
}

func (s *MemoryStore) Get(ctx context.Context, address solana.PublicKey) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[address]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAccount(account), nil
}

func (s *MemoryStore) CompareAndSwap(ctx context.Context, address solana.PublicKey, expectedVersion uint64, data []byte) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[address]
	if !ok {
		return nil, ErrNotFound
	}
	if account.Version != expectedVersion {
		return nil, ErrStaleState
	}
	account.Data = bytes.Clone(data)
	account.Version++
	s.accounts[address] = account
	return cloneAccount(account), nil
}

func (s *MemoryStore) List(ctx context.Context, owner solana.PublicKey) ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		if account.Owner.Equals(owner) {
			accounts = append(accounts, *cloneAccount(account))
		}
	}
	slices.SortFunc(accounts, func(a, b Account) int {
		return bytes.Compare(a.Address[:], b.Address[:])
	})
	return accounts, nil
}

func cloneAccount(account Account) *Account {
	account.Data = bytes.Clone(account.Data)
	return &account
}
