// Package registrytest holds behavior tests shared by every registry.Store implementation.
package registrytest

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/whirlpools/internal/registry"
	"github.com/stretchr/testify/require"
)

// RunStoreTests runs the Store contract against stores returned by newStore. Each subtest gets
// its own store.
func RunStoreTests(t *testing.T, newStore func(t *testing.T) registry.Store) {
	t.Run("create and get", func(t *testing.T) {
		ctx := t.Context()
		store := newStore(t)
		owner := solana.NewWallet().PublicKey()
		address := solana.NewWallet().PublicKey()

		created, err := store.Create(ctx, registry.Account{Address: address, Owner: owner, Data: []byte{1, 2, 3}})
		require.NoError(t, err)
		require.Equal(t, uint64(1), created.Version)

		got, err := store.Get(ctx, address)
		require.NoError(t, err)
		require.Equal(t, address, got.Address)
		require.Equal(t, owner, got.Owner)
		require.Equal(t, []byte{1, 2, 3}, got.Data)
		require.Equal(t, uint64(1), got.Version)
	})

	t.Run("create twice", func(t *testing.T) {
		ctx := t.Context()
		store := newStore(t)
		address := solana.NewWallet().PublicKey()

		_, err := store.Create(ctx, registry.Account{Address: address, Data: []byte{1}})
		require.NoError(t, err)
		_, err = store.Create(ctx, registry.Account{Address: address, Data: []byte{2}})
		require.ErrorIs(t, err, registry.ErrAlreadyInitialized)

		got, err := store.Get(ctx, address)
		require.NoError(t, err)
		require.Equal(t, []byte{1}, got.Data)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := newStore(t).Get(t.Context(), solana.NewWallet().PublicKey())
		require.ErrorIs(t, err, registry.ErrNotFound)
	})

	t.Run("compare and swap", func(t *testing.T) {
		ctx := t.Context()
		store := newStore(t)
		address := solana.NewWallet().PublicKey()

		_, err := store.Create(ctx, registry.Account{Address: address, Data: []byte{1}})
		require.NoError(t, err)

		updated, err := store.CompareAndSwap(ctx, address, 1, []byte{2})
		require.NoError(t, err)
		require.Equal(t, uint64(2), updated.Version)
		require.Equal(t, []byte{2}, updated.Data)

		_, err = store.CompareAndSwap(ctx, address, 1, []byte{3})
		require.ErrorIs(t, err, registry.ErrStaleState)

		got, err := store.Get(ctx, address)
		require.NoError(t, err)
		require.Equal(t, []byte{2}, got.Data)
		require.Equal(t, uint64(2), got.Version)
	})

	t.Run("compare and swap missing", func(t *testing.T) {
		_, err := newStore(t).CompareAndSwap(t.Context(), solana.NewWallet().PublicKey(), 1, []byte{1})
		require.ErrorIs(t, err, registry.ErrNotFound)
	})

	t.Run("concurrent compare and swap", func(t *testing.T) {
		ctx := t.Context()
		store := newStore(t)
		address := solana.NewWallet().PublicKey()

		_, err := store.Create(ctx, registry.Account{Address: address, Data: []byte{0}})
		require.NoError(t, err)

		const writers = 16
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.CompareAndSwap(context.Background(), address, 1, []byte{byte(i + 1)})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var committed, stale int
		for err := range errs {
			switch {
			case err == nil:
				committed++
			default:
				require.ErrorIs(t, err, registry.ErrStaleState)
				stale++
			}
		}
		require.Equal(t, 1, committed)
		require.Equal(t, writers-1, stale)

		got, err := store.Get(ctx, address)
		require.NoError(t, err)
		require.Equal(t, uint64(2), got.Version)
	})

	t.Run("list by owner", func(t *testing.T) {
		ctx := t.Context()
		store := newStore(t)
		owner := solana.NewWallet().PublicKey()
		other := solana.NewWallet().PublicKey()

		want := make([]solana.PublicKey, 0, 3)
		for range 3 {
			address := solana.NewWallet().PublicKey()
			want = append(want, address)
			_, err := store.Create(ctx, registry.Account{Address: address, Owner: owner, Data: []byte{1}})
			require.NoError(t, err)
		}
		_, err := store.Create(ctx, registry.Account{Address: solana.NewWallet().PublicKey(), Owner: other, Data: []byte{1}})
		require.NoError(t, err)

		accounts, err := store.List(ctx, owner)
		require.NoError(t, err)
		require.Len(t, accounts, 3)

		got := make([]solana.PublicKey, 0, len(accounts))
		for i, account := range accounts {
			got = append(got, account.Address)
			if i > 0 {
				require.Negative(t, bytes.Compare(accounts[i-1].Address[:], account.Address[:]))
			}
		}
		require.ElementsMatch(t, want, got)
	})
}
