// Package pgstore is a registry.Store backed by PostgreSQL.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/malbeclabs/whirlpools/internal/registry"
)

// Store keeps one row per account. Writes are optimistic: an update only applies while the
// row still carries the version the caller read.
type Store struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

// Connect opens a connection pool for cfg and checks it with a ping.
func Connect(ctx context.Context, log *slog.Logger, cfg *Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	log.Debug("Connecting to PostgreSQL", "host", cfg.Host, "port", cfg.Port, "database", cfg.Database, "username", cfg.Username)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return pool, nil
}

// New returns a Store on pool after creating its table if needed.
func New(ctx context.Context, log *slog.Logger, pool *pgxpool.Pool) (*Store, error) {
	s := &Store{log: log, pool: pool}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS whirlpool_accounts (
			address BYTEA PRIMARY KEY,
			owner BYTEA NOT NULL,
			data BYTEA NOT NULL,
			version BIGINT NOT NULL CHECK (version > 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create whirlpool_accounts table: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_whirlpool_accounts_owner
		ON whirlpool_accounts (owner, address)
	`)
	if err != nil {
		return fmt.Errorf("failed to create whirlpool_accounts index: %w", err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, account registry.Account) (*registry.Account, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO whirlpool_accounts (address, owner, data, version)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (address) DO NOTHING
		RETURNING address, owner, data, version
	`, account.Address[:], account.Owner[:], account.Data)

	created, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, registry.ErrAlreadyInitialized
		}
		return nil, fmt.Errorf("failed to insert account %s: %w", account.Address, err)
	}
	return created, nil
}

func (s *Store) Get(ctx context.Context, address solana.PublicKey) (*registry.Account, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT address, owner, data, version
		FROM whirlpool_accounts
		WHERE address = $1
	`, address[:])

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, registry.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account %s: %w", address, err)
	}
	return account, nil
}

func (s *Store) CompareAndSwap(ctx context.Context, address solana.PublicKey, expectedVersion uint64, data []byte) (*registry.Account, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE whirlpool_accounts
		SET data = $3, version = version + 1, updated_at = NOW()
		WHERE address = $1 AND version = $2
		RETURNING address, owner, data, version
	`, address[:], int64(expectedVersion), data)

	account, err := scanAccount(row)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to update account %s: %w", address, err)
	}

	// Nothing matched: the row is either gone or at another version.
	if _, err := s.Get(ctx, address); err != nil {
		return nil, err
	}
	s.log.Debug("Optimistic update lost", "address", address, "expectedVersion", expectedVersion)
	return nil, registry.ErrStaleState
}

func (s *Store) List(ctx context.Context, owner solana.PublicKey) ([]registry.Account, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT address, owner, data, version
		FROM whirlpool_accounts
		WHERE owner = $1
		ORDER BY address
	`, owner[:])
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []registry.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func scanAccount(row pgx.Row) (*registry.Account, error) {
	var (
		address, owner, data []byte
		version              int64
	)
	if err := row.Scan(&address, &owner, &data, &version); err != nil {
		return nil, err
	}
	if len(address) != solana.PublicKeyLength || len(owner) != solana.PublicKeyLength {
		return nil, fmt.Errorf("invalid key length in row")
	}
	return &registry.Account{
		Address: solana.PublicKeyFromBytes(address),
		Owner:   solana.PublicKeyFromBytes(owner),
		Data:    data,
		Version: uint64(version),
	}, nil
}
