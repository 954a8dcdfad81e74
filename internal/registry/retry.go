package registry

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/whirlpools/internal/metrics"
)

// RequestBuilder builds and signs a change request against the given record.
type RequestBuilder func(record *ConfigRecord) (*ChangeRequest, error)

// ChangeWithRetry reads the config at address, builds a request against it and submits it.
// When the commit loses a race it re-reads and rebuilds, with exponential backoff. Any other
// error stops the retries.
func (r *Registry) ChangeWithRetry(ctx context.Context, address solana.PublicKey, build RequestBuilder, opts ...backoff.RetryOption) (*ConfigRecord, error) {
	if len(opts) == 0 {
		opts = []backoff.RetryOption{
			backoff.WithBackOff(backoff.NewExponentialBackOff()),
			backoff.WithMaxTries(10),
		}
	}

	attempt := 0
	record, err := backoff.Retry(ctx, func() (*ConfigRecord, error) {
		if attempt > 0 {
			metrics.RegistryRetriesTotal.Inc()
			r.log.Warn("Config changed concurrently, retrying", "config", address, "attempt", attempt)
		}
		attempt++

		current, err := r.ReadConfig(ctx, address)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req, err := build(current)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to build change request: %w", err))
		}
		updated, err := r.ApplyChange(ctx, current, req)
		if err != nil {
			if IsRetryable(err) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return updated, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return record, nil
}
