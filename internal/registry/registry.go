package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/whirlpools/internal/metrics"
	"github.com/malbeclabs/whirlpools/smartcontract/sdk/go/whirlpool"
)

// Registry is the authority registry of the configs owned by one program. Reads go straight
// to the store; changes go through the access guard and then the authority transition.
type Registry struct {
	log        *slog.Logger
	store      Store
	programID  solana.PublicKey
	guard      *AccessGuard
	transition *AuthorityTransition
}

type Option func(*Registry)

// WithAccessGuard replaces the default guard.
func WithAccessGuard(guard *AccessGuard) Option {
	return func(r *Registry) {
		r.guard = guard
	}
}

func New(log *slog.Logger, store Store, programID solana.PublicKey, opts ...Option) *Registry {
	r := &Registry{
		log:        log,
		store:      store,
		programID:  programID,
		guard:      NewAccessGuard(),
		transition: NewAuthorityTransition(store, programID),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) ProgramID() solana.PublicKey {
	return r.programID
}

// InitializeRequest creates a config at Address owned by the registry's program.
type InitializeRequest struct {
	Address solana.PublicKey
	Config  whirlpool.WhirlpoolsConfig
}

// Initialize creates a config record. It fails with ErrAlreadyInitialized if the address
// already holds a record and with ErrInvalidArgument if an authority is the zero key or the
// default protocol fee rate is above the max.
func (r *Registry) Initialize(ctx context.Context, req InitializeRequest) (*ConfigRecord, error) {
	record, err := r.initialize(ctx, req)
	if err != nil {
		metrics.RegistryInitializationsTotal.WithLabelValues(metrics.ResultError).Inc()
		return nil, err
	}
	metrics.RegistryInitializationsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	r.log.Debug("--> Config initialized", "config", record.Address, "feeAuthority", record.Config.FeeAuthority)
	return record, nil
}

func (r *Registry) initialize(ctx context.Context, req InitializeRequest) (*ConfigRecord, error) {
	if req.Address.IsZero() {
		return nil, newProgramError(ErrInvalidArgument, NoCustomCode, "config address is required")
	}
	for _, kind := range whirlpool.AuthorityKinds {
		authority, _ := req.Config.Authority(kind)
		if authority.IsZero() {
			return nil, newProgramError(ErrInvalidArgument, NoCustomCode, "%s authority is required", kind)
		}
	}
	if req.Config.DefaultProtocolFeeRate > whirlpool.MaxProtocolFeeRate {
		return nil, newProgramError(ErrInvalidArgument, whirlpool.InstructionErrorProtocolFeeRateMaxExceeded,
			"default protocol fee rate %d exceeds max %d", req.Config.DefaultProtocolFeeRate, whirlpool.MaxProtocolFeeRate)
	}

	data, err := encodeConfig(&req.Config)
	if err != nil {
		return nil, err
	}
	account, err := r.store.Create(ctx, Account{
		Address: req.Address,
		Owner:   r.programID,
		Data:    data,
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyInitialized) {
			return nil, newProgramError(ErrAlreadyInitialized, whirlpool.InstructionErrorAccountAlreadyInUse,
				"account %s already in use", req.Address)
		}
		return nil, fmt.Errorf("failed to create config %s: %w", req.Address, err)
	}
	return decodeRecord(r.programID, account)
}

// ReadConfig returns the config at address, or ErrNotFound.
func (r *Registry) ReadConfig(ctx context.Context, address solana.PublicKey) (*ConfigRecord, error) {
	account, err := r.store.Get(ctx, address)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, errNotFound(address)
		}
		return nil, fmt.Errorf("failed to read config %s: %w", address, err)
	}
	return decodeRecord(r.programID, account)
}

// ListConfigs returns every config owned by the registry's program. Accounts that do not
// decode as a config are skipped.
func (r *Registry) ListConfigs(ctx context.Context) ([]ConfigRecord, error) {
	accounts, err := r.store.List(ctx, r.programID)
	if err != nil {
		return nil, fmt.Errorf("failed to list configs: %w", err)
	}
	records := make([]ConfigRecord, 0, len(accounts))
	for i := range accounts {
		record, err := decodeRecord(r.programID, &accounts[i])
		if err != nil {
			r.log.Warn("failed to decode config account", "address", accounts[i].Address, "error", err)
			continue
		}
		records = append(records, *record)
	}
	return records, nil
}

// RequestAuthorityChange authorizes and commits a change request, returning the updated
// record. On any failure the stored config is left as it was.
func (r *Registry) RequestAuthorityChange(ctx context.Context, req *ChangeRequest) (*ConfigRecord, error) {
	record, err := r.ReadConfig(ctx, req.Config)
	if err != nil {
		r.reject(req, err)
		return nil, err
	}
	return r.ApplyChange(ctx, record, req)
}

// ApplyChange is RequestAuthorityChange against a record the caller already read. It lets a
// caller stage several changes on one read.
func (r *Registry) ApplyChange(ctx context.Context, record *ConfigRecord, req *ChangeRequest) (*ConfigRecord, error) {
	if req.ExpectedVersion != 0 && req.ExpectedVersion != record.Version {
		err := fmt.Errorf("%w: request expects version %d of config %s, current is %d",
			ErrStaleState, req.ExpectedVersion, record.Address, record.Version)
		r.reject(req, err)
		return nil, err
	}

	if err := r.guard.Authorize(record, req); err != nil {
		r.reject(req, err)
		return nil, err
	}

	updated, err := r.transition.Apply(ctx, record, req)
	if err != nil {
		r.reject(req, err)
		metrics.RegistryTransitionsTotal.WithLabelValues(req.label(), metrics.ResultError).Inc()
		return nil, err
	}

	metrics.RegistryTransitionsTotal.WithLabelValues(req.label(), metrics.ResultSuccess).Inc()
	r.log.Debug("--> Config changed", "config", updated.Address, "change", req.label(), "signer", req.Signer, "version", updated.Version)
	return updated, nil
}

func (r *Registry) reject(req *ChangeRequest, err error) {
	reason := rejectionReason(err)
	metrics.RegistryRejectionsTotal.WithLabelValues(req.label(), reason).Inc()
	r.log.Debug("--> Change rejected", "config", req.Config, "change", req.label(), "signer", req.Signer, "reason", reason, "error", err)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrSignatureVerificationFailed):
		return metrics.RejectionReasonSignature
	case errors.Is(err, ErrInvalidAuthority):
		return metrics.RejectionReasonAuthority
	case errors.Is(err, ErrInvalidArgument):
		return metrics.RejectionReasonArgument
	case errors.Is(err, ErrStaleState):
		return metrics.RejectionReasonStale
	case errors.Is(err, ErrNotFound):
		return metrics.RejectionReasonNotFound
	default:
		return metrics.ResultError
	}
}
