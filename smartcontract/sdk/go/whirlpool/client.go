package whirlpool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

type Client struct {
	log           *slog.Logger
	rpc           RPCClient
	executor      *executor
	skipPreflight bool
}

type Option func(*Client)

// WithSkipPreflight sends transactions without simulation. Program errors are then read from
// the finalized transaction metadata instead of the send response.
func WithSkipPreflight(skip bool) Option {
	return func(c *Client) {
		c.skipPreflight = skip
	}
}

func WithExecutorOptions(opts ...ExecutorOption) Option {
	return func(c *Client) {
		for _, opt := range opts {
			opt(c.executor)
		}
	}
}

func New(log *slog.Logger, rpc RPCClient, signer *solana.PrivateKey, programID solana.PublicKey, opts ...Option) *Client {
	c := &Client{
		log:      log,
		rpc:      rpc,
		executor: NewExecutor(log, rpc, signer, programID),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ProgramID() solana.PublicKey {
	if c.executor == nil {
		return solana.PublicKey{}
	}
	return c.executor.programID
}

func (c *Client) Signer() *solana.PrivateKey {
	if c.executor == nil {
		return nil
	}
	return c.executor.signer
}

// GetConfig fetches the WhirlpoolsConfig account at the given address.
func (c *Client) GetConfig(ctx context.Context, address solana.PublicKey) (*WhirlpoolsConfig, error) {
	account, err := c.rpc.GetAccountInfo(ctx, address)
	if err != nil {
		if errors.Is(err, solanarpc.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account data: %w", err)
	}
	if account == nil || account.Value == nil {
		return nil, ErrAccountNotFound
	}

	config, err := DeserializeWhirlpoolsConfigAccount(c.executor.programID, account.Value.Owner, account.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize whirlpools config: %w", err)
	}
	return config, nil
}

// ConfigAccount is a WhirlpoolsConfig together with its address.
type ConfigAccount struct {
	Address solana.PublicKey
	Config  WhirlpoolsConfig
}

// GetConfigs fetches all WhirlpoolsConfig accounts owned by the program.
func (c *Client) GetConfigs(ctx context.Context) ([]ConfigAccount, error) {
	opts := &solanarpc.GetProgramAccountsOpts{
		Filters: []solanarpc.RPCFilter{
			{DataSize: WhirlpoolsConfigSize},
			{
				Memcmp: &solanarpc.RPCFilterMemcmp{
					Offset: 0,
					Bytes:  solana.Base58(WhirlpoolsConfigDiscriminator[:]),
				},
			},
		},
	}

	accounts, err := c.rpc.GetProgramAccountsWithOpts(ctx, c.executor.programID, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get program accounts: %w", err)
	}

	configs := make([]ConfigAccount, 0, len(accounts))
	for _, acct := range accounts {
		if acct == nil || acct.Account == nil {
			continue
		}
		config, err := DeserializeWhirlpoolsConfig(acct.Account.Data.GetBinary())
		if err != nil {
			c.log.Warn("failed to deserialize whirlpools config account", "pubkey", acct.Pubkey, "error", err)
			continue
		}
		configs = append(configs, ConfigAccount{Address: acct.Pubkey, Config: *config})
	}
	return configs, nil
}

// InitializeConfig creates a WhirlpoolsConfig account. The config keypair signs the creation of
// its own account; the client signer pays for it unless another funder is set.
func (c *Client) InitializeConfig(
	ctx context.Context,
	configKey solana.PrivateKey,
	config InitializeConfigInstructionConfig,
) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	config.Config = configKey.PublicKey()
	if config.Funder.IsZero() && c.executor.signer != nil {
		config.Funder = c.executor.signer.PublicKey()
	}

	instruction, err := BuildInitializeConfigInstruction(c.executor.programID, config)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	return c.execute(ctx, "initialize config", instruction, []solana.PrivateKey{configKey})
}

// SetAuthority rotates one authority of a config. The current authority must be among the
// client signer and signers, otherwise ErrSignatureVerificationFailed is returned.
func (c *Client) SetAuthority(
	ctx context.Context,
	config SetAuthorityInstructionConfig,
	signers ...solana.PrivateKey,
) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	instruction, err := BuildSetAuthorityInstruction(c.executor.programID, config)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	return c.execute(ctx, fmt.Sprintf("set %s authority", config.Kind), instruction, signers)
}

// SetDefaultProtocolFeeRate updates the default protocol fee rate, signed by the fee authority.
func (c *Client) SetDefaultProtocolFeeRate(
	ctx context.Context,
	config SetDefaultProtocolFeeRateInstructionConfig,
	signers ...solana.PrivateKey,
) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	instruction, err := BuildSetDefaultProtocolFeeRateInstruction(c.executor.programID, config)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	return c.execute(ctx, "set default protocol fee rate", instruction, signers)
}

// AuthorityChange requests that Authority hands the Kind authority of Config over to
// NewAuthority.
type AuthorityChange struct {
	Config       solana.PublicKey
	Kind         AuthorityKind
	Authority    solana.PublicKey
	NewAuthority solana.PublicKey

	// Signers hold the key of Authority when it is not the client signer.
	Signers []solana.PrivateKey
}

// RequestAuthorityChange rotates an authority and returns the config as finalized after the
// change.
func (c *Client) RequestAuthorityChange(ctx context.Context, change AuthorityChange) (*WhirlpoolsConfig, error) {
	_, _, err := c.SetAuthority(ctx, SetAuthorityInstructionConfig{
		Config:           change.Config,
		Kind:             change.Kind,
		CurrentAuthority: change.Authority,
		NewAuthority:     change.NewAuthority,
	}, change.Signers...)
	if err != nil {
		return nil, err
	}

	config, err := c.GetConfig(ctx, change.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to read config after change: %w", err)
	}
	c.log.Debug("--> Authority changed", "config", change.Config, "kind", change.Kind, "authority", change.NewAuthority)
	return config, nil
}

func (c *Client) execute(ctx context.Context, op string, instruction solana.Instruction, signers []solana.PrivateKey) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	sig, res, err := c.executor.ExecuteTransaction(ctx, instruction, &ExecuteTransactionOptions{
		SkipPreflight: c.skipPreflight,
		Signers:       signers,
	})
	if err != nil {
		return solana.Signature{}, nil, programError(op, err)
	}

	if res.Meta.Err != nil {
		logs := make([]any, 0, len(res.Meta.LogMessages))
		for _, l := range res.Meta.LogMessages {
			logs = append(logs, l)
		}
		if sentinel := parseTransactionError(res.Meta.Err, logs); sentinel != nil {
			return sig, res, fmt.Errorf("failed to %s: %w: transaction %s failed: %v", op, sentinel, sig, res.Meta.Err)
		}
		return sig, res, fmt.Errorf("failed to %s: transaction %s failed: %v", op, sig, res.Meta.Err)
	}
	return sig, res, nil
}
