package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/whirlpools/internal/registry"
	"github.com/malbeclabs/whirlpools/smartcontract/sdk/go/whirlpool"
	"github.com/near/borsh-go"
)

var anchorErrorMessages = map[int]string{
	whirlpool.InstructionErrorConstraintAddress:            "ConstraintAddress. Error Number: 2012. Error Message: An address constraint was violated",
	whirlpool.InstructionErrorAccountDiscriminatorMismatch: "AccountDiscriminatorMismatch. Error Number: 3002. Error Message: 8 byte discriminator did not match what was expected",
	whirlpool.InstructionErrorAccountNotSigner:             "AccountNotSigner. Error Number: 3010. Error Message: The given account did not sign",
	whirlpool.InstructionErrorAccountNotInitialized:        "AccountNotInitialized. Error Number: 3012. Error Message: The program expected this account to be already initialized",
	whirlpool.InstructionErrorProtocolFeeRateMaxExceeded:   "ProtocolFeeRateMaxExceeded. Error Number: 6029. Error Message: Protocol fee rate exceeds max",
	instructionErrorFallbackNotFound:                       "InstructionFallbackNotFound. Error Number: 101. Error Message: Fallback functions are not supported",
}

// invocation is one instruction of a transaction being executed.
type invocation struct {
	index    int
	tx       *solana.Transaction
	message  []byte
	accounts []uint16
	data     []byte
	logs     []string
}

func (inv *invocation) account(i int) (solana.PublicKey, bool, error) {
	if i >= len(inv.accounts) {
		return solana.PublicKey{}, false, fmt.Errorf("missing account %d", i)
	}
	idx := int(inv.accounts[i])
	if idx >= len(inv.tx.Message.AccountKeys) {
		return solana.PublicKey{}, false, fmt.Errorf("account index %d out of range", idx)
	}
	isSigner := idx < int(inv.tx.Message.Header.NumRequiredSignatures)
	return inv.tx.Message.AccountKeys[idx], isSigner, nil
}

// signature returns the transaction signature of a signer account.
func (inv *invocation) signature(i int) solana.Signature {
	idx := int(inv.accounts[i])
	if idx >= len(inv.tx.Signatures) {
		return solana.Signature{}
	}
	return inv.tx.Signatures[idx]
}

func (inv *invocation) log(format string, args ...any) {
	inv.logs = append(inv.logs, fmt.Sprintf(format, args...))
}

// execute runs one Whirlpool instruction against reg. A non-nil failure rejects the
// transaction; an error means the ledger itself could not process it.
func (l *Ledger) execute(ctx context.Context, reg *registry.Registry, inv *invocation) (*instructionFailure, error) {
	inv.log("Program %s invoke [1]", l.programID)

	failure, err := l.dispatch(ctx, reg, inv)
	if err != nil {
		return nil, err
	}
	if failure != nil {
		failure.index = inv.index
		if failure.custom != nil {
			if msg, ok := anchorErrorMessages[*failure.custom]; ok {
				inv.log("Program log: AnchorError occurred. Error Code: %s.", msg)
			}
		}
		inv.log("Program %s failed: %s", l.programID, failure)
		return failure, nil
	}
	inv.log("Program %s success", l.programID)
	return nil, nil
}

func (l *Ledger) dispatch(ctx context.Context, reg *registry.Registry, inv *invocation) (*instructionFailure, error) {
	if len(inv.data) < 8 {
		return customFailure(instructionErrorFallbackNotFound, "instruction data too short"), nil
	}
	var discriminator whirlpool.InstructionDiscriminator
	copy(discriminator[:], inv.data[:8])

	switch discriminator {
	case whirlpool.InitializeConfigDiscriminator:
		inv.log("Program log: Instruction: InitializeConfig")
		return l.initializeConfig(ctx, reg, inv)
	case whirlpool.SetFeeAuthorityDiscriminator:
		inv.log("Program log: Instruction: SetFeeAuthority")
		return l.setAuthority(ctx, reg, inv, whirlpool.AuthorityKindFee)
	case whirlpool.SetCollectProtocolFeesAuthorityDiscriminator:
		inv.log("Program log: Instruction: SetCollectProtocolFeesAuthority")
		return l.setAuthority(ctx, reg, inv, whirlpool.AuthorityKindCollectProtocolFees)
	case whirlpool.SetRewardEmissionsSuperAuthorityDiscriminator:
		inv.log("Program log: Instruction: SetRewardEmissionsSuperAuthority")
		return l.setAuthority(ctx, reg, inv, whirlpool.AuthorityKindRewardEmissionsSuper)
	case whirlpool.SetDefaultProtocolFeeRateDiscriminator:
		inv.log("Program log: Instruction: SetDefaultProtocolFeeRate")
		return l.setDefaultProtocolFeeRate(ctx, reg, inv)
	default:
		return customFailure(instructionErrorFallbackNotFound, "unknown instruction"), nil
	}
}

func (l *Ledger) initializeConfig(ctx context.Context, reg *registry.Registry, inv *invocation) (*instructionFailure, error) {
	var args whirlpool.InitializeConfigArgs
	if err := borsh.Deserialize(&args, inv.data); err != nil {
		return builtinFailure("InvalidInstructionData", err.Error()), nil
	}

	config, configSigned, err := inv.account(0)
	if err != nil {
		return builtinFailure("NotEnoughAccountKeys", err.Error()), nil
	}
	_, funderSigned, err := inv.account(1)
	if err != nil {
		return builtinFailure("NotEnoughAccountKeys", err.Error()), nil
	}
	if !configSigned || !funderSigned {
		return customFailure(whirlpool.InstructionErrorAccountNotSigner, "config and funder must sign"), nil
	}

	_, err = reg.Initialize(ctx, registry.InitializeRequest{
		Address: config,
		Config: whirlpool.WhirlpoolsConfig{
			FeeAuthority:                  args.FeeAuthority,
			CollectProtocolFeesAuthority:  args.CollectProtocolFeesAuthority,
			RewardEmissionsSuperAuthority: args.RewardEmissionsSuperAuthority,
			DefaultProtocolFeeRate:        args.DefaultProtocolFeeRate,
		},
	})
	if errors.Is(err, registry.ErrAlreadyInitialized) {
		inv.log("Program %s invoke [2]", solana.SystemProgramID)
		inv.log("Allocate: account Address { address: %s, base: None } already in use", config)
		inv.log("Program %s failed: custom program error: 0x0", solana.SystemProgramID)
	}
	return l.registryResult(err)
}

func (l *Ledger) setAuthority(ctx context.Context, reg *registry.Registry, inv *invocation, kind whirlpool.AuthorityKind) (*instructionFailure, error) {
	config, _, err := inv.account(0)
	if err != nil {
		return builtinFailure("NotEnoughAccountKeys", err.Error()), nil
	}
	authority, authoritySigned, err := inv.account(1)
	if err != nil {
		return builtinFailure("NotEnoughAccountKeys", err.Error()), nil
	}
	newAuthority, _, err := inv.account(2)
	if err != nil {
		return builtinFailure("NotEnoughAccountKeys", err.Error()), nil
	}

	record, err := reg.ReadConfig(ctx, config)
	if err != nil {
		return l.registryResult(err)
	}
	if !authoritySigned {
		return customFailure(whirlpool.InstructionErrorAccountNotSigner, fmt.Sprintf("%s did not sign", authority)), nil
	}

	_, err = reg.ApplyChange(ctx, record, &registry.ChangeRequest{
		Config:          config,
		Change:          registry.ChangeSetAuthority,
		Authority:       kind,
		NewAuthority:    newAuthority,
		ExpectedVersion: record.Version,
		Signer:          authority,
		Signature:       inv.signature(1),
	})
	return l.registryResult(err)
}

func (l *Ledger) setDefaultProtocolFeeRate(ctx context.Context, reg *registry.Registry, inv *invocation) (*instructionFailure, error) {
	var args whirlpool.SetDefaultProtocolFeeRateArgs
	if err := borsh.Deserialize(&args, inv.data); err != nil {
		return builtinFailure("InvalidInstructionData", err.Error()), nil
	}

	config, _, err := inv.account(0)
	if err != nil {
		return builtinFailure("NotEnoughAccountKeys", err.Error()), nil
	}
	authority, authoritySigned, err := inv.account(1)
	if err != nil {
		return builtinFailure("NotEnoughAccountKeys", err.Error()), nil
	}

	record, err := reg.ReadConfig(ctx, config)
	if err != nil {
		return l.registryResult(err)
	}
	if !authoritySigned {
		return customFailure(whirlpool.InstructionErrorAccountNotSigner, fmt.Sprintf("%s did not sign", authority)), nil
	}

	_, err = reg.ApplyChange(ctx, record, &registry.ChangeRequest{
		Config:                    config,
		Change:                    registry.ChangeSetDefaultProtocolFeeRate,
		NewDefaultProtocolFeeRate: args.DefaultProtocolFeeRate,
		ExpectedVersion:           record.Version,
		Signer:                    authority,
		Signature:                 inv.signature(1),
	})
	return l.registryResult(err)
}

// transactionSignatureCheck proves the signer of a change by the transaction carrying it. The
// signer must have signed the transaction message, and the instruction being executed must be
// exactly the one encoding the change.
func (l *Ledger) transactionSignatureCheck(inv *invocation) registry.Validator {
	return func(_ *registry.ConfigRecord, req *registry.ChangeRequest) error {
		if !inv.signedBy(req.Signer, req.Signature) {
			return fmt.Errorf("%w: transaction not signed by %s", registry.ErrSignatureVerificationFailed, req.Signer)
		}
		want, err := changeInstruction(l.programID, req)
		if err != nil {
			return fmt.Errorf("%w: %v", registry.ErrSignatureVerificationFailed, err)
		}
		if !inv.carries(want) {
			return fmt.Errorf("%w: instruction %d does not encode the requested change", registry.ErrSignatureVerificationFailed, inv.index)
		}
		return nil
	}
}

// signedBy reports whether key is a required signer of the transaction and sig is its valid
// signature over the message.
func (inv *invocation) signedBy(key solana.PublicKey, sig solana.Signature) bool {
	required := int(inv.tx.Message.Header.NumRequiredSignatures)
	for i := 0; i < required && i < len(inv.tx.Message.AccountKeys) && i < len(inv.tx.Signatures); i++ {
		if inv.tx.Message.AccountKeys[i].Equals(key) {
			return inv.tx.Signatures[i] == sig && sig.Verify(key, inv.message)
		}
	}
	return false
}

// carries reports whether the executed instruction has exactly the accounts and data of want.
func (inv *invocation) carries(want solana.Instruction) bool {
	data, err := want.Data()
	if err != nil || !bytes.Equal(inv.data, data) {
		return false
	}
	metas := want.Accounts()
	if len(inv.accounts) != len(metas) {
		return false
	}
	for i, meta := range metas {
		key, signer, err := inv.account(i)
		if err != nil || !key.Equals(meta.PublicKey) || (meta.IsSigner && !signer) {
			return false
		}
	}
	return true
}

// changeInstruction encodes req as the Whirlpool instruction that requests it. Values are not
// validated here; the guard rejects them after the signer is proven.
func changeInstruction(programID solana.PublicKey, req *registry.ChangeRequest) (solana.Instruction, error) {
	switch req.Change {
	case registry.ChangeSetAuthority:
		discriminator, err := whirlpool.SetAuthorityDiscriminator(req.Authority)
		if err != nil {
			return nil, err
		}
		return &solana.GenericInstruction{
			ProgID: programID,
			AccountValues: solana.AccountMetaSlice{
				solana.Meta(req.Config).WRITE(),
				solana.Meta(req.Signer).SIGNER(),
				solana.Meta(req.NewAuthority),
			},
			DataBytes: discriminator[:],
		}, nil
	case registry.ChangeSetDefaultProtocolFeeRate:
		data, err := borsh.Serialize(whirlpool.SetDefaultProtocolFeeRateArgs{
			Discriminator:          whirlpool.SetDefaultProtocolFeeRateDiscriminator,
			DefaultProtocolFeeRate: req.NewDefaultProtocolFeeRate,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to serialize args: %w", err)
		}
		return &solana.GenericInstruction{
			ProgID: programID,
			AccountValues: solana.AccountMetaSlice{
				solana.Meta(req.Config).WRITE(),
				solana.Meta(req.Signer).SIGNER(),
			},
			DataBytes: data,
		}, nil
	default:
		return nil, fmt.Errorf("unknown change kind %d", req.Change)
	}
}

func (l *Ledger) registryResult(err error) (*instructionFailure, error) {
	if err == nil {
		return nil, nil
	}
	if failure := failureForRegistryError(err); failure != nil {
		return failure, nil
	}
	var decodeErr *whirlpool.DecodeError
	if errors.As(err, &decodeErr) {
		if decodeErr.Field == "owner" {
			return builtinFailure("IllegalOwner", err.Error()), nil
		}
		return customFailure(whirlpool.InstructionErrorAccountDiscriminatorMismatch, err.Error()), nil
	}
	return nil, err
}

// matchesMemcmp reports whether data holds want at offset.
func matchesMemcmp(data []byte, offset uint64, want []byte) bool {
	if offset > uint64(len(data)) || uint64(len(data))-offset < uint64(len(want)) {
		return false
	}
	return bytes.Equal(data[offset:offset+uint64(len(want))], want)
}
