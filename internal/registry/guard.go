package registry

import (
	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/whirlpools/smartcontract/sdk/go/whirlpool"
)

// Validator checks one condition of a change request against the current record.
type Validator func(record *ConfigRecord, req *ChangeRequest) error

// AccessGuard decides whether a change request may be applied to a record. It runs its
// validators in order and returns the first rejection. It has no side effects.
type AccessGuard struct {
	validators []Validator
}

// NewAccessGuard returns a guard running VerifySignature, MatchCurrentAuthority and
// ValidateChange, followed by any extra validators.
func NewAccessGuard(extra ...Validator) *AccessGuard {
	return NewAccessGuardWithSignatureCheck(VerifySignature, extra...)
}

// NewAccessGuardWithSignatureCheck is NewAccessGuard with verify proving the signer in place of
// VerifySignature. The ledger uses it to authenticate a change by the transaction carrying it.
func NewAccessGuardWithSignatureCheck(verify Validator, extra ...Validator) *AccessGuard {
	validators := []Validator{verify, MatchCurrentAuthority, ValidateChange}
	return &AccessGuard{validators: append(validators, extra...)}
}

func (g *AccessGuard) Authorize(record *ConfigRecord, req *ChangeRequest) error {
	for _, validate := range g.validators {
		if err := validate(record, req); err != nil {
			return err
		}
	}
	return nil
}

// VerifySignature requires a valid ed25519 signature by the request signer over the request
// payload.
func VerifySignature(_ *ConfigRecord, req *ChangeRequest) error {
	if req.Signer.IsZero() {
		return newProgramError(ErrSignatureVerificationFailed, whirlpool.InstructionErrorAccountNotSigner, "request has no signer")
	}
	if req.Signature == (solana.Signature{}) {
		return newProgramError(ErrSignatureVerificationFailed, whirlpool.InstructionErrorAccountNotSigner, "missing signature for %s", req.Signer)
	}
	msg, err := req.Payload()
	if err != nil {
		return newProgramError(ErrSignatureVerificationFailed, whirlpool.InstructionErrorAccountNotSigner, "%v", err)
	}
	if !req.Signature.Verify(req.Signer, msg) {
		return newProgramError(ErrSignatureVerificationFailed, whirlpool.InstructionErrorAccountNotSigner, "invalid signature for %s", req.Signer)
	}
	return nil
}

// MatchCurrentAuthority requires the signer to be the current holder of the authority that
// gates the change.
func MatchCurrentAuthority(record *ConfigRecord, req *ChangeRequest) error {
	kind, err := req.RequiredAuthority()
	if err != nil {
		return newProgramError(ErrInvalidArgument, NoCustomCode, "%v", err)
	}
	current, err := record.Config.Authority(kind)
	if err != nil {
		return newProgramError(ErrInvalidArgument, NoCustomCode, "%v", err)
	}
	if !current.Equals(req.Signer) {
		return newProgramError(ErrInvalidAuthority, whirlpool.InstructionErrorConstraintAddress,
			"%s authority is %s, request signed by %s", kind, current, req.Signer)
	}
	return nil
}

// ValidateChange checks the proposed value itself.
func ValidateChange(_ *ConfigRecord, req *ChangeRequest) error {
	switch req.Change {
	case ChangeSetAuthority:
		if req.NewAuthority.IsZero() {
			return newProgramError(ErrInvalidArgument, NoCustomCode, "new %s authority must not be the zero key", req.Authority)
		}
	case ChangeSetDefaultProtocolFeeRate:
		if req.NewDefaultProtocolFeeRate > whirlpool.MaxProtocolFeeRate {
			return newProgramError(ErrInvalidArgument, whirlpool.InstructionErrorProtocolFeeRateMaxExceeded,
				"default protocol fee rate %d exceeds max %d", req.NewDefaultProtocolFeeRate, whirlpool.MaxProtocolFeeRate)
		}
	default:
		return newProgramError(ErrInvalidArgument, NoCustomCode, "unknown change kind %d", req.Change)
	}
	return nil
}
