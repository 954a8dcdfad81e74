package registry

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/whirlpools/smartcontract/sdk/go/whirlpool"
	"github.com/near/borsh-go"
)

// ChangeKind is the kind of change a request makes to a config.
type ChangeKind uint8

const (
	// ChangeSetAuthority replaces one authority, gated by that authority.
	ChangeSetAuthority ChangeKind = 0

	// ChangeSetDefaultProtocolFeeRate replaces the default protocol fee rate, gated by the fee
	// authority.
	ChangeSetDefaultProtocolFeeRate ChangeKind = 1
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeSetAuthority:
		return "set-authority"
	case ChangeSetDefaultProtocolFeeRate:
		return "set-default-protocol-fee-rate"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

const changeRequestDomain = "whirlpools-config-change-v1"

// ChangeRequest asks for one change to a config, signed by the identity claiming to hold the
// authority that gates it.
type ChangeRequest struct {
	Config solana.PublicKey
	Change ChangeKind

	// Authority and NewAuthority are used by ChangeSetAuthority.
	Authority    whirlpool.AuthorityKind
	NewAuthority solana.PublicKey

	// NewDefaultProtocolFeeRate is used by ChangeSetDefaultProtocolFeeRate.
	NewDefaultProtocolFeeRate uint16

	// ExpectedVersion is the config version the signer based the request on. A signature over
	// Payload binds the request to that version, so signed requests must set it. Zero means
	// the current version and is only accepted by guards that prove the signer another way.
	ExpectedVersion uint64

	Signer    solana.PublicKey
	Signature solana.Signature
}

type changePayload struct {
	Domain                    string
	Config                    solana.PublicKey
	Change                    ChangeKind
	Authority                 whirlpool.AuthorityKind
	NewAuthority              solana.PublicKey
	NewDefaultProtocolFeeRate uint16
	ExpectedVersion           uint64
}

// Payload returns the canonical bytes a request signature covers.
func (r *ChangeRequest) Payload() ([]byte, error) {
	if r.ExpectedVersion == 0 {
		return nil, fmt.Errorf("%w: a signed change must name the config version it is based on", ErrInvalidArgument)
	}
	data, err := borsh.Serialize(changePayload{
		Domain:                    changeRequestDomain,
		Config:                    r.Config,
		Change:                    r.Change,
		Authority:                 r.Authority,
		NewAuthority:              r.NewAuthority,
		NewDefaultProtocolFeeRate: r.NewDefaultProtocolFeeRate,
		ExpectedVersion:           r.ExpectedVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize change payload: %w", err)
	}
	return data, nil
}

// Sign sets the signer to key and signs the canonical payload.
func (r *ChangeRequest) Sign(key solana.PrivateKey) error {
	r.Signer = key.PublicKey()
	payload, err := r.Payload()
	if err != nil {
		return err
	}
	sig, err := key.Sign(payload)
	if err != nil {
		return fmt.Errorf("failed to sign change payload: %w", err)
	}
	r.Signature = sig
	return nil
}

// RequiredAuthority returns the authority that must sign the request.
func (r *ChangeRequest) RequiredAuthority() (whirlpool.AuthorityKind, error) {
	switch r.Change {
	case ChangeSetAuthority:
		if !r.Authority.Valid() {
			return 0, fmt.Errorf("unknown authority kind %d", r.Authority)
		}
		return r.Authority, nil
	case ChangeSetDefaultProtocolFeeRate:
		return whirlpool.AuthorityKindFee, nil
	default:
		return 0, fmt.Errorf("unknown change kind %d", r.Change)
	}
}

// label names the request for metrics and logs.
func (r *ChangeRequest) label() string {
	if r.Change == ChangeSetAuthority {
		return r.Authority.String()
	}
	return r.Change.String()
}

// NewSetAuthorityRequest returns an unsigned request rotating an authority.
func NewSetAuthorityRequest(record *ConfigRecord, kind whirlpool.AuthorityKind, newAuthority solana.PublicKey) *ChangeRequest {
	return &ChangeRequest{
		Config:          record.Address,
		Change:          ChangeSetAuthority,
		Authority:       kind,
		NewAuthority:    newAuthority,
		ExpectedVersion: record.Version,
	}
}

// NewSetDefaultProtocolFeeRateRequest returns an unsigned request changing the default
// protocol fee rate.
func NewSetDefaultProtocolFeeRateRequest(record *ConfigRecord, rate uint16) *ChangeRequest {
	return &ChangeRequest{
		Config:                    record.Address,
		Change:                    ChangeSetDefaultProtocolFeeRate,
		NewDefaultProtocolFeeRate: rate,
		ExpectedVersion:           record.Version,
	}
}
