package whirlpool

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// SetAuthorityInstructionConfig rotates one of the config authorities. It maps to
// set_fee_authority, set_collect_protocol_fees_authority or
// set_reward_emissions_super_authority depending on Kind.
type SetAuthorityInstructionConfig struct {
	Config           solana.PublicKey
	Kind             AuthorityKind
	CurrentAuthority solana.PublicKey
	NewAuthority     solana.PublicKey
}

func (c *SetAuthorityInstructionConfig) Validate() error {
	if c.Config.IsZero() {
		return fmt.Errorf("config public key is required")
	}
	if !c.Kind.Valid() {
		return fmt.Errorf("unknown authority kind %d", c.Kind)
	}
	if c.CurrentAuthority.IsZero() {
		return fmt.Errorf("current authority public key is required")
	}
	if c.NewAuthority.IsZero() {
		return fmt.Errorf("new authority public key is required")
	}
	return nil
}

// SetAuthorityDiscriminator returns the instruction discriminator that rotates the given
// authority kind.
func SetAuthorityDiscriminator(kind AuthorityKind) (InstructionDiscriminator, error) {
	switch kind {
	case AuthorityKindFee:
		return SetFeeAuthorityDiscriminator, nil
	case AuthorityKindCollectProtocolFees:
		return SetCollectProtocolFeesAuthorityDiscriminator, nil
	case AuthorityKindRewardEmissionsSuper:
		return SetRewardEmissionsSuperAuthorityDiscriminator, nil
	default:
		return InstructionDiscriminator{}, fmt.Errorf("unknown authority kind %d", kind)
	}
}

func BuildSetAuthorityInstruction(
	programID solana.PublicKey,
	config SetAuthorityInstructionConfig,
) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	discriminator, err := SetAuthorityDiscriminator(config.Kind)
	if err != nil {
		return nil, err
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: config.Config, IsSigner: false, IsWritable: true},
		{PublicKey: config.CurrentAuthority, IsSigner: true, IsWritable: false},
		{PublicKey: config.NewAuthority, IsSigner: false, IsWritable: false},
	}

	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     discriminator[:],
	}, nil
}
