package whirlpool

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

type SetDefaultProtocolFeeRateInstructionConfig struct {
	Config                 solana.PublicKey
	FeeAuthority           solana.PublicKey
	DefaultProtocolFeeRate uint16
}

func (c *SetDefaultProtocolFeeRateInstructionConfig) Validate() error {
	if c.Config.IsZero() {
		return fmt.Errorf("config public key is required")
	}
	if c.FeeAuthority.IsZero() {
		return fmt.Errorf("fee authority public key is required")
	}
	if c.DefaultProtocolFeeRate > MaxProtocolFeeRate {
		return fmt.Errorf("default protocol fee rate %d exceeds max %d", c.DefaultProtocolFeeRate, MaxProtocolFeeRate)
	}
	return nil
}

// SetDefaultProtocolFeeRateArgs is the instruction data of set_default_protocol_fee_rate.
type SetDefaultProtocolFeeRateArgs struct {
	Discriminator          InstructionDiscriminator
	DefaultProtocolFeeRate uint16
}

func BuildSetDefaultProtocolFeeRateInstruction(
	programID solana.PublicKey,
	config SetDefaultProtocolFeeRateInstructionConfig,
) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	data, err := borsh.Serialize(SetDefaultProtocolFeeRateArgs{
		Discriminator:          SetDefaultProtocolFeeRateDiscriminator,
		DefaultProtocolFeeRate: config.DefaultProtocolFeeRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize args: %w", err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: config.Config, IsSigner: false, IsWritable: true},
		{PublicKey: config.FeeAuthority, IsSigner: true, IsWritable: false},
	}

	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     data,
	}, nil
}
