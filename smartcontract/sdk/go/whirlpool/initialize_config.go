package whirlpool

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

type InitializeConfigInstructionConfig struct {
	// Config is the address of the new WhirlpoolsConfig account. Its keypair must sign.
	Config                        solana.PublicKey
	Funder                        solana.PublicKey
	FeeAuthority                  solana.PublicKey
	CollectProtocolFeesAuthority  solana.PublicKey
	RewardEmissionsSuperAuthority solana.PublicKey
	DefaultProtocolFeeRate        uint16
}

func (c *InitializeConfigInstructionConfig) Validate() error {
	if c.Config.IsZero() {
		return fmt.Errorf("config public key is required")
	}
	if c.Funder.IsZero() {
		return fmt.Errorf("funder public key is required")
	}
	if c.FeeAuthority.IsZero() {
		return fmt.Errorf("fee authority public key is required")
	}
	if c.CollectProtocolFeesAuthority.IsZero() {
		return fmt.Errorf("collect protocol fees authority public key is required")
	}
	if c.RewardEmissionsSuperAuthority.IsZero() {
		return fmt.Errorf("reward emissions super authority public key is required")
	}
	if c.DefaultProtocolFeeRate > MaxProtocolFeeRate {
		return fmt.Errorf("default protocol fee rate %d exceeds max %d", c.DefaultProtocolFeeRate, MaxProtocolFeeRate)
	}
	return nil
}

// InitializeConfigArgs is the instruction data of initialize_config.
type InitializeConfigArgs struct {
	Discriminator                 InstructionDiscriminator
	FeeAuthority                  solana.PublicKey
	CollectProtocolFeesAuthority  solana.PublicKey
	RewardEmissionsSuperAuthority solana.PublicKey
	DefaultProtocolFeeRate        uint16
}

func BuildInitializeConfigInstruction(
	programID solana.PublicKey,
	config InitializeConfigInstructionConfig,
) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	data, err := borsh.Serialize(InitializeConfigArgs{
		Discriminator:                 InitializeConfigDiscriminator,
		FeeAuthority:                  config.FeeAuthority,
		CollectProtocolFeesAuthority:  config.CollectProtocolFeesAuthority,
		RewardEmissionsSuperAuthority: config.RewardEmissionsSuperAuthority,
		DefaultProtocolFeeRate:        config.DefaultProtocolFeeRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize args: %w", err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: config.Config, IsSigner: true, IsWritable: true},
		{PublicKey: config.Funder, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
	}

	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     data,
	}, nil
}
