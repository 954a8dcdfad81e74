package whirlpool_test

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/whirlpools/smartcontract/sdk/go/whirlpool"
	"github.com/stretchr/testify/require"
)

func TestSDK_Whirlpool_BuildInitializeConfigInstruction(t *testing.T) {
	t.Parallel()

	programID := solana.NewWallet().PublicKey()
	cfg := whirlpool.InitializeConfigInstructionConfig{
		Config:                        solana.NewWallet().PublicKey(),
		Funder:                        solana.NewWallet().PublicKey(),
		FeeAuthority:                  solana.NewWallet().PublicKey(),
		CollectProtocolFeesAuthority:  solana.NewWallet().PublicKey(),
		RewardEmissionsSuperAuthority: solana.NewWallet().PublicKey(),
		DefaultProtocolFeeRate:        300,
	}

	ix, err := whirlpool.BuildInitializeConfigInstruction(programID, cfg)
	require.NoError(t, err)
	require.Equal(t, programID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 8+3*32+2)
	require.Equal(t, whirlpool.InitializeConfigDiscriminator[:], data[:8])
	require.Equal(t, cfg.FeeAuthority[:], data[8:40])
	require.Equal(t, cfg.CollectProtocolFeesAuthority[:], data[40:72])
	require.Equal(t, cfg.RewardEmissionsSuperAuthority[:], data[72:104])
	require.Equal(t, uint16(300), binary.LittleEndian.Uint16(data[104:106]))

	accounts := ix.Accounts()
	require.Len(t, accounts, 3)
	require.Equal(t, cfg.Config, accounts[0].PublicKey)
	require.True(t, accounts[0].IsSigner)
	require.True(t, accounts[0].IsWritable)
	require.Equal(t, cfg.Funder, accounts[1].PublicKey)
	require.True(t, accounts[1].IsSigner)
	require.Equal(t, solana.SystemProgramID, accounts[2].PublicKey)
}

func TestSDK_Whirlpool_BuildInitializeConfigInstruction_Validate(t *testing.T) {
	t.Parallel()

	valid := whirlpool.InitializeConfigInstructionConfig{
		Config:                        solana.NewWallet().PublicKey(),
		Funder:                        solana.NewWallet().PublicKey(),
		FeeAuthority:                  solana.NewWallet().PublicKey(),
		CollectProtocolFeesAuthority:  solana.NewWallet().PublicKey(),
		RewardEmissionsSuperAuthority: solana.NewWallet().PublicKey(),
	}

	tests := []struct {
		name   string
		mutate func(*whirlpool.InitializeConfigInstructionConfig)
		want   string
	}{
		{"missing config", func(c *whirlpool.InitializeConfigInstructionConfig) { c.Config = solana.PublicKey{} }, "config public key is required"},
		{"missing funder", func(c *whirlpool.InitializeConfigInstructionConfig) { c.Funder = solana.PublicKey{} }, "funder public key is required"},
		{"missing fee authority", func(c *whirlpool.InitializeConfigInstructionConfig) { c.FeeAuthority = solana.PublicKey{} }, "fee authority public key is required"},
		{"missing collect protocol fees authority", func(c *whirlpool.InitializeConfigInstructionConfig) {
			c.CollectProtocolFeesAuthority = solana.PublicKey{}
		}, "collect protocol fees authority public key is required"},
		{"missing reward emissions super authority", func(c *whirlpool.InitializeConfigInstructionConfig) {
			c.RewardEmissionsSuperAuthority = solana.PublicKey{}
		}, "reward emissions super authority public key is required"},
		{"fee rate above max", func(c *whirlpool.InitializeConfigInstructionConfig) { c.DefaultProtocolFeeRate = 2501 }, "default protocol fee rate 2501 exceeds max 2500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tt.mutate(&cfg)
			_, err := whirlpool.BuildInitializeConfigInstruction(solana.NewWallet().PublicKey(), cfg)
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestSDK_Whirlpool_BuildSetAuthorityInstruction(t *testing.T) {
	t.Parallel()

	programID := solana.NewWallet().PublicKey()
	want := map[whirlpool.AuthorityKind]whirlpool.InstructionDiscriminator{
		whirlpool.AuthorityKindFee:                  whirlpool.SetFeeAuthorityDiscriminator,
		whirlpool.AuthorityKindCollectProtocolFees:  whirlpool.SetCollectProtocolFeesAuthorityDiscriminator,
		whirlpool.AuthorityKindRewardEmissionsSuper: whirlpool.SetRewardEmissionsSuperAuthorityDiscriminator,
	}

	for kind, discriminator := range want {
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()

			cfg := whirlpool.SetAuthorityInstructionConfig{
				Config:           solana.NewWallet().PublicKey(),
				Kind:             kind,
				CurrentAuthority: solana.NewWallet().PublicKey(),
				NewAuthority:     solana.NewWallet().PublicKey(),
			}
			ix, err := whirlpool.BuildSetAuthorityInstruction(programID, cfg)
			require.NoError(t, err)

			data, err := ix.Data()
			require.NoError(t, err)
			require.Equal(t, discriminator[:], data)

			accounts := ix.Accounts()
			require.Len(t, accounts, 3)
			require.Equal(t, cfg.Config, accounts[0].PublicKey)
			require.True(t, accounts[0].IsWritable)
			require.False(t, accounts[0].IsSigner)
			require.Equal(t, cfg.CurrentAuthority, accounts[1].PublicKey)
			require.True(t, accounts[1].IsSigner)
			require.Equal(t, cfg.NewAuthority, accounts[2].PublicKey)
			require.False(t, accounts[2].IsSigner)
		})
	}
}

func TestSDK_Whirlpool_BuildSetAuthorityInstruction_Validate(t *testing.T) {
	t.Parallel()

	cfg := whirlpool.SetAuthorityInstructionConfig{
		Config:           solana.NewWallet().PublicKey(),
		Kind:             whirlpool.AuthorityKind(7),
		CurrentAuthority: solana.NewWallet().PublicKey(),
		NewAuthority:     solana.NewWallet().PublicKey(),
	}
	_, err := whirlpool.BuildSetAuthorityInstruction(solana.NewWallet().PublicKey(), cfg)
	require.ErrorContains(t, err, "unknown authority kind 7")

	cfg.Kind = whirlpool.AuthorityKindFee
	cfg.NewAuthority = solana.PublicKey{}
	_, err = whirlpool.BuildSetAuthorityInstruction(solana.NewWallet().PublicKey(), cfg)
	require.ErrorContains(t, err, "new authority public key is required")
}

func TestSDK_Whirlpool_BuildSetDefaultProtocolFeeRateInstruction(t *testing.T) {
	t.Parallel()

	programID := solana.NewWallet().PublicKey()
	cfg := whirlpool.SetDefaultProtocolFeeRateInstructionConfig{
		Config:                 solana.NewWallet().PublicKey(),
		FeeAuthority:           solana.NewWallet().PublicKey(),
		DefaultProtocolFeeRate: 2500,
	}

	ix, err := whirlpool.BuildSetDefaultProtocolFeeRateInstruction(programID, cfg)
	require.NoError(t, err)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 10)
	require.Equal(t, whirlpool.SetDefaultProtocolFeeRateDiscriminator[:], data[:8])
	require.Equal(t, uint16(2500), binary.LittleEndian.Uint16(data[8:]))

	accounts := ix.Accounts()
	require.Len(t, accounts, 2)
	require.Equal(t, cfg.FeeAuthority, accounts[1].PublicKey)
	require.True(t, accounts[1].IsSigner)

	cfg.DefaultProtocolFeeRate = 2501
	_, err = whirlpool.BuildSetDefaultProtocolFeeRateInstruction(programID, cfg)
	require.Error(t, err)
}
