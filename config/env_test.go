package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/whirlpools/config"
	"github.com/stretchr/testify/require"
)

func TestConfig_NetworkConfigForEnv(t *testing.T) {
	tests := []struct {
		env     string
		want    *config.NetworkConfig
		wantErr error
	}{
		{
			env: config.EnvMainnet,
			want: &config.NetworkConfig{
				Moniker:            config.EnvMainnetBeta,
				LedgerPublicRPCURL: config.MainnetLedgerPublicRPCURL,
				WhirlpoolProgramID: solana.MustPublicKeyFromBase58(config.MainnetWhirlpoolProgramID),
				WhirlpoolsConfig:   solana.MustPublicKeyFromBase58(config.MainnetWhirlpoolsConfig),
			},
		},
		{
			env: config.EnvMainnetBeta,
			want: &config.NetworkConfig{
				Moniker:            config.EnvMainnetBeta,
				LedgerPublicRPCURL: config.MainnetLedgerPublicRPCURL,
				WhirlpoolProgramID: solana.MustPublicKeyFromBase58(config.MainnetWhirlpoolProgramID),
				WhirlpoolsConfig:   solana.MustPublicKeyFromBase58(config.MainnetWhirlpoolsConfig),
			},
		},
		{
			env: config.EnvDevnet,
			want: &config.NetworkConfig{
				Moniker:            config.EnvDevnet,
				LedgerPublicRPCURL: config.DevnetLedgerPublicRPCURL,
				WhirlpoolProgramID: solana.MustPublicKeyFromBase58(config.DevnetWhirlpoolProgramID),
				WhirlpoolsConfig:   solana.MustPublicKeyFromBase58(config.DevnetWhirlpoolsConfig),
			},
		},
		{
			env: config.EnvLocalnet,
			want: &config.NetworkConfig{
				Moniker:            config.EnvLocalnet,
				LedgerPublicRPCURL: config.LocalnetLedgerPublicRPCURL,
				WhirlpoolProgramID: solana.MustPublicKeyFromBase58(config.LocalnetWhirlpoolProgramID),
			},
		},
		{
			env:     "invalid",
			wantErr: config.ErrInvalidEnvironment,
		},
	}

	for _, test := range tests {
		t.Run(test.env, func(t *testing.T) {
			got, err := config.NetworkConfigForEnv(test.env)
			if test.wantErr != nil {
				require.ErrorIs(t, err, test.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.want, got)
		})
	}
}

func TestConfig_NetworkConfigForEnv_OverrideFromEnvVars(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	t.Setenv("WHIRLPOOL_LEDGER_RPC_URL", "https://other-rpc-url.com")
	t.Setenv("WHIRLPOOL_PROGRAM_ID", programID.String())

	got, err := config.NetworkConfigForEnv(config.EnvDevnet)
	require.NoError(t, err)
	require.Equal(t, "https://other-rpc-url.com", got.LedgerPublicRPCURL)
	require.Equal(t, programID, got.WhirlpoolProgramID)
}

func TestConfig_NetworkConfigForEnv_InvalidProgramIDOverride(t *testing.T) {
	t.Setenv("WHIRLPOOL_PROGRAM_ID", "not-a-key")

	_, err := config.NetworkConfigForEnv(config.EnvDevnet)
	require.ErrorContains(t, err, "WHIRLPOOL_PROGRAM_ID")
}

func TestConfig_LoadNetworkConfigFile(t *testing.T) {
	whirlpoolsConfig := solana.NewWallet().PublicKey()
	path := filepath.Join(t.TempDir(), "network.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"env: localnet\n"+
			"rpc_url: http://validator:8899\n"+
			"whirlpools_config: "+whirlpoolsConfig.String()+"\n",
	), 0o644))

	got, err := config.LoadNetworkConfigFile(path)
	require.NoError(t, err)
	require.Equal(t, &config.NetworkConfig{
		Moniker:            config.EnvLocalnet,
		LedgerPublicRPCURL: "http://validator:8899",
		WhirlpoolProgramID: solana.MustPublicKeyFromBase58(config.LocalnetWhirlpoolProgramID),
		WhirlpoolsConfig:   whirlpoolsConfig,
	}, got)
}

func TestConfig_LoadNetworkConfigFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "missing env", content: "rpc_url: http://validator:8899\n", wantErr: "must set env"},
		{name: "unknown env", content: "env: testnet\n", wantErr: "invalid environment"},
		{name: "bad program id", content: "env: devnet\nprogram_id: nope\n", wantErr: "program_id"},
		{name: "bad yaml", content: "env: [devnet\n", wantErr: "failed to parse network config file"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "network.yaml")
			require.NoError(t, os.WriteFile(path, []byte(test.content), 0o644))

			_, err := config.LoadNetworkConfigFile(path)
			require.ErrorContains(t, err, test.wantErr)
		})
	}

	_, err := config.LoadNetworkConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
