package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"
)

const (
	EnvMainnetBeta = "mainnet-beta"
	EnvMainnet     = "mainnet"
	EnvDevnet      = "devnet"
	EnvLocalnet    = "localnet"
)

var (
	ErrInvalidEnvironment = fmt.Errorf("invalid environment")
)

type NetworkConfig struct {
	Moniker            string
	LedgerPublicRPCURL string
	WhirlpoolProgramID solana.PublicKey

	// WhirlpoolsConfig is the well-known config of the network. It is zero when the network
	// has none.
	WhirlpoolsConfig solana.PublicKey
}

func NetworkConfigForEnv(env string) (*NetworkConfig, error) {
	var config *NetworkConfig
	switch env {
	case EnvMainnetBeta, EnvMainnet:
		programID, err := solana.PublicKeyFromBase58(MainnetWhirlpoolProgramID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse whirlpool program ID: %w", err)
		}
		whirlpoolsConfig, err := solana.PublicKeyFromBase58(MainnetWhirlpoolsConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to parse whirlpools config: %w", err)
		}
		config = &NetworkConfig{
			Moniker:            EnvMainnetBeta,
			LedgerPublicRPCURL: MainnetLedgerPublicRPCURL,
			WhirlpoolProgramID: programID,
			WhirlpoolsConfig:   whirlpoolsConfig,
		}
	case EnvDevnet:
		programID, err := solana.PublicKeyFromBase58(DevnetWhirlpoolProgramID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse whirlpool program ID: %w", err)
		}
		whirlpoolsConfig, err := solana.PublicKeyFromBase58(DevnetWhirlpoolsConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to parse whirlpools config: %w", err)
		}
		config = &NetworkConfig{
			Moniker:            EnvDevnet,
			LedgerPublicRPCURL: DevnetLedgerPublicRPCURL,
			WhirlpoolProgramID: programID,
			WhirlpoolsConfig:   whirlpoolsConfig,
		}
	case EnvLocalnet:
		programID, err := solana.PublicKeyFromBase58(LocalnetWhirlpoolProgramID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse whirlpool program ID: %w", err)
		}
		config = &NetworkConfig{
			Moniker:            EnvLocalnet,
			LedgerPublicRPCURL: LocalnetLedgerPublicRPCURL,
			WhirlpoolProgramID: programID,
		}
	default:
		return nil, ErrInvalidEnvironment
	}

	if err := config.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *NetworkConfig) applyEnvOverrides() error {
	if rpcURL := os.Getenv("WHIRLPOOL_LEDGER_RPC_URL"); rpcURL != "" {
		c.LedgerPublicRPCURL = rpcURL
	}
	if programID := os.Getenv("WHIRLPOOL_PROGRAM_ID"); programID != "" {
		pk, err := solana.PublicKeyFromBase58(programID)
		if err != nil {
			return fmt.Errorf("failed to parse WHIRLPOOL_PROGRAM_ID: %w", err)
		}
		c.WhirlpoolProgramID = pk
	}
	return nil
}

// networkFile is the YAML layout of a network config file. Empty fields keep the value of
// the base environment.
type networkFile struct {
	Env              string `yaml:"env"`
	RPCURL           string `yaml:"rpc_url"`
	ProgramID        string `yaml:"program_id"`
	WhirlpoolsConfig string `yaml:"whirlpools_config"`
}

// LoadNetworkConfigFile reads a YAML network config file. The file names a base environment
// and may override its RPC URL, program ID and config address.
func LoadNetworkConfigFile(path string) (*NetworkConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read network config file: %w", err)
	}

	var file networkFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse network config file: %w", err)
	}
	if file.Env == "" {
		return nil, errors.New("network config file must set env")
	}

	config, err := NetworkConfigForEnv(file.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to get network config for %q: %w", file.Env, err)
	}
	if file.RPCURL != "" {
		config.LedgerPublicRPCURL = file.RPCURL
	}
	if file.ProgramID != "" {
		config.WhirlpoolProgramID, err = solana.PublicKeyFromBase58(file.ProgramID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse program_id: %w", err)
		}
	}
	if file.WhirlpoolsConfig != "" {
		config.WhirlpoolsConfig, err = solana.PublicKeyFromBase58(file.WhirlpoolsConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to parse whirlpools_config: %w", err)
		}
	}
	return config, nil
}
