package registry

import (
	"bytes"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/whirlpools/smartcontract/sdk/go/whirlpool"
)

// ConfigRecord is a decoded config account at a specific version.
type ConfigRecord struct {
	Address solana.PublicKey
	Version uint64
	Config  whirlpool.WhirlpoolsConfig
}

func decodeRecord(programID solana.PublicKey, account *Account) (*ConfigRecord, error) {
	config, err := whirlpool.DeserializeWhirlpoolsConfigAccount(programID, account.Owner, account.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", account.Address, err)
	}
	return &ConfigRecord{
		Address: account.Address,
		Version: account.Version,
		Config:  *config,
	}, nil
}

func encodeConfig(config *whirlpool.WhirlpoolsConfig) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := config.Serialize(buf); err != nil {
		return nil, fmt.Errorf("failed to serialize config: %w", err)
	}
	return buf.Bytes(), nil
}
