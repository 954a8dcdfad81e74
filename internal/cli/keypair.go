package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

func defaultKeypairPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "solana", "id.json")
}

// loadKeypair reads a keypair from a solana-keygen JSON file, or decodes value as a base58
// secret key when no such file exists.
func loadKeypair(value string) (solana.PrivateKey, error) {
	if value == "" {
		return nil, errors.New("keypair is required")
	}
	if _, err := os.Stat(value); err == nil {
		key, err := solana.PrivateKeyFromSolanaKeygenFile(value)
		if err != nil {
			return nil, fmt.Errorf("failed to load keypair file %s: %w", value, err)
		}
		return key, nil
	}

	raw, err := base58.Decode(value)
	if err != nil {
		return nil, fmt.Errorf("keypair %q is neither a file nor a base58 secret key", value)
	}
	if len(raw) != 64 {
		return nil, fmt.Errorf("base58 secret key must be 64 bytes, got %d", len(raw))
	}
	key := solana.PrivateKey(raw)
	if !key.IsValid() {
		return nil, errors.New("base58 secret key does not hold a valid ed25519 key pair")
	}
	return key, nil
}

// keypairOrDefault loads value, falling back to fallback when value is empty.
func keypairOrDefault(value string, fallback solana.PrivateKey) (solana.PrivateKey, error) {
	if value == "" {
		return fallback, nil
	}
	return loadKeypair(value)
}

func parsePublicKey(name, value string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return pk, nil
}
