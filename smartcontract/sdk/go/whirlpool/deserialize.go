package whirlpool

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ErrInvalidAccountData is wrapped by every DecodeError.
var ErrInvalidAccountData = errors.New("invalid account data")

// DecodeError reports why account data could not be decoded as a WhirlpoolsConfig.
type DecodeError struct {
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid whirlpools config %s: %s", e.Field, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return ErrInvalidAccountData
}

// DeserializeWhirlpoolsConfig deserializes binary data into a WhirlpoolsConfig.
// The data must be exactly WhirlpoolsConfigSize bytes, start with the account discriminator,
// carry zero padding and hold non-zero authorities.
func DeserializeWhirlpoolsConfig(data []byte) (*WhirlpoolsConfig, error) {
	if len(data) != WhirlpoolsConfigSize {
		return nil, &DecodeError{Field: "size", Reason: fmt.Sprintf("got %d bytes, want %d", len(data), WhirlpoolsConfigSize)}
	}
	if !bytes.Equal(data[:8], WhirlpoolsConfigDiscriminator[:]) {
		return nil, &DecodeError{Field: "discriminator", Reason: fmt.Sprintf("got %v, want %v", data[:8], WhirlpoolsConfigDiscriminator)}
	}
	if data[WhirlpoolsConfigSize-2] != 0 || data[WhirlpoolsConfigSize-1] != 0 {
		return nil, &DecodeError{Field: "padding", Reason: "non-zero trailing bytes"}
	}

	var config WhirlpoolsConfig
	if err := config.Deserialize(data); err != nil {
		return nil, &DecodeError{Field: "body", Reason: err.Error()}
	}
	if err := config.Validate(); err != nil {
		return nil, &DecodeError{Field: "body", Reason: err.Error()}
	}
	return &config, nil
}

// DeserializeWhirlpoolsConfigAccount checks the account is owned by the given program before
// decoding its data.
func DeserializeWhirlpoolsConfigAccount(programID, owner solana.PublicKey, data []byte) (*WhirlpoolsConfig, error) {
	if !owner.Equals(programID) {
		return nil, &DecodeError{Field: "owner", Reason: fmt.Sprintf("account owned by %s, want %s", owner, programID)}
	}
	return DeserializeWhirlpoolsConfig(data)
}
