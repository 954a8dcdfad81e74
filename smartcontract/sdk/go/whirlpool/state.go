package whirlpool

import (
	"fmt"
	"io"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// AuthorityKind identifies one of the authority fields of a WhirlpoolsConfig.
type AuthorityKind uint8

const (
	AuthorityKindFee                  AuthorityKind = 0
	AuthorityKindCollectProtocolFees  AuthorityKind = 1
	AuthorityKindRewardEmissionsSuper AuthorityKind = 2
)

func (k AuthorityKind) String() string {
	switch k {
	case AuthorityKindFee:
		return "fee"
	case AuthorityKindCollectProtocolFees:
		return "collect-protocol-fees"
	case AuthorityKindRewardEmissionsSuper:
		return "reward-emissions-super"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

func (k AuthorityKind) Valid() bool {
	return k <= AuthorityKindRewardEmissionsSuper
}

// ParseAuthorityKind parses the String form of an AuthorityKind.
func ParseAuthorityKind(s string) (AuthorityKind, error) {
	switch s {
	case "fee":
		return AuthorityKindFee, nil
	case "collect-protocol-fees":
		return AuthorityKindCollectProtocolFees, nil
	case "reward-emissions-super":
		return AuthorityKindRewardEmissionsSuper, nil
	default:
		return 0, fmt.Errorf("unknown authority kind %q", s)
	}
}

// AuthorityKinds lists every authority kind held by a WhirlpoolsConfig.
var AuthorityKinds = []AuthorityKind{
	AuthorityKindFee,
	AuthorityKindCollectProtocolFees,
	AuthorityKindRewardEmissionsSuper,
}

type WhirlpoolsConfig struct {
	FeeAuthority                  solana.PublicKey // 32 bytes
	CollectProtocolFeesAuthority  solana.PublicKey // 32 bytes
	RewardEmissionsSuperAuthority solana.PublicKey // 32 bytes
	DefaultProtocolFeeRate        uint16           // 2 bytes LE
}

// Authority returns the identity currently holding the given authority.
func (c *WhirlpoolsConfig) Authority(kind AuthorityKind) (solana.PublicKey, error) {
	switch kind {
	case AuthorityKindFee:
		return c.FeeAuthority, nil
	case AuthorityKindCollectProtocolFees:
		return c.CollectProtocolFeesAuthority, nil
	case AuthorityKindRewardEmissionsSuper:
		return c.RewardEmissionsSuperAuthority, nil
	default:
		return solana.PublicKey{}, fmt.Errorf("unknown authority kind %d", kind)
	}
}

// WithAuthority returns a copy of the config with the given authority replaced.
func (c WhirlpoolsConfig) WithAuthority(kind AuthorityKind, authority solana.PublicKey) (WhirlpoolsConfig, error) {
	switch kind {
	case AuthorityKindFee:
		c.FeeAuthority = authority
	case AuthorityKindCollectProtocolFees:
		c.CollectProtocolFeesAuthority = authority
	case AuthorityKindRewardEmissionsSuper:
		c.RewardEmissionsSuperAuthority = authority
	default:
		return WhirlpoolsConfig{}, fmt.Errorf("unknown authority kind %d", kind)
	}
	return c, nil
}

// Validate checks the invariants every stored config must hold.
func (c *WhirlpoolsConfig) Validate() error {
	for _, kind := range AuthorityKinds {
		authority, _ := c.Authority(kind)
		if authority.IsZero() {
			return fmt.Errorf("%s authority is required", kind)
		}
	}
	if c.DefaultProtocolFeeRate > MaxProtocolFeeRate {
		return fmt.Errorf("default protocol fee rate %d exceeds max %d", c.DefaultProtocolFeeRate, MaxProtocolFeeRate)
	}
	return nil
}

func (c *WhirlpoolsConfig) Serialize(w io.Writer) error {
	enc := bin.NewBorshEncoder(w)
	if err := enc.Encode(WhirlpoolsConfigDiscriminator); err != nil {
		return err
	}
	if err := enc.Encode(c.FeeAuthority); err != nil {
		return err
	}
	if err := enc.Encode(c.CollectProtocolFeesAuthority); err != nil {
		return err
	}
	if err := enc.Encode(c.RewardEmissionsSuperAuthority); err != nil {
		return err
	}
	if err := enc.Encode(c.DefaultProtocolFeeRate); err != nil {
		return err
	}
	if err := enc.Encode([2]uint8{}); err != nil {
		return err
	}
	return nil
}

func (c *WhirlpoolsConfig) Deserialize(data []byte) error {
	dec := bin.NewBorshDecoder(data)
	var discriminator [8]uint8
	if err := dec.Decode(&discriminator); err != nil {
		return err
	}
	if err := dec.Decode(&c.FeeAuthority); err != nil {
		return err
	}
	if err := dec.Decode(&c.CollectProtocolFeesAuthority); err != nil {
		return err
	}
	if err := dec.Decode(&c.RewardEmissionsSuperAuthority); err != nil {
		return err
	}
	if err := dec.Decode(&c.DefaultProtocolFeeRate); err != nil {
		return err
	}
	return nil
}
