package whirlpool_test

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/whirlpools/smartcontract/sdk/go/whirlpool"
	"github.com/stretchr/testify/require"
)

func TestSDK_Whirlpool_State_WhirlpoolsConfig_Layout(t *testing.T) {
	t.Parallel()

	config := newTestConfig()
	config.DefaultProtocolFeeRate = 0x0102
	data := serializeConfig(t, config)

	require.Len(t, data, whirlpool.WhirlpoolsConfigSize)
	require.Equal(t, whirlpool.WhirlpoolsConfigDiscriminator[:], data[0:8])
	require.Equal(t, config.FeeAuthority[:], data[8:40])
	require.Equal(t, config.CollectProtocolFeesAuthority[:], data[40:72])
	require.Equal(t, config.RewardEmissionsSuperAuthority[:], data[72:104])
	require.Equal(t, uint16(0x0102), binary.LittleEndian.Uint16(data[104:106]))
	require.Equal(t, []byte{0, 0}, data[106:108])
}

func TestSDK_Whirlpool_State_WhirlpoolsConfig_RoundTrip(t *testing.T) {
	t.Parallel()

	config := newTestConfig()
	got, err := whirlpool.DeserializeWhirlpoolsConfig(serializeConfig(t, config))
	require.NoError(t, err)
	require.Equal(t, config, got)
}

func TestSDK_Whirlpool_State_WithAuthority(t *testing.T) {
	t.Parallel()

	config := newTestConfig()
	next := solana.NewWallet().PublicKey()

	for _, kind := range whirlpool.AuthorityKinds {
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()

			updated, err := config.WithAuthority(kind, next)
			require.NoError(t, err)

			got, err := updated.Authority(kind)
			require.NoError(t, err)
			require.Equal(t, next, got)

			// Only the targeted field changes.
			for _, other := range whirlpool.AuthorityKinds {
				if other == kind {
					continue
				}
				before, _ := config.Authority(other)
				after, _ := updated.Authority(other)
				require.Equal(t, before, after)
			}
			require.Equal(t, config.DefaultProtocolFeeRate, updated.DefaultProtocolFeeRate)

			// The receiver is left untouched.
			original, _ := config.Authority(kind)
			require.NotEqual(t, next, original)
		})
	}

	_, err := config.WithAuthority(whirlpool.AuthorityKind(9), next)
	require.Error(t, err)
}

func TestSDK_Whirlpool_State_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, newTestConfig().Validate())

	config := newTestConfig()
	config.CollectProtocolFeesAuthority = solana.PublicKey{}
	require.EqualError(t, config.Validate(), "collect-protocol-fees authority is required")

	config = newTestConfig()
	config.DefaultProtocolFeeRate = whirlpool.MaxProtocolFeeRate + 1
	require.EqualError(t, config.Validate(), "default protocol fee rate 2501 exceeds max 2500")
}

func TestSDK_Whirlpool_State_ParseAuthorityKind(t *testing.T) {
	t.Parallel()

	for _, kind := range whirlpool.AuthorityKinds {
		got, err := whirlpool.ParseAuthorityKind(kind.String())
		require.NoError(t, err)
		require.Equal(t, kind, got)
	}

	_, err := whirlpool.ParseAuthorityKind("pool")
	require.Error(t, err)
	require.False(t, whirlpool.AuthorityKind(3).Valid())
	require.Equal(t, "unknown(3)", whirlpool.AuthorityKind(3).String())
}
