package whirlpool_test

import (
	"math"
	"testing"

	"github.com/malbeclabs/whirlpools/smartcontract/sdk/go/whirlpool"
	"github.com/stretchr/testify/require"
)

func TestSDK_Whirlpool_ProtocolFeeAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		fee  uint64
		rate uint16
		want uint64
	}{
		{fee: 10_000, rate: 300, want: 300},
		{fee: 999, rate: 300, want: 29},
		{fee: 0, rate: 2500, want: 0},
		{fee: 1_000_000, rate: 0, want: 0},
		{fee: math.MaxUint64, rate: 2500, want: math.MaxUint64 / 4},
	}
	for _, tt := range tests {
		got, err := whirlpool.ProtocolFeeAmount(tt.fee, tt.rate)
		require.NoError(t, err)
		require.Equal(t, tt.want, got, "fee=%d rate=%d", tt.fee, tt.rate)
	}

	_, err := whirlpool.ProtocolFeeAmount(100, 2501)
	require.ErrorIs(t, err, whirlpool.ErrProtocolFeeRateMaxExceeded)

	config := newTestConfig()
	got, err := config.ProtocolFeeAmount(20_000)
	require.NoError(t, err)
	require.Equal(t, uint64(600), got)
}
