package whirlpool

import (
	"fmt"

	"cosmossdk.io/math"
)

// ProtocolFeeAmount returns the share of a swap fee that goes to the protocol at the given rate,
// rounded down.
func ProtocolFeeAmount(feeAmount uint64, protocolFeeRate uint16) (uint64, error) {
	if protocolFeeRate > MaxProtocolFeeRate {
		return 0, fmt.Errorf("%w: %d > %d", ErrProtocolFeeRateMaxExceeded, protocolFeeRate, MaxProtocolFeeRate)
	}
	amount := math.NewIntFromUint64(feeAmount).
		Mul(math.NewInt(int64(protocolFeeRate))).
		Quo(math.NewInt(ProtocolFeeRateDenominator))
	return amount.Uint64(), nil
}

// ProtocolFeeAmount returns the protocol share of a swap fee at the config's default rate.
func (c *WhirlpoolsConfig) ProtocolFeeAmount(feeAmount uint64) (uint64, error) {
	return ProtocolFeeAmount(feeAmount, c.DefaultProtocolFeeRate)
}
