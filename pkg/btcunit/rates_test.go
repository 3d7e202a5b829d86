package btcunit

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
)

// TestFeeRateConversions checks that sat/vb and sat/kvb rates describe the
// same canonical rate.
func TestFeeRateConversions(t *testing.T) {
	t.Parallel()

	perVB := NewSatPerVByte(1)
	perKVB := NewSatPerKVByte(1000)

	require.True(t, perVB.ToSatPerKVByte().Equal(perKVB))
	require.Equal(t, btcutil.Amount(1000), perKVB.Val())
	require.Equal(t, btcutil.Amount(1000), perVB.ToSatPerKVByte().Val())
	require.Equal(t, "1.000 sat/vb", perKVB.ToSatPerVByte().String())
	require.Equal(t, "1000.000 sat/kvb", perKVB.String())
}

// TestFeeForVSize checks fee calculation, including that fractional fees are
// rounded up.
func TestFeeForVSize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		rate     SatPerKVByte
		size     VByte
		expected btcutil.Amount
	}{
		{
			name:     "whole sats",
			rate:     NewSatPerKVByte(1000),
			size:     NewVByte(250),
			expected: 250,
		},
		{
			name:     "fractional fee rounds up",
			rate:     NewSatPerKVByte(1001),
			size:     NewVByte(100),
			expected: 101,
		},
		{
			name:     "witness discounted size",
			rate:     NewSatPerKVByte(2000),
			size:     NewWeightUnit(271).ToVB(),
			expected: 136,
		},
		{
			name:     "zero rate",
			rate:     ZeroSatPerKVByte,
			size:     NewVByte(500),
			expected: 0,
		},
		{
			name:     "zero value rate",
			rate:     SatPerKVByte{},
			size:     NewVByte(500),
			expected: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.expected, tc.rate.FeeForVSize(tc.size))
			require.Equal(
				t, tc.expected,
				tc.rate.ToSatPerVByte().FeeForVSize(tc.size),
			)
		})
	}
}

// TestFeeRateCompare checks the comparison helpers.
func TestFeeRateCompare(t *testing.T) {
	t.Parallel()

	low := NewSatPerKVByte(1000)
	high := NewSatPerKVByte(2000)

	require.True(t, high.GreaterThan(low))
	require.False(t, low.GreaterThan(high))
	require.False(t, low.GreaterThan(low))
	require.True(t, ZeroSatPerKVByte.IsZero())
	require.True(t, SatPerKVByte{}.IsZero())
	require.False(t, low.IsZero())
}
