// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package btcunit provides a set of types for dealing with bitcoin sizes and
// fee rates.
package btcunit

import (
	"math"
	"math/big"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
)

const (
	// kilo is a generic multiplier for kilo units.
	kilo = 1000

	// floatStringPrecision is the number of decimal places used when a fee
	// rate is printed, so 1 sat/kvb still shows up as 0.001 sat/vb.
	floatStringPrecision = 3
)

// ZeroSatPerKVByte is a fee rate of 0 sat/kvb.
var ZeroSatPerKVByte = NewSatPerKVByte(0)

// feeRate is the canonical fee rate, satoshis per kilo-weight-unit, kept as a
// rational number so that unit conversions never round.
type feeRate struct {
	satsPerKWU *big.Rat
}

// newFeeRate returns fee/size expressed in sat/kwu. A zero size yields a zero
// rate.
func newFeeRate(fee btcutil.Amount, size WeightUnit) feeRate {
	if size.wu == 0 {
		return feeRate{satsPerKWU: new(big.Rat)}
	}

	return feeRate{satsPerKWU: big.NewRat(
		int64(fee)*kilo, clampInt64(size.wu),
	)}
}

// rat returns the rate, treating the zero value as 0 sat/kwu.
func (f feeRate) rat() *big.Rat {
	if f.satsPerKWU == nil {
		return new(big.Rat)
	}

	return f.satsPerKWU
}

// feeFor returns the fee for the given weight. The fee is rounded up so a
// transaction never pays less than the requested rate.
func (f feeRate) feeFor(size WeightUnit) btcutil.Amount {
	fee := new(big.Rat).Mul(
		f.rat(), big.NewRat(clampInt64(size.wu), kilo),
	)

	num, denom := fee.Num(), fee.Denom()

	// ceil(num / denom) = (num + denom - 1) / denom.
	result := new(big.Int).Add(num, denom)
	result.Sub(result, big.NewInt(1))
	result.Div(result, denom)

	return btcutil.Amount(result.Int64())
}

// cmp compares two fee rates.
func (f feeRate) cmp(other feeRate) int {
	return f.rat().Cmp(other.rat())
}

// SatPerKVByte is a fee rate in sat/kvb, the unit the wallet's relay policy
// and the transaction author speak.
type SatPerKVByte struct {
	feeRate
}

// NewSatPerKVByte creates a new fee rate of the given sats per kvb.
func NewSatPerKVByte(rate btcutil.Amount) SatPerKVByte {
	return SatPerKVByte{newFeeRate(rate, NewVByte(kilo).ToWU())}
}

// Val returns the rate in whole sat/kvb, truncated. This is the value the
// txauthor and txrules packages expect.
func (s SatPerKVByte) Val() btcutil.Amount {
	perKVB := new(big.Rat).Mul(
		s.rat(), big.NewRat(blockchain.WitnessScaleFactor, 1),
	)

	return btcutil.Amount(
		new(big.Int).Quo(perKVB.Num(), perKVB.Denom()).Int64(),
	)
}

// FeeForVSize returns the fee for a transaction of the given virtual size.
func (s SatPerKVByte) FeeForVSize(vb VByte) btcutil.Amount {
	return s.feeFor(vb.ToWU())
}

// ToSatPerVByte converts the rate to sat/vb.
func (s SatPerKVByte) ToSatPerVByte() SatPerVByte {
	return SatPerVByte(s)
}

// IsZero returns true if the rate is 0 sat/kvb.
func (s SatPerKVByte) IsZero() bool {
	return s.rat().Sign() == 0
}

// GreaterThan returns true if the rate is greater than the other rate.
func (s SatPerKVByte) GreaterThan(other SatPerKVByte) bool {
	return s.cmp(other.feeRate) > 0
}

// Equal returns true if both rates are the same.
func (s SatPerKVByte) Equal(other SatPerKVByte) bool {
	return s.cmp(other.feeRate) == 0
}

// String returns a human-readable string of the fee rate.
func (s SatPerKVByte) String() string {
	perKVB := new(big.Rat).Mul(
		s.rat(), big.NewRat(blockchain.WitnessScaleFactor, 1),
	)

	return perKVB.FloatString(floatStringPrecision) + " sat/kvb"
}

// SatPerVByte is a fee rate in sat/vb.
type SatPerVByte struct {
	feeRate
}

// NewSatPerVByte creates a new fee rate of the given sats per vbyte.
func NewSatPerVByte(rate btcutil.Amount) SatPerVByte {
	return SatPerVByte{newFeeRate(rate, NewVByte(1).ToWU())}
}

// FeeForVSize returns the fee for a transaction of the given virtual size.
func (s SatPerVByte) FeeForVSize(vb VByte) btcutil.Amount {
	return s.feeFor(vb.ToWU())
}

// ToSatPerKVByte converts the rate to sat/kvb.
func (s SatPerVByte) ToSatPerKVByte() SatPerKVByte {
	return SatPerKVByte(s)
}

// String returns a human-readable string of the fee rate.
func (s SatPerVByte) String() string {
	perVB := new(big.Rat).Mul(
		s.rat(), big.NewRat(blockchain.WitnessScaleFactor, kilo),
	)

	return perVB.FloatString(floatStringPrecision) + " sat/vb"
}

// clampInt64 converts a uint64 to an int64, capping at math.MaxInt64. Sizes
// are bounded by consensus so the cap is never hit in practice.
func clampInt64(u uint64) int64 {
	if u > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(u)
}
