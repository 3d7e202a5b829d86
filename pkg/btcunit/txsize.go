// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package btcunit

import (
	"fmt"

	"github.com/btcsuite/btcd/blockchain"
)

// WeightUnit expresses a transaction or input size in weight units (wu). It
// is the canonical size unit of this package, every other size unit is
// converted to weight units before any fee is computed.
type WeightUnit struct {
	wu uint64
}

// NewWeightUnit creates a new WeightUnit from a raw number of weight units.
func NewWeightUnit(wu uint64) WeightUnit {
	return WeightUnit{wu: wu}
}

// Val returns the raw number of weight units.
func (w WeightUnit) Val() uint64 {
	return w.wu
}

// ToVB converts the size to virtual bytes.
func (w WeightUnit) ToVB() VByte {
	return VByte{wu: w.wu}
}

// String returns the string representation of the weight unit.
func (w WeightUnit) String() string {
	return fmt.Sprintf("%d wu", w.wu)
}

// VByte expresses a size in virtual bytes. A virtual byte is four weight
// units. The value is kept in weight units so that converting back and forth
// never loses the witness discount.
type VByte struct {
	wu uint64
}

// NewVByte creates a new VByte from a number of virtual bytes.
func NewVByte(vb uint64) VByte {
	return VByte{wu: vb * blockchain.WitnessScaleFactor}
}

// Val returns the size in whole virtual bytes, rounding up.
func (v VByte) Val() uint64 {
	return (v.wu + blockchain.WitnessScaleFactor - 1) /
		blockchain.WitnessScaleFactor
}

// Add returns the sum of the two sizes.
func (v VByte) Add(other VByte) VByte {
	return VByte{wu: v.wu + other.wu}
}

// IsZero returns true if the size is zero.
func (v VByte) IsZero() bool {
	return v.wu == 0
}

// ToWU converts the size to weight units.
func (v VByte) ToWU() WeightUnit {
	return WeightUnit{wu: v.wu}
}

// String returns the string representation of the virtual size.
func (v VByte) String() string {
	return fmt.Sprintf("%d vb", v.Val())
}
