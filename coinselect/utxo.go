// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinselect

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/coinset"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txsizes"
	"github.com/btcsuite/coinchooser/pkg/btcunit"
)

// Utxo is a spendable output taken from the wallet's UTXO snapshot. It is
// never modified once observed; buckets only reference it.
type Utxo struct {
	// OutPoint identifies the output.
	OutPoint wire.OutPoint

	// Value is the amount held by the output.
	Value btcutil.Amount

	// PkScript is the output script that locks the funds.
	PkScript []byte

	// Address is the encoded address owning the output. It may be empty
	// for non-standard scripts, in which case grouping falls back to the
	// script itself.
	Address string

	// Confirmations is the confirmation depth of the output. Zero means
	// the output is unconfirmed or only known locally.
	Confirmations uint32

	// SpendSize is the estimated marginal size of spending this output as
	// an input. When zero, the size is estimated from PkScript.
	SpendSize btcunit.VByte

	// Group is an optional coin-control label. UTXOs sharing a label are
	// spent together when coin-control grouping is used.
	Group string
}

// IsConfirmed returns true if the output has at least one confirmation.
func (u *Utxo) IsConfirmed() bool {
	return u.Confirmations > 0
}

// InputSize returns the estimated size of spending the output. If no
// explicit size was given, the minimum input size for the script type is
// used.
func (u *Utxo) InputSize() btcunit.VByte {
	if !u.SpendSize.IsZero() {
		return u.SpendSize
	}

	size := txsizes.GetMinInputVirtualSize(u.PkScript)

	//nolint:gosec // Input sizes are small positive numbers.
	return btcunit.NewVByte(uint64(size))
}

// selectableCoin adapts a Utxo to the coinset.Coin interface so that bucket
// totals are maintained by a coinset.CoinSet.
type selectableCoin struct {
	utxo *Utxo
}

// Hash returns the hash of the transaction that created the output.
func (c selectableCoin) Hash() *chainhash.Hash {
	return &c.utxo.OutPoint.Hash
}

// Index returns the output index.
func (c selectableCoin) Index() uint32 {
	return c.utxo.OutPoint.Index
}

// Value returns the output amount.
func (c selectableCoin) Value() btcutil.Amount {
	return c.utxo.Value
}

// PkScript returns the output script.
func (c selectableCoin) PkScript() []byte {
	return c.utxo.PkScript
}

// NumConfs returns the confirmation depth.
func (c selectableCoin) NumConfs() int64 {
	return int64(c.utxo.Confirmations)
}

// ValueAge returns the value multiplied by the confirmation depth.
func (c selectableCoin) ValueAge() int64 {
	return int64(c.utxo.Value) * c.NumConfs()
}

// A compile-time assertion to ensure selectableCoin implements coinset.Coin.
var _ coinset.Coin = (*selectableCoin)(nil)
