// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package funding

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcwallet/wtxmgr"
	"github.com/btcsuite/coinchooser/coinselect"
)

// UtxosFromCredits converts the wallet's unspent credits into a UTXO
// snapshot as of the given best height. Immature coinbase outputs are left
// out since they cannot be spent yet.
func UtxosFromCredits(credits []wtxmgr.Credit, bestHeight int32,
	params *chaincfg.Params) ([]coinselect.Utxo, error) {

	utxos := make([]coinselect.Utxo, 0, len(credits))
	for _, credit := range credits {
		confs := calcConf(credit.Height, bestHeight)

		if credit.FromCoinBase &&
			confs < int32(params.CoinbaseMaturity) {

			log.Tracef("Skipping immature coinbase output %v",
				credit.OutPoint)

			continue
		}

		_, addrs, _, err := txscript.ExtractPkScriptAddrs(
			credit.PkScript, params,
		)
		if err != nil {
			return nil, fmt.Errorf("unable to parse script of "+
				"%v: %w", credit.OutPoint, err)
		}

		// Non-standard scripts have no address and are grouped by
		// their script instead.
		var addr string
		if len(addrs) > 0 {
			addr = addrs[0].EncodeAddress()
		}

		utxos = append(utxos, coinselect.Utxo{
			OutPoint: credit.OutPoint,
			Value:    credit.Amount,
			PkScript: credit.PkScript,
			Address:  addr,

			//nolint:gosec // calcConf never returns a negative
			// depth.
			Confirmations: uint32(confs),
		})
	}

	return utxos, nil
}

// calcConf returns the number of confirmations of a transaction mined at
// txHeight as seen from curHeight.
func calcConf(txHeight, curHeight int32) int32 {
	switch {
	// Unmined transactions have no confirmations.
	case txHeight == -1:
		return 0

	// A block above the best block is not part of our chain view yet,
	// which happens during a reorg.
	case txHeight > curHeight:
		return 0

	default:
		return curHeight - txHeight + 1
	}
}
