// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinselect

import (
	"encoding/binary"
	"sort"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// DeterministicSeed derives a seed for the selection randomness from the
// outpoints of the UTXO snapshot. The order of the snapshot does not matter,
// so the same wallet state always yields the same selection while different
// states look unrelated.
func DeterministicSeed(utxos []Utxo) int64 {
	outpoints := make([]string, 0, len(utxos))
	for _, utxo := range utxos {
		outpoints = append(outpoints, utxo.OutPoint.String())
	}
	sort.Strings(outpoints)

	digest := chainhash.HashB([]byte(strings.Join(outpoints, "|")))

	//nolint:gosec // Any 64 bits of the digest make a fine seed.
	return int64(binary.LittleEndian.Uint64(digest[:8]))
}
