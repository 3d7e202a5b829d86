// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinselect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/coinchooser/pkg/btcunit"
)

// Candidate is an ordered set of buckets considered together. While a
// candidate is being grown buckets are only ever appended.
type Candidate []*Bucket

// ValueSum returns the total value of all buckets in the candidate.
func (c Candidate) ValueSum() btcutil.Amount {
	var sum btcutil.Amount
	for _, bucket := range c {
		sum += bucket.ValueSum()
	}

	return sum
}

// SizeEstimate returns the estimated size of spending every UTXO of the
// candidate.
func (c Candidate) SizeEstimate() btcunit.VByte {
	var size btcunit.VByte
	for _, bucket := range c {
		size = size.Add(bucket.SizeEstimate())
	}

	return size
}

// Utxos returns the UTXOs of all buckets, bucket by bucket. These are the
// inputs the transaction builder spends.
func (c Candidate) Utxos() []Utxo {
	var utxos []Utxo
	for _, bucket := range c {
		utxos = append(utxos, bucket.utxos...)
	}

	return utxos
}

// NumUtxos returns the number of UTXOs in the candidate.
func (c Candidate) NumUtxos() int {
	var n int
	for _, bucket := range c {
		n += bucket.NumUtxos()
	}

	return n
}

// NumUnconfirmed returns the number of buckets that are not confirmed.
func (c Candidate) NumUnconfirmed() int {
	var n int
	for _, bucket := range c {
		if !bucket.IsConfirmed() {
			n++
		}
	}

	return n
}

// Descs returns the descriptions of the candidate's buckets.
func (c Candidate) Descs() []string {
	descs := make([]string, 0, len(c))
	for _, bucket := range c {
		descs = append(descs, bucket.Desc())
	}

	return descs
}

// clone returns a copy of the candidate that does not share its backing
// array.
func (c Candidate) clone() Candidate {
	cloned := make(Candidate, len(c))
	copy(cloned, c)

	return cloned
}

// concat returns a new candidate holding c followed by other.
func (c Candidate) concat(other Candidate) Candidate {
	joined := make(Candidate, 0, len(c)+len(other))
	joined = append(joined, c...)

	return append(joined, other...)
}

// key returns an order independent identity of the bucket set.
func (c Candidate) key() string {
	ptrs := make([]string, 0, len(c))
	for _, bucket := range c {
		ptrs = append(ptrs, fmt.Sprintf("%p", bucket))
	}
	sort.Strings(ptrs)

	return strings.Join(ptrs, ",")
}
