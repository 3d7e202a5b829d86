// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinselect

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/coinset"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/coinchooser/pkg/btcunit"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Bucket is a group of UTXOs that are spent together or not at all. Spending
// only some outputs of an address would still link the address to the rest
// of the transaction's inputs later on, so the address is the natural unit of
// selection.
//
// A bucket is built once per selection call and never mutated afterwards.
type Bucket struct {
	desc  string
	utxos []Utxo

	// valueSum and size are cached at construction time.
	valueSum btcutil.Amount
	size     btcunit.VByte

	// minConfs is the smallest confirmation depth of all members.
	minConfs uint32
}

// NewBucket creates a bucket holding a copy of the given UTXOs.
func NewBucket(desc string, utxos []Utxo) *Bucket {
	b := &Bucket{
		desc:  desc,
		utxos: make([]Utxo, len(utxos)),
	}
	copy(b.utxos, utxos)

	coins := make([]coinset.Coin, 0, len(b.utxos))
	for i := range b.utxos {
		utxo := &b.utxos[i]
		coins = append(coins, selectableCoin{utxo: utxo})

		b.size = b.size.Add(utxo.InputSize())

		if i == 0 || utxo.Confirmations < b.minConfs {
			b.minConfs = utxo.Confirmations
		}
	}
	b.valueSum = coinset.NewCoinSet(coins).TotalValue()

	return b
}

// Desc returns the grouping key the bucket was built for.
func (b *Bucket) Desc() string {
	return b.desc
}

// Utxos returns the bucket's members in insertion order.
func (b *Bucket) Utxos() []Utxo {
	utxos := make([]Utxo, len(b.utxos))
	copy(utxos, b.utxos)

	return utxos
}

// NumUtxos returns the number of members.
func (b *Bucket) NumUtxos() int {
	return len(b.utxos)
}

// ValueSum returns the total value of the bucket's members.
func (b *Bucket) ValueSum() btcutil.Amount {
	return b.valueSum
}

// SizeEstimate returns the estimated size of spending every member.
func (b *Bucket) SizeEstimate() btcunit.VByte {
	return b.size
}

// MinConfirmations returns the smallest confirmation depth of the members.
func (b *Bucket) MinConfirmations() uint32 {
	return b.minConfs
}

// IsConfirmed returns true iff the bucket has members and every one of them
// has at least one confirmation.
func (b *Bucket) IsConfirmed() bool {
	return len(b.utxos) > 0 && b.minConfs > 0
}

// IsExhausted returns true if the bucket has no members.
func (b *Bucket) IsExhausted() bool {
	return len(b.utxos) == 0
}

// EffectiveValue returns the bucket's value minus the fee of spending all of
// its members at the given fee rate.
func (b *Bucket) EffectiveValue(feeRate btcunit.SatPerKVByte) btcutil.Amount {
	return b.valueSum - feeRate.FeeForVSize(b.size)
}

// String returns a short description of the bucket.
func (b *Bucket) String() string {
	return fmt.Sprintf("bucket(%s, utxos=%d, value=%v, size=%v, confs=%d)",
		b.desc, len(b.utxos), b.valueSum, b.size, b.minConfs)
}

// GroupingRule maps a UTXO to the key of the bucket it belongs to.
type GroupingRule func(utxo *Utxo) string

// GroupByAddress groups UTXOs by owning address. Outputs without a known
// address are grouped by their script.
func GroupByAddress(utxo *Utxo) string {
	if utxo.Address != "" {
		return utxo.Address
	}

	return hex.EncodeToString(utxo.PkScript)
}

// GroupByCoinControl groups UTXOs by their user-assigned coin-control label,
// falling back to the address for unlabelled outputs.
func GroupByCoinControl(utxo *Utxo) string {
	if utxo.Group != "" {
		return "group:" + utxo.Group
	}

	return GroupByAddress(utxo)
}

const (
	// GroupingAddress is the config name of GroupByAddress.
	GroupingAddress = "address"

	// GroupingCoinControl is the config name of GroupByCoinControl.
	GroupingCoinControl = "coincontrol"
)

// ParseGroupingRule returns the grouping rule with the given config name.
func ParseGroupingRule(name string) (GroupingRule, error) {
	switch name {
	case GroupingAddress, "":
		return GroupByAddress, nil

	case GroupingCoinControl:
		return GroupByCoinControl, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGrouping, name)
	}
}

// Bucketize groups the UTXOs into buckets using the given rule. Every UTXO
// ends up in exactly one bucket. Buckets are returned in the order their key
// was first seen and keep the UTXO order of the input. Bucketize never fails;
// an empty snapshot yields no buckets.
func Bucketize(utxos []Utxo, rule GroupingRule) []*Bucket {
	if rule == nil {
		rule = GroupByAddress
	}

	var (
		keys    []string
		members = make(map[string][]Utxo)
	)
	for i := range utxos {
		key := rule(&utxos[i])
		if _, ok := members[key]; !ok {
			keys = append(keys, key)
		}

		members[key] = append(members[key], utxos[i])
	}

	buckets := make([]*Bucket, 0, len(keys))
	for _, key := range keys {
		buckets = append(buckets, NewBucket(key, members[key]))
	}

	return buckets
}

// ValidateBuckets checks the bucket invariants. It returns an
// *InvalidBucketError if a bucket is nil, holds a negative value, shares a
// UTXO with another bucket, or caches a value sum that disagrees with its
// members.
func ValidateBuckets(buckets []*Bucket) error {
	seen := fn.NewSet[wire.OutPoint]()

	for _, bucket := range buckets {
		if bucket == nil {
			return &InvalidBucketError{Reason: "nil bucket"}
		}

		var sum btcutil.Amount
		for _, utxo := range bucket.utxos {
			if utxo.Value < 0 {
				return &InvalidBucketError{
					Desc: bucket.desc,
					Reason: fmt.Sprintf("negative value %v "+
						"for %v", utxo.Value,
						utxo.OutPoint),
				}
			}

			if seen.Contains(utxo.OutPoint) {
				return &InvalidBucketError{
					Desc: bucket.desc,
					Reason: fmt.Sprintf("duplicated utxo %v",
						utxo.OutPoint),
				}
			}
			seen.Add(utxo.OutPoint)

			sum += utxo.Value
		}

		if sum != bucket.valueSum {
			return &InvalidBucketError{
				Desc: bucket.desc,
				Reason: fmt.Sprintf("cached value %v does not "+
					"match members %v", bucket.valueSum,
					sum),
			}
		}
	}

	return nil
}

// FilterBuckets drops buckets that cannot contribute to a selection: those
// without value and, when a fee rate is given, those that cost more to spend
// than they are worth. The relative order of the kept buckets is preserved.
func FilterBuckets(buckets []*Bucket,
	feeRate fn.Option[btcunit.SatPerKVByte]) []*Bucket {

	kept := make([]*Bucket, 0, len(buckets))
	for _, bucket := range buckets {
		if bucket.ValueSum() <= 0 {
			log.Tracef("Dropping empty %v", bucket)
			continue
		}

		yieldsPositively := true
		feeRate.WhenSome(func(rate btcunit.SatPerKVByte) {
			yieldsPositively = bucket.EffectiveValue(rate) > 0
		})
		if !yieldsPositively {
			log.Debugf("Dropping uneconomical %v", bucket)
			continue
		}

		kept = append(kept, bucket)
	}

	return kept
}
