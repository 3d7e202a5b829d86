// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinselect

import (
	"errors"

	"github.com/btcsuite/btcd/btcutil"
)

// PreferConfirmedGenerator spends confirmed funds before unconfirmed ones.
// Unconfirmed outputs can still be invalidated by a reorg or a double spend,
// and mixing them with confirmed ones links the two address sets for no
// reason.
//
// The buckets are split into a confirmed and an unconfirmed tier. The
// AnyGenerator first runs over the confirmed tier alone. Only if no subset of
// it is sufficient are all confirmed buckets committed and the unconfirmed
// tier searched on top of them.
type PreferConfirmedGenerator struct {
	// Any is the generator used within each tier.
	Any AnyGenerator
}

// A compile-time assertion to ensure PreferConfirmedGenerator implements
// CandidateGenerator.
var _ CandidateGenerator = (*PreferConfirmedGenerator)(nil)

// Generate returns the sufficient candidates found among the buckets.
func (p *PreferConfirmedGenerator) Generate(buckets []*Bucket,
	sufficient SufficiencyFunc) ([]Candidate, error) {

	if sufficient == nil {
		return nil, ErrNilOracle
	}

	err := ValidateBuckets(buckets)
	if err != nil {
		return nil, err
	}

	guard := newOracleGuard(sufficient)

	var confirmed, unconfirmed []*Bucket
	for _, bucket := range buckets {
		if bucket.IsConfirmed() {
			confirmed = append(confirmed, bucket)
		} else {
			unconfirmed = append(unconfirmed, bucket)
		}
	}

	var (
		committed    Candidate
		committedSum btcutil.Amount
	)
	for _, tier := range [][]*Bucket{confirmed, unconfirmed} {
		prefix, prefixSum := committed, committedSum

		// Within a tier the oracle is asked about the committed
		// buckets of earlier tiers plus the tier's own subset.
		tierQuery := func(c Candidate, valueSum btcutil.Amount) (bool,
			error) {

			return guard.query(prefix.concat(c), prefixSum+valueSum)
		}

		candidates, err := p.Any.generate(tier, tierQuery)
		switch {
		case errors.Is(err, ErrNotEnoughFunds):
			committed = committed.concat(tier)
			committedSum += Candidate(tier).ValueSum()

			continue

		case err != nil:
			return nil, err
		}

		full := make([]Candidate, 0, len(candidates))
		for _, c := range candidates {
			full = append(full, prefix.concat(c))
		}

		full, err = stripAll(full, guard.query, confirmedFirst)
		if err != nil {
			return nil, err
		}

		log.Debugf("Generated %d candidate(s) from %d confirmed and "+
			"%d unconfirmed bucket(s) with %d oracle queries",
			len(full), len(confirmed), len(unconfirmed),
			guard.queries)

		return full, nil
	}

	return nil, ErrNotEnoughFunds
}
