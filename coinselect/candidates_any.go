// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinselect

import (
	"math/rand"
	"sort"

	"github.com/btcsuite/btcd/btcutil"
)

// DefaultMaxAttempts is the default number of randomized passes the
// AnyGenerator makes over the buckets.
const DefaultMaxAttempts = 100

// AnyGenerator generates candidates without regard to which buckets come
// first. Every bucket that is sufficient on its own is a candidate. On top of
// that a number of randomized passes shuffle the buckets and accumulate them
// until the oracle is satisfied. Finally each candidate is stripped of the
// buckets it does not need.
//
// Without a Rand a single pass in descending value order is made, which
// keeps the generator deterministic.
type AnyGenerator struct {
	// Rand is the randomness source used to shuffle the buckets. It is
	// owned by the generator for the duration of a call.
	Rand *rand.Rand

	// MaxAttempts caps the number of randomized passes. Zero means
	// DefaultMaxAttempts.
	MaxAttempts int
}

// A compile-time assertion to ensure AnyGenerator implements
// CandidateGenerator.
var _ CandidateGenerator = (*AnyGenerator)(nil)

// Generate returns the sufficient candidates found among the buckets.
func (a *AnyGenerator) Generate(buckets []*Bucket,
	sufficient SufficiencyFunc) ([]Candidate, error) {

	if sufficient == nil {
		return nil, ErrNilOracle
	}

	err := ValidateBuckets(buckets)
	if err != nil {
		return nil, err
	}

	guard := newOracleGuard(sufficient)

	candidates, err := a.generate(buckets, guard.query)
	if err != nil {
		return nil, err
	}

	candidates, err = stripAll(candidates, guard.query, byValueDesc)
	if err != nil {
		return nil, err
	}

	log.Debugf("Generated %d candidate(s) from %d bucket(s) with %d "+
		"oracle queries", len(candidates), len(buckets), guard.queries)

	return candidates, nil
}

// attempts returns the number of randomized passes to make over n buckets.
// More passes than (n-1)*10+1 rarely turn up new candidates.
func (a *AnyGenerator) attempts(n int) int {
	if a.Rand == nil {
		return 1
	}

	maxAttempts := a.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	return min(maxAttempts, (n-1)*10+1)
}

// arrange puts the bucket indexes into the order of the next pass.
func (a *AnyGenerator) arrange(order []int, buckets []*Bucket) {
	if a.Rand == nil {
		sort.SliceStable(order, func(i, j int) bool {
			return byValueDesc(buckets[order[i]], buckets[order[j]])
		})

		return
	}

	a.Rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
}

// generate produces the unstripped candidates. The query function is called
// at most once per growth step.
func (a *AnyGenerator) generate(buckets []*Bucket,
	query SufficiencyFunc) ([]Candidate, error) {

	if len(buckets) == 0 {
		ok, err := query(Candidate{}, 0)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotEnoughFunds
		}

		return []Candidate{{}}, nil
	}

	var (
		candidates []Candidate
		seen       = make(map[string]struct{})
	)
	addCandidate := func(c Candidate) {
		key := c.key()
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}

		candidates = append(candidates, c)
	}

	// Every bucket that suffices on its own is a candidate.
	for _, bucket := range buckets {
		single := Candidate{bucket}

		ok, err := query(single, bucket.ValueSum())
		if err != nil {
			return nil, err
		}
		if ok {
			addCandidate(single)
		}
	}

	order := make([]int, len(buckets))
	for i := range order {
		order[i] = i
	}

	for attempt := 0; attempt < a.attempts(len(buckets)); attempt++ {
		a.arrange(order, buckets)

		candidate, ok, err := accumulate(buckets, order, query)
		if err != nil {
			return nil, err
		}

		if !ok {
			// A full pass that never became sufficient means
			// no other pass will either, unless the oracle
			// stopped answering. Candidates proven so far
			// remain valid.
			if len(candidates) > 0 {
				break
			}

			return nil, ErrNotEnoughFunds
		}

		addCandidate(candidate)
	}

	return candidates, nil
}

// accumulate appends buckets in the given order until the oracle is
// satisfied. The returned candidate lists its buckets in their original
// order.
func accumulate(buckets []*Bucket, order []int,
	query SufficiencyFunc) (Candidate, bool, error) {

	var (
		candidate = make(Candidate, 0, len(order))
		valueSum  btcutil.Amount
	)
	for count, idx := range order {
		candidate = append(candidate, buckets[idx])
		valueSum += buckets[idx].ValueSum()

		ok, err := query(candidate, valueSum)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}

		used := make([]int, count+1)
		copy(used, order[:count+1])
		sort.Ints(used)

		sufficient := make(Candidate, 0, len(used))
		for _, i := range used {
			sufficient = append(sufficient, buckets[i])
		}

		return sufficient, true, nil
	}

	return nil, false, nil
}
