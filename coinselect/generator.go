// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinselect

import (
	"fmt"
	"math/rand"
	"sort"
)

// CandidateGenerator enumerates sufficient candidates from a list of buckets.
//
// If buckets is empty, the oracle is asked exactly once about the empty
// candidate: a sufficient answer yields a single empty candidate, an
// insufficient one yields ErrNotEnoughFunds. Otherwise either at least one
// candidate the oracle accepted is returned, or ErrNotEnoughFunds once
// growing a candidate through every bucket never satisfied the oracle.
type CandidateGenerator interface {
	// Generate returns the sufficient candidates found among the buckets.
	Generate(buckets []*Bucket, sufficient SufficiencyFunc) ([]Candidate,
		error)
}

// Strategy enumerates the available candidate generators.
type Strategy uint8

const (
	// StrategyAny considers buckets in any order.
	StrategyAny Strategy = iota

	// StrategyPreferConfirmed spends confirmed buckets before touching
	// unconfirmed ones.
	StrategyPreferConfirmed
)

// String returns the config name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyAny:
		return "any"

	case StrategyPreferConfirmed:
		return "prefer-confirmed"

	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// ParseStrategy returns the strategy with the given config name.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "any":
		return StrategyAny, nil

	case "prefer-confirmed", "":
		return StrategyPreferConfirmed, nil

	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Generator returns the generator implementing the strategy. The returned
// generator owns rng, which must not be shared with a generator running
// concurrently. A nil rng makes the generator deterministic.
func (s Strategy) Generator(rng *rand.Rand,
	maxAttempts int) (CandidateGenerator, error) {

	anyGen := AnyGenerator{Rand: rng, MaxAttempts: maxAttempts}

	switch s {
	case StrategyAny:
		return &anyGen, nil

	case StrategyPreferConfirmed:
		return &PreferConfirmedGenerator{Any: anyGen}, nil

	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownStrategy, s)
	}
}

// byValueDesc orders buckets by descending value.
func byValueDesc(a, b *Bucket) bool {
	return a.ValueSum() > b.ValueSum()
}

// confirmedFirst orders confirmed buckets before unconfirmed ones and by
// descending value within each group.
func confirmedFirst(a, b *Bucket) bool {
	if a.IsConfirmed() != b.IsConfirmed() {
		return a.IsConfirmed()
	}

	return byValueDesc(a, b)
}

// StripUnneeded removes buckets that are not needed to satisfy the oracle.
// The buckets are re-accumulated in descending value order and the shortest
// sufficient prefix is returned. If the empty candidate is already
// sufficient, the empty candidate is returned.
func StripUnneeded(candidate Candidate,
	sufficient SufficiencyFunc) (Candidate, error) {

	if sufficient == nil {
		return nil, ErrNilOracle
	}

	guard := newOracleGuard(sufficient)

	return stripUnneeded(candidate, guard.query, byValueDesc)
}

// stripUnneeded implements StripUnneeded with a configurable accumulation
// order.
func stripUnneeded(candidate Candidate, query SufficiencyFunc,
	less func(a, b *Bucket) bool) (Candidate, error) {

	ok, err := query(Candidate{}, 0)
	if err != nil {
		return nil, err
	}
	if ok {
		return Candidate{}, nil
	}

	sorted := candidate.clone()
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})

	for i := range sorted {
		prefix := sorted[:i+1:i+1]
		ok, err := query(prefix, prefix.ValueSum())
		if err != nil {
			return nil, err
		}
		if ok {
			return prefix, nil
		}
	}

	// The candidate was accepted before, so this only happens if the
	// oracle aborted in between or answers inconsistently. Keep the
	// candidate as it was proven.
	log.Warnf("Unable to strip candidate %v (value %v), keeping it as is",
		candidate.Descs(), candidate.ValueSum())

	return candidate, nil
}

// stripAll strips every candidate and removes duplicates the stripping
// produced, keeping the first occurrence.
func stripAll(candidates []Candidate, query SufficiencyFunc,
	less func(a, b *Bucket) bool) ([]Candidate, error) {

	stripped := make([]Candidate, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))

	for _, candidate := range candidates {
		c, err := stripUnneeded(candidate, query, less)
		if err != nil {
			return nil, err
		}

		key := c.key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		stripped = append(stripped, c)
	}

	return stripped, nil
}
