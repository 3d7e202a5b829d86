// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinselect

import (
	"math/rand"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/davecgh/go-spew/spew"
)

// Selection is the outcome of a successful ChooseBuckets call.
type Selection struct {
	// Buckets are the chosen buckets. Every UTXO of every bucket is
	// spent.
	Buckets Candidate

	// Penalty is the scorer's penalty of the chosen buckets. It is zero
	// if no scorer was given.
	Penalty float64

	// NumCandidates is the number of sufficient candidates the choice was
	// made from.
	NumCandidates int
}

// Utxos returns the UTXOs to spend.
func (s *Selection) Utxos() []Utxo {
	return s.Buckets.Utxos()
}

// ValueSum returns the total value of the chosen UTXOs.
func (s *Selection) ValueSum() btcutil.Amount {
	return s.Buckets.ValueSum()
}

// Chooser selects which buckets of a wallet's UTXO snapshot fund a
// transaction. A Chooser holds no state between calls and may be used
// concurrently.
type Chooser struct {
	cfg      Config
	strategy Strategy
	grouping GroupingRule
}

// NewChooser creates a chooser from the given config. A nil config means
// DefaultConfig.
func NewChooser(cfg *Config) (*Chooser, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	strategy, err := ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}

	grouping, err := ParseGroupingRule(cfg.Grouping)
	if err != nil {
		return nil, err
	}

	return &Chooser{
		cfg:      *cfg,
		strategy: strategy,
		grouping: grouping,
	}, nil
}

// Config returns a copy of the chooser's config.
func (c *Chooser) Config() Config {
	return c.cfg
}

// Buckets groups the UTXOs with the configured rule, validates the result
// and drops the buckets that cannot contribute.
func (c *Chooser) Buckets(utxos []Utxo) ([]*Bucket, error) {
	buckets := Bucketize(utxos, c.grouping)

	err := ValidateBuckets(buckets)
	if err != nil {
		return nil, err
	}

	return FilterBuckets(buckets, c.cfg.effectiveFeeRate()), nil
}

// ChooseBuckets picks the buckets to spend from the UTXO snapshot. The
// oracle decides which bucket sets can fund the transaction and the scorer
// picks the best of them. A nil scorer takes the first sufficient candidate.
//
// ErrNotEnoughFunds is returned if no set of buckets satisfies the oracle.
// Invalid buckets and oracle errors are returned unchanged.
func (c *Chooser) ChooseBuckets(utxos []Utxo, sufficient SufficiencyFunc,
	scorer Scorer) (*Selection, error) {

	if sufficient == nil {
		return nil, ErrNilOracle
	}

	buckets, err := c.Buckets(utxos)
	if err != nil {
		return nil, err
	}

	seed := c.cfg.Seed
	if seed == 0 {
		seed = DeterministicSeed(utxos)
	}

	log.Debugf("Choosing among %d bucket(s) from %d utxo(s) with "+
		"strategy %v (race=%v)", len(buckets), len(utxos), c.strategy,
		c.cfg.Race)
	log.Tracef("Buckets: %v", newLogClosure(func() string {
		return spew.Sdump(describeBuckets(buckets))
	}))

	candidates, err := c.generate(buckets, sufficient, seed)
	if err != nil {
		return nil, err
	}

	best, err := SelectBest(candidates, scorer)
	if err != nil {
		return nil, err
	}

	selection := &Selection{
		Buckets:       best,
		NumCandidates: len(candidates),
	}
	if scorer != nil {
		selection.Penalty = scorer.Penalty(best)
	}

	log.Debugf("Chose %d bucket(s) holding %d utxo(s) worth %v out of "+
		"%d candidate(s)", len(best), best.NumUtxos(), best.ValueSum(),
		len(candidates))

	return selection, nil
}

// generate runs the configured strategy, or every strategy when racing.
func (c *Chooser) generate(buckets []*Bucket, sufficient SufficiencyFunc,
	seed int64) ([]Candidate, error) {

	if !c.cfg.Race {
		//nolint:gosec // Selection only needs unpredictability, not
		// cryptographic strength.
		rng := rand.New(rand.NewSource(seed))

		gen, err := c.strategy.Generator(rng, c.cfg.MaxAttempts)
		if err != nil {
			return nil, err
		}

		return gen.Generate(buckets, sufficient)
	}

	strategies := []Strategy{c.strategy}
	for _, s := range []Strategy{StrategyPreferConfirmed, StrategyAny} {
		if s != c.strategy {
			strategies = append(strategies, s)
		}
	}

	generators := make([]CandidateGenerator, 0, len(strategies))
	for i, s := range strategies {
		//nolint:gosec // See above.
		rng := rand.New(rand.NewSource(seed + int64(i)))

		gen, err := s.Generator(rng, c.cfg.MaxAttempts)
		if err != nil {
			return nil, err
		}
		generators = append(generators, gen)
	}

	candidates, err := RaceStrategies(buckets, sufficient, generators...)
	if err != nil {
		return nil, err
	}

	if c.strategy == StrategyPreferConfirmed {
		candidates = preferConfirmed(candidates)
	}

	return candidates, nil
}

// preferConfirmed drops the candidates spending unconfirmed buckets if any
// candidate makes do with confirmed ones.
func preferConfirmed(candidates []Candidate) []Candidate {
	confirmed := make([]Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.NumUnconfirmed() == 0 {
			confirmed = append(confirmed, candidate)
		}
	}

	if len(confirmed) == 0 {
		return candidates
	}

	log.Debugf("Keeping %d of %d raced candidate(s) spending confirmed "+
		"buckets only", len(confirmed), len(candidates))

	return confirmed
}

// describeBuckets summarizes buckets for trace logging.
func describeBuckets(buckets []*Bucket) []string {
	descs := make([]string, 0, len(buckets))
	for _, bucket := range buckets {
		descs = append(descs, bucket.String())
	}

	return descs
}
