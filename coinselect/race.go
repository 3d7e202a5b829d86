// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinselect

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// RaceStrategies runs the generators concurrently over the same buckets and
// pools their candidates, keeping the first occurrence of every bucket set in
// generator order.
//
// Each generator must own its randomness and the oracle must be safe for
// concurrent use. ErrNotEnoughFunds is returned only if every generator
// failed with it. Any other error is returned as is.
func RaceStrategies(buckets []*Bucket, sufficient SufficiencyFunc,
	generators ...CandidateGenerator) ([]Candidate, error) {

	if sufficient == nil {
		return nil, ErrNilOracle
	}

	if len(generators) == 0 {
		return nil, fmt.Errorf("%w: no candidate generators",
			ErrInvalidConfig)
	}

	results := make([][]Candidate, len(generators))

	var g errgroup.Group
	for i, gen := range generators {
		g.Go(func() error {
			candidates, err := gen.Generate(buckets, sufficient)
			switch {
			case errors.Is(err, ErrNotEnoughFunds):
				log.Tracef("Generator %d found no candidates", i)
				return nil

			case err != nil:
				return err
			}

			results[i] = candidates

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, err
	}

	var (
		pooled []Candidate
		seen   = make(map[string]struct{})
	)
	for _, candidates := range results {
		for _, c := range candidates {
			key := c.key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			pooled = append(pooled, c)
		}
	}

	if len(pooled) == 0 {
		return nil, ErrNotEnoughFunds
	}

	log.Debugf("Raced %d generator(s) for %d distinct candidate(s)",
		len(generators), len(pooled))

	return pooled, nil
}
