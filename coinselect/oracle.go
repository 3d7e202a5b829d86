// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinselect

import (
	"errors"

	"github.com/btcsuite/btcd/btcutil"
)

// SufficiencyFunc is the caller-supplied oracle that decides whether a
// candidate can fund the transaction. It receives the candidate and its
// precomputed value sum and returns true iff the sum, net of the fee this
// particular candidate would incur, covers the payment (plus whatever change
// policy the caller enforces).
//
// The engine never computes fees itself. The oracle must be a pure function
// of its inputs for the duration of one selection call, and it must be safe
// for concurrent use if strategies are raced against each other.
//
// A returned error is handed back to the caller unchanged, except for errors
// matching ErrOracleAbort, which make the engine treat every further query
// of the same call as insufficient.
type SufficiencyFunc func(candidate Candidate,
	valueSum btcutil.Amount) (bool, error)

// oracleGuard wraps a SufficiencyFunc for the duration of one generation
// call. It remembers verdicts so that no bucket set is ever queried twice,
// and it latches an abort.
type oracleGuard struct {
	sufficient SufficiencyFunc

	// verdicts maps a candidate key to the oracle's answer.
	verdicts map[string]bool

	// queries is the number of times the oracle was actually called.
	queries int

	// aborted is set once the oracle returned ErrOracleAbort.
	aborted bool
}

// newOracleGuard creates a guard around the given oracle.
func newOracleGuard(sufficient SufficiencyFunc) *oracleGuard {
	return &oracleGuard{
		sufficient: sufficient,
		verdicts:   make(map[string]bool),
	}
}

// query asks the oracle about the candidate, answering from memory when the
// same bucket set was asked about before.
func (g *oracleGuard) query(candidate Candidate,
	valueSum btcutil.Amount) (bool, error) {

	if g.aborted {
		return false, nil
	}

	key := candidate.key()
	if verdict, ok := g.verdicts[key]; ok {
		return verdict, nil
	}

	// Hand the oracle its own copy so it can't alias the generator's
	// working slice.
	g.queries++
	ok, err := g.sufficient(candidate.clone(), valueSum)

	switch {
	case errors.Is(err, ErrOracleAbort):
		log.Debugf("Sufficiency oracle aborted after %d queries: %v",
			g.queries, err)

		g.aborted = true

		return false, nil

	case err != nil:
		return false, err
	}

	g.verdicts[key] = ok

	return ok, nil
}
