// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinselect

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/fn/v2"
)

const (
	// minChangeRatio scales the smallest payment output to the lower end
	// of the change range that blends in with the payments.
	minChangeRatio = 0.75

	// maxChangeRatio scales the largest payment output to the upper end of
	// that range.
	maxChangeRatio = 1.33

	// changeRangeSmoothing keeps the relative distance from the change
	// range finite for tiny outputs.
	changeRangeSmoothing = 10_000
)

// Scorer assigns a penalty to a sufficient candidate. Lower is better.
type Scorer interface {
	// Penalty returns the penalty of the candidate.
	Penalty(candidate Candidate) float64
}

// ScorerFunc is an adapter to allow the use of ordinary functions as a
// Scorer.
type ScorerFunc func(candidate Candidate) float64

// Penalty calls f(candidate).
func (f ScorerFunc) Penalty(candidate Candidate) float64 {
	return f(candidate)
}

// SelectBest returns the candidate with the lowest penalty. Ties go to the
// candidate seen first, and a nil scorer selects the first candidate.
func SelectBest(candidates []Candidate, scorer Scorer) (Candidate, error) {
	if len(candidates) == 0 {
		return nil, ErrNotEnoughFunds
	}

	if scorer == nil {
		return candidates[0], nil
	}

	best, bestPenalty := 0, scorer.Penalty(candidates[0])
	for i := 1; i < len(candidates); i++ {
		penalty := scorer.Penalty(candidates[i])
		log.Tracef("Candidate %v has penalty %.4f",
			candidates[i].Descs(), penalty)

		if penalty < bestPenalty {
			best, bestPenalty = i, penalty
		}
	}

	log.Debugf("Selected candidate %d of %d with penalty %.4f", best+1,
		len(candidates), bestPenalty)

	return candidates[best], nil
}

// PenaltyWeights are the weights of the PrivacyScorer's penalty terms.
type PenaltyWeights struct {
	// BucketCount is charged for every bucket beyond the first.
	BucketCount float64 `long:"bucketweight" description:"Penalty per additional bucket spent"`

	// Waste scales the relative distance of the change from the range of
	// the payment outputs.
	Waste float64 `long:"wasteweight" description:"Penalty scale for change outside the range of the payment outputs"`

	// DustChange is charged once if the change is positive, below the
	// output range and below DustLimit.
	DustChange float64 `long:"dustweight" description:"Penalty for leaving change below the dust limit"`

	// Privacy is charged for every bucket holding a reused or otherwise
	// linked address.
	Privacy float64 `long:"privacyweight" description:"Penalty per bucket with a reused or linked address"`

	// DustLimit is the change amount below which the DustChange penalty
	// applies.
	DustLimit btcutil.Amount `long:"dustlimit" description:"Change below this many satoshis is considered uneconomical"`

	// LargeChangeUnit is the amount of excess change that costs as much as
	// one extra bucket.
	LargeChangeUnit btcutil.Amount `long:"largechangeunit" description:"Change above the output range costs one extra bucket per this many satoshis"`
}

// DefaultPenaltyWeights returns the default weights. Change under 0.001 BTC
// costs as much as one extra input, and so does every 5 BTC of change above
// the range of the payment outputs.
func DefaultPenaltyWeights() PenaltyWeights {
	return PenaltyWeights{
		BucketCount:     1,
		Waste:           1,
		DustChange:      1,
		Privacy:         1,
		DustLimit:       btcutil.SatoshiPerBitcoin / 1000,
		LargeChangeUnit: 5 * btcutil.SatoshiPerBitcoin,
	}
}

// Validate checks that the weights are usable.
func (w *PenaltyWeights) Validate() error {
	switch {
	case w.BucketCount < 0, w.Waste < 0, w.DustChange < 0,
		w.Privacy < 0:

		return fmt.Errorf("%w: penalty weights must not be negative",
			ErrInvalidConfig)

	case w.DustLimit < 0:
		return fmt.Errorf("%w: dust limit must not be negative",
			ErrInvalidConfig)

	case w.LargeChangeUnit <= 0:
		return fmt.Errorf("%w: large change unit must be positive",
			ErrInvalidConfig)
	}

	return nil
}

// PrivacyScorer penalizes candidates that spend many buckets, produce change
// that stands out from the payment outputs, or touch reused addresses.
type PrivacyScorer struct {
	// Weights are the weights of the penalty terms.
	Weights PenaltyWeights

	// OutputValues are the values of the payment outputs. The change is
	// compared against their range. Without outputs no change penalty is
	// charged.
	OutputValues []btcutil.Amount

	// SpentAmount is what the transaction pays out, used to derive the
	// change when Change is nil.
	SpentAmount btcutil.Amount

	// Change optionally computes the change a candidate produces, net of
	// fees. If nil, the candidate's value minus SpentAmount is used.
	Change func(candidate Candidate) btcutil.Amount

	// ReusedAddresses are addresses known to be reused or linked
	// elsewhere.
	ReusedAddresses fn.Set[string]
}

// A compile-time assertion to ensure PrivacyScorer implements Scorer.
var _ Scorer = (*PrivacyScorer)(nil)

// Penalty returns the penalty of the candidate.
func (s *PrivacyScorer) Penalty(candidate Candidate) float64 {
	var penalty float64
	if len(candidate) > 1 {
		penalty += s.Weights.BucketCount * float64(len(candidate)-1)
	}

	penalty += s.changePenalty(s.change(candidate))
	penalty += s.Weights.Privacy * float64(s.linkedBuckets(candidate))

	return penalty
}

// change returns the change produced by the candidate.
func (s *PrivacyScorer) change(candidate Candidate) btcutil.Amount {
	if s.Change != nil {
		return s.Change(candidate)
	}

	return max(candidate.ValueSum()-s.SpentAmount, 0)
}

// changePenalty penalizes change that is not roughly in the range of the
// payment outputs. No change at all is not penalized.
func (s *PrivacyScorer) changePenalty(change btcutil.Amount) float64 {
	if change <= 0 || len(s.OutputValues) == 0 {
		return 0
	}

	smallest, largest := s.OutputValues[0], s.OutputValues[0]
	for _, value := range s.OutputValues[1:] {
		smallest = min(smallest, value)
		largest = max(largest, value)
	}

	var (
		minChange = float64(smallest) * minChangeRatio
		maxChange = float64(largest) * maxChangeRatio
		amount    = float64(change)
		penalty   float64
	)
	switch {
	case amount < minChange:
		penalty += s.Weights.Waste * (minChange - amount) /
			(minChange + changeRangeSmoothing)

		// Really small change is hardly worth spending later.
		if change < s.Weights.DustLimit {
			penalty += s.Weights.DustChange
		}

	case amount > maxChange:
		penalty += s.Weights.Waste * (amount - maxChange) /
			(maxChange + changeRangeSmoothing)

		if s.Weights.LargeChangeUnit > 0 {
			penalty += amount / float64(s.Weights.LargeChangeUnit)
		}
	}

	return penalty
}

// linkedBuckets returns the number of buckets holding a reused address.
func (s *PrivacyScorer) linkedBuckets(candidate Candidate) int {
	if len(s.ReusedAddresses) == 0 {
		return 0
	}

	var n int
	for _, bucket := range candidate {
		for _, utxo := range bucket.utxos {
			if s.ReusedAddresses.Contains(utxo.Address) {
				n++
				break
			}
		}
	}

	return n
}
