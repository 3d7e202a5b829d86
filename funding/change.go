// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package funding

import (
	"math"
	"math/rand"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/btcsuite/btcwallet/wallet/txsizes"
)

const (
	// minSplitChange is the change amount below which change is never
	// split into several outputs.
	minSplitChange = btcutil.SatoshiPerBitcoin / 50

	// maxChangeRatio scales the largest payment output to the largest
	// change output worth keeping unsplit.
	maxChangeRatio = 1.25

	// maxPrivacyRoundingDigits caps the decimal digits the last change
	// output is rounded down by, so at most 100 sats go to fees.
	maxPrivacyRoundingDigits = 2
)

// ChangePolicy controls how the excess of a transaction is returned to the
// wallet.
type ChangePolicy struct {
	// MaxOutputs is the maximum number of change outputs. Large change is
	// split so that no change output stands out against the payments.
	// Values below one mean a single change output.
	MaxOutputs int

	// RoundForPrivacy rounds the last change output down to the
	// precision of the payment outputs, giving up to 100 sats to fees.
	RoundForPrivacy bool

	// DustRelayFee is the relay fee in sat/kb used to decide whether a
	// change output is dust. Zero means txrules.DefaultRelayFeePerKb.
	DustRelayFee btcutil.Amount

	// ScriptSize is the size of a change output script. Zero means
	// P2WPKH.
	ScriptSize int
}

// DefaultChangePolicy returns a policy producing a single, unrounded change
// output.
func DefaultChangePolicy() ChangePolicy {
	return ChangePolicy{
		MaxOutputs:   1,
		DustRelayFee: txrules.DefaultRelayFeePerKb,
		ScriptSize:   txsizes.P2WPKHPkScriptSize,
	}
}

// ChangeAmounts splits the excess of a transaction into change outputs.
//
// The excess is what the inputs hold beyond the payment outputs, and
// changeFee(n) is the fee of the transaction with n change outputs. The
// number of outputs is the smallest one that keeps every output below
// max(1.25 * largest payment, 0.02 BTC), up to policy.MaxOutputs. With more
// than one output the amounts are randomized around their average and
// rounded to a precision similar to the payments. Dust outputs are dropped,
// their value goes to fees. The returned amounts never add up to more than
// the excess minus the fee.
func ChangeAmounts(excess btcutil.Amount, payments []btcutil.Amount,
	changeFee func(numChange int) btcutil.Amount, policy ChangePolicy,
	rng *rand.Rand) []btcutil.Amount {

	if len(payments) == 0 {
		return nil
	}

	largest := payments[0]
	for _, payment := range payments[1:] {
		largest = max(largest, payment)
	}
	maxChange := max(
		btcutil.Amount(float64(largest)*maxChangeRatio), minSplitChange,
	)

	maxOutputs := max(policy.MaxOutputs, 1)

	var (
		n      int
		change btcutil.Amount
	)
	for n = 1; n <= maxOutputs; n++ {
		change = max(excess-changeFee(n), 0)
		if change/btcutil.Amount(n) <= maxChange {
			break
		}
	}
	n = min(n, maxOutputs)

	if change == 0 {
		return nil
	}

	zeroes := roundingChoices(payments, n)

	var (
		amounts   = make([]btcutil.Amount, 0, n)
		remaining = change
	)
	for ; n > 1; n-- {
		average := float64(remaining) / float64(n)
		amount := randAmount(rng, average*0.7, average*1.3)

		digits := zeroes[0]
		if rng != nil {
			digits = zeroes[rng.Intn(len(zeroes))]
		}
		amount = roundToDigits(amount, min(digits, numDigits(amount)-1))
		amount = min(amount, remaining)

		amounts = append(amounts, amount)
		remaining -= amount
	}

	// The last output takes the remainder, rounded down by at most
	// 10^maxPrivacyRoundingDigits.
	var roundingDigits int
	if policy.RoundForPrivacy {
		roundingDigits = min(maxPrivacyRoundingDigits, zeroes[0])
	}
	unit := btcutil.Amount(math.Pow10(roundingDigits))
	amounts = append(amounts, remaining/unit*unit)

	return policy.dropDust(amounts)
}

// dropDust removes the change amounts that are not worth creating an output
// for.
func (p ChangePolicy) dropDust(amounts []btcutil.Amount) []btcutil.Amount {
	relayFee := p.DustRelayFee
	if relayFee == 0 {
		relayFee = txrules.DefaultRelayFeePerKb
	}

	scriptSize := p.ScriptSize
	if scriptSize == 0 {
		scriptSize = txsizes.P2WPKHPkScriptSize
	}

	kept := amounts[:0]
	for _, amount := range amounts {
		if amount <= 0 ||
			txrules.IsDustAmount(amount, scriptSize, relayFee) {

			log.Debugf("Dropping dust change of %v", amount)
			continue
		}

		kept = append(kept, amount)
	}

	return kept
}

// roundingChoices returns the numbers of trailing zeroes the change outputs
// may be rounded to. A single change output matches the most precise
// payment, several spread around the payments' precisions.
func roundingChoices(payments []btcutil.Amount, numChange int) []int {
	minZeroes, maxZeroes := trailingZeroes(payments[0]),
		trailingZeroes(payments[0])
	for _, payment := range payments[1:] {
		minZeroes = min(minZeroes, trailingZeroes(payment))
		maxZeroes = max(maxZeroes, trailingZeroes(payment))
	}

	if numChange == 1 {
		return []int{minZeroes}
	}

	choices := make([]int, 0, maxZeroes-minZeroes+3)
	for z := max(0, minZeroes-1); z <= maxZeroes+1; z++ {
		choices = append(choices, z)
	}

	return choices
}

// trailingZeroes returns the number of trailing decimal zeroes of the
// amount.
func trailingZeroes(amount btcutil.Amount) int {
	if amount == 0 {
		return 0
	}

	var n int
	for amount%10 == 0 {
		amount /= 10
		n++
	}

	return n
}

// numDigits returns the number of decimal digits of a positive amount.
func numDigits(amount btcutil.Amount) int {
	n := 1
	for amount >= 10 {
		amount /= 10
		n++
	}

	return n
}

// roundToDigits rounds the amount half up to a multiple of 10^digits.
func roundToDigits(amount btcutil.Amount, digits int) btcutil.Amount {
	if digits <= 0 {
		return amount
	}

	unit := btcutil.Amount(math.Pow10(digits))

	return (amount + unit/2) / unit * unit
}

// randAmount returns a uniformly random amount in [lo, hi]. Without a
// randomness source the middle of the range is used.
func randAmount(rng *rand.Rand, lo, hi float64) btcutil.Amount {
	low, high := int64(lo), int64(hi)
	if rng == nil || high <= low {
		return btcutil.Amount((low + high) / 2)
	}

	return btcutil.Amount(low + rng.Int63n(high-low+1))
}
