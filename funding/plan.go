// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package funding

import (
	"math/rand"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/btcsuite/coinchooser/coinselect"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Plan is a funded transaction ready to be authored: which outputs to spend,
// what to pay and how much change to return.
type Plan struct {
	// Selection is the chooser's selection of buckets.
	Selection *coinselect.Selection

	// Inputs are the fixed inputs followed by the chosen UTXOs.
	Inputs []coinselect.Utxo

	// Outputs are the payment outputs.
	Outputs []*wire.TxOut

	// ChangeAmounts are the values of the change outputs. It is empty if
	// the excess was too small to be worth an output.
	ChangeAmounts []btcutil.Amount

	// Fee is the fee the transaction pays, including any excess that was
	// not returned as change.
	Fee btcutil.Amount
}

// TotalInput returns the total value of the inputs.
func (p *Plan) TotalInput() btcutil.Amount {
	var total btcutil.Amount
	for _, input := range p.Inputs {
		total += input.Value
	}

	return total
}

// TotalChange returns the total value of the change outputs.
func (p *Plan) TotalChange() btcutil.Amount {
	var total btcutil.Amount
	for _, amount := range p.ChangeAmounts {
		total += amount
	}

	return total
}

// InputSource returns an input source for txauthor.NewUnsignedTransaction
// that always provides exactly the planned inputs.
func (p *Plan) InputSource() txauthor.InputSource {
	// The planned inputs don't change between invocations, the author only
	// decides on the change output.
	var (
		total  btcutil.Amount
		inputs = make([]*wire.TxIn, 0, len(p.Inputs))
		values = make([]btcutil.Amount, 0, len(p.Inputs))
		script = make([][]byte, 0, len(p.Inputs))
	)
	for i := range p.Inputs {
		utxo := &p.Inputs[i]
		inputs = append(inputs, wire.NewTxIn(&utxo.OutPoint, nil, nil))
		values = append(values, utxo.Value)
		script = append(script, utxo.PkScript)
		total += utxo.Value
	}

	return func(target btcutil.Amount) (btcutil.Amount, []*wire.TxIn,
		[]btcutil.Amount, [][]byte, error) {

		return total, inputs, values, script, nil
	}
}

// Funder funds payment requests from a wallet's UTXO snapshot.
type Funder struct {
	chooser *coinselect.Chooser
	policy  ChangePolicy
}

// NewFunder creates a funder choosing buckets with the given chooser and
// returning change according to the policy.
func NewFunder(chooser *coinselect.Chooser, policy ChangePolicy) *Funder {
	return &Funder{
		chooser: chooser,
		policy:  policy,
	}
}

// Fund chooses the UTXOs paying for the request and plans the change. The
// fixed inputs of the request are always spent and never chosen a second
// time.
//
// coinselect.ErrNotEnoughFunds is returned if the snapshot cannot pay for
// the request.
func (f *Funder) Fund(utxos []coinselect.Utxo, req *Request) (*Plan, error) {
	sufficient, err := NewSufficiencyOracle(req)
	if err != nil {
		return nil, err
	}

	fixed := fn.NewSet[wire.OutPoint]()
	for _, utxo := range req.FixedInputs {
		fixed.Add(utxo.OutPoint)
	}

	available := make([]coinselect.Utxo, 0, len(utxos))
	for _, utxo := range utxos {
		if fixed.Contains(utxo.OutPoint) {
			continue
		}
		available = append(available, utxo)
	}

	spent := req.spent()
	payments := make([]btcutil.Amount, 0, len(req.Outputs))
	for _, output := range req.Outputs {
		payments = append(payments, btcutil.Amount(output.Value))
	}

	cfg := f.chooser.Config()
	scorer := &coinselect.PrivacyScorer{
		Weights:         cfg.Weights,
		OutputValues:    payments,
		SpentAmount:     spent,
		Change:          f.changeFunc(req),
		ReusedAddresses: req.ReusedAddresses,
	}

	selection, err := f.chooser.ChooseBuckets(available, sufficient, scorer)
	if err != nil {
		return nil, err
	}

	chosen := selection.Utxos()
	inputs := make([]coinselect.Utxo, 0, len(req.FixedInputs)+len(chosen))
	inputs = append(inputs, req.FixedInputs...)
	inputs = append(inputs, chosen...)

	excess := req.fixedValue() + selection.ValueSum() - spent

	// The change is randomized from the same snapshot the chooser saw.
	seed := cfg.Seed
	if seed == 0 {
		seed = coinselect.DeterministicSeed(available)
	}

	//nolint:gosec // Change amounts only need to look unremarkable.
	rng := rand.New(rand.NewSource(seed))

	changeFee := func(numChange int) btcutil.Amount {
		return req.fee(chosen, numChange)
	}
	changeAmounts := ChangeAmounts(
		excess, payments, changeFee, f.changePolicy(req), rng,
	)

	plan := &Plan{
		Selection:     selection,
		Inputs:        inputs,
		Outputs:       req.Outputs,
		ChangeAmounts: changeAmounts,
	}
	plan.Fee = excess - plan.TotalChange()

	log.Debugf("Funded %v to %d output(s) with %d input(s) worth %v, "+
		"change %v, fee %v", spent, len(req.Outputs), len(inputs),
		plan.TotalInput(), changeAmounts, plan.Fee)

	return plan, nil
}

// changePolicy returns the funder's policy with the request's change script
// size applied.
func (f *Funder) changePolicy(req *Request) ChangePolicy {
	policy := f.policy
	policy.ScriptSize = req.changeScriptSize()

	return policy
}

// changeFunc returns the change the scorer assumes for a candidate: the
// excess net of the fee of a single change output, or nothing if that would
// be dust.
func (f *Funder) changeFunc(
	req *Request) func(coinselect.Candidate) btcutil.Amount {

	var (
		spent      = req.spent()
		fixedValue = req.fixedValue()
		policy     = f.changePolicy(req)
	)

	relayFee := policy.DustRelayFee
	if relayFee == 0 {
		relayFee = txrules.DefaultRelayFeePerKb
	}

	return func(candidate coinselect.Candidate) btcutil.Amount {
		total := fixedValue + candidate.ValueSum()
		change := total - spent - req.fee(candidate.Utxos(), 1)

		if change <= 0 || txrules.IsDustAmount(
			change, policy.ScriptSize, relayFee,
		) {

			return 0
		}

		return change
	}
}
