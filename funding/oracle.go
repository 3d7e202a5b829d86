// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package funding

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/btcsuite/btcwallet/wallet/txsizes"
	"github.com/btcsuite/coinchooser/coinselect"
	"github.com/btcsuite/coinchooser/pkg/btcunit"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// witnessHeaderSize is the size of the segwit marker and flag.
var witnessHeaderSize = btcunit.NewWeightUnit(2).ToVB()

// Request describes the payment a transaction has to make.
type Request struct {
	// Outputs are the payment outputs.
	Outputs []*wire.TxOut

	// FeeRate is the fee rate the transaction has to pay.
	FeeRate btcunit.SatPerKVByte

	// ChangeScriptSize is the size of the change output script. Zero
	// means a P2WPKH change output.
	ChangeScriptSize int

	// FixedInputs are spent in any case, on top of the chosen buckets.
	FixedInputs []coinselect.Utxo

	// ReusedAddresses are wallet addresses that are known to be linked to
	// the user already. Spending from them is penalized.
	ReusedAddresses fn.Set[string]
}

// changeScriptSize returns the size of the change output script.
func (r *Request) changeScriptSize() int {
	if r.ChangeScriptSize > 0 {
		return r.ChangeScriptSize
	}

	return txsizes.P2WPKHPkScriptSize
}

// spent returns the total value of the payment outputs.
func (r *Request) spent() btcutil.Amount {
	var spent btcutil.Amount
	for _, output := range r.Outputs {
		spent += btcutil.Amount(output.Value)
	}

	return spent
}

// validate checks that the request can be funded at all.
func (r *Request) validate() error {
	if len(r.Outputs) == 0 {
		return ErrNoOutputs
	}

	for i, output := range r.Outputs {
		err := txrules.CheckOutput(output, txrules.DefaultRelayFeePerKb)
		if err != nil {
			return fmt.Errorf("%w: output %d: %w", ErrInvalidOutput,
				i, err)
		}
	}

	if btcunit.ZeroSatPerKVByte.GreaterThan(r.FeeRate) {
		return fmt.Errorf("%w: %v", ErrInvalidFeeRate, r.FeeRate)
	}

	seen := fn.NewSet[wire.OutPoint]()
	for _, utxo := range r.FixedInputs {
		if utxo.Value < 0 {
			return fmt.Errorf("%w: %v has negative value %v",
				ErrInvalidInput, utxo.OutPoint, utxo.Value)
		}

		if seen.Contains(utxo.OutPoint) {
			return fmt.Errorf("%w: %v", ErrDuplicateInput,
				utxo.OutPoint)
		}
		seen.Add(utxo.OutPoint)
	}

	return nil
}

// txSize estimates the virtual size of a transaction spending the given
// inputs on top of the fixed ones, paying the outputs and numChange change
// outputs.
func (r *Request) txSize(inputs []coinselect.Utxo,
	numChange int) btcunit.VByte {

	outputs := r.Outputs
	if numChange > 0 {
		outputs = make([]*wire.TxOut, 0, len(r.Outputs)+numChange)
		outputs = append(outputs, r.Outputs...)
		for i := 0; i < numChange; i++ {
			outputs = append(outputs, &wire.TxOut{
				PkScript: make([]byte, r.changeScriptSize()),
			})
		}
	}

	// The inputs are sized individually below, so only the transaction
	// overhead and the outputs are estimated here.
	base := txsizes.EstimateVirtualSize(0, 0, 0, 0, outputs, 0)

	//nolint:gosec // Transaction sizes are small positive numbers.
	size := btcunit.NewVByte(uint64(base))

	var witness bool
	for _, list := range [][]coinselect.Utxo{r.FixedInputs, inputs} {
		for i := range list {
			size = size.Add(list[i].InputSize())
			witness = witness ||
				txscript.IsWitnessProgram(list[i].PkScript)
		}
	}
	if witness {
		size = size.Add(witnessHeaderSize)
	}

	return size
}

// fee returns the fee a transaction spending the given inputs with numChange
// change outputs pays at the request's fee rate.
func (r *Request) fee(inputs []coinselect.Utxo,
	numChange int) btcutil.Amount {

	return r.FeeRate.FeeForVSize(r.txSize(inputs, numChange))
}

// fixedValue returns the total value of the fixed inputs.
func (r *Request) fixedValue() btcutil.Amount {
	var value btcutil.Amount
	for _, utxo := range r.FixedInputs {
		value += utxo.Value
	}

	return value
}

// NewSufficiencyOracle returns the oracle deciding whether a candidate,
// together with the request's fixed inputs, pays for the outputs and the fee
// of a transaction with a change output. A transaction without any inputs is
// never sufficient.
//
// The returned oracle is a pure function of its arguments and safe for
// concurrent use.
func NewSufficiencyOracle(req *Request) (coinselect.SufficiencyFunc, error) {
	err := req.validate()
	if err != nil {
		return nil, err
	}

	var (
		spent      = req.spent()
		fixedValue = req.fixedValue()
		numFixed   = len(req.FixedInputs)
	)

	return func(candidate coinselect.Candidate,
		valueSum btcutil.Amount) (bool, error) {

		total := fixedValue + valueSum
		if total < spent {
			return false, nil
		}

		if numFixed+candidate.NumUtxos() == 0 {
			return false, nil
		}

		fee := req.fee(candidate.Utxos(), 1)

		return total >= spent+fee, nil
	}, nil
}
