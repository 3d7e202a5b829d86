package funding

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
	"github.com/btcsuite/coinchooser/coinselect"
	"github.com/btcsuite/coinchooser/pkg/btcunit"
	"github.com/stretchr/testify/require"
)

// testWallet is a small UTXO snapshot spread over three addresses.
type testWallet struct {
	addrs []btcutil.Address
	utxos []coinselect.Utxo
}

// newTestWallet returns a wallet where addr0 holds two confirmed outputs,
// addr1 one large unconfirmed output and addr2 one small confirmed output.
func newTestWallet(t *testing.T) *testWallet {
	t.Helper()

	w := &testWallet{}
	scripts := make([][]byte, 3)
	for i := range scripts {
		addr, script := newTestAddress(t)
		w.addrs = append(w.addrs, addr)
		scripts[i] = script
	}

	w.utxos = []coinselect.Utxo{
		newTestUtxo(1, 300_000, 6, w.addrs[0], scripts[0]),
		newTestUtxo(2, 1_000_000, 0, w.addrs[1], scripts[1]),
		newTestUtxo(3, 200_000, 2, w.addrs[0], scripts[0]),
		newTestUtxo(4, 150_000, 3, w.addrs[2], scripts[2]),
	}

	return w
}

// newTestFunder returns a funder with the default chooser.
func newTestFunder(t *testing.T) *Funder {
	t.Helper()

	chooser, err := coinselect.NewChooser(nil)
	require.NoError(t, err)

	return NewFunder(chooser, DefaultChangePolicy())
}

// TestFund checks that a request is funded from a whole address and that
// the plan's amounts add up.
func TestFund(t *testing.T) {
	t.Parallel()

	// Arrange: only addr0 can pay 400k from confirmed funds.
	w := newTestWallet(t)
	funder := newTestFunder(t)

	req := &Request{
		Outputs: []*wire.TxOut{newTestOutput(t, 400_000)},
		FeeRate: btcunit.NewSatPerKVByte(10_000),
	}

	// Act.
	plan, err := funder.Fund(w.utxos, req)
	require.NoError(t, err)

	// Assert: both outputs of addr0 are spent, nothing else.
	require.Equal(t,
		[]string{w.addrs[0].EncodeAddress()},
		plan.Selection.Buckets.Descs(),
	)
	require.Equal(t,
		[]coinselect.Utxo{w.utxos[0], w.utxos[2]}, plan.Inputs,
	)
	require.Equal(t, btcutil.Amount(500_000), plan.TotalInput())

	// The amounts balance and the fee covers the transaction.
	require.Len(t, plan.ChangeAmounts, 1)
	require.Equal(t,
		plan.TotalInput(),
		400_000+plan.TotalChange()+plan.Fee,
	)
	require.GreaterOrEqual(t, plan.Fee, req.fee(plan.Inputs, 1))
}

// TestFundAuthorTransaction checks that the plan's input source lets the
// transaction author build a transaction spending exactly the planned
// inputs.
func TestFundAuthorTransaction(t *testing.T) {
	t.Parallel()

	w := newTestWallet(t)
	funder := newTestFunder(t)

	feeRate := btcunit.NewSatPerKVByte(5000)
	req := &Request{
		Outputs: []*wire.TxOut{newTestOutput(t, 250_000)},
		FeeRate: feeRate,
	}

	plan, err := funder.Fund(w.utxos, req)
	require.NoError(t, err)

	_, changeScript := newTestAddress(t)
	changeSource := &txauthor.ChangeSource{
		ScriptSize: len(changeScript),
		NewScript: func() ([]byte, error) {
			return changeScript, nil
		},
	}

	tx, err := txauthor.NewUnsignedTransaction(
		req.Outputs, feeRate.Val(), plan.InputSource(), changeSource,
	)
	require.NoError(t, err)

	require.Equal(t, plan.TotalInput(), tx.TotalInput)
	require.Len(t, tx.Tx.TxIn, len(plan.Inputs))
	for i, txIn := range tx.Tx.TxIn {
		require.Equal(t, plan.Inputs[i].OutPoint, txIn.PreviousOutPoint)
	}
	require.GreaterOrEqual(t, tx.ChangeIndex, 0)
}

// TestFundFixedInputs checks that fixed inputs are spent in any case and
// never chosen twice.
func TestFundFixedInputs(t *testing.T) {
	t.Parallel()

	w := newTestWallet(t)
	funder := newTestFunder(t)

	// The small output of addr2 alone pays for the request.
	req := &Request{
		Outputs:     []*wire.TxOut{newTestOutput(t, 100_000)},
		FeeRate:     btcunit.NewSatPerKVByte(1000),
		FixedInputs: []coinselect.Utxo{w.utxos[3]},
	}

	plan, err := funder.Fund(w.utxos, req)
	require.NoError(t, err)
	require.Empty(t, plan.Selection.Buckets)
	require.Equal(t, []coinselect.Utxo{w.utxos[3]}, plan.Inputs)
}

// TestFundFixedInputsSeed checks that listing the fixed inputs in the
// snapshot as well does not change the randomized change split.
func TestFundFixedInputsSeed(t *testing.T) {
	t.Parallel()

	w := newTestWallet(t)

	chooser, err := coinselect.NewChooser(nil)
	require.NoError(t, err)

	policy := DefaultChangePolicy()
	policy.MaxOutputs = 10
	policy.RoundForPrivacy = true
	funder := NewFunder(chooser, policy)

	// A large fixed input leaves enough change to be split over several
	// randomized outputs.
	fixed := newTestUtxo(
		9, 6_000_000, 1, w.addrs[2], w.utxos[3].PkScript,
	)
	req := &Request{
		Outputs:     []*wire.TxOut{newTestOutput(t, 1_000_000)},
		FeeRate:     btcunit.NewSatPerKVByte(1000),
		FixedInputs: []coinselect.Utxo{fixed},
	}

	withFixed := append([]coinselect.Utxo{fixed}, w.utxos...)
	planWith, err := funder.Fund(withFixed, req)
	require.NoError(t, err)

	planWithout, err := funder.Fund(w.utxos, req)
	require.NoError(t, err)

	require.Greater(t, len(planWith.ChangeAmounts), 1)
	require.Equal(t, planWithout.ChangeAmounts, planWith.ChangeAmounts)
	require.Equal(t, planWithout.Inputs, planWith.Inputs)
	require.Equal(t, planWithout.Fee, planWith.Fee)
}

// TestFundFailures checks that funding failures are reported as such.
func TestFundFailures(t *testing.T) {
	t.Parallel()

	w := newTestWallet(t)
	funder := newTestFunder(t)

	// More than the wallet holds.
	req := &Request{
		Outputs: []*wire.TxOut{newTestOutput(t, 5_000_000)},
		FeeRate: btcunit.NewSatPerKVByte(1000),
	}
	_, err := funder.Fund(w.utxos, req)
	require.ErrorIs(t, err, coinselect.ErrNotEnoughFunds)

	// An invalid request is not a lack of funds.
	_, err = funder.Fund(w.utxos, &Request{})
	require.ErrorIs(t, err, ErrNoOutputs)
	require.NotErrorIs(t, err, coinselect.ErrNotEnoughFunds)
}

// TestPlanInputSource checks that the input source ignores the target.
func TestPlanInputSource(t *testing.T) {
	t.Parallel()

	w := newTestWallet(t)
	plan := &Plan{Inputs: w.utxos[:2]}

	source := plan.InputSource()
	for _, target := range []btcutil.Amount{0, 1, 10_000_000} {
		total, inputs, values, scripts, err := source(target)
		require.NoError(t, err)
		require.Equal(t, btcutil.Amount(1_300_000), total)
		require.Len(t, inputs, 2)
		require.Equal(t,
			[]btcutil.Amount{300_000, 1_000_000}, values,
		)
		require.Equal(t, w.utxos[1].PkScript, scripts[1])
	}
}
