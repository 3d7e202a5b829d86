package funding

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/coinchooser/coinselect"
	"github.com/stretchr/testify/require"
)

// testParams are the chain parameters used by the tests.
var testParams = &chaincfg.RegressionNetParams

// newTestAddress returns a fresh P2WPKH address and its output script.
func newTestAddress(t *testing.T) (btcutil.Address, []byte) {
	t.Helper()

	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	pubKeyHash := btcutil.Hash160(privKey.PubKey().SerializeCompressed())
	addr, err := btcutil.NewAddressWitnessPubKeyHash(pubKeyHash, testParams)
	require.NoError(t, err)

	script, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	return addr, script
}

// newTestUtxo returns a UTXO paying to addr whose outpoint is derived from
// id.
func newTestUtxo(id byte, value btcutil.Amount, confs uint32,
	addr btcutil.Address, script []byte) coinselect.Utxo {

	return coinselect.Utxo{
		OutPoint:      wire.OutPoint{Hash: chainhash.Hash{id}, Index: 1},
		Value:         value,
		PkScript:      script,
		Address:       addr.EncodeAddress(),
		Confirmations: confs,
	}
}

// newTestOutput returns a payment output of the given value to a fresh
// address.
func newTestOutput(t *testing.T, value btcutil.Amount) *wire.TxOut {
	t.Helper()

	_, script := newTestAddress(t)

	return wire.NewTxOut(int64(value), script)
}
