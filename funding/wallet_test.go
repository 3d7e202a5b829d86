package funding

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wtxmgr"
	"github.com/stretchr/testify/require"
)

// TestUtxosFromCredits checks the conversion of wallet credits.
func TestUtxosFromCredits(t *testing.T) {
	t.Parallel()

	addr, script := newTestAddress(t)
	nonStandard := []byte{txscript.OP_TRUE}

	credit := func(id byte, height int32, script []byte,
		coinbase bool) wtxmgr.Credit {

		return wtxmgr.Credit{
			OutPoint: wire.OutPoint{Hash: chainhash.Hash{id}},
			BlockMeta: wtxmgr.BlockMeta{
				Block: wtxmgr.Block{Height: height},
			},
			Amount:       btcutil.Amount(id) * 1000,
			PkScript:     script,
			FromCoinBase: coinbase,
		}
	}

	credits := []wtxmgr.Credit{
		credit(1, 100, script, false),
		credit(2, -1, script, false),
		credit(3, 100, script, true),
		credit(4, 1, nonStandard, true),
	}

	utxos, err := UtxosFromCredits(credits, 105, testParams)
	require.NoError(t, err)

	// The immature coinbase output is skipped.
	require.Len(t, utxos, 3)

	require.Equal(t, credits[0].OutPoint, utxos[0].OutPoint)
	require.Equal(t, btcutil.Amount(1000), utxos[0].Value)
	require.Equal(t, addr.EncodeAddress(), utxos[0].Address)
	require.Equal(t, uint32(6), utxos[0].Confirmations)

	require.Equal(t, uint32(0), utxos[1].Confirmations)
	require.False(t, utxos[1].IsConfirmed())

	// A mature coinbase output with a script that has no address.
	require.Equal(t, credits[3].OutPoint, utxos[2].OutPoint)
	require.Empty(t, utxos[2].Address)
	require.Equal(t, uint32(105), utxos[2].Confirmations)
}

// TestCalcConf checks the confirmation depth calculation.
func TestCalcConf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		txHeight  int32
		curHeight int32
		want      int32
	}{
		{"unmined", -1, 100, 0},
		{"ahead of best block", 101, 100, 0},
		{"in best block", 100, 100, 1},
		{"buried", 90, 100, 11},
	}

	for _, tc := range tests {
		require.Equal(t, tc.want, calcConf(tc.txHeight, tc.curHeight),
			tc.name)
	}
}
