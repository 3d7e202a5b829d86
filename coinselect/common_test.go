package coinselect

import (
	"sync"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/coinchooser/pkg/btcunit"
)

// testInputSize is the spend size assigned to every test UTXO, the size of a
// P2WPKH input.
var testInputSize = btcunit.NewVByte(68)

// newTestUtxo returns a UTXO whose outpoint is derived from id.
func newTestUtxo(id byte, value btcutil.Amount, confs uint32,
	addr string) Utxo {

	script := make([]byte, 22)
	script[1] = 0x14
	script[2] = id

	return Utxo{
		OutPoint:      wire.OutPoint{Hash: chainhash.Hash{id}},
		Value:         value,
		PkScript:      script,
		Address:       addr,
		Confirmations: confs,
		SpendSize:     testInputSize,
	}
}

// newTestBucket returns a bucket holding a single UTXO.
func newTestBucket(id byte, value btcutil.Amount, confs uint32) *Bucket {
	desc := string(rune('A' + id - 1))

	return NewBucket(desc, []Utxo{newTestUtxo(id, value, confs, desc)})
}

// sumAtLeast returns an oracle that is satisfied once the candidate holds
// at least target.
func sumAtLeast(target btcutil.Amount) SufficiencyFunc {
	return func(_ Candidate, valueSum btcutil.Amount) (bool, error) {
		return valueSum >= target, nil
	}
}

// alwaysSufficient is an oracle that accepts every candidate.
func alwaysSufficient(Candidate, btcutil.Amount) (bool, error) {
	return true, nil
}

// countingOracle records the queries made to the wrapped oracle.
type countingOracle struct {
	sufficient SufficiencyFunc

	mu      sync.Mutex
	queries []Candidate
}

func newCountingOracle(sufficient SufficiencyFunc) *countingOracle {
	return &countingOracle{sufficient: sufficient}
}

func (c *countingOracle) query(candidate Candidate,
	valueSum btcutil.Amount) (bool, error) {

	c.mu.Lock()
	c.queries = append(c.queries, candidate)
	c.mu.Unlock()

	return c.sufficient(candidate, valueSum)
}

func (c *countingOracle) numQueries() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.queries)
}

// descsOf returns the bucket descriptions of every candidate.
func descsOf(candidates []Candidate) [][]string {
	descs := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		descs = append(descs, c.Descs())
	}

	return descs
}
