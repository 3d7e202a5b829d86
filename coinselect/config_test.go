package coinselect

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
)

// TestParseConfig checks that INI options override the defaults.
func TestParseConfig(t *testing.T) {
	t.Parallel()

	const ini = `
[Application Options]
strategy=any
grouping=coincontrol
maxattempts=10
seed=7
effectivefeerate=2000
race=true

[Penalty Weights]
privacyweight=3.5
dustlimit=50000
`

	cfg, err := ParseConfig(strings.NewReader(ini))
	require.NoError(t, err)

	require.Equal(t, "any", cfg.Strategy)
	require.Equal(t, GroupingCoinControl, cfg.Grouping)
	require.Equal(t, 10, cfg.MaxAttempts)
	require.Equal(t, int64(7), cfg.Seed)
	require.Equal(t, btcutil.Amount(2000), cfg.EffectiveFeeRate)
	require.True(t, cfg.Race)
	require.InDelta(t, 3.5, cfg.Weights.Privacy, 1e-9)
	require.Equal(t, btcutil.Amount(50_000), cfg.Weights.DustLimit)

	// Untouched options keep their defaults.
	defaults := DefaultPenaltyWeights()
	require.Equal(t, defaults.BucketCount, cfg.Weights.BucketCount)
	require.Equal(t, defaults.LargeChangeUnit, cfg.Weights.LargeChangeUnit)
	require.True(t, cfg.effectiveFeeRate().IsSome())
}

// TestParseConfigInvalid checks that invalid options are rejected.
func TestParseConfigInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ini  string
	}{
		{
			name: "unknown strategy",
			ini:  "[Application Options]\nstrategy=largest\n",
		},
		{
			name: "zero attempts",
			ini:  "[Application Options]\nmaxattempts=0\n",
		},
		{
			name: "negative weight",
			ini:  "[Penalty Weights]\nwasteweight=-1\n",
		},
		{
			name: "unknown option",
			ini:  "[Application Options]\nfoo=bar\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseConfig(strings.NewReader(tc.ini))
			require.Error(t, err)
		})
	}
}

// TestLoadConfig checks loading the config from a file.
func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "coinchooser.conf")
	err := os.WriteFile(
		path, []byte("[Application Options]\nstrategy=any\n"), 0600,
	)
	require.NoError(t, err)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "any", cfg.Strategy)
	require.False(t, cfg.effectiveFeeRate().IsSome())

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.conf"))
	require.Error(t, err)
}
