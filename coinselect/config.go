// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinselect

import (
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/coinchooser/pkg/btcunit"
	"github.com/jessevdk/go-flags"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Config holds the tunables of a Chooser. It can be loaded from the
// "[Application Options]" and "[Penalty Weights]" sections of an INI file.
type Config struct {
	// Strategy is the name of the candidate generation strategy.
	Strategy string `long:"strategy" description:"Candidate generation strategy" choice:"any" choice:"prefer-confirmed"`

	// Grouping is the name of the rule that groups UTXOs into buckets.
	Grouping string `long:"grouping" description:"How UTXOs are grouped into buckets" choice:"address" choice:"coincontrol"`

	// Race runs every strategy concurrently and lets the scorer choose
	// among all of their candidates. The sufficiency oracle must then be
	// safe for concurrent use. With the prefer-confirmed strategy, pooled
	// candidates spending unconfirmed buckets are dropped whenever one
	// spending confirmed buckets only exists.
	Race bool `long:"race" description:"Pool the candidates of every strategy, generated concurrently"`

	// MaxAttempts caps the randomized passes of the any-order generator.
	MaxAttempts int `long:"maxattempts" description:"Maximum number of randomized candidate passes"`

	// Seed seeds the selection randomness. Zero derives the seed from the
	// UTXO snapshot so the same wallet state yields the same choice.
	Seed int64 `long:"seed" description:"Seed for the selection randomness; 0 derives it from the UTXO snapshot"`

	// EffectiveFeeRate, in sat/kvb, drops buckets that cost more to spend
	// than they hold. Zero disables the filter.
	EffectiveFeeRate btcutil.Amount `long:"effectivefeerate" description:"Drop buckets whose value does not cover their spending fee at this sat/kvb rate; 0 disables"`

	// Weights are the penalty weights of the default scorer.
	Weights PenaltyWeights `group:"Penalty Weights"`
}

// DefaultConfig returns the default chooser config: privacy grouping by
// address and confirmed funds first.
func DefaultConfig() *Config {
	return &Config{
		Strategy:    StrategyPreferConfirmed.String(),
		Grouping:    GroupingAddress,
		MaxAttempts: DefaultMaxAttempts,
		Weights:     DefaultPenaltyWeights(),
	}
}

// ParseConfig reads INI formatted options from r on top of the defaults.
func ParseConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()

	parser := flags.NewParser(cfg, flags.None)
	err := flags.NewIniParser(parser).Parse(r)
	if err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadConfig reads INI formatted options from the file at path on top of the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	parser := flags.NewParser(cfg, flags.None)
	err := flags.NewIniParser(parser).ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load config %s: %w", path,
			err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the config describes a usable chooser.
func (c *Config) Validate() error {
	_, err := ParseStrategy(c.Strategy)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	_, err = ParseGroupingRule(c.Grouping)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.MaxAttempts <= 0 {
		return fmt.Errorf("%w: maxattempts must be positive, got %d",
			ErrInvalidConfig, c.MaxAttempts)
	}

	if c.EffectiveFeeRate < 0 {
		return fmt.Errorf("%w: effectivefeerate must not be negative",
			ErrInvalidConfig)
	}

	return c.Weights.Validate()
}

// effectiveFeeRate returns the fee rate of the uneconomical bucket filter,
// if enabled.
func (c *Config) effectiveFeeRate() fn.Option[btcunit.SatPerKVByte] {
	if c.EffectiveFeeRate == 0 {
		return fn.None[btcunit.SatPerKVByte]()
	}

	return fn.Some(btcunit.NewSatPerKVByte(c.EffectiveFeeRate))
}
