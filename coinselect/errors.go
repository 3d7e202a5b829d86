// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinselect

import (
	"errors"
	"fmt"
)

var (
	// ErrNotEnoughFunds is returned when no subset of the available
	// buckets satisfies the sufficiency oracle, even after every bucket
	// has been tried. This is an expected outcome the caller can recover
	// from, e.g. by lowering the amount.
	ErrNotEnoughFunds = errors.New("not enough funds")

	// ErrInvalidBucket is the error wrapped by every InvalidBucketError. It
	// signals malformed input data and must never be treated as a funds
	// failure.
	ErrInvalidBucket = errors.New("invalid bucket")

	// ErrOracleAbort can be returned (or wrapped) by a sufficiency oracle
	// to stop being queried. From then on every query of the same call is
	// answered with "insufficient".
	ErrOracleAbort = errors.New("sufficiency oracle aborted")

	// ErrNilOracle is returned when a generator is called without a
	// sufficiency oracle.
	ErrNilOracle = errors.New("nil sufficiency oracle")

	// ErrUnknownStrategy is returned when a strategy name cannot be
	// parsed.
	ErrUnknownStrategy = errors.New("unknown coin selection strategy")

	// ErrUnknownGrouping is returned when a grouping rule name cannot be
	// parsed.
	ErrUnknownGrouping = errors.New("unknown bucket grouping rule")

	// ErrInvalidConfig is returned when a chooser config fails
	// validation.
	ErrInvalidConfig = errors.New("invalid coin chooser config")
)

// InvalidBucketError describes a bucket that violates the bucket invariants:
// a negative UTXO value, a UTXO that appears in more than one bucket, or
// cached sums that disagree with the bucket's members.
type InvalidBucketError struct {
	// Desc is the description of the offending bucket.
	Desc string

	// Reason explains which invariant was violated.
	Reason string
}

// Error returns a human-readable description of the error.
func (e *InvalidBucketError) Error() string {
	return fmt.Sprintf("%v %q: %s", ErrInvalidBucket, e.Desc, e.Reason)
}

// Unwrap returns ErrInvalidBucket so callers can match with errors.Is.
func (e *InvalidBucketError) Unwrap() error {
	return ErrInvalidBucket
}

// A compile-time assertion to ensure InvalidBucketError is an error.
var _ error = (*InvalidBucketError)(nil)
