// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package funding

import "errors"

var (
	// ErrNoOutputs is returned when a request pays to no outputs.
	ErrNoOutputs = errors.New("request has no outputs")

	// ErrInvalidOutput is returned when a payment output would not be
	// relayed.
	ErrInvalidOutput = errors.New("invalid payment output")

	// ErrInvalidFeeRate is returned for a negative fee rate.
	ErrInvalidFeeRate = errors.New("invalid fee rate")

	// ErrDuplicateInput is returned when the same outpoint is given more
	// than once as a fixed input.
	ErrDuplicateInput = errors.New("duplicate fixed input")

	// ErrInvalidInput is returned for a fixed input with a negative value.
	ErrInvalidInput = errors.New("invalid fixed input")
)
