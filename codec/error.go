// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package codec

import "errors"

var (
	// ErrChecksum indicates that the checksum embedded in a checksummed
	// string does not match its payload.
	ErrChecksum = errors.New("codec: checksum mismatch")

	// ErrInvalidFormat indicates that a string could not be decoded at
	// all, e.g. it contains characters outside of the base-58 alphabet or
	// is missing the chain alias separator.
	ErrInvalidFormat = errors.New("codec: invalid format")

	// ErrInvalidLength indicates that a decoded payload has an unexpected
	// length.
	ErrInvalidLength = errors.New("codec: invalid length")

	// ErrWrongChain indicates that an address belongs to a different chain
	// alias than the one expected.
	ErrWrongChain = errors.New("codec: wrong chain alias")

	// ErrWrongHRP indicates that an address carries a different bech32
	// human-readable part than the one expected.
	ErrWrongHRP = errors.New("codec: wrong human-readable part")
)
