// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package utxo

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific Error.
const (
	// ErrMalformedIdentity indicates that a transaction id or output index
	// buffer does not have the length required to derive a UTXO id.
	ErrMalformedIdentity ErrorCode = iota

	// ErrInvalidAssetID indicates that an asset id buffer is not 32 bytes.
	ErrInvalidAssetID

	// ErrInvalidAddress indicates that an address buffer is not
	// AddressLen bytes.
	ErrInvalidAddress

	// ErrInvalidOwners indicates an owner set that can never be satisfied
	// or that names the same address twice.
	ErrInvalidOwners

	// ErrChecksum indicates that the checksummed string form of a UTXO
	// failed to validate.  The Err field carries the codec error.
	ErrChecksum

	// ErrTruncatedData indicates that a byte buffer is shorter than the
	// length it declares.
	ErrTruncatedData

	// ErrUnknownOutputType indicates an output type id with no known
	// layout.
	ErrUnknownOutputType

	// ErrUnknownMergeRule indicates a merge rule name outside of the
	// seven supported rules.
	ErrUnknownMergeRule
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrMalformedIdentity: "ErrMalformedIdentity",
	ErrInvalidAssetID:    "ErrInvalidAssetID",
	ErrInvalidAddress:    "ErrInvalidAddress",
	ErrInvalidOwners:     "ErrInvalidOwners",
	ErrChecksum:          "ErrChecksum",
	ErrTruncatedData:     "ErrTruncatedData",
	ErrUnknownOutputType: "ErrUnknownOutputType",
	ErrUnknownMergeRule:  "ErrUnknownMergeRule",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error provides a single type for errors that can happen while building,
// decoding or combining UTXOs.
type Error struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
	Err         error     // Underlying error
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	if e.Err != nil {
		return e.Description + ": " + e.Err.Error()
	}
	return e.Description
}

// Unwrap returns the underlying error, if any.
func (e Error) Unwrap() error {
	return e.Err
}

// utxoError creates an Error given a set of arguments.
func utxoError(c ErrorCode, desc string, err error) Error {
	return Error{ErrorCode: c, Description: desc, Err: err}
}

// IsErrorCode returns whether err is, or wraps, an Error with the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e Error
	return errors.As(err, &e) && e.ErrorCode == code
}
