// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package codec implements the string encodings used by the UTXO index: the
// checksummed base-58 form ("cb58") of serialized records and the
// chain-prefixed bech32 form of addresses.
package codec

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// ChecksumLen is the number of trailing SHA-256 bytes appended to a payload
// before it is base-58 encoded.
const ChecksumLen = 4

// CB58 is the checksummed base-58 codec. The zero value is ready to use.
type CB58 struct{}

// checksum returns the last ChecksumLen bytes of the SHA-256 digest of b.
func checksum(b []byte) []byte {
	h := sha256.Sum256(b)
	return h[len(h)-ChecksumLen:]
}

// EncodeChecksummed returns base58(b || sha256(b)[28:32]).
func (CB58) EncodeChecksummed(b []byte) string {
	buf := make([]byte, 0, len(b)+ChecksumLen)
	buf = append(buf, b...)
	buf = append(buf, checksum(b)...)
	return base58.Encode(buf)
}

// DecodeChecksummed reverses EncodeChecksummed. ErrChecksum is returned when
// the trailing checksum does not validate.
func (CB58) DecodeChecksummed(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidFormat)
	}

	// base58.Decode signals invalid characters with an empty result.
	raw := base58.Decode(s)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: not base-58", ErrInvalidFormat)
	}
	if len(raw) < ChecksumLen {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the "+
			"checksum", ErrInvalidLength, len(raw))
	}

	payload, sum := raw[:len(raw)-ChecksumLen], raw[len(raw)-ChecksumLen:]
	if !bytes.Equal(checksum(payload), sum) {
		return nil, ErrChecksum
	}
	return payload, nil
}

// EncodeChecksummed encodes b with the default CB58 codec.
func EncodeChecksummed(b []byte) string {
	return CB58{}.EncodeChecksummed(b)
}

// DecodeChecksummed decodes s with the default CB58 codec.
func DecodeChecksummed(s string) ([]byte, error) {
	return CB58{}.DecodeChecksummed(s)
}
