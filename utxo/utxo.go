// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package utxo

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/utxoset/codec"
)

const (
	// IDLen is the length of transaction and asset ids.
	IDLen = 32

	// headerLen is the fixed part of a serialized UTXO: codec version,
	// transaction id, output index, asset id and output type.
	headerLen = 2 + IDLen + 4 + IDLen + 4
)

// Codec turns serialized UTXOs into display strings and back.
type Codec interface {
	EncodeChecksummed(b []byte) string
	DecodeChecksummed(s string) ([]byte, error)
}

// UTXO is an unspent output: the output itself plus where it was created and
// which asset it denominates.  A UTXO is immutable.
type UTXO struct {
	codecVersion uint16
	txID         [IDLen]byte
	outputIndex  uint32
	assetID      [IDLen]byte
	out          *Output
	codec        Codec
}

// Option sets a field of a UTXO under construction.
type Option func(*UTXO) error

// WithCodecVersion sets the wire format revision.
func WithCodecVersion(v uint16) Option {
	return func(u *UTXO) error {
		u.codecVersion = v
		return nil
	}
}

// WithTxID sets the id of the transaction that created the output.
func WithTxID(txID []byte) Option {
	return func(u *UTXO) error {
		if len(txID) != IDLen {
			str := fmt.Sprintf("transaction id is %d bytes, want %d",
				len(txID), IDLen)
			return utxoError(ErrMalformedIdentity, str, nil)
		}
		copy(u.txID[:], txID)
		return nil
	}
}

// WithOutputIndex sets the index of the output within its transaction.
func WithOutputIndex(idx uint32) Option {
	return func(u *UTXO) error {
		u.outputIndex = idx
		return nil
	}
}

// WithOutputIndexBytes sets the output index from its 4-byte big-endian
// form.
func WithOutputIndexBytes(idx []byte) Option {
	return func(u *UTXO) error {
		if len(idx) != 4 {
			str := fmt.Sprintf("output index is %d bytes, want 4",
				len(idx))
			return utxoError(ErrMalformedIdentity, str, nil)
		}
		u.outputIndex = binary.BigEndian.Uint32(idx)
		return nil
	}
}

// WithAssetID sets the asset the output denominates.
func WithAssetID(assetID []byte) Option {
	return func(u *UTXO) error {
		if len(assetID) != IDLen {
			str := fmt.Sprintf("asset id is %d bytes, want %d",
				len(assetID), IDLen)
			return utxoError(ErrInvalidAssetID, str, nil)
		}
		copy(u.assetID[:], assetID)
		return nil
	}
}

// WithOutput sets the wrapped output.  A nil output keeps the default.
func WithOutput(out *Output) Option {
	return func(u *UTXO) error {
		if out != nil {
			u.out = out
		}
		return nil
	}
}

// WithCodec sets the codec used by String.  A nil codec keeps cb58.
func WithCodec(c Codec) Option {
	return func(u *UTXO) error {
		if c != nil {
			u.codec = c
		}
		return nil
	}
}

// NewUTXO builds a UTXO.  Unset fields default to codec version 0, zero ids,
// output index 0, an empty transfer output and the cb58 codec.
func NewUTXO(opts ...Option) (*UTXO, error) {
	u := &UTXO{
		out:   NewTransferOutput(0, Owners{}),
		codec: codec.CB58{},
	}
	for _, opt := range opts {
		if err := opt(u); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// CodecVersion returns the wire format revision.
func (u *UTXO) CodecVersion() uint16 { return u.codecVersion }

// TxID returns the id of the transaction that created the output.
func (u *UTXO) TxID() [IDLen]byte { return u.txID }

// OutputIndex returns the index of the output within its transaction.
func (u *UTXO) OutputIndex() uint32 { return u.outputIndex }

// OutputIndexBytes returns the big-endian form of the output index.
func (u *UTXO) OutputIndexBytes() [4]byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], u.outputIndex)
	return b
}

// AssetID returns the asset the output denominates.
func (u *UTXO) AssetID() [IDLen]byte { return u.assetID }

// Output returns the wrapped output.
func (u *UTXO) Output() *Output { return u.out }

// UTXOID returns base58(txID || outputIndex), the identity of the UTXO.
func (u *UTXO) UTXOID() string {
	idx := u.OutputIndexBytes()
	b := make([]byte, 0, IDLen+len(idx))
	b = append(b, u.txID[:]...)
	b = append(b, idx[:]...)
	return base58.Encode(b)
}

// Bytes returns the canonical serialization of the UTXO.
func (u *UTXO) Bytes() []byte {
	body := u.out.Bytes()
	b := make([]byte, 0, headerLen+len(body))
	b = binary.BigEndian.AppendUint16(b, u.codecVersion)
	b = append(b, u.txID[:]...)
	b = binary.BigEndian.AppendUint32(b, u.outputIndex)
	b = append(b, u.assetID[:]...)
	b = binary.BigEndian.AppendUint32(b, uint32(u.out.Type()))
	return append(b, body...)
}

// String returns the checksummed string form of Bytes.
func (u *UTXO) String() string {
	return u.codec.EncodeChecksummed(u.Bytes())
}

// Equal reports whether both UTXOs serialize identically.
func (u *UTXO) Equal(other *UTXO) bool {
	if u == nil || other == nil {
		return u == other
	}
	return bytes.Equal(u.Bytes(), other.Bytes())
}

// Decoder decodes UTXOs from their byte and string forms.  Decoded UTXOs
// carry the decoder's codec.
type Decoder struct {
	codec Codec
}

// NewDecoder returns a Decoder using c, or cb58 when c is nil.
func NewDecoder(c Codec) *Decoder {
	if c == nil {
		c = codec.CB58{}
	}
	return &Decoder{codec: c}
}

// FromBytes decodes the UTXO starting at b[offset:].  It returns the UTXO and
// the number of bytes consumed, so that back-to-back UTXOs can be decoded by
// advancing offset.
func (d *Decoder) FromBytes(b []byte, offset int) (*UTXO, int, error) {
	r := newByteReader(b, offset)
	u := &UTXO{codec: d.codec}

	u.codecVersion = r.uint16("codec version")
	copy(u.txID[:], r.bytes(IDLen, "transaction id"))
	u.outputIndex = r.uint32("output index")
	copy(u.assetID[:], r.bytes(IDLen, "asset id"))
	typ := OutputType(r.uint32("output type"))
	if r.err != nil {
		return nil, 0, r.err
	}

	out, n, err := decodeOutput(typ, b, r.off)
	if err != nil {
		return nil, 0, err
	}
	u.out = out

	return u, r.off + n - offset, nil
}

// FromString decodes the checksummed string form of a UTXO.  Trailing bytes
// after the UTXO are rejected.
func (d *Decoder) FromString(s string) (*UTXO, error) {
	b, err := d.codec.DecodeChecksummed(s)
	if err != nil {
		return nil, utxoError(ErrChecksum, "decode utxo string", err)
	}

	u, n, err := d.FromBytes(b, 0)
	if err != nil {
		return nil, err
	}
	if n != len(b) {
		str := fmt.Sprintf("%d trailing bytes after utxo", len(b)-n)
		return nil, utxoError(ErrTruncatedData, str, nil)
	}
	return u, nil
}

// Parse implements Parser.
func (d *Decoder) Parse(s string) (*UTXO, error) {
	return d.FromString(s)
}
