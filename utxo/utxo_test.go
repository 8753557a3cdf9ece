// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package utxo

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/utxoset/codec"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

// sampleUTXOs returns one UTXO of every output type.
func sampleUTXOs(t *testing.T) []*UTXO {
	t.Helper()

	owners := testOwners(t, 12345, 2, addr1, addr2, addr3)
	return []*UTXO{
		testUTXO(t, 0x01, 0, assetX, NewTransferOutput(1000, owners)),
		testUTXO(t, 0x02, 1, assetX, NewMintOutput(owners)),
		testUTXO(t, 0x03, 2, assetY, NewNFTMintOutput(9, owners)),
		testUTXO(t, 0x04, 3, assetY,
			NewNFTTransferOutput(9, []byte("payload"), owners)),
		testUTXO(t, 0x05, 4, assetY,
			NewNFTTransferOutput(0, nil, testOwners(t, 0, 0))),
	}
}

// TestUTXOID checks that the id is base58(txID || big-endian index).
func TestUTXOID(t *testing.T) {
	t.Parallel()

	u := testUTXO(t, 0x11, 258, assetX, nil)

	txID := testID(0x11)
	want := base58.Encode(append(txID[:], 0, 0, 1, 2))
	require.Equal(t, want, u.UTXOID())

	// Another output index of the same transaction is another UTXO.
	other := transferUTXO(t, 0x11, assetY, 5, 0, addr1)
	require.NotEqual(t, u.UTXOID(), other.UTXOID())

	// Same identity fields, different output: same id.
	other = testUTXO(t, 0x11, 258, assetY,
		NewTransferOutput(5, testOwners(t, 0, 1, addr1)))
	require.Equal(t, u.UTXOID(), other.UTXOID())
}

// TestNewUTXODefaults checks the defaults of an unpopulated UTXO.
func TestNewUTXODefaults(t *testing.T) {
	t.Parallel()

	u, err := NewUTXO()
	require.NoError(t, err)
	require.Zero(t, u.CodecVersion())
	require.Equal(t, [IDLen]byte{}, u.TxID())
	require.Equal(t, [4]byte{}, u.OutputIndexBytes())
	require.Equal(t, [IDLen]byte{}, u.AssetID())
	require.Equal(t, SECPTransferOutputType, u.Output().Type())
	require.Empty(t, u.Output().Addresses())
}

// TestNewUTXOValidation checks that wrong-sized identity fields are
// rejected.
func TestNewUTXOValidation(t *testing.T) {
	t.Parallel()

	_, err := NewUTXO(WithTxID(make([]byte, 31)))
	require.True(t, IsErrorCode(err, ErrMalformedIdentity), err)

	_, err = NewUTXO(WithOutputIndexBytes([]byte{0, 1}))
	require.True(t, IsErrorCode(err, ErrMalformedIdentity), err)

	_, err = NewUTXO(WithAssetID(make([]byte, 33)))
	require.True(t, IsErrorCode(err, ErrInvalidAssetID), err)

	u, err := NewUTXO(WithOutputIndexBytes([]byte{0, 0, 1, 0}))
	require.NoError(t, err)
	require.EqualValues(t, 256, u.OutputIndex())
}

// TestUTXOBytesLayout checks the fixed header of the wire format.
func TestUTXOBytesLayout(t *testing.T) {
	t.Parallel()

	txID, assetID := testID(0x21), testID(0x22)
	owners := testOwners(t, 77, 1, addr1)
	u, err := NewUTXO(
		WithCodecVersion(3),
		WithTxID(txID[:]),
		WithOutputIndex(5),
		WithAssetID(assetID[:]),
		WithOutput(NewTransferOutput(500, owners)),
	)
	require.NoError(t, err)

	b := u.Bytes()
	require.Len(t, b, headerLen+8+8+4+4+AddressLen)
	require.EqualValues(t, 3, binary.BigEndian.Uint16(b[0:2]))
	require.Equal(t, txID[:], b[2:34])
	require.EqualValues(t, 5, binary.BigEndian.Uint32(b[34:38]))
	require.Equal(t, assetID[:], b[38:70])
	require.EqualValues(t, SECPTransferOutputType,
		binary.BigEndian.Uint32(b[70:74]))
	require.EqualValues(t, 500, binary.BigEndian.Uint64(b[74:82]))
	require.EqualValues(t, 77, binary.BigEndian.Uint64(b[82:90]))
	require.EqualValues(t, 1, binary.BigEndian.Uint32(b[90:94]))
	require.EqualValues(t, 1, binary.BigEndian.Uint32(b[94:98]))
	require.Equal(t, addr1[:], b[98:118])
}

// TestUTXORoundTrip checks the byte and string round trips for every output
// type.
func TestUTXORoundTrip(t *testing.T) {
	t.Parallel()

	dec := NewDecoder(nil)
	for _, u := range sampleUTXOs(t) {
		b := u.Bytes()
		got, n, err := dec.FromBytes(b, 0)
		require.NoError(t, err)
		require.Equal(t, len(b), n)
		require.True(t, u.Equal(got), spew.Sdump(u, got))
		require.Equal(t, u.UTXOID(), got.UTXOID())

		got, err = dec.FromString(u.String())
		require.NoError(t, err)
		require.True(t, u.Equal(got), spew.Sdump(u, got))
		require.Equal(t, u.String(), got.String())
	}
}

// TestDecodeSequence checks that back-to-back UTXOs decode by advancing the
// offset by the consumed length.
func TestDecodeSequence(t *testing.T) {
	t.Parallel()

	want := sampleUTXOs(t)

	var buf bytes.Buffer
	buf.Write([]byte{0xde, 0xad})
	for _, u := range want {
		buf.Write(u.Bytes())
	}
	b := buf.Bytes()

	dec := NewDecoder(codec.CB58{})
	offset := 2
	var got []*UTXO
	for offset < len(b) {
		u, n, err := dec.FromBytes(b, offset)
		require.NoError(t, err)
		got = append(got, u)
		offset += n
	}

	require.Len(t, got, len(want))
	for i := range want {
		require.True(t, want[i].Equal(got[i]), "utxo %d", i)
	}
}

// TestDecodeErrors checks the decode failure conditions.
func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	dec := NewDecoder(nil)
	u := sampleUTXOs(t)[3]
	b := u.Bytes()

	// Every strict prefix is truncated.
	for _, n := range []int{0, 1, 40, headerLen, headerLen + 6, len(b) - 1} {
		_, _, err := dec.FromBytes(b[:n], 0)
		require.True(t, IsErrorCode(err, ErrTruncatedData),
			"prefix %d: %v", n, err)
	}

	_, _, err := dec.FromBytes(b, len(b)+1)
	require.True(t, IsErrorCode(err, ErrTruncatedData), err)

	// A declared address count far beyond the buffer.
	bad := append([]byte{}, b...)
	binary.BigEndian.PutUint32(bad[len(bad)-4-3*AddressLen:], 1<<30)
	_, _, err = dec.FromBytes(bad, 0)
	require.True(t, IsErrorCode(err, ErrTruncatedData), err)

	// Unknown output type.
	bad = append([]byte{}, b...)
	binary.BigEndian.PutUint32(bad[70:74], 99)
	_, _, err = dec.FromBytes(bad, 0)
	require.True(t, IsErrorCode(err, ErrUnknownOutputType), err)

	// Corrupted checksum.
	s := u.String()
	_, err = dec.FromString(s[:len(s)-1] + flipBase58(s[len(s)-1]))
	require.True(t, IsErrorCode(err, ErrChecksum), err)
	require.ErrorIs(t, err, codec.ErrChecksum)

	// Trailing data after a valid UTXO.
	_, err = dec.FromString(codec.EncodeChecksummed(append(b, 0)))
	require.True(t, IsErrorCode(err, ErrTruncatedData), err)
}

// flipBase58 returns a base-58 character different from c.
func flipBase58(c byte) string {
	if c == '2' {
		return "3"
	}
	return "2"
}

// TestUTXOEqual checks serialization equality.
func TestUTXOEqual(t *testing.T) {
	t.Parallel()

	a := transferUTXO(t, 1, assetX, 10, 0, addr1)
	b := transferUTXO(t, 1, assetX, 10, 0, addr1)
	c := transferUTXO(t, 1, assetX, 11, 0, addr1)

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.False(t, a.Equal(nil))
	require.True(t, (*UTXO)(nil).Equal(nil))
}
