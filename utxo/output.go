// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package utxo

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"
)

// AddressLen is the length in bytes of a raw address.
const AddressLen = 20

// Address is the raw form of an address able to help spend an output.
type Address [AddressLen]byte

// AddressFromBytes copies b into an Address.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLen {
		str := fmt.Sprintf("address is %d bytes, want %d", len(b),
			AddressLen)
		return a, utxoError(ErrInvalidAddress, str, nil)
	}
	copy(a[:], b)
	return a, nil
}

// String returns the hex encoding of the address.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// OutputType is the 4-byte type id that precedes an output's body on the
// wire.
type OutputType uint32

// These are the output types understood by the decoder.
const (
	SECPMintOutputType     OutputType = 6
	SECPTransferOutputType OutputType = 7
	NFTMintOutputType      OutputType = 10
	NFTTransferOutputType  OutputType = 11
)

// String returns a human-readable name for the output type.
func (t OutputType) String() string {
	switch t {
	case SECPMintOutputType:
		return "SECPMintOutput"
	case SECPTransferOutputType:
		return "SECPTransferOutput"
	case NFTMintOutputType:
		return "NFTMintOutput"
	case NFTTransferOutputType:
		return "NFTTransferOutput"
	default:
		return fmt.Sprintf("OutputType(%d)", uint32(t))
	}
}

// Kind discriminates outputs by what they are worth.
type Kind uint8

const (
	// KindAmount outputs carry a fungible amount of their asset.
	KindAmount Kind = iota

	// KindNonFungible outputs carry a non-fungible token or the right to
	// mint one.
	KindNonFungible

	// KindMint outputs carry the right to mint more of a fungible asset.
	KindMint
)

// Kind returns the value kind of outputs of this type.
func (t OutputType) Kind() Kind {
	switch t {
	case SECPTransferOutputType:
		return KindAmount
	case NFTMintOutputType, NFTTransferOutputType:
		return KindNonFungible
	default:
		return KindMint
	}
}

// Owners is the spending policy shared by every output type: the addresses
// that may sign, how many of them must, and the time before which none may.
type Owners struct {
	locktime  uint64
	threshold uint32
	addrs     []Address
}

// NewOwners builds an owner set.  The addresses are copied and sorted.  A
// threshold larger than the number of addresses, or a repeated address, is
// rejected with ErrInvalidOwners.
func NewOwners(locktime uint64, threshold uint32, addrs ...Address) (Owners,
	error) {

	sorted := make([]Address, len(addrs))
	copy(sorted, addrs)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i][:], sorted[j][:]) < 0
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			str := fmt.Sprintf("address %v listed twice", sorted[i])
			return Owners{}, utxoError(ErrInvalidOwners, str, nil)
		}
	}
	if int(threshold) > len(sorted) {
		str := fmt.Sprintf("threshold %d exceeds %d %s", threshold,
			len(sorted), pickNoun(len(sorted), "address", "addresses"))
		return Owners{}, utxoError(ErrInvalidOwners, str, nil)
	}

	return Owners{locktime: locktime, threshold: threshold, addrs: sorted}, nil
}

// Output is an output of one of the known OutputTypes.  Fields that a type
// does not carry are zero.  Outputs are never mutated after construction.
type Output struct {
	typ     OutputType
	amount  uint64
	groupID uint32
	payload []byte
	owners  Owners
}

// NewTransferOutput returns an amount-bearing output.
func NewTransferOutput(amount uint64, owners Owners) *Output {
	return &Output{typ: SECPTransferOutputType, amount: amount, owners: owners}
}

// NewMintOutput returns an output granting the right to mint a fungible
// asset.
func NewMintOutput(owners Owners) *Output {
	return &Output{typ: SECPMintOutputType, owners: owners}
}

// NewNFTTransferOutput returns an output holding one token of an NFT group.
func NewNFTTransferOutput(groupID uint32, payload []byte,
	owners Owners) *Output {

	p := make([]byte, len(payload))
	copy(p, payload)
	return &Output{
		typ:     NFTTransferOutputType,
		groupID: groupID,
		payload: p,
		owners:  owners,
	}
}

// NewNFTMintOutput returns an output granting the right to mint tokens of
// an NFT group.
func NewNFTMintOutput(groupID uint32, owners Owners) *Output {
	return &Output{typ: NFTMintOutputType, groupID: groupID, owners: owners}
}

// Type returns the output's type id.
func (o *Output) Type() OutputType { return o.typ }

// Kind returns the output's value kind.
func (o *Output) Kind() Kind { return o.typ.Kind() }

// Amount returns the amount carried by the output.  The boolean is false for
// every type other than SECPTransferOutputType.
func (o *Output) Amount() (uint64, bool) {
	if o.Kind() != KindAmount {
		return 0, false
	}
	return o.amount, true
}

// GroupID returns the NFT group of an NFT output.
func (o *Output) GroupID() uint32 { return o.groupID }

// Payload returns a copy of an NFT transfer output's payload.
func (o *Output) Payload() []byte {
	p := make([]byte, len(o.payload))
	copy(p, o.payload)
	return p
}

// Addresses returns a copy of the owner addresses in sorted order.
func (o *Output) Addresses() []Address {
	addrs := make([]Address, len(o.owners.addrs))
	copy(addrs, o.owners.addrs)
	return addrs
}

// Locktime returns the unix time, in seconds, before which the output cannot
// be spent.
func (o *Output) Locktime() uint64 { return o.owners.locktime }

// Threshold returns the number of owners that must sign a spend.
func (o *Output) Threshold() uint32 { return o.owners.threshold }

// Spenders returns the owners, in owner order, that appear in addrs, stopping
// once the threshold is reached.  Nothing is returned while the output is
// still locked at asOf.
func (o *Output) Spenders(addrs []Address, asOf uint64) []Address {
	if o.owners.locktime > asOf {
		return nil
	}

	given := make(map[Address]struct{}, len(addrs))
	for _, a := range addrs {
		given[a] = struct{}{}
	}

	var spenders []Address
	for _, owner := range o.owners.addrs {
		if uint32(len(spenders)) >= o.owners.threshold {
			break
		}
		if _, ok := given[owner]; ok {
			spenders = append(spenders, owner)
		}
	}
	return spenders
}

// MeetsThreshold reports whether addrs can jointly spend the output at asOf.
func (o *Output) MeetsThreshold(addrs []Address, asOf uint64) bool {
	if o.owners.locktime > asOf {
		return false
	}
	return uint32(len(o.Spenders(addrs, asOf))) >= o.owners.threshold
}

// Bytes returns the output body, without its type id.
func (o *Output) Bytes() []byte {
	size := 8 + 4 + 4 + AddressLen*len(o.owners.addrs)
	switch o.typ {
	case SECPTransferOutputType:
		size += 8
	case NFTMintOutputType:
		size += 4
	case NFTTransferOutputType:
		size += 8 + len(o.payload)
	}

	b := make([]byte, 0, size)
	switch o.typ {
	case SECPTransferOutputType:
		b = binary.BigEndian.AppendUint64(b, o.amount)
	case NFTMintOutputType:
		b = binary.BigEndian.AppendUint32(b, o.groupID)
	case NFTTransferOutputType:
		b = binary.BigEndian.AppendUint32(b, o.groupID)
		b = binary.BigEndian.AppendUint32(b, uint32(len(o.payload)))
		b = append(b, o.payload...)
	}

	b = binary.BigEndian.AppendUint64(b, o.owners.locktime)
	b = binary.BigEndian.AppendUint32(b, o.owners.threshold)
	b = binary.BigEndian.AppendUint32(b, uint32(len(o.owners.addrs)))
	for _, a := range o.owners.addrs {
		b = append(b, a[:]...)
	}
	return b
}

// decodeOutput decodes the body of an output of type typ starting at
// b[offset:].  It returns the output and the number of bytes consumed.
func decodeOutput(typ OutputType, b []byte, offset int) (*Output, int, error) {
	r := newByteReader(b, offset)
	out := &Output{typ: typ}

	switch typ {
	case SECPMintOutputType:
	case SECPTransferOutputType:
		out.amount = r.uint64("amount")
	case NFTMintOutputType:
		out.groupID = r.uint32("group id")
	case NFTTransferOutputType:
		out.groupID = r.uint32("group id")
		n := r.uint32("payload length")
		out.payload = append([]byte{}, r.bytes(int(n), "payload")...)
	default:
		str := fmt.Sprintf("unknown output type %d", uint32(typ))
		return nil, 0, utxoError(ErrUnknownOutputType, str, nil)
	}

	locktime := r.uint64("locktime")
	threshold := r.uint32("threshold")
	numAddrs := r.uint32("address count")
	if r.err != nil {
		return nil, 0, r.err
	}

	// Bound the allocation by what the buffer could possibly hold.
	if uint64(numAddrs)*AddressLen > uint64(r.remaining()) {
		str := fmt.Sprintf("%d addresses declared, %d bytes left",
			numAddrs, r.remaining())
		return nil, 0, utxoError(ErrTruncatedData, str, nil)
	}
	addrs := make([]Address, numAddrs)
	for i := range addrs {
		copy(addrs[i][:], r.bytes(AddressLen, "address"))
	}
	if r.err != nil {
		return nil, 0, r.err
	}

	owners, err := NewOwners(locktime, threshold, addrs...)
	if err != nil {
		return nil, 0, err
	}
	out.owners = owners

	return out, r.off - offset, nil
}

// byteReader reads big-endian fields from a buffer, recording the first
// truncation it runs into.
type byteReader struct {
	b   []byte
	off int
	err error
}

func newByteReader(b []byte, offset int) *byteReader {
	r := &byteReader{b: b, off: offset}
	if offset < 0 || offset > len(b) {
		str := fmt.Sprintf("offset %d outside of %d byte buffer", offset,
			len(b))
		r.err = utxoError(ErrTruncatedData, str, nil)
	}
	return r
}

func (r *byteReader) remaining() int {
	if r.err != nil {
		return 0
	}
	return len(r.b) - r.off
}

func (r *byteReader) bytes(n int, field string) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.remaining() < n {
		str := fmt.Sprintf("reading %s: need %d bytes, have %d", field, n,
			r.remaining())
		r.err = utxoError(ErrTruncatedData, str, nil)
		return nil
	}
	v := r.b[r.off : r.off+n]
	r.off += n
	return v
}

func (r *byteReader) uint16(field string) uint16 {
	v := r.bytes(2, field)
	if v == nil {
		return 0
	}
	return binary.BigEndian.Uint16(v)
}

func (r *byteReader) uint32(field string) uint32 {
	v := r.bytes(4, field)
	if v == nil {
		return 0
	}
	return binary.BigEndian.Uint32(v)
}

func (r *byteReader) uint64(field string) uint64 {
	v := r.bytes(8, field)
	if v == nil {
		return 0
	}
	return binary.BigEndian.Uint64(v)
}
