// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package codec

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	// AddressLen is the length in bytes of a raw address.
	AddressLen = 20

	// aliasSeparator separates the chain alias from the bech32 part, as in
	// "X-avax1...".
	aliasSeparator = "-"
)

// FormatAddress renders a raw address as "<chainAlias>-<bech32(hrp, addr)>".
func FormatAddress(chainAlias, hrp string, addr []byte) (string, error) {
	if len(addr) != AddressLen {
		return "", fmt.Errorf("%w: address is %d bytes, want %d",
			ErrInvalidLength, len(addr), AddressLen)
	}
	if chainAlias == "" || strings.Contains(chainAlias, aliasSeparator) {
		return "", fmt.Errorf("%w: bad chain alias %q", ErrInvalidFormat,
			chainAlias)
	}

	conv, err := bech32.ConvertBits(addr, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	encoded, err := bech32.Encode(hrp, conv)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	return chainAlias + aliasSeparator + encoded, nil
}

// ParseAddress splits a chain-prefixed bech32 address into its chain alias,
// human-readable part and raw address bytes.
func ParseAddress(s string) (string, string, []byte, error) {
	chainAlias, rest, ok := strings.Cut(s, aliasSeparator)
	if !ok || chainAlias == "" || rest == "" {
		return "", "", nil, fmt.Errorf("%w: no chain alias in %q",
			ErrInvalidFormat, s)
	}

	hrp, data, err := bech32.Decode(rest)
	if err != nil {
		return "", "", nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	addr, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", "", nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if len(addr) != AddressLen {
		return "", "", nil, fmt.Errorf("%w: address is %d bytes, want %d",
			ErrInvalidLength, len(addr), AddressLen)
	}

	return chainAlias, hrp, addr, nil
}

// AddressCodec formats and parses addresses of a single chain on a single
// network.
type AddressCodec struct {
	// ChainAlias is the chain prefix, e.g. "X".
	ChainAlias string

	// HRP is the network's bech32 human-readable part, e.g. "avax".
	HRP string
}

// NewAddressCodec returns an AddressCodec for the given chain and network.
func NewAddressCodec(chainAlias, hrp string) *AddressCodec {
	return &AddressCodec{ChainAlias: chainAlias, HRP: hrp}
}

// Format renders addr for the codec's chain and network.
func (c *AddressCodec) Format(addr []byte) (string, error) {
	return FormatAddress(c.ChainAlias, c.HRP, addr)
}

// Parse decodes s, failing if it was rendered for another chain or network.
func (c *AddressCodec) Parse(s string) ([]byte, error) {
	chainAlias, hrp, addr, err := ParseAddress(s)
	if err != nil {
		return nil, err
	}
	if chainAlias != c.ChainAlias {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongChain,
			chainAlias, c.ChainAlias)
	}
	if hrp != c.HRP {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongHRP, hrp,
			c.HRP)
	}
	return addr, nil
}
