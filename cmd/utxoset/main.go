// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// utxoset loads checksummed UTXO strings, optionally reconciles them with a
// named set cached on disk, and reports the spendable UTXOs and balances of
// a list of addresses.
package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/btcsuite/utxoset/codec"
	"github.com/btcsuite/utxoset/persist"
	"github.com/btcsuite/utxoset/utxo"
	"github.com/lightningnetwork/lnd/clock"
)

// maxLineLen bounds a single UTXO string read from the input.
const maxLineLen = 1 << 20

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// fatalf logs the error and returns it, so run can exit non-zero once the
// log rotator is closed.
func fatalf(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	log.Errorf("%v", err)
	return err
}

func run() error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	ctx := context.Background()

	strs, err := readInput(cfg.UTXOFile)
	if err != nil {
		return fatalf("Unable to read UTXOs: %v", err)
	}

	var clk clock.Clock
	if cfg.AsOf != 0 {
		clk = clock.NewTestClock(time.Unix(cfg.AsOf, 0))
	}
	set := utxo.NewUTXOSet(codec.CB58{}, clk)
	added := set.AddStrings(strs, false)
	log.Infof("Loaded %d of %d UTXO %s", len(added), len(strs),
		pickNoun(len(strs), "string", "strings"))

	if cfg.CacheName != "" {
		set, err = reconcile(ctx, cfg, set)
		if err != nil {
			return fatalf("Unable to reconcile with cache %q: %v",
				cfg.CacheName, err)
		}
	}

	addrCodec := codec.NewAddressCodec(cfg.ChainAlias, cfg.HRP)
	addrs, err := parseAddresses(addrCodec, cfg.Addresses)
	if err != nil {
		return fatalf("%v", err)
	}
	if addrs == nil {
		addrs = set.Addresses()
	}
	assets, err := parseAssets(cfg.Assets)
	if err != nil {
		return fatalf("%v", err)
	}

	if err := writeReport(os.Stdout, set, addrCodec, addrs, assets); err != nil {
		return fatalf("Unable to write report: %v", err)
	}
	return nil
}

// reconcile merges set with the set cached under cfg.CacheName in the
// configured store and returns the result.
func reconcile(ctx context.Context, cfg *config,
	set *utxo.UTXOSet) (*utxo.UTXOSet, error) {

	var (
		store      persist.Store
		closeStore func() error
	)
	switch cfg.StoreType {
	case storeTypeSQLite:
		s, err := persist.OpenSQLiteStore(ctx, cfg.dbPath())
		if err != nil {
			return nil, err
		}
		store, closeStore = s, s.Close

	default:
		s, err := persist.OpenWalletDBStore(cfg.dbPath(), cfg.DBTimeout)
		if err != nil {
			return nil, err
		}
		store, closeStore = s, s.Close
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Errorf("Unable to close cache: %v", err)
		}
	}()

	opts := &persist.Options{
		Name:      cfg.CacheName,
		Overwrite: cfg.Overwrite,
		MergeRule: cfg.MergeRule.MergeRule,
	}
	return persist.Reconcile(ctx, store, opts, set)
}

// readInput reads UTXO strings from path, or from stdin when path is "-".
func readInput(path string) ([]string, error) {
	if path == "-" {
		return readUTXOStrings(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readUTXOStrings(f)
}

// readUTXOStrings returns the non-empty lines of r with surrounding
// whitespace removed.  Lines starting with # are skipped.
func readUTXOStrings(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLen)

	var strs []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		strs = append(strs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return strs, nil
}

// parseAddresses decodes each address with c.  A nil result means no
// addresses were given.
func parseAddresses(c *codec.AddressCodec, strs []string) ([]utxo.Address,
	error) {

	if len(strs) == 0 {
		return nil, nil
	}

	addrs := make([]utxo.Address, 0, len(strs))
	for _, s := range strs {
		raw, err := c.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", s, err)
		}
		addr, err := utxo.AddressFromBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", s, err)
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// parseAssets decodes checksummed asset ids.  A nil result means no assets
// were given.
func parseAssets(strs []string) ([][utxo.IDLen]byte, error) {
	if len(strs) == 0 {
		return nil, nil
	}

	assets := make([][utxo.IDLen]byte, 0, len(strs))
	for _, s := range strs {
		raw, err := codec.DecodeChecksummed(s)
		if err != nil {
			return nil, fmt.Errorf("invalid asset id %q: %w", s, err)
		}
		if len(raw) != utxo.IDLen {
			return nil, fmt.Errorf("invalid asset id %q: %d bytes, "+
				"want %d", s, len(raw), utxo.IDLen)
		}

		var asset [utxo.IDLen]byte
		copy(asset[:], raw)
		assets = append(assets, asset)
	}
	return assets, nil
}

// writeReport writes, for each address and then for all of them together,
// the number of spendable UTXOs and the balance of each asset.  When assets
// is nil every asset the addresses hold is reported.
func writeReport(w io.Writer, set *utxo.UTXOSet, c *codec.AddressCodec,
	addrs []utxo.Address, assets [][utxo.IDLen]byte) error {

	var buf bytes.Buffer
	section := func(title string, addrs []utxo.Address) {
		spendable := set.UTXOIDs(addrs, true)
		all := set.UTXOIDs(addrs, false)
		fmt.Fprintf(&buf, "%s: %d of %d UTXOs spendable\n", title,
			len(spendable), len(all))

		reported := assets
		if reported == nil {
			reported = set.AssetIDs(addrs)
		}
		for _, asset := range reported {
			fmt.Fprintf(&buf, "  %s %v\n",
				codec.EncodeChecksummed(asset[:]),
				set.Balance(addrs, asset))
		}
	}

	for _, addr := range addrs {
		title, err := c.Format(addr[:])
		if err != nil {
			return err
		}
		section(title, []utxo.Address{addr})
	}
	if len(addrs) > 1 {
		section(fmt.Sprintf("all %d addresses", len(addrs)), addrs)
	}

	_, err := w.Write(buf.Bytes())
	return err
}
