// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btclog"
	"github.com/btcsuite/utxoset/internal/cfgutil"
	"github.com/btcsuite/utxoset/utxo"
	flags "github.com/jessevdk/go-flags"
)

const (
	appVersion = "0.1.0"

	defaultConfigFilename = "utxoset.conf"
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "utxoset.log"
	defaultDBFilename     = "utxosets.db"
	defaultHRP            = "avax"
	defaultChainAlias     = "X"
	defaultStoreType      = storeTypeBolt
	defaultDBTimeout      = 60 * time.Second

	storeTypeBolt   = "bdb"
	storeTypeSQLite = "sqlite"
)

var (
	defaultAppDataDir = btcutil.AppDataDir("utxoset", false)
	defaultConfigFile = filepath.Join(defaultAppDataDir, defaultConfigFilename)
	defaultLogDir     = filepath.Join(defaultAppDataDir, defaultLogDirname)
)

type config struct {
	// General application behavior
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	AppDataDir  string `short:"A" long:"appdata" description:"Application data directory for the UTXO cache"`
	LogDir      string `long:"logdir" description:"Directory to log output."`
	DebugLevel  string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`

	// Input and address encoding
	UTXOFile   string   `short:"f" long:"utxofile" description:"File holding one checksummed UTXO string per line, - for stdin" default:"-"`
	Addresses  []string `short:"a" long:"address" description:"Address to report on (may be repeated; all indexed addresses when unset)"`
	Assets     []string `long:"asset" description:"Checksummed asset id to report (may be repeated; every held asset when unset)"`
	HRP        string   `long:"hrp" description:"Human-readable part of bech32 addresses"`
	ChainAlias string   `long:"chain" description:"Chain alias prefixed to addresses"`
	AsOf       int64    `long:"asof" description:"Unix time to judge locktimes against (current time when unset)"`

	// Cache reconciliation
	CacheName string                 `short:"n" long:"cachename" description:"Name to reconcile the UTXOs against in the cache (no caching when unset)"`
	StoreType string                 `long:"store" description:"Cache backend {bdb, sqlite}"`
	DBTimeout time.Duration          `long:"dbtimeout" description:"Timeout for obtaining the bdb cache lock"`
	MergeRule *cfgutil.MergeRuleFlag `short:"m" long:"mergerule" description:"How cached and loaded UTXOs are combined {intersection, differenceSelf, differenceNew, symmetricDifference, union, unionMinusNew, unionMinusSelf}"`
	Overwrite bool                   `long:"overwrite" description:"Replace the cached set with the reconciled one"`
}

// dbPath returns the cache database path for the configured store type.
func (c *config) dbPath() string {
	filename := defaultDBFilename
	if c.StoreType == storeTypeSQLite {
		filename = "utxosets.sqlite"
	}
	return filepath.Join(c.AppDataDir, filename)
}

// validLogLevel returns whether or not logLevel is a valid debug log level.
func validLogLevel(logLevel string) bool {
	_, ok := btclog.LevelFromString(logLevel)
	return ok
}

// supportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func supportedSubsystems() []string {
	// Convert the subsystemLoggers map keys to a slice.
	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}

	// Sort the subsytems for stable display.
	sort.Strings(subsystems)
	return subsystems
}

// parseAndSetDebugLevels attempts to parse the specified debug level and set
// the levels accordingly.  An appropriate error is returned if anything is
// invalid.
func parseAndSetDebugLevels(debugLevel string) error {
	// When the specified string doesn't have any delimters, treat it as
	// the log level for all subsystems.
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		// Validate debug log level.
		if !validLogLevel(debugLevel) {
			str := "The specified debug level [%v] is invalid"
			return fmt.Errorf(str, debugLevel)
		}

		// Change the logging level for all subsystems.
		setLogLevels(debugLevel)

		return nil
	}

	// Split the specified string into subsystem/level pairs while detecting
	// issues and update the log levels accordingly.
	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		if !strings.Contains(logLevelPair, "=") {
			str := "The specified debug level contains an invalid " +
				"subsystem/level pair [%v]"
			return fmt.Errorf(str, logLevelPair)
		}

		// Extract the specified subsystem and log level.
		fields := strings.Split(logLevelPair, "=")
		subsysID, logLevel := fields[0], fields[1]

		// Validate subsystem.
		if _, exists := subsystemLoggers[subsysID]; !exists {
			str := "The specified subsystem [%v] is invalid -- " +
				"supported subsytems %v"
			return fmt.Errorf(str, subsysID, supportedSubsystems())
		}

		// Validate log level.
		if !validLogLevel(logLevel) {
			str := "The specified debug level [%v] is invalid"
			return fmt.Errorf(str, logLevel)
		}

		setLogLevel(subsysID, logLevel)
	}

	return nil
}

// loadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The above results in utxoset functioning properly without any config
// settings while still allowing the user to override settings with config
// files and command line options.  Command line options always take
// precedence.
func loadConfig() (*config, []string, error) {
	// Default config.
	cfg := config{
		DebugLevel: defaultLogLevel,
		ConfigFile: defaultConfigFile,
		AppDataDir: defaultAppDataDir,
		LogDir:     defaultLogDir,
		HRP:        defaultHRP,
		ChainAlias: defaultChainAlias,
		StoreType:  defaultStoreType,
		DBTimeout:  defaultDBTimeout,
		MergeRule:  cfgutil.NewMergeRuleFlag(utxo.MergeUnion),
	}

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.Default)
	_, err := preParser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			preParser.WriteHelp(os.Stderr)
		}
		return nil, nil, err
	}

	// Show the version and exit if the version flag was specified.
	funcName := "loadConfig"
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
	if preCfg.ShowVersion {
		fmt.Println(appName, "version", appVersion)
		os.Exit(0)
	}

	// Load additional config from file.
	var configFileError error
	parser := flags.NewParser(&cfg, flags.Default)
	configFilePath := cfgutil.CleanAndExpandPath(preCfg.ConfigFile)
	configFileExists, err := cfgutil.FileExists(configFilePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}
	if configFileExists {
		err = flags.NewIniParser(parser).ParseFile(configFilePath)
		if err != nil {
			if _, ok := err.(*os.PathError); !ok {
				fmt.Fprintln(os.Stderr, err)
				parser.WriteHelp(os.Stderr)
				return nil, nil, err
			}
			configFileError = err
		}
	} else if preCfg.ConfigFile != defaultConfigFile {
		configFileError = fmt.Errorf("config file %v does not exist",
			configFilePath)
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, nil, err
	}

	cfg.AppDataDir = cfgutil.CleanAndExpandPath(cfg.AppDataDir)
	cfg.LogDir = cfgutil.CleanAndExpandPath(cfg.LogDir)
	if cfg.UTXOFile != "-" {
		cfg.UTXOFile = cfgutil.CleanAndExpandPath(cfg.UTXOFile)
	}

	// Initialize log rotation.  After log rotation has been initialized,
	// the logger variables may be used.
	initLogRotator(filepath.Join(cfg.LogDir, defaultLogFilename))

	// Parse, validate, and set debug log level(s).
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		err := fmt.Errorf("%s: %v", funcName, err.Error())
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	switch cfg.StoreType {
	case storeTypeBolt, storeTypeSQLite:
	default:
		str := "%s: unknown cache backend %q -- supported backends " +
			"are %s and %s"
		err := fmt.Errorf(str, funcName, cfg.StoreType, storeTypeBolt,
			storeTypeSQLite)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, nil, err
	}

	if cfg.HRP == "" || cfg.ChainAlias == "" {
		err := fmt.Errorf("%s: --hrp and --chain must not be empty",
			funcName)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, nil, err
	}

	if cfg.AsOf < 0 {
		err := fmt.Errorf("%s: --asof must not be negative", funcName)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, nil, err
	}

	// Warn about missing config file after the final command line parse
	// succeeds.  This prevents the warning on help messages and invalid
	// options.
	if configFileError != nil {
		log.Warnf("%v", configFileError)
	}

	return &cfg, remainingArgs, nil
}
