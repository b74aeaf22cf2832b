package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btclog"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultDataDir    = "utxosig"
	defaultRPCListen  = ":8081"
	defaultLogLevel   = "info"
	defaultWalletFile = "wallet.dat"
	defaultDBFile     = "txstore.db"
	defaultConfigFile = "utxosig.conf"
)

// config defines the configuration options for utxosigd.
type config struct {
	ConfigFile string `long:"configfile" description:"Path to configuration file, defaults to <datadir>/utxosig.conf"`
	DataDir    string `long:"datadir" description:"Directory for the wallet and transaction archive"`
	RPCListen  string `long:"rpclisten" description:"Interface/port the JSON-RPC server listens on"`
	DebugLevel string `long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical, off}"`
	WalletFile string `long:"walletfile" description:"Wallet WIF file, relative to datadir"`
	DBFile     string `long:"dbfile" description:"Transaction archive, relative to datadir"`

	logLevel btclog.Level
}

func defaultConfig() config {
	return config{
		DataDir:    defaultDataDir,
		RPCListen:  defaultRPCListen,
		DebugLevel: defaultLogLevel,
		WalletFile: defaultWalletFile,
		DBFile:     defaultDBFile,
	}
}

// loadConfig parses args on top of the defaults and an optional config
// file, then validates and resolves the result. Command line options take
// precedence over the file.
func loadConfig(args []string) (*config, error) {
	// Pre-parse to find the data directory and config file.
	preCfg := defaultConfig()
	if _, err := flags.NewParser(&preCfg, flags.Default).ParseArgs(args); err != nil {
		return nil, err
	}

	configFile := preCfg.ConfigFile
	if configFile == "" {
		configFile = filepath.Join(preCfg.DataDir, defaultConfigFile)
	}

	cfg := defaultConfig()
	parser := flags.NewParser(&cfg, flags.Default)
	err := flags.NewIniParser(parser).ParseFile(configFile)
	if err != nil {
		// A missing file is fine, a broken one isn't.
		if _, ok := err.(*flags.IniError); ok {
			return nil, err
		}
		if preCfg.ConfigFile != "" {
			return nil, err
		}
	}
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	level, ok := btclog.LevelFromString(strings.ToLower(cfg.DebugLevel))
	if !ok {
		return nil, fmt.Errorf("invalid debuglevel %q", cfg.DebugLevel)
	}
	cfg.logLevel = level

	if cfg.RPCListen == "" {
		return nil, fmt.Errorf("rpclisten must not be empty")
	}

	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	cfg.WalletFile = resolvePath(cfg.DataDir, cfg.WalletFile)
	cfg.DBFile = resolvePath(cfg.DataDir, cfg.DBFile)

	return &cfg, nil
}

// resolvePath joins relative file names onto the data directory.
func resolvePath(dir, name string) string {
	name = cleanAndExpandPath(name)
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// cleanAndExpandPath expands a leading ~ and environment variables and
// cleans the result.
func cleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = strings.Replace(path, "~", home, 1)
		}
	}

	return filepath.Clean(os.ExpandEnv(path))
}
