package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btclog"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := loadConfig([]string{"--datadir=" + dir})
	require.NoError(t, err)
	require.Equal(t, dir, cfg.DataDir)
	require.Equal(t, defaultRPCListen, cfg.RPCListen)
	require.Equal(t, filepath.Join(dir, defaultWalletFile), cfg.WalletFile)
	require.Equal(t, filepath.Join(dir, defaultDBFile), cfg.DBFile)
	require.Equal(t, btclog.LevelInfo, cfg.logLevel)
}

func TestLoadConfigFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	conf := "[Application Options]\n" +
		"rpclisten=127.0.0.1:9999\n" +
		"debuglevel=debug\n" +
		"walletfile=/tmp/abs-wallet.dat\n"
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, defaultConfigFile), []byte(conf), 0600,
	))

	cfg, err := loadConfig([]string{"--datadir=" + dir})
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9999", cfg.RPCListen)
	require.Equal(t, btclog.LevelDebug, cfg.logLevel)
	require.Equal(t, "/tmp/abs-wallet.dat", cfg.WalletFile)

	// The command line wins over the file.
	cfg, err = loadConfig([]string{
		"--datadir=" + dir, "--rpclisten=:7000", "--debuglevel=trace",
	})
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.RPCListen)
	require.Equal(t, btclog.LevelTrace, cfg.logLevel)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := loadConfig([]string{"--datadir=" + dir, "--debuglevel=loud"})
	require.Error(t, err)

	_, err = loadConfig([]string{"--datadir=" + dir, "--rpclisten="})
	require.Error(t, err)

	_, err = loadConfig([]string{
		"--configfile=" + filepath.Join(dir, "missing.conf"),
	})
	require.Error(t, err)

	_, err = loadConfig([]string{"--nosuchflag"})
	require.Error(t, err)
}

func TestLoadOrCreateWallet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.dat")

	w1, err := loadOrCreateWallet(path)
	require.NoError(t, err)

	w2, err := loadOrCreateWallet(path)
	require.NoError(t, err)
	require.Equal(t, w1.Address, w2.Address)

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))
	_, err = loadOrCreateWallet(path)
	require.Error(t, err)
}
