package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"

	"utxosig/database"
	"utxosig/rpc"
	"utxosig/wallet"
)

// loadOrCreateWallet loads the WIF wallet at path, generating and saving a
// new key when the file doesn't exist.
func loadOrCreateWallet(path string) (*wallet.Wallet, error) {
	if _, err := os.Stat(path); err == nil {
		w, err := wallet.LoadWallet(path)
		if err != nil {
			return nil, fmt.Errorf("load wallet %s: %w", path, err)
		}
		usgdLog.Infof("Wallet loaded: %s", w.Address)
		return w, nil
	}

	usgdLog.Infof("No wallet at %s, generating a new key", path)
	w, err := wallet.NewWallet(rand.Reader)
	if err != nil {
		return nil, err
	}
	if err := wallet.SaveWallet(path, w); err != nil {
		return nil, fmt.Errorf("save wallet: %w", err)
	}
	usgdLog.Infof("Wallet created: %s", w.Address)
	return w, nil
}

func run(cfg *config, interrupt <-chan os.Signal) error {
	setLogLevels(cfg.logLevel)

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return err
	}
	usgdLog.Infof("Using datadir %s", cfg.DataDir)

	w, err := loadOrCreateWallet(cfg.WalletFile)
	if err != nil {
		return err
	}

	db, err := database.OpenDB(cfg.DBFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			usgdLog.Errorf("Unable to close database: %v", err)
		}
	}()

	server := rpc.NewServer(w, database.NewTxStore(db))
	if err := server.Start(cfg.RPCListen); err != nil {
		return err
	}

	<-interrupt
	usgdLog.Info("Received shutdown request")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return server.Stop(ctx)
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		// go-flags already printed help and parse errors.
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		if _, ok := err.(*flags.Error); !ok {
			_, _ = fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	if err := run(cfg, interrupt); err != nil {
		usgdLog.Criticalf("Shutting down: %v", err)
		os.Exit(1)
	}
}
