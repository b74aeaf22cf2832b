package main

import (
	"os"

	"github.com/btcsuite/btclog"

	"utxosig/blockchain"
	"utxosig/database"
	"utxosig/rpc"
	"utxosig/wallet"
)

// Loggers per subsystem. A single backend logger is created and all
// subsystem loggers created from it write to stdout.
var (
	backendLog = btclog.NewBackend(os.Stdout)

	usgdLog = backendLog.Logger("USGD")

	subsystemLoggers = map[string]btclog.Logger{
		"USGD":               usgdLog,
		blockchain.Subsystem: backendLog.Logger(blockchain.Subsystem),
		wallet.Subsystem:     backendLog.Logger(wallet.Subsystem),
		database.Subsystem:   backendLog.Logger(database.Subsystem),
		rpc.Subsystem:        backendLog.Logger(rpc.Subsystem),
	}
)

func init() {
	blockchain.UseLogger(subsystemLoggers[blockchain.Subsystem])
	wallet.UseLogger(subsystemLoggers[wallet.Subsystem])
	database.UseLogger(subsystemLoggers[database.Subsystem])
	rpc.UseLogger(subsystemLoggers[rpc.Subsystem])
}

// setLogLevels sets the log level for all subsystem loggers.
func setLogLevels(level btclog.Level) {
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
}
