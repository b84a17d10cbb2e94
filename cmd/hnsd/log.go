// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/hnsgo/hnsd/blockchain"
)

// logRotator rolls hnsd.log once it crosses 10 MiB, keeping cfg.MaxLogRolls
// previous rolls around. It's nil until initLogRotator runs, and must be
// closed on shutdown so the final buffered write lands on disk.
var logRotator *rotator.Rotator

// logWriter fans a single write out to both stdout and the rotator, the
// same split btcd-family daemons use so foreground runs stay visible
// while the on-disk log survives past the terminal.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

// initLogRotator opens the rotating log file under logDir, keeping up to
// maxRolls previous rolls, and points the blockchain package's logger at
// the combined stdout+file writer.
func initLogRotator(logDir string, maxRolls int) error {
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return err
	}
	logFile := filepath.Join(logDir, defaultLogFilename)

	r, err := rotator.New(logFile, 10*1024, false, maxRolls)
	if err != nil {
		return err
	}
	logRotator = r

	backend := btclog.NewBackend(logWriter{})
	blockchain.UseLogger(backend.Logger("CHAN"))
	return nil
}
