// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command hnsd runs a name-auction full node: it connects blocks against
// the covenant state machine and authenticated name tree, and exposes
// the on-disk LevelDB store those packages read and write through.
package main

import (
	"fmt"
	"os"

	"github.com/hnsgo/hnsd/blockchain"
	"github.com/hnsgo/hnsd/chaincfg"
	"github.com/hnsgo/hnsd/claim"
	"github.com/hnsgo/hnsd/database"
)

func netParams(network string) (*chaincfg.Params, error) {
	switch network {
	case "mainnet":
		return &chaincfg.MainNetParams, nil
	case "testnet":
		return &chaincfg.TestNetParams, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "simnet":
		return &chaincfg.SimNetParams, nil
	default:
		return nil, fmt.Errorf("unknown network %q", network)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := initLogRotator(cfg.LogDir, cfg.MaxLogRolls); err != nil {
		return fmt.Errorf("initializing log rotator: %w", err)
	}
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	params, err := netParams(cfg.Network)
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening database at %s: %w", cfg.DataDir, err)
	}
	defer db.Close()

	chain, err := blockchain.New(&blockchain.Config{
		ChainParams:    params,
		NameStore:      db,
		ClaimValidator: &claim.Validator{},
		BitfieldSize:   cfg.BitfieldSize,
		UndoStore:      db,
		TreeRootStore:  db,
	})
	if err != nil {
		return fmt.Errorf("initializing chain: %w", err)
	}

	tipHash, tipHeight := chain.BestSnapshot()
	fmt.Fprintf(os.Stdout, "hnsd: %s at height %d, tip %s\n", params.Name, tipHeight, tipHash)
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "hnsd:", err)
		os.Exit(1)
	}
}
