// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"
)

const (
	defaultDataDirname    = "data"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "hnsd.log"
	defaultMaxLogRolls    = 3
	defaultBitfieldSize   = 1_000_000
	defaultConfigFilename = "hnsd.conf"
)

// config holds every knob the daemon accepts, either from hnsd.conf or
// the command line. Command-line flags take precedence over the config
// file, matching the precedence go-flags' IniParse gives a second pass
// over the same struct.
type config struct {
	ConfigFile string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir    string `short:"b" long:"datadir" description:"Directory to store the name tree, undo log, and bitfield"`
	LogDir     string `long:"logdir" description:"Directory to log output"`

	Network string `long:"network" description:"Network to connect to" choice:"mainnet" choice:"testnet" choice:"regtest" choice:"simnet"`

	BitfieldSize uint32 `long:"bitfieldsize" description:"Number of one-shot coinbase reservation slots fixed by the network"`

	MaxLogRolls int `long:"maxlogrolls" description:"Maximum number of log file rolls to keep"`
}

// defaultConfig returns a config populated with the daemon's defaults,
// rooted at the OS-appropriate application data directory.
func defaultConfig() config {
	appData := appDataDir()
	return config{
		ConfigFile:   filepath.Join(appData, defaultConfigFilename),
		DataDir:      filepath.Join(appData, defaultDataDirname),
		LogDir:       filepath.Join(appData, defaultLogDirname),
		Network:      "mainnet",
		BitfieldSize: defaultBitfieldSize,
		MaxLogRolls:  defaultMaxLogRolls,
	}
}

// appDataDir returns the per-user directory hnsd stores its state in by
// default, deliberately not following XDG on every platform the way a
// general-purpose tool might: a single flat directory keeps the common
// case (one node, one machine) simple to locate.
func appDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", ".hnsd")
	}
	return filepath.Join(home, ".hnsd")
}

// loadConfig parses the command line, then layers a config file on top
// of the compiled-in defaults. Command-line-only flags like -C are
// consumed before the config file is read so a custom path takes
// effect.
func loadConfig() (*config, error) {
	cfg := defaultConfig()

	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.Default&^flags.PrintErrors)
	if _, err := preParser.Parse(); err != nil {
		if flagErr, ok := err.(*flags.Error); ok && flagErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, err
	}
	if preCfg.ConfigFile != "" {
		cfg.ConfigFile = preCfg.ConfigFile
	}

	if _, err := os.Stat(cfg.ConfigFile); err == nil {
		iniParser := flags.NewIniParser(flags.NewParser(&cfg, flags.Default))
		if err := iniParser.ParseFile(cfg.ConfigFile); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", cfg.ConfigFile, err)
		}
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.LogDir, 0700); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	return &cfg, nil
}
