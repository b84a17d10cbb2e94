// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/btcsuite/btclog"
)

// log is the logger used by the package. It defaults to the no-op logger
// and must be set by calling UseLogger before this package produces any
// logging output.
var log = btclog.Disabled

// UseLogger sets the package-wide logger to logger. This should be called
// before the package is used in any way.
func UseLogger(logger btclog.Logger) {
	log = logger
}
