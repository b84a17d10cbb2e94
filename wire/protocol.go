// Copyright (c) 2013-2024 The btcsuite developers
// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "fmt"

// ProtocolVersion is the latest wire protocol version this package supports.
const ProtocolVersion uint32 = 1

// Network identifies which network a message or block belongs to.
type Network uint32

// Constants used to identify the network a block was produced for. Mirrors
// the magic-bytes convention used to prefix gossip messages, even though the
// consensus core never frames a message itself.
const (
	// MainNet is the principal, production name-auction network.
	MainNet Network = 0x48534e4d // "HSNM"

	// TestNet is the public test network.
	TestNet Network = 0x48534e54 // "HSNT"

	// RegTest is a network with instant, on-demand block generation used
	// for integration tests.
	RegTest Network = 0x48534e52 // "HSNR"

	// SimNet is a private network used for simulation harnesses.
	SimNet Network = 0x48534e53 // "HSNS"
)

var networkStrings = map[Network]string{
	MainNet: "mainnet",
	TestNet: "testnet",
	RegTest: "regtest",
	SimNet:  "simnet",
}

// String returns the Network in human-readable form.
func (n Network) String() string {
	if s, ok := networkStrings[n]; ok {
		return s
	}
	return fmt.Sprintf("unknown network (0x%08x)", uint32(n))
}
