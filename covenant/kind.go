// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package covenant defines the covenant types attached to transaction
// outputs that drive the name-auction state machine. A covenant is not a
// script: it is a small, positionally-encoded tag plus an item list that
// the names package interprets against the current state of a name.
package covenant

import "fmt"

// Kind identifies the action a covenant-bearing output requests against a
// name.
type Kind uint8

// The complete set of covenant kinds. Ordering matches the lifecycle a name
// walks through: a name is claimed or opened, bid on, revealed, redeemed or
// registered, then updated, renewed, transferred, finalized, or revoked.
const (
	// None marks an output with no covenant at all: an ordinary payment.
	None Kind = iota

	// Claim seeds a name directly to its Handshake-era claimant, bypassing
	// the auction, subject to the one-shot airdrop bitfield.
	Claim

	// Open starts the auction for a name, beginning its rollout.
	Open

	// Bid commits a blinded (hash-locked) bid amount during the bidding
	// period.
	Bid

	// Reveal discloses the true bid amount and a nonce that must match an
	// earlier Bid output.
	Reveal

	// Redeem returns a losing bidder's bid deposit after the auction
	// closes.
	Redeem

	// Register finalizes the winning bid, moving a name to CLOSED and
	// recording its initial resource data.
	Register

	// Update replaces a registered name's resource record.
	Update

	// Renew extends a name's expiration without altering its resource
	// record.
	Renew

	// Transfer begins a pending ownership change, subject to a lockup
	// window before it can be finalized.
	Transfer

	// Finalize completes a pending transfer once its lockup has elapsed.
	Finalize

	// Revoke retires a name: it stays REVOKED until it expires, after
	// which it can be opened as a fresh auction.
	Revoke

	// Data attaches opaque auxiliary data to a registered name without
	// altering its ownership or resource record.
	Data
)

var kindNames = map[Kind]string{
	None:     "NONE",
	Claim:    "CLAIM",
	Open:     "OPEN",
	Bid:      "BID",
	Reveal:   "REVEAL",
	Redeem:   "REDEEM",
	Register: "REGISTER",
	Update:   "UPDATE",
	Renew:    "RENEW",
	Transfer: "TRANSFER",
	Finalize: "FINALIZE",
	Revoke:   "REVOKE",
	Data:     "DATA",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint8(k))
}

// IsName reports whether the covenant kind targets a name at all. NONE
// outputs carry no name and are ignored by the auction state machine.
func (k Kind) IsName() bool {
	return k != None
}

// IsLinked reports whether outputs of this kind must chain from a previous
// covenant output for the same name (as opposed to Open or Claim, which can
// originate a name outright).
func (k Kind) IsLinked() bool {
	switch k {
	case Open, Claim:
		return false
	default:
		return true
	}
}
