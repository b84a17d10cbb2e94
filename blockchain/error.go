// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"errors"
	"fmt"
)

// ErrorKind distinguishes the broad categories of failure the consensus
// core can report, matching the taxonomy external callers are contractually
// bound to.
type ErrorKind int

const (
	// ErrVerify indicates a block or transaction violates a consensus
	// rule. The block is rejected outright; the caller must not retry
	// with the same block bytes.
	ErrVerify ErrorKind = iota

	// ErrDecode indicates malformed bytes were encountered on ingress.
	// Treated identically to ErrVerify at the block boundary.
	ErrDecode

	// ErrMissingData indicates a lookup (coin, name, header) needed to
	// evaluate a rule could not be satisfied from local state, distinct
	// from a rule violation: the caller may need to fetch more chain
	// data and retry.
	ErrMissingData

	// ErrScanAborted indicates a scan_interactive callback returned ABORT.
	ErrScanAborted

	// ErrSoftForkState indicates an internal inconsistency in the
	// deployment threshold state machine. An unknown deployment ID
	// requested by a caller is reported as a plain error, not as this kind.
	ErrSoftForkState
)

func (k ErrorKind) String() string {
	switch k {
	case ErrVerify:
		return "VerifyError"
	case ErrDecode:
		return "DecodeError"
	case ErrMissingData:
		return "MissingDataError"
	case ErrScanAborted:
		return "ScanAborted"
	case ErrSoftForkState:
		return "SoftForkStateError"
	default:
		return "UnknownError"
	}
}

// RuleError identifies a rule violation. It carries a machine-readable
// reason string alongside the broad error kind, since reason strings
// (e.g. "bad-txns-bits-missingorspent") are themselves part of the
// external contract and must never be reworded between releases.
type RuleError struct {
	Kind        ErrorKind
	Reason      string
	Description string
}

// Error satisfies the error interface.
func (e RuleError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Reason, e.Description)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// ruleError creates a RuleError given a kind, reason, and description.
func ruleError(kind ErrorKind, reason, description string) RuleError {
	return RuleError{Kind: kind, Reason: reason, Description: description}
}

// IsErrorCode returns whether err is a RuleError carrying the given reason
// string, unwrapping as needed.
func IsErrorCode(err error, reason string) bool {
	var re RuleError
	if errors.As(err, &re) {
		return re.Reason == reason
	}
	return false
}

// Well-known reason strings. These are part of the external contract: a
// caller matches on the string, not on Go error identity, so they must
// never be reworded.
const (
	ReasonScriptVerifyFailed = "mandatory-script-verify-flag-failed"
	ReasonBitsMissingOrSpent = "bad-txns-bits-missingorspent"
	ReasonBadCoinbaseAmount  = "bad-cb-amount"
	ReasonInvalidCovenant    = "invalid-covenant"
	ReasonBadUpdateEscher    = "bad-update-escher"
	ReasonBadClaimPrefix     = "bad-claim-"
	ReasonBadClaimTimeout    = "bad-claim-timeout"
	ReasonScanAborted        = "scan request aborted."
)
