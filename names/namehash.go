// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package names implements the per-name auction state machine: the
// lifecycle a name walks through from OPEN to a registered, renewable,
// transferable record, the acceptance predicate for each covenant kind,
// and the copy-on-write view and undo log the block connector stages
// mutations through.
package names

import (
	"strings"

	"github.com/hnsgo/hnsd/chaincfg/chainhash"
)

// MaxNameLength bounds a raw name string, matching the practical limit a
// DNS label chain can carry.
const MaxNameLength = 253

// Hash computes the 32-byte name-hash of a raw name. All indices in this
// package and the authenticated tree are keyed by this hash, never by the
// name string itself, so two equal names always collide to the same key
// regardless of how they arrived (OPEN, CLAIM, or an external lookup).
func Hash(name string) chainhash.Hash {
	return chainhash.Sum([]byte(strings.ToLower(name)))
}

// IsValidName reports whether name is an acceptable raw name: non-empty,
// within MaxNameLength, and restricted to lowercase letters, digits,
// hyphens and underscores, never starting or ending with a hyphen.
func IsValidName(name string) bool {
	if len(name) == 0 || len(name) > MaxNameLength {
		return false
	}
	if name[0] == '-' || name[len(name)-1] == '-' {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-':
		case c == '_':
		default:
			return false
		}
	}
	return true
}
