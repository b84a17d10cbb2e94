// Copyright (c) 2016-2017 The btcsuite developers
// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
)

// ThresholdState define the various threshold states used when voting on
// consensus rule changes via the version bits mechanism.
type ThresholdState byte

const (
	// ThresholdDefined is the first state for each deployment. It is the
	// state before the deployment has its start time.
	ThresholdDefined ThresholdState = iota

	// ThresholdStarted is the state for a deployment once its start time
	// has been reached, and before its expiration or lock-in.
	ThresholdStarted

	// ThresholdLockedIn is the state for a deployment during the retarget
	// period which is after the ThresholdStarted state period and the
	// miner votes have reached the defined threshold.
	ThresholdLockedIn

	// ThresholdActive is the state for a deployment for all blocks after
	// the ThresholdLockedIn retarget period.
	ThresholdActive

	// ThresholdFailed is the state for a deployment once its expiration
	// time has been reached and it did not reach the ThresholdLockedIn
	// state.
	ThresholdFailed
)

var thresholdStateStrings = map[ThresholdState]string{
	ThresholdDefined:   "ThresholdDefined",
	ThresholdStarted:   "ThresholdStarted",
	ThresholdLockedIn:  "ThresholdLockedIn",
	ThresholdActive:    "ThresholdActive",
	ThresholdFailed:    "ThresholdFailed",
}

// String returns the ThresholdState as a human-readable name.
func (t ThresholdState) String() string {
	if s, ok := thresholdStateStrings[t]; ok {
		return s
	}
	return fmt.Sprintf("Unknown ThresholdState (%d)", int(t))
}

// thresholdConditionChecker provides a generic interface that is invoked to
// determine when a consensus rule change threshold should be activated.
type thresholdConditionChecker interface {
	// HasStarted returns whether the deployment has started based on the
	// passed block node.
	HasStarted(*blockNode) bool

	// HasEnded returns whether the deployment has ended based on the
	// passed block node.
	HasEnded(*blockNode) bool

	// RuleChangeActivationThreshold is the number of blocks, for the
	// window defined by MinerConfirmationWindow, that the condition must
	// be true in order to lock in a rule change.
	RuleChangeActivationThreshold() uint32

	// MinerConfirmationWindow is the number of blocks in each threshold
	// state retarget window.
	MinerConfirmationWindow() uint32

	// Condition returns whether the rule change activation condition has
	// been met given the passed block node.
	Condition(*blockNode) (bool, error)

	// EligibleToActivate returns true if a custom deployment can
	// transition from the LockedIn to the Active state.
	EligibleToActivate(*blockNode) bool

	// IsSpeedy returns true if this is a "speedy" deployment, which only
	// expires after a full confirmation window has been observed, rather
	// than a single window boundary.
	IsSpeedy() bool

	// ForceActive reports whether the deployment should be forced to the
	// Active state regardless of observed signaling.
	ForceActive(*blockNode) bool
}

// thresholdStateCache provides a type to cache the threshold states for
// each confirmation window, keyed by the hash of the final block in the
// window.
type thresholdStateCache struct {
	entries map[chainHashKey]ThresholdState
}

// chainHashKey is thresholdStateCache's map key: a byte-for-byte copy of
// a block hash.
type chainHashKey [32]byte

// newThresholdCaches returns a slice of new caches, one for each of the
// given number of deployments.
func newThresholdCaches(numCaches int) []thresholdStateCache {
	caches := make([]thresholdStateCache, numCaches)
	for i := 0; i < numCaches; i++ {
		caches[i] = thresholdStateCache{
			entries: make(map[chainHashKey]ThresholdState),
		}
	}
	return caches
}

// Lookup returns the threshold state associated with the given previous
// block node, if one is cached.
func (c *thresholdStateCache) Lookup(hash chainHashKey) (ThresholdState, bool) {
	state, ok := c.entries[hash]
	return state, ok
}

// Update populates the cache with the passed state at the passed hash.
func (c *thresholdStateCache) Update(hash chainHashKey, state ThresholdState) {
	c.entries[hash] = state
}

// thresholdState returns the current rule change threshold state for the
// block AFTER the given node, as determined by the given checker, walking
// back window boundaries until a cached or defined state is found and then
// replaying forward.
//
// This function MUST be called with the chain state lock held (for
// writes).
func (b *BlockChain) thresholdState(prevNode *blockNode, checker thresholdConditionChecker, cache *thresholdStateCache) (ThresholdState, error) {
	confirmationWindow := int32(checker.MinerConfirmationWindow())
	if confirmationWindow == 0 {
		return ThresholdFailed, nil
	}

	// The state is simply defined if the window the deployment would
	// first appear in has not been reached yet.
	if prevNode == nil || (prevNode.height+1) < confirmationWindow {
		return ThresholdDefined, nil
	}

	// Walk backward through each confirmation window, accumulating the
	// chain of window-boundary nodes whose state isn't yet cached.
	var neededStates []*blockNode
	curNode := prevNode
	for curNode != nil && (curNode.height+1)%confirmationWindow != 0 {
		curNode = curNode.parent
	}

	state := ThresholdDefined
	for curNode != nil {
		key := chainHashKey(curNode.hash)
		if cached, ok := cache.Lookup(key); ok {
			state = cached
			break
		}

		if checker.ForceActive(curNode) {
			state = ThresholdActive
			cache.Update(key, state)
			break
		}

		if !checker.HasStarted(curNode) {
			state = ThresholdDefined
			cache.Update(key, state)
			break
		}

		neededStates = append(neededStates, curNode)
		curNode = curNode.RelativeAncestor(confirmationWindow)
	}
	if curNode == nil {
		state = ThresholdDefined
	}

	// Walk forward, recomputing the state at each window boundary from
	// the oldest undetermined window to the most recent.
	for i := len(neededStates) - 1; i >= 0; i-- {
		windowNode := neededStates[i]

		switch state {
		case ThresholdDefined:
			if checker.HasEnded(windowNode) {
				state = ThresholdFailed
				break
			}
			state = ThresholdStarted

		case ThresholdStarted:
			// A speedy deployment only fails after this window's signals
			// have been counted.
			if !checker.IsSpeedy() && checker.HasEnded(windowNode) {
				state = ThresholdFailed
				break
			}

			count, err := countWindowSignals(windowNode, confirmationWindow, checker)
			if err != nil {
				return ThresholdFailed, err
			}
			switch {
			case count >= checker.RuleChangeActivationThreshold():
				state = ThresholdLockedIn
			case checker.HasEnded(windowNode):
				state = ThresholdFailed
			}

		case ThresholdLockedIn:
			if checker.EligibleToActivate(windowNode) {
				state = ThresholdActive
			}

		case ThresholdFailed, ThresholdActive:
			// Terminal states never transition further.
		}

		cache.Update(chainHashKey(windowNode.hash), state)
	}

	return state, nil
}

// countWindowSignals tallies how many of the confirmationWindow blocks
// ending at windowNode satisfy checker's Condition.
func countWindowSignals(windowNode *blockNode, confirmationWindow int32, checker thresholdConditionChecker) (uint32, error) {
	var count uint32
	countNode := windowNode
	for i := int32(0); i < confirmationWindow && countNode != nil; i++ {
		condition, err := checker.Condition(countNode)
		if err != nil {
			return 0, err
		}
		if condition {
			count++
		}
		countNode = countNode.parent
	}
	return count, nil
}

// ThresholdState returns the current rule change threshold state of the
// given deployment ID for the block AFTER the end of the current best
// chain.
//
// This function is safe for concurrent access.
func (b *BlockChain) ThresholdState(deploymentID uint32) (ThresholdState, error) {
	b.chainLock.Lock()
	defer b.chainLock.Unlock()

	if int(deploymentID) >= len(b.chainParams.Deployments) {
		return ThresholdFailed, fmt.Errorf("blockchain: unknown deployment ID %d", deploymentID)
	}

	deployment := &b.chainParams.Deployments[deploymentID]
	checker := deploymentChecker{deployment: deployment, chain: b}
	cache := &b.deploymentCaches[deploymentID]
	return b.thresholdState(b.bestChain.Tip(), checker, cache)
}

// IsDeploymentActive returns true if the rule change specified by
// deploymentID is active for the block AFTER the end of the current best
// chain.
//
// This function is safe for concurrent access.
func (b *BlockChain) IsDeploymentActive(deploymentID uint32) (bool, error) {
	state, err := b.ThresholdState(deploymentID)
	if err != nil {
		return false, err
	}
	return state == ThresholdActive, nil
}
