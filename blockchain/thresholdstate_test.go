// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hnsgo/hnsd/chaincfg"
	"github.com/hnsgo/hnsd/chaincfg/chainhash"
	"github.com/hnsgo/hnsd/names"
)

// nullNameStore satisfies names.Store with no names ever persisted,
// sufficient for tests that only exercise the deployment threshold state
// machine and never touch name acceptance.
type nullNameStore struct{}

func (nullNameStore) GetName(chainhash.Hash) (*names.NameState, error) { return nil, nil }

// newTestChain returns a BlockChain wired against RegressionNetParams,
// whose small confirmation window (144 blocks, 108-block threshold) keeps
// synthetic chains short enough to build by hand.
func newTestChain(t *testing.T) *BlockChain {
	t.Helper()
	params := chaincfg.RegressionNetParams
	b, err := New(&Config{
		ChainParams:  &params,
		NameStore:    nullNameStore{},
		BitfieldSize: 16,
	})
	require.NoError(t, err)
	return b
}

// extendChain appends count fake nodes onto tip, one per block, each
// carrying version (with the version-bits top bits already set by the
// caller) and a strictly increasing timestamp. It returns the new tip.
func extendChain(tip *blockNode, count int, version int32) *blockNode {
	cur := tip
	for i := 0; i < count; i++ {
		node := &blockNode{
			parent:    cur,
			height:    cur.height + 1,
			version:   version,
			timestamp: cur.timestamp + 60,
		}
		node.hash = chainhash.Sum([]byte{byte(node.height), byte(node.height >> 8), byte(node.height >> 16)})
		cur = node
	}
	return cur
}

func signalingVersion(bit uint8) int32 {
	return int32(0x20000000 | (uint32(1) << bit))
}

// TestThresholdStateLocksInAtThreshold exercises Testable Property 6: a
// window in which exactly the activation threshold's worth of blocks
// signal the deployment bit advances to LOCKED_IN at the next window
// boundary; a window one short of it does not.
func TestThresholdStateLocksInAtThreshold(t *testing.T) {
	const (
		window    = 144
		threshold = 108
		bit       = 28 // DeploymentTestDummy's bit in RegressionNetParams
	)

	b := newTestChain(t)
	deployment := &b.chainParams.Deployments[chaincfg.DeploymentTestDummy]
	checker := deploymentChecker{deployment: deployment, chain: b}

	tip := b.bestChain.Tip()
	// First window: enough blocks past the start time to leave DEFINED,
	// none signaling, so the deployment starts the voting window.
	tip = extendChain(tip, window, 0x20000000)
	cache := newThresholdCaches(1)
	state, err := b.thresholdState(tip, checker, &cache[0])
	require.NoError(t, err)
	require.Equal(t, ThresholdStarted, state)

	// Second window signals exactly `threshold` of its blocks.
	signalTip := extendChain(tip, threshold, signalingVersion(bit))
	signalTip = extendChain(signalTip, window-threshold, 0x20000000)
	state, err = b.thresholdState(signalTip, checker, &cache[0])
	require.NoError(t, err)
	require.Equal(t, ThresholdLockedIn, state)

	// A window with one fewer signaling block stays STARTED.
	b2 := newTestChain(t)
	checker2 := deploymentChecker{deployment: &b2.chainParams.Deployments[chaincfg.DeploymentTestDummy], chain: b2}
	tip2 := extendChain(b2.bestChain.Tip(), window, 0x20000000)
	cache2 := newThresholdCaches(1)
	_, err = b2.thresholdState(tip2, checker2, &cache2[0])
	require.NoError(t, err)

	shortTip := extendChain(tip2, threshold-1, signalingVersion(bit))
	shortTip = extendChain(shortTip, window-threshold+1, 0x20000000)
	state, err = b2.thresholdState(shortTip, checker2, &cache2[0])
	require.NoError(t, err)
	require.Equal(t, ThresholdStarted, state)
}

// TestThresholdStateLockedInAdvancesToActive exercises the LOCKED_IN ->
// ACTIVE transition at the window boundary following lock-in.
func TestThresholdStateLockedInAdvancesToActive(t *testing.T) {
	const (
		window    = 144
		threshold = 108
		bit       = 28
	)

	b := newTestChain(t)
	deployment := &b.chainParams.Deployments[chaincfg.DeploymentTestDummy]
	checker := deploymentChecker{deployment: deployment, chain: b}
	cache := newThresholdCaches(1)

	tip := extendChain(b.bestChain.Tip(), window, 0x20000000)
	tip = extendChain(tip, threshold, signalingVersion(bit))
	tip = extendChain(tip, window-threshold, 0x20000000)
	state, err := b.thresholdState(tip, checker, &cache[0])
	require.NoError(t, err)
	require.Equal(t, ThresholdLockedIn, state)

	tip = extendChain(tip, window, 0x20000000)
	state, err = b.thresholdState(tip, checker, &cache[0])
	require.NoError(t, err)
	require.Equal(t, ThresholdActive, state)
}

// TestThresholdStateDefinedBeforeWindow checks that a chain shorter than
// one confirmation window stays DEFINED regardless of signaling.
func TestThresholdStateDefinedBeforeWindow(t *testing.T) {
	b := newTestChain(t)
	deployment := &b.chainParams.Deployments[chaincfg.DeploymentTestDummy]
	checker := deploymentChecker{deployment: deployment, chain: b}
	cache := newThresholdCaches(1)

	tip := extendChain(b.bestChain.Tip(), 10, signalingVersion(28))
	state, err := b.thresholdState(tip, checker, &cache[0])
	require.NoError(t, err)
	require.Equal(t, ThresholdDefined, state)
}
