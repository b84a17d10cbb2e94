// Copyright (c) 2022 The btcsuite developers
// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/hnsgo/hnsd/wire"
)

// ConsensusDeploymentStarter determines if a given ConsensusDeployment has
// started, based on the rules defined for that starter.
type ConsensusDeploymentStarter interface {
	// HasStarted returns true if the deployment has started.
	HasStarted(*wire.BlockHeader) (bool, error)
}

// ConsensusDeploymentEnder determines if a given ConsensusDeployment has
// ended, based on the rules defined for that ender.
type ConsensusDeploymentEnder interface {
	// HasEnded returns true if the deployment has ended.
	HasEnded(*wire.BlockHeader) (bool, error)
}

// MedianTimeDeploymentStarter is a ConsensusDeploymentStarter that becomes
// active once a block's timestamp exceeds a fixed start time. Passing the
// zero time makes the deployment eligible from genesis.
type MedianTimeDeploymentStarter struct {
	startTime time.Time
}

// NewMedianTimeDeploymentStarter creates a new MedianTimeDeploymentStarter
// with the given start time.
func NewMedianTimeDeploymentStarter(startTime time.Time) *MedianTimeDeploymentStarter {
	return &MedianTimeDeploymentStarter{startTime: startTime}
}

// StartTime returns the start time associated with this starter.
func (m *MedianTimeDeploymentStarter) StartTime() time.Time {
	return m.startTime
}

// HasStarted returns true if the deployment has started.
//
// This implementation is part of the ConsensusDeploymentStarter interface.
func (m *MedianTimeDeploymentStarter) HasStarted(blkHeader *wire.BlockHeader) (bool, error) {
	if m.startTime.IsZero() {
		return true, nil
	}
	return !blkHeader.Timestamp.Before(m.startTime), nil
}

// MedianTimeDeploymentEnder is a ConsensusDeploymentEnder that expires once
// a block's timestamp exceeds a fixed end time. Passing the zero time means
// the deployment never expires.
type MedianTimeDeploymentEnder struct {
	endTime time.Time
}

// NewMedianTimeDeploymentEnder creates a new MedianTimeDeploymentEnder with
// the given end time.
func NewMedianTimeDeploymentEnder(endTime time.Time) *MedianTimeDeploymentEnder {
	return &MedianTimeDeploymentEnder{endTime: endTime}
}

// EndTime returns the end time associated with this ender.
func (m *MedianTimeDeploymentEnder) EndTime() time.Time {
	return m.endTime
}

// HasEnded returns true if the deployment has ended.
//
// This implementation is part of the ConsensusDeploymentEnder interface.
func (m *MedianTimeDeploymentEnder) HasEnded(blkHeader *wire.BlockHeader) (bool, error) {
	if m.endTime.IsZero() {
		return false, nil
	}
	return !blkHeader.Timestamp.Before(m.endTime), nil
}

// HeightDeploymentStarter is a ConsensusDeploymentStarter gated on block
// height instead of timestamp. None of the networks in params.go use it:
// their ICANN lockup deployment starts by median time.
type HeightDeploymentStarter struct {
	startHeight int32
}

// NewHeightDeploymentStarter creates a new HeightDeploymentStarter.
func NewHeightDeploymentStarter(startHeight int32) *HeightDeploymentStarter {
	return &HeightDeploymentStarter{startHeight: startHeight}
}

// StartHeight returns the configured start height.
func (h *HeightDeploymentStarter) StartHeight() int32 {
	return h.startHeight
}

// HasStarted always returns true; height-gated deployments are evaluated
// through EligibleToActivate/MinActivationHeight instead, since the
// threshold state machine itself only has the block header, not its
// height, to inspect.
func (h *HeightDeploymentStarter) HasStarted(_ *wire.BlockHeader) (bool, error) {
	return true, nil
}
