// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"errors"
	"math"
	"math/big"
	"time"

	"github.com/hnsgo/hnsd/chaincfg/chainhash"
	"github.com/hnsgo/hnsd/wire"
)

// bigOne is 1 represented as a big.Int. Defined here to avoid the overhead
// of creating it multiple times.
var bigOne = big.NewInt(1)

var (
	// mainPowLimit is the highest proof of work value a block can have for
	// the main network. It is the value 2^224 - 1.
	mainPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)

	// regressionPowLimit is the highest proof of work value a block can
	// have for the regression test network. It is the value 2^255 - 1.
	regressionPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)

	// testNetPowLimit is the highest proof of work value a block can have
	// for the test network. It is the value 2^224 - 1.
	testNetPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)

	// simNetPowLimit is the highest proof of work value a block can have
	// for the simulation test network. It is the value 2^255 - 1.
	simNetPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)
)

// Checkpoint identifies a known good point in the block chain. Using
// checkpoints allows a few optimizations for old blocks during initial
// download and also prevents forks from old blocks.
type Checkpoint struct {
	Height int32
	Hash   *chainhash.Hash
}

// ConsensusDeployment defines details related to a specific consensus rule
// change that is voted in, following the BIP0009 versionbits scheme.
type ConsensusDeployment struct {
	// BitNumber defines the specific bit number within the block version
	// this particular soft-fork deployment refers to.
	BitNumber uint8

	// MinActivationHeight is an optional field that when set (default
	// value being zero), modifies the traditional state machine by only
	// transitioning from LockedIn to Active once the block height is
	// greater than or equal to the specified height.
	MinActivationHeight uint32

	// CustomActivationThreshold if set (non-zero), overrides the network
	// level RuleChangeActivationThreshold value. This value divided by
	// the active MinerConfirmationWindow denotes the threshold required
	// for activation.
	CustomActivationThreshold uint32

	// AlwaysActiveHeight defines an optional block threshold at which the
	// deployment is forced to be active. If unset (0), it defaults to
	// math.MaxUint32, meaning the deployment never force-activates.
	AlwaysActiveHeight uint32

	// DeploymentStarter determines if the deployment has started.
	DeploymentStarter ConsensusDeploymentStarter

	// DeploymentEnder determines if the deployment has ended.
	DeploymentEnder ConsensusDeploymentEnder
}

// EffectiveAlwaysActiveHeight returns the effective activation height for
// the deployment. If AlwaysActiveHeight is unset (zero), it returns the
// maximum uint32 value to indicate that it does not force activation.
func (d *ConsensusDeployment) EffectiveAlwaysActiveHeight() uint32 {
	if d.AlwaysActiveHeight == 0 {
		return math.MaxUint32
	}
	return d.AlwaysActiveHeight
}

// Constants that define the deployment offset in the Deployments field of
// Params, used to look up the details of a specific deployment by name.
const (
	// DeploymentTestDummy is reserved for unit and integration tests.
	DeploymentTestDummy = iota

	// DeploymentICANNLockup gates the ICANN-lockup rule: once active,
	// names on the reserved/Alexa lockup table may not be OPENed until
	// their individual lockup period has elapsed, even if the auction
	// rollout schedule would otherwise permit it.
	DeploymentICANNLockup

	// NOTE: DefinedDeployments must always come last since it is used to
	// determine how many defined deployments there currently are.

	// DefinedDeployments is the number of currently defined deployments.
	DefinedDeployments
)

// NamesParams holds every timing constant that governs the name-auction
// lifecycle: the rollout schedule, the bidding and reveal windows, renewal
// and transfer lockups, and the one-shot claim/airdrop period. All
// durations are expressed in blocks, matching the chain's own notion of
// time rather than wall-clock time.
type NamesParams struct {
	// AuctionStart is the height at which the first name in the rollout
	// schedule becomes eligible for OPEN.
	AuctionStart uint32

	// RolloutInterval is the number of blocks between successive weekly
	// buckets of the name rollout schedule being unlocked.
	RolloutInterval uint32

	// NoRollout disables the rollout schedule entirely, making every name
	// immediately eligible for OPEN at AuctionStart. Used by test
	// networks that cannot wait weeks for the schedule to unlock.
	NoRollout bool

	// BiddingPeriod is the number of blocks a name spends in the BIDDING
	// state following its OPEN.
	BiddingPeriod uint32

	// RevealPeriod is the number of blocks a name spends in the REVEAL
	// state following the close of bidding.
	RevealPeriod uint32

	// TreeInterval is the number of blocks between commitments of the
	// authenticated name tree root into the block header. Name state
	// changes within an interval are only reflected in the committed
	// root at the interval's close.
	TreeInterval uint32

	// LockupPeriod is the number of blocks a losing bidder must wait
	// before a REDEEM output may be spent, mirroring a maturity rule on
	// the bid deposit.
	LockupPeriod uint32

	// RenewalWindow is how many blocks a name lasts after its start
	// height, last renewal or revoke before the maybe-expire probe resets
	// it.
	RenewalWindow uint32

	// RenewalPeriod is not read by the name rules; expiry is governed by
	// RenewalWindow.
	RenewalPeriod uint32

	// RenewalMaturity is the minimum age, in blocks, a referenced renewal
	// block hash must have in order to anchor a REGISTER, RENEW, or
	// FINALIZE output, preventing a long-range rewrite from forging a
	// fresh-looking renewal anchor.
	RenewalMaturity uint32

	// TransferLockup is the number of blocks a pending TRANSFER must wait
	// before it may be completed with a FINALIZE.
	TransferLockup uint32

	// ClaimPeriod is the height after which one-shot CLAIM outputs for
	// pre-chain name ownership are no longer valid.
	ClaimPeriod uint32

	// AlexaLockupPeriod is the number of blocks names on the Alexa
	// top-site reservation table remain locked from OPEN once the
	// ICANN-lockup deployment activates, counted from that activation.
	AlexaLockupPeriod uint32
}

// DNSSeed identifies a DNS seed used to discover peers. The consensus core
// never dials a seed itself; the field exists so Params fully describes a
// network for the node layer that sits above this package.
type DNSSeed struct {
	Host         string
	HasFiltering bool
}

// String returns the hostname of the DNS seed in human-readable form.
func (d DNSSeed) String() string {
	return d.Host
}

// Params defines a name-auction network by its parameters. These
// parameters differentiate networks as well as addresses and keys for one
// network from those intended for use on another.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// Net defines the magic bytes used to identify the network.
	Net wire.Network

	// DefaultPort defines the default peer-to-peer port for the network.
	DefaultPort string

	// DNSSeeds defines a list of DNS seeds used to discover peers.
	DNSSeeds []DNSSeed

	// GenesisBlock defines the first block of the chain.
	GenesisBlock *wire.MsgBlock

	// GenesisHash is the starting block hash.
	GenesisHash *chainhash.Hash

	// PowLimit defines the highest allowed proof of work value for a
	// block as a uint256.
	PowLimit *big.Int

	// PowLimitBits defines the highest allowed proof of work value for a
	// block in compact form.
	PowLimitBits uint32

	// PoWNoRetargeting defines whether the network has difficulty
	// retargeting enabled. Only set to true for regtest-like networks.
	PoWNoRetargeting bool

	// CoinbaseMaturity is the number of blocks required before newly
	// mined coins can be spent.
	CoinbaseMaturity uint16

	// SubsidyReductionInterval is the interval of blocks before the
	// subsidy is reduced (halving).
	SubsidyReductionInterval int32

	// TargetTimespan is the desired amount of time between difficulty
	// retargets.
	TargetTimespan time.Duration

	// TargetTimePerBlock is the desired amount of time to generate each
	// block.
	TargetTimePerBlock time.Duration

	// RetargetAdjustmentFactor bounds how much the difficulty may move in
	// a single retarget.
	RetargetAdjustmentFactor int64

	// ReduceMinDifficulty, when true, allows the minimum difficulty to be
	// used again after a sufficiently long gap between blocks. Only
	// useful on test networks.
	ReduceMinDifficulty bool

	// MinDiffReductionTime is the gap after which ReduceMinDifficulty
	// kicks in.
	MinDiffReductionTime time.Duration

	// GenerateSupported specifies whether CPU mining is supported.
	GenerateSupported bool

	// Checkpoints ordered from oldest to newest.
	Checkpoints []Checkpoint

	// RuleChangeActivationThreshold is the number of blocks in a
	// threshold state retarget window for which a positive vote for a
	// rule change must be cast in order to lock in the change.
	RuleChangeActivationThreshold uint32

	// MinerConfirmationWindow is the number of blocks in each threshold
	// state retarget window.
	MinerConfirmationWindow uint32

	// Deployments define the specific consensus rule changes voted on.
	Deployments [DefinedDeployments]ConsensusDeployment

	// Names holds every timing constant governing the name-auction
	// lifecycle for this network.
	Names NamesParams

	// AddressHRP is the human-readable prefix used for bech32m encoded
	// addresses on this network.
	AddressHRP string

	// PubKeyHashAddrID is the address version byte for a pay-to-pubkey-
	// hash style address, retained for compatibility with legacy address
	// encodings some tooling still expects.
	PubKeyHashAddrID byte

	// HDCoinType is the BIP44 coin type used in the hierarchical
	// deterministic path for address generation.
	HDCoinType uint32
}

// MainNetParams defines the network parameters for the main network.
var MainNetParams = Params{
	Name:        "mainnet",
	Net:         wire.MainNet,
	DefaultPort: "12038",
	DNSSeeds: []DNSSeed{
		{"seed1.main.example", true},
		{"seed2.main.example", true},
	},

	GenesisBlock:     &genesisBlock,
	GenesisHash:      &genesisHash,
	PowLimit:         mainPowLimit,
	PowLimitBits:     0x1d00ffff,
	PoWNoRetargeting: false,
	CoinbaseMaturity: 100,

	SubsidyReductionInterval: 170000,
	TargetTimespan:           time.Hour * 6,
	TargetTimePerBlock:       time.Minute,
	RetargetAdjustmentFactor: 4,
	ReduceMinDifficulty:      false,
	MinDiffReductionTime:     0,
	GenerateSupported:        false,

	Checkpoints: []Checkpoint{},

	RuleChangeActivationThreshold: 1916, // 95% of 2016
	MinerConfirmationWindow:       2016,
	Deployments: [DefinedDeployments]ConsensusDeployment{
		DeploymentTestDummy: {
			BitNumber:         28,
			DeploymentStarter: NewMedianTimeDeploymentStarter(time.Time{}),
			DeploymentEnder:   NewMedianTimeDeploymentEnder(time.Time{}),
		},
		DeploymentICANNLockup: {
			BitNumber:                 1,
			CustomActivationThreshold: 1815, // 90% of 2016
			DeploymentStarter:         NewMedianTimeDeploymentStarter(time.Time{}),
			DeploymentEnder:           NewMedianTimeDeploymentEnder(time.Time{}),
		},
	},

	Names: NamesParams{
		AuctionStart:      2016,
		RolloutInterval:   1008, // one week at 144 blocks a day
		NoRollout:         false,
		BiddingPeriod:     1 * 1008 / 7 * 5,  // 5 days
		RevealPeriod:      1008 / 7 * 10,     // 10 days
		TreeInterval:      36,
		LockupPeriod:      4032, // 4 weeks
		RenewalWindow:      4032 * 52 / 2,
		RenewalPeriod:      4032 * 52, // ~1 year
		RenewalMaturity:    4032,
		TransferLockup:     288, // 2 days
		ClaimPeriod:        4032 * 52 * 2, // 2 years
		AlexaLockupPeriod:  4032 * 52 * 4, // 4 years from activation
	},

	AddressHRP:       "hs",
	PubKeyHashAddrID: 0x00,
	HDCoinType:       5353,
}

// TestNetParams defines the network parameters for the public test network.
var TestNetParams = Params{
	Name:        "testnet",
	Net:         wire.TestNet,
	DefaultPort: "13038",

	GenesisBlock:     &genesisBlock,
	GenesisHash:      &genesisHash,
	PowLimit:         testNetPowLimit,
	PowLimitBits:     0x1d00ffff,
	PoWNoRetargeting: false,
	CoinbaseMaturity: 100,

	SubsidyReductionInterval: 170000,
	TargetTimespan:           time.Hour * 6,
	TargetTimePerBlock:       time.Minute,
	RetargetAdjustmentFactor: 4,
	ReduceMinDifficulty:      true,
	MinDiffReductionTime:     time.Minute * 5,
	GenerateSupported:        true,

	RuleChangeActivationThreshold: 1512, // 75% of 2016
	MinerConfirmationWindow:       2016,
	Deployments: [DefinedDeployments]ConsensusDeployment{
		DeploymentTestDummy: {
			BitNumber:         28,
			DeploymentStarter: NewMedianTimeDeploymentStarter(time.Time{}),
			DeploymentEnder:   NewMedianTimeDeploymentEnder(time.Time{}),
		},
		DeploymentICANNLockup: {
			BitNumber:                 1,
			CustomActivationThreshold: 1512,
			DeploymentStarter:         NewMedianTimeDeploymentStarter(time.Time{}),
			DeploymentEnder:           NewMedianTimeDeploymentEnder(time.Time{}),
		},
	},

	Names: NamesParams{
		AuctionStart:       0,
		RolloutInterval:    36,
		NoRollout:          true,
		BiddingPeriod:      36,
		RevealPeriod:       36,
		TreeInterval:       12,
		LockupPeriod:       72,
		RenewalWindow:      144,
		RenewalPeriod:      288,
		RenewalMaturity:    36,
		TransferLockup:     24,
		ClaimPeriod:        2016,
		AlexaLockupPeriod:  2016,
	},

	AddressHRP:       "ts",
	PubKeyHashAddrID: 0x01,
	HDCoinType:       5354,
}

// RegressionNetParams defines the network parameters for the regression
// test network, used for deterministic integration tests where blocks are
// generated on demand.
var RegressionNetParams = Params{
	Name:        "regtest",
	Net:         wire.RegTest,
	DefaultPort: "14038",

	GenesisBlock:     &genesisBlock,
	GenesisHash:      &genesisHash,
	PowLimit:         regressionPowLimit,
	PowLimitBits:     0x207fffff,
	PoWNoRetargeting: true,
	CoinbaseMaturity: 100,

	SubsidyReductionInterval: 150,
	TargetTimespan:           time.Hour * 6,
	TargetTimePerBlock:       time.Minute,
	RetargetAdjustmentFactor: 4,
	ReduceMinDifficulty:      true,
	MinDiffReductionTime:     time.Minute * 5,
	GenerateSupported:        true,

	RuleChangeActivationThreshold: 108, // 75% of 144
	MinerConfirmationWindow:       144,
	Deployments: [DefinedDeployments]ConsensusDeployment{
		DeploymentTestDummy: {
			BitNumber:         28,
			DeploymentStarter: NewMedianTimeDeploymentStarter(time.Time{}),
			DeploymentEnder:   NewMedianTimeDeploymentEnder(time.Time{}),
		},
		DeploymentICANNLockup: {
			BitNumber:                 1,
			AlwaysActiveHeight:        0,
			DeploymentStarter:         NewMedianTimeDeploymentStarter(time.Time{}),
			DeploymentEnder:           NewMedianTimeDeploymentEnder(time.Time{}),
		},
	},

	Names: NamesParams{
		AuctionStart:       0,
		RolloutInterval:    8,
		NoRollout:          true,
		BiddingPeriod:      8,
		RevealPeriod:       8,
		TreeInterval:       4,
		LockupPeriod:       8,
		RenewalWindow:      20,
		RenewalPeriod:      40,
		RenewalMaturity:    4,
		TransferLockup:     4,
		ClaimPeriod:        500,
		AlexaLockupPeriod:  500,
	},

	AddressHRP:       "rs",
	PubKeyHashAddrID: 0x02,
	HDCoinType:       5355,
}

// SimNetParams defines the network parameters for the simulation test
// network.
var SimNetParams = RegressionNetParams

func init() {
	SimNetParams.Name = "simnet"
	SimNetParams.Net = wire.SimNet
	SimNetParams.DefaultPort = "15038"
	SimNetParams.AddressHRP = "ss"
	SimNetParams.HDCoinType = 5356
}

var (
	// ErrDuplicateNet describes an error where the parameters for a
	// network could not be set due to the network already being a
	// standard network or previously-registered into this package.
	ErrDuplicateNet = errors.New("duplicate network")

	// ErrUnknownHDKeyID describes an error where the provided id intended
	// to identify the network for an HD private extended key is not
	// registered.
	ErrUnknownHDKeyID = errors.New("unknown hd private extended key bytes")
)

var registeredNets = make(map[wire.Network]struct{})

// Register registers the network parameters for a network. This may error
// with ErrDuplicateNet if the network is already registered.
func Register(params *Params) error {
	if _, ok := registeredNets[params.Net]; ok {
		return ErrDuplicateNet
	}
	registeredNets[params.Net] = struct{}{}
	return nil
}

// mustRegister performs the same function as Register except it panics if
// there is an error. Only safe to call from package init functions.
func mustRegister(params *Params) {
	if err := Register(params); err != nil {
		panic("failed to register network: " + err.Error())
	}
}

func init() {
	mustRegister(&MainNetParams)
	mustRegister(&TestNetParams)
	mustRegister(&RegressionNetParams)
	mustRegister(&SimNetParams)
}
