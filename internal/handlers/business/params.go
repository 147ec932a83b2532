package business

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"launchcontrol/pkg/utils"
)

// Params are the engine's policy knobs. Amounts are base units (9
// decimals); fractions are basis points. Defaults are the reference
// policy; each field can be overridden by environment variable.
type Params struct {
	PrimaryAsset   string
	SecondaryAsset string

	TargetRaise              uint64
	MinPrimaryContribution   uint64
	MinSecondaryContribution uint64
	MaxSecondaryBps          uint64

	TotalSupply     uint64
	ContributorsBps uint64
	LiquidityBps    uint64
	CreatorBps      uint64

	PrimaryPoolBps   uint64 // share of collected primary funding the primary pool
	SecondaryPoolBps uint64 // share of collected secondary funding the secondary pool
	MinPoolLiquidity uint64 // primary-unit floor below which the secondary pool is skipped
	SlippageBps      uint64
	SwapFeeBps       uint64

	CampaignDuration time.Duration
	VenueDeadline    time.Duration
	LPLockDuration   time.Duration
	VestingDuration  time.Duration

	StalenessThreshold time.Duration
	TwapWindow         time.Duration
	MaxDeviationBps    uint64
	MinReserveShareBps uint64
	MaxReserveShareBps uint64
	MaxPriceImpactBps  uint64
}

const unit = 1_000_000_000 // base units per whole token, 9 decimals

func DefaultParams() Params {
	return Params{
		PrimaryAsset:   "KUB",
		SecondaryAsset: "KUSDT",

		TargetRaise:              5555 * unit,
		MinPrimaryContribution:   1 * unit,
		MinSecondaryContribution: 1 * unit,
		MaxSecondaryBps:          5000,

		TotalSupply:     1_000_000_000 * unit,
		ContributorsBps: 7000,
		LiquidityBps:    2000,
		CreatorBps:      1000,

		PrimaryPoolBps:   6000,
		SecondaryPoolBps: 8000,
		MinPoolLiquidity: 100 * unit,
		SlippageBps:      50,
		SwapFeeBps:       30,

		CampaignDuration: 7 * 24 * time.Hour,
		VenueDeadline:    3 * time.Minute,
		LPLockDuration:   180 * 24 * time.Hour,
		VestingDuration:  180 * 24 * time.Hour,

		StalenessThreshold: 2 * time.Hour,
		TwapWindow:         time.Hour,
		MaxDeviationBps:    1000,
		MinReserveShareBps: 500,
		MaxReserveShareBps: 9500,
		MaxPriceImpactBps:  500,
	}
}

// LoadParams reads environment overrides on top of the defaults.
func LoadParams() Params {
	p := DefaultParams()
	p.PrimaryAsset = envString("LAUNCH_PRIMARY_ASSET", p.PrimaryAsset)
	p.SecondaryAsset = envString("LAUNCH_SECONDARY_ASSET", p.SecondaryAsset)
	p.TargetRaise = envUint64("LAUNCH_TARGET_RAISE", p.TargetRaise)
	p.MinPrimaryContribution = envUint64("LAUNCH_MIN_PRIMARY_CONTRIBUTION", p.MinPrimaryContribution)
	p.MinSecondaryContribution = envUint64("LAUNCH_MIN_SECONDARY_CONTRIBUTION", p.MinSecondaryContribution)
	p.MaxSecondaryBps = envUint64("LAUNCH_MAX_SECONDARY_BPS", p.MaxSecondaryBps)
	p.TotalSupply = envUint64("LAUNCH_TOTAL_SUPPLY", p.TotalSupply)
	p.MinPoolLiquidity = envUint64("LAUNCH_MIN_POOL_LIQUIDITY", p.MinPoolLiquidity)
	p.CampaignDuration = envDuration("LAUNCH_CAMPAIGN_DURATION", p.CampaignDuration)
	p.LPLockDuration = envDuration("LAUNCH_LP_LOCK_DURATION", p.LPLockDuration)
	p.StalenessThreshold = envDuration("LAUNCH_PRICE_STALENESS", p.StalenessThreshold)
	p.TwapWindow = envDuration("LAUNCH_TWAP_WINDOW", p.TwapWindow)
	return p
}

// Validate rejects parameter sets that could not keep the engine's
// invariants.
func (p Params) Validate() error {
	if p.TargetRaise == 0 {
		return fmt.Errorf("target raise must be positive")
	}
	if p.ContributorsBps+p.LiquidityBps+p.CreatorBps != utils.BpsDenominator {
		return fmt.Errorf("allocation must sum to %d bps, got %d",
			utils.BpsDenominator, p.ContributorsBps+p.LiquidityBps+p.CreatorBps)
	}
	if p.MaxSecondaryBps > utils.BpsDenominator {
		return fmt.Errorf("secondary cap above 10000 bps")
	}
	if p.PrimaryPoolBps > utils.BpsDenominator || p.SecondaryPoolBps > utils.BpsDenominator {
		return fmt.Errorf("pool split above 10000 bps")
	}
	if p.MinReserveShareBps >= p.MaxReserveShareBps {
		return fmt.Errorf("reserve share bounds inverted")
	}
	if p.PrimaryAsset == "" || p.SecondaryAsset == "" || p.PrimaryAsset == p.SecondaryAsset {
		return fmt.Errorf("primary and secondary assets must be distinct")
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envUint64(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}
