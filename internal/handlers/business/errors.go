package business

import "errors"

// Every failure aborts the whole call; the transaction rollback guarantees
// no partial state survives. Sentinels are matched with errors.Is at the
// API layer to pick a status code.
var (
	// Input validation.
	ErrInvalidName   = errors.New("launch name must be 1-32 chars of [A-Za-z0-9 _-]")
	ErrInvalidSymbol = errors.New("launch symbol must be 1-8 chars of [A-Za-z0-9]")
	ErrNameTaken     = errors.New("launch name already in use")
	ErrSymbolTaken   = errors.New("launch symbol already in use")
	ErrZeroAmount    = errors.New("amount must be positive")

	// Business rules.
	ErrLaunchNotFound        = errors.New("launch not found")
	ErrAlreadyLaunched       = errors.New("launch already finalized")
	ErrLaunchCancelled       = errors.New("launch cancelled")
	ErrFinalizing            = errors.New("finalization in progress")
	ErrDeadlinePassed        = errors.New("contribution deadline passed")
	ErrBelowMinimum          = errors.New("contribution below minimum")
	ErrExcessiveContribution = errors.New("contribution exceeds remaining target")
	ErrExcessiveSecondary    = errors.New("contribution exceeds secondary asset cap")
	ErrTargetNotReached      = errors.New("target raise not reached")
	ErrUnauthorized          = errors.New("caller is not the launch creator")
	ErrLiquidityLocked       = errors.New("liquidity still locked")

	// External dependencies.
	ErrNoSecondaryPair          = errors.New("no trading pair for secondary asset")
	ErrStalePrice               = errors.New("pair price data is stale")
	ErrInsufficientPriceHistory = errors.New("oracle cannot produce a TWAP")
	ErrExcessivePriceDeviation  = errors.New("spot price deviates too far from TWAP")
	ErrReserveImbalance         = errors.New("pair reserves too imbalanced")
	ErrExcessivePriceImpact     = errors.New("contribution price impact too high")
	ErrTokenApprovalRequired    = errors.New("token approval required")
	ErrPairPreFunded            = errors.New("pair already holds reserves")

	// State consistency.
	ErrInsufficientRewardTokens = errors.New("reward token supply cannot cover distribution and liquidity")
	ErrLaunchStillActive        = errors.New("launch still active")
	ErrLaunchSucceeded          = errors.New("launch succeeded, nothing to refund")
	ErrNoContributionToRefund   = errors.New("no contribution to refund")
)
