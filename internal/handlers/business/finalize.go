package business

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/exchange"
	"launchcontrol/pkg/ledger"
	"launchcontrol/pkg/utils"
)

// Finalize bootstraps the liquidity pools once the target is reached. The
// launch is marked Launched before any venue interaction, closing the
// re-entrancy window; any later failure rolls the whole transaction back,
// flag included, so the launch stays Active and retryable.
func (e *Engine) Finalize(launchID uint) error {
	now := e.Now()

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		l, err := e.lockLaunch(tx, launchID)
		if err != nil {
			return err
		}
		switch l.State {
		case models.LaunchStateLaunched:
			return ErrAlreadyLaunched
		case models.LaunchStateCancelled:
			return ErrLaunchCancelled
		}
		if l.IsFinalizing {
			return ErrFinalizing
		}
		if l.PrimaryCollected+l.SecondaryValueCollected < e.Params.TargetRaise {
			return ErrTargetNotReached
		}
		if l.RewardDistributed+l.TokensForLiquidity+l.TokensForCreator > e.Params.TotalSupply {
			return ErrInsufficientRewardTokens
		}

		// Terminal flag first. No contribution can land after this write.
		l.State = models.LaunchStateLaunched
		l.IsFinalizing = true
		if err := tx.Save(l).Error; err != nil {
			return err
		}

		escrow := ledger.EscrowAddress(l.ID)
		venueDeadline := now.Add(e.Params.VenueDeadline)

		primaryPoolFunds := utils.Bps(l.PrimaryCollected, e.Params.PrimaryPoolBps)
		secondaryPoolFunds := utils.Bps(l.SecondaryCollected, e.Params.SecondaryPoolBps)
		secondaryBurn := l.SecondaryCollected - secondaryPoolFunds

		// Value the secondary pool allocation; a pool below the liquidity
		// floor would be immediately drainable, so it is skipped and the
		// whole secondary take is burned instead.
		secondaryPoolValue := uint64(0)
		buildSecondaryPool := false
		if secondaryPoolFunds > 0 {
			pair, err := exchange.GetPair(tx, e.Params.SecondaryAsset, e.Params.PrimaryAsset)
			if err != nil {
				return err
			}
			secondaryPoolValue, err = e.Oracle.GetCurrentPrice(tx, pair.ID, e.Params.SecondaryAsset, secondaryPoolFunds)
			if err != nil {
				return err
			}
			buildSecondaryPool = secondaryPoolValue >= e.Params.MinPoolLiquidity
		}
		if !buildSecondaryPool {
			secondaryPoolValue = 0
			secondaryBurn = l.SecondaryCollected
			secondaryPoolFunds = 0
		}

		tokensPrimaryPool := l.TokensForLiquidity
		tokensSecondaryPool := uint64(0)
		if buildSecondaryPool {
			weight := primaryPoolFunds + secondaryPoolValue
			tokensPrimaryPool = utils.MulDiv(l.TokensForLiquidity, primaryPoolFunds, weight)
			tokensSecondaryPool = l.TokensForLiquidity - tokensPrimaryPool
		}

		primaryPool, err := e.bootstrapPool(tx, l, e.Params.PrimaryAsset, primaryPoolFunds, tokensPrimaryPool, venueDeadline, now)
		if err != nil {
			return fmt.Errorf("primary pool: %w", err)
		}
		l.PrimaryPoolID = primaryPool

		if buildSecondaryPool {
			secondaryPool, err := e.bootstrapPool(tx, l, e.Params.SecondaryAsset, secondaryPoolFunds, tokensSecondaryPool, venueDeadline, now)
			if err != nil {
				return fmt.Errorf("secondary pool: %w", err)
			}
			l.SecondaryPoolID = secondaryPool
		}

		if secondaryBurn > 0 {
			if err := ledger.Burn(tx, e.Params.SecondaryAsset, escrow, secondaryBurn); err != nil {
				return err
			}
			if err := e.recordEvent(tx, l.ID, models.EventSecondaryBurned, escrow, e.Params.SecondaryAsset, secondaryBurn); err != nil {
				return err
			}
		}

		unlock := now.Add(e.Params.LPLockDuration)
		l.LPUnlockTime = &unlock
		l.RetainedPrimary = l.PrimaryCollected - primaryPoolFunds
		l.IsFinalizing = false
		if err := tx.Save(l).Error; err != nil {
			return err
		}

		if err := ledger.EnableTransfers(tx, l.ID); err != nil {
			return err
		}
		if err := ledger.SetPools(tx, l.ID, l.PrimaryPoolID, l.SecondaryPoolID); err != nil {
			return err
		}
		if err := ledger.StartVesting(tx, l.ID, now); err != nil {
			return err
		}
		return e.recordEvent(tx, l.ID, models.EventFinalized, l.Creator, l.RewardAsset, l.TokensForLiquidity)
	})
	if err != nil {
		log.WithFields(log.Fields{"launch_id": launchID, "error": err}).Warn("finalization failed")
		return err
	}

	log.WithField("launch_id", launchID).Info("launch finalized")
	return nil
}

// bootstrapPool creates or reuses the pair between the given asset and the
// launch's reward token, rejects a pre-funded pair, and adds liquidity with
// the configured slippage tolerance and execution deadline.
func (e *Engine) bootstrapPool(tx *gorm.DB, l *models.Launch, asset string, assetFunds, tokenFunds uint64, venueDeadline, now time.Time) (uint, error) {
	if assetFunds == 0 || tokenFunds == 0 {
		return 0, errors.New("empty pool allocation")
	}
	pair, err := exchange.GetOrCreatePair(tx, asset, l.RewardAsset, now)
	if err != nil {
		return 0, err
	}
	// A pair that already holds reserves before bootstrap is a planted
	// market, not a pre-existing one.
	if pair.Reserve0 != 0 || pair.Reserve1 != 0 {
		return 0, ErrPairPreFunded
	}

	minAsset := assetFunds - utils.Bps(assetFunds, e.Params.SlippageBps)
	minTokens := tokenFunds - utils.Bps(tokenFunds, e.Params.SlippageBps)
	_, _, _, err = exchange.AddLiquidity(tx, pair.ID, ledger.EscrowAddress(l.ID), asset,
		assetFunds, tokenFunds, minAsset, minTokens, venueDeadline, now)
	if err != nil {
		return 0, err
	}
	return pair.ID, nil
}
