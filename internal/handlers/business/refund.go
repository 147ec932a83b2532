package business

import (
	"errors"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/exchange"
	"launchcontrol/pkg/ledger"
	"launchcontrol/pkg/utils"
)

// Cancel aborts an active campaign. Creator-only, before the deadline, and
// never mid-finalization. The reserved name and symbol are freed for other
// campaigns; contributed assets stay claimable through Refund.
func (e *Engine) Cancel(launchID uint, caller string) error {
	now := e.Now()
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		l, err := e.lockLaunch(tx, launchID)
		if err != nil {
			return err
		}
		if caller != l.Creator {
			return ErrUnauthorized
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
		if now.After(l.Deadline) {
			return ErrDeadlinePassed
		}

		if err := tx.Where("launch_id = ?", l.ID).Delete(&models.LaunchNameRecord{}).Error; err != nil {
			return err
		}
		l.State = models.LaunchStateCancelled
		if err := tx.Save(l).Error; err != nil {
			return err
		}
		return e.recordEvent(tx, l.ID, models.EventCancelled, caller, "", 0)
	})
	if err != nil {
		return err
	}
	log.WithField("launch_id", launchID).Info("launch cancelled")
	return nil
}

// Refund returns a contributor's assets after a cancelled or failed
// campaign. The ledger entry is zeroed before any transfer; a transfer
// failure rolls the zeroing back with the rest of the transaction.
func (e *Engine) Refund(launchID uint, contributor string) error {
	now := e.Now()
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		l, err := e.lockLaunch(tx, launchID)
		if err != nil {
			return err
		}
		if l.State == models.LaunchStateLaunched {
			return ErrLaunchSucceeded
		}
		expired := now.After(l.Deadline) &&
			l.PrimaryCollected+l.SecondaryValueCollected < e.Params.TargetRaise
		if l.State != models.LaunchStateCancelled && !expired {
			return ErrLaunchStillActive
		}

		var row models.LaunchContributor
		err = utils.ForUpdate(tx).
			Where("launch_id = ? AND address = ?", l.ID, contributor).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoContributionToRefund
		}
		if err != nil {
			return err
		}
		if row.PrimaryContributed == 0 && row.SecondaryContributed == 0 && row.RewardReceived == 0 {
			// Also catches a second refund attempt: the first one zeroed
			// the row.
			return ErrNoContributionToRefund
		}

		primary := row.PrimaryContributed
		secondary := row.SecondaryContributed
		reward := row.RewardReceived

		// Zero the ledger entry before moving anything.
		row.PrimaryContributed = 0
		row.SecondaryContributed = 0
		row.SecondaryValueContributed = 0
		row.RewardReceived = 0
		if err := tx.Save(&row).Error; err != nil {
			return err
		}

		escrow := ledger.EscrowAddress(l.ID)

		// Fixed order: reclaim reward tokens, return secondary, return
		// primary.
		if reward > 0 {
			allowance, err := ledger.Allowance(tx, l.RewardAsset, contributor, escrow)
			if err != nil {
				return err
			}
			if allowance < reward {
				return ErrTokenApprovalRequired
			}
			if err := ledger.TransferFrom(tx, l.RewardAsset, contributor, escrow, escrow, reward); err != nil {
				return err
			}
		}
		if secondary > 0 {
			if err := ledger.Transfer(tx, e.Params.SecondaryAsset, escrow, contributor, secondary); err != nil {
				return err
			}
		}
		if primary > 0 {
			if err := ledger.Transfer(tx, e.Params.PrimaryAsset, escrow, contributor, primary); err != nil {
				return err
			}
		}

		return e.recordEvent(tx, l.ID, models.EventRefunded, contributor, e.Params.PrimaryAsset, primary)
	})
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"launch_id": launchID, "contributor": contributor}).Info("refund paid")
	return nil
}

// WithdrawLockedLiquidity hands the creator the LP tokens and the retained
// primary treasury once the lock expires.
func (e *Engine) WithdrawLockedLiquidity(launchID uint, caller string) error {
	now := e.Now()
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		l, err := e.lockLaunch(tx, launchID)
		if err != nil {
			return err
		}
		if caller != l.Creator {
			return ErrUnauthorized
		}
		if l.State != models.LaunchStateLaunched {
			return ErrLaunchStillActive
		}
		if l.LPUnlockTime == nil || now.Before(*l.LPUnlockTime) {
			return ErrLiquidityLocked
		}

		escrow := ledger.EscrowAddress(l.ID)
		moved := uint64(0)
		for _, poolID := range []uint{l.PrimaryPoolID, l.SecondaryPoolID} {
			if poolID == 0 {
				continue
			}
			lpAsset := exchange.LPAssetID(poolID)
			balance, err := ledger.BalanceOf(tx, lpAsset, escrow)
			if err != nil {
				return err
			}
			if balance == 0 {
				continue
			}
			if err := ledger.Transfer(tx, lpAsset, escrow, caller, balance); err != nil {
				return err
			}
			moved += balance
		}
		if l.RetainedPrimary > 0 {
			if err := ledger.Transfer(tx, e.Params.PrimaryAsset, escrow, caller, l.RetainedPrimary); err != nil {
				return err
			}
			l.RetainedPrimary = 0
			if err := tx.Save(l).Error; err != nil {
				return err
			}
		}
		return e.recordEvent(tx, l.ID, models.EventLiquidityWithdraw, caller, "", moved)
	})
	if err != nil {
		return err
	}
	log.WithField("launch_id", launchID).Info("locked liquidity withdrawn")
	return nil
}

// ClaimVested releases the creator's vested reward tokens.
func (e *Engine) ClaimVested(launchID uint, caller string) (uint64, error) {
	now := e.Now()
	var claimed uint64
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		l, err := e.lockLaunch(tx, launchID)
		if err != nil {
			return err
		}
		if caller != l.Creator {
			return ErrUnauthorized
		}
		claimed, err = ledger.ClaimVested(tx, l.ID, caller, now)
		if err != nil {
			return err
		}
		return e.recordEvent(tx, l.ID, models.EventVestedClaimed, caller, l.RewardAsset, claimed)
	})
	if err != nil {
		return 0, err
	}
	return claimed, nil
}
