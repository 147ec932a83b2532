package business

import (
	"gorm.io/gorm"

	log "github.com/sirupsen/logrus"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/exchange"
	"launchcontrol/pkg/ledger"
	"launchcontrol/pkg/utils"
)

// ContributePrimary applies a primary-asset contribution. Returns true when
// this contribution fills the raise target exactly; the caller uses that
// signal to trigger finalization.
func (e *Engine) ContributePrimary(launchID uint, contributor string, amount uint64) (bool, error) {
	if amount == 0 {
		return false, ErrZeroAmount
	}
	now := e.Now()
	reached := false

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		l, err := e.lockLaunch(tx, launchID)
		if err != nil {
			return err
		}
		if err := e.checkContributable(l, now); err != nil {
			return err
		}

		total := l.PrimaryCollected + l.SecondaryValueCollected
		gap := e.Params.TargetRaise - total
		// No clamping: a contribution that overshoots is rejected outright
		// rather than silently truncated.
		if amount > gap {
			return ErrExcessiveContribution
		}
		// An exact-completion contribution may be arbitrarily small.
		if amount < e.Params.MinPrimaryContribution && amount != gap {
			return ErrBelowMinimum
		}

		tokens := utils.MulDiv(amount, l.TokensForContributors, e.Params.TargetRaise)

		// Pull funds, then mutate owned state, then distribute.
		escrow := ledger.EscrowAddress(l.ID)
		if err := ledger.Transfer(tx, e.Params.PrimaryAsset, contributor, escrow, amount); err != nil {
			return err
		}

		l.PrimaryCollected += amount
		l.RewardDistributed += tokens
		if err := tx.Save(l).Error; err != nil {
			return err
		}
		if err := e.creditContributor(tx, l.ID, contributor, amount, 0, 0, tokens); err != nil {
			return err
		}
		if tokens > 0 {
			if err := ledger.Transfer(tx, l.RewardAsset, escrow, contributor, tokens); err != nil {
				return err
			}
		}

		if err := e.recordEvent(tx, l.ID, models.EventContribution, contributor, e.Params.PrimaryAsset, amount); err != nil {
			return err
		}
		if err := e.recordEvent(tx, l.ID, models.EventRewardDistributed, contributor, l.RewardAsset, tokens); err != nil {
			return err
		}

		reached = amount == gap
		return nil
	})
	if err != nil {
		return false, err
	}

	log.WithFields(log.Fields{"launch_id": launchID, "contributor": contributor, "amount": amount, "reached": reached}).
		Info("primary contribution accepted")
	return reached, nil
}

// ContributeSecondary applies a secondary-asset contribution. The amount is
// valued in primary units by the price guard; the value, not the raw
// amount, counts toward the target and the secondary cap.
func (e *Engine) ContributeSecondary(launchID uint, contributor string, amount uint64) (bool, error) {
	if amount == 0 {
		return false, ErrZeroAmount
	}
	now := e.Now()
	reached := false

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		l, err := e.lockLaunch(tx, launchID)
		if err != nil {
			return err
		}
		if err := e.checkContributable(l, now); err != nil {
			return err
		}

		pair, err := exchange.GetPair(tx, e.Params.SecondaryAsset, e.Params.PrimaryAsset)
		if err == exchange.ErrPairNotFound {
			return ErrNoSecondaryPair
		}
		if err != nil {
			return err
		}

		value, err := e.validateSecondaryValue(tx, pair, amount, now)
		if err != nil {
			return err
		}
		if value == 0 {
			return ErrZeroAmount
		}

		total := l.PrimaryCollected + l.SecondaryValueCollected
		gap := e.Params.TargetRaise - total
		if value > gap {
			return ErrExcessiveContribution
		}
		if amount < e.Params.MinSecondaryContribution && value != gap {
			return ErrBelowMinimum
		}
		secondaryCap := utils.Bps(e.Params.TargetRaise, e.Params.MaxSecondaryBps)
		if l.SecondaryValueCollected+value > secondaryCap {
			return ErrExcessiveSecondary
		}

		// The pull needs a standing approval to the launch escrow.
		escrow := ledger.EscrowAddress(l.ID)
		allowance, err := ledger.Allowance(tx, e.Params.SecondaryAsset, contributor, escrow)
		if err != nil {
			return err
		}
		if allowance < amount {
			return ErrTokenApprovalRequired
		}

		tokens := utils.MulDiv(value, l.TokensForContributors, e.Params.TargetRaise)

		if err := ledger.TransferFrom(tx, e.Params.SecondaryAsset, contributor, escrow, escrow, amount); err != nil {
			return err
		}

		l.SecondaryCollected += amount
		l.SecondaryValueCollected += value
		l.RewardDistributed += tokens
		if err := tx.Save(l).Error; err != nil {
			return err
		}
		if err := e.creditContributor(tx, l.ID, contributor, 0, amount, value, tokens); err != nil {
			return err
		}
		if tokens > 0 {
			if err := ledger.Transfer(tx, l.RewardAsset, escrow, contributor, tokens); err != nil {
				return err
			}
		}

		if err := e.recordEvent(tx, l.ID, models.EventContribution, contributor, e.Params.SecondaryAsset, amount); err != nil {
			return err
		}
		if err := e.recordEvent(tx, l.ID, models.EventRewardDistributed, contributor, l.RewardAsset, tokens); err != nil {
			return err
		}

		reached = value == gap
		return nil
	})
	if err != nil {
		return false, err
	}

	log.WithFields(log.Fields{"launch_id": launchID, "contributor": contributor, "amount": amount, "reached": reached}).
		Info("secondary contribution accepted")
	return reached, nil
}

// creditContributor upserts the per-contributor ledger entry.
func (e *Engine) creditContributor(tx *gorm.DB, launchID uint, address string, primary, secondary, secondaryValue, tokens uint64) error {
	var row models.LaunchContributor
	err := utils.ForUpdate(tx).
		Where("launch_id = ? AND address = ?", launchID, address).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		row = models.LaunchContributor{LaunchID: launchID, Address: address}
		err = nil
	}
	if err != nil {
		return err
	}
	row.PrimaryContributed += primary
	row.SecondaryContributed += secondary
	row.SecondaryValueContributed += secondaryValue
	row.RewardReceived += tokens
	return tx.Save(&row).Error
}
