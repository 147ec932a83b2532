package business

import (
	"errors"
	"regexp"

	"gorm.io/gorm"

	log "github.com/sirupsen/logrus"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/ledger"
	"launchcontrol/pkg/utils"
)

var (
	nameRe   = regexp.MustCompile(`^[A-Za-z0-9 _-]{1,32}$`)
	symbolRe = regexp.MustCompile(`^[A-Za-z0-9]{1,8}$`)
)

// CreateLaunch registers a new campaign: reserves the name and symbol
// globally, mints the reward token supply into the launch escrow with
// transfers disabled, fixes the allocation split, and schedules the
// creator's vested share.
func (e *Engine) CreateLaunch(name, symbol, imageRef, creator string) (*models.Launch, error) {
	if !nameRe.MatchString(name) {
		return nil, ErrInvalidName
	}
	if !symbolRe.MatchString(symbol) {
		return nil, ErrInvalidSymbol
	}
	if creator == "" {
		return nil, ErrUnauthorized
	}

	now := e.Now()
	var created models.Launch
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		if err := reserveName(tx, models.NameKindName, name); err != nil {
			return err
		}
		if err := reserveName(tx, models.NameKindSymbol, symbol); err != nil {
			return err
		}

		forContributors := utils.Bps(e.Params.TotalSupply, e.Params.ContributorsBps)
		forLiquidity := utils.Bps(e.Params.TotalSupply, e.Params.LiquidityBps)
		forCreator := e.Params.TotalSupply - forContributors - forLiquidity

		created = models.Launch{
			Name:                  name,
			Symbol:                symbol,
			ImageRef:              imageRef,
			Creator:               creator,
			State:                 models.LaunchStateActive,
			Deadline:              now.Add(e.Params.CampaignDuration),
			TokensForContributors: forContributors,
			TokensForLiquidity:    forLiquidity,
			TokensForCreator:      forCreator,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		// Backfill the launch id on the name records so cancellation can
		// free them.
		if err := tx.Model(&models.LaunchNameRecord{}).
			Where("(kind = ? AND value = ?) OR (kind = ? AND value = ?)",
				models.NameKindName, name, models.NameKindSymbol, symbol).
			Update("launch_id", created.ID).Error; err != nil {
			return err
		}

		asset, err := ledger.CreateRewardToken(tx, created.ID, symbol, e.Params.TotalSupply)
		if err != nil {
			return err
		}
		created.RewardAsset = asset
		if err := tx.Save(&created).Error; err != nil {
			return err
		}

		if err := ledger.SetupVesting(tx, created.ID, asset, creator, forCreator, e.Params.VestingDuration); err != nil {
			return err
		}
		return e.recordEvent(tx, created.ID, models.EventLaunchCreated, creator, asset, e.Params.TotalSupply)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"launch_id": created.ID, "name": name, "symbol": symbol}).
		Info("launch created")
	return &created, nil
}

func reserveName(tx *gorm.DB, kind, value string) error {
	var existing models.LaunchNameRecord
	err := tx.Where("kind = ? AND value = ?", kind, value).First(&existing).Error
	if err == nil {
		if kind == models.NameKindSymbol {
			return ErrSymbolTaken
		}
		return ErrNameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.Create(&models.LaunchNameRecord{Kind: kind, Value: value}).Error
}
