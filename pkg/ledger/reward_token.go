package ledger

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/utils"
)

var (
	ErrTokenNotFound     = errors.New("ledger: reward token not found")
	ErrVestingNotStarted = errors.New("ledger: vesting not started")
	ErrNothingVested     = errors.New("ledger: nothing vested")
)

// RewardAssetID derives the ledger asset id for a launch's reward token.
// The launch id keeps the asset unique even when a cancelled launch's
// symbol is reused by a later campaign.
func RewardAssetID(launchID uint, symbol string) string {
	return fmt.Sprintf("RWD-%d-%s", launchID, symbol)
}

// CreateRewardToken mints the full supply of a launch's reward token into
// the launch escrow with transfers disabled.
func CreateRewardToken(db *gorm.DB, launchID uint, symbol string, totalSupply uint64) (string, error) {
	asset := RewardAssetID(launchID, symbol)
	info := models.RewardTokenInfo{
		LaunchID:    launchID,
		Asset:       asset,
		TotalSupply: totalSupply,
	}
	if err := db.Create(&info).Error; err != nil {
		return "", err
	}
	if err := Mint(db, asset, EscrowAddress(launchID), totalSupply); err != nil {
		return "", err
	}
	return asset, nil
}

func rewardTokenInfo(db *gorm.DB, launchID uint) (*models.RewardTokenInfo, error) {
	var info models.RewardTokenInfo
	err := utils.ForUpdate(db).
		Where("launch_id = ?", launchID).First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// EnableTransfers lifts the transfer gate. Called exactly once, at
// finalization.
func EnableTransfers(db *gorm.DB, launchID uint) error {
	info, err := rewardTokenInfo(db, launchID)
	if err != nil {
		return err
	}
	info.TransfersEnabled = true
	return db.Save(info).Error
}

// SetPools records the bootstrapped pool ids on the token. secondaryPoolID
// is zero when the secondary pool was skipped.
func SetPools(db *gorm.DB, launchID, primaryPoolID, secondaryPoolID uint) error {
	info, err := rewardTokenInfo(db, launchID)
	if err != nil {
		return err
	}
	info.PrimaryPoolID = primaryPoolID
	info.SecondaryPoolID = secondaryPoolID
	return db.Save(info).Error
}

// SetupVesting registers a linear vesting schedule for the beneficiary. The
// clock starts later, via StartVesting.
func SetupVesting(db *gorm.DB, launchID uint, asset, beneficiary string, total uint64, duration time.Duration) error {
	if total == 0 {
		return ErrZeroAmount
	}
	return db.Create(&models.VestingSchedule{
		LaunchID:     launchID,
		Asset:        asset,
		Beneficiary:  beneficiary,
		Total:        total,
		DurationSecs: int64(duration / time.Second),
	}).Error
}

// StartVesting stamps the vesting start time for all of a launch's
// schedules.
func StartVesting(db *gorm.DB, launchID uint, at time.Time) error {
	return db.Model(&models.VestingSchedule{}).
		Where("launch_id = ? AND start_at IS NULL", launchID).
		Update("start_at", at).Error
}

// VestedAmount is the total released under a linear schedule at the given
// time, before subtracting what was already claimed.
func VestedAmount(s *models.VestingSchedule, now time.Time) uint64 {
	if s.StartAt == nil || now.Before(*s.StartAt) {
		return 0
	}
	elapsed := int64(now.Sub(*s.StartAt) / time.Second)
	if s.DurationSecs <= 0 || elapsed >= s.DurationSecs {
		return s.Total
	}
	return utils.MulDiv(s.Total, uint64(elapsed), uint64(s.DurationSecs))
}

// ClaimVested releases whatever has vested since the last claim, moving it
// from the launch escrow to the beneficiary.
func ClaimVested(db *gorm.DB, launchID uint, beneficiary string, now time.Time) (uint64, error) {
	var s models.VestingSchedule
	err := utils.ForUpdate(db).
		Where("launch_id = ? AND beneficiary = ?", launchID, beneficiary).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrTokenNotFound
	}
	if err != nil {
		return 0, err
	}
	if s.StartAt == nil {
		return 0, ErrVestingNotStarted
	}
	vested := VestedAmount(&s, now)
	if vested <= s.Released {
		return 0, ErrNothingVested
	}
	claim := vested - s.Released
	s.Released = vested
	if err := db.Save(&s).Error; err != nil {
		return 0, err
	}
	if err := Transfer(db, s.Asset, EscrowAddress(launchID), beneficiary, claim); err != nil {
		return 0, fmt.Errorf("release vested: %w", err)
	}
	return claim, nil
}
