package business

import (
	"errors"

	"gorm.io/gorm"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/exchange"
	"launchcontrol/pkg/ledger"
	"launchcontrol/pkg/utils"
)

// RemainingCapacity reports how much room a launch still has.
type RemainingCapacity struct {
	Total          uint64 `json:"total"`
	SecondaryValue uint64 `json:"secondary_value"`
}

// PoolInfo is the read-model of one bootstrapped pool.
type PoolInfo struct {
	PairID    uint   `json:"pair_id"`
	Asset0    string `json:"asset0"`
	Asset1    string `json:"asset1"`
	Reserve0  uint64 `json:"reserve0"`
	Reserve1  uint64 `json:"reserve1"`
	LPSupply  uint64 `json:"lp_supply"`
	LPInLock  uint64 `json:"lp_in_lock"`
	LPAssetID string `json:"lp_asset_id"`
}

func (e *Engine) GetLaunch(launchID uint) (*models.Launch, error) {
	var l models.Launch
	err := e.DB.First(&l, launchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLaunchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (e *Engine) ListLaunches(page, pageSize int) ([]models.Launch, int64, error) {
	var total int64
	if err := e.DB.Model(&models.Launch{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var launches []models.Launch
	offset := (page - 1) * pageSize
	if err := e.DB.Order("id desc").Offset(offset).Limit(pageSize).Find(&launches).Error; err != nil {
		return nil, 0, err
	}
	return launches, total, nil
}

func (e *Engine) GetContributor(launchID uint, address string) (*models.LaunchContributor, error) {
	if _, err := e.GetLaunch(launchID); err != nil {
		return nil, err
	}
	var row models.LaunchContributor
	err := e.DB.Where("launch_id = ? AND address = ?", launchID, address).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Never contributed: an all-zero entry, not an error.
		return &models.LaunchContributor{LaunchID: launchID, Address: address}, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (e *Engine) GetRemainingCapacity(launchID uint) (*RemainingCapacity, error) {
	l, err := e.GetLaunch(launchID)
	if err != nil {
		return nil, err
	}
	rc := RemainingCapacity{}
	if l.State == models.LaunchStateActive {
		collected := l.PrimaryCollected + l.SecondaryValueCollected
		if collected < e.Params.TargetRaise {
			rc.Total = e.Params.TargetRaise - collected
		}
		secondaryCap := utils.Bps(e.Params.TargetRaise, e.Params.MaxSecondaryBps)
		if l.SecondaryValueCollected < secondaryCap {
			rc.SecondaryValue = secondaryCap - l.SecondaryValueCollected
			if rc.SecondaryValue > rc.Total {
				rc.SecondaryValue = rc.Total
			}
		}
	}
	return &rc, nil
}

func (e *Engine) GetPools(launchID uint) ([]PoolInfo, error) {
	l, err := e.GetLaunch(launchID)
	if err != nil {
		return nil, err
	}
	escrow := ledger.EscrowAddress(l.ID)
	var pools []PoolInfo
	for _, poolID := range []uint{l.PrimaryPoolID, l.SecondaryPoolID} {
		if poolID == 0 {
			continue
		}
		pair, err := exchange.GetPairByID(e.DB, poolID)
		if err != nil {
			return nil, err
		}
		lpAsset := exchange.LPAssetID(pair.ID)
		locked, err := ledger.BalanceOf(e.DB, lpAsset, escrow)
		if err != nil {
			return nil, err
		}
		pools = append(pools, PoolInfo{
			PairID:    pair.ID,
			Asset0:    pair.Asset0,
			Asset1:    pair.Asset1,
			Reserve0:  pair.Reserve0,
			Reserve1:  pair.Reserve1,
			LPSupply:  pair.LPSupply,
			LPInLock:  locked,
			LPAssetID: lpAsset,
		})
	}
	return pools, nil
}

// RecentEvents returns the newest event rows for a launch.
func (e *Engine) RecentEvents(launchID uint, limit int) ([]models.LaunchEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var events []models.LaunchEvent
	err := e.DB.Where("launch_id = ?", launchID).Order("id desc").Limit(limit).Find(&events).Error
	return events, err
}
