package models

import "time"

// ExchangePair is one constant-product pool. Asset0 < Asset1
// lexicographically; reserves are tracked here and mirrored by the pair's
// escrow account in the asset book.
type ExchangePair struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Asset0   string `gorm:"size:24;not null;uniqueIndex:idx_pair_assets" json:"asset0"`
	Asset1   string `gorm:"size:24;not null;uniqueIndex:idx_pair_assets" json:"asset1"`
	Reserve0 uint64 `gorm:"default:0" json:"reserve0"`
	Reserve1 uint64 `gorm:"default:0" json:"reserve1"`
	LPSupply uint64 `gorm:"default:0" json:"lp_supply"`

	// ReservesUpdatedAt is the last reserve mutation, used for staleness
	// checks. Distinct from gorm's UpdatedAt, which any column touch bumps.
	ReservesUpdatedAt time.Time `json:"reserves_updated_at"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ExchangePair) TableName() string {
	return "exchange_pair"
}

// OracleObservation snapshots a pair's reserves at a point in time. TWAP
// consults time-weight these snapshots over the lookback window.
type OracleObservation struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	PairID     uint      `gorm:"not null;index" json:"pair_id"`
	Reserve0   uint64    `gorm:"not null" json:"reserve0"`
	Reserve1   uint64    `gorm:"not null" json:"reserve1"`
	ObservedAt time.Time `gorm:"not null;index" json:"observed_at"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (OracleObservation) TableName() string {
	return "oracle_observation"
}
