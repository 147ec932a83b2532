package models

import "time"

// AssetBalance holds one (asset, holder) balance in base units.
type AssetBalance struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	Asset  string `gorm:"size:24;not null;uniqueIndex:idx_asset_holder" json:"asset"`
	Holder string `gorm:"size:100;not null;uniqueIndex:idx_asset_holder" json:"holder"`
	Amount uint64 `gorm:"default:0" json:"amount"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (AssetBalance) TableName() string {
	return "asset_balance"
}

// AssetAllowance is an absolute spend authorization from owner to spender.
type AssetAllowance struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	Asset   string `gorm:"size:24;not null;uniqueIndex:idx_asset_owner_spender" json:"asset"`
	Owner   string `gorm:"size:100;not null;uniqueIndex:idx_asset_owner_spender" json:"owner"`
	Spender string `gorm:"size:100;not null;uniqueIndex:idx_asset_owner_spender" json:"spender"`
	Amount  uint64 `gorm:"default:0" json:"amount"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (AssetAllowance) TableName() string {
	return "asset_allowance"
}

// RewardTokenInfo tracks the lifecycle flags of a per-launch reward token.
// While TransfersEnabled is false only movements touching the launch escrow
// account are allowed.
type RewardTokenInfo struct {
	ID               uint   `gorm:"primarykey" json:"id"`
	LaunchID         uint   `gorm:"not null;uniqueIndex" json:"launch_id"`
	Asset            string `gorm:"size:24;not null;uniqueIndex" json:"asset"`
	TotalSupply      uint64 `gorm:"not null" json:"total_supply"`
	Burned           uint64 `gorm:"default:0" json:"burned"`
	TransfersEnabled bool   `gorm:"default:false" json:"transfers_enabled"`
	PrimaryPoolID    uint   `gorm:"default:0" json:"primary_pool_id"`
	SecondaryPoolID  uint   `gorm:"default:0" json:"secondary_pool_id"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (RewardTokenInfo) TableName() string {
	return "reward_token_info"
}

// VestingSchedule releases Total linearly over DurationSecs starting at
// StartAt. StartAt is nil until finalization starts the clock.
type VestingSchedule struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	LaunchID     uint       `gorm:"not null;index" json:"launch_id"`
	Asset        string     `gorm:"size:24;not null" json:"asset"`
	Beneficiary  string     `gorm:"size:100;not null" json:"beneficiary"`
	Total        uint64     `gorm:"not null" json:"total"`
	Released     uint64     `gorm:"default:0" json:"released"`
	StartAt      *time.Time `json:"start_at"`
	DurationSecs int64      `gorm:"not null" json:"duration_secs"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (VestingSchedule) TableName() string {
	return "vesting_schedule"
}
