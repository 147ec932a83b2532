package models

import (
	"time"
)

// Launch states. Active is the initial state; Launched and Cancelled are
// terminal and mutually exclusive.
const (
	LaunchStateActive    = "active"
	LaunchStateCancelled = "cancelled"
	LaunchStateLaunched  = "launched"
)

type Launch struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Name     string `gorm:"size:32;not null" json:"name"`
	Symbol   string `gorm:"size:8;not null" json:"symbol"`
	ImageRef string `gorm:"size:256" json:"image_ref"`
	Creator  string `gorm:"size:100;not null" json:"creator"`

	// RewardAsset is the ledger asset id of the reward token minted for this
	// launch. Created once, never changed.
	RewardAsset string `gorm:"size:24;not null" json:"reward_asset"`

	State        string    `gorm:"size:16;not null;default:'active'" json:"state"`
	IsFinalizing bool      `gorm:"default:false" json:"is_finalizing"`
	Deadline     time.Time `gorm:"not null" json:"deadline"`

	// Running totals. Monotonically non-decreasing while active. Kept as
	// historical record after a terminal state; per-contributor refunds do
	// not decrement them.
	PrimaryCollected        uint64 `gorm:"default:0" json:"primary_collected"`
	SecondaryCollected      uint64 `gorm:"default:0" json:"secondary_collected"`
	SecondaryValueCollected uint64 `gorm:"default:0" json:"secondary_value_collected"`
	RewardDistributed       uint64 `gorm:"default:0" json:"reward_distributed"`

	// Reward token allocation, fixed at creation.
	TokensForContributors uint64 `gorm:"default:0" json:"tokens_for_contributors"`
	TokensForLiquidity    uint64 `gorm:"default:0" json:"tokens_for_liquidity"`
	TokensForCreator      uint64 `gorm:"default:0" json:"tokens_for_creator"`

	// Populated at finalization. SecondaryPoolID stays 0 when the secondary
	// pool was skipped.
	PrimaryPoolID   uint       `gorm:"default:0" json:"primary_pool_id"`
	SecondaryPoolID uint       `gorm:"default:0" json:"secondary_pool_id"`
	LPUnlockTime    *time.Time `json:"lp_unlock_time"`

	// Primary remainder after the pool split, held in escrow for the creator
	// and withdrawable together with the locked liquidity.
	RetainedPrimary uint64 `gorm:"default:0" json:"retained_primary"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Launch) TableName() string {
	return "launch"
}

// LaunchContributor is the per-(launch, contributor) ledger entry, created
// lazily on first contribution and zeroed atomically on refund.
type LaunchContributor struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	LaunchID uint   `gorm:"not null;uniqueIndex:idx_launch_contributor" json:"launch_id"`
	Address  string `gorm:"size:100;not null;uniqueIndex:idx_launch_contributor" json:"address"`

	PrimaryContributed        uint64 `gorm:"default:0" json:"primary_contributed"`
	SecondaryContributed      uint64 `gorm:"default:0" json:"secondary_contributed"`
	SecondaryValueContributed uint64 `gorm:"default:0" json:"secondary_value_contributed"`
	RewardReceived            uint64 `gorm:"default:0" json:"reward_received"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (LaunchContributor) TableName() string {
	return "launch_contributor"
}
