package models

import "time"

// Launch event types recorded in the event log and published to the
// notification queue.
const (
	EventLaunchCreated     = "launch_created"
	EventContribution      = "contribution"
	EventRewardDistributed = "reward_distributed"
	EventFinalized         = "finalized"
	EventCancelled         = "cancelled"
	EventRefunded          = "refunded"
	EventLiquidityWithdraw = "liquidity_withdrawn"
	EventVestedClaimed     = "vested_claimed"
	EventSecondaryBurned   = "secondary_burned"
	EventRefundWindowOpen  = "refund_window_open"
)

// LaunchEvent is an append-only record of a state-changing operation. Rows
// are written inside the operation's transaction; queue/websocket publishing
// happens after commit.
type LaunchEvent struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	EventID  string `gorm:"size:36;not null;uniqueIndex" json:"event_id"`
	LaunchID uint   `gorm:"not null;index" json:"launch_id"`
	Type     string `gorm:"size:32;not null" json:"type"`
	Address  string `gorm:"size:100" json:"address"`
	Asset    string `gorm:"size:24" json:"asset"`
	Amount   uint64 `gorm:"default:0" json:"amount"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (LaunchEvent) TableName() string {
	return "launch_event"
}
