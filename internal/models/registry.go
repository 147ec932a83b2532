package models

import "time"

// Name registry kinds.
const (
	NameKindName   = "name"
	NameKindSymbol = "symbol"
)

// LaunchNameRecord reserves a launch name or symbol globally. Written once at
// creation, deleted when the launch is cancelled, kept forever on success.
type LaunchNameRecord struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Kind     string `gorm:"size:8;not null;uniqueIndex:idx_name_kind_value" json:"kind"`
	Value    string `gorm:"size:32;not null;uniqueIndex:idx_name_kind_value" json:"value"`
	LaunchID uint   `gorm:"not null" json:"launch_id"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (LaunchNameRecord) TableName() string {
	return "launch_name_registry"
}
