package models

import (
	"time"

	"gorm.io/datatypes"
)

// 审计事件类型，来自机器人与控制台的配置变更
const (
	EventChannelCreated      = "channel_created"
	EventChannelUpdated      = "channel_updated"
	EventChannelDeleted      = "channel_deleted"
	EventChannelEnabled      = "channel_enabled"
	EventChannelDisabled     = "channel_disabled"
	EventTelegramNameChanged = "telegram_name_changed"
	EventPolicyUpdated       = "policy_updated"
	EventSettingsUpdated     = "settings_updated"
)

// ActivityEvent 审计事件，创建后不可变更
type ActivityEvent struct {
	ID        string         `gorm:"primaryKey;size:26" json:"id"`
	EventType string         `gorm:"size:50;index" json:"event_type"`
	Subject   string         `gorm:"size:100" json:"subject"` // 事件主体，一般为频道名
	Payload   datatypes.JSON `gorm:"type:json" json:"payload"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 指定表名
func (ActivityEvent) TableName() string {
	return "activity_events"
}
