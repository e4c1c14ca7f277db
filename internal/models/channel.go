package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Channel 信号频道配置
type Channel struct {
	ID                string                             `gorm:"primaryKey;size:26" json:"id"`
	ChannelKey        string                             `gorm:"uniqueIndex;size:100;not null" json:"channel_key"`
	ChannelName       string                             `gorm:"size:100" json:"channel_name"`
	TelegramID        int64                              `gorm:"index" json:"telegram_id"` // 解析后的Telegram频道ID
	IsActive          bool                               `gorm:"not null;default:true" json:"is_active"`
	RiskPerTrade      float64                            `gorm:"default:0.02" json:"risk_per_trade"`    // 单笔风险比例
	RiskTolerance     float64                            `gorm:"default:0.1" json:"risk_tolerance"`     // 风险容忍度
	MagicNumber       int                                `gorm:"default:123456" json:"magic_number"`    // MT5订单识别码
	MaxSlippagePoints int                                `gorm:"default:20" json:"max_slippage_points"` // 最大滑点
	FinalTPPolicy     datatypes.JSONType[FinalTPPolicy]  `gorm:"type:json" json:"final_tp_policy"`
	RiskFreePolicy    datatypes.JSONType[RiskFreePolicy] `gorm:"type:json" json:"riskfree_policy"`
	CancelPolicy      datatypes.JSONType[CancelPolicy]   `gorm:"type:json" json:"cancel_policy"`
	Instruments       datatypes.JSONSlice[Instrument]    `gorm:"type:json" json:"instruments"`
	CreatedAt         time.Time                          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time                          `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt                     `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName 指定表名
func (Channel) TableName() string {
	return "channels"
}

// ChannelRef 交易记录引用的频道信息，频道配置被删除后历史交易仍然引用它
type ChannelRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
	Orphaned bool   `json:"orphaned"` // 频道配置已删除但仍有历史交易
}
