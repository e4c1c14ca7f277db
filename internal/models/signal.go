package models

import (
	"time"
)

// 交易状态
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusClosed   = "closed"
	StatusCanceled = "canceled"
	StatusBlocked  = "blocked"
)

// 平仓结果
const (
	OutcomeProfit    = "profit"
	OutcomeLoss      = "loss"
	OutcomeBreakeven = "breakeven"
	OutcomeManual    = "manual"
	OutcomeCanceled  = "canceled"
	OutcomeBlocked   = "blocked"
	// OutcomeUnknown 已平仓但结果缺失时的归类，仅用于统计展示
	OutcomeUnknown = "unknown"
)

// Signal 信号交易记录
type Signal struct {
	ID             string     `gorm:"primaryKey;size:64" json:"id"`
	ChannelID      string     `gorm:"size:26;index" json:"channel_id"`
	ChannelName    string     `gorm:"size:100" json:"channel_name"`
	Symbol         string     `gorm:"size:20;index" json:"symbol"`           // 交易品种，如 XAUUSD
	Side           string     `gorm:"size:10" json:"side"`                   // buy/sell
	OrderType      string     `gorm:"size:10" json:"order_type"`             // market/limit
	Status         string     `gorm:"size:10;index" json:"status"`           // pending/active/closed/canceled/blocked
	Outcome        string     `gorm:"size:10" json:"trade_outcome"`          // 仅 closed 时有意义，可能为空
	EntryPrice     float64    `gorm:"type:decimal(20,8)" json:"entry_price"` // 信号入场价
	FillPrice      float64    `gorm:"type:decimal(20,8)" json:"fill_price"`  // 实际成交价
	SLPrice        float64    `gorm:"type:decimal(20,8)" json:"sl_price"`    // 止损价
	TPPrice        float64    `gorm:"type:decimal(20,8)" json:"tp_price"`    // 最终止盈价
	ClosePrice     float64    `gorm:"type:decimal(20,8)" json:"close_price"` // 平仓价
	LotSize        float64    `gorm:"type:decimal(20,8)" json:"lot_size"`    // 手数
	ProfitLoss     float64    `gorm:"type:decimal(20,8)" json:"profit_loss"` // 已实现盈亏
	ProfitLossPips float64    `gorm:"type:decimal(20,8)" json:"profit_loss_pips"`
	RiskFreeMoved  bool       `json:"riskfree_moved"`               // 止损是否已移至保本
	BlockReason    string     `gorm:"size:255" json:"block_reason"` // 被拦截原因
	SignalTime     time.Time  `gorm:"not null;index" json:"signal_time"`
	FillTime       *time.Time `json:"fill_time"`
	CloseTime      *time.Time `json:"close_time"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Signal) TableName() string {
	return "signals"
}

// IsClosed 是否已平仓
func (s *Signal) IsClosed() bool {
	return s.Status == StatusClosed
}

// OutcomeCategory 统计分桶使用的结果类别，缺失或无法识别的结果归入 unknown
func (s *Signal) OutcomeCategory() string {
	switch s.Outcome {
	case OutcomeProfit, OutcomeLoss, OutcomeBreakeven, OutcomeManual, OutcomeCanceled, OutcomeBlocked:
		return s.Outcome
	default:
		return OutcomeUnknown
	}
}
