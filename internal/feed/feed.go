package feed

import (
	"context"
	"encoding/json"
)

// 上游推送的通知类型
const (
	TypeTradeUpdate   = "trade_update"
	TypeChannelUpdate = "channel_update"
	TypePing          = "ping"
	TypePong          = "pong"
)

// Notification 上游数据源推送的变更通知。Data 和 Previous 保持原始JSON，
// 由消费方按通知类型归一化解码。
type Notification struct {
	Type      string          `json:"type"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Previous  json.RawMessage `json:"previous,omitempty"`
}

// Status 订阅连接状态
type Status string

const (
	StatusConnecting Status = "connecting"
	StatusConnected  Status = "connected"
	StatusError      Status = "error"
)

// Feed 变更通知订阅
type Feed interface {
	// Run 维持订阅直到 ctx 取消，断线自动重连
	Run(ctx context.Context)
	// Notifications 通知通道，Run 退出后关闭
	Notifications() <-chan Notification
	// Status 当前连接状态
	Status() Status
}
