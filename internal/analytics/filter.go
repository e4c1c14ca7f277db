package analytics

import (
	"time"

	"github.com/dushixiang/lumen/internal/models"
)

// Criteria 交易筛选条件，零值字段视为通配。所有条件按与关系生效。
type Criteria struct {
	ChannelName string     `json:"channel_name"`
	OrderType   string     `json:"order_type"`
	Side        string     `json:"side"`
	Status      string     `json:"status"`
	From        *time.Time `json:"from"` // 信号时间下界（含）
	To          *time.Time `json:"to"`   // 信号时间上界（含）
}

// IsZero 是否没有任何有效条件
func (c Criteria) IsZero() bool {
	return c.ChannelName == "" && c.OrderType == "" && c.Side == "" &&
		c.Status == "" && c.From == nil && c.To == nil
}

func (c Criteria) matches(s *models.Signal) bool {
	if c.ChannelName != "" && s.ChannelName != c.ChannelName {
		return false
	}
	if c.OrderType != "" && s.OrderType != c.OrderType {
		return false
	}
	if c.Side != "" && s.Side != c.Side {
		return false
	}
	if c.Status != "" && s.Status != c.Status {
		return false
	}
	if c.From != nil && s.SignalTime.Before(*c.From) {
		return false
	}
	if c.To != nil && s.SignalTime.After(*c.To) {
		return false
	}
	return true
}

// Apply 按条件过滤记录，单次遍历，不修改输入
func Apply(records []models.Signal, c Criteria) []models.Signal {
	if c.IsZero() {
		out := make([]models.Signal, len(records))
		copy(out, records)
		return out
	}

	out := make([]models.Signal, 0, len(records))
	for i := range records {
		if c.matches(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}
