package analytics

import (
	"time"

	"github.com/dushixiang/lumen/internal/models"
)

// Window 相对当前时刻的时间范围
type Window string

const (
	WindowDay   Window = "1d"
	WindowWeek  Window = "1w"
	WindowMonth Window = "1m"
	WindowYear  Window = "1y"
	WindowAll   Window = "all"
)

// ParseWindow 解析范围参数，无法识别时退回 all
func ParseWindow(s string) Window {
	switch Window(s) {
	case WindowDay, WindowWeek, WindowMonth, WindowYear:
		return Window(s)
	default:
		return WindowAll
	}
}

// lowerBound 范围下界；all 没有下界
func (w Window) lowerBound(now time.Time) (time.Time, bool) {
	switch w {
	case WindowDay:
		return now.AddDate(0, 0, -1), true
	case WindowWeek:
		return now.AddDate(0, 0, -7), true
	case WindowMonth:
		return now.AddDate(0, -1, 0), true
	case WindowYear:
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// TimeField 记录时间字段选择器
type TimeField func(*models.Signal) time.Time

// BySignalTime 按信号时间
func BySignalTime(s *models.Signal) time.Time { return s.SignalTime }

// ByCloseTime 按平仓时间，未平仓的记录返回零值（会被任何有界范围排除）
func ByCloseTime(s *models.Signal) time.Time {
	if s.CloseTime == nil {
		return time.Time{}
	}
	return *s.CloseTime
}

// Clip 按时间范围裁剪记录。锚点是调用方传入的 now——仪表盘语义，
// 相同输入在不同时刻调用结果可能不同，测试时注入固定时钟。
func Clip(records []models.Signal, w Window, at TimeField, now time.Time) []models.Signal {
	since, bounded := w.lowerBound(now)
	if !bounded {
		out := make([]models.Signal, len(records))
		copy(out, records)
		return out
	}

	out := make([]models.Signal, 0, len(records))
	for i := range records {
		t := at(&records[i])
		if !t.Before(since) {
			out = append(out, records[i])
		}
	}
	return out
}
