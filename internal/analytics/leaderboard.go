package analytics

import (
	"sort"
	"time"

	"github.com/dushixiang/lumen/internal/models"
)

// ChannelPerformance 单个频道的绩效统计
type ChannelPerformance struct {
	ChannelID   string  `json:"channel_id"`
	ChannelName string  `json:"channel_name"`
	TotalPnl    float64 `json:"total_pnl"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Trades      int     `json:"trades"`
	WinRate     float64 `json:"win_rate"` // wins/(wins+losses)，分母为0时取0
}

// RankChannels 按频道汇总已平仓交易并按总盈亏降序排列。
// 分组顺序按首次出现稳定，排序使用稳定排序，平局保持分组顺序。
func RankChannels(records []models.Signal) []ChannelPerformance {
	byChannel := make(map[string]*ChannelPerformance)
	var order []string

	for i := range records {
		r := &records[i]
		if !r.IsClosed() {
			continue
		}
		key := channelKey(r)
		perf, ok := byChannel[key]
		if !ok {
			perf = &ChannelPerformance{ChannelID: r.ChannelID, ChannelName: r.ChannelName}
			byChannel[key] = perf
			order = append(order, key)
		}
		perf.Trades++
		perf.TotalPnl += r.ProfitLoss
		switch r.Outcome {
		case models.OutcomeProfit:
			perf.Wins++
		case models.OutcomeLoss:
			perf.Losses++
		}
	}

	out := make([]ChannelPerformance, 0, len(order))
	for _, key := range order {
		perf := byChannel[key]
		if denom := perf.Wins + perf.Losses; denom > 0 {
			perf.WinRate = float64(perf.Wins) / float64(denom)
		}
		out = append(out, *perf)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalPnl > out[j].TotalPnl
	})
	return out
}

// TopN 降序排名的头部
func TopN(ranked []ChannelPerformance, n int) []ChannelPerformance {
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]ChannelPerformance, n)
	copy(out, ranked[:n])
	return out
}

// BottomN 取降序排名的尾部并反转，而不是重新按升序排序，
// 这样平局的先后关系与头部排名一致。
func BottomN(ranked []ChannelPerformance, n int) []ChannelPerformance {
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]ChannelPerformance, 0, n)
	for i := len(ranked) - 1; i >= len(ranked)-n; i-- {
		out = append(out, ranked[i])
	}
	return out
}

// HotChannel 近期信号量排名条目
type HotChannel struct {
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name"`
	Signals     int    `json:"signals"`
}

// hotWindow 热度统计固定看最近24小时，与展示用的时间范围选择无关
const hotWindow = 24 * time.Hour

// HotChannels 统计最近24小时各频道的信号量并降序排列。
// 信号量低于 minSignals 的频道不参与排名，用于过滤偶发噪音。
func HotChannels(records []models.Signal, now time.Time, minSignals int) []HotChannel {
	since := now.Add(-hotWindow)

	byChannel := make(map[string]*HotChannel)
	var order []string
	for i := range records {
		r := &records[i]
		if r.SignalTime.Before(since) || r.SignalTime.After(now) {
			continue
		}
		key := channelKey(r)
		hc, ok := byChannel[key]
		if !ok {
			hc = &HotChannel{ChannelID: r.ChannelID, ChannelName: r.ChannelName}
			byChannel[key] = hc
			order = append(order, key)
		}
		hc.Signals++
	}

	out := make([]HotChannel, 0, len(order))
	for _, key := range order {
		hc := byChannel[key]
		if hc.Signals < minSignals {
			continue
		}
		out = append(out, *hc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Signals > out[j].Signals
	})
	return out
}

// channelKey 历史记录可能只剩频道名（配置已删除），ID为空时退回用名称分组
func channelKey(r *models.Signal) string {
	if r.ChannelID != "" {
		return r.ChannelID
	}
	return "name:" + r.ChannelName
}
