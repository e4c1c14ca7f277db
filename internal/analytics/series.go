package analytics

import (
	"sort"
	"time"

	"github.com/dushixiang/lumen/internal/models"
)

const dateLayout = "2006-01-02"

// SeriesPoint 累计盈亏曲线上的一个点，Date 按日聚合
type SeriesPoint struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// ChannelSeries 单个频道的累计盈亏序列
type ChannelSeries struct {
	ChannelID   string        `json:"channel_id"`
	ChannelName string        `json:"channel_name"`
	Points      []SeriesPoint `json:"points"`
}

// CumulativeByChannel 计算各频道按日聚合的累计盈亏曲线。
// 只统计有平仓时间的已平仓记录；日期轴覆盖首末平仓日之间的
// 每一个自然日，没有平仓的日子沿用最近一次的累计值
// （carry-forward），避免折线图出现断点或掉零的假象。
func CumulativeByChannel(records []models.Signal) []ChannelSeries {
	type closedTrade struct {
		key  string
		id   string
		name string
		at   time.Time
		pnl  float64
	}

	trades := make([]closedTrade, 0, len(records))
	for i := range records {
		r := &records[i]
		if !r.IsClosed() || r.CloseTime == nil {
			continue
		}
		trades = append(trades, closedTrade{
			key:  channelKey(r),
			id:   r.ChannelID,
			name: r.ChannelName,
			at:   *r.CloseTime,
			pnl:  r.ProfitLoss,
		})
	}
	if len(trades) == 0 {
		return nil
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].at.Before(trades[j].at)
	})

	// 滚动累计值与出现顺序
	running := make(map[string]float64)
	series := make(map[string]*ChannelSeries)
	var channelOrder []string
	perDate := make(map[string]map[string]float64) // date -> channel key -> 当日收盘累计值

	for _, t := range trades {
		date := t.at.Format(dateLayout)
		if _, ok := perDate[date]; !ok {
			perDate[date] = make(map[string]float64)
		}
		if _, ok := series[t.key]; !ok {
			series[t.key] = &ChannelSeries{ChannelID: t.id, ChannelName: t.name}
			channelOrder = append(channelOrder, t.key)
		}
		running[t.key] += t.pnl
		perDate[date][t.key] = running[t.key]
	}

	// 逐个自然日填充，没有新平仓的频道沿用上一个累计值
	firstDay, _ := time.Parse(dateLayout, trades[0].at.Format(dateLayout))
	lastDay, _ := time.Parse(dateLayout, trades[len(trades)-1].at.Format(dateLayout))
	last := make(map[string]float64)
	started := make(map[string]bool)
	for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		date := day.Format(dateLayout)
		for key, total := range perDate[date] {
			last[key] = total
			started[key] = true
		}
		for _, key := range channelOrder {
			if !started[key] {
				continue
			}
			s := series[key]
			s.Points = append(s.Points, SeriesPoint{Date: date, Total: last[key]})
		}
	}

	out := make([]ChannelSeries, 0, len(channelOrder))
	for _, key := range channelOrder {
		out = append(out, *series[key])
	}
	return out
}

// RatePoint 滚动胜率曲线上的一个点
type RatePoint struct {
	Time time.Time `json:"time"`
	Rate float64   `json:"rate"` // [0,1]
}

// RollingWinRate 按平仓时间升序对已平仓交易计算滚动胜率。
// 第i个点取窗口 [max(0,i-window+1), i]，起始段窗口逐渐增长，
// 第一个点的窗口大小为1；输出长度等于已平仓交易数。
func RollingWinRate(records []models.Signal, window int) []RatePoint {
	if window <= 0 {
		window = 20
	}

	type closed struct {
		at  time.Time
		win bool
	}
	trades := make([]closed, 0, len(records))
	for i := range records {
		r := &records[i]
		if !r.IsClosed() {
			continue
		}
		at := r.SignalTime
		if r.CloseTime != nil {
			at = *r.CloseTime
		}
		trades = append(trades, closed{at: at, win: r.Outcome == models.OutcomeProfit})
	}
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].at.Before(trades[j].at)
	})

	out := make([]RatePoint, 0, len(trades))
	wins := 0
	for i, t := range trades {
		if t.win {
			wins++
		}
		if i >= window && trades[i-window].win {
			wins--
		}
		size := i + 1
		if size > window {
			size = window
		}
		out = append(out, RatePoint{
			Time: t.at,
			Rate: float64(wins) / float64(size),
		})
	}
	return out
}
