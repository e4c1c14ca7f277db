package analytics

import (
	"github.com/dushixiang/lumen/internal/models"
)

// OutcomeDistribution 单个频道按结果类别的交易数分布
type OutcomeDistribution struct {
	ChannelID   string         `json:"channel_id"`
	ChannelName string         `json:"channel_name"`
	Trades      int            `json:"trades"`
	Counts      map[string]int `json:"counts"` // 结果类别 -> 数量
}

// OutcomeDistributions 按频道和结果类别分桶统计所有记录。
// 结果缺失或无法识别的记录计入 unknown 桶，绝不静默丢弃，
// 频道的交易总数始终等于各桶之和。
func OutcomeDistributions(records []models.Signal) []OutcomeDistribution {
	byChannel := make(map[string]*OutcomeDistribution)
	var order []string

	for i := range records {
		r := &records[i]
		key := channelKey(r)
		dist, ok := byChannel[key]
		if !ok {
			dist = &OutcomeDistribution{
				ChannelID:   r.ChannelID,
				ChannelName: r.ChannelName,
				Counts:      make(map[string]int),
			}
			byChannel[key] = dist
			order = append(order, key)
		}
		dist.Trades++
		dist.Counts[r.OutcomeCategory()]++
	}

	out := make([]OutcomeDistribution, 0, len(order))
	for _, key := range order {
		out = append(out, *byChannel[key])
	}
	return out
}

// Summary 总览统计指标
type Summary struct {
	TotalSignals    int     `json:"total_signals"`
	ClosedTrades    int     `json:"closed_trades"`
	WinTrades       int     `json:"win_trades"`
	LossTrades      int     `json:"loss_trades"`
	BreakevenTrades int     `json:"breakeven_trades"`
	BlockedTrades   int     `json:"blocked_trades"`
	NetProfit       float64 `json:"net_profit"`
	GrossProfit     float64 `json:"gross_profit"`
	GrossLoss       float64 `json:"gross_loss"` // 取绝对值
	WinRate         float64 `json:"win_rate"`   // wins/closed，[0,1]
	ProfitFactor    float64 `json:"profit_factor"`
	AvgWin          float64 `json:"avg_win"`
	AvgLoss         float64 `json:"avg_loss"`
	MaxWin          float64 `json:"max_win"`
	MaxLoss         float64 `json:"max_loss"`
	TotalPips       float64 `json:"total_pips"`
}

// Summarize 计算记录集的总览指标。空输入返回零值而不是错误，
// 缺失的盈亏数值按0累加但仍计入交易数。
func Summarize(records []models.Signal) Summary {
	var s Summary
	s.TotalSignals = len(records)

	for i := range records {
		r := &records[i]
		if r.Status == models.StatusBlocked {
			s.BlockedTrades++
		}
		if !r.IsClosed() {
			continue
		}
		s.ClosedTrades++
		s.NetProfit += r.ProfitLoss
		s.TotalPips += r.ProfitLossPips

		if r.ProfitLoss > 0 {
			s.GrossProfit += r.ProfitLoss
			if r.ProfitLoss > s.MaxWin {
				s.MaxWin = r.ProfitLoss
			}
		} else if r.ProfitLoss < 0 {
			s.GrossLoss += -r.ProfitLoss
			if r.ProfitLoss < s.MaxLoss {
				s.MaxLoss = r.ProfitLoss
			}
		}

		switch r.Outcome {
		case models.OutcomeProfit:
			s.WinTrades++
		case models.OutcomeLoss:
			s.LossTrades++
		case models.OutcomeBreakeven:
			s.BreakevenTrades++
		}
	}

	if s.ClosedTrades > 0 {
		s.WinRate = float64(s.WinTrades) / float64(s.ClosedTrades)
	}
	if s.GrossLoss > 0 {
		s.ProfitFactor = s.GrossProfit / s.GrossLoss
	}
	if s.WinTrades > 0 {
		s.AvgWin = s.GrossProfit / float64(s.WinTrades)
	}
	if s.LossTrades > 0 {
		s.AvgLoss = s.GrossLoss / float64(s.LossTrades)
	}
	return s
}
