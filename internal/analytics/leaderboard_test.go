package analytics

import (
	"testing"
	"time"

	"github.com/dushixiang/lumen/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closedSignal(id, channelID, channelName, outcome string, pnl float64, closeAt time.Time) models.Signal {
	return models.Signal{
		ID:          id,
		ChannelID:   channelID,
		ChannelName: channelName,
		Status:      models.StatusClosed,
		Outcome:     outcome,
		ProfitLoss:  pnl,
		SignalTime:  closeAt.Add(-time.Hour),
		CloseTime:   &closeAt,
	}
}

func TestRankChannels(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	records := []models.Signal{
		closedSignal("t1", "c1", "Alpha", models.OutcomeProfit, 10, now),
		closedSignal("t2", "c1", "Alpha", models.OutcomeLoss, -4, now),
		closedSignal("t3", "c1", "Alpha", models.OutcomeProfit, 6, now),
		closedSignal("t4", "c2", "Beta", models.OutcomeProfit, 5, now),
		{ID: "t5", ChannelID: "c1", ChannelName: "Alpha", Status: models.StatusActive, ProfitLoss: 999, SignalTime: now},
	}

	ranked := RankChannels(records)
	require.Len(t, ranked, 2)

	alpha := ranked[0]
	assert.Equal(t, "c1", alpha.ChannelID)
	assert.Equal(t, 12.0, alpha.TotalPnl)
	assert.Equal(t, 3, alpha.Trades)
	assert.Equal(t, 2, alpha.Wins)
	assert.Equal(t, 1, alpha.Losses)
	assert.InDelta(t, 2.0/3.0, alpha.WinRate, 1e-9)

	assert.Equal(t, "c2", ranked[1].ChannelID)
	assert.Equal(t, 5.0, ranked[1].TotalPnl)
}

func TestRankChannelsWinRateZeroDenominator(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	records := []models.Signal{
		closedSignal("t1", "c1", "Alpha", models.OutcomeBreakeven, 0, now),
		closedSignal("t2", "c1", "Alpha", models.OutcomeManual, 1, now),
	}

	ranked := RankChannels(records)
	require.Len(t, ranked, 1)
	assert.Equal(t, 0.0, ranked[0].WinRate)
	assert.Equal(t, 2, ranked[0].Trades)
}

func TestRankChannelsTieKeepsFirstSeenOrder(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	records := []models.Signal{
		closedSignal("t1", "c1", "Alpha", models.OutcomeProfit, 5, now),
		closedSignal("t2", "c2", "Beta", models.OutcomeProfit, 5, now),
		closedSignal("t3", "c3", "Gamma", models.OutcomeProfit, 5, now),
	}

	ranked := RankChannels(records)
	require.Len(t, ranked, 3)
	assert.Equal(t, "c1", ranked[0].ChannelID)
	assert.Equal(t, "c2", ranked[1].ChannelID)
	assert.Equal(t, "c3", ranked[2].ChannelID)
}

func TestTopNAndBottomN(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	records := []models.Signal{
		closedSignal("t1", "c1", "Alpha", models.OutcomeProfit, 30, now),
		closedSignal("t2", "c2", "Beta", models.OutcomeProfit, 20, now),
		closedSignal("t3", "c3", "Gamma", models.OutcomeProfit, 10, now),
		closedSignal("t4", "c4", "Delta", models.OutcomeLoss, -5, now),
	}

	ranked := RankChannels(records)

	top := TopN(ranked, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "c1", top[0].ChannelID)
	assert.Equal(t, "c2", top[1].ChannelID)

	// 尾部反转：最差的排第一
	bottom := BottomN(ranked, 2)
	require.Len(t, bottom, 2)
	assert.Equal(t, "c4", bottom[0].ChannelID)
	assert.Equal(t, "c3", bottom[1].ChannelID)
}

func TestTopNBeyondLength(t *testing.T) {
	ranked := []ChannelPerformance{{ChannelID: "c1"}}
	assert.Len(t, TopN(ranked, 10), 1)
	assert.Len(t, BottomN(ranked, 10), 1)
	assert.Empty(t, TopN(nil, 5))
}

func TestHotChannels(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-2 * time.Hour)
	stale := now.Add(-30 * time.Hour)
	future := now.Add(time.Hour)

	records := []models.Signal{
		{ID: "t1", ChannelID: "c1", ChannelName: "Alpha", SignalTime: recent},
		{ID: "t2", ChannelID: "c1", ChannelName: "Alpha", SignalTime: recent},
		{ID: "t3", ChannelID: "c1", ChannelName: "Alpha", SignalTime: recent},
		{ID: "t4", ChannelID: "c2", ChannelName: "Beta", SignalTime: recent},
		{ID: "t5", ChannelID: "c2", ChannelName: "Beta", SignalTime: stale},
		{ID: "t6", ChannelID: "c3", ChannelName: "Gamma", SignalTime: future},
	}

	hot := HotChannels(records, now, 1)
	require.Len(t, hot, 2)
	assert.Equal(t, "c1", hot[0].ChannelID)
	assert.Equal(t, 3, hot[0].Signals)
	assert.Equal(t, "c2", hot[1].ChannelID)
	assert.Equal(t, 1, hot[1].Signals)

	// 阈值过滤
	hot = HotChannels(records, now, 2)
	require.Len(t, hot, 1)
	assert.Equal(t, "c1", hot[0].ChannelID)
}

func TestChannelKeyFallsBackToName(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	records := []models.Signal{
		closedSignal("t1", "", "Orphan", models.OutcomeProfit, 3, now),
		closedSignal("t2", "", "Orphan", models.OutcomeProfit, 4, now),
	}

	ranked := RankChannels(records)
	require.Len(t, ranked, 1)
	assert.Equal(t, "Orphan", ranked[0].ChannelName)
	assert.Equal(t, 7.0, ranked[0].TotalPnl)
}
