package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dushixiang/lumen/internal/analytics"
	"github.com/dushixiang/lumen/internal/config"
	"github.com/dushixiang/lumen/internal/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDashboardService(t *testing.T) (*DashboardService, *LedgerService) {
	t.Helper()
	db := testDB(t)
	conf := &config.Config{}
	conf.Normalize()
	logger := zap.NewNop()
	activityService := NewActivityService(db, conf, logger)
	notifyService := NewNotifyService(logger, conf, nil)
	ledgerService := NewLedgerService(db, conf, logger, newStubFeed(), activityService, notifyService)
	return NewDashboardService(db, conf, logger, ledgerService), ledgerService
}

// pushClosedTrade 通过数据源通知路径写入一笔已平仓交易
func pushClosedTrade(ledgerService *LedgerService, id, channel, outcome string, pnl float64, closeAt time.Time) {
	data := fmt.Sprintf(`{
		"id": %q, "channel_id": "c-%s", "channel_name": %q,
		"status": "closed", "trade_outcome": %q, "profit_loss": %v,
		"signal_time": %q, "close_time": %q
	}`, id, channel, channel, outcome, pnl,
		closeAt.Add(-time.Hour).Format(time.RFC3339), closeAt.Format(time.RFC3339))
	ledgerService.handleTradeUpdate(context.Background(), feed.Notification{
		Type:      feed.TypeTradeUpdate,
		Operation: "INSERT",
		Data:      []byte(data),
	})
}

func TestDashboardOverviewCachedUntilLedgerChanges(t *testing.T) {
	s, ledgerService := newDashboardService(t)
	ctx := context.Background()
	now := time.Now().Add(-time.Hour)
	pushClosedTrade(ledgerService, "t1", "Alpha", "profit", 10, now)

	first := s.GetOverview(ctx)
	second := s.GetOverview(ctx)
	// 账本没变时命中缓存，聚合结果（含计算时间戳）原样返回
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)
	assert.Equal(t, 1, first.Summary.TotalSignals)

	pushClosedTrade(ledgerService, "t2", "Alpha", "loss", -4, now)

	third := s.GetOverview(ctx)
	assert.Equal(t, 2, third.Summary.TotalSignals)
	assert.InDelta(t, 6, third.Summary.NetProfit, 1e-9)
}

func TestDashboardOverviewSnapshotNotMutatedByLaterReads(t *testing.T) {
	s, ledgerService := newDashboardService(t)
	ctx := context.Background()
	pushClosedTrade(ledgerService, "t1", "Alpha", "profit", 10, time.Now().Add(-time.Hour))

	first := s.GetOverview(ctx)

	// 交出去的快照与后续缓存命中互不影响，并发读写不冲突
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_, _ = json.Marshal(first)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			s.GetOverview(ctx)
		}
	}()
	wg.Wait()

	assert.Equal(t, feed.StatusConnected, first.FeedStatus)
}

func TestDashboardLeaderboardTruncatesToN(t *testing.T) {
	s, ledgerService := newDashboardService(t)
	now := time.Now().Add(-time.Hour)
	pushClosedTrade(ledgerService, "t1", "Alpha", "profit", 10, now)
	pushClosedTrade(ledgerService, "t2", "Beta", "profit", 5, now)
	pushClosedTrade(ledgerService, "t3", "Gamma", "loss", -3, now)

	ranked := s.Leaderboard(analytics.WindowAll, analytics.Criteria{}, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Alpha", ranked[0].ChannelName)
	assert.Equal(t, "Beta", ranked[1].ChannelName)

	// n<=0 不截断
	assert.Len(t, s.Leaderboard(analytics.WindowAll, analytics.Criteria{}, 0), 3)
}

func TestDashboardLeaderboardAppliesCriteria(t *testing.T) {
	s, ledgerService := newDashboardService(t)
	now := time.Now().Add(-time.Hour)
	pushClosedTrade(ledgerService, "t1", "Alpha", "profit", 10, now)
	pushClosedTrade(ledgerService, "t2", "Beta", "loss", -3, now)

	ranked := s.Leaderboard(analytics.WindowAll, analytics.Criteria{ChannelName: "Beta"}, 0)
	require.Len(t, ranked, 1)
	assert.Equal(t, "Beta", ranked[0].ChannelName)
}

func TestDashboardTradesRespectsRowCap(t *testing.T) {
	s, ledgerService := newDashboardService(t)
	s.conf.MaxTradeRows = 2
	now := time.Now().Add(-time.Hour)
	pushClosedTrade(ledgerService, "t1", "Alpha", "profit", 10, now)
	pushClosedTrade(ledgerService, "t2", "Alpha", "loss", -4, now)
	pushClosedTrade(ledgerService, "t3", "Alpha", "profit", 6, now)

	trades := s.Trades(analytics.WindowAll, analytics.Criteria{})
	assert.Len(t, trades, 2)
}
