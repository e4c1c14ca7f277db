package service

import (
	"context"
	"sync"
	"time"

	"github.com/dushixiang/lumen/internal/analytics"
	"github.com/dushixiang/lumen/internal/config"
	"github.com/dushixiang/lumen/internal/feed"
	"github.com/dushixiang/lumen/internal/models"
	"github.com/dushixiang/lumen/internal/repo"
	"github.com/go-orz/orz"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DashboardService 仪表盘数据投影。总览按账本版本号缓存，
// 带筛选的查询每次基于快照现算。
type DashboardService struct {
	logger *zap.Logger
	conf   config.DashboardConf

	*orz.Service
	channelRepo *repo.ChannelRepo

	ledgerService *LedgerService

	cacheMu   sync.Mutex
	cached    *Overview
	cachedGen uint64
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(db *gorm.DB, conf *config.Config, logger *zap.Logger,
	ledgerService *LedgerService) *DashboardService {
	return &DashboardService{
		logger:        logger,
		conf:          conf.Dashboard,
		Service:       orz.NewService(db),
		channelRepo:   repo.NewChannelRepo(db),
		ledgerService: ledgerService,
	}
}

// Overview 仪表盘总览
type Overview struct {
	Summary    analytics.Summary              `json:"summary"`
	Top        []analytics.ChannelPerformance `json:"top_channels"`
	Bottom     []analytics.ChannelPerformance `json:"bottom_channels"`
	Hot        []analytics.HotChannel         `json:"hot_channels"`
	FeedStatus feed.Status                    `json:"feed_status"`
	UpdatedAt  time.Time                      `json:"updated_at"`
}

// GetOverview 获取总览。账本没有变化时直接返回缓存，
// 避免每次请求都全量扫描账本。
func (s *DashboardService) GetOverview(ctx context.Context) *Overview {
	gen := s.ledgerService.Generation()

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.cached != nil && s.cachedGen == gen {
		// 连接状态不入缓存键，实时读取；返回副本，
		// 已经交出去的快照不再被后续请求改写
		ov := *s.cached
		ov.FeedStatus = s.ledgerService.FeedStatus()
		return &ov
	}

	records := s.ledgerService.Snapshot()
	ranked := analytics.RankChannels(records)

	s.cached = &Overview{
		Summary:    analytics.Summarize(records),
		Top:        analytics.TopN(ranked, s.conf.TopChannels),
		Bottom:     analytics.BottomN(ranked, s.conf.TopChannels),
		Hot:        analytics.HotChannels(records, time.Now(), s.conf.HotMinSignals),
		FeedStatus: s.ledgerService.FeedStatus(),
		UpdatedAt:  time.Now(),
	}
	s.cachedGen = gen
	ov := *s.cached
	return &ov
}

// Leaderboard 按时间范围的频道排行（范围按平仓时间裁剪），n>0 时截断到前n名
func (s *DashboardService) Leaderboard(window analytics.Window, criteria analytics.Criteria, n int) []analytics.ChannelPerformance {
	records := s.project(window, criteria, analytics.ByCloseTime)
	ranked := analytics.RankChannels(records)
	if n > 0 {
		ranked = analytics.TopN(ranked, n)
	}
	return ranked
}

// HotChannels 近24小时信号热度榜，与展示用的时间范围无关
func (s *DashboardService) HotChannels() []analytics.HotChannel {
	return analytics.HotChannels(s.ledgerService.Snapshot(), time.Now(), s.conf.HotMinSignals)
}

// Cumulative 各频道累计盈亏曲线
func (s *DashboardService) Cumulative(window analytics.Window, criteria analytics.Criteria) []analytics.ChannelSeries {
	records := s.project(window, criteria, analytics.ByCloseTime)
	return analytics.CumulativeByChannel(records)
}

// Outcomes 各频道结果分布
func (s *DashboardService) Outcomes(window analytics.Window, criteria analytics.Criteria) []analytics.OutcomeDistribution {
	records := s.project(window, criteria, analytics.BySignalTime)
	return analytics.OutcomeDistributions(records)
}

// RollingWinRate 滚动胜率曲线
func (s *DashboardService) RollingWinRate(window analytics.Window, criteria analytics.Criteria) []analytics.RatePoint {
	records := s.project(window, criteria, analytics.ByCloseTime)
	return analytics.RollingWinRate(records, s.conf.RollingWindow)
}

// Trades 交易明细，按筛选条件过滤后截断到行数上限
func (s *DashboardService) Trades(window analytics.Window, criteria analytics.Criteria) []models.Signal {
	records := s.project(window, criteria, analytics.BySignalTime)
	if len(records) > s.conf.MaxTradeRows {
		records = records[:s.conf.MaxTradeRows]
	}
	return records
}

// Channels 可筛选的频道列表，包含配置已删除但仍有历史交易的频道
func (s *DashboardService) Channels(ctx context.Context) ([]models.ChannelRef, error) {
	configured, err := s.channelRepo.FindAllOrderByName(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.ChannelRefs(s.ledgerService.Snapshot(), configured), nil
}

// FeedState 数据源状态
type FeedState struct {
	Status     feed.Status `json:"status"`
	Records    int         `json:"records"`
	Generation uint64      `json:"generation"`
}

// FeedState 数据源连接与账本状态
func (s *DashboardService) FeedState() FeedState {
	return FeedState{
		Status:     s.ledgerService.FeedStatus(),
		Records:    len(s.ledgerService.Snapshot()),
		Generation: s.ledgerService.Generation(),
	}
}

func (s *DashboardService) project(window analytics.Window, criteria analytics.Criteria, at analytics.TimeField) []models.Signal {
	records := analytics.Apply(s.ledgerService.Snapshot(), criteria)
	return analytics.Clip(records, window, at, time.Now())
}
