package service

import (
	"bytes"
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/dushixiang/lumen/internal/config"
	"github.com/dushixiang/lumen/internal/feed"
	"github.com/dushixiang/lumen/internal/ledger"
	"github.com/dushixiang/lumen/internal/models"
	"github.com/dushixiang/lumen/internal/repo"
	"github.com/go-orz/orz"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LedgerService 维护内存账本：启动时从数据库批量装载，
// 之后由数据源推送增量维护，定时全量对账兜底推送丢失。
type LedgerService struct {
	logger *zap.Logger
	conf   config.FeedConf

	*orz.Service
	signalRepo *repo.SignalRepo

	store *ledger.Store
	feed  feed.Feed
	cron  *cron.Cron

	activityService *ActivityService
	notifyService   *NotifyService

	// 账本版本号，每次变更递增，读方用它判断缓存是否过期
	generation atomic.Uint64
}

// NewLedgerService 创建账本服务
func NewLedgerService(db *gorm.DB, conf *config.Config, logger *zap.Logger, f feed.Feed,
	activityService *ActivityService, notifyService *NotifyService) *LedgerService {
	return &LedgerService{
		logger:          logger,
		conf:            conf.Feed,
		Service:         orz.NewService(db),
		signalRepo:      repo.NewSignalRepo(db),
		store:           ledger.NewStore(),
		feed:            f,
		activityService: activityService,
		notifyService:   notifyService,
	}
}

// Start 装载账本并启动推送消费与定时对账。
// 装载失败直接返回错误，没有账本的仪表盘没有意义。
func (s *LedgerService) Start(ctx context.Context) error {
	if err := s.Resync(ctx); err != nil {
		return err
	}

	go s.feed.Run(ctx)
	go s.consume(ctx)

	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.conf.ResyncCron, func() {
		if err := s.Resync(context.Background()); err != nil {
			s.logger.Error("ledger resync failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()

	s.logger.Info("ledger service started",
		zap.Int("records", s.store.Len()),
		zap.String("resync_cron", s.conf.ResyncCron))
	return nil
}

// Stop 停止定时对账，推送消费随 ctx 取消退出
func (s *LedgerService) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Resync 从数据库全量重建账本。分页拉取直到没有更多数据
// 或达到装载上限，上限保护的是内存，不是正确性。
func (s *LedgerService) Resync(ctx context.Context) error {
	var all []models.Signal
	for offset := 0; offset < s.conf.MaxRecords; offset += s.conf.PageSize {
		limit := s.conf.PageSize
		if remaining := s.conf.MaxRecords - offset; remaining < limit {
			limit = remaining
		}
		page, err := s.signalRepo.FindPageOrderBySignalTime(ctx, offset, limit)
		if err != nil {
			return err
		}
		all = append(all, page...)
		if len(page) < limit {
			break
		}
	}

	s.store.Reset(all)
	s.generation.Add(1)
	s.logger.Info("ledger resynced", zap.Int("records", s.store.Len()))
	return nil
}

// consume 单协程消费推送，保证事件按到达顺序应用
func (s *LedgerService) consume(ctx context.Context) {
	for n := range s.feed.Notifications() {
		switch n.Type {
		case feed.TypeTradeUpdate:
			s.handleTradeUpdate(ctx, n)
		case feed.TypeChannelUpdate:
			s.handleChannelUpdate(ctx, n)
		}
	}
}

func (s *LedgerService) handleTradeUpdate(ctx context.Context, n feed.Notification) {
	ev, err := ledger.Normalize(n.Operation, n.Data, n.Previous)
	if err != nil {
		s.logger.Warn("malformed trade notification dropped",
			zap.String("operation", n.Operation),
			zap.Error(err))
		return
	}

	if !s.store.Apply(ev) {
		return
	}
	s.generation.Add(1)

	// 账本先行，落库失败不回滚内存状态，下一轮对账会纠正
	switch ev.Kind {
	case ledger.KindInsert, ledger.KindUpdate:
		if err := s.signalRepo.Upsert(ctx, ev.Record); err != nil {
			s.logger.Error("signal persist failed",
				zap.String("id", ev.ID), zap.Error(err))
		}
	case ledger.KindDelete:
		if err := s.signalRepo.DeleteById(ctx, ev.ID); err != nil {
			s.logger.Error("signal delete failed",
				zap.String("id", ev.ID), zap.Error(err))
		}
	}
}

// handleChannelUpdate 把上游机器人的频道配置变更转成审计事件与通知。
// 配置本身由上游直接写库，这里只负责记录与广播。
func (s *LedgerService) handleChannelUpdate(ctx context.Context, n feed.Notification) {
	defer s.generation.Add(1)

	data := decodeLoose(n.Data)
	previous := decodeLoose(n.Previous)
	name := cast.ToString(data["channel_name"])
	if name == "" {
		name = cast.ToString(previous["channel_name"])
	}

	switch n.Operation {
	case "INSERT":
		s.activityService.Record(ctx, models.EventChannelCreated, name, data)
		s.notifyService.ChannelCreated(name)
	case "DELETE":
		payload := previous
		if len(payload) == 0 {
			payload = data
		}
		s.activityService.Record(ctx, models.EventChannelDeleted, name, payload)
		s.notifyService.ChannelDeleted(name)
	case "UPDATE":
		s.recordChannelDiff(ctx, name, previous, data)
	default:
		s.logger.Warn("unknown channel notification operation",
			zap.String("operation", n.Operation))
	}
}

// recordChannelDiff 对比变更前后的配置，按字段类型拆分事件
func (s *LedgerService) recordChannelDiff(ctx context.Context, name string, previous, data map[string]any) {
	oldName := cast.ToString(previous["channel_name"])
	newName := cast.ToString(data["channel_name"])
	if oldName != "" && newName != "" && oldName != newName {
		s.activityService.Record(ctx, models.EventTelegramNameChanged, newName, map[string]any{
			"old_name": oldName,
			"new_name": newName,
		})
		s.notifyService.ChannelRenamed(oldName, newName)
	}

	if oldActive, newActive := cast.ToBool(previous["is_active"]), cast.ToBool(data["is_active"]); oldActive != newActive {
		eventType := models.EventChannelEnabled
		if !newActive {
			eventType = models.EventChannelDisabled
		}
		s.activityService.Record(ctx, eventType, name, nil)
		s.notifyService.ChannelToggled(name, newActive)
	}

	changes := make(map[string]any)
	for key, newValue := range data {
		switch key {
		case "channel_name", "is_active", "updated_at", "created_at":
			continue
		}
		oldValue, ok := previous[key]
		if !ok || looseEqual(oldValue, newValue) {
			continue
		}
		changes[key] = map[string]any{"old": oldValue, "new": newValue}
	}
	if len(changes) > 0 {
		s.activityService.Record(ctx, models.EventSettingsUpdated, name, changes)
		s.notifyService.SettingsChanged(name, len(changes))
	}
}

func decodeLoose(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func looseEqual(a, b any) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

// Snapshot 账本快照，最新插入在前
func (s *LedgerService) Snapshot() []models.Signal {
	return s.store.Snapshot()
}

// Generation 当前账本版本号
func (s *LedgerService) Generation() uint64 {
	return s.generation.Load()
}

// FeedStatus 数据源连接状态
func (s *LedgerService) FeedStatus() feed.Status {
	return s.feed.Status()
}
