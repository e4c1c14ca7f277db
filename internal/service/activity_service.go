package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dushixiang/lumen/internal/activity"
	"github.com/dushixiang/lumen/internal/config"
	"github.com/dushixiang/lumen/internal/models"
	"github.com/dushixiang/lumen/internal/repo"
	"github.com/go-orz/orz"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 审计事件保留90天，更早的由定时任务清理
const activityRetention = 90 * 24 * time.Hour

// ActivityService 审计事件服务
type ActivityService struct {
	logger *zap.Logger
	conf   config.DashboardConf

	*orz.Service
	activityRepo *repo.ActivityRepo
}

// NewActivityService 创建审计事件服务
func NewActivityService(db *gorm.DB, conf *config.Config, logger *zap.Logger) *ActivityService {
	return &ActivityService{
		logger:       logger,
		conf:         conf.Dashboard,
		Service:      orz.NewService(db),
		activityRepo: repo.NewActivityRepo(db),
	}
}

// Record 记录一条审计事件，载荷序列化失败时记录空载荷而不是丢弃事件
func (s *ActivityService) Record(ctx context.Context, eventType, subject string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("activity payload marshal failed",
			zap.String("event_type", eventType), zap.Error(err))
		data = nil
	}

	ev := &models.ActivityEvent{
		ID:        ulid.Make().String(),
		EventType: eventType,
		Subject:   subject,
		Payload:   data,
	}
	if err := s.activityRepo.Create(ctx, ev); err != nil {
		s.logger.Error("activity record failed",
			zap.String("event_type", eventType), zap.Error(err))
	}
}

// ActivityView 审计事件视图，变更已渲染为字段列表
type ActivityView struct {
	ID        string                 `json:"id"`
	EventType string                 `json:"event_type"`
	Subject   string                 `json:"subject"`
	Changes   []activity.FieldChange `json:"changes"`
	CreatedAt time.Time              `json:"created_at"`
}

// Recent 获取最近的审计事件
func (s *ActivityService) Recent(ctx context.Context) ([]ActivityView, error) {
	events, err := s.activityRepo.FindRecent(ctx, s.conf.RecentActivity)
	if err != nil {
		return nil, err
	}

	views := make([]ActivityView, 0, len(events))
	for i := range events {
		ev := &events[i]
		views = append(views, ActivityView{
			ID:        ev.ID,
			EventType: ev.EventType,
			Subject:   ev.Subject,
			Changes:   activity.Changes(ev),
			CreatedAt: ev.CreatedAt,
		})
	}
	return views, nil
}

// Cleanup 清理超出保留窗口的事件
func (s *ActivityService) Cleanup(ctx context.Context) error {
	cutoff := time.Now().Add(-activityRetention)
	deleted, err := s.activityRepo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.logger.Info("activity events cleaned", zap.Int64("deleted", deleted))
	}
	return nil
}
