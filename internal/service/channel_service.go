package service

import (
	"context"
	"errors"

	"github.com/dushixiang/lumen/internal/config"
	"github.com/dushixiang/lumen/internal/models"
	"github.com/dushixiang/lumen/internal/repo"
	"github.com/dushixiang/lumen/internal/xe"
	"github.com/go-orz/orz"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChannelService 频道配置服务
type ChannelService struct {
	logger *zap.Logger
	conf   *config.Config

	*orz.Service
	channelRepo *repo.ChannelRepo

	activityService *ActivityService
	notifyService   *NotifyService
}

// NewChannelService 创建频道配置服务
func NewChannelService(db *gorm.DB, conf *config.Config, logger *zap.Logger,
	activityService *ActivityService, notifyService *NotifyService) *ChannelService {
	return &ChannelService{
		logger:          logger,
		conf:            conf,
		Service:         orz.NewService(db),
		channelRepo:     repo.NewChannelRepo(db),
		activityService: activityService,
		notifyService:   notifyService,
	}
}

// ChannelRequest 频道创建/更新请求
type ChannelRequest struct {
	ChannelKey        string                 `json:"channel_key" validate:"required"`
	ChannelName       string                 `json:"channel_name" validate:"required"`
	TelegramID        int64                  `json:"telegram_id"`
	IsActive          *bool                  `json:"is_active"`
	RiskPerTrade      float64                `json:"risk_per_trade"`
	RiskTolerance     float64                `json:"risk_tolerance"`
	MagicNumber       int                    `json:"magic_number"`
	MaxSlippagePoints int                    `json:"max_slippage_points"`
	FinalTPPolicy     *models.FinalTPPolicy  `json:"final_tp_policy"`
	RiskFreePolicy    *models.RiskFreePolicy `json:"riskfree_policy"`
	CancelPolicy      *models.CancelPolicy   `json:"cancel_policy"`
	Instruments       []models.Instrument    `json:"instruments"`
}

// List 获取全部频道配置
func (s *ChannelService) List(ctx context.Context) ([]models.Channel, error) {
	return s.channelRepo.FindAllOrderByName(ctx)
}

// Get 获取单个频道配置
func (s *ChannelService) Get(ctx context.Context, id string) (models.Channel, error) {
	channel, err := s.channelRepo.FindById(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return channel, xe.ErrChannelNotFound
		}
		return channel, err
	}
	return channel, nil
}

// Create 创建频道配置并记录审计事件
func (s *ChannelService) Create(ctx context.Context, req ChannelRequest) (models.Channel, error) {
	exists, err := s.channelRepo.ExistsByChannelKey(ctx, req.ChannelKey)
	if err != nil {
		return models.Channel{}, err
	}
	if exists {
		return models.Channel{}, xe.ErrChannelKeyExists
	}

	channel := models.Channel{
		ID:                ulid.Make().String(),
		ChannelKey:        req.ChannelKey,
		ChannelName:       req.ChannelName,
		TelegramID:        req.TelegramID,
		IsActive:          true,
		RiskPerTrade:      req.RiskPerTrade,
		RiskTolerance:     req.RiskTolerance,
		MagicNumber:       req.MagicNumber,
		MaxSlippagePoints: req.MaxSlippagePoints,
		Instruments:       datatypes.NewJSONSlice(req.Instruments),
	}
	if req.IsActive != nil {
		channel.IsActive = *req.IsActive
	}
	if req.FinalTPPolicy != nil {
		channel.FinalTPPolicy = datatypes.NewJSONType(*req.FinalTPPolicy)
	}
	if req.RiskFreePolicy != nil {
		channel.RiskFreePolicy = datatypes.NewJSONType(*req.RiskFreePolicy)
	}
	if req.CancelPolicy != nil {
		channel.CancelPolicy = datatypes.NewJSONType(*req.CancelPolicy)
	}

	if err := s.channelRepo.Create(ctx, &channel); err != nil {
		return models.Channel{}, err
	}

	s.activityService.Record(ctx, models.EventChannelCreated, channel.ChannelName, map[string]any{
		"channel_key":    channel.ChannelKey,
		"channel_name":   channel.ChannelName,
		"is_active":      channel.IsActive,
		"risk_per_trade": channel.RiskPerTrade,
	})
	s.notifyService.ChannelCreated(channel.ChannelName)

	s.logger.Info("channel created",
		zap.String("id", channel.ID),
		zap.String("name", channel.ChannelName))
	return channel, nil
}

// Update 更新频道配置，按字段分类记录审计事件
func (s *ChannelService) Update(ctx context.Context, id string, req ChannelRequest) (models.Channel, error) {
	channel, err := s.Get(ctx, id)
	if err != nil {
		return channel, err
	}

	settingsChanges := make(map[string]any)
	policyChanges := make(map[string]any)

	if req.ChannelName != "" && req.ChannelName != channel.ChannelName {
		oldName := channel.ChannelName
		channel.ChannelName = req.ChannelName
		s.activityService.Record(ctx, models.EventTelegramNameChanged, req.ChannelName, map[string]any{
			"old_name": oldName,
			"new_name": req.ChannelName,
		})
		s.notifyService.ChannelRenamed(oldName, req.ChannelName)
	}

	if req.TelegramID != 0 && req.TelegramID != channel.TelegramID {
		settingsChanges["telegram_id"] = changePair(channel.TelegramID, req.TelegramID)
		channel.TelegramID = req.TelegramID
	}
	if req.RiskPerTrade > 0 && req.RiskPerTrade != channel.RiskPerTrade {
		settingsChanges["risk_per_trade"] = changePair(channel.RiskPerTrade, req.RiskPerTrade)
		channel.RiskPerTrade = req.RiskPerTrade
	}
	if req.RiskTolerance > 0 && req.RiskTolerance != channel.RiskTolerance {
		settingsChanges["risk_tolerance"] = changePair(channel.RiskTolerance, req.RiskTolerance)
		channel.RiskTolerance = req.RiskTolerance
	}
	if req.MagicNumber > 0 && req.MagicNumber != channel.MagicNumber {
		settingsChanges["magic_number"] = changePair(channel.MagicNumber, req.MagicNumber)
		channel.MagicNumber = req.MagicNumber
	}
	if req.MaxSlippagePoints > 0 && req.MaxSlippagePoints != channel.MaxSlippagePoints {
		settingsChanges["max_slippage_points"] = changePair(channel.MaxSlippagePoints, req.MaxSlippagePoints)
		channel.MaxSlippagePoints = req.MaxSlippagePoints
	}
	if req.Instruments != nil {
		settingsChanges["instruments"] = changePair([]models.Instrument(channel.Instruments), req.Instruments)
		channel.Instruments = datatypes.NewJSONSlice(req.Instruments)
	}

	if req.FinalTPPolicy != nil {
		policyChanges["final_tp_policy"] = changePair(channel.FinalTPPolicy.Data(), *req.FinalTPPolicy)
		channel.FinalTPPolicy = datatypes.NewJSONType(*req.FinalTPPolicy)
	}
	if req.RiskFreePolicy != nil {
		policyChanges["riskfree_policy"] = changePair(channel.RiskFreePolicy.Data(), *req.RiskFreePolicy)
		channel.RiskFreePolicy = datatypes.NewJSONType(*req.RiskFreePolicy)
	}
	if req.CancelPolicy != nil {
		policyChanges["cancel_policy"] = changePair(channel.CancelPolicy.Data(), *req.CancelPolicy)
		channel.CancelPolicy = datatypes.NewJSONType(*req.CancelPolicy)
	}

	if err := s.channelRepo.Save(ctx, &channel); err != nil {
		return channel, err
	}

	if len(settingsChanges) > 0 {
		s.activityService.Record(ctx, models.EventSettingsUpdated, channel.ChannelName, settingsChanges)
	}
	if len(policyChanges) > 0 {
		s.activityService.Record(ctx, models.EventPolicyUpdated, channel.ChannelName, policyChanges)
	}
	if changed := len(settingsChanges) + len(policyChanges); changed > 0 {
		s.notifyService.SettingsChanged(channel.ChannelName, changed)
	}

	return channel, nil
}

// Toggle 启停频道
func (s *ChannelService) Toggle(ctx context.Context, id string, active bool) error {
	channel, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if channel.IsActive == active {
		return nil
	}

	if err := s.channelRepo.UpdateActive(ctx, id, active); err != nil {
		return err
	}

	eventType := models.EventChannelEnabled
	if !active {
		eventType = models.EventChannelDisabled
	}
	s.activityService.Record(ctx, eventType, channel.ChannelName, nil)
	s.notifyService.ChannelToggled(channel.ChannelName, active)
	return nil
}

// Delete 删除频道配置（软删除，历史交易仍可统计）
func (s *ChannelService) Delete(ctx context.Context, id string) error {
	channel, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.channelRepo.DeleteById(ctx, id); err != nil {
		return err
	}

	s.activityService.Record(ctx, models.EventChannelDeleted, channel.ChannelName, map[string]any{
		"channel_key":  channel.ChannelKey,
		"channel_name": channel.ChannelName,
	})
	s.notifyService.ChannelDeleted(channel.ChannelName)

	s.logger.Info("channel deleted",
		zap.String("id", id),
		zap.String("name", channel.ChannelName))
	return nil
}

func changePair(oldValue, newValue any) map[string]any {
	return map[string]any{"old": oldValue, "new": newValue}
}
