package service

import (
	"fmt"

	"github.com/dushixiang/lumen/internal/config"
	"github.com/dushixiang/lumen/internal/telegram"
	"github.com/valyala/fasttemplate"
	"go.uber.org/zap"
)

const (
	channelCreatedTemplate  = "📡 新频道接入：*{{name}}*"
	channelDeletedTemplate  = "🗑 频道已移除：*{{name}}*"
	channelToggledTemplate  = "{{icon}} 频道 *{{name}}* 已{{action}}"
	channelRenamedTemplate  = "✏️ 频道改名：*{{old}}* → *{{new}}*"
	settingsChangedTemplate = "⚙️ 频道 *{{name}}* 配置已更新（{{count}}项变更）"
)

// NotifyService 配置变更的Telegram通知
type NotifyService struct {
	logger *zap.Logger
	conf   config.TelegramConf
	tg     *telegram.Telegram
}

// NewNotifyService 创建通知服务，tg 为 nil 时所有通知静默跳过
func NewNotifyService(logger *zap.Logger, conf *config.Config, tg *telegram.Telegram) *NotifyService {
	return &NotifyService{
		logger: logger,
		conf:   conf.Telegram,
		tg:     tg,
	}
}

// ChannelCreated 频道创建通知
func (s *NotifyService) ChannelCreated(name string) {
	s.send(channelCreatedTemplate, map[string]interface{}{
		"name": telegram.EscapeMarkdown(name),
	})
}

// ChannelDeleted 频道删除通知
func (s *NotifyService) ChannelDeleted(name string) {
	s.send(channelDeletedTemplate, map[string]interface{}{
		"name": telegram.EscapeMarkdown(name),
	})
}

// ChannelToggled 频道启停通知
func (s *NotifyService) ChannelToggled(name string, active bool) {
	icon, action := "▶️", "启用"
	if !active {
		icon, action = "⏸", "停用"
	}
	s.send(channelToggledTemplate, map[string]interface{}{
		"icon":   icon,
		"name":   telegram.EscapeMarkdown(name),
		"action": action,
	})
}

// ChannelRenamed 频道改名通知
func (s *NotifyService) ChannelRenamed(oldName, newName string) {
	s.send(channelRenamedTemplate, map[string]interface{}{
		"old": telegram.EscapeMarkdown(oldName),
		"new": telegram.EscapeMarkdown(newName),
	})
}

// SettingsChanged 频道配置变更通知
func (s *NotifyService) SettingsChanged(name string, changed int) {
	s.send(settingsChangedTemplate, map[string]interface{}{
		"name":  telegram.EscapeMarkdown(name),
		"count": fmt.Sprintf("%d", changed),
	})
}

func (s *NotifyService) send(template string, values map[string]interface{}) {
	if s.tg == nil || !s.conf.Enabled {
		return
	}
	msg := fasttemplate.New(template, "{{", "}}").ExecuteString(values)
	if err := s.tg.Notify(s.conf.ChatID, msg); err != nil {
		s.logger.Warn("telegram notify failed", zap.Error(err))
	}
}
