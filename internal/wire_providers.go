package internal

import (
	"net/http"
	"time"

	"github.com/dushixiang/lumen/internal/config"
	"github.com/dushixiang/lumen/internal/feed"
	"github.com/dushixiang/lumen/internal/service"
	"github.com/dushixiang/lumen/internal/telegram"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const telegramHTTPTimeout = 10 * time.Second

// provideAuthService 认证服务
func provideAuthService(logger *zap.Logger, db *gorm.DB, conf *config.Config) *service.AuthService {
	return service.NewAuthService(logger, db, conf.Auth.JWTSecret)
}

// provideFeed 上游变更通知订阅
func provideFeed(conf *config.Config, logger *zap.Logger) feed.Feed {
	return feed.NewWebsocketFeed(conf.Feed.Endpoint, logger)
}

// provideTelegram 通知机器人，未启用时返回 nil
func provideTelegram(logger *zap.Logger, conf *config.Config) *telegram.Telegram {
	if !conf.Telegram.Enabled {
		return nil
	}

	httpClient := &http.Client{Timeout: telegramHTTPTimeout}

	tg, err := telegram.NewTelegram(logger, telegram.Settings{
		Token:  conf.Telegram.Token,
		Client: httpClient,
	})
	if err != nil {
		logger.Error("failed to init telegram", zap.Error(err))
		return nil
	}

	return tg
}
