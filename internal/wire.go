//go:build wireinject
// +build wireinject

package internal

import (
	"github.com/dushixiang/lumen/internal/config"
	"github.com/dushixiang/lumen/internal/handler"
	"github.com/dushixiang/lumen/internal/service"
	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	handlerSet = wire.NewSet(
		handler.NewAuthHandler,
		handler.NewSetupHandler,
		handler.NewChannelHandler,
		handler.NewDashboardHandler,
		handler.NewActivityHandler,
		handler.NewBacktestHandler,
	)

	serviceSet = wire.NewSet(
		provideAuthService,
		provideFeed,
		service.NewActivityService,
		service.NewNotifyService,
		service.NewChannelService,
		service.NewLedgerService,
		service.NewDashboardService,
		service.NewBacktestService,
	)
)

// InitializeApp 初始化应用
func InitializeApp(logger *zap.Logger, db *gorm.DB, conf *config.Config) (*AppComponents, error) {
	wire.Build(
		handlerSet,
		serviceSet,
		provideTelegram,
		wire.Struct(new(AppComponents), "*"),
	)
	return nil, nil
}
