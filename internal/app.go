package internal

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dushixiang/lumen/internal/config"
	"github.com/dushixiang/lumen/internal/handler"
	lumenMiddleware "github.com/dushixiang/lumen/internal/middleware"
	"github.com/dushixiang/lumen/internal/models"
	"github.com/dushixiang/lumen/internal/service"
	"github.com/dushixiang/lumen/internal/telegram"
	"github.com/dushixiang/lumen/pkg/nostd"
	"github.com/dushixiang/lumen/web"
	"github.com/go-orz/orz"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func Run(configPath string) error {
	app := NewLumenApp()

	framework, err := orz.NewFramework(
		orz.WithConfig(configPath),
		orz.WithLoggerFromConfig(),
		orz.WithDatabase(),
		orz.WithHTTP(),
		orz.WithApplication(app),
	)
	if err != nil {
		return err
	}

	return framework.Run()
}

func NewLumenApp() orz.Application {
	return &LumenApp{}
}

var _ orz.Application = (*LumenApp)(nil)

type AppComponents struct {
	AuthHandler      *handler.AuthHandler
	SetupHandler     *handler.SetupHandler
	ChannelHandler   *handler.ChannelHandler
	DashboardHandler *handler.DashboardHandler
	ActivityHandler  *handler.ActivityHandler
	BacktestHandler  *handler.BacktestHandler

	AuthService     *service.AuthService
	LedgerService   *service.LedgerService
	ActivityService *service.ActivityService

	Telegram *telegram.Telegram
}

type LumenApp struct {
	components *AppComponents
	conf       *config.Config
	cron       *cron.Cron
}

// GetComponents 获取应用组件
func (r *LumenApp) GetComponents() *AppComponents {
	return r.components
}

func (r *LumenApp) Configure(app *orz.App) error {
	logger := app.Logger()
	e := app.GetEcho()
	db := app.GetDatabase()

	var conf config.Config
	err := app.GetConfig().App.Unmarshal(&conf)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %v", err)
	}
	conf.Normalize()

	components, err := InitializeApp(logger, db, &conf)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %v", err)
	}
	r.components = components
	r.conf = &conf

	if err := db.AutoMigrate(
		models.Signal{}, models.Channel{}, models.ActivityEvent{}, models.AdminUser{},
	); err != nil {
		logger.Fatal("database auto migrate failed", zap.Error(err))
	}

	if err := r.Init(logger); err != nil {
		logger.Fatal("app init failed", zap.Error(err))
	}

	e.HidePort = true
	e.HideBanner = true

	e.Use(middleware.Gzip())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		Skipper:      middleware.DefaultSkipper,
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			sugar := logger.Sugar()
			sugar.Error(fmt.Sprintf("[PANIC RECOVER] %v %s\n", err, stack))
			return err
		},
	}))
	e.Use(WithErrorHandler(logger))
	customValidator := nostd.CustomValidator{Validator: validator.New()}
	if err := customValidator.TransInit(); err != nil {
		logger.Sugar().Fatal("failed to init custom validator", zap.Error(err))
	}
	e.Validator = &customValidator

	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().RequestURI
			if strings.HasPrefix(path, "/api") {
				return true
			}
			return false
		},
		Root:       "",
		Index:      "index.html",
		HTML5:      true,
		Browse:     false,
		IgnoreBase: false,
		Filesystem: http.FS(web.Assets()),
	}))

	api := e.Group("/api")
	{
		// 公开接口
		r.components.SetupHandler.RegisterRoutes(api)
		r.components.AuthHandler.RegisterRoutes(api)

		// 认证接口
		secured := api.Group("", lumenMiddleware.JWTAuth(lumenMiddleware.JWTAuthConfig{
			AuthService: r.components.AuthService,
			Logger:      logger,
		}))
		r.components.AuthHandler.RegisterProtectedRoutes(secured.Group("/auth"))
		r.components.ChannelHandler.RegisterRoutes(secured)
		r.components.DashboardHandler.RegisterRoutes(secured)
		r.components.ActivityHandler.RegisterRoutes(secured)
		r.components.BacktestHandler.RegisterRoutes(secured)
	}

	return nil
}

func (r *LumenApp) Init(logger *zap.Logger) error {
	components := r.GetComponents()
	if components == nil {
		return fmt.Errorf("components not initialized")
	}

	if err := components.LedgerService.Start(context.Background()); err != nil {
		return fmt.Errorf("ledger service start failed: %w", err)
	}

	if components.Telegram != nil {
		components.Telegram.Start()
	}

	// 每天凌晨清理过期审计事件
	r.cron = cron.New()
	_, err := r.cron.AddFunc("0 3 * * *", func() {
		if err := components.ActivityService.Cleanup(context.Background()); err != nil {
			logger.Error("activity cleanup failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	r.cron.Start()

	logger.Info("lumen dashboard started")
	return nil
}
