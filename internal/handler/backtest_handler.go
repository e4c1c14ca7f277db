package handler

import (
	"net/http"

	"github.com/dushixiang/lumen/internal/service"
	"github.com/dushixiang/lumen/internal/xe"
	"github.com/go-orz/orz"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// BacktestHandler 回测处理器
type BacktestHandler struct {
	logger          *zap.Logger
	backtestService *service.BacktestService
}

// NewBacktestHandler 创建回测处理器
func NewBacktestHandler(logger *zap.Logger, backtestService *service.BacktestService) *BacktestHandler {
	return &BacktestHandler{
		logger:          logger,
		backtestService: backtestService,
	}
}

// Run 执行回测
// POST /api/backtest/run
func (h *BacktestHandler) Run(c echo.Context) error {
	var req service.BacktestRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.backtestService.Run(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// GetStatus 查询回测执行状态
// GET /api/backtest/status
func (h *BacktestHandler) GetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, orz.Map{
		"running": h.backtestService.Running(),
	})
}

// RegisterRoutes 注册路由
func (h *BacktestHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/backtest", h.Run)
	g.GET("/backtest/status", h.GetStatus)
}
