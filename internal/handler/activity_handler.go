package handler

import (
	"net/http"

	"github.com/dushixiang/lumen/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ActivityHandler 审计事件处理器
type ActivityHandler struct {
	logger          *zap.Logger
	activityService *service.ActivityService
}

// NewActivityHandler 创建审计事件处理器
func NewActivityHandler(logger *zap.Logger, activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		logger:          logger,
		activityService: activityService,
	}
}

// GetRecent 获取最近的审计事件
// GET /api/activity
func (h *ActivityHandler) GetRecent(c echo.Context) error {
	views, err := h.activityService.Recent(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// RegisterRoutes 注册路由
func (h *ActivityHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/activity", h.GetRecent)
}
