package handler

import (
	"net/http"
	"time"

	"github.com/dushixiang/lumen/internal/analytics"
	"github.com/dushixiang/lumen/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// DashboardHandler 仪表盘处理器
type DashboardHandler struct {
	logger           *zap.Logger
	dashboardService *service.DashboardService
}

// NewDashboardHandler 创建仪表盘处理器
func NewDashboardHandler(logger *zap.Logger, dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		logger:           logger,
		dashboardService: dashboardService,
	}
}

// criteria 从查询参数组装筛选条件，时间参数用RFC3339
func criteria(c echo.Context) analytics.Criteria {
	cr := analytics.Criteria{
		ChannelName: c.QueryParam("channel"),
		OrderType:   c.QueryParam("order_type"),
		Side:        c.QueryParam("side"),
		Status:      c.QueryParam("status"),
	}
	if v := c.QueryParam("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			cr.From = &t
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			cr.To = &t
		}
	}
	return cr
}

func window(c echo.Context) analytics.Window {
	return analytics.ParseWindow(c.QueryParam("window"))
}

// GetOverview 仪表盘总览
// GET /api/dashboard/summary
func (h *DashboardHandler) GetOverview(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dashboardService.GetOverview(c.Request().Context()))
}

// GetLeaderboard 频道排行
// GET /api/dashboard/leaderboard
func (h *DashboardHandler) GetLeaderboard(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dashboardService.Leaderboard(window(c), criteria(c), cast.ToInt(c.QueryParam("n"))))
}

// GetHotChannels 近24小时热度榜
// GET /api/dashboard/hot
func (h *DashboardHandler) GetHotChannels(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dashboardService.HotChannels())
}

// GetCumulative 累计盈亏曲线
// GET /api/dashboard/cumulative
func (h *DashboardHandler) GetCumulative(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dashboardService.Cumulative(window(c), criteria(c)))
}

// GetOutcomes 结果分布
// GET /api/dashboard/outcomes
func (h *DashboardHandler) GetOutcomes(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dashboardService.Outcomes(window(c), criteria(c)))
}

// GetRollingWinRate 滚动胜率曲线
// GET /api/dashboard/rolling
func (h *DashboardHandler) GetRollingWinRate(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dashboardService.RollingWinRate(window(c), criteria(c)))
}

// GetTrades 交易明细
// GET /api/dashboard/trades
func (h *DashboardHandler) GetTrades(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dashboardService.Trades(window(c), criteria(c)))
}

// GetChannels 可筛选频道列表
// GET /api/dashboard/channels
func (h *DashboardHandler) GetChannels(c echo.Context) error {
	refs, err := h.dashboardService.Channels(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, refs)
}

// GetFeedState 数据源状态
// GET /api/dashboard/feed
func (h *DashboardHandler) GetFeedState(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dashboardService.FeedState())
}

// RegisterRoutes 注册路由
func (h *DashboardHandler) RegisterRoutes(g *echo.Group) {
	dashboard := g.Group("/dashboard")

	dashboard.GET("/summary", h.GetOverview)
	dashboard.GET("/leaderboard", h.GetLeaderboard)
	dashboard.GET("/hot", h.GetHotChannels)
	dashboard.GET("/cumulative", h.GetCumulative)
	dashboard.GET("/outcomes", h.GetOutcomes)
	dashboard.GET("/rolling", h.GetRollingWinRate)
	dashboard.GET("/trades", h.GetTrades)
	dashboard.GET("/channels", h.GetChannels)
	dashboard.GET("/feed", h.GetFeedState)
}
