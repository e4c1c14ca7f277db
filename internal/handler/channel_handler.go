package handler

import (
	"net/http"

	"github.com/dushixiang/lumen/internal/service"
	"github.com/dushixiang/lumen/internal/xe"
	"github.com/go-orz/orz"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// ChannelHandler 频道配置处理器
type ChannelHandler struct {
	logger         *zap.Logger
	channelService *service.ChannelService
}

// NewChannelHandler 创建频道配置处理器
func NewChannelHandler(logger *zap.Logger, channelService *service.ChannelService) *ChannelHandler {
	return &ChannelHandler{
		logger:         logger,
		channelService: channelService,
	}
}

// List 获取全部频道
// GET /api/channels
func (h *ChannelHandler) List(c echo.Context) error {
	channels, err := h.channelService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, channels)
}

// Get 获取单个频道
// GET /api/channels/:id
func (h *ChannelHandler) Get(c echo.Context) error {
	channel, err := h.channelService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, channel)
}

// Create 创建频道
// POST /api/channels
func (h *ChannelHandler) Create(c echo.Context) error {
	var req service.ChannelRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	channel, err := h.channelService.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, channel)
}

// Update 更新频道
// PUT /api/channels/:id
func (h *ChannelHandler) Update(c echo.Context) error {
	var req service.ChannelRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}

	channel, err := h.channelService.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, channel)
}

// Toggle 启停频道
// PATCH /api/channels/:id/toggle
func (h *ChannelHandler) Toggle(c echo.Context) error {
	active := cast.ToBool(c.QueryParam("active"))
	if err := h.channelService.Toggle(c.Request().Context(), c.Param("id"), active); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orz.Map{"message": "ok"})
}

// Delete 删除频道
// DELETE /api/channels/:id
func (h *ChannelHandler) Delete(c echo.Context) error {
	if err := h.channelService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orz.Map{"message": "ok"})
}

// RegisterRoutes 注册路由
func (h *ChannelHandler) RegisterRoutes(g *echo.Group) {
	channels := g.Group("/channels")

	channels.GET("", h.List)
	channels.POST("", h.Create)
	channels.GET("/:id", h.Get)
	channels.PUT("/:id", h.Update)
	channels.PATCH("/:id/toggle", h.Toggle)
	channels.DELETE("/:id", h.Delete)
}
