package server

import (
	"errors"
	"net/http"

	"github.com/ceyewan/dworld/world"
	"github.com/ceyewan/genesis/clog"
	"github.com/gin-gonic/gin"
)

// Handler HTTP 业务处理器。薄封装：解析请求、调用 world、映射错误。
type Handler struct {
	world   *world.World
	logger  clog.Logger
	baseURL string
}

// NewHandler 创建处理器
func NewHandler(w *world.World, baseURL string, logger clog.Logger) *Handler {
	return &Handler{
		world:   w,
		logger:  logger.WithNamespace("handler"),
		baseURL: baseURL,
	}
}

// fail 把 world 错误分类映射为 HTTP 状态码。
// 对外只有状态码加单字段错误消息，载荷里没有独立的结构化错误码。
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, world.ErrRoomNotFound),
		errors.Is(err, world.ErrPlayerNotFound),
		errors.Is(err, world.ErrMessageNotFound),
		errors.Is(err, world.ErrFeedItemNotFound),
		errors.Is(err, world.ErrMediaNotFound):
		status = http.StatusNotFound
	case errors.Is(err, world.ErrBadRequest),
		errors.Is(err, world.ErrInsufficientQuantity):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// badRequest 绑定失败的统一出口
func (h *Handler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
