package api

import (
	"context"
	"net/http"

	"querywise/internal/models"
	"querywise/internal/qa_service/service"
	"querywise/pkg/logger"

	"github.com/gin-gonic/gin"
)

const contentTypeText = "text/plain; charset=utf-8"

// Answerer 运行问答流程。
type Answerer interface {
	Answer(ctx context.Context, body []byte) (string, error)
}

// Pinger 检查上下文存储是否可达。
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler 封装了所有 API endpoint 的处理函数。
type Handler struct {
	answerer Answerer
	store    Pinger
	logger   *logger.Logger
}

// NewHandler 创建一个新的 Handler 实例。
func NewHandler(answerer Answerer, store Pinger, logger *logger.Logger) *Handler {
	return &Handler{answerer: answerer, store: store, logger: logger}
}

// Answer 处理问答请求。正文始终是纯文本：成功时为模型答案，失败时为固定的西班牙语提示。
func (h *Handler) Answer(c *gin.Context) {
	var answer string
	body, err := c.GetRawData()
	if err != nil {
		err = service.Fail(service.KindMalformedInput, err)
	} else {
		answer, err = h.answerer.Answer(c.Request.Context(), body)
	}

	status, text := service.Respond(answer, err)
	c.Data(status, contentTypeText, []byte(text))
}

// Health 在存储可达时返回 200 "ok"，否则返回 503。
func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		logger.FromContext(c.Request.Context(), h.logger).WithError(models.ErrorInfo{
			Message:    err.Error(),
			Type:       service.KindStoreUnavailable.String(),
			StatusCode: http.StatusServiceUnavailable,
		}).Warn("Health check failed")
		c.Data(http.StatusServiceUnavailable, contentTypeText, []byte("unavailable"))
		return
	}
	c.Data(http.StatusOK, contentTypeText, []byte("ok"))
}

// recovered 把处理过程中的 panic 映射为通用的 500 响应。
func (h *Handler) recovered(c *gin.Context, r interface{}) {
	logger.FromContext(c.Request.Context(), h.logger).WithError(models.ErrorInfo{
		Message:    "panic while handling request",
		Type:       service.KindInternal.String(),
		StatusCode: http.StatusInternalServerError,
	}).WithPayload(map[string]interface{}{"panic": r}).Error("Recovered from panic")
	c.Data(http.StatusInternalServerError, contentTypeText, []byte(service.MsgInternal))
	c.Abort()
}
