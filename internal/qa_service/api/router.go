package api

import (
	"querywise/pkg/httpmiddleware"
	"querywise/pkg/logger"
	"querywise/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
)

// AnswerRoute 是 Azure Functions 自定义处理程序转发问答请求的路径，
// 与 querywisemanagerhttp/function.json 中的函数名一致。
const AnswerRoute = "/api/querywisemanagerhttp"

// HealthRoute 是健康检查路径。
const HealthRoute = "/api/health"

// SetupRouter 配置和返回一个 Gin 引擎实例。limiter 为 nil 时不启用限流。
func SetupRouter(h *Handler, base *logger.Logger, limiter ratelimiter.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(
		httpmiddleware.RequestID(base),
		httpmiddleware.AccessLog(base),
		gin.CustomRecovery(h.recovered),
	)

	r.GET(HealthRoute, h.Health)

	answer := r.Group(AnswerRoute)
	if limiter != nil {
		answer.Use(httpmiddleware.RateLimit(limiter, base))
	}
	answer.POST("", h.Answer)

	return r
}
