package router

import (
	"resume-extractor/internal/api/handler"
	"resume-extractor/internal/config"
	"resume-extractor/internal/ratelimit"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	hertzconfig "github.com/cloudwego/hertz/pkg/common/config"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
)

// NewServer 创建带 OpenTelemetry 追踪的 Hertz 服务器，请求体上限按上传大小放宽
func NewServer(cfg *config.Config, opts ...hertzconfig.Option) *server.Hertz {
	tracer, tracingCfg := hertztracing.NewServerTracer()

	base := []hertzconfig.Option{
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(int(cfg.MaxUploadBytes()) + 1<<20), // 留出 multipart 边界的余量
		tracer,
	}
	h := server.New(append(base, opts...)...)
	h.Use(hertztracing.ServerMiddleware(tracingCfg))
	return h
}

// RegisterRoutes 注册 API 路由
// 配置了 api_key 时除健康检查外都需要认证；配置了限流时只限制提取和上传
func RegisterRoutes(h *server.Hertz, resumeHandler *handler.ResumeHandler, serverCfg config.ServerConfig) {
	h.Use(handler.RequestID(), handler.AccessLog())

	api := h.Group("/api/v1")
	api.GET("/health", resumeHandler.HandleHealth)

	var auth []app.HandlerFunc
	if serverCfg.APIKey != "" {
		auth = append(auth, handler.APIKeyAuth(serverCfg.APIKey))
	}
	secured := api.Group("", auth...)

	var limited []app.HandlerFunc
	if serverCfg.RateLimitPerMinute > 0 {
		limited = append(limited, handler.RateLimit(ratelimit.NewTokenBucket(serverCfg.RateLimitPerMinute, 0)))
	}
	uploads := secured.Group("", limited...)
	uploads.POST("/resume/extract", resumeHandler.HandleExtract)
	uploads.POST("/resume/upload", resumeHandler.HandleUpload)

	secured.GET("/resume/:uuid", resumeHandler.HandleGetResult)
	secured.GET("/resume/:uuid/summary", resumeHandler.HandleSummary)
	secured.GET("/resumes/export", resumeHandler.HandleExport)
}
