package handler

import (
	"context"
	"crypto/subtle"
	"math"
	"strconv"
	"time"

	"resume-extractor/internal/logger"
	"resume-extractor/internal/ratelimit"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"
	"github.com/hertz-contrib/keyauth"
)

const (
	// RequestIDHeader 请求ID的响应头，客户端传入时沿用
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey 请求ID在 RequestContext 中的键
	RequestIDKey = "request_id"
)

// RequestID 为每个请求分配ID并写回响应头
func RequestID() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		requestID := string(c.GetHeader(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Response.Header.Set(RequestIDHeader, requestID)
		c.Next(ctx)
	}
}

// AccessLog 请求日志
func AccessLog() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)
		logger.Info().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", string(c.Method())).
			Str("path", string(c.Path())).
			Int("status", c.Response.StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("HTTP请求")
	}
}

// APIKeyAuth 校验 Authorization: Bearer <key>
func APIKeyAuth(apiKey string) app.HandlerFunc {
	return keyauth.New(
		keyauth.WithKeyLookUp("header:"+consts.HeaderAuthorization, "Bearer"),
		keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, key string) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
				return true, nil
			}
			return false, keyauth.ErrMissingOrMalformedAPIKey
		}),
		keyauth.WithErrorHandler(func(ctx context.Context, c *app.RequestContext, err error) {
			c.AbortWithStatusJSON(consts.StatusUnauthorized, ErrorResponse{Error: "API Key 无效或缺失"})
		}),
	)
}

// RateLimit 令牌耗尽时返回 429 并带上 Retry-After
func RateLimit(limiter *ratelimit.TokenBucket) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if limiter.Allow() {
			c.Next(ctx)
			return
		}
		retryAfter := int(math.Ceil(limiter.RetryAfter().Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(consts.StatusTooManyRequests, ErrorResponse{Error: "请求过于频繁，请稍后重试"})
	}
}
