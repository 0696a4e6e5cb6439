package handler

import (
	"log"
	"strconv"
	"strings"
	"time"

	"walletsystem/pkg/errcode"
	"walletsystem/pkg/idgen"
	"walletsystem/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	userIDHeader    = "User-Id"
	requestIDHeader = "X-Request-ID"
	ctxKeyUserID    = "authUserID"
)

// AuthMiddleware 认证中间件
//
// 身份校验本身由外部网关完成，这里信任 User-Id 头里的已验证用户ID：
// 缺失 -> AUTH_REQUIRED，不是正整数 -> INVALID_USER_ID
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(userIDHeader))
		if raw == "" {
			response.BizError(c, errcode.New(errcode.AuthRequired))
			c.Abort()
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			response.BizError(c, errcode.New(errcode.InvalidUserID))
			c.Abort()
			return
		}

		c.Set(ctxKeyUserID, userID)
		c.Next()
	}
}

// authUserID 取认证中间件放入的用户ID
func authUserID(c *gin.Context) int64 {
	return c.GetInt64(ctxKeyUserID)
}

// RequestIDMiddleware 请求追踪ID中间件
// 客户端没带 X-Request-ID 就生成一个，响应头原样返回
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = idgen.GenerateRequestID()
		}
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 日志中间件
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		// 处理请求
		c.Next()

		// 记录日志
		latency := time.Since(start)
		status := c.Writer.Status()

		if query != "" {
			path = path + "?" + query
		}

		log.Printf("[HTTP] %d | %13v | %15s | %-7s %s",
			status,
			latency,
			c.ClientIP(),
			c.Request.Method,
			path,
		)
	}
}

// RecoveryMiddleware 恢复中间件，防止 panic 导致服务崩溃
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[PANIC] %v", err)
				c.AbortWithStatusJSON(500, gin.H{
					"code":    500,
					"message": "服务器内部错误",
				})
			}
		}()
		c.Next()
	}
}

// CORSMiddleware 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, User-Id, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
