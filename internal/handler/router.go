package handler

import (
	"walletsystem/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// SetupRouter 配置路由
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	// 设置 gin 为发布模式（减少日志输出）
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// 注册中间件
	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(RequestIDMiddleware())
	r.Use(CORSMiddleware())

	// 创建处理器
	h := NewHandler(db, rdb, cfg)

	// API 路由组，全部需要认证
	api := r.Group("/api/v1")
	api.Use(AuthMiddleware())
	{
		wallets := api.Group("/wallets")
		{
			wallets.POST("", h.CreateWallet)
			wallets.GET("/:wallet_id", h.GetWallet)
			wallets.POST("/:wallet_id/deposit", h.Deposit)
			wallets.POST("/:wallet_id/withdraw", h.Withdraw)
			wallets.GET("/:wallet_id/transactions", h.ListTransactions)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
