package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter 配置路由
func SetupRouter(db *gorm.DB) *gin.Engine {
	// 设置 gin 为发布模式（减少日志输出）
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// 注册中间件
	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())

	h := NewHandler(db)

	// API 路由组
	api := r.Group("/api/v1")
	{
		accounts := api.Group("/accounts")
		{
			accounts.PUT("/:id", h.UpsertAccount)
			accounts.GET("", h.FindAccountByMobile)
		}

		profiles := api.Group("/profiles")
		{
			profiles.PUT("/:id", h.UpsertProfile)
			profiles.GET("", h.ListProfiles)
		}
	}

	// 健康检查（设备端联网探测也打这个接口）
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
