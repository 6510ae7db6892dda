package http

import (
	"github.com/gin-gonic/gin"

	"compress-bot/ddd/domain/service"
	"compress-bot/ddd/infrastructure/queue"
	"compress-bot/ddd/infrastructure/worker"
	"compress-bot/pkg/middleware"
)

// Router 路由配置
type Router struct {
	jobWorker *worker.JobWorker
	jobQueue  queue.JobQueue
	settings  service.SettingsService
}

// NewRouter 创建路由配置
func NewRouter(jobWorker *worker.JobWorker, jobQueue queue.JobQueue, settings service.SettingsService) *Router {
	return &Router{
		jobWorker: jobWorker,
		jobQueue:  jobQueue,
		settings:  settings,
	}
}

// SetupRoutes 设置路由
func (r *Router) SetupRoutes(engine *gin.Engine) {
	statusController := NewStatusController(r.jobWorker, r.jobQueue, r.settings)

	v1 := engine.Group("/api/v1")
	{
		v1.GET("/status", statusController.GetStatus)
	}

	// 健康检查路由
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "compress-bot",
			"version": "1.0.0",
		})
	})
}

// SetupMiddleware 设置中间件
func (r *Router) SetupMiddleware(engine *gin.Engine) {
	engine.Use(middleware.RequestContextMiddleware())

	// 请求日志中间件
	engine.Use(gin.Logger())

	// 恢复中间件
	engine.Use(gin.Recovery())
}
