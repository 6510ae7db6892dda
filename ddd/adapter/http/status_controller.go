package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"compress-bot/ddd/domain/service"
	"compress-bot/ddd/infrastructure/queue"
	"compress-bot/ddd/infrastructure/worker"
)

// StatusController 运行状态控制器
type StatusController struct {
	jobWorker *worker.JobWorker
	jobQueue  queue.JobQueue
	settings  service.SettingsService
}

// NewStatusController 创建状态控制器
func NewStatusController(jobWorker *worker.JobWorker, jobQueue queue.JobQueue, settings service.SettingsService) *StatusController {
	return &StatusController{
		jobWorker: jobWorker,
		jobQueue:  jobQueue,
		settings:  settings,
	}
}

// GetStatus 获取运行状态
func (c *StatusController) GetStatus(ctx *gin.Context) {
	stats := c.jobWorker.GetStats()
	current := c.settings.Current(ctx.Request.Context())

	payload := gin.H{
		"worker": gin.H{
			"running":           c.jobWorker.IsRunning(),
			"processed_jobs":    stats.ProcessedJobs,
			"successful_jobs":   stats.SuccessfulJobs,
			"failed_jobs":       stats.FailedJobs,
			"currently_running": stats.CurrentlyRunning,
			"started_at":        stats.StartTime,
		},
		"queue": gin.H{
			"size": c.jobQueue.Size(),
		},
		"settings": current.FieldMap(),
	}

	if mq, ok := c.jobQueue.(*queue.MemoryJobQueue); ok {
		metrics := mq.GetMetrics()
		payload["queue"] = gin.H{
			"size":          metrics.CurrentSize,
			"capacity":      metrics.MaxSize,
			"enqueue_count": metrics.EnqueueCount,
			"dequeue_count": metrics.DequeueCount,
		}
	}

	ctx.JSON(http.StatusOK, payload)
}
