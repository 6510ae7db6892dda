package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"compress-bot/ddd/domain/entity"
	"compress-bot/ddd/domain/service"
	"compress-bot/ddd/infrastructure/queue"
	"compress-bot/pkg/logger"
)

// ChatLimiter enforces one active job per chat. A slot is taken before a job
// is enqueued and released when the worker is done with it.
type ChatLimiter struct {
	mu     sync.Mutex
	active map[int64]struct{}
}

func NewChatLimiter() *ChatLimiter {
	return &ChatLimiter{active: make(map[int64]struct{})}
}

// TryAcquire claims the chat's slot. Returns false when a job is already
// running or queued for the chat.
func (l *ChatLimiter) TryAcquire(chatID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.active[chatID]; busy {
		return false
	}
	l.active[chatID] = struct{}{}
	return true
}

func (l *ChatLimiter) Release(chatID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.active, chatID)
}

// WorkerStats 工作器统计信息
type WorkerStats struct {
	ProcessedJobs    uint64
	SuccessfulJobs   uint64
	FailedJobs       uint64
	CurrentlyRunning int
	StartTime        time.Time
	LastJobTime      time.Time
}

// JobWorker 任务工作器，实现task.BackgroundTask
type JobWorker struct {
	id          string
	jobQueue    queue.JobQueue
	jobService  service.JobService
	limiter     *ChatLimiter
	workerCount int
	running     bool
	cancel      context.CancelFunc
	stats       WorkerStats
	mu          sync.RWMutex
	wg          sync.WaitGroup
}

// NewJobWorker 创建任务工作器
func NewJobWorker(
	id string,
	jobQueue queue.JobQueue,
	jobService service.JobService,
	limiter *ChatLimiter,
	workerCount int,
) *JobWorker {
	if workerCount <= 0 {
		workerCount = 1
	}

	return &JobWorker{
		id:          id,
		jobQueue:    jobQueue,
		jobService:  jobService,
		limiter:     limiter,
		workerCount: workerCount,
		stats: WorkerStats{
			StartTime: time.Now(),
		},
	}
}

func (w *JobWorker) Name() string {
	return "job-worker-" + w.id
}

// Start 启动工作器
func (w *JobWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("worker %s is already running", w.id)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.stats.StartTime = time.Now()

	logger.Infof("Starting job worker %s with %d goroutines", w.id, w.workerCount)

	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go w.workerLoop(workerCtx, i)
	}

	return nil
}

// Stop 停止工作器
func (w *JobWorker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	logger.Infof("Stopping job worker %s", w.id)

	if w.cancel != nil {
		w.cancel()
	}

	w.wg.Wait()

	w.running = false
	logger.Infof("Job worker %s stopped", w.id)

	return nil
}

// IsRunning 检查工作器是否运行中
func (w *JobWorker) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// GetStats 获取工作器统计信息
func (w *JobWorker) GetStats() WorkerStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// workerLoop 工作器主循环
func (w *JobWorker) workerLoop(ctx context.Context, workerID int) {
	defer w.wg.Done()

	logger.Debugf("Worker %s-%d started", w.id, workerID)
	defer logger.Debugf("Worker %s-%d stopped", w.id, workerID)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			job, err := w.jobQueue.Dequeue(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				logger.Warnf("Worker %s-%d failed to dequeue job: %v", w.id, workerID, err)
				time.Sleep(time.Second)
				continue
			}

			if job == nil {
				continue
			}

			w.processJob(ctx, job, workerID)
		}
	}
}

// processJob 处理单个任务
func (w *JobWorker) processJob(ctx context.Context, job *entity.JobEntity, workerID int) {
	logger.Info("processing job", map[string]interface{}{
		"worker":  fmt.Sprintf("%s-%d", w.id, workerID),
		"job_id":  job.JobID(),
		"kind":    string(job.Kind()),
		"chat_id": job.ChatID(),
	})

	// The chat slot was claimed at enqueue time.
	if w.limiter != nil {
		defer w.limiter.Release(job.ChatID())
	}

	w.updateStats(func(stats *WorkerStats) {
		stats.CurrentlyRunning++
		stats.LastJobTime = time.Now()
	})

	defer func() {
		w.updateStats(func(stats *WorkerStats) {
			stats.CurrentlyRunning--
			stats.ProcessedJobs++
		})
	}()

	err := w.runJob(ctx, job)
	if err != nil {
		logger.Warnf("Worker %s-%d job %s failed: %v", w.id, workerID, job.JobID(), err)
		w.updateStats(func(stats *WorkerStats) {
			stats.FailedJobs++
		})
	} else {
		w.updateStats(func(stats *WorkerStats) {
			stats.SuccessfulJobs++
		})
	}
}

// runJob 执行单个任务，panic只使该任务失败，不影响其他任务
func (w *JobWorker) runJob(ctx context.Context, job *entity.JobEntity) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Worker %s recovered from panic in job %s: %v", w.id, job.JobID(), r)
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return w.jobService.Run(ctx, job)
}

// updateStats 更新统计信息
func (w *JobWorker) updateStats(updateFunc func(*WorkerStats)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	updateFunc(&w.stats)
}
