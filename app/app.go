package app

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	adapterbot "compress-bot/ddd/adapter/bot"
	adapterhttp "compress-bot/ddd/adapter/http"
	"compress-bot/ddd/domain/gateway"
	"compress-bot/ddd/domain/port"
	"compress-bot/ddd/domain/service"
	"compress-bot/ddd/domain/vo"
	"compress-bot/ddd/infrastructure/executor"
	"compress-bot/ddd/infrastructure/persistence"
	"compress-bot/ddd/infrastructure/probe"
	"compress-bot/ddd/infrastructure/progress"
	"compress-bot/ddd/infrastructure/queue"
	"compress-bot/ddd/infrastructure/storage"
	"compress-bot/ddd/infrastructure/telegram"
	"compress-bot/ddd/infrastructure/worker"
	"compress-bot/internal/resource"
	"compress-bot/pkg/config"
	"compress-bot/pkg/logger"
	"compress-bot/pkg/manager"
	"compress-bot/pkg/task"
)

func Run() {
	// 先使用标准输出确保能看到日志
	fmt.Println("[STARTUP] Starting compress bot...")

	// 加载配置
	fmt.Println("[STARTUP] Loading config file...")
	cfgPath := config.ResolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}
	// 设置全局配置（必须在资源管理器初始化之前）
	config.SetGlobalConfig(cfg)
	fmt.Printf("[STARTUP] Config file loaded: %s\n", cfgPath)

	// 立即初始化日志服务
	fmt.Println("[STARTUP] Initializing logger...")
	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)
	fmt.Println("[STARTUP] Logger initialized")

	logger.Debug("Logger initialized", map[string]interface{}{
		"level":  cfg.Log.Level,
		"format": cfg.Log.Format,
		"output": cfg.Log.Output,
	})

	logger.Infof("Compress bot starting version=%s", "1.0.0")

	// 检查外部工具是否可用，直接在启动阶段失败
	checkBinary("ffmpeg", cfg.Transcode.FFmpeg.BinaryPath, "transcode.ffmpeg.binary_path")
	checkBinary("ffprobe", cfg.Transcode.FFmpeg.ProbePath, "transcode.ffmpeg.probe_path")

	if err := os.MkdirAll(cfg.Bot.DownloadDir, 0o755); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to create download dir %s error=%v", cfg.Bot.DownloadDir, err))
	}

	// 资源管理器初始化（Redis、可选归档桶）
	logger.Infof("Initializing resource manager...")
	manager.MustInitResources()
	defer manager.CloseResources()
	logger.Infof("Resource manager initialized")

	// 平台客户端
	logger.Infof("Connecting to bot API...")
	tgClient, err := telegram.NewClient(cfg)
	if err != nil {
		logger.Fatal(fmt.Sprintf("Failed to connect bot API error=%v", err))
	}

	// 仓储与领域服务
	redisClient := resource.DefaultRedisResource().GetClient()
	settingsRepo := persistence.NewSettingsRepository(redisClient, cfg.Redis.KeyPrefix)
	adminRepo := persistence.NewAdminRepository(redisClient, cfg.Redis.KeyPrefix)
	thumbRepo := persistence.NewThumbnailRepository(redisClient, cfg.Redis.KeyPrefix)

	defaults := vo.EncodeSettings{
		Codec:        cfg.Transcode.Defaults.Codec,
		CRF:          cfg.Transcode.Defaults.CRF,
		Resolution:   cfg.Transcode.Defaults.Resolution,
		Preset:       cfg.Transcode.Defaults.Preset,
		AudioCodec:   cfg.Transcode.Defaults.AudioCodec,
		AudioBitrate: cfg.Transcode.Defaults.AudioBitrate,
	}

	settingsService := service.NewSettingsService(settingsRepo, defaults)
	adminService := service.NewAdminService(adminRepo, cfg.Bot.OwnerID)
	thumbService := service.NewThumbnailService(thumbRepo)

	archiveGateway := storage.NewMinioArchive(resource.DefaultMinioResource())

	jobService := service.NewJobService(
		tgClient,
		archiveGateway,
		probe.NewFFprobeInspector(cfg),
		executor.NewFFmpegExecutor(cfg),
		thumbService,
		func(msg gateway.StatusMessage) port.StatusReporter {
			return progress.NewMessageReporter(tgClient, msg)
		},
		cfg.Bot.DownloadDir,
		cfg.Bot.MaxFileSize,
	)

	// 队列、Worker与分发器
	jobQueue := queue.DefaultJobQueue()
	defer queue.CloseDefaultJobQueue()
	limiter := worker.NewChatLimiter()
	jobWorker := worker.NewJobWorker("main", jobQueue, jobService, limiter, cfg.Worker.MaxConcurrentJobs)
	dispatcher := adapterbot.NewDispatcher(tgClient, cfg, settingsService, adminService, thumbService, jobService, jobQueue, limiter)

	// 状态HTTP服务
	statusServer := adapterhttp.NewServer(cfg, adapterhttp.NewRouter(jobWorker, jobQueue, settingsService))

	// 注册后台任务并启动
	task.Register(jobWorker)
	task.Register(dispatcher)
	task.Register(statusServer)

	logger.Infof("Starting background tasks...")
	if err := task.StartAll(context.Background()); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to start background tasks error=%v", err))
	}
	logger.Infof("All background tasks started")

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Received shutdown signal, shutting down...")
	task.StopAll()
	logger.Infof("Background tasks stopped")

	// 关闭日志服务
	logger.Infof("Closing logger...")
	if logService != nil {
		logService.Close()
	}

	fmt.Println("[SHUTDOWN] Compress bot exited safely")
}

// checkBinary fails startup when a required external tool is missing.
func checkBinary(name, configured, configKey string) {
	bin := strings.TrimSpace(configured)
	if bin == "" {
		bin = name
	}
	if _, err := exec.LookPath(bin); err != nil {
		logger.Fatal(fmt.Sprintf("%s binary not found, please install or set %s binary=%s error=%s", name, configKey, bin, err.Error()))
	}
}
