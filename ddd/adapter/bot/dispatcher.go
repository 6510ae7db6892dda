package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"compress-bot/ddd/domain/service"
	"compress-bot/ddd/infrastructure/queue"
	"compress-bot/ddd/infrastructure/telegram"
	"compress-bot/ddd/infrastructure/worker"
	"compress-bot/pkg/config"
	"compress-bot/pkg/logger"
)

// Dispatcher 更新分发器，实现task.BackgroundTask
//
// Long-polls the platform for updates and routes commands and media messages
// to their handlers. All gated operations require owner-or-admin.
type Dispatcher struct {
	client   *telegram.Client
	cfg      *config.Config
	settings service.SettingsService
	admins   service.AdminService
	thumbs   service.ThumbnailService
	jobs     service.JobService
	jobQueue queue.JobQueue
	limiter  *worker.ChatLimiter

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher 创建更新分发器
func NewDispatcher(
	client *telegram.Client,
	cfg *config.Config,
	settings service.SettingsService,
	admins service.AdminService,
	thumbs service.ThumbnailService,
	jobs service.JobService,
	jobQueue queue.JobQueue,
	limiter *worker.ChatLimiter,
) *Dispatcher {
	return &Dispatcher{
		client:   client,
		cfg:      cfg,
		settings: settings,
		admins:   admins,
		thumbs:   thumbs,
		jobs:     jobs,
		jobQueue: jobQueue,
		limiter:  limiter,
	}
}

func (d *Dispatcher) Name() string {
	return "bot-dispatcher"
}

// Start 启动长轮询循环
func (d *Dispatcher) Start(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	u := tgbotapi.NewUpdate(0)
	u.Timeout = d.cfg.Bot.UpdateTimeout
	updates := d.client.Bot().GetUpdatesChan(u)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-loopCtx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				d.handleUpdate(loopCtx, update)
			}
		}
	}()

	logger.Infof("Bot dispatcher started, update timeout %ds", d.cfg.Bot.UpdateTimeout)
	return nil
}

// Stop 停止长轮询
func (d *Dispatcher) Stop() error {
	d.client.Bot().StopReceivingUpdates()
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
	logger.Infof("Bot dispatcher stopped")
	return nil
}

func (d *Dispatcher) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("update handler panic chat_id=%d: %v", msg.Chat.ID, r)
		}
	}()

	if msg.IsCommand() {
		d.handleCommand(ctx, msg)
		return
	}

	// A bare media message is an implicit compression request.
	if messageHasMedia(msg) {
		d.handleCompress(ctx, msg, msg)
	}
}

func (d *Dispatcher) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	command := msg.Command()
	args := msg.CommandArguments()

	logger.Debug("command received", map[string]interface{}{
		"command": command,
		"chat_id": msg.Chat.ID,
		"user_id": msg.From.ID,
	})

	if command == "start" {
		d.handleStart(ctx, msg)
		return
	}

	// Everything past /start is owner-or-admin only.
	if !d.admins.IsPrivileged(ctx, msg.From.ID) {
		d.reply(ctx, msg, "⛔ You are not authorized to use this bot.")
		return
	}

	switch command {
	case "settings":
		d.handleShowSettings(ctx, msg)
	case "codec", "crf", "resolution", "preset", "audio", "audiobit":
		d.handleUpdateSetting(ctx, msg, command, args)
	case "addadmin":
		d.handleAddAdmin(ctx, msg, args)
	case "rmadmin":
		d.handleRemoveAdmin(ctx, msg, args)
	case "adminlist":
		d.handleListAdmins(ctx, msg)
	case "setthumb":
		d.handleSetThumbnail(ctx, msg)
	case "showthumb":
		d.handleShowThumbnail(ctx, msg)
	case "delthumb":
		d.handleDeleteThumbnail(ctx, msg)
	case "compress":
		d.handleCompress(ctx, msg, replyTarget(msg))
	case "extaudio":
		d.handleExtractAudio(ctx, msg, replyTarget(msg))
	default:
		d.reply(ctx, msg, "Unknown command. Send /start for usage.")
	}
}

// replyTarget picks the message carrying the media for reply-based commands.
func replyTarget(msg *tgbotapi.Message) *tgbotapi.Message {
	if msg.ReplyToMessage != nil {
		return msg.ReplyToMessage
	}
	return msg
}

func messageHasMedia(msg *tgbotapi.Message) bool {
	return msg != nil && (msg.Video != nil || msg.Document != nil || msg.Audio != nil)
}

func (d *Dispatcher) reply(ctx context.Context, msg *tgbotapi.Message, text string) {
	if _, err := d.client.ReplyText(ctx, msg.Chat.ID, msg.MessageID, text); err != nil {
		logger.Warnf("reply failed chat_id=%d: %v", msg.Chat.ID, err)
	}
}
