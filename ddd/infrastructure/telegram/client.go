package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"compress-bot/ddd/domain/gateway"
	"compress-bot/ddd/domain/vo"
	"compress-bot/pkg/config"
	"compress-bot/pkg/logger"
)

// transferChunkSize is the copy buffer used for file downloads; each chunk
// fires one progress callback.
const transferChunkSize = 128 * 1024

// Client implements gateway.MessengerGateway on the Telegram Bot API.
type Client struct {
	bot  *tgbotapi.BotAPI
	http *http.Client
}

// NewClient 创建Telegram客户端并校验令牌
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	var bot *tgbotapi.BotAPI
	var err error
	if cfg.Bot.APIEndpoint != "" {
		bot, err = tgbotapi.NewBotAPIWithAPIEndpoint(cfg.Bot.Token, cfg.Bot.APIEndpoint)
	} else {
		bot, err = tgbotapi.NewBotAPI(cfg.Bot.Token)
	}
	if err != nil {
		return nil, fmt.Errorf("connect bot api: %w", err)
	}

	logger.Info("Telegram bot authorized", map[string]interface{}{
		"username": bot.Self.UserName,
	})

	return &Client{
		bot:  bot,
		http: &http.Client{},
	}, nil
}

// Bot exposes the underlying API client for the update dispatcher.
func (c *Client) Bot() *tgbotapi.BotAPI {
	return c.bot
}

func (c *Client) ReplyText(_ context.Context, chatID int64, replyTo int, text string) (gateway.StatusMessage, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	sent, err := c.bot.Send(msg)
	if err != nil {
		return gateway.StatusMessage{}, fmt.Errorf("send reply: %w", err)
	}
	return gateway.StatusMessage{ChatID: chatID, MessageID: sent.MessageID}, nil
}

func (c *Client) EditMessageText(_ context.Context, msg gateway.StatusMessage, text string) error {
	edit := tgbotapi.NewEditMessageText(msg.ChatID, msg.MessageID, text)
	if _, err := c.bot.Request(edit); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

func (c *Client) DeleteMessage(_ context.Context, msg gateway.StatusMessage) error {
	del := tgbotapi.NewDeleteMessage(msg.ChatID, msg.MessageID)
	if _, err := c.bot.Request(del); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// DownloadMedia resolves the file through the Bot API and streams it to
// localPath, firing onProgress per chunk.
func (c *Client) DownloadMedia(ctx context.Context, ref vo.MediaRef, localPath string, onProgress gateway.TransferProgress) (string, error) {
	file, err := c.bot.GetFile(tgbotapi.FileConfig{FileID: ref.FileID})
	if err != nil {
		return "", fmt.Errorf("resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(c.bot.Token), nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download file: unexpected status %s", resp.Status)
	}

	total := ref.FileSize
	if total <= 0 {
		total = resp.ContentLength
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	out, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("create local file: %w", err)
	}
	defer out.Close()

	var written int64
	buf := make([]byte, transferChunkSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return "", fmt.Errorf("write local file: %w", writeErr)
			}
			written += int64(n)
			if onProgress != nil {
				onProgress(written, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", fmt.Errorf("read download stream: %w", readErr)
		}
	}
	return localPath, nil
}

func (c *Client) SendVideo(_ context.Context, chatID int64, replyTo int, path, caption, thumbFileID string, onProgress gateway.TransferProgress) error {
	upload, err := newProgressUpload(path, onProgress)
	if err != nil {
		return err
	}
	defer upload.Close()

	video := tgbotapi.NewVideo(chatID, upload.FileReader())
	video.ReplyToMessageID = replyTo
	video.Caption = caption
	video.SupportsStreaming = true
	if thumbFileID != "" {
		video.Thumb = tgbotapi.FileID(thumbFileID)
	}
	if _, err := c.bot.Send(video); err != nil {
		return fmt.Errorf("send video: %w", err)
	}
	return nil
}

func (c *Client) SendDocument(_ context.Context, chatID int64, replyTo int, path, caption, thumbFileID string, onProgress gateway.TransferProgress) error {
	upload, err := newProgressUpload(path, onProgress)
	if err != nil {
		return err
	}
	defer upload.Close()

	doc := tgbotapi.NewDocument(chatID, upload.FileReader())
	doc.ReplyToMessageID = replyTo
	doc.Caption = caption
	if thumbFileID != "" {
		doc.Thumb = tgbotapi.FileID(thumbFileID)
	}
	if _, err := c.bot.Send(doc); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}

func (c *Client) SendPhoto(_ context.Context, chatID int64, fileID, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	photo.Caption = caption
	if _, err := c.bot.Send(photo); err != nil {
		return fmt.Errorf("send photo: %w", err)
	}
	return nil
}

// progressUpload wraps an artifact file so the multipart writer's reads fire
// transfer callbacks.
type progressUpload struct {
	file  *os.File
	name  string
	total int64

	read       int64
	onProgress gateway.TransferProgress
}

func newProgressUpload(path string, onProgress gateway.TransferProgress) (*progressUpload, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat artifact: %w", err)
	}
	return &progressUpload{
		file:       file,
		name:       filepath.Base(path),
		total:      info.Size(),
		onProgress: onProgress,
	}, nil
}

func (u *progressUpload) Read(p []byte) (int, error) {
	n, err := u.file.Read(p)
	if n > 0 {
		u.read += int64(n)
		if u.onProgress != nil {
			u.onProgress(u.read, u.total)
		}
	}
	return n, err
}

func (u *progressUpload) FileReader() tgbotapi.FileReader {
	return tgbotapi.FileReader{Name: u.name, Reader: u}
}

func (u *progressUpload) Close() error {
	return u.file.Close()
}
