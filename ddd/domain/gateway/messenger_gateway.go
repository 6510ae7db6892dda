package gateway

import (
	"context"

	"compress-bot/ddd/domain/vo"
)

// StatusMessage references an editable status message in a chat.
type StatusMessage struct {
	ChatID    int64
	MessageID int
}

// TransferProgress is fired per chunk while a file moves between the
// platform and local storage.
type TransferProgress func(current, total int64)

// MessengerGateway is the surface of the messaging platform the pipeline
// needs. The wire protocol behind it is not this service's concern.
type MessengerGateway interface {
	// ReplyText posts a reply and returns a handle for later edits.
	ReplyText(ctx context.Context, chatID int64, replyTo int, text string) (StatusMessage, error)

	// EditMessageText replaces the text of a previously sent status message.
	EditMessageText(ctx context.Context, msg StatusMessage, text string) error

	// DeleteMessage removes a status message. Best-effort at call sites.
	DeleteMessage(ctx context.Context, msg StatusMessage) error

	// DownloadMedia streams the referenced file to localPath, firing
	// onProgress per chunk.
	DownloadMedia(ctx context.Context, ref vo.MediaRef, localPath string, onProgress TransferProgress) (string, error)

	// SendVideo uploads a video artifact as a reply, with optional thumbnail.
	SendVideo(ctx context.Context, chatID int64, replyTo int, path, caption, thumbFileID string, onProgress TransferProgress) error

	// SendDocument uploads a generic artifact as a reply.
	SendDocument(ctx context.Context, chatID int64, replyTo int, path, caption, thumbFileID string, onProgress TransferProgress) error

	// SendPhoto posts a stored photo by platform file id.
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error
}
