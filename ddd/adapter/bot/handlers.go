package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"compress-bot/ddd/domain/entity"
	"compress-bot/ddd/domain/vo"
	"compress-bot/pkg/errno"
	"compress-bot/pkg/format"
	"compress-bot/pkg/logger"
)

const startText = `👋 Hi! I compress videos and extract audio tracks.

Send me a video or document and I will compress it with the current settings.

Commands:
/settings - show current encode settings
/codec /crf /resolution /preset /audio /audiobit <value> - change a setting
/compress - compress the replied-to media
/extaudio - extract all audio tracks from the replied-to media
/setthumb - reply to a photo to save it as upload thumbnail
/showthumb /delthumb - show or remove the saved thumbnail
/addadmin /rmadmin /adminlist - manage admins`

func (d *Dispatcher) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	d.reply(ctx, msg, startText)
}

func (d *Dispatcher) handleShowSettings(ctx context.Context, msg *tgbotapi.Message) {
	d.reply(ctx, msg, d.settings.Current(ctx).Describe())
}

func (d *Dispatcher) handleUpdateSetting(ctx context.Context, msg *tgbotapi.Message, key, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		d.reply(ctx, msg, settingUsage(key))
		return
	}

	updated, err := d.settings.Update(ctx, key, value)
	if err != nil {
		switch {
		case errors.Is(err, errno.ErrCRFOutOfRange):
			d.reply(ctx, msg, "CRF must be an integer between 0 and 51.")
		case errors.Is(err, errno.ErrInvalidPreset):
			d.reply(ctx, msg, "Invalid preset. Valid presets: "+strings.Join(vo.ValidPresets(), ", "))
		case errors.Is(err, errno.ErrInvalidResolution):
			d.reply(ctx, msg, "Resolution must look like 1280x720.")
		case errors.Is(err, errno.ErrInvalidParam):
			d.reply(ctx, msg, settingUsage(key))
		default:
			logger.Warnf("setting update failed key=%s: %v", key, err)
			d.reply(ctx, msg, "Could not save the setting, please try again.")
		}
		return
	}
	d.reply(ctx, msg, fmt.Sprintf("✅ Updated %s.\n\n%s", key, updated.Describe()))
}

func settingUsage(key string) string {
	switch key {
	case "crf":
		return "Usage: /crf <0-51>"
	case "resolution":
		return "Usage: /resolution <WxH>, e.g. /resolution 1280x720"
	case "preset":
		return "Usage: /preset <" + strings.Join(vo.ValidPresets(), "|") + ">"
	default:
		return fmt.Sprintf("Usage: /%s <value>", key)
	}
}

func (d *Dispatcher) handleAddAdmin(ctx context.Context, msg *tgbotapi.Message, args string) {
	userID, err := parseUserID(args)
	if err != nil {
		d.reply(ctx, msg, "Usage: /addadmin <user_id>")
		return
	}

	switch err := d.admins.Add(ctx, userID); {
	case err == nil:
		d.reply(ctx, msg, fmt.Sprintf("✅ Added %d as admin.", userID))
	case errors.Is(err, errno.ErrOwnerImmutable):
		d.reply(ctx, msg, "The owner is always an admin.")
	case errors.Is(err, errno.ErrAdminExists):
		d.reply(ctx, msg, fmt.Sprintf("%d is already an admin.", userID))
	default:
		logger.Warnf("add admin failed user_id=%d: %v", userID, err)
		d.reply(ctx, msg, "Could not add the admin, please try again.")
	}
}

func (d *Dispatcher) handleRemoveAdmin(ctx context.Context, msg *tgbotapi.Message, args string) {
	userID, err := parseUserID(args)
	if err != nil {
		d.reply(ctx, msg, "Usage: /rmadmin <user_id>")
		return
	}

	switch err := d.admins.Remove(ctx, userID); {
	case err == nil:
		d.reply(ctx, msg, fmt.Sprintf("✅ Removed %d from admins.", userID))
	case errors.Is(err, errno.ErrOwnerImmutable):
		d.reply(ctx, msg, "The owner cannot be removed.")
	case errors.Is(err, errno.ErrAdminNotFound):
		d.reply(ctx, msg, fmt.Sprintf("%d is not an admin.", userID))
	default:
		logger.Warnf("remove admin failed user_id=%d: %v", userID, err)
		d.reply(ctx, msg, "Could not remove the admin, please try again.")
	}
}

func (d *Dispatcher) handleListAdmins(ctx context.Context, msg *tgbotapi.Message) {
	ids, err := d.admins.List(ctx)
	if err != nil {
		logger.Warnf("list admins failed: %v", err)
		d.reply(ctx, msg, "Could not load the admin list, please try again.")
		return
	}

	var b strings.Builder
	b.WriteString("Admins:\n")
	fmt.Fprintf(&b, "- %d (owner)\n", d.cfg.Bot.OwnerID)
	for _, id := range ids {
		fmt.Fprintf(&b, "- %d\n", id)
	}
	d.reply(ctx, msg, strings.TrimRight(b.String(), "\n"))
}

func parseUserID(args string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil || id <= 0 {
		return 0, errno.ErrInvalidUserID
	}
	return id, nil
}

func (d *Dispatcher) handleSetThumbnail(ctx context.Context, msg *tgbotapi.Message) {
	photo := photoFileID(msg)
	if photo == "" {
		d.reply(ctx, msg, "Reply to a photo with /setthumb to save it as thumbnail.")
		return
	}
	if err := d.thumbs.Set(ctx, msg.From.ID, photo); err != nil {
		logger.Warnf("set thumbnail failed user_id=%d: %v", msg.From.ID, err)
		d.reply(ctx, msg, "Could not save the thumbnail, please try again.")
		return
	}
	d.reply(ctx, msg, "✅ Thumbnail saved.")
}

func (d *Dispatcher) handleShowThumbnail(ctx context.Context, msg *tgbotapi.Message) {
	fileID := d.thumbs.Current(ctx, msg.From.ID)
	if fileID == "" {
		d.reply(ctx, msg, "No thumbnail saved. Reply to a photo with /setthumb.")
		return
	}
	if err := d.client.SendPhoto(ctx, msg.Chat.ID, fileID, "Your current thumbnail."); err != nil {
		logger.Warnf("show thumbnail failed user_id=%d: %v", msg.From.ID, err)
		d.reply(ctx, msg, "Could not send the thumbnail.")
	}
}

func (d *Dispatcher) handleDeleteThumbnail(ctx context.Context, msg *tgbotapi.Message) {
	switch err := d.thumbs.Delete(ctx, msg.From.ID); {
	case err == nil:
		d.reply(ctx, msg, "✅ Thumbnail removed.")
	case errors.Is(err, errno.ErrThumbNotFound):
		d.reply(ctx, msg, "No thumbnail saved.")
	default:
		logger.Warnf("delete thumbnail failed user_id=%d: %v", msg.From.ID, err)
		d.reply(ctx, msg, "Could not remove the thumbnail, please try again.")
	}
}

// photoFileID picks the largest size of the replied-to (or inline) photo.
func photoFileID(msg *tgbotapi.Message) string {
	source := msg
	if msg.ReplyToMessage != nil && len(msg.ReplyToMessage.Photo) > 0 {
		source = msg.ReplyToMessage
	}
	if len(source.Photo) == 0 {
		return ""
	}
	return source.Photo[len(source.Photo)-1].FileID
}

func (d *Dispatcher) handleCompress(ctx context.Context, cmdMsg, mediaMsg *tgbotapi.Message) {
	media := mediaFromMessage(mediaMsg)
	if media.IsZero() {
		d.reply(ctx, cmdMsg, "Reply to a video or document with /compress, or just send one.")
		return
	}
	d.enqueueJob(ctx, cmdMsg, mediaMsg, entity.JobKindCompress, media)
}

func (d *Dispatcher) handleExtractAudio(ctx context.Context, cmdMsg, mediaMsg *tgbotapi.Message) {
	media := mediaFromMessage(mediaMsg)
	if media.IsZero() {
		d.reply(ctx, cmdMsg, "Reply to a media file with /extaudio to extract its audio tracks.")
		return
	}
	d.enqueueJob(ctx, cmdMsg, mediaMsg, entity.JobKindExtractAudio, media)
}

func (d *Dispatcher) enqueueJob(ctx context.Context, cmdMsg, mediaMsg *tgbotapi.Message, kind entity.JobKind, media vo.MediaRef) {
	if err := d.jobs.ValidateMedia(media); err != nil {
		switch {
		case errors.Is(err, errno.ErrFileTooLarge):
			d.reply(ctx, cmdMsg, fmt.Sprintf("File is too large. Maximum size is %s.",
				format.HumanBytes(float64(d.cfg.Bot.MaxFileSize))))
		default:
			d.reply(ctx, cmdMsg, "No usable media found in that message.")
		}
		return
	}

	chatID := cmdMsg.Chat.ID
	if d.limiter != nil && !d.limiter.TryAcquire(chatID) {
		d.reply(ctx, cmdMsg, "⏳ A job is already running in this chat, please wait for it to finish.")
		return
	}

	// Settings are snapshotted now; later changes never affect this job.
	job := entity.NewJobEntity(kind, chatID, cmdMsg.From.ID, mediaMsg.MessageID, media, d.settings.Current(ctx))
	if err := d.jobQueue.Enqueue(ctx, job); err != nil {
		if d.limiter != nil {
			d.limiter.Release(chatID)
		}
		logger.Warnf("enqueue failed chat_id=%d: %v", chatID, err)
		d.reply(ctx, cmdMsg, "🚦 The queue is full, please try again in a moment.")
		return
	}

	logger.Info("job enqueued", map[string]interface{}{
		"job_id":  job.JobID(),
		"kind":    string(kind),
		"chat_id": chatID,
		"user_id": cmdMsg.From.ID,
	})
}

func mediaFromMessage(msg *tgbotapi.Message) vo.MediaRef {
	if msg == nil {
		return vo.MediaRef{}
	}
	switch {
	case msg.Video != nil:
		v := msg.Video
		name := v.FileName
		if name == "" {
			name = "video.mp4"
		}
		return vo.NewVideoRef(v.FileID, name, int64(v.FileSize), v.Duration)
	case msg.Document != nil:
		doc := msg.Document
		return vo.NewDocumentRef(doc.FileID, doc.FileName, int64(doc.FileSize))
	case msg.Audio != nil:
		a := msg.Audio
		name := a.FileName
		if name == "" {
			name = "audio"
		}
		return vo.NewAudioRef(a.FileID, name, int64(a.FileSize), a.Duration)
	default:
		return vo.MediaRef{}
	}
}
