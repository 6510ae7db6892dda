package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"compress-bot/ddd/domain/vo"
)

func TestMediaFromMessage(t *testing.T) {
	video := &tgbotapi.Message{Video: &tgbotapi.Video{
		FileID: "vid", FileName: "movie.mkv", FileSize: 1024, Duration: 60,
	}}
	ref := mediaFromMessage(video)
	if ref.Kind != vo.MediaKindVideo || ref.FileID != "vid" || ref.FileName != "movie.mkv" || ref.DurationSeconds != 60 {
		t.Errorf("video ref = %+v", ref)
	}

	doc := &tgbotapi.Message{Document: &tgbotapi.Document{
		FileID: "doc", FileName: "clip.avi", FileSize: 2048,
	}}
	ref = mediaFromMessage(doc)
	if ref.Kind != vo.MediaKindDocument || ref.FileSize != 2048 {
		t.Errorf("document ref = %+v", ref)
	}

	// Unnamed video gets a placeholder name.
	ref = mediaFromMessage(&tgbotapi.Message{Video: &tgbotapi.Video{FileID: "v2"}})
	if ref.FileName != "video.mp4" {
		t.Errorf("unnamed video FileName = %q", ref.FileName)
	}

	if ref := mediaFromMessage(&tgbotapi.Message{Text: "hello"}); !ref.IsZero() {
		t.Errorf("text message ref = %+v, want zero", ref)
	}
	if ref := mediaFromMessage(nil); !ref.IsZero() {
		t.Errorf("nil message ref = %+v, want zero", ref)
	}
}

func TestParseUserID(t *testing.T) {
	if id, err := parseUserID(" 12345 "); err != nil || id != 12345 {
		t.Errorf("parseUserID(12345) = %d, %v", id, err)
	}
	for _, bad := range []string{"", "abc", "-7", "0", "12.5"} {
		if _, err := parseUserID(bad); err == nil {
			t.Errorf("parseUserID(%q) accepted", bad)
		}
	}
}

func TestPhotoFileID(t *testing.T) {
	sizes := []tgbotapi.PhotoSize{
		{FileID: "small", Width: 90},
		{FileID: "large", Width: 800},
	}

	// Reply-based /setthumb takes the replied photo's largest size.
	msg := &tgbotapi.Message{ReplyToMessage: &tgbotapi.Message{Photo: sizes}}
	if got := photoFileID(msg); got != "large" {
		t.Errorf("photoFileID(reply) = %q, want large", got)
	}

	// Inline photo works too.
	if got := photoFileID(&tgbotapi.Message{Photo: sizes}); got != "large" {
		t.Errorf("photoFileID(inline) = %q, want large", got)
	}

	if got := photoFileID(&tgbotapi.Message{}); got != "" {
		t.Errorf("photoFileID(no photo) = %q, want empty", got)
	}
}

func TestReplyTarget(t *testing.T) {
	replied := &tgbotapi.Message{MessageID: 10}
	msg := &tgbotapi.Message{MessageID: 11, ReplyToMessage: replied}
	if got := replyTarget(msg); got != replied {
		t.Error("replyTarget did not pick the replied message")
	}
	if got := replyTarget(replied); got != replied {
		t.Error("replyTarget without reply did not return the message itself")
	}
}

func TestMessageHasMedia(t *testing.T) {
	if messageHasMedia(&tgbotapi.Message{Text: "hi"}) {
		t.Error("text message reported as media")
	}
	if !messageHasMedia(&tgbotapi.Message{Video: &tgbotapi.Video{FileID: "v"}}) {
		t.Error("video message not reported as media")
	}
	if !messageHasMedia(&tgbotapi.Message{Document: &tgbotapi.Document{FileID: "d"}}) {
		t.Error("document message not reported as media")
	}
}
