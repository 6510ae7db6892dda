package progress

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"compress-bot/ddd/domain/gateway"
	"compress-bot/ddd/domain/port"
	"compress-bot/pkg/format"
	"compress-bot/pkg/logger"
)

// editInterval is the minimum spacing between status edits. Messaging
// platforms rate-limit edits aggressively; one edit per interval is safe.
const editInterval = 7 * time.Second

const barSlots = 20

// MessageReporter implements port.StatusReporter by editing a single status
// message in place. The first report after construction goes out immediately;
// later ones are throttled. Edit failures are swallowed: status is cosmetic
// and must never fail a job.
type MessageReporter struct {
	messenger gateway.MessengerGateway
	msg       gateway.StatusMessage

	mu        sync.Mutex
	lastEdit  time.Time
	lastText  string
	startedAt time.Time

	now func() time.Time
}

func NewMessageReporter(messenger gateway.MessengerGateway, msg gateway.StatusMessage) *MessageReporter {
	now := time.Now
	return &MessageReporter{
		messenger: messenger,
		msg:       msg,
		lastEdit:  now().Add(-editInterval),
		startedAt: now(),
		now:       now,
	}
}

func (r *MessageReporter) Report(current, total int64, kind port.ProgressKind) {
	elapsed := r.now().Sub(r.startedAt).Seconds()
	r.maybeEdit(renderTransfer(kind, current, total, elapsed), false)
}

func (r *MessageReporter) ReportEncode(p port.TranscodeProgress) {
	r.maybeEdit(renderEncode(p), false)
}

func (r *MessageReporter) Announce(text string) {
	r.maybeEdit(text, true)
}

func (r *MessageReporter) maybeEdit(text string, force bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if !force && now.Sub(r.lastEdit) < editInterval {
		return
	}
	if text == r.lastText {
		return
	}
	r.lastEdit = now
	r.lastText = text

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.messenger.EditMessageText(ctx, r.msg, text); err != nil {
		logger.Debugf("status edit failed chat_id=%d message_id=%d: %v", r.msg.ChatID, r.msg.MessageID, err)
	}
}

// renderBar draws the ●/○ block bar for a 0-100 percentage.
func renderBar(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * barSlots / 100
	return "[" + strings.Repeat("●", filled) + strings.Repeat("○", barSlots-filled) + "]"
}

// renderTransfer formats a byte-transfer status. A zero total renders without
// percentage or ETA.
func renderTransfer(kind port.ProgressKind, current, total int64, elapsedSeconds float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s...\n", kind)

	if total > 0 {
		percent := int(current * 100 / total)
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		fmt.Fprintf(&b, "%s %d%%\n", renderBar(percent), percent)
		fmt.Fprintf(&b, "%s of %s\n", format.HumanBytes(float64(current)), format.HumanBytes(float64(total)))
	} else {
		fmt.Fprintf(&b, "%s so far\n", format.HumanBytes(float64(current)))
	}

	if elapsedSeconds > 0 && current > 0 {
		speed := float64(current) / elapsedSeconds
		fmt.Fprintf(&b, "Speed: %s/s", format.HumanBytes(speed))
		if total > 0 && speed > 0 {
			eta := int64(float64(total-current) / speed)
			fmt.Fprintf(&b, "\nETA: %s", format.Seconds(eta))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderEncode formats a transcode status from the parsed tool progress.
func renderEncode(p port.TranscodeProgress) string {
	if p.Done {
		return fmt.Sprintf("Processing...\n%s 100%%", renderBar(100))
	}
	var b strings.Builder
	b.WriteString("Processing...\n")
	fmt.Fprintf(&b, "%s %d%%\n", renderBar(p.Percent), p.Percent)
	fmt.Fprintf(&b, "Frame: %d\n", p.Frame)
	fmt.Fprintf(&b, "Time: %s of %s\n", format.Seconds(int64(p.ElapsedSeconds)), format.Seconds(int64(p.TotalSeconds)))
	fmt.Fprintf(&b, "Speed: %.2fx\n", p.Speed)
	if p.Speed <= 0 || p.ETASeconds <= 0 {
		b.WriteString("ETA: calculating...")
	} else {
		fmt.Fprintf(&b, "ETA: %s", format.Seconds(p.ETASeconds))
	}
	return b.String()
}
