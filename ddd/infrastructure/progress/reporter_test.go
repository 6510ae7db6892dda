package progress

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"compress-bot/ddd/domain/gateway"
	"compress-bot/ddd/domain/port"
	"compress-bot/ddd/domain/vo"
)

type recordingMessenger struct {
	edits   []string
	editErr error
}

func (m *recordingMessenger) ReplyText(_ context.Context, chatID int64, _ int, _ string) (gateway.StatusMessage, error) {
	return gateway.StatusMessage{ChatID: chatID, MessageID: 1}, nil
}

func (m *recordingMessenger) EditMessageText(_ context.Context, _ gateway.StatusMessage, text string) error {
	m.edits = append(m.edits, text)
	return m.editErr
}

func (m *recordingMessenger) DeleteMessage(context.Context, gateway.StatusMessage) error { return nil }

func (m *recordingMessenger) DownloadMedia(context.Context, vo.MediaRef, string, gateway.TransferProgress) (string, error) {
	return "", nil
}

func (m *recordingMessenger) SendVideo(context.Context, int64, int, string, string, string, gateway.TransferProgress) error {
	return nil
}

func (m *recordingMessenger) SendDocument(context.Context, int64, int, string, string, string, gateway.TransferProgress) error {
	return nil
}

func (m *recordingMessenger) SendPhoto(context.Context, int64, string, string) error { return nil }

// fakeClock lets tests step the reporter's view of time.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestReporter(m *recordingMessenger) (*MessageReporter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	r := NewMessageReporter(m, gateway.StatusMessage{ChatID: 1, MessageID: 2})
	r.now = clock.Now
	r.lastEdit = clock.t.Add(-editInterval)
	r.startedAt = clock.t
	return r, clock
}

func TestReportFirstCallEditsImmediately(t *testing.T) {
	m := &recordingMessenger{}
	r, _ := newTestReporter(m)

	r.Report(50, 100, port.ProgressDownloading)
	if len(m.edits) != 1 {
		t.Fatalf("edits = %d, want 1", len(m.edits))
	}
	if !strings.HasPrefix(m.edits[0], "Downloading...") {
		t.Errorf("edit text = %q", m.edits[0])
	}
	if !strings.Contains(m.edits[0], "50%") {
		t.Errorf("edit text missing percent: %q", m.edits[0])
	}
}

func TestReportThrottlesWithinInterval(t *testing.T) {
	m := &recordingMessenger{}
	r, clock := newTestReporter(m)

	r.Report(10, 100, port.ProgressDownloading)
	clock.Advance(2 * time.Second)
	r.Report(20, 100, port.ProgressDownloading)
	clock.Advance(2 * time.Second)
	r.Report(30, 100, port.ProgressDownloading)
	if len(m.edits) != 1 {
		t.Fatalf("edits within interval = %d, want 1", len(m.edits))
	}

	clock.Advance(editInterval)
	r.Report(40, 100, port.ProgressDownloading)
	if len(m.edits) != 2 {
		t.Fatalf("edits after interval = %d, want 2", len(m.edits))
	}
}

func TestAnnounceBypassesThrottle(t *testing.T) {
	m := &recordingMessenger{}
	r, clock := newTestReporter(m)

	r.Report(10, 100, port.ProgressDownloading)
	clock.Advance(time.Second)
	r.Announce("step one")
	clock.Advance(time.Second)
	r.Announce("step two")
	if len(m.edits) != 3 {
		t.Fatalf("edits = %d, want 3", len(m.edits))
	}
}

func TestIdenticalTextNotReedited(t *testing.T) {
	m := &recordingMessenger{}
	r, _ := newTestReporter(m)

	r.Announce("same")
	r.Announce("same")
	if len(m.edits) != 1 {
		t.Fatalf("edits = %d, want 1", len(m.edits))
	}
}

func TestEditErrorsAreSwallowed(t *testing.T) {
	m := &recordingMessenger{editErr: errors.New("flood wait")}
	r, _ := newTestReporter(m)

	// Must not panic or propagate.
	r.Announce("hello")
	r.Report(10, 100, port.ProgressUploading)
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		percent int
		filled  int
	}{
		{0, 0},
		{8, 1},
		{50, 10},
		{100, 20},
		{150, 20},
		{-5, 0},
	}
	for _, tt := range tests {
		bar := renderBar(tt.percent)
		if got := strings.Count(bar, "●"); got != tt.filled {
			t.Errorf("renderBar(%d) filled = %d, want %d", tt.percent, got, tt.filled)
		}
		if got := strings.Count(bar, "○"); got != barSlots-tt.filled {
			t.Errorf("renderBar(%d) empty = %d, want %d", tt.percent, got, barSlots-tt.filled)
		}
	}
}

func TestRenderTransferWithSpeedAndETA(t *testing.T) {
	// 50 MB of 100 MB in 10s: 5 MB/s, 10s remaining.
	text := renderTransfer(port.ProgressUploading, 50<<20, 100<<20, 10)
	if !strings.Contains(text, "Uploading...") {
		t.Errorf("missing kind: %q", text)
	}
	if !strings.Contains(text, "50.00 MB of 100.00 MB") {
		t.Errorf("missing sizes: %q", text)
	}
	if !strings.Contains(text, "Speed: 5.00 MB/s") {
		t.Errorf("missing speed: %q", text)
	}
	if !strings.Contains(text, "ETA: 10s") {
		t.Errorf("missing eta: %q", text)
	}
}

func TestRenderTransferClampsOvershoot(t *testing.T) {
	// A counting reader can report slightly more bytes than the expected
	// total; the printed percent still tops out at 100.
	text := renderTransfer(port.ProgressUploading, 110<<20, 100<<20, 10)
	if !strings.Contains(text, " 100%") {
		t.Errorf("overshoot not clamped: %q", text)
	}
	if strings.Contains(text, "110%") {
		t.Errorf("percent above 100 rendered: %q", text)
	}
}

func TestRenderTransferIndeterminateTotal(t *testing.T) {
	text := renderTransfer(port.ProgressDownloading, 1<<20, 0, 2)
	if strings.Contains(text, "%") {
		t.Errorf("indeterminate transfer rendered a percentage: %q", text)
	}
	if !strings.Contains(text, "1.00 MB so far") {
		t.Errorf("missing running size: %q", text)
	}
}

func TestRenderEncode(t *testing.T) {
	text := renderEncode(port.TranscodeProgress{
		Percent:        8,
		Frame:          100,
		ElapsedSeconds: 5,
		TotalSeconds:   60,
		Speed:          2,
		ETASeconds:     27,
	})
	for _, want := range []string{"Processing...", "8%", "Frame: 100", "5s of 1m", "Speed: 2.00x", "ETA: 27s"} {
		if !strings.Contains(text, want) {
			t.Errorf("renderEncode missing %q in %q", want, text)
		}
	}
}

func TestRenderEncodeDegenerateETA(t *testing.T) {
	tests := []struct {
		name string
		p    port.TranscodeProgress
	}{
		{"zero speed", port.TranscodeProgress{Percent: 1, Frame: 1, ElapsedSeconds: 1, TotalSeconds: 60, Speed: 0, ETASeconds: 59}},
		{"zero eta", port.TranscodeProgress{Percent: 1, Frame: 1, ElapsedSeconds: 1, TotalSeconds: 60, Speed: 1, ETASeconds: 0}},
	}
	for _, tt := range tests {
		text := renderEncode(tt.p)
		if !strings.Contains(text, "ETA: calculating...") {
			t.Errorf("%s: missing calculating marker in %q", tt.name, text)
		}
	}
}
