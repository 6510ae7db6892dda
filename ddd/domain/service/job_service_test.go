package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"compress-bot/ddd/domain/entity"
	"compress-bot/ddd/domain/gateway"
	"compress-bot/ddd/domain/port"
	"compress-bot/ddd/domain/vo"
	"compress-bot/pkg/errno"
)

type fakeMessenger struct {
	downloadErr error
	uploadErr   error
	sentVideos  []string
	sentDocs    []string
	edits       []string
}

func (f *fakeMessenger) ReplyText(_ context.Context, chatID int64, _ int, text string) (gateway.StatusMessage, error) {
	f.edits = append(f.edits, text)
	return gateway.StatusMessage{ChatID: chatID, MessageID: 1000}, nil
}

func (f *fakeMessenger) EditMessageText(_ context.Context, _ gateway.StatusMessage, text string) error {
	f.edits = append(f.edits, text)
	return nil
}

func (f *fakeMessenger) DeleteMessage(context.Context, gateway.StatusMessage) error { return nil }

func (f *fakeMessenger) DownloadMedia(_ context.Context, _ vo.MediaRef, localPath string, onProgress gateway.TransferProgress) (string, error) {
	if err := os.WriteFile(localPath, []byte("input-bytes"), 0o644); err != nil {
		return "", err
	}
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	if onProgress != nil {
		onProgress(11, 11)
	}
	return localPath, nil
}

func (f *fakeMessenger) SendVideo(_ context.Context, _ int64, _ int, path, _, _ string, _ gateway.TransferProgress) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.sentVideos = append(f.sentVideos, path)
	return nil
}

func (f *fakeMessenger) SendDocument(_ context.Context, _ int64, _ int, path, _, _ string, _ gateway.TransferProgress) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.sentDocs = append(f.sentDocs, path)
	return nil
}

func (f *fakeMessenger) SendPhoto(context.Context, int64, string, string) error { return nil }

type fakeExecutor struct {
	compressErr error
	extractErr  error
}

func (f *fakeExecutor) Compress(_ context.Context, _ *entity.JobEntity, outputPath string, _ port.TranscodeOptions) (*port.TranscodeResult, error) {
	if f.compressErr != nil {
		return nil, f.compressErr
	}
	if err := os.WriteFile(outputPath, []byte("out"), 0o644); err != nil {
		return nil, err
	}
	return &port.TranscodeResult{OutputPath: outputPath, InputSize: 11, OutputSize: 3, CompressionRatio: 72.7}, nil
}

func (f *fakeExecutor) ExtractTrack(_ context.Context, _ *entity.JobEntity, _ vo.Track, outputPath string, _ port.TranscodeOptions) (*port.TranscodeResult, error) {
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	if err := os.WriteFile(outputPath, []byte("aud"), 0o644); err != nil {
		return nil, err
	}
	return &port.TranscodeResult{OutputPath: outputPath, InputSize: 11, OutputSize: 3}, nil
}

type fakeInspector struct {
	tracks []vo.Track
	err    error
}

func (f *fakeInspector) InspectAudioTracks(context.Context, string) ([]vo.Track, error) {
	return f.tracks, f.err
}

type nopReporter struct {
	announcements []string
}

func (r *nopReporter) Report(int64, int64, port.ProgressKind) {}
func (r *nopReporter) ReportEncode(port.TranscodeProgress)    {}
func (r *nopReporter) Announce(text string)                   { r.announcements = append(r.announcements, text) }

type fakeThumbRepo struct{ fileID string }

func (f *fakeThumbRepo) Set(_ context.Context, _ int64, fileID string) error {
	f.fileID = fileID
	return nil
}
func (f *fakeThumbRepo) Get(context.Context, int64) (string, error) { return f.fileID, nil }
func (f *fakeThumbRepo) Delete(context.Context, int64) (bool, error) {
	had := f.fileID != ""
	f.fileID = ""
	return had, nil
}

func newTestJobService(t *testing.T, m *fakeMessenger, ex *fakeExecutor, in *fakeInspector, rep *nopReporter) JobService {
	t.Helper()
	return NewJobService(
		m, nil, in, ex,
		NewThumbnailService(&fakeThumbRepo{}),
		func(gateway.StatusMessage) port.StatusReporter { return rep },
		t.TempDir(),
		2*1024*1024*1024,
	)
}

func testMedia() vo.MediaRef {
	return vo.NewVideoRef("file-abc", "clip.mp4", 11, 60)
}

func TestRunCompressHappyPath(t *testing.T) {
	m := &fakeMessenger{}
	rep := &nopReporter{}
	svc := newTestJobService(t, m, &fakeExecutor{}, &fakeInspector{}, rep)

	job := entity.NewJobEntity(entity.JobKindCompress, 1, 2, 3, testMedia(), vo.DefaultEncodeSettings())
	if err := svc.Run(context.Background(), job); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if job.State() != vo.JobStateCompleted {
		t.Fatalf("state = %s, want %s", job.State(), vo.JobStateCompleted)
	}
	if len(m.sentVideos) != 1 {
		t.Fatalf("sent videos = %d, want 1", len(m.sentVideos))
	}
	if got := filepath.Base(m.sentVideos[0]); got != "clip_480p.mp4" {
		t.Errorf("output name = %q, want clip_480p.mp4", got)
	}
	for _, p := range job.LocalPaths() {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("local path %s not cleaned up", p)
		}
	}
}

func TestRunCleansUpOnDownloadFailure(t *testing.T) {
	m := &fakeMessenger{downloadErr: errors.New("network reset")}
	rep := &nopReporter{}
	svc := newTestJobService(t, m, &fakeExecutor{}, &fakeInspector{}, rep)

	job := entity.NewJobEntity(entity.JobKindCompress, 1, 2, 3, testMedia(), vo.DefaultEncodeSettings())
	if err := svc.Run(context.Background(), job); err == nil {
		t.Fatal("Run() error = nil, want download failure")
	}

	if job.State() != vo.JobStateFailed {
		t.Fatalf("state = %s, want %s", job.State(), vo.JobStateFailed)
	}
	// The partially downloaded file must be gone despite the failure.
	for _, p := range job.LocalPaths() {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("partial file %s not cleaned up", p)
		}
	}
	if len(rep.announcements) == 0 || !strings.Contains(rep.announcements[len(rep.announcements)-1], "Download failed") {
		t.Errorf("missing failure announcement, got %v", rep.announcements)
	}
}

func TestRunCleansUpOnTranscodeFailure(t *testing.T) {
	m := &fakeMessenger{}
	rep := &nopReporter{}
	svc := newTestJobService(t, m, &fakeExecutor{compressErr: errors.New("encoder exploded")}, &fakeInspector{}, rep)

	job := entity.NewJobEntity(entity.JobKindCompress, 1, 2, 3, testMedia(), vo.DefaultEncodeSettings())
	if err := svc.Run(context.Background(), job); err == nil {
		t.Fatal("Run() error = nil, want transcode failure")
	}
	if job.State() != vo.JobStateFailed {
		t.Fatalf("state = %s, want %s", job.State(), vo.JobStateFailed)
	}
	for _, p := range job.LocalPaths() {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("local path %s not cleaned up", p)
		}
	}
	if len(m.sentVideos) != 0 {
		t.Errorf("uploaded %d artifacts after failure, want 0", len(m.sentVideos))
	}
}

func TestRunExtractUploadsEveryTrack(t *testing.T) {
	m := &fakeMessenger{}
	rep := &nopReporter{}
	// Inspectors hand back normalized language labels, never raw tags.
	in := &fakeInspector{tracks: []vo.Track{
		{MapIndex: 1, Codec: "aac", Language: "English"},
		{MapIndex: 2, Codec: "opus", Language: "Japanese"},
	}}
	svc := newTestJobService(t, m, &fakeExecutor{}, in, rep)

	job := entity.NewJobEntity(entity.JobKindExtractAudio, 1, 2, 3, testMedia(), vo.DefaultEncodeSettings())
	if err := svc.Run(context.Background(), job); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(m.sentDocs) != 2 {
		t.Fatalf("sent documents = %d, want 2", len(m.sentDocs))
	}
	if got := filepath.Base(m.sentDocs[0]); got != "clip_English_track1.aac" {
		t.Errorf("track 1 name = %q", got)
	}
	if got := filepath.Base(m.sentDocs[1]); got != "clip_Japanese_track2.opus" {
		t.Errorf("track 2 name = %q", got)
	}
}

func TestRunExtractNoTracksFails(t *testing.T) {
	m := &fakeMessenger{}
	rep := &nopReporter{}
	svc := newTestJobService(t, m, &fakeExecutor{}, &fakeInspector{tracks: nil}, rep)

	job := entity.NewJobEntity(entity.JobKindExtractAudio, 1, 2, 3, testMedia(), vo.DefaultEncodeSettings())
	err := svc.Run(context.Background(), job)
	if !errors.Is(err, errno.ErrNoAudioTracks) {
		t.Fatalf("Run() error = %v, want ErrNoAudioTracks", err)
	}
	if job.State() != vo.JobStateFailed {
		t.Fatalf("state = %s, want %s", job.State(), vo.JobStateFailed)
	}
	if len(m.sentDocs) != 0 {
		t.Errorf("uploaded %d artifacts, want 0", len(m.sentDocs))
	}
}

func TestValidateMedia(t *testing.T) {
	svc := newTestJobService(t, &fakeMessenger{}, &fakeExecutor{}, &fakeInspector{}, &nopReporter{})

	if err := svc.ValidateMedia(vo.MediaRef{}); !errors.Is(err, errno.ErrMediaMissing) {
		t.Errorf("empty media error = %v, want ErrMediaMissing", err)
	}
	huge := vo.NewDocumentRef("id", "big.mkv", 3*1024*1024*1024)
	if err := svc.ValidateMedia(huge); !errors.Is(err, errno.ErrFileTooLarge) {
		t.Errorf("oversize error = %v, want ErrFileTooLarge", err)
	}
	if err := svc.ValidateMedia(testMedia()); err != nil {
		t.Errorf("valid media error = %v, want nil", err)
	}
}
