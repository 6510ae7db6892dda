package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"compress-bot/ddd/domain/entity"
	"compress-bot/ddd/domain/gateway"
	"compress-bot/ddd/domain/port"
	"compress-bot/ddd/domain/vo"
	"compress-bot/pkg/errno"
	"compress-bot/pkg/format"
	"compress-bot/pkg/logger"
)

// maxDiagnosticChars bounds the tool diagnostics quoted in a failure edit.
const maxDiagnosticChars = 900

// ReporterFactory binds a status reporter to a freshly created status
// message.
type ReporterFactory func(msg gateway.StatusMessage) port.StatusReporter

// JobService drives a job through download → (inspect) → process → upload →
// cleanup. Cleanup of every local path is unconditional on both terminal
// transitions.
type JobService interface {
	// ValidateMedia checks the preconditions that must hold before a job is
	// even enqueued: media present and within the size bound.
	ValidateMedia(media vo.MediaRef) error

	// Run executes the job to a terminal state. The returned error is the
	// job-fatal cause, already surfaced to the user; callers only log it.
	Run(ctx context.Context, job *entity.JobEntity) error
}

type jobServiceImpl struct {
	messenger   gateway.MessengerGateway
	archive     gateway.ArchiveGateway
	inspector   port.MediaInspector
	executor    port.TranscodeExecutor
	thumbs      ThumbnailService
	newReporter ReporterFactory
	workRoot    string
	maxFileSize int64
}

// NewJobService 创建任务编排领域服务
func NewJobService(
	messenger gateway.MessengerGateway,
	archive gateway.ArchiveGateway,
	inspector port.MediaInspector,
	executor port.TranscodeExecutor,
	thumbs ThumbnailService,
	newReporter ReporterFactory,
	workRoot string,
	maxFileSize int64,
) JobService {
	return &jobServiceImpl{
		messenger:   messenger,
		archive:     archive,
		inspector:   inspector,
		executor:    executor,
		thumbs:      thumbs,
		newReporter: newReporter,
		workRoot:    workRoot,
		maxFileSize: maxFileSize,
	}
}

func (s *jobServiceImpl) ValidateMedia(media vo.MediaRef) error {
	if media.IsZero() {
		return errno.ErrMediaMissing
	}
	if media.FileSize > s.maxFileSize {
		return errno.ErrFileTooLarge
	}
	return nil
}

func (s *jobServiceImpl) Run(ctx context.Context, job *entity.JobEntity) error {
	if err := s.ValidateMedia(job.MediaRef()); err != nil {
		return err
	}

	statusMsg, err := s.messenger.ReplyText(ctx, job.ChatID(), job.MessageID(), "📥 Starting download...")
	if err != nil {
		return fmt.Errorf("create status message: %w", err)
	}
	reporter := s.newReporter(statusMsg)

	workDir := filepath.Join(s.workRoot, job.JobID())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return s.fail(job, reporter, "could not prepare working directory", err)
	}

	// Unconditional cleanup on every exit path, success or failure.
	// Removal errors are deliberately ignored.
	defer func() {
		for _, p := range job.LocalPaths() {
			_ = os.Remove(p)
		}
		_ = os.Remove(workDir)
	}()

	if err := job.BeginDownload(); err != nil {
		return s.fail(job, reporter, "internal state error", err)
	}
	inputPath, err := s.download(ctx, job, workDir, reporter)
	if err != nil {
		return s.fail(job, reporter, "Download failed", err)
	}
	job.SetInputPath(inputPath)

	switch job.Kind() {
	case entity.JobKindExtractAudio:
		err = s.runExtract(ctx, job, workDir, reporter)
	default:
		err = s.runCompress(ctx, job, workDir, reporter)
	}
	if err != nil {
		return err
	}

	if err := s.upload(ctx, job, reporter); err != nil {
		return s.fail(job, reporter, "Upload failed", err)
	}

	if err := job.Complete(); err != nil {
		return s.fail(job, reporter, "internal state error", err)
	}
	logger.Info("job completed", map[string]interface{}{
		"job_id":   job.JobID(),
		"kind":     string(job.Kind()),
		"chat_id":  job.ChatID(),
		"duration": time.Since(job.CreatedAt()).String(),
	})
	return nil
}

func (s *jobServiceImpl) download(ctx context.Context, job *entity.JobEntity, workDir string, reporter port.StatusReporter) (string, error) {
	media := job.MediaRef()
	name := format.SanitizeFilename(media.FileName)
	if name == "" {
		name = fmt.Sprintf("media_%d", time.Now().Unix())
	}
	localPath := filepath.Join(workDir, name)

	path, err := s.messenger.DownloadMedia(ctx, media, localPath, func(current, total int64) {
		reporter.Report(current, total, port.ProgressDownloading)
	})
	if err != nil {
		// Any partial file is swept by the deferred cleanup.
		job.SetInputPath(localPath)
		return "", errno.ErrDownloadFailed.WithCause(err)
	}
	return path, nil
}

func (s *jobServiceImpl) runCompress(ctx context.Context, job *entity.JobEntity, workDir string, reporter port.StatusReporter) error {
	if err := job.BeginProcess(); err != nil {
		return s.fail(job, reporter, "internal state error", err)
	}
	reporter.Announce("🔄 Starting compression...")

	base := strings.TrimSuffix(filepath.Base(job.InputPath()), filepath.Ext(job.InputPath()))
	outputPath := filepath.Join(workDir, base+outputSuffix(job.Settings().Resolution)+".mp4")
	job.AddSidePath(outputPath + ".progress")

	started := time.Now()
	result, err := s.executor.Compress(ctx, job, outputPath, port.TranscodeOptions{
		TotalDurationSeconds: job.MediaRef().DurationSeconds,
		ProgressCb:           reporter.ReportEncode,
	})
	if err != nil {
		job.AddOutputPath(outputPath)
		return s.fail(job, reporter, "Compression failed", err)
	}
	job.AddOutputPath(result.OutputPath)

	reporter.Announce(fmt.Sprintf(
		"✅ Compression completed!\n\nOriginal: %s\nCompressed: %s\nSaved: %.1f%%\nTime: %s",
		format.HumanBytes(float64(result.InputSize)),
		format.HumanBytes(float64(result.OutputSize)),
		result.CompressionRatio,
		format.Seconds(int64(time.Since(started).Seconds())),
	))
	return nil
}

func (s *jobServiceImpl) runExtract(ctx context.Context, job *entity.JobEntity, workDir string, reporter port.StatusReporter) error {
	if err := job.BeginInspect(); err != nil {
		return s.fail(job, reporter, "internal state error", err)
	}
	reporter.Announce("🔍 Inspecting audio tracks...")

	tracks, err := s.inspector.InspectAudioTracks(ctx, job.InputPath())
	if err != nil {
		return s.fail(job, reporter, "Media inspection failed", err)
	}
	if len(tracks) == 0 {
		// Valid probe result, terminal for extraction.
		return s.fail(job, reporter, "No audio tracks found in this file", errno.ErrNoAudioTracks)
	}

	base := strings.TrimSuffix(filepath.Base(job.InputPath()), filepath.Ext(job.InputPath()))
	for i, track := range tracks {
		if err := job.BeginProcess(); err != nil {
			return s.fail(job, reporter, "internal state error", err)
		}
		reporter.Announce(fmt.Sprintf("🎵 Extracting track %d/%d: %s", i+1, len(tracks), track.Describe()))

		outputPath := filepath.Join(workDir, track.OutputFileName(base, i+1))
		job.AddSidePath(outputPath + ".progress")

		result, err := s.executor.ExtractTrack(ctx, job, track, outputPath, port.TranscodeOptions{
			ProgressCb: reporter.ReportEncode,
		})
		if err != nil {
			job.AddOutputPath(outputPath)
			return s.fail(job, reporter, fmt.Sprintf("Extraction of track %d failed", i+1), err)
		}
		job.AddOutputPath(result.OutputPath)
	}
	return nil
}

func (s *jobServiceImpl) upload(ctx context.Context, job *entity.JobEntity, reporter port.StatusReporter) error {
	if err := job.BeginUpload(); err != nil {
		return err
	}
	thumbFileID := s.thumbs.Current(ctx, job.UserID())

	for _, outputPath := range job.OutputPaths() {
		reporter.Announce("📤 Uploading " + filepath.Base(outputPath) + "...")
		onProgress := func(current, total int64) {
			reporter.Report(current, total, port.ProgressUploading)
		}

		var err error
		if job.Kind() == entity.JobKindCompress {
			caption := fmt.Sprintf("🎥 Compressed with %s (CRF %d, %s)",
				job.Settings().Codec, job.Settings().CRF, job.Settings().Resolution)
			err = s.messenger.SendVideo(ctx, job.ChatID(), job.MessageID(), outputPath, caption, thumbFileID, onProgress)
		} else {
			err = s.messenger.SendDocument(ctx, job.ChatID(), job.MessageID(), outputPath, "", thumbFileID, onProgress)
		}
		if err != nil {
			return errno.ErrUploadFailed.WithCause(err)
		}

		s.archiveArtifact(ctx, job, outputPath)
	}

	reporter.Announce("✅ Done!")
	return nil
}

// archiveArtifact pushes a finished artifact to the optional archive bucket.
// Best-effort: failures are logged, never surfaced.
func (s *jobServiceImpl) archiveArtifact(ctx context.Context, job *entity.JobEntity, outputPath string) {
	if s.archive == nil || !s.archive.Enabled() {
		return
	}
	objectKey := job.JobID() + "/" + filepath.Base(outputPath)
	if err := s.archive.ArchiveArtifact(ctx, outputPath, objectKey); err != nil {
		logger.Warnf("artifact archive failed job_id=%s object_key=%s: %v", job.JobID(), objectKey, err)
	}
}

// fail records the terminal failure and posts the single failure edit the
// user sees. The returned error carries the underlying cause for logs.
func (s *jobServiceImpl) fail(job *entity.JobEntity, reporter port.StatusReporter, userMsg string, cause error) error {
	detail := ""
	if cause != nil {
		detail = truncateDiagnostic(cause.Error())
	}
	_ = job.Fail(detail)

	text := "❌ " + userMsg
	if detail != "" {
		text += "\n\n" + detail
	}
	reporter.Announce(text)

	logger.Error("job failed", map[string]interface{}{
		"job_id":  job.JobID(),
		"kind":    string(job.Kind()),
		"chat_id": job.ChatID(),
		"reason":  userMsg,
		"error":   detail,
	})
	if cause != nil {
		return cause
	}
	return errno.ErrUnknown
}

func truncateDiagnostic(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= maxDiagnosticChars {
		return text
	}
	return text[:maxDiagnosticChars] + "…"
}

// outputSuffix derives the "_480p" style suffix from a WxH resolution.
func outputSuffix(resolution string) string {
	parts := strings.SplitN(resolution, "x", 2)
	if len(parts) == 2 && parts[1] != "" {
		return "_" + parts[1] + "p"
	}
	return "_compressed"
}
