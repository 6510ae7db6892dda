package executor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"compress-bot/ddd/domain/entity"
	"compress-bot/ddd/domain/port"
	"compress-bot/ddd/domain/vo"
	"compress-bot/pkg/config"
	"compress-bot/pkg/errno"
	"compress-bot/pkg/logger"
)

// fallbackDurationSeconds is used when neither the platform metadata nor the
// stderr banner yields a duration.
const fallbackDurationSeconds = 3600

// progressPollInterval is how often the -progress side file is re-read.
const progressPollInterval = 3 * time.Second

var durationBanner = regexp.MustCompile(`Duration: (\d+):(\d+):(\d+\.?\d*)`)

// FFmpegExecutor implements port.TranscodeExecutor on a local ffmpeg binary.
// Progress flows through a -progress side file polled while the process runs;
// the side file is removed unconditionally when the run ends.
type FFmpegExecutor struct {
	cfg *config.Config
}

func NewFFmpegExecutor(cfg *config.Config) *FFmpegExecutor {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	return &FFmpegExecutor{cfg: cfg}
}

func (e *FFmpegExecutor) Compress(ctx context.Context, job *entity.JobEntity, outputPath string, opts port.TranscodeOptions) (*port.TranscodeResult, error) {
	progressPath := outputPath + ".progress"

	args := []string{"-i", job.InputPath()}
	args = append(args, job.Settings().FFmpegArgs()...)
	args = append(args, "-progress", progressPath, "-nostats", "-y", outputPath)

	total := float64(opts.TotalDurationSeconds)
	if err := e.run(ctx, args, progressPath, total, opts.ProgressCb); err != nil {
		return nil, errno.ErrTranscodeFailed.WithCause(err)
	}
	return buildResult(job.InputPath(), outputPath)
}

func (e *FFmpegExecutor) ExtractTrack(ctx context.Context, job *entity.JobEntity, track vo.Track, outputPath string, opts port.TranscodeOptions) (*port.TranscodeResult, error) {
	progressPath := outputPath + ".progress"

	// Stream copy only; the track is addressed by its absolute stream index.
	args := []string{
		"-i", job.InputPath(),
		"-map", fmt.Sprintf("0:%d", track.MapIndex),
		"-c", "copy",
		"-progress", progressPath,
		"-nostats",
		"-y", outputPath,
	}

	total := float64(opts.TotalDurationSeconds)
	if err := e.run(ctx, args, progressPath, total, opts.ProgressCb); err != nil {
		return nil, errno.ErrTranscodeFailed.WithCause(err)
	}
	return buildResult(job.InputPath(), outputPath)
}

// run starts ffmpeg and pumps progress until it exits. On non-zero exit the
// returned error carries the stderr tail as diagnostics.
func (e *FFmpegExecutor) run(ctx context.Context, args []string, progressPath string, totalSeconds float64, cb port.ProgressCallback) error {
	defer func() {
		_ = os.Remove(progressPath)
	}()

	// A stuck process is killed when the configured transcode timeout passes.
	ctx, cancel := e.runContext(ctx)
	defer cancel()

	binary := "ffmpeg"
	stderrCap := 200
	if e.cfg != nil {
		if e.cfg.Transcode.FFmpeg.BinaryPath != "" {
			binary = e.cfg.Transcode.FFmpeg.BinaryPath
		}
		if e.cfg.Transcode.FFmpeg.StderrLines > 0 {
			stderrCap = e.cfg.Transcode.FFmpeg.StderrLines
		}
	}

	cmd := exec.Command(binary, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("创建FFmpeg stderr管道失败: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("启动FFmpeg命令失败: %w", err)
	}
	logger.Debugf("ffmpeg started command=%s %s", binary, strings.Join(args, " "))

	// stderr carries the Duration banner and, on failure, the diagnostics.
	tracker := &durationTracker{seconds: totalSeconds}
	tail := newTailBuffer(stderrCap)
	stderrDone := make(chan struct{})
	go func() {
		defer close(stderrDone)
		scanStderr(stderr, tracker, tail)
	}()

	pollDone := make(chan struct{})
	pollStop := make(chan struct{})
	go func() {
		defer close(pollDone)
		e.pollProgress(progressPath, tracker, cb, pollStop)
	}()

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-done
		close(pollStop)
		<-pollDone
		<-stderrDone
		return ctx.Err()
	case err := <-done:
		close(pollStop)
		<-pollDone
		<-stderrDone
		if err != nil {
			diag := tail.Tail(50)
			if diag != "" {
				logger.Errorf("ffmpeg failed tail_stderr=%s", diag)
				return fmt.Errorf("%w: %s", err, diag)
			}
			return err
		}
		if cb != nil {
			cb(port.TranscodeProgress{Percent: 100, Done: true, Speed: 1})
		}
		return nil
	}
}

// runContext derives the execution context, bounded by transcode.ffmpeg.timeout
// when one is configured.
func (e *FFmpegExecutor) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg != nil && e.cfg.Transcode.FFmpeg.Timeout > 0 {
		return context.WithTimeout(ctx, e.cfg.Transcode.FFmpeg.Timeout)
	}
	return context.WithCancel(ctx)
}

// pollProgress re-reads the side file on a fixed interval and emits the most
// recent snapshot it contains.
func (e *FFmpegExecutor) pollProgress(progressPath string, tracker *durationTracker, cb port.ProgressCallback, stop <-chan struct{}) {
	if cb == nil {
		return
	}
	ticker := time.NewTicker(progressPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			data, err := os.ReadFile(progressPath)
			if err != nil {
				continue
			}
			snap := parseProgressDump(string(data))
			cb(computeProgress(snap, tracker.Get()))
		}
	}
}

func scanStderr(r io.Reader, tracker *durationTracker, tail *tailBuffer) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if m := durationBanner.FindStringSubmatch(line); len(m) == 4 {
			hh, _ := strconv.ParseFloat(m[1], 64)
			mm, _ := strconv.ParseFloat(m[2], 64)
			ss, _ := strconv.ParseFloat(m[3], 64)
			tracker.SetIfUnknown(hh*3600 + mm*60 + ss)
		}
		tail.Append(line)
	}
}

func buildResult(inputPath, outputPath string) (*port.TranscodeResult, error) {
	inInfo, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	outInfo, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("stat output: %w", err)
	}
	return &port.TranscodeResult{
		OutputPath:       outputPath,
		InputSize:        inInfo.Size(),
		OutputSize:       outInfo.Size(),
		CompressionRatio: compressionRatio(inInfo.Size(), outInfo.Size()),
	}, nil
}

// compressionRatio is the saved fraction of the input size, in percent.
// Negative when the output grew.
func compressionRatio(inputSize, outputSize int64) float64 {
	if inputSize <= 0 {
		return 0
	}
	return float64(inputSize-outputSize) / float64(inputSize) * 100
}

// durationTracker holds the best-known total duration. The stderr scanner may
// fill it in after polling has already begun.
type durationTracker struct {
	mu      sync.Mutex
	seconds float64
}

func (d *durationTracker) SetIfUnknown(seconds float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seconds <= 0 && seconds > 0 {
		d.seconds = seconds
	}
}

func (d *durationTracker) Get() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seconds
}

// progressSnapshot is the last occurrence of each key in one -progress dump.
// ffmpeg appends blocks, so later values win.
type progressSnapshot struct {
	frame         int64
	outTimeMicros int64
	speed         float64
	done          bool
}

// parseProgressDump scans a full -progress side file. Missing keys fall back
// to safe defaults (frame 1, one microsecond elapsed, speed 1.0) so a partial
// first dump never produces a division by zero.
func parseProgressDump(data string) progressSnapshot {
	snap := progressSnapshot{frame: 1, outTimeMicros: 1, speed: 1.0}
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "frame="):
			if v, err := strconv.ParseInt(strings.TrimPrefix(line, "frame="), 10, 64); err == nil && v > 0 {
				snap.frame = v
			}
		case strings.HasPrefix(line, "out_time_ms="):
			// Despite the name the unit is microseconds.
			if v, err := strconv.ParseInt(strings.TrimPrefix(line, "out_time_ms="), 10, 64); err == nil && v > 0 {
				snap.outTimeMicros = v
			}
		case strings.HasPrefix(line, "speed="):
			raw := strings.TrimSuffix(strings.TrimPrefix(line, "speed="), "x")
			if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && v > 0 {
				snap.speed = v
			}
		case strings.HasPrefix(line, "progress="):
			snap.done = strings.TrimPrefix(line, "progress=") == "end"
		}
	}
	return snap
}

// computeProgress derives the user-visible numbers from a snapshot. A missing
// total falls back to one hour rather than reporting garbage percentages.
func computeProgress(snap progressSnapshot, totalSeconds float64) port.TranscodeProgress {
	if totalSeconds <= 0 {
		totalSeconds = fallbackDurationSeconds
	}
	elapsed := float64(snap.outTimeMicros) / 1e6

	pct := int(elapsed * 100 / totalSeconds)
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	eta := int64((totalSeconds - elapsed) / snap.speed)
	if eta < 0 {
		eta = 0
	}

	return port.TranscodeProgress{
		Percent:        pct,
		Frame:          snap.frame,
		ElapsedSeconds: elapsed,
		TotalSeconds:   totalSeconds,
		Speed:          snap.speed,
		ETASeconds:     eta,
		Done:           snap.done,
	}
}

// tailBuffer keeps the last N stderr lines for failure diagnostics.
type tailBuffer struct {
	mu    sync.Mutex
	cap   int
	lines []string
}

func newTailBuffer(capacity int) *tailBuffer {
	return &tailBuffer{cap: capacity, lines: make([]string, 0, capacity)}
}

func (t *tailBuffer) Append(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.lines) >= t.cap {
		t.lines = t.lines[1:]
	}
	t.lines = append(t.lines, line)
}

// Tail joins the last n captured lines.
func (t *tailBuffer) Tail(n int) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	lines := t.lines
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
