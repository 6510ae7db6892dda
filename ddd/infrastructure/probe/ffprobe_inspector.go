package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"compress-bot/ddd/domain/vo"
	"compress-bot/pkg/config"
	"compress-bot/pkg/errno"
	"compress-bot/pkg/logger"
)

// FFprobeInspector implements port.MediaInspector on a local ffprobe binary.
type FFprobeInspector struct {
	cfg *config.Config
}

func NewFFprobeInspector(cfg *config.Config) *FFprobeInspector {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	return &FFprobeInspector{cfg: cfg}
}

type probeReport struct {
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	Tags      struct {
		Language string `json:"language"`
		Title    string `json:"title"`
	} `json:"tags"`
}

func (p *FFprobeInspector) InspectAudioTracks(ctx context.Context, path string) ([]vo.Track, error) {
	binary := "ffprobe"
	if p.cfg != nil && p.cfg.Transcode.FFmpeg.ProbePath != "" {
		binary = p.cfg.Transcode.FFmpeg.ProbePath
	}

	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-select_streams", "a",
		"-show_entries", "stream=index,codec_name:stream_tags=language,title",
		"-of", "json",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			err = fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, errno.ErrProbeFailed.WithCause(err)
	}

	var report probeReport
	if err := json.Unmarshal(out, &report); err != nil {
		return nil, errno.ErrProbeFailed.WithCause(err)
	}

	tracks := parseTracks(report)
	logger.Debugf("ffprobe found %d audio tracks in %s", len(tracks), path)
	return tracks, nil
}

// parseTracks maps the raw report to tracks. The stream index is the absolute
// index within the container, usable directly in a -map specifier. Language
// tags are normalized to display labels here so every consumer sees the same
// name.
func parseTracks(report probeReport) []vo.Track {
	tracks := make([]vo.Track, 0, len(report.Streams))
	for _, s := range report.Streams {
		tracks = append(tracks, vo.Track{
			MapIndex: s.Index,
			Codec:    s.CodecName,
			Language: vo.NormalizeLanguage(s.Tags.Language),
			Title:    s.Tags.Title,
		})
	}
	return tracks
}
