package vo

import (
	"fmt"
	"regexp"
	"strconv"

	"compress-bot/pkg/errno"
)

// EncodeSettings 编码参数值对象
//
// A job copies the settings in effect when it is created; concurrent setting
// changes never affect an in-flight job.
type EncodeSettings struct {
	Codec        string
	CRF          int
	Resolution   string
	Preset       string
	AudioCodec   string
	AudioBitrate string
}

var validPresets = []string{"ultrafast", "superfast", "veryfast", "faster", "fast", "medium", "slow", "slower", "veryslow"}

// DefaultEncodeSettings returns the stock settings used until an admin
// changes them.
func DefaultEncodeSettings() EncodeSettings {
	return EncodeSettings{
		Codec:        "libx264",
		CRF:          25,
		Resolution:   "854x480",
		Preset:       "veryfast",
		AudioCodec:   "libopus",
		AudioBitrate: "48k",
	}
}

var resolutionPattern = regexp.MustCompile(`^\d{2,5}x\d{2,5}$`)

// SettingKeys enumerates the updatable keys in display order.
var SettingKeys = []string{"codec", "crf", "resolution", "preset", "audio", "audiobit"}

// Apply validates a single keyed update and returns the updated copy. The
// receiver is never mutated. Unknown keys are rejected against the allow-list.
func (s EncodeSettings) Apply(key, value string) (EncodeSettings, error) {
	switch key {
	case "codec":
		if value == "" {
			return s, errno.ErrInvalidParam
		}
		s.Codec = value
	case "crf":
		crf, err := strconv.Atoi(value)
		if err != nil {
			return s, errno.ErrCRFOutOfRange
		}
		if crf < 0 || crf > 51 {
			return s, errno.ErrCRFOutOfRange
		}
		s.CRF = crf
	case "resolution":
		if !resolutionPattern.MatchString(value) {
			return s, errno.ErrInvalidResolution
		}
		s.Resolution = value
	case "preset":
		if !isValidPreset(value) {
			return s, errno.ErrInvalidPreset
		}
		s.Preset = value
	case "audio":
		if value == "" {
			return s, errno.ErrInvalidParam
		}
		s.AudioCodec = value
	case "audiobit":
		if value == "" {
			return s, errno.ErrInvalidParam
		}
		s.AudioBitrate = value
	default:
		return s, errno.ErrSettingNotAllowed
	}
	return s, nil
}

func isValidPreset(preset string) bool {
	for _, p := range validPresets {
		if preset == p {
			return true
		}
	}
	return false
}

// ValidPresets returns the preset allow-list for usage messages.
func ValidPresets() []string {
	out := make([]string, len(validPresets))
	copy(out, validPresets)
	return out
}

// FFmpegArgs 获取FFmpeg参数
func (s EncodeSettings) FFmpegArgs() []string {
	return []string{
		"-c:v", s.Codec,
		"-crf", strconv.Itoa(s.CRF),
		"-s", s.Resolution,
		"-preset", s.Preset,
		"-c:a", s.AudioCodec,
		"-b:a", s.AudioBitrate,
	}
}

// FieldMap renders the settings as a flat map for hash persistence.
func (s EncodeSettings) FieldMap() map[string]string {
	return map[string]string{
		"codec":         s.Codec,
		"crf":           strconv.Itoa(s.CRF),
		"resolution":    s.Resolution,
		"preset":        s.Preset,
		"audio_codec":   s.AudioCodec,
		"audio_bitrate": s.AudioBitrate,
	}
}

// SettingsFromFieldMap rebuilds settings from a persisted hash, filling gaps
// from the provided defaults.
func SettingsFromFieldMap(fields map[string]string, defaults EncodeSettings) EncodeSettings {
	s := defaults
	if v, ok := fields["codec"]; ok && v != "" {
		s.Codec = v
	}
	if v, ok := fields["crf"]; ok && v != "" {
		if crf, err := strconv.Atoi(v); err == nil {
			s.CRF = crf
		}
	}
	if v, ok := fields["resolution"]; ok && v != "" {
		s.Resolution = v
	}
	if v, ok := fields["preset"]; ok && v != "" {
		s.Preset = v
	}
	if v, ok := fields["audio_codec"]; ok && v != "" {
		s.AudioCodec = v
	}
	if v, ok := fields["audio_bitrate"]; ok && v != "" {
		s.AudioBitrate = v
	}
	return s
}

// Describe renders the settings for a status reply.
func (s EncodeSettings) Describe() string {
	return fmt.Sprintf(
		"Current Video Compression Settings:\n\n"+
			"Codec: %s\nCRF: %d\nResolution: %s\nPreset: %s\nAudio Codec: %s\nAudio Bitrate: %s",
		s.Codec, s.CRF, s.Resolution, s.Preset, s.AudioCodec, s.AudioBitrate)
}
