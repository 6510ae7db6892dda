package vo

import (
	"fmt"
	"strings"

	"compress-bot/pkg/format"
)

// Track 音轨值对象
//
// One audio stream found in a container. MapIndex is the absolute stream
// index as reported by the probe tool, which is what the transcode tool's
// -map option addresses.
type Track struct {
	MapIndex int
	Codec    string
	Language string
	Title    string
}

// languageTable maps lower-cased ISO 639-1/639-2 codes to display labels.
var languageTable = map[string]string{
	"eng": "English", "en": "English",
	"hin": "Hindi", "hi": "Hindi",
	"jpn": "Japanese", "ja": "Japanese",
	"tam": "Tamil", "ta": "Tamil",
	"tel": "Telugu", "te": "Telugu",
	"kan": "Kannada", "kn": "Kannada",
	"mar": "Marathi", "mr": "Marathi",
	"ben": "Bengali", "bn": "Bengali",
	"urd": "Urdu", "ur": "Urdu",
	"fra": "French", "fr": "French",
	"spa": "Spanish", "es": "Spanish",
	"unk": "Unknown",
}

// NormalizeLanguage turns a raw language tag into a display label. Unknown
// codes are echoed back capitalized, an absent tag becomes "Unknown".
func NormalizeLanguage(lang string) string {
	l := strings.ToLower(strings.TrimSpace(lang))
	if l == "" {
		return "Unknown"
	}
	if label, ok := languageTable[l]; ok {
		return label
	}
	return capitalize(lang)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// OutputFileName derives the artifact file name for an extracted track:
// sanitized base, sanitized language label, ordinal track number and the
// codec name as extension ("audio" when the codec is unknown).
func (t Track) OutputFileName(baseName string, trackNo int) string {
	safeBase := format.SanitizeFilename(baseName)
	safeLang := strings.ReplaceAll(format.SanitizeFilename(t.Language), " ", "_")
	ext := t.Codec
	if ext == "" {
		ext = "audio"
	}
	return fmt.Sprintf("%s_%s_track%d.%s", safeBase, safeLang, trackNo, ext)
}

// Describe renders the track for a selection reply.
func (t Track) Describe() string {
	if t.Title != "" {
		return fmt.Sprintf("%s (%s) — %s", t.Language, t.Codec, t.Title)
	}
	return fmt.Sprintf("%s (%s)", t.Language, t.Codec)
}
