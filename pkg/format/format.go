package format

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	illegalChars = regexp.MustCompile(`[\\/:*?"<>|]`)
	spaceRuns    = regexp.MustCompile(`\s+`)
)

// SanitizeFilename strips characters that are unsafe in local file names and
// collapses whitespace runs to a single space.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = illegalChars.ReplaceAllString(name, "_")
	name = spaceRuns.ReplaceAllString(name, " ")
	return name
}

// HumanBytes renders a byte count in binary units (B, KB, MB, GB, TB).
func HumanBytes(size float64) string {
	if size <= 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB", "TB"}
	n := 0
	for size >= 1024 && n < len(units)-1 {
		size /= 1024
		n++
	}
	return fmt.Sprintf("%.2f %s", size, units[n])
}

// Seconds renders a duration in seconds as "1h 2m 3s", omitting zero units.
func Seconds(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	parts := make([]string, 0, 3)
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if s > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	return strings.Join(parts, " ")
}
