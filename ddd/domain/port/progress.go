package port

// ProgressKind selects the rendering of a throttled status update.
type ProgressKind string

const (
	ProgressDownloading ProgressKind = "Downloading"
	ProgressUploading   ProgressKind = "Uploading"
	ProgressProcessing  ProgressKind = "Processing"
)

// StatusReporter pushes user-facing status for one job. Implementations own
// the throttle; callers may invoke Report at arbitrary frequency.
type StatusReporter interface {
	// Report records transfer progress in bytes (total 0 means indeterminate).
	Report(current, total int64, kind ProgressKind)

	// ReportEncode records transcode progress parsed from the tool stream.
	ReportEncode(p TranscodeProgress)

	// Announce replaces the status text immediately, bypassing the throttle.
	// Best-effort: edit failures never propagate.
	Announce(text string)
}
