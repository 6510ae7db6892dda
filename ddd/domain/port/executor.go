package port

import (
	"context"

	"compress-bot/ddd/domain/entity"
	"compress-bot/ddd/domain/vo"
)

// TranscodeProgress is one parsed snapshot of the external tool's progress
// stream.
type TranscodeProgress struct {
	Percent        int
	Frame          int64
	ElapsedSeconds float64
	TotalSeconds   float64
	Speed          float64
	ETASeconds     int64
	Done           bool
}

// ProgressCallback is invoked by executors on every parsed progress snapshot.
// Throttling is the reporter's concern, not the executor's.
type ProgressCallback func(p TranscodeProgress)

// TranscodeResult describes a finished transcode or extraction.
type TranscodeResult struct {
	OutputPath       string
	InputSize        int64
	OutputSize       int64
	CompressionRatio float64
}

// TranscodeOptions controls executor behaviour.
type TranscodeOptions struct {
	ProgressCb           ProgressCallback
	TotalDurationSeconds int
}

// TranscodeExecutor runs the external media tool for one job step.
type TranscodeExecutor interface {
	// Compress re-encodes the job's input file according to its settings
	// snapshot and writes the artifact to outputPath.
	Compress(ctx context.Context, job *entity.JobEntity, outputPath string, opts TranscodeOptions) (*TranscodeResult, error)

	// ExtractTrack stream-copies one audio track addressed by its absolute
	// stream index to outputPath.
	ExtractTrack(ctx context.Context, job *entity.JobEntity, track vo.Track, outputPath string, opts TranscodeOptions) (*TranscodeResult, error)
}

// MediaInspector probes a local file for audio tracks.
type MediaInspector interface {
	// InspectAudioTracks returns the audio streams found in the container,
	// with language tags normalized to display labels. Zero tracks is a
	// valid result, not an error.
	InspectAudioTracks(ctx context.Context, path string) ([]vo.Track, error)
}
