package vo

// MediaKind tags the concrete media variant carried by a message.
type MediaKind string

const (
	MediaKindVideo    MediaKind = "video"
	MediaKindDocument MediaKind = "document"
	MediaKindAudio    MediaKind = "audio"
)

// MediaRef 媒体引用值对象
//
// Tagged union over the media variants the bot accepts. Handlers dispatch on
// Kind instead of probing optional attributes.
type MediaRef struct {
	Kind            MediaKind
	FileID          string
	FileName        string
	FileSize        int64
	DurationSeconds int
}

// IsZero reports whether no media is referenced.
func (m MediaRef) IsZero() bool {
	return m.FileID == ""
}

// NewVideoRef builds a reference to a platform video.
func NewVideoRef(fileID, fileName string, fileSize int64, durationSeconds int) MediaRef {
	return MediaRef{
		Kind:            MediaKindVideo,
		FileID:          fileID,
		FileName:        fileName,
		FileSize:        fileSize,
		DurationSeconds: durationSeconds,
	}
}

// NewDocumentRef builds a reference to a platform document.
func NewDocumentRef(fileID, fileName string, fileSize int64) MediaRef {
	return MediaRef{
		Kind:     MediaKindDocument,
		FileID:   fileID,
		FileName: fileName,
		FileSize: fileSize,
	}
}

// NewAudioRef builds a reference to a platform audio file.
func NewAudioRef(fileID, fileName string, fileSize int64, durationSeconds int) MediaRef {
	return MediaRef{
		Kind:            MediaKindAudio,
		FileID:          fileID,
		FileName:        fileName,
		FileSize:        fileSize,
		DurationSeconds: durationSeconds,
	}
}
