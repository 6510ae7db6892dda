package errno

import "fmt"

// code=4xx 用户输入错误
// code=5xx 服务内部错误
// code=2xxxx 业务处理错误码

type Errno struct {
	Code    int
	Message string
}

// Error 实现error接口
func (e *Errno) Error() string {
	return e.Message
}

// WithCause returns a new error keeping the errno code and appending the
// underlying cause text. The original errno value stays untouched.
func (e *Errno) WithCause(cause error) *Errno {
	if cause == nil {
		return e
	}
	return &Errno{Code: e.Code, Message: fmt.Sprintf("%s: %v", e.Message, cause)}
}

// Is lets errors.Is match wrapped errnos by code.
func (e *Errno) Is(target error) bool {
	t, ok := target.(*Errno)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	OK = &Errno{Code: 200, Message: "Success"}

	ErrInvalidParam = &Errno{Code: 400, Message: "Invalid parameter"}
	ErrUnauthorized = &Errno{Code: 401, Message: "Unauthorized"}
	ErrNotFound     = &Errno{Code: 404, Message: "Not found"}

	ErrInternalServer = &Errno{Code: 500, Message: "Internal server error"}
	ErrPersistence    = &Errno{Code: 501, Message: "Store operation failed"}
	ErrUnknown        = &Errno{Code: 510, Message: "Unknown error"}

	// 业务错误码
	ErrMediaMissing      = &Errno{Code: 20001, Message: "No media found in the message"}
	ErrFileTooLarge      = &Errno{Code: 20002, Message: "File exceeds the maximum allowed size"}
	ErrFileNameIllegal   = &Errno{Code: 20003, Message: "File name is illegal"}
	ErrDownloadFailed    = &Errno{Code: 20004, Message: "Download failed"}
	ErrUploadFailed      = &Errno{Code: 20005, Message: "Upload failed"}
	ErrProbeFailed       = &Errno{Code: 20006, Message: "Media inspection failed"}
	ErrNoAudioTracks     = &Errno{Code: 20007, Message: "No audio tracks found"}
	ErrTranscodeFailed   = &Errno{Code: 20008, Message: "Transcode failed"}
	ErrInvalidJobStatus  = &Errno{Code: 20009, Message: "Invalid job status"}
	ErrChatBusy          = &Errno{Code: 20010, Message: "A job is already running for this chat"}
	ErrQueueFull         = &Errno{Code: 20011, Message: "Job queue is full"}
	ErrSettingNotAllowed = &Errno{Code: 20012, Message: "Unknown setting key"}
	ErrCRFOutOfRange     = &Errno{Code: 20013, Message: "CRF must be between 0 and 51"}
	ErrInvalidPreset     = &Errno{Code: 20014, Message: "Invalid preset"}
	ErrInvalidResolution = &Errno{Code: 20015, Message: "Invalid resolution, expected WxH"}
	ErrInvalidUserID     = &Errno{Code: 20016, Message: "User id must be numeric"}
	ErrOwnerImmutable    = &Errno{Code: 20017, Message: "The owner is always privileged and cannot be stored as admin"}
	ErrAdminExists       = &Errno{Code: 20018, Message: "User is already an admin"}
	ErrAdminNotFound     = &Errno{Code: 20019, Message: "User is not an admin"}
	ErrThumbNotFound     = &Errno{Code: 20020, Message: "No thumbnail saved"}
)
