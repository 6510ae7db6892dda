package vo

// JobState 任务状态
type JobState string

const (
	// JobStateCreated 已创建
	JobStateCreated JobState = "created"
	// JobStateDownloading 下载中
	JobStateDownloading JobState = "downloading"
	// JobStateInspecting 探测音轨中
	JobStateInspecting JobState = "inspecting"
	// JobStateProcessing 转码/抽取中
	JobStateProcessing JobState = "processing"
	// JobStateUploading 上传中
	JobStateUploading JobState = "uploading"
	// JobStateCompleted 已完成
	JobStateCompleted JobState = "completed"
	// JobStateFailed 失败
	JobStateFailed JobState = "failed"
)

// String 返回状态字符串
func (s JobState) String() string {
	return string(s)
}

// IsTerminal 检查是否为最终状态
func (s JobState) IsTerminal() bool {
	return s == JobStateCompleted || s == JobStateFailed
}

// CanTransitionTo 检查是否可以转换到目标状态
func (s JobState) CanTransitionTo(target JobState) bool {
	if target == JobStateFailed {
		// Any non-terminal state may fail.
		return !s.IsTerminal()
	}
	switch s {
	case JobStateCreated:
		return target == JobStateDownloading
	case JobStateDownloading:
		return target == JobStateInspecting || target == JobStateProcessing
	case JobStateInspecting:
		return target == JobStateProcessing
	case JobStateProcessing:
		return target == JobStateProcessing || target == JobStateUploading
	case JobStateUploading:
		return target == JobStateUploading || target == JobStateCompleted
	default:
		return false
	}
}
