package entity

import (
	"time"

	"github.com/google/uuid"

	"compress-bot/ddd/domain/vo"
)

// JobKind distinguishes the two pipelines a job can run.
type JobKind string

const (
	JobKindCompress     JobKind = "compress"
	JobKindExtractAudio JobKind = "extract_audio"
)

// JobEntity 任务实体
//
// One user-initiated request producing one or more artifacts from one input
// file. The settings snapshot is taken at creation; state is mutated only
// through the transition methods below, driven by the orchestrator.
type JobEntity struct {
	jobID        string
	kind         JobKind
	chatID       int64
	userID       int64
	messageID    int
	mediaRef     vo.MediaRef
	settings     vo.EncodeSettings
	state        vo.JobState
	inputPath    string
	outputPaths  []string
	sidePaths    []string
	errorMessage string
	createdAt    time.Time
	updatedAt    time.Time
	startedAt    *time.Time
	completedAt  *time.Time
}

// NewJobEntity 创建任务实体
func NewJobEntity(kind JobKind, chatID, userID int64, messageID int, media vo.MediaRef, settings vo.EncodeSettings) *JobEntity {
	now := time.Now()
	return &JobEntity{
		jobID:     uuid.New().String(),
		kind:      kind,
		chatID:    chatID,
		userID:    userID,
		messageID: messageID,
		mediaRef:  media,
		settings:  settings,
		state:     vo.JobStateCreated,
		createdAt: now,
		updatedAt: now,
	}
}

// Getters
func (j *JobEntity) JobID() string                { return j.jobID }
func (j *JobEntity) Kind() JobKind                { return j.kind }
func (j *JobEntity) ChatID() int64                { return j.chatID }
func (j *JobEntity) UserID() int64                { return j.userID }
func (j *JobEntity) MessageID() int               { return j.messageID }
func (j *JobEntity) MediaRef() vo.MediaRef        { return j.mediaRef }
func (j *JobEntity) Settings() vo.EncodeSettings  { return j.settings }
func (j *JobEntity) State() vo.JobState           { return j.state }
func (j *JobEntity) InputPath() string            { return j.inputPath }
func (j *JobEntity) ErrorMessage() string         { return j.errorMessage }
func (j *JobEntity) CreatedAt() time.Time         { return j.createdAt }
func (j *JobEntity) UpdatedAt() time.Time         { return j.updatedAt }
func (j *JobEntity) StartedAt() *time.Time        { return j.startedAt }
func (j *JobEntity) CompletedAt() *time.Time      { return j.completedAt }

// OutputPaths returns the produced artifact paths in production order.
func (j *JobEntity) OutputPaths() []string {
	out := make([]string, len(j.outputPaths))
	copy(out, j.outputPaths)
	return out
}

// LocalPaths returns every local path the job owns: the input, all outputs
// and all side-channel files. The orchestrator removes them all on the
// terminal transition, success or failure.
func (j *JobEntity) LocalPaths() []string {
	paths := make([]string, 0, 1+len(j.outputPaths)+len(j.sidePaths))
	if j.inputPath != "" {
		paths = append(paths, j.inputPath)
	}
	paths = append(paths, j.outputPaths...)
	paths = append(paths, j.sidePaths...)
	return paths
}

func (j *JobEntity) transition(target vo.JobState) error {
	if !j.state.CanTransitionTo(target) {
		return NewDomainError("invalid job transition " + j.state.String() + " -> " + target.String())
	}
	j.state = target
	j.updatedAt = time.Now()
	return nil
}

// BeginDownload 开始下载
func (j *JobEntity) BeginDownload() error {
	if err := j.transition(vo.JobStateDownloading); err != nil {
		return err
	}
	now := time.Now()
	j.startedAt = &now
	return nil
}

// BeginInspect 开始音轨探测
func (j *JobEntity) BeginInspect() error {
	return j.transition(vo.JobStateInspecting)
}

// BeginProcess 开始转码/抽取
func (j *JobEntity) BeginProcess() error {
	return j.transition(vo.JobStateProcessing)
}

// BeginUpload 开始上传
func (j *JobEntity) BeginUpload() error {
	return j.transition(vo.JobStateUploading)
}

// Complete 完成任务
func (j *JobEntity) Complete() error {
	if err := j.transition(vo.JobStateCompleted); err != nil {
		return err
	}
	now := time.Now()
	j.completedAt = &now
	return nil
}

// Fail 任务失败
func (j *JobEntity) Fail(errorMessage string) error {
	if err := j.transition(vo.JobStateFailed); err != nil {
		return err
	}
	now := time.Now()
	j.errorMessage = errorMessage
	j.completedAt = &now
	return nil
}

// SetInputPath records the downloaded source file. The job owns the path
// exclusively until cleanup.
func (j *JobEntity) SetInputPath(path string) {
	j.inputPath = path
	j.updatedAt = time.Now()
}

// AddOutputPath appends a produced artifact path.
func (j *JobEntity) AddOutputPath(path string) {
	j.outputPaths = append(j.outputPaths, path)
	j.updatedAt = time.Now()
}

// AddSidePath records a side-channel file (progress pipe spill, partial
// temp) that must be removed with the job.
func (j *JobEntity) AddSidePath(path string) {
	j.sidePaths = append(j.sidePaths, path)
	j.updatedAt = time.Now()
}
