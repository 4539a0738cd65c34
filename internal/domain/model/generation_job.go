package model

import (
	"time"

	"video-generation-service/internal/domain"
)

type GenerationStatus string

const (
	GenerationStatusProcessing GenerationStatus = "processing"
	GenerationStatusPolling    GenerationStatus = "polling"
	GenerationStatusCompleted  GenerationStatus = "completed"
	GenerationStatusFailed     GenerationStatus = "failed"
)

// Terminal reports whether no further transitions may occur.
func (s GenerationStatus) Terminal() bool {
	return s == GenerationStatusCompleted || s == GenerationStatusFailed
}

// GenerationJob is the sole persisted entity: one video generation request
// and the record tracking its progress. It is written only by the executor
// that owns the job, so no locking is required on the record itself.
type GenerationJob struct {
	ID            string           `json:"id"`
	Status        GenerationStatus `json:"status"`
	Progress      int              `json:"progress"`
	Prompt        string           `json:"prompt"`
	ImageProvided bool             `json:"image_provided"`
	CreatedAt     time.Time        `json:"created_at"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty"`
	FailedAt      *time.Time       `json:"failed_at,omitempty"`
	Video         []byte           `json:"video,omitempty"`
	ErrorMessage  string           `json:"error_message,omitempty"`
	Provider      string           `json:"provider"`
	Model         string           `json:"model"`

	// OperationName is the provider continuation token. Internal to the
	// executor; status responses never expose it.
	OperationName string `json:"operation_name,omitempty"`
}

func NewGenerationJob(id, prompt string, imageProvided bool, provider, model string) *GenerationJob {
	return &GenerationJob{
		ID:            id,
		Status:        GenerationStatusProcessing,
		Progress:      0,
		Prompt:        prompt,
		ImageProvided: imageProvided,
		CreatedAt:     time.Now().UTC(),
		Provider:      provider,
		Model:         model,
	}
}

// MarkPolling records the continuation token and moves the job to polling.
// Only valid from processing.
func (j *GenerationJob) MarkPolling(operationName string) error {
	if j.Status != GenerationStatusProcessing {
		return domain.ErrTerminalState
	}
	j.Status = GenerationStatusPolling
	j.OperationName = operationName
	if j.Progress < 10 {
		j.Progress = 10
	}
	return nil
}

// SetProgress bumps the advisory progress. It never regresses and stays
// below 100 until the artifact has actually been retrieved.
func (j *GenerationJob) SetProgress(p int) {
	if j.Status.Terminal() {
		return
	}
	if p > 99 {
		p = 99
	}
	if p > j.Progress {
		j.Progress = p
	}
}

// MarkCompleted stores the artifact and finalizes the job.
func (j *GenerationJob) MarkCompleted(video []byte) error {
	if j.Status.Terminal() {
		return domain.ErrTerminalState
	}
	now := time.Now().UTC()
	j.Status = GenerationStatusCompleted
	j.Progress = 100
	j.Video = video
	j.CompletedAt = &now
	j.OperationName = ""
	return nil
}

// MarkFailed finalizes the job with an error message.
func (j *GenerationJob) MarkFailed(msg string) error {
	if j.Status.Terminal() {
		return domain.ErrTerminalState
	}
	now := time.Now().UTC()
	j.Status = GenerationStatusFailed
	j.ErrorMessage = msg
	j.FailedAt = &now
	j.OperationName = ""
	return nil
}
