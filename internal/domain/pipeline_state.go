package domain

import (
	"time"
)

// PipelineStatus represents the overall status of a pipeline run.
type PipelineStatus string

const (
	PipelineStatusPending    PipelineStatus = "pending"
	PipelineStatusRunning    PipelineStatus = "running"
	PipelineStatusCompleted  PipelineStatus = "completed"
	PipelineStatusFailed     PipelineStatus = "failed"
	PipelineStatusRolledBack PipelineStatus = "rolled_back"
)

// StageStatus represents the status of an individual pipeline stage.
type StageStatus string

const (
	StageStatusPending    StageStatus = "pending"
	StageStatusRunning    StageStatus = "running"
	StageStatusCompleted  StageStatus = "completed"
	StageStatusFailed     StageStatus = "failed"
	StageStatusRolledBack StageStatus = "rolled_back"
)

// StageType identifies a pipeline stage.
type StageType string

const (
	StageTypeBuildSite     StageType = "build_site"
	StageTypeVerifyMarkup  StageType = "verify_markup"
	StageTypePublishReport StageType = "publish_report"
	StageTypeCreateDeploy  StageType = "create_deploy"
	StageTypeUploadFiles   StageType = "upload_files"
	StageTypeFinalize      StageType = "finalize_deploy"
)

// PipelineState is the persisted checkpoint of a pipeline run, used to
// resume reporting and to roll back a partially completed deploy.
type PipelineState struct {
	SessionID string         `json:"session_id"`
	StartedAt time.Time      `json:"started_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Version   string         `json:"version"`
	Provider  string         `json:"provider"`
	DeployID  string         `json:"deploy_id,omitempty"`
	Stages    []StageRecord  `json:"stages"`
	Status    PipelineStatus `json:"status"`
	Error     string         `json:"error,omitempty"`
}

// StageRecord is a single stage execution within a pipeline run.
type StageRecord struct {
	ID           string         `json:"id"`
	Type         StageType      `json:"type"`
	Status       StageStatus    `json:"status"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	RollbackData map[string]any `json:"rollback_data,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// NewPipelineState creates a pending pipeline state for a session.
func NewPipelineState(sessionID string) *PipelineState {
	now := time.Now()
	return &PipelineState{
		SessionID: sessionID,
		StartedAt: now,
		UpdatedAt: now,
		Stages:    []StageRecord{},
		Status:    PipelineStatusPending,
	}
}

// AddStage registers a pending stage record.
func (ps *PipelineState) AddStage(stageType StageType) *StageRecord {
	rec := StageRecord{
		ID:        string(stageType) + "_" + time.Now().Format("20060102150405"),
		Type:      stageType,
		Status:    StageStatusPending,
		StartedAt: time.Now(),
	}
	ps.Stages = append(ps.Stages, rec)
	ps.UpdatedAt = time.Now()
	return &ps.Stages[len(ps.Stages)-1]
}

// CompletedStages returns all successfully completed stages, most recent
// first, which is the order compensation must run in.
func (ps *PipelineState) CompletedStages() []StageRecord {
	var completed []StageRecord
	for i := len(ps.Stages) - 1; i >= 0; i-- {
		if ps.Stages[i].Status == StageStatusCompleted {
			completed = append(completed, ps.Stages[i])
		}
	}
	return completed
}

// MarkStageStarted transitions a pending stage to running.
func (ps *PipelineState) MarkStageStarted(stageType StageType) {
	for i := range ps.Stages {
		if ps.Stages[i].Type == stageType && ps.Stages[i].Status == StageStatusPending {
			ps.Stages[i].Status = StageStatusRunning
			ps.Stages[i].StartedAt = time.Now()
			ps.UpdatedAt = time.Now()
			break
		}
	}
}

// MarkStageCompleted transitions a running stage to completed, recording
// the data compensation needs.
func (ps *PipelineState) MarkStageCompleted(stageType StageType, rollbackData map[string]any) {
	now := time.Now()
	for i := range ps.Stages {
		if ps.Stages[i].Type == stageType && ps.Stages[i].Status == StageStatusRunning {
			ps.Stages[i].Status = StageStatusCompleted
			ps.Stages[i].CompletedAt = &now
			ps.Stages[i].RollbackData = rollbackData
			ps.UpdatedAt = now
			break
		}
	}
}

// MarkStageFailed transitions a running stage to failed and fails the run.
func (ps *PipelineState) MarkStageFailed(stageType StageType, err error) {
	now := time.Now()
	for i := range ps.Stages {
		if ps.Stages[i].Type == stageType && ps.Stages[i].Status == StageStatusRunning {
			ps.Stages[i].Status = StageStatusFailed
			ps.Stages[i].CompletedAt = &now
			ps.Stages[i].Error = err.Error()
			ps.UpdatedAt = now
			break
		}
	}
	ps.Status = PipelineStatusFailed
	ps.Error = err.Error()
}
