package models

import "time"

const (
	RunRunning   = "running"
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// PipelineRun is the persisted record of one pipeline execution for an issue.
type PipelineRun struct {
	ID         string    `json:"id"         yaml:"id"`
	IssueKey   string    `json:"issueKey"   yaml:"issue_key"`
	Status     string    `json:"status"     yaml:"status"`
	Stage      string    `json:"stage"      yaml:"stage,omitempty"`
	CommitHash string    `json:"commitHash" yaml:"commit_hash,omitempty"`
	Error      string    `json:"error"      yaml:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"  yaml:"started_at"`
	FinishedAt time.Time `json:"finishedAt" yaml:"finished_at,omitempty"`
}
