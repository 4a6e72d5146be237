// Package codepipeline wraps the AWS CodePipeline API for pipeline status
// reporting.
package codepipeline

import (
	"context"
	"time"
)

// StageState is the latest state of one pipeline stage, flattened to the
// stage's first action.
type StageState struct {
	Name         string
	Status       string
	ExecutionID  string
	ActionName   string
	Updated      time.Time
	Summary      string
	ExternalURL  string
	ErrorMessage string
}

// ActionExecution is one recorded action execution within a pipeline
// execution.
type ActionExecution struct {
	PipelineExecutionID string
	StageName           string
	ActionName          string
	Category            string
	Owner               string
	Provider            string
	Updated             time.Time
	ExternalID          string
	ExternalURL         string
	ExternalSummary     string
}

// TypeID renders the action type as "Owner Category Provider", matching the
// way manual approval actions are identified ("AWS Approval Manual").
func (ae ActionExecution) TypeID() string {
	return ae.Owner + " " + ae.Category + " " + ae.Provider
}

// IsSource reports whether this action produced the pipeline's source
// revision.
func (ae ActionExecution) IsSource() bool {
	return ae.Category == "Source"
}

// IsBuild reports whether this is a build action.
func (ae ActionExecution) IsBuild() bool {
	return ae.Category == "Build"
}

// Client defines the CodePipeline operations used by the CLI.
type Client interface {
	// GetPipelineState returns the latest state of each stage.
	GetPipelineState(ctx context.Context, name string) ([]StageState, error)

	// ListActionExecutions returns action executions for one pipeline
	// execution.
	ListActionExecutions(ctx context.Context, name, executionID string) ([]ActionExecution, error)

	// Region returns the resolved AWS region, used for console links.
	Region() string
}

// Compile-time check that APIClient implements Client.
var _ Client = (*APIClient)(nil)
