// Package errors provides typed errors for the ccpr project.
//
// This package defines domain-specific error types that provide structured
// error information for different subsystems (config, CodeCommit,
// CodePipeline, git). All error types implement the standard error interface
// and support errors.Is() and errors.As() from the standard library and
// cockroachdb/errors.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Field   string // Which config field has the issue
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
	}
	return "config error: " + e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewConfigErrorWithCause creates a new ConfigError with an underlying cause.
func NewConfigErrorWithCause(field, message string, cause error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Cause: cause}
}

// CodeCommitError represents AWS CodeCommit API errors.
type CodeCommitError struct {
	Operation  string // e.g., "GetPullRequest", "MergePullRequest"
	StatusCode int    // HTTP status code if known
	Message    string
	Retryable  bool
	Cause      error
}

// Error implements the error interface.
func (e *CodeCommitError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("codecommit %s failed (HTTP %d): %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("codecommit %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *CodeCommitError) Unwrap() error {
	return e.Cause
}

// NewCodeCommitError creates a new CodeCommitError.
func NewCodeCommitError(operation, message string) *CodeCommitError {
	return &CodeCommitError{Operation: operation, Message: message}
}

// NewCodeCommitErrorWithStatus creates a new CodeCommitError with HTTP status code.
func NewCodeCommitErrorWithStatus(operation string, statusCode int, message string) *CodeCommitError {
	return &CodeCommitError{
		Operation:  operation,
		StatusCode: statusCode,
		Message:    message,
		Retryable:  isRetryableHTTPStatus(statusCode),
	}
}

// NewCodeCommitErrorWithCause creates a new CodeCommitError with an underlying cause.
func NewCodeCommitErrorWithCause(operation, message string, cause error) *CodeCommitError {
	return &CodeCommitError{
		Operation: operation,
		Message:   message,
		Retryable: IsRetryable(cause),
		Cause:     cause,
	}
}

// PipelineError represents AWS CodePipeline API errors.
type PipelineError struct {
	Operation  string // e.g., "GetPipelineState", "ListActionExecutions"
	Pipeline   string // Pipeline name if known
	StatusCode int
	Message    string
	Retryable  bool
	Cause      error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Pipeline != "" && e.StatusCode > 0 {
		return fmt.Sprintf("codepipeline %s for %s failed (HTTP %d): %s", e.Operation, e.Pipeline, e.StatusCode, e.Message)
	}
	if e.Pipeline != "" {
		return fmt.Sprintf("codepipeline %s for %s failed: %s", e.Operation, e.Pipeline, e.Message)
	}
	return fmt.Sprintf("codepipeline %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// NewPipelineError creates a new PipelineError.
func NewPipelineError(operation, pipeline, message string) *PipelineError {
	return &PipelineError{Operation: operation, Pipeline: pipeline, Message: message}
}

// NewPipelineErrorWithStatus creates a new PipelineError with HTTP status code.
func NewPipelineErrorWithStatus(operation, pipeline string, statusCode int, message string) *PipelineError {
	return &PipelineError{
		Operation:  operation,
		Pipeline:   pipeline,
		StatusCode: statusCode,
		Message:    message,
		Retryable:  isRetryableHTTPStatus(statusCode),
	}
}

// NewPipelineErrorWithCause creates a new PipelineError with an underlying cause.
func NewPipelineErrorWithCause(operation, pipeline, message string, cause error) *PipelineError {
	return &PipelineError{
		Operation: operation,
		Pipeline:  pipeline,
		Message:   message,
		Retryable: IsRetryable(cause),
		Cause:     cause,
	}
}

// GitError represents local git repository errors.
type GitError struct {
	Operation string // e.g., "CurrentBranch", "LastCommitMessage"
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *GitError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("git %s failed: %s", e.Operation, e.Message)
	}
	return "git error: " + e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *GitError) Unwrap() error {
	return e.Cause
}

// NewGitError creates a new GitError.
func NewGitError(operation, message string) *GitError {
	return &GitError{Operation: operation, Message: message}
}

// NewGitErrorWithCause creates a new GitError with an underlying cause.
func NewGitErrorWithCause(operation, message string, cause error) *GitError {
	return &GitError{Operation: operation, Message: message, Cause: cause}
}

// IsRetryable checks if an error or any error in its chain is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var ccErr *CodeCommitError
	if errors.As(err, &ccErr) {
		return ccErr.Retryable
	}

	var cpErr *PipelineError
	if errors.As(err, &cpErr) {
		return cpErr.Retryable
	}

	return false
}

// IsConfigError checks if an error or any error in its chain is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsCodeCommitError checks if an error or any error in its chain is a CodeCommitError.
func IsCodeCommitError(err error) bool {
	var ccErr *CodeCommitError
	return errors.As(err, &ccErr)
}

// IsPipelineError checks if an error or any error in its chain is a PipelineError.
func IsPipelineError(err error) bool {
	var cpErr *PipelineError
	return errors.As(err, &cpErr)
}

// IsGitError checks if an error or any error in its chain is a GitError.
func IsGitError(err error) bool {
	var gitErr *GitError
	return errors.As(err, &gitErr)
}

// isRetryableHTTPStatus returns true for HTTP status codes that are typically retryable.
func isRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, // Request Timeout
		429, // Too Many Requests
		500, // Internal Server Error
		502, // Bad Gateway
		503, // Service Unavailable
		504: // Gateway Timeout
		return true
	default:
		return false
	}
}

// Re-export commonly used functions from cockroachdb/errors for convenience.
// This allows consumers to use ccprerrors.Wrap() instead of importing two packages.
var (
	// New creates a new error with the given message.
	New = errors.New

	// Newf creates a new error with formatted message.
	Newf = errors.Newf

	// Wrap wraps an error with additional context.
	Wrap = errors.Wrap

	// Wrapf wraps an error with formatted additional context.
	Wrapf = errors.Wrapf

	// Is reports whether any error in err's chain matches target.
	Is = errors.Is

	// As finds the first error in err's chain that matches target.
	As = errors.As

	// Cause returns the root cause of an error.
	Cause = errors.Cause
)
