package errors

import (
	"fmt"
	"strings"
)

// FormatUserError returns a user-friendly error message with actionable guidance.
// It examines the error chain and provides context-appropriate help text.
func FormatUserError(err error) string {
	if err == nil {
		return ""
	}

	var configErr *ConfigError
	if As(err, &configErr) {
		return formatConfigError(configErr)
	}

	var ccErr *CodeCommitError
	if As(err, &ccErr) {
		return formatCodeCommitError(ccErr)
	}

	var cpErr *PipelineError
	if As(err, &cpErr) {
		return formatPipelineError(cpErr)
	}

	var gitErr *GitError
	if As(err, &gitErr) {
		return formatGitError(gitErr)
	}

	// Default: return the error message as-is
	return err.Error()
}

// formatConfigError formats a ConfigError with actionable guidance.
func formatConfigError(err *ConfigError) string {
	var b strings.Builder

	if err.Field != "" {
		fmt.Fprintf(&b, "Configuration error in '%s': %s\n", err.Field, err.Message)
	} else {
		fmt.Fprintf(&b, "Configuration error: %s\n", err.Message)
	}

	b.WriteString("\nTo fix this:\n")
	b.WriteString("  • Check your config file: ~/.config/ccpr/config.toml\n")
	b.WriteString("  • Run 'ccpr config init' to write a fresh one\n")

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatCodeCommitError formats a CodeCommitError with actionable guidance based on status code.
func formatCodeCommitError(err *CodeCommitError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "CodeCommit error during %s: %s\n", err.Operation, err.Message)

	switch err.StatusCode {
	case 400, 403:
		b.WriteString("\nAccess denied or request rejected. To fix this:\n")
		b.WriteString("  • Check AWS_PROFILE / AWS_REGION and your active credentials\n")
		b.WriteString("  • Ensure your IAM identity has codecommit:* permissions for this repository\n")
		b.WriteString("  • If using temporary credentials, they may have expired\n")

	case 404:
		b.WriteString("\nResource not found. To fix this:\n")
		b.WriteString("  • Verify the repository name and pull request ID\n")
		b.WriteString("  • Check you are in the right AWS account and region\n")

	case 429:
		b.WriteString("\nThrottled by AWS. To fix this:\n")
		b.WriteString("  • Wait a few seconds before retrying\n")

	case 500, 502, 503, 504:
		b.WriteString("\nAWS service error. To fix this:\n")
		b.WriteString("  • Wait a few moments and try again\n")
		b.WriteString("  • Check AWS Health Dashboard: https://health.aws.amazon.com\n")
	}

	if err.Retryable {
		b.WriteString("\nThis error may be temporary. The operation will be retried automatically.\n")
	}

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatPipelineError formats a PipelineError with actionable guidance.
func formatPipelineError(err *PipelineError) string {
	var b strings.Builder

	if err.Pipeline != "" {
		fmt.Fprintf(&b, "CodePipeline error during %s for pipeline %s: %s\n", err.Operation, err.Pipeline, err.Message)
	} else {
		fmt.Fprintf(&b, "CodePipeline error during %s: %s\n", err.Operation, err.Message)
	}

	switch err.StatusCode {
	case 400, 403:
		b.WriteString("\nAccess denied or request rejected. To fix this:\n")
		b.WriteString("  • Check AWS_PROFILE / AWS_REGION and your active credentials\n")
		b.WriteString("  • Ensure your IAM identity has codepipeline:Get* and codepipeline:List* permissions\n")

	case 404:
		if err.Pipeline != "" {
			fmt.Fprintf(&b, "\nPipeline %s not found. To fix this:\n", err.Pipeline)
		} else {
			b.WriteString("\nPipeline not found. To fix this:\n")
		}
		b.WriteString("  • Pipelines are looked up as <repo>_<branch>; pass --name to override\n")
		b.WriteString("  • Check you are in the right AWS account and region\n")

	case 429:
		b.WriteString("\nThrottled by AWS. To fix this:\n")
		b.WriteString("  • Wait a few seconds before retrying\n")

	case 500, 502, 503, 504:
		b.WriteString("\nAWS service error. To fix this:\n")
		b.WriteString("  • Wait a few moments and try again\n")
	}

	if err.Retryable {
		b.WriteString("\nThis error may be temporary. The operation will be retried automatically.\n")
	}

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatGitError formats a GitError with actionable guidance.
func formatGitError(err *GitError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Git error during %s: %s\n", err.Operation, err.Message)

	b.WriteString("\nTo fix this:\n")
	b.WriteString("  • Run ccpr from inside a git working directory\n")
	b.WriteString("  • Or set the CCPR_REPO environment variable to name the repository\n")

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}
