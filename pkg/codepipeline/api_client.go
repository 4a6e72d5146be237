package codepipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscp "github.com/aws/aws-sdk-go-v2/service/codepipeline"
	cptypes "github.com/aws/aws-sdk-go-v2/service/codepipeline/types"

	"github.com/rog555/ccpr/pkg/cache"
	"github.com/rog555/ccpr/pkg/config"
	ccerrors "github.com/rog555/ccpr/pkg/errors"
)

// APIClient implements Client using the AWS SDK, sharing the same response
// cache layout as the CodeCommit client.
type APIClient struct {
	api    *awscp.Client
	cache  *cache.Cache
	ttl    time.Duration
	retry  ccerrors.RetryConfig
	region string
	logger *slog.Logger
}

// NewClient creates a CodePipeline client from the application config.
func NewClient(ctx context.Context, cfg *config.Config) (*APIClient, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.AWS.Profile))
	}
	if cfg.AWS.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.AWS.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, ccerrors.NewPipelineErrorWithCause("NewClient", "", "failed to load AWS config", err)
	}

	return &APIClient{
		api:    awscp.NewFromConfig(awsCfg),
		cache:  cache.New(cfg.Cache.Dir),
		ttl:    time.Duration(cfg.CacheTTLSeconds()) * time.Second,
		retry:  ccerrors.DefaultRetryConfig(),
		region: awsCfg.Region,
		logger: slog.Default(),
	}, nil
}

// Region returns the resolved AWS region.
func (c *APIClient) Region() string {
	return c.region
}

// GetPipelineState returns the latest state of each stage.
func (c *APIClient) GetPipelineState(ctx context.Context, name string) ([]StageState, error) {
	key := cache.Key("GetPipelineState", map[string]string{"name": name})
	var stages []StageState
	if c.cached(key, &stages) {
		return stages, nil
	}

	out, err := ccerrors.RetryWithResult(ctx, c.retry, func() (*awscp.GetPipelineStateOutput, error) {
		return c.api.GetPipelineState(ctx, &awscp.GetPipelineStateInput{Name: aws.String(name)})
	})
	if err != nil {
		return nil, toAPIError("GetPipelineState", name, err)
	}

	for _, stage := range out.StageStates {
		stages = append(stages, fromSDKStageState(stage))
	}

	c.store(key, stages)
	return stages, nil
}

// ListActionExecutions returns action executions for one pipeline execution.
func (c *APIClient) ListActionExecutions(ctx context.Context, name, executionID string) ([]ActionExecution, error) {
	key := cache.Key("ListActionExecutions", map[string]string{"name": name, "execution": executionID})
	var executions []ActionExecution
	if c.cached(key, &executions) {
		return executions, nil
	}

	input := &awscp.ListActionExecutionsInput{
		PipelineName: aws.String(name),
		Filter: &cptypes.ActionExecutionFilter{
			PipelineExecutionId: aws.String(executionID),
		},
	}
	for {
		out, err := ccerrors.RetryWithResult(ctx, c.retry, func() (*awscp.ListActionExecutionsOutput, error) {
			return c.api.ListActionExecutions(ctx, input)
		})
		if err != nil {
			return nil, toAPIError("ListActionExecutions", name, err)
		}
		for _, detail := range out.ActionExecutionDetails {
			executions = append(executions, fromSDKActionExecution(detail))
		}
		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}

	c.store(key, executions)
	return executions, nil
}

func (c *APIClient) cached(key string, out any) bool {
	if c.ttl <= 0 {
		return false
	}
	return c.cache.Get(key, out)
}

func (c *APIClient) store(key string, val any) {
	if c.ttl <= 0 {
		return
	}
	if err := c.cache.Put(key, val, c.ttl); err != nil {
		c.logger.Debug("cache write failed", "key", key, "error", err)
	}
}

// fromSDKStageState flattens a stage to its first action state.
func fromSDKStageState(stage cptypes.StageState) StageState {
	s := StageState{Name: aws.ToString(stage.StageName)}
	if stage.LatestExecution != nil {
		s.Status = string(stage.LatestExecution.Status)
		s.ExecutionID = aws.ToString(stage.LatestExecution.PipelineExecutionId)
	}
	if len(stage.ActionStates) > 0 {
		action := stage.ActionStates[0]
		s.ActionName = aws.ToString(action.ActionName)
		if exec := action.LatestExecution; exec != nil {
			s.Summary = aws.ToString(exec.Summary)
			s.ExternalURL = aws.ToString(exec.ExternalExecutionUrl)
			if exec.LastStatusChange != nil {
				s.Updated = *exec.LastStatusChange
			}
			if exec.ErrorDetails != nil {
				s.ErrorMessage = aws.ToString(exec.ErrorDetails.Message)
			}
		}
	}
	return s
}

func fromSDKActionExecution(detail cptypes.ActionExecutionDetail) ActionExecution {
	ae := ActionExecution{
		PipelineExecutionID: aws.ToString(detail.PipelineExecutionId),
		StageName:           aws.ToString(detail.StageName),
		ActionName:          aws.ToString(detail.ActionName),
	}
	if detail.LastUpdateTime != nil {
		ae.Updated = *detail.LastUpdateTime
	}
	if detail.Input != nil && detail.Input.ActionTypeId != nil {
		typeID := detail.Input.ActionTypeId
		ae.Category = string(typeID.Category)
		ae.Owner = string(typeID.Owner)
		ae.Provider = aws.ToString(typeID.Provider)
	}
	if detail.Output != nil && detail.Output.ExecutionResult != nil {
		result := detail.Output.ExecutionResult
		ae.ExternalID = aws.ToString(result.ExternalExecutionId)
		ae.ExternalURL = aws.ToString(result.ExternalExecutionUrl)
		ae.ExternalSummary = aws.ToString(result.ExternalExecutionSummary)
	}
	return ae
}

// toAPIError converts an SDK error into a PipelineError.
func toAPIError(operation, pipeline string, err error) error {
	var respErr *awshttp.ResponseError
	if ccerrors.As(err, &respErr) {
		return ccerrors.NewPipelineErrorWithStatus(operation, pipeline, respErr.HTTPStatusCode(), err.Error())
	}
	return ccerrors.NewPipelineErrorWithCause(operation, pipeline, "request failed", err)
}
