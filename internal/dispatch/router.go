package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"sebot/internal/errors"
	"sebot/internal/query"
)

// Backend is the set of operations the router can call. *query.Engine
// implements it.
type Backend interface {
	FetchProjectIssues(ctx context.Context, projectName string, f query.IssueFilter, page, pageSize int) (*query.IssuePage, error)
	CountIssues(ctx context.Context, projectName string, f query.IssueFilter) (*query.IssueCount, error)
	ListUniqueValues(ctx context.Context, collection, attribute string, filters map[string]interface{}) (*query.UniqueValues, error)
	GetProjectAssignees(ctx context.Context, projectName string, f query.IssueFilter) (*query.Assignees, error)
	GetIssueDetails(ctx context.Context, identifier string) (*query.IssueDetails, error)
	GetIssueComments(ctx context.Context, issueID string) (*query.IssueComments, error)
	AnalyzeDeveloperExpertise(ctx context.Context, projectName, component, keywords string) (*query.ExpertiseReport, error)
}

// ToolCall is one function call requested by an agent.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolOutput is the serialized result of one ToolCall.
type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

// Router maps function names to backend operations.
type Router struct {
	backend Backend
	logger  *slog.Logger
}

// NewRouter creates a router over backend.
func NewRouter(backend Backend, logger *slog.Logger) *Router {
	return &Router{backend: backend, logger: logger}
}

// Call runs the function name with the given argument JSON. It never
// fails: errors come back as {"error": message}.
func (r *Router) Call(ctx context.Context, name string, args []byte) interface{} {
	start := time.Now()
	r.logger.Info("Tool called",
		"function", name,
		"arguments", string(args),
	)

	result, err := r.call(ctx, name, args)
	if err != nil {
		r.logger.Warn("Tool call failed",
			"function", name,
			"code", errors.Code(err),
			"error", errors.Text(err),
			"duration", time.Since(start),
		)
		return errors.Result(err)
	}

	r.logger.Info("Tool call finished",
		"function", name,
		"duration", time.Since(start),
	)
	return result
}

// CallJSON is Call with the result serialized as JSON text.
func (r *Router) CallJSON(ctx context.Context, name string, args []byte) string {
	return Encode(r.Call(ctx, name, args))
}

// Dispatch runs calls one after another in the order given. One failing
// call does not affect the others.
func (r *Router) Dispatch(ctx context.Context, calls []ToolCall) []ToolOutput {
	outputs := make([]ToolOutput, 0, len(calls))
	for _, c := range calls {
		outputs = append(outputs, r.dispatchOne(ctx, c))
	}
	return outputs
}

func (r *Router) dispatchOne(ctx context.Context, c ToolCall) ToolOutput {
	return ToolOutput{
		ToolCallID: c.ID,
		Output:     r.CallJSON(ctx, c.Name, []byte(c.Arguments)),
	}
}

func (r *Router) call(ctx context.Context, name string, args []byte) (interface{}, error) {
	req, err := Decode(name, args)
	if err != nil {
		return nil, err
	}
	return r.invoke(ctx, req)
}

func (r *Router) invoke(ctx context.Context, req Request) (interface{}, error) {
	var (
		result interface{}
		err    error
	)
	switch q := req.(type) {
	case *FetchProjectIssuesRequest:
		result, err = r.backend.FetchProjectIssues(ctx, q.ProjectName, q.filter(), q.Page, q.PageSize)
	case *CountIssuesRequest:
		result, err = r.backend.CountIssues(ctx, q.ProjectName, q.filter())
	case *GetProjectAssigneesRequest:
		result, err = r.backend.GetProjectAssignees(ctx, q.ProjectName, query.IssueFilter{
			Status:     q.Status,
			Priority:   q.Priority,
			IssueType:  q.IssueType,
			ReporterID: q.ReporterID,
		})
	case *ListUniqueValuesRequest:
		result, err = r.backend.ListUniqueValues(ctx, q.CollectionName, q.AttributeName, q.Filters)
	case *GetIssueDetailsRequest:
		result, err = r.backend.GetIssueDetails(ctx, q.IssueIdentifier)
	case *GetIssueCommentsRequest:
		result, err = r.backend.GetIssueComments(ctx, q.IssueID)
	case *AnalyzeDeveloperExpertiseRequest:
		result, err = r.backend.AnalyzeDeveloperExpertise(ctx, q.ProjectName, q.Component, q.Keywords)
	default:
		return nil, errors.NewUnsupportedFunctionError(req.Function())
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Encode serializes a Call result as JSON text.
func Encode(result interface{}) string {
	data, err := json.Marshal(result)
	if err != nil {
		data, _ = json.Marshal(errors.Result(errors.NewSebotError(errors.InternalError, "failed to encode result", err)))
	}
	return string(data)
}

// IsError reports whether a Call result is an {"error": ...} value.
func IsError(result interface{}) bool {
	m, ok := result.(map[string]interface{})
	if !ok {
		return false
	}
	_, has := m["error"]
	return has
}
