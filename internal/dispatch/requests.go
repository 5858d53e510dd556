package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"

	"sebot/internal/errors"
	"sebot/internal/query"
)

// Request is a decoded, validated set of arguments for one function.
type Request interface {
	Function() string
	validate() error
}

type issueFilterArgs struct {
	Status     string `json:"status"`
	Priority   string `json:"priority"`
	IssueType  string `json:"issue_type"`
	AssigneeID string `json:"assignee_id"`
	ReporterID string `json:"reporter_id"`
}

func (a issueFilterArgs) filter() query.IssueFilter {
	return query.IssueFilter{
		Status:     a.Status,
		Priority:   a.Priority,
		IssueType:  a.IssueType,
		AssigneeID: a.AssigneeID,
		ReporterID: a.ReporterID,
	}
}

// FetchProjectIssuesRequest holds fetch_project_issues arguments.
type FetchProjectIssuesRequest struct {
	ProjectName string `json:"project_name"`
	issueFilterArgs
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// CountIssuesRequest holds count_issues arguments.
type CountIssuesRequest struct {
	ProjectName string `json:"project_name"`
	issueFilterArgs
}

// GetProjectAssigneesRequest holds get_project_assignees arguments.
type GetProjectAssigneesRequest struct {
	ProjectName string `json:"project_name"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	IssueType   string `json:"issue_type"`
	ReporterID  string `json:"reporter_id"`
}

// ListUniqueValuesRequest holds list_unique_values arguments.
type ListUniqueValuesRequest struct {
	CollectionName string                 `json:"collection_name"`
	AttributeName  string                 `json:"attribute_name"`
	Filters        map[string]interface{} `json:"filters"`
}

// GetIssueDetailsRequest holds get_issue_details arguments.
type GetIssueDetailsRequest struct {
	IssueIdentifier string `json:"issue_identifier"`
}

// GetIssueCommentsRequest holds get_issue_comments arguments.
type GetIssueCommentsRequest struct {
	IssueID string `json:"issue_id"`
}

// AnalyzeDeveloperExpertiseRequest holds analyze_developer_expertise
// arguments.
type AnalyzeDeveloperExpertiseRequest struct {
	ProjectName string `json:"project_name"`
	Component   string `json:"component"`
	Keywords    string `json:"keywords"`
}

func (*FetchProjectIssuesRequest) Function() string        { return FetchProjectIssues }
func (*CountIssuesRequest) Function() string               { return CountIssues }
func (*GetProjectAssigneesRequest) Function() string       { return GetProjectAssignees }
func (*ListUniqueValuesRequest) Function() string          { return ListUniqueValues }
func (*GetIssueDetailsRequest) Function() string           { return GetIssueDetails }
func (*GetIssueCommentsRequest) Function() string          { return GetIssueComments }
func (*AnalyzeDeveloperExpertiseRequest) Function() string { return AnalyzeDeveloperExpertise }

func (r *FetchProjectIssuesRequest) validate() error {
	return required("project_name", r.ProjectName)
}

func (r *CountIssuesRequest) validate() error {
	return required("project_name", r.ProjectName)
}

func (r *GetProjectAssigneesRequest) validate() error {
	return required("project_name", r.ProjectName)
}

func (r *ListUniqueValuesRequest) validate() error {
	if err := required("collection_name", r.CollectionName); err != nil {
		return err
	}
	return required("attribute_name", r.AttributeName)
}

func (r *GetIssueDetailsRequest) validate() error {
	return required("issue_identifier", r.IssueIdentifier)
}

func (r *GetIssueCommentsRequest) validate() error {
	return required("issue_id", r.IssueID)
}

func (r *AnalyzeDeveloperExpertiseRequest) validate() error {
	return required("project_name", r.ProjectName)
}

func required(field, value string) error {
	if value == "" {
		return fmt.Errorf("missing required argument %q", field)
	}
	return nil
}

func newRequest(name string) Request {
	switch name {
	case FetchProjectIssues:
		return &FetchProjectIssuesRequest{}
	case CountIssues:
		return &CountIssuesRequest{}
	case GetProjectAssignees:
		return &GetProjectAssigneesRequest{}
	case ListUniqueValues:
		return &ListUniqueValuesRequest{}
	case GetIssueDetails:
		return &GetIssueDetailsRequest{}
	case GetIssueComments:
		return &GetIssueCommentsRequest{}
	case AnalyzeDeveloperExpertise:
		return &AnalyzeDeveloperExpertiseRequest{}
	}
	return nil
}

// Decode parses the argument JSON of a call to name. Unknown names yield an
// UNSUPPORTED_FUNCTION error; malformed or incomplete arguments yield
// INVALID_ARGUMENTS. Empty argument text is treated as an empty object.
func Decode(name string, args []byte) (Request, error) {
	req := newRequest(name)
	if req == nil {
		return nil, errors.NewUnsupportedFunctionError(name)
	}

	args = bytes.TrimSpace(args)
	if len(args) == 0 || bytes.Equal(args, []byte("null")) {
		args = []byte("{}")
	}
	if err := json.Unmarshal(args, req); err != nil {
		return nil, errors.NewInvalidArgumentsError(name, err)
	}
	if err := req.validate(); err != nil {
		return nil, errors.NewInvalidArgumentsError(name, err)
	}
	return req, nil
}
