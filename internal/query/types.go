package query

import "sebot/internal/docstore"

// IssueFilter narrows project issues. Empty fields are left out of the
// query entirely.
type IssueFilter struct {
	Status     string
	Priority   string
	IssueType  string
	AssigneeID string
	ReporterID string
}

// IssuePage is one page of a project's issues.
type IssuePage struct {
	Issues     []docstore.Document `json:"issues"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalCount int64               `json:"total_count"`
}

// IssueCount is the result of CountIssues.
type IssueCount struct {
	Count int64 `json:"count"`
}

// UniqueValues is the result of ListUniqueValues.
type UniqueValues struct {
	UniqueValues []docstore.Value `json:"unique_values"`
}

// Assignees lists the distinct developers assigned to a project's issues.
type Assignees struct {
	Assignees []docstore.Value `json:"assignees"`
	Count     int              `json:"count"`
}

// IssueDetails is an issue together with everything that references it.
type IssueDetails struct {
	Issue         docstore.Document   `json:"issue"`
	Comments      []docstore.Document `json:"comments"`
	Events        []docstore.Document `json:"events"`
	LinkedCommits []docstore.Document `json:"linked_commits"`
}

// IssueComments is the result of GetIssueComments.
type IssueComments struct {
	Comments []docstore.Document `json:"comments"`
}

// Recommendation is one ranked developer.
type Recommendation struct {
	DeveloperID         string `json:"developer_id"`
	DeveloperName       string `json:"developer_name"`
	ExpertiseScore      int64  `json:"expertise_score"`
	ComponentExperience int64  `json:"component_experience"`
	KeywordExperience   int64  `json:"keyword_experience"`
	ResolvedIssues      int64  `json:"resolved_issues"`
}

// ExpertiseReport is the result of AnalyzeDeveloperExpertise.
type ExpertiseReport struct {
	Recommendations []Recommendation `json:"recommendations"`
	TotalCandidates int              `json:"total_candidates"`
}
