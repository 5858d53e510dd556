// Package dispatch routes tool calls requested by a conversational agent to
// the query engine and serializes the results for the agent.
package dispatch

// Function names understood by the router.
const (
	FetchProjectIssues        = "fetch_project_issues"
	GetIssueComments          = "get_issue_comments"
	CountIssues               = "count_issues"
	GetProjectAssignees       = "get_project_assignees"
	ListUniqueValues          = "list_unique_values"
	GetIssueDetails           = "get_issue_details"
	AnalyzeDeveloperExpertise = "analyze_developer_expertise"
)

// Function describes one callable function for an agent.
type Function struct {
	Name        string                 `json:"name" yaml:"name"`
	Description string                 `json:"description" yaml:"description"`
	Parameters  map[string]interface{} `json:"parameters" yaml:"parameters"`
}

func stringParam(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func intParam(description string, minimum int) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"minimum":     minimum,
		"description": description,
	}
}

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	if required == nil {
		required = []string{}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// issueFilterParams are shared by the project-scoped issue functions.
func issueFilterParams(withAssignee bool) map[string]interface{} {
	p := map[string]interface{}{
		"project_name": stringParam("The name of the project. No capital letters."),
		"status":       stringParam("Filter issues by status, e.g., 'Open', 'In Progress', 'Resolved', 'Closed'. Always starting with a capital letter."),
		"priority":     stringParam("Filter issues by priority, e.g., 'Critical', 'Major', 'Minor'."),
		"issue_type":   stringParam("Filter issues by type, e.g., 'Bug', 'Improvement', 'Task'."),
		"reporter_id":  stringParam("Filter issues by the ID of the reporter."),
	}
	if withAssignee {
		p["assignee_id"] = stringParam("Filter issues by the ID of the assignee.")
	}
	return p
}

// Catalog returns every function the router accepts, in a fixed order.
func Catalog() []Function {
	fetch := issueFilterParams(true)
	fetch["page"] = intParam("Page number, starting at 1.", 1)
	fetch["page_size"] = intParam("Number of issues per page. Defaults to 50. Values above the server maximum (500 unless configured otherwise) are reduced to it, and page offsets use the reduced size.", 1)

	return []Function{
		{
			Name:        FetchProjectIssues,
			Description: "Fetch all issues for a specified project with optional filters. Results are paginated.",
			Parameters:  objectSchema(fetch, "project_name"),
		},
		{
			Name:        GetIssueComments,
			Description: "Retrieve all comments for a specified issue.",
			Parameters: objectSchema(map[string]interface{}{
				"issue_id": stringParam("The ID of the issue."),
			}, "issue_id"),
		},
		{
			Name:        CountIssues,
			Description: "Count the number of issues in a project based on filters like developer ID, issue status, priority, or issue type.",
			Parameters:  objectSchema(issueFilterParams(true), "project_name"),
		},
		{
			Name:        GetProjectAssignees,
			Description: "Retrieve a list of assignees working on issues in a specific project and their total number, with optional filters such as issue priority or status.",
			Parameters:  objectSchema(issueFilterParams(false), "project_name"),
		},
		{
			Name:        ListUniqueValues,
			Description: "List unique values of a specified attribute in the issue collection or other collections.",
			Parameters: objectSchema(map[string]interface{}{
				"collection_name": stringParam("The name of the collection."),
				"attribute_name":  stringParam("The attribute for which to list unique values."),
				"filters": map[string]interface{}{
					"type":                 "object",
					"description":          "Filters to narrow down the unique values, one per attribute. A plain value is an equality match; identifier text matches stored identifiers in either form. An attribute may instead take {\"$ne\": v}, {\"$in\": [..]} or {\"$exists\": bool}. Other operators are rejected.",
					"additionalProperties": true,
				},
			}, "collection_name", "attribute_name"),
		},
		{
			Name:        GetIssueDetails,
			Description: "Retrieve detailed information about a specific issue by its exact identifier, including comments, events, and related commits.",
			Parameters: objectSchema(map[string]interface{}{
				"issue_identifier": stringParam("The exact identifier of the issue, e.g. 'ZOOKEEPER-1939'."),
			}, "issue_identifier"),
		},
		{
			Name:        AnalyzeDeveloperExpertise,
			Description: "Analyze developer expertise to recommend the best assignee for an issue based on component and keyword experience.",
			Parameters: objectSchema(map[string]interface{}{
				"project_name": stringParam("The name of the project."),
				"component":    stringParam("The component of the issue (e.g., 'security', 'authentication', 'ui')."),
				"keywords":     stringParam("Keywords related to the issue (e.g., 'authentication', 'bug', 'crash')."),
			}, "project_name"),
		},
	}
}

// Lookup returns the catalog entry for name.
func Lookup(name string) (Function, bool) {
	for _, f := range Catalog() {
		if f.Name == name {
			return f, true
		}
	}
	return Function{}, false
}

// AssistantTools wraps the catalog in the tool declaration shape used by
// assistant APIs: {"type": "function", "function": {...}}.
func AssistantTools() []map[string]interface{} {
	catalog := Catalog()
	tools := make([]map[string]interface{}, 0, len(catalog))
	for _, f := range catalog {
		tools = append(tools, map[string]interface{}{
			"type":     "function",
			"function": f,
		})
	}
	return tools
}
