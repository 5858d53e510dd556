package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"sebot/internal/docstore"
)

// CollectionSchema maps field names of a sampled document to type labels.
type CollectionSchema map[string]string

// CollectionSchemas samples one document per collection and labels the
// type of each of its fields. Empty collections map to an empty schema.
// The result is a hint for agents, not an enforced schema.
func (e *Engine) CollectionSchemas(ctx context.Context) (map[string]CollectionSchema, error) {
	names, err := e.store.CollectionNames(ctx)
	if err != nil {
		return nil, storageErr("list collections", err)
	}

	schemas := make(map[string]CollectionSchema, len(names))
	for _, name := range names {
		sample, found, err := e.store.FindOne(ctx, name, docstore.All{})
		if err != nil {
			return nil, storageErr("sample "+name, err)
		}
		schema := CollectionSchema{}
		if found {
			for _, f := range sample {
				schema[f.Key] = docstore.TypeLabel(f.Value)
			}
		}
		schemas[name] = schema
	}
	return schemas, nil
}

type collectionNote struct {
	name, about string
}

var collectionNotes = []collectionNote{
	{"pull_request_comment", "Comments associated with pull requests, including author and creation details."},
	{"mailing_list", "Metadata about mailing lists for projects, such as project ID and name."},
	{"travis_build", "Information about Travis CI builds, including build state and duration."},
	{"vcs_system", "Version control system details, such as repository type and URL."},
	{"pull_request_system", "Details about pull request systems, like the associated project ID and URL."},
	{"pull_request_file", "Information about files involved in pull requests, including changes and additions."},
	{"issue", "Details about issues, including title, description, priority, and status."},
	{"file", "Metadata about files in the version control system."},
	{"pull_request_review_comment", "Comments on pull request reviews, including paths and diffs."},
	{"project", "Contains project names and IDs."},
	{"event", "Events related to issues, including status changes and authors."},
	{"refactoring", "Refactoring information, including detection tools and commit details."},
	{"commit", "Details about commits, including authors, linked issues, and labels."},
	{"tag", "Tags associated with commits in the version control system."},
	{"file_action", "Actions performed on files during commits, such as additions and deletions."},
	{"issue_system", "Metadata about issue tracking systems, like URLs and project IDs."},
	{"commit_changes", "Details about changes between commits, including classifications."},
	{"message", "Mailing list messages, including authors, subjects, and bodies."},
	{"pull_request_commit", "Commit information related to pull requests."},
	{"pull_request_review", "Metadata about pull request reviews, including states and descriptions."},
	{"issue_comment", "Comments on issues, including author and creation details."},
	{"pull_request", "Metadata about pull requests, such as titles, states, and associated repositories."},
	{"pull_request_event", "Events related to pull requests, like commits and changes."},
	{"branch", "Metadata about branches in the version control system."},
	{"hunk", "Detailed code changes in commits, including line additions and deletions."},
}

const briefingIntro = `You are a chatbot for querying a software project's issue-tracking database. Use the provided functions to fetch relevant data based on user input.

Issue identifiers look like 'ZOOKEEPER-1939'; if one is given without capitals, capitalize it.
The status of issues can be 'Open', 'In Progress' or 'Closed'.

You handle two primary use cases:

1. Issue statistics: statistics about issues in a project, filtered by status, priority and so on.
   Example: "How many open issues are there in the Zookeeper project, and what percentage of them are critical?"

2. Developer assignment: recommending developers for an issue based on their experience.
   Example: "Who would be the best developer to assign this authentication bug in the security component of the Hadoop project?"
`

const briefingOutro = `Use the above information to guide users in querying the database effectively. Always aim to provide clear and concise answers, and if a query is ambiguous, ask for clarification.

When recommending developers for issue assignment, explain your reasoning based on their experience with similar components, keywords, and past issue resolution.
`

// Briefing builds the instruction text handed to a conversational agent:
// a description of the use cases, the known collections and the sampled
// schema of the connected database.
func (e *Engine) Briefing(ctx context.Context) (string, error) {
	schemas, err := e.CollectionSchemas(ctx)
	if err != nil {
		return "", err
	}
	dump, err := json.MarshalIndent(schemas, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to encode schema: %w", err)
	}

	var b strings.Builder
	b.WriteString(briefingIntro)
	b.WriteString("\nCollections and descriptions:\n")
	for _, n := range collectionNotes {
		fmt.Fprintf(&b, "- `%s`: %s\n", n.name, n.about)
	}
	b.WriteString("\n")
	b.WriteString(briefingOutro)
	b.WriteString("\nSampled schema:\n")
	b.Write(dump)
	b.WriteString("\n")
	return b.String(), nil
}
