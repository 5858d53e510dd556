package query

import (
	"context"
	"sort"

	"sebot/internal/docstore"
)

const (
	// componentWeight makes a component match count double.
	componentWeight = 2
	// maxRecommendations bounds the ranked list.
	maxRecommendations = 3
	resolvedStatus     = "Resolved"
)

// AnalyzeDeveloperExpertise ranks the project's assignees by how much
// related work they have done. component and keywords are optional;
// when empty the matching count is zero.
//
// Equal scores keep the order in which assignees were first seen.
func (e *Engine) AnalyzeDeveloperExpertise(ctx context.Context, projectName, component, keywords string) (*ExpertiseReport, error) {
	ids, err := e.ResolveIssueSystemIDs(ctx, projectName)
	if err != nil {
		return nil, err
	}
	scope := docstore.In{Field: "issue_system_id", Values: ids}

	candidates, err := e.assignees(ctx, scope)
	if err != nil {
		return nil, err
	}

	recs := make([]Recommendation, 0, len(candidates))
	for _, assignee := range candidates {
		mine := docstore.And{scope, docstore.Eq{Field: "assignee_id", Value: assignee}}

		var componentHits, keywordHits int64
		if component != "" {
			componentHits, err = e.countWithin(ctx, mine, docstore.Or{
				docstore.Contains{Field: "component", Text: component},
				docstore.Contains{Field: "title", Text: component},
			})
			if err != nil {
				return nil, err
			}
		}
		if keywords != "" {
			keywordHits, err = e.countWithin(ctx, mine, docstore.Or{
				docstore.Contains{Field: "title", Text: keywords},
				docstore.Contains{Field: "desc", Text: keywords},
			})
			if err != nil {
				return nil, err
			}
		}
		resolved, err := e.countWithin(ctx, mine,
			docstore.Eq{Field: "status", Value: docstore.String(resolvedStatus)})
		if err != nil {
			return nil, err
		}

		score := componentWeight*componentHits + keywordHits + resolved
		if score == 0 {
			continue
		}
		recs = append(recs, Recommendation{
			DeveloperID:         docstore.Text(assignee),
			DeveloperName:       developerName(assignee),
			ExpertiseScore:      score,
			ComponentExperience: componentHits,
			KeywordExperience:   keywordHits,
			ResolvedIssues:      resolved,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].ExpertiseScore > recs[j].ExpertiseScore
	})

	e.logger.Debug("Scored developers",
		"project", projectName,
		"candidates", len(candidates),
		"scored", len(recs),
	)

	total := len(recs)
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return &ExpertiseReport{
		Recommendations: recs,
		TotalCandidates: total,
	}, nil
}

func (e *Engine) countWithin(ctx context.Context, base docstore.And, extra docstore.Filter) (int64, error) {
	filter := append(append(docstore.And{}, base...), extra)
	n, err := e.store.Count(ctx, docstore.IssueCollection, filter)
	if err != nil {
		return 0, storageErr("count issues", err)
	}
	return n, nil
}

// developerName derives a display name: the last four characters of a
// textual identifier, or the full identifier text otherwise.
func developerName(v docstore.Value) string {
	if s, ok := v.(docstore.String); ok {
		r := []rune(string(s))
		if len(r) > 4 {
			r = r[len(r)-4:]
		}
		return "Dev-" + string(r)
	}
	return "Dev-" + docstore.Text(v)
}
