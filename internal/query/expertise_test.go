package query

import (
	"context"
	"encoding/json"
	"testing"

	"sebot/internal/docstore"
)

func TestAnalyzeDeveloperExpertise(t *testing.T) {
	e, x := newTestEngine(t)

	report, err := e.AnalyzeDeveloperExpertise(context.Background(), "hadoop", "security", "auth")
	if err != nil {
		t.Fatalf("AnalyzeDeveloperExpertise: %v", err)
	}
	if report.TotalCandidates != 3 {
		t.Errorf("total_candidates = %d, want 3", report.TotalCandidates)
	}

	want := []Recommendation{
		{DeveloperID: "dev-alpha1", DeveloperName: "Dev-pha1", ExpertiseScore: 7, ComponentExperience: 3, KeywordExperience: 0, ResolvedIssues: 1},
		{DeveloperID: "dev-gamma3", DeveloperName: "Dev-mma3", ExpertiseScore: 4, ComponentExperience: 1, KeywordExperience: 1, ResolvedIssues: 1},
		{DeveloperID: x.hadoopDevB.Hex(), DeveloperName: "Dev-" + x.hadoopDevB.Hex(), ExpertiseScore: 3, ComponentExperience: 0, KeywordExperience: 2, ResolvedIssues: 1},
	}
	if len(report.Recommendations) != len(want) {
		t.Fatalf("recommendations = %+v, want %d entries", report.Recommendations, len(want))
	}
	for i, w := range want {
		if report.Recommendations[i] != w {
			t.Errorf("recommendations[%d] = %+v, want %+v", i, report.Recommendations[i], w)
		}
	}
}

func TestAnalyzeDeveloperExpertiseWithoutCriteria(t *testing.T) {
	e, _ := newTestEngine(t)

	report, err := e.AnalyzeDeveloperExpertise(context.Background(), "hadoop", "", "")
	if err != nil {
		t.Fatal(err)
	}
	// Only resolved issues count, and "resolved" in lower case does not.
	if report.TotalCandidates != 3 {
		t.Errorf("total_candidates = %d, want 3", report.TotalCandidates)
	}
	for _, r := range report.Recommendations {
		if r.ComponentExperience != 0 || r.KeywordExperience != 0 || r.ExpertiseScore != r.ResolvedIssues {
			t.Errorf("recommendation %+v should only count resolved issues", r)
		}
		if r.ResolvedIssues != 1 {
			t.Errorf("%s resolved = %d, want 1", r.DeveloperID, r.ResolvedIssues)
		}
	}
}

func TestAnalyzeDeveloperExpertiseExcludesZeroScores(t *testing.T) {
	e, _ := newTestEngine(t)

	report, err := e.AnalyzeDeveloperExpertise(context.Background(), "hadoop", "security", "auth")
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range report.Recommendations {
		if r.DeveloperID == "dev-delta4" {
			t.Errorf("zero-score developer recommended: %+v", r)
		}
	}
}

func TestAnalyzeDeveloperExpertiseTieBreak(t *testing.T) {
	e, _ := newTestEngine(t)

	report, err := e.AnalyzeDeveloperExpertise(context.Background(), "tied", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if report.TotalCandidates != 4 {
		t.Errorf("total_candidates = %d, want 4", report.TotalCandidates)
	}
	want := []string{"tie-w", "tie-x", "tie-y"}
	if len(report.Recommendations) != len(want) {
		t.Fatalf("recommendations = %+v, want top 3", report.Recommendations)
	}
	for i, id := range want {
		if report.Recommendations[i].DeveloperID != id {
			t.Errorf("recommendations[%d] = %s, want %s", i, report.Recommendations[i].DeveloperID, id)
		}
	}
}

func TestAnalyzeDeveloperExpertiseEmptyProject(t *testing.T) {
	e, _ := newTestEngine(t)

	report, err := e.AnalyzeDeveloperExpertise(context.Background(), "empty", "security", "")
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := json.Marshal(report)
	if string(raw) != `{"recommendations":[],"total_candidates":0}` {
		t.Errorf("JSON = %s", raw)
	}
}

func TestDeveloperName(t *testing.T) {
	tests := []struct {
		in   docstore.Value
		want string
	}{
		{docstore.String("5ca0b1b2c3d4e5f601234567"), "Dev-4567"},
		{docstore.String("bob"), "Dev-bob"},
		{docstore.String("jürgen"), "Dev-rgen"},
		{docstore.Int(42), "Dev-42"},
	}
	for _, tt := range tests {
		if got := developerName(tt.in); got != tt.want {
			t.Errorf("developerName(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
