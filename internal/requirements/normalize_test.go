package requirements

import (
	"reflect"
	"testing"
)

func TestStableIDIsContentDerived(t *testing.T) {
	id := StableID("python_3", "Technical", true)

	// Pinned value: the ID must survive process restarts, not just repeated
	// calls within one process.
	if id != "REQ-38e11759f7" {
		t.Fatalf("unexpected stable id: %s", id)
	}

	if id != StableID("python_3", "Technical", true) {
		t.Fatalf("expected identical ids for identical inputs")
	}

	if id == StableID("python_3", "Technical", false) {
		t.Fatalf("expected must_have to participate in the id")
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Python 3", "python_3"},
		{"punctuation", "CI/CD & K8s!", "ci_cd_k8s"},
		{"leading trailing", "  --Go--  ", "go"},
		{"empty", "", "unknown"},
		{"only symbols", "!!!", "unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.input); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNormalizeSkipsProposalsWithoutName(t *testing.T) {
	reqs, stats := Normalize([]map[string]any{
		{"name": "   "},
		{"description": "no name at all"},
		{"name": "Go", "category": "Technical"},
	})

	if len(reqs) != 1 {
		t.Fatalf("expected 1 requirement, got %d", len(reqs))
	}

	if reqs[0].Name != "Go" {
		t.Fatalf("unexpected requirement kept: %s", reqs[0].Name)
	}

	if stats.Skipped != 2 {
		t.Fatalf("expected 2 skipped proposals, got %d", stats.Skipped)
	}
}

func TestNormalizeDeduplicatesByKeyFirstSeenWins(t *testing.T) {
	reqs, stats := Normalize([]map[string]any{
		{"name": "Python 3", "requirement_key": "python_3", "category": "Technical", "weight": 5},
		{"name": "Python-3!", "requirement_key": "python 3", "category": "Technical", "weight": 1},
	})

	if len(reqs) != 1 {
		t.Fatalf("expected 1 requirement after dedup, got %d", len(reqs))
	}

	if reqs[0].RequirementKey != "python_3" {
		t.Fatalf("unexpected key: %s", reqs[0].RequirementKey)
	}

	// First-seen entry owns the weight; the duplicate only contributes
	// name length, aliases and must_have.
	if reqs[0].Weight != 5 {
		t.Fatalf("expected first-seen weight 5, got %d", reqs[0].Weight)
	}

	if stats.Merged != 1 {
		t.Fatalf("expected 1 merge, got %d", stats.Merged)
	}
}

func TestNormalizeMergesNearDuplicatesByTokenOverlap(t *testing.T) {
	reqs, _ := Normalize([]map[string]any{
		{"name": "Distributed systems experience", "requirement_key": "distributed_systems", "category": "Systems", "must_have": false},
		{"name": "Experience distributed systems", "requirement_key": "experience_distributed", "category": "Systems", "must_have": true},
	})

	if len(reqs) != 1 {
		t.Fatalf("expected near-duplicates to merge, got %d requirements", len(reqs))
	}

	if !reqs[0].MustHave {
		t.Fatalf("expected must_have to be OR-ed across merged entries")
	}

	if reqs[0].RequirementKey != "distributed_systems" {
		t.Fatalf("expected first-seen key to win, got %s", reqs[0].RequirementKey)
	}
}

func TestNormalizeCategoryCoercion(t *testing.T) {
	cases := []struct {
		name     string
		proposal map[string]any
		want     string
	}{
		{
			name:     "valid category kept",
			proposal: map[string]any{"name": "Ownership", "category": "Behavioral"},
			want:     "Behavioral",
		},
		{
			name:     "inferred from keywords",
			proposal: map[string]any{"name": "LLM evaluation pipelines", "category": "Machine Learning"},
			want:     "AI",
		},
		{
			name:     "inferred from description",
			proposal: map[string]any{"name": "Container know-how", "category": "", "description": "kubernetes and docker in production"},
			want:     "Infrastructure",
		},
		{
			name:     "fallback",
			proposal: map[string]any{"name": "Juggling", "category": "Circus"},
			want:     "Technical",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reqs, _ := Normalize([]map[string]any{tc.proposal})
			if len(reqs) != 1 {
				t.Fatalf("expected 1 requirement, got %d", len(reqs))
			}
			if reqs[0].Category != tc.want {
				t.Fatalf("expected category %s, got %s", tc.want, reqs[0].Category)
			}
		})
	}
}

func TestNormalizeMustHaveHeuristics(t *testing.T) {
	cases := []struct {
		name     string
		proposal map[string]any
		want     bool
	}{
		{"explicit bool", map[string]any{"name": "Go", "must_have": false}, false},
		{"importance text must", map[string]any{"name": "Go", "importance": "This one is a MUST"}, true},
		{"importance text required", map[string]any{"name": "Go", "importance": "Required for the role"}, true},
		{"importance text nice", map[string]any{"name": "Go", "importance": "Nice-to-have"}, false},
		{"importance overrides must_have", map[string]any{"name": "Go", "importance": "optional", "must_have": true}, false},
		{"absent defaults true", map[string]any{"name": "Go"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reqs, _ := Normalize([]map[string]any{tc.proposal})
			if len(reqs) != 1 {
				t.Fatalf("expected 1 requirement, got %d", len(reqs))
			}
			if reqs[0].MustHave != tc.want {
				t.Fatalf("expected must_have=%t, got %t", tc.want, reqs[0].MustHave)
			}
		})
	}
}

func TestNormalizeWeightClamping(t *testing.T) {
	cases := []struct {
		name   string
		weight any
		want   int
	}{
		{"valid", 5, 5},
		{"json number", float64(2), 2},
		{"fractional", 2.5, 3},
		{"too small", 0, 3},
		{"too big", 9, 3},
		{"absent", nil, 3},
		{"garbage", "heavy", 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			proposal := map[string]any{"name": "Go"}
			if tc.weight != nil {
				proposal["weight"] = tc.weight
			}

			reqs, _ := Normalize([]map[string]any{proposal})
			if len(reqs) != 1 {
				t.Fatalf("expected 1 requirement, got %d", len(reqs))
			}
			if reqs[0].Weight != tc.want {
				t.Fatalf("expected weight %d, got %d", tc.want, reqs[0].Weight)
			}
		})
	}
}

func TestNormalizeDedupesAliasesPreservingOrder(t *testing.T) {
	reqs, _ := Normalize([]map[string]any{
		{"name": "Go", "aliases": []string{"golang", "go-lang", "golang"}},
	})

	if len(reqs) != 1 {
		t.Fatalf("expected 1 requirement, got %d", len(reqs))
	}

	want := []string{"golang", "go-lang"}
	if !reflect.DeepEqual(reqs[0].Aliases, want) {
		t.Fatalf("expected aliases %v, got %v", want, reqs[0].Aliases)
	}
}

func TestNormalizeSortsByMustHaveThenCategoryThenKey(t *testing.T) {
	reqs, _ := Normalize([]map[string]any{
		{"name": "Mentoring juniors", "requirement_key": "mentoring", "category": "Behavioral", "must_have": false},
		{"name": "Zookeeper", "requirement_key": "zookeeper", "category": "Systems", "must_have": true},
		{"name": "Airflow", "requirement_key": "airflow", "category": "Systems", "must_have": true},
		{"name": "LLM serving", "requirement_key": "llm_serving", "category": "AI", "must_have": false},
	})

	gotKeys := make([]string, 0, len(reqs))
	for _, r := range reqs {
		gotKeys = append(gotKeys, r.RequirementKey)
	}

	want := []string{"airflow", "zookeeper", "llm_serving", "mentoring"}
	if !reflect.DeepEqual(gotKeys, want) {
		t.Fatalf("unexpected order: %v", gotKeys)
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	input := []map[string]any{
		{"name": "Python 3", "requirement_key": "python_3", "category": "Technical", "must_have": true},
		{"name": "Kubernetes", "category": "Infrastructure", "importance": "required"},
		{"name": "Stakeholder management", "category": "Collaboration", "must_have": false, "weight": 2},
	}

	first, _ := Normalize(input)
	for i := 0; i < 100; i++ {
		again, _ := Normalize(input)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("normalization diverged on iteration %d", i)
		}
	}

	if first[0].ID == "" || first[0].ID[:4] != "REQ-" {
		t.Fatalf("expected REQ- prefixed id, got %q", first[0].ID)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	reqs, stats := Normalize(nil)

	if len(reqs) != 0 {
		t.Fatalf("expected no requirements, got %d", len(reqs))
	}

	if stats.Proposals != 0 || stats.Left != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
