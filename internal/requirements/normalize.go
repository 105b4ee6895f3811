package requirements

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/jbony2888/resume-jd-analyzer/internal/textkit"
)

const (
	// idPrefix makes stable IDs recognizable in artifacts and logs.
	idPrefix = "REQ-"
	// idLength is the number of hash characters kept in a stable ID. Short
	// enough to display, long enough that accidental collisions across a
	// realistic requirement corpus are negligible.
	idLength = 10

	defaultWeight = 3

	// jaccardThreshold is the similarity above which two proposals are
	// considered the same requirement and merged.
	jaccardThreshold = 0.8
)

var (
	nonAlnum  = regexp.MustCompile(`[^a-z0-9]+`)
	slugToken = regexp.MustCompile(`[a-z0-9]+`)
)

// proposal is the loosely-typed shape of one raw requirement record coming
// from the extraction boundary. Importance, MustHave and Weight stay untyped
// because upstream output mixes booleans, numbers and free text.
type proposal struct {
	RequirementKey string   `mapstructure:"requirement_key"`
	Category       string   `mapstructure:"category"`
	Name           string   `mapstructure:"name"`
	Description    string   `mapstructure:"description"`
	Importance     any      `mapstructure:"importance"`
	MustHave       any      `mapstructure:"must_have"`
	Weight         any      `mapstructure:"weight"`
	Aliases        []string `mapstructure:"aliases"`
}

// Stats reports what normalization did with the input batch. The counters are
// the audit trail for silently absorbed input noise.
type Stats struct {
	Proposals int
	Skipped   int
	Merged    int
	Left      int
}

// Normalize converts raw requirement proposals into a canonical, deduplicated,
// stable-ID-bearing list. Pure: no I/O, no randomness, no time dependence.
//
// Rules:
//   - proposals without a non-empty name are skipped
//   - requirement_key is slugified from the proposed key, or the name
//   - out-of-set categories are inferred from name+description keywords by
//     category precedence, falling back to Technical
//   - near-duplicates (same key, or token Jaccard >= 0.8) merge into the
//     earlier entry: longest name wins, aliases union, must_have OR-ed
//   - output is sorted must_have desc, category precedence, requirement_key
func Normalize(raw []map[string]any) ([]Requirement, Stats) {
	stats := Stats{Proposals: len(raw)}
	if len(raw) == 0 {
		return []Requirement{}, stats
	}

	enriched := make([]*Requirement, 0, len(raw))
	for _, record := range raw {
		var p proposal
		if err := decodeProposal(record, &p); err != nil {
			stats.Skipped++
			continue
		}

		name := strings.TrimSpace(p.Name)
		if name == "" {
			stats.Skipped++
			continue
		}

		enriched = append(enriched, &Requirement{
			RequirementKey: computeKey(p.RequirementKey, name),
			Category:       mapCategory(p.Category, name, p.Description),
			Name:           name,
			Description:    strings.TrimSpace(p.Description),
			MustHave:       coerceMustHave(p.Importance, p.MustHave),
			Weight:         coerceWeight(p.Weight),
			Aliases:        dedupeStrings(p.Aliases),
		})
	}

	merged := make([]*Requirement, 0, len(enriched))
	for _, curr := range enriched {
		target := findMergeTarget(merged, curr)
		if target == nil {
			merged = append(merged, curr)
			continue
		}

		if len(curr.Name) > len(target.Name) {
			target.Name = curr.Name
		}
		target.Aliases = dedupeStrings(append(target.Aliases, curr.Aliases...))
		target.MustHave = target.MustHave || curr.MustHave
		stats.Merged++
	}

	for _, r := range merged {
		r.ID = StableID(r.RequirementKey, r.Category, r.MustHave)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.MustHave != b.MustHave {
			return a.MustHave
		}
		if pa, pb := categoryRank(a.Category), categoryRank(b.Category); pa != pb {
			return pa < pb
		}
		return a.RequirementKey < b.RequirementKey
	})

	out := make([]Requirement, len(merged))
	for i, r := range merged {
		out[i] = *r
	}
	stats.Left = len(out)

	return out, stats
}

// StableID derives the content-hash identity of a requirement. The same
// (key, category, must_have) triple always yields the same ID; insertion
// order never participates. Non-cryptographic identity, not a security
// boundary.
func StableID(requirementKey, category string, mustHave bool) string {
	payload := fmt.Sprintf("%s|%s|%t", requirementKey, category, mustHave)
	return idPrefix + textkit.ShortHash(textkit.HashText(payload), idLength)
}

// Slugify lowercases, collapses every run of non-alphanumeric characters to a
// single underscore and strips leading/trailing underscores. An empty result
// becomes "unknown".
func Slugify(s string) string {
	slug := nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		return "unknown"
	}
	return slug
}

func decodeProposal(record map[string]any, out *proposal) error {
	cfg := &mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return decoder.Decode(record)
}

func computeKey(proposedKey, name string) string {
	if strings.TrimSpace(proposedKey) != "" {
		return Slugify(proposedKey)
	}
	return Slugify(name)
}

func mapCategory(category, name, description string) string {
	if cat := strings.TrimSpace(category); validCategories[cat] {
		return cat
	}

	combined := strings.ToLower(name + " " + description)
	for _, cat := range CategoryPrecedence {
		for _, keyword := range categoryKeywords[cat] {
			if strings.Contains(combined, keyword) {
				return cat
			}
		}
	}

	return DefaultCategory
}

func categoryRank(category string) int {
	for i, c := range CategoryPrecedence {
		if c == category {
			return i
		}
	}
	return len(CategoryPrecedence)
}

// coerceMustHave reads importance first, then an explicit must_have flag.
// Free text counts as must-have when it mentions "must" or "required".
// Absent markers default to must-have.
func coerceMustHave(importance, mustHave any) bool {
	marker := importance
	if marker == nil {
		marker = mustHave
	}
	if marker == nil {
		return true
	}

	switch v := marker.(type) {
	case bool:
		return v
	case string:
		lower := strings.ToLower(v)
		return strings.Contains(lower, "must") || strings.Contains(lower, "required")
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return true
	}
}

// coerceWeight accepts integers in [1,5]; everything else becomes the
// default. JSON numbers arrive as float64, so integral floats count.
func coerceWeight(weight any) int {
	var value int
	switch v := weight.(type) {
	case int:
		value = v
	case int64:
		value = int(v)
	case float64:
		if v != float64(int(v)) {
			return defaultWeight
		}
		value = int(v)
	default:
		return defaultWeight
	}

	if value < 1 || value > 5 {
		return defaultWeight
	}
	return value
}

func dedupeStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func findMergeTarget(merged []*Requirement, curr *Requirement) *Requirement {
	currTokens := tokenSet(curr.Name + " " + curr.Description)
	for _, m := range merged {
		if m.RequirementKey == curr.RequirementKey {
			return m
		}
		if jaccard(currTokens, tokenSet(m.Name+" "+m.Description)) >= jaccardThreshold {
			return m
		}
	}
	return nil
}

func tokenSet(text string) map[string]bool {
	tokens := slugToken.FindAllString(strings.ToLower(text), -1)
	set := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		set[tok] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	inter := 0
	for tok := range a {
		if b[tok] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}

	return float64(inter) / float64(union)
}
