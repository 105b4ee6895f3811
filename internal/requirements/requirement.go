package requirements

import (
	"time"
)

// Version identifies the normalization contract baked into this package.
// Bumped whenever the normalization rules change in a way that affects IDs.
const Version = "2.0.0"

// CategoryPrecedence orders valid categories from most to least specific.
// Category inference for out-of-set proposals walks this order.
var CategoryPrecedence = []string{"AI", "Systems", "Infrastructure", "Technical", "Domain", "Collaboration", "Behavioral"}

// DefaultCategory is assigned when neither the proposed category nor keyword
// inference yields a valid one.
const DefaultCategory = "Technical"

var categoryKeywords = map[string][]string{
	"AI":             {"llm", "genai", "machine learning", "ml", "model", "inference", "prompt", "evaluation", "retrieval", "nlp"},
	"Systems":        {"distributed", "scalability", "reliability", "services", "architecture", "microservices"},
	"Infrastructure": {"k8s", "kubernetes", "terraform", "ci/cd", "observability", "monitoring", "docker", "aws", "gcp"},
	"Technical":      {"typescript", "python", "node", "react", "sql", "api", "fastapi", "django", "postgresql"},
	"Domain":         {"healthcare", "fintech", "gov", "compliance", "mental health", "patient"},
	"Collaboration":  {"cross-functional", "stakeholders", "clinicians", "product", "designers"},
	"Behavioral":     {"ownership", "leadership", "mentoring", "communication", "mentorship"},
}

var validCategories = func() map[string]bool {
	set := make(map[string]bool, len(CategoryPrecedence))
	for _, c := range CategoryPrecedence {
		set[c] = true
	}
	return set
}()

// Requirement is one normalized, frozen job requirement. Immutable once part
// of a Document; the ID is content-derived so identical semantic requirements
// receive identical IDs across runs and re-extractions.
type Requirement struct {
	ID             string   `json:"id"`
	RequirementKey string   `json:"requirement_key"`
	Category       string   `json:"category"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	MustHave       bool     `json:"must_have"`
	Weight         int      `json:"weight"`
	Aliases        []string `json:"aliases"`
}

// Document is the frozen requirements artifact for one job description
// version. JDHash is the authoritative identity of the job description text.
type Document struct {
	RoleID              string        `json:"role_id"`
	JDHash              string        `json:"jd_hash"`
	RequirementsVersion string        `json:"requirements_version"`
	CreatedAt           string        `json:"created_at"`
	RoleTitle           string        `json:"role_title"`
	Requirements        []Requirement `json:"requirements"`
}

// NewDocument assembles a Document around already-normalized requirements.
// Deterministic for a given createdAt; callers pass time.Now().UTC().
func NewDocument(roleID, jdHash, roleTitle string, reqs []Requirement, createdAt time.Time) Document {
	if reqs == nil {
		reqs = []Requirement{}
	}
	return Document{
		RoleID:              roleID,
		JDHash:              jdHash,
		RequirementsVersion: Version,
		CreatedAt:           createdAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		RoleTitle:           roleTitle,
		Requirements:        reqs,
	}
}

// ByID indexes the document's requirements by their stable ID.
func (d *Document) ByID() map[string]Requirement {
	index := make(map[string]Requirement, len(d.Requirements))
	for _, r := range d.Requirements {
		index[r.ID] = r
	}
	return index
}

// ByKey indexes the document's requirements by requirement_key. Keys are
// unique within a document, so the index is lossless.
func (d *Document) ByKey() map[string]Requirement {
	index := make(map[string]Requirement, len(d.Requirements))
	for _, r := range d.Requirements {
		index[r.RequirementKey] = r
	}
	return index
}
