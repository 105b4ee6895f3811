package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jbony2888/resume-jd-analyzer/internal/evidence"
	"github.com/jbony2888/resume-jd-analyzer/internal/requirements"
	"github.com/jbony2888/resume-jd-analyzer/internal/textkit"
)

// ErrNotFound marks a load for a key that was never saved. Callers must treat
// it as fatal for frozen requirements: regeneration on miss is exactly the
// non-determinism the artifact freeze exists to prevent.
var ErrNotFound = errors.New("artifact not found")

const (
	requirementsArtifactVersion = "v1"
	hashKeyLength               = 16
)

// Store persists pipeline artifacts as human-readable JSON files under one
// directory. Filenames encode the storage key, so artifacts are discoverable
// by role and job-description identity without a separate index.
type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory backing this store.
func (s *Store) Dir() string {
	return s.dir
}

// RequirementsPath returns the storage path for a (role_id, jd_hash) key
// without touching the filesystem.
func (s *Store) RequirementsPath(roleID, jdHash string) string {
	filename := fmt.Sprintf("job_requirements.%s.%s.%s.json",
		sanitizeKey(roleID), sanitizeKey(jdHash), requirementsArtifactVersion)
	return filepath.Join(s.dir, filename)
}

// SaveRequirements freezes a requirements document. Two concurrent saves for
// the same job description text compute the same key; last-writer-wins is
// acceptable because content equality holds by construction.
func (s *Store) SaveRequirements(doc *requirements.Document) (string, error) {
	if err := validateRequirementsDoc(doc); err != nil {
		return "", fmt.Errorf("requirements document rejected by schema: %w", err)
	}

	path := s.RequirementsPath(doc.RoleID, doc.JDHash)
	if err := s.writeJSON(path, doc); err != nil {
		return "", err
	}
	return path, nil
}

// LoadRequirements loads a frozen requirements document. A missing artifact
// fails with ErrNotFound and is never recovered by re-extraction.
func (s *Store) LoadRequirements(roleID, jdHash string) (*requirements.Document, error) {
	path := s.RequirementsPath(roleID, jdHash)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf(
				"requirements %w for role_id=%s jd_hash=%s: run create-requirements for this job description first; frozen requirements are never regenerated automatically",
				ErrNotFound, roleID, textkit.ShortHash(jdHash, hashKeyLength))
		}
		return nil, fmt.Errorf("reading requirements artifact %s: %w", path, err)
	}

	var doc requirements.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding requirements artifact %s: %w", path, err)
	}
	return &doc, nil
}

// FindRequirementsByJDHash locates a frozen document by job-description hash
// alone, for callers that do not know the role id. Fails with ErrNotFound
// when no artifact matches; never regenerates.
func (s *Store) FindRequirementsByJDHash(jdHash string) (*requirements.Document, string, error) {
	pattern := filepath.Join(s.dir, fmt.Sprintf("job_requirements.*.%s.%s.json",
		sanitizeKey(jdHash), requirementsArtifactVersion))

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, "", fmt.Errorf("globbing requirements artifacts: %w", err)
	}
	if len(matches) == 0 {
		return nil, "", fmt.Errorf(
			"requirements %w for jd_hash=%s: run create-requirements with the same job description first; frozen requirements are never regenerated automatically",
			ErrNotFound, textkit.ShortHash(jdHash, hashKeyLength))
	}

	path := matches[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading requirements artifact %s: %w", path, err)
	}

	var doc requirements.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, "", fmt.Errorf("decoding requirements artifact %s: %w", path, err)
	}
	return &doc, path, nil
}

// SaveEvidence persists an evidence map for audit. The key includes the run
// id, so repeated evaluations of the same (job, resume) pair never overwrite
// each other.
func (s *Store) SaveEvidence(m *evidence.Map) (string, error) {
	if err := validateEvidenceMap(m); err != nil {
		return "", fmt.Errorf("evidence map rejected by schema: %w", err)
	}

	filename := fmt.Sprintf("evidence_%s_%s_%s.json",
		textkit.ShortHash(m.JDHash, hashKeyLength),
		textkit.ShortHash(m.ResumeHash, hashKeyLength),
		sanitizeKey(m.RunID))
	path := filepath.Join(s.dir, filename)

	if err := s.writeJSON(path, m); err != nil {
		return "", err
	}
	return path, nil
}

// LoadEvidence reads a persisted evidence map from the given path.
func (s *Store) LoadEvidence(path string) (*evidence.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("evidence %w at %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading evidence artifact %s: %w", path, err)
	}

	var m evidence.Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding evidence artifact %s: %w", path, err)
	}
	return &m, nil
}

func (s *Store) writeJSON(path string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating artifacts dir %s: %w", s.dir, err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("opening artifact %s: %w", path, err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding artifact %s: %w", path, err)
	}
	return nil
}

// sanitizeKey strips everything outside [A-Za-z0-9-_] so storage keys can
// never traverse paths or produce invalid filenames.
func sanitizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
