// Package registry holds the immutable catalog of agent capability profiles.
//
// A registry is built once, validated, and then only read. Concurrent
// callers may share one without locking. To change the catalog, build a
// new registry and swap it in.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ShayCichocki/cadre/pkg/models"
)

var (
	// ErrInvalidProfile is returned when a profile fails validation.
	ErrInvalidProfile = errors.New("invalid agent profile")
	// ErrDuplicateAgent is returned when two profiles share an id.
	ErrDuplicateAgent = errors.New("duplicate agent id")
)

// AgentRegistry is a read-only, ordered set of agent profiles.
// Declaration order is preserved and used to break scoring ties.
type AgentRegistry struct {
	profiles []models.AgentProfile
	index    map[string]int
}

// New validates profiles and builds a registry from them.
// Domains and specializations are lowercased, trimmed and deduplicated.
func New(profiles []models.AgentProfile) (*AgentRegistry, error) {
	r := &AgentRegistry{
		profiles: make([]models.AgentProfile, 0, len(profiles)),
		index:    make(map[string]int, len(profiles)),
	}

	for i, p := range profiles {
		normalized, err := normalize(p)
		if err != nil {
			return nil, fmt.Errorf("profile %d: %w", i, err)
		}
		if _, exists := r.index[normalized.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAgent, normalized.ID)
		}
		r.index[normalized.ID] = len(r.profiles)
		r.profiles = append(r.profiles, normalized)
	}

	return r, nil
}

// MustNew is like New but panics on error. Intended for static catalogs.
func MustNew(profiles []models.AgentProfile) *AgentRegistry {
	r, err := New(profiles)
	if err != nil {
		panic(err)
	}
	return r
}

func normalize(p models.AgentProfile) (models.AgentProfile, error) {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return p, fmt.Errorf("%w: empty id", ErrInvalidProfile)
	}
	p.Domains = normalizeSet(p.Domains)
	if len(p.Domains) == 0 {
		return p, fmt.Errorf("%w: %s has no domains", ErrInvalidProfile, p.ID)
	}
	if !p.Tier.Valid() {
		return p, fmt.Errorf("%w: %s has unknown tier %q", ErrInvalidProfile, p.ID, p.Tier)
	}
	if !p.Style.Valid() {
		return p, fmt.Errorf("%w: %s has unknown collaboration style %q", ErrInvalidProfile, p.ID, p.Style)
	}
	p.Specializations = normalizeSet(p.Specializations)
	return p, nil
}

// normalizeSet lowercases, trims and deduplicates while keeping first-seen order.
func normalizeSet(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Profiles returns copies of all profiles in declaration order.
func (r *AgentRegistry) Profiles() []models.AgentProfile {
	out := make([]models.AgentProfile, len(r.profiles))
	for i, p := range r.profiles {
		out[i] = p.Clone()
	}
	return out
}

// Get returns a copy of the profile with the given id.
func (r *AgentRegistry) Get(id string) (models.AgentProfile, bool) {
	i, ok := r.index[id]
	if !ok {
		return models.AgentProfile{}, false
	}
	return r.profiles[i].Clone(), true
}

// Len returns the number of registered agents.
func (r *AgentRegistry) Len() int {
	return len(r.profiles)
}

// IDs returns agent ids in declaration order.
func (r *AgentRegistry) IDs() []string {
	ids := make([]string, len(r.profiles))
	for i, p := range r.profiles {
		ids[i] = p.ID
	}
	return ids
}

// Domains returns every domain covered by at least one agent, in first-seen order.
func (r *AgentRegistry) Domains() []string {
	var out []string
	for _, p := range r.profiles {
		for _, d := range p.Domains {
			if !slices.Contains(out, d) {
				out = append(out, d)
			}
		}
	}
	return out
}
