package registry

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/cadre/pkg/models"
)

// catalogFile is the on-disk YAML layout of an agent catalog.
type catalogFile struct {
	Agents []catalogEntry `yaml:"agents"`
}

type catalogEntry struct {
	ID              string   `yaml:"id"`
	Domains         []string `yaml:"domains"`
	Tier            string   `yaml:"tier"`
	Specializations []string `yaml:"specializations,omitempty"`
	Style           string   `yaml:"style"`
}

// LoadCatalog reads a YAML catalog file and builds a registry from it.
func LoadCatalog(path string) (*AgentRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	reg, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return reg, nil
}

// ParseCatalog builds a registry from YAML catalog bytes.
func ParseCatalog(data []byte) (*AgentRegistry, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	profiles := make([]models.AgentProfile, 0, len(cf.Agents))
	for _, a := range cf.Agents {
		profiles = append(profiles, models.AgentProfile{
			ID:              a.ID,
			Domains:         a.Domains,
			Tier:            models.ComplexityTier(a.Tier),
			Specializations: a.Specializations,
			Style:           models.CollaborationStyle(a.Style),
		})
	}
	return New(profiles)
}

// MarshalCatalog renders a registry in the YAML catalog layout.
func MarshalCatalog(r *AgentRegistry) ([]byte, error) {
	var cf catalogFile
	for _, p := range r.profiles {
		cf.Agents = append(cf.Agents, catalogEntry{
			ID:              p.ID,
			Domains:         p.Domains,
			Tier:            string(p.Tier),
			Specializations: p.Specializations,
			Style:           string(p.Style),
		})
	}
	return yaml.Marshal(&cf)
}

// DefaultProfiles is the built-in catalog: one agent per domain pair plus
// two generalists.
func DefaultProfiles() []models.AgentProfile {
	return []models.AgentProfile{
		{
			ID:              "consciousness-architect",
			Domains:         []string{"consciousness", "architecture"},
			Tier:            models.TierExpert,
			Specializations: []string{"orchestration", "system-design"},
			Style:           models.StyleCoordinator,
		},
		{
			ID:              "systems-optimizer",
			Domains:         []string{"architecture", "optimization"},
			Tier:            models.TierHigh,
			Specializations: []string{"performance", "token-budgeting"},
			Style:           models.StyleLead,
		},
		{
			ID:              "elegance-tuner",
			Domains:         []string{"optimization", "aesthetics"},
			Tier:            models.TierMedium,
			Specializations: []string{"refactoring", "readability"},
			Style:           models.StyleSupport,
		},
		{
			ID:              "entity-designer",
			Domains:         []string{"consciousness", "aesthetics"},
			Tier:            models.TierHigh,
			Specializations: []string{"persona-modelling"},
			Style:           models.StyleSupport,
		},
		{
			ID:              "generalist-coordinator",
			Domains:         []string{models.GeneralDomain},
			Tier:            models.TierMedium,
			Specializations: []string{"triage"},
			Style:           models.StyleCoordinator,
		},
		{
			ID:              "generalist",
			Domains:         []string{models.GeneralDomain},
			Tier:            models.TierLow,
			Specializations: []string{"quick-fixes"},
			Style:           models.StyleSolo,
		},
	}
}

// Default returns a registry over DefaultProfiles.
func Default() *AgentRegistry {
	return MustNew(DefaultProfiles())
}
