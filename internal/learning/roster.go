package learning

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/cadre/pkg/models"
)

type rosterFile struct {
	Workers []rosterEntry `yaml:"workers"`
}

type rosterEntry struct {
	ID              string  `yaml:"id"`
	Name            string  `yaml:"name"`
	Specialty       string  `yaml:"specialty"`
	State           string  `yaml:"state"`
	CapabilityScore float64 `yaml:"capability_score"`
}

// DefaultRoster is the worker roster used when no roster file is configured.
func DefaultRoster() []models.WorkerState {
	return []models.WorkerState{
		{ID: "w-synthesis", Name: "Synthesis Worker", Specialty: "synthesis", State: models.WorkerActive, CapabilityScore: 0.8},
		{ID: "w-transform", Name: "Transformation Worker", Specialty: "transformation", State: models.WorkerActive, CapabilityScore: 0.7},
		{ID: "w-meta", Name: "Meta-Learning Worker", Specialty: "meta-learning", State: models.WorkerDormant, CapabilityScore: 0.5},
	}
}

// LoadRoster reads a YAML roster file.
func LoadRoster(path string) ([]models.WorkerState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}
	roster, err := ParseRoster(data)
	if err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	return roster, nil
}

// ParseRoster validates and converts YAML roster bytes. Missing states
// default to dormant.
func ParseRoster(data []byte) ([]models.WorkerState, error) {
	var rf rosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}

	seen := make(map[string]bool, len(rf.Workers))
	roster := make([]models.WorkerState, 0, len(rf.Workers))
	for i, w := range rf.Workers {
		id := strings.TrimSpace(w.ID)
		if id == "" {
			return nil, fmt.Errorf("worker %d: missing id", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("worker %s: duplicate id", id)
		}
		seen[id] = true

		state := models.ActiveState(w.State)
		if state == "" {
			state = models.WorkerDormant
		}
		if !state.Valid() {
			return nil, fmt.Errorf("worker %s: unknown state %q", id, w.State)
		}
		if w.CapabilityScore < 0 || w.CapabilityScore > 1 {
			return nil, fmt.Errorf("worker %s: capability score %v out of range [0,1]", id, w.CapabilityScore)
		}

		name := w.Name
		if name == "" {
			name = id
		}
		roster = append(roster, models.WorkerState{
			ID:              id,
			Name:            name,
			Specialty:       w.Specialty,
			State:           state,
			CapabilityScore: w.CapabilityScore,
		})
	}
	return roster, nil
}
