package orchestrator

import (
	"errors"
	"slices"
	"strings"

	"github.com/ShayCichocki/cadre/pkg/models"
)

// ErrInvalidRequirement is returned for an empty or whitespace-only description.
var ErrInvalidRequirement = errors.New("invalid requirement")

// TaskAnalyzer turns a free-text description into a TaskRequirement.
// It is a pure function of its keyword tables and input.
type TaskAnalyzer struct {
	keywords Keywords
	domains  []string
}

// NewTaskAnalyzer creates an analyzer over the given keyword tables.
func NewTaskAnalyzer(k Keywords) *TaskAnalyzer {
	domains := make([]string, 0, len(k.Domains))
	for d := range k.Domains {
		domains = append(domains, d)
	}
	// Map iteration order is random; domain output must not be.
	slices.Sort(domains)
	return &TaskAnalyzer{keywords: k, domains: domains}
}

// Analyze classifies description.
func (a *TaskAnalyzer) Analyze(description string) (models.TaskRequirement, error) {
	if strings.TrimSpace(description) == "" {
		return models.TaskRequirement{}, ErrInvalidRequirement
	}
	lower := strings.ToLower(description)

	tier, _ := a.keywords.ClassifyComplexity(description)

	var domains []string
	for _, d := range a.domains {
		if matchAny(lower, a.keywords.Domains[d]) != "" {
			domains = append(domains, d)
		}
	}
	if len(domains) == 0 {
		domains = []string{models.GeneralDomain}
	}

	return models.TaskRequirement{
		Description:                  description,
		Tier:                         tier,
		Domains:                      domains,
		RequiresMultiplePerspectives: matchAny(lower, a.keywords.MultiPerspective) != "",
		Urgency:                      a.keywords.ClassifyUrgency(description),
	}, nil
}
