package orchestrator

import (
	"strings"

	"github.com/ShayCichocki/cadre/pkg/models"
)

// Keywords is the single source of truth for requirement classification.
// Matching is case-insensitive substring containment.
type Keywords struct {
	// Complexity keyword classes, checked in priority order expert > high > medium.
	// A description matching none of them is low complexity.
	Expert []string
	High   []string
	Medium []string

	// Domains maps a domain name to the keywords that select it.
	// Several domains may match one description.
	Domains map[string][]string

	// MultiPerspective keywords flag tasks that need a team.
	MultiPerspective []string

	// Urgency keyword classes. Anything else is low urgency.
	UrgencyHigh   []string
	UrgencyMedium []string
}

// DefaultKeywords returns the built-in keyword tables.
func DefaultKeywords() Keywords {
	return Keywords{
		Expert: []string{
			"consciousness",
			"orchestration",
			"orchestrate",
			"recursive",
			"meta-learning",
			"emergent",
		},
		High: []string{
			"architecture",
			"system",
			"framework",
			"infrastructure",
		},
		// "optimize" alone does not raise the tier.
		Medium: []string{
			"analysis",
			"analyze",
			"optimization",
			"performance",
			"refactor",
			"review",
		},
		Domains: map[string][]string{
			"consciousness": {"consciousness", "entity", "awareness", "persona"},
			"architecture":  {"architecture", "system", "framework", "infrastructure"},
			"optimization":  {"optimization", "token", "performance", "efficiency"},
			"aesthetics":    {"aesthetic", "elegant", "elegance", "beautiful"},
		},
		MultiPerspective: []string{
			"orchestration",
			"collaboration",
			"democratic",
			"consciousness",
			"multi-agent",
			"consensus",
		},
		UrgencyHigh:   []string{"immediate", "urgent", "asap"},
		UrgencyMedium: []string{"soon", "priority"},
	}
}

// matchAny returns the first keyword contained in lower, or "".
// lower must already be lowercased.
func matchAny(lower string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return kw
		}
	}
	return ""
}

// ClassifyComplexity returns the tier for text along with the keyword that
// selected it.
func (k Keywords) ClassifyComplexity(text string) (models.ComplexityTier, string) {
	lower := strings.ToLower(text)
	if kw := matchAny(lower, k.Expert); kw != "" {
		return models.TierExpert, kw
	}
	if kw := matchAny(lower, k.High); kw != "" {
		return models.TierHigh, kw
	}
	if kw := matchAny(lower, k.Medium); kw != "" {
		return models.TierMedium, kw
	}
	return models.TierLow, ""
}

// ClassifyUrgency returns the urgency for text.
func (k Keywords) ClassifyUrgency(text string) models.Urgency {
	lower := strings.ToLower(text)
	if matchAny(lower, k.UrgencyHigh) != "" {
		return models.UrgencyHigh
	}
	if matchAny(lower, k.UrgencyMedium) != "" {
		return models.UrgencyMedium
	}
	return models.UrgencyLow
}
