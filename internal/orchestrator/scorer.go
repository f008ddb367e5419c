package orchestrator

import (
	"github.com/ShayCichocki/cadre/internal/learning"
	"github.com/ShayCichocki/cadre/pkg/models"
)

// Scoring weights. They sum to 1 so a perfect fit scores exactly 1.
const (
	domainWeight     = 0.4
	complexityWeight = 0.3
	collabWeight     = 0.3
)

// ScoreBreakdown is a capability score and the terms it was built from.
type ScoreBreakdown struct {
	DomainFit     float64 `json:"domainFit"`
	ComplexityFit float64 `json:"complexityFit"`
	CollabFit     float64 `json:"collaborationFit"`
	Total         float64 `json:"score"`
}

// Score rates how well agent fits req, in [0,1].
func Score(agent models.AgentProfile, req models.TaskRequirement) float64 {
	return Breakdown(agent, req).Total
}

// Breakdown computes the weighted score terms for agent against req.
func Breakdown(agent models.AgentProfile, req models.TaskRequirement) ScoreBreakdown {
	b := ScoreBreakdown{
		DomainFit:     domainFit(agent.Domains, req.Domains),
		ComplexityFit: complexityFit(agent.Tier, req.Tier),
		CollabFit:     collabFit(agent.Style, req.RequiresMultiplePerspectives),
	}
	b.Total = learning.Clamp01(domainWeight*b.DomainFit + complexityWeight*b.ComplexityFit + collabWeight*b.CollabFit)
	return b
}

// domainFit is |a ∩ r| / max(|a|, |r|) over deduplicated sets.
func domainFit(agentDomains, reqDomains []string) float64 {
	a := toSet(agentDomains)
	r := toSet(reqDomains)
	denom := max(len(a), len(r))
	if denom == 0 {
		return 0
	}
	shared := 0
	for d := range r {
		if a[d] {
			shared++
		}
	}
	return learning.Clamp01(float64(shared) / float64(denom))
}

// complexityFit is 1 when the agent's tier covers the requirement, otherwise
// the ratio of the ranks. An unranked requirement is always covered.
func complexityFit(agent, req models.ComplexityTier) float64 {
	need := req.Rank()
	if need == 0 || agent.Rank() >= need {
		return 1
	}
	return float64(agent.Rank()) / float64(need)
}

func collabFit(style models.CollaborationStyle, multi bool) float64 {
	if multi {
		switch style {
		case models.StyleCoordinator:
			return 1.0
		case models.StyleLead:
			return 0.8
		default:
			return 0.6
		}
	}
	switch style {
	case models.StyleSolo:
		return 1.0
	case models.StyleLead:
		return 0.9
	default:
		return 0.7
	}
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
