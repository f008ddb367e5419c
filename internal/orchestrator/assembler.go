package orchestrator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ShayCichocki/cadre/internal/registry"
	"github.com/ShayCichocki/cadre/pkg/models"
)

// DefaultMaxTeamSize is the team size cap used when none is configured.
const DefaultMaxTeamSize = 3

// Candidate is a scored agent.
type Candidate struct {
	Profile models.AgentProfile
	Score   ScoreBreakdown
}

// RankCandidates scores every agent in reg against req and returns those
// scoring above zero, best first. Equal scores keep registry order.
func RankCandidates(reg *registry.AgentRegistry, req models.TaskRequirement) []Candidate {
	if reg == nil {
		return nil
	}
	var out []Candidate
	for _, p := range reg.Profiles() {
		b := Breakdown(p, req)
		if b.Total <= 0 {
			continue
		}
		out = append(out, Candidate{Profile: p, Score: b})
	}
	slices.SortStableFunc(out, func(a, b Candidate) int {
		switch {
		case a.Score.Total > b.Score.Total:
			return -1
		case a.Score.Total < b.Score.Total:
			return 1
		default:
			return 0
		}
	})
	return out
}

// SelectOptimalAgent returns the best-scoring agent for req. ok is false
// only when no agent scores above zero.
func SelectOptimalAgent(reg *registry.AgentRegistry, req models.TaskRequirement) (Candidate, bool) {
	ranked := RankCandidates(reg, req)
	if len(ranked) == 0 {
		return Candidate{}, false
	}
	return ranked[0], true
}

// AssembleTeam builds the delegation result for req. Single-perspective
// requirements get the top agent alone. Multi-perspective requirements get
// a greedy domain cover seeded with the top agent: each further candidate,
// in rank order, joins only if it covers a required domain not yet covered.
// maxTeamSize <= 0 means DefaultMaxTeamSize.
func AssembleTeam(reg *registry.AgentRegistry, req models.TaskRequirement, maxTeamSize int) models.DelegationResult {
	if maxTeamSize <= 0 {
		maxTeamSize = DefaultMaxTeamSize
	}
	result := models.DelegationResult{
		Team:        []string{},
		Requirement: req,
	}

	ranked := RankCandidates(reg, req)
	if len(ranked) == 0 {
		result.Rationale = fmt.Sprintf("no agent scored above zero for tier %s domains [%s]",
			req.Tier, strings.Join(req.Domains, ", "))
		return result
	}

	primary := ranked[0]
	result.PrimaryAgentID = primary.Profile.ID
	result.Team = append(result.Team, primary.Profile.ID)

	covered := make(map[string]bool)
	markCovered(covered, primary.Profile, req)

	if req.RequiresMultiplePerspectives {
		for _, c := range ranked[1:] {
			if len(result.Team) >= maxTeamSize || allCovered(covered, req) {
				break
			}
			if !contributes(covered, c.Profile, req) {
				continue
			}
			result.Team = append(result.Team, c.Profile.ID)
			markCovered(covered, c.Profile, req)
		}
	}

	result.Rationale = rationale(req, primary, result.Team, len(covered))
	return result
}

func markCovered(covered map[string]bool, p models.AgentProfile, req models.TaskRequirement) {
	for _, d := range req.Domains {
		if p.HasDomain(d) {
			covered[d] = true
		}
	}
}

func contributes(covered map[string]bool, p models.AgentProfile, req models.TaskRequirement) bool {
	for _, d := range req.Domains {
		if !covered[d] && p.HasDomain(d) {
			return true
		}
	}
	return false
}

func allCovered(covered map[string]bool, req models.TaskRequirement) bool {
	for _, d := range req.Domains {
		if !covered[d] {
			return false
		}
	}
	return true
}

func rationale(req models.TaskRequirement, primary Candidate, team []string, covered int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tier %s, domains [%s]; primary %s (score %.2f)",
		req.Tier, strings.Join(req.Domains, ", "), primary.Profile.ID, primary.Score.Total)
	if req.RequiresMultiplePerspectives {
		fmt.Fprintf(&sb, "; team [%s] covers %d/%d domains",
			strings.Join(team, ", "), covered, len(toSet(req.Domains)))
	} else {
		sb.WriteString("; single perspective")
	}
	return sb.String()
}
