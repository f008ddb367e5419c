package models

import "slices"

// GeneralDomain is assigned to a requirement when no domain keyword matched.
const GeneralDomain = "general"

// TaskRequirement is the structured form of a free-text task description.
// It is created per delegation call and never stored.
type TaskRequirement struct {
	// Description is the original task text.
	Description string `json:"description"`
	// Tier is the required complexity tier.
	Tier ComplexityTier `json:"complexityTier"`
	// Domains are the matched subject areas, or {"general"}.
	Domains []string `json:"domains"`
	// RequiresMultiplePerspectives selects team assembly over a single agent.
	RequiresMultiplePerspectives bool `json:"requiresMultiplePerspectives"`
	// Urgency is how soon the task should start.
	Urgency Urgency `json:"urgency"`
}

// HasDomain reports whether the requirement includes the given domain.
func (r TaskRequirement) HasDomain(domain string) bool {
	return slices.Contains(r.Domains, domain)
}

// DelegationResult is the outcome of delegating one task.
type DelegationResult struct {
	// PrimaryAgentID is empty when no agent scored above zero.
	PrimaryAgentID string `json:"primaryAgentId,omitempty"`
	// Team lists agent ids, primary first, without duplicates.
	Team []string `json:"team"`
	// Rationale summarizes why this team was chosen.
	Rationale string `json:"rationale"`
	// Requirement is the analyzed requirement the result was built from.
	Requirement TaskRequirement `json:"requirement"`
}

// Eligible reports whether any agent was selected.
func (d DelegationResult) Eligible() bool {
	return d.PrimaryAgentID != ""
}
