package models

import "slices"

// CollaborationStyle describes how an agent prefers to work with others.
type CollaborationStyle string

const (
	// StyleSolo agents work best alone.
	StyleSolo CollaborationStyle = "solo"
	// StyleLead agents drive a team.
	StyleLead CollaborationStyle = "lead"
	// StyleSupport agents complement a lead.
	StyleSupport CollaborationStyle = "support"
	// StyleCoordinator agents synthesize multiple perspectives.
	StyleCoordinator CollaborationStyle = "coordinator"
)

// Valid returns true if the style is a known value.
func (s CollaborationStyle) Valid() bool {
	switch s {
	case StyleSolo, StyleLead, StyleSupport, StyleCoordinator:
		return true
	default:
		return false
	}
}

// AgentProfile is a registered capability profile. Profiles are immutable
// once registered; callers receive copies from the registry.
type AgentProfile struct {
	// ID is the unique identifier for this agent.
	ID string `json:"id"`
	// Domains are the subject-matter areas the agent covers. Never empty.
	Domains []string `json:"domains"`
	// Tier is the highest complexity the agent handles unaided.
	Tier ComplexityTier `json:"complexityTier"`
	// Specializations are free-form skill tags.
	Specializations []string `json:"specializations,omitempty"`
	// Style is the agent's collaboration style.
	Style CollaborationStyle `json:"collaborationStyle"`
}

// HasDomain reports whether the agent covers the given domain.
func (a AgentProfile) HasDomain(domain string) bool {
	return slices.Contains(a.Domains, domain)
}

// Clone returns a deep copy of the profile.
func (a AgentProfile) Clone() AgentProfile {
	a.Domains = slices.Clone(a.Domains)
	a.Specializations = slices.Clone(a.Specializations)
	return a
}
