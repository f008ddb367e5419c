package models

// ComplexityTier is the ordered capability level of a task or an agent.
type ComplexityTier string

const (
	// TierLow is for routine tasks any agent can handle.
	TierLow ComplexityTier = "low"
	// TierMedium is for analysis and optimization work.
	TierMedium ComplexityTier = "medium"
	// TierHigh is for system and architecture work.
	TierHigh ComplexityTier = "high"
	// TierExpert is for orchestration and consciousness-level work.
	TierExpert ComplexityTier = "expert"
)

// Valid returns true if the tier is a known value.
func (t ComplexityTier) Valid() bool {
	switch t {
	case TierLow, TierMedium, TierHigh, TierExpert:
		return true
	default:
		return false
	}
}

// Rank returns the ordinal of the tier, 1 for low through 4 for expert.
// Unknown tiers rank 0.
func (t ComplexityTier) Rank() int {
	switch t {
	case TierLow:
		return 1
	case TierMedium:
		return 2
	case TierHigh:
		return 3
	case TierExpert:
		return 4
	default:
		return 0
	}
}

// AtLeast reports whether t ranks at or above other.
func (t ComplexityTier) AtLeast(other ComplexityTier) bool {
	return t.Rank() >= other.Rank()
}

// Urgency describes how soon a task must be picked up.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Valid returns true if the urgency is a known value.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	default:
		return false
	}
}
