package models

import (
	"maps"
	"slices"
	"time"
)

// PatternKind tags the variant of a LearningPattern.
type PatternKind string

const (
	KindPrerequisite   PatternKind = "prerequisite"
	KindTransformation PatternKind = "transformation"
	KindSynthesis      PatternKind = "synthesis"
	KindMetaLearning   PatternKind = "meta-learning"
)

// Valid returns true if the kind is a known value.
func (k PatternKind) Valid() bool {
	switch k {
	case KindPrerequisite, KindTransformation, KindSynthesis, KindMetaLearning:
		return true
	default:
		return false
	}
}

// PayloadVersion is the current Payload encoding version.
const PayloadVersion = 1

// Payload is an opaque, versioned key-value bag carried by a pattern.
type Payload struct {
	Version int               `json:"version"`
	Data    map[string]string `json:"data"`
}

// NewPayload wraps data in a Payload at the current version.
func NewPayload(data map[string]string) Payload {
	if data == nil {
		data = map[string]string{}
	}
	return Payload{Version: PayloadVersion, Data: data}
}

// Len returns the number of keys in the payload.
func (p Payload) Len() int {
	return len(p.Data)
}

// Keys returns the payload keys in sorted order.
func (p Payload) Keys() []string {
	return slices.Sorted(maps.Keys(p.Data))
}

// Clone returns a deep copy of the payload.
func (p Payload) Clone() Payload {
	return Payload{Version: p.Version, Data: maps.Clone(p.Data)}
}

// LearningPattern is one entry of the learning log. Patterns are never
// mutated after they are appended.
type LearningPattern struct {
	ID                        string      `json:"id"`
	Kind                      PatternKind `json:"kind"`
	Input                     Payload     `json:"input"`
	Output                    Payload     `json:"output"`
	Confidence                float64     `json:"confidence"`
	Contexts                  []string    `json:"contexts"`
	LearningDepth             int         `json:"learningDepth"`
	RecursiveImprovementCount int         `json:"recursiveImprovementCount"`
	CreatedAt                 time.Time   `json:"createdAt"`
}

// HasContext reports whether the pattern was recorded under the given context.
func (p LearningPattern) HasContext(context string) bool {
	return slices.Contains(p.Contexts, context)
}

// Clone returns a deep copy of the pattern.
func (p LearningPattern) Clone() LearningPattern {
	p.Input = p.Input.Clone()
	p.Output = p.Output.Clone()
	p.Contexts = slices.Clone(p.Contexts)
	return p
}
