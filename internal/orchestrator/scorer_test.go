package orchestrator

import (
	"math"
	"testing"

	"github.com/ShayCichocki/cadre/internal/registry"
	"github.com/ShayCichocki/cadre/pkg/models"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		agent models.AgentProfile
		req   models.TaskRequirement
		want  float64
	}{
		{
			name:  "perfect fit",
			agent: models.AgentProfile{Domains: []string{"a", "b"}, Tier: models.TierExpert, Style: models.StyleCoordinator},
			req:   models.TaskRequirement{Domains: []string{"a", "b"}, Tier: models.TierExpert, RequiresMultiplePerspectives: true},
			want:  1,
		},
		{
			name:  "half domains, under-tiered lead",
			agent: models.AgentProfile{Domains: []string{"a", "c"}, Tier: models.TierHigh, Style: models.StyleLead},
			req:   models.TaskRequirement{Domains: []string{"a", "b"}, Tier: models.TierExpert, RequiresMultiplePerspectives: true},
			want:  0.4*0.5 + 0.3*0.75 + 0.3*0.8,
		},
		{
			name:  "no domain overlap solo work",
			agent: models.AgentProfile{Domains: []string{"x"}, Tier: models.TierLow, Style: models.StyleSupport},
			req:   models.TaskRequirement{Domains: []string{"a"}, Tier: models.TierMedium},
			want:  0 + 0.3*0.5 + 0.3*0.7,
		},
		{
			name:  "denominator is the larger set",
			agent: models.AgentProfile{Domains: []string{"a", "b", "c", "d"}, Tier: models.TierLow, Style: models.StyleSolo},
			req:   models.TaskRequirement{Domains: []string{"a"}, Tier: models.TierLow},
			want:  0.4*0.25 + 0.3 + 0.3,
		},
		{
			name:  "duplicate domains count once",
			agent: models.AgentProfile{Domains: []string{"a", "a"}, Tier: models.TierLow, Style: models.StyleSolo},
			req:   models.TaskRequirement{Domains: []string{"a", "a"}, Tier: models.TierLow},
			want:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.agent, tt.req)
			if !near(got, tt.want) {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScore_Bounds(t *testing.T) {
	reqs := []models.TaskRequirement{
		{Domains: []string{"general"}, Tier: models.TierLow},
		{Domains: []string{"consciousness", "architecture"}, Tier: models.TierExpert, RequiresMultiplePerspectives: true},
		{Domains: []string{"optimization", "aesthetics", "architecture"}, Tier: models.TierMedium},
		{Domains: nil, Tier: ""},
	}
	for _, p := range registry.Default().Profiles() {
		for _, req := range reqs {
			b := Breakdown(p, req)
			for name, v := range map[string]float64{"domainFit": b.DomainFit, "complexityFit": b.ComplexityFit, "collabFit": b.CollabFit, "total": b.Total} {
				if v < 0 || v > 1 {
					t.Errorf("%s vs %v: %s = %v out of [0,1]", p.ID, req.Domains, name, v)
				}
			}
		}
	}
}

func TestCollabFit(t *testing.T) {
	tests := []struct {
		style models.CollaborationStyle
		multi bool
		want  float64
	}{
		{models.StyleCoordinator, true, 1.0},
		{models.StyleLead, true, 0.8},
		{models.StyleSupport, true, 0.6},
		{models.StyleSolo, true, 0.6},
		{models.StyleSolo, false, 1.0},
		{models.StyleLead, false, 0.9},
		{models.StyleSupport, false, 0.7},
		{models.StyleCoordinator, false, 0.7},
	}
	for _, tt := range tests {
		if got := collabFit(tt.style, tt.multi); got != tt.want {
			t.Errorf("collabFit(%s, %v) = %v, want %v", tt.style, tt.multi, got, tt.want)
		}
	}
}
