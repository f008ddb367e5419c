package orchestrator

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/ShayCichocki/cadre/internal/learning"
	"github.com/ShayCichocki/cadre/internal/registry"
	"github.com/ShayCichocki/cadre/internal/snapshot"
	"github.com/ShayCichocki/cadre/pkg/models"
)

// History persists delegation outcomes and saved snapshot records.
type History interface {
	RecordDelegation(sessionID string, result models.DelegationResult) error
	RecordSnapshot(sessionID, path string, patterns, workers int) error
}

// PatternArchive keeps recorded patterns beyond the lifetime of the log.
type PatternArchive interface {
	Append(sessionID string, p models.LearningPattern) error
}

// Engine is the delegation and learning facade. Delegation reads an
// immutable registry and never blocks on the learning log. The log is the
// only mutable state and serializes its own writers.
type Engine struct {
	registry atomic.Pointer[registry.AgentRegistry]
	analyzer *TaskAnalyzer
	log      *learning.Log
	opts     engineOptions
}

// New creates an engine over reg. A nil registry behaves as an empty one.
func New(reg *registry.AgentRegistry, opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	keywords := DefaultKeywords()
	if o.keywords != nil {
		keywords = *o.keywords
	}

	e := &Engine{
		analyzer: NewTaskAnalyzer(keywords),
		log:      learning.NewLog(o.sessionID, o.roster),
		opts:     o,
	}
	e.log.SetClock(o.now)
	if reg == nil {
		reg = registry.MustNew(nil)
	}
	e.registry.Store(reg)
	return e
}

// Registry returns the registry currently used for delegation.
func (e *Engine) Registry() *registry.AgentRegistry {
	return e.registry.Load()
}

// Agents returns the profiles of the current registry.
func (e *Engine) Agents() []models.AgentProfile {
	return e.Registry().Profiles()
}

// SwapRegistry atomically replaces the registry. Delegations already in
// flight finish against the registry they started with.
func (e *Engine) SwapRegistry(reg *registry.AgentRegistry) {
	if reg == nil {
		return
	}
	e.registry.Store(reg)
	e.opts.sink.Log("[engine] registry swapped: %d agents", reg.Len())
}

// SessionID returns the id of the current session.
func (e *Engine) SessionID() string {
	return e.log.SessionID()
}

// MaxTeamSize returns the configured team size cap.
func (e *Engine) MaxTeamSize() int {
	return e.opts.maxTeamSize
}

// Analyze classifies a description without delegating it.
func (e *Engine) Analyze(description string) (models.TaskRequirement, error) {
	return e.analyzer.Analyze(description)
}

// SelectOptimalAgent returns the best agent for req, if any scores above zero.
func (e *Engine) SelectOptimalAgent(req models.TaskRequirement) (Candidate, bool) {
	return SelectOptimalAgent(e.Registry(), req)
}

// AssembleTeam builds a delegation result for req with the configured cap.
func (e *Engine) AssembleTeam(req models.TaskRequirement) models.DelegationResult {
	return AssembleTeam(e.Registry(), req, e.opts.maxTeamSize)
}

// DelegateTask analyzes description and assembles a team for it. The only
// error is ErrInvalidRequirement; a task no agent can take is returned as a
// result with no primary agent.
//
// Analysis and assembly do no I/O. When a History is configured the result
// is written to it synchronously after assembly.
func (e *Engine) DelegateTask(description string) (models.DelegationResult, error) {
	return e.DelegateTaskWithLimit(description, e.opts.maxTeamSize)
}

// DelegateTaskWithLimit is DelegateTask with a per-call team size cap.
func (e *Engine) DelegateTaskWithLimit(description string, maxTeamSize int) (models.DelegationResult, error) {
	req, err := e.analyzer.Analyze(description)
	if err != nil {
		e.opts.sink.Log("[engine] rejected description %q: %v", description, err)
		return models.DelegationResult{}, err
	}

	result := AssembleTeam(e.Registry(), req, maxTeamSize)
	if result.Eligible() {
		e.opts.sink.Log("[engine] delegated tier=%s domains=%s primary=%s team=%s",
			req.Tier, strings.Join(req.Domains, ","), result.PrimaryAgentID, strings.Join(result.Team, ","))
	} else {
		e.opts.sink.Log("[engine] no eligible agent for tier=%s domains=%s",
			req.Tier, strings.Join(req.Domains, ","))
	}

	if e.opts.history != nil {
		if err := e.opts.history.RecordDelegation(e.SessionID(), result); err != nil {
			e.opts.sink.Log("[engine] failed to record delegation: %v", err)
		}
	}
	return result, nil
}

// RecordPattern appends a pattern to the learning log and archives it.
// Archive failures are logged; the in-memory record stands.
func (e *Engine) RecordPattern(kind models.PatternKind, input, output models.Payload, contexts []string) (models.LearningPattern, error) {
	p, err := e.log.Record(kind, input, output, contexts)
	if err != nil {
		return models.LearningPattern{}, err
	}
	e.opts.sink.Log("[engine] recorded %s pattern %s confidence=%.2f depth=%d improvements=%d",
		p.Kind, p.ID, p.Confidence, p.LearningDepth, p.RecursiveImprovementCount)

	if e.opts.archive != nil {
		if err := e.opts.archive.Append(e.SessionID(), p); err != nil {
			e.opts.sink.Log("[engine] failed to archive pattern %s: %v", p.ID, err)
		}
	}
	return p, nil
}

// Patterns returns the recorded patterns in insertion order.
func (e *Engine) Patterns() []models.LearningPattern {
	return e.log.Patterns()
}

// SearchPatterns ranks the session's patterns against query.
func (e *Engine) SearchPatterns(query string, limit int) []learning.ScoredPattern {
	return learning.NewRetriever(e.opts.now).Search(e.log.Patterns(), query, limit)
}

// Workers returns the worker roster.
func (e *Engine) Workers() []models.WorkerState {
	return e.log.Workers()
}

// SetWorkerState transitions a worker.
func (e *Engine) SetWorkerState(id string, state models.ActiveState) (models.WorkerState, error) {
	w, err := e.log.SetWorkerState(id, state)
	if err != nil {
		return models.WorkerState{}, err
	}
	e.opts.sink.Log("[engine] worker %s -> %s", id, state)
	return w, nil
}

// SetWorkerScore updates a worker's capability score.
func (e *Engine) SetWorkerScore(id string, score float64) (models.WorkerState, error) {
	w, err := e.log.SetWorkerScore(id, score)
	if err != nil {
		return models.WorkerState{}, err
	}
	e.opts.sink.Log("[engine] worker %s score %.2f", id, score)
	return w, nil
}

// Metrics returns the aggregate learning metrics.
func (e *Engine) Metrics() learning.Metrics {
	return e.log.Metrics()
}

// ExtractSnapshot captures the current session. It always succeeds.
func (e *Engine) ExtractSnapshot() snapshot.SessionSnapshot {
	snap := snapshot.Extract(e.log.View(), e.opts.authenticContext, e.opts.now())
	e.opts.sink.Log("[engine] snapshot extracted: %s", snap.ContinuationBaseline)
	return snap
}

// SaveSnapshot extracts the session and writes it to path.
func (e *Engine) SaveSnapshot(path string) (snapshot.SessionSnapshot, error) {
	snap := e.ExtractSnapshot()
	if err := snapshot.Save(e.opts.fs, path, snap); err != nil {
		e.opts.sink.Log("[engine] snapshot save failed: %v", err)
		return snapshot.SessionSnapshot{}, err
	}
	e.opts.sink.Log("[engine] snapshot saved to %s", path)

	if e.opts.history != nil {
		if err := e.opts.history.RecordSnapshot(snap.SessionID, path, len(snap.Patterns), len(snap.WorkerStates)); err != nil {
			e.opts.sink.Log("[engine] failed to record snapshot: %v", err)
		}
	}
	return snap, nil
}

// LoadSnapshot reads the snapshot at path without applying it.
func (e *Engine) LoadSnapshot(path string) (snapshot.SessionSnapshot, error) {
	snap, err := snapshot.Load(e.opts.fs, path)
	if err != nil {
		e.opts.sink.Log("[engine] snapshot load failed: %v", err)
		return snapshot.SessionSnapshot{}, err
	}
	e.opts.sink.Log("[engine] snapshot loaded from %s: %d patterns, %d workers",
		path, len(snap.Patterns), len(snap.WorkerStates))
	return snap, nil
}

// Restore replaces the session state with the snapshot's and returns the
// recomputed metrics.
func (e *Engine) Restore(snap snapshot.SessionSnapshot) learning.Metrics {
	v := snapshot.Restore(snap, e.opts.now())
	e.log.Replace(v)
	e.opts.sink.Log("[engine] restored session %s: velocity=%.2f effectiveness=%.2f emergence=%.2f",
		v.SessionID, v.Metrics.LearningVelocity, v.Metrics.TransformationEffectiveness, v.Metrics.EmergenceQuotient)
	return v.Metrics
}

// Resume loads and restores the snapshot at path in one step.
func (e *Engine) Resume(path string) (snapshot.SessionSnapshot, error) {
	snap, err := e.LoadSnapshot(path)
	if err != nil {
		return snapshot.SessionSnapshot{}, fmt.Errorf("resume session: %w", err)
	}
	e.Restore(snap)
	return snap, nil
}
