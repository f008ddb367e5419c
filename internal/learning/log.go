package learning

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/cadre/pkg/models"
)

var (
	// ErrInvalidPattern is returned when a pattern cannot be recorded.
	ErrInvalidPattern = errors.New("invalid learning pattern")
	// ErrUnknownWorker is returned for roster operations on a missing id.
	ErrUnknownWorker = errors.New("unknown worker")
)

// View is a point-in-time copy of the log. Mutating it does not affect the log.
type View struct {
	SessionID string
	Patterns  []models.LearningPattern
	Workers   []models.WorkerState
	Metrics   Metrics
}

// Log is the engine's learning log: an ordered map of patterns keyed by id,
// the worker roster, and the aggregate metrics.
type Log struct {
	mu        sync.RWMutex
	sessionID string
	order     []string
	patterns  map[string]models.LearningPattern
	workers   []models.WorkerState
	workerIdx map[string]int
	metrics   Metrics
	now       func() time.Time
}

// NewLog creates an empty log for the session seeded with the given roster.
// An empty sessionID gets a generated one.
func NewLog(sessionID string, roster []models.WorkerState) *Log {
	if sessionID == "" {
		sessionID = NewSessionID()
	}
	l := &Log{
		sessionID: sessionID,
		patterns:  make(map[string]models.LearningPattern),
		now:       time.Now,
	}
	l.setWorkers(roster)
	return l
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.New().String()
}

// SetClock overrides the time source. Intended for tests.
func (l *Log) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// SessionID returns the current session id.
func (l *Log) SessionID() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sessionID
}

// Record appends a new pattern built from the given payloads.
func (l *Log) Record(kind models.PatternKind, input, output models.Payload, contexts []string) (models.LearningPattern, error) {
	if !kind.Valid() {
		return models.LearningPattern{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidPattern, kind)
	}
	if input.Version == 0 {
		input.Version = models.PayloadVersion
	}
	if output.Version == 0 {
		output.Version = models.PayloadVersion
	}

	p := models.LearningPattern{
		Kind:       kind,
		Input:      models.NewPayload(input.Data).Clone(),
		Output:     models.NewPayload(output.Data).Clone(),
		Confidence: Confidence(input, output),
		Contexts:   normalizeContexts(contexts),
	}
	p.Input.Version = input.Version
	p.Output.Version = output.Version

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, id := range l.order {
		prev := l.patterns[id]
		if prev.Kind == kind {
			p.LearningDepth++
		}
		if feeds(prev, p) {
			p.RecursiveImprovementCount++
		}
	}

	p.ID = l.newPatternIDLocked()
	p.CreatedAt = l.now().UTC()

	l.order = append(l.order, p.ID)
	l.patterns[p.ID] = p
	l.metrics = l.metrics.Add(patternDelta(p))

	return p.Clone(), nil
}

func (l *Log) newPatternIDLocked() string {
	for {
		id := fmt.Sprintf("lp-%s", uuid.New().String()[:8])
		if _, exists := l.patterns[id]; !exists {
			return id
		}
	}
}

func normalizeContexts(contexts []string) []string {
	out := make([]string, 0, len(contexts))
	for _, c := range contexts {
		c = strings.TrimSpace(c)
		if c == "" || slices.Contains(out, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Pattern returns a copy of the pattern with the given id.
func (l *Log) Pattern(id string) (models.LearningPattern, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.patterns[id]
	if !ok {
		return models.LearningPattern{}, false
	}
	return p.Clone(), true
}

// Patterns returns copies of all patterns in insertion order.
func (l *Log) Patterns() []models.LearningPattern {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.patternsLocked()
}

func (l *Log) patternsLocked() []models.LearningPattern {
	out := make([]models.LearningPattern, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.patterns[id].Clone())
	}
	return out
}

// Len returns the number of recorded patterns.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

// Metrics returns the current aggregate metrics.
func (l *Log) Metrics() Metrics {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.metrics
}

// Workers returns a copy of the roster in configuration order.
func (l *Log) Workers() []models.WorkerState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.workers)
}

// SetWorkerState transitions a worker. Activation stamps the activation time.
func (l *Log) SetWorkerState(id string, state models.ActiveState) (models.WorkerState, error) {
	if !state.Valid() {
		return models.WorkerState{}, fmt.Errorf("unknown worker state %q", state)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.workerIdx[id]
	if !ok {
		return models.WorkerState{}, fmt.Errorf("%w: %s", ErrUnknownWorker, id)
	}
	l.workers[i].State = state
	if state == models.WorkerActive {
		l.workers[i].LastActivation = l.now().UTC()
	}
	return l.workers[i], nil
}

// SetWorkerScore updates a worker's capability score, which must be in [0,1].
func (l *Log) SetWorkerScore(id string, score float64) (models.WorkerState, error) {
	if score < 0 || score > 1 {
		return models.WorkerState{}, fmt.Errorf("capability score %v out of range [0,1]", score)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.workerIdx[id]
	if !ok {
		return models.WorkerState{}, fmt.Errorf("%w: %s", ErrUnknownWorker, id)
	}
	l.workers[i].CapabilityScore = score
	return l.workers[i], nil
}

// View returns a consistent copy of the whole log taken under one lock, so
// a concurrent Record cannot produce a torn read.
func (l *Log) View() View {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return View{
		SessionID: l.sessionID,
		Patterns:  l.patternsLocked(),
		Workers:   slices.Clone(l.workers),
		Metrics:   l.metrics,
	}
}

// Replace swaps in restored state. Patterns keep their ids and order.
func (l *Log) Replace(v View) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v.SessionID != "" {
		l.sessionID = v.SessionID
	}
	l.order = make([]string, 0, len(v.Patterns))
	l.patterns = make(map[string]models.LearningPattern, len(v.Patterns))
	for _, p := range v.Patterns {
		if _, dup := l.patterns[p.ID]; !dup {
			l.order = append(l.order, p.ID)
		}
		l.patterns[p.ID] = p.Clone()
	}
	l.setWorkers(v.Workers)
	l.metrics = v.Metrics
}

func (l *Log) setWorkers(roster []models.WorkerState) {
	l.workers = slices.Clone(roster)
	if l.workers == nil {
		l.workers = []models.WorkerState{}
	}
	l.workerIdx = make(map[string]int, len(l.workers))
	for i, w := range l.workers {
		l.workerIdx[w.ID] = i
	}
}
