package orchestrator

import (
	"time"

	"github.com/ShayCichocki/cadre/internal/logging"
	"github.com/ShayCichocki/cadre/internal/snapshot"
	"github.com/ShayCichocki/cadre/pkg/models"
)

// DefaultAuthenticContext is the context tag that marks springboard paths
// as authentic.
const DefaultAuthenticContext = "authentic-collaboration"

// Option configures an Engine. Use With* functions to create Options.
type Option func(*engineOptions)

type engineOptions struct {
	maxTeamSize      int
	authenticContext string
	keywords         *Keywords
	roster           []models.WorkerState
	sessionID        string
	sink             logging.Sink
	fs               snapshot.FileSystem
	history          History
	archive          PatternArchive
	now              func() time.Time
}

func defaultOptions() engineOptions {
	return engineOptions{
		maxTeamSize:      DefaultMaxTeamSize,
		authenticContext: DefaultAuthenticContext,
		sink:             logging.Nop(),
		fs:               snapshot.OSFileSystem{},
		now:              time.Now,
	}
}

// WithMaxTeamSize caps multi-perspective teams. Values <= 0 keep the default.
func WithMaxTeamSize(n int) Option {
	return func(o *engineOptions) {
		if n > 0 {
			o.maxTeamSize = n
		}
	}
}

// WithAuthenticContext sets the context tag that marks authentic springboard paths.
func WithAuthenticContext(tag string) Option {
	return func(o *engineOptions) { o.authenticContext = tag }
}

// WithKeywords replaces the analyzer keyword tables.
func WithKeywords(k Keywords) Option {
	return func(o *engineOptions) { o.keywords = &k }
}

// WithRoster seeds the worker roster.
func WithRoster(roster []models.WorkerState) Option {
	return func(o *engineOptions) { o.roster = roster }
}

// WithSessionID fixes the session id instead of generating one.
func WithSessionID(id string) Option {
	return func(o *engineOptions) { o.sessionID = id }
}

// WithSink sets the log sink. A nil sink discards output.
func WithSink(s logging.Sink) Option {
	return func(o *engineOptions) {
		if s == nil {
			s = logging.Nop()
		}
		o.sink = s
	}
}

// WithFileSystem sets the byte-stream filesystem snapshots are persisted through.
func WithFileSystem(fs snapshot.FileSystem) Option {
	return func(o *engineOptions) { o.fs = fs }
}

// WithHistory records delegations and saved snapshots.
func WithHistory(h History) Option {
	return func(o *engineOptions) { o.history = h }
}

// WithArchive archives every recorded pattern.
func WithArchive(a PatternArchive) Option {
	return func(o *engineOptions) { o.archive = a }
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(o *engineOptions) { o.now = now }
}
