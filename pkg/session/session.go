// Package session owns a single play-through of a case: the reducer, the
// current state, and the log of dispatched actions. Callers hold a *Session
// explicitly rather than reaching for shared global state.
package session

import (
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/jwebster45206/detective-engine/pkg/casefile"
	"github.com/jwebster45206/detective-engine/pkg/scoring"
	"github.com/jwebster45206/detective-engine/pkg/state"
)

// Session is not safe for concurrent use. Actions are applied strictly in
// the order Dispatch is called.
type Session struct {
	reducer *state.Reducer
	current *state.PlayerState
	history []state.Action
	labels  map[string]string
	logger  *slog.Logger
}

type options struct {
	reducerOpts []state.ReducerOption
	logger      *slog.Logger
	initial     *state.PlayerState
}

type Option func(*options)

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.reducerOpts = append(o.reducerOpts, state.WithClock(now)) }
}

func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.reducerOpts = append(o.reducerOpts, state.WithIDGenerator(newID)) }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithState resumes from a previously saved state instead of a fresh one.
func WithState(s *state.PlayerState) Option {
	return func(o *options) { o.initial = s }
}

// Change describes what a single dispatch did.
type Change struct {
	State      *state.PlayerState
	Changed    bool
	Unlocked   []state.UnlockEvent
	Discovered []string
}

func New(c *casefile.Case, opts ...Option) *Session {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Session{
		reducer: state.NewReducer(c, o.reducerOpts...),
		labels:  c.HypothesisLabels(),
		logger:  o.logger,
	}
	if o.initial != nil {
		s.current = o.initial
	} else {
		s.current = s.reducer.InitialState()
	}
	return s
}

// Dispatch applies one action and records it in the history, even when it
// turns out to be a no-op.
func (s *Session) Dispatch(a state.Action) Change {
	prev := s.current
	next := s.reducer.Reduce(prev, a)
	s.current = next
	s.history = append(s.history, a)

	change := Change{State: next, Changed: next != prev}
	if !change.Changed {
		s.logger.Debug("Action had no effect", "action", a.Type())
		return change
	}

	change.Unlocked = newEvents(prev.UnlockHistory, next.UnlockHistory)
	change.Discovered = newIDs(prev.DiscoveredContradictions, next.DiscoveredContradictions)

	s.logger.Debug("Action applied",
		"action", a.Type(),
		"phase", next.Phase,
		"investigation_points_remaining", next.InvestigationPointsRemaining)
	for _, e := range change.Unlocked {
		s.logger.Info("Hypothesis unlocked",
			"hypothesis_id", e.HypothesisID,
			"event_id", e.ID,
			"trigger", e.Trigger.Type)
	}
	for _, id := range change.Discovered {
		s.logger.Info("Contradiction discovered", "contradiction_id", id)
	}
	return change
}

// DispatchAll applies actions in order and returns the final state.
func (s *Session) DispatchAll(actions ...state.Action) *state.PlayerState {
	for _, a := range actions {
		s.Dispatch(a)
	}
	return s.current
}

// State returns the current snapshot. Treat it as read-only.
func (s *Session) State() *state.PlayerState {
	return s.current
}

func (s *Session) Case() *casefile.Case {
	return s.reducer.Case()
}

func (s *Session) Notifications() []state.Notification {
	return state.PendingNotifications(s.current, s.labels)
}

// Scores computes the report for the current state without storing it.
func (s *Session) Scores() scoring.PlayerScores {
	return scoring.Calculate(s.current, s.reducer.Case())
}

// History returns a copy of every action dispatched so far.
func (s *Session) History() []state.Action {
	return slices.Clone(s.history)
}

func newEvents(before, after []state.UnlockEvent) []state.UnlockEvent {
	var out []state.UnlockEvent
	for _, e := range after {
		if !slices.ContainsFunc(before, func(b state.UnlockEvent) bool { return b.ID == e.ID }) {
			out = append(out, e)
		}
	}
	return out
}

func newIDs(before, after []string) []string {
	var out []string
	for _, id := range after {
		if !slices.Contains(before, id) {
			out = append(out, id)
		}
	}
	return out
}
