package state

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/detective-engine/pkg/casefile"
	"github.com/jwebster45206/detective-engine/pkg/contradiction"
	"github.com/jwebster45206/detective-engine/pkg/scoring"
	"github.com/jwebster45206/detective-engine/pkg/unlock"
)

// Reducer is the single state transition function for a case. It performs
// no I/O; the clock and ID source are injected so transitions are repeatable.
type Reducer struct {
	c     *casefile.Case
	now   func() time.Time
	newID func() string
}

type ReducerOption func(*Reducer)

// WithClock sets the time source used for unlock events and pivots.
func WithClock(now func() time.Time) ReducerOption {
	return func(r *Reducer) { r.now = now }
}

// WithIDGenerator sets the source of unlock event IDs.
func WithIDGenerator(newID func() string) ReducerOption {
	return func(r *Reducer) { r.newID = newID }
}

func NewReducer(c *casefile.Case, opts ...ReducerOption) *Reducer {
	r := &Reducer{
		c:     c,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Case returns the content the reducer evaluates against.
func (r *Reducer) Case() *casefile.Case {
	return r.c
}

// InitialState is the state a session starts from and returns to on reset.
func (r *Reducer) InitialState() *PlayerState {
	return NewPlayerState(r.c.InitialBudget())
}

// Reduce applies one action. Actions that change nothing return s itself;
// otherwise a new state is returned and s is left untouched.
func (r *Reducer) Reduce(s *PlayerState, a Action) *PlayerState {
	if s == nil {
		s = r.InitialState()
	}

	switch a := a.(type) {
	case StartGame:
		return NewPlayerState(a.InvestigationPoints)

	case ResetGame:
		return r.InitialState()

	case AdvancePhase:
		next := s.Phase.Next()
		if next == s.Phase {
			return s
		}
		ns := s.Clone()
		ns.Phase = next
		if s.Phase == PhaseInvestigation {
			ns.ActiveHypothesisID = ""
		}
		return ns

	case GoToPhase:
		if !a.Phase.IsValid() || a.Phase == s.Phase {
			return s
		}
		ns := s.Clone()
		ns.Phase = a.Phase
		return ns

	case SelectHypothesis:
		if slices.Contains(s.SelectedHypotheses, a.HypothesisID) || !r.selectable(s, a.HypothesisID) {
			return s
		}
		ns := s.Clone()
		ns.SelectedHypotheses = append(ns.SelectedHypotheses, a.HypothesisID)
		return ns

	case DeselectHypothesis:
		_, hasInitial := s.InitialProbabilities[a.HypothesisID]
		_, hasFinal := s.FinalProbabilities[a.HypothesisID]
		if !slices.Contains(s.SelectedHypotheses, a.HypothesisID) && !hasInitial && !hasFinal {
			return s
		}
		ns := s.Clone()
		ns.SelectedHypotheses = slices.DeleteFunc(ns.SelectedHypotheses, func(id string) bool { return id == a.HypothesisID })
		delete(ns.InitialProbabilities, a.HypothesisID)
		delete(ns.FinalProbabilities, a.HypothesisID)
		return ns

	case SetInitialProbability:
		ns := s.Clone()
		if ns.InitialProbabilities == nil {
			ns.InitialProbabilities = make(map[string]float64)
		}
		ns.InitialProbabilities[a.HypothesisID] = a.Probability
		return ns

	case SetFinalProbability:
		ns := s.Clone()
		if ns.FinalProbabilities == nil {
			ns.FinalProbabilities = make(map[string]float64)
		}
		ns.FinalProbabilities[a.HypothesisID] = a.Probability
		return ns

	case CollectEvidence:
		if s.HasCollected(a.ActionID) || a.Cost < 0 || a.Cost > s.InvestigationPointsRemaining {
			return s
		}
		// the authored cost is binding; unknown actions cannot be collected
		if r.c != nil {
			if action, ok := r.c.Action(a.ActionID); !ok || action.Cost != a.Cost {
				return s
			}
		}
		ns := s.Clone()
		ns.CollectedEvidenceIDs = append(ns.CollectedEvidenceIDs, a.ActionID)
		ns.InvestigationPointsRemaining -= a.Cost
		r.discover(ns, a.ActionID)
		return ns

	case SetConfidence:
		if a.Level == s.ConfidenceLevel {
			return s
		}
		ns := s.Clone()
		ns.ConfidenceLevel = a.Level
		return ns

	case CalculateScores:
		ns := s.Clone()
		scores := scoring.Calculate(ns, r.c)
		ns.Scores = &scores
		return ns

	case UnlockHypothesis:
		if slices.Contains(s.UnlockedHypotheses, a.HypothesisID) {
			return s
		}
		if _, ok := s.UnlockEventFor(a.HypothesisID); ok {
			return s
		}
		// tier 1 is always unlocked, so there is nothing to record
		if r.c != nil {
			if h, ok := r.c.Hypothesis(a.HypothesisID); !ok || h.Tier == casefile.TierOne {
				return s
			}
		}
		ns := s.Clone()
		r.unlock(ns, a.HypothesisID, a.Trigger)
		return ns

	case AcknowledgeUnlock:
		i := slices.IndexFunc(s.UnlockHistory, func(e UnlockEvent) bool { return e.ID == a.EventID })
		if i < 0 {
			return s
		}
		if s.UnlockHistory[i].Acknowledged && !slices.Contains(s.PendingUnlockNotifications, a.EventID) {
			return s
		}
		ns := s.Clone()
		ns.UnlockHistory[i].Acknowledged = true
		ns.PendingUnlockNotifications = slices.DeleteFunc(ns.PendingUnlockNotifications, func(id string) bool { return id == a.EventID })
		return ns

	case DiscoverContradiction:
		if slices.Contains(s.DiscoveredContradictions, a.ContradictionID) {
			return s
		}
		if r.c != nil {
			if _, ok := r.c.Contradiction(a.ContradictionID); !ok {
				return s
			}
		}
		ns := s.Clone()
		ns.DiscoveredContradictions = append(ns.DiscoveredContradictions, a.ContradictionID)
		return ns

	case ResolveContradiction:
		if !slices.Contains(s.DiscoveredContradictions, a.ContradictionID) ||
			slices.Contains(s.ResolvedContradictions, a.ContradictionID) {
			return s
		}
		ns := s.Clone()
		ns.ResolvedContradictions = append(ns.ResolvedContradictions, a.ContradictionID)
		return ns

	case SetActiveHypothesis:
		if a.HypothesisID == "" {
			return r.Reduce(s, ClearActiveHypothesis{})
		}
		if a.HypothesisID == s.ActiveHypothesisID {
			return s
		}
		ns := s.Clone()
		ns.HypothesisPivots = append(ns.HypothesisPivots, Pivot{
			From:      s.ActiveHypothesisID,
			To:        a.HypothesisID,
			Timestamp: r.now(),
		})
		ns.ActiveHypothesisID = a.HypothesisID
		return ns

	case ClearActiveHypothesis:
		if s.ActiveHypothesisID == "" {
			return s
		}
		ns := s.Clone()
		ns.ActiveHypothesisID = ""
		return ns

	default:
		return s
	}
}

// Reconcile emits any unlocks and contradiction discoveries the current
// evidence already implies. It is idempotent and returns s when nothing is new.
func (r *Reducer) Reconcile(s *PlayerState) *PlayerState {
	if s == nil || r.c == nil {
		return s
	}
	budget := r.c.InitialBudget()
	if len(unlock.FindNewlyUnlocked(r.c.Hypotheses, s, budget)) == 0 &&
		len(contradiction.FindNewlyDiscovered(r.c.Contradictions, s.CollectedEvidenceIDs, s.DiscoveredContradictions)) == 0 {
		return s
	}
	ns := s.Clone()
	var last string
	if n := len(ns.CollectedEvidenceIDs); n > 0 {
		last = ns.CollectedEvidenceIDs[n-1]
	}
	r.discover(ns, last)
	return ns
}

// selectable reports whether a hypothesis may be added to the selection.
// Without case content every ID is accepted.
func (r *Reducer) selectable(s *PlayerState, hypothesisID string) bool {
	if r.c == nil {
		return true
	}
	h, ok := r.c.Hypothesis(hypothesisID)
	if !ok {
		return false
	}
	return unlock.IsHypothesisUnlocked(h, s, r.c.InitialBudget())
}

// discover appends unlock events and contradiction discoveries implied by
// ns's evidence. ns must already be a private copy.
func (r *Reducer) discover(ns *PlayerState, evidenceID string) {
	if r.c == nil {
		return
	}
	budget := r.c.InitialBudget()
	for _, id := range unlock.FindNewlyUnlocked(r.c.Hypotheses, ns, budget) {
		r.unlock(ns, id, unlock.NewTrigger(evidenceID, ns, budget))
	}
	for _, ct := range contradiction.FindNewlyDiscovered(r.c.Contradictions, ns.CollectedEvidenceIDs, ns.DiscoveredContradictions) {
		ns.DiscoveredContradictions = append(ns.DiscoveredContradictions, ct.ID)
	}
}

func (r *Reducer) unlock(ns *PlayerState, hypothesisID string, trigger unlock.Trigger) {
	event := UnlockEvent{
		ID:           r.newID(),
		HypothesisID: hypothesisID,
		Trigger:      trigger,
		Timestamp:    r.now(),
	}
	ns.UnlockedHypotheses = append(ns.UnlockedHypotheses, hypothesisID)
	ns.UnlockHistory = append(ns.UnlockHistory, event)
	ns.PendingUnlockNotifications = append(ns.PendingUnlockNotifications, event.ID)
}
