package state

import (
	"maps"
	"slices"
	"time"

	"github.com/jwebster45206/detective-engine/pkg/scoring"
	"github.com/jwebster45206/detective-engine/pkg/unlock"
)

// Phase is a step of a case, in forward order.
type Phase string

const (
	PhaseBriefing      Phase = "briefing"
	PhaseHypothesis    Phase = "hypothesis"
	PhaseInvestigation Phase = "investigation"
	PhasePrediction    Phase = "prediction"
	PhaseResolution    Phase = "resolution"
	PhaseReview        Phase = "review"
)

// Phases lists every phase in play order.
var Phases = []Phase{
	PhaseBriefing,
	PhaseHypothesis,
	PhaseInvestigation,
	PhasePrediction,
	PhaseResolution,
	PhaseReview,
}

// Next returns the phase after p. The final phase, and any unknown value, return themselves.
func (p Phase) Next() Phase {
	i := slices.Index(Phases, p)
	if i < 0 || i == len(Phases)-1 {
		return p
	}
	return Phases[i+1]
}

func (p Phase) IsValid() bool {
	return slices.Contains(Phases, p)
}

// UnlockEvent records a tier 2 hypothesis becoming available. Only Acknowledged ever changes.
type UnlockEvent struct {
	ID           string         `json:"id"`
	HypothesisID string         `json:"hypothesis_id"`
	Trigger      unlock.Trigger `json:"trigger"`
	Timestamp    time.Time      `json:"timestamp"`
	Acknowledged bool           `json:"acknowledged"`
}

// Pivot records a change of active hypothesis. An empty From means nothing was active.
type Pivot struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

// PlayerState is one player's progress through a case. The reducer never
// mutates a state it was given; it returns a new value instead.
//
// A nil UnlockedHypotheses or DiscoveredContradictions marks a state saved
// before that tracking existed; fresh states always carry empty slices.
type PlayerState struct {
	Phase                        Phase                 `json:"phase"`
	SelectedHypotheses           []string              `json:"selected_hypotheses"`
	InitialProbabilities         map[string]float64    `json:"initial_probabilities"`
	FinalProbabilities           map[string]float64    `json:"final_probabilities"`
	InvestigationPointsRemaining int                   `json:"investigation_points_remaining"`
	CollectedEvidenceIDs         []string              `json:"collected_evidence_ids"`
	ConfidenceLevel              int                   `json:"confidence_level"`
	Scores                       *scoring.PlayerScores `json:"scores"`
	UnlockedHypotheses           []string              `json:"unlocked_hypotheses"`
	UnlockHistory                []UnlockEvent         `json:"unlock_history"`
	DiscoveredContradictions     []string              `json:"discovered_contradictions"`
	ResolvedContradictions       []string              `json:"resolved_contradictions"`
	PendingUnlockNotifications   []string              `json:"pending_unlock_notifications"`
	ActiveHypothesisID           string                `json:"active_hypothesis_id,omitempty"`
	HypothesisPivots             []Pivot               `json:"hypothesis_pivots"`
}

// NewPlayerState returns the initial state for a session with the given budget.
func NewPlayerState(investigationPoints int) *PlayerState {
	return &PlayerState{
		Phase:                        PhaseBriefing,
		SelectedHypotheses:           make([]string, 0),
		InitialProbabilities:         make(map[string]float64),
		FinalProbabilities:           make(map[string]float64),
		InvestigationPointsRemaining: max(investigationPoints, 0),
		CollectedEvidenceIDs:         make([]string, 0),
		UnlockedHypotheses:           make([]string, 0),
		UnlockHistory:                make([]UnlockEvent, 0),
		DiscoveredContradictions:     make([]string, 0),
		ResolvedContradictions:       make([]string, 0),
		PendingUnlockNotifications:   make([]string, 0),
		HypothesisPivots:             make([]Pivot, 0),
	}
}

// Clone returns a deep copy. Nil slices and maps stay nil.
func (s *PlayerState) Clone() *PlayerState {
	if s == nil {
		return nil
	}
	c := *s
	c.SelectedHypotheses = slices.Clone(s.SelectedHypotheses)
	c.InitialProbabilities = maps.Clone(s.InitialProbabilities)
	c.FinalProbabilities = maps.Clone(s.FinalProbabilities)
	c.CollectedEvidenceIDs = slices.Clone(s.CollectedEvidenceIDs)
	c.UnlockedHypotheses = slices.Clone(s.UnlockedHypotheses)
	c.UnlockHistory = slices.Clone(s.UnlockHistory)
	c.DiscoveredContradictions = slices.Clone(s.DiscoveredContradictions)
	c.ResolvedContradictions = slices.Clone(s.ResolvedContradictions)
	c.PendingUnlockNotifications = slices.Clone(s.PendingUnlockNotifications)
	c.HypothesisPivots = slices.Clone(s.HypothesisPivots)
	return &c
}

// HasCollected reports whether the evidence ID is in the collected set.
func (s *PlayerState) HasCollected(evidenceID string) bool {
	return slices.Contains(s.CollectedEvidenceIDs, evidenceID)
}

// UnlockEventFor returns the unlock event recorded for a hypothesis, if any.
func (s *PlayerState) UnlockEventFor(hypothesisID string) (UnlockEvent, bool) {
	i := slices.IndexFunc(s.UnlockHistory, func(e UnlockEvent) bool { return e.HypothesisID == hypothesisID })
	if i < 0 {
		return UnlockEvent{}, false
	}
	return s.UnlockHistory[i], true
}

// Getters satisfy unlock.StateView and scoring.StateView.

func (s *PlayerState) GetCollectedEvidenceIDs() []string           { return s.CollectedEvidenceIDs }
func (s *PlayerState) GetInvestigationPointsRemaining() int        { return s.InvestigationPointsRemaining }
func (s *PlayerState) GetUnlockedHypotheses() []string             { return s.UnlockedHypotheses }
func (s *PlayerState) GetSelectedHypotheses() []string             { return s.SelectedHypotheses }
func (s *PlayerState) GetInitialProbabilities() map[string]float64 { return s.InitialProbabilities }
func (s *PlayerState) GetFinalProbabilities() map[string]float64   { return s.FinalProbabilities }
func (s *PlayerState) GetConfidenceLevel() int                     { return s.ConfidenceLevel }
func (s *PlayerState) GetDiscoveredContradictions() []string       { return s.DiscoveredContradictions }

var (
	_ unlock.StateView  = (*PlayerState)(nil)
	_ scoring.StateView = (*PlayerState)(nil)
)
