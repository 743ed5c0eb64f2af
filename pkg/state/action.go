package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jwebster45206/detective-engine/pkg/unlock"
)

// ActionType names an action on the wire.
type ActionType string

const (
	ActionStartGame             ActionType = "START_GAME"
	ActionAdvancePhase          ActionType = "ADVANCE_PHASE"
	ActionGoToPhase             ActionType = "GO_TO_PHASE"
	ActionSelectHypothesis      ActionType = "SELECT_HYPOTHESIS"
	ActionDeselectHypothesis    ActionType = "DESELECT_HYPOTHESIS"
	ActionSetInitialProbability ActionType = "SET_INITIAL_PROBABILITY"
	ActionSetFinalProbability   ActionType = "SET_FINAL_PROBABILITY"
	ActionCollectEvidence       ActionType = "COLLECT_EVIDENCE"
	ActionSetConfidence         ActionType = "SET_CONFIDENCE"
	ActionCalculateScores       ActionType = "CALCULATE_SCORES"
	ActionUnlockHypothesis      ActionType = "UNLOCK_HYPOTHESIS"
	ActionAcknowledgeUnlock     ActionType = "ACKNOWLEDGE_UNLOCK"
	ActionDiscoverContradiction ActionType = "DISCOVER_CONTRADICTION"
	ActionResolveContradiction  ActionType = "RESOLVE_CONTRADICTION"
	ActionSetActiveHypothesis   ActionType = "SET_ACTIVE_HYPOTHESIS"
	ActionClearActiveHypothesis ActionType = "CLEAR_ACTIVE_HYPOTHESIS"
	ActionResetGame             ActionType = "RESET_GAME"
)

// Action is an input to the reducer.
type Action interface {
	Type() ActionType
}

type StartGame struct {
	InvestigationPoints int `json:"investigation_points"`
}

type AdvancePhase struct{}

type GoToPhase struct {
	Phase Phase `json:"phase"`
}

type SelectHypothesis struct {
	HypothesisID string `json:"hypothesis_id"`
}

type DeselectHypothesis struct {
	HypothesisID string `json:"hypothesis_id"`
}

type SetInitialProbability struct {
	HypothesisID string  `json:"hypothesis_id"`
	Probability  float64 `json:"probability"`
}

type SetFinalProbability struct {
	HypothesisID string  `json:"hypothesis_id"`
	Probability  float64 `json:"probability"`
}

type CollectEvidence struct {
	ActionID string `json:"action_id"`
	Cost     int    `json:"cost"`
}

type SetConfidence struct {
	Level int `json:"level"`
}

type CalculateScores struct{}

type UnlockHypothesis struct {
	HypothesisID string         `json:"hypothesis_id"`
	Trigger      unlock.Trigger `json:"trigger"`
}

type AcknowledgeUnlock struct {
	EventID string `json:"event_id"`
}

type DiscoverContradiction struct {
	ContradictionID string `json:"contradiction_id"`
}

type ResolveContradiction struct {
	ContradictionID string `json:"contradiction_id"`
}

type SetActiveHypothesis struct {
	HypothesisID string `json:"hypothesis_id"`
}

type ClearActiveHypothesis struct{}

type ResetGame struct{}

func (StartGame) Type() ActionType             { return ActionStartGame }
func (AdvancePhase) Type() ActionType          { return ActionAdvancePhase }
func (GoToPhase) Type() ActionType             { return ActionGoToPhase }
func (SelectHypothesis) Type() ActionType      { return ActionSelectHypothesis }
func (DeselectHypothesis) Type() ActionType    { return ActionDeselectHypothesis }
func (SetInitialProbability) Type() ActionType { return ActionSetInitialProbability }
func (SetFinalProbability) Type() ActionType   { return ActionSetFinalProbability }
func (CollectEvidence) Type() ActionType       { return ActionCollectEvidence }
func (SetConfidence) Type() ActionType         { return ActionSetConfidence }
func (CalculateScores) Type() ActionType       { return ActionCalculateScores }
func (UnlockHypothesis) Type() ActionType      { return ActionUnlockHypothesis }
func (AcknowledgeUnlock) Type() ActionType     { return ActionAcknowledgeUnlock }
func (DiscoverContradiction) Type() ActionType { return ActionDiscoverContradiction }
func (ResolveContradiction) Type() ActionType  { return ActionResolveContradiction }
func (SetActiveHypothesis) Type() ActionType   { return ActionSetActiveHypothesis }
func (ClearActiveHypothesis) Type() ActionType { return ActionClearActiveHypothesis }
func (ResetGame) Type() ActionType             { return ActionResetGame }

// ErrUnknownAction is returned when decoding an action type that does not exist.
var ErrUnknownAction = errors.New("unknown action type")

// Envelope is the wire form of an action: {"type": "...", "payload": {...}}.
type Envelope struct {
	Type    ActionType      `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func newAction(t ActionType) (Action, error) {
	switch t {
	case ActionStartGame:
		return &StartGame{}, nil
	case ActionAdvancePhase:
		return &AdvancePhase{}, nil
	case ActionGoToPhase:
		return &GoToPhase{}, nil
	case ActionSelectHypothesis:
		return &SelectHypothesis{}, nil
	case ActionDeselectHypothesis:
		return &DeselectHypothesis{}, nil
	case ActionSetInitialProbability:
		return &SetInitialProbability{}, nil
	case ActionSetFinalProbability:
		return &SetFinalProbability{}, nil
	case ActionCollectEvidence:
		return &CollectEvidence{}, nil
	case ActionSetConfidence:
		return &SetConfidence{}, nil
	case ActionCalculateScores:
		return &CalculateScores{}, nil
	case ActionUnlockHypothesis:
		return &UnlockHypothesis{}, nil
	case ActionAcknowledgeUnlock:
		return &AcknowledgeUnlock{}, nil
	case ActionDiscoverContradiction:
		return &DiscoverContradiction{}, nil
	case ActionResolveContradiction:
		return &ResolveContradiction{}, nil
	case ActionSetActiveHypothesis:
		return &SetActiveHypothesis{}, nil
	case ActionClearActiveHypothesis:
		return &ClearActiveHypothesis{}, nil
	case ActionResetGame:
		return &ResetGame{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, t)
	}
}

// DecodeEnvelope turns a wire envelope into a concrete action value.
func DecodeEnvelope(env Envelope) (Action, error) {
	ptr, err := newAction(env.Type)
	if err != nil {
		return nil, err
	}
	if len(env.Payload) > 0 && string(env.Payload) != "null" {
		if err := json.Unmarshal(env.Payload, ptr); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
		}
	}
	return deref(ptr), nil
}

// DecodeAction parses a JSON envelope.
func DecodeAction(data []byte) (Action, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode action: %w", err)
	}
	return DecodeEnvelope(env)
}

// EncodeAction wraps an action in its wire envelope.
func EncodeAction(a Action) (Envelope, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode %s payload: %w", a.Type(), err)
	}
	return Envelope{Type: a.Type(), Payload: payload}, nil
}

// deref returns the value form so reducers switch on value types only.
func deref(a Action) Action {
	switch v := a.(type) {
	case *StartGame:
		return *v
	case *AdvancePhase:
		return *v
	case *GoToPhase:
		return *v
	case *SelectHypothesis:
		return *v
	case *DeselectHypothesis:
		return *v
	case *SetInitialProbability:
		return *v
	case *SetFinalProbability:
		return *v
	case *CollectEvidence:
		return *v
	case *SetConfidence:
		return *v
	case *CalculateScores:
		return *v
	case *UnlockHypothesis:
		return *v
	case *AcknowledgeUnlock:
		return *v
	case *DiscoverContradiction:
		return *v
	case *ResolveContradiction:
		return *v
	case *SetActiveHypothesis:
		return *v
	case *ClearActiveHypothesis:
		return *v
	case *ResetGame:
		return *v
	default:
		return a
	}
}
