package state

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jwebster45206/detective-engine/pkg/scoring"
	"github.com/jwebster45206/detective-engine/pkg/unlock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseNext(t *testing.T) {
	assert.Equal(t, PhaseHypothesis, PhaseBriefing.Next())
	assert.Equal(t, PhaseReview, PhaseResolution.Next())
	assert.Equal(t, PhaseReview, PhaseReview.Next())
	assert.Equal(t, Phase("bogus"), Phase("bogus").Next())
	assert.False(t, Phase("bogus").IsValid())
}

func TestNewPlayerStateClampsBudget(t *testing.T) {
	assert.Equal(t, 0, NewPlayerState(-5).InvestigationPointsRemaining)
}

func TestCloneIsDeep(t *testing.T) {
	s := NewPlayerState(10)
	s.SelectedHypotheses = append(s.SelectedHypotheses, "h1")
	s.InitialProbabilities["h1"] = 50
	s.UnlockHistory = append(s.UnlockHistory, UnlockEvent{ID: "evt-1"})

	c := s.Clone()
	c.SelectedHypotheses[0] = "h2"
	c.InitialProbabilities["h1"] = 10
	c.UnlockHistory[0].Acknowledged = true

	assert.Equal(t, "h1", s.SelectedHypotheses[0])
	assert.Equal(t, 50.0, s.InitialProbabilities["h1"])
	assert.False(t, s.UnlockHistory[0].Acknowledged)

	var nilState *PlayerState
	assert.Nil(t, nilState.Clone())
}

func TestPlayerStateJSONRoundTrip(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewPlayerState(12)
	s.Phase = PhaseReview
	s.CollectedEvidenceIDs = []string{"logbook"}
	s.UnlockedHypotheses = []string{"smugglers"}
	s.UnlockHistory = []UnlockEvent{{
		ID: "evt-1", HypothesisID: "smugglers",
		Trigger:   unlock.Trigger{Type: unlock.TriggerEvidence, EvidenceID: "logbook"},
		Timestamp: ts,
	}}
	s.HypothesisPivots = []Pivot{{From: "", To: "accident", Timestamp: ts}}
	s.Scores = &scoring.PlayerScores{TierDiscovery: 50, ConfirmationBias: scoring.ConfirmationBiasResult{Breakdown: []scoring.FocusShare{}}}

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var back PlayerState
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s, &back)
}

func TestLegacyStateDecodesWithNilTracking(t *testing.T) {
	var s PlayerState
	require.NoError(t, json.Unmarshal([]byte(`{"phase":"investigation","investigation_points_remaining":4}`), &s))
	assert.Nil(t, s.UnlockedHypotheses)
	assert.Nil(t, s.DiscoveredContradictions)
}
