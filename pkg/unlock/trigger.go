package unlock

import (
	"slices"

	"github.com/jwebster45206/detective-engine/pkg/casefile"
)

type TriggerType string

const (
	TriggerEvidence  TriggerType = "evidence"
	TriggerThreshold TriggerType = "threshold"
	TriggerManual    TriggerType = "manual"
)

// Trigger records why an unlock happened. It is explanatory only and never
// used for gating.
type Trigger struct {
	Type       TriggerType     `json:"type"`
	EvidenceID string          `json:"evidence_id,omitempty"`
	Metric     casefile.Metric `json:"metric,omitempty"`
	Value      int             `json:"value,omitempty"`
}

// NewTrigger attributes an unlock to evidenceID when it has been collected,
// otherwise to the current evidence count.
func NewTrigger(evidenceID string, view StateView, initialBudget int) Trigger {
	if evidenceID != "" && slices.Contains(view.GetCollectedEvidenceIDs(), evidenceID) {
		return Trigger{Type: TriggerEvidence, EvidenceID: evidenceID}
	}
	return Trigger{
		Type:   TriggerThreshold,
		Metric: casefile.MetricEvidenceCount,
		Value:  MetricValue(view, casefile.MetricEvidenceCount, initialBudget),
	}
}

// ManualTrigger marks an unlock made by an explicit override.
func ManualTrigger() Trigger {
	return Trigger{Type: TriggerManual}
}
