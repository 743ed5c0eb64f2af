package casefile

import "slices"

// RequirementType tags the variant of an UnlockRequirement.
type RequirementType string

const (
	RequirementEvidenceCollected RequirementType = "evidence_collected"
	RequirementThresholdMet      RequirementType = "threshold_met"
	RequirementAllOf             RequirementType = "all_of"
	RequirementAnyOf             RequirementType = "any_of"
)

// Metric names a value derived from play state that a threshold can test.
type Metric string

const (
	MetricEvidenceCount         Metric = "evidenceCount"
	MetricIPSpent               Metric = "ipSpent"
	MetricInvestigationProgress Metric = "investigationProgress"
)

// Metrics lists every metric a threshold requirement may name.
var Metrics = []Metric{MetricEvidenceCount, MetricIPSpent, MetricInvestigationProgress}

// UnlockRequirement is a recursive condition gating a tier 2 hypothesis.
// Only the fields belonging to Type are meaningful:
//
//	evidence_collected: EvidenceID
//	threshold_met:      Metric, Threshold
//	all_of, any_of:     Children
type UnlockRequirement struct {
	Type       RequirementType     `json:"type" yaml:"type"`
	EvidenceID string              `json:"evidence_id,omitempty" yaml:"evidence_id,omitempty"`
	Metric     Metric              `json:"metric,omitempty" yaml:"metric,omitempty"`
	Threshold  int                 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Children   []UnlockRequirement `json:"children,omitempty" yaml:"children,omitempty"`
}

func EvidenceCollected(evidenceID string) UnlockRequirement {
	return UnlockRequirement{Type: RequirementEvidenceCollected, EvidenceID: evidenceID}
}

func ThresholdMet(metric Metric, threshold int) UnlockRequirement {
	return UnlockRequirement{Type: RequirementThresholdMet, Metric: metric, Threshold: threshold}
}

func AllOf(children ...UnlockRequirement) UnlockRequirement {
	return UnlockRequirement{Type: RequirementAllOf, Children: children}
}

func AnyOf(children ...UnlockRequirement) UnlockRequirement {
	return UnlockRequirement{Type: RequirementAnyOf, Children: children}
}

// EvidenceIDs returns every evidence ID referenced anywhere in the tree.
func (r UnlockRequirement) EvidenceIDs() []string {
	var ids []string
	r.walk(func(n UnlockRequirement) {
		if n.Type == RequirementEvidenceCollected {
			ids = append(ids, n.EvidenceID)
		}
	})
	return ids
}

func (r UnlockRequirement) walk(fn func(UnlockRequirement)) {
	fn(r)
	for _, child := range r.Children {
		child.walk(fn)
	}
}

func isKnownMetric(m Metric) bool {
	return slices.Contains(Metrics, m)
}
