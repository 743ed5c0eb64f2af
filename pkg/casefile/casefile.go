package casefile

import "slices"

// Tier controls whether a hypothesis is selectable from the start (1)
// or must be unlocked by investigation (2).
type Tier int

const (
	TierOne Tier = 1
	TierTwo Tier = 2
)

// Impact describes how a piece of evidence bears on a hypothesis.
type Impact string

const (
	ImpactSupports    Impact = "supports"
	ImpactContradicts Impact = "contradicts"
	ImpactNeutral     Impact = "neutral"
)

// Hypothesis is a candidate explanation for the case. Authored content, never mutated at runtime.
type Hypothesis struct {
	ID                 string              `json:"id" yaml:"id" validate:"required"`
	Label              string              `json:"label" yaml:"label" validate:"required"`
	Description        string              `json:"description" yaml:"description"`
	IsCorrect          bool                `json:"is_correct" yaml:"is_correct"`
	Tier               Tier                `json:"tier" yaml:"tier" validate:"oneof=1 2"`
	UnlockRequirements []UnlockRequirement `json:"unlock_requirements,omitempty" yaml:"unlock_requirements,omitempty"`
}

// HypothesisImpact links an investigation action to a hypothesis it affects.
type HypothesisImpact struct {
	HypothesisID string  `json:"hypothesis_id" yaml:"hypothesis_id" validate:"required"`
	Impact       Impact  `json:"impact" yaml:"impact" validate:"oneof=supports contradicts neutral"`
	Weight       float64 `json:"weight" yaml:"weight" validate:"gte=0"`
}

// Evidence is what the player learns by performing an investigation action.
type Evidence struct {
	Title          string `json:"title" yaml:"title" validate:"required"`
	Content        string `json:"content" yaml:"content"`
	Interpretation string `json:"interpretation" yaml:"interpretation"`
	IsCritical     bool   `json:"is_critical,omitempty" yaml:"is_critical,omitempty"`
}

// InvestigationAction is something the player can spend investigation points on.
// Its ID doubles as the evidence ID once collected.
type InvestigationAction struct {
	ID               string             `json:"id" yaml:"id" validate:"required"`
	Cost             int                `json:"cost" yaml:"cost" validate:"gte=0"`
	Category         string             `json:"category" yaml:"category"`
	HypothesisImpact []HypothesisImpact `json:"hypothesis_impact" yaml:"hypothesis_impact" validate:"dive"`
	Evidence         Evidence           `json:"evidence" yaml:"evidence"`
}

// Affects reports whether the action references the hypothesis in its impact list.
func (a InvestigationAction) Affects(hypothesisID string) bool {
	for _, hi := range a.HypothesisImpact {
		if hi.HypothesisID == hypothesisID {
			return true
		}
	}
	return false
}

// Contradiction is a pair of evidence items whose findings conflict.
type Contradiction struct {
	ID          string `json:"id" yaml:"id" validate:"required"`
	EvidenceID1 string `json:"evidence_id_1" yaml:"evidence_id_1" validate:"required"`
	EvidenceID2 string `json:"evidence_id_2" yaml:"evidence_id_2" validate:"required,nefield=EvidenceID1"`
	Description string `json:"description" yaml:"description"`
	Resolution  string `json:"resolution,omitempty" yaml:"resolution,omitempty"`
}

// Briefing is the opening of a case.
type Briefing struct {
	Title               string `json:"title" yaml:"title"`
	Summary             string `json:"summary,omitempty" yaml:"summary,omitempty"`
	InvestigationPoints int    `json:"investigation_points" yaml:"investigation_points" validate:"gte=0"`
}

// Case is the complete, static content of one investigation.
type Case struct {
	ID                   string                `json:"id" yaml:"id" validate:"required"`
	Title                string                `json:"title" yaml:"title" validate:"required"`
	Briefing             Briefing              `json:"briefing" yaml:"briefing"`
	Hypotheses           []Hypothesis          `json:"hypotheses" yaml:"hypotheses" validate:"required,min=1,dive"`
	InvestigationActions []InvestigationAction `json:"investigation_actions" yaml:"investigation_actions" validate:"dive"`
	Contradictions       []Contradiction       `json:"contradictions,omitempty" yaml:"contradictions,omitempty" validate:"dive"`
}

// Hypothesis returns the hypothesis with the given ID.
func (c *Case) Hypothesis(id string) (Hypothesis, bool) {
	if c == nil {
		return Hypothesis{}, false
	}
	i := slices.IndexFunc(c.Hypotheses, func(h Hypothesis) bool { return h.ID == id })
	if i < 0 {
		return Hypothesis{}, false
	}
	return c.Hypotheses[i], true
}

// Action returns the investigation action with the given ID.
func (c *Case) Action(id string) (InvestigationAction, bool) {
	if c == nil {
		return InvestigationAction{}, false
	}
	i := slices.IndexFunc(c.InvestigationActions, func(a InvestigationAction) bool { return a.ID == id })
	if i < 0 {
		return InvestigationAction{}, false
	}
	return c.InvestigationActions[i], true
}

// Contradiction returns the contradiction with the given ID.
func (c *Case) Contradiction(id string) (Contradiction, bool) {
	if c == nil {
		return Contradiction{}, false
	}
	i := slices.IndexFunc(c.Contradictions, func(ct Contradiction) bool { return ct.ID == id })
	if i < 0 {
		return Contradiction{}, false
	}
	return c.Contradictions[i], true
}

// Tier2Hypotheses returns the hypotheses that must be unlocked, in authored order.
func (c *Case) Tier2Hypotheses() []Hypothesis {
	if c == nil {
		return nil
	}
	var out []Hypothesis
	for _, h := range c.Hypotheses {
		if h.Tier == TierTwo {
			out = append(out, h)
		}
	}
	return out
}

// CorrectHypothesis returns the hypothesis flagged as correct.
func (c *Case) CorrectHypothesis() (Hypothesis, bool) {
	if c == nil {
		return Hypothesis{}, false
	}
	for _, h := range c.Hypotheses {
		if h.IsCorrect {
			return h, true
		}
	}
	return Hypothesis{}, false
}

// HypothesisLabels maps hypothesis IDs to display labels.
func (c *Case) HypothesisLabels() map[string]string {
	labels := make(map[string]string)
	if c == nil {
		return labels
	}
	for _, h := range c.Hypotheses {
		labels[h.ID] = h.Label
	}
	return labels
}

// InitialBudget is the investigation point budget the case starts with.
func (c *Case) InitialBudget() int {
	if c == nil {
		return 0
	}
	return c.Briefing.InvestigationPoints
}
