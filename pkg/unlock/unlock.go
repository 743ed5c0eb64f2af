package unlock

import (
	"math"
	"slices"

	"github.com/jwebster45206/detective-engine/pkg/casefile"
)

// StateView provides the minimal interface needed to evaluate unlock requirements.
// This avoids an import cycle with the state package.
type StateView interface {
	GetCollectedEvidenceIDs() []string
	GetInvestigationPointsRemaining() int
	GetUnlockedHypotheses() []string
}

// MetricValue derives a named metric from play state.
func MetricValue(view StateView, metric casefile.Metric, initialBudget int) int {
	switch metric {
	case casefile.MetricEvidenceCount:
		return len(view.GetCollectedEvidenceIDs())
	case casefile.MetricIPSpent:
		return initialBudget - view.GetInvestigationPointsRemaining()
	case casefile.MetricInvestigationProgress:
		if initialBudget == 0 {
			return 100
		}
		spent := initialBudget - view.GetInvestigationPointsRemaining()
		return int(math.Round(float64(spent) / float64(initialBudget) * 100))
	default:
		return 0
	}
}

// Evaluate reports whether a requirement tree is satisfied by the state.
func Evaluate(req casefile.UnlockRequirement, view StateView, initialBudget int) bool {
	switch req.Type {
	case casefile.RequirementEvidenceCollected:
		return slices.Contains(view.GetCollectedEvidenceIDs(), req.EvidenceID)

	case casefile.RequirementThresholdMet:
		return MetricValue(view, req.Metric, initialBudget) >= req.Threshold

	case casefile.RequirementAllOf:
		for _, child := range req.Children {
			if !Evaluate(child, view, initialBudget) {
				return false
			}
		}
		return true

	case casefile.RequirementAnyOf:
		for _, child := range req.Children {
			if Evaluate(child, view, initialBudget) {
				return true
			}
		}
		return false

	default:
		return false
	}
}

// IsHypothesisUnlocked reports whether a hypothesis is selectable.
// Tier 1 is always unlocked. A tier 2 hypothesis with no requirements stays
// locked until something unlocks it explicitly.
func IsHypothesisUnlocked(h casefile.Hypothesis, view StateView, initialBudget int) bool {
	if h.Tier == casefile.TierOne {
		return true
	}
	if slices.Contains(view.GetUnlockedHypotheses(), h.ID) {
		return true
	}
	if len(h.UnlockRequirements) == 0 {
		return false
	}
	return requirementsMet(h, view, initialBudget)
}

// FindNewlyUnlocked returns the IDs of tier 2 hypotheses that are not yet
// unlocked but whose requirements now hold, in input order.
func FindNewlyUnlocked(hypotheses []casefile.Hypothesis, view StateView, initialBudget int) []string {
	unlocked := view.GetUnlockedHypotheses()
	var ids []string
	for _, h := range hypotheses {
		if h.Tier != casefile.TierTwo || len(h.UnlockRequirements) == 0 {
			continue
		}
		if slices.Contains(unlocked, h.ID) {
			continue
		}
		if requirementsMet(h, view, initialBudget) {
			ids = append(ids, h.ID)
		}
	}
	return ids
}

// Progress counts how many top-level requirements of a hypothesis currently hold.
func Progress(h casefile.Hypothesis, view StateView, initialBudget int) (satisfied, total int) {
	for _, req := range h.UnlockRequirements {
		if Evaluate(req, view, initialBudget) {
			satisfied++
		}
	}
	return satisfied, len(h.UnlockRequirements)
}

// Top-level requirements are an implicit all_of.
func requirementsMet(h casefile.Hypothesis, view StateView, initialBudget int) bool {
	for _, req := range h.UnlockRequirements {
		if !Evaluate(req, view, initialBudget) {
			return false
		}
	}
	return true
}
