package scoring

import (
	"cmp"
	"math"
	"slices"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/jwebster45206/detective-engine/pkg/casefile"
	"github.com/jwebster45206/detective-engine/pkg/unlock"
)

// StateView is the read-only slice of player state the scoring engine needs.
// It lets the state package call into scoring without an import cycle.
type StateView interface {
	unlock.StateView
	GetSelectedHypotheses() []string
	GetInitialProbabilities() map[string]float64
	GetFinalProbabilities() map[string]float64
	GetConfidenceLevel() int
	GetDiscoveredContradictions() []string
}

// FocusShare is how much of the collected evidence touched one hypothesis.
type FocusShare struct {
	HypothesisID string `json:"hypothesis_id"`
	Count        int    `json:"count"`
	Percentage   int    `json:"percentage"`
}

// ConfirmationBiasResult is the confirmation bias score plus its per-hypothesis breakdown.
type ConfirmationBiasResult struct {
	Score               int          `json:"score"`
	FavoredHypothesisID string       `json:"favored_hypothesis_id,omitempty"`
	Breakdown           []FocusShare `json:"breakdown"`
}

// PlayerScores is the full reasoning-quality report for a finished case.
type PlayerScores struct {
	InvestigationEfficiency   int                    `json:"investigation_efficiency"`
	PrematureClosure          int                    `json:"premature_closure"`
	Contradictions            int                    `json:"contradictions"`
	TierDiscovery             int                    `json:"tier_discovery"`
	ConfirmationBias          ConfirmationBiasResult `json:"confirmation_bias"`
	ProbabilityAccuracy       int                    `json:"probability_accuracy"`
	Calibration               int                    `json:"calibration"`
	HypothesisCoverage        int                    `json:"hypothesis_coverage"`
	CorrectHypothesisSelected bool                   `json:"correct_hypothesis_selected"`
}

// NamedScore is one metric of a report.
type NamedScore struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Named lists the eight metrics in report order.
func (p PlayerScores) Named() []NamedScore {
	return []NamedScore{
		{"investigation_efficiency", p.InvestigationEfficiency},
		{"premature_closure", p.PrematureClosure},
		{"contradictions", p.Contradictions},
		{"tier_discovery", p.TierDiscovery},
		{"confirmation_bias", p.ConfirmationBias.Score},
		{"probability_accuracy", p.ProbabilityAccuracy},
		{"calibration", p.Calibration},
		{"hypothesis_coverage", p.HypothesisCoverage},
	}
}

// Calculate runs every metric over the final state.
func Calculate(view StateView, c *casefile.Case) PlayerScores {
	c = orEmpty(c)
	correct, ok := c.CorrectHypothesis()
	return PlayerScores{
		InvestigationEfficiency:   InvestigationEfficiency(view, c),
		PrematureClosure:          PrematureClosure(view, c),
		Contradictions:            ContradictionScore(view, c),
		TierDiscovery:             TierDiscovery(view, c),
		ConfirmationBias:          ConfirmationBias(view, c),
		ProbabilityAccuracy:       ProbabilityAccuracy(view, c),
		Calibration:               Calibration(view, c),
		HypothesisCoverage:        HypothesisCoverage(view, c),
		CorrectHypothesisSelected: ok && slices.Contains(view.GetSelectedHypotheses(), correct.ID),
	}
}

// InvestigationEfficiency compares the case's mean action cost with what the
// player paid per collected item. Cheaper-than-average collection scores higher.
func InvestigationEfficiency(view StateView, c *casefile.Case) int {
	c = orEmpty(c)
	if len(c.InvestigationActions) == 0 {
		return 100
	}
	collected := view.GetCollectedEvidenceIDs()
	if len(collected) == 0 {
		return 0
	}

	costs := make([]float64, 0, len(c.InvestigationActions))
	for _, a := range c.InvestigationActions {
		costs = append(costs, float64(a.Cost))
	}
	avg, err := stats.Mean(costs)
	if err != nil {
		return 0
	}

	spent := 0
	for _, id := range collected {
		if a, ok := c.Action(id); ok {
			spent += a.Cost
		}
	}
	perItem := float64(spent) / float64(len(collected))
	if perItem == 0 {
		return 100
	}
	return clamp(math.Min(100, math.Round(avg/perItem*100)))
}

// PrematureClosure rewards spending the budget before committing to an answer.
func PrematureClosure(view StateView, c *casefile.Case) int {
	budget := orEmpty(c).InitialBudget()
	if budget == 0 {
		return 100
	}
	spent := budget - view.GetInvestigationPointsRemaining()
	return clamp(math.Round(float64(spent) / float64(budget) * 100))
}

// ContradictionScore is the share of the case's contradictions the player found.
func ContradictionScore(view StateView, c *casefile.Case) int {
	c = orEmpty(c)
	if len(c.Contradictions) == 0 {
		return 100
	}
	discovered := view.GetDiscoveredContradictions()
	if discovered == nil {
		return 0
	}
	n := 0
	for _, ct := range c.Contradictions {
		if slices.Contains(discovered, ct.ID) {
			n++
		}
	}
	return clamp(math.Round(float64(n) / float64(len(c.Contradictions)) * 100))
}

// TierDiscovery is the share of tier 2 hypotheses the player unlocked.
func TierDiscovery(view StateView, c *casefile.Case) int {
	tier2 := orEmpty(c).Tier2Hypotheses()
	if len(tier2) == 0 {
		return 100
	}
	unlocked := view.GetUnlockedHypotheses()
	if unlocked == nil {
		return 0
	}
	n := 0
	for _, h := range tier2 {
		if slices.Contains(unlocked, h.ID) {
			n++
		}
	}
	return clamp(math.Round(float64(n) / float64(len(tier2)) * 100))
}

// ConfirmationBias measures how much of the collected evidence touched the
// hypothesis the player initially favored. Ties on the highest initial
// estimate go to the hypothesis seen first: selection order, then case order.
func ConfirmationBias(view StateView, c *casefile.Case) ConfirmationBiasResult {
	c = orEmpty(c)

	var actions []casefile.InvestigationAction
	for _, id := range view.GetCollectedEvidenceIDs() {
		if a, ok := c.Action(id); ok {
			actions = append(actions, a)
		}
	}
	total := len(actions)

	breakdown := make([]FocusShare, 0, len(view.GetSelectedHypotheses()))
	for _, id := range view.GetSelectedHypotheses() {
		share := FocusShare{HypothesisID: id, Count: countAffecting(actions, id)}
		if total > 0 {
			share.Percentage = clamp(math.Round(float64(share.Count) / float64(total) * 100))
		}
		breakdown = append(breakdown, share)
	}
	slices.SortStableFunc(breakdown, func(a, b FocusShare) int { return cmp.Compare(b.Count, a.Count) })

	result := ConfirmationBiasResult{Breakdown: breakdown}
	favored, ok := favoredHypothesis(view, c)
	if !ok || total == 0 {
		return result
	}
	result.FavoredHypothesisID = favored
	result.Score = clamp(math.Round(float64(countAffecting(actions, favored)) / float64(total) * 100))
	return result
}

// ProbabilityAccuracy is the estimate placed on the correct hypothesis. Final
// estimates are used when any were entered, initial ones otherwise.
func ProbabilityAccuracy(view StateView, c *casefile.Case) int {
	correct, ok := orEmpty(c).CorrectHypothesis()
	if !ok {
		return 0
	}
	estimates := view.GetFinalProbabilities()
	if len(estimates) == 0 {
		estimates = view.GetInitialProbabilities()
	}
	return clamp(math.Round(estimates[correct.ID]))
}

// Calibration compares stated confidence with the probability placed on the truth.
func Calibration(view StateView, c *casefile.Case) int {
	accuracy := ProbabilityAccuracy(view, c)
	return clamp(100 - math.Abs(float64(view.GetConfidenceLevel()-accuracy)))
}

// HypothesisCoverage is the share of selected hypotheses that at least one
// collected evidence item touched.
func HypothesisCoverage(view StateView, c *casefile.Case) int {
	c = orEmpty(c)
	selected := view.GetSelectedHypotheses()
	collected := view.GetCollectedEvidenceIDs()
	if len(selected) == 0 {
		if len(collected) == 0 {
			return 100
		}
		return 0
	}

	var actions []casefile.InvestigationAction
	for _, id := range collected {
		if a, ok := c.Action(id); ok {
			actions = append(actions, a)
		}
	}
	covered := 0
	for _, id := range selected {
		if countAffecting(actions, id) > 0 {
			covered++
		}
	}
	return clamp(math.Round(float64(covered) / float64(len(selected)) * 100))
}

func favoredHypothesis(view StateView, c *casefile.Case) (string, bool) {
	estimates := view.GetInitialProbabilities()
	best, bestValue := "", 0.0
	for _, id := range estimateOrder(view.GetSelectedHypotheses(), c, estimates) {
		if v := estimates[id]; v > bestValue {
			best, bestValue = id, v
		}
	}
	return best, best != ""
}

// estimateOrder lists estimate keys in first-seen order so ties resolve
// deterministically despite map iteration.
func estimateOrder(selected []string, c *casefile.Case, estimates map[string]float64) []string {
	seen := make(map[string]bool, len(estimates))
	var order []string
	add := func(id string) {
		if _, ok := estimates[id]; ok && !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	for _, id := range selected {
		add(id)
	}
	for _, h := range c.Hypotheses {
		add(h.ID)
	}
	var rest []string
	for id := range estimates {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func countAffecting(actions []casefile.InvestigationAction, hypothesisID string) int {
	n := 0
	for _, a := range actions {
		if a.Affects(hypothesisID) {
			n++
		}
	}
	return n
}

func clamp(v float64) int {
	return int(math.Max(0, math.Min(100, v)))
}

func orEmpty(c *casefile.Case) *casefile.Case {
	if c == nil {
		return &casefile.Case{}
	}
	return c
}
