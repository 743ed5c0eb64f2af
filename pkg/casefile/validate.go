package casefile

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidCase wraps every problem reported by Validate.
var ErrInvalidCase = errors.New("invalid case")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks structural constraints on authored case content.
// All problems are reported together.
func Validate(c *Case) error {
	if c == nil {
		return fmt.Errorf("%w: case is nil", ErrInvalidCase)
	}

	var problems []error
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				problems = append(problems, fmt.Errorf("%s fails %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			problems = append(problems, err)
		}
	}

	hypotheses := make(map[string]bool)
	correct := 0
	for _, h := range c.Hypotheses {
		if hypotheses[h.ID] {
			problems = append(problems, fmt.Errorf("duplicate hypothesis id %q", h.ID))
		}
		hypotheses[h.ID] = true
		if h.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		problems = append(problems, fmt.Errorf("expected exactly one correct hypothesis, found %d", correct))
	}

	evidence := make(map[string]bool)
	for _, a := range c.InvestigationActions {
		if evidence[a.ID] {
			problems = append(problems, fmt.Errorf("duplicate investigation action id %q", a.ID))
		}
		evidence[a.ID] = true
	}
	for _, a := range c.InvestigationActions {
		for _, hi := range a.HypothesisImpact {
			if !hypotheses[hi.HypothesisID] {
				problems = append(problems, fmt.Errorf("action %q impacts unknown hypothesis %q", a.ID, hi.HypothesisID))
			}
		}
	}

	for _, h := range c.Hypotheses {
		if h.Tier == TierOne && len(h.UnlockRequirements) > 0 {
			problems = append(problems, fmt.Errorf("tier 1 hypothesis %q has unlock requirements", h.ID))
		}
		for i, req := range h.UnlockRequirements {
			path := fmt.Sprintf("hypothesis %q requirement %d", h.ID, i)
			problems = append(problems, validateRequirement(req, path, evidence)...)
		}
	}

	contradictions := make(map[string]bool)
	for _, ct := range c.Contradictions {
		if contradictions[ct.ID] {
			problems = append(problems, fmt.Errorf("duplicate contradiction id %q", ct.ID))
		}
		contradictions[ct.ID] = true
		for _, id := range []string{ct.EvidenceID1, ct.EvidenceID2} {
			if id != "" && !evidence[id] {
				problems = append(problems, fmt.Errorf("contradiction %q references unknown evidence %q", ct.ID, id))
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidCase, errors.Join(problems...))
}

func validateRequirement(req UnlockRequirement, path string, evidence map[string]bool) []error {
	var problems []error
	switch req.Type {
	case RequirementEvidenceCollected:
		if !evidence[req.EvidenceID] {
			problems = append(problems, fmt.Errorf("%s references unknown evidence %q", path, req.EvidenceID))
		}
	case RequirementThresholdMet:
		if !isKnownMetric(req.Metric) {
			problems = append(problems, fmt.Errorf("%s names unknown metric %q", path, req.Metric))
		}
	case RequirementAllOf, RequirementAnyOf:
		if len(req.Children) == 0 {
			problems = append(problems, fmt.Errorf("%s (%s) has no children", path, req.Type))
		}
		for i, child := range req.Children {
			problems = append(problems, validateRequirement(child, fmt.Sprintf("%s.%d", path, i), evidence)...)
		}
	default:
		problems = append(problems, fmt.Errorf("%s has unknown type %q", path, req.Type))
	}
	return problems
}
