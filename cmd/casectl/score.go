package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/detective-engine/pkg/casefile"
	"github.com/jwebster45206/detective-engine/pkg/scoring"
	"github.com/jwebster45206/detective-engine/pkg/session"
	"github.com/jwebster45206/detective-engine/pkg/state"
	"github.com/jwebster45206/detective-engine/pkg/unlock"
)

var metricDescriptions = map[string]string{
	"investigation_efficiency": "How cheaply evidence was gathered compared with the average action cost of the case.",
	"premature_closure":        "How much of the investigation budget was spent before committing to an answer.",
	"contradictions":           "Share of the case's contradictions that were uncovered.",
	"tier_discovery":           "Share of hidden hypotheses that investigation brought to light.",
	"confirmation_bias":        "How much of the collected evidence touched the initially favored hypothesis. Lower is more open-minded.",
	"probability_accuracy":     "Probability placed on the correct explanation.",
	"calibration":              "How well stated confidence matched the probability placed on the truth.",
	"hypothesis_coverage":      "Share of selected hypotheses that at least one piece of evidence touched.",
}

var levelColors = map[scoring.Color]lipgloss.Color{
	scoring.ColorRed:   lipgloss.Color("196"),
	scoring.ColorAmber: lipgloss.Color("214"),
	scoring.ColorGreen: lipgloss.Color("86"),
}

type scoreOptions struct {
	width  int
	asJSON bool
}

func newScoreCmd() *cobra.Command {
	opts := scoreOptions{}
	cmd := &cobra.Command{
		Use:   "score <case-file> <actions.json>",
		Short: "Replay an action log against a case and print the reasoning report",
		Long: "Replay folds a JSON array of wire actions, such as the history returned by " +
			"GET /v1/games/{id}/actions, over a fresh game and scores the final state.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCase(args[0])
			if err != nil {
				return err
			}
			actions, err := loadActions(args[1])
			if err != nil {
				return err
			}

			sess := session.New(c)
			final := sess.DispatchAll(actions...)
			scores := sess.Scores()

			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(scores)
			}
			return writeReport(cmd.OutOrStdout(), c, final, scores, opts.width)
		},
	}
	cmd.Flags().IntVar(&opts.width, "width", 72, "wrap descriptions at this many columns")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the raw scores as JSON")
	return cmd
}

func loadCase(filename string) (*casefile.Case, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read case %s: %w", filename, err)
	}
	c, err := casefile.Decode(filepath.Base(filename), data)
	if err != nil {
		return nil, err
	}
	if err := casefile.Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

func loadActions(filename string) ([]state.Action, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read actions %s: %w", filename, err)
	}
	var envelopes []state.Envelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return nil, fmt.Errorf("actions file %s must be a JSON array of actions: %w", filename, err)
	}

	actions := make([]state.Action, 0, len(envelopes))
	for i, env := range envelopes {
		a, err := state.DecodeEnvelope(env)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func writeReport(w io.Writer, c *casefile.Case, s *state.PlayerState, scores scoring.PlayerScores, width int) error {
	r := lipgloss.NewRenderer(w)
	titleStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle := r.NewStyle().Foreground(lipgloss.Color("240"))
	title := cases.Title(language.English)

	var b strings.Builder
	b.WriteString(titleStyle.Render(title.String(c.Title)) + "\n")
	fmt.Fprintf(&b, "Phase: %s   Points remaining: %d/%d\n", s.Phase, s.InvestigationPointsRemaining, c.InitialBudget())
	fmt.Fprintf(&b, "Correct hypothesis selected: %s\n\n", yesNo(scores.CorrectHypothesisSelected))

	for _, n := range scores.Named() {
		interp := scoring.Interpret(n.Score)
		level := r.NewStyle().Foreground(levelColors[interp.Color]).Render(string(interp.Level))
		fmt.Fprintf(&b, "%-26s %3d  %s\n", title.String(strings.ReplaceAll(n.Name, "_", " ")), n.Score, level)
		if desc := metricDescriptions[n.Name]; desc != "" && width > 0 {
			for _, line := range strings.Split(wordwrap.String(desc, width-4), "\n") {
				b.WriteString("    " + dimStyle.Render(line) + "\n")
			}
		}
	}

	labels := c.HypothesisLabels()
	if len(scores.ConfirmationBias.Breakdown) > 0 {
		b.WriteString("\nEvidence focus:\n")
		for _, share := range scores.ConfirmationBias.Breakdown {
			marker := ""
			if share.HypothesisID == scores.ConfirmationBias.FavoredHypothesisID {
				marker = " (favored)"
			}
			fmt.Fprintf(&b, "  %-26s %d (%d%%)%s\n", labels[share.HypothesisID], share.Count, share.Percentage, marker)
		}
	}

	if tier2 := c.Tier2Hypotheses(); len(tier2) > 0 {
		b.WriteString("\nHidden hypotheses:\n")
		for _, h := range tier2 {
			satisfied, total := unlock.Progress(h, s, c.InitialBudget())
			status := fmt.Sprintf("%d/%d requirements", satisfied, total)
			if slices.Contains(s.UnlockedHypotheses, h.ID) {
				status = "unlocked"
			}
			fmt.Fprintf(&b, "  %-26s %s\n", h.Label, status)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
