package casefile

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) *Case {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	c, err := Decode(name, data)
	require.NoError(t, err)
	return c
}

func TestDecode_JSON(t *testing.T) {
	c := loadFixture(t, "lighthouse.json")

	assert.Equal(t, "lighthouse", c.ID)
	assert.Equal(t, 12, c.InitialBudget())
	require.Len(t, c.Hypotheses, 4)
	require.Len(t, c.InvestigationActions, 6)
	require.Len(t, c.Contradictions, 2)

	smugglers, ok := c.Hypothesis("smugglers")
	require.True(t, ok)
	assert.Equal(t, TierTwo, smugglers.Tier)
	require.Len(t, smugglers.UnlockRequirements, 1)

	root := smugglers.UnlockRequirements[0]
	assert.Equal(t, RequirementAllOf, root.Type)
	require.Len(t, root.Children, 2)
	assert.Equal(t, EvidenceCollected("logbook"), root.Children[0])
	assert.Equal(t, RequirementAnyOf, root.Children[1].Type)
	assert.ElementsMatch(t, []string{"logbook", "harbor_ledger", "boot_prints"}, root.EvidenceIDs())

	staged, _ := c.Hypothesis("staged")
	assert.Equal(t, ThresholdMet(MetricEvidenceCount, 4), staged.UnlockRequirements[0])

	assert.NoError(t, Validate(c))
}

func TestDecode_YAML(t *testing.T) {
	c := loadFixture(t, "orchard.yaml")

	assert.Equal(t, "orchard", c.ID)
	assert.Equal(t, 6, c.InitialBudget())

	fungus, ok := c.Hypothesis("fungus")
	require.True(t, ok)
	assert.Equal(t, AnyOf(
		EvidenceCollected("leaf_sample"),
		ThresholdMet(MetricInvestigationProgress, 50),
	), fungus.UnlockRequirements[0])

	assert.NoError(t, Validate(c))
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{name: "invalid json", file: "bad.json", data: `{not json`},
		{name: "unknown json field", file: "bad.json", data: `{"id":"x","colour":"red"}`},
		{name: "unknown yaml field", file: "bad.yaml", data: "id: x\ncolour: red\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.file, []byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestDecode_IDFromFilename(t *testing.T) {
	c, err := Decode("cases/night_train.json", []byte(`{"title":"Night Train"}`))
	require.NoError(t, err)
	assert.Equal(t, "night_train", c.ID)
}

func TestDecode_IDMustMatchFilename(t *testing.T) {
	data, err := os.ReadFile("testdata/lighthouse.json")
	require.NoError(t, err)

	_, err = Decode("cases/gull_point.json", data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCase)
	assert.Contains(t, err.Error(), `"lighthouse"`)

	c, err := Decode("cases/lighthouse.json", data)
	require.NoError(t, err)
	assert.Equal(t, "lighthouse", c.ID)
}

func TestIsCaseFile(t *testing.T) {
	assert.True(t, IsCaseFile("a.json"))
	assert.True(t, IsCaseFile("a.YAML"))
	assert.True(t, IsCaseFile("a.yml"))
	assert.False(t, IsCaseFile("a.txt"))
	assert.False(t, IsCaseFile("README"))
}

func TestCase_Lookups(t *testing.T) {
	c := loadFixture(t, "lighthouse.json")

	_, ok := c.Hypothesis("nope")
	assert.False(t, ok)

	a, ok := c.Action("logbook")
	require.True(t, ok)
	assert.Equal(t, 3, a.Cost)
	assert.True(t, a.Affects("smugglers"))
	assert.True(t, a.Affects("staged"))
	assert.False(t, a.Affects("debts"))

	ct, ok := c.Contradiction("paid_but_cash")
	require.True(t, ok)
	assert.Equal(t, "bank_statement", ct.EvidenceID1)

	tier2 := c.Tier2Hypotheses()
	require.Len(t, tier2, 2)
	assert.Equal(t, "smugglers", tier2[0].ID)
	assert.Equal(t, "staged", tier2[1].ID)

	correct, ok := c.CorrectHypothesis()
	require.True(t, ok)
	assert.Equal(t, "smugglers", correct.ID)

	labels := c.HypothesisLabels()
	assert.Equal(t, "Fled his debts", labels["debts"])

	var nilCase *Case
	_, ok = nilCase.Action("logbook")
	assert.False(t, ok)
	assert.Empty(t, nilCase.HypothesisLabels())
	assert.Equal(t, 0, nilCase.InitialBudget())
}

func TestValidate_Problems(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Case)
		message string
	}{
		{
			name:    "no correct hypothesis",
			mutate:  func(c *Case) { c.Hypotheses[2].IsCorrect = false },
			message: "exactly one correct hypothesis, found 0",
		},
		{
			name:    "two correct hypotheses",
			mutate:  func(c *Case) { c.Hypotheses[0].IsCorrect = true },
			message: "exactly one correct hypothesis, found 2",
		},
		{
			name:    "duplicate hypothesis",
			mutate:  func(c *Case) { c.Hypotheses[1].ID = "accident" },
			message: `duplicate hypothesis id "accident"`,
		},
		{
			name:    "bad tier",
			mutate:  func(c *Case) { c.Hypotheses[0].Tier = 3 },
			message: `"oneof"`,
		},
		{
			name: "tier 1 with requirements",
			mutate: func(c *Case) {
				c.Hypotheses[0].UnlockRequirements = []UnlockRequirement{EvidenceCollected("logbook")}
			},
			message: `tier 1 hypothesis "accident" has unlock requirements`,
		},
		{
			name: "unknown evidence in requirement",
			mutate: func(c *Case) {
				c.Hypotheses[2].UnlockRequirements[0].Children[1].Children[0].EvidenceID = "diary"
			},
			message: `references unknown evidence "diary"`,
		},
		{
			name: "unknown metric",
			mutate: func(c *Case) {
				c.Hypotheses[3].UnlockRequirements[0].Metric = "luck"
			},
			message: `unknown metric "luck"`,
		},
		{
			name: "empty any_of",
			mutate: func(c *Case) {
				c.Hypotheses[3].UnlockRequirements = []UnlockRequirement{AnyOf()}
			},
			message: "has no children",
		},
		{
			name: "unknown requirement type",
			mutate: func(c *Case) {
				c.Hypotheses[3].UnlockRequirements[0].Type = "none_of"
			},
			message: `unknown type "none_of"`,
		},
		{
			name:    "negative cost",
			mutate:  func(c *Case) { c.InvestigationActions[0].Cost = -1 },
			message: `"gte"`,
		},
		{
			name: "impact on unknown hypothesis",
			mutate: func(c *Case) {
				c.InvestigationActions[0].HypothesisImpact[0].HypothesisID = "aliens"
			},
			message: `impacts unknown hypothesis "aliens"`,
		},
		{
			name:    "contradiction with itself",
			mutate:  func(c *Case) { c.Contradictions[0].EvidenceID2 = c.Contradictions[0].EvidenceID1 },
			message: `"nefield"`,
		},
		{
			name:    "contradiction with unknown evidence",
			mutate:  func(c *Case) { c.Contradictions[1].EvidenceID2 = "telegram" },
			message: `references unknown evidence "telegram"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := loadFixture(t, "lighthouse.json")
			tt.mutate(c)

			err := Validate(c)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCase))
			assert.True(t, strings.Contains(err.Error(), tt.message), "error %q should mention %q", err.Error(), tt.message)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	assert.ErrorIs(t, Validate(nil), ErrInvalidCase)
}
