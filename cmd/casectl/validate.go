package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/detective-engine/pkg/casefile"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <case-file>...",
		Short: "Check case files for structural and naming problems",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, filename := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "Validating %s...\n", filename)
				v := &CaseValidator{}
				err := v.validateFile(filename)
				for _, w := range v.warnings {
					fmt.Fprintf(cmd.OutOrStdout(), "  warning: %s\n", w)
				}
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Validation failed: %v\n", err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is valid!\n", filename)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d case files invalid", failed, len(args))
			}
			return nil
		},
	}
}

// CaseValidator layers authoring conventions on top of casefile.Validate.
type CaseValidator struct {
	errors   []string
	warnings []string
}

func (v *CaseValidator) validateFile(filename string) error {
	baseName := filepath.Base(filename)
	if !casefile.IsCaseFile(baseName) {
		return fmt.Errorf("case file must have a .json, .yaml or .yml extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	if !isValidCaseFilename(nameWithoutExt) {
		return fmt.Errorf("case filename '%s' must be lowercase snake_case (e.g., my_case.json, not my-case.json or MyCase.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	c, err := casefile.Decode(baseName, data)
	if err != nil {
		return err
	}

	v.errors, v.warnings = nil, nil
	if err := casefile.Validate(c); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			v.addError(line)
		}
	}
	v.validateCase(c)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *CaseValidator) validateCase(c *casefile.Case) {
	v.validateIDFormat("case ID", c.ID)

	for _, h := range c.Hypotheses {
		v.validateIDFormat("hypothesis ID", h.ID)
		if h.Tier == casefile.TierTwo && len(h.UnlockRequirements) == 0 {
			v.warnings = append(v.warnings, fmt.Sprintf("tier 2 hypothesis '%s' has no unlock requirements and can only be unlocked manually", h.ID))
		}
	}
	for _, a := range c.InvestigationActions {
		v.validateIDFormat("investigation action ID", a.ID)
	}
	for _, ct := range c.Contradictions {
		v.validateIDFormat("contradiction ID", ct.ID)
	}
}

func (v *CaseValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}
	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *CaseValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidCaseFilename(name string) bool {
	// Allow 'x.' prefix for experimental cases
	name = strings.TrimPrefix(name, "x.")
	return validIDRegex.MatchString(name)
}
