package types

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical scenarios stored from the staging layer onwards.
const (
	ScenarioRealized = "Realized"
	ScenarioBudgeted = "Budgeted"
)

// Scenario labels written to the raw layer, as they appear in the workbook.
const (
	SourceScenarioRealized = "Realizado"
	SourceScenarioBudgeted = "Orçado"
)

// LIKE patterns the staging transforms apply to UPPER(TRIM(cenario)).
const (
	RealizedPattern = "%REALIZADO%"
	BudgetedPattern = "%OR%ADO%"
)

var budgetedPattern = regexp.MustCompile(`OR.*ADO`)

// FoldAccents strips combining marks, so "Orçado" becomes "Orcado".
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// NormalizeScenario maps free-form scenario labels to Realized or Budgeted and
// returns anything else trimmed. It mirrors the staging SQL for values coming from users.
func NormalizeScenario(s string) string {
	trimmed := strings.TrimSpace(s)
	key := strings.ToUpper(FoldAccents(trimmed))

	switch {
	case strings.Contains(key, "REALIZADO"):
		return ScenarioRealized
	case budgetedPattern.MatchString(key):
		return ScenarioBudgeted
	}
	return trimmed
}
