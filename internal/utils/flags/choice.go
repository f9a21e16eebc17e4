package flags

import (
	"fmt"
	"strings"
)

const (
	choiceListOpenConstant       = "<"
	choiceListCloseConstant      = ">"
	choiceListSeparatorConstant  = "|"
	choiceBareUsageTemplate      = "`%s`"
	choiceDescribedUsageTemplate = "`%s` %s"
)

// FormatChoiceUsage renders a pflag usage string listing the accepted values
// for a flag, with the default value spelled in uppercase.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := choiceListOpenConstant + strings.Join(renderChoices(defaultChoice, choices), choiceListSeparatorConstant) + choiceListCloseConstant
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceBareUsageTemplate, placeholder)
	}
	return fmt.Sprintf(choiceDescribedUsageTemplate, placeholder, description)
}

// renderChoices trims and deduplicates the choices, uppercasing the default.
// Comparison is case-insensitive so "Info" and "info" collapse to one entry.
func renderChoices(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	rendered := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))

	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		if len(trimmedChoice) == 0 {
			continue
		}

		normalizedChoice := strings.ToLower(trimmedChoice)
		if _, duplicate := seen[normalizedChoice]; duplicate {
			continue
		}
		seen[normalizedChoice] = struct{}{}

		if normalizedChoice == normalizedDefault {
			rendered = append(rendered, strings.ToUpper(trimmedChoice))
			continue
		}
		rendered = append(rendered, trimmedChoice)
	}

	return rendered
}
