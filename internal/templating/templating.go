// Package templating fills {Placeholder} tokens in message templates.
package templating

import (
	"regexp"
	"strings"

	"curalink/internal/constants"
)

// Known placeholder tokens
const (
	TokenClientName   = "{ClientName}"
	TokenOrganization = "{Organization}"
	TokenDate         = "{Date}"
	TokenTime         = "{Time}"
)

var variablePattern = regexp.MustCompile(`\{[^}]+\}`)

// Values supplies the non-contact placeholder values. Date and Time are fixed
// wording rather than values taken from a selected event.
type Values struct {
	Organization string
	Date         string
	Time         string
}

// DefaultValues returns the built-in placeholder values
func DefaultValues() Values {
	return Values{
		Organization: constants.DefaultOrganization,
		Date:         constants.DefaultPlaceholderDate,
		Time:         constants.DefaultPlaceholderTime,
	}
}

// WithOrganization returns v with the organization replaced when org is not empty
func (v Values) WithOrganization(org string) Values {
	if org != "" {
		v.Organization = org
	}
	return v
}

// Process replaces every occurrence of the four known tokens. Unknown tokens are left as-is.
func Process(content, contactName string, v Values) string {
	return strings.NewReplacer(
		TokenClientName, contactName,
		TokenOrganization, v.Organization,
		TokenDate, v.Date,
		TokenTime, v.Time,
	).Replace(content)
}

// Preview substitutes the contact and organization but shows date and time as "(Date)" and "(Time)"
func Preview(content, contactName string, v Values) string {
	return strings.NewReplacer(
		TokenClientName, contactName,
		TokenOrganization, v.Organization,
		TokenDate, "(Date)",
		TokenTime, "(Time)",
	).Replace(content)
}

// ExtractVariables returns the distinct placeholder names in content, without braces,
// in order of first appearance
func ExtractVariables(content string) []string {
	matches := variablePattern.FindAllString(content, -1)
	vars := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		name := m[1 : len(m)-1]
		if seen[name] {
			continue
		}
		seen[name] = true
		vars = append(vars, name)
	}
	return vars
}

// Combine joins several processed messages into one, separated by a blank line
func Combine(messages ...string) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		if strings.TrimSpace(m) != "" {
			parts = append(parts, m)
		}
	}
	return strings.Join(parts, constants.MessageSeparator)
}
