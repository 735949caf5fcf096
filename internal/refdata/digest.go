package refdata

import (
	"sort"
	"strings"
)

// Digest renders the reference tables as compact prompt text so the model
// cites real WCAG numbers, axe rule ids and APG pattern ids instead of
// inventing them.
func Digest() string {
	var b strings.Builder

	b.WriteString("WCAG 2.2 success criteria (number | name | level):\n")
	for _, k := range sortedKeys(wcagCriteria) {
		c := wcagCriteria[k]
		b.WriteString(c.Number + " | " + c.Name + " | " + c.Level + "\n")
	}

	b.WriteString("\naxe-core rules (id | impact | description):\n")
	for _, k := range sortedKeys(axeRules) {
		r := axeRules[k]
		b.WriteString(r.ID + " | " + strings.ToLower(string(r.Impact)) + " | " + r.Description + "\n")
	}

	b.WriteString("\nARIA APG patterns (id | name):\n")
	for _, k := range sortedKeys(apgPatterns) {
		p := apgPatterns[k]
		b.WriteString(p.ID + " | " + p.Name + "\n")
	}

	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
