package transform

import (
	"strings"

	"github.com/alvarohtrindade/funds-expenses-etl/internal/configs"
)

// EntryNormalizer cleans raw entry texts and rewrites known variants onto
// canonical labels.
type EntryNormalizer struct {
	rules []configs.EntryRule
}

// NewEntryNormalizer creates a normalizer over the given rewrite rules.
// Rules apply in order and the first match wins.
func NewEntryNormalizer(rules []configs.EntryRule) *EntryNormalizer {
	return &EntryNormalizer{rules: rules}
}

// Normalize trims the text, collapses internal whitespace runs, then applies
// the rewrite rules: an exact match against a pattern wins outright, then
// the first rule whose pattern occurs in the text, case-insensitively,
// replaces the whole text with the rule's canonical label. Unmatched text
// passes through cleaned.
func (n *EntryNormalizer) Normalize(entryText string) string {
	cleaned := collapseWhitespace(entryText)
	if cleaned == "" {
		return ""
	}

	upper := strings.ToUpper(cleaned)
	for _, rule := range n.rules {
		if upper == strings.ToUpper(rule.Pattern) {
			return rule.Replacement
		}
	}
	for _, rule := range n.rules {
		if strings.Contains(upper, strings.ToUpper(rule.Pattern)) {
			return rule.Replacement
		}
	}
	return cleaned
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
