package classify

import (
	"strings"

	"github.com/alvarohtrindade/funds-expenses-etl/internal/models"
)

// DefaultDespesaPhrases returns the built-in list of entry-text phrases that
// mark a record as a fund expense.
func DefaultDespesaPhrases() []string {
	return []string{
		"Grafeno",
		"Taxa de Administração",
		"Anbima",
		"Taxa Anbima",
		"Taxa de Gestão",
		"Taxa de Custódia",
		"Despesas",
		"Auditoria",
		"Custódia",
		"Tarifa Bancária",
	}
}

// DespesaFlagger decides whether an entry text describes a fund expense.
type DespesaFlagger struct {
	phrases []string
}

// NewDespesaFlagger creates a flagger. A nil phrase slice selects the
// default list; an explicit empty slice flags nothing.
func NewDespesaFlagger(phrases []string) *DespesaFlagger {
	if phrases == nil {
		phrases = DefaultDespesaPhrases()
	}
	return &DespesaFlagger{phrases: phrases}
}

// IsExpense reports whether the entry text matches any configured phrase,
// case-insensitively, by exact match or phrase containment. Empty text is
// never an expense.
func (f *DespesaFlagger) IsExpense(entryText string) bool {
	text := strings.ToUpper(strings.TrimSpace(entryText))
	if text == "" {
		return false
	}
	for _, phrase := range f.phrases {
		p := strings.ToUpper(phrase)
		if text == p || strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// FlagRecords applies the flagger to a batch in place and returns the number
// of records flagged.
func (f *DespesaFlagger) FlagRecords(records []models.CanonicalRecord) int {
	flagged := 0
	for i := range records {
		records[i].IsExpense = f.IsExpense(records[i].EntryText)
		if records[i].IsExpense {
			flagged++
		}
	}
	return flagged
}
