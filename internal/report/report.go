// Package report summarizes a processing run for terminal display or
// structured output.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alvarohtrindade/funds-expenses-etl/internal/models"
	"github.com/alvarohtrindade/funds-expenses-etl/internal/transform"
)

// OutputFormat selects how a summary is rendered.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
)

// IsValid checks if the output format is supported.
func (f OutputFormat) IsValid() bool {
	return f == FormatConsole || f == FormatJSON
}

// Summary aggregates one processing run.
type Summary struct {
	GeneratedAt    time.Time        `json:"generated_at"`
	Files          []string         `json:"files"`
	InputRows      int              `json:"input_rows"`
	OutputRows     int              `json:"output_rows"`
	DateWarnings   int              `json:"date_warnings"`
	Duplicates     int              `json:"duplicates"`
	AmountWarnings int              `json:"amount_warnings"`
	RowsReassigned int              `json:"rows_reassigned"`
	Expenses       int              `json:"expenses"`
	TotalDebits    decimal.Decimal  `json:"total_debits"`
	TotalCredits   decimal.Decimal  `json:"total_credits"`
	FirstDate      string           `json:"first_date,omitempty"`
	LastDate       string           `json:"last_date,omitempty"`
	ByCustodian    map[string]int   `json:"by_custodian"`
	ByFundType     map[string]int   `json:"by_fund_type"`
	ByCategory     map[string]int   `json:"by_category"`
	Exports        []string         `json:"exports,omitempty"`
	BatchID        string           `json:"batch_id,omitempty"`
}

// NewSummary builds a summary from the processed records and run stats.
func NewSummary(records []models.CanonicalRecord, stats *transform.Stats) *Summary {
	s := &Summary{
		GeneratedAt: time.Now(),
		ByCustodian: make(map[string]int),
		ByFundType:  make(map[string]int),
		ByCategory:  make(map[string]int),
	}
	if stats != nil {
		s.InputRows = stats.InputRows
		s.OutputRows = stats.OutputRows
		s.DateWarnings = stats.DateWarnings
		s.Duplicates = stats.Duplicates
		s.AmountWarnings = stats.AmountWarnings
		s.RowsReassigned = stats.RowsReassigned
		s.Expenses = stats.Expenses
	}

	var first, last time.Time
	for i := range records {
		r := &records[i]
		s.ByCustodian[r.Custodian]++
		s.ByFundType[r.FundType.String()]++
		s.ByCategory[r.Category.String()]++

		switch r.EntryKind {
		case models.EntryKindDebit:
			s.TotalDebits = s.TotalDebits.Add(r.Amount)
		case models.EntryKindCredit:
			s.TotalCredits = s.TotalCredits.Add(r.Amount)
		}

		if r.HasDate() {
			if first.IsZero() || r.Date.Before(first) {
				first = r.Date
			}
			if r.Date.After(last) {
				last = r.Date
			}
		}
	}
	if !first.IsZero() {
		s.FirstDate = first.Format("2006-01-02")
		s.LastDate = last.Format("2006-01-02")
	}
	return s
}

// Merge folds another summary into this one. Used when a directory run
// processes several files.
func (s *Summary) Merge(other *Summary) {
	s.Files = append(s.Files, other.Files...)
	s.InputRows += other.InputRows
	s.OutputRows += other.OutputRows
	s.DateWarnings += other.DateWarnings
	s.Duplicates += other.Duplicates
	s.AmountWarnings += other.AmountWarnings
	s.RowsReassigned += other.RowsReassigned
	s.Expenses += other.Expenses
	s.TotalDebits = s.TotalDebits.Add(other.TotalDebits)
	s.TotalCredits = s.TotalCredits.Add(other.TotalCredits)
	s.Exports = append(s.Exports, other.Exports...)

	for k, v := range other.ByCustodian {
		s.ByCustodian[k] += v
	}
	for k, v := range other.ByFundType {
		s.ByFundType[k] += v
	}
	for k, v := range other.ByCategory {
		s.ByCategory[k] += v
	}

	if s.FirstDate == "" || (other.FirstDate != "" && other.FirstDate < s.FirstDate) {
		s.FirstDate = other.FirstDate
	}
	if other.LastDate > s.LastDate {
		s.LastDate = other.LastDate
	}
}

// Render writes the summary in the requested format.
func (s *Summary) Render(w io.Writer, format OutputFormat) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatConsole:
		return s.renderConsole(w)
	}
	return fmt.Errorf("unsupported output format: %s", format)
}

func (s *Summary) renderConsole(w io.Writer) error {
	var b strings.Builder

	b.WriteString("RESUMO DO PROCESSAMENTO\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	if len(s.Files) > 0 {
		fmt.Fprintf(&b, "Arquivos processados: %d\n", len(s.Files))
	}
	fmt.Fprintf(&b, "Registros lidos:      %d\n", s.InputRows)
	fmt.Fprintf(&b, "Registros gerados:    %d\n", s.OutputRows)
	fmt.Fprintf(&b, "Sem data válida:      %d\n", s.DateWarnings)
	fmt.Fprintf(&b, "Duplicados removidos: %d\n", s.Duplicates)
	fmt.Fprintf(&b, "Valores inválidos:    %d\n", s.AmountWarnings)
	fmt.Fprintf(&b, "Redistribuídos:       %d\n", s.RowsReassigned)
	if s.FirstDate != "" {
		fmt.Fprintf(&b, "Período:              %s a %s\n", s.FirstDate, s.LastDate)
	}

	fmt.Fprintf(&b, "\nDébitos:  R$ %s\n", s.TotalDebits.StringFixed(2))
	fmt.Fprintf(&b, "Créditos: R$ %s\n", s.TotalCredits.StringFixed(2))

	if s.OutputRows > 0 {
		share := float64(s.Expenses) / float64(s.OutputRows) * 100
		fmt.Fprintf(&b, "Despesas: %d (%.1f%%)\n", s.Expenses, share)
	}

	writeBreakdown(&b, "Por custodiante", s.ByCustodian)
	writeBreakdown(&b, "Por tipo de fundo", s.ByFundType)
	writeBreakdown(&b, "Por categoria", s.ByCategory)

	if s.BatchID != "" {
		fmt.Fprintf(&b, "\nCarga MySQL: %s\n", s.BatchID)
	}
	for _, path := range s.Exports {
		fmt.Fprintf(&b, "Exportado: %s\n", path)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// writeBreakdown prints a count map sorted by count descending, then name.
func writeBreakdown(b *strings.Builder, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}

	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	fmt.Fprintf(b, "\n%s:\n", title)
	for _, e := range entries {
		fmt.Fprintf(b, "  %-30s %d\n", e.name, e.count)
	}
}
