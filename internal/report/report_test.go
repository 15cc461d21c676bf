package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alvarohtrindade/funds-expenses-etl/internal/models"
	"github.com/alvarohtrindade/funds-expenses-etl/internal/transform"
)

func summaryRecords() []models.CanonicalRecord {
	return []models.CanonicalRecord{
		{
			Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Custodian: "Master",
			FundType: models.FundTypeFIDC, Category: models.CategoryTaxa,
			Amount: decimal.RequireFromString("100.50"), EntryKind: models.EntryKindDebit,
			IsExpense: true,
		},
		{
			Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), Custodian: "Master",
			FundType: models.FundTypeFICFIM, Category: models.CategoryTransferencia,
			Amount: decimal.RequireFromString("250.00"), EntryKind: models.EntryKindCredit,
		},
		{
			Date: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), Custodian: "BTG",
			FundType: models.FundTypeFIDC, Category: models.CategoryTaxa,
			Amount: decimal.RequireFromString("50.00"), EntryKind: models.EntryKindDebit,
			IsExpense: true,
		},
	}
}

func TestNewSummary(t *testing.T) {
	stats := &transform.Stats{InputRows: 5, OutputRows: 3, Duplicates: 1, DateWarnings: 1, Expenses: 2}
	s := NewSummary(summaryRecords(), stats)

	if s.InputRows != 5 || s.OutputRows != 3 {
		t.Errorf("unexpected row counts: %d/%d", s.InputRows, s.OutputRows)
	}
	if s.ByCustodian["Master"] != 2 || s.ByCustodian["BTG"] != 1 {
		t.Errorf("unexpected custodian counts: %v", s.ByCustodian)
	}
	if s.ByFundType["FIDC"] != 2 {
		t.Errorf("unexpected fund type counts: %v", s.ByFundType)
	}
	if !s.TotalDebits.Equal(decimal.RequireFromString("150.50")) {
		t.Errorf("unexpected total debits: %s", s.TotalDebits)
	}
	if !s.TotalCredits.Equal(decimal.RequireFromString("250")) {
		t.Errorf("unexpected total credits: %s", s.TotalCredits)
	}
	if s.FirstDate != "2024-03-10" || s.LastDate != "2024-03-20" {
		t.Errorf("unexpected date range: %s..%s", s.FirstDate, s.LastDate)
	}
}

func TestSummary_Merge(t *testing.T) {
	first := NewSummary(summaryRecords(), &transform.Stats{InputRows: 3, OutputRows: 3})
	second := NewSummary(nil, &transform.Stats{InputRows: 2, OutputRows: 1})
	second.FirstDate = "2024-02-01"
	second.LastDate = "2024-04-01"

	first.Merge(second)
	if first.InputRows != 5 || first.OutputRows != 4 {
		t.Errorf("unexpected merged counts: %d/%d", first.InputRows, first.OutputRows)
	}
	if first.FirstDate != "2024-02-01" || first.LastDate != "2024-04-01" {
		t.Errorf("merge must widen the date range: %s..%s", first.FirstDate, first.LastDate)
	}
}

func TestSummary_RenderConsole(t *testing.T) {
	s := NewSummary(summaryRecords(), &transform.Stats{InputRows: 3, OutputRows: 3, Expenses: 2})

	var buf bytes.Buffer
	if err := s.Render(&buf, FormatConsole); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"RESUMO DO PROCESSAMENTO", "Registros gerados:    3", "Por custodiante", "Master", "FIDC"} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q:\n%s", want, out)
		}
	}
}

func TestSummary_RenderJSON(t *testing.T) {
	s := NewSummary(summaryRecords(), nil)

	var buf bytes.Buffer
	if err := s.Render(&buf, FormatJSON); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["first_date"] != "2024-03-10" {
		t.Errorf("unexpected first_date: %v", decoded["first_date"])
	}
}

func TestSummary_RenderUnknownFormat(t *testing.T) {
	s := NewSummary(nil, nil)
	if err := s.Render(&bytes.Buffer{}, OutputFormat("xml")); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestOutputFormat_IsValid(t *testing.T) {
	if !FormatConsole.IsValid() || !FormatJSON.IsValid() {
		t.Error("built-in formats must be valid")
	}
	if OutputFormat("yaml").IsValid() {
		t.Error("unknown format must be invalid")
	}
}
