package redistribute

import (
	"fmt"
	"testing"

	"github.com/alvarohtrindade/funds-expenses-etl/internal/configs"
	"github.com/alvarohtrindade/funds-expenses-etl/internal/models"
)

func makeParentRecords(fundName string, n int) []models.CanonicalRecord {
	records := make([]models.CanonicalRecord, n)
	for i := range records {
		records[i] = models.CanonicalRecord{
			FundName:  fundName,
			FundType:  models.FundTypeFIDC,
			EntryText: fmt.Sprintf("Lançamento %d", i),
		}
	}
	return records
}

func countByCategorized(records []models.CanonicalRecord) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.CategorizedFund]++
	}
	return counts
}

func TestRedistribute_ParentRetention(t *testing.T) {
	mapping := []configs.ParentMapping{
		{Parent: "IPÊ FIDC", Children: []string{"IPE BRANCO FIC FIM", "IPE ROXO FIC FIM"}},
	}

	for _, n := range []int{1, 2, 3, 10, 11, 100} {
		records := makeParentRecords("IPÊ FIDC MULTISSETORIAL", n)
		engine := NewEngine(mapping, Config{})
		result := engine.Redistribute(records)

		counts := countByCategorized(records)
		minKeep := (n + 1) / 2
		if counts["IPÊ FIDC"] < minKeep {
			t.Errorf("n=%d: parent kept %d rows, want at least %d", n, counts["IPÊ FIDC"], minKeep)
		}
		if result.RowsMatched != n {
			t.Errorf("n=%d: matched %d rows, want %d", n, result.RowsMatched, n)
		}

		total := 0
		for _, c := range counts {
			total += c
		}
		if total != n {
			t.Errorf("n=%d: rows not conserved, got %d", n, total)
		}
		for _, r := range records {
			if r.CategorizedFund == "" {
				t.Fatalf("n=%d: matched row left without categorized fund", n)
			}
		}
	}
}

func TestRedistribute_SingleRowStaysWithParent(t *testing.T) {
	mapping := []configs.ParentMapping{
		{Parent: "IPÊ FIDC", Children: []string{"IPE BRANCO FIC FIM"}},
	}
	records := makeParentRecords("IPÊ FIDC", 1)
	NewEngine(mapping, Config{}).Redistribute(records)

	if records[0].CategorizedFund != "IPÊ FIDC" {
		t.Errorf("single row must stay with the parent, got %q", records[0].CategorizedFund)
	}
}

func TestRedistribute_Deterministic(t *testing.T) {
	mapping := []configs.ParentMapping{
		{Parent: "AROEIRA FIDC", Children: []string{"AROEIRA FIC FIM", "AROEIRA II FIC FIM"}},
	}

	first := makeParentRecords("AROEIRA FIDC", 50)
	second := makeParentRecords("AROEIRA FIDC", 50)
	NewEngine(mapping, Config{Seed: 7}).Redistribute(first)
	NewEngine(mapping, Config{Seed: 7}).Redistribute(second)

	for i := range first {
		if first[i].CategorizedFund != second[i].CategorizedFund {
			t.Fatalf("row %d differs across identical runs: %q vs %q",
				i, first[i].CategorizedFund, second[i].CategorizedFund)
		}
	}
}

func TestRedistribute_SeedChangesAssignment(t *testing.T) {
	mapping := []configs.ParentMapping{
		{Parent: "AROEIRA FIDC", Children: []string{"AROEIRA FIC FIM"}},
	}

	first := makeParentRecords("AROEIRA FIDC", 60)
	second := makeParentRecords("AROEIRA FIDC", 60)
	NewEngine(mapping, Config{Seed: 1}).Redistribute(first)
	NewEngine(mapping, Config{Seed: 2}).Redistribute(second)

	same := true
	for i := range first {
		if first[i].CategorizedFund != second[i].CategorizedFund {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical assignments")
	}
}

func TestRedistribute_IndependentOfOtherParents(t *testing.T) {
	mapping := []configs.ParentMapping{
		{Parent: "ALFA FIDC", Children: []string{"ALFA FIC FIM"}},
		{Parent: "BETA FIDC", Children: []string{"BETA FIC FIM"}},
	}

	alone := makeParentRecords("BETA FIDC", 20)
	NewEngine(mapping, Config{}).Redistribute(alone)

	mixed := append(makeParentRecords("ALFA FIDC", 13), makeParentRecords("BETA FIDC", 20)...)
	NewEngine(mapping, Config{}).Redistribute(mixed)

	for i := 0; i < 20; i++ {
		if alone[i].CategorizedFund != mixed[13+i].CategorizedFund {
			t.Fatalf("row %d: BETA assignment changed when ALFA rows present: %q vs %q",
				i, alone[i].CategorizedFund, mixed[13+i].CategorizedFund)
		}
	}
}

func TestRedistribute_ChildTypeResolved(t *testing.T) {
	mapping := []configs.ParentMapping{
		{Parent: "IPÊ FIDC", Children: []string{"IPE BRANCO FIC FIM CP"}},
	}
	records := makeParentRecords("IPÊ FIDC", 30)
	NewEngine(mapping, Config{}).Redistribute(records)

	sawChild := false
	for _, r := range records {
		switch r.CategorizedFund {
		case "IPE BRANCO FIC FIM CP":
			sawChild = true
			if r.FundType != models.FundTypeFICFIMCP {
				t.Errorf("child row has type %q, want FICFIM CP", r.FundType)
			}
		case "IPÊ FIDC":
			if r.FundType != models.FundTypeFIDC {
				t.Errorf("parent row type changed to %q", r.FundType)
			}
		}
	}
	if !sawChild {
		t.Error("expected at least one row assigned to the sub-fund")
	}
}

func TestRedistribute_ChildNamedRowsKeepIdentity(t *testing.T) {
	mapping := []configs.ParentMapping{
		{Parent: "IPÊ FIDC", Children: []string{"IPE BRANCO FIC FIM"}},
	}
	records := []models.CanonicalRecord{
		{FundName: "IPE BRANCO FIC FIM RESPONSABILIDADE LIMITADA", FundType: models.FundTypeOutro},
		{FundName: "IPÊ FIDC", FundType: models.FundTypeFIDC},
	}
	NewEngine(mapping, Config{}).Redistribute(records)

	if records[0].CategorizedFund != "IPE BRANCO FIC FIM" {
		t.Errorf("child-named row must take the canonical sub-fund name, got %q",
			records[0].CategorizedFund)
	}
	if records[0].FundType != models.FundTypeFICFIM {
		t.Errorf("child-named row must take the sub-fund type, got %q", records[0].FundType)
	}
	if records[1].CategorizedFund != "IPÊ FIDC" {
		t.Errorf("lone parent row must stay with the parent, got %q", records[1].CategorizedFund)
	}
}

func TestRedistribute_ChildVariantsCanonicalized(t *testing.T) {
	mapping := []configs.ParentMapping{
		{Parent: "IPÊ", Children: []string{"AROEIRA FIC FIM", "SECULO FIC FIM"}},
	}
	records := []models.CanonicalRecord{
		{FundName: "AROEIRA FIC FIM CP", FundType: models.FundTypeOutro},
		{FundName: "SECULO FIC FIM CP", FundType: models.FundTypeOutro},
	}
	NewEngine(mapping, Config{}).Redistribute(records)

	if records[0].CategorizedFund != "AROEIRA FIC FIM" {
		t.Errorf("variant row must take the canonical sub-fund name, got %q",
			records[0].CategorizedFund)
	}
	if records[1].CategorizedFund != "SECULO FIC FIM" {
		t.Errorf("variant row must take the canonical sub-fund name, got %q",
			records[1].CategorizedFund)
	}
	for i, r := range records {
		if r.FundType != models.FundTypeFICFIM {
			t.Errorf("row %d: want type %q, got %q", i, models.FundTypeFICFIM, r.FundType)
		}
	}
}

func TestRedistribute_StrictEvenSplit(t *testing.T) {
	mapping := []configs.ParentMapping{
		{Parent: "GAMA FIDC", Children: []string{"GAMA I FIC FIM", "GAMA II FIC FIM", "GAMA III FIC FIM"}},
	}

	// 11 rows: keep 6, remainder 5, rowsPerChild 1. Default mode leaves 2
	// leftover rows with the parent; strict mode deals them out.
	relaxed := makeParentRecords("GAMA FIDC", 11)
	strict := makeParentRecords("GAMA FIDC", 11)
	NewEngine(mapping, Config{}).Redistribute(relaxed)
	NewEngine(mapping, Config{StrictEvenSplit: true}).Redistribute(strict)

	relaxedCounts := countByCategorized(relaxed)
	strictCounts := countByCategorized(strict)

	if relaxedCounts["GAMA FIDC"] != 8 {
		t.Errorf("relaxed mode: parent kept %d rows, want 8", relaxedCounts["GAMA FIDC"])
	}
	if strictCounts["GAMA FIDC"] != 6 {
		t.Errorf("strict mode: parent kept %d rows, want 6", strictCounts["GAMA FIDC"])
	}
}

func TestRedistribute_MinParentShare(t *testing.T) {
	mapping := []configs.ParentMapping{
		{Parent: "GAMA FIDC", Children: []string{"GAMA I FIC FIM"}},
	}

	records := makeParentRecords("GAMA FIDC", 10)
	NewEngine(mapping, Config{MinParentShare: 0.8}).Redistribute(records)

	counts := countByCategorized(records)
	if counts["GAMA FIDC"] != 8 {
		t.Errorf("parent kept %d rows, want 8 with a 0.8 share", counts["GAMA FIDC"])
	}
}

func TestRedistribute_UnmatchedRowsUntouched(t *testing.T) {
	mapping := []configs.ParentMapping{
		{Parent: "IPÊ FIDC", Children: []string{"IPE BRANCO FIC FIM"}},
	}
	records := []models.CanonicalRecord{
		{FundName: "OUTRO FUNDO FIM", FundType: models.FundTypeFIM},
	}
	result := NewEngine(mapping, Config{}).Redistribute(records)

	if result.RowsMatched != 0 {
		t.Errorf("expected no matched rows, got %d", result.RowsMatched)
	}
	if records[0].CategorizedFund != "" {
		t.Errorf("unmatched row must keep empty categorized fund, got %q",
			records[0].CategorizedFund)
	}
}

func TestNamesMatch(t *testing.T) {
	tests := []struct {
		a, b     string
		expected bool
	}{
		{"IPÊ FIDC", "IPE FIDC MULTISSETORIAL", true},
		{"ipe fidc", "IPÊ FIDC", true},
		{"AROEIRA FIDC", "IPÊ FIDC", false},
		{"", "IPÊ FIDC", false},
	}
	for _, tt := range tests {
		if got := namesMatch(tt.a, tt.b); got != tt.expected {
			t.Errorf("namesMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.expected)
		}
	}
}
