package extractors

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

// writeFile stores the content encoded as Latin-1, the encoding the
// custodian exports actually use.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	encoded, err := charmap.ISO8859_1.NewEncoder().String(content)
	if err != nil {
		t.Fatalf("failed to encode %s: %v", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(encoded), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestDetectCustodian(t *testing.T) {
	tests := []struct {
		fileName string
		expected string
	}{
		{"CashStatement_2024-03.xls", CustodianSingulare},
		{"PTR_20240315.csv", CustodianMaster},
		{"Demonstrativo de Caixa 03-2024.csv", CustodianDaycoval},
		{"CaixaExtrato_15_03_2024.xls", CustodianBTG},
	}

	for _, tt := range tests {
		got, err := DetectCustodian("/statements/" + tt.fileName)
		if err != nil {
			t.Errorf("DetectCustodian(%q): unexpected error: %v", tt.fileName, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("DetectCustodian(%q) = %q, want %q", tt.fileName, got, tt.expected)
		}
	}
}

func TestDetectCustodian_Unknown(t *testing.T) {
	if _, err := DetectCustodian("extrato_generico.csv"); err == nil {
		t.Error("expected error for unrecognized file name")
	}
}

func TestForCustodian(t *testing.T) {
	for _, name := range Supported() {
		extractor, err := ForCustodian(name)
		if err != nil {
			t.Errorf("ForCustodian(%q): unexpected error: %v", name, err)
			continue
		}
		if extractor.Custodian() != name {
			t.Errorf("ForCustodian(%q) returned extractor for %q", name, extractor.Custodian())
		}
	}

	if _, err := ForCustodian("itau"); err == nil {
		t.Error("expected error for unsupported custodian")
	}

	if _, err := ForCustodian("MASTER"); err != nil {
		t.Errorf("custodian lookup must be case-insensitive: %v", err)
	}
}

func TestMasterExtractor(t *testing.T) {
	content := "Carteira;DataLancamento;Historico;Credito;Debito;Saldo\n" +
		"ALFA FIDC;15/03/2024;Taxa de Custódia;;(1.234,56);10.000,00\n" +
		"ALFA FIDC;15/03/2024;TED Recebida;2.500,00;;12.500,00\n" +
		";;;;;\n"
	path := writeFile(t, t.TempDir(), "PTR_20240315.csv", content)

	records, err := NewMasterExtractor().Extract(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.FundName != "ALFA FIDC" || first.Date != "15/03/2024" {
		t.Errorf("unexpected first record: %+v", first)
	}
	if first.AmountDebit != "(1.234,56)" || first.AmountCredit != "" {
		t.Errorf("unexpected amounts: credit %q debit %q", first.AmountCredit, first.AmountDebit)
	}
	if records[1].AmountCredit != "2.500,00" {
		t.Errorf("unexpected credit: %q", records[1].AmountCredit)
	}
}

func TestMasterExtractor_MissingColumn(t *testing.T) {
	path := writeFile(t, t.TempDir(), "PTR_x.csv", "Foo;Bar\n1;2\n")
	if _, err := NewMasterExtractor().Extract(path); err == nil {
		t.Error("expected error for missing columns")
	}
}

func TestMasterExtractor_UnsupportedExtension(t *testing.T) {
	if _, err := NewMasterExtractor().Extract("PTR_x.pdf"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestDaycovalExtractor_Report(t *testing.T) {
	content := "cab;P1051Cab;1;2;Demonstrativo de Caixa\n" +
		"det;P1051Det;1;2;15/03/2024;x;y;BETA FIDC;z;Taxa de Administração;;(500,00)\n" +
		"det;P1051Det;1;2;16/03/2024;x;y;BETA FIDC;z;TED Recebida;1.000,00;\n" +
		"rod;P1051Rod;1;2\n"
	path := writeFile(t, t.TempDir(), "Demonstrativo de Caixa.csv", content)

	records, err := NewDaycovalExtractor().Extract(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].FundName != "BETA FIDC" || records[0].Date != "15/03/2024" {
		t.Errorf("unexpected record: %+v", records[0])
	}
	if records[0].AmountDebit != "(500,00)" {
		t.Errorf("unexpected debit: %q", records[0].AmountDebit)
	}
	if records[1].AmountCredit != "1.000,00" {
		t.Errorf("unexpected credit: %q", records[1].AmountCredit)
	}
}

func TestDaycovalExtractor_CSVFallback(t *testing.T) {
	content := "DataLancamento;Carteira;Historico;Credito;Debito\n" +
		"15/03/2024;GAMA FIDC;Auditoria;;300,00\n"
	path := writeFile(t, t.TempDir(), "demonstrativo.csv", content)

	records, err := NewDaycovalExtractor().Extract(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].FundName != "GAMA FIDC" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestBTGExtractor_CSV(t *testing.T) {
	content := "Nome da Classe;Data;Lançamento;Financeiro (R$);Saldo (R$);Observação;Remetente\n" +
		"DELTA FIM;15/03/2024;Taxa de Gestão;-150,00;9.850,00;;Gestora\n" +
		"DELTA FIM;16/03/2024;Aplicação;1.000,00;10.850,00;;Cotista\n"
	path := writeFile(t, t.TempDir(), "CaixaExtrato.csv", content)

	records, err := NewBTGExtractor().Extract(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].AmountDebit != "-150,00" || records[0].AmountCredit != "" {
		t.Errorf("negative value must land in the debit column: %+v", records[0])
	}
	if records[1].AmountCredit != "1.000,00" || records[1].AmountDebit != "" {
		t.Errorf("positive value must land in the credit column: %+v", records[1])
	}
	if records[0].Sender != "Gestora" {
		t.Errorf("unexpected sender: %q", records[0].Sender)
	}
	if records[0].EntryText != "Taxa de Gestão" {
		t.Errorf("accented entry text must survive the Latin-1 round trip, got %q",
			records[0].EntryText)
	}
}

func TestSingulareExtractor_UnsupportedExtension(t *testing.T) {
	if _, err := NewSingulareExtractor().Extract("CashStatement.csv"); err == nil {
		t.Error("expected error for non-xls file")
	}
}

func TestIsNegativeAmount(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"-150,00", true},
		{"(150,00)", true},
		{"R$ -150,00", true},
		{"150,00", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isNegativeAmount(tt.value); got != tt.expected {
			t.Errorf("isNegativeAmount(%q) = %v, want %v", tt.value, got, tt.expected)
		}
	}
}

func TestHeaderIndex(t *testing.T) {
	index := headerIndex([]string{" Carteira ", "DataLancamento", "", "Historico"})
	if index["carteira"] != 0 || index["datalancamento"] != 1 || index["historico"] != 3 {
		t.Errorf("unexpected index: %v", index)
	}

	row := []string{"ALFA", "15/03/2024"}
	if got := fieldAt(row, index, "historico", "carteira"); got != "ALFA" {
		t.Errorf("fieldAt must fall through to the next name, got %q", got)
	}
	if got := fieldAt(row, index, "historico"); got != "" {
		t.Errorf("short row must yield empty, got %q", got)
	}
}
