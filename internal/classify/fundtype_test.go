package classify

import (
	"testing"

	"github.com/alvarohtrindade/funds-expenses-etl/internal/models"
)

func TestFundTypeClassifier_Classify(t *testing.T) {
	classifier := NewFundTypeClassifier(nil)

	tests := []struct {
		name     string
		fundName string
		expected models.FundType
	}{
		{
			name:     "plain FIDC",
			fundName: "ALFA FIDC MULTISSETORIAL",
			expected: models.FundTypeFIDC,
		},
		{
			name:     "FIC FIDC before FIDC",
			fundName: "BETA FIC FIDC",
			expected: models.FundTypeFICFIDC,
		},
		{
			name:     "FC FIDC stays FIDC",
			fundName: "LION FC FIDC",
			expected: models.FundTypeFIDC,
		},
		{
			name:     "FC FIM CP resolves to FICFIM CP",
			fundName: "SCI SAO CR FC FIM CP",
			expected: models.FundTypeFICFIMCP,
		},
		{
			name:     "FIC FIM CP before FIC FIM",
			fundName: "GAMA FIC FIM CP",
			expected: models.FundTypeFICFIMCP,
		},
		{
			name:     "FIC FIM before FIM",
			fundName: "AROEIRA FIC FIM",
			expected: models.FundTypeFICFIM,
		},
		{
			name:     "FIM CP before FIM",
			fundName: "DELTA FIM CP",
			expected: models.FundTypeFIMCP,
		},
		{
			name:     "plain FIM",
			fundName: "EPSILON FIM",
			expected: models.FundTypeFIM,
		},
		{
			name:     "FIC FIA before FIA",
			fundName: "ZETA FIC FIA",
			expected: models.FundTypeFICFIA,
		},
		{
			name:     "plain FIA",
			fundName: "ETA FIA VALOR",
			expected: models.FundTypeFIA,
		},
		{
			name:     "long form direitos creditorios",
			fundName: "TETA FUNDO DE INVESTIMENTO EM DIREITOS CREDITÓRIOS",
			expected: models.FundTypeFIDC,
		},
		{
			name:     "truncated direitos name",
			fundName: "VELSO - FUNDO DE INVESTIMENTO EM DIREITO",
			expected: models.FundTypeFIDC,
		},
		{
			name:     "subordinada suffix stripped",
			fundName: "IOTA FIDC - SUBORDINADA",
			expected: models.FundTypeFIDC,
		},
		{
			name:     "manual override for bare name",
			fundName: "VISHNU FUNDO",
			expected: models.FundTypeFIDC,
		},
		{
			name:     "unknown name",
			fundName: "TESOURARIA GERAL",
			expected: models.FundTypeOutro,
		},
		{
			name:     "empty name",
			fundName: "",
			expected: models.FundTypeOutro,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.fundName)
			if got != tt.expected {
				t.Errorf("Classify(%q) = %q, want %q", tt.fundName, got, tt.expected)
			}
		})
	}
}

func TestFundTypeClassifier_EmptyOverrides(t *testing.T) {
	classifier := NewFundTypeClassifier([]ManualOverride{})
	if got := classifier.Classify("VISHNU FUNDO"); got != models.FundTypeOutro {
		t.Errorf("expected Outro without overrides, got %q", got)
	}
}

func TestFundTypeClassifier_CustomOverride(t *testing.T) {
	classifier := NewFundTypeClassifier([]ManualOverride{
		{Pattern: "TESOURARIA", Type: models.FundTypeFIM},
	})
	if got := classifier.Classify("TESOURARIA GERAL"); got != models.FundTypeFIM {
		t.Errorf("expected FIM from custom override, got %q", got)
	}
}

func TestFundTypeClassifier_StandardizesAliases(t *testing.T) {
	classifier := NewFundTypeClassifier([]ManualOverride{
		{Pattern: "LEGACY", Type: models.FundType("FIC FIM")},
	})
	if got := classifier.Classify("LEGACY HOLDINGS"); got != models.FundTypeFICFIM {
		t.Errorf("expected alias FIC FIM standardized to FICFIM, got %q", got)
	}
}

func TestResolveChildType(t *testing.T) {
	tests := []struct {
		childName string
		expected  models.FundType
	}{
		{"AROEIRA FIC FIM", models.FundTypeFICFIM},
		{"IPE BRANCO FIC FIM CP", models.FundTypeFICFIMCP},
		{"VERDE FIC FIA", models.FundTypeFICFIA},
		{"AZUL FIC", models.FundTypeFIC},
		{"ROXO FIM CP", models.FundTypeFIMCP},
		{"CINZA FIM", models.FundTypeFIM},
		{"PRETO FIA", models.FundTypeFIA},
		{"SEM TIPO", models.FundTypeOutro},
		{"", models.FundTypeOutro},
	}

	for _, tt := range tests {
		if got := ResolveChildType(tt.childName); got != tt.expected {
			t.Errorf("ResolveChildType(%q) = %q, want %q", tt.childName, got, tt.expected)
		}
	}
}
