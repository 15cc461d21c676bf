package classify

import (
	"strings"

	"github.com/alvarohtrindade/funds-expenses-etl/internal/models"
)

// CategoryRule maps an expense category to the entry-text keywords that
// select it. Rules are evaluated in slice order and the first hit wins.
type CategoryRule struct {
	Category models.ExpenseCategory
	Keywords []string
}

// DefaultCategoryRules returns the built-in categorization table. Keyword
// matching is case-insensitive but accent-sensitive, so accented and plain
// spellings are listed separately.
func DefaultCategoryRules() []CategoryRule {
	return []CategoryRule{
		{models.CategoryTaxa, []string{"TAXA", "TX", "TARIFA"}},
		{models.CategoryCusto, []string{"CUSTO", "DESPESA", "CETIP", "SELIC", "CVM", "B3"}},
		{models.CategoryPagamento, []string{"PAGAMENTO", "PGTO", "PAGTO"}},
		{models.CategoryTransferencia, []string{"TRANSFERÊNCIA", "TRANSFERENCIA", "TED", "DOC", "PIX"}},
		{models.CategoryOperacao, []string{"OPERAÇÃO", "OPERACAO", "COMPRA", "VENDA"}},
		{models.CategoryResgate, []string{"RESGATE"}},
		{models.CategoryAplicacao, []string{"APLICAÇÃO", "APLICACAO"}},
		{models.CategoryAuditoria, []string{"AUDITORIA"}},
		{models.CategoryCustodia, []string{"CUSTÓDIA", "CUSTODIA"}},
		{models.CategoryGestao, []string{"GESTÃO", "GESTAO"}},
		{models.CategoryLiquidacao, []string{"LIQUIDAÇÃO", "LIQUIDACAO"}},
	}
}

// CategoryClassifier assigns an expense category to an entry text.
type CategoryClassifier struct {
	rules []CategoryRule
}

// NewCategoryClassifier creates a classifier. A nil rule slice selects the
// default table.
func NewCategoryClassifier(rules []CategoryRule) *CategoryClassifier {
	if rules == nil {
		rules = DefaultCategoryRules()
	}
	return &CategoryClassifier{rules: rules}
}

// Classify returns the category for an entry text. Daily balance lines are
// recognized accent-insensitively ahead of the keyword table; anything the
// table misses falls through to Outros.
func (c *CategoryClassifier) Classify(entryText string) models.ExpenseCategory {
	text := strings.ToUpper(strings.TrimSpace(entryText))
	if text == "" {
		return models.CategoryOutros
	}

	if strings.Contains(models.NormalizeName(text), "LIQUIDO NO DIA") {
		return models.CategoryBalancoDiario
	}

	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(text, keyword) {
				return rule.Category
			}
		}
	}

	return models.CategoryOutros
}
