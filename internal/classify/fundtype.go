// Package classify resolves fund types, expense categories and the despesa
// flag from free-text fund names and entry descriptions.
package classify

import (
	"strings"

	"github.com/alvarohtrindade/funds-expenses-etl/internal/models"
	"github.com/alvarohtrindade/funds-expenses-etl/pkg/logger"
)

// boilerplateSuffixes are name fragments that never affect classification:
// liability-limitation phrases and subordination markers appended by
// custodians.
var boilerplateSuffixes = []string{
	"RESPONSABILIDADE LIMITADA",
	"RESPONSABILIDADE LIMTADA",
	"RESPONSABILIDAD LIMITADA",
	"RESP LIMITADA",
	"- SUBORDINADA",
	"SUBORDINADA",
	"- RL",
	"RL",
	"- NP",
	"NP",
}

// fundTypePatterns is the ordered classification table. Order is part of the
// contract: compound types come before the generic types whose tokens they
// contain, otherwise "FIC FIM CP" would resolve as FIM.
var fundTypePatterns = []struct {
	Type     models.FundType
	Patterns []string
}{
	{models.FundTypeFICFIDC, []string{
		"FICFIDC",
		"FIC FIDC",
		"FUNDO DE INVESTIMENTO EM COTAS DE FUNDOS DE INVESTIMENTO EM DIREITOS",
	}},
	{models.FundTypeFIDC, []string{
		"FIDC",
		"FUNDO DE INVESTIMENTO EM DIREITOS CREDITÓRIOS",
		"FUNDO DE INVESTIMENTO EM DIREITOS",
		"FUNDO DE INVEST. EM DIREITOS",
		"FUNDO DE INVESTIMENTO EM DC",
		"EM DIREITOS C",
	}},
	{models.FundTypeFICFIMCP, []string{
		"FICFIM CP",
		"FIC FIM CP",
		"FIC DE FIM CP",
		"FC FIM CP",
	}},
	{models.FundTypeFICFIM, []string{
		"FICFIM",
		"FIC FIM",
		"FC FIM",
		"FIC DE FIM",
		"FUNDO DE INVESTIMENTO EM COTAS DE FUNDO MULTIMERCADO",
	}},
	{models.FundTypeFIMCP, []string{
		"FIM CP",
	}},
	{models.FundTypeFICFIA, []string{
		"FICFIA",
		"FIC FIA",
		"FUNDO DE INVESTIMENTO EM COTAS DE FUNDO DE AÇÕES",
	}},
	{models.FundTypeFIA, []string{
		"FIA",
		"FUNDO DE INVESTIMENTO EM AÇÕES",
	}},
	{models.FundTypeFIM, []string{
		"FIM",
		"FUNDO DE INVESTIMENTO MULTIMERCADO",
		"MULTIMERCADO",
	}},
	{models.FundTypeFIC, []string{
		"FIC",
		"FC",
		"FUNDO DE INVESTIMENTO EM COTAS",
	}},
}

// ManualOverride maps a fund-name fragment to a fund type. Overrides exist
// for funds whose registered names carry none of the taxonomy tokens, often
// because the custodian truncates the name.
type ManualOverride struct {
	Pattern string
	Type    models.FundType
}

// DefaultManualOverrides returns the curated override table. Entries are
// tried in order against names the pattern table could not resolve.
func DefaultManualOverrides() []ManualOverride {
	return []ManualOverride{
		{"ALBAREDO FIDC", models.FundTypeFIDC},
		{"Z INVEST FIDC", models.FundTypeFIDC},
		{"SC FUNDO DE INVESTIMENTO EM DC", models.FundTypeFIDC},
		{"PRIME AGRO FIDC", models.FundTypeFIDC},
		{"GRUPO PRIME AGRO FIC", models.FundTypeFICFIM},
		{"GLOBAL FUTURA FIDC", models.FundTypeFIDC},
		{"BASÃ", models.FundTypeFIDC},
		{"BLUE ROCKET FIDC", models.FundTypeFIDC},
		{"VISHNU FUNDO", models.FundTypeFIDC},
		{"AF6 FIDC", models.FundTypeFIDC},
		{"BELL FUNDO", models.FundTypeFIDC},
		{"VERGINIA FUNDO", models.FundTypeFIDC},
		{"BONTEMPO FIDC", models.FundTypeFIDC},
		{"PINPAG FIDC", models.FundTypeFIDC},
		{"BELLIN FIC", models.FundTypeFICFIM},
		{"NINE CAPITAL FIDC", models.FundTypeFIDC},
		{"NINE CAPITAL FIC", models.FundTypeFIC},
		{"MASTRENN FIDC", models.FundTypeFIDC},
		{"MASTRENN FIC", models.FundTypeFICFIMCP},
		{"UKF FIDC", models.FundTypeFIDC},
		{"UKF FIC", models.FundTypeFIC},
		{"NR11 FUNDO", models.FundTypeFIDC},
		{"SMT AGRO HOLDING", models.FundTypeFICFIM},
		{"SMT AGRO FUNDO", models.FundTypeFIDC},
		{"TERTON FUNDO", models.FundTypeFIDC},
		{"ZAB LEGACY FIDC", models.FundTypeFIDC},
		{"SCI SAO CR FC FIM CP", models.FundTypeFICFIMCP},
		{"ARTANIS FUNDO DE INVESTIMENTO MULTIMERCA", models.FundTypeFIM},
		{"GOLIATH FUNDO DE INVESTIMENTO MULTIMERCA", models.FundTypeFIM},
		{"AGROCETE FUNDO DE INVESTIMENTO EM DIREIT", models.FundTypeFIDC},
		{"CREDILOG II - FUNDO DE INVESTIMENTO EM D", models.FundTypeFIDC},
		{"CREDILOG - FUNDO DE INVESTIMENTO EM DIRE", models.FundTypeFIDC},
		{"PINPAG  FIDC - RL", models.FundTypeFIDC},
		{"CAPITALIZA FUNDO DE INVESTIMENTO EM DIRE", models.FundTypeFIDC},
		{"FUTURO CAPITAL FUNDO DE INVESTIMENTO EM", models.FundTypeFIDC},
		{"VELSO - FUNDO DE INVESTIMENTO EM DIREITO", models.FundTypeFIDC},
		{"ANVERES FUNDO DE INVESTIMENTO EM DIREITO", models.FundTypeFIDC},
	}
}

// FundTypeClassifier resolves fund names to fund types using the ordered
// pattern table, fallback heuristics and an injected manual override table.
type FundTypeClassifier struct {
	overrides []ManualOverride
	log       logger.Logger
}

// NewFundTypeClassifier creates a classifier. A nil override slice selects
// the default table; an explicit empty slice disables manual overrides.
func NewFundTypeClassifier(overrides []ManualOverride) *FundTypeClassifier {
	if overrides == nil {
		overrides = DefaultManualOverrides()
	}
	return &FundTypeClassifier{
		overrides: overrides,
		log:       logger.GetGlobalLogger().WithComponent("fund_type"),
	}
}

// Classify resolves a fund name to a standardized fund type. Unresolvable
// names return the Outro sentinel, never an empty type.
func (c *FundTypeClassifier) Classify(fundName string) models.FundType {
	fundType := classifyByPatterns(fundName)
	if fundType == models.FundTypeOutro {
		fundType = c.applyOverrides(fundName)
	}
	return fundType.Standardize()
}

func (c *FundTypeClassifier) applyOverrides(fundName string) models.FundType {
	name := strings.ToUpper(strings.TrimSpace(fundName))
	for _, override := range c.overrides {
		if strings.Contains(name, override.Pattern) {
			c.log.WithFields(logger.Fields{
				"fund":    fundName,
				"pattern": override.Pattern,
				"type":    override.Type.String(),
			}).Debug("Manual fund type override applied")
			return override.Type
		}
	}
	return models.FundTypeOutro
}

// classifyByPatterns runs the ordered table and the fallback heuristics.
func classifyByPatterns(fundName string) models.FundType {
	name := strings.ToUpper(strings.TrimSpace(fundName))
	if name == "" {
		return models.FundTypeOutro
	}

	for _, suffix := range boilerplateSuffixes {
		name = strings.ReplaceAll(name, suffix, "")
	}
	name = strings.TrimSpace(name)

	for _, entry := range fundTypePatterns {
		for _, pattern := range entry.Patterns {
			if strings.Contains(name, pattern) {
				return entry.Type
			}
		}
	}

	// Truncated "Direitos Creditórios" names keep enough of the phrase to
	// identify as FIDC even when no taxonomy token survived.
	if strings.Contains(name, " EM DC") || strings.Contains(name, "EM DIREITOS") {
		return models.FundTypeFIDC
	}

	switch {
	case strings.Contains(name, "FIC FIM CP"):
		return models.FundTypeFICFIMCP
	case strings.Contains(name, "FIC FIM"):
		return models.FundTypeFICFIM
	case strings.Contains(name, "FIC") && strings.Contains(name, "FIM"):
		return models.FundTypeFICFIM
	case strings.Contains(name, "FIM CP"):
		return models.FundTypeFIMCP
	case strings.Contains(name, "FIM"):
		return models.FundTypeFIM
	case strings.Contains(name, "FIC"):
		return models.FundTypeFIC
	}

	return models.FundTypeOutro
}

// ResolveChildType resolves the type of a sub-fund name assigned by the
// redistribution engine. Child funds are always quota funds, so the pattern
// set is narrower than the full table.
func ResolveChildType(childName string) models.FundType {
	name := strings.ToUpper(strings.TrimSpace(childName))
	if name == "" {
		return models.FundTypeOutro
	}

	switch {
	case strings.Contains(name, "FIC FIM CP"):
		return models.FundTypeFICFIMCP
	case strings.Contains(name, "FIC FIM"):
		return models.FundTypeFICFIM
	case strings.Contains(name, "FIC FIA"):
		return models.FundTypeFICFIA
	case strings.Contains(name, "FIC"):
		return models.FundTypeFIC
	case strings.Contains(name, "FIM CP"):
		return models.FundTypeFIMCP
	case strings.Contains(name, "FIM"):
		return models.FundTypeFIM
	case strings.Contains(name, "FIA"):
		return models.FundTypeFIA
	}

	return models.FundTypeOutro
}
