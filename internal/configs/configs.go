// Package configs loads the JSON tables that drive classification and
// redistribution. All tables preserve file order because rule precedence is
// positional.
package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alvarohtrindade/funds-expenses-etl/internal/classify"
	"github.com/alvarohtrindade/funds-expenses-etl/internal/models"
	"github.com/alvarohtrindade/funds-expenses-etl/pkg/errors"
	"github.com/alvarohtrindade/funds-expenses-etl/pkg/logger"
)

const (
	fundMappingFile     = "fund_mapping.json"
	entryMapFile        = "entry_map.json"
	categoryRulesFile   = "category_keywords.json"
	despesaPhrasesFile  = "despesa_phrases.json"
	manualFundTypesFile = "manual_fund_types.json"
)

// skipChildSentinel marks a parent that keeps all of its rows.
const skipChildSentinel = "-"

// ParentMapping associates a parent fund with its sub-funds, in file order.
type ParentMapping struct {
	Parent   string
	Children []string
}

// EntryRule rewrites an entry text that contains Pattern to Replacement.
type EntryRule struct {
	Pattern     string
	Replacement string
}

// Store holds every loaded configuration table.
type Store struct {
	FundMapping     []ParentMapping
	EntryRules      []EntryRule
	CategoryRules   []classify.CategoryRule
	DespesaPhrases  []string
	ManualFundTypes []classify.ManualOverride
}

// Load reads the configuration tables from dir. Missing keyword and phrase
// files fall back to the built-in defaults. The fund mapping has no default
// and its absence silently changes the output, so a missing config dir or
// mapping file fails the load.
func Load(dir string) (*Store, error) {
	log := logger.GetGlobalLogger().WithComponent("configs")
	store := &Store{
		CategoryRules:   classify.DefaultCategoryRules(),
		DespesaPhrases:  classify.DefaultDespesaPhrases(),
		ManualFundTypes: classify.DefaultManualOverrides(),
	}

	if info, err := os.Stat(dir); err != nil {
		return nil, errors.ConfigurationError(errors.CodeMissingConfig, dir, err).
			WithSuggestion("point --config-dir at the directory with the JSON classification tables")
	} else if !info.IsDir() {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, dir, nil).
			WithSuggestion("--config-dir must name a directory")
	}

	if err := requireFile(dir, fundMappingFile, func(data []byte) error {
		mapping, err := parseFundMapping(data)
		if err != nil {
			return err
		}
		store.FundMapping = mapping
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadFile(dir, entryMapFile, func(data []byte) error {
		rules, err := parseEntryRules(data)
		if err != nil {
			return err
		}
		store.EntryRules = rules
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadFile(dir, categoryRulesFile, func(data []byte) error {
		rules, err := parseCategoryRules(data)
		if err != nil {
			return err
		}
		store.CategoryRules = rules
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadFile(dir, despesaPhrasesFile, func(data []byte) error {
		phrases, err := decodeStringList(data)
		if err != nil {
			return err
		}
		store.DespesaPhrases = phrases
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadFile(dir, manualFundTypesFile, func(data []byte) error {
		overrides, err := parseManualFundTypes(data)
		if err != nil {
			return err
		}
		store.ManualFundTypes = overrides
		return nil
	}); err != nil {
		return nil, err
	}

	if err := store.Validate(); err != nil {
		return nil, err
	}

	log.WithFields(logger.Fields{
		"dir":             dir,
		"parents":         len(store.FundMapping),
		"entry_rules":     len(store.EntryRules),
		"category_rules":  len(store.CategoryRules),
		"despesa_phrases": len(store.DespesaPhrases),
		"manual_types":    len(store.ManualFundTypes),
	}).Debug("Configuration tables loaded")
	return store, nil
}

// loadFile reads a table file and hands it to parse. A missing file is not
// an error; the caller keeps its default table.
func loadFile(dir, name string, parse func([]byte) error) error {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.FileError(errors.CodeFilePermission, path, err)
	}
	if err := parse(data); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, name, err).
			WithContext("path", path)
	}
	return nil
}

// requireFile is loadFile for tables without a built-in default; a missing
// file fails the load.
func requireFile(dir, name string, parse func([]byte) error) error {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return errors.ConfigurationError(errors.CodeMissingConfig, name, err).
			WithContext("path", path).
			WithSuggestion("create the file; map parents with no sub-funds to [\"-\"]")
	}
	return loadFile(dir, name, parse)
}

func parseFundMapping(data []byte) ([]ParentMapping, error) {
	pairs, err := decodeOrderedObject(data)
	if err != nil {
		return nil, err
	}

	mapping := make([]ParentMapping, 0, len(pairs))
	for _, pair := range pairs {
		children, err := decodeStringList(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("children of %q: %w", pair.Key, err)
		}
		kept := make([]string, 0, len(children))
		for _, child := range children {
			child = strings.TrimSpace(child)
			if child == "" || child == skipChildSentinel {
				continue
			}
			kept = append(kept, child)
		}
		mapping = append(mapping, ParentMapping{
			Parent:   strings.TrimSpace(pair.Key),
			Children: kept,
		})
	}
	return mapping, nil
}

func parseEntryRules(data []byte) ([]EntryRule, error) {
	pairs, err := decodeOrderedObject(data)
	if err != nil {
		return nil, err
	}

	rules := make([]EntryRule, 0, len(pairs))
	for _, pair := range pairs {
		replacement, err := decodeString(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("replacement for %q: %w", pair.Key, err)
		}
		rules = append(rules, EntryRule{Pattern: pair.Key, Replacement: replacement})
	}
	return rules, nil
}

func parseCategoryRules(data []byte) ([]classify.CategoryRule, error) {
	pairs, err := decodeOrderedObject(data)
	if err != nil {
		return nil, err
	}

	rules := make([]classify.CategoryRule, 0, len(pairs))
	for _, pair := range pairs {
		keywords, err := decodeStringList(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("keywords for %q: %w", pair.Key, err)
		}
		rules = append(rules, classify.CategoryRule{
			Category: models.ExpenseCategory(pair.Key),
			Keywords: keywords,
		})
	}
	return rules, nil
}

func parseManualFundTypes(data []byte) ([]classify.ManualOverride, error) {
	pairs, err := decodeOrderedObject(data)
	if err != nil {
		return nil, err
	}

	overrides := make([]classify.ManualOverride, 0, len(pairs))
	for _, pair := range pairs {
		raw, err := decodeString(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("type for %q: %w", pair.Key, err)
		}
		fundType := models.FundType(raw).Standardize()
		if !fundType.IsValid() {
			return nil, fmt.Errorf("unknown fund type %q for pattern %q", raw, pair.Key)
		}
		overrides = append(overrides, classify.ManualOverride{
			Pattern: strings.ToUpper(pair.Key),
			Type:    fundType,
		})
	}
	return overrides, nil
}

// Validate checks structural invariants of the loaded tables.
func (s *Store) Validate() error {
	seen := make(map[string]bool, len(s.FundMapping))
	for _, pm := range s.FundMapping {
		if pm.Parent == "" {
			return errors.ConfigurationError(errors.CodeInvalidConfig,
				"fund mapping has an empty parent name", nil)
		}
		if seen[pm.Parent] {
			return errors.ConfigurationError(errors.CodeInvalidConfig,
				fmt.Sprintf("fund mapping lists parent %q twice", pm.Parent), nil)
		}
		seen[pm.Parent] = true
	}

	for _, rule := range s.EntryRules {
		if strings.TrimSpace(rule.Pattern) == "" {
			return errors.ConfigurationError(errors.CodeInvalidConfig,
				"entry map has an empty pattern", nil)
		}
	}

	for _, rule := range s.CategoryRules {
		if rule.Category == "" {
			return errors.ConfigurationError(errors.CodeInvalidConfig,
				"category table has an empty category", nil)
		}
		if len(rule.Keywords) == 0 {
			return errors.ConfigurationError(errors.CodeInvalidConfig,
				fmt.Sprintf("category %q has no keywords", rule.Category), nil)
		}
	}

	return nil
}
