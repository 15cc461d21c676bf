// Package transform assembles raw custodian rows into canonical expense
// records: value and date parsing, entry normalization, classification,
// sub-fund redistribution and deduplication.
package transform

import (
	"github.com/shopspring/decimal"

	"github.com/alvarohtrindade/funds-expenses-etl/internal/classify"
	"github.com/alvarohtrindade/funds-expenses-etl/internal/configs"
	"github.com/alvarohtrindade/funds-expenses-etl/internal/models"
	"github.com/alvarohtrindade/funds-expenses-etl/internal/redistribute"
	"github.com/alvarohtrindade/funds-expenses-etl/pkg/logger"
)

// Options tunes a transformation run.
type Options struct {
	// Seed drives the redistribution shuffles. Zero selects the default.
	Seed int64
	// StrictEvenSplit is passed through to the redistribution engine.
	StrictEvenSplit bool
}

// Stats summarizes one transformation run.
type Stats struct {
	InputRows      int
	OutputRows     int
	DateWarnings   int
	AmountWarnings int
	Duplicates     int
	RowsReassigned int
	Expenses       int
}

// Transformer turns raw extracted rows into canonical records.
type Transformer struct {
	fundTypes  *classify.FundTypeClassifier
	categories *classify.CategoryClassifier
	despesas   *classify.DespesaFlagger
	entries    *EntryNormalizer
	engine     *redistribute.Engine
	log        logger.Logger
}

// New builds a transformer from the loaded configuration tables.
func New(store *configs.Store, opts Options) *Transformer {
	return &Transformer{
		fundTypes:  classify.NewFundTypeClassifier(store.ManualFundTypes),
		categories: classify.NewCategoryClassifier(store.CategoryRules),
		despesas:   classify.NewDespesaFlagger(store.DespesaPhrases),
		entries:    NewEntryNormalizer(store.EntryRules),
		engine: redistribute.NewEngine(store.FundMapping, redistribute.Config{
			Seed:            opts.Seed,
			StrictEvenSplit: opts.StrictEvenSplit,
		}),
		log: logger.GetGlobalLogger().WithComponent("transformer"),
	}
}

// Transform converts a batch of raw rows from one custodian into canonical
// records. Rows without a parsable date are kept with a null date and a
// warning; unparsable amounts degrade to zero. An empty batch yields an
// empty result and a warning, never an error; callers decide what that
// means.
func (t *Transformer) Transform(raw []models.RawRecord, custodian string) ([]models.CanonicalRecord, *Stats, error) {
	stats := &Stats{InputRows: len(raw)}
	if len(raw) == 0 {
		t.log.WithField("custodian", custodian).Warn("Empty extraction, nothing to transform")
		return nil, stats, nil
	}

	records := make([]models.CanonicalRecord, 0, len(raw))
	for i, row := range raw {
		records = append(records, t.assemble(row, custodian, i, stats))
	}

	result := t.engine.Redistribute(records)
	stats.RowsReassigned = result.RowsReassigned

	// Rows no mapping claimed keep their own name as the categorized fund.
	for i := range records {
		if records[i].CategorizedFund == "" {
			records[i].CategorizedFund = records[i].FundName
		}
	}

	records = t.dedupe(records, stats)

	stats.Expenses = t.despesas.FlagRecords(records)
	stats.OutputRows = len(records)

	t.log.WithFields(logger.Fields{
		"custodian":  custodian,
		"input":      stats.InputRows,
		"output":     stats.OutputRows,
		"no_date":    stats.DateWarnings,
		"duplicates": stats.Duplicates,
		"reassigned": stats.RowsReassigned,
		"expenses":   stats.Expenses,
	}).Info("Batch transformed")

	return records, stats, nil
}

// assemble builds one canonical record. The debit column wins when both
// amount columns carry a value. A row whose date does not parse is kept
// with a null date rather than dropped.
func (t *Transformer) assemble(row models.RawRecord, custodian string, index int, stats *Stats) models.CanonicalRecord {
	date, err := models.ParseDate(row.Date)
	if err != nil {
		stats.DateWarnings++
		t.log.WithFields(logger.Fields{
			"row":  index,
			"date": row.Date,
			"fund": row.FundName,
		}).Warn("Unparsable date kept as null")
	}

	debit := t.parseAmount(row.AmountDebit, index, "debit", stats)
	credit := t.parseAmount(row.AmountCredit, index, "credit", stats)

	amount := credit.Abs()
	kind := models.EntryKindCredit
	if !debit.IsZero() {
		amount = debit.Abs()
		kind = models.EntryKindDebit
	}

	entryText := t.entries.Normalize(row.EntryText)

	record := models.CanonicalRecord{
		Date:              date,
		FundName:          row.FundName,
		FundType:          t.fundTypes.Classify(row.FundName),
		EntryText:         entryText,
		EntryTextOriginal: row.EntryText,
		Amount:            amount,
		EntryKind:         kind,
		Category:          t.categories.Classify(entryText),
		Custodian:         custodian,
	}
	if record.HasDate() {
		record.Year = date.Year()
		record.MonthName = models.MonthName(date.Month())
	}
	return record
}

func (t *Transformer) parseAmount(raw string, index int, column string, stats *Stats) decimal.Decimal {
	value, err := models.ParseAmount(raw)
	if err != nil {
		stats.AmountWarnings++
		t.log.WithFields(logger.Fields{
			"row":    index,
			"column": column,
			"value":  raw,
		}).Warn("Unparsable monetary value treated as zero")
	}
	return value
}

// dedupe keeps the first occurrence of each date/fund/entry/amount key.
func (t *Transformer) dedupe(records []models.CanonicalRecord, stats *Stats) []models.CanonicalRecord {
	seen := make(map[string]bool, len(records))
	out := records[:0]
	for _, r := range records {
		key := r.DedupKey()
		if seen[key] {
			stats.Duplicates++
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
