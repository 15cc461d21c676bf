package extractors

import (
	"path/filepath"
	"strings"

	"github.com/alvarohtrindade/funds-expenses-etl/internal/models"
	"github.com/alvarohtrindade/funds-expenses-etl/pkg/errors"
	"github.com/alvarohtrindade/funds-expenses-etl/pkg/logger"
)

// Detail-line positions in the "Demonstrativo de Caixa" report layout.
// Column 1 carries the record-type tag; the rest are fixed positions.
const (
	daycovalRecordTag = "P1051Det"
	daycovalMinFields = 10
	daycovalDateIdx   = 4
	daycovalFundIdx   = 7
	daycovalEntryIdx  = 9
	daycovalCreditIdx = 10
	daycovalDebitIdx  = 11
)

// DaycovalExtractor reads Daycoval "Demonstrativo de Caixa" exports. The
// report interleaves header, detail and footer lines; only lines tagged
// P1051Det carry entries. Plain CSV exports of the same data are also
// accepted.
type DaycovalExtractor struct {
	log logger.Logger
}

func NewDaycovalExtractor() *DaycovalExtractor {
	return &DaycovalExtractor{log: logger.GetGlobalLogger().WithComponent("extractor_daycoval")}
}

func (e *DaycovalExtractor) Custodian() string { return CustodianDaycoval }

func (e *DaycovalExtractor) Extract(path string) ([]models.RawRecord, error) {
	if !hasExtension(path, ".csv", ".txt") {
		return nil, errors.FileError(errors.CodeUnsupportedExt, path, nil)
	}

	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	if isDaycovalReport(lines) {
		return e.extractReport(path, lines)
	}
	return e.extractCSV(path)
}

// isDaycovalReport checks the leading lines for the detail tag.
func isDaycovalReport(lines []string) bool {
	limit := len(lines)
	if limit > 10 {
		limit = 10
	}
	for _, line := range lines[:limit] {
		if strings.Contains(line, daycovalRecordTag) {
			return true
		}
	}
	return false
}

func (e *DaycovalExtractor) extractReport(path string, lines []string) ([]models.RawRecord, error) {
	var records []models.RawRecord
	for _, line := range lines {
		parts := strings.Split(strings.TrimSpace(line), ";")
		if len(parts) < daycovalMinFields {
			continue
		}
		if !strings.Contains(parts[1], daycovalRecordTag) {
			continue
		}

		record := models.RawRecord{
			Date:      strings.TrimSpace(parts[daycovalDateIdx]),
			FundName:  strings.TrimSpace(parts[daycovalFundIdx]),
			EntryText: strings.TrimSpace(parts[daycovalEntryIdx]),
		}
		if len(parts) > daycovalCreditIdx {
			record.AmountCredit = strings.TrimSpace(parts[daycovalCreditIdx])
		}
		if len(parts) > daycovalDebitIdx {
			record.AmountDebit = strings.TrimSpace(parts[daycovalDebitIdx])
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, errors.ValidationError(errors.CodeEmptyBatch, "rows", filepath.Base(path), nil)
	}

	e.log.WithFields(logger.Fields{
		"file": filepath.Base(path),
		"rows": len(records),
	}).Debug("Daycoval report extracted")
	return records, nil
}

// extractCSV handles the tabular export variant, which shares Master's
// column vocabulary.
func (e *DaycovalExtractor) extractCSV(path string) ([]models.RawRecord, error) {
	rows, err := readDelimited(path)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.ValidationError(errors.CodeEmptyBatch, "rows", filepath.Base(path), nil)
	}

	index := headerIndex(rows[0])
	records := make([]models.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := models.RawRecord{
			Date:         fieldAt(row, index, "datalancamento", "data"),
			FundName:     fieldAt(row, index, "carteira", "nmfundo"),
			EntryText:    fieldAt(row, index, "historico"),
			AmountCredit: fieldAt(row, index, "credito"),
			AmountDebit:  fieldAt(row, index, "debito"),
			Balance:      fieldAt(row, index, "saldo"),
			Note:         fieldAt(row, index, "complemento"),
		}
		if record.Date == "" && record.EntryText == "" {
			continue
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, errors.ValidationError(errors.CodeEmptyBatch, "rows", filepath.Base(path), nil)
	}
	return records, nil
}
