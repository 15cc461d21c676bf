package extractors

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/extrame/xls"

	"github.com/alvarohtrindade/funds-expenses-etl/internal/models"
	"github.com/alvarohtrindade/funds-expenses-etl/pkg/errors"
	"github.com/alvarohtrindade/funds-expenses-etl/pkg/logger"
)

// singulareHeaderRows is the fixed preamble of a CashStatement export:
// issuer banner, emission and position dates, and the client line.
const singulareHeaderRows = 6

var singulareClientPattern = regexp.MustCompile(`Cliente:\s*([^;]+)`)

// SingulareExtractor reads Singulare "CashStatement" spreadsheets. The fund
// name lives in the preamble's client line, not in a column; the entry table
// starts after the fixed preamble.
type SingulareExtractor struct {
	log logger.Logger
}

func NewSingulareExtractor() *SingulareExtractor {
	return &SingulareExtractor{log: logger.GetGlobalLogger().WithComponent("extractor_singulare")}
}

func (e *SingulareExtractor) Custodian() string { return CustodianSingulare }

func (e *SingulareExtractor) Extract(path string) ([]models.RawRecord, error) {
	if !hasExtension(path, ".xls") {
		return nil, errors.FileError(errors.CodeUnsupportedExt, path, nil)
	}

	book, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, path, err)
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, path, nil)
	}

	rows := sheetToRows(sheet)
	fundName := singulareFundName(rows)
	records, err := e.fromRows(path, rows, fundName)
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logger.Fields{
		"file": filepath.Base(path),
		"fund": fundName,
		"rows": len(records),
	}).Debug("Singulare statement extracted")
	return records, nil
}

// singulareFundName pulls the client name from the preamble rows.
func singulareFundName(rows [][]string) string {
	limit := len(rows)
	if limit > singulareHeaderRows {
		limit = singulareHeaderRows
	}
	for _, row := range rows[:limit] {
		joined := strings.Join(row, ";")
		if m := singulareClientPattern.FindStringSubmatch(joined); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func (e *SingulareExtractor) fromRows(path string, rows [][]string, fundName string) ([]models.RawRecord, error) {
	if len(rows) <= singulareHeaderRows {
		return nil, errors.ValidationError(errors.CodeEmptyBatch, "rows", filepath.Base(path), nil)
	}

	table := rows[singulareHeaderRows:]
	index := headerIndex(table[0])
	if _, ok := index["data"]; !ok {
		return nil, errors.ParseError(errors.CodeMissingColumn, filepath.Base(path), singulareHeaderRows+1, "data", "", nil)
	}

	records := make([]models.RawRecord, 0, len(table)-1)
	for _, row := range table[1:] {
		record := models.RawRecord{
			Date:         fieldAt(row, index, "data"),
			FundName:     fundName,
			EntryText:    fieldAt(row, index, "lançamento", "lancamento", "histórico", "historico"),
			AmountCredit: fieldAt(row, index, "crédito", "credito", "valor crédito", "valor credito"),
			AmountDebit:  fieldAt(row, index, "débito", "debito", "valor débito", "valor debito"),
			Balance:      fieldAt(row, index, "saldo"),
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
