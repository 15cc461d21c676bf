package extractors

import (
	"path/filepath"
	"strings"

	"github.com/extrame/xls"

	"github.com/alvarohtrindade/funds-expenses-etl/internal/models"
	"github.com/alvarohtrindade/funds-expenses-etl/pkg/errors"
	"github.com/alvarohtrindade/funds-expenses-etl/pkg/logger"
)

// BTGExtractor reads BTG "CaixaExtrato" exports. The native format is a
// spreadsheet with one title row above the headers and a single signed value
// column; a ';' CSV export of the same layout is also accepted.
type BTGExtractor struct {
	log logger.Logger
}

func NewBTGExtractor() *BTGExtractor {
	return &BTGExtractor{log: logger.GetGlobalLogger().WithComponent("extractor_btg")}
}

func (e *BTGExtractor) Custodian() string { return CustodianBTG }

func (e *BTGExtractor) Extract(path string) ([]models.RawRecord, error) {
	switch {
	case hasExtension(path, ".xls"):
		return e.extractSheet(path)
	case hasExtension(path, ".csv", ".txt"):
		return e.extractCSV(path)
	}
	return nil, errors.FileError(errors.CodeUnsupportedExt, path, nil)
}

func (e *BTGExtractor) extractSheet(path string) ([]models.RawRecord, error) {
	book, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, path, err)
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, path, nil)
	}

	rows := sheetToRows(sheet)
	if len(rows) < 2 {
		return nil, errors.ValidationError(errors.CodeEmptyBatch, "rows", filepath.Base(path), nil)
	}

	// The first row is a report title; headers live on the row below.
	return e.fromTable(path, rows[1:])
}

func (e *BTGExtractor) extractCSV(path string) ([]models.RawRecord, error) {
	rows, err := readDelimited(path)
	if err != nil {
		return nil, err
	}
	return e.fromTable(path, rows)
}

func (e *BTGExtractor) fromTable(path string, rows [][]string) ([]models.RawRecord, error) {
	if len(rows) < 2 {
		return nil, errors.ValidationError(errors.CodeEmptyBatch, "rows", filepath.Base(path), nil)
	}

	index := headerIndex(rows[0])
	if _, ok := index["data"]; !ok {
		return nil, errors.ParseError(errors.CodeMissingColumn, filepath.Base(path), 1, "data", "", nil)
	}

	records := make([]models.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := models.RawRecord{
			Date:      fieldAt(row, index, "data"),
			FundName:  fieldAt(row, index, "nome da classe", "nome do fundo"),
			EntryText: fieldAt(row, index, "lançamento", "lancamento", "histórico", "historico"),
			Balance:   fieldAt(row, index, "saldo (r$)", "saldo"),
			Note:      fieldAt(row, index, "observação", "observacao"),
			Sender:    fieldAt(row, index, "remetente"),
		}

		value := fieldAt(row, index, "financeiro (r$)", "financeiro", "valor")
		if isNegativeAmount(value) {
			record.AmountDebit = value
		} else {
			record.AmountCredit = value
		}

		if record.Date == "" && record.EntryText == "" {
			continue
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, errors.ValidationError(errors.CodeEmptyBatch, "rows", filepath.Base(path), nil)
	}

	e.log.WithFields(logger.Fields{
		"file": filepath.Base(path),
		"rows": len(records),
	}).Debug("BTG statement extracted")
	return records, nil
}

// isNegativeAmount detects the two negative spellings custodians use: a
// leading minus and parenthesized values.
func isNegativeAmount(value string) bool {
	v := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(value), "R$"))
	return strings.HasPrefix(v, "-") || strings.HasPrefix(v, "(")
}

// sheetToRows flattens an xls sheet into string rows.
func sheetToRows(sheet *xls.WorkSheet) [][]string {
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol()+1)
		for j := 0; j <= row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		rows = append(rows, cells)
	}
	return rows
}
