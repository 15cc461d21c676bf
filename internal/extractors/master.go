package extractors

import (
	"path/filepath"

	"github.com/alvarohtrindade/funds-expenses-etl/internal/models"
	"github.com/alvarohtrindade/funds-expenses-etl/pkg/errors"
	"github.com/alvarohtrindade/funds-expenses-etl/pkg/logger"
)

// MasterExtractor reads Master "PTR" exports: Latin-1 CSV with ';'
// separators and one header row. Credit and debit live in separate columns
// and negative values come parenthesized.
type MasterExtractor struct {
	log logger.Logger
}

func NewMasterExtractor() *MasterExtractor {
	return &MasterExtractor{log: logger.GetGlobalLogger().WithComponent("extractor_master")}
}

func (e *MasterExtractor) Custodian() string { return CustodianMaster }

func (e *MasterExtractor) Extract(path string) ([]models.RawRecord, error) {
	if !hasExtension(path, ".csv", ".txt") {
		return nil, errors.FileError(errors.CodeUnsupportedExt, path, nil)
	}

	rows, err := readDelimited(path)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.ValidationError(errors.CodeEmptyBatch, "rows", filepath.Base(path), nil)
	}

	index := headerIndex(rows[0])
	for _, required := range []string{"carteira", "datalancamento", "historico"} {
		if _, ok := index[required]; !ok {
			return nil, errors.ParseError(errors.CodeMissingColumn, filepath.Base(path), 1, required, "", nil)
		}
	}

	records := make([]models.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := models.RawRecord{
			FundName:     fieldAt(row, index, "carteira", "nmfundo"),
			Date:         fieldAt(row, index, "datalancamento"),
			EntryText:    fieldAt(row, index, "historico"),
			AmountCredit: fieldAt(row, index, "credito"),
			AmountDebit:  fieldAt(row, index, "debito"),
			Balance:      fieldAt(row, index, "saldo"),
			Note:         fieldAt(row, index, "codigolancamento", "complemento"),
		}
		if record.FundName == "" && record.Date == "" && record.EntryText == "" {
			continue
		}
		records = append(records, record)
	}

	e.log.WithFields(logger.Fields{
		"file": filepath.Base(path),
		"rows": len(records),
	}).Debug("Master statement extracted")
	return records, nil
}
