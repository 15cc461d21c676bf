// Package loaders writes canonical records to their destinations: CSV and
// JSON exports for BI ingestion and a MySQL table for the warehouse.
package loaders

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alvarohtrindade/funds-expenses-etl/internal/models"
	"github.com/alvarohtrindade/funds-expenses-etl/pkg/errors"
	"github.com/alvarohtrindade/funds-expenses-etl/pkg/logger"
)

// exportColumns are the column names the downstream BI layer expects.
var exportColumns = []string{
	"data",
	"nmfundo",
	"nmcategorizado",
	"TpFundo",
	"lancamento",
	"lancamento_original",
	"valor",
	"tipo_lancamento",
	"categoria",
	"despesa",
	"custodiante",
	"ano",
	"mes",
}

// CSVLoader writes records to a timestamped ';'-separated file.
type CSVLoader struct {
	OutputDir string
	log       logger.Logger
}

func NewCSVLoader(outputDir string) *CSVLoader {
	return &CSVLoader{
		OutputDir: outputDir,
		log:       logger.GetGlobalLogger().WithComponent("csv_loader"),
	}
}

// Load writes the batch and returns the created file path.
func (l *CSVLoader) Load(records []models.CanonicalRecord, custodian string) (string, error) {
	if err := os.MkdirAll(l.OutputDir, 0o755); err != nil {
		return "", errors.FileError(errors.CodeFilePermission, l.OutputDir, err)
	}

	path := filepath.Join(l.OutputDir, exportFileName(custodian, "csv"))
	f, err := os.Create(path)
	if err != nil {
		return "", errors.FileError(errors.CodeFilePermission, path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'

	if err := w.Write(exportColumns); err != nil {
		return "", errors.Wrap(err, errors.CategoryFile, errors.CodeInvalidFormat, "failed to write CSV header")
	}
	for i := range records {
		if err := w.Write(exportRow(&records[i])); err != nil {
			return "", errors.Wrap(err, errors.CategoryFile, errors.CodeInvalidFormat,
				fmt.Sprintf("failed to write CSV row %d", i))
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.Wrap(err, errors.CategoryFile, errors.CodeInvalidFormat, "failed to flush CSV output")
	}

	l.log.WithFields(logger.Fields{
		"path": path,
		"rows": len(records),
	}).Info("CSV export written")
	return path, nil
}

func exportRow(r *models.CanonicalRecord) []string {
	date := ""
	if r.HasDate() {
		date = r.Date.Format("2006-01-02")
	}
	despesa := "Não"
	if r.IsExpense {
		despesa = "Sim"
	}
	return []string{
		date,
		r.FundName,
		r.CategorizedFund,
		r.FundType.String(),
		r.EntryText,
		r.EntryTextOriginal,
		r.Amount.StringFixed(2),
		r.EntryKind.String(),
		r.Category.String(),
		despesa,
		r.Custodian,
		fmt.Sprintf("%d", r.Year),
		r.MonthName,
	}
}

// JSONLoader writes records to a timestamped JSON array file.
type JSONLoader struct {
	OutputDir string
	log       logger.Logger
}

func NewJSONLoader(outputDir string) *JSONLoader {
	return &JSONLoader{
		OutputDir: outputDir,
		log:       logger.GetGlobalLogger().WithComponent("json_loader"),
	}
}

// Load writes the batch and returns the created file path.
func (l *JSONLoader) Load(records []models.CanonicalRecord, custodian string) (string, error) {
	if err := os.MkdirAll(l.OutputDir, 0o755); err != nil {
		return "", errors.FileError(errors.CodeFilePermission, l.OutputDir, err)
	}

	path := filepath.Join(l.OutputDir, exportFileName(custodian, "json"))
	f, err := os.Create(path)
	if err != nil {
		return "", errors.FileError(errors.CodeFilePermission, path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return "", errors.Wrap(err, errors.CategoryFile, errors.CodeInvalidFormat, "failed to encode JSON output")
	}

	l.log.WithFields(logger.Fields{
		"path": path,
		"rows": len(records),
	}).Info("JSON export written")
	return path, nil
}

func exportFileName(custodian, ext string) string {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(custodian), " ", "_"))
	if slug == "" {
		slug = "todos"
	}
	return fmt.Sprintf("despesas_%s_%s.%s", slug, time.Now().Format("20060102_150405"), ext)
}
