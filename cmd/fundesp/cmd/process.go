package cmd

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	appconfig "github.com/alvarohtrindade/funds-expenses-etl/cmd/fundesp/config"
	"github.com/alvarohtrindade/funds-expenses-etl/internal/configs"
	"github.com/alvarohtrindade/funds-expenses-etl/internal/extractors"
	"github.com/alvarohtrindade/funds-expenses-etl/internal/loaders"
	"github.com/alvarohtrindade/funds-expenses-etl/internal/models"
	"github.com/alvarohtrindade/funds-expenses-etl/internal/report"
	"github.com/alvarohtrindade/funds-expenses-etl/internal/transform"
	"github.com/alvarohtrindade/funds-expenses-etl/pkg/errors"
	"github.com/alvarohtrindade/funds-expenses-etl/pkg/logger"
)

var processFlags struct {
	input         string
	custodian     string
	recursive     bool
	configDir     string
	outputDir     string
	format        string
	summaryFormat string
	seed          int64
	strictSplit   bool
	toMySQL       bool
	mysqlTable    string
	truncateTable bool
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process custodian statements into the canonical expense dataset",
	Long: `Process reads one statement file or a directory of statements, normalizes
the entries, classifies fund types and expense categories, redistributes
parent fund entries across their configured sub-funds and writes the result.

The custodian is detected from each file name; use --custodian to force one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		handler := NewCLIErrorHandler()
		if err := runProcess(cmd.Context()); err != nil {
			os.Exit(handler.HandleError(err))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVarP(&processFlags.input, "input", "i", "", "statement file or directory (required)")
	processCmd.Flags().StringVarP(&processFlags.custodian, "custodian", "c", "", "force a custodian instead of detecting from file names")
	processCmd.Flags().BoolVarP(&processFlags.recursive, "recursive", "r", false, "recurse into subdirectories")
	processCmd.Flags().StringVar(&processFlags.configDir, "config-dir", "config", "directory with the JSON classification tables")
	processCmd.Flags().StringVarP(&processFlags.outputDir, "output-dir", "o", "output", "directory for exported files")
	processCmd.Flags().StringVarP(&processFlags.format, "format", "f", "csv", "export format (csv or json)")
	processCmd.Flags().StringVar(&processFlags.summaryFormat, "summary-format", "console", "summary format (console or json)")
	processCmd.Flags().Int64Var(&processFlags.seed, "seed", 0, "redistribution seed (0 uses the built-in default)")
	processCmd.Flags().BoolVar(&processFlags.strictSplit, "strict-split", false, "spread leftover rows across sub-funds instead of keeping them with the parent")
	processCmd.Flags().BoolVar(&processFlags.toMySQL, "to-mysql", false, "load the result into MySQL")
	processCmd.Flags().StringVar(&processFlags.mysqlTable, "mysql-table", "", "target MySQL table (overrides FUNDESP_MYSQL_TABLE)")
	processCmd.Flags().BoolVar(&processFlags.truncateTable, "truncate-table", false, "truncate the MySQL table before loading")

	processCmd.MarkFlagRequired("input")
}

func runProcess(ctx context.Context) error {
	log := logger.GetGlobalLogger().WithComponent("process")

	summaryFormat := report.OutputFormat(processFlags.summaryFormat)
	if !summaryFormat.IsValid() {
		return errors.ConfigurationError(errors.CodeInvalidConfig,
			"summary-format must be console or json", nil)
	}
	if processFlags.format != "csv" && processFlags.format != "json" {
		return errors.ConfigurationError(errors.CodeInvalidConfig,
			"format must be csv or json", nil)
	}

	store, err := configs.Load(processFlags.configDir)
	if err != nil {
		return err
	}

	files, err := collectStatementFiles(processFlags.input, processFlags.recursive)
	if err != nil {
		return err
	}

	transformer := transform.New(store, transform.Options{
		Seed:            processFlags.seed,
		StrictEvenSplit: processFlags.strictSplit,
	})

	var all []models.CanonicalRecord
	summary := report.NewSummary(nil, nil)
	custodians := make(map[string]bool)

	// A broken file skips only that file; the rest of the batch proceeds.
	failed := 0
	progress := logger.NewProgressTracker("process statements", len(files))
	for _, file := range files {
		records, fileSummary, custodian, err := processFile(transformer, file)
		if err != nil {
			failed++
			log.WithError(err).WithField("file", file).Warn("Skipping file")
			progress.Increment()
			continue
		}
		all = append(all, records...)
		summary.Merge(fileSummary)
		custodians[custodian] = true
		progress.Increment()
	}
	progress.Done()

	if failed == len(files) {
		return errors.ValidationError(errors.CodeEmptyBatch, "input", processFlags.input, nil).
			WithContext("files", len(files)).
			WithSuggestion("every input file failed; run 'fundesp validate' on one of them")
	}
	if len(all) == 0 {
		log.WithField("files", len(files)).Warn("No canonical records produced")
		return summary.Render(os.Stdout, summaryFormat)
	}

	// Per-custodian breakdowns come from the final records, not the
	// per-file stats, so recompute them over the merged batch.
	merged := report.NewSummary(all, nil)
	summary.ByCustodian = merged.ByCustodian
	summary.ByFundType = merged.ByFundType
	summary.ByCategory = merged.ByCategory
	summary.TotalDebits = merged.TotalDebits
	summary.TotalCredits = merged.TotalCredits

	exportName := exportLabel(custodians)
	var exportPath string
	if processFlags.format == "json" {
		exportPath, err = loaders.NewJSONLoader(processFlags.outputDir).Load(all, exportName)
	} else {
		exportPath, err = loaders.NewCSVLoader(processFlags.outputDir).Load(all, exportName)
	}
	if err != nil {
		return err
	}
	summary.Exports = append(summary.Exports, exportPath)

	if processFlags.toMySQL {
		batchID, err := loadMySQL(ctx, all)
		if err != nil {
			return err
		}
		summary.BatchID = batchID
	}

	log.WithFields(logger.Fields{
		"files":  len(files),
		"rows":   summary.OutputRows,
		"export": exportPath,
	}).Info("Processing finished")

	return summary.Render(os.Stdout, summaryFormat)
}

func processFile(transformer *transform.Transformer, path string) ([]models.CanonicalRecord, *report.Summary, string, error) {
	extractor, err := resolveExtractor(path)
	if err != nil {
		return nil, nil, "", err
	}

	raw, err := extractor.Extract(path)
	if err != nil {
		return nil, nil, "", err
	}

	records, stats, err := transformer.Transform(raw, extractor.Custodian())
	if err != nil {
		return nil, nil, "", err
	}

	fileSummary := report.NewSummary(records, stats)
	fileSummary.Files = []string{path}
	return records, fileSummary, extractor.Custodian(), nil
}

func resolveExtractor(path string) (extractors.Extractor, error) {
	if processFlags.custodian != "" {
		return extractors.ForCustodian(processFlags.custodian)
	}
	return extractors.ForFile(path)
}

// collectStatementFiles expands the input path into the list of files to
// process, sorted for deterministic run order.
func collectStatementFiles(input string, recursive bool) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, errors.FileError(errors.CodeFileNotFound, input, err)
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	var files []string
	walk := func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != input {
				return filepath.SkipDir
			}
			return nil
		}
		if isStatementFile(path) {
			files = append(files, path)
		}
		return nil
	}
	if err := filepath.WalkDir(input, walk); err != nil {
		return nil, errors.FileError(errors.CodeFilePermission, input, err)
	}

	if len(files) == 0 {
		return nil, errors.ValidationError(errors.CodeEmptyBatch, "input", input, nil).
			WithSuggestion("no statement files (.csv, .txt, .xls) found under the input directory")
	}

	sort.Strings(files)
	return files, nil
}

func isStatementFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", ".xls":
		return true
	}
	return false
}

func exportLabel(custodians map[string]bool) string {
	if len(custodians) == 1 {
		for name := range custodians {
			return name
		}
	}
	return "todos"
}

func loadMySQL(ctx context.Context, records []models.CanonicalRecord) (string, error) {
	cfg := appconfig.MySQLFromEnv()
	if processFlags.mysqlTable != "" {
		cfg.Table = processFlags.mysqlTable
	}
	loader, err := loaders.NewMySQLLoader(cfg)
	if err != nil {
		return "", err
	}
	defer loader.Close()

	if err := loader.Ping(ctx); err != nil {
		return "", err
	}
	if err := loader.EnsureTable(ctx); err != nil {
		return "", err
	}
	if processFlags.truncateTable {
		if err := loader.Truncate(ctx); err != nil {
			return "", err
		}
	}
	return loader.Load(ctx, records)
}
