package extractors

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/alvarohtrindade/funds-expenses-etl/pkg/errors"
)

// readDelimited reads a ';'-separated file decoded from Latin-1, the
// encoding every supported custodian exports CSV in. Rows may have ragged
// field counts; quoting is lenient.
func readDelimited(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		return nil, errors.FileError(errors.CodeFilePermission, path, err)
	}
	defer f.Close()

	reader := csv.NewReader(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat, filepath.Base(path), 0, "", "", err)
	}
	return rows, nil
}

// readLines reads a file decoded from Latin-1 into raw lines, for layouts
// that are line-oriented reports rather than tabular CSV.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		return nil, errors.FileError(errors.CodeFilePermission, path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	if err != nil {
		return nil, errors.ParseError(errors.CodeEncodingError, filepath.Base(path), 0, "", "", err)
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.Split(text, "\n"), nil
}

// headerIndex builds a column index from a header row. Header labels are
// lowercased and trimmed before lookup, matching how custodians vary the
// casing between exports.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, label := range header {
		key := strings.ToLower(strings.TrimSpace(label))
		if key == "" {
			continue
		}
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}
	return index
}

// fieldAt returns the trimmed value of the named column, or empty when the
// column is absent or the row is short.
func fieldAt(row []string, index map[string]int, names ...string) string {
	for _, name := range names {
		i, ok := index[name]
		if !ok || i >= len(row) {
			continue
		}
		return strings.TrimSpace(row[i])
	}
	return ""
}

// hasExtension reports whether the path carries one of the extensions,
// case-insensitively.
func hasExtension(path string, extensions ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}
