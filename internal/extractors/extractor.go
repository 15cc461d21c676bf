// Package extractors reads custodian statement files into raw records. Each
// custodian has its own layout; the package detects the custodian from the
// file name and dispatches to the matching extractor.
package extractors

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alvarohtrindade/funds-expenses-etl/internal/models"
	"github.com/alvarohtrindade/funds-expenses-etl/pkg/errors"
)

// Custodian names as they appear in the canonical output.
const (
	CustodianBTG       = "BTG"
	CustodianDaycoval  = "Daycoval"
	CustodianMaster    = "Master"
	CustodianSingulare = "Singulare"
)

// Extractor reads one custodian's statement layout.
type Extractor interface {
	// Custodian returns the custodian name stamped on extracted records.
	Custodian() string
	// Extract reads the file into raw records.
	Extract(path string) ([]models.RawRecord, error)
}

// ForCustodian returns the extractor for a custodian name,
// case-insensitively.
func ForCustodian(name string) (Extractor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "btg":
		return NewBTGExtractor(), nil
	case "daycoval":
		return NewDaycovalExtractor(), nil
	case "master":
		return NewMasterExtractor(), nil
	case "singulare":
		return NewSingulareExtractor(), nil
	}
	return nil, errors.ConfigurationError(errors.CodeUnknownCustodian, name, nil).
		WithSuggestion(fmt.Sprintf("supported custodians: %s", strings.Join(Supported(), ", ")))
}

// Supported lists the known custodian names.
func Supported() []string {
	return []string{CustodianBTG, CustodianDaycoval, CustodianMaster, CustodianSingulare}
}

// fileNameMarkers maps file-name fragments to custodians. Custodians embed a
// fixed report name in their exports, so the base name identifies the source.
var fileNameMarkers = []struct {
	Marker    string
	Custodian string
}{
	{"cashstatement", CustodianSingulare},
	{"ptr_", CustodianMaster},
	{"demonstrativo de caixa", CustodianDaycoval},
	{"caixaextrato", CustodianBTG},
}

// DetectCustodian determines the custodian from a statement file name.
func DetectCustodian(path string) (string, error) {
	name := strings.ToLower(filepath.Base(path))
	for _, m := range fileNameMarkers {
		if strings.Contains(name, m.Marker) {
			return m.Custodian, nil
		}
	}
	return "", errors.ConfigurationError(errors.CodeUnknownCustodian, filepath.Base(path), nil).
		WithSuggestion("pass --custodian explicitly or keep the custodian's original report file name")
}

// ForFile detects the custodian and returns the matching extractor.
func ForFile(path string) (Extractor, error) {
	custodian, err := DetectCustodian(path)
	if err != nil {
		return nil, err
	}
	return ForCustodian(custodian)
}
