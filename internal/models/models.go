// Package models defines the record types flowing through the ETL and the
// shared parsing helpers for custodian-formatted values.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// EntryKind indicates the direction of a statement entry.
type EntryKind string

const (
	// EntryKindCredit represents money entering the fund account.
	EntryKindCredit EntryKind = "Crédito"
	// EntryKindDebit represents money leaving the fund account.
	EntryKindDebit EntryKind = "Débito"
)

// String returns the string representation of EntryKind.
func (k EntryKind) String() string {
	return string(k)
}

// IsValid checks if the entry kind is one of the known values.
func (k EntryKind) IsValid() bool {
	return k == EntryKindCredit || k == EntryKindDebit
}

// FundType classifies a fund per the local regulatory taxonomy.
type FundType string

const (
	FundTypeFIDC     FundType = "FIDC"
	FundTypeFICFIDC  FundType = "FICFIDC"
	FundTypeFICFIM   FundType = "FICFIM"
	FundTypeFICFIMCP FundType = "FICFIM CP"
	FundTypeFIM      FundType = "FIM"
	FundTypeFIMCP    FundType = "FIM CP"
	FundTypeFIC      FundType = "FIC"
	FundTypeFIA      FundType = "FIA"
	FundTypeFICFIA   FundType = "FICFIA"
	// FundTypeOutro is the sentinel for names no pattern resolves.
	FundTypeOutro FundType = "Outro"
)

// String returns the string representation of FundType.
func (t FundType) String() string {
	return string(t)
}

// IsValid checks if the fund type belongs to the canonical enumeration.
func (t FundType) IsValid() bool {
	switch t {
	case FundTypeFIDC, FundTypeFICFIDC, FundTypeFICFIM, FundTypeFICFIMCP,
		FundTypeFIM, FundTypeFIMCP, FundTypeFIC, FundTypeFIA, FundTypeFICFIA,
		FundTypeOutro:
		return true
	}
	return false
}

// fundTypeAliases folds near-duplicate labels onto the canonical enumeration.
var fundTypeAliases = map[FundType]FundType{
	"FIC FIM": FundTypeFICFIM,
	"FIC II":  FundTypeFIC,
}

// Standardize maps near-duplicate type labels onto the canonical enumeration.
// Applying it to an already-canonical value is a no-op.
func (t FundType) Standardize() FundType {
	if canonical, ok := fundTypeAliases[t]; ok {
		return canonical
	}
	return t
}

// ExpenseCategory is the fixed set of expense groupings.
type ExpenseCategory string

const (
	CategoryTaxa          ExpenseCategory = "Taxa"
	CategoryCusto         ExpenseCategory = "Custo"
	CategoryPagamento     ExpenseCategory = "Pagamento"
	CategoryTransferencia ExpenseCategory = "Transferência"
	CategoryOperacao      ExpenseCategory = "Operação"
	CategoryResgate       ExpenseCategory = "Resgate"
	CategoryAplicacao     ExpenseCategory = "Aplicação"
	CategoryAuditoria     ExpenseCategory = "Auditoria"
	CategoryCustodia      ExpenseCategory = "Custódia"
	CategoryGestao        ExpenseCategory = "Gestão"
	CategoryLiquidacao    ExpenseCategory = "Liquidação"
	CategoryBalancoDiario ExpenseCategory = "Balanço Diário"
	CategoryOutros        ExpenseCategory = "Outros"
)

// String returns the string representation of ExpenseCategory.
func (c ExpenseCategory) String() string {
	return string(c)
}

// RawRecord is one row extracted from a custodian statement. All fields are
// the raw strings from the file; either amount column may be empty.
type RawRecord struct {
	Date         string
	FundName     string
	EntryText    string
	AmountCredit string
	AmountDebit  string
	Balance      string
	Note         string
	Sender       string
}

// CanonicalRecord is the normalized output unit. A record is never mutated
// after it is handed to a sink.
type CanonicalRecord struct {
	Date              time.Time // zero value means the date was unparsable
	FundName          string
	CategorizedFund   string
	FundType          FundType
	EntryText         string
	EntryTextOriginal string
	Amount            decimal.Decimal // always >= 0; direction lives in EntryKind
	EntryKind         EntryKind
	Category          ExpenseCategory
	IsExpense         bool
	Custodian         string
	Year              int
	MonthName         string
}

// HasDate reports whether the record carries a parsed calendar date.
func (r *CanonicalRecord) HasDate() bool {
	return !r.Date.IsZero()
}

// DedupKey identifies duplicate rows: same date, fund, entry text and amount.
func (r *CanonicalRecord) DedupKey() string {
	date := ""
	if r.HasDate() {
		date = r.Date.Format("2006-01-02")
	}
	return strings.Join([]string{date, r.FundName, r.EntryText, r.Amount.String()}, "|")
}

// String returns a short representation for logs.
func (r *CanonicalRecord) String() string {
	return fmt.Sprintf("CanonicalRecord{Fund: %s, Categorized: %s, Type: %s, Entry: %s, Amount: %s %s}",
		r.FundName, r.CategorizedFund, r.FundType, r.EntryText, r.Amount.String(), r.EntryKind)
}

// MarshalJSON renders the amount as a plain decimal string and the date as a
// calendar date.
func (r *CanonicalRecord) MarshalJSON() ([]byte, error) {
	type Alias CanonicalRecord
	date := ""
	if r.HasDate() {
		date = r.Date.Format("2006-01-02")
	}
	return json.Marshal(&struct {
		Date   string `json:"Date"`
		Amount string `json:"Amount"`
		*Alias
	}{
		Date:   date,
		Amount: r.Amount.String(),
		Alias:  (*Alias)(r),
	})
}

// ParseAmount converts a custodian-formatted monetary string into a decimal.
// Custodian files use '.' as the thousands separator and ',' as the decimal
// separator; parenthesis-enclosed values are negative; currency prefixes are
// stripped. Empty input parses to zero without error. On failure the zero
// value is returned along with the error so callers can warn and continue.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, nil
	}

	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.TrimSpace(s)

	negative := strings.Contains(s, "(") && strings.Contains(s, ")")
	s = strings.ReplaceAll(s, "(", "")
	s = strings.ReplaceAll(s, ")", "")

	// '.' is the thousands separator in every supported layout.
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSpace(s)

	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid monetary value '%s': %w", raw, err)
	}

	if negative {
		value = value.Neg()
	}
	return value, nil
}

// dateFormats are the layouts observed across custodian files, most common
// first.
var dateFormats = []string{
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
	"2006/01/02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate attempts the known custodian date layouts in order.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("date string cannot be empty")
	}

	var lastErr error
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date '%s': %w", raw, lastErr)
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName uppercases, trims and strips diacritics from a fund name so
// accent variations compare equal ("IPÊ" and "IPE" normalize identically).
func NormalizeName(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	stripped, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return stripped
}

// monthNames holds the localized month names used in the canonical output.
var monthNames = [...]string{
	time.January:   "Janeiro",
	time.February:  "Fevereiro",
	time.March:     "Março",
	time.April:     "Abril",
	time.May:       "Maio",
	time.June:      "Junho",
	time.July:      "Julho",
	time.August:    "Agosto",
	time.September: "Setembro",
	time.October:   "Outubro",
	time.November:  "Novembro",
	time.December:  "Dezembro",
}

// MonthName returns the Portuguese name of a month.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m]
}
