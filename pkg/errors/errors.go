// Package errors defines the categorized error type used across the ETL.
//
// Every failure surfaced to the CLI carries a category, a machine-readable
// code, an optional suggestion for the operator, and arbitrary context. The
// category decides the process exit code.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Category groups errors by the stage of the pipeline that produced them.
type Category string

const (
	CategoryFile          Category = "file"
	CategoryParse         Category = "parse"
	CategoryValidation    Category = "validation"
	CategoryConfiguration Category = "configuration"
	CategoryTransform     Category = "transform"
	CategoryDatabase      Category = "database"
	CategoryInternal      Category = "internal"
)

// Code identifies a specific failure within a category.
type Code string

const (
	// File errors
	CodeFileNotFound   Code = "file_not_found"
	CodeFilePermission Code = "file_permission"
	CodeFileCorrupted  Code = "file_corrupted"
	CodeUnsupportedExt Code = "unsupported_extension"

	// Parse errors
	CodeInvalidFormat Code = "invalid_format"
	CodeMissingColumn Code = "missing_column"
	CodeInvalidData   Code = "invalid_data"
	CodeEncodingError Code = "encoding_error"

	// Validation errors
	CodeInvalidAmount Code = "invalid_amount"
	CodeInvalidDate   Code = "invalid_date"
	CodeMissingField  Code = "missing_field"
	CodeEmptyBatch    Code = "empty_batch"

	// Configuration errors
	CodeInvalidConfig    Code = "invalid_config"
	CodeMissingConfig    Code = "missing_config"
	CodeUnknownCustodian Code = "unknown_custodian"

	// Transform errors
	CodeRedistribution Code = "redistribution_error"
	CodeAssembly       Code = "assembly_error"

	// Database errors
	CodeConnectionFailed Code = "connection_failed"
	CodeQueryFailed      Code = "query_failed"

	// Internal errors
	CodeUnexpected Code = "unexpected_error"
)

// Context carries structured details about the failure.
type Context map[string]interface{}

// ETLError is the error type shared by all packages in this module.
type ETLError struct {
	Category   Category          `json:"category"`
	Code       Code              `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

func (e *ETLError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

func (e *ETLError) Unwrap() error {
	return e.Cause
}

// ExitCode maps the error category to a process exit code.
func (e *ETLError) ExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryTransform, CategoryInternal:
		return 5
	case CategoryDatabase:
		return 6
	default:
		return 1
	}
}

// WithContext attaches a key/value detail to the error.
func (e *ETLError) WithContext(key string, value interface{}) *ETLError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion attaches an operator-facing hint.
func (e *ETLError) WithSuggestion(suggestion string) *ETLError {
	e.Suggestion = suggestion
	return e
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// New creates a new ETLError with a captured stack trace.
func New(category Category, code Code, message string) *ETLError {
	return &ETLError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap attaches category/code/message to an existing error.
func Wrap(err error, category Category, code Code, message string) *ETLError {
	if err == nil {
		return nil
	}
	return &ETLError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// FileError reports problems accessing a statement or config file.
func FileError(code Code, path string, err error) *ETLError {
	var message, suggestion string
	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check that the path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied reading file: %s", path)
		suggestion = "check file permissions"
	case CodeFileCorrupted:
		message = fmt.Sprintf("file appears to be corrupted: %s", path)
		suggestion = "re-export the statement from the custodian portal"
	case CodeUnsupportedExt:
		message = fmt.Sprintf("unsupported file type: %s", path)
		suggestion = "supported extensions are .csv, .xls and .xlsx"
	default:
		message = fmt.Sprintf("file error: %s", path)
	}

	result := build(err, CategoryFile, code, message)
	return result.WithSuggestion(suggestion).WithContext("file_path", path)
}

// ParseError reports a malformed row or field in a custodian file.
func ParseError(code Code, file string, line int, field, value string, err error) *ETLError {
	var message, suggestion string
	switch code {
	case CodeMissingColumn:
		message = fmt.Sprintf("missing required column '%s' in file %s", field, file)
		suggestion = "check the custodian layout configuration against the file headers"
	case CodeInvalidData:
		message = fmt.Sprintf("invalid data in file %s at line %d, column '%s': '%s'", file, line, field, value)
		suggestion = "fix or remove the offending row"
	case CodeEncodingError:
		message = fmt.Sprintf("encoding error in file %s at line %d", file, line)
		suggestion = "check the configured encoding for this custodian"
	default:
		message = fmt.Sprintf("parse error in file %s at line %d", file, line)
		suggestion = "check the file format against the custodian configuration"
	}

	result := build(err, CategoryParse, code, message)
	return result.WithSuggestion(suggestion).
		WithContext("file", file).
		WithContext("line", line).
		WithContext("field", field).
		WithContext("value", value)
}

// ValidationError reports an invalid value in an extracted record.
func ValidationError(code Code, field string, value interface{}, err error) *ETLError {
	var message, suggestion string
	switch code {
	case CodeInvalidAmount:
		message = fmt.Sprintf("invalid amount in field '%s': %v", field, value)
		suggestion = "amounts use ',' as the decimal separator, e.g. '1.234,56'"
	case CodeInvalidDate:
		message = fmt.Sprintf("invalid date in field '%s': %v", field, value)
		suggestion = "dates use DD/MM/YYYY or YYYY-MM-DD"
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
	case CodeEmptyBatch:
		message = "no records were extracted"
		suggestion = "check the input files and custodian detection"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
	}

	result := build(err, CategoryValidation, code, message)
	return result.WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError reports a missing or invalid configuration item.
func ConfigurationError(code Code, setting string, err error) *ETLError {
	var message, suggestion string
	switch code {
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "add the file to the config directory or pass --config-dir"
	case CodeUnknownCustodian:
		message = fmt.Sprintf("unknown custodian: %s", setting)
		suggestion = "run 'fundesp custodians' to list supported custodians"
	default:
		message = fmt.Sprintf("invalid configuration: %s", setting)
		suggestion = "check the configuration file syntax"
	}

	result := build(err, CategoryConfiguration, code, message)
	return result.WithSuggestion(suggestion).WithContext("setting", setting)
}

// TransformError reports a failure while assembling or redistributing records.
func TransformError(code Code, operation string, err error) *ETLError {
	message := fmt.Sprintf("transform error during %s", operation)
	result := build(err, CategoryTransform, code, message)
	return result.WithContext("operation", operation)
}

// DatabaseError reports a MySQL failure.
func DatabaseError(code Code, operation string, err error) *ETLError {
	var message, suggestion string
	switch code {
	case CodeConnectionFailed:
		message = fmt.Sprintf("database connection failed during %s", operation)
		suggestion = "check the MySQL credentials in the environment"
	default:
		message = fmt.Sprintf("database error during %s", operation)
	}

	result := build(err, CategoryDatabase, code, message)
	return result.WithSuggestion(suggestion).WithContext("operation", operation)
}

// InternalError reports an unexpected condition.
func InternalError(operation string, err error) *ETLError {
	result := build(err, CategoryInternal, CodeUnexpected,
		fmt.Sprintf("unexpected error during %s", operation))
	return result.WithContext("operation", operation)
}

func build(err error, category Category, code Code, message string) *ETLError {
	if err != nil {
		return Wrap(err, category, code, message)
	}
	return New(category, code, message)
}

// Summary aggregates errors collected across a multi-file batch.
type Summary struct {
	Total      int              `json:"total"`
	ByCategory map[Category]int `json:"by_category"`
	Errors     []*ETLError      `json:"errors"`
}

// NewSummary builds a Summary from collected errors.
func NewSummary(errs []*ETLError) *Summary {
	summary := &Summary{
		Total:      len(errs),
		ByCategory: make(map[Category]int),
		Errors:     errs,
	}
	for _, err := range errs {
		summary.ByCategory[err.Category]++
	}
	return summary
}

// Error formats the summary as a single message.
func (s *Summary) Error() string {
	if s.Total == 0 {
		return "no errors"
	}
	if s.Total == 1 {
		return s.Errors[0].Error()
	}
	var parts []string
	for category, count := range s.ByCategory {
		parts = append(parts, fmt.Sprintf("%s: %d", category, count))
	}
	return fmt.Sprintf("%d errors occurred (%s)", s.Total, strings.Join(parts, ", "))
}

// ExitCode returns the highest exit code among the collected errors.
func (s *Summary) ExitCode() int {
	if s.Total == 0 {
		return 0
	}
	max := 1
	for _, err := range s.Errors {
		if code := err.ExitCode(); code > max {
			max = code
		}
	}
	return max
}

// AsETLError extracts an ETLError from an error chain.
func AsETLError(err error) (*ETLError, bool) {
	var etlErr *ETLError
	if errors.As(err, &etlErr) {
		return etlErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps err unless it already is an ETLError.
func WrapIfNeeded(err error, category Category, code Code, message string) *ETLError {
	if err == nil {
		return nil
	}
	if etlErr, ok := AsETLError(err); ok {
		return etlErr
	}
	return Wrap(err, category, code, message)
}
