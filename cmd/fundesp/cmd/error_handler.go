package cmd

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/viper"

	"github.com/alvarohtrindade/funds-expenses-etl/pkg/errors"
	"github.com/alvarohtrindade/funds-expenses-etl/pkg/logger"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError handles errors and provides user-friendly messages
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Error("Command failed")

	if etlErr, ok := errors.AsETLError(err); ok {
		return h.handleETLError(etlErr)
	}

	return h.handleGenericError(err)
}

// handleETLError handles ETLError with detailed context
func (h *CLIErrorHandler) handleETLError(err *errors.ETLError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	fmt.Fprintf(os.Stderr, "\n%s\n", h.getCategoryHelp(err.Category))

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.ExitCode()
}

// handleGenericError handles non-ETLError types
func (h *CLIErrorHandler) handleGenericError(err error) int {
	if h.isFileNotFoundError(err) {
		fmt.Fprintf(os.Stderr, "Error: File not found\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}

	if h.isPermissionError(err) {
		fmt.Fprintf(os.Stderr, "Error: Permission denied\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

func (h *CLIErrorHandler) getCategoryHelp(category errors.Category) string {
	switch category {
	case errors.CategoryFile:
		return "Help: run with --verbose for details on the file access problem."
	case errors.CategoryParse:
		return "Help: the file layout did not match the custodian's expected format. Check the custodian with 'fundesp custodians'."
	case errors.CategoryValidation:
		return "Help: the file was read but its contents failed validation. Run 'fundesp validate' on the file to inspect it."
	case errors.CategoryConfiguration:
		return "Help: check the JSON tables in the config directory (--config-dir)."
	case errors.CategoryDatabase:
		return "Help: check the FUNDESP_MYSQL_* environment variables and database availability."
	default:
		return "Help: run with --verbose for a full error trace."
	}
}

func (h *CLIErrorHandler) isFileNotFoundError(err error) bool {
	return os.IsNotExist(err) || strings.Contains(err.Error(), "no such file")
}

func (h *CLIErrorHandler) isPermissionError(err error) bool {
	if os.IsPermission(err) {
		return true
	}
	var errno syscall.Errno
	if stderrors.As(err, &errno) {
		return errno == syscall.EACCES || errno == syscall.EPERM
	}
	return false
}
