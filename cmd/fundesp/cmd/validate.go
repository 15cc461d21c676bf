package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alvarohtrindade/funds-expenses-etl/internal/extractors"
	"github.com/alvarohtrindade/funds-expenses-etl/internal/models"
)

var validateFlags struct {
	input     string
	custodian string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that a statement file can be read without processing it",
	Long: `Validate extracts a statement file and reports what was found: the
detected custodian, row count and how many rows carry parsable dates and
amounts. Nothing is written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		handler := NewCLIErrorHandler()
		if err := runValidate(); err != nil {
			os.Exit(handler.HandleError(err))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.input, "input", "i", "", "statement file (required)")
	validateCmd.Flags().StringVarP(&validateFlags.custodian, "custodian", "c", "", "force a custodian instead of detecting from the file name")
	validateCmd.MarkFlagRequired("input")
}

func runValidate() error {
	var extractor extractors.Extractor
	var err error
	if validateFlags.custodian != "" {
		extractor, err = extractors.ForCustodian(validateFlags.custodian)
	} else {
		extractor, err = extractors.ForFile(validateFlags.input)
	}
	if err != nil {
		return err
	}

	raw, err := extractor.Extract(validateFlags.input)
	if err != nil {
		return err
	}

	validDates := 0
	validAmounts := 0
	for _, row := range raw {
		if _, err := models.ParseDate(row.Date); err == nil {
			validDates++
		}
		_, errCredit := models.ParseAmount(row.AmountCredit)
		_, errDebit := models.ParseAmount(row.AmountDebit)
		if errCredit == nil && errDebit == nil {
			validAmounts++
		}
	}

	fmt.Printf("Arquivo:      %s\n", validateFlags.input)
	fmt.Printf("Custodiante:  %s\n", extractor.Custodian())
	fmt.Printf("Registros:    %d\n", len(raw))
	fmt.Printf("Datas OK:     %d\n", validDates)
	fmt.Printf("Valores OK:   %d\n", validAmounts)
	return nil
}
