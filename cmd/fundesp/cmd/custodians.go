package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alvarohtrindade/funds-expenses-etl/internal/extractors"
)

var custodiansCmd = &cobra.Command{
	Use:   "custodians",
	Short: "List the supported custodians and their file name markers",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Supported custodians:")
		for _, name := range extractors.Supported() {
			fmt.Printf("  %s\n", name)
		}
		fmt.Println("\nThe custodian is detected from the statement file name:")
		fmt.Println("  *cashstatement*          -> Singulare")
		fmt.Println("  *ptr_*                   -> Master")
		fmt.Println("  *demonstrativo de caixa* -> Daycoval")
		fmt.Println("  *caixaextrato*           -> BTG")
	},
}

func init() {
	rootCmd.AddCommand(custodiansCmd)
}
