package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"rvmanagement/internal/barcode"
)

const maxGenerate = 100

func barcodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "barcode",
		Short: "Generate and check EAN-13 barcodes",
	}
	cmd.AddCommand(barcodeGenerateCmd(), barcodeCheckCmd(), barcodeValidateCmd())
	return cmd
}

func barcodeGenerateCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print random EAN-13 barcodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 || count > maxGenerate {
				return fmt.Errorf("count must be between 1 and %d", maxGenerate)
			}
			for range count {
				fmt.Fprintln(cmd.OutOrStdout(), barcode.GenerateEAN13())
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of barcodes")
	return cmd
}

func barcodeCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <12 digits>",
		Short: "Print the full barcode with its check digit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			digit, err := barcode.CheckDigit(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", args[0], digit)
			return nil
		},
	}
}

func barcodeValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <code>",
		Short: "Check a 13-digit EAN-13 barcode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := barcode.Validate(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", args[0])
			return nil
		},
	}
}
