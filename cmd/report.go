package cmd

import (
	"fmt"

	"stocktake-manager/core/reconcile"

	"github.com/spf13/cobra"
)

var reportShowAll bool

// reportCmd prints the variance report for a stocktake.
var reportCmd = &cobra.Command{
	Use:   "report [id]",
	Short: "Print the variance report for a stocktake",
	Long: `Computes the variance report for a stocktake and prints it to the console.

By default only products with a non-zero variance are listed; use --all to
include every product.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseStocktakeID(args[0])
		if err != nil {
			return err
		}

		svc, err := newStocktakeService()
		if err != nil {
			return err
		}

		report, err := svc.Report(cmd.Context(), id)
		if err != nil {
			return err
		}

		printVarianceReport(report)
		return nil
	},
}

// exportCmd uploads the DAT export for a stocktake.
var exportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Upload the DAT export for a stocktake to object storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseStocktakeID(args[0])
		if err != nil {
			return err
		}

		svc, err := newStocktakeService()
		if err != nil {
			return err
		}

		object, lines, err := svc.ExportDAT(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Printf("Uploaded %s (%d lines)\n", object, lines)
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportShowAll, "all", false, "Include products with zero variance")

	RootCmd.AddCommand(reportCmd)
	RootCmd.AddCommand(exportCmd)
}

func printVarianceReport(report *reconcile.Report) {
	fmt.Printf("%-12s %-32s %10s %10s %10s %12s\n",
		"CODE", "DESCRIPTION", "EXPECTED", "COUNTED", "QTY VAR", "$ VAR")

	for _, item := range report.Items {
		if !reportShowAll && item.QtyVariance == 0 && !item.ManuallyEntered {
			continue
		}
		marker := ""
		if item.ManuallyEntered {
			marker = " (manual)"
		}
		fmt.Printf("%-12s %-32s %10.1f %10.1f %+10.1f %+12.2f%s\n",
			item.ProductCode, truncate(item.Description, 32),
			item.TheoreticalQty, item.CountedQty,
			item.QtyVariance, item.DollarVariance, marker)
	}

	s := report.Summary
	fmt.Println()
	fmt.Printf("Items: %d total, %d counted, %d not counted\n", s.TotalItems, s.ItemsCounted, s.ItemsNotCounted)
	fmt.Printf("Variances: %d over, %d short, %d spot on\n", s.PositiveVariances, s.NegativeVariances, s.ZeroVariances)
	fmt.Printf("Total variance: %+.2f dollars, %.1f units absolute\n", s.TotalDollarVariance, s.TotalAbsQtyVariance)

	if len(report.Diagnostics) > 0 {
		fmt.Println()
		fmt.Printf("Needs review (%d):\n", len(report.Diagnostics))
		for _, d := range report.Diagnostics {
			switch d.Tier {
			case reconcile.TierNone:
				fmt.Printf("  unmatched: %q (barcode %q) qty %.1f, excluded from totals\n", d.ProductName, d.Barcode, d.Quantity)
			case reconcile.TierFuzzy:
				fmt.Printf("  fuzzy: %q matched %s, qty %.1f counted, verify\n", d.ProductName, d.ProductCode, d.Quantity)
			}
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
