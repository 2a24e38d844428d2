package cmd

import (
	"fmt"
	"strconv"

	"stocktake-manager/core/config"
	"stocktake-manager/core/logger"
	"stocktake-manager/core/reconcile"
	"stocktake-manager/feature/syncqueue"

	"github.com/spf13/cobra"
)

var (
	countStocktakeID uint
	countBarcode     string
	countName        string
	countSource      string
	countLocation    string
)

// countCmd is the parent command for device-side counting. Counts go to the
// local queue first, so they work with no server in reach; `count drain`
// pushes them when a link is available.
var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Record and sync counts from this device",
	Long: `Device-side counting against the local offline queue.

Counts are durably queued in a local SQLite file and survive restarts.
Run "count drain" to push pending counts to the server; drains are safe to
repeat because the server deduplicates by sync id.`,
}

var countRecordCmd = &cobra.Command{
	Use:   "record [quantity]",
	Short: "Durably queue a count on this device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		qty, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[0])
		}
		if countBarcode == "" && countName == "" {
			return fmt.Errorf("either --barcode or --name is required")
		}

		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		queue, err := syncqueue.Open(cfg.Queue)
		if err != nil {
			return err
		}

		location := countLocation
		if location == "" {
			location = cfg.Queue.Location
		}

		row, err := queue.Record(cmd.Context(), countStocktakeID, reconcile.CountEvent{
			Source:      countSource,
			Barcode:     countBarcode,
			ProductName: countName,
			Quantity:    qty,
			Location:    location,
			RecordedBy:  cfg.Queue.Device,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Queued count %s (qty %.1f)\n", row.SyncID, row.Quantity)
		return nil
	},
}

var countListCmd = &cobra.Command{
	Use:   "list",
	Short: "List counts queued on this device",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		queue, err := syncqueue.Open(cfg.Queue)
		if err != nil {
			return err
		}

		rows, err := queue.List(cmd.Context(), countStocktakeID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Println("No counts queued.")
			return nil
		}

		for _, row := range rows {
			product := row.ProductName
			if product == "" {
				product = row.Barcode
			}
			fmt.Printf("%-36s %-30s %8.1f  %s\n", row.SyncID, product, row.Quantity, row.SyncStatus)
		}
		return nil
	},
}

var countDrainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Push pending counts to the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		l, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		queue, err := syncqueue.Open(cfg.Queue)
		if err != nil {
			return err
		}

		drainer := syncqueue.NewDrainer(queue, syncqueue.NewHTTPSubmitter(cfg.Queue), l)
		result, err := drainer.Drain(cmd.Context(), countStocktakeID)
		if err != nil {
			return err
		}

		fmt.Printf("Synced %d counts, propagated %d deletions, %d still pending\n",
			result.Synced, result.Deleted, result.Pending)
		return nil
	},
}

func init() {
	countCmd.PersistentFlags().UintVar(&countStocktakeID, "stocktake", 0, "Stocktake ID to count against")
	_ = countCmd.MarkPersistentFlagRequired("stocktake")

	countRecordCmd.Flags().StringVar(&countBarcode, "barcode", "", "Scanned barcode")
	countRecordCmd.Flags().StringVar(&countName, "name", "", "Product name for manual entry")
	countRecordCmd.Flags().StringVar(&countSource, "source", reconcile.SourceScan, "Count source (scan, manual, keg)")
	countRecordCmd.Flags().StringVar(&countLocation, "location", "", "Counting location (defaults to the configured one)")

	countCmd.AddCommand(countRecordCmd)
	countCmd.AddCommand(countListCmd)
	countCmd.AddCommand(countDrainCmd)
	RootCmd.AddCommand(countCmd)
}
