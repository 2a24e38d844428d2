package cmd

import (
	"fmt"
	"os"

	"stocktake-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "stocktake-manager",
	Short: "Stocktake Manager Service",
	Long: `Stocktake Manager reconciles physical count data against theoretical
stock levels. It runs the sync server for counting devices, computes variance
reports, and produces the DAT export for the vendor system.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format at debug level so CLI users get readable
		// ISO8601 timestamps instead of epoch.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
