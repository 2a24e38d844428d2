package cmd

import (
	"fmt"
	"strconv"

	"stocktake-manager/core/config"
	"stocktake-manager/core/database"
	"stocktake-manager/core/logger"
	"stocktake-manager/core/storage"
	"stocktake-manager/feature/stocktake"

	"github.com/spf13/cobra"
)

var (
	stocktakeCreatedBy string
	stocktakeFinishBy  string
)

// stocktakeCmd is the parent command for stocktake lifecycle operations.
var stocktakeCmd = &cobra.Command{
	Use:   "stocktake",
	Short: "Manage stocktake sessions",
	Long:  `Create, complete, and list stocktake sessions on the server database.`,
}

var stocktakeCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new stocktake (imports the theoretical baseline)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newStocktakeService()
		if err != nil {
			return err
		}

		st, err := svc.Create(cmd.Context(), args[0], stocktakeCreatedBy)
		if err != nil {
			return err
		}

		fmt.Printf("Created stocktake #%d %q (status: %s)\n", st.ID, st.Name, st.Status)
		return nil
	},
}

var stocktakeFinishCmd = &cobra.Command{
	Use:   "finish [id]",
	Short: "Complete a stocktake (one-way, locks its data)",
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

		st, err := svc.Finish(cmd.Context(), id, stocktakeFinishBy)
		if err != nil {
			return err
		}

		fmt.Printf("Completed stocktake #%d %q at %s\n", st.ID, st.Name, st.CompletedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

var stocktakeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stocktakes, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newStocktakeService()
		if err != nil {
			return err
		}

		sts, err := svc.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(sts) == 0 {
			fmt.Println("No stocktakes found.")
			return nil
		}

		for _, st := range sts {
			line := fmt.Sprintf("#%-4d %-30s %-10s created %s by %s",
				st.ID, st.Name, st.Status, st.CreatedAt.Format("2006-01-02"), st.CreatedBy)
			if st.CompletedAt != nil {
				line += fmt.Sprintf(", completed %s", st.CompletedAt.Format("2006-01-02"))
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	stocktakeCreateCmd.Flags().StringVar(&stocktakeCreatedBy, "by", "", "Name of the person creating the stocktake")
	stocktakeFinishCmd.Flags().StringVar(&stocktakeFinishBy, "by", "", "Name of the person completing the stocktake")

	stocktakeCmd.AddCommand(stocktakeCreateCmd)
	stocktakeCmd.AddCommand(stocktakeFinishCmd)
	stocktakeCmd.AddCommand(stocktakeListCmd)
	RootCmd.AddCommand(stocktakeCmd)
}

// newStocktakeService wires a service from the local configuration, for CLI
// use outside the running server.
func newStocktakeService() (*stocktake.Service, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to storage: %w", err)
	}

	store := stocktake.NewStore(db)
	if err := store.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	importer := stocktake.NewCSVImporter(client, cfg.Storage.Bucket, cfg.Server.BaselineObject, cfg.Server.MappingObject)
	return stocktake.NewService(store, importer, client, cfg.Storage.Bucket, l, cfg.Server.ReportCacheTTL()), nil
}

func parseStocktakeID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid stocktake id %q", arg)
	}
	return uint(id), nil
}
