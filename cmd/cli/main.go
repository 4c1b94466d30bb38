package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeovahfialho/sssm/internal/config"
	"github.com/jeovahfialho/sssm/internal/console"
	"github.com/jeovahfialho/sssm/internal/domain"
	"github.com/jeovahfialho/sssm/internal/ingestion"
	"github.com/jeovahfialho/sssm/internal/service"
	"github.com/jeovahfialho/sssm/pkg/logger"
	"github.com/jeovahfialho/sssm/pkg/metrics"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "sssm",
		Short: "Super Simple Stock Market",
		Long: `In-memory stock market model.
Computes dividend yield, P/E ratio, volume weighted price and the
all share index. Without a command it starts the interactive menu.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu()
		},
	}

	// menu
	var menuCmd = &cobra.Command{
		Use:   "menu",
		Short: "Starts the interactive menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu()
		},
	}

	// list
	var listCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists the stocks in memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := setup()
			if err != nil {
				return err
			}
			defer logger.Close()
			return console.PrintStocks(os.Stdout, svc.Stocks())
		},
	}

	// yield
	var yieldCmd = &cobra.Command{
		Use:   "yield [symbol]",
		Short: "Calculates the dividend yield of a stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return calculate(cmd, args[0], "Yield", (*service.MarketService).DividendYield)
		},
	}
	yieldCmd.Flags().Float64P("price", "p", 0, "Price of the stock")
	yieldCmd.MarkFlagRequired("price")

	// pe
	var peCmd = &cobra.Command{
		Use:   "pe [symbol]",
		Short: "Calculates the P/E ratio of a stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return calculate(cmd, args[0], "P/E", (*service.MarketService).PERatio)
		},
	}
	peCmd.Flags().Float64P("price", "p", 0, "Price of the stock")
	peCmd.MarkFlagRequired("price")

	// import
	var importCmd = &cobra.Command{
		Use:   "import [files...]",
		Short: "Imports trades from CSV files",
		Long: `Imports trades from semicolon separated files with the header
Symbol;Timestamp;Direction;Quantity;Price
then sets the last price of every traded stock to its most recent trade
and prints the volume weighted prices and the all share index.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, _ := cmd.Flags().GetString("at")
			showMetrics, _ := cmd.Flags().GetBool("metrics")
			return importFiles(cmd.Context(), args, at, showMetrics)
		},
	}
	importCmd.Flags().StringP("at", "a", "", "Reference time of the volume weighted price (default: now)")
	importCmd.Flags().BoolP("metrics", "m", false, "Print metrics after the import")

	rootCmd.AddCommand(menuCmd, listCmd, yieldCmd, peCmd, importCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration and builds the service over the catalogue.
func setup() (*config.Config, *service.MarketService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if err := logger.Init(cfg.LogLevel, cfg.Development()); err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	metrics.SetEnabled(cfg.MetricsEnabled)

	svc := service.NewMarketService(domain.NewRegistry(), cfg.VWPWindow)
	if cfg.SeedCatalogue {
		for _, stock := range service.DefaultCatalogue() {
			svc.AddStock(stock)
		}
	}

	logger.Debug("service ready",
		zap.Int("stocks", svc.Registry().Len()),
		zap.Duration("window", cfg.VWPWindow))

	return cfg, svc, nil
}

func runMenu() error {
	_, svc, err := setup()
	if err != nil {
		return err
	}
	defer logger.Close()

	return console.NewMenu(svc, os.Stdin, os.Stdout).Run()
}

type calculation func(svc *service.MarketService, symbol string, price *float64) (float64, error)

func calculate(cmd *cobra.Command, symbol, label string, calc calculation) error {
	_, svc, err := setup()
	if err != nil {
		return err
	}
	defer logger.Close()

	price, _ := cmd.Flags().GetFloat64("price")

	value, err := calc(svc, symbol, &price)
	if err != nil {
		return err
	}

	fmt.Printf("Symbol: %3s\t%s:%s\n", service.NormalizeSymbol(symbol), label, console.FormatValue(value))
	return nil
}

func importFiles(ctx context.Context, files []string, at string, showMetrics bool) error {
	cfg, svc, err := setup()
	if err != nil {
		return err
	}
	defer logger.Close()

	if at != "" {
		reference, err := ingestion.ParseTimestampInLocation(at, time.Local)
		if err != nil {
			return err
		}
		svc.SetClock(func() time.Time { return reference })
	}

	parser := ingestion.NewParser(cfg.BatchSize, cfg.Workers)
	loader := ingestion.NewLoader(svc)
	workerPool := ingestion.NewWorkerPool(cfg.Workers, parser, loader)

	fmt.Printf("Importing %d file(s)...\n\n", len(files))

	var totalRecords int64
	for _, result := range workerPool.ImportFiles(ctx, files) {
		if result.Error != nil {
			fmt.Printf("Error in %s: %v\n", result.FilePath, result.Error)
			continue
		}

		fmt.Printf("Imported %d trades from %s\n", result.RecordsCount, result.FilePath)
		for _, err := range result.Errors {
			fmt.Printf("  %v\n", err)
		}
		totalRecords += result.RecordsCount
	}

	fmt.Printf("\nTotal: %d trades imported\n", totalRecords)
	fmt.Printf("Last price set from the latest trade for %d stock(s)\n\n", svc.MarkToLatestTrades())

	fmt.Printf("Volume weighted price over the last %s:\n", svc.Window())
	for _, stock := range svc.Stocks() {
		vwp, err := svc.VolumeWeightedPrice(stock.Symbol)
		if err != nil {
			return err
		}
		fmt.Printf("%3s\t%s\n", stock.Symbol, console.FormatValue(vwp))
	}
	fmt.Printf("\nAll share index: %s\n", console.FormatValue(svc.AllShareIndex()))

	if showMetrics {
		fmt.Println()
		return metrics.WriteText(os.Stdout)
	}
	return nil
}
