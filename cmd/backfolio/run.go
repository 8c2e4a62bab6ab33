package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rsinha/backfolio/internal/core"
	"github.com/rsinha/backfolio/internal/engine"
	"github.com/rsinha/backfolio/internal/export"
	"github.com/rsinha/backfolio/internal/logger"
)

var (
	runFrom         string
	runTo           string
	runFrequency    string
	runSize         int
	runCapital      float64
	runMarketCapMin float64
	runMarketCapMax float64
	runROCEMin      float64
	runPositivePAT  bool
	runRanking      string
	runSizing       string
	runExport       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest and print the report",
	Long:  "Run one backtest against the configured universe and print performance metrics",
	RunE:  runBacktest,
}

func init() {
	runCmd.Flags().StringVar(&runFrom, "from", "", "Start date YYYY-MM-DD (required)")
	runCmd.Flags().StringVar(&runTo, "to", "", "End date YYYY-MM-DD (required)")
	runCmd.Flags().StringVar(&runFrequency, "frequency", "Monthly", "Rebalance frequency: Monthly, Quarterly, Yearly, None")
	runCmd.Flags().IntVar(&runSize, "size", 10, "Number of securities to hold")
	runCmd.Flags().Float64Var(&runCapital, "capital", 100000, "Initial capital")
	runCmd.Flags().Float64Var(&runMarketCapMin, "market-cap-min", 0, "Minimum market cap filter")
	runCmd.Flags().Float64Var(&runMarketCapMax, "market-cap-max", 1e15, "Maximum market cap filter")
	runCmd.Flags().Float64Var(&runROCEMin, "roce", 0, "Minimum ROCE filter in percent")
	runCmd.Flags().BoolVar(&runPositivePAT, "pat", false, "Require positive profit after tax")
	runCmd.Flags().StringVar(&runRanking, "ranking", "roce", "Ranking logic: roce or marketCap")
	runCmd.Flags().StringVar(&runSizing, "sizing", string(core.SizingEqualWeight), "Sizing method")
	runCmd.Flags().BoolVar(&runExport, "export", false, "Export the transaction log artifacts")

	runCmd.MarkFlagRequired("from")
	runCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(runCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	fromDate, err := time.Parse("2006-01-02", runFrom)
	if err != nil {
		return fmt.Errorf("invalid from date format (expected YYYY-MM-DD): %w", err)
	}
	toDate, err := time.Parse("2006-01-02", runTo)
	if err != nil {
		return fmt.Errorf("invalid to date format (expected YYYY-MM-DD): %w", err)
	}

	a, err := buildApp(log)
	if err != nil {
		return err
	}
	defer a.Close()

	req := engine.Request{
		StartDate:          fromDate,
		EndDate:            toDate,
		Frequency:          core.Frequency(runFrequency),
		PortfolioSize:      runSize,
		Capital:            runCapital,
		MarketCapMin:       runMarketCapMin,
		MarketCapMax:       runMarketCapMax,
		ROCEMin:            runROCEMin,
		RequirePositivePAT: runPositivePAT,
		RankingLogic:       runRanking,
		SizingMethod:       core.SizingMethod(runSizing),
	}

	report, err := a.engine.Run(context.Background(), req)
	if err != nil {
		return err
	}

	printReport(report, fromDate, toDate)

	if runExport {
		if err := exportReport(a, report); err != nil {
			return err
		}
	}
	return nil
}

func printReport(report *engine.Report, from, to time.Time) {
	fmt.Println("=== Backfolio Backtest ===")
	fmt.Printf("Period:       %s to %s\n", core.DayString(from), core.DayString(to))
	fmt.Printf("CAGR:         %.2f%%\n", report.Metrics.CAGR)
	fmt.Printf("Sharpe ratio: %.2f\n", report.Metrics.SharpeRatio)
	fmt.Printf("Max drawdown: %.2f%%\n", report.Metrics.MaxDrawdown)

	fmt.Println()
	fmt.Println("Top performers:")
	for _, s := range report.Winners {
		fmt.Printf("  %-12s %+.2f%%\n", s.Symbol, s.ReturnPct)
	}
	fmt.Println("Bottom performers:")
	for _, s := range report.Losers {
		fmt.Printf("  %-12s %+.2f%%\n", s.Symbol, s.ReturnPct)
	}
}

func exportReport(a *app, report *engine.Report) error {
	artifact, err := buildArchive(a.cfg)
	if err != nil {
		return fmt.Errorf("creating artifact store: %w", err)
	}

	ctx := context.Background()
	csvData, err := export.CSV(report.Logs)
	if err != nil {
		return fmt.Errorf("rendering csv: %w", err)
	}
	if err := artifact.Write(ctx, export.CSVArtifact, csvData); err != nil {
		return fmt.Errorf("storing csv: %w", err)
	}

	xlsxData, err := export.XLSX(report.Logs)
	if err != nil {
		return fmt.Errorf("rendering xlsx: %w", err)
	}
	if err := artifact.Write(ctx, export.XLSXArtifact, xlsxData); err != nil {
		return fmt.Errorf("storing xlsx: %w", err)
	}

	fmt.Printf("\nExported %s and %s\n", export.CSVArtifact, export.XLSXArtifact)
	return nil
}
