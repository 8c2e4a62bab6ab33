package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "backfolio",
	Short: "Backfolio - periodic-rebalancing portfolio backtester",
	Long: `Backfolio screens an equity universe on fundamentals, rebalances on a
fixed calendar, and reports whole-history performance of the resulting
portfolio.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
