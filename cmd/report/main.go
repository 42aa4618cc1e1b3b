// Package main provides the daily report CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/pmu-edge/internal/config"
	"github.com/yourusername/pmu-edge/internal/database"
	"github.com/yourusername/pmu-edge/internal/repository"
	"github.com/yourusername/pmu-edge/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	dateFlag   string
	asJSON     bool
	logger     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&dateFlag, "date", "d", "", "Report date (YYYY-MM-DD, default today)")
	rootCmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the daily betting report",
	Long:  `Settles the day's stored bets against the official results and prints stakes, returns, ROI and prediction accuracy.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("report %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return err
		}
	}
	return config.Validate(cfg)
}

func setupDependencies() error {
	logger = logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	db, err = database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	return nil
}

func runReport() error {
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	date := time.Now().UTC()
	if dateFlag != "" {
		parsed, err := time.Parse("2006-01-02", dateFlag)
		if err != nil {
			return fmt.Errorf("invalid date: %w", err)
		}
		date = parsed
	}

	svc := service.NewReportService(repos, logger)
	report, err := svc.BuildDailyReport(ctx, date)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(report)
	}
	printReport(report)
	return nil
}

func printJSON(report *service.DailyReport) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func printReport(report *service.DailyReport) {
	fmt.Printf("\nDaily report %s\n", report.Date.Format("2006-01-02"))
	fmt.Println("==============================")

	fmt.Printf("\nDaily bets (%d):\n", len(report.DailyBets))
	for _, bet := range report.DailyBets {
		fmt.Printf("  %-24s stake %-8s %s\n", bet.HorseName, bet.Stake.StringFixed(2), outcomeLabel(bet.Settled, bet.Won, bet.Return.StringFixed(2)))
	}

	fmt.Printf("\nValue bets (%d):\n", len(report.ValueBets))
	for _, bet := range report.ValueBets {
		fmt.Printf("  %-24s stake %-8s %s\n", bet.HorseName, bet.Stake.StringFixed(2), outcomeLabel(bet.Settled, bet.Won, bet.Return.StringFixed(2)))
	}

	fmt.Printf("\nCombinations (%d):\n", len(report.Combinations))
	for _, combo := range report.Combinations {
		fmt.Printf("  %-16s stake %-8s %s\n", combo.Type, combo.Stake.StringFixed(2), outcomeLabel(combo.Settled, combo.Won, combo.Return.StringFixed(2)))
	}

	fmt.Println("\nTotals:")
	fmt.Printf("  Staked:   %s\n", report.TotalStaked.StringFixed(2))
	fmt.Printf("  Returned: %s\n", report.TotalReturned.StringFixed(2))
	fmt.Printf("  Profit:   %s\n", report.Profit.StringFixed(2))
	fmt.Printf("  ROI:      %s%%\n", report.ROIPct.StringFixed(2))

	fmt.Println("\nPrediction accuracy:")
	fmt.Printf("  Evaluated races: %d\n", report.Accuracy.Evaluated)
	fmt.Printf("  Mean accuracy:   %.1f\n", report.Accuracy.MeanAccuracy)
	fmt.Printf("  Mean top-3:      %.1f\n", report.Accuracy.MeanTop3Accuracy)
	fmt.Printf("  Winners found:   %d\n", report.Accuracy.WinnersFound)
}

func outcomeLabel(settled, won bool, returned string) string {
	switch {
	case !settled:
		return "pending"
	case won:
		return "WON  -> " + returned
	default:
		return "lost"
	}
}
