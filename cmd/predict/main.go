// Package main provides the prediction CLI: run the pipeline for one race
// or a whole day and print the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/pmu-edge/internal/betting"
	"github.com/yourusername/pmu-edge/internal/combination"
	"github.com/yourusername/pmu-edge/internal/config"
	"github.com/yourusername/pmu-edge/internal/database"
	"github.com/yourusername/pmu-edge/internal/logger"
	"github.com/yourusername/pmu-edge/internal/prediction"
	"github.com/yourusername/pmu-edge/internal/repository"
	"github.com/yourusername/pmu-edge/internal/service"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		dateFlag   = flag.String("date", "", "Race date (YYYY-MM-DD, default today)")
		raceCode   = flag.String("race", "", "Race code (e.g. R1C3); empty predicts the whole day")
		store      = flag.Bool("store", false, "Store the recommendations for the daily report")
	)
	flag.Parse()

	cfg := loadConfigWithSecrets(*configPath)
	log := logger.NewLogger(cfg.App.LogLevel)
	ctx := context.Background()

	date := time.Now().UTC()
	if *dateFlag != "" {
		parsed, err := time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			log.Fatalf("Invalid date: %v", err)
		}
		date = parsed
	}

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	svc := buildPredictionService(cfg, repos, log)

	var output interface{}
	if *raceCode != "" {
		rp, err := svc.PredictByCode(ctx, date, *raceCode)
		if err != nil {
			log.Fatalf("Prediction failed: %v", err)
		}
		if *store {
			if err := svc.StoreRecommendations(ctx, rp); err != nil {
				log.Fatalf("Failed to store recommendations: %v", err)
			}
		}
		output = rp
	} else {
		predictions, err := svc.PredictDay(ctx, date)
		if err != nil {
			log.Fatalf("Prediction failed: %v", err)
		}
		if *store {
			for _, rp := range predictions {
				if err := svc.StoreRecommendations(ctx, rp); err != nil {
					log.WithError(err).WithField("race_code", rp.Race.RaceCode).Warn("Failed to store recommendations")
				}
			}
		}
		output = predictions
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		log.Fatalf("Failed to encode output: %v", err)
	}
}

func loadConfigWithSecrets(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			logrus.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			logrus.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func buildPredictionService(cfg *config.Config, repos *repository.Repositories, log *logrus.Logger) *service.PredictionService {
	sizer := betting.NewSizer(betting.SizerConfig{
		Fraction:     cfg.Betting.KellyFraction,
		MinThreshold: betting.DefaultSizerConfig().MinThreshold,
		MinStake:     cfg.Betting.MinStake,
	})

	opts := service.PredictionOptions{
		CacheTTL:          cfg.PredictionCacheTTL(),
		CombinationLimit:  cfg.Prediction.CombinationLimit,
		MinFieldSize:      cfg.Prediction.MinFieldSize,
		Bankroll:          cfg.Betting.Bankroll,
		CombinationBudget: cfg.Betting.CombinationBudget,
		DailyStake:        cfg.Betting.MinStake,
	}

	return service.NewPredictionService(
		repos,
		prediction.DefaultConfig(),
		combination.NewGenerator(combination.DefaultConfig()),
		betting.NewAnalyzer(sizer, log),
		betting.NewRecommender(betting.DefaultRecommenderConfig()),
		opts,
		log,
	)
}
