// Package main provides the entry point for the data ingestion service:
// the cron-driven fetch, predict and report loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/pmu-edge/internal/betting"
	"github.com/yourusername/pmu-edge/internal/combination"
	"github.com/yourusername/pmu-edge/internal/config"
	"github.com/yourusername/pmu-edge/internal/database"
	"github.com/yourusername/pmu-edge/internal/datasource"
	"github.com/yourusername/pmu-edge/internal/health"
	"github.com/yourusername/pmu-edge/internal/logger"
	"github.com/yourusername/pmu-edge/internal/metrics"
	"github.com/yourusername/pmu-edge/internal/prediction"
	"github.com/yourusername/pmu-edge/internal/repository"
	"github.com/yourusername/pmu-edge/internal/scheduler"
	"github.com/yourusername/pmu-edge/internal/service"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		once       = flag.Bool("once", false, "Run one program ingestion and exit")
		dateFlag   = flag.String("date", "", "Date for -once mode (YYYY-MM-DD, default today)")
	)
	flag.Parse()

	cfg := loadConfigWithSecrets(*configPath)
	appLogger := logger.NewLogger(cfg.App.LogLevel)
	ctx := context.Background()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLogger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLogger.Fatalf("Failed to initialize repositories: %v", err)
	}

	source := buildPMUSource(cfg, appLogger)
	ingestionSvc := service.NewIngestionService(source, repos, appLogger)

	if *once {
		runOnce(ctx, ingestionSvc, *dateFlag, appLogger)
		return
	}

	predictionSvc := buildPredictionService(cfg, repos, appLogger)
	reportSvc := service.NewReportService(repos, appLogger)

	sched := scheduler.NewScheduler(ingestionSvc, predictionSvc, reportSvc, appLogger)
	if err := sched.ScheduleProgramFetch(cfg.Ingestion.ProgramCron); err != nil {
		appLogger.Fatalf("Failed to schedule program fetch: %v", err)
	}
	if err := sched.ScheduleResultsFetch(cfg.Ingestion.ResultsCron); err != nil {
		appLogger.Fatalf("Failed to schedule results fetch: %v", err)
	}
	if err := sched.ScheduleDailyReport(cfg.Ingestion.ReportCron); err != nil {
		appLogger.Fatalf("Failed to schedule daily report: %v", err)
	}
	if err := sched.Start(); err != nil {
		appLogger.Fatalf("Failed to start scheduler: %v", err)
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = startMetricsServer(cfg, appLogger)
	}

	healthCtx, stopHealth := context.WithCancel(ctx)
	defer stopHealth()
	healthServer := health.NewServer("data-ingestion", "", db, appLogger)
	healthServer.Start(healthCtx)
	healthServer.SetReady(true)

	appLogger.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"next_run":    sched.GetNextRun().Format(time.RFC3339),
	}).Info("Data ingestion service started")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	appLogger.Info("Shutting down")
	healthServer.SetReady(false)
	if err := sched.Stop(); err != nil {
		appLogger.WithError(err).Warn("Scheduler shutdown failed")
	}
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			appLogger.WithError(err).Warn("Metrics server shutdown failed")
		}
	}
}

func runOnce(ctx context.Context, svc *service.IngestionService, dateFlag string, appLogger *logrus.Logger) {
	date := time.Now().UTC()
	if dateFlag != "" {
		parsed, err := time.Parse("2006-01-02", dateFlag)
		if err != nil {
			appLogger.Fatalf("Invalid date: %v", err)
		}
		date = parsed
	}

	m, err := svc.IngestProgram(ctx, date)
	if err != nil {
		appLogger.Fatalf("Ingestion failed: %v", err)
	}
	appLogger.WithField("metrics", m.String()).Info("Ingestion completed")
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

func buildPMUSource(cfg *config.Config, appLogger *logrus.Logger) datasource.ProgramSource {
	httpCfg := datasource.DefaultHTTPClientConfig()
	httpCfg.Timeout = cfg.PMUTimeout()
	httpCfg.MaxRetries = cfg.PMU.RetryAttempts
	httpCfg.RateLimit = cfg.PMU.RequestsPerSecond
	httpCfg.RateBurst = cfg.PMU.RequestBurst

	stdLogger := log.New(appLogger.Writer(), "", 0)
	client := datasource.NewRateLimitedHTTPClient(httpCfg, stdLogger)
	return datasource.NewPMUClient(client, cfg.PMU.BaseURL, cfg.PMU.UserAgent, stdLogger)
}

func buildPredictionService(cfg *config.Config, repos *repository.Repositories, appLogger *logrus.Logger) *service.PredictionService {
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
		betting.NewAnalyzer(sizer, appLogger),
		betting.NewRecommender(betting.DefaultRecommenderConfig()),
		opts,
		appLogger,
	)
}

func startMetricsServer(cfg *config.Config, appLogger *logrus.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: mux,
	}

	go func() {
		appLogger.WithFields(logrus.Fields{
			"port": cfg.Metrics.Port,
			"path": cfg.Metrics.Path,
		}).Info("Metrics server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Error("Metrics server failed")
		}
	}()

	return server
}
