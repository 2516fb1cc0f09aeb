package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/timmy/redsift/internal/config"
	"github.com/timmy/redsift/internal/logger"
	"github.com/timmy/redsift/internal/reddit"
	"github.com/timmy/redsift/internal/repository"
	"github.com/timmy/redsift/internal/sentiment"
	"github.com/timmy/redsift/internal/service"
	"github.com/timmy/redsift/internal/storage"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "text",
		Output:      os.Stderr,
		ServiceName: "redsift-analyze",
	})
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Parse command line flags
	subreddits := flag.String("subreddits", "", "Comma-separated subreddits to analyze")
	keywords := flag.String("keywords", "", "Comma-separated keywords to match in post titles")
	limit := flag.Int("limit", 0, "Posts to fetch per subreddit (0 uses the configured default)")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if *limit > 0 {
		cfg.Analysis.PostLimit = *limit
	}

	appLogger.WithFields(logger.Fields{
		"subreddits": *subreddits,
		"keywords":   *keywords,
		"limit":      cfg.Analysis.PostLimit,
	}).Info("Starting analysis")

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	runRepo := repository.NewRunRepository(db)

	// Initialize archive storage
	objectStorage, err := storage.NewStorage(&cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}

	analysisService := service.NewAnalysisService(
		func(creds reddit.Credentials) service.RedditClient {
			return reddit.NewClient(creds)
		},
		sentiment.NewAnalyzer(),
		runRepo,
		objectStorage,
		appLogger,
		&service.AnalysisConfig{
			PostLimit:  cfg.Analysis.PostLimit,
			OutputRoot: cfg.Analysis.OutputDir,
		},
	)

	result, err := analysisService.Run(context.Background(), service.RunRequest{
		Credentials: reddit.Credentials{
			ClientID:     cfg.Reddit.ClientID,
			ClientSecret: cfg.Reddit.ClientSecret,
			UserAgent:    cfg.Reddit.UserAgent,
		},
		Subreddits: splitList(*subreddits),
		Keywords:   splitList(*keywords),
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Analysis failed")
	}

	for _, warning := range result.Warnings {
		appLogger.Warn(warning)
	}

	if result.Message != "" {
		fmt.Println(result.Message)
		return
	}

	fmt.Println("Sentiment Analysis Complete!")
	fmt.Printf("Total Comments Analyzed: %d\n", result.Total)
	fmt.Printf("Positive: %d\n", result.Positive)
	fmt.Printf("Negative: %d\n", result.Negative)
	fmt.Printf("Neutral: %d\n", result.Neutral)
	fmt.Printf("Results saved in folder: %s\n", result.Label)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
