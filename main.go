package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"price-scout/api"
	"price-scout/config"
	"price-scout/metrics"
	"price-scout/scraper/marketplace"
	"price-scout/services"
	"price-scout/storage"
	"price-scout/utils"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	logger := utils.NewLoggerTo(os.Stdout, os.Stderr, utils.ParseLevel(cfg.LogLevel))

	logger.Info("=== Price Scout starting (%s mode) ===", cfg.RunMode)
	logger.Info("Config: query: %q | pages: %d | listings/page: %d | concurrency: %d | rate: %dms | fetch: %s",
		cfg.SearchQuery, cfg.PagesToScrape, cfg.ListingsPerPage, cfg.MaxConcurrency, cfg.RateLimitMs, cfg.FetchMode)

	metrics.Init("price-scout", version, cfg.FetchMode)

	fetchOpts := marketplace.Options{
		URLTemplate:    cfg.SearchURLTemplate,
		UserAgent:      cfg.UserAgent,
		RequestTimeout: cfg.RequestTimeout,
		MaxConcurrency: cfg.MaxConcurrency,
		RateLimit:      cfg.RateLimit(),
		MaxRetries:     cfg.MaxRetries,
		RetryBaseDelay: cfg.RetryBaseDelay(),
	}

	var fetcher marketplace.Fetcher
	switch cfg.FetchMode {
	case "browser":
		fetcher = marketplace.NewBrowserFetcher(fetchOpts, cfg.ChromeBin, logger)
	case "http":
		fetcher = marketplace.NewCollyFetcher(fetchOpts, logger)
	default:
		logger.Error("Unknown FETCH_MODE %q (want http or browser)", cfg.FetchMode)
		os.Exit(1)
	}

	var raw storage.RawCardWriter
	if cfg.RawCSVPath != "" {
		csvWriter, err := storage.NewCSVWriter(cfg.RawCSVPath)
		if err != nil {
			logger.Error("Failed to create CSV writer: %v", err)
			os.Exit(1)
		}
		raw = csvWriter
		logger.Info("Raw cards will be dumped to %s", csvWriter.Path())
	}

	svc := services.NewReportService(services.Options{
		Query:         cfg.SearchQuery,
		Pages:         cfg.PagesToScrape,
		PageSize:      cfg.ListingsPerPage,
		PriceBrackets: cfg.PriceBrackets,
	}, fetcher, raw, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.RunMode {
	case "serve":
		if utils.ParseLevel(cfg.LogLevel) != utils.LevelDebug {
			gin.SetMode(gin.ReleaseMode)
		}
		if err := api.Serve(ctx, cfg.HTTPAddr, api.NewRouter(svc, logger), logger); err != nil {
			logger.Error("HTTP server failed: %v", err)
			os.Exit(1)
		}
	case "once":
		report, err := svc.Build(ctx)
		if err != nil {
			if errors.Is(err, marketplace.ErrFetchFailure) {
				logger.Error("Marketplace data unavailable: %v", err)
			} else {
				logger.Error("Report failed: %v", err)
			}
			os.Exit(1)
		}
		renderer := services.NewConsoleRenderer(os.Stdout, services.NewPlainFormatter(cfg.CurrencySymbol, cfg.ThousandsSep, cfg.DecimalSep), 10)
		renderer.Render(report, svc.Summarize(report))
	default:
		logger.Error("Unknown RUN_MODE %q (want once or serve)", cfg.RunMode)
		os.Exit(1)
	}
}
