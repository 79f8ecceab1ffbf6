package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	SearchQuery       string
	SearchURLTemplate string
	PagesToScrape     int
	ListingsPerPage   int

	MaxConcurrency   int
	RateLimitMs      int
	MaxRetries       int
	RetryBaseDelayMs int
	RequestTimeout   time.Duration
	UserAgent        string

	FetchMode string
	ChromeBin string

	RunMode       string
	HTTPAddr      string
	RawCSVPath    string
	PriceBrackets []int64
	LogLevel      string

	// Console output only; the report itself carries raw amounts.
	CurrencySymbol string
	ThousandsSep   string
	DecimalSep     string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		SearchQuery:       getEnv("SEARCH_QUERY", "mechanical keyboard"),
		SearchURLTemplate: getEnv("SEARCH_URL_TEMPLATE", "https://marketplace.example/search?q={query}&sort=price_asc&page={page}&rows={size}"),
		PagesToScrape:     getEnvInt("PAGES_TO_SCRAPE", 2),
		ListingsPerPage:   getEnvInt("LISTINGS_PER_PAGE", 60),

		MaxConcurrency:   getEnvInt("MAX_CONCURRENCY", 2),
		RateLimitMs:      getEnvInt("RATE_LIMIT_MS", 1000),
		MaxRetries:       getEnvInt("MAX_RETRIES", 2),
		RetryBaseDelayMs: getEnvInt("RETRY_BASE_DELAY_MS", 1000),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		UserAgent: getEnv("USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),

		FetchMode: strings.ToLower(getEnv("FETCH_MODE", "http")),
		ChromeBin: getEnv("CHROME_BIN", ""),

		RunMode:       strings.ToLower(getEnv("RUN_MODE", "once")),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		RawCSVPath:    getEnv("RAW_CSV_PATH", ""),
		PriceBrackets: getEnvInt64List("PRICE_BRACKETS", []int64{100000, 250000, 500000}),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "Rp"),
		ThousandsSep:   getEnv("THOUSANDS_SEP", "."),
		DecimalSep:     getEnv("DECIMAL_SEP", ","),
	}
}

// RetryBaseDelay returns the first back-off interval.
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMs) * time.Millisecond
}

// RateLimit returns the minimum spacing between page requests.
func (c *Config) RateLimit() time.Duration {
	return time.Duration(c.RateLimitMs) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvInt64List parses a comma-separated list; any bad entry discards the
// whole value in favour of the fallback.
func getEnvInt64List(key string, fallback []int64) []int64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []int64
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return fallback
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
