// Package marketplace fetches raw search-result pages from the marketplace.
// It only gets bytes; interpreting them is the parser's job.
package marketplace

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"price-scout/metrics"
	"price-scout/models"
	"price-scout/utils"
)

// ErrFetchFailure matches every error a Fetcher returns.
var ErrFetchFailure = errors.New("marketplace fetch failed")

var errEmptyBody = errors.New("empty response body")

// FetchError describes the page that could not be retrieved.
type FetchError struct {
	Page       int
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch page %d", e.Page)
	if e.URL != "" {
		msg += " (" + e.URL + ")"
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.StatusCode)
	}
	return msg + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailure }

// Fetcher retrieves every page for a search request, in page order. Either
// all pages are returned or a *FetchError is.
type Fetcher interface {
	Fetch(ctx context.Context, req models.SearchRequest) ([]*models.Page, error)
}

// Options configures both fetcher implementations.
type Options struct {
	URLTemplate    string
	UserAgent      string
	RequestTimeout time.Duration
	MaxConcurrency int
	RateLimit      time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
}

// BuildSearchURL fills the {query}, {page} and {size} placeholders of an
// endpoint template. The template carries the ascending-price sort parameter.
func BuildSearchURL(template, query string, page, size int) (string, error) {
	r := strings.NewReplacer(
		"{query}", url.QueryEscape(query),
		"{page}", strconv.Itoa(page),
		"{size}", strconv.Itoa(size),
	)
	raw := r.Replace(template)

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid search url %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("search url %q must be absolute http(s)", raw)
	}
	return u.String(), nil
}

// pageFunc performs one attempt at one page and reports the HTTP status seen.
type pageFunc func(ctx context.Context, number int, pageURL string) (*models.Page, int, error)

// fetchPages runs fetch for every page through a rate-limited worker pool
// with retries. The first page to exhaust its retries cancels the rest.
func fetchPages(ctx context.Context, opts Options, logger *utils.Logger, mode string,
	req models.SearchRequest, fetch pageFunc) ([]*models.Page, error) {

	count := req.Pages
	if count < 1 {
		count = 1
	}

	urls := make([]string, count)
	for i := range urls {
		u, err := BuildSearchURL(opts.URLTemplate, req.Query, i+1, req.PageSize)
		if err != nil {
			return nil, &FetchError{Page: i + 1, Err: err}
		}
		urls[i] = u
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	retries := opts.MaxRetries
	if retries < 1 {
		retries = 1
	}
	retry := &utils.RetryConfig{
		MaxAttempts: retries + 1,
		BaseDelay:   opts.RetryBaseDelay,
		Logger:      logger,
	}
	pool := utils.NewWorkerPool(opts.MaxConcurrency, opts.RateLimit)

	pages := make([]*models.Page, count)
	var (
		mu       sync.Mutex
		firstErr error
	)

	for i := range urls {
		i := i
		pool.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			status := 0
			err := retry.Do(ctx, fmt.Sprintf("fetch-page-%d", i+1), func() error {
				page, code, err := fetch(ctx, i+1, urls[i])
				status = code
				metrics.PagesFetched.WithLabelValues(mode, statusLabel(code, err)).Inc()
				if err != nil {
					return err
				}
				pages[i] = page
				return nil
			})
			if err == nil {
				logger.Debug("[fetcher] Page %d fetched (%d bytes)", i+1, len(pages[i].Body))
				return
			}

			mu.Lock()
			if firstErr == nil {
				firstErr = &FetchError{Page: i + 1, URL: urls[i], StatusCode: status, Err: err}
				cancel()
			}
			mu.Unlock()
		})
	}
	pool.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Page: 1, URL: urls[0], Err: err}
	}
	return pages, nil
}

// classify turns a failed attempt into an error the retry loop understands:
// client errors other than 408 and 429 will not improve on retry.
func classify(status int, err error) error {
	if err == nil {
		return nil
	}
	if status >= 400 && status < 500 &&
		status != http.StatusRequestTimeout && status != http.StatusTooManyRequests {
		return utils.Permanent(err)
	}
	return err
}

func statusLabel(code int, err error) string {
	if code != 0 {
		return strconv.Itoa(code)
	}
	if err != nil {
		return "error"
	}
	return "ok"
}
