package marketplace

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"price-scout/metrics"
	"price-scout/models"
	"price-scout/utils"
)

const acceptHeader = "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8"

// CollyFetcher downloads search pages over plain HTTP with a colly collector.
type CollyFetcher struct {
	opts      Options
	logger    *utils.Logger
	transport http.RoundTripper
}

// NewCollyFetcher creates a CollyFetcher using http.DefaultTransport.
func NewCollyFetcher(opts Options, logger *utils.Logger) *CollyFetcher {
	return &CollyFetcher{opts: opts, logger: logger, transport: http.DefaultTransport}
}

// Fetch implements Fetcher.
func (f *CollyFetcher) Fetch(ctx context.Context, req models.SearchRequest) ([]*models.Page, error) {
	start := time.Now()
	defer func() {
		metrics.FetchDuration.WithLabelValues("http").Observe(time.Since(start).Seconds())
	}()

	f.logger.Info("[fetcher] Fetching %d page(s) for %q", max(req.Pages, 1), req.Query)
	return fetchPages(ctx, f.opts, f.logger, "http", req, f.visit)
}

// newCollector builds a collector whose requests are aborted when ctx ends.
func (f *CollyFetcher) newCollector(ctx context.Context) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(f.opts.UserAgent),
		colly.AllowURLRevisit(),
	)
	if f.opts.RequestTimeout > 0 {
		c.SetRequestTimeout(f.opts.RequestTimeout)
	}
	c.WithTransport(&contextTransport{ctx: ctx, base: f.transport})
	return c
}

// visit performs one attempt at one page on a fresh collector bound to ctx,
// so cancelling the fetch aborts a download already in flight.
func (f *CollyFetcher) visit(ctx context.Context, number int, pageURL string) (*models.Page, int, error) {
	c := f.newCollector(ctx)

	var (
		page   *models.Page
		status int
	)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", acceptHeader)
		f.logger.Debug("[fetcher] Visiting %s", r.URL)
	})

	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		page = &models.Page{
			Number:      number,
			URL:         r.Request.URL.String(),
			ContentType: r.Headers.Get("Content-Type"),
			Body:        r.Body,
			FetchedAt:   time.Now(),
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, status, classify(status, err)
	}
	if page == nil || len(bytes.TrimSpace(page.Body)) == 0 {
		return nil, status, errEmptyBody
	}
	return page, status, nil
}

// contextTransport ties every request made by the collector to ctx, so
// cancelling a report aborts in-flight downloads. The derived request context
// keeps the client's own timeout.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCtx, cancel := context.WithCancel(req.Context())
	context.AfterFunc(t.ctx, cancel)
	return t.base.RoundTrip(req.WithContext(reqCtx))
}
