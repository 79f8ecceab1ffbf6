package marketplace

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"price-scout/metrics"
	"price-scout/models"
	"price-scout/utils"
)

// BrowserFetcher renders search pages in headless Chrome, for marketplaces
// that build their result cards client-side.
type BrowserFetcher struct {
	opts       Options
	chromeBin  string
	renderWait time.Duration
	logger     *utils.Logger
}

// NewBrowserFetcher creates a BrowserFetcher. An empty chromeBin means
// search PATH and the usual install locations.
func NewBrowserFetcher(opts Options, chromeBin string, logger *utils.Logger) *BrowserFetcher {
	return &BrowserFetcher{
		opts:       opts,
		chromeBin:  chromeBin,
		renderWait: 3 * time.Second,
		logger:     logger,
	}
}

// Fetch implements Fetcher. One browser is shared by all pages; each page
// gets its own tab.
func (f *BrowserFetcher) Fetch(ctx context.Context, req models.SearchRequest) ([]*models.Page, error) {
	start := time.Now()
	defer func() {
		metrics.FetchDuration.WithLabelValues("browser").Observe(time.Since(start).Seconds())
	}()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(f.opts.UserAgent),
	)
	if bin := findChromeBinary(f.chromeBin); bin != "" {
		f.logger.Info("[fetcher] Using browser binary: %s", bin)
		allocOpts = append(allocOpts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	if err := chromedp.Run(browserCtx); err != nil {
		return nil, &FetchError{Page: 1, Err: utils.Permanent(err)}
	}

	return fetchPages(ctx, f.opts, f.logger, "browser", req,
		func(ctx context.Context, number int, pageURL string) (*models.Page, int, error) {
			return f.render(browserCtx, ctx, number, pageURL)
		})
}

func (f *BrowserFetcher) render(browserCtx, reqCtx context.Context, number int, pageURL string) (*models.Page, int, error) {
	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(reqCtx, cancelTab)
	defer stop()

	timeout := f.opts.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)
	defer cancelTimeout()

	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(pageURL))
	status := 0
	if resp != nil {
		status = int(resp.Status)
	}
	if err != nil {
		return nil, status, err
	}
	if status >= 400 {
		return nil, status, classify(status, errors.New(resp.StatusText))
	}

	var html string
	err = chromedp.Run(tabCtx,
		chromedp.Sleep(f.renderWait),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(f.renderWait/2),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, status, err
	}
	if html == "" {
		return nil, status, errEmptyBody
	}

	return &models.Page{
		Number:      number,
		URL:         pageURL,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(html),
		FetchedAt:   time.Now(),
	}, status, nil
}

// findChromeBinary returns explicit when set, otherwise the first Chrome or
// Chromium found on PATH or at a usual install location.
func findChromeBinary(explicit string) string {
	if explicit != "" {
		return explicit
	}
	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
