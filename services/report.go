package services

import (
	"context"
	"errors"
	"time"

	"price-scout/metrics"
	"price-scout/models"
	"price-scout/parser"
	"price-scout/scraper/marketplace"
	"price-scout/storage"
	"price-scout/utils"
)

// Options is everything the pipeline needs from its caller.
type Options struct {
	Query         string
	Pages         int
	PageSize      int
	PriceBrackets []int64
	// Now stamps reports; nil means time.Now.
	Now func() time.Time
}

// ReportService runs fetch → parse → qualify → assemble for one query.
// Each Build is independent; nothing is cached between runs.
type ReportService struct {
	opts      Options
	fetcher   marketplace.Fetcher
	parser    *parser.Parser
	qualifier *Qualifier
	assembler *Assembler
	raw       storage.RawCardWriter
	logger    *utils.Logger
}

// NewReportService wires the pipeline. raw may be nil to skip the raw dump.
func NewReportService(opts Options, fetcher marketplace.Fetcher, raw storage.RawCardWriter, logger *utils.Logger) *ReportService {
	return &ReportService{
		opts:      opts,
		fetcher:   fetcher,
		parser:    parser.New(logger),
		qualifier: NewQualifier(logger),
		assembler: NewAssembler(opts.Now),
		raw:       raw,
		logger:    logger,
	}
}

// Build produces a report, or an error matching marketplace.ErrFetchFailure.
// An empty result is a report, not an error.
func (s *ReportService) Build(ctx context.Context) (*models.Report, error) {
	req := models.SearchRequest{Query: s.opts.Query, Pages: s.opts.Pages, PageSize: s.opts.PageSize}

	pages, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		metrics.ReportsBuilt.WithLabelValues("fetch_failure").Inc()
		s.logger.Error("[report] Fetch failed: %v", err)
		return nil, err
	}

	res, err := s.parser.ParsePages(pages)
	if err != nil {
		metrics.ReportsBuilt.WithLabelValues("fetch_failure").Inc()
		s.logger.Error("[report] Unusable response: %v", err)
		return nil, asFetchError(err)
	}

	if s.raw != nil {
		if err := s.raw.WriteRaw(res.Raw); err != nil {
			s.logger.Warn("[report] Raw card dump failed: %v", err)
		}
	}

	qualifying := s.qualifier.Qualify(res.Candidates)
	report := s.assembler.Assemble(s.opts.Query, qualifying)

	outcome := "ok"
	if len(report.Products) == 0 {
		outcome = "empty"
	}
	metrics.ReportsBuilt.WithLabelValues(outcome).Inc()
	metrics.ReportProducts.Set(float64(len(report.Products)))

	if report.Cheapest != nil {
		s.logger.Info("[report] %s: %d listings, cheapest %d (%s)",
			report.ID, len(report.Products), report.Cheapest.Price, report.Cheapest.URL)
	} else {
		s.logger.Info("[report] %s: no qualifying listings for %q", report.ID, report.Query)
	}
	return report, nil
}

// Summarize derives the report's statistics with the configured brackets.
func (s *ReportService) Summarize(r *models.Report) *models.Summary {
	return Summarize(r.Products, s.opts.PriceBrackets)
}

// asFetchError reports a page the parser could not split as a fetch failure:
// the bytes arrived but were not a search result.
func asFetchError(err error) error {
	fe := &marketplace.FetchError{Err: err}
	var pe *parser.PageError
	if errors.As(err, &pe) {
		fe.Page, fe.URL, fe.Err = pe.Page, pe.URL, pe.Err
	}
	return fe
}
