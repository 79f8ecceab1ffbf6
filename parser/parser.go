package parser

import (
	"net/url"

	"price-scout/metrics"
	"price-scout/models"
	"price-scout/utils"
)

// Result is the parser's output for a whole fetch.
type Result struct {
	Candidates []*models.Listing
	Raw        []models.RawCard
	Malformed  int
}

// Parser maps fetched pages to candidate listings in discovery order.
type Parser struct {
	logger *utils.Logger
}

// New creates a Parser with the given logger.
func New(logger *utils.Logger) *Parser {
	return &Parser{logger: logger}
}

// ParsePages splits and parses every page in order. Malformed cards are
// dropped and counted; only a page that cannot be split at all is an error.
func (p *Parser) ParsePages(pages []*models.Page) (*Result, error) {
	res := &Result{Candidates: make([]*models.Listing, 0)}

	for _, page := range pages {
		cards, err := SplitPage(page)
		if err != nil {
			pe := &PageError{Page: pageNumber(page), Err: err}
			if page != nil {
				pe.URL = page.URL
			}
			return nil, pe
		}

		base, _ := url.Parse(page.URL)
		kept := 0
		for i, card := range cards {
			raw := RawOf(card)
			raw.Page = page.Number
			raw.Position = i + 1
			res.Raw = append(res.Raw, raw)

			listing, ok := p.safeParse(card, base)
			if !ok {
				res.Malformed++
				metrics.CardsParsed.WithLabelValues("malformed").Inc()
				p.logger.Debug("[parser] Page %d card %d dropped: missing name, url or price (%q)",
					page.Number, i+1, raw.Name)
				continue
			}
			metrics.CardsParsed.WithLabelValues("ok").Inc()
			res.Candidates = append(res.Candidates, listing)
			kept++
		}
		p.logger.Debug("[parser] Page %d: %d cards, %d candidates", page.Number, len(cards), kept)
	}

	p.logger.Info("[parser] Parsed %d candidates (dropped %d malformed cards)",
		len(res.Candidates), res.Malformed)
	return res, nil
}

// safeParse keeps a card whose shape trips an extractor from taking the
// batch down with it.
func (p *Parser) safeParse(c Card, base *url.URL) (l *models.Listing, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("[parser] Extractor panic on card: %v", r)
			l, ok = nil, false
		}
	}()
	return ParseCard(c, base)
}

func pageNumber(p *models.Page) int {
	if p == nil {
		return 0
	}
	return p.Number
}
