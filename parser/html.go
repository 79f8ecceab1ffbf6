package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cardSelectors are tried in order; the first one matching anything wins.
var cardSelectors = []string{
	"[data-testid='product-card']",
	"[data-testid='master-product-card']",
	"[data-testid='divProductWrapper']",
	"[itemtype*='schema.org/Product']",
	"div.product-card",
	"li.product-card",
	"article.product",
	"li.s-item",
}

// selector reads either the text of the first match or one of its attributes.
type selector struct {
	css  string
	attr string
}

var fieldSelectors = map[Field][]selector{
	FieldName: {
		{css: "[data-testid='product-name']"},
		{css: "[data-testid='spnSRPProdName']"},
		{css: "[itemprop='name']", attr: "content"},
		{css: "[itemprop='name']"},
		{css: ".product-name"},
		{css: ".s-item__title"},
		{css: "h2"},
		{css: "h3"},
		{css: "a[title]", attr: "title"},
	},
	FieldPrice: {
		{css: "[itemprop='price']", attr: "content"},
		{css: "[data-testid='product-price']"},
		{css: "[data-testid='spnSRPProdPrice']"},
		{css: "[itemprop='price']"},
		{css: ".product-price"},
		{css: ".price"},
		{css: ".s-item__price"},
	},
	FieldURL: {
		{css: "a[data-testid='product-link']", attr: "href"},
		{css: "[itemprop='url']", attr: "href"},
		{css: "[itemprop='url']", attr: "content"},
		{css: "a.product-link", attr: "href"},
		{css: "a[href]", attr: "href"},
	},
	FieldSeller: {
		{css: "[data-testid='shop-name']"},
		{css: "[data-testid='spnSRPProdTabShopName']"},
		{css: "[itemprop='seller'] [itemprop='name']"},
		{css: ".seller"},
		{css: ".shop-name"},
	},
	FieldLocation: {
		{css: "[data-testid='shop-location']"},
		{css: "[data-testid='spnSRPProdTabShopLoc']"},
		{css: "[itemprop='areaServed']"},
		{css: ".location"},
		{css: ".shop-location"},
	},
	FieldRating: {
		{css: "[itemprop='ratingValue']", attr: "content"},
		{css: "[itemprop='ratingValue']"},
		{css: "[data-testid='product-rating']"},
		{css: ".rating"},
		{css: "[aria-label*='rating']", attr: "aria-label"},
	},
	FieldReviews: {
		{css: "[itemprop='reviewCount']", attr: "content"},
		{css: "[itemprop='reviewCount']"},
		{css: "[data-testid='review-count']"},
		{css: ".review-count"},
		{css: ".reviews"},
	},
	FieldSold: {
		{css: "[data-testid='product-sold']"},
		{css: "[data-testid='spnIntegrityLabel']"},
		{css: ".sold"},
		{css: ".sold-count"},
	},
	FieldDescription: {
		{css: "[data-testid='product-description'] li"},
		{css: ".description li"},
		{css: "ul.bullets li"},
		{css: ".description"},
	},
}

// sponsoredSelectors mark promoted placement when present inside a card.
var sponsoredSelectors = []string{
	"[data-testid='ad-badge']",
	"[data-testid='linkProductAds']",
	".sponsored",
	".ad-label",
	".badge-ad",
}

func splitHTML(body []byte) ([]Card, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", ErrUnexpectedShape, err)
	}

	for _, css := range cardSelectors {
		items := doc.Find(css)
		if items.Length() == 0 {
			continue
		}
		cards := make([]Card, 0, items.Length())
		items.Each(func(_ int, s *goquery.Selection) {
			cards = append(cards, &htmlCard{sel: s})
		})
		return cards, nil
	}
	return []Card{}, nil
}

// htmlCard is a Card backed by a goquery selection of one listing element.
type htmlCard struct {
	sel *goquery.Selection
}

func (c *htmlCard) Text(f Field) (string, bool) {
	if f == FieldURL && goquery.NodeName(c.sel) == "a" {
		if href, ok := c.sel.Attr("href"); ok && strings.TrimSpace(href) != "" {
			return strings.TrimSpace(href), true
		}
	}
	for _, sel := range fieldSelectors[f] {
		node := c.sel.Find(sel.css).First()
		if node.Length() == 0 {
			continue
		}
		var val string
		if sel.attr != "" {
			v, ok := node.Attr(sel.attr)
			if !ok {
				continue
			}
			val = v
		} else {
			val = node.Text()
		}
		if val = normaliseText(val); val != "" {
			return val, true
		}
	}
	return "", false
}

func (c *htmlCard) List(f Field) []string {
	for _, sel := range fieldSelectors[f] {
		nodes := c.sel.Find(sel.css)
		if nodes.Length() == 0 {
			continue
		}
		var out []string
		if nodes.Length() == 1 && goquery.NodeName(nodes) != "li" {
			out = splitLines(nodes.Text())
		} else {
			nodes.Each(func(_ int, s *goquery.Selection) {
				if v := normaliseText(s.Text()); v != "" {
					out = append(out, v)
				}
			})
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func (c *htmlCard) Flag(f Field) (bool, bool) {
	if f != FieldSponsored {
		return false, false
	}
	for _, attr := range []string{"data-sponsored", "data-ad"} {
		if v, ok := c.sel.Attr(attr); ok {
			return parseFlag(v)
		}
	}
	for _, css := range sponsoredSelectors {
		if c.sel.Find(css).Length() > 0 {
			return true, true
		}
	}
	return false, false
}

// splitLines turns a block of text into trimmed, non-empty lines in order.
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if v := normaliseText(line); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parseFlag reads loosely-typed booleans like "true", "1", "yes".
func parseFlag(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "y":
		return true, true
	case "false", "0", "no", "n":
		return false, true
	}
	return false, false
}
