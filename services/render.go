package services

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"price-scout/models"
)

// Formatter holds every locale decision the renderer needs.
type Formatter interface {
	Price(v int64) string
	Amount(v float64) string
	Time(t time.Time) string
}

// PlainFormatter formats prices as a symbol followed by a grouped amount.
type PlainFormatter struct {
	Symbol     string
	Thousands  string
	Decimal    string
	TimeLayout string
	Location   *time.Location
}

// NewPlainFormatter creates a PlainFormatter with the given currency symbol
// and separators, using RFC 1123 timestamps in local time.
func NewPlainFormatter(symbol, thousands, decimal string) *PlainFormatter {
	return &PlainFormatter{
		Symbol:     symbol,
		Thousands:  thousands,
		Decimal:    decimal,
		TimeLayout: time.RFC1123,
		Location:   time.Local,
	}
}

func (f *PlainFormatter) Price(v int64) string {
	return f.Symbol + group(v, f.Thousands)
}

func (f *PlainFormatter) Amount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return f.Symbol + s
	}
	out := group(n, f.Thousands)
	if n == 0 && strings.HasPrefix(whole, "-") {
		out = "-" + out
	}
	return f.Symbol + out + f.Decimal + frac
}

func (f *PlainFormatter) Time(t time.Time) string {
	if f.Location != nil {
		t = t.In(f.Location)
	}
	return t.Format(f.TimeLayout)
}

func group(v int64, sep string) string {
	digits := strconv.FormatInt(v, 10)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if sep == "" || len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}

// ConsoleRenderer prints a report and its summary for one-shot runs.
type ConsoleRenderer struct {
	out io.Writer
	f   Formatter
	top int
}

// NewConsoleRenderer creates a renderer writing to out (stdout when nil)
// that lists at most top products.
func NewConsoleRenderer(out io.Writer, f Formatter, top int) *ConsoleRenderer {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleRenderer{out: out, f: f, top: top}
}

func (r *ConsoleRenderer) Render(rep *models.Report, s *models.Summary) {
	w := r.out
	sep := strings.Repeat("═", 60)
	thin := strings.Repeat("─", 60)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 PRICE REPORT: %s\033[0m\n", rep.Query)
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "  Fetched at : %s\n", r.f.Time(rep.FetchedAt))
	fmt.Fprintf(w, "  Report ID  : %s\n\n", rep.ID)

	if rep.Cheapest == nil {
		fmt.Fprintf(w, "  No results found\n")
		fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
		return
	}

	// Headline
	c := rep.Cheapest
	fmt.Fprintf(w, "\033[1;33m  Cheapest Listing\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  %s\n", truncate(c.Name, 56))
	fmt.Fprintf(w, "  Price    : \033[1;32m%s\033[0m\n", r.f.Price(c.Price))
	fmt.Fprintf(w, "  Seller   : %s\n", orDefault(c.Seller, "unknown"))
	fmt.Fprintf(w, "  Location : %s\n", orDefault(c.Location, "unlisted"))
	if c.Rating != nil {
		fmt.Fprintf(w, "  Rating   : %.1f ★\n", *c.Rating)
	}
	if c.Sponsored {
		fmt.Fprintf(w, "  Sponsored placement\n")
	}
	for _, d := range c.Description {
		fmt.Fprintf(w, "    • %s\n", truncate(d, 54))
	}
	fmt.Fprintf(w, "  %s\n\n", c.URL)

	// Statistics
	fmt.Fprintf(w, "\033[1;33m  Price Statistics\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Listings      : \033[1m%d\033[0m (%d sponsored)\n", s.Count, s.Sponsored)
	if s.MinPrice != nil && s.MaxPrice != nil {
		fmt.Fprintf(w, "  Minimum price : %s\n", r.f.Price(*s.MinPrice))
		fmt.Fprintf(w, "  Maximum price : %s\n", r.f.Price(*s.MaxPrice))
	}
	fmt.Fprintf(w, "  Median price  : %s\n", r.amount(s.Median))
	fmt.Fprintf(w, "  Average price : %s\n", r.amount(s.Average))
	for _, b := range s.Brackets {
		fmt.Fprintf(w, "  ≤ %-12s: %d\n", r.f.Price(b.Threshold), b.Count)
	}
	fmt.Fprintln(w)

	// Ranking
	fmt.Fprintf(w, "\033[1;33m  Cheapest %d of %d\033[0m\n", min(r.top, len(rep.Products)), len(rep.Products))
	fmt.Fprintf(w, "  %s\n", thin)
	for i, l := range rep.Products {
		if i >= r.top {
			break
		}
		fmt.Fprintf(w, "  \033[1m%2d.\033[0m %-38s %s\n", i+1, truncate(l.Name, 36), r.f.Price(l.Price))
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func (r *ConsoleRenderer) amount(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return r.f.Amount(*v)
}

func orDefault(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
