package parser

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// maxCount bounds review counts; anything larger is not a real count.
const maxCount = math.MaxInt32

var (
	// amountRegexp matches the first amount: either digit groups joined by
	// thousands separators, or a plain digit run, each with an optional
	// 1–2 digit fractional tail.
	amountRegexp = regexp.MustCompile(
		`(\d{1,3}(?:[.,' \x{00A0}\x{202F}]\d{3})+|\d+)(?:[.,]\d{1,2})?`)
	// ratingRegexp captures the first decimal number, "," or "." as separator
	ratingRegexp = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	// countRegexp captures a count with an optional thousand/million suffix
	countRegexp = regexp.MustCompile(`(?i)(\d[\d.,]*)\s*(?:(rb|jt|k|m)\b)?`)
)

// ParsePrice extracts a positive whole amount from a formatted price such as
// "Rp1.250.000", "$1,299.99" or "Rp15.000 - Rp20.000". Currency symbols and
// thousands separators are stripped and the fractional sub-unit is dropped.
// Zero, negative or unreadable prices return false.
func ParsePrice(raw string) (int64, bool) {
	loc := amountRegexp.FindStringSubmatchIndex(raw)
	if loc == nil {
		return 0, false
	}
	if strings.HasSuffix(strings.TrimSpace(raw[:loc[0]]), "-") {
		return 0, false
	}

	whole := raw[loc[2]:loc[3]]
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, whole)

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ParseRating extracts a rating in [0, 5]. Out-of-range values are reported
// as absent rather than clamped.
func ParseRating(raw string) (float64, bool) {
	loc := ratingRegexp.FindStringIndex(raw)
	if loc == nil {
		return 0, false
	}
	if strings.HasSuffix(strings.TrimSpace(raw[:loc[0]]), "-") {
		return 0, false
	}
	match := raw[loc[0]:loc[1]]
	val, err := strconv.ParseFloat(strings.Replace(match, ",", ".", 1), 64)
	if err != nil || math.IsNaN(val) || val < 0 || val > 5 {
		return 0, false
	}
	return val, true
}

// ParseCount extracts a non-negative count such as "(1.234)", "1,2rb" or "2.5k".
func ParseCount(raw string) (int, bool) {
	m := countRegexp.FindStringSubmatchIndex(raw)
	if m == nil {
		return 0, false
	}
	if strings.HasSuffix(strings.TrimSpace(raw[:m[0]]), "-") {
		return 0, false
	}

	number := strings.TrimRight(raw[m[2]:m[3]], ".,")
	suffix := ""
	if m[4] >= 0 {
		suffix = strings.ToLower(raw[m[4]:m[5]])
	}

	multiplier := 1.0
	switch suffix {
	case "k", "rb":
		multiplier = 1e3
	case "m", "jt":
		multiplier = 1e6
	}

	if suffix == "" {
		n, err := strconv.Atoi(strings.NewReplacer(".", "", ",", "").Replace(number))
		if err != nil || n < 0 || n > maxCount {
			return 0, false
		}
		return n, true
	}

	val, err := strconv.ParseFloat(strings.Replace(number, ",", ".", 1), 64)
	if err != nil || val < 0 {
		return 0, false
	}
	n := math.Round(val * multiplier)
	if n > maxCount {
		return 0, false
	}
	return int(n), true
}

// CanonicalURL resolves raw against base and normalises it into the form used
// as a listing's identity: absolute http(s), lower-case host, no fragment,
// no utm_* tracking parameters, remaining query keys sorted.
func CanonicalURL(raw string, base *url.URL) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	q := u.Query()
	for key := range q {
		if strings.HasPrefix(strings.ToLower(key), "utm_") {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), true
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
