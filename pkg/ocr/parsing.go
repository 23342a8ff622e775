package ocr

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoAmount is returned when no plausible monetary amount can be extracted.
var ErrNoAmount = errors.New("no amount detected")

// moneyRE accepts $-prefixed numbers, comma-grouped numbers, or numbers with
// a two-digit cents part. Bare digit runs are ignored so tax ids and account
// numbers do not read as amounts.
var moneyRE = regexp.MustCompile(`\$\s*[0-9][0-9,]*(?:\.[0-9]{2})?|[0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]{2})?|[0-9]+\.[0-9]{2}`)

// ParseAmount scans OCR text and returns the largest candidate amount in
// whole dollars.
func ParseAmount(text string) (int64, error) {
	var best int64
	for _, m := range moneyRE.FindAllString(text, -1) {
		v, err := parseMatch(m)
		if err != nil {
			continue
		}
		if v > best {
			best = v
		}
	}
	if best == 0 {
		return 0, ErrNoAmount
	}
	return best, nil
}

// parseMatch normalizes one matched substring: strips the currency marker,
// drops a trailing two-digit cents part, removes grouping commas.
func parseMatch(m string) (int64, error) {
	m = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(m), "$"))
	if i := strings.LastIndex(m, "."); i >= 0 && len(m)-i == 3 {
		m = m[:i]
	}
	m = strings.ReplaceAll(m, ",", "")
	if m == "" {
		return 0, ErrNoAmount
	}
	v, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		v = -v
	}
	return v, nil
}
