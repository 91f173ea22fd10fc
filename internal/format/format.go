// Package format renders funding and investor values for output sheets.
package format

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FundingAmount renders a USD amount the way the outreach sheets expect:
// millions with one decimal (a trailing ".0" dropped), otherwise rounded
// thousands, otherwise the plain number. A thousands value that rounds up to
// 1000k is reported as "1.0M".
func FundingAmount(amount float64) string {
	if amount > 999999 {
		s := strconv.FormatFloat(roundHalfUp(amount/1e6, 1), 'f', 1, 64) + "M"
		return strings.Replace(s, ".0", "", 1)
	}

	if amount > 999 {
		s := strconv.FormatFloat(roundHalfUp(amount/1e3, 0), 'f', 0, 64) + "k"
		if s == "1000k" {
			return "1.0M"
		}
		return s
	}

	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// LeadInvestor returns the first entry of a comma-separated investor list.
func LeadInvestor(investors string) string {
	if investors == "" {
		return ""
	}
	first, _, _ := strings.Cut(investors, ",")
	return first
}

// LowercaseFirst lower-cases the first letter of a funding type, so
// "Series A" reads "series A" mid-sentence. "Pre-Seed" becomes "pre-seed".
func LowercaseFirst(s string) string {
	if s == "" {
		return s
	}
	if s == "Pre-Seed" {
		return "pre-seed"
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

func roundHalfUp(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
