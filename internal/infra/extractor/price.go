package extractor

import (
	"regexp"
	"strings"
)

// PricePatternsVersion identifies the PricePatterns table. Change it when
// the table or the tie-break in pickPrice changes, so stored previews can
// be told apart. It is reported with every extraction.
const PricePatternsVersion = 2

// PricePattern is one entry of the body-text price table.
type PricePattern struct {
	Name string
	Re   *regexp.Regexp
}

// priceAmount is a number that starts with a digit, may use comma grouping, and
// has an optional fractional part with at least one digit.
const priceAmount = `\d[\d,]*(?:\.\d+)?`

// PricePatterns are tried in order. The first pattern with any match
// decides the price. Within that pattern's matches pickPrice takes the
// first one with a fractional part, so "Now $9.99 was $1,299.99" yields
// "$9.99": the current price is usually stated before the old one.
var PricePatterns = []PricePattern{
	{Name: "dollar", Re: regexp.MustCompile(`\$` + priceAmount)},
	{Name: "rupee", Re: regexp.MustCompile(`₹` + priceAmount)},
	{Name: "iso-code", Re: regexp.MustCompile(`(?i)` + priceAmount + `\s*(?:USD|EUR|GBP|CAD|AUD|INR)`)},
	{Name: "labeled", Re: regexp.MustCompile(`(?i)price[:\s]*\$?` + priceAmount)},
	{Name: "spelled", Re: regexp.MustCompile(`(?i)` + priceAmount + `\s*(?:dollars?|euros?|pounds?|rupees?)`)},
}

const priceElementSelector = `[class*="price"], [id*="price"], [class*="Price"], [id*="Price"]`

var (
	priceElementPattern = regexp.MustCompile(`[\$₹]?` + priceAmount)
	fractionPattern     = regexp.MustCompile(`\.\d`)
)

// FindPrice applies PricePatterns to text and returns the chosen match with
// whitespace collapsed, or "" when nothing matches.
func FindPrice(text string) string {
	for _, p := range PricePatterns {
		if matches := p.Re.FindAllString(text, -1); len(matches) > 0 {
			return strings.Join(strings.Fields(pickPrice(matches)), " ")
		}
	}
	return ""
}

// pickPrice returns the first match with a fractional part. Without one it
// returns the longest match, the earliest on ties.
func pickPrice(matches []string) string {
	best := ""
	for _, m := range matches {
		if fractionPattern.MatchString(m) {
			return m
		}
		if len(m) > len(best) {
			best = m
		}
	}
	return best
}
