package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// minImageDimension is the smallest declared width or height accepted.
const minImageDimension = 100

// imageDenylist marks images that are page chrome rather than content.
var imageDenylist = []string{
	"icon", "logo", "avatar", "thumb", "pixel", "tracking", "analytics",
	"favicon", "sprite", "button", "badge",
}

func firstSignificantImage(doc *goquery.Document) string {
	var src string
	doc.Find("img[src]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		candidate := strings.TrimSpace(img.AttrOr("src", ""))
		if candidate != "" && isSignificantImage(candidate, img) {
			src = candidate
			return false
		}
		return true
	})
	return src
}

// isSignificantImage rejects images declared smaller than
// minImageDimension and images whose src, alt or class mention a denylisted
// word.
func isSignificantImage(src string, img *goquery.Selection) bool {
	for _, attr := range []string{"width", "height"} {
		if n, ok := leadingInt(img.AttrOr(attr, "")); ok && n < minImageDimension {
			return false
		}
	}

	combined := strings.ToLower(src + " " + img.AttrOr("alt", "") + " " + img.AttrOr("class", ""))
	for _, word := range imageDenylist {
		if strings.Contains(combined, word) {
			return false
		}
	}
	return true
}

// leadingInt parses the integer prefix of s the way browsers read legacy
// dimension attributes: "120px" is 120, "abc" has no value.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\f")
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		if n < 1<<30 {
			n = n*10 + int(s[digits]-'0')
		}
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
