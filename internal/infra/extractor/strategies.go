package extractor

import (
	"net/url"
	"strings"

	"link-preview/internal/domain/entity"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"
	"github.com/go-shiori/go-readability"
)

// openGraph reads og:* tags. The first tag of each property wins, as with
// every other meta lookup; the library only fills properties goquery did not
// find (it keeps the last duplicate, so it cannot go first). The price
// extension is read with goquery alone and currency only comes with a price.
func openGraph(p *Page) entity.ExtractedData {
	d := entity.ExtractedData{
		Title:       p.Meta("property", "og:title"),
		Image:       p.Meta("property", "og:image"),
		SiteName:    p.Meta("property", "og:site_name"),
		Description: p.Meta("property", "og:description"),
	}

	og := opengraph.NewOpenGraph()
	if err := og.ProcessHTML(strings.NewReader(p.raw)); err == nil {
		lib := entity.ExtractedData{
			Title:       strings.TrimSpace(og.Title),
			SiteName:    strings.TrimSpace(og.SiteName),
			Description: strings.TrimSpace(og.Description),
		}
		if len(og.Images) > 0 && og.Images[0] != nil {
			lib.Image = strings.TrimSpace(og.Images[0].URL)
		}
		d = d.Merge(lib)
	}

	if price := p.Meta("property", "og:price:amount"); price != "" {
		d.Price = price
		d.Currency = p.Meta("property", "og:price:currency")
	}

	return d
}

func twitterCard(p *Page) entity.ExtractedData {
	return entity.ExtractedData{
		Title:       p.NamedMeta("twitter:title"),
		Image:       p.NamedMeta("twitter:image"),
		SiteName:    p.NamedMeta("twitter:site"),
		Description: p.NamedMeta("twitter:description"),
	}
}

// fallback uses plain document structure when no social metadata exists.
func fallback(p *Page) entity.ExtractedData {
	return entity.ExtractedData{
		Title:       strings.TrimSpace(p.doc.Find("title").First().Text()),
		Image:       firstSignificantImage(p.doc),
		Price:       findPrice(p),
		SiteName:    siteName(p),
		Description: p.Meta("name", "description"),
	}
}

var siteNameSources = []struct{ attr, key string }{
	{"name", "application-name"},
	{"name", "apple-mobile-web-app-title"},
	{"property", "og:site_name"},
	{"name", "twitter:site"},
}

func siteName(p *Page) string {
	for _, src := range siteNameSources {
		if v := p.Meta(src.attr, src.key); v != "" {
			return v
		}
	}
	return ""
}

func findPrice(p *Page) string {
	if price := FindPrice(p.BodyText()); price != "" {
		return price
	}
	var price string
	p.doc.Find(priceElementSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		price = priceElementPattern.FindString(strings.TrimSpace(s.Text()))
		return price == ""
	})
	return price
}

// readabilityExcerpt is the last resort for a description. It scores the
// page content and takes the first paragraph of the main article.
func readabilityExcerpt(p *Page) (d entity.ExtractedData) {
	defer func() {
		if recover() != nil {
			d = entity.ExtractedData{}
		}
	}()

	base := p.baseURL
	if base == nil {
		base = &url.URL{}
	}
	article, err := readability.FromReader(strings.NewReader(p.raw), base)
	if err != nil {
		return d
	}
	d.Description = strings.Join(strings.Fields(article.Excerpt), " ")
	return d
}
