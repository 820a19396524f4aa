package ecb

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/robotomize/forexdaily/internal/strutil"
	"golang.org/x/net/html"
)

var errHTMLNotValid = errors.New("html not valid")

const (
	feedLinkPattern = "/rss/fxref"
	// the estonian kroon feed is frozen since 2011 and breaks the latest date lookup
	deprecatedFeedMarker = "eek"
)

// ParseIndex extracts reference rate feed links from the ECB RSS index page.
// Links are resolved against base, kept in document order and deduplicated
func ParseIndex(base url.URL, b []byte) ([]url.URL, error) {
	root, err := html.Parse(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: html parse: %v", errHTMLNotValid, err)
	}

	doc := goquery.NewDocumentFromNode(root)

	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !isFeedLink(href) {
			return
		}

		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}

		links = append(links, base.ResolveReference(ref).String())
	})

	links = strutil.Uniques(links)

	list := make([]url.URL, 0, len(links))
	for _, link := range links {
		u, err := url.Parse(link)
		if err != nil {
			continue
		}

		list = append(list, *u)
	}

	return list, nil
}

func isFeedLink(href string) bool {
	return strings.Contains(href, feedLinkPattern) && !strings.Contains(href, deprecatedFeedMarker)
}
