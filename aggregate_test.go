package forexdaily

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/robotomize/forexdaily/label"
	"github.com/robotomize/forexdaily/provider"
)

func testFeed(items ...string) []byte {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns="http://purl.org/rss/1.0/" xmlns:cb="http://www.cbwiki.net/wiki/index.php/Specification_1.2/" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel rdf:about="https://www.ecb.europa.eu/home/html/rss.en.html"><title>ECB</title></channel>
`)
	for _, item := range items {
		sb.WriteString(item)
	}
	sb.WriteString("</rdf:RDF>")

	return []byte(sb.String())
}

func testFeedItem(date, target, value string) string {
	return fmt.Sprintf(`<item>
	<dc:date>%s</dc:date>
	<cb:statistics><cb:exchangeRate>
		<cb:value frequency="daily" decimals="4">%s</cb:value>
		<cb:baseCurrency unit_mult="0">EUR</cb:baseCurrency>
		<cb:targetCurrency>%s</cb:targetCurrency>
	</cb:exchangeRate></cb:statistics>
</item>
`, date, value, target)
}

func testFeedURL(t *testing.T, name string) url.URL {
	t.Helper()
	u, err := url.Parse("https://www.ecb.europa.eu/rss/" + name + ".html")
	if err != nil {
		t.Fatalf("url parse: %v", err)
	}

	return *u
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	const (
		day1 = "2023-02-16T14:15:00+01:00"
		day2 = "2023-02-17T14:15:00+01:00"
	)

	errUnavailable := errors.New("service unavailable")

	testCases := []struct {
		name     string
		feeds    map[string][]byte
		errs     map[string]error
		order    []string
		found    bool
		date     string
		expected map[label.Symbol]float64
		statuses []FeedRespStatus
		failed   bool
	}{
		{
			name: "test_aggregate_latest_date_across_feeds",
			feeds: map[string][]byte{
				"fxref-usd": testFeed(testFeedItem(day2, "USD", "1.0625"), testFeedItem(day1, "USD", "1.0679")),
				"fxref-jpy": testFeed(testFeedItem(day2, "JPY", "143.22"), testFeedItem(day1, "JPY", "143.56")),
			},
			order:    []string{"fxref-usd", "fxref-jpy"},
			found:    true,
			date:     "2023-02-17",
			expected: map[label.Symbol]float64{label.USD: 1.0625, label.JPY: 143.22},
			statuses: []FeedRespStatus{FeedRespStatusOK, FeedRespStatusOK},
		},
		{
			name: "test_aggregate_failed_feed_isolated",
			feeds: map[string][]byte{
				"fxref-usd": testFeed(testFeedItem(day2, "USD", "1.0625")),
			},
			errs:     map[string]error{"fxref-gbp": errUnavailable},
			order:    []string{"fxref-usd", "fxref-gbp"},
			found:    true,
			date:     "2023-02-17",
			expected: map[label.Symbol]float64{label.USD: 1.0625},
			statuses: []FeedRespStatus{FeedRespStatusOK, FeedRespStatusFailed},
			failed:   true,
		},
		{
			name: "test_aggregate_broken_feed_contributes_nothing",
			feeds: map[string][]byte{
				"fxref-usd": testFeed(testFeedItem(day2, "USD", "1.0625")),
				"fxref-chf": []byte(`<?xml version="1.0"?><rdf:RDF xmlns:rdf="r"><item><dc:date>` + day2),
			},
			order:    []string{"fxref-usd", "fxref-chf"},
			found:    true,
			date:     "2023-02-17",
			expected: map[label.Symbol]float64{label.USD: 1.0625},
			statuses: []FeedRespStatus{FeedRespStatusOK, FeedRespStatusFailed},
			failed:   true,
		},
		{
			name: "test_aggregate_later_feed_overwrites",
			feeds: map[string][]byte{
				"fxref-usd":  testFeed(testFeedItem(day2, "USD", "1.0625")),
				"fxref-usd2": testFeed(testFeedItem(day2, "USD", "1.0700")),
			},
			order:    []string{"fxref-usd", "fxref-usd2"},
			found:    true,
			date:     "2023-02-17",
			expected: map[label.Symbol]float64{label.USD: 1.07},
			statuses: []FeedRespStatus{FeedRespStatusOK, FeedRespStatusOK},
		},
		{
			name: "test_aggregate_unknown_currency_dropped",
			feeds: map[string][]byte{
				"fxref-usd": testFeed(testFeedItem(day2, "USD", "1.0625")),
				"fxref-rub": testFeed(testFeedItem(day2, "RUB", "117.2815")),
			},
			order:    []string{"fxref-usd", "fxref-rub"},
			found:    true,
			date:     "2023-02-17",
			expected: map[label.Symbol]float64{label.USD: 1.0625},
			statuses: []FeedRespStatus{FeedRespStatusOK, FeedRespStatusOK},
		},
		{
			name:     "test_aggregate_every_feed_failed",
			errs:     map[string]error{"fxref-usd": errUnavailable, "fxref-jpy": errUnavailable},
			order:    []string{"fxref-usd", "fxref-jpy"},
			found:    false,
			statuses: []FeedRespStatus{FeedRespStatusFailed, FeedRespStatusFailed},
			failed:   true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			src := provider.NewMockSource(ctrl)

			urls := make([]url.URL, 0, len(tc.order))
			for _, name := range tc.order {
				u := testFeedURL(t, name)
				urls = append(urls, u)
				src.EXPECT().FetchFeed(gomock.Any(), u).Return(tc.feeds[name], tc.errs[name])
			}

			agg := Aggregate(context.Background(), src, urls)

			if diff := cmp.Diff(tc.found, agg.Found); diff != "" {
				t.Fatalf("mismatch (-want, +got):\n%s", diff)
			}

			if (agg.Err != nil) != tc.failed {
				t.Errorf("unexpected aggregation error: %v", agg.Err)
			}

			statuses := make([]FeedRespStatus, 0, len(agg.Feeds))
			for i, info := range agg.Feeds {
				if diff := cmp.Diff(urls[i].String(), info.URL); diff != "" {
					t.Errorf("mismatch (-want, +got):\n%s", diff)
				}
				statuses = append(statuses, info.Status)
			}

			if diff := cmp.Diff(tc.statuses, statuses); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}

			if !tc.found {
				return
			}

			if diff := cmp.Diff(tc.date, agg.Record.DateString()); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}

			if diff := cmp.Diff(label.EUR, agg.Record.Base()); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}

			if diff := cmp.Diff(tc.expected, agg.Record.Rates()); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}
