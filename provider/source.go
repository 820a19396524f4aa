package provider

import (
	"context"
	"net/url"
	"time"

	"github.com/robotomize/forexdaily/label"
)

// Source is an interface for getting raw documents from the ECB. Source takes care of receiving data:
// either over the network, from recorded fixtures or both at once
//
//go:generate mockgen -source source.go -destination mock_source.go -package provider
type Source interface {
	// FetchIndex returns the HTML page that lists reference rate feeds
	FetchIndex(ctx context.Context) ([]byte, error)

	// FetchFeed returns the RSS document of a single currency feed
	FetchFeed(ctx context.Context, u url.URL) ([]byte, error)
}

// Quote is one exchange rate observation taken from a feed item.
// 1 Base ~ Value Target, so for EUR -> USD 1.17 one euro buys 1.17 dollars
type Quote struct {
	Time   time.Time
	Base   label.Symbol
	Target label.Symbol
	Value  float64
}
