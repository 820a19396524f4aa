package ecb

import (
	"errors"
)

var (
	// ErrDecodeToken the document is not well-formed XML, nothing of it can be trusted
	ErrDecodeToken = errors.New("decoding of the markup failed")

	errItemNotValid    = errors.New("item is not valid")
	errValueNotValid   = errors.New("value is not valid")
	errDateNotValid    = errors.New("date is not valid")
	errCcyNotFound     = errors.New("currency symbol not found")
	errMissingIterFunc = errors.New("missing iter function")
)

const (
	rssRootElement = "RDF"
	rssItemElement = "item"
)

// rssItem is the part of an RSS 1.0 item the reference rate is read from.
// Tags carry no namespace so dc:date, cb:statistics and friends match by local name
type rssItem struct {
	Date       string `xml:"date"`
	Statistics []struct {
		ExchangeRate []struct {
			Value          string `xml:"value"`
			BaseCurrency   string `xml:"baseCurrency"`
			TargetCurrency string `xml:"targetCurrency"`
		} `xml:"exchangeRate"`
	} `xml:"statistics"`
}
