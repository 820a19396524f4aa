package ecb

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/robotomize/forexdaily/label"
	"github.com/robotomize/forexdaily/provider"
	"golang.org/x/net/html/charset"
)

// dateLayouts accepted for dc:date, tried in order
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
}

// DecodeRSS parses an ECB reference rate feed (RSS 1.0, RDF root) in streaming mode and calls iterFunc
// for every valid item. Items with a missing or malformed date, value or currency are skipped.
// A document that is not well-formed returns ErrDecodeToken; quotes handed to iterFunc before the
// failure should then be discarded by the caller
func DecodeRSS(b []byte, iterFunc func(q provider.Quote) error) error {
	if iterFunc == nil {
		return errMissingIterFunc
	}

	decoder := xml.NewDecoder(bytes.NewReader(b))
	decoder.CharsetReader = charset.NewReaderLabel

	depth := 0
TokenLoop:
	for {
		token, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break TokenLoop
			}

			return decodeErr(err)
		}

		switch tp := token.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 && tp.Name.Local != rssRootElement {
				// not a feed document, nothing to read
				return nil
			}

			if depth != 2 || tp.Name.Local != rssItemElement {
				continue TokenLoop
			}

			var item rssItem
			if err := decoder.DecodeElement(&item, &tp); err != nil {
				return decodeErr(err)
			}
			// DecodeElement consumed the closing tag
			depth--

			quote, err := item.quote()
			if err != nil {
				continue TokenLoop
			}

			if err := iterFunc(quote); err != nil {
				return fmt.Errorf("handle func: %w", err)
			}
		case xml.EndElement:
			depth--
		}
	}

	return nil
}

func decodeErr(err error) error {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("%w: %v", ErrDecodeToken, syntaxErr.Error())
	}

	return fmt.Errorf("decode token: %w", err)
}

func (i rssItem) quote() (provider.Quote, error) {
	var q provider.Quote

	if len(i.Statistics) == 0 || len(i.Statistics[0].ExchangeRate) == 0 {
		return q, errItemNotValid
	}

	rate := i.Statistics[0].ExchangeRate[0]

	t, err := parseDate(i.Date)
	if err != nil {
		return q, err
	}

	value, err := parseValue(rate.Value)
	if err != nil {
		return q, err
	}

	if strings.TrimSpace(rate.BaseCurrency) == "" || strings.TrimSpace(rate.TargetCurrency) == "" {
		return q, errItemNotValid
	}

	base, err := label.Parse(rate.BaseCurrency)
	if err != nil {
		return q, fmt.Errorf("%w: %v", errCcyNotFound, err)
	}

	target, err := label.Parse(rate.TargetCurrency)
	if err != nil {
		return q, fmt.Errorf("%w: %v", errCcyNotFound, err)
	}

	return provider.Quote{
		Time:   t,
		Base:   base,
		Target: target,
		Value:  value,
	}, nil
}

// parseDate rejects empty strings, unknown layouts and the epoch origin
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errDateNotValid
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}

		if t.IsZero() || t.Unix() == 0 {
			return time.Time{}, errDateNotValid
		}

		return t, nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", errDateNotValid, s)
}

// parseValue accepts finite positive numbers only, a zero rate would poison every cross rate
func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errValueNotValid
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errValueNotValid, err)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, errValueNotValid
	}

	return v, nil
}
