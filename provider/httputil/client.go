package httputil

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

const defaultUserAgent = "forexdaily/0.1.0"

var ErrStatusCode = errors.New("http status != 200")

type Option func(*SourceHTTPClient)

// WithRetryNum set number of repeated requests after a failed attempt, 0 means a single attempt
func WithRetryNum(n uint64) Option {
	return func(c *SourceHTTPClient) {
		c.retryNum = n
	}
}

// WithRetryDuration constant backoff between attempts
func WithRetryDuration(t time.Duration) Option {
	return func(c *SourceHTTPClient) {
		c.retryDuration = t
	}
}

// DefaultTransport return preconfigured HTTP transport
func DefaultTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConns:          200,
		MaxIdleConnsPerHost:   100,
		DisableCompression:    true,
		IdleConnTimeout:       5 * time.Minute,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
	}
}

// DefaultSourceHTTPClient return preconfigured HTTP client
func DefaultSourceHTTPClient(opts ...Option) SourceHTTPClient {
	return NewHTTPClient(&http.Client{Transport: DefaultTransport()}, opts...)
}

// NewHTTPClient return prepared SourceHTTPClient
func NewHTTPClient(client *http.Client, opts ...Option) SourceHTTPClient {
	c := SourceHTTPClient{client: client, retryDuration: time.Second}
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

type SourceHTTPClient struct {
	client        *http.Client
	retryNum      uint64
	retryDuration time.Duration
}

func (f SourceHTTPClient) UserAgent() string {
	return defaultUserAgent
}

// Get implements HTTP method GET client and returns the slice byte from the body.
// Transport errors and non 200 answers are retried up to retryNum times
func (f SourceHTTPClient) Get(ctx context.Context, u url.URL) ([]byte, error) {
	b := retry.WithMaxRetries(f.retryNum, retry.NewConstant(f.retryDuration))

	var body []byte
	if err := retry.Do(ctx, b, func(ctx context.Context) error {
		resp, err := f.fetch(ctx, u)
		if err != nil {
			return retry.RetryableError(err)
		}

		body = resp

		return nil
	}); err != nil {
		return nil, err
	}

	return body, nil
}

func (f SourceHTTPClient) fetch(ctx context.Context, u url.URL) ([]byte, error) {
	req, err := f.prepareRequest(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("build HTTP request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("make HTTP request: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status: %d, %s: %w", resp.StatusCode, resp.Status, ErrStatusCode)
	}

	var reader io.ReadCloser
	contentType := resp.Header.Get("Content-Type")
	contentEncoding := resp.Header.Get("Content-Encoding")
	switch {
	case strings.Contains(contentType, "application/x-gzip"), strings.Contains(contentEncoding, "gzip"):
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("unable create gzip.NewReader: %w", err)
		}
		reader = gz
		defer reader.Close()

	default:
		reader = resp.Body
	}

	b, err := io.ReadAll(reader)
	if err != nil {
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("read body: %w", err)
		}
	}

	return b, nil
}

func (f SourceHTTPClient) prepareRequest(ctx context.Context, u url.URL) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept-Encoding", "gzip")

	return req, nil
}
