package ecb

import (
	"context"
	"errors"
	"fmt"
	"hash"
	"io/fs"
	"net/url"
	"path/filepath"

	"github.com/robotomize/forexdaily/internal/hashio"
	"github.com/robotomize/forexdaily/internal/strutil"
	"github.com/robotomize/forexdaily/provider"
	"github.com/robotomize/forexdaily/provider/httputil"
)

const hostname = "www.ecb.europa.eu"

const indexRawPath = "/home/html/rss.en.html"

// IndexFixtureName is the file the index page is recorded under
const IndexFixtureName = "home"

// DefaultIndexURL is the ECB page listing every reference rate RSS feed
var DefaultIndexURL = url.URL{Scheme: "https", Host: hostname, Path: indexRawPath}

var (
	_ provider.Source = (*Source)(nil)
	_ provider.Source = (*FixtureSource)(nil)
	_ provider.Source = (*RecordingSource)(nil)
)

// NewSource return a source that reads the index page and the feeds over HTTP
func NewSource(client httputil.SourceHTTPClient, indexURL url.URL) *Source {
	return &Source{indexURL: indexURL, SourceHTTPClient: client}
}

type Source struct {
	indexURL url.URL
	httputil.SourceHTTPClient
}

func (s *Source) FetchIndex(ctx context.Context) ([]byte, error) {
	b, err := s.Get(ctx, s.indexURL)
	if err != nil {
		return nil, fmt.Errorf("get index %s: %w", s.indexURL.String(), err)
	}

	return b, nil
}

func (s *Source) FetchFeed(ctx context.Context, u url.URL) ([]byte, error) {
	b, err := s.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("get feed %s: %w", u.String(), err)
	}

	return b, nil
}

// NewFixtureSource return a source that serves previously recorded documents from fsys
func NewFixtureSource(fsys fs.FS) *FixtureSource {
	return &FixtureSource{fsys: fsys}
}

type FixtureSource struct {
	fsys fs.FS
}

func (s *FixtureSource) FetchIndex(_ context.Context) ([]byte, error) {
	b, err := fs.ReadFile(s.fsys, IndexFixtureName)
	if err != nil {
		return nil, fmt.Errorf("read index fixture: %w", err)
	}

	return b, nil
}

func (s *FixtureSource) FetchFeed(_ context.Context, u url.URL) ([]byte, error) {
	name := strutil.FixtureName(u)
	b, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read feed fixture %s: %w", name, err)
	}

	return b, nil
}

// NewRecordingSource wraps src and stores every fetched document into dir,
// files whose content did not change are not rewritten
func NewRecordingSource(src provider.Source, dir string, hasherFunc func() hash.Hash) *RecordingSource {
	if hasherFunc == nil {
		hasherFunc = hashio.MD5()
	}

	return &RecordingSource{src: src, dir: dir, hasherFunc: hasherFunc}
}

type RecordingSource struct {
	src        provider.Source
	dir        string
	hasherFunc func() hash.Hash
}

func (s *RecordingSource) FetchIndex(ctx context.Context) ([]byte, error) {
	b, err := s.src.FetchIndex(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.record(IndexFixtureName, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *RecordingSource) FetchFeed(ctx context.Context, u url.URL) ([]byte, error) {
	b, err := s.src.FetchFeed(ctx, u)
	if err != nil {
		return nil, err
	}

	if err := s.record(strutil.FixtureName(u), b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *RecordingSource) record(name string, b []byte) error {
	if err := hashio.WriteFileIfChanged(filepath.Join(s.dir, name), b, s.hasherFunc); err != nil {
		if errors.Is(err, hashio.ErrContentEqual) {
			return nil
		}

		return fmt.Errorf("record %s: %w", name, err)
	}

	return nil
}
