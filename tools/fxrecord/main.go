package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"hash"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"github.com/robotomize/forexdaily/internal/hashio"
	"github.com/robotomize/forexdaily/internal/logging"
	"github.com/robotomize/forexdaily/internal/strutil"
	"github.com/robotomize/forexdaily/provider/ecb"
	"github.com/robotomize/forexdaily/provider/httputil"
)

var flagRec = flag.NewFlagSet("fxrecord", flag.ContinueOnError)

var (
	path     = flagRec.String("target", "", "path to the fixtures folder")
	hashFunc = flagRec.String("hash", "", "hash alg for compare files, variants: md5, sha1")
	indexURL = flagRec.String("index", ecb.DefaultIndexURL.String(), "page listing the reference rate feeds")
	retryNum = flagRec.Uint64("retry", 2, "repeated requests after a failed attempt")
)

func main() {
	logger := logging.NewLogger(os.Stderr, "info").With(slog.String("tool", "fxrecord"))
	ctx := logging.WithLogger(context.Background(), logger)

	if err := flagRec.Parse(os.Args[1:]); err != nil {
		logger.Error("flag parse", slog.String("error", err.Error()))
		os.Exit(2)
	}

	if *path == "" {
		logger.Error("use -target <path> path to the fixtures folder")
		os.Exit(2)
	}

	hasherFunc, err := hashio.Hasher(*hashFunc)
	if err != nil {
		logger.Error("hash", slog.String("error", err.Error()))
		os.Exit(2)
	}

	u, err := url.Parse(*indexURL)
	if err != nil {
		logger.Error("index url parse", slog.String("error", err.Error()))
		os.Exit(2)
	}

	if err := realMain(ctx, *u, *path, hasherFunc); err != nil {
		logger.Error("record fixtures", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func realMain(ctx context.Context, index url.URL, dir string, hasherFunc func() hash.Hash) error {
	logger := logging.FromContext(ctx)

	src := ecb.NewSource(httputil.DefaultSourceHTTPClient(httputil.WithRetryNum(*retryNum)), index)

	body, err := src.FetchIndex(ctx)
	if err != nil {
		return fmt.Errorf("fetch index: %w", err)
	}

	urls, err := ecb.ParseIndex(index, body)
	if err != nil {
		return fmt.Errorf("parse index: %w", err)
	}

	var unchanged atomic.Int64
	write := func(name string, b []byte) error {
		if err := hashio.WriteFileIfChanged(filepath.Join(dir, name), b, hasherFunc); err != nil {
			if errors.Is(err, hashio.ErrContentEqual) {
				unchanged.Add(1)
				return nil
			}

			return fmt.Errorf("write %s: %w", name, err)
		}

		return nil
	}

	if err := write(ecb.IndexFixtureName, body); err != nil {
		return err
	}

	var g multierror.Group
	for _, u := range urls {
		u := u
		g.Go(func() error {
			b, err := src.FetchFeed(ctx, u)
			if err != nil {
				return err
			}

			return write(strutil.FixtureName(u), b)
		})
	}

	if err := g.Wait().ErrorOrNil(); err != nil {
		return err
	}

	logger.Info("fixtures recorded",
		slog.String("target", dir),
		slog.Int("feeds", len(urls)),
		slog.Int64("unchanged", unchanged.Load()),
	)

	return nil
}
