// Package server exposes the ingestion run over HTTP.
package server

import (
	"context"
	"errors"
	"hash"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robotomize/forexdaily"
	"github.com/robotomize/forexdaily/internal/logging"
	"github.com/robotomize/forexdaily/provider"
	"github.com/robotomize/forexdaily/provider/ecb"
)

const (
	triggerPath = "/"
	healthPath  = "/healthz"
	metricsPath = "/metrics"
)

// TriggerRequest is the optional JSON body of the trigger endpoint
type TriggerRequest struct {
	// Testing reads the index page and feeds from the fixtures directory
	Testing bool `json:"testing"`
	// Record stores freshly fetched live documents as fixtures
	Record bool `json:"record"`
}

// Sources holds what a run can read from
type Sources struct {
	Live        provider.Source
	FixturesDir string
	HasherFunc  func() hash.Hash
}

// Select returns the source a request asks for. Testing wins over Record
func (s Sources) Select(req TriggerRequest) provider.Source {
	switch {
	case req.Testing:
		return ecb.NewFixtureSource(os.DirFS(s.FixturesDir))
	case req.Record:
		return ecb.NewRecordingSource(s.Live, s.FixturesDir, s.HasherFunc)
	default:
		return s.Live
	}
}

type Option func(*Server)

// WithLogger set base logger, request loggers are derived from it
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New return server
func New(runner *forexdaily.Runner, sources Sources, opts ...Option) *Server {
	s := &Server{
		runner:  runner,
		sources: sources,
		logger:  logging.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	engine := gin.New()
	engine.Use(requestLogger(s.logger), requestMetrics(), gin.Recovery())

	engine.GET(healthPath, s.handleHealth)
	engine.GET(metricsPath, gin.WrapH(promhttp.Handler()))
	engine.Any(triggerPath, s.handleTrigger)

	s.engine = engine

	return s
}

// Server serializes runs, one trigger at a time reaches the store
type Server struct {
	mu      sync.Mutex
	runner  *forexdaily.Runner
	sources Sources
	logger  *slog.Logger
	engine  *gin.Engine
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Trigger performs one run with the source req selects, concurrent callers wait for each other
func (s *Server) Trigger(ctx context.Context, req TriggerRequest) (forexdaily.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.runner.Run(ctx, s.sources.Select(req))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) handleTrigger(c *gin.Context) {
	logger := loggerFromContext(c)

	var req TriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.Warn("invalid trigger body", slog.String("error", err.Error()))
		c.String(http.StatusBadRequest, "invalid request body: %s", err.Error())
		return
	}

	ctx := logging.WithLogger(c.Request.Context(), logger)

	res, err := s.Trigger(ctx, req)
	if err != nil {
		logger.Error("run failed", slog.String("error", err.Error()))
		c.String(http.StatusInternalServerError, "FAILURE %s", err.Error())
		return
	}

	c.String(http.StatusOK, "%s", res.String())
}
