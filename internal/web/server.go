// Package web serves a browser visualizer. Each run is a server-side Stepper
// addressed by a uuid; the page asks for updates and paints them on a canvas.
package web

import (
	"context"
	"embed"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pdrpinto/pathviz"
)

//go:embed static/index.html
var static embed.FS

const (
	// DefaultMaxRuns bounds live runs when Config.MaxRuns is zero.
	DefaultMaxRuns = 64
	// DefaultMaxGridSize bounds the grid side of created runs when
	// Config.MaxGridSize is zero.
	DefaultMaxGridSize = 256
)

// Config holds settings for creating a Server.
type Config struct {
	// Base fills every parameter a create request leaves out.
	Base     pathviz.Config
	Logger   *slog.Logger
	Observer pathviz.Observer
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// MaxRuns caps live runs; the oldest is dropped to make room.
	MaxRuns int
	// MaxGridSize caps the grid side a client may request. It never exceeds
	// pathviz.MaxGridSize.
	MaxGridSize int
}

type run struct {
	mu      sync.Mutex
	stepper *pathviz.Stepper
	seq     uint64
}

// Server owns the live runs.
type Server struct {
	base     pathviz.Config
	logger   *slog.Logger
	observer pathviz.Observer
	metrics  http.Handler
	maxRuns  int
	maxSize  int

	mu      sync.Mutex
	runs    map[uuid.UUID]*run
	nextSeq uint64
}

// New creates a Server with no runs.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxRuns := cfg.MaxRuns
	if maxRuns <= 0 {
		maxRuns = DefaultMaxRuns
	}
	maxSize := cfg.MaxGridSize
	if maxSize <= 0 {
		maxSize = DefaultMaxGridSize
	}
	maxSize = min(maxSize, pathviz.MaxGridSize)
	return &Server{
		base:     cfg.Base,
		logger:   logger,
		observer: cfg.Observer,
		metrics:  cfg.Metrics,
		maxRuns:  maxRuns,
		maxSize:  maxSize,
		runs:     make(map[uuid.UUID]*run),
	}
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), s.logRequests())

	router.GET("/", s.index)
	api := router.Group("/api")
	{
		api.POST("/runs", s.createRun)
		api.GET("/runs/:id", s.getRun)
		api.POST("/runs/:id/step", s.stepRun)
		api.DELETE("/runs/:id", s.deleteRun)
	}
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics))
	}
	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web visualizer listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (s *Server) add(stepper *pathviz.Stepper) uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.runs) >= s.maxRuns {
		s.evictOldestLocked()
	}
	s.nextSeq++
	s.runs[id] = &run{stepper: stepper, seq: s.nextSeq}
	return id
}

func (s *Server) evictOldestLocked() {
	var oldestID uuid.UUID
	var oldest *run
	for id, r := range s.runs {
		if oldest == nil || r.seq < oldest.seq {
			oldestID, oldest = id, r
		}
	}
	delete(s.runs, oldestID)
	s.logger.Info("run evicted", "run", oldestID)
}

func (s *Server) lookup(id uuid.UUID) (*run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	return r, ok
}

func (s *Server) remove(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return false
	}
	delete(s.runs, id)
	return true
}
