package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/classifurlr/internal/model"
)

// DefaultMaxBodySize bounds the accepted session size. HAR files with
// embedded bodies are large, so the limit is generous.
const DefaultMaxBodySize = 64 << 20

// shutdownTimeout is how long Run waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

// Classifier turns a capture session into a verdict.
// *pipeline.Pipeline satisfies it.
type Classifier interface {
	Classify(ctx context.Context, data model.SessionData) *model.Classification
}

// Store persists verdicts. *database.VerdictDB satisfies it.
type Store interface {
	Save(ctx context.Context, record model.Record, input []byte) (int64, error)
}

// Server is the HTTP endpoint.
type Server struct {
	classifier  Classifier
	store       Store
	metrics     *Metrics
	logger      *slog.Logger
	maxBodySize int64
	engine      *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for request and error logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStore saves every verdict to store.
func WithStore(store Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithMetrics uses m instead of a fresh Metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithMaxBodySize sets the largest accepted request body in bytes.
func WithMaxBodySize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodySize = n
		}
	}
}

// New returns a server classifying with c.
func New(c Classifier, opts ...Option) *Server {
	s := &Server{
		classifier:  c,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())
	engine.POST("/url", s.classifyURL)
	engine.GET("/healthz", healthz)
	engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	s.engine = engine
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) classifyURL(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.metrics.Rejected.WithLabelValues("too_large").Inc()
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		s.metrics.Rejected.WithLabelValues("bad_json").Inc()
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	var data model.SessionData
	if err := json.Unmarshal(body, &data); err != nil {
		s.metrics.Rejected.WithLabelValues("bad_json").Inc()
		c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed session: " + err.Error()})
		return
	}
	if strings.TrimSpace(data.URL) == "" {
		s.metrics.Rejected.WithLabelValues("missing_url").Inc()
		c.JSON(http.StatusBadRequest, errorResponse{Error: "session has no url"})
		return
	}

	start := time.Now()
	verdict := s.classifier.Classify(c.Request.Context(), data)
	s.metrics.Observe(verdict, time.Since(start))

	record := verdict.AsRecord()
	if s.store != nil {
		if _, err := s.store.Save(c.Request.Context(), record, body); err != nil {
			s.logger.Error("failed to save verdict", "url", data.URL, "error", err)
		}
	}
	c.JSON(http.StatusCreated, record)
}

func healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
