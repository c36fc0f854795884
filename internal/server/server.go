// Package server exposes the analysis pipeline over HTTP.
//
// Routes:
//
//	POST /api/analyze          multipart "file" (.csv/.json) or a JSON task array
//	GET  /api/analyses/{id}    a previously returned analysis
//	POST /api/suggest          suggestion for one task
//	GET  /healthz              liveness
//	GET  /version              build information
//
// Every error response has the shape {"status":"error","code":...,"message":...}.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/critpath/pkg/bottleneck"
	"github.com/matzehuels/critpath/pkg/buildinfo"
	"github.com/matzehuels/critpath/pkg/config"
	"github.com/matzehuels/critpath/pkg/pipeline"
	"github.com/matzehuels/critpath/pkg/task"
)

// Options configures a Server.
type Options struct {
	Addr           string
	MaxUploadBytes int64
	ResultTTL      time.Duration
	SuggestLimit   int
	Parse          task.ParseOptions
	Bottleneck     bottleneck.Options

	// MaxTasks and AnalysisTimeout bound the work of one analyze request.
	MaxTasks        int
	AnalysisTimeout time.Duration
}

// OptionsFromConfig maps the configuration file onto server options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Addr:           cfg.Server.Addr,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		ResultTTL:      cfg.Server.ResultTTL.Std(),
		SuggestLimit:   cfg.Suggest.Limit,
		Parse:          cfg.ParseOptions(),
		Bottleneck:     cfg.BottleneckOptions(),

		MaxTasks:        cfg.Server.MaxTasks,
		AnalysisTimeout: cfg.Server.AnalysisTimeout.Std(),
	}
}

// Server is the HTTP front end of a [pipeline.Runner].
type Server struct {
	runner *pipeline.Runner
	opts   Options
	logger *log.Logger
	router chi.Router
}

// New builds the router. runner must not be nil.
func New(runner *pipeline.Runner, opts Options, logger *log.Logger) *Server {
	if opts.Addr == "" {
		opts.Addr = config.DefaultAddr
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = config.DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = runner.Logger
	}
	s := &Server{runner: runner, opts: opts, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequestSize(s.opts.MaxUploadBytes))
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/analyses/{id}", s.handleGetAnalysis)
		r.Post("/suggest", s.handleSuggest)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.opts.Addr, "version", buildinfo.Version)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}
