package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/njchilds90/gocas"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const requestIDHeader = "X-Request-ID"

type ctxKey struct{}

type server struct {
	logger       *logrus.Logger
	maxBodyBytes int64
	started      time.Time
}

func newServer(logger *logrus.Logger, maxBodyBytes int64) *server {
	return &server{logger: logger, maxBodyBytes: maxBodyBytes, started: time.Now()}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tool", s.handleTool)
	mux.HandleFunc("/schema", s.handleSchema)
	mux.HandleFunc("/health", s.handleHealth)
	return s.withRequestID(mux)
}

// withRequestID tags every request with an id, taken from the X-Request-ID
// header when the client sends one, and stores a log entry carrying it.
func (s *server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		entry := s.logger.WithFields(logrus.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, entry)))
	})
}

func (s *server) entry(r *http.Request) *logrus.Entry {
	if e, ok := r.Context().Value(ctxKey{}).(*logrus.Entry); ok {
		return e
	}
	return logrus.NewEntry(s.logger)
}

// POST /tool: handle a tool call
func (s *server) handleTool(w http.ResponseWriter, r *http.Request) {
	log := s.entry(r)
	defer func() {
		if rec := recover(); rec != nil {
			log.WithField("panic", rec).Errorf("panic in /tool\n%s", debug.Stack())
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req gocas.ToolRequest
	if err := dec.Decode(&req); err != nil {
		log.WithError(err).Warn("bad tool request")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if dec.More() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: trailing data"})
		return
	}

	start := time.Now()
	resp := gocas.HandleToolCallContext(r.Context(), req)
	log = log.WithFields(logrus.Fields{"tool": req.Tool, "elapsed": time.Since(start)})
	if resp.Error != "" {
		log.WithField("error", resp.Error).Info("tool call failed")
	} else {
		log.Debug("tool call")
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /schema: tool schema for agent registration
func (s *server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, gocas.ToolSpec())
}

// GET /health: liveness check
func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
		"uptime": time.Since(s.started).Round(time.Second).String(),
		"cache":  gocas.SimplifyCacheStats(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// run serves until ctx is done, then shuts down gracefully.
func run(ctx context.Context, cfg ServerConfig, logger *logrus.Logger) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newServer(logger, cfg.MaxBodyBytes).routes(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", cfg.Addr).Info("gocasd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown")
	})
	return g.Wait()
}
