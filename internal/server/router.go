// Package server exposes the scanner over HTTP.
//
// Endpoints:
//   - GET  /health        liveness and OCR availability
//   - POST /v1/classify   {"text": "..."} analyzed without OCR
//   - POST /v1/scan       raw image body, or multipart field "image"
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"visionassist/internal/logger"
	"visionassist/internal/ocr"
	"visionassist/internal/pipeline"
)

// Server serves scan and classify requests for one Scanner.
type Server struct {
	scanner  *pipeline.Scanner
	maxBytes int64
	log      zerolog.Logger
}

// New returns a Server. maxBytes caps uploaded images; 0 means
// ocr.DefaultMaxImageBytes.
func New(scanner *pipeline.Scanner, maxBytes int64) *Server {
	if maxBytes <= 0 {
		maxBytes = ocr.DefaultMaxImageBytes
	}
	return &Server{
		scanner:  scanner,
		maxBytes: maxBytes,
		log:      logger.WithComponent("server"),
	}
}

// Router builds the request router.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/v1/classify", s.handleClassify).Methods("POST")
	r.HandleFunc("/v1/scan", s.handleScan).Methods("POST")
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
