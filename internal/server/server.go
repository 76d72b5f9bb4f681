// Package server exposes the minimizer over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pborges/qelm/internal/config"
	"github.com/pborges/qelm/internal/engine"
	"github.com/pborges/qelm/internal/metrics"
	"github.com/pborges/qelm/internal/pla"
	"github.com/pborges/qelm/internal/qm"
	"github.com/pborges/qelm/internal/verify"
)

// MaxBodySize bounds the PLA accepted by /v1/minimize.
const MaxBodySize = 8 << 20

type Server struct {
	config  func() config.Config
	log     *zap.SugaredLogger
	metrics *metrics.Metrics
	router  *mux.Router
}

// New builds the router. cfg is called once per request so that reloaded
// settings take effect without a restart.
func New(cfg func() config.Config, log *zap.SugaredLogger, m *metrics.Metrics) *Server {
	s := &Server{config: cfg, log: log, metrics: m, router: mux.NewRouter()}
	s.router.HandleFunc("/v1/minimize", s.handleMinimize).Methods(http.MethodPost)
	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok\n")
	}).Methods(http.MethodGet)
	s.router.Handle("/metrics", metrics.Handler(m.Registry())).Methods(http.MethodGet)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return fmt.Errorf("failed to listen and serve: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Errorw("failed to write response", zap.Error(err))
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// overrides applies the method, passes, seed, cover and verify query
// parameters to cfg.
func overrides(cfg config.Config, r *http.Request) (config.Config, error) {
	q := r.URL.Query()
	if v := q.Get("method"); v != "" {
		cfg.Method = v
	}
	if v := q.Get("cover"); v != "" {
		cfg.Cover = v
	}
	if v := q.Get("passes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid passes %q", v)
		}
		cfg.Passes = n
	}
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid seed %q", v)
		}
		cfg.Seed = n
	}
	if v := q.Get("verify"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid verify %q", v)
		}
		cfg.Verify = b
	}
	return cfg, cfg.Validate()
}

func (s *Server) handleMinimize(w http.ResponseWriter, r *http.Request) {
	cfg, err := overrides(s.config(), r)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		s.fail(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	p, err := pla.Parse(body)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}

	e, err := engine.New(cfg, engine.WithLogger(s.log), engine.WithRecorder(s.metrics))
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	res, err := e.Run(r.Context(), p)
	switch {
	case err == nil:
	case errors.Is(err, qm.ErrProductTooLarge), errors.Is(err, verify.ErrNotSound), errors.Is(err, verify.ErrNotSafe):
		s.fail(w, http.StatusUnprocessableEntity, err)
		return
	case errors.Is(err, context.Canceled):
		s.log.Debugw("request canceled", zap.Error(err))
		return
	default:
		s.log.Errorw("minimization failed", zap.Error(err))
		s.fail(w, http.StatusInternalServerError, err)
		return
	}

	if r.URL.Query().Get("format") == "pla" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := pla.Write(w, res.Inputs, res.InputNames, res.Covers()); err != nil {
			s.log.Errorw("failed to write response", zap.Error(err))
		}
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}
