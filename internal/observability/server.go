// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package observability provides HTTP endpoints for metrics and health checks.
package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"

	"github.com/holomush/textbridge/internal/adapter"
)

// ReadinessChecker returns whether the service is ready to deliver text.
type ReadinessChecker func() bool

// Command outcome values for CommandsTotal.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics contains the service-level Prometheus metrics for textbridge.
// Delivery metrics live with the adapter and are registered alongside.
type Metrics struct {
	CommandsTotal *prometheus.CounterVec
	ProfileInfo   *prometheus.GaugeVec
}

// NewMetrics creates and registers textbridge metrics, including the
// adapter's binding and delivery metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textbridge_commands_total",
				Help: "Total number of console commands by command and status",
			},
			[]string{"command", "status"},
		),
		ProfileInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "textbridge_profile_info",
				Help: "Loaded host profile and the version it binds to",
			},
			[]string{"profile", "version"},
		),
	}

	reg.MustRegister(m.CommandsTotal)
	reg.MustRegister(m.ProfileInfo)
	adapter.RegisterMetrics(reg)

	return m
}

// RecordCommand counts one console command.
func (m *Metrics) RecordCommand(name string, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.CommandsTotal.WithLabelValues(name, status).Inc()
}

// SetProfile records the loaded profile.
func (m *Metrics) SetProfile(profile, version string) {
	m.ProfileInfo.Reset()
	m.ProfileInfo.WithLabelValues(profile, version).Set(1)
}

// Server exposes the metrics registry and the binding health over HTTP.
type Server struct {
	addr     string
	registry *prometheus.Registry
	metrics  *Metrics
	isReady  ReadinessChecker
	running  atomic.Bool

	listener   net.Listener
	httpServer *http.Server
}

// NewServer creates a server that will listen on addr. A nil ready
// checker reports ready.
func NewServer(addr string, ready ReadinessChecker) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Server{
		addr:     addr,
		registry: registry,
		metrics:  NewMetrics(registry),
		isReady:  ready,
	}
}

// Metrics returns the service metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	mux.HandleFunc("/healthz/liveness", func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, true)
	})
	mux.HandleFunc("/healthz/readiness", func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, s.isReady == nil || s.isReady())
	})
	return mux
}

// Start listens and serves in the background. Errors raised after Start
// returns arrive on the channel, which closes once serving ends.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.In("observability").Errorf("server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.In("observability").With("addr", s.addr).Wrap(err)
	}
	srv := &http.Server{Handler: s.routes(), ReadHeaderTimeout: 10 * time.Second}
	s.listener, s.httpServer = listener, srv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("observability server failed", "error", err)
			errCh <- err
		}
	}()

	slog.Info("observability server listening", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop shuts the server down. Stopping a server that is not running is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.running.Store(true)
		return oops.In("observability").With("operation", "shutdown").Wrap(err)
	}
	slog.Info("observability server stopped")
	return nil
}

// Addr returns the bound address, or "" before the first successful Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func writeHealth(w http.ResponseWriter, ok bool) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	body := "ok\n"
	if !ok {
		w.WriteHeader(http.StatusServiceUnavailable)
		body = "not ready\n"
	}
	_, _ = io.WriteString(w, body)
}
