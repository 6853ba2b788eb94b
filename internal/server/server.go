// Package server exposes the rate service over a small REST JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cybership/rateshop/internal/telemetry"
	"github.com/cybership/rateshop/pkg/carrier"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Server is the HTTP server for the rate service.
type Server struct {
	port     int
	registry *carrier.Registry
	service  *carrier.Service
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a server over the given registry.
func New(cfg Config, registry *carrier.Registry, logger *otelzap.Logger) *Server {
	return &Server{
		port:     cfg.Port,
		registry: registry,
		service:  carrier.NewService(registry, logger),
		logger:   logger,
		metrics:  telemetry.NewMetrics(),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/carriers", s.handleCarriers)
	mux.HandleFunc("POST /v1/rates", s.handleRatesAll)
	mux.HandleFunc("POST /v1/rates/{code}", s.handleRatesForCarrier)
	return mux
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleCarriers(w http.ResponseWriter, r *http.Request) {
	type carrierInfo struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	carriers := s.registry.List()
	infos := make([]carrierInfo, len(carriers))
	for i, c := range carriers {
		infos[i] = carrierInfo{Code: c.Code(), Name: c.Name()}
	}
	writeJSON(w, http.StatusOK, map[string]any{"carriers": infos})
}

// handleRatesAll fans the request out to every registered carrier.
// Carrier failures show up inside the per-carrier records; this
// endpoint itself never reports them as an HTTP error.
func (s *Server) handleRatesAll(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRateRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	results := s.service.GetRatesFromAll(r.Context(), req)
	duration := time.Since(start).Seconds()

	for _, result := range results {
		status := "ok"
		if result.Error != "" {
			status = "error"
		}
		s.metrics.RecordRequest("get_rates_all", result.Carrier, status, duration)
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// handleRatesForCarrier queries one carrier; a classified error maps to
// an HTTP status and a structured error payload.
func (s *Server) handleRatesForCarrier(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	req, ok := s.decodeRateRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	quotes, err := s.service.GetRates(r.Context(), code, req)
	duration := time.Since(start).Seconds()

	if err != nil {
		kind := carrier.KindOf(err)
		s.metrics.RecordRequest("get_rates", code, "error", duration)
		s.metrics.RecordError(code, string(kind))
		s.logger.Ctx(r.Context()).Warn("Rate request failed",
			zap.String("carrier", code),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		writeError(w, err)
		return
	}

	s.metrics.RecordRequest("get_rates", code, "ok", duration)
	writeJSON(w, http.StatusOK, map[string]any{"carrier": code, "quotes": quotes})
}

func (s *Server) decodeRateRequest(w http.ResponseWriter, r *http.Request) (*carrier.RateRequest, bool) {
	var req carrier.RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{
				"kind":    string(carrier.KindValidationError),
				"message": "invalid JSON: " + err.Error(),
			},
		})
		return nil, false
	}
	return &req, true
}

type errorPayload struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	Carrier    string `json:"carrier,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	payload := errorPayload{
		Kind:    string(carrier.KindOf(err)),
		Message: err.Error(),
	}
	var cerr *carrier.Error
	if errors.As(err, &cerr) {
		payload.Message = cerr.Message
		payload.Carrier = cerr.Carrier
		payload.StatusCode = cerr.StatusCode
	}
	writeJSON(w, statusForKind(carrier.KindOf(err)), map[string]any{"error": payload})
}

func statusForKind(kind carrier.Kind) int {
	switch kind {
	case carrier.KindValidationError:
		return http.StatusBadRequest
	case carrier.KindCarrierNotFound:
		return http.StatusNotFound
	case carrier.KindRateLimit:
		return http.StatusTooManyRequests
	case carrier.KindTimeout:
		return http.StatusGatewayTimeout
	case carrier.KindAuthFailed, carrier.KindCarrierAPIError, carrier.KindNetworkError, carrier.KindMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
