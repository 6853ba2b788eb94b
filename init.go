package main

import (
	"context"

	"github.com/cybership/rateshop/internal/config"
	"github.com/cybership/rateshop/internal/telemetry"
	"github.com/cybership/rateshop/pkg/carrier"
	"github.com/cybership/rateshop/pkg/carrier/mock"
	"github.com/cybership/rateshop/pkg/carrier/ups"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return nil, func(context.Context) error { return nil }, nil
	}
	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
}

func initCarrierRegistry(cfg *config.Config, logger *otelzap.Logger, tracer trace.Tracer) *carrier.Registry {
	registry := carrier.NewRegistry()

	if cfg.UPSEnabled {
		if cfg.UPSUseMock {
			registry.Register(mock.New("UPS"))
		} else {
			registry.Register(ups.New(ups.Config{
				ClientID:      cfg.UPSClientID,
				ClientSecret:  cfg.UPSClientSecret,
				AccountNumber: cfg.UPSAccountNumber,
				BaseURL:       cfg.UPSBaseURL,
				Timeout:       cfg.RequestTimeout,
				MaxRPS:        cfg.HTTPMaxRPS,
			}, logger, tracer))
		}
	}

	return registry
}
