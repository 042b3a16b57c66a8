// Package otel owns the OpenTelemetry log provider used by the otelslog
// bridge. Metrics stay on the global meter provider; see the dispatcher
// package for the engine's instruments.
package otel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config selects the log export targets. At least one of LogWriter and
// Endpoint must be set when Enabled is true.
type Config struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	LogWriter    io.Writer
	Endpoint     string
	Insecure     bool
}

// Provider manages the OpenTelemetry log pipeline. A disabled provider is
// valid and all its methods are no-ops.
type Provider struct {
	logs *sdklog.LoggerProvider
}

// New builds the provider and its batch export pipeline.
func New(cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{}, nil
	}

	ctx := context.Background()
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []sdklog.LoggerProviderOption{sdklog.WithResource(res)}
	exporters := 0

	if cfg.LogWriter != nil {
		fileExporter, err := stdoutlog.New(
			stdoutlog.WithWriter(cfg.LogWriter),
			stdoutlog.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create file log exporter: %w", err)
		}
		opts = append(opts, sdklog.WithProcessor(
			sdklog.NewBatchProcessor(fileExporter,
				sdklog.WithExportTimeout(cfg.BatchTimeout))))
		exporters++
	}

	if cfg.Endpoint != "" {
		otlpOpts := []otlploghttp.Option{otlploghttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			otlpOpts = append(otlpOpts, otlploghttp.WithInsecure())
		}
		otlpExporter, err := otlploghttp.New(ctx, otlpOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
		}
		opts = append(opts, sdklog.WithProcessor(
			sdklog.NewBatchProcessor(otlpExporter,
				sdklog.WithExportTimeout(cfg.BatchTimeout))))
		exporters++
	}

	if exporters == 0 {
		return nil, errors.New("OTel enabled but no log writer or endpoint configured")
	}

	return &Provider{logs: sdklog.NewLoggerProvider(opts...)}, nil
}

// LoggerProvider returns the log provider for the otelslog bridge, nil
// when disabled. Pending records are flushed through the logging
// manager's Flush, which calls ForceFlush on this provider.
func (p *Provider) LoggerProvider() *sdklog.LoggerProvider {
	return p.logs
}

// Shutdown stops the log pipeline, exporting anything still batched.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.logs == nil {
		return nil
	}
	if err := p.logs.Shutdown(ctx); err != nil {
		return fmt.Errorf("log shutdown failed: %w", err)
	}
	return nil
}
